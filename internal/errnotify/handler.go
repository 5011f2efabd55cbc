package errnotify

import (
	"context"
	"log/slog"

	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/logging"
	"titledoctor/internal/notifications"
)

// Handler is the failure sink for the pipeline. It subscribes to every stage
// error topic, emails the submitter about the failure, and announces the
// notification. A notifier error is logged and swallowed so a broken mail
// provider can never fail a job twice.
type Handler struct {
	notifier notifications.Service
	router   *bus.Router
	logger   *slog.Logger
}

// New constructs the failure handler.
func New(notifier notifications.Service, router *bus.Router, logger *slog.Logger) *Handler {
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	return &Handler{
		notifier: notifier,
		router:   router,
		logger:   logging.NewComponentLogger(logger, "errnotify"),
	}
}

// Topics lists the error topics the handler consumes.
func Topics() []bus.Topic {
	return []bus.Topic{
		events.TopicChannelError,
		events.TopicVideosError,
		events.TopicTitlesError,
		events.TopicEmailError,
	}
}

// Start subscribes the handler to every stage error topic.
func (h *Handler) Start() {
	for _, topic := range Topics() {
		h.router.Subscribe(topic, h.Handle)
	}
}

// Handle notifies the submitter about one failed job.
func (h *Handler) Handle(ctx context.Context, event bus.Event) {
	failed, ok := event.(events.JobFailed)
	if !ok {
		h.logger.Error("unexpected payload on error topic",
			logging.String(logging.FieldTopic, string(event.EventTopic())))
		return
	}
	logger := h.logger.With(
		logging.String(logging.FieldJobID, failed.JobID),
		logging.String(logging.FieldStage, failed.Stage))

	logger.Error("job failed", logging.String("message", failed.Message))

	deliveryID, err := h.notifier.NotifyFailure(ctx, failed.Email, failed.Message)
	if err != nil {
		logger.Error("send failure notification", logging.Error(err))
		return
	}

	notified := events.ErrorNotified{JobRef: failed.JobRef, DeliveryID: deliveryID}
	if err := h.router.Publish(ctx, notified); err != nil {
		logger.Error("publish notification event", logging.Error(err))
	}
}
