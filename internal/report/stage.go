package report

import (
	"context"
	"log/slog"

	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/notifications"
	"titledoctor/internal/services"
	"titledoctor/internal/stage"
)

const stageName = "send-report"

// Stage emails the improved-titles report to the submitter.
type Stage struct {
	notifier notifications.Service
	logger   *slog.Logger
}

// New constructs the report delivery stage.
func New(notifier notifications.Service, logger *slog.Logger) *Stage {
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	return &Stage{
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string                  { return stageName }
func (s *Stage) Trigger() bus.Topic            { return events.TopicTitlesReady }
func (s *Stage) ProcessingStatus() jobs.Status { return jobs.StatusSendingEmail }
func (s *Stage) DoneStatus() jobs.Status       { return jobs.StatusCompleted }
func (s *Stage) ErrorTopic() bus.Topic         { return events.TopicEmailError }

// Execute sends the report email and records the delivery identifier.
func (s *Stage) Execute(ctx context.Context, record *jobs.Record, event bus.Event) (bus.Event, error) {
	payload, err := stage.Payload[events.TitlesReady](stageName, event)
	if err != nil {
		return nil, err
	}

	deliveryID, err := s.notifier.NotifyReport(ctx, payload.Email, payload.ChannelName, payload.Titles)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, stageName, "send report email",
			"Error sending email", err)
	}

	s.logger.Info("report email sent",
		logging.String(logging.FieldJobID, record.JobID),
		logging.String("delivery_id", deliveryID))

	record.DeliveryID = deliveryID

	return events.EmailSent{
		JobRef:      payload.JobRef,
		ChannelName: payload.ChannelName,
		DeliveryID:  deliveryID,
	}, nil
}

// HealthCheck reports whether the mail sender is usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(stageName)
}
