package api

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/services"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SubmitService accepts channel/email submissions, persists the queued job,
// and publishes the event that starts the pipeline.
type SubmitService struct {
	store  *jobs.Store
	router *bus.Router
	logger *slog.Logger
}

// NewSubmitService constructs the submission service.
func NewSubmitService(store *jobs.Store, router *bus.Router, logger *slog.Logger) *SubmitService {
	return &SubmitService{
		store:  store,
		router: router,
		logger: logging.NewComponentLogger(logger, "submit"),
	}
}

// Submit validates the pair, creates a queued job record, and publishes the
// pipeline start event.
func (s *SubmitService) Submit(ctx context.Context, channel, email string) (*jobs.Record, error) {
	channel = strings.TrimSpace(channel)
	email = strings.TrimSpace(email)

	if channel == "" || email == "" {
		return nil, services.Wrap(services.ErrValidation, "submit", "validate request",
			"Channel name and email are required", nil)
	}
	if !emailPattern.MatchString(email) {
		return nil, services.Wrap(services.ErrValidation, "submit", "validate request",
			"Invalid email", nil)
	}

	record, err := s.store.NewJob(ctx, channel, email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("job queued",
		logging.String(logging.FieldJobID, record.JobID),
		logging.String("channel", record.Channel))

	submitted := events.JobSubmitted{
		JobRef:  events.JobRef{JobID: record.JobID, Email: record.Email},
		Channel: record.Channel,
	}
	if err := s.router.Publish(ctx, submitted); err != nil {
		return nil, err
	}
	return record, nil
}

// ValidEmail reports whether the address matches the accepted pattern.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
