package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"titledoctor/internal/config"
	"titledoctor/internal/logging"
)

// SubmitFunc enqueues a channel/email pair the same way the HTTP endpoint does.
type SubmitFunc func(ctx context.Context, channel, email string) error

// Scheduler triggers a recurring submission for a configured channel.
type Scheduler struct {
	automation config.Automation
	submit     SubmitFunc
	cron       *cron.Cron
	logger     *slog.Logger
}

// New builds a scheduler from the automation section of the configuration.
func New(cfg *config.Config, submit SubmitFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		automation: cfg.Automation,
		submit:     submit,
		cron:       cron.New(),
		logger:     logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Enabled reports whether the automation trigger is configured to run.
func (s *Scheduler) Enabled() bool {
	return s.automation.Enabled && s.automation.Channel != "" && s.automation.Email != ""
}

// Start registers the cron entry and begins the schedule. It is a no-op when
// automation is disabled.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		s.logger.Debug("automation disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.automation.Schedule, func() {
		if err := s.Run(context.Background()); err != nil {
			s.logger.Error("scheduled submission failed", logging.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register automation schedule %q: %w", s.automation.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("automation schedule started",
		logging.String("schedule", s.automation.Schedule),
		logging.String("channel", s.automation.Channel))
	return nil
}

// Stop halts the schedule. Entries already running are allowed to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run performs one scheduled submission immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("submitting scheduled job",
		logging.String("channel", s.automation.Channel),
		logging.String("email", s.automation.Email))
	return s.submit(ctx, s.automation.Channel, s.automation.Email)
}
