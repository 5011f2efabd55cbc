package resolve

import (
	"context"
	"errors"
	"log/slog"

	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/services"
	"titledoctor/internal/services/youtube"
	"titledoctor/internal/stage"
)

const stageName = "resolve-channel"

// Searcher resolves a channel query to its authoritative channel.
type Searcher interface {
	SearchChannel(ctx context.Context, query string) (youtube.Channel, error)
	HealthCheck(ctx context.Context) error
}

// Stage resolves a submitted channel query against the YouTube Data API.
// The first search result is authoritative.
type Stage struct {
	searcher Searcher
	logger   *slog.Logger
}

// New constructs the channel resolution stage.
func New(searcher Searcher, logger *slog.Logger) *Stage {
	return &Stage{
		searcher: searcher,
		logger:   logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string                  { return stageName }
func (s *Stage) Trigger() bus.Topic            { return events.TopicSubmit }
func (s *Stage) ProcessingStatus() jobs.Status { return jobs.StatusResolvingChannel }
func (s *Stage) DoneStatus() jobs.Status       { return jobs.StatusChannelResolved }
func (s *Stage) ErrorTopic() bus.Topic         { return events.TopicChannelError }

// Execute looks up the submitted channel and records the match.
func (s *Stage) Execute(ctx context.Context, record *jobs.Record, event bus.Event) (bus.Event, error) {
	payload, err := stage.Payload[events.JobSubmitted](stageName, event)
	if err != nil {
		return nil, err
	}

	channel, err := s.searcher.SearchChannel(ctx, payload.Channel)
	if err != nil {
		if errors.Is(err, youtube.ErrNoChannel) {
			return nil, services.Wrap(services.ErrNotFound, stageName, "search channel",
				"No channel found", err)
		}
		return nil, services.Wrap(services.ErrUpstream, stageName, "search channel",
			"Error calling YouTube API", err)
	}

	s.logger.Info("channel resolved",
		logging.String(logging.FieldJobID, record.JobID),
		logging.String("channel_id", channel.ID),
		logging.String("channel_name", channel.Name))

	record.ChannelID = channel.ID
	record.ChannelName = channel.Name

	return events.ChannelResolved{
		JobRef:      payload.JobRef,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
	}, nil
}

// HealthCheck reports whether the YouTube adapter is usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.searcher.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(stageName, err.Error())
	}
	return stage.Healthy(stageName)
}
