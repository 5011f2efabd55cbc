package videos

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

const stageName = "retrieve-videos"

// Lister returns a channel's most recent uploads.
type Lister interface {
	ListRecent(ctx context.Context, channelID string) ([]youtube.Video, error)
	HealthCheck(ctx context.Context) error
}

// Stage fetches the resolved channel's recent uploads.
type Stage struct {
	lister Lister
	logger *slog.Logger
}

// New constructs the video retrieval stage.
func New(lister Lister, logger *slog.Logger) *Stage {
	return &Stage{
		lister: lister,
		logger: logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string                  { return stageName }
func (s *Stage) Trigger() bus.Topic            { return events.TopicChannelResolved }
func (s *Stage) ProcessingStatus() jobs.Status { return jobs.StatusRetrievingVideos }
func (s *Stage) DoneStatus() jobs.Status       { return jobs.StatusVideosRetrieved }
func (s *Stage) ErrorTopic() bus.Topic         { return events.TopicVideosError }

// Execute lists the channel's uploads and records them on the job.
func (s *Stage) Execute(ctx context.Context, record *jobs.Record, event bus.Event) (bus.Event, error) {
	payload, err := stage.Payload[events.ChannelResolved](stageName, event)
	if err != nil {
		return nil, err
	}

	listed, err := s.lister.ListRecent(ctx, payload.ChannelID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoVideos) {
			return nil, services.Wrap(services.ErrNotFound, stageName, "list recent videos",
				"No videos found", err)
		}
		return nil, services.Wrap(services.ErrUpstream, stageName, "list recent videos",
			"Error calling YouTube API", err)
	}

	converted := make([]jobs.Video, 0, len(listed))
	for _, video := range listed {
		converted = append(converted, jobs.Video{
			VideoID:      video.VideoID,
			Title:        video.Title,
			URL:          video.URL,
			PublishedAt:  video.PublishedAt,
			ThumbnailURL: video.ThumbnailURL,
		})
	}

	s.logger.Info("videos retrieved",
		logging.String(logging.FieldJobID, record.JobID),
		logging.Int("count", len(converted)))

	record.Videos = converted

	return events.VideosRetrieved{
		JobRef:      payload.JobRef,
		ChannelID:   payload.ChannelID,
		ChannelName: payload.ChannelName,
		Videos:      converted,
	}, nil
}

// HealthCheck reports whether the YouTube adapter is usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.lister.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(stageName, err.Error())
	}
	return stage.Healthy(stageName)
}
