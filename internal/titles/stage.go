package titles

import (
	"context"
	"log/slog"

	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/services"
	"titledoctor/internal/services/llm"
	"titledoctor/internal/stage"
)

const stageName = "refactor-titles"

// Improver rewrites a batch of video titles.
type Improver interface {
	ImproveTitles(ctx context.Context, channelName string, titles []string) ([]llm.TitleSuggestion, error)
	HealthCheck(ctx context.Context) error
}

// Stage rewrites the retrieved video titles through the model.
type Stage struct {
	improver Improver
	logger   *slog.Logger
}

// New constructs the title improvement stage.
func New(improver Improver, logger *slog.Logger) *Stage {
	return &Stage{
		improver: improver,
		logger:   logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string                  { return stageName }
func (s *Stage) Trigger() bus.Topic            { return events.TopicVideosRetrieved }
func (s *Stage) ProcessingStatus() jobs.Status { return jobs.StatusRefactoringTitles }
func (s *Stage) DoneStatus() jobs.Status       { return jobs.StatusTitlesRefactored }
func (s *Stage) ErrorTopic() bus.Topic         { return events.TopicTitlesError }

// Execute asks the model for improved titles, pairing each suggestion with
// the video URL it came from.
func (s *Stage) Execute(ctx context.Context, record *jobs.Record, event bus.Event) (bus.Event, error) {
	payload, err := stage.Payload[events.VideosRetrieved](stageName, event)
	if err != nil {
		return nil, err
	}
	if len(payload.Videos) == 0 {
		return nil, services.Wrap(services.ErrValidation, stageName, "improve titles",
			"No videos found", nil)
	}

	originals := make([]string, len(payload.Videos))
	for i, video := range payload.Videos {
		originals[i] = video.Title
	}

	suggestions, err := s.improver.ImproveTitles(ctx, payload.ChannelName, originals)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, stageName, "improve titles",
			"Error calling Gemini API", err)
	}

	improved := make([]jobs.ImprovedTitle, len(suggestions))
	for i, suggestion := range suggestions {
		improved[i] = jobs.ImprovedTitle{
			Original:  suggestion.Original,
			Improved:  suggestion.Improved,
			Rationale: suggestion.Rationale,
			URL:       payload.Videos[i].URL,
		}
	}

	s.logger.Info("titles improved",
		logging.String(logging.FieldJobID, record.JobID),
		logging.Int("count", len(improved)))

	record.ImprovedTitles = improved

	return events.TitlesReady{
		JobRef:      payload.JobRef,
		ChannelName: payload.ChannelName,
		Titles:      improved,
	}, nil
}

// HealthCheck reports whether the model adapter is usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.improver.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(stageName, err.Error())
	}
	return stage.Healthy(stageName)
}
