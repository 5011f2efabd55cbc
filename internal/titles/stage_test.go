package titles_test

import (
	"context"
	"errors"
	"testing"

	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/services"
	"titledoctor/internal/services/llm"
	"titledoctor/internal/titles"
)

type fakeImprover struct {
	suggestions []llm.TitleSuggestion
	err         error
	gotChannel  string
	gotTitles   []string
}

func (f *fakeImprover) ImproveTitles(ctx context.Context, channelName string, titleList []string) ([]llm.TitleSuggestion, error) {
	f.gotChannel = channelName
	f.gotTitles = titleList
	return f.suggestions, f.err
}

func (f *fakeImprover) HealthCheck(ctx context.Context) error { return nil }

func retrieved() events.VideosRetrieved {
	return events.VideosRetrieved{
		JobRef:      events.JobRef{JobID: "job-1", Email: "viewer@example.com"},
		ChannelID:   "UC1",
		ChannelName: "MKBHD",
		Videos: []jobs.Video{
			{VideoID: "v1", Title: "old one", URL: "https://www.youtube.com/watch?v=v1"},
			{VideoID: "v2", Title: "old two", URL: "https://www.youtube.com/watch?v=v2"},
		},
	}
}

func TestExecutePairsSuggestionsWithVideoURLs(t *testing.T) {
	improver := &fakeImprover{suggestions: []llm.TitleSuggestion{
		{Original: "old one", Improved: "New One", Rationale: "clearer"},
		{Original: "old two", Improved: "New Two", Rationale: "punchier"},
	}}
	s := titles.New(improver, nil)
	record := &jobs.Record{JobID: "job-1", Status: jobs.StatusRefactoringTitles}

	next, err := s.Execute(context.Background(), record, retrieved())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	ready, ok := next.(events.TitlesReady)
	if !ok {
		t.Fatalf("unexpected event type %T", next)
	}
	if len(ready.Titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(ready.Titles))
	}
	if ready.Titles[0].URL != "https://www.youtube.com/watch?v=v1" {
		t.Fatalf("url not paired from input video: %+v", ready.Titles[0])
	}
	if ready.Titles[1].Improved != "New Two" {
		t.Fatalf("unexpected suggestion: %+v", ready.Titles[1])
	}
	if improver.gotChannel != "MKBHD" {
		t.Fatalf("unexpected channel: %q", improver.gotChannel)
	}
	if len(improver.gotTitles) != 2 || improver.gotTitles[0] != "old one" {
		t.Fatalf("unexpected titles sent to model: %v", improver.gotTitles)
	}
	if len(record.ImprovedTitles) != 2 {
		t.Fatalf("record not updated: %+v", record.ImprovedTitles)
	}
}

func TestExecuteMapsModelFailure(t *testing.T) {
	s := titles.New(&fakeImprover{err: errors.New("http 429")}, nil)

	_, err := s.Execute(context.Background(), &jobs.Record{JobID: "job-1"}, retrieved())
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream marker, got %v", err)
	}
	if msg := services.Message(err); msg != "Error calling Gemini API" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestExecuteRejectsEmptyVideoList(t *testing.T) {
	s := titles.New(&fakeImprover{}, nil)
	payload := retrieved()
	payload.Videos = nil

	_, err := s.Execute(context.Background(), &jobs.Record{JobID: "job-1"}, payload)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
