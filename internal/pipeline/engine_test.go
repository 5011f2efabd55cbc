package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"titledoctor/internal/bus"
	"titledoctor/internal/errnotify"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/pipeline"
	"titledoctor/internal/report"
	"titledoctor/internal/resolve"
	"titledoctor/internal/services/llm"
	"titledoctor/internal/services/youtube"
	"titledoctor/internal/testsupport"
	"titledoctor/internal/titles"
	"titledoctor/internal/videos"
)

type fakeBackends struct {
	mu sync.Mutex

	channel    youtube.Channel
	channelErr error

	videos    []youtube.Video
	videosErr error

	suggestions []llm.TitleSuggestion
	improveErr  error

	reportID      string
	reportErr     error
	reportCount   int
	failureCount  int
	lastFailure   string
	lastRecipient string
}

func (f *fakeBackends) SearchChannel(ctx context.Context, query string) (youtube.Channel, error) {
	return f.channel, f.channelErr
}

func (f *fakeBackends) ListRecent(ctx context.Context, channelID string) ([]youtube.Video, error) {
	return f.videos, f.videosErr
}

func (f *fakeBackends) ImproveTitles(ctx context.Context, channelName string, titleList []string) ([]llm.TitleSuggestion, error) {
	return f.suggestions, f.improveErr
}

func (f *fakeBackends) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeBackends) NotifyReport(ctx context.Context, to, channelName string, improved []jobs.ImprovedTitle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportCount++
	f.lastRecipient = to
	return f.reportID, f.reportErr
}

func (f *fakeBackends) NotifyFailure(ctx context.Context, to, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failureCount++
	f.lastRecipient = to
	f.lastFailure = message
	return "re_failure", nil
}

func happyBackends() *fakeBackends {
	return &fakeBackends{
		channel: youtube.Channel{ID: "UC1", Name: "MKBHD"},
		videos: []youtube.Video{
			{VideoID: "v1", Title: "old one", URL: "https://www.youtube.com/watch?v=v1", PublishedAt: "2026-08-30T00:00:00Z"},
			{VideoID: "v2", Title: "old two", URL: "https://www.youtube.com/watch?v=v2", PublishedAt: "2026-08-29T00:00:00Z"},
		},
		suggestions: []llm.TitleSuggestion{
			{Original: "old one", Improved: "New One", Rationale: "clearer"},
			{Original: "old two", Improved: "New Two", Rationale: "punchier"},
		},
		reportID: "re_report",
	}
}

func newPipeline(t *testing.T, backends *fakeBackends) (*jobs.Store, *bus.Router) {
	t.Helper()

	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	router := bus.NewRouter(nil)

	engine := pipeline.New(store, router, nil)
	engine.Register(
		resolve.New(backends, nil),
		videos.New(backends, nil),
		titles.New(backends, nil),
		report.New(backends, nil),
	)
	engine.Start(context.Background())
	errnotify.New(backends, router, nil).Start()

	return store, router
}

func submitJob(t *testing.T, store *jobs.Store, router *bus.Router, channel string) *jobs.Record {
	t.Helper()

	record, err := store.NewJob(context.Background(), channel, "viewer@example.com")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	submitted := events.JobSubmitted{
		JobRef:  events.JobRef{JobID: record.JobID, Email: record.Email},
		Channel: record.Channel,
	}
	if err := router.Publish(context.Background(), submitted); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	return record
}

func TestPipelineCompletesEndToEnd(t *testing.T) {
	backends := happyBackends()
	store, router := newPipeline(t, backends)

	record := submitJob(t, store, router, "@mkbhd")
	if !router.Drain(5 * time.Second) {
		t.Fatal("pipeline failed to drain")
	}

	final, err := store.Get(context.Background(), record.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed job, got %q (error %q)", final.Status, final.ErrorMessage)
	}
	if final.ChannelID != "UC1" || final.ChannelName != "MKBHD" {
		t.Fatalf("channel fields not persisted: %+v", final)
	}
	if len(final.Videos) != 2 || len(final.ImprovedTitles) != 2 {
		t.Fatalf("pipeline data not persisted: videos=%d titles=%d", len(final.Videos), len(final.ImprovedTitles))
	}
	if final.ImprovedTitles[0].URL != "https://www.youtube.com/watch?v=v1" {
		t.Fatalf("title url not paired: %+v", final.ImprovedTitles[0])
	}
	if final.DeliveryID != "re_report" {
		t.Fatalf("delivery id not persisted: %q", final.DeliveryID)
	}
	if final.CompletedAt == nil {
		t.Fatal("completion timestamp missing")
	}
	if backends.reportCount != 1 {
		t.Fatalf("expected one report email, got %d", backends.reportCount)
	}
	if backends.failureCount != 0 {
		t.Fatalf("expected no failure emails, got %d", backends.failureCount)
	}
}

func TestPipelineFailsJobAndNotifiesOnce(t *testing.T) {
	backends := happyBackends()
	backends.videosErr = youtube.ErrNoVideos
	store, router := newPipeline(t, backends)

	record := submitJob(t, store, router, "@mkbhd")
	if !router.Drain(5 * time.Second) {
		t.Fatal("pipeline failed to drain")
	}

	final, err := store.Get(context.Background(), record.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != jobs.StatusFailed {
		t.Fatalf("expected failed job, got %q", final.Status)
	}
	if final.ErrorMessage != "No videos found" {
		t.Fatalf("unexpected error message: %q", final.ErrorMessage)
	}
	if backends.failureCount != 1 {
		t.Fatalf("expected exactly one failure email, got %d", backends.failureCount)
	}
	if backends.lastFailure != "No videos found" {
		t.Fatalf("unexpected failure message: %q", backends.lastFailure)
	}
	if backends.lastRecipient != "viewer@example.com" {
		t.Fatalf("unexpected recipient: %q", backends.lastRecipient)
	}
	if backends.reportCount != 0 {
		t.Fatalf("expected no report email, got %d", backends.reportCount)
	}
}

func TestPipelineIgnoresUnknownJob(t *testing.T) {
	backends := happyBackends()
	_, router := newPipeline(t, backends)

	submitted := events.JobSubmitted{
		JobRef:  events.JobRef{JobID: "missing", Email: "viewer@example.com"},
		Channel: "@mkbhd",
	}
	if err := router.Publish(context.Background(), submitted); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !router.Drain(5 * time.Second) {
		t.Fatal("pipeline failed to drain")
	}

	if backends.reportCount != 0 || backends.failureCount != 0 {
		t.Fatalf("expected no emails for unknown job, got report=%d failure=%d",
			backends.reportCount, backends.failureCount)
	}
}

func TestPipelineRefusesRedeliveryAfterCompletion(t *testing.T) {
	backends := happyBackends()
	store, router := newPipeline(t, backends)

	record := submitJob(t, store, router, "@mkbhd")
	if !router.Drain(5 * time.Second) {
		t.Fatal("pipeline failed to drain")
	}

	// Redeliver the original trigger after the job reached a terminal state.
	submitted := events.JobSubmitted{
		JobRef:  events.JobRef{JobID: record.JobID, Email: record.Email},
		Channel: record.Channel,
	}
	if err := router.Publish(context.Background(), submitted); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !router.Drain(5 * time.Second) {
		t.Fatal("pipeline failed to drain")
	}

	final, err := store.Get(context.Background(), record.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("terminal job mutated by redelivery: %q", final.Status)
	}
	if backends.reportCount != 1 {
		t.Fatalf("expected one report email after redelivery, got %d", backends.reportCount)
	}
}

func TestPipelineEmailFailureRoutesToErrorHandler(t *testing.T) {
	backends := happyBackends()
	backends.reportErr = contextErr("smtp down")
	store, router := newPipeline(t, backends)

	record := submitJob(t, store, router, "@mkbhd")
	if !router.Drain(5 * time.Second) {
		t.Fatal("pipeline failed to drain")
	}

	final, err := store.Get(context.Background(), record.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != jobs.StatusFailed {
		t.Fatalf("expected failed job, got %q", final.Status)
	}
	if final.ErrorMessage != "Error sending email" {
		t.Fatalf("unexpected error message: %q", final.ErrorMessage)
	}
	if backends.failureCount != 1 {
		t.Fatalf("expected one failure email, got %d", backends.failureCount)
	}
}

type contextErr string

func (e contextErr) Error() string { return string(e) }
