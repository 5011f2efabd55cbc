package jobs_test

import (
	"context"
	"testing"
	"time"

	"titledoctor/internal/jobs"
	"titledoctor/internal/testsupport"
)

func TestNewJobNormalizesEmail(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	record, err := store.NewJob(context.Background(), "@MrBeast", "Viewer@Example.COM")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if record.JobID == "" {
		t.Fatal("expected a generated job id")
	}
	if record.Status != jobs.StatusQueued {
		t.Fatalf("unexpected status: %q", record.Status)
	}
	if record.Email != "viewer@example.com" {
		t.Fatalf("email not normalized: %q", record.Email)
	}
	if record.Channel != "@MrBeast" {
		t.Fatalf("unexpected channel: %q", record.Channel)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	record, err := store.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestUpdateRoundTripsJSONFields(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	record := testsupport.NewJob(t, store, "@veritasium", "fan@example.com")

	record.Status = jobs.StatusVideosRetrieved
	record.ChannelID = "UC123"
	record.ChannelName = "Veritasium"
	record.Videos = []jobs.Video{
		{VideoID: "abc", Title: "Old Title", URL: "https://www.youtube.com/watch?v=abc", PublishedAt: "2026-08-01T00:00:00Z"},
		{VideoID: "def", Title: "Other Title", URL: "https://www.youtube.com/watch?v=def", PublishedAt: "2026-08-02T00:00:00Z"},
	}
	record.ImprovedTitles = []jobs.ImprovedTitle{
		{Original: "Old Title", Improved: "A Sharper Title", URL: "https://www.youtube.com/watch?v=abc"},
	}
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := store.Get(ctx, record.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected record to exist")
	}
	if loaded.Status != jobs.StatusVideosRetrieved {
		t.Fatalf("unexpected status: %q", loaded.Status)
	}
	if len(loaded.Videos) != 2 || loaded.Videos[0].VideoID != "abc" {
		t.Fatalf("videos did not round-trip: %+v", loaded.Videos)
	}
	if len(loaded.ImprovedTitles) != 1 || loaded.ImprovedTitles[0].Improved != "A Sharper Title" {
		t.Fatalf("titles did not round-trip: %+v", loaded.ImprovedTitles)
	}
	if loaded.ChannelName != "Veritasium" {
		t.Fatalf("unexpected channel name: %q", loaded.ChannelName)
	}
}

func TestUpdatePersistsCompletion(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	record := testsupport.NewJob(t, store, "@mkbhd", "fan@example.com")

	completed := time.Now().UTC().Truncate(time.Millisecond)
	record.Status = jobs.StatusCompleted
	record.DeliveryID = "re_123"
	record.CompletedAt = &completed
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := store.Get(ctx, record.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.CompletedAt == nil || !loaded.CompletedAt.Equal(completed) {
		t.Fatalf("completion timestamp did not round-trip: %v", loaded.CompletedAt)
	}
	if loaded.DeliveryID != "re_123" {
		t.Fatalf("unexpected delivery id: %q", loaded.DeliveryID)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	queued := testsupport.NewJob(t, store, "@a", "a@example.com")
	failed := testsupport.NewJob(t, store, "@b", "b@example.com")
	failed.SetFailed("No channel found")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}

	failures, err := store.List(ctx, jobs.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failures) != 1 || failures[0].JobID != failed.JobID {
		t.Fatalf("unexpected failure list: %+v", failures)
	}
	if failures[0].ErrorMessage != "No channel found" {
		t.Fatalf("unexpected error message: %q", failures[0].ErrorMessage)
	}

	queuedOnly, err := store.List(ctx, jobs.StatusQueued)
	if err != nil {
		t.Fatalf("List queued: %v", err)
	}
	if len(queuedOnly) != 1 || queuedOnly[0].JobID != queued.JobID {
		t.Fatalf("unexpected queued list: %+v", queuedOnly)
	}
}

func TestSummaryCountsLifecycleBuckets(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	testsupport.NewJob(t, store, "@a", "a@example.com")
	processing := testsupport.NewJob(t, store, "@b", "b@example.com")
	processing.Status = jobs.StatusRefactoringTitles
	if err := store.Update(ctx, processing); err != nil {
		t.Fatalf("Update: %v", err)
	}
	done := testsupport.NewJob(t, store, "@c", "c@example.com")
	done.Status = jobs.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Total != 3 || summary.Queued != 1 || summary.Processing != 1 || summary.Completed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestClearCompletedOnly(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	testsupport.NewJob(t, store, "@a", "a@example.com")
	done := testsupport.NewJob(t, store, "@b", "b@example.com")
	done.Status = jobs.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.Clear(ctx, true)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Status != jobs.StatusQueued {
		t.Fatalf("unexpected remaining records: %+v", remaining)
	}
}

func TestHealthReportsDatabaseState(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.NewJob(t, store, "@a", "a@example.com")

	health := store.Health(context.Background())
	if !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health: %+v", health)
	}
	if health.TotalJobs != 1 {
		t.Fatalf("expected 1 job, got %d", health.TotalJobs)
	}
}
