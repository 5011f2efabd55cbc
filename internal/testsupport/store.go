package testsupport

import (
	"context"
	"testing"

	"titledoctor/internal/config"
	"titledoctor/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a queued job record for tests using the provided store.
func NewJob(t testing.TB, store *jobs.Store, channel, email string) *jobs.Record {
	t.Helper()

	record, err := store.NewJob(context.Background(), channel, email)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return record
}
