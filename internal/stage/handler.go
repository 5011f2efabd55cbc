package stage

import (
	"context"

	"titledoctor/internal/bus"
	"titledoctor/internal/jobs"
)

// Handler describes the contract the pipeline engine needs from each stage.
//
// The engine owns the uniform stage protocol: it loads the job record,
// transitions it to ProcessingStatus, calls Execute, then transitions to
// DoneStatus and publishes the returned event. On failure it marks the job
// failed and publishes a failure event to ErrorTopic. Execute itself never
// touches job status and never publishes.
type Handler interface {
	// Name is the stage identifier used in logs and failure payloads.
	Name() string
	// Trigger is the topic whose events start this stage.
	Trigger() bus.Topic
	// ProcessingStatus is the job status while the stage runs.
	ProcessingStatus() jobs.Status
	// DoneStatus is the job status after the stage succeeds.
	DoneStatus() jobs.Status
	// ErrorTopic receives the failure event when Execute returns an error.
	ErrorTopic() bus.Topic
	// Execute performs the stage's work, mutating the record's data fields
	// and returning the success event for the next stage.
	Execute(ctx context.Context, record *jobs.Record, event bus.Event) (bus.Event, error)
	// HealthCheck reports whether the stage's dependencies are usable.
	HealthCheck(ctx context.Context) Health
}
