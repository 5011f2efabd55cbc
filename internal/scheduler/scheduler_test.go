package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"titledoctor/internal/scheduler"
	"titledoctor/internal/testsupport"
)

type submitRecorder struct {
	mu    sync.Mutex
	calls [][2]string
	err   error
}

func (r *submitRecorder) submit(ctx context.Context, channel, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [2]string{channel, email})
	return r.err
}

func (r *submitRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestRunSubmitsConfiguredPair(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAutomation("0 0 * * *", "@mkbhd", "viewer@example.com"))
	recorder := &submitRecorder{}
	sched := scheduler.New(cfg, recorder.submit, nil)

	if !sched.Enabled() {
		t.Fatal("scheduler should be enabled")
	}
	if err := sched.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if recorder.count() != 1 {
		t.Fatalf("expected one submission, got %d", recorder.count())
	}
	if recorder.calls[0] != [2]string{"@mkbhd", "viewer@example.com"} {
		t.Fatalf("unexpected submission: %v", recorder.calls[0])
	}
}

func TestRunPropagatesSubmitError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAutomation("0 0 * * *", "@mkbhd", "viewer@example.com"))
	recorder := &submitRecorder{err: errors.New("store offline")}
	sched := scheduler.New(cfg, recorder.submit, nil)

	if err := sched.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run")
	}
}

func TestStartIsNoopWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	recorder := &submitRecorder{}
	sched := scheduler.New(cfg, recorder.submit, nil)

	if sched.Enabled() {
		t.Fatal("scheduler should be disabled by default")
	}
	if err := sched.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.Stop()
	if recorder.count() != 0 {
		t.Fatalf("no submissions expected, got %d", recorder.count())
	}
}

func TestStartRejectsMalformedSchedule(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAutomation("not a cron expr", "@mkbhd", "viewer@example.com"))
	sched := scheduler.New(cfg, (&submitRecorder{}).submit, nil)

	if err := sched.Start(); err == nil {
		t.Fatal("expected error for malformed schedule")
	}
}
