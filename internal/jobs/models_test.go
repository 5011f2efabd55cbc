package jobs_test

import (
	"testing"

	"titledoctor/internal/jobs"
)

func TestParseStatus(t *testing.T) {
	status, ok := jobs.ParseStatus("  Resolving Channel ")
	if !ok || status != jobs.StatusResolvingChannel {
		t.Fatalf("unexpected parse result: %v %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("nonsense"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
	if _, ok := jobs.ParseStatus(""); ok {
		t.Fatal("expected empty status to fail parsing")
	}
}

func TestTransitionHappyPath(t *testing.T) {
	record := &jobs.Record{Status: jobs.StatusQueued}
	path := []jobs.Status{
		jobs.StatusResolvingChannel,
		jobs.StatusChannelResolved,
		jobs.StatusRetrievingVideos,
		jobs.StatusVideosRetrieved,
		jobs.StatusRefactoringTitles,
		jobs.StatusTitlesRefactored,
		jobs.StatusSendingEmail,
		jobs.StatusCompleted,
	}
	for _, target := range path {
		if !record.Transition(target) {
			t.Fatalf("transition to %q refused from %q", target, record.Status)
		}
	}
	if !record.IsTerminal() {
		t.Fatal("expected completed record to be terminal")
	}
	if record.CompletedAt == nil {
		t.Fatal("expected completion timestamp to be set")
	}
}

func TestTransitionRefusesSkippedStage(t *testing.T) {
	record := &jobs.Record{Status: jobs.StatusQueued}
	if record.Transition(jobs.StatusRetrievingVideos) {
		t.Fatal("expected queued record to refuse video retrieval")
	}
	if record.Status != jobs.StatusQueued {
		t.Fatalf("status mutated on refused transition: %q", record.Status)
	}
}

func TestTransitionAllowsRedelivery(t *testing.T) {
	record := &jobs.Record{Status: jobs.StatusChannelResolved}
	if !record.Transition(jobs.StatusResolvingChannel) {
		t.Fatal("expected resolved record to accept a rerun of channel resolution")
	}
}

func TestTerminalRefusesEverything(t *testing.T) {
	record := &jobs.Record{Status: jobs.StatusFailed}
	for _, target := range jobs.AllStatuses() {
		if record.CanTransition(target) {
			t.Fatalf("failed record accepted transition to %q", target)
		}
	}

	completed := &jobs.Record{Status: jobs.StatusCompleted}
	if completed.CanTransition(jobs.StatusSendingEmail) {
		t.Fatal("completed record accepted transition back to sending email")
	}
	if completed.CanTransition(jobs.StatusFailed) {
		t.Fatal("completed record accepted transition to failed")
	}
}

func TestSetFailed(t *testing.T) {
	record := &jobs.Record{Status: jobs.StatusRetrievingVideos}
	record.SetFailed("No videos found")
	if record.Status != jobs.StatusFailed {
		t.Fatalf("unexpected status: %q", record.Status)
	}
	if record.ErrorMessage != "No videos found" {
		t.Fatalf("unexpected error message: %q", record.ErrorMessage)
	}
}

func TestIsProcessing(t *testing.T) {
	for _, status := range []jobs.Status{
		jobs.StatusResolvingChannel,
		jobs.StatusRetrievingVideos,
		jobs.StatusRefactoringTitles,
		jobs.StatusSendingEmail,
	} {
		if !jobs.IsProcessingStatus(status) {
			t.Fatalf("expected %q to be a processing status", status)
		}
	}
	if jobs.IsProcessingStatus(jobs.StatusQueued) {
		t.Fatal("queued is not a processing status")
	}
}
