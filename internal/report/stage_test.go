package report_test

import (
	"context"
	"errors"
	"testing"

	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/report"
	"titledoctor/internal/services"
)

type fakeNotifier struct {
	deliveryID string
	err        error
	gotTo      string
	gotChannel string
	gotTitles  []jobs.ImprovedTitle
}

func (f *fakeNotifier) NotifyReport(ctx context.Context, to, channelName string, titles []jobs.ImprovedTitle) (string, error) {
	f.gotTo = to
	f.gotChannel = channelName
	f.gotTitles = titles
	return f.deliveryID, f.err
}

func (f *fakeNotifier) NotifyFailure(ctx context.Context, to, message string) (string, error) {
	return "", nil
}

func ready() events.TitlesReady {
	return events.TitlesReady{
		JobRef:      events.JobRef{JobID: "job-1", Email: "viewer@example.com"},
		ChannelName: "MKBHD",
		Titles: []jobs.ImprovedTitle{
			{Original: "old", Improved: "new", URL: "https://www.youtube.com/watch?v=v1"},
		},
	}
}

func TestExecuteSendsReportAndRecordsDelivery(t *testing.T) {
	notifier := &fakeNotifier{deliveryID: "re_123"}
	s := report.New(notifier, nil)
	record := &jobs.Record{JobID: "job-1", Status: jobs.StatusSendingEmail}

	next, err := s.Execute(context.Background(), record, ready())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	sent, ok := next.(events.EmailSent)
	if !ok {
		t.Fatalf("unexpected event type %T", next)
	}
	if sent.DeliveryID != "re_123" {
		t.Fatalf("unexpected delivery id: %q", sent.DeliveryID)
	}
	if record.DeliveryID != "re_123" {
		t.Fatalf("record not updated: %+v", record)
	}
	if notifier.gotTo != "viewer@example.com" || notifier.gotChannel != "MKBHD" {
		t.Fatalf("unexpected notification args: to=%q channel=%q", notifier.gotTo, notifier.gotChannel)
	}
	if len(notifier.gotTitles) != 1 {
		t.Fatalf("unexpected titles: %+v", notifier.gotTitles)
	}
}

func TestExecuteMapsDeliveryFailure(t *testing.T) {
	s := report.New(&fakeNotifier{err: errors.New("http 500")}, nil)

	_, err := s.Execute(context.Background(), &jobs.Record{JobID: "job-1"}, ready())
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream marker, got %v", err)
	}
	if msg := services.Message(err); msg != "Error sending email" {
		t.Fatalf("unexpected message: %q", msg)
	}
}
