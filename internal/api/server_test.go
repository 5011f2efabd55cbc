package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"titledoctor/internal/api"
	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/testsupport"
)

type capturedSubmits struct {
	mu     sync.Mutex
	events []events.JobSubmitted
}

func (c *capturedSubmits) record(ctx context.Context, event bus.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event.(events.JobSubmitted))
}

func (c *capturedSubmits) all() []events.JobSubmitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]events.JobSubmitted, len(c.events))
	copy(cp, c.events)
	return cp
}

func newTestServer(t *testing.T) (*httptest.Server, *jobs.Store, *bus.Router, *capturedSubmits) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	router := bus.NewRouter(nil)
	captured := &capturedSubmits{}
	router.Subscribe(events.TopicSubmit, captured.record)

	srv := api.NewServer(cfg, store, router, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store, router, captured
}

func postSubmit(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url+"/submit", "application/json", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("POST /submit: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubmitQueuesJobAndPublishes(t *testing.T) {
	ts, store, router, captured := newTestServer(t)

	resp := postSubmit(t, ts.URL, api.SubmitRequest{Channel: "@mkbhd", Email: "Viewer@Example.com"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var out api.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.JobID == "" {
		t.Fatalf("unexpected response: %+v", out)
	}

	record, err := store.Get(context.Background(), out.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil || record.Status != jobs.StatusQueued {
		t.Fatalf("job not queued: %+v", record)
	}
	if record.Email != "viewer@example.com" {
		t.Fatalf("email not normalized: %q", record.Email)
	}

	if !router.Drain(time.Second) {
		t.Fatal("router failed to drain")
	}
	published := captured.all()
	if len(published) != 1 {
		t.Fatalf("expected one submit event, got %d", len(published))
	}
	if published[0].JobID != out.JobID || published[0].Channel != "@mkbhd" {
		t.Fatalf("unexpected event: %+v", published[0])
	}
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	ts, _, _, captured := newTestServer(t)

	resp := postSubmit(t, ts.URL, api.SubmitRequest{Channel: "", Email: ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error != "Channel name and email are required" {
		t.Fatalf("unexpected error: %q", out.Error)
	}
	if len(captured.all()) != 0 {
		t.Fatal("no event should be published for a rejected submission")
	}
}

func TestSubmitRejectsInvalidEmail(t *testing.T) {
	ts, _, _, _ := newTestServer(t)

	for _, email := range []string{"not-an-email", "a@b", "a b@example.com", "a@example.c"} {
		resp := postSubmit(t, ts.URL, api.SubmitRequest{Channel: "@mkbhd", Email: email})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("email %q: unexpected status %d", email, resp.StatusCode)
		}
		var out struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if out.Error != "Invalid email" {
			t.Fatalf("email %q: unexpected error %q", email, out.Error)
		}
	}
}

func TestJobsEndpointsReturnViews(t *testing.T) {
	ts, store, _, _ := newTestServer(t)
	record := testsupport.NewJob(t, store, "@mkbhd", "viewer@example.com")

	resp, err := http.Get(ts.URL + "/api/jobs")
	if err != nil {
		t.Fatalf("GET /api/jobs: %v", err)
	}
	defer resp.Body.Close()
	var list api.JobListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].JobID != record.JobID {
		t.Fatalf("unexpected list: %+v", list.Jobs)
	}

	one, err := http.Get(ts.URL + "/api/jobs/" + record.JobID)
	if err != nil {
		t.Fatalf("GET /api/jobs/{id}: %v", err)
	}
	defer one.Body.Close()
	var detail api.JobResponse
	if err := json.NewDecoder(one.Body).Decode(&detail); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if detail.Job.Status != string(jobs.StatusQueued) {
		t.Fatalf("unexpected status: %q", detail.Job.Status)
	}

	missing, err := http.Get(ts.URL + "/api/jobs/nope")
	if err != nil {
		t.Fatalf("GET missing job: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status for missing job: %d", missing.StatusCode)
	}
}

func TestHealthzReportsOK(t *testing.T) {
	ts, _, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestClientRoundTrip(t *testing.T) {
	ts, _, _, _ := newTestServer(t)
	client := api.NewClient(ts.URL)

	out, err := client.Submit(context.Background(), "@mkbhd", "viewer@example.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.JobID == "" {
		t.Fatalf("missing job id: %+v", out)
	}

	views, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 job, got %d", len(views))
	}

	job, err := client.Job(context.Background(), out.JobID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.JobID != out.JobID {
		t.Fatalf("unexpected job: %+v", job)
	}

	if _, err := client.Submit(context.Background(), "", ""); err == nil {
		t.Fatal("expected validation error from client")
	}
}
