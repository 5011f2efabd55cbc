package api

import (
	"time"

	"titledoctor/internal/jobs"
	"titledoctor/internal/stage"
)

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	Channel string `json:"channel"`
	Email   string `json:"email"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

// JobView is the API representation of one job record.
type JobView struct {
	JobID          string               `json:"jobId"`
	Channel        string               `json:"channel"`
	Email          string               `json:"email"`
	Status         string               `json:"status"`
	ChannelID      string               `json:"channelId,omitempty"`
	ChannelName    string               `json:"channelName,omitempty"`
	Videos         []jobs.Video         `json:"videos,omitempty"`
	ImprovedTitles []jobs.ImprovedTitle `json:"improvedTitles,omitempty"`
	ErrorMessage   string               `json:"error,omitempty"`
	DeliveryID     string               `json:"deliveryId,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	CompletedAt    *time.Time           `json:"completedAt,omitempty"`
}

// JobListResponse wraps GET /api/jobs.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// JobResponse wraps GET /api/jobs/{id}.
type JobResponse struct {
	Job JobView `json:"job"`
}

// StageStatus reports one stage's readiness.
type StageStatus struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus wraps GET /api/status.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	JobsDBPath   string             `json:"jobsDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	Summary      jobs.HealthSummary `json:"summary"`
	Stages       []StageStatus      `json:"stages"`
}

// FromRecord converts a stored job record to its API view.
func FromRecord(record *jobs.Record) JobView {
	return JobView{
		JobID:          record.JobID,
		Channel:        record.Channel,
		Email:          record.Email,
		Status:         string(record.Status),
		ChannelID:      record.ChannelID,
		ChannelName:    record.ChannelName,
		Videos:         record.Videos,
		ImprovedTitles: record.ImprovedTitles,
		ErrorMessage:   record.ErrorMessage,
		DeliveryID:     record.DeliveryID,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
		CompletedAt:    record.CompletedAt,
	}
}

// FromHealth converts stage health checks to their API view.
func FromHealth(checks []stage.Health) []StageStatus {
	out := make([]StageStatus, 0, len(checks))
	for _, check := range checks {
		out = append(out, StageStatus{Name: check.Name, Ready: check.Ready, Detail: check.Detail})
	}
	return out
}
