package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline job.
type Status string

const (
	StatusQueued            Status = "queued"
	StatusResolvingChannel  Status = "resolving channel"
	StatusChannelResolved   Status = "channel resolved"
	StatusRetrievingVideos  Status = "retrieving videos"
	StatusVideosRetrieved   Status = "videos retrieved"
	StatusRefactoringTitles Status = "refactoring titles"
	StatusTitlesRefactored  Status = "titles refactored"
	StatusSendingEmail      Status = "sending email"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusResolvingChannel,
	StatusChannelResolved,
	StatusRetrievingVideos,
	StatusVideosRetrieved,
	StatusRefactoringTitles,
	StatusTitlesRefactored,
	StatusSendingEmail,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusResolvingChannel:  {},
	StatusRetrievingVideos:  {},
	StatusRefactoringTitles: {},
	StatusSendingEmail:      {},
}

// allowedTransitions maps a target status to the set of statuses a record may
// hold when the transition is requested. Each in-flight status is reachable
// from the previous stage's done status and from its own done status, which
// lets a redelivered trigger event rerun a stage that already finished.
var allowedTransitions = map[Status][]Status{
	StatusResolvingChannel:  {StatusQueued, StatusChannelResolved},
	StatusChannelResolved:   {StatusResolvingChannel},
	StatusRetrievingVideos:  {StatusChannelResolved, StatusVideosRetrieved},
	StatusVideosRetrieved:   {StatusRetrievingVideos},
	StatusRefactoringTitles: {StatusVideosRetrieved, StatusTitlesRefactored},
	StatusTitlesRefactored:  {StatusRefactoringTitles},
	StatusSendingEmail:      {StatusTitlesRefactored},
	StatusCompleted:         {StatusSendingEmail},
}

// Video is one recent upload returned by the video listing stage.
type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// ImprovedTitle pairs an original upload title with its rewritten form.
type ImprovedTitle struct {
	Original  string `json:"original"`
	Improved  string `json:"improved"`
	Rationale string `json:"rationale,omitempty"`
	URL       string `json:"url"`
}

// Record is the durable state of one pipeline job persisted in SQLite.
type Record struct {
	JobID          string
	Channel        string
	Email          string
	Status         Status
	ChannelID      string
	ChannelName    string
	Videos         []Video
	ImprovedTitles []ImprovedTitle
	ErrorMessage   string
	DeliveryID     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Completed  int
	Failed     int
}

// DatabaseHealth captures diagnostic information about the jobs database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the job's lifecycle.
func IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsProcessing returns true when the record is inside an in-flight stage.
func (r Record) IsProcessing() bool {
	return IsProcessingStatus(r.Status)
}

// IsTerminal returns true when the record has completed or failed.
func (r Record) IsTerminal() bool {
	return IsTerminal(r.Status)
}

// CanTransition reports whether the record may move to the target status.
// Terminal records refuse every transition.
func (r Record) CanTransition(target Status) bool {
	if r.IsTerminal() {
		return false
	}
	if target == StatusFailed {
		return true
	}
	for _, from := range allowedTransitions[target] {
		if r.Status == from {
			return true
		}
	}
	return false
}

// Transition moves the record to the target status when the move is legal and
// reports whether the move happened.
func (r *Record) Transition(target Status) bool {
	if !r.CanTransition(target) {
		return false
	}
	r.Status = target
	if target == StatusCompleted {
		now := time.Now().UTC()
		r.CompletedAt = &now
	}
	return true
}

// SetFailed marks the record as failed with the given error message.
func (r *Record) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
}
