package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a missing or unusable credential/setting.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks an upstream call that returned zero usable items.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks a network or HTTP failure from a capability.
	ErrUpstream = errors.New("upstream error")
	// ErrBadResponse marks a malformed or unexpected capability payload.
	ErrBadResponse = errors.New("bad response")
	// ErrValidation marks input that a stage cannot act on.
	ErrValidation = errors.New("validation error")
)

// StageError carries the structured failure detail every stage reports through
// the uniform error protocol. Message is the user-facing text persisted to the
// job record and mailed by the error handler; Stage/Operation/Cause are
// diagnostic context for logs.
type StageError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Cause     error
}

func (e *StageError) Error() string {
	parts := make([]string, 0, 4)
	if e.Stage != "" {
		parts = append(parts, e.Stage)
	}
	if e.Operation != "" {
		parts = append(parts, e.Operation)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "service failure"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", detail, e.Cause)
	}
	return detail
}

func (e *StageError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Marker != nil {
		out = append(out, e.Marker)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// Wrap builds a StageError tagged with the provided marker for later
// classification. The marker should be one of the exported sentinels above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrUpstream
	}
	return &StageError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// Kind returns a short classification label for a stage error, used in
// structured logs and API payloads.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}

// Message extracts the user-facing failure message from a stage error. For
// wrapped stage errors this is the short message ("No videos found"), not the
// full diagnostic chain.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) && stageErr.Message != "" {
		return stageErr.Message
	}
	return strings.TrimSpace(err.Error())
}
