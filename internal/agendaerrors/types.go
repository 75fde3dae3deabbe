// Package agendaerrors defines the typed error taxonomy of the agenda
// engine. Every collaborator failure is converted to one of these types at
// the component boundary; no raw transport error crosses into the
// orchestration layer.
package agendaerrors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ExtractionUnavailableError reports that the extraction service was
// unreachable or its output unusable. It is never fatal: the draft builder
// converts it into an empty-but-valid draft with a single warning.
type ExtractionUnavailableError struct {
	Err error
}

func (e *ExtractionUnavailableError) Error() string {
	return fmt.Sprintf("extraction service unavailable: %v", e.Err)
}

func (e *ExtractionUnavailableError) Unwrap() error {
	return e.Err
}

// EventNotFoundError reports that an update or cancel operation could not
// locate its target event. Fatal for that operation; the draft is preserved
// so the caller can correct and retry.
type EventNotFoundError struct {
	EventID string
	Reason  string
}

func (e *EventNotFoundError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("event %s not found: %s", e.EventID, e.Reason)
	}
	return fmt.Sprintf("event not found: %s", e.Reason)
}

// CommitFailureError carries the upstream status and body of a failed
// create/update/cancel mutation. The gateway never retries; manual retry is
// a caller decision.
type CommitFailureError struct {
	Operation  string // create, update, cancel
	StatusCode int
	Body       string
	Err        error
}

func (e *CommitFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("calendar %s failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *CommitFailureError) Unwrap() error {
	return e.Err
}

// DirectoryUnavailableError reports that the contact directory snapshot
// could not be fetched. The builder degrades to an empty directory.
type DirectoryUnavailableError struct {
	Err error
}

func (e *DirectoryUnavailableError) Error() string {
	return fmt.Sprintf("contact directory unavailable: %v", e.Err)
}

func (e *DirectoryUnavailableError) Unwrap() error {
	return e.Err
}

// IsExtractionUnavailable reports whether err wraps an ExtractionUnavailableError.
func IsExtractionUnavailable(err error) bool {
	var target *ExtractionUnavailableError
	return errors.As(err, &target)
}

// IsEventNotFound reports whether err wraps an EventNotFoundError.
func IsEventNotFound(err error) bool {
	var target *EventNotFoundError
	return errors.As(err, &target)
}

// IsCommitFailure reports whether err wraps a CommitFailureError.
func IsCommitFailure(err error) bool {
	var target *CommitFailureError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is a deadline or network timeout. The
// availability resolver counts these as conflicts rather than aborting.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
