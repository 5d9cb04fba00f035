// Package errors provides standardized error handling for the fault
// lifecycle engine.
package errors

import (
	goerrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Malformed input reaching the core despite upstream form checks.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// State machine violations.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidPhase      ErrorCode = "INVALID_PHASE"

	// Act composition and archiving.
	ErrCodeCompositionFailed ErrorCode = "COMPOSITION_FAILED"
	ErrCodeEmptyArchive      ErrorCode = "EMPTY_ARCHIVE"

	// Persistence layer.
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"

	// One in-flight mutation per fault.
	ErrCodeOperationInFlight ErrorCode = "OPERATION_IN_FLIGHT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err is a *StandardError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	if goerrors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTransitionError creates a non-retryable state machine error.
// The fault is left unchanged.
func NewInvalidTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Requested status transition is not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPhaseError creates a non-retryable signing phase error.
// The fault is left unchanged.
func NewInvalidPhaseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPhase,
		Message:   "Signature capture violates the signing protocol",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompositionFailedError creates a retryable act composition error.
// The triggering signature write is preserved and the status transition
// withheld; re-invoking the capture re-attempts compositing.
func NewCompositionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompositionFailed,
		Message:   "Act snapshot could not be composed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyArchiveError reports an archive request over zero eligible
// faults. Informational outcome, not a failure.
func NewEmptyArchiveError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyArchive,
		Message:   "No completed acts eligible for archiving",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteFailedError creates a retryable persistence error.
func NewStoreWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Persistence layer rejected or failed to apply a write",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentNotFoundError creates a non-retryable lookup error.
func NewDocumentNotFoundError(collection, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentNotFound,
		Message:   "Document not found",
		Details:   fmt.Sprintf("collection: %s, id: %s", collection, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOperationInFlightError reports that another mutation of the same
// fault has not yet settled.
func NewOperationInFlightError(faultID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOperationInFlight,
		Message:   "Another operation on this fault is still in flight",
		Details:   fmt.Sprintf("faultId: %s", faultID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
