// Package errors defines typed application errors matching the failure
// taxonomy: hard upstream failures, best-effort failures treated as absence,
// resolution exhaustion, and corrupt stored state.
package errors

import (
	"fmt"
)

// AppError carries an error classification alongside the underlying cause.
type AppError struct {
	Type    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error type constants
const (
	ErrorTypeUpstreamFailure   = "UPSTREAM_FAILURE"
	ErrorTypeAPIKeyMissing     = "API_KEY_MISSING"
	ErrorTypeNoStreamID        = "NO_STREAM_ID"
	ErrorTypeGenreMapPending   = "GENRE_MAP_PENDING"
	ErrorTypeCorruptState      = "CORRUPT_STATE"
	ErrorTypeInvalidID         = "INVALID_ID"
	ErrorTypeResolveSuperseded = "RESOLVE_SUPERSEDED"
)

// New creates a new AppError.
func New(errorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewUpstreamError classifies a hard failure of a required upstream call.
func NewUpstreamError(message string, cause error) *AppError {
	return New(ErrorTypeUpstreamFailure, message, cause)
}

// NewAPIKeyMissingError reports a missing API key for the named service.
func NewAPIKeyMissingError(service string) *AppError {
	return New(ErrorTypeAPIKeyMissing, fmt.Sprintf("API key missing for %s", service), nil)
}

// NewNoStreamIDError reports resolution-cascade exhaustion for a title.
func NewNoStreamIDError(title string) *AppError {
	return New(ErrorTypeNoStreamID, fmt.Sprintf("could not find a reliable streaming ID for %q", title), nil)
}

// NewInvalidIDError reports a malformed catalog item id.
func NewInvalidIDError(id string) *AppError {
	return New(ErrorTypeInvalidID, fmt.Sprintf("invalid ID format: %s", id), nil)
}
