package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse signals an upstream payload missing its expected shape.
// Fan-out callers degrade to an empty record list instead of failing.
var ErrMalformedResponse = errors.New("malformed upstream response")

// TermNotFoundError reports a point lookup for an ontology term that resolved
// to nothing. Terminal for the lookup that raised it; a fan-out that only
// needed the term as one of several candidates skips it instead.
type TermNotFoundError struct {
	ID string `json:"id"`
}

// Error implements the error interface.
func (e *TermNotFoundError) Error() string {
	return fmt.Sprintf("ontology term not found: %s", e.ID)
}

// UpstreamError reports a non-2xx status or transport failure from an upstream
// API. It carries the offending URL and status so fan-out logs stay useful.
type UpstreamError struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("upstream request failed for %s: %s", e.URL, e.Message)
}

// ValidationError reports a missing or invalid request field. Surfaced to the
// caller immediately, never retried.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsTermNotFound reports whether err wraps a TermNotFoundError.
func IsTermNotFound(err error) bool {
	var tnf *TermNotFoundError
	return errors.As(err, &tnf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
