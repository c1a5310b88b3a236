package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned by authenticated calls when no access token is stored.
// No request is sent in that case.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a request the service received, understood and refused
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`

	// FieldErrors holds per-field messages keyed by the service's field names.
	FieldErrors    map[string][]string `json:"field_errors,omitempty"`
	NonFieldErrors []string            `json:"non_field_errors,omitempty"`
	Detail         string              `json:"detail,omitempty"`
	// Invalid lists field names the service flagged without a message.
	Invalid []string `json:"invalid,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the service rejected the credentials attached to the request
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Fields returns every field name implicated by the rejection
func (e *APIError) Fields() []string {
	seen := make(map[string]bool)
	fields := make([]string, 0, len(e.FieldErrors)+len(e.Invalid))
	for name := range e.FieldErrors {
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	for _, name := range e.Invalid {
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	return fields
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsAuthError checks if the error is an authentication error
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Unauthorized()
	}
	return false
}

// NetworkError means the service could not be reached or its answer could not be read
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewMultiError creates a new multi-error
func NewMultiError() *MultiError {
	return &MultiError{
		Errors: make([]error, 0),
	}
}
