package unsplash

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRequestBlocked is returned when the rate limit gate refuses
	// to issue a request.
	ErrRequestBlocked = errors.New("request blocked: API budget exhausted")

	// ErrMissingAccessKey is returned by New when no access key is set.
	ErrMissingAccessKey = errors.New("access key is required")
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassValidation represents malformed or unparseable API
	// responses. Never retried: the same request would fail the same way.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 403 responses from an exhausted
	// request budget.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport-level errors. Transient;
	// the user's next action is the retry.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents a photo API error with additional context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsplash %s error (%s, status %d): %s: %v",
			e.ErrorClass, e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("unsplash %s error (%s, status %d): %s",
		e.ErrorClass, e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the error is a 404 for a missing resource.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// ValidationError indicates the API returned a response that failed
// schema validation. Surfaced to the user as a generic "try again
// later" state, never retried automatically.
type ValidationError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP error status for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 403:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
