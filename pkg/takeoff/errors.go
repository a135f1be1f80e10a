package takeoff

import (
	"fmt"
	"time"
)

// FetchError represents a failed snapshot pull after all retries were
// exhausted, or a permanent rejection that retrying cannot fix.
type FetchError struct {
	// StatusCode is the last HTTP status received (0 for transport errors)
	StatusCode int

	// Attempts is the number of requests made before giving up
	Attempts int

	// Message describes the failure
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("takeoff fetch failed (status %d, %d attempts): %s", e.StatusCode, e.Attempts, e.Message)
	}
	return fmt.Sprintf("takeoff fetch failed (%d attempts): %s", e.Attempts, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a fetch that exceeded the configured timeout.
type TimeoutError struct {
	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("takeoff fetch timed out after %s", e.Timeout)
}

// ParseError represents a malformed snapshot response body.
type ParseError struct {
	// Cause is the underlying decode error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("takeoff response parse error: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
