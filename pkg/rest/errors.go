package rest

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is wrapped by errors returned while the circuit breaker rejects calls
var ErrCircuitOpen = errors.New("circuit breaker open")

// HTTPError represents a response with a status code outside the accepted set
type HTTPError struct {
	Method     string `json:"method"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d:%s", e.StatusCode, e.Body)
}

// NotFoundError is returned for 404 responses; callers usually skip the resource
type NotFoundError struct {
	*HTTPError
}

// Unwrap exposes the underlying HTTP error
func (e *NotFoundError) Unwrap() error {
	return e.HTTPError
}

// AuthenticationError is returned when the service keeps refusing the credentials
// after one token renewal, or when a renewal is impossible or fails
type AuthenticationError struct {
	URL     string
	Renewed bool
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Renewed {
		return fmt.Sprintf("authentication failed for %s after token renewal: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("authentication failed for %s: %v", e.URL, e.Err)
}

// Unwrap returns the cause
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// TransientServerError is returned once the retry budget is exhausted on 5xx
// responses or network failures
type TransientServerError struct {
	Method     string
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *TransientServerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed after %d attempts with status %d: %v", e.Method, e.URL, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
}

// Unwrap returns the last failure
func (e *TransientServerError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StatusCode extracts the HTTP status code carried by err, or 0
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	var transient *TransientServerError
	if errors.As(err, &transient) {
		return transient.StatusCode
	}
	return 0
}
