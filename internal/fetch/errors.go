package fetch

import (
	"errors"
	"fmt"
)

// Common errors returned by fetchers.
var (
	// ErrNotFound indicates the source does not exist (HTTP 404 or missing file).
	ErrNotFound = errors.New("source not found")

	// ErrRateLimited indicates the remote host answered 429.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNetwork indicates a transport-level failure.
	ErrNetwork = errors.New("network error")
)

// HTTPError is a non-success response from a remote source.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound returns true if the error indicates a missing source.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429
	}
	return false
}
