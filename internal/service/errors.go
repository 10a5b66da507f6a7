package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimeout is returned when a request did not finish within the client timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrNotLoggedIn is returned when no usable credentials are stored.
	ErrNotLoggedIn = errors.New("not logged in (run: tasksync login)")
)

// APIError is a non-2xx response from the remote service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "token expired or revoked (run: tasksync login)"
	case http.StatusNotFound:
		return "not found"
	}
	if e.Body == "" {
		return fmt.Sprintf("remote error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("remote error: HTTP %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound reports whether err is a 404 from the remote service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsAuth reports whether err is an authentication or authorization failure.
func IsAuth(err error) bool {
	if errors.Is(err, ErrNotLoggedIn) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
