package authapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnreachable matches errors for requests that never received an HTTP response.
	ErrUnreachable = errors.New("authapi: server unreachable")
	// ErrMalformedResponse is returned when a 2xx body is not a token pair.
	ErrMalformedResponse = errors.New("authapi: malformed response")
	// ErrEmptyBaseURL is returned by New without a base URL.
	ErrEmptyBaseURL = errors.New("authapi: empty base url")
)

// APIError is a failed auth call. Status is 0 when no response arrived.
type APIError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("authapi %s: unreachable: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("authapi %s: HTTP %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("authapi %s: HTTP %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is makes a status-0 error match ErrUnreachable.
func (e *APIError) Is(target error) bool {
	return target == ErrUnreachable && e.Status == 0
}

// IsClientError reports a 4xx rejection.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// StatusOf returns the HTTP status carried by err, 0 for network failures
// and -1 when err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}
