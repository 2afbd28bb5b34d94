package session

import (
	"errors"

	"github.com/dmitrymomot/backoffice/core/store"
)

var (
	// ErrInvalidCredentials is returned by Login when the backend rejects the credentials (any 4xx).
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTransportUnreachable is returned when the backend could not be reached at all.
	ErrTransportUnreachable = errors.New("server unreachable")
	// ErrRefreshFailed marks a rejected or timed out refresh.
	ErrRefreshFailed = errors.New("failed to refresh session")
	// ErrDecode marks an access token that cannot be decoded. It is logged, never returned.
	ErrDecode = errors.New("failed to decode access token")
	// ErrStorageUnavailable matches durable store failures. The manager only logs them.
	ErrStorageUnavailable = store.ErrUnavailable
	// ErrMissingAuthAPI is returned by New without an auth API.
	ErrMissingAuthAPI = errors.New("auth api is required")
)
