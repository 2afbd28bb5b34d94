package store

import (
	"context"
	"errors"
)

// Keys used by the session and language preference.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyLastRefresh  = "last_refresh_at"
	KeyLogoutReason = "logout_reason"
	KeyLanguage     = "ui_language"
)

var (
	// ErrNotFound is returned when a key is absent.
	ErrNotFound = errors.New("store: key not found")
	// ErrUnavailable marks failures of the underlying storage medium.
	ErrUnavailable = errors.New("store: storage unavailable")
	// ErrDecrypt is returned when an encrypted file cannot be opened with the given passphrase.
	ErrDecrypt = errors.New("store: failed to decrypt")
)

// Store is a string key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}
