package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken    = errors.New("jwt: malformed token")
	ErrInvalidSignature  = errors.New("jwt: invalid signature")
	ErrExpiredToken      = errors.New("jwt: token expired")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
)

// Claims is the set of access-token claims the client understands.
type Claims struct {
	gojwt.RegisteredClaims
	Name              string   `json:"name,omitempty"`
	Username          string   `json:"username,omitempty"`
	PreferredUsername string   `json:"preferred_username,omitempty"`
	Roles             []string `json:"roles,omitempty"`
	Permissions       []string `json:"permissions,omitempty"`
}

// Expired reports whether exp*1000 < now in milliseconds. A token without
// exp is expired: it can only be used to trigger a refresh.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Unix()*1000 < now.UnixMilli()
}

// DisplayName returns the most human-friendly identity claim present.
func (c Claims) DisplayName() string {
	for _, s := range []string{c.Name, c.PreferredUsername, c.Username, c.Subject} {
		if s != "" {
			return s
		}
	}
	return ""
}

var parser = gojwt.NewParser()

// Decode extracts claims without verifying the signature.
func Decode(token string) (Claims, error) {
	var claims Claims
	if token == "" {
		return claims, ErrMalformedToken
	}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return claims, nil
}
