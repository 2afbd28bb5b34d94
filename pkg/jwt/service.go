package jwt

import (
	"errors"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Service signs and verifies HS256 tokens on behalf of a stub backend.
// Nothing on the client path calls it: the client holds no signing key and
// reads tokens through Decode.
type Service struct {
	key []byte
}

// New creates a Service with the given signing key.
func New(key []byte) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{key: key}, nil
}

// NewFromString is New for string keys.
func NewFromString(key string) (*Service, error) {
	return New([]byte(key))
}

// Generate signs claims.
func (s *Service) Generate(claims Claims) (string, error) {
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies the token signature and expiry and returns its claims.
func (s *Service) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := gojwt.ParseWithClaims(token, &claims, func(t *gojwt.Token) (any, error) {
		return s.key, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}))

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return Claims{}, ErrExpiredToken
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSignature
	default:
		return Claims{}, errors.Join(ErrMalformedToken, err)
	}
}
