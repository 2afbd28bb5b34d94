// Package transport provides the http.RoundTripper every back-office API
// call goes through.
//
// The round tripper attaches the bearer access token, the Accept-Language
// derived from the persisted UI language, and an X-Request-ID. Requests
// that fail before any HTTP status arrives are reported to an ErrorHandler
// as *authapi.APIError with Status 0, which lets the session escalate to a
// forced logout when its refresh is stale.
//
//	rt := transport.New(http.DefaultTransport,
//		transport.WithTokenSource(mgr.AccessToken),
//		transport.WithLanguageSource(pref.Get),
//		transport.WithErrorHandler(mgr.HandleTransportError),
//	)
//	client := &http.Client{Transport: rt}
package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/backoffice/core/authapi"
	"github.com/dmitrymomot/backoffice/core/logger"
)

const (
	// DefaultLanguage is sent when no language preference is stored.
	DefaultLanguage = "en"

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// TokenSource returns the current access token, "" when absent.
type TokenSource func() string

// LanguageSource returns the preferred UI language, "" when unset.
type LanguageSource func(ctx context.Context) string

// ErrorHandler is told about requests that got no HTTP response.
// The boolean result reports whether the handler escalated.
type ErrorHandler func(ctx context.Context, err error) bool

// RoundTripper decorates a base http.RoundTripper.
type RoundTripper struct {
	base      http.RoundTripper
	token     TokenSource
	language  LanguageSource
	onError   ErrorHandler
	requestID func() string
	log       *slog.Logger
}

// Option configures a RoundTripper.
type Option func(*RoundTripper)

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(src TokenSource) Option {
	return func(rt *RoundTripper) {
		rt.token = src
	}
}

// WithLanguageSource sets where the Accept-Language value comes from.
func WithLanguageSource(src LanguageSource) Option {
	return func(rt *RoundTripper) {
		rt.language = src
	}
}

// WithErrorHandler registers the handler for network failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(rt *RoundTripper) {
		rt.onError = h
	}
}

// WithRequestIDGenerator replaces the UUID v4 request id generator.
func WithRequestIDGenerator(gen func() string) Option {
	return func(rt *RoundTripper) {
		if gen != nil {
			rt.requestID = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *RoundTripper) {
		if l != nil {
			rt.log = l
		}
	}
}

// New wraps base, http.DefaultTransport when nil.
func New(base http.RoundTripper, opts ...Option) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := &RoundTripper{
		base:      base,
		requestID: func() string { return uuid.New().String() },
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Client returns an http.Client using rt.
func (rt *RoundTripper) Client() *http.Client {
	return &http.Client{Transport: rt}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(ctx)

	if rt.token != nil {
		if tok := rt.token(); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	lang := ""
	if rt.language != nil {
		lang = rt.language(ctx)
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	r.Header.Set("Accept-Language", lang)

	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, rt.requestID())
	}

	resp, err := rt.base.RoundTrip(r)
	if err == nil {
		return resp, nil
	}

	apiErr := &authapi.APIError{Op: r.Method + " " + r.URL.Path, Err: err}
	rt.log.DebugContext(ctx, "request failed without response",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.RequestID(r.Header.Get(HeaderRequestID)),
		logger.Error(err),
	)
	if rt.onError != nil && ctx.Err() == nil {
		rt.onError(ctx, apiErr)
	}
	return nil, apiErr
}
