// Package guard gates navigation and local HTTP handlers on the session.
//
// Check first makes sure the session is authenticated (refreshing it when
// needed), then compares the required permissions with the session's.
// A session whose access token carries no permissions at all is let through:
// the backend may not have populated the claim yet, and an empty menu would
// lock the user out. WithStrictPermissions turns that off.
package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/backoffice/core/logger"
	"github.com/dmitrymomot/backoffice/pkg/async"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// DecisionLogin sends the user to the login view.
	DecisionLogin Decision = iota
	// DecisionAllow lets the navigation proceed.
	DecisionAllow
	// DecisionDeny rejects an authenticated user without the permission.
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "login"
	}
}

// Session is what the guard needs from session.Manager.
type Session interface {
	EnsureAuthenticated(ctx context.Context) *async.Future[bool]
	HasAny(required ...string) bool
	Permissions() []string
}

// Guard evaluates permission requirements against a session.
type Guard struct {
	session   Session
	strict    bool
	loginPath string
	log       *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithStrictPermissions denies sessions without any permission claim
// instead of letting them through.
func WithStrictPermissions() Option {
	return func(g *Guard) {
		g.strict = true
	}
}

// WithLoginPath sets the redirect target used by Middleware. Default "/login".
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// New creates a Guard for s.
func New(s Session, opts ...Option) *Guard {
	g := &Guard{
		session:   s,
		loginPath: "/login",
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("guard"))
	return g
}

// Check decides whether a navigation requiring any of required may proceed.
// No requirement means any authenticated session is allowed.
func (g *Guard) Check(ctx context.Context, required ...string) Decision {
	ok, err := g.session.EnsureAuthenticated(ctx).AwaitContext(ctx)
	if err != nil || !ok {
		return DecisionLogin
	}
	if len(required) == 0 {
		return DecisionAllow
	}
	if len(g.session.Permissions()) == 0 && !g.strict {
		g.log.DebugContext(ctx, "allowing session without permission claim",
			logger.Key("required", required),
		)
		return DecisionAllow
	}
	if g.session.HasAny(required...) {
		return DecisionAllow
	}
	return DecisionDeny
}

// Middleware guards next: unauthenticated requests are redirected to the
// login path, authenticated ones without permission get 403.
func (g *Guard) Middleware(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch g.Check(r.Context(), required...) {
			case DecisionAllow:
				next.ServeHTTP(w, r)
			case DecisionDeny:
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			default:
				http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			}
		})
	}
}
