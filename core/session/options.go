package session

import (
	"log/slog"
	"time"
)

const (
	// DefaultStaleAfter is how long after the last refresh the session counts as stale.
	DefaultStaleAfter = 5 * time.Minute
	// DefaultRefreshTimeout bounds TryRefreshWithTimeout when no timeout is given.
	DefaultRefreshTimeout = 5 * time.Second
)

// Option configures a Manager.
type Option func(*Manager)

// WithNavigator sets where logouts navigate to.
func WithNavigator(nav Navigator) Option {
	return func(m *Manager) {
		if nav != nil {
			m.nav = nav
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithStaleAfter sets the refresh staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.staleAfter = d
		}
	}
}

// WithRefreshTimeout sets the default refresh race timeout.
// The same bound applies to the background logout notification.
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

// WithMetrics attaches prometheus counters.
func WithMetrics(mt *Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}
