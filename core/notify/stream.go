package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/backoffice/core/authapi"
	"github.com/dmitrymomot/backoffice/core/logger"
	"github.com/dmitrymomot/backoffice/pkg/async"
	"github.com/dmitrymomot/backoffice/pkg/broadcast"
)

const (
	// StreamPath is the notification endpoint relative to the API base URL.
	StreamPath = "/api/notifications/stream"
	// DefaultRetry is the reconnect delay until the server sends a retry hint.
	DefaultRetry = 3 * time.Second
)

var (
	// ErrNotAuthenticated stops Run when the session cannot be restored.
	ErrNotAuthenticated = errors.New("notify: session is not authenticated")
	// ErrClosedByServer stops Run when the server answers 204 No Content.
	ErrClosedByServer = errors.New("notify: stream closed by server")
	// ErrUnexpectedStatus marks a non-200 response to the stream request.
	ErrUnexpectedStatus = errors.New("notify: unexpected response status")
)

// Badge is a counter shown next to a menu entry.
type Badge struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Session is what the stream needs from session.Manager.
type Session interface {
	IsRefreshStale() bool
	EnsureAuthenticated(ctx context.Context) *async.Future[bool]
	HandleTransportError(ctx context.Context, err error) bool
}

// Stream maintains the notification connection.
type Stream struct {
	url     string
	client  *http.Client
	session Session
	bus     *broadcast.MemoryBroadcaster[Badge]
	log     *slog.Logger

	mu     sync.RWMutex
	retry  time.Duration
	lastID string
	counts map[string]int
}

// Option configures a Stream.
type Option func(*Stream)

// WithRetry sets the reconnect delay used until the server sends one.
func WithRetry(d time.Duration) Option {
	return func(s *Stream) {
		if d > 0 {
			s.retry = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stream) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBufferSize sets the per-subscriber buffer.
func WithBufferSize(n int) Option {
	return func(s *Stream) {
		s.bus = broadcast.NewMemoryBroadcaster[Badge](n)
	}
}

// New creates a Stream against the API at baseURL. client should carry the
// authenticating transport.
func New(baseURL string, client *http.Client, s Session, opts ...Option) *Stream {
	if client == nil {
		client = http.DefaultClient
	}
	st := &Stream{
		url:     strings.TrimRight(baseURL, "/") + StreamPath,
		client:  client,
		session: s,
		bus:     broadcast.NewMemoryBroadcaster[Badge](16),
		log:     slog.Default(),
		retry:   DefaultRetry,
		counts:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(st)
	}
	st.log = st.log.With(logger.Component("notify"))
	return st
}

// Subscribe returns a subscriber receiving every badge update until ctx is done.
func (s *Stream) Subscribe(ctx context.Context) broadcast.Subscriber[Badge] {
	return s.bus.Subscribe(ctx)
}

// Counts returns the latest count per badge type.
func (s *Stream) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.counts)
}

// LastEventID returns the id sent as Last-Event-ID on reconnect.
func (s *Stream) LastEventID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID
}

// Run connects and reconnects until ctx is done or the session is lost.
// It closes the subscribers on return.
func (s *Stream) Run(ctx context.Context) error {
	defer s.bus.Close()

	for {
		err := s.connect(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrClosedByServer):
			return err
		case err != nil:
			s.log.DebugContext(ctx, "notification stream interrupted", logger.Error(err))
		}

		s.mu.RLock()
		wait := s.retry
		s.mu.RUnlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	if s.session.IsRefreshStale() {
		ok, err := s.session.EnsureAuthenticated(ctx).AwaitContext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthenticated
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if id := s.LastEventID(); id != "" {
		req.Header.Set("Last-Event-ID", id)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		var apiErr *authapi.APIError
		if !errors.As(err, &apiErr) {
			err = &authapi.APIError{Op: "GET " + StreamPath, Err: err}
		}
		if s.session.HandleTransportError(ctx, err) {
			return ErrNotAuthenticated
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		ok, _ := s.session.EnsureAuthenticated(ctx).AwaitContext(ctx)
		if !ok {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	case resp.StatusCode == http.StatusNoContent:
		return ErrClosedByServer
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	s.log.DebugContext(ctx, "notification stream connected")
	return s.consume(ctx, resp.Body)
}

func (s *Stream) consume(ctx context.Context, body io.Reader) error {
	er := newEventReader(body)
	for {
		ev, err := er.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		s.mu.Lock()
		if er.retry > 0 {
			s.retry = er.retry
		}
		if er.lastID != "" {
			s.lastID = er.lastID
		}
		s.mu.Unlock()

		var badge Badge
		if err := json.Unmarshal([]byte(ev.Data), &badge); err != nil || badge.Type == "" {
			s.log.DebugContext(ctx, "skipping notification", logger.Event(ev.Type), logger.Error(err))
			continue
		}

		s.mu.Lock()
		s.counts[badge.Type] = badge.Count
		s.mu.Unlock()

		if err := s.bus.Broadcast(ctx, broadcast.Message[Badge]{Data: badge}); err != nil {
			return err
		}
	}
}
