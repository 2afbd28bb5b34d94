package notify_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/logger"
	"github.com/dmitrymomot/backoffice/core/notify"
	"github.com/dmitrymomot/backoffice/pkg/async"
)

type fakeSession struct {
	stale     atomic.Bool
	ensureOK  atomic.Bool
	ensured   atomic.Int32
	escalate  atomic.Bool
	transport atomic.Int32
}

func (f *fakeSession) IsRefreshStale() bool { return f.stale.Load() }

func (f *fakeSession) EnsureAuthenticated(context.Context) *async.Future[bool] {
	f.ensured.Add(1)
	return async.Resolved(f.ensureOK.Load())
}

func (f *fakeSession) HandleTransportError(context.Context, error) bool {
	f.transport.Add(1)
	return f.escalate.Load()
}

func TestStream_DeliversBadges(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		lastIDs []string
		conns   atomic.Int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, notify.StreamPath, r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		mu.Lock()
		lastIDs = append(lastIDs, r.Header.Get("Last-Event-ID"))
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		switch conns.Add(1) {
		case 1:
			fmt.Fprint(w, "retry: 10\n\nid: 1\nevent: badge\ndata: {\"type\":\"orders\",\"count\":2}\n\n")
			fmt.Fprint(w, "id: 2\ndata: not json\n\n")
		default:
			fmt.Fprint(w, "id: 3\ndata: {\"type\":\"messages\",\"count\":5}\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}
	}))
	defer srv.Close()

	sess := &fakeSession{}
	st := notify.New(srv.URL+"/", srv.Client(), sess, notify.WithLogger(logger.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := st.Subscribe(ctx)

	done := make(chan error, 1)
	go func() { done <- st.Run(ctx) }()

	var got []notify.Badge
	for len(got) < 2 {
		select {
		case msg := <-sub.Receive(ctx):
			got = append(got, msg.Data)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []notify.Badge{{Type: "orders", Count: 2}, {Type: "messages", Count: 5}}, got)
	assert.Equal(t, map[string]int{"orders": 2, "messages": 5}, st.Counts())
	assert.Equal(t, "3", st.LastEventID())

	mu.Lock()
	assert.Equal(t, []string{"", "2"}, lastIDs)
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, sess.ensured.Load(), "fresh session is not re-authenticated")
}

func TestStream_StaleSessionReauthenticates(t *testing.T) {
	t.Parallel()

	t.Run("stops when reauth fails", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		sess := &fakeSession{}
		sess.stale.Store(true)
		st := notify.New(srv.URL, srv.Client(), sess, notify.WithLogger(logger.Discard()))

		err := st.Run(context.Background())
		assert.ErrorIs(t, err, notify.ErrNotAuthenticated)
		assert.Equal(t, int32(1), sess.ensured.Load())
		assert.Zero(t, hits.Load())
	})

	t.Run("connects after successful reauth", func(t *testing.T) {
		t.Parallel()
		connected := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(connected)
			<-r.Context().Done()
		}))
		defer srv.Close()

		sess := &fakeSession{}
		sess.stale.Store(true)
		sess.ensureOK.Store(true)
		st := notify.New(srv.URL, srv.Client(), sess, notify.WithLogger(logger.Discard()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- st.Run(ctx) }()

		select {
		case <-connected:
		case <-time.After(2 * time.Second):
			t.Fatal("stream did not connect")
		}
		cancel()
		<-done
		assert.Equal(t, int32(1), sess.ensured.Load())
	})
}

func TestStream_Unauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := &fakeSession{}
	st := notify.New(srv.URL, srv.Client(), sess, notify.WithLogger(logger.Discard()))

	assert.ErrorIs(t, st.Run(context.Background()), notify.ErrNotAuthenticated)
	assert.Equal(t, int32(1), sess.ensured.Load())
}

func TestStream_NetworkFailureEscalates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sess := &fakeSession{}
	sess.escalate.Store(true)
	st := notify.New(url, nil, sess, notify.WithLogger(logger.Discard()), notify.WithRetry(time.Millisecond))

	err := st.Run(context.Background())
	assert.ErrorIs(t, err, notify.ErrNotAuthenticated)
	assert.Equal(t, int32(1), sess.transport.Load())
}

func TestStream_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	st := notify.New(srv.URL, srv.Client(), &fakeSession{}, notify.WithLogger(logger.Discard()), notify.WithRetry(5*time.Millisecond))

	err := st.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, notify.ErrClosedByServer))
	assert.Equal(t, int32(3), hits.Load())
}
