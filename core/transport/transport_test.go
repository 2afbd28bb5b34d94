package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/authapi"
	"github.com/dmitrymomot/backoffice/core/transport"
)

func TestRoundTripper_Headers(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	t.Run("with token and language", func(t *testing.T) {
		rt := transport.New(nil,
			transport.WithTokenSource(func() string { return "a1" }),
			transport.WithLanguageSource(func(context.Context) string { return "de" }),
		)
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/orders", nil)
		require.NoError(t, err)

		resp, err := rt.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "Bearer a1", got.Get("Authorization"))
		assert.Equal(t, "de", got.Get("Accept-Language"))
		_, err = uuid.Parse(got.Get(transport.HeaderRequestID))
		assert.NoError(t, err)
		assert.Empty(t, req.Header.Get("Authorization"), "caller request must not be mutated")
	})

	t.Run("anonymous falls back to english", func(t *testing.T) {
		rt := transport.New(nil,
			transport.WithTokenSource(func() string { return "" }),
			transport.WithRequestIDGenerator(func() string { return "req-1" }),
		)
		resp, err := rt.Client().Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Empty(t, got.Get("Authorization"))
		assert.Equal(t, transport.DefaultLanguage, got.Get("Accept-Language"))
		assert.Equal(t, "req-1", got.Get(transport.HeaderRequestID))
	})

	t.Run("keeps existing request id", func(t *testing.T) {
		rt := transport.New(nil)
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		req.Header.Set(transport.HeaderRequestID, "upstream")

		resp, err := rt.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "upstream", got.Get(transport.HeaderRequestID))
	})
}

func TestRoundTripper_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var handled atomic.Int32
	var reported error
	rt := transport.New(nil, transport.WithErrorHandler(func(_ context.Context, err error) bool {
		handled.Add(1)
		reported = err
		return true
	}))

	_, err := rt.Client().Get(url + "/api/orders")
	require.Error(t, err)
	assert.ErrorIs(t, err, authapi.ErrUnreachable)
	assert.Equal(t, int32(1), handled.Load())
	assert.Equal(t, 0, authapi.StatusOf(reported))
}

func TestRoundTripper_HTTPErrorIsNotReported(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	called := false
	rt := transport.New(nil, transport.WithErrorHandler(func(context.Context, error) bool {
		called = true
		return false
	}))

	resp, err := rt.Client().Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, called)
}

type failingRT struct{ err error }

func (f failingRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func TestRoundTripper_CanceledContextIsNotReported(t *testing.T) {
	t.Parallel()

	called := false
	rt := transport.New(failingRT{err: context.Canceled}, transport.WithErrorHandler(func(context.Context, error) bool {
		called = true
		return false
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://backoffice.invalid/", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}
