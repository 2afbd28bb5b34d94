package authapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/authapi"
)

func newBackend(t *testing.T, h http.HandlerFunc) *authapi.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := authapi.New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	t.Run("returns token pair", func(t *testing.T) {
		t.Parallel()
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"username": "alice", "password": "secret"}, body)

			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "a1", "refreshToken": "r1"})
		})

		pair, err := c.Login(context.Background(), "alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, authapi.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, pair)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		})

		_, err := c.Login(context.Background(), "alice", "wrong")
		var apiErr *authapi.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "bad credentials", apiErr.Body)
		assert.True(t, apiErr.IsClientError())
		assert.NotErrorIs(t, err, authapi.ErrUnreachable)
		assert.Equal(t, http.StatusUnauthorized, authapi.StatusOf(err))
	})

	t.Run("missing access token", func(t *testing.T) {
		t.Parallel()
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"refreshToken":"r1"}`))
		})

		_, err := c.Login(context.Background(), "alice", "secret")
		assert.ErrorIs(t, err, authapi.ErrMalformedResponse)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := c.Login(context.Background(), "alice", "secret")
		assert.ErrorIs(t, err, authapi.ErrMalformedResponse)
	})
}

func TestClient_Refresh(t *testing.T) {
	t.Parallel()

	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refreshToken"])
		_ = json.NewEncoder(w).Encode(authapi.TokenPair{AccessToken: "a2", RefreshToken: "r2"})
	})

	pair, err := c.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.AccessToken)
	assert.Equal(t, "r2", pair.RefreshToken)
}

func TestClient_Logout(t *testing.T) {
	t.Parallel()

	called := make(chan string, 1)
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		called <- r.URL.Path + ":" + body["refreshToken"]
		_, _ = w.Write([]byte("not json"))
	})

	require.NoError(t, c.Logout(context.Background(), "r1"))
	assert.Equal(t, "/api/auth/logout:r1", <-called)
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := authapi.New(url)
	require.NoError(t, err)

	_, err = c.Refresh(context.Background(), "r1")
	require.Error(t, err)
	assert.ErrorIs(t, err, authapi.ErrUnreachable)
	assert.Equal(t, 0, authapi.StatusOf(err))
	assert.Equal(t, -1, authapi.StatusOf(errors.New("other")))
}

func TestNew_EmptyBaseURL(t *testing.T) {
	t.Parallel()
	_, err := authapi.New("  ")
	assert.ErrorIs(t, err, authapi.ErrEmptyBaseURL)
}
