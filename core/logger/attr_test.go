package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestDuration(t *testing.T) {
	t.Parallel()
	attr := logger.Duration(5 * time.Second)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, 5*time.Second, attr.Value.Duration())
}

func TestSessionAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"subject", logger.Subject("u-1"), "subject", "u-1"},
		{"reason", logger.Reason("reconnect"), "reason", "reconnect"},
		{"event", logger.Event("badge"), "event", "badge"},
		{"store key", logger.StoreKey("access_token"), "store_key", "access_token"},
		{"component", logger.Component("session"), "component", "session"},
		{"action", logger.Action("refresh"), "action", "refresh"},
		{"result", logger.Result("timeout"), "result", "timeout"},
		{"method", logger.Method("GET"), "method", "GET"},
		{"path", logger.Path("/api/auth/refresh"), "path", "/api/auth/refresh"},
		{"request id", logger.RequestID("req-1"), "request_id", "req-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}

	assert.True(t, logger.Subject("").Equal(slog.Attr{}))
	assert.True(t, logger.Reason("").Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
	assert.True(t, logger.Key("k", nil).Equal(slog.Attr{}))
}
