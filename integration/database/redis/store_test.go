package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/store"
	"github.com/dmitrymomot/backoffice/integration/database/redis"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Get(ctx context.Context, key string) *goredis.StringCmd {
	args := m.Called(ctx, key)
	return goredis.NewStringResult(args.String(0), args.Error(1))
}

func (m *mockClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return goredis.NewStatusResult("OK", args.Error(0))
}

func (m *mockClient) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	args := m.Called(ctx, keys)
	return goredis.NewIntResult(1, args.Error(0))
}

func (m *mockClient) Ping(ctx context.Context) *goredis.StatusCmd {
	args := m.Called(ctx)
	return goredis.NewStatusResult("PONG", args.Error(0))
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get maps nil to not found", func(t *testing.T) {
		t.Parallel()
		c := &mockClient{}
		c.On("Get", ctx, "bo:access_token").Return("", goredis.Nil)
		c.On("Get", ctx, "bo:refresh_token").Return("r1", nil)

		s := redis.NewStore(c, "bo:")
		_, err := s.Get(ctx, store.KeyAccessToken)
		assert.ErrorIs(t, err, store.ErrNotFound)

		v, err := s.Get(ctx, store.KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "r1", v)
		c.AssertExpectations(t)
	})

	t.Run("set applies prefix and ttl", func(t *testing.T) {
		t.Parallel()
		c := &mockClient{}
		c.On("Set", ctx, "bo:access_token", "a1", 24*time.Hour).Return(nil)

		s := redis.NewStore(c, "bo:", redis.WithTTL(24*time.Hour))
		require.NoError(t, s.Set(ctx, store.KeyAccessToken, "a1"))
		c.AssertExpectations(t)
	})

	t.Run("failures are unavailable", func(t *testing.T) {
		t.Parallel()
		down := errors.New("connection refused")
		c := &mockClient{}
		c.On("Get", ctx, "access_token").Return("", down)
		c.On("Set", ctx, "access_token", "a", time.Duration(0)).Return(down)
		c.On("Del", ctx, []string{"access_token"}).Return(down)

		s := redis.NewStore(c, "")
		_, err := s.Get(ctx, store.KeyAccessToken)
		assert.ErrorIs(t, err, store.ErrUnavailable)
		assert.ErrorIs(t, s.Set(ctx, store.KeyAccessToken, "a"), store.ErrUnavailable)
		assert.ErrorIs(t, s.Delete(ctx, store.KeyAccessToken), store.ErrUnavailable)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ok := &mockClient{}
	ok.On("Ping", ctx).Return(nil)
	assert.NoError(t, redis.Healthcheck(ok)(ctx))

	bad := &mockClient{}
	bad.On("Ping", ctx).Return(errors.New("down"))
	assert.ErrorIs(t, redis.Healthcheck(bad)(ctx), redis.ErrHealthcheckFailed)
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, redis.ErrInvalidURL)
}
