package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/backoffice/core/store"
)

var _ store.Store = (*Store)(nil)

// Client is the subset of the go-redis client used by Store.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Store is a store.Store backed by Redis string keys.
type Store struct {
	client Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures Store.
type StoreOption func(*Store)

// WithTTL sets an expiration on every written key. Zero means no expiration.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewStore creates a Store namespacing all keys with prefix.
func NewStore(client Client, prefix string, opts ...StoreOption) *Store {
	s := &Store{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return "", store.ErrNotFound
	case err != nil:
		return "", errors.Join(store.ErrUnavailable, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return errors.Join(store.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(store.ErrUnavailable, err)
	}
	return nil
}
