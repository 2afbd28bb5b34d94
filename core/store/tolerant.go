package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/backoffice/core/logger"
)

type tolerant struct {
	next Store
	log  *slog.Logger
}

// Tolerant wraps s so that storage failures never reach the caller.
// Get failures other than ErrNotFound are reported as ErrNotFound; Set and
// Delete failures are logged and swallowed.
func Tolerant(s Store, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}
	return &tolerant{next: s, log: log}
}

func (t *tolerant) Get(ctx context.Context, key string) (string, error) {
	v, err := t.next.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		t.log.WarnContext(ctx, "storage read failed, treating key as absent",
			logger.Component("store"),
			logger.StoreKey(key),
			logger.Error(err),
		)
	}
	return "", ErrNotFound
}

func (t *tolerant) Set(ctx context.Context, key, value string) error {
	if err := t.next.Set(ctx, key, value); err != nil {
		t.log.WarnContext(ctx, "storage write dropped",
			logger.Component("store"),
			logger.StoreKey(key),
			logger.Error(err),
		)
	}
	return nil
}

func (t *tolerant) Delete(ctx context.Context, key string) error {
	if err := t.next.Delete(ctx, key); err != nil {
		t.log.WarnContext(ctx, "storage delete dropped",
			logger.Component("store"),
			logger.StoreKey(key),
			logger.Error(err),
		)
	}
	return nil
}
