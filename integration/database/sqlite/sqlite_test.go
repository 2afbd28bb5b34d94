package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/core/store"
	"github.com/dmitrymomot/backoffice/integration/database/sqlite"
)

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "session.db")

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	s := sqlite.NewStore(db)

	_, err = s.Get(ctx, store.KeyAccessToken)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, store.KeyAccessToken, "a1"))
	require.NoError(t, s.Set(ctx, store.KeyAccessToken, "a2"))
	require.NoError(t, s.Set(ctx, store.KeyRefreshToken, "r1"))

	v, err := s.Get(ctx, store.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a2", v)

	require.NoError(t, s.Delete(ctx, store.KeyAccessToken))
	require.NoError(t, s.Delete(ctx, store.KeyAccessToken))
	_, err = s.Get(ctx, store.KeyAccessToken)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, db.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err = sqlite.NewStore(reopened).Get(ctx, store.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "r1", v)
}

func TestStore_ClosedDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := sqlite.NewStore(db)
	_, err = s.Get(ctx, store.KeyAccessToken)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorIs(t, s.Set(ctx, store.KeyAccessToken, "x"), store.ErrUnavailable)
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := sqlite.Open(context.Background(), "")
	assert.ErrorIs(t, err, store.ErrUnavailable)
}
