package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)

	t.Run("should return ErrNotFound for a missing key", func(t *testing.T) {
		_, err := store.Get(ctx, KeyMenu)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should round-trip a snapshot", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, KeyMenu, []byte(`{"id":"plan-1"}`)))

		got, err := store.Get(ctx, KeyMenu)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"plan-1"}`, string(got))
	})

	t.Run("should overwrite on second write", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, KeyMenu, []byte(`{"id":"plan-2"}`)))

		got, err := store.Get(ctx, KeyMenu)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"plan-2"}`, string(got))
	})

	t.Run("should delete a snapshot", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, KeyMenu))
		_, err := store.Get(ctx, KeyMenu)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
