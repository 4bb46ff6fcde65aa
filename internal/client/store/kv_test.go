package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupKV(t *testing.T) *SQLiteKV {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSQLiteKV(db)
}

func TestSQLiteKV_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)

	got, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, kv.Set(ctx, "k1", []byte("v1")))
	got, err = kv.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Set overwrites.
	require.NoError(t, kv.Set(ctx, "k1", []byte("v2")))
	got, err = kv.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, kv.Delete(ctx, "k1"))
	got, err = kv.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteKV_KeysByPrefix(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)

	require.NoError(t, kv.Set(ctx, "a:1", []byte("x")))
	require.NoError(t, kv.Set(ctx, "a:2", []byte("x")))
	require.NoError(t, kv.Set(ctx, "b:1", []byte("x")))

	keys, err := kv.Keys(ctx, "a:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a:1", "a:2"}, keys)
}
