package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/recipekit/core"
)

func exerciseStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Set(ctx, "tony", []byte(`{"a":1}`)))
	require.NoError(t, s.Set(ctx, "alice", []byte(`{"b":2}`)))
	require.NoError(t, s.Set(ctx, "tony", []byte(`{"a":2}`)))

	got, err := s.Get(ctx, "tony")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "tony"}, keys)

	require.NoError(t, s.Delete(ctx, "alice"))
	require.NoError(t, s.Delete(ctx, "alice"))
	_, err = s.Get(ctx, "alice")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", buf))
	buf[0] = 'x'

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "users")
	exerciseStore(t, NewFileStore(dir))

	_, err := os.Stat(filepath.Join(dir, "tony.json"))
	assert.NoError(t, err)
}

func TestFileStore_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a/b", []byte("x")))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b"}, keys)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a%2Fb.json", entries[0].Name())
}

func TestFileStore_KeysOnMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	keys, err := s.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("RECIPEKIT_REDIS_ADDR")
	if addr == "" {
		t.Skip("RECIPEKIT_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), addr, 15, "recipekit-test:"+t.Name())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, s.Delete(ctx, k))
	}
	exerciseStore(t, s)
}
