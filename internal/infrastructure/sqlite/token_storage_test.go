package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/infrastructure/sqlite"
)

func openStorage(t *testing.T, path string) *sqlite.TokenStorage {
	t.Helper()
	storage, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestLoadWithoutTokenReturnsEmpty(t *testing.T) {
	storage := openStorage(t, filepath.Join(t.TempDir(), "session.db"))

	token, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	storage := openStorage(t, filepath.Join(t.TempDir(), "session.db"))

	require.NoError(t, storage.Save(ctx, "t1"))
	token, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)

	// Saving again replaces; there is only ever one session row.
	require.NoError(t, storage.Save(ctx, "t2"))
	token, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", token)

	require.NoError(t, storage.Clear(ctx))
	token, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.db")

	storage, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, "persisted"))
	require.NoError(t, storage.Close())

	reopened := openStorage(t, path)
	token, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token, "the token must survive a process restart")
}
