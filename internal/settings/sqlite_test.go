package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "settings.db"), "owner@example.com")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteLoadBeforeFirstSave(t *testing.T) {
	store := newTestSQLiteStore(t)

	rec, token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, []string{"owner@example.com"}, rec.Emails)
	assert.Empty(t, rec.ReservedDate)
}

func TestSQLiteSaveAndReload(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := Settings{ReservedDate: "2026-03-01", Emails: []string{"a@example.com"}}
	token, err := store.Save(ctx, rec, "")
	require.NoError(t, err)
	assert.Equal(t, "1", token)

	loaded, loadedToken, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
	assert.Equal(t, "1", loadedToken)
}

func TestSQLiteStaleTokenConflicts(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, Settings{ReservedDate: "2026-03-01", Emails: []string{"a@example.com"}}, "")
	require.NoError(t, err)

	// A concurrent writer bumps the version.
	second, err := store.Save(ctx, Settings{ReservedDate: "2026-03-02", Emails: []string{"a@example.com"}}, first)
	require.NoError(t, err)
	assert.Equal(t, "2", second)

	// The first token is now stale.
	_, err = store.Save(ctx, Settings{ReservedDate: "2026-03-03", Emails: []string{"a@example.com"}}, first)
	assert.ErrorIs(t, err, ErrConflict)

	// The record kept the second writer's value.
	loaded, _, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", loaded.ReservedDate)
}

func TestSQLiteEmptyTokenAfterFirstSaveConflicts(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, Settings{Emails: []string{"a@example.com"}}, "")
	require.NoError(t, err)

	_, err = store.Save(ctx, Settings{Emails: []string{"b@example.com"}}, "")
	assert.ErrorIs(t, err, ErrConflict)
}
