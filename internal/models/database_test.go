package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionStore(t *testing.T, store SessionStore) {
	t.Helper()

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Set(&Session{Username: "ana", Token: "abc123", BaseURL: "http://127.0.0.1:8000"}))

	got, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.Equal(t, "abc123", got.Token)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, store.Set(&Session{Username: "bia", Token: "def456"}))
	got, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "def456", got.Token)

	require.NoError(t, store.Clear())
	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNoSession)

	// clearing twice is fine
	assert.NoError(t, store.Clear())
}

func TestDatabaseSessionStore(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer db.Close()

	testSessionStore(t, db)
}

func TestDatabaseSessionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(&Session{Username: "ana", Token: "abc123"}))
	require.NoError(t, db.Close())

	db, err = NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.Token)
}

func TestMemorySessionStore(t *testing.T) {
	testSessionStore(t, NewMemorySessionStore())
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	store := NewMemorySessionStore()
	require.NoError(t, store.Set(&Session{Token: "abc"}))

	got, err := store.Get()
	require.NoError(t, err)
	got.Token = "changed"

	again, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc", again.Token)
}
