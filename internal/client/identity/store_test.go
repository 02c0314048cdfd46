package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "identity.json"))
	require.NoError(t, err)
	return store
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := SavedIdentity{
		ID:       "user-1",
		Name:     "Alice",
		LastSeen: "2024-05-01T12:00:00Z",
	}
	require.NoError(t, store.Save(saved))

	loaded := store.Load()
	require.NotNil(t, loaded)
	require.Equal(t, saved, *loaded)
}

func TestStore_LoadMissingFileReturnsNil(t *testing.T) {
	store := newTestStore(t)
	require.Nil(t, store.Load())
}

func TestStore_LoadCorruptJSONReturnsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)
	require.Nil(t, store.Load())
}

func TestStore_LoadIncompleteRecordReturnsNil(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"name":"Alice","lastSeen":"2024-05-01T12:00:00Z"}`},
		{"missing name", `{"id":"user-1","lastSeen":"2024-05-01T12:00:00Z"}`},
		{"missing lastSeen", `{"id":"user-1","name":"Alice"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "identity.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			store, err := NewStore(path)
			require.NoError(t, err)
			require.Nil(t, store.Load())
		})
	}
}

func TestStore_SaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "identity.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(SavedIdentity{ID: "u", Name: "n", LastSeen: "t"}))
	require.NotNil(t, store.Load())
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(SavedIdentity{ID: "u", Name: "n", LastSeen: "t"}))
	require.NoError(t, store.Clear())
	require.Nil(t, store.Load())

	// Clearing again with nothing saved is not an error.
	require.NoError(t, store.Clear())
}
