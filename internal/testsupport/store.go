package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"classicine/internal/decisions"
)

// MustOpenStore opens a decision store in a fresh temp directory and
// registers cleanup.
func MustOpenStore(t testing.TB) *decisions.Store {
	t.Helper()

	store, err := decisions.Open(filepath.Join(t.TempDir(), "playlist.db"))
	if err != nil {
		t.Fatalf("decisions.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustAppend records one decision for tests using the provided store.
func MustAppend(t testing.TB, store *decisions.Store, path string, label decisions.Label) *decisions.Record {
	t.Helper()

	rec, err := store.Append(context.Background(), path, label, "test-session")
	if err != nil {
		t.Fatalf("store.Append: %v", err)
	}
	return rec
}
