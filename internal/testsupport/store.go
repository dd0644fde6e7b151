package testsupport

import (
	"testing"

	"framepress/internal/sequence"
)

// MustOpenStore opens a sequence.Store in dir for tests and registers cleanup.
func MustOpenStore(t testing.TB, dir string) *sequence.Store {
	t.Helper()

	store, err := sequence.Open(dir)
	if err != nil {
		t.Fatalf("sequence.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
