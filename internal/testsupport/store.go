package testsupport

import (
	"testing"

	"zeusmaker/internal/config"
	"zeusmaker/internal/history"
)

// MustOpenStore opens the batch history store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
