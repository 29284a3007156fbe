package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"lumen/internal/lineage"
)

// NewMemoryTracker returns a lineage tracker backed by memory.
func NewMemoryTracker(t testing.TB, opts ...lineage.TrackerOption) *lineage.Tracker {
	t.Helper()

	tracker := lineage.NewTracker(lineage.NewMemoryStore(), opts...)
	t.Cleanup(func() {
		_ = tracker.Close()
	})
	return tracker
}

// MustOpenSQLiteTracker opens a lineage tracker on a fresh SQLite database.
func MustOpenSQLiteTracker(t testing.TB, opts ...lineage.TrackerOption) *lineage.Tracker {
	t.Helper()

	store, err := lineage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "lineage.db"))
	if err != nil {
		t.Fatalf("lineage.OpenSQLite: %v", err)
	}
	tracker := lineage.NewTracker(store, opts...)
	t.Cleanup(func() {
		_ = tracker.Close()
	})
	return tracker
}
