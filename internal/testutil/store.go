package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/macrat/statwatch/internal/store"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// BaseTime is the time of the first snapshot that NewStoreWithSnapshots saves.
var BaseTime = time.Date(2024, 11, 29, 1, 0, 0, 0, time.UTC)

// Snapshot makes a snapshot that has one component in the level.
func Snapshot(desc string, level api.Severity, ts time.Time) api.Snapshot {
	return api.Snapshot{
		Overall: api.Overall{Description: desc, Level: level},
		Components: []api.Component{
			{Name: "claude.ai", Status: level, Timestamp: ts},
		},
		Incidents: []api.Incident{},
		Timestamp: ts,
	}
}

// NewStore makes an empty store in a temporary directory.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	return store.New(filepath.Join(t.TempDir(), "statwatch.json"))
}

// NewStoreWithSnapshots makes a store that has an operational snapshot as previous, and a degraded snapshot as current.
func NewStoreWithSnapshots(t testing.TB) *store.Store {
	t.Helper()

	s := NewStore(t)

	for _, x := range []api.Snapshot{
		Snapshot("All Systems Operational", api.SeverityOperational, BaseTime),
		Snapshot("Degraded Performance", api.SeverityDegraded, BaseTime.Add(5*time.Minute)),
	} {
		if err := s.Save(x); err != nil {
			t.Fatalf("failed to prepare store: %s", err)
		}
	}

	return s
}
