package main

import (
	"context"
	"errors"

	"github.com/macrat/statwatch/internal/store"
	"github.com/macrat/statwatch/internal/watcher"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// RunOneshot runs a cycle and exits.
//
// The exit code is 0 if the page is operational or under maintenance, otherwise 1.
// A broken state file also makes the exit code 1, even though the cycle starts from empty state and rewrites it.
func (cmd *StatwatchCommand) RunOneshot(ctx context.Context, w *watcher.Watcher, s *store.Store) (exitCode int) {
	corrupted := false
	if err := s.Restore(); err != nil {
		if !errors.Is(err, api.ErrStoreCorrupted) {
			cmd.Logger.Error().Err(err).Str("path", s.Path()).Msg("failed to read state file")
			return 1
		}
		cmd.Logger.Warn().Err(err).Str("path", s.Path()).Msg("state file is broken, starting from empty state")
		corrupted = true
	}

	r, err := w.RunCycle(ctx)
	if err != nil {
		return 1
	}

	if healthy, _ := s.Errors(); corrupted || !healthy {
		return 1
	}

	if r.Snapshot.Overall.Level.WorseThan(api.SeverityMaintenance) {
		return 1
	}
	return 0
}
