// Package watcher runs the polling cycle: fetch, parse, detect, persist, and notify.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/macrat/statwatch/internal/detect"
	"github.com/macrat/statwatch/internal/fetch"
	"github.com/macrat/statwatch/internal/notify"
	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultCycleTimeout is the limit of a cycle including retries and notifications.
const DefaultCycleTimeout = 5 * time.Minute

// Parser converts a page into a snapshot.
type Parser interface {
	Parse(raw string, format api.PageFormat) (api.Snapshot, error)
}

// Result is the outcome of a cycle.
type Result struct {
	ID       string
	Snapshot api.Snapshot
	Updates  []api.Update
}

// Watcher polls a status page and reports changes.
type Watcher struct {
	Fetcher  fetch.Fetcher
	Parser   Parser
	Engine   *detect.Engine
	Store    detect.Store
	Notifier notify.Notifier
	Logger   zerolog.Logger
	Timeout  time.Duration
}

// RunCycle runs one polling cycle.
//
// If fetching or parsing failed, the store is not modified and nothing is notified.
// A failure of notification is only logged; the snapshot is already saved at that point.
func (w *Watcher) RunCycle(ctx context.Context) (Result, error) {
	r := Result{ID: uuid.NewString()}
	log := w.Logger.With().Str("cycle", r.ID).Logger()

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()

	page, err := w.Fetcher.Fetch(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch status page")
		return r, err
	}

	snap, err := w.Parser.Parse(page.Content, page.Format)
	if err != nil {
		log.Error().Err(err).Str("format", page.Format.String()).Msg("failed to parse status page")
		return r, err
	}
	r.Snapshot = snap

	updates, err := w.Engine.Apply(w.Store, snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to save snapshot")
		return r, err
	}
	r.Updates = updates

	log.Info().
		Str("overall", snap.Overall.Description).
		Stringer("level", snap.Overall.Level).
		Int("components", len(snap.Components)).
		Int("incidents", len(snap.Incidents)).
		Int("updates", len(updates)).
		Dur("took", time.Since(started)).
		Msg("checked status page")

	for _, u := range updates {
		log.Debug().Stringer("kind", u.Kind()).Msg(api.Info(u).Message)
	}

	if w.Notifier != nil && len(updates) > 0 {
		if err := w.Notifier.Notify(ctx, snap, updates); err != nil {
			log.Warn().Err(err).Msg("failed to send notification")
		}
	}

	return r, nil
}

// Job makes a cron.Job that runs a cycle.
//
// A panic in the cycle is recovered and logged, and a tick is skipped while the previous cycle is still running.
// Use the same Job for the scheduler and for the kick on start.
func (w *Watcher) Job(ctx context.Context, onResult func(Result, error)) cron.Job {
	logger := CronLogger(w.Logger)

	return cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		r, err := w.RunCycle(ctx)
		if onResult != nil {
			onResult(r, err)
		}
	}))
}

// cronLogger is a cron.Logger that writes via zerolog.
type cronLogger struct {
	Logger zerolog.Logger
}

// CronLogger makes a cron.Logger from a zerolog.Logger.
func CronLogger(l zerolog.Logger) cron.Logger {
	return cronLogger{l.With().Str("component", "cron").Logger()}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug().Fields(fields(keysAndValues)).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error().Err(err).Fields(fields(keysAndValues)).Msg(msg)
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		m[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return m
}
