// Package detect compares two snapshots and reports what changed between them.
package detect

import (
	"fmt"
	"strings"
	"time"

	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/rs/zerolog"
)

// CurrentTime returns current time.
// This variable is for testing purpose.
var CurrentTime = time.Now

// Store is the storage of snapshots that Engine.Apply uses.
type Store interface {
	Current() *api.Snapshot
	Save(api.Snapshot) error
}

// Engine detects changes between snapshots.
//
// The Engine owns a deduplication window, so the same Engine should be used for all cycles.
type Engine struct {
	Logger zerolog.Logger
	Window *Window
}

// New creates a new Engine with a deduplication window.
func New(expiry time.Duration, capacity int) *Engine {
	return &Engine{
		Logger: zerolog.Nop(),
		Window: NewWindow(expiry, capacity),
	}
}

// Apply detects changes from the current snapshot in the store to the snapshot s, and then saves s into the store.
//
// It returns no update if failed to save, so the same changes will be detected again in the next cycle.
func (e *Engine) Apply(store Store, s api.Snapshot) ([]api.Update, error) {
	updates := e.Diff(store.Current(), s)

	if err := store.Save(s); err != nil {
		return nil, err
	}

	return updates, nil
}

// Diff reports changes from previous to current.
//
// If previous is nil, it reports only one InitialEvent.
// Otherwise the order of the updates is overall status, components, new incidents, updated incidents, and then resolved incidents.
func (e *Engine) Diff(previous *api.Snapshot, current api.Snapshot) []api.Update {
	if previous == nil {
		return []api.Update{initialEvent(current)}
	}

	var us []api.Update

	if previous.Overall.Description != current.Overall.Description {
		u := api.StatusChangeEvent{
			EventInfo: api.EventInfo{
				Message:   fmt.Sprintf("System status changed to: %s", current.Overall.Description),
				Timestamp: current.Timestamp,
			},
			Level: current.Overall.Level,
		}
		if e.emit(u) {
			us = append(us, u)
		}
	}

	for _, c := range current.Components {
		if prev, ok := previous.Component(c.Name); ok && prev.Status == c.Status {
			continue
		}

		u := api.ComponentUpdateEvent{
			EventInfo: api.EventInfo{
				Message:   fmt.Sprintf("%s status changed to: %s", c.Name, c.Status),
				Timestamp: c.Timestamp,
			},
			Component: c,
		}
		if e.emit(u) {
			us = append(us, u)
		}
	}

	// Incidents are compared only if the current page has some.
	if len(current.Incidents) > 0 {
		us = append(us, diffIncidents(previous, current)...)
	}

	return us
}

func (e *Engine) emit(u api.Update) bool {
	if e.Window == nil {
		return true
	}

	info := api.Info(u)
	if e.Window.Seen(info.Message, info.Timestamp) {
		e.Logger.Debug().Stringer("kind", u.Kind()).Str("message", info.Message).Msg("suppress duplicated update")
		return false
	}
	return true
}

func initialEvent(s api.Snapshot) api.InitialEvent {
	var msg strings.Builder
	fmt.Fprintf(&msg, "Status monitoring initialized.\nCurrent Status: %s\n", s.Overall.Description)
	for i, c := range s.Components {
		if i > 0 {
			msg.WriteByte('\n')
		}
		fmt.Fprintf(&msg, "%s: %s", c.Name, c.Status)
	}

	return api.InitialEvent{
		EventInfo: api.EventInfo{
			Message:   msg.String(),
			Timestamp: s.Timestamp,
		},
		Overall:    s.Overall,
		Components: s.Components,
	}
}

func diffIncidents(previous *api.Snapshot, current api.Snapshot) []api.Update {
	var created, updated, resolved []api.Update

	currentIDs := make(map[string]struct{}, len(current.Incidents))
	for _, i := range current.Incidents {
		currentIDs[i.ID] = struct{}{}

		prev, ok := previous.Incident(i.ID)
		switch {
		case !ok:
			created = append(created, api.NewIncidentEvent{
				EventInfo: api.EventInfo{
					Message:   fmt.Sprintf("New incident reported:\n%s\nImpact: %s\nStatus: %s", i.Name, i.Impact, i.Status),
					Timestamp: incidentTime(i, current),
				},
				Incident: i,
			})
		case prev.Status != i.Status || len(prev.Updates) != len(i.Updates):
			updated = append(updated, api.IncidentUpdateEvent{
				EventInfo: api.EventInfo{
					Message:   fmt.Sprintf("Incident \"%s\" status updated to: %s", i.Name, i.Status),
					Timestamp: incidentTime(i, current),
				},
				Incident: i,
			})
		}
	}

	now := CurrentTime().UTC()
	reported := make(map[string]struct{})
	for _, i := range previous.Incidents {
		if _, ok := currentIDs[i.ID]; ok {
			continue
		}
		if _, ok := reported[i.ID]; ok {
			continue
		}
		reported[i.ID] = struct{}{}

		resolved = append(resolved, api.IncidentResolvedEvent{
			EventInfo: api.EventInfo{
				Message:   fmt.Sprintf("Incident \"%s\" resolved", i.Name),
				Timestamp: now,
			},
			Incident: i.Resolved(now),
		})
	}

	us := make([]api.Update, 0, len(created)+len(updated)+len(resolved))
	us = append(us, created...)
	us = append(us, updated...)
	us = append(us, resolved...)
	return us
}

// incidentTime returns the time of the latest update of the incident, or the snapshot time if the incident has no update.
func incidentTime(i api.Incident, s api.Snapshot) time.Time {
	if t := i.LatestTime(); !t.IsZero() {
		return t
	}
	return s.Timestamp
}
