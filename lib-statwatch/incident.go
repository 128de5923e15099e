package statwatch

import (
	"strings"
	"time"
)

const (
	// DefaultIncidentStatus is the status of an incident that has no parsable update.
	DefaultIncidentStatus = "investigating"

	// ResolvedStatus is the status word of resolved incidents.
	ResolvedStatus = "resolved"
)

// IncidentUpdate is a row in the timeline of an Incident.
type IncidentUpdate struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Incident is an incident reported on the status page.
type Incident struct {
	// ID identifies the incident across snapshots.
	// It is the last path segment of the permalink.
	ID string `json:"id"`

	// SyntheticID is true if the page had no permalink for this incident.
	// A synthetic ID is generated from the parse time, so it changes on every parse.
	SyntheticID bool `json:"synthetic_id,omitempty"`

	Name string `json:"name"`

	Impact Severity `json:"impact"`

	// Status is the same as Updates[0].Status, or DefaultIncidentStatus if no update.
	Status string `json:"status"`

	// Updates is the timeline of the incident, the newest first.
	Updates []IncidentUpdate `json:"updates"`
}

// Active reports the incident is not resolved yet.
func (i Incident) Active() bool {
	return !strings.EqualFold(i.Status, ResolvedStatus)
}

// LatestTime returns the time of the newest update.
// It returns zero time if the incident has no update.
func (i Incident) LatestTime() time.Time {
	if len(i.Updates) == 0 {
		return time.Time{}
	}
	return i.Updates[0].Timestamp
}

// Resolved makes a copy of the incident that marked as resolved at t.
//
// The resolution update is prepended to the timeline.
// The receiver is not modified.
func (i Incident) Resolved(t time.Time) Incident {
	updates := make([]IncidentUpdate, 0, len(i.Updates)+1)
	updates = append(updates, IncidentUpdate{
		Status:    ResolvedStatus,
		Message:   "Incident resolved",
		Timestamp: t,
	})
	updates = append(updates, i.Updates...)

	i.Status = ResolvedStatus
	i.Updates = updates
	return i
}
