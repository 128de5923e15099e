package statwatch

import (
	"time"
)

// UpdateKind is the type of Update.
type UpdateKind int8

const (
	KindInitial UpdateKind = iota
	KindStatusChange
	KindComponentUpdate
	KindNewIncident
	KindIncidentUpdate
	KindIncidentResolved
)

func (k UpdateKind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindStatusChange:
		return "status_change"
	case KindComponentUpdate:
		return "component_update"
	case KindNewIncident:
		return "new_incident"
	case KindIncidentUpdate:
		return "incident_update"
	case KindIncidentResolved:
		return "incident_resolved"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k UpdateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// EventInfo is the common part of all Updates.
type EventInfo struct {
	// Message is a human readable summary of the change.
	Message string `json:"message"`

	Timestamp time.Time `json:"timestamp"`
}

func (e EventInfo) info() EventInfo {
	return e
}

// Update is a change between two snapshots.
//
// The implementations are only the *Event types in this package.
type Update interface {
	Kind() UpdateKind
	info() EventInfo
}

// Info returns the message and timestamp of an Update.
func Info(u Update) EventInfo {
	return u.info()
}

// InitialEvent is reported once when there is no previous snapshot.
type InitialEvent struct {
	EventInfo
	Overall    Overall     `json:"overall"`
	Components []Component `json:"components"`
}

func (InitialEvent) Kind() UpdateKind { return KindInitial }

// StatusChangeEvent is reported when the overall status description changed.
type StatusChangeEvent struct {
	EventInfo
	Level Severity `json:"level"`
}

func (StatusChangeEvent) Kind() UpdateKind { return KindStatusChange }

// ComponentUpdateEvent is reported when a component status changed, or a component appeared.
type ComponentUpdateEvent struct {
	EventInfo
	Component Component `json:"component"`
}

func (ComponentUpdateEvent) Kind() UpdateKind { return KindComponentUpdate }

// NewIncidentEvent is reported when an unseen incident appeared.
type NewIncidentEvent struct {
	EventInfo
	Incident Incident `json:"incident"`
}

func (NewIncidentEvent) Kind() UpdateKind { return KindNewIncident }

// IncidentUpdateEvent is reported when a known incident got a new status or a new timeline entry.
type IncidentUpdateEvent struct {
	EventInfo
	Incident Incident `json:"incident"`
}

func (IncidentUpdateEvent) Kind() UpdateKind { return KindIncidentUpdate }

// IncidentResolvedEvent is reported when a known incident disappeared from the page.
//
// The Incident has a synthesized resolution entry as the first element of Updates.
type IncidentResolvedEvent struct {
	EventInfo
	Incident Incident `json:"incident"`
}

func (IncidentResolvedEvent) Kind() UpdateKind { return KindIncidentResolved }
