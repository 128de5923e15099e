package statwatch

import (
	"time"
)

// Overall is the status of the whole page.
type Overall struct {
	Description string   `json:"description"`
	Level       Severity `json:"level"`
}

// Component is the status of a tracked component.
type Component struct {
	Name string `json:"name"`

	Status Severity `json:"status"`

	// Label is the visible status text on the page, like "Degraded Performance".
	Label string `json:"label,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// DisplayStatus returns Label if available, otherwise the text form of Status.
func (c Component) DisplayStatus() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Status.String()
}

// Snapshot is the normalized state of the status page.
type Snapshot struct {
	Overall Overall `json:"overall"`

	// Components is the list of tracked components in the page order.
	// Names are unique.
	Components []Component `json:"components"`

	// Incidents is the list of incidents in the page order, the most recent first.
	Incidents []Incident `json:"incidents"`

	Timestamp time.Time `json:"timestamp"`
}

// Component finds a component by name.
func (s Snapshot) Component(name string) (Component, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// Incident finds an incident by ID.
func (s Snapshot) Incident(id string) (Incident, bool) {
	for _, i := range s.Incidents {
		if i.ID == id {
			return i, true
		}
	}
	return Incident{}, false
}

// ActiveIncidents returns incidents that not resolved yet.
func (s Snapshot) ActiveIncidents() []Incident {
	var xs []Incident
	for _, i := range s.Incidents {
		if i.Active() {
			xs = append(xs, i)
		}
	}
	return xs
}
