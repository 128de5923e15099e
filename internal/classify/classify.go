// Package classify maps status texts, CSS classes, and indicator emoji to a statwatch.Severity.
//
// The text path and the class path share the same rules,
// so the same logical state gets the same severity in both of HTML and text pages.
package classify

import (
	"strings"

	api "github.com/macrat/statwatch/lib-statwatch"
)

// Context is where the classified text came from.
type Context int8

const (
	// Component is for the status of a single component.
	// No match is treated as operational, and major outage is treated as outage.
	Component Context = iota

	// Overall is for the banner of the page.
	// No match is treated as unknown.
	Overall
)

// Text classifies a visible status text like "Degraded Performance".
func Text(text string, ctx Context) api.Severity {
	s := strings.ToLower(text)

	switch {
	case strings.Contains(s, "major") && strings.Contains(s, "outage"):
		if ctx == Overall {
			return api.SeverityMajorOutage
		}
		return api.SeverityOutage
	case strings.Contains(s, "outage"):
		return api.SeverityOutage
	case strings.Contains(s, "degraded"):
		return api.SeverityDegraded
	case strings.Contains(s, "maintenance"):
		return api.SeverityMaintenance
	case strings.Contains(s, "resolved"):
		return api.SeverityOperational
	case strings.Contains(s, "operational"):
		return api.SeverityOperational
	case ctx == Component:
		return api.SeverityOperational
	default:
		return api.SeverityUnknown
	}
}

// classTable is the class names that Statuspage uses for indicators.
var classTable = []struct {
	Class  string
	Level  api.Severity
	Global bool
}{
	{"status-critical", api.SeverityMajorOutage, true},
	{"status-major", api.SeverityOutage, false},
	{"status-red", api.SeverityOutage, false},
	{"status-orange", api.SeverityOutage, false},
	{"status-minor", api.SeverityDegraded, false},
	{"status-yellow", api.SeverityDegraded, false},
	{"status-maintenance", api.SeverityMaintenance, false},
	{"status-blue", api.SeverityMaintenance, false},
	{"status-none", api.SeverityOperational, false},
	{"status-green", api.SeverityOperational, false},
}

// Classes classifies by CSS class names of an indicator element.
//
// Well known Statuspage classes are checked first, and then the same rules as Text are applied to the class names.
// It returns operational if nothing matched.
func Classes(classes []string, ctx Context) api.Severity {
	for _, c := range classes {
		c = strings.ToLower(strings.TrimSpace(c))
		for _, x := range classTable {
			if c == x.Class {
				if x.Global && ctx != Overall {
					return api.SeverityOutage
				}
				return x.Level
			}
		}
	}

	joined := strings.NewReplacer("-", " ", "_", " ").Replace(strings.Join(classes, " "))
	if s := Text(joined, ctx); s.Known() {
		return s
	}
	return api.SeverityOperational
}

// Impact classifies the impact of an incident by the class names of the incident title, like "impact-major".
func Impact(classes []string) api.Severity {
	for _, c := range classes {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "impact-critical":
			return api.SeverityMajorOutage
		case "impact-major":
			return api.SeverityOutage
		case "impact-minor":
			return api.SeverityDegraded
		case "impact-maintenance":
			return api.SeverityMaintenance
		case "impact-none":
			return api.SeverityOperational
		}
	}
	return api.SeverityOperational
}
