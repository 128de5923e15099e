package notify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/macrat/statwatch/internal/classify"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// CurrentTime returns current time.
// This variable is for testing purpose.
var CurrentTime = time.Now

const (
	Separator    = "━━━━━━━━━━━━━━━"
	DefaultTitle = "Status"
	timeFormat   = "January 02, 2006 at 15:04 UTC"
)

var betaPattern = regexp.MustCompile(`(?i)\s*-\s*beta features\s*$`)

// FormatName formats a component name for display, like "api.anthropic.com (beta)".
func FormatName(name string) string {
	return betaPattern.ReplaceAllString(name, " (beta)")
}

// Color returns the embed color for the severity.
func Color(s api.Severity) int {
	switch s {
	case api.SeverityOperational:
		return 0x28A745
	case api.SeverityMaintenance:
		return 0x007BFF
	case api.SeverityDegraded:
		return 0xFFC107
	case api.SeverityOutage, api.SeverityMajorOutage:
		return 0xDC3545
	default:
		return 0x6C757D
	}
}

// capitalize makes a status word like "major_outage" into "Major outage".
func capitalize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func relativeTime(t time.Time) string {
	return humanize.RelTime(t, CurrentTime(), "ago", "from now")
}

// SortByImpact returns the incidents in the order of impact, the worst first.
// Incidents with the same impact keep the original order.
func SortByImpact(xs []api.Incident) []api.Incident {
	ys := make([]api.Incident, len(xs))
	copy(ys, xs)
	sort.SliceStable(ys, func(i, j int) bool {
		return ys[i].Impact.WorseThan(ys[j].Impact)
	})
	return ys
}

// FormatComponents formats components as the lines like below.
//
//	🟡 claude.ai
//	┗━ Degraded Performance
func FormatComponents(cs []api.Component) string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s\n┗━ %s", classify.Emoji(c.Status), FormatName(c.Name), capitalize(c.DisplayStatus()))
	}
	return b.String()
}

// FormatActiveIncidents formats active incidents in the snapshot, the worst first.
// It returns an empty string if there is no active incident.
func FormatActiveIncidents(s api.Snapshot) string {
	var b strings.Builder
	for i, x := range SortByImpact(s.ActiveIncidents()) {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s %s\n┗━ Status: %s", classify.Emoji(x.Impact), x.Name, capitalize(x.Status))
		if t := x.LatestTime(); !t.IsZero() {
			fmt.Fprintf(&b, " · %s", relativeTime(t))
		}
	}
	return b.String()
}

// FormatStatus formats the whole snapshot as a text page.
//
// The result can be read again by the text mode of the parser.
func FormatStatus(title string, s api.Snapshot) string {
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder

	fmt.Fprintf(&b, "☀️ %s\n", title)
	fmt.Fprintf(&b, "%s %s\n", classify.Emoji(s.Overall.Level), s.Overall.Description)

	if len(s.Components) > 0 {
		b.WriteString("components\n")
		b.WriteString(FormatComponents(s.Components))
		b.WriteByte('\n')
	}

	b.WriteString(Separator)
	b.WriteByte('\n')

	if active := FormatActiveIncidents(s); active != "" {
		b.WriteString("🚨 Active Incidents\n")
		b.WriteString(active)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Last Updated • %s\n", s.Timestamp.UTC().Format(timeFormat))

	return b.String()
}

// FormatTimeline formats the updates of an incident, the newest first.
func FormatTimeline(x api.Incident) string {
	var b strings.Builder
	for i, u := range x.Updates {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(
			&b,
			"%s %s\n┣━ 🕒 %s (%s)\n┗━ %s",
			classify.StatusEmoji(u.Status),
			capitalize(u.Status),
			u.Timestamp.UTC().Format(timeFormat),
			relativeTime(u.Timestamp),
			u.Message,
		)
	}
	return b.String()
}

// FormatIncident formats an incident with the timeline.
func FormatIncident(x api.Incident) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 %s\n", x.Name)
	fmt.Fprintf(&b, "Impact: %s\n", capitalize(x.Impact.String()))
	fmt.Fprintf(&b, "%s Status: %s", classify.StatusEmoji(x.Status), capitalize(x.Status))

	if len(x.Updates) > 0 {
		b.WriteString("\n\n📅 Timeline:\n")
		b.WriteString(FormatTimeline(x))
	}

	return b.String()
}

// Title returns a short summary of the update.
func Title(u api.Update) string {
	switch e := u.(type) {
	case api.InitialEvent:
		return "Status monitoring initialized"
	case api.StatusChangeEvent:
		return fmt.Sprintf("%s %s", classify.Emoji(e.Level), strings.TrimPrefix(e.Message, "System status changed to: "))
	case api.ComponentUpdateEvent:
		return fmt.Sprintf("%s %s", classify.Emoji(e.Component.Status), FormatName(e.Component.Name))
	case api.NewIncidentEvent:
		return "🚨 New incident: " + e.Incident.Name
	case api.IncidentUpdateEvent:
		return "📝 Incident updated: " + e.Incident.Name
	case api.IncidentResolvedEvent:
		return "✅ Incident resolved: " + e.Incident.Name
	default:
		return u.Kind().String()
	}
}

// FormatUpdate formats an update for a human.
// The snapshot is used to show the whole status on the initial update.
func FormatUpdate(s api.Snapshot, u api.Update) string {
	switch e := u.(type) {
	case api.InitialEvent:
		return "Status monitoring initialized.\n" + FormatStatus(DefaultTitle, s)
	case api.StatusChangeEvent:
		return fmt.Sprintf("%s %s", classify.Emoji(e.Level), e.Message)
	case api.ComponentUpdateEvent:
		return FormatComponents([]api.Component{e.Component})
	case api.NewIncidentEvent:
		return "New incident reported\n" + FormatIncident(e.Incident)
	case api.IncidentUpdateEvent:
		return "Incident updated\n" + FormatIncident(e.Incident)
	case api.IncidentResolvedEvent:
		return "Incident resolved\n" + FormatIncident(e.Incident)
	default:
		return api.Info(u).Message
	}
}

// Level returns the severity that represents the update.
func Level(u api.Update) api.Severity {
	switch e := u.(type) {
	case api.InitialEvent:
		return e.Overall.Level
	case api.StatusChangeEvent:
		return e.Level
	case api.ComponentUpdateEvent:
		return e.Component.Status
	case api.NewIncidentEvent:
		return e.Incident.Impact
	case api.IncidentUpdateEvent:
		return e.Incident.Impact
	case api.IncidentResolvedEvent:
		return api.SeverityOperational
	default:
		return api.SeverityUnknown
	}
}
