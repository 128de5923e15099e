package classify

import (
	"strings"

	api "github.com/macrat/statwatch/lib-statwatch"
)

var emojiTable = []struct {
	Emoji string
	Level api.Severity
}{
	{"🟢", api.SeverityOperational},
	{"🔵", api.SeverityMaintenance},
	{"🟡", api.SeverityDegraded},
	{"🟠", api.SeverityOutage},
	{"🔴", api.SeverityOutage},
}

// Emoji returns an indicator emoji for the severity.
func Emoji(s api.Severity) string {
	switch s {
	case api.SeverityOperational:
		return "🟢"
	case api.SeverityMaintenance:
		return "🔵"
	case api.SeverityDegraded:
		return "🟡"
	case api.SeverityOutage, api.SeverityMajorOutage:
		return "🔴"
	default:
		return "⚪"
	}
}

// FromEmoji finds an indicator emoji in the text and classifies it.
// It returns unknown if the text has no indicator.
func FromEmoji(text string) api.Severity {
	for _, x := range emojiTable {
		if strings.Contains(text, x.Emoji) {
			return x.Level
		}
	}
	return api.SeverityUnknown
}

// StatusEmoji returns an indicator emoji for a free-form status word like "investigating" or "resolved".
func StatusEmoji(status string) string {
	s := Text(status, Overall)
	if !s.Known() {
		return Emoji(api.SeverityUnknown)
	}
	return Emoji(s)
}
