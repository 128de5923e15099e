package parser

import (
	"strings"

	"github.com/macrat/statwatch/internal/classify"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// scanText reads a rendered text page like below.
//
//	☀️ Anthropic Status
//	🟢 All systems operational
//	components
//	🟢 Claude.ai
//	└─ Operational
//	_____________________
//	Last Updated • 20:26
//
// Text pages have no incidents.
func (p *Parser) scanText(raw string) rawPage {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	header := -1
	for i, l := range lines {
		if strings.EqualFold(cleanName(l), "components") {
			header = i
			break
		}
	}

	var r rawPage

	bannerArea := lines
	if header >= 0 {
		bannerArea = lines[:header]
	}
	r.Banner, r.BannerFound = textBanner(bannerArea)

	if header >= 0 {
		r.Components = textComponents(lines[header+1:])
		r.ComponentsFound = len(r.Components) > 0
	}

	return r
}

func textBanner(lines []string) (api.Overall, bool) {
	for _, l := range lines {
		l = normalizeSpace(l)
		if l == "" {
			continue
		}

		level := classify.Text(l, classify.Overall)
		if !level.Known() {
			level = classify.FromEmoji(l)
		}
		if level.Known() {
			return api.Overall{Description: l, Level: level}, true
		}
	}
	return api.Overall{}, false
}

func textComponents(lines []string) []api.Component {
	var cs []api.Component

	pending := ""
	pendingMarker := api.SeverityUnknown

	flush := func() {
		if pending == "" {
			return
		}
		status := pendingMarker
		if !status.Known() {
			status = api.SeverityOperational
		}
		cs = append(cs, api.Component{Name: pending, Status: status})
		pending = ""
	}

	for _, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case l == "":
			continue
		case isSeparator(l):
			flush()
			return cs
		case isBranch(l):
			if pending == "" {
				continue
			}
			c := componentStatus(strings.TrimLeft(l, "└┗├┣─━|-_ "), pendingMarker)
			c.Name = pending
			cs = append(cs, c)
			pending = ""
		default:
			flush()
			pending = cleanName(l)
			pendingMarker = classify.FromEmoji(l)
		}
	}
	flush()

	return cs
}

// isBranch reports the line is a status label of the previous component, like "└─ Operational".
func isBranch(l string) bool {
	for _, prefix := range []string{"└", "┗", "├", "┣", "|_", "- "} {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// isSeparator reports the line is the end of the components section.
func isSeparator(l string) bool {
	if strings.HasPrefix(strings.ToLower(l), "last updated") {
		return true
	}
	return strings.Trim(l, "_━─=-") == ""
}
