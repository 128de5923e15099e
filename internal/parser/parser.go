// Package parser converts a raw status page into a statwatch.Snapshot.
package parser

import (
	"strings"
	"time"
	"unicode"

	"github.com/macrat/statwatch/internal/classify"
	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/rs/zerolog"
)

// CurrentTime returns current time.
// This variable is for testing purpose.
var CurrentTime = time.Now

const (
	DefaultDescription = "All Systems Operational"
	outageDescription  = "System Outage"
	degradedDesc       = "Degraded Performance"
)

// Parser parses status pages.
type Parser struct {
	Selectors Selectors
	Logger    zerolog.Logger

	// allow maps lower-cased component names to the configured spelling.
	allow map[string]string
}

// New creates a Parser that tracks only components in allowList.
// With an empty allowList, no component is recorded.
func New(allowList []string) *Parser {
	p := &Parser{
		Selectors: DefaultSelectors,
		Logger:    zerolog.Nop(),
		allow:     make(map[string]string, len(allowList)),
	}

	for _, name := range allowList {
		key := strings.ToLower(cleanName(name))
		if _, ok := p.allow[key]; !ok {
			p.allow[key] = name
		}
	}

	return p
}

// Parse parses a page into a Snapshot.
//
// It returns statwatch.ErrParse only if both of the overall status and the components are not found.
// Broken incidents or updates are skipped without error.
func (p *Parser) Parse(raw string, format api.PageFormat) (api.Snapshot, error) {
	var r rawPage
	var err error

	if format == api.FormatText {
		r = p.scanText(raw)
	} else {
		r, err = p.scanHTML(raw)
		if err != nil {
			return api.Snapshot{}, swerr.New(api.ErrParse, err, "failed to read HTML")
		}
	}

	if !r.BannerFound && !r.ComponentsFound {
		return api.Snapshot{}, swerr.New(api.ErrParse, nil, "neither overall status nor components found in %s page", format)
	}

	now := CurrentTime().UTC()

	s := api.Snapshot{
		Components: make([]api.Component, 0, len(r.Components)),
		Incidents:  r.Incidents,
		Timestamp:  now,
	}
	if s.Incidents == nil {
		s.Incidents = []api.Incident{}
	}

	seen := make(map[string]struct{})
	for _, c := range r.Components {
		name, ok := p.track(c.Name)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		c.Name = name
		c.Timestamp = now
		s.Components = append(s.Components, c)
	}

	s.Overall = deriveOverall(r.Banner, s.Components)

	return s, nil
}

// track reports the component should be recorded, and returns the configured name of it.
func (p *Parser) track(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	canonical, ok := p.allow[strings.ToLower(name)]
	return canonical, ok
}

// rawPage is the intermediate result of scanning a page.
type rawPage struct {
	BannerFound     bool
	Banner          api.Overall
	ComponentsFound bool
	Components      []api.Component
	Incidents       []api.Incident
}

// deriveOverall decides the overall status from the banner and the components.
//
// The banner of the page sometimes lags behind the component indicators, so the components take precedence.
// A banner saying major outage is kept while some component is in outage.
func deriveOverall(banner api.Overall, components []api.Component) api.Overall {
	if banner.Description == "" {
		banner.Description = DefaultDescription
	}
	if !banner.Level.Known() {
		banner.Level = api.SeverityOperational
	}

	var hasOutage, hasDegraded bool
	for _, c := range components {
		switch c.Status {
		case api.SeverityOutage, api.SeverityMajorOutage:
			hasOutage = true
		case api.SeverityDegraded:
			hasDegraded = true
		}
	}

	var level api.Severity
	switch {
	case hasOutage && banner.Level == api.SeverityMajorOutage:
		return banner
	case hasOutage:
		level = api.SeverityOutage
	case hasDegraded:
		level = api.SeverityDegraded
	default:
		return banner
	}

	if banner.Level == level {
		return banner
	}

	desc := degradedDesc
	if level == api.SeverityOutage {
		desc = outageDescription
	}
	return api.Overall{Description: desc, Level: level}
}

// cleanName removes decorative symbols like emoji or help markers from a component name, and normalizes spaces.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if f == "?" || f == "•" || f == "·" {
			continue
		}
		kept = append(kept, f)
	}

	return strings.Join(kept, " ")
}

// normalizeSpace collapses all white spaces in s into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func componentStatus(label string, fallback api.Severity) api.Component {
	label = normalizeSpace(label)
	if label == "" {
		return api.Component{Status: fallback}
	}
	return api.Component{
		Status: classify.Text(label, classify.Component),
		Label:  label,
	}
}
