package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/macrat/statwatch/internal/parser"
	api "github.com/macrat/statwatch/lib-statwatch"
)

var allowList = []string{
	"claude.ai",
	"console.anthropic.com",
	"api.anthropic.com",
	"api.anthropic.com - Beta Features",
	"anthropic.com",
}

func readPage(t *testing.T, name string) string {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read test page: %s", err)
	}
	return string(raw)
}

func setTime(t *testing.T, now time.Time) {
	t.Helper()

	orig := parser.CurrentTime
	parser.CurrentTime = func() time.Time { return now }
	t.Cleanup(func() {
		parser.CurrentTime = orig
	})
}

func TestParser_Parse_html(t *testing.T) {
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	setTime(t, now)

	s, err := parser.New(allowList).Parse(readPage(t, "degraded.html"), api.FormatHTML)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	want := api.Snapshot{
		Overall: api.Overall{
			Description: "System Outage",
			Level:       api.SeverityOutage,
		},
		Components: []api.Component{
			{Name: "claude.ai", Status: api.SeverityDegraded, Label: "Degraded Performance", Timestamp: now},
			{Name: "console.anthropic.com", Status: api.SeverityOperational, Label: "Operational", Timestamp: now},
			{Name: "api.anthropic.com", Status: api.SeverityOutage, Timestamp: now},
		},
		Incidents: []api.Incident{
			{
				ID:     "yl2bcw7qs4g1",
				Name:   "Elevated errors on Claude.ai",
				Impact: api.SeverityOutage,
				Status: "monitoring",
				Updates: []api.IncidentUpdate{
					{
						Status:    "monitoring",
						Message:   "A fix has been implemented and we are monitoring the results.",
						Timestamp: time.Date(2024, 11, 29, 0, 47, 0, 0, time.UTC),
					},
					{
						Status:    "investigating",
						Message:   "We are currently investigating this issue.",
						Timestamp: time.Date(2024, 11, 29, 0, 2, 0, 0, time.UTC),
					},
				},
			},
			{
				ID:     "8fk2mq1zx0ab",
				Name:   "Slow responses",
				Impact: api.SeverityDegraded,
				Status: "resolved",
				Updates: []api.IncidentUpdate{
					{
						Status:    "resolved",
						Message:   "This incident has been resolved.",
						Timestamp: now,
					},
				},
			},
		},
		Timestamp: now,
	}

	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("unexpected snapshot:\n%s", diff)
	}
}

func TestParser_Parse_text(t *testing.T) {
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	setTime(t, now)

	p := parser.New([]string{
		"Claude.ai",
		"Console.anthropic.com",
		"Api.anthropic.com",
		"Api.anthropic.com - Beta Features",
		"Anthropic.com",
	})

	type C struct {
		Name   string
		Status api.Severity
	}

	tests := []struct {
		File        string
		Description string
		Level       api.Severity
		Components  []C
	}{
		{
			"operational.txt",
			"🟢 All systems operational",
			api.SeverityOperational,
			[]C{
				{"Claude.ai", api.SeverityOperational},
				{"Console.anthropic.com", api.SeverityOperational},
				{"Api.anthropic.com", api.SeverityOperational},
				{"Api.anthropic.com - Beta Features", api.SeverityOperational},
				{"Anthropic.com", api.SeverityOperational},
			},
		},
		{
			"degraded.txt",
			"🟡 Some systems experiencing degraded performance",
			api.SeverityDegraded,
			[]C{
				{"Claude.ai", api.SeverityDegraded},
				{"Console.anthropic.com", api.SeverityOperational},
				{"Api.anthropic.com", api.SeverityOperational},
				{"Api.anthropic.com - Beta Features", api.SeverityDegraded},
				{"Anthropic.com", api.SeverityOperational},
			},
		},
		{
			"major.txt",
			"🔴 Major system outage",
			api.SeverityMajorOutage,
			[]C{
				{"Claude.ai", api.SeverityOutage},
				{"Console.anthropic.com", api.SeverityOutage},
				{"Api.anthropic.com", api.SeverityOutage},
				{"Api.anthropic.com - Beta Features", api.SeverityDegraded},
				{"Anthropic.com", api.SeverityOperational},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.File, func(t *testing.T) {
			s, err := p.Parse(readPage(t, tt.File), api.FormatText)
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}

			if s.Overall.Description != tt.Description {
				t.Errorf("unexpected description: %q", s.Overall.Description)
			}
			if s.Overall.Level != tt.Level {
				t.Errorf("expected overall level %s but got %s", tt.Level, s.Overall.Level)
			}

			var actual []C
			for _, c := range s.Components {
				actual = append(actual, C{c.Name, c.Status})
			}
			if diff := cmp.Diff(tt.Components, actual); diff != "" {
				t.Errorf("unexpected components:\n%s", diff)
			}

			if len(s.Incidents) != 0 {
				t.Errorf("text page should have no incident: %#v", s.Incidents)
			}
			if !s.Timestamp.Equal(now) {
				t.Errorf("unexpected timestamp: %s", s.Timestamp)
			}
		})
	}
}

func TestParser_Parse_allowListCaseInsensitive(t *testing.T) {
	s, err := parser.New(allowList).Parse(readPage(t, "operational.txt"), api.FormatText)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	var names []string
	for _, c := range s.Components {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff(allowList, names); diff != "" {
		t.Errorf("names should be the spelling in the allow list:\n%s", diff)
	}
}

func TestParser_Parse_emptyAllowList(t *testing.T) {
	for _, list := range [][]string{nil, {}} {
		s, err := parser.New(list).Parse(readPage(t, "degraded.html"), api.FormatHTML)
		if err != nil {
			t.Fatalf("%#v: banner was found, so it should not be an error: %s", list, err)
		}

		if len(s.Components) != 0 {
			t.Errorf("%#v: no component should be recorded: %#v", list, s.Components)
		}
	}
}

func TestParser_Parse_severityPrecedence(t *testing.T) {
	page := `
		<div class="page-status status-none"><span class="status">All Systems Operational</span></div>
		<div class="component-container"><span class="name">claude.ai</span><span class="component-status">Degraded Performance</span></div>
		<div class="component-container"><span class="name">api.anthropic.com</span><span class="component-status">Partial Outage</span></div>
		<div class="component-container"><span class="name">anthropic.com</span><span class="component-status">Operational</span></div>
	`

	s, err := parser.New(allowList).Parse(page, api.FormatHTML)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	if s.Overall.Level != api.SeverityOutage {
		t.Errorf("expected outage but got %s", s.Overall.Level)
	}
	if s.Overall.Description != "System Outage" {
		t.Errorf("unexpected description: %q", s.Overall.Description)
	}
}

func TestParser_Parse_bannerOnlyUsedWhenComponentsAgree(t *testing.T) {
	tests := []struct {
		Name        string
		Page        string
		Level       api.Severity
		Description string
	}{
		{
			"banner-lags",
			`<div class="page-status status-none"><span class="status">All Systems Operational</span></div>
			 <div class="component-container"><span class="name">claude.ai</span><span class="component-status">Degraded Performance</span></div>`,
			api.SeverityDegraded,
			"Degraded Performance",
		},
		{
			"banner-maintenance",
			`<div class="page-status status-maintenance"><span class="status">Under Maintenance</span></div>
			 <div class="component-container"><span class="name">claude.ai</span><span class="component-status">Operational</span></div>`,
			api.SeverityMaintenance,
			"Under Maintenance",
		},
		{
			"no-banner",
			`<div class="component-container"><span class="name">claude.ai</span><span class="component-status">Operational</span></div>`,
			api.SeverityOperational,
			"All Systems Operational",
		},
		{
			"no-components",
			`<div class="page-status status-major"><span class="status">Partial System Outage</span></div>`,
			api.SeverityOutage,
			"Partial System Outage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			s, err := parser.New(allowList).Parse(tt.Page, api.FormatHTML)
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}

			if s.Overall.Level != tt.Level {
				t.Errorf("expected %s but got %s", tt.Level, s.Overall.Level)
			}
			if s.Overall.Description != tt.Description {
				t.Errorf("expected %q but got %q", tt.Description, s.Overall.Description)
			}
		})
	}
}

func TestParser_Parse_error(t *testing.T) {
	tests := []struct {
		Name   string
		Page   string
		Format api.PageFormat
	}{
		{"empty-html", "", api.FormatHTML},
		{"unrelated-html", "<html><body><h1>Not Found</h1></body></html>", api.FormatHTML},
		{"empty-text", "", api.FormatText},
		{"unrelated-text", "hello\nworld\n", api.FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			_, err := parser.New(allowList).Parse(tt.Page, tt.Format)
			if !errors.Is(err, api.ErrParse) {
				t.Errorf("expected ErrParse but got %v", err)
			}
		})
	}
}

func TestParser_Parse_unknownComponentsOnly(t *testing.T) {
	page := `<div class="component-container"><span class="name">something.example.com</span><span class="component-status">Operational</span></div>`

	s, err := parser.New(allowList).Parse(page, api.FormatHTML)
	if err != nil {
		t.Fatalf("component section was found, so it should not be an error: %s", err)
	}
	if len(s.Components) != 0 {
		t.Errorf("unknown components should be dropped: %#v", s.Components)
	}
}

func TestParser_Parse_linklessIncident(t *testing.T) {
	page := readPage(t, "linkless.html")
	p := parser.New(allowList)

	t1 := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	setTime(t, t1)

	s1, err := p.Parse(page, api.FormatHTML)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	t2 := t1.Add(time.Second)
	setTime(t, t2)

	s2, err := p.Parse(page, api.FormatHTML)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	if len(s1.Incidents) != 1 || len(s2.Incidents) != 1 {
		t.Fatalf("unexpected incidents: %#v / %#v", s1.Incidents, s2.Incidents)
	}

	i1, i2 := s1.Incidents[0], s2.Incidents[0]

	if i1.ID != "1733043600000" {
		t.Errorf("unexpected synthetic id: %s", i1.ID)
	}
	if i2.ID != "1733043601000" {
		t.Errorf("unexpected synthetic id: %s", i2.ID)
	}
	if !i1.SyntheticID || !i2.SyntheticID {
		t.Errorf("ids should be marked as synthetic")
	}

	if i1.Name != "Login failures" || i1.Impact != api.SeverityDegraded || i1.Status != "investigating" {
		t.Errorf("unexpected incident: %#v", i1)
	}

	wantTime := time.Date(2024, 11, 29, 0, 47, 0, 0, time.UTC)
	if len(i1.Updates) != 1 || !i1.Updates[0].Timestamp.Equal(wantTime) {
		t.Errorf("unexpected updates: %#v", i1.Updates)
	}

	if s1.Overall.Level != api.SeverityDegraded {
		t.Errorf("unexpected overall level: %s", s1.Overall.Level)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		ContentType string
		Body        string
		Want        api.PageFormat
	}{
		{"text/html; charset=utf-8", "<html></html>", api.FormatHTML},
		{"text/plain; charset=utf-8", "🟢 All systems operational", api.FormatText},
		{"", "<!DOCTYPE html><html></html>", api.FormatHTML},
		{"", "  <div class=\"page-status\"></div>", api.FormatHTML},
		{"", "☀️ Anthropic Status\ncomponents\n", api.FormatText},
		{"application/octet-stream", "<html></html>", api.FormatHTML},
		{"", "\ufeff<!DOCTYPE html><html></html>", api.FormatHTML},
		{"application/octet-stream", "\ufeff\n  <html></html>", api.FormatHTML},
		{"", "\ufeff🟢 All systems operational", api.FormatText},
	}

	for _, tt := range tests {
		if actual := parser.DetectFormat(tt.ContentType, tt.Body); actual != tt.Want {
			t.Errorf("%q %q: expected %s but got %s", tt.ContentType, tt.Body, tt.Want, actual)
		}
	}
}

func TestFormatByName(t *testing.T) {
	tests := []struct {
		Input string
		Want  api.PageFormat
		OK    bool
	}{
		{"status.html", api.FormatHTML, true},
		{"/tmp/STATUS.HTM", api.FormatHTML, true},
		{"status.txt", api.FormatText, true},
		{"status", api.FormatHTML, false},
	}

	for _, tt := range tests {
		f, ok := parser.FormatByName(tt.Input)
		if f != tt.Want || ok != tt.OK {
			t.Errorf("%s: expected %s/%v but got %s/%v", tt.Input, tt.Want, tt.OK, f, ok)
		}
	}
}
