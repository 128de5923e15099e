package detect_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/macrat/statwatch/internal/detect"
	"github.com/macrat/statwatch/internal/parser"
	api "github.com/macrat/statwatch/lib-statwatch"
)

var (
	t0 = time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(5 * time.Minute)
)

func setTime(t *testing.T, now time.Time) {
	t.Helper()

	orig := detect.CurrentTime
	detect.CurrentTime = func() time.Time { return now }
	t.Cleanup(func() {
		detect.CurrentTime = orig
	})
}

func allOperational(ts time.Time) api.Snapshot {
	return api.Snapshot{
		Overall: api.Overall{Description: "All Systems Operational", Level: api.SeverityOperational},
		Components: []api.Component{
			{Name: "claude.ai", Status: api.SeverityOperational, Label: "Operational", Timestamp: ts},
			{Name: "console.anthropic.com", Status: api.SeverityOperational, Label: "Operational", Timestamp: ts},
			{Name: "api.anthropic.com", Status: api.SeverityOperational, Label: "Operational", Timestamp: ts},
		},
		Incidents: []api.Incident{},
		Timestamp: ts,
	}
}

func withIncidents(s api.Snapshot, xs ...api.Incident) api.Snapshot {
	s.Incidents = xs
	return s
}

func incident(id, status string, n int) api.Incident {
	i := api.Incident{
		ID:     id,
		Name:   "Incident " + id,
		Impact: api.SeverityDegraded,
		Status: status,
	}
	for k := 0; k < n; k++ {
		i.Updates = append(i.Updates, api.IncidentUpdate{
			Status:    status,
			Message:   "update",
			Timestamp: t0.Add(-time.Duration(k) * time.Minute),
		})
	}
	return i
}

func kinds(us []api.Update) []api.UpdateKind {
	ks := []api.UpdateKind{}
	for _, u := range us {
		ks = append(ks, u.Kind())
	}
	return ks
}

func TestEngine_Diff_idempotence(t *testing.T) {
	snapshots := []api.Snapshot{
		{},
		allOperational(t0),
		withIncidents(allOperational(t0), incident("a", "investigating", 1), incident("b", "resolved", 3)),
		withIncidents(allOperational(t0), incident("x", "investigating", 0), incident("x", "investigating", 0)),
	}

	for i, s := range snapshots {
		prev := s
		if us := detect.New(0, 0).Diff(&prev, s); len(us) != 0 {
			t.Errorf("%d: expected no update but got %#v", i, us)
		}
	}
}

func TestEngine_Diff_coldStart(t *testing.T) {
	snapshots := []api.Snapshot{
		{},
		allOperational(t0),
		withIncidents(allOperational(t0), incident("a", "investigating", 2)),
	}

	for i, s := range snapshots {
		us := detect.New(0, 0).Diff(nil, s)
		if len(us) != 1 {
			t.Fatalf("%d: expected exactly one update but got %d", i, len(us))
		}
		if us[0].Kind() != api.KindInitial {
			t.Errorf("%d: expected initial event but got %s", i, us[0].Kind())
		}
	}
}

func TestEngine_Diff_initialMessage(t *testing.T) {
	us := detect.New(0, 0).Diff(nil, allOperational(t0))

	want := []api.Update{
		api.InitialEvent{
			EventInfo: api.EventInfo{
				Message: "Status monitoring initialized.\n" +
					"Current Status: All Systems Operational\n" +
					"claude.ai: operational\n" +
					"console.anthropic.com: operational\n" +
					"api.anthropic.com: operational",
				Timestamp: t0,
			},
			Overall:    allOperational(t0).Overall,
			Components: allOperational(t0).Components,
		},
	}

	if diff := cmp.Diff(want, us); diff != "" {
		t.Errorf("unexpected updates:\n%s", diff)
	}
}

func TestEngine_Diff_scenarioA(t *testing.T) {
	prev := allOperational(t0)

	cur := allOperational(t1)
	cur.Overall = api.Overall{Description: "Degraded Performance", Level: api.SeverityDegraded}
	cur.Components[0].Status = api.SeverityDegraded
	cur.Components[0].Label = "Degraded Performance"

	us := detect.New(0, 0).Diff(&prev, cur)

	want := []api.Update{
		api.StatusChangeEvent{
			EventInfo: api.EventInfo{
				Message:   "System status changed to: Degraded Performance",
				Timestamp: t1,
			},
			Level: api.SeverityDegraded,
		},
		api.ComponentUpdateEvent{
			EventInfo: api.EventInfo{
				Message:   "claude.ai status changed to: degraded",
				Timestamp: t1,
			},
			Component: cur.Components[0],
		},
	}

	if diff := cmp.Diff(want, us); diff != "" {
		t.Errorf("unexpected updates:\n%s", diff)
	}
}

func TestEngine_Diff_components(t *testing.T) {
	prev := allOperational(t0)
	prev.Components = prev.Components[:2]

	cur := allOperational(t1)
	cur.Components = cur.Components[1:]
	cur.Components[0].Label = "Fully Operational"

	us := detect.New(0, 0).Diff(&prev, cur)

	// claude.ai was removed and it is not reported, and the label change of console.anthropic.com is not a status change.
	if diff := cmp.Diff([]api.UpdateKind{api.KindComponentUpdate}, kinds(us)); diff != "" {
		t.Fatalf("unexpected kinds:\n%s", diff)
	}
	if c := us[0].(api.ComponentUpdateEvent).Component; c.Name != "api.anthropic.com" {
		t.Errorf("unexpected component: %#v", c)
	}
}

func TestEngine_Diff_incidents(t *testing.T) {
	setTime(t, t1)

	prev := withIncidents(
		allOperational(t0),
		incident("keep", "investigating", 1),
		incident("grow", "investigating", 1),
		incident("change", "investigating", 2),
		incident("gone", "identified", 2),
	)
	cur := withIncidents(
		allOperational(t1),
		incident("new1", "investigating", 1),
		incident("keep", "investigating", 1),
		incident("grow", "investigating", 2),
		incident("new2", "investigating", 0),
		incident("change", "monitoring", 2),
	)

	us := detect.New(0, 0).Diff(&prev, cur)

	wantKinds := []api.UpdateKind{
		api.KindNewIncident,
		api.KindNewIncident,
		api.KindIncidentUpdate,
		api.KindIncidentUpdate,
		api.KindIncidentResolved,
	}
	if diff := cmp.Diff(wantKinds, kinds(us)); diff != "" {
		t.Fatalf("unexpected kinds:\n%s", diff)
	}

	ids := []string{}
	for _, u := range us {
		switch e := u.(type) {
		case api.NewIncidentEvent:
			ids = append(ids, e.Incident.ID)
		case api.IncidentUpdateEvent:
			ids = append(ids, e.Incident.ID)
		case api.IncidentResolvedEvent:
			ids = append(ids, e.Incident.ID)
		}
	}
	if diff := cmp.Diff([]string{"new1", "new2", "grow", "change", "gone"}, ids); diff != "" {
		t.Errorf("unexpected order:\n%s", diff)
	}

	created := us[0].(api.NewIncidentEvent)
	if created.Message != "New incident reported:\nIncident new1\nImpact: degraded\nStatus: investigating" {
		t.Errorf("unexpected message: %q", created.Message)
	}
	if !created.Timestamp.Equal(t0) {
		t.Errorf("new incident should have the time of the latest update: %s", created.Timestamp)
	}

	if ts := us[1].(api.NewIncidentEvent).Timestamp; !ts.Equal(cur.Timestamp) {
		t.Errorf("incident without update should have the snapshot time: %s", ts)
	}

	if msg := us[3].(api.IncidentUpdateEvent).Message; msg != `Incident "Incident change" status updated to: monitoring` {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestEngine_Diff_monotonicUpdates(t *testing.T) {
	for n := 1; n <= 3; n++ {
		prev := withIncidents(allOperational(t0), incident("a", "investigating", n))
		cur := withIncidents(allOperational(t0), incident("a", "investigating", n+1))

		us := detect.New(0, 0).Diff(&prev, cur)
		if diff := cmp.Diff([]api.UpdateKind{api.KindIncidentUpdate}, kinds(us)); diff != "" {
			t.Errorf("%d: unexpected kinds:\n%s", n, diff)
		}
	}

	prev := withIncidents(allOperational(t0), incident("a", "investigating", 3))
	cur := withIncidents(allOperational(t0), incident("a", "investigating", 2))
	us := detect.New(0, 0).Diff(&prev, cur)
	if diff := cmp.Diff([]api.UpdateKind{api.KindIncidentUpdate}, kinds(us)); diff != "" {
		t.Errorf("decreasing updates should be reported as changed:\n%s", diff)
	}
}

func TestEngine_Diff_resolved(t *testing.T) {
	setTime(t, t1)

	gone := incident("gone", "monitoring", 2)
	prev := withIncidents(allOperational(t0), incident("stay", "investigating", 1), gone)
	cur := withIncidents(allOperational(t0), incident("stay", "investigating", 1))

	us := detect.New(0, 0).Diff(&prev, cur)

	want := []api.Update{
		api.IncidentResolvedEvent{
			EventInfo: api.EventInfo{
				Message:   `Incident "Incident gone" resolved`,
				Timestamp: t1,
			},
			Incident: api.Incident{
				ID:     "gone",
				Name:   "Incident gone",
				Impact: api.SeverityDegraded,
				Status: "resolved",
				Updates: append(
					[]api.IncidentUpdate{{Status: "resolved", Message: "Incident resolved", Timestamp: t1}},
					gone.Updates...,
				),
			},
		},
	}

	if diff := cmp.Diff(want, us); diff != "" {
		t.Errorf("unexpected updates:\n%s", diff)
	}

	if len(prev.Incidents[1].Updates) != 2 {
		t.Errorf("previous snapshot was modified: %#v", prev.Incidents[1])
	}
}

func TestEngine_Diff_noIncidentsOnPage(t *testing.T) {
	prev := withIncidents(allOperational(t0), incident("a", "investigating", 1))
	cur := allOperational(t0)

	if us := detect.New(0, 0).Diff(&prev, cur); len(us) != 0 {
		t.Errorf("empty incident list should not resolve incidents: %#v", us)
	}
}

func TestEngine_Diff_scenarioC(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "parser", "testdata", "linkless.html"))
	if err != nil {
		t.Fatalf("failed to read test page: %s", err)
	}

	p := parser.New([]string{"claude.ai"})

	origParserTime := parser.CurrentTime
	t.Cleanup(func() { parser.CurrentTime = origParserTime })

	parser.CurrentTime = func() time.Time { return t0 }
	prev, err := p.Parse(string(raw), api.FormatHTML)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	parser.CurrentTime = func() time.Time { return t0.Add(time.Second) }
	cur, err := p.Parse(string(raw), api.FormatHTML)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	setTime(t, t0.Add(time.Second))

	// An incident without permalink gets a new ID on every parse, so it looks like a new incident and a resolved one.
	us := detect.New(0, 0).Diff(&prev, cur)

	if diff := cmp.Diff([]api.UpdateKind{api.KindNewIncident, api.KindIncidentResolved}, kinds(us)); diff != "" {
		t.Fatalf("unexpected kinds:\n%s", diff)
	}

	created := us[0].(api.NewIncidentEvent).Incident
	resolved := us[1].(api.IncidentResolvedEvent).Incident
	if created.Name != resolved.Name || created.ID == resolved.ID {
		t.Errorf("expected the same incident with different ids: %#v / %#v", created, resolved)
	}
}

type memoryStore struct {
	current *api.Snapshot
	saved   []api.Snapshot
	err     error
}

func (s *memoryStore) Current() *api.Snapshot {
	return s.current
}

func (s *memoryStore) Save(x api.Snapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, x)
	s.current = &x
	return nil
}

func TestEngine_Apply(t *testing.T) {
	store := &memoryStore{}
	e := detect.New(0, 0)

	us, err := e.Apply(store, allOperational(t0))
	if err != nil {
		t.Fatalf("failed to apply: %s", err)
	}
	if diff := cmp.Diff([]api.UpdateKind{api.KindInitial}, kinds(us)); diff != "" {
		t.Errorf("unexpected kinds:\n%s", diff)
	}

	us, err = e.Apply(store, allOperational(t1))
	if err != nil {
		t.Fatalf("failed to apply: %s", err)
	}
	if len(us) != 0 {
		t.Errorf("expected no update but got %#v", us)
	}

	if len(store.saved) != 2 {
		t.Errorf("expected 2 saves but got %d", len(store.saved))
	}
}

func TestEngine_Apply_saveError(t *testing.T) {
	prev := allOperational(t0)
	store := &memoryStore{current: &prev, err: errors.New("disk full")}

	cur := allOperational(t1)
	cur.Overall.Description = "Something wrong"

	us, err := detect.New(0, 0).Apply(store, cur)
	if err == nil {
		t.Fatalf("expected error but got nil")
	}
	if us != nil {
		t.Errorf("expected no update on error but got %#v", us)
	}
	if store.current != &prev {
		t.Errorf("store should not be changed")
	}
}

func TestEngine_Diff_dedup(t *testing.T) {
	now := t0
	orig := detect.CurrentTime
	detect.CurrentTime = func() time.Time { return now }
	defer func() {
		detect.CurrentTime = orig
	}()

	e := detect.New(60*time.Second, 1000)

	prev := allOperational(t0)
	cur := allOperational(t0)
	cur.Overall.Description = "Degraded Performance"
	cur.Components[0].Status = api.SeverityDegraded

	if us := e.Diff(&prev, cur); len(us) != 2 {
		t.Fatalf("expected 2 updates but got %#v", us)
	}

	now = now.Add(30 * time.Second)
	if us := e.Diff(&prev, cur); len(us) != 0 {
		t.Errorf("duplicated updates should be suppressed: %#v", us)
	}

	now = now.Add(31 * time.Second)
	if us := e.Diff(&prev, cur); len(us) != 2 {
		t.Errorf("expired updates should be reported again: %#v", us)
	}
}

func TestEngine_Diff_dedupIncidents(t *testing.T) {
	e := detect.New(0, 0)

	prev := allOperational(t0)
	cur := withIncidents(allOperational(t0), incident("a", "investigating", 1))

	for i := 0; i < 2; i++ {
		if us := e.Diff(&prev, cur); len(us) != 1 {
			t.Errorf("%d: incident updates are not deduplicated: %#v", i, us)
		}
	}
}
