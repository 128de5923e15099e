package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// StatusPage is a fake status page server.
// It responds the pages in order, and the last page repeatedly.
type StatusPage struct {
	*httptest.Server

	mu       sync.Mutex
	pages    []string
	requests int
}

// StartStatusPage starts a StatusPage that serves text pages.
func StartStatusPage(t testing.TB, pages ...string) *StatusPage {
	t.Helper()

	if len(pages) == 0 {
		t.Fatalf("StartStatusPage needs at least one page")
	}

	p := &StatusPage{pages: pages}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Server.Close)

	return p
}

func (p *StatusPage) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	page := p.pages[0]
	if len(p.pages) > 1 {
		p.pages = p.pages[1:]
	}
	p.requests++
	p.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(page))
}

// Requests returns the number of requests so far.
func (p *StatusPage) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}
