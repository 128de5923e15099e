package endpoint

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/macrat/statwatch/internal/notify"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// StatusReport is the response of /status.json.
type StatusReport struct {
	Current  *api.Snapshot `json:"current"`
	Previous *api.Snapshot `json:"previous,omitempty"`
}

func notChecked(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	http.Error(w, "the status page is not checked yet", http.StatusServiceUnavailable)
}

// StatusJSONEndpoint is the http.HandlerFunc for /status.json.
//
// The previous snapshot is included only if the query has "previous".
func StatusJSONEndpoint(s Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur, prev := s.Load()
		if cur == nil {
			notChecked(w)
			return
		}

		report := StatusReport{Current: cur}
		if r.URL.Query().Has("previous") {
			report.Previous = prev
		}

		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")

		enc := json.NewEncoder(newFlushWriter(w))
		enc.SetIndent("", "  ")
		enc.Encode(report)
	}
}

// StatusTextEndpoint is the http.HandlerFunc for /status.txt.
func StatusTextEndpoint(s Store, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur, _ := s.Load()
		if cur == nil {
			notChecked(w)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")

		newFlushWriter(w).Write([]byte(notify.FormatStatus(title, *cur)))
	}
}
