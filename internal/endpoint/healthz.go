package endpoint

import (
	"fmt"
	"net/http"
	"time"
)

// HealthzEndpoint is the http.HandlerFunc for /healthz page.
//
// It responds 500 while the store is unhealthy, for example the state file is not writable.
// A failure of fetching the status page is not a failure of statwatch itself, so it does not affect this endpoint.
func HealthzEndpoint(s Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
		w.Header().Set("Cache-Control", "no-store")

		healthy, messages := s.Errors()

		if healthy {
			fmt.Fprintln(w, "HEALTHY")
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintln(w, "FAILURE")
		}

		if cur, _ := s.Load(); cur != nil {
			fmt.Fprintf(w, "last snapshot\t%s\n", cur.Timestamp.UTC().Format(time.RFC3339))
		}

		for _, msg := range messages {
			fmt.Fprintln(w, msg)
		}
	}
}
