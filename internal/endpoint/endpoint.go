// Package endpoint serves the current state of statwatch via HTTP.
package endpoint

import (
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/httprate"
)

// Options is the options for New.
type Options struct {
	// Title is the title line of /status.txt.
	Title string

	// RequestLimit is the number of requests a client can send in a minute.
	// Zero means unlimited.
	RequestLimit int
}

// New makes a http.Handler that serves all endpoints.
func New(s Store, opts Options) http.Handler {
	m := http.NewServeMux()

	m.Handle("/status", http.RedirectHandler("/status.txt", http.StatusMovedPermanently))
	m.HandleFunc("/status.txt", StatusTextEndpoint(s, opts.Title))
	m.HandleFunc("/status.json", StatusJSONEndpoint(s))

	m.HandleFunc("/healthz", HealthzEndpoint(s))

	m.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/status.txt", http.StatusFound)
		} else {
			http.NotFound(w, r)
		}
	})

	var h http.Handler = onlyGet(m)
	if opts.RequestLimit > 0 {
		h = httprate.Limit(
			opts.RequestLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		)(h)
	}

	return gziphandler.GzipHandler(h)
}

func onlyGet(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	})
}
