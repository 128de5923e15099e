// Package fetch reads the status page from a web server or a local file.
package fetch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
)

const (
	DefaultURL       = "https://status.anthropic.com"
	DefaultUserAgent = "statwatch (+https://github.com/macrat/statwatch)"
	DefaultTimeout   = 10 * time.Second
	DefaultRetries   = 3
)

// Fetcher fetches a status page.
type Fetcher interface {
	Fetch(ctx context.Context) (api.Page, error)
}

// Options is the options for HTTP fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Retries   int
}

// New creates a Fetcher for the target.
// The target is a http(s) URL, a file URL, or a file path.
func New(target string, opts Options) (Fetcher, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, swerr.New(api.ErrInvalidConfig, nil, "URL is empty")
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// "C:\path" on Windows has a single letter scheme.
		return FileFetcher{Path: target}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return nil, swerr.New(api.ErrInvalidConfig, nil, "URL has no host: %s", target)
		}
		return NewHTTPFetcher(u, opts), nil
	case "file":
		p := u.Opaque
		if p == "" {
			p = u.Path
		}
		if p == "" {
			return nil, swerr.New(api.ErrInvalidConfig, nil, "file URL has no path: %s", target)
		}
		return FileFetcher{Path: p}, nil
	default:
		return nil, swerr.New(api.ErrInvalidConfig, nil, "unsupported scheme: %s", u.Scheme)
	}
}
