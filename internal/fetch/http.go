package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/macrat/statwatch/internal/parser"
	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/rs/zerolog"
)

const (
	HTTP_REDIRECT_MAX = 10

	// maxBodySize is the limit of the page size.
	maxBodySize = 16 * 1024 * 1024
)

var (
	ErrRedirectLoopDetected = errors.New("redirect loop detected")
)

func checkHTTPRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > HTTP_REDIRECT_MAX {
		return ErrRedirectLoopDetected
	}
	return nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPFetcher fetches a status page via HTTP or HTTPS.
//
// A failed request is retried with exponential backoff.
// Client errors except 408 and 429 are not retried.
type HTTPFetcher struct {
	URL       *url.URL
	UserAgent string
	Timeout   time.Duration
	Retries   int
	MinWait   time.Duration
	MaxWait   time.Duration
	Client    *http.Client
	Logger    zerolog.Logger
}

// NewHTTPFetcher creates a HTTPFetcher.
// Zero values in opts are replaced by the defaults.
func NewHTTPFetcher(u *url.URL, opts Options) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	return &HTTPFetcher{
		URL:       u,
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
		Retries:   opts.Retries,
		MinWait:   4 * time.Second,
		MaxWait:   10 * time.Second,
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: opts.Timeout,
			},
			CheckRedirect: checkHTTPRedirect,
		},
		Logger: zerolog.Nop(),
	}
}

func (f *HTTPFetcher) String() string {
	return f.URL.Redacted()
}

// Fetch fetches the page.
// The error is always a statwatch.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context) (api.Page, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.MinWait
	bo.MaxInterval = f.MaxWait
	bo.MaxElapsedTime = 0

	var page api.Page
	attempt := 0

	operation := func() error {
		attempt++

		p, err := f.fetchOnce(ctx)
		if err != nil {
			var se StatusError
			if errors.As(err, &se) && se.StatusCode < 500 && se.StatusCode != http.StatusRequestTimeout && se.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		page = p
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.Logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Str("url", f.String()).Msg("failed to fetch status page, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.Retries)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return api.Page{}, swerr.New(api.ErrFetch, describeError(err), "%s", f.String())
	}

	return page, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context) (api.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL.String(), nil)
	if err != nil {
		return api.Page{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Cache-Control", "max-age=60")
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return api.Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return api.Page{}, StatusError{resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return api.Page{}, err
	}

	contentType := resp.Header.Get("Content-Type")
	content := decode(raw, contentType)

	return api.Page{
		Content: content,
		Format:  parser.DetectFormat(contentType, content),
	}, nil
}

// describeError makes network errors easy to read.
func describeError(err error) error {
	dnsErr := &net.DNSError{}
	opErr := &net.OpError{}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("timed out: %w", err)
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		return fmt.Errorf("no such host: %s", dnsErr.Name)
	case errors.As(err, &opErr) && opErr.Op == "dial" && opErr.Addr != nil:
		return fmt.Errorf("%s: connection refused", opErr.Addr)
	default:
		return err
	}
}
