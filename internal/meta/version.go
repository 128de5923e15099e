// Package meta holds build information of statwatch.
package meta

import (
	"fmt"
)

var (
	// Version is the semantic version of the application.
	// This value is injected at build time via ldflags.
	Version = "HEAD"

	// Commit is the git commit hash.
	// This value is injected at build time via ldflags.
	Commit = "UNKNOWN"
)

// UserAgent returns the User-Agent header value for fetching status pages.
func UserAgent() string {
	return fmt.Sprintf("statwatch/%s (+https://github.com/macrat/statwatch)", Version)
}
