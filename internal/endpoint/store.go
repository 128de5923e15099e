package endpoint

import (
	api "github.com/macrat/statwatch/lib-statwatch"
)

// Store is the read-only view of the state store that endpoints use.
type Store interface {
	// Load returns copies of the current and the previous snapshot.
	// Each of them is nil if not recorded yet.
	Load() (current, previous *api.Snapshot)

	// Errors returns a list of internal (critical) errors.
	Errors() (healthy bool, messages []string)
}
