// Package notify delivers detected updates to humans.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
)

var (
	ErrNotify = errors.New("failed to send notification")
)

// Notifier sends updates somewhere.
// The snapshot is the state after the updates.
type Notifier interface {
	Notify(ctx context.Context, s api.Snapshot, updates []api.Update) error
}

// Set is a set of notifiers.
// It also implements Notifier interface.
type Set []Notifier

// Notify of Set calls all Notify methods of children parallelly.
// This method blocks until all notifiers done, and returns all errors as a swerr.List.
func (ns Set) Notify(ctx context.Context, s api.Snapshot, updates []api.Update) error {
	if len(updates) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = &swerr.ListBuilder{What: ErrNotify}
	)

	for _, n := range ns {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()

			if err := n.Notify(ctx, s, updates); err != nil {
				mu.Lock()
				errs.Push(err)
				mu.Unlock()
			}
		}(n)
	}

	wg.Wait()

	return errs.Build()
}
