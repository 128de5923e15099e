// Package store keeps the current and the previous snapshots, and persists them into a JSON file.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/rs/zerolog"
)

// CurrentTime returns current time.
// This variable is for testing purpose.
var CurrentTime = time.Now

const maxErrors = 10

// record is the format of the state file.
type record struct {
	Current  *api.Snapshot `json:"current"`
	Previous *api.Snapshot `json:"previous"`
}

// Store is the state of statwatch.
//
// Empty path means the store is not persisted.
type Store struct {
	path   string
	Logger zerolog.Logger

	lock     sync.RWMutex
	current  *api.Snapshot
	previous *api.Snapshot

	errorsLock sync.RWMutex
	errors     []string
	healthy    bool
}

// New creates a new empty Store.
// Please call Restore to read the state file.
func New(path string) *Store {
	return &Store{
		path:    path,
		Logger:  zerolog.Nop(),
		healthy: true,
	}
}

// Path returns path to the state file.
func (s *Store) Path() string {
	return s.path
}

// Restore reads the state file.
//
// A missing file is not an error.
// If the file is broken, the store starts from empty state and returns statwatch.ErrStoreCorrupted.
func (s *Store) Restore() error {
	if s.path == "" {
		return nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.current, s.previous = nil, nil

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Logger.Debug().Str("path", s.path).Msg("no state file, start from empty")
		return nil
	} else if err != nil {
		err = swerr.New(api.ErrIO, err, "failed to read state file")
		s.addError(err.Error())
		return err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		err = swerr.New(api.ErrStoreCorrupted, err, "%s", s.path)
		s.addError(err.Error())
		return err
	}

	s.current, s.previous = r.Current, r.Previous

	return nil
}

// Load returns copies of the current and the previous snapshots.
// They are nil if there is no snapshot yet.
func (s *Store) Load() (current, previous *api.Snapshot) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return clone(s.current), clone(s.previous)
}

// Current returns a copy of the current snapshot, or nil.
func (s *Store) Current() *api.Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return clone(s.current)
}

// Save makes the current snapshot into previous, and the snap into current.
//
// The state file is replaced atomically.
// If failed to write, the state in the memory is not changed either.
func (s *Store) Save(snap api.Snapshot) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	r := record{
		Current:  &snap,
		Previous: s.current,
	}

	if s.path != "" {
		if err := writeAtomic(s.path, r); err != nil {
			err = swerr.New(api.ErrIO, err, "failed to write state file")
			s.addError(err.Error())
			return err
		}
	}

	s.current, s.previous = r.Current, r.Previous
	s.setHealthy()

	return nil
}

func writeAtomic(path string, r record) (err error) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(raw); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmp, path); err != nil {
		return err
	}

	syncDir(dir)

	return nil
}

// syncDir flushes the rename into the disk.
// Some platforms can not open a directory, so errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

func clone(s *api.Snapshot) *api.Snapshot {
	if s == nil {
		return nil
	}
	x := *s
	return &x
}

// setHealthy is reset healthy status of this store.
// This status is reported by Errors method.
func (s *Store) setHealthy() {
	s.errorsLock.Lock()
	defer s.errorsLock.Unlock()

	s.healthy = true
}

// addError adds error message for Errors method, and set healthy status to false.
func (s *Store) addError(message string) {
	s.errorsLock.Lock()
	defer s.errorsLock.Unlock()

	s.healthy = false
	s.errors = append(
		s.errors,
		fmt.Sprintf("%s\t%s", CurrentTime().Format(time.RFC3339), message),
	)

	if len(s.errors) > maxErrors {
		s.errors = s.errors[1:]
	}
}

// Errors returns store status and error logs.
func (s *Store) Errors() (healthy bool, messages []string) {
	s.errorsLock.RLock()
	defer s.errorsLock.RUnlock()

	return s.healthy, s.errors
}
