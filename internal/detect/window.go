package detect

import (
	"sync"
	"time"
)

const (
	DefaultExpiry   = 60 * time.Second
	DefaultCapacity = 1000
)

type windowEntry struct {
	Key string
	At  time.Time
}

// Window remembers recently emitted messages to suppress re-emitting the same message.
//
// Entries older than Expiry are treated as not seen.
// If the number of entries exceeds Capacity, the oldest entry is evicted.
type Window struct {
	Expiry   time.Duration
	Capacity int

	sync.Mutex
	seen  map[string]time.Time
	queue []windowEntry
}

// NewWindow creates a new Window.
// Zero or negative values use DefaultExpiry and DefaultCapacity.
func NewWindow(expiry time.Duration, capacity int) *Window {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Window{
		Expiry:   expiry,
		Capacity: capacity,
		seen:     make(map[string]time.Time),
	}
}

func windowKey(message string, timestamp time.Time) string {
	return message + "\x00" + timestamp.UTC().Format(time.RFC3339Nano)
}

// Seen reports the pair of message and timestamp was already recorded within the window.
// If not, it records the pair and returns false.
func (w *Window) Seen(message string, timestamp time.Time) bool {
	w.Lock()
	defer w.Unlock()

	now := CurrentTime()
	w.prune(now)

	key := windowKey(message, timestamp)
	if at, ok := w.seen[key]; ok && now.Sub(at) < w.Expiry {
		return true
	}

	w.seen[key] = now
	w.queue = append(w.queue, windowEntry{Key: key, At: now})

	for len(w.seen) > w.Capacity {
		w.evictOldest()
	}

	return false
}

// Len returns the number of entries in the window.
func (w *Window) Len() int {
	w.Lock()
	defer w.Unlock()

	return len(w.seen)
}

// prune drops expired entries from the head of the queue.
func (w *Window) prune(now time.Time) {
	for len(w.queue) > 0 && now.Sub(w.queue[0].At) >= w.Expiry {
		w.popFront()
	}
}

func (w *Window) evictOldest() {
	for len(w.queue) > 0 {
		if w.popFront() {
			return
		}
	}
}

// popFront removes the head of the queue.
// It reports an entry was removed from the map, because a re-recorded key leaves a stale queue entry.
func (w *Window) popFront() bool {
	e := w.queue[0]
	w.queue[0] = windowEntry{}
	w.queue = w.queue[1:]

	if at, ok := w.seen[e.Key]; ok && at.Equal(e.At) {
		delete(w.seen, e.Key)
		return true
	}
	return false
}
