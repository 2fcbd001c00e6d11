// Package invalidation implements the process-wide "something changed"
// signal. Mutations call Trigger once after their server round-trip; views
// holding a Watcher re-fetch when it fires. No payload is carried.
package invalidation

import "sync"

// Bus is a monotonic change counter. Parity is derived from it, but watchers
// compare versions: two triggers in a row would restore the old parity and
// be lost.
type Bus struct {
	mu       sync.Mutex
	version  uint64
	watchers map[*Watcher]struct{}
}

func New() *Bus {
	return &Bus{watchers: map[*Watcher]struct{}{}}
}

// Trigger records a change and wakes every watcher.
func (b *Bus) Trigger() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	for w := range b.watchers {
		select {
		case w.c <- struct{}{}:
		default:
		}
	}
}

func (b *Bus) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Parity flips on every Trigger.
func (b *Bus) Parity() bool {
	return b.Version()%2 == 1
}

// Watch registers a watcher positioned at the current version.
func (b *Bus) Watch() *Watcher {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := &Watcher{bus: b, seen: b.version, c: make(chan struct{}, 1)}
	b.watchers[w] = struct{}{}
	return w
}

// Watcher observes a Bus. Notifications coalesce: any number of triggers
// between two receives on C produce one wake-up.
type Watcher struct {
	bus *Bus
	c   chan struct{}

	mu     sync.Mutex
	seen   uint64
	closed bool
}

// C fires after at least one Trigger since the last receive. It is closed by
// Close.
func (w *Watcher) C() <-chan struct{} { return w.c }

// Changed reports whether the bus has been triggered since the previous call
// (or since Watch), and marks the current version as seen.
func (w *Watcher) Changed() bool {
	v := w.bus.Version()

	w.mu.Lock()
	defer w.mu.Unlock()
	changed := v != w.seen
	w.seen = v
	return changed
}

func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.bus.mu.Lock()
	delete(w.bus.watchers, w)
	close(w.c)
	w.bus.mu.Unlock()
}
