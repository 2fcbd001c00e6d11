// Package query holds the result of one logical fetch (a feed, a comment
// list) and guarantees that only the newest fetch may publish its result.
package query

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/mediashare/internal/client/invalidation"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

var (
	// ErrSuperseded is returned by a Refresh whose result was discarded
	// because a newer Refresh started.
	ErrSuperseded = errors.New("query: superseded by a newer fetch")

	// ErrClosed is returned once the owning view has closed the query.
	ErrClosed = errors.New("query: closed")
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

// Query is safe for concurrent use. Every Refresh takes a new generation
// and cancels the fetch of the previous one; a fetch publishes only if its
// generation is still current when it completes.
type Query[T any] struct {
	name   string
	fetch  FetchFunc[T]
	logger logging.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	closed    bool
	loading   bool
	result    T
	hasResult bool
	err       error
	updates   chan struct{}
}

func New[T any](name string, fetch FetchFunc[T], logger logging.Logger) *Query[T] {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Query[T]{
		name:    name,
		fetch:   fetch,
		logger:  logger.With("query", name),
		updates: make(chan struct{}, 1),
	}
}

// Refresh runs the fetch and publishes its outcome. A failed fetch keeps
// the previous result and records the error.
func (q *Query[T]) Refresh(ctx context.Context) (T, error) {
	var zero T

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return zero, ErrClosed
	}
	if q.cancel != nil {
		q.cancel()
	}
	q.gen++
	gen := q.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.loading = true
	q.mu.Unlock()

	v, err := q.fetch(fetchCtx)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return zero, ErrClosed
	}
	if gen != q.gen {
		q.logger.Debug(ctx, "discarding superseded fetch", "generation", gen, "current", q.gen)
		return zero, ErrSuperseded
	}

	cancel()
	q.cancel = nil
	q.loading = false

	if err != nil {
		q.err = err
		q.logger.Warn(ctx, "fetch failed", "error", err)
		q.notify()
		return zero, err
	}

	q.result = v
	q.hasResult = true
	q.err = nil
	q.notify()
	return v, nil
}

func (q *Query[T]) notify() {
	select {
	case q.updates <- struct{}{}:
	default:
	}
}

// Result returns the last published value. ok is false before the first
// successful fetch.
func (q *Query[T]) Result() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.result, q.hasResult
}

// Err is the error of the latest completed fetch, nil if it succeeded.
func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

func (q *Query[T]) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading
}

// Generation is the number of Refresh calls so far.
func (q *Query[T]) Generation() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.gen
}

// Updates fires (coalesced) whenever a fetch publishes a result or error.
func (q *Query[T]) Updates() <-chan struct{} { return q.updates }

// Watch refreshes once, then again on every bus change, until ctx is done
// or the query is closed. Each refresh runs in its own goroutine so that a
// new pulse supersedes a slow in-flight fetch.
func (q *Query[T]) Watch(ctx context.Context, bus *invalidation.Bus) error {
	w := bus.Watch()
	defer w.Close()

	var wg sync.WaitGroup
	defer wg.Wait()

	refresh := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.Refresh(ctx)
		}()
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-w.C():
			if !ok {
				return nil
			}
			if q.isClosed() {
				return ErrClosed
			}
			if w.Changed() {
				refresh()
			}
		}
	}
}

func (q *Query[T]) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close discards any in-flight fetch. Later Refresh calls return ErrClosed.
func (q *Query[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.loading = false
}
