package cache

import (
	"context"
	"runtime"
	"sync/atomic"
)

// shared is the state every Handle of one cache points at. The scheduler
// runs while shares > 0; the scheduler itself never references a Handle.
type shared[V any] struct {
	name   string
	cell   *cell[V]
	sched  *scheduler[V]
	shares atomic.Int64
	stop   context.CancelFunc
}

// acquire adds a share unless the cache already stopped.
func (s *shared[V]) acquire() bool {
	for {
		n := s.shares.Load()
		if n <= 0 {
			return false
		}
		if s.shares.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *shared[V]) release() {
	if s.shares.Add(-1) == 0 {
		s.stop()
	}
}

// lease is one Handle's share. It lives outside the Handle so that a
// cleanup attached to the Handle can release it.
type lease[V any] struct {
	s    *shared[V]
	held atomic.Bool
}

func (l *lease[V]) release() {
	if l.held.CompareAndSwap(true, false) {
		l.s.release()
	}
}

// Handle reads a cache. It is safe for concurrent use. Every Handle,
// including clones, holds one share of the cache and should be closed when
// no longer needed; the background refresh stops once every share is
// released. A Handle that is dropped without Close releases its share when
// the garbage collector reclaims it.
type Handle[V any] struct {
	l *lease[V]
}

func newHandle[V any](s *shared[V], held bool) *Handle[V] {
	l := &lease[V]{s: s}
	l.held.Store(held)
	h := &Handle[V]{l: l}
	if held {
		runtime.AddCleanup(h, (*lease[V]).release, l)
	}
	return h
}

// Read returns the current value without blocking. It never fails; after
// the cache stopped it keeps returning the last published value.
func (h *Handle[V]) Read() V {
	return h.l.s.cell.load().Value
}

// Snapshot returns the current snapshot, including its version and load
// time.
func (h *Handle[V]) Snapshot() *Snapshot[V] {
	return h.l.s.cell.load()
}

// Clone returns a new Handle over the same value. While the cache is live
// the clone holds its own share. Cloning after the cache stopped yields a
// Handle that reads the last value and holds nothing.
func (h *Handle[V]) Clone() *Handle[V] {
	return newHandle(h.l.s, h.l.s.acquire())
}

// Close releases this Handle's share. It is idempotent and always returns
// nil. Reads remain valid after Close.
func (h *Handle[V]) Close() error {
	h.l.release()
	return nil
}

// Name returns the cache name given to the Builder.
func (h *Handle[V]) Name() string { return h.l.s.name }

// State reports the scheduler state.
func (h *Handle[V]) State() State { return h.l.s.sched.State() }

// Done is closed once the scheduler has stopped.
func (h *Handle[V]) Done() <-chan struct{} { return h.l.s.sched.done }
