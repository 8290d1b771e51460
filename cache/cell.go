package cache

import (
	"sync/atomic"
	"time"
)

// Snapshot is one immutable published value. Holders may keep it as long
// as they like; later publishes never modify it.
type Snapshot[V any] struct {
	Value V
	// Version is 1 for the initial load and grows by one per publish.
	Version uint64
	// LoadedAt is when the producing invocation completed.
	LoadedAt time.Time
}

// cell is a lock-free, read-optimized slot holding the current snapshot.
// Only the scheduler publishes; any number of goroutines may load.
type cell[V any] struct{ p atomic.Pointer[Snapshot[V]] }

func newCell[V any](v V, at time.Time) *cell[V] {
	c := &cell[V]{}
	c.p.Store(&Snapshot[V]{Value: v, Version: 1, LoadedAt: at})
	return c
}

// load returns the current snapshot. Never nil.
func (c *cell[V]) load() *Snapshot[V] {
	return c.p.Load()
}

// publish atomically swaps in a snapshot wrapping v.
func (c *cell[V]) publish(v V, at time.Time) *Snapshot[V] {
	s := &Snapshot[V]{Value: v, Version: c.p.Load().Version + 1, LoadedAt: at}
	c.p.Store(s)
	return s
}
