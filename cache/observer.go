package cache

import "time"

// Observer receives lifecycle events of a cache. Implementations must be
// safe for concurrent use and should return quickly: Refreshed and
// RefreshFailed run on the scheduler goroutine.
type Observer interface {
	// Loaded is called once when the initial invocation succeeds.
	Loaded(cache string, version uint64, took time.Duration)
	// Refreshed is called after a background cycle published a new value.
	Refreshed(cache string, version uint64, took time.Duration)
	// RefreshFailed is called after a background cycle failed; the
	// previous value stays published.
	RefreshFailed(cache string, took time.Duration, err error)
	// Stopped is called once when the scheduler exits.
	Stopped(cache string)
}

type nopObserver struct{}

func (nopObserver) Loaded(string, uint64, time.Duration) {}
func (nopObserver) Refreshed(string, uint64, time.Duration) {}
func (nopObserver) RefreshFailed(string, time.Duration, error) {}
func (nopObserver) Stopped(string) {}
