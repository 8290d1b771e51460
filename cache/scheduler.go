package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// State is the scheduler lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// scheduler refreshes a cell in the background. It is the cell's only
// writer. The wait for cycle N+1 is armed only after cycle N finished, so
// the spacing between refreshes is frequency plus producer latency.
type scheduler[V any] struct {
	name      string
	cell      *cell[V]
	produce   Producer[V]
	frequency time.Duration
	timeout   time.Duration
	log       zerolog.Logger
	observer  Observer

	state atomic.Int32
	done  chan struct{}
}

func newScheduler[V any](name string, c *cell[V], p Producer[V], frequency, timeout time.Duration, log zerolog.Logger, o Observer) *scheduler[V] {
	return &scheduler[V]{
		name:      name,
		cell:      c,
		produce:   p,
		frequency: frequency,
		timeout:   timeout,
		log:       log,
		observer:  o,
		done:      make(chan struct{}),
	}
}

func (s *scheduler[V]) State() State { return State(s.state.Load()) }

// start moves the scheduler from Idle to Running and spawns the loop. It
// runs until ctx is cancelled.
func (s *scheduler[V]) start(ctx context.Context) {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return
	}
	s.log.Info().Dur("frequency", s.frequency).Msg("cache refresher started")
	go s.run(ctx)
}

func (s *scheduler[V]) run(ctx context.Context) {
	defer func() {
		s.state.Store(int32(Stopped))
		s.observer.Stopped(s.name)
		s.log.Info().Msg("cache refresher stopped")
		close(s.done)
	}()

	timer := time.NewTimer(s.frequency)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
		s.refresh(ctx)
		timer.Reset(s.frequency)
	}
}

// refresh runs one cycle. A failure leaves the current snapshot in place.
func (s *scheduler[V]) refresh(ctx context.Context) {
	start := time.Now()
	v, err := s.produce.invoke(ctx, s.timeout)
	took := time.Since(start)
	if err != nil {
		s.log.Warn().Err(err).Dur("took", took).
			Uint64("version", s.cell.load().Version).
			Msg("refresh failed; keeping previous value")
		s.observer.RefreshFailed(s.name, took, err)
		return
	}
	snap := s.cell.publish(v, time.Now())
	s.log.Debug().Uint64("version", snap.Version).Dur("took", took).Msg("refreshed")
	s.observer.Refreshed(s.name, snap.Version, took)
}
