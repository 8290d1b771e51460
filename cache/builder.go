package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultName = "default"

// Builder configures a cache. Methods chain; the first configuration error
// is kept and returned by Err and Load.
type Builder[V any] struct {
	producer  Producer[V]
	frequency time.Duration
	timeout   time.Duration
	name      string
	logger    *zerolog.Logger
	observer  Observer
	err       error
}

// New returns a Builder that loads and refreshes values with producer.
// Frequency must be set before Load.
func New[V any](producer Producer[V]) *Builder[V] {
	b := &Builder[V]{producer: producer, name: defaultName}
	if producer == nil {
		b.fail(invalidConfig("producer is nil"))
	}
	return b
}

func (b *Builder[V]) fail(err error) *Builder[V] {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Frequency sets the delay between the end of one refresh and the start of
// the next. It must be positive.
func (b *Builder[V]) Frequency(d time.Duration) *Builder[V] {
	if d <= 0 {
		return b.fail(invalidConfig("frequency must be positive, got %s", d))
	}
	b.frequency = d
	return b
}

// Timeout bounds every producer invocation, including the initial one.
// Zero, the default, means no bound.
func (b *Builder[V]) Timeout(d time.Duration) *Builder[V] {
	if d < 0 {
		return b.fail(invalidConfig("timeout must not be negative, got %s", d))
	}
	b.timeout = d
	return b
}

// Name labels log lines and observer events.
func (b *Builder[V]) Name(name string) *Builder[V] {
	if name != "" {
		b.name = name
	}
	return b
}

// Logger replaces the global zerolog logger.
func (b *Builder[V]) Logger(l zerolog.Logger) *Builder[V] {
	b.logger = &l
	return b
}

// Observer registers o for lifecycle events.
func (b *Builder[V]) Observer(o Observer) *Builder[V] {
	if o != nil {
		b.observer = o
	}
	return b
}

// Err returns the first configuration error, or a missing-frequency error.
func (b *Builder[V]) Err() error {
	if b.err != nil {
		return b.err
	}
	if b.frequency == 0 {
		return invalidConfig("frequency is not set")
	}
	return nil
}

// Load invokes the producer once and, if it succeeds, starts the background
// refresh and returns the first Handle. A configuration error is returned
// before the producer is invoked. A failed invocation returns an error
// matching *ProducerError and starts nothing.
//
// ctx bounds the initial invocation only; the refresh runs until every
// Handle is closed. Calling Load again builds an independent cache.
func (b *Builder[V]) Load(ctx context.Context) (*Handle[V], error) {
	if err := b.Err(); err != nil {
		return nil, err
	}

	l := log.Logger
	if b.logger != nil {
		l = *b.logger
	}
	l = l.With().Str("cache", b.name).Logger()
	var o Observer = nopObserver{}
	if b.observer != nil {
		o = b.observer
	}

	start := time.Now()
	v, err := b.producer.invoke(ctx, b.timeout)
	took := time.Since(start)
	if err != nil {
		l.Error().Err(err).Dur("took", took).Msg("initial load failed")
		return nil, producerFailed(b.name, err)
	}

	c := newCell(v, time.Now())
	l.Info().Dur("took", took).Msg("initial load complete")
	o.Loaded(b.name, 1, took)

	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s := &shared[V]{
		name:  b.name,
		cell:  c,
		sched: newScheduler(b.name, c, b.producer, b.frequency, b.timeout, l, o),
		stop:  stop,
	}
	s.shares.Store(1)
	s.sched.start(runCtx)
	return newHandle(s, true), nil
}
