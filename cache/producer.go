package cache

import (
	"context"
	"fmt"
	"time"
)

// Producer computes a fresh value. It is a factory: each call must start a
// new computation, and it is called from the scheduler goroutine, never
// concurrently with itself.
//
// The context is cancelled when the cache stops and carries the configured
// per-invocation timeout, if any.
type Producer[V any] func(ctx context.Context) (V, error)

// invoke runs p once, bounding it by timeout when positive and turning a
// panic into an error wrapping ErrProducerPanic.
func (p Producer[V]) invoke(ctx context.Context, timeout time.Duration) (v V, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, fmt.Errorf("%w: %v", ErrProducerPanic, r)
		}
	}()
	return p(ctx)
}
