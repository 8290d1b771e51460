package cache

import (
	"errors"
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"
)

var (
	// ErrInvalidConfiguration is wrapped by every builder configuration
	// failure: a missing or non-positive frequency, a negative timeout or a
	// nil producer.
	ErrInvalidConfiguration = platformerrors.New(platformerrors.CodeInvalidConfig, "invalid cache configuration")

	// ErrProducerPanic is wrapped when a producer invocation panics.
	ErrProducerPanic = errors.New("producer panicked")
)

// ProducerError reports that the initial producer invocation performed by
// Load failed. Unwrap returns the producer's own error.
type ProducerError struct {
	Cache string
	Err   error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("cache %q: initial load: %v", e.Cache, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

func invalidConfig(format string, args ...any) error {
	return platformerrors.Wrapf(ErrInvalidConfiguration, platformerrors.CodeInvalidConfig, format, args...)
}

func producerFailed(name string, err error) error {
	return platformerrors.WrapWithContext(
		&ProducerError{Cache: name, Err: err},
		platformerrors.CodeExecutionFailed,
		"initial producer invocation failed",
		map[string]interface{}{"cache": name},
	)
}
