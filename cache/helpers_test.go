package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var errBoom = errors.New("boom")

var quiet = zerolog.New(io.Discard)

// counter produces 1, 2, 3, ... and counts invocations.
type counter struct{ calls atomic.Int64 }

func (c *counter) produce(context.Context) (int64, error) {
	return c.calls.Add(1), nil
}

// failAfter returns the first call's value and fails every call after.
type failAfter struct{ calls atomic.Int64 }

func (f *failAfter) produce(context.Context) (string, error) {
	if f.calls.Add(1) == 1 {
		return "A", nil
	}
	return "", errBoom
}

type event struct {
	kind    string
	version uint64
	err     error
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Loaded(_ string, v uint64, _ time.Duration) {
	r.add(event{kind: "loaded", version: v})
}

func (r *recorder) Refreshed(_ string, v uint64, _ time.Duration) {
	r.add(event{kind: "refreshed", version: v})
}

func (r *recorder) RefreshFailed(_ string, _ time.Duration, err error) {
	r.add(event{kind: "failed", err: err})
}

func (r *recorder) Stopped(string) { r.add(event{kind: "stopped"}) }

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.kind
	}
	return out
}

func (c *counter) producer() Producer[int64] { return c.produce }

func (f *failAfter) producer() Producer[string] { return f.produce }
