package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_PublishesLaterValue(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls atomic.Int64
	produce := Producer[string](func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "A", nil
		}
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return "B", nil
	})

	h, err := New(produce).Frequency(10 * time.Millisecond).Logger(quiet).Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	<-started
	// the second cycle is in flight but has not completed
	assert.Equal(t, "A", h.Read())
	assert.Equal(t, uint64(1), h.Snapshot().Version)

	close(release)
	assert.Eventually(t, func() bool { return h.Read() == "B" }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, h.Snapshot().Version, uint64(2))
}

func TestScheduler_FailureKeepsPreviousValue(t *testing.T) {
	var f failAfter
	rec := &recorder{}
	h, err := New(f.producer()).Frequency(5 * time.Millisecond).Logger(quiet).Observer(rec).Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	assert.Eventually(t, func() bool { return f.calls.Load() >= 4 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "A", h.Read())
	assert.Equal(t, uint64(1), h.Snapshot().Version)
	assert.Equal(t, Running, h.State())

	kinds := rec.kinds()
	require.GreaterOrEqual(t, len(kinds), 3)
	assert.Equal(t, "loaded", kinds[0])
	assert.Equal(t, "failed", kinds[1])
	assert.Equal(t, "failed", kinds[2])
}

func TestScheduler_RecoversFromFailures(t *testing.T) {
	var calls atomic.Int64
	produce := Producer[int64](func(context.Context) (int64, error) {
		n := calls.Add(1)
		if n%2 == 0 {
			return 0, errBoom
		}
		return n, nil
	})

	h, err := New(produce).Frequency(5 * time.Millisecond).Logger(quiet).Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	assert.Eventually(t, func() bool { return h.Read() >= 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), h.Read()%2, "failed cycles never surface a value")
}

func TestScheduler_PanicKeepsPreviousValue(t *testing.T) {
	var calls atomic.Int64
	rec := &recorder{}
	produce := Producer[string](func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "A", nil
		}
		panic("kaboom")
	})

	h, err := New(produce).Frequency(5 * time.Millisecond).Logger(quiet).Observer(rec).Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "A", h.Read())
	assert.Equal(t, Running, h.State())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.events), 2)
	assert.ErrorIs(t, rec.events[1].err, ErrProducerPanic)
}

func TestScheduler_FixedDelay(t *testing.T) {
	const (
		frequency = 20 * time.Millisecond
		latency   = 30 * time.Millisecond
	)
	var (
		mu     sync.Mutex
		starts []time.Time
	)
	produce := Producer[int](func(context.Context) (int, error) {
		mu.Lock()
		starts = append(starts, time.Now())
		n := len(starts)
		mu.Unlock()
		time.Sleep(latency)
		return n, nil
	})

	h, err := New(produce).Frequency(frequency).Logger(quiet).Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	assert.Eventually(t, func() bool { return h.Read() >= 5 }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		assert.GreaterOrEqual(t, gap, frequency+latency, "cycle %d started %s after the previous one", i, gap)
	}
}

func TestScheduler_TimeoutBoundsRefresh(t *testing.T) {
	var calls atomic.Int64
	rec := &recorder{}
	produce := Producer[string](func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "A", nil
		}
		<-ctx.Done()
		return "", ctx.Err()
	})

	h, err := New(produce).
		Frequency(5 * time.Millisecond).
		Timeout(10 * time.Millisecond).
		Logger(quiet).
		Observer(rec).
		Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "A", h.Read())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.events), 2)
	assert.ErrorIs(t, rec.events[1].err, context.DeadlineExceeded)
}

func TestScheduler_ObserverSequence(t *testing.T) {
	var c counter
	rec := &recorder{}
	h, err := New(c.producer()).Frequency(5 * time.Millisecond).Logger(quiet).Observer(rec).Load(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return h.Read() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, h.Close())
	<-h.Done()

	kinds := rec.kinds()
	assert.Equal(t, "loaded", kinds[0])
	assert.Equal(t, "refreshed", kinds[1])
	assert.Equal(t, "stopped", kinds[len(kinds)-1])

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, uint64(1), rec.events[0].version)
	assert.Equal(t, uint64(2), rec.events[1].version)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "unknown", State(42).String())
}
