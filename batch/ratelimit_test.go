package batch_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/depconv"
	"github.com/fwojciec/depconv/batch"
	"github.com/fwojciec/depconv/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to, or when a caller waits on After.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(1641, 10, 23, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

func TestWindowLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements depconv.RateLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ depconv.RateLimiter = batch.NewWindowLimiter(1, time.Second)
	})

	t.Run("permits 950 calls per hour and delays the 951st", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		limiter := batch.NewWindowLimiter(batch.DefaultCallsPerWindow, batch.DefaultWindow, batch.WithClock(clock))

		for i := 0; i < 950; i++ {
			require.NoError(t, limiter.Wait(context.Background()))
		}
		assert.Empty(t, clock.Waits(), "first 950 calls should not wait")

		require.NoError(t, limiter.Wait(context.Background()))
		assert.Equal(t, []time.Duration{time.Hour}, clock.Waits(), "951st call waits for the window to roll")
	})

	t.Run("waits only until the oldest call leaves the window", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		limiter := batch.NewWindowLimiter(3, 10*time.Second, batch.WithClock(clock))

		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.Wait(context.Background()))
			clock.Advance(time.Second)
		}

		// Calls at 0s, 1s, 2s; now 3s.
		require.NoError(t, limiter.Wait(context.Background()))
		// Calls at 1s, 2s, 10s; now 10s.
		require.NoError(t, limiter.Wait(context.Background()))

		assert.Equal(t, []time.Duration{7 * time.Second, time.Second}, clock.Waits())
	})

	t.Run("rate limits in real time", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewWindowLimiter(2, 100*time.Millisecond)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		require.NoError(t, limiter.Wait(context.Background()))
		assert.Less(t, time.Since(start), 50*time.Millisecond, "calls under the limit should be immediate")

		require.NoError(t, limiter.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond, "should wait for the window")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewWindowLimiter(1, time.Hour)
		require.NoError(t, limiter.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("treats a non-positive limit as one call per window", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		limiter := batch.NewWindowLimiter(0, time.Minute, batch.WithClock(clock))

		require.NoError(t, limiter.Wait(context.Background()))
		require.NoError(t, limiter.Wait(context.Background()))
		assert.Equal(t, []time.Duration{time.Minute}, clock.Waits())
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		limiter := batch.NewWindowLimiter(5, time.Minute, batch.WithClock(clock))

		var wg sync.WaitGroup
		var completed atomic.Int32
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Wait(context.Background()) == nil {
					completed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), completed.Load())
		assert.Empty(t, clock.Waits())
	})
}

func TestNewPaceLimiter(t *testing.T) {
	t.Parallel()

	t.Run("spaces calls by the configured rate", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewPaceLimiter(10) // 100ms between calls

		require.NoError(t, limiter.Wait(context.Background()))
		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("non-positive rate disables pacing", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewPaceLimiter(0)

		start := time.Now()
		for i := 0; i < 100; i++ {
			require.NoError(t, limiter.Wait(context.Background()))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})
}

func TestLimiters_Wait(t *testing.T) {
	t.Parallel()

	t.Run("waits on every limiter in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		limiters := batch.Limiters{
			&mock.RateLimiter{WaitFn: func(ctx context.Context) error { order = append(order, "pace"); return nil }},
			&mock.RateLimiter{WaitFn: func(ctx context.Context) error { order = append(order, "window"); return nil }},
		}

		require.NoError(t, limiters.Wait(context.Background()))
		assert.Equal(t, []string{"pace", "window"}, order)
	})

	t.Run("stops at the first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("canceled")
		called := false
		limiters := batch.Limiters{
			&mock.RateLimiter{WaitFn: func(ctx context.Context) error { return wantErr }},
			&mock.RateLimiter{WaitFn: func(ctx context.Context) error { called = true; return nil }},
		}

		err := limiters.Wait(context.Background())
		assert.ErrorIs(t, err, wantErr)
		assert.False(t, called)
	})
}
