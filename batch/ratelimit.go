package batch

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/depconv"
	"golang.org/x/time/rate"
)

// Default GeoNames call budget: 950 calls in any rolling hour.
const (
	DefaultCallsPerWindow = 950
	DefaultWindow         = time.Hour
)

// Clock abstracts the passage of time for WindowLimiter.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

var _ depconv.RateLimiter = (*WindowLimiter)(nil)

// WindowLimiter permits at most limit calls within any rolling window.
// A call that would exceed the limit blocks until the oldest call in the
// window expires; it is delayed, never rejected.
type WindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	clock  Clock
	calls  []time.Time
}

// WindowOption configures a WindowLimiter.
type WindowOption func(*WindowLimiter)

// WithClock replaces the system clock.
func WithClock(c Clock) WindowOption {
	return func(l *WindowLimiter) {
		l.clock = c
	}
}

// NewWindowLimiter creates a WindowLimiter allowing limit calls per window.
// A limit below 1 is raised to 1.
func NewWindowLimiter(limit int, window time.Duration, opts ...WindowOption) *WindowLimiter {
	if limit < 1 {
		limit = 1
	}
	l := &WindowLimiter{
		limit:  limit,
		window: window,
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until a call is permitted and records it.
// Returns an error if the context is canceled before the wait completes.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		l.evict(now)
		if len(l.calls) < l.limit {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(wait):
		}
	}
}

// evict drops calls that are at least one window old. Must hold mu.
func (l *WindowLimiter) evict(now time.Time) {
	n := 0
	for n < len(l.calls) && now.Sub(l.calls[n]) >= l.window {
		n++
	}
	if n > 0 {
		l.calls = append(l.calls[:0], l.calls[n:]...)
	}
}

// NewPaceLimiter returns a token bucket allowing rps calls per second with no
// bursting. A non-positive rps disables pacing.
func NewPaceLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

var _ depconv.RateLimiter = Limiters(nil)

// Limiters waits on each limiter in turn.
type Limiters []depconv.RateLimiter

// Wait blocks until every limiter permits the call.
func (ls Limiters) Wait(ctx context.Context) error {
	for _, l := range ls {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
