package batch

import (
	"context"
	"time"

	"github.com/fwojciec/depconv"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the waits between attempts after the geocoding
// provider reports an exhausted credit limit: 5m, 15m, 30m, 60m.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{5 * time.Minute, 15 * time.Minute, 30 * time.Minute, 60 * time.Minute}
}

var _ depconv.Geocoder = (*RetryGeocoder)(nil)

// RetryGeocoder waits and retries lookups that fail with a retryable error.
// Other errors, including not found, are returned immediately.
type RetryGeocoder struct {
	Geocoder  depconv.Geocoder
	Retryable func(err error) bool
	Delays    []time.Duration
	Logger    LogFunc
}

// Geocode delegates to the wrapped Geocoder, retrying up to len(Delays) times.
func (g *RetryGeocoder) Geocode(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
	maxAttempts := len(g.Delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := g.Geocoder.Geocode(ctx, name)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if g.Retryable == nil || !g.Retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		if g.Logger != nil {
			g.Logger("retry geocode %q in %s (attempt %d): %v", name, g.Delays[attempt], attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.Delays[attempt]):
		}
	}

	return nil, lastErr
}
