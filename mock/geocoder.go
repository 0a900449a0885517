package mock

import (
	"context"

	"github.com/fwojciec/depconv"
)

var _ depconv.Geocoder = (*Geocoder)(nil)

// Geocoder is a mock implementation of depconv.Geocoder.
type Geocoder struct {
	GeocodeFn func(ctx context.Context, name string) (*depconv.GeocodeResult, error)
}

func (g *Geocoder) Geocode(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
	return g.GeocodeFn(ctx, name)
}

var _ depconv.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a mock implementation of depconv.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *RateLimiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}
