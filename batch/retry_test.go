package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/depconv"
	"github.com/fwojciec/depconv/batch"
	"github.com/fwojciec/depconv/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLimit = errors.New("limit exceeded")

func isLimit(err error) bool { return errors.Is(err, errLimit) }

func TestRetryGeocoder_Geocode(t *testing.T) {
	t.Parallel()

	t.Run("returns result on first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		g := &batch.RetryGeocoder{
			Geocoder: &mock.Geocoder{GeocodeFn: func(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
				calls++
				return &depconv.GeocodeResult{Name: name}, nil
			}},
			Retryable: isLimit,
			Delays:    []time.Duration{time.Millisecond},
		}

		res, err := g.Geocode(context.Background(), "Swords")
		require.NoError(t, err)
		assert.Equal(t, "Swords", res.Name)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries retryable errors and logs each retry", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var logs []string
		g := &batch.RetryGeocoder{
			Geocoder: &mock.Geocoder{GeocodeFn: func(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
				calls++
				if calls < 3 {
					return nil, errLimit
				}
				return &depconv.GeocodeResult{Name: name}, nil
			}},
			Retryable: isLimit,
			Delays:    []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
			Logger: func(format string, args ...any) {
				logs = append(logs, format)
			},
		}

		_, err := g.Geocode(context.Background(), "Swords")
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, logs, 2)
	})

	t.Run("gives up after all delays", func(t *testing.T) {
		t.Parallel()

		calls := 0
		g := &batch.RetryGeocoder{
			Geocoder: &mock.Geocoder{GeocodeFn: func(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
				calls++
				return nil, errLimit
			}},
			Retryable: isLimit,
			Delays:    []time.Duration{time.Millisecond, time.Millisecond},
		}

		_, err := g.Geocode(context.Background(), "Swords")
		assert.ErrorIs(t, err, errLimit)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		g := &batch.RetryGeocoder{
			Geocoder: &mock.Geocoder{GeocodeFn: func(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
				calls++
				return nil, depconv.Errorf(depconv.ENOTFOUND, "no place")
			}},
			Retryable: isLimit,
			Delays:    []time.Duration{time.Millisecond},
		}

		_, err := g.Geocode(context.Background(), "Atlantis")
		assert.Equal(t, depconv.ENOTFOUND, depconv.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		g := &batch.RetryGeocoder{
			Geocoder: &mock.Geocoder{GeocodeFn: func(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
				return nil, errLimit
			}},
			Retryable: isLimit,
			Delays:    []time.Duration{time.Hour},
		}

		_, err := g.Geocode(ctx, "Swords")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
