package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/depconv"
)

// Ensure LoggingGeocoder implements depconv.Geocoder.
var _ depconv.Geocoder = (*LoggingGeocoder)(nil)

// LoggingGeocoder wraps a Geocoder with logging of every lookup.
type LoggingGeocoder struct {
	next   depconv.Geocoder
	logger *slog.Logger
}

// NewLoggingGeocoder creates a new LoggingGeocoder.
func NewLoggingGeocoder(next depconv.Geocoder, logger *slog.Logger) *LoggingGeocoder {
	return &LoggingGeocoder{next: next, logger: logger}
}

// Geocode delegates to the wrapped geocoder and logs the result.
func (g *LoggingGeocoder) Geocode(ctx context.Context, name string) (res *depconv.GeocodeResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"town", name, "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs, "lat", res.Lat, "lng", res.Lng, "geonames_id", res.GeonameID)
		}
		switch {
		case err == nil:
			g.logger.Info("geocode", attrs...)
		case depconv.ErrorCode(err) == depconv.ENOTFOUND:
			g.logger.Info("geocode", append(attrs, "found", false)...)
		default:
			g.logger.Warn("geocode", append(attrs, "err", err)...)
		}
	}(time.Now())
	return g.next.Geocode(ctx, name)
}
