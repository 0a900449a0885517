package depconv

import "context"

// GeocodeResult is the best match for a place name.
type GeocodeResult struct {
	Name      string
	Lat       float64
	Lng       float64
	GeonameID int64

	// Fuzziness is the similarity threshold the lookup was made with.
	Fuzziness float64
}

// Geocoder resolves place names to coordinates.
type Geocoder interface {
	// Geocode looks up a populated place by name.
	// Returns ENOTFOUND if the provider has no match and EGEOCODE on
	// provider or network failure.
	Geocode(ctx context.Context, name string) (*GeocodeResult, error)
}

// RateLimiter throttles calls to an external service.
type RateLimiter interface {
	// Wait blocks until a call is permitted.
	// Returns an error only if the context is canceled first.
	Wait(ctx context.Context) error
}
