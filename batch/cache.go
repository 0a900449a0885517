package batch

import (
	"context"
	"sync"

	"github.com/fwojciec/depconv"
	"golang.org/x/sync/singleflight"
)

var _ depconv.Geocoder = (*CachingGeocoder)(nil)

// CachingGeocoder remembers lookups for the lifetime of a run so that each
// distinct place name reaches the provider once. Not-found answers are
// cached too; other errors are not.
type CachingGeocoder struct {
	next  depconv.Geocoder
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	res *depconv.GeocodeResult
	err error
}

// NewCachingGeocoder wraps next with an in-memory cache.
func NewCachingGeocoder(next depconv.Geocoder) *CachingGeocoder {
	return &CachingGeocoder{
		next:    next,
		entries: make(map[string]cacheEntry),
	}
}

// Geocode returns the cached answer for name or asks the wrapped Geocoder.
// Concurrent lookups of the same name share one provider call.
func (c *CachingGeocoder) Geocode(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
	if e, ok := c.lookup(name); ok {
		return e.res, e.err
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		if e, ok := c.lookup(name); ok {
			return e.res, e.err
		}
		res, err := c.next.Geocode(ctx, name)
		if err == nil || depconv.ErrorCode(err) == depconv.ENOTFOUND {
			c.mu.Lock()
			c.entries[name] = cacheEntry{res: res, err: err}
			c.mu.Unlock()
		}
		return res, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*depconv.GeocodeResult), nil
}

// Len returns the number of distinct names cached.
func (c *CachingGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CachingGeocoder) lookup(name string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	return e, ok
}
