// Package geonames implements depconv.Geocoder against the GeoNames
// searchJSON web service.
package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/depconv"
)

// Defaults for the populated-place search the converter performs.
const (
	DefaultBaseURL      = "http://api.geonames.org"
	DefaultTimeout      = 10 * time.Second
	DefaultCountry      = "IE"
	DefaultFeatureClass = "P"
	DefaultFuzziness    = 0.6
	DefaultOrderBy      = "relevance"
)

// ErrLimitExceeded is returned when GeoNames reports that the account's
// hourly, daily or weekly credit limit has been exhausted.
var ErrLimitExceeded = errors.New("geonames: credit limit exceeded")

// GeoNames status codes that signal an exhausted credit limit.
const (
	statusDailyLimit  = 18
	statusHourlyLimit = 19
	statusWeeklyLimit = 20
)

// Ensure Client implements depconv.Geocoder at compile time.
var _ depconv.Geocoder = (*Client)(nil)

// Client geocodes place names with GeoNames.
type Client struct {
	client       *http.Client
	baseURL      string
	username     string
	country      string
	featureClass string
	fuzziness    float64
	orderBy      string
	timeout      time.Duration
	limiter      depconv.RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the service root. Defaults to DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets the HTTP client. Its timeout takes precedence over
// WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithCountry restricts results to an ISO-3166 country code.
func WithCountry(code string) Option {
	return func(c *Client) {
		c.country = code
	}
}

// WithFeatureClass restricts results to a GeoNames feature class.
func WithFeatureClass(class string) Option {
	return func(c *Client) {
		c.featureClass = class
	}
}

// WithFuzziness sets the name similarity threshold, between 0 and 1.
func WithFuzziness(f float64) Option {
	return func(c *Client) {
		c.fuzziness = f
	}
}

// WithOrderBy sets the result ordering.
func WithOrderBy(orderBy string) Option {
	return func(c *Client) {
		c.orderBy = orderBy
	}
}

// WithLimiter throttles every request through l.
func WithLimiter(l depconv.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a Client authenticated by a GeoNames username.
func NewClient(username string, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		username:     username,
		country:      DefaultCountry,
		featureClass: DefaultFeatureClass,
		fuzziness:    DefaultFuzziness,
		orderBy:      DefaultOrderBy,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// searchResponse is the subset of the searchJSON response the client reads.
type searchResponse struct {
	TotalResultsCount int `json:"totalResultsCount"`
	Geonames          []struct {
		Name      string  `json:"name"`
		Lat       float64 `json:"lat,string"`
		Lng       float64 `json:"lng,string"`
		GeonameID int64   `json:"geonameId"`
	} `json:"geonames"`
	Status *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status"`
}

// Geocode returns the most relevant populated place matching name.
func (c *Client) Geocode(ctx context.Context, name string) (*depconv.GeocodeResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(name), nil)
	if err != nil {
		return nil, depconv.Errorf(depconv.EGEOCODE, "creating request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, depconv.Errorf(depconv.EGEOCODE, "geocoding %q: %v", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, depconv.Errorf(depconv.EGEOCODE, "HTTP %d geocoding %q", resp.StatusCode, name)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, depconv.Errorf(depconv.EGEOCODE, "decoding response for %q: %v", name, err)
	}

	if s := body.Status; s != nil {
		gerr := depconv.Errorf(depconv.EGEOCODE, "geonames status %d: %s", s.Value, s.Message)
		switch s.Value {
		case statusDailyLimit, statusHourlyLimit, statusWeeklyLimit:
			return nil, fmt.Errorf("%w: %w", gerr, ErrLimitExceeded)
		}
		return nil, gerr
	}

	if len(body.Geonames) == 0 {
		return nil, depconv.Errorf(depconv.ENOTFOUND, "no place named %q", name)
	}

	top := body.Geonames[0]
	return &depconv.GeocodeResult{
		Name:      top.Name,
		Lat:       top.Lat,
		Lng:       top.Lng,
		GeonameID: top.GeonameID,
		Fuzziness: c.fuzziness,
	}, nil
}

func (c *Client) searchURL(name string) string {
	q := url.Values{}
	q.Set("q", name)
	q.Set("country", c.country)
	q.Set("featureClass", c.featureClass)
	q.Set("fuzzy", strconv.FormatFloat(c.fuzziness, 'f', -1, 64))
	q.Set("orderby", c.orderBy)
	q.Set("maxRows", "1")
	q.Set("username", c.username)
	return c.baseURL + "/searchJSON?" + q.Encode()
}
