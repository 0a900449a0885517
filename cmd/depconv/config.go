package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fwojciec/depconv"
	"github.com/fwojciec/depconv/batch"
	"github.com/fwojciec/depconv/fs"
	"github.com/fwojciec/depconv/geonames"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Config represents the converter configuration.
type Config struct {
	LogLevel        slog.Level     `yaml:"log_level"`
	OutputDir       string         `yaml:"output_dir"`
	KeywordsFile    string         `yaml:"keywords_file"`
	Pattern         string         `yaml:"pattern"`
	Concurrency     int            `yaml:"concurrency"`
	FailFast        bool           `yaml:"fail_fast"`
	ValidateRecords bool           `yaml:"validate"`
	PlaceLayout     string         `yaml:"place_layout"`
	Residence       string         `yaml:"residence"`
	GeoNames        GeoNamesConfig `yaml:"geonames"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.KeywordsFile, validation.Required),
		validation.Field(&c.Pattern, validation.Required),
		validation.Field(&c.Concurrency, validation.Min(1)),
		validation.Field(&c.PlaceLayout, validation.Required,
			validation.In(string(depconv.PlaceLayoutNested), string(depconv.PlaceLayoutFlat))),
		validation.Field(&c.Residence, validation.Required,
			validation.In(string(batch.ResidenceLast), string(batch.ResidenceFirst))),
	); err != nil {
		return err
	}
	return c.GeoNames.Validate()
}

// GeoNamesConfig holds geocoding provider configuration.
type GeoNamesConfig struct {
	BaseURL           string          `yaml:"base_url"`
	Username          string          `yaml:"username"`
	Country           string          `yaml:"country"`
	FeatureClass      string          `yaml:"feature_class"`
	Fuzziness         float64         `yaml:"fuzziness"`
	OrderBy           string          `yaml:"order_by"`
	Timeout           time.Duration   `yaml:"timeout"`
	CallsPerWindow    int             `yaml:"calls_per_window"`
	Window            time.Duration   `yaml:"window"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
	RetryDelays       []time.Duration `yaml:"retry_delays"`
}

// Validate validates the geocoding configuration.
func (c *GeoNamesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Country, validation.Required, validation.Length(2, 2)),
		validation.Field(&c.FeatureClass, validation.Required),
		validation.Field(&c.Fuzziness, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.OrderBy, validation.Required),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.CallsPerWindow, validation.Required, validation.Min(1)),
		validation.Field(&c.Window, validation.Required),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
	)
}

// Enabled reports whether geocoding credentials are configured.
func (c *GeoNamesConfig) Enabled() bool {
	return c.Username != ""
}

// NewDefaultConfig returns a new Config with the converter's default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:     slog.LevelInfo,
		OutputDir:    fs.DefaultOutputDir,
		KeywordsFile: batch.DefaultKeywordsFile,
		Pattern:      fs.DefaultPattern,
		Concurrency:  1,
		PlaceLayout:  string(depconv.PlaceLayoutNested),
		Residence:    string(batch.ResidenceLast),
		GeoNames: GeoNamesConfig{
			BaseURL:           geonames.DefaultBaseURL,
			Username:          os.Getenv("GEONAMES_USERNAME"),
			Country:           geonames.DefaultCountry,
			FeatureClass:      geonames.DefaultFeatureClass,
			Fuzziness:         geonames.DefaultFuzziness,
			OrderBy:           geonames.DefaultOrderBy,
			Timeout:           geonames.DefaultTimeout,
			CallsPerWindow:    batch.DefaultCallsPerWindow,
			Window:            batch.DefaultWindow,
			RequestsPerSecond: 1,
			RetryDelays:       batch.DefaultRetryDelays(),
		},
	}
}

// LoadConfig returns the default configuration overlaid with the YAML file at
// filename, if one is given. Environment variables in the file are expanded.
// The result is not validated; flags may still override it.
func LoadConfig(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return cfg, nil
}
