package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/depconv"
	"github.com/fwojciec/depconv/batch"
	"github.com/fwojciec/depconv/etree"
	"github.com/fwojciec/depconv/fs"
	"github.com/fwojciec/depconv/geonames"
	"github.com/fwojciec/depconv/jsonschema"
	depslog "github.com/fwojciec/depconv/slog"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("depconv"),
		kong.Description("Convert TEI-XML depositions to JSON records"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return errors.New("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	cli.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("run", uuid.NewString())

	converter, err := NewConverter(cfg, logger)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    logger,
		Converter: converter,
	}

	cmd := &ConvertCmd{
		InputRoot: cli.InputRoot,
		Geocoding: cfg.GeoNames.Enabled(),
	}

	return cmd.Run(deps)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config      string `short:"f" type:"existingfile" help:"YAML configuration file"`
	Output      string `short:"o" help:"Output directory (default: converted_json)"`
	Concurrency int    `short:"c" help:"Documents converted at once (default: 1)"`
	PlaceLayout string `name:"place-layout" help:"Creation place layout: nested or flat"`
	Residence   string `help:"Residence filling the deponent fields: last or first"`
	FailFast    bool   `name:"fail-fast" help:"Stop at the first failed document without writing the aggregate"`
	Validate    bool   `help:"Validate each record against the record JSON schema"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`
	InputRoot   string `arg:"" type:"existingdir" help:"Directory holding keywords.xml and the deposition files"`
	Username    string `arg:"" optional:"" help:"GeoNames username (default: $GEONAMES_USERNAME); geocoding is skipped without one"`
}

// Apply overrides the configuration with the flags and arguments that were set.
func (c *CLI) Apply(cfg *Config) {
	if c.Output != "" {
		cfg.OutputDir = c.Output
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.PlaceLayout != "" {
		cfg.PlaceLayout = c.PlaceLayout
	}
	if c.Residence != "" {
		cfg.Residence = c.Residence
	}
	if c.FailFast {
		cfg.FailFast = true
	}
	if c.Validate {
		cfg.ValidateRecords = true
	}
	if c.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	if c.Username != "" {
		cfg.GeoNames.Username = c.Username
	}
}

// NewConverter wires a batch.Converter from a validated configuration.
func NewConverter(cfg *Config, logger *slog.Logger) (*batch.Converter, error) {
	extractor := etree.NewExtractor(etree.WithPlaceLayout(depconv.PlaceLayout(cfg.PlaceLayout)))

	c := &batch.Converter{
		Keywords:     etree.NewKeywordLoader(),
		Source:       fs.NewSource(cfg.Pattern),
		Extractor:    depslog.NewLoggingExtractor(extractor, logger),
		Writer:       depslog.NewLoggingRecordWriter(fs.NewWriter(cfg.OutputDir), logger),
		KeywordsFile: cfg.KeywordsFile,
		Concurrency:  cfg.Concurrency,
		FailFast:     cfg.FailFast,
	}

	if cfg.ValidateRecords {
		v, err := jsonschema.NewValidator()
		if err != nil {
			return nil, fmt.Errorf("failed to load record schema: %w", err)
		}
		c.Validator = v
	}

	if cfg.GeoNames.Enabled() {
		c.Enricher = &batch.Enricher{
			Geocoder: newGeocoder(&cfg.GeoNames, logger),
			Policy:   batch.ResidencePolicy(cfg.Residence),
		}
	}

	return c, nil
}

// newGeocoder builds the GeoNames client behind its rate limiters, retry on
// exhausted credits and a per-run cache.
func newGeocoder(cfg *GeoNamesConfig, logger *slog.Logger) depconv.Geocoder {
	limiter := batch.Limiters{
		batch.NewPaceLimiter(cfg.RequestsPerSecond),
		batch.NewWindowLimiter(cfg.CallsPerWindow, cfg.Window),
	}

	client := geonames.NewClient(cfg.Username,
		geonames.WithBaseURL(cfg.BaseURL),
		geonames.WithTimeout(cfg.Timeout),
		geonames.WithCountry(cfg.Country),
		geonames.WithFeatureClass(cfg.FeatureClass),
		geonames.WithFuzziness(cfg.Fuzziness),
		geonames.WithOrderBy(cfg.OrderBy),
		geonames.WithLimiter(limiter),
	)

	retry := &batch.RetryGeocoder{
		Geocoder: depslog.NewLoggingGeocoder(client, logger),
		Retryable: func(err error) bool {
			return errors.Is(err, geonames.ErrLimitExceeded)
		},
		Delays: cfg.RetryDelays,
		Logger: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}

	return batch.NewCachingGeocoder(retry)
}
