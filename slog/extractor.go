// Package slog wraps depconv services with structured logging using the
// standard log/slog package.
package slog

import (
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/depconv"
)

// Ensure LoggingExtractor implements depconv.Extractor.
var _ depconv.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   depconv.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next depconv.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(name string, r io.Reader, idx depconv.KeywordIndex) (rec *depconv.Record, err error) {
	defer func(begin time.Time) {
		people := 0
		if rec != nil {
			people = rec.ParticipantsNumber()
		}
		e.logger.Debug("extract",
			"path", name,
			"people", people,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(name, r, idx)
}
