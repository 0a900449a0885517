package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/depconv"
)

// Ensure LoggingRecordWriter implements depconv.RecordWriter.
var _ depconv.RecordWriter = (*LoggingRecordWriter)(nil)

// LoggingRecordWriter wraps a RecordWriter with debug logging.
type LoggingRecordWriter struct {
	next   depconv.RecordWriter
	logger *slog.Logger
}

// NewLoggingRecordWriter creates a new LoggingRecordWriter.
func NewLoggingRecordWriter(next depconv.RecordWriter, logger *slog.Logger) *LoggingRecordWriter {
	return &LoggingRecordWriter{next: next, logger: logger}
}

// Init delegates to the wrapped writer.
func (w *LoggingRecordWriter) Init(ctx context.Context) error {
	return w.next.Init(ctx)
}

// WriteRecord delegates to the wrapped writer and logs the record written.
func (w *LoggingRecordWriter) WriteRecord(ctx context.Context, rec *depconv.Record) (err error) {
	defer func(begin time.Time) {
		w.logger.Debug("write record",
			"filename", rec.Filename,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteRecord(ctx, rec)
}

// WriteAll delegates to the wrapped writer and logs the aggregate size.
func (w *LoggingRecordWriter) WriteAll(ctx context.Context, recs []*depconv.Record) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write aggregate",
			"count", len(recs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteAll(ctx, recs)
}
