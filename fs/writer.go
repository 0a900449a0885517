// Package fs provides file-based discovery of input documents and storage
// of converted records.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/depconv"
)

// Output names used by the converter.
const (
	DefaultOutputDir = "converted_json"
	AggregateFile    = "all_depositions.json"
)

// Ensure Writer implements depconv.RecordWriter at compile time.
var _ depconv.RecordWriter = (*Writer)(nil)

// Writer writes records as JSON files to a directory.
// Each write replaces the whole file in place.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Init creates the output directory if it does not exist.
func (w *Writer) Init(ctx context.Context) error {
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return depconv.Errorf(depconv.EIO, "creating output directory: %v", err)
	}
	return nil
}

// RecordPath returns the path a record is written to.
func (w *Writer) RecordPath(rec *depconv.Record) string {
	return filepath.Join(w.baseDir, rec.Stem()+".json")
}

// WriteRecord writes a record to <stem>.json.
func (w *Writer) WriteRecord(ctx context.Context, rec *depconv.Record) error {
	if rec.Filename == "" {
		return depconv.Errorf(depconv.EINVALID, "record filename required")
	}
	return w.writeJSON(w.RecordPath(rec), rec)
}

// WriteAll writes the records as a single JSON array.
func (w *Writer) WriteAll(ctx context.Context, recs []*depconv.Record) error {
	if recs == nil {
		recs = []*depconv.Record{}
	}
	return w.writeJSON(filepath.Join(w.baseDir, AggregateFile), recs)
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return depconv.Errorf(depconv.EINTERNAL, "encoding %s: %v", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return depconv.Errorf(depconv.EIO, "writing %s: %v", path, err)
	}
	return nil
}
