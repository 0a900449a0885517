// Package batch orchestrates the conversion of a deposition corpus.
// It coordinates keyword loading, document discovery, extraction,
// geocoding enrichment and output of individual and aggregate records.
package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/depconv"
	"golang.org/x/sync/errgroup"
)

// DefaultKeywordsFile is the keyword reference file name under the input root.
const DefaultKeywordsFile = "keywords.xml"

// Converter orchestrates the conversion of every document under a root.
type Converter struct {
	Keywords  depconv.KeywordLoader
	Source    depconv.DocumentSource
	Extractor depconv.Extractor
	Writer    depconv.RecordWriter

	// Enricher and Validator are optional.
	Enricher  *Enricher
	Validator depconv.RecordValidator

	// KeywordsFile is resolved against the input root.
	// Defaults to DefaultKeywordsFile.
	KeywordsFile string

	// Concurrency bounds the documents processed at once. Defaults to 1.
	Concurrency int

	// FailFast stops the run at the first failed document and skips the
	// aggregate output. Otherwise failures are reported and skipped.
	FailFast bool
}

// Result holds the outcome of a conversion run.
type Result struct {
	Total     int
	Converted int
	Failed    int
	Failures  []Failure
}

// Failure records a document that could not be converted.
type Failure struct {
	Path string
	Err  error
}

// ProgressEvent reports progress during a conversion run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Path      string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting conversion progress.
type ProgressFunc func(event ProgressEvent)

// docResult holds the outcome of converting a single document.
type docResult struct {
	position int
	path     string
	rec      *depconv.Record
	err      error
}

// Convert converts every document under root, writing one output per
// document and, unless the run is aborted, the aggregate of all converted
// records in path order.
// The progress callback, if provided, is called from the calling goroutine.
func (c *Converter) Convert(ctx context.Context, root string, progress ProgressFunc) (*Result, error) {
	if err := c.Writer.Init(ctx); err != nil {
		return nil, fmt.Errorf("preparing output: %w", err)
	}

	keywordsFile := c.KeywordsFile
	if keywordsFile == "" {
		keywordsFile = DefaultKeywordsFile
	}
	idx, err := c.Keywords.LoadKeywords(filepath.Join(root, keywordsFile))
	if err != nil {
		return nil, fmt.Errorf("loading keywords: %w", err)
	}

	paths, err := c.Source.Documents(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	total := len(paths)
	result := &Result{Total: total}

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	resultCh := make(chan docResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var groupErr error
	go func() {
		for i, path := range paths {
			i, path := i, path
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				// The run may have been aborted while this slot was pending.
				if gctx.Err() != nil {
					return nil
				}
				rec, err := c.convertDocument(gctx, path, idx)
				resultCh <- docResult{position: i, path: path, rec: rec, err: err}
				if err != nil && c.FailFast {
					return fmt.Errorf("%s: %w", path, err)
				}
				return nil
			})
		}
		groupErr = g.Wait()
		close(resultCh)
	}()

	// Collect results in order
	records := make([]*depconv.Record, len(paths))
	completed := 0
	for r := range resultCh {
		completed++
		if r.err != nil {
			result.Failed++
			result.Failures = append(result.Failures, Failure{Path: r.path, Err: r.err})
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: completed,
					Total:     total,
					Path:      r.path,
					Error:     r.err,
				})
			}
			continue
		}
		records[r.position] = r.rec
		result.Converted++
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: completed,
				Total:     total,
				Path:      r.path,
			})
		}
	}

	if groupErr != nil {
		return result, groupErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	converted := make([]*depconv.Record, 0, result.Converted)
	for _, rec := range records {
		if rec != nil {
			converted = append(converted, rec)
		}
	}
	if err := c.Writer.WriteAll(ctx, converted); err != nil {
		return result, fmt.Errorf("writing aggregate: %w", err)
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: completed,
			Total:     total,
		})
	}

	return result, nil
}

// convertDocument extracts, enriches, validates and writes one document.
func (c *Converter) convertDocument(ctx context.Context, path string, idx depconv.KeywordIndex) (*depconv.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := c.Source.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rec, err := c.Extractor.Extract(path, f, idx)
	if err != nil {
		return nil, err
	}

	if c.Enricher != nil {
		if err := c.Enricher.Enrich(ctx, rec); err != nil {
			return nil, err
		}
	}

	if c.Validator != nil {
		if err := c.Validator.ValidateRecord(rec); err != nil {
			return nil, err
		}
	}

	if err := c.Writer.WriteRecord(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}
