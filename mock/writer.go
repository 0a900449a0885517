package mock

import (
	"context"

	"github.com/fwojciec/depconv"
)

var _ depconv.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of depconv.RecordWriter.
type RecordWriter struct {
	InitFn        func(ctx context.Context) error
	WriteRecordFn func(ctx context.Context, rec *depconv.Record) error
	WriteAllFn    func(ctx context.Context, recs []*depconv.Record) error
}

func (w *RecordWriter) Init(ctx context.Context) error {
	return w.InitFn(ctx)
}

func (w *RecordWriter) WriteRecord(ctx context.Context, rec *depconv.Record) error {
	return w.WriteRecordFn(ctx, rec)
}

func (w *RecordWriter) WriteAll(ctx context.Context, recs []*depconv.Record) error {
	return w.WriteAllFn(ctx, recs)
}

var _ depconv.RecordValidator = (*RecordValidator)(nil)

// RecordValidator is a mock implementation of depconv.RecordValidator.
type RecordValidator struct {
	ValidateRecordFn func(rec *depconv.Record) error
}

func (v *RecordValidator) ValidateRecord(rec *depconv.Record) error {
	return v.ValidateRecordFn(rec)
}
