package depconv

import "context"

// RecordWriter persists converted records.
type RecordWriter interface {
	// Init prepares the output location. Calling it again is a no-op.
	Init(ctx context.Context) error

	// WriteRecord writes a single record, replacing any previous output
	// for the same document.
	WriteRecord(ctx context.Context, rec *Record) error

	// WriteAll writes the aggregate of all records in the given order.
	WriteAll(ctx context.Context, recs []*Record) error
}

// RecordValidator checks a record before it is written.
type RecordValidator interface {
	// ValidateRecord returns EINVALID if the record's JSON form is not valid.
	ValidateRecord(rec *Record) error
}
