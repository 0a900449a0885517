package mock

import (
	"io"

	"github.com/fwojciec/depconv"
)

var _ depconv.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of depconv.Extractor.
type Extractor struct {
	ExtractFn func(name string, r io.Reader, idx depconv.KeywordIndex) (*depconv.Record, error)
}

func (e *Extractor) Extract(name string, r io.Reader, idx depconv.KeywordIndex) (*depconv.Record, error) {
	return e.ExtractFn(name, r, idx)
}
