package mock

import (
	"context"
	"io"

	"github.com/fwojciec/depconv"
)

var _ depconv.DocumentSource = (*DocumentSource)(nil)

// DocumentSource is a mock implementation of depconv.DocumentSource.
type DocumentSource struct {
	DocumentsFn func(ctx context.Context, root string) ([]string, error)
	OpenFn      func(path string) (io.ReadCloser, error)
}

func (s *DocumentSource) Documents(ctx context.Context, root string) ([]string, error) {
	return s.DocumentsFn(ctx, root)
}

func (s *DocumentSource) Open(path string) (io.ReadCloser, error) {
	return s.OpenFn(path)
}
