package depconv

import (
	"context"
	"io"
)

// DocumentSource enumerates and opens input documents.
type DocumentSource interface {
	// Documents returns the paths of all documents under root, sorted
	// lexicographically.
	Documents(ctx context.Context, root string) ([]string, error)

	// Open opens a document returned by Documents.
	Open(path string) (io.ReadCloser, error)
}
