package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/depconv"
)

// DefaultPattern matches deposition documents at any depth.
const DefaultPattern = "**/dep_8*.xml"

// Ensure Source implements depconv.DocumentSource at compile time.
var _ depconv.DocumentSource = (*Source)(nil)

// Source finds documents on the local filesystem by glob pattern.
type Source struct {
	pattern string
}

// NewSource creates a Source matching pattern relative to the input root.
// An empty pattern means DefaultPattern.
func NewSource(pattern string) *Source {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Source{pattern: pattern}
}

// Documents returns the files under root matching the pattern, sorted.
func (s *Source) Documents(ctx context.Context, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(s.pattern) {
		return nil, depconv.Errorf(depconv.EINVALID, "invalid document pattern %q", s.pattern)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, depconv.Errorf(depconv.EIO, "reading input root: %v", err)
	} else if !info.IsDir() {
		return nil, depconv.Errorf(depconv.EINVALID, "input root %s is not a directory", root)
	}

	matches, err := doublestar.Glob(os.DirFS(root), s.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, depconv.Errorf(depconv.EIO, "listing documents under %s: %v", root, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(paths)
	return paths, nil
}

// Open opens a document for reading.
func (s *Source) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, depconv.Errorf(depconv.EIO, "opening %s: %v", path, err)
	}
	return f, nil
}
