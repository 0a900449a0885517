package depconv

import "io"

// Extractor builds a Record from a deposition document.
type Extractor interface {
	// Extract parses the document read from r and maps it to a Record.
	// The name is the document's path or base name; only its stem is used.
	// Returns EPARSE for malformed XML and ESTRUCTURE when a required
	// element or attribute is missing.
	Extract(name string, r io.Reader, idx KeywordIndex) (*Record, error)
}
