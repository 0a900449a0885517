package depconv

// KeywordIndex maps a keyword list type to its codes and their display text.
// It is read-only once loaded.
type KeywordIndex map[string]map[string]string

// Resolve returns the display text for a code within a list type.
func (idx KeywordIndex) Resolve(listType, code string) (string, bool) {
	codes, ok := idx[listType]
	if !ok {
		return "", false
	}
	text, ok := codes[code]
	return text, ok
}

// KeywordLoader loads the shared keyword reference file.
type KeywordLoader interface {
	// LoadKeywords reads the keyword lists at path.
	// Returns EIO if the file cannot be read and EPARSE if it is malformed.
	LoadKeywords(path string) (KeywordIndex, error)
}
