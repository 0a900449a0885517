package mock

import "github.com/fwojciec/depconv"

var _ depconv.KeywordLoader = (*KeywordLoader)(nil)

// KeywordLoader is a mock implementation of depconv.KeywordLoader.
type KeywordLoader struct {
	LoadKeywordsFn func(path string) (depconv.KeywordIndex, error)
}

func (l *KeywordLoader) LoadKeywords(path string) (depconv.KeywordIndex, error) {
	return l.LoadKeywordsFn(path)
}
