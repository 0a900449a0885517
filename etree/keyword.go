package etree

import (
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/depconv"
)

// Ensure KeywordLoader implements depconv.KeywordLoader at compile time.
var _ depconv.KeywordLoader = (*KeywordLoader)(nil)

// KeywordLoader reads keyword reference files made of typed <list>
// elements whose <item> children are keyed by xml:id.
type KeywordLoader struct{}

// NewKeywordLoader creates a new KeywordLoader.
func NewKeywordLoader() *KeywordLoader {
	return &KeywordLoader{}
}

// LoadKeywords reads and parses the keyword file at path.
func (l *KeywordLoader) LoadKeywords(path string) (depconv.KeywordIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, depconv.Errorf(depconv.EIO, "reading keywords %s: %v", path, err)
	}
	defer f.Close()

	return ParseKeywords(f)
}

// ParseKeywords builds a KeywordIndex from keyword list XML.
// Lists sharing a type are merged; a later item with the same id wins.
func ParseKeywords(r io.Reader) (depconv.KeywordIndex, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, depconv.Errorf(depconv.EPARSE, "parsing keywords XML: %v", err)
	}
	if doc.Root() == nil {
		return nil, depconv.Errorf(depconv.EPARSE, "empty keywords XML")
	}

	idx := make(depconv.KeywordIndex)
	for _, list := range doc.FindElements("//list") {
		listType := list.SelectAttrValue("type", "")
		if listType == "" {
			return nil, depconv.Errorf(depconv.EPARSE, "keyword list without type attribute")
		}
		codes, ok := idx[listType]
		if !ok {
			codes = make(map[string]string)
			idx[listType] = codes
		}
		for _, item := range list.FindElements(".//item") {
			id := item.SelectAttrValue("xml:id", "")
			if id == "" {
				continue
			}
			codes[id] = strings.TrimSpace(fullText(item))
		}
	}

	return idx, nil
}
