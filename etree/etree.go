// Package etree implements keyword loading and record extraction for TEI
// deposition documents using github.com/beevik/etree.
package etree

import (
	"strings"

	"github.com/beevik/etree"
)

// fullText returns the concatenated character data of e and all of its
// descendants, in document order.
func fullText(e *etree.Element) string {
	var b strings.Builder
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			b.WriteString(fullText(t))
		}
	}
	return b.String()
}

// joinedText returns the trimmed text segments directly under e joined by
// single spaces. Child elements contribute their full text as one segment.
func joinedText(e *etree.Element) string {
	var parts []string
	for _, tok := range e.Child {
		var s string
		switch t := tok.(type) {
		case *etree.CharData:
			s = t.Data
		case *etree.Element:
			s = fullText(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// leadingText returns the trimmed text before e's first child element.
func leadingText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text())
}
