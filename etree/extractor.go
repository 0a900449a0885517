package etree

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/depconv"
)

// Ensure Extractor implements depconv.Extractor at compile time.
var _ depconv.Extractor = (*Extractor)(nil)

// Extractor maps TEI deposition documents to records.
type Extractor struct {
	placeLayout depconv.PlaceLayout
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPlaceLayout sets where creation place components are written.
// Defaults to depconv.PlaceLayoutNested.
func WithPlaceLayout(layout depconv.PlaceLayout) Option {
	return func(x *Extractor) {
		x.placeLayout = layout
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{
		placeLayout: depconv.PlaceLayoutNested,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract parses a deposition document and maps it to a Record.
func (x *Extractor) Extract(name string, r io.Reader, idx depconv.KeywordIndex) (*depconv.Record, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, depconv.Errorf(depconv.EPARSE, "parsing %s: %v", name, err)
	}
	if doc.Root() == nil {
		return nil, depconv.Errorf(depconv.EPARSE, "parsing %s: empty document", name)
	}

	rec := &depconv.Record{
		Filename:    stem(name) + ".xml",
		PlaceLayout: x.placeLayout,
	}

	if title := leadingText(doc.FindElement("//title")); title != "" {
		rec.Title = title
	}

	if err := extractCreation(rec, doc); err != nil {
		return nil, err
	}

	if err := extractKeywords(rec, doc, idx); err != nil {
		return nil, err
	}

	people, err := extractPeople(rec, doc)
	if err != nil {
		return nil, err
	}
	rec.People = people

	signatures, err := extractSignatures(rec, doc)
	if err != nil {
		return nil, err
	}
	rec.Signatures = signatures

	return rec, nil
}

func extractCreation(rec *depconv.Record, doc *etree.Document) error {
	creation := doc.FindElement("//creation")
	if creation == nil {
		return depconv.Errorf(depconv.ESTRUCTURE, "%s: missing <creation> element", rec.Filename)
	}

	date := creation.FindElement(".//date")
	if date == nil {
		return depconv.Errorf(depconv.ESTRUCTURE, "%s: missing <date> element", rec.Filename)
	}
	if when := date.SelectAttr("when"); when != nil {
		rec.CreationDate = strings.TrimSpace(strings.ReplaceAll(when.Value, "_", "-"))
	}

	if placeName := creation.FindElement(".//placeName"); placeName != nil {
		rec.CreationPlace = place(placeName)
	}
	return nil
}

func extractKeywords(rec *depconv.Record, doc *etree.Document, idx depconv.KeywordIndex) error {
	for _, keywords := range doc.FindElements("//keywords") {
		list := keywords.FindElement(".//list")
		if list == nil {
			continue
		}
		listType := list.SelectAttrValue("type", "")
		if listType == "" {
			return depconv.Errorf(depconv.ESTRUCTURE, "%s: keyword list without type attribute", rec.Filename)
		}
		if depconv.ReservedKey(listType) {
			return depconv.Errorf(depconv.ESTRUCTURE, "%s: keyword list type %q clashes with a record field", rec.Filename, listType)
		}

		var values []string
		for _, include := range list.FindElements(".//include") {
			if text, ok := idx.Resolve(listType, include.SelectAttrValue("xpointer", "")); ok {
				values = append(values, text)
			}
		}
		rec.SetKeywords(listType, values)
	}
	return nil
}

func extractPeople(rec *depconv.Record, doc *etree.Document) ([]*depconv.Person, error) {
	listPerson := doc.FindElement("//listPerson")
	if listPerson == nil {
		return nil, depconv.Errorf(depconv.ESTRUCTURE, "%s: missing <listPerson> element", rec.Filename)
	}

	people := []*depconv.Person{}
	for i, el := range listPerson.FindElements(".//person") {
		roleName := el.FindElement(".//roleName")
		if roleName == nil || roleName.SelectAttr("type") == nil {
			return nil, depconv.Errorf(depconv.ESTRUCTURE, "%s: person %d has no role", rec.Filename, i+1)
		}
		sex := el.SelectAttr("sex")
		if sex == nil {
			return nil, depconv.Errorf(depconv.ESTRUCTURE, "%s: person %d has no sex attribute", rec.Filename, i+1)
		}

		person := &depconv.Person{
			Role:       roleName.SelectAttrValue("type", ""),
			Forename:   leadingText(el.FindElement(".//forename")),
			Surname:    leadingText(el.FindElement(".//surname")),
			Occupation: leadingText(el.FindElement(".//occupation")),
			Sex:        sex.Value,
		}
		if residence := el.FindElement(".//residence"); residence != nil {
			person.Residence = place(residence)
		}
		people = append(people, person)
	}
	return people, nil
}

func extractSignatures(rec *depconv.Record, doc *etree.Document) ([]*depconv.Signature, error) {
	var signatures []*depconv.Signature
	for i, el := range doc.FindElements("//signed") {
		roleName := el.FindElement(".//roleName")
		if roleName == nil || roleName.SelectAttr("type") == nil {
			return nil, depconv.Errorf(depconv.ESTRUCTURE, "%s: signature %d has no role", rec.Filename, i+1)
		}
		name := el.FindElement(".//name")
		if name == nil {
			return nil, depconv.Errorf(depconv.ESTRUCTURE, "%s: signature %d has no name", rec.Filename, i+1)
		}
		signatures = append(signatures, &depconv.Signature{
			Role: roleName.SelectAttrValue("type", ""),
			Name: strings.TrimSpace(fullText(name)),
		})
	}
	return signatures, nil
}

// place collects the immediate child elements of e as place components.
func place(e *etree.Element) *depconv.Place {
	p := depconv.Place{}
	for _, child := range e.ChildElements() {
		p.Set(child.Tag, joinedText(child))
	}
	return &p
}

// stem returns the base name of path without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
