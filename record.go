package depconv

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PlaceLayout controls where creation place components are written.
type PlaceLayout string

// PlaceLayout constants for Record.
const (
	// PlaceLayoutNested writes components under the "creation_place" key.
	PlaceLayoutNested PlaceLayout = "nested"
	// PlaceLayoutFlat writes components as top-level record keys.
	PlaceLayoutFlat PlaceLayout = "flat"
)

// PlaceComponent is one child element of a place node, keyed by its tag.
type PlaceComponent struct {
	Name string
	Text string
}

// Place is an ordered mapping of place component names to text.
// It marshals to a JSON object in component order.
type Place []PlaceComponent

// Get returns the text of the named component.
func (p Place) Get(name string) (string, bool) {
	for _, c := range p {
		if c.Name == name {
			return c.Text, true
		}
	}
	return "", false
}

// Set assigns text to the named component. A component that already
// exists keeps its position and takes the new text.
func (p *Place) Set(name, text string) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Text = text
			return
		}
	}
	*p = append(*p, PlaceComponent{Name: name, Text: text})
}

// MarshalJSON encodes the place as a JSON object.
func (p Place) MarshalJSON() ([]byte, error) {
	var obj object
	for _, c := range p {
		obj.field(c.Name, c.Text)
	}
	return obj.bytes()
}

// Person is a participant listed in a deposition.
type Person struct {
	Role       string `json:"role"`
	Forename   string `json:"forename,omitempty"`
	Surname    string `json:"surname,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Sex        string `json:"sex"`
	Residence  *Place `json:"residence,omitempty"`
}

// Signature is a signatory of a deposition.
type Signature struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Residence is a person's place of residence, optionally geocoded.
type Residence struct {
	// Person is the index of the resident in the record's people list.
	Person    int      `json:"person"`
	Town      string   `json:"town,omitempty"`
	County    string   `json:"county,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	GeonameID *int64   `json:"geonames_id,omitempty"`
	Fuzziness *float64 `json:"geonames_fuzziness,omitempty"`
}

// Geocoded reports whether coordinates were found for the residence.
func (r *Residence) Geocoded() bool {
	return r.Lat != nil && r.Lng != nil
}

// KeywordList holds the resolved keyword texts for one list type.
type KeywordList struct {
	Type   string
	Values []string
}

// Record is the JSON representation of a single deposition.
type Record struct {
	Filename      string
	Title         string
	CreationDate  string
	CreationPlace *Place
	PlaceLayout   PlaceLayout
	Keywords      []KeywordList
	People        []*Person
	Signatures    []*Signature

	// Residences and Deponent are set by enrichment only.
	Residences []*Residence
	Deponent   *Residence
}

// ParticipantsNumber returns the number of people listed in the record.
func (r *Record) ParticipantsNumber() int {
	return len(r.People)
}

// Stem returns the record's filename without its extension.
func (r *Record) Stem() string {
	return strings.TrimSuffix(r.Filename, ".xml")
}

// SetKeywords assigns the resolved values for a list type. Empty values are
// ignored. A type that already exists keeps its position and takes the new
// values.
func (r *Record) SetKeywords(listType string, values []string) {
	if len(values) == 0 {
		return
	}
	for i := range r.Keywords {
		if r.Keywords[i].Type == listType {
			r.Keywords[i].Values = values
			return
		}
	}
	r.Keywords = append(r.Keywords, KeywordList{Type: listType, Values: values})
}

// KeywordValues returns the resolved values for a list type, or nil.
func (r *Record) KeywordValues(listType string) []string {
	for _, kl := range r.Keywords {
		if kl.Type == listType {
			return kl.Values
		}
	}
	return nil
}

// ReservedKey reports whether name is one of the record's own top-level keys.
// Keyword types and flat place components never take these names.
func ReservedKey(name string) bool {
	switch name {
	case "filename", "title", "creation_date", "creation_place",
		"people_list", "participants_number", "signed_by":
		return true
	}
	return strings.HasPrefix(name, "deponent_")
}

// MarshalJSON encodes the record as a JSON object with a stable key order.
// Optional fields are omitted entirely rather than written as empty values.
// Keyword types and flat place components that are reserved or already
// written are skipped, so every key appears once.
func (r *Record) MarshalJSON() ([]byte, error) {
	var obj object
	obj.field("filename", r.Filename)
	if r.Title != "" {
		obj.field("title", r.Title)
	}
	if r.CreationDate != "" {
		obj.field("creation_date", r.CreationDate)
	}
	if r.CreationPlace != nil {
		if r.PlaceLayout == PlaceLayoutFlat {
			for _, c := range *r.CreationPlace {
				obj.extra(c.Name, c.Text)
			}
		} else {
			obj.field("creation_place", r.CreationPlace)
		}
	}
	for _, kl := range r.Keywords {
		if len(kl.Values) > 0 {
			obj.extra(kl.Type, kl.Values)
		}
	}
	people := r.People
	if people == nil {
		people = []*Person{}
	}
	obj.field("people_list", people)
	obj.field("participants_number", r.ParticipantsNumber())
	if len(r.Signatures) > 0 {
		obj.field("signed_by", r.Signatures)
	}
	if d := r.Deponent; d != nil {
		obj.field("deponent_town", d.Town)
		obj.field("deponent_county", d.County)
		if d.Geocoded() {
			obj.field("deponent_town_lat", *d.Lat)
			obj.field("deponent_town_lng", *d.Lng)
			if d.GeonameID != nil {
				obj.field("deponent_town_geonames_id", *d.GeonameID)
			}
			if d.Fuzziness != nil {
				obj.field("deponent_town_geonames_fuzziness", *d.Fuzziness)
			}
		}
	}
	if len(r.Residences) > 0 {
		obj.field("deponent_residences", r.Residences)
	}
	return obj.bytes()
}

// object builds a JSON object whose keys keep insertion order.
type object struct {
	buf  bytes.Buffer
	n    int
	err  error
	seen map[string]bool
}

func (o *object) field(key string, v any) {
	if o.err != nil {
		return
	}
	k, err := json.Marshal(key)
	if err != nil {
		o.err = err
		return
	}
	val, err := json.Marshal(v)
	if err != nil {
		o.err = err
		return
	}
	if o.n == 0 {
		o.buf.WriteByte('{')
	} else {
		o.buf.WriteByte(',')
	}
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(val)
	o.n++
	if o.seen == nil {
		o.seen = make(map[string]bool)
	}
	o.seen[key] = true
}

// extra adds a data-derived field unless its key is reserved or taken.
func (o *object) extra(key string, v any) {
	if ReservedKey(key) || o.seen[key] {
		return
	}
	o.field(key, v)
}

func (o *object) bytes() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.n == 0 {
		return []byte("{}"), nil
	}
	o.buf.WriteByte('}')
	return o.buf.Bytes(), nil
}
