package depconv_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/depconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_Set(t *testing.T) {
	t.Parallel()

	var p depconv.Place
	p.Set("settlement", "Dublin")
	p.Set("region", "County Dublin")
	p.Set("settlement", "Swords")

	assert.Equal(t, depconv.Place{
		{Name: "settlement", Text: "Swords"},
		{Name: "region", Text: "County Dublin"},
	}, p)

	text, ok := p.Get("region")
	assert.True(t, ok)
	assert.Equal(t, "County Dublin", text)

	_, ok = p.Get("country")
	assert.False(t, ok)
}

func TestPlace_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("keeps component order", func(t *testing.T) {
		t.Parallel()

		p := depconv.Place{{Name: "settlement", Text: "Dublin"}, {Name: "region", Text: "County Dublin"}}
		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.Equal(t, `{"settlement":"Dublin","region":"County Dublin"}`, string(data))
	})

	t.Run("empty place is an empty object", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(depconv.Place{})
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(data))
	})
}

func TestRecord_SetKeywords(t *testing.T) {
	t.Parallel()

	rec := &depconv.Record{}
	rec.SetKeywords("crime", []string{"Robbery"})
	rec.SetKeywords("commissioner", nil)
	rec.SetKeywords("county", []string{"Dublin"})
	rec.SetKeywords("crime", []string{"Murder"})

	assert.Equal(t, []depconv.KeywordList{
		{Type: "crime", Values: []string{"Murder"}},
		{Type: "county", Values: []string{"Dublin"}},
	}, rec.Keywords)
	assert.Equal(t, []string{"Dublin"}, rec.KeywordValues("county"))
	assert.Nil(t, rec.KeywordValues("commissioner"))
}

func TestReservedKey(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"filename", "title", "creation_date", "creation_place", "people_list", "participants_number", "signed_by", "deponent_town", "deponent_residences"} {
		assert.True(t, depconv.ReservedKey(name), name)
	}
	for _, name := range []string{"crime", "county", "settlement", "deponent"} {
		assert.False(t, depconv.ReservedKey(name), name)
	}
}

func TestRecord_Stem(t *testing.T) {
	t.Parallel()

	rec := &depconv.Record{Filename: "dep_810001.xml"}
	assert.Equal(t, "dep_810001", rec.Stem())
}

func TestRecord_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes keys in record order", func(t *testing.T) {
		t.Parallel()

		lat, lng := 53.46, -6.22
		swords := &depconv.Residence{Person: 0, Town: "Swords", Lat: &lat, Lng: &lng}
		rec := &depconv.Record{
			Filename:      "dep_810001.xml",
			Title:         "Deposition of John Smith",
			CreationDate:  "1641-08-15",
			CreationPlace: &depconv.Place{{Name: "settlement", Text: "Dublin"}},
			Keywords:      []depconv.KeywordList{{Type: "crime", Values: []string{"Robbery"}}},
			People:        []*depconv.Person{{Role: "deponent", Forename: "John", Sex: "male"}},
			Signatures:    []*depconv.Signature{{Role: "commissioner", Name: "Henry Jones"}},
			Residences:    []*depconv.Residence{swords},
			Deponent:      swords,
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, `{"filename":"dep_810001.xml",`+
			`"title":"Deposition of John Smith",`+
			`"creation_date":"1641-08-15",`+
			`"creation_place":{"settlement":"Dublin"},`+
			`"crime":["Robbery"],`+
			`"people_list":[{"role":"deponent","forename":"John","sex":"male"}],`+
			`"participants_number":1,`+
			`"signed_by":[{"role":"commissioner","name":"Henry Jones"}],`+
			`"deponent_town":"Swords",`+
			`"deponent_county":"",`+
			`"deponent_town_lat":53.46,`+
			`"deponent_town_lng":-6.22,`+
			`"deponent_residences":[{"person":0,"town":"Swords","lat":53.46,"lng":-6.22}]}`,
			string(data))
	})

	t.Run("flat layout writes place components at the top level", func(t *testing.T) {
		t.Parallel()

		rec := &depconv.Record{
			Filename:      "dep_810001.xml",
			CreationPlace: &depconv.Place{{Name: "settlement", Text: "Dublin"}, {Name: "region", Text: "County Dublin"}},
			PlaceLayout:   depconv.PlaceLayoutFlat,
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, `{"filename":"dep_810001.xml","settlement":"Dublin","region":"County Dublin","people_list":[],"participants_number":0}`, string(data))
	})

	t.Run("never writes a key twice", func(t *testing.T) {
		t.Parallel()

		rec := &depconv.Record{
			Filename: "dep_810001.xml",
			Title:    "Deposition of John Smith",
			CreationPlace: &depconv.Place{
				{Name: "title", Text: "Dublin Castle"},
				{Name: "settlement", Text: "Dublin"},
				{Name: "people_list", Text: "nobody"},
			},
			PlaceLayout: depconv.PlaceLayoutFlat,
			Keywords: []depconv.KeywordList{
				{Type: "filename", Values: []string{"Robbery"}},
				{Type: "settlement", Values: []string{"Swords"}},
				{Type: "deponent_town", Values: []string{"Cavan"}},
				{Type: "crime", Values: []string{"Murder"}},
			},
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, `{"filename":"dep_810001.xml",`+
			`"title":"Deposition of John Smith",`+
			`"settlement":"Dublin",`+
			`"crime":["Murder"],`+
			`"people_list":[],"participants_number":0}`,
			string(data))
	})

	t.Run("omits optional fields", func(t *testing.T) {
		t.Parallel()

		rec := &depconv.Record{
			Filename: "dep_810001.xml",
			Keywords: []depconv.KeywordList{{Type: "crime"}},
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, `{"filename":"dep_810001.xml","people_list":[],"participants_number":0}`, string(data))
	})

	t.Run("ungeocoded deponent has no coordinates", func(t *testing.T) {
		t.Parallel()

		res := &depconv.Residence{Town: "Atlantis", County: "County Nowhere"}
		rec := &depconv.Record{Filename: "dep_810001.xml", Residences: []*depconv.Residence{res}, Deponent: res}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "Atlantis", m["deponent_town"])
		assert.NotContains(t, m, "deponent_town_lat")
		assert.NotContains(t, m, "deponent_town_geonames_id")
	})
}
