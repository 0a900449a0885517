package batch

import (
	"context"
	"fmt"

	"github.com/fwojciec/depconv"
)

// ResidencePolicy selects which residence fills a record's deponent fields.
type ResidencePolicy string

// ResidencePolicy constants for Enricher.
const (
	// ResidenceLast uses the last person with a residence.
	ResidenceLast ResidencePolicy = "last"
	// ResidenceFirst uses the first person with a residence.
	ResidenceFirst ResidencePolicy = "first"
)

// Place component names read from a person's residence.
const (
	townComponent   = "placeName"
	countyComponent = "region"
)

// Enricher geocodes the residence towns of a record's people.
type Enricher struct {
	Geocoder depconv.Geocoder
	Policy   ResidencePolicy
}

// Enrich fills rec.Residences with every person's residence, in people
// order, and points rec.Deponent at the one chosen by the policy.
// Towns the provider cannot find are kept without coordinates; any other
// geocoding failure is returned.
func (e *Enricher) Enrich(ctx context.Context, rec *depconv.Record) error {
	var residences []*depconv.Residence
	for i, person := range rec.People {
		if person.Residence == nil {
			continue
		}
		town, _ := person.Residence.Get(townComponent)
		county, _ := person.Residence.Get(countyComponent)
		res := &depconv.Residence{Person: i, Town: town, County: county}

		if town != "" {
			g, err := e.Geocoder.Geocode(ctx, town)
			switch {
			case err == nil:
				lat, lng, id, fuzziness := g.Lat, g.Lng, g.GeonameID, g.Fuzziness
				res.Lat, res.Lng, res.GeonameID, res.Fuzziness = &lat, &lng, &id, &fuzziness
			case depconv.ErrorCode(err) == depconv.ENOTFOUND:
			default:
				return fmt.Errorf("geocoding residence %q of person %d: %w", town, i+1, err)
			}
		}
		residences = append(residences, res)
	}

	rec.Residences = residences
	rec.Deponent = nil
	if len(residences) > 0 {
		if e.Policy == ResidenceFirst {
			rec.Deponent = residences[0]
		} else {
			rec.Deponent = residences[len(residences)-1]
		}
	}
	return nil
}
