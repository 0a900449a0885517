// Package depconv converts TEI-XML deposition documents into JSON records,
// optionally enriching them with geocoded residence towns.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., etree/, geonames/, fs/).
package depconv
