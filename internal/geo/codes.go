// Package geo holds the fixed country and US-state tables and the pure
// aggregation that turns the people list into map-renderable tallies.
package geo

import "sort"

// UnitedStates is the country label that carries a state breakdown.
const UnitedStates = "United States"

// Unknown is the country label used for records with no country.
const Unknown = "Unknown"

// countryCodes maps supported country names to ISO-3 codes for choropleth
// rendering. Unknown names map to "" (counted but not geocoded).
var countryCodes = map[string]string{
	"United States":  "USA",
	"Canada":         "CAN",
	"Mexico":         "MEX",
	"United Kingdom": "GBR",
}

// stateCodes maps US state names to their two-letter postal codes.
var stateCodes = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR", "California": "CA",
	"Colorado": "CO", "Connecticut": "CT", "Delaware": "DE", "Florida": "FL", "Georgia": "GA",
	"Hawaii": "HI", "Idaho": "ID", "Illinois": "IL", "Indiana": "IN", "Iowa": "IA",
	"Kansas": "KS", "Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS", "Missouri": "MO",
	"Montana": "MT", "Nebraska": "NE", "Nevada": "NV", "New Hampshire": "NH", "New Jersey": "NJ",
	"New Mexico": "NM", "New York": "NY", "North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH",
	"Oklahoma": "OK", "Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT", "Vermont": "VT",
	"Virginia": "VA", "Washington": "WA", "West Virginia": "WV", "Wisconsin": "WI", "Wyoming": "WY",
}

// CountryCode returns the ISO-3 code for a country name, or "" when the
// name is not in the table.
func CountryCode(country string) string {
	return countryCodes[country]
}

// StateCode returns the two-letter postal code for a US state name, or ""
// when the name is not in the table.
func StateCode(state string) string {
	return stateCodes[state]
}

// Countries returns the supported country names sorted alphabetically.
func Countries() []string {
	names := make([]string, 0, len(countryCodes))
	for name := range countryCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// States returns the supported US state names sorted alphabetically.
func States() []string {
	names := make([]string, 0, len(stateCodes))
	for name := range stateCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidCountry reports whether country is in the fixed table.
func ValidCountry(country string) bool {
	_, ok := countryCodes[country]
	return ok
}

// ValidState reports whether state is in the fixed US-state table.
func ValidState(state string) bool {
	_, ok := stateCodes[state]
	return ok
}
