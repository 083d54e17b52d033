package geo

import (
	"sort"
	"strings"

	"github.com/kshore/metbook/internal/models"
)

// CountryTally is the per-country grouping of people for map rendering.
type CountryTally struct {
	Country string   `json:"country"`
	Code    string   `json:"country_code"` // ISO-3, "" when ungeocodable
	Names   []string `json:"people"`
	Count   int      `json:"count"`
}

// StateTally is the per-US-state grouping of people for map rendering.
type StateTally struct {
	State string   `json:"state"`
	Code  string   `json:"state_code"`
	Names []string `json:"people"`
	Count int      `json:"count"`
}

// MapData holds both groupings produced by one Aggregate pass.
type MapData struct {
	Countries []CountryTally `json:"countries"`
	States    []StateTally   `json:"states"`
}

// Row is one line of the flat tabular form consumed by an external
// choropleth renderer.
type Row struct {
	Country     string
	CountryCode string
	State       string
	StateCode   string
	People      string // comma-joined names
	Count       int
}

// Aggregate groups people by country, and the United States subset by
// state. It is a pure function of its input: recomputed on every call,
// never cached, never mutating the people list. Records without a country
// tally under "Unknown" with an empty code.
func Aggregate(people []models.Person) MapData {
	byCountry := make(map[string][]string)
	byState := make(map[string][]string)
	var countryOrder, stateOrder []string

	for _, p := range people {
		country := p.Country
		if country == "" {
			country = Unknown
		}
		if _, seen := byCountry[country]; !seen {
			countryOrder = append(countryOrder, country)
		}
		byCountry[country] = append(byCountry[country], p.Name)

		if country == UnitedStates && p.State != "" {
			if _, seen := byState[p.State]; !seen {
				stateOrder = append(stateOrder, p.State)
			}
			byState[p.State] = append(byState[p.State], p.Name)
		}
	}

	sort.Strings(countryOrder)
	sort.Strings(stateOrder)

	data := MapData{}
	for _, country := range countryOrder {
		names := byCountry[country]
		data.Countries = append(data.Countries, CountryTally{
			Country: country,
			Code:    CountryCode(country),
			Names:   names,
			Count:   len(names),
		})
	}
	for _, state := range stateOrder {
		names := byState[state]
		data.States = append(data.States, StateTally{
			State: state,
			Code:  StateCode(state),
			Names: names,
			Count: len(names),
		})
	}
	return data
}

// Rows flattens the tallies into the tabular export form: country rows
// first, then US state rows.
func (d MapData) Rows() []Row {
	rows := make([]Row, 0, len(d.Countries)+len(d.States))
	for _, c := range d.Countries {
		rows = append(rows, Row{
			Country:     c.Country,
			CountryCode: c.Code,
			People:      strings.Join(c.Names, ", "),
			Count:       c.Count,
		})
	}
	for _, s := range d.States {
		rows = append(rows, Row{
			Country:     UnitedStates,
			CountryCode: CountryCode(UnitedStates),
			State:       s.State,
			StateCode:   s.Code,
			People:      strings.Join(s.Names, ", "),
			Count:       s.Count,
		})
	}
	return rows
}
