package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Meeting is one recorded encounter with a person.
type Meeting struct {
	Date     string `json:"date"` // ISO-8601 calendar date, YYYY-MM-DD
	Location string `json:"location"`
}

// Person is the canonical record shape. Every record read from disk is
// brought into this shape by ParsePeople before business logic sees it.
type Person struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Photos   []string  `json:"photos"`
	Country  string    `json:"country,omitempty"`
	State    string    `json:"state,omitempty"` // set only when Country == "United States"
	Meetings []Meeting `json:"meetings"`
}

// LastMeeting returns the most recent meeting, relying on the ascending
// date order maintained by SortMeetings. ok is false when the list is empty.
func (p *Person) LastMeeting() (Meeting, bool) {
	if len(p.Meetings) == 0 {
		return Meeting{}, false
	}
	return p.Meetings[len(p.Meetings)-1], true
}

// HasMeetingOn reports whether a meeting with the given date already exists.
// Date is a soft key within one person: a second meeting on the same date is
// dropped by callers regardless of location.
func (p *Person) HasMeetingOn(date string) bool {
	for _, m := range p.Meetings {
		if m.Date == date {
			return true
		}
	}
	return false
}

// SortMeetings restores the ascending-by-date invariant. ISO-8601 date
// strings sort correctly as plain strings.
func (p *Person) SortMeetings() {
	sort.SliceStable(p.Meetings, func(i, j int) bool {
		return p.Meetings[i].Date < p.Meetings[j].Date
	})
}

// NameMatches reports whether name refers to this person. Names are a
// case-insensitively unique soft key across the store.
func (p *Person) NameMatches(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// legacyPerson is a JSON superset of every record shape earlier revisions of
// the people document wrote. Old files unmarshal into it losslessly; upgrade
// folds the legacy fields into the canonical Person.
type legacyPerson struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Photo       string    `json:"photo,omitempty"` // superseded by Photos
	Photos      []string  `json:"photos,omitempty"`
	Country     string    `json:"country,omitempty"`
	State       string    `json:"state,omitempty"`
	Origin      string    `json:"origin,omitempty"`       // superseded by per-meeting Location
	LocationMet string    `json:"location_met,omitempty"` // superseded by per-meeting Location
	Dates       []string  `json:"dates,omitempty"`        // superseded by Meetings
	Meetings    []Meeting `json:"meetings,omitempty"`
}

// ParsePeople decodes a people document of any historical shape into
// canonical records. changed reports whether any record needed upgrading,
// so the caller can persist the rewrite once and make later loads see only
// the canonical form.
func ParsePeople(data []byte) (people []Person, changed bool, err error) {
	var raw []legacyPerson
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("decoding people document: %w", err)
	}

	people = make([]Person, 0, len(raw))
	for _, lp := range raw {
		p, ch := upgrade(lp)
		people = append(people, p)
		changed = changed || ch
	}
	return people, changed, nil
}

// upgrade converts one record of any historical shape into the canonical
// Person, reporting whether the record differed from that shape.
func upgrade(lp legacyPerson) (Person, bool) {
	changed := false

	p := Person{
		ID:       lp.ID,
		Name:     lp.Name,
		Photos:   lp.Photos,
		Country:  lp.Country,
		State:    lp.State,
		Meetings: lp.Meetings,
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
		changed = true
	}

	if lp.Photo != "" && len(lp.Photos) == 0 {
		p.Photos = []string{lp.Photo}
		changed = true
	}
	if p.Photos == nil {
		p.Photos = []string{}
		changed = true
	}

	if len(lp.Dates) > 0 && len(lp.Meetings) == 0 {
		loc := lp.LocationMet
		if loc == "" {
			loc = lp.Origin
		}
		p.Meetings = make([]Meeting, 0, len(lp.Dates))
		for _, d := range lp.Dates {
			p.Meetings = append(p.Meetings, Meeting{Date: d, Location: loc})
		}
		changed = true
	}
	if p.Meetings == nil {
		p.Meetings = []Meeting{}
		changed = true
	}

	if !sort.SliceIsSorted(p.Meetings, func(i, j int) bool {
		return p.Meetings[i].Date < p.Meetings[j].Date
	}) {
		p.SortMeetings()
		changed = true
	}

	return p, changed
}
