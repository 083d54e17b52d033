package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kshore/metbook/internal/geo"
	"github.com/kshore/metbook/internal/metrics"
	"github.com/kshore/metbook/internal/models"
	"github.com/kshore/metbook/internal/photo"
)

// PeopleStore owns the list of Person records and its JSON document.
type PeopleStore struct {
	mu        sync.Mutex
	path      string
	processor *photo.Processor
	logger    *slog.Logger
	people    []models.Person
}

// NewPeopleStore creates a PeopleStore persisting to path and processing
// uploads through processor. Call Load before any other method.
func NewPeopleStore(path string, processor *photo.Processor, logger *slog.Logger) *PeopleStore {
	return &PeopleStore{
		path:      path,
		processor: processor,
		logger:    logger,
		people:    []models.Person{},
	}
}

// Load reads the people document, initializing an empty list when the file
// is absent. Records in legacy shapes are upgraded to the canonical shape
// and the upgrade is persisted immediately, so later reads see only the
// canonical form.
func (s *PeopleStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, exists, err := readDocument(s.path)
	if err != nil {
		return fmt.Errorf("load people: %w", err)
	}
	if !exists {
		s.people = []models.Person{}
		return nil
	}

	people, changed, err := models.ParsePeople(data)
	if err != nil {
		return fmt.Errorf("load people: %w", err)
	}
	s.people = people

	if changed {
		s.logger.Info("upgraded legacy people records", "count", len(people))
		if err := s.save(); err != nil {
			return fmt.Errorf("load people: persisting upgrade: %w", err)
		}
	}
	return nil
}

// save rewrites the whole document. Callers hold s.mu.
func (s *PeopleStore) save() error {
	return writeDocument(s.path, s.people)
}

// People returns a copy of the record list in stored order.
func (s *PeopleStore) People() []models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Person, len(s.people))
	copy(out, s.people)
	return out
}

// Get retrieves a single person by ID.
func (s *PeopleStore) Get(id string) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Person{}, fmt.Errorf("%w: person %s", ErrNotFound, id)
	}
	return s.people[i], nil
}

// FindByName returns the first record whose name matches case-insensitively.
// Names are a soft-unique key: at most one record is returned, first match
// wins.
func (s *PeopleStore) FindByName(name string) (models.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.people {
		if s.people[i].NameMatches(name) {
			return s.people[i], true
		}
	}
	return models.Person{}, false
}

// MeetingParams carries the inputs of one "record meeting" submission.
// Country and State are creation defaults, ignored when the name already
// exists.
type MeetingParams struct {
	Name      string
	PhotoFile string
	Location  string
	Date      string // YYYY-MM-DD
	Country   string
	State     string
}

// validate enforces the required fields before any persistence or
// file-write side effect, so partial records are never written.
func (p MeetingParams) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.PhotoFile == "" {
		return fmt.Errorf("photo is required")
	}
	if p.Location == "" {
		return fmt.Errorf("location is required")
	}
	if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", p.Date, err)
	}
	if p.Country != "" && !geo.ValidCountry(p.Country) {
		return fmt.Errorf("unknown country %q", p.Country)
	}
	if p.State != "" && !geo.ValidState(p.State) {
		return fmt.Errorf("unknown state %q", p.State)
	}
	return nil
}

// RecordMeeting is the primary write path. An existing name (any casing)
// gets the new photo and meeting appended to its single record; an unseen
// name creates a new record with the supplied defaults and one meeting.
// created reports which branch ran.
func (s *PeopleStore) RecordMeeting(params MeetingParams) (person models.Person, created bool, err error) {
	if err := params.validate(); err != nil {
		return models.Person{}, false, fmt.Errorf("record meeting: %w", err)
	}

	photoPath, err := s.processor.Process(params.PhotoFile, params.Name)
	if err != nil {
		return models.Person{}, false, fmt.Errorf("record meeting: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meeting := models.Meeting{Date: params.Date, Location: params.Location}

	for i := range s.people {
		if !s.people[i].NameMatches(params.Name) {
			continue
		}
		p := &s.people[i]
		p.Photos = append(p.Photos, photoPath)
		p.Meetings = append(p.Meetings, meeting)
		p.SortMeetings()
		if err := s.save(); err != nil {
			return models.Person{}, false, fmt.Errorf("record meeting: %w", err)
		}
		metrics.Inc(metrics.MeetingsRecorded)
		return *p, false, nil
	}

	state := params.State
	if params.Country != geo.UnitedStates {
		state = ""
	}
	p := models.Person{
		ID:       uuid.New().String(),
		Name:     params.Name,
		Photos:   []string{photoPath},
		Country:  params.Country,
		State:    state,
		Meetings: []models.Meeting{meeting},
	}
	s.people = append(s.people, p)
	if err := s.save(); err != nil {
		return models.Person{}, false, fmt.Errorf("record meeting: %w", err)
	}
	metrics.Inc(metrics.MeetingsRecorded)
	return p, true, nil
}

// FieldPatch is a partial update to a person's editable fields. Nil means
// "leave unchanged".
type FieldPatch struct {
	Name    *string
	Country *string
	State   *string
}

// UpdateFields applies the patch and reports whether the record actually
// differs afterwards. The patch is resolved to final field values first, so
// edits that normalize back to the original (a state patched onto a non-US
// record is dropped, since only US records carry a state) count as no
// change and write nothing.
func (s *PeopleStore) UpdateFields(id string, patch FieldPatch) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, fmt.Errorf("update fields: %w: person %s", ErrNotFound, id)
	}
	p := &s.people[i]

	name, country, state := p.Name, p.Country, p.State
	if patch.Name != nil && *patch.Name != "" {
		name = *patch.Name
	}
	if patch.Country != nil {
		if !geo.ValidCountry(*patch.Country) {
			return false, fmt.Errorf("update fields: unknown country %q", *patch.Country)
		}
		country = *patch.Country
	}
	if patch.State != nil {
		if !geo.ValidState(*patch.State) {
			return false, fmt.Errorf("update fields: unknown state %q", *patch.State)
		}
		state = *patch.State
	}
	if country != geo.UnitedStates {
		state = ""
	}

	if name == p.Name && country == p.Country && state == p.State {
		return false, nil
	}
	p.Name, p.Country, p.State = name, country, state
	if err := s.save(); err != nil {
		return false, fmt.Errorf("update fields: %w", err)
	}
	return true, nil
}

// AddMeeting inserts a meeting keeping the date order. A meeting whose date
// already exists on the person is dropped silently regardless of location;
// added reports whether anything was written.
func (s *PeopleStore) AddMeeting(id, date, location string) (added bool, err error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false, fmt.Errorf("add meeting: invalid date %q: %w", date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, fmt.Errorf("add meeting: %w: person %s", ErrNotFound, id)
	}
	p := &s.people[i]

	if p.HasMeetingOn(date) {
		return false, nil
	}
	p.Meetings = append(p.Meetings, models.Meeting{Date: date, Location: location})
	p.SortMeetings()
	if err := s.save(); err != nil {
		return false, fmt.Errorf("add meeting: %w", err)
	}
	return true, nil
}

// DeleteMeeting removes the meeting with the given date.
func (s *PeopleStore) DeleteMeeting(id, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete meeting: %w: person %s", ErrNotFound, id)
	}
	p := &s.people[i]

	for j := range p.Meetings {
		if p.Meetings[j].Date == date {
			p.Meetings = append(p.Meetings[:j], p.Meetings[j+1:]...)
			if err := s.save(); err != nil {
				return fmt.Errorf("delete meeting: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("delete meeting: %w: no meeting on %s", ErrNotFound, date)
}

// AddPhoto processes file and appends the resulting path to the person's
// photo list. Upload order is preserved.
func (s *PeopleStore) AddPhoto(id, file string) (path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return "", fmt.Errorf("add photo: %w: person %s", ErrNotFound, id)
	}

	path, err = s.processor.Process(file, s.people[i].Name)
	if err != nil {
		return "", fmt.Errorf("add photo: %w", err)
	}
	s.people[i].Photos = append(s.people[i].Photos, path)
	if err := s.save(); err != nil {
		return "", fmt.Errorf("add photo: %w", err)
	}
	return path, nil
}

// DeletePhoto removes the photo at index, deleting its file (a file already
// gone is treated as already absent). current is the externally-tracked
// photo cursor for this person; the returned value is clamped into the new
// valid range: min(current, len-1), or 0 when no photos remain.
func (s *PeopleStore) DeletePhoto(id string, index, current int) (newCurrent int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("delete photo: %w: person %s", ErrNotFound, id)
	}
	p := &s.people[i]

	if index < 0 || index >= len(p.Photos) {
		return 0, fmt.Errorf("delete photo: index %d out of range [0,%d)", index, len(p.Photos))
	}

	removeFile(p.Photos[index], s.logger)
	p.Photos = append(p.Photos[:index], p.Photos[index+1:]...)

	if err := s.save(); err != nil {
		return 0, fmt.Errorf("delete photo: %w", err)
	}
	return ClampIndex(current, len(p.Photos)), nil
}

// DeletePerson removes the record and deletes every photo file it owns.
func (s *PeopleStore) DeletePerson(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete person: %w: person %s", ErrNotFound, id)
	}
	for _, path := range s.people[i].Photos {
		removeFile(path, s.logger)
	}
	s.people = append(s.people[:i], s.people[i+1:]...)
	if err := s.save(); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	metrics.Inc(metrics.PeopleDeleted)
	return nil
}

// indexOf returns the position of the person with the given ID, or -1.
// Callers hold s.mu.
func (s *PeopleStore) indexOf(id string) int {
	for i := range s.people {
		if s.people[i].ID == id {
			return i
		}
	}
	return -1
}

// ClampIndex clamps a photo cursor into the valid range for a list of
// length n: min(cur, n-1), or 0 for an empty list.
func ClampIndex(cur, n int) int {
	if n == 0 {
		return 0
	}
	if cur > n-1 {
		return n - 1
	}
	if cur < 0 {
		return 0
	}
	return cur
}

// VisiblePhotos filters the person's photo list down to paths whose files
// still exist. Stale entries are filtered from display, never rewritten;
// only an explicit photo delete repairs the list.
func VisiblePhotos(p models.Person) []string {
	var out []string
	for _, path := range p.Photos {
		if fileExists(path) {
			out = append(out, path)
		}
	}
	return out
}

// PhotoEntry is one row of a person's photo listing. Index is the entry's
// position in the full photo list, which is the index space DeletePhoto
// consumes; Missing marks entries whose file is gone.
type PhotoEntry struct {
	Index   int
	Path    string
	Missing bool
}

// PhotoListing returns every photo entry with its full-list index, so the
// indices a caller displays are the ones DeletePhoto accepts even when a
// stale entry sits in the list. Stale entries are marked, never rewritten.
func PhotoListing(p models.Person) []PhotoEntry {
	out := make([]PhotoEntry, 0, len(p.Photos))
	for i, path := range p.Photos {
		out = append(out, PhotoEntry{Index: i, Path: path, Missing: !fileExists(path)})
	}
	return out
}

// MostRecentPhoto returns the visible photo with the latest filename
// timestamp. Malformed names carry the zero timestamp, so they lose to any
// well-formed name without erroring.
func MostRecentPhoto(p models.Person) (string, bool) {
	var (
		best     string
		bestTime time.Time
		found    bool
	)
	for _, path := range VisiblePhotos(p) {
		ts := photo.TimestampOf(path)
		if !found || ts.After(bestTime) || ts.Equal(bestTime) {
			best, bestTime, found = path, ts, true
		}
	}
	return best, found
}
