package store

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kshore/metbook/internal/metrics"
	"github.com/kshore/metbook/internal/models"
	"github.com/kshore/metbook/internal/photo"
)

// EventStore owns the list of Event records and its JSON document. The
// stored list is append-only and unordered; date ordering is derived at
// read time.
type EventStore struct {
	mu        sync.Mutex
	path      string
	processor *photo.Processor
	logger    *slog.Logger
	events    []models.Event
}

// NewEventStore creates an EventStore persisting to path and processing
// uploads through processor. Call Load before any other method.
func NewEventStore(path string, processor *photo.Processor, logger *slog.Logger) *EventStore {
	return &EventStore{
		path:      path,
		processor: processor,
		logger:    logger,
		events:    []models.Event{},
	}
}

// Load reads the events document, initializing an empty list when the file
// is absent. Records without IDs are assigned one and the rewrite is
// persisted immediately.
func (s *EventStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, exists, err := readDocument(s.path)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if !exists {
		s.events = []models.Event{}
		return nil
	}

	events, changed, err := models.ParseEvents(data)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	s.events = events

	if changed {
		s.logger.Info("upgraded legacy event records", "count", len(events))
		if err := s.save(); err != nil {
			return fmt.Errorf("load events: persisting upgrade: %w", err)
		}
	}
	return nil
}

// save rewrites the whole document. Callers hold s.mu.
func (s *EventStore) save() error {
	return writeDocument(s.path, s.events)
}

// Events returns a copy of the record list in stored (append) order.
func (s *EventStore) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Get retrieves a single event by ID.
func (s *EventStore) Get(id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			return s.events[i], nil
		}
	}
	return models.Event{}, fmt.Errorf("%w: event %s", ErrNotFound, id)
}

// AddEvent processes every uploaded file with the event name as label and
// appends the new record. The add is all-or-nothing at the request level:
// every input is validated before any processing begins, so a single
// missing or unsupported file skips the whole event.
func (s *EventStore) AddEvent(name, date string, files []string) (models.Event, error) {
	if name == "" {
		return models.Event{}, fmt.Errorf("add event: name is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.Event{}, fmt.Errorf("add event: invalid date %q: %w", date, err)
	}
	if len(files) == 0 {
		return models.Event{}, fmt.Errorf("add event: at least one photo is required")
	}
	for _, f := range files {
		if err := s.processor.ValidateInput(f); err != nil {
			return models.Event{}, fmt.Errorf("add event: %w", err)
		}
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := s.processor.Process(f, name)
		if err != nil {
			return models.Event{}, fmt.Errorf("add event: %w", err)
		}
		paths = append(paths, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := models.Event{
		ID:     uuid.New().String(),
		Name:   name,
		Date:   date,
		Photos: paths,
	}
	s.events = append(s.events, event)
	if err := s.save(); err != nil {
		return models.Event{}, fmt.Errorf("add event: %w", err)
	}
	metrics.Inc(metrics.EventsAdded)
	return event, nil
}

// DeleteEvent deletes every photo file the event owns, then removes the
// record.
func (s *EventStore) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		for _, path := range s.events[i].Photos {
			removeFile(path, s.logger)
		}
		s.events = append(s.events[:i], s.events[i+1:]...)
		if err := s.save(); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	}
	return fmt.Errorf("delete event: %w: event %s", ErrNotFound, id)
}

// ListByDateDesc returns the events sorted most recent first. The stored
// list itself keeps append order.
func (s *EventStore) ListByDateDesc() []models.Event {
	events := s.Events()
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date > events[j].Date
	})
	return events
}

// GalleryPhoto is one photo-grid cell: a photo path with its event context.
type GalleryPhoto struct {
	Path      string
	EventID   string
	EventName string
	Date      string
}

// Gallery flattens the events, most recent first, into displayable photos.
// Paths whose files no longer exist are filtered out.
func (s *EventStore) Gallery() []GalleryPhoto {
	var out []GalleryPhoto
	for _, e := range s.ListByDateDesc() {
		for _, path := range e.Photos {
			if !fileExists(path) {
				continue
			}
			out = append(out, GalleryPhoto{
				Path:      path,
				EventID:   e.ID,
				EventName: e.Name,
				Date:      e.Date,
			})
		}
	}
	return out
}
