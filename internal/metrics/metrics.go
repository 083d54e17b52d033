// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	MeetingsRecorded = expvar.NewInt("metbook_meetings_recorded_total")
	PhotosProcessed  = expvar.NewInt("metbook_photos_processed_total")
	PeopleDeleted    = expvar.NewInt("metbook_people_deleted_total")
	EventsAdded      = expvar.NewInt("metbook_events_added_total")
	SavesTotal       = expvar.NewInt("metbook_saves_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
