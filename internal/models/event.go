package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event is a recorded event with its photo gallery. Events are created and
// destroyed as a whole; there are no partial edits.
type Event struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"` // label, not required unique
	Date   string   `json:"date"` // ISO-8601 calendar date, YYYY-MM-DD
	Photos []string `json:"photos"`
}

// ParseEvents decodes an events document, assigning IDs to records written
// before events carried them. changed reports whether any record was
// rewritten.
func ParseEvents(data []byte) (events []Event, changed bool, err error) {
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false, fmt.Errorf("decoding events document: %w", err)
	}
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.New().String()
			changed = true
		}
		if events[i].Photos == nil {
			events[i].Photos = []string{}
			changed = true
		}
	}
	return events, changed, nil
}
