package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/geo"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			people, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("stats: opening people store: %w", err)
			}
			events, err := newEventStore(logger)
			if err != nil {
				return fmt.Errorf("stats: opening event store: %w", err)
			}

			var meetings, photos int
			for _, p := range people.People() {
				meetings += len(p.Meetings)
				photos += len(p.Photos)
			}
			evs := events.Events()
			var eventPhotos int
			for _, e := range evs {
				eventPhotos += len(e.Photos)
			}

			fmt.Printf("People: %d (%d meetings, %d photos)\n", len(people.People()), meetings, photos)
			fmt.Printf("Events: %d (%d photos)\n\n", len(evs), eventPhotos)

			fmt.Println("By country:")
			for _, c := range geo.Aggregate(people.People()).Countries {
				fmt.Printf("  %-16s %d\n", c.Country, c.Count)
			}
			return nil
		},
	}
}
