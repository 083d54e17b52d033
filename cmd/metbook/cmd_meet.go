package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/geo"
	"github.com/kshore/metbook/internal/store"
)

func meetCmd() *cobra.Command {
	var (
		photoFile string
		location  string
		date      string
		country   string
		state     string
	)

	cmd := &cobra.Command{
		Use:   "meet [name]",
		Short: "Record a meeting with a person, new or already known",
		Long:  "Meet records one encounter: the photo is cropped and stored, and the meeting is appended to the person's record. A name already in the store (any letter-casing) gets the meeting added to its existing record; a new name creates the record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("meet: opening store: %w", err)
			}

			person, created, err := st.RecordMeeting(store.MeetingParams{
				Name:      args[0],
				PhotoFile: photoFile,
				Location:  location,
				Date:      date,
				Country:   country,
				State:     state,
			})
			if err != nil {
				return fmt.Errorf("meet: %w", err)
			}

			if created {
				fmt.Printf("Added %s (%s)\n", person.Name, person.ID)
			} else {
				fmt.Printf("Added meeting for existing person %s (%d meetings)\n",
					person.Name, len(person.Meetings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&photoFile, "photo", "", "photo file to process (jpg|jpeg|png)")
	cmd.Flags().StringVar(&location, "location", "", "where you met")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&country, "country", geo.UnitedStates, "country of origin (new people only)")
	cmd.Flags().StringVar(&state, "state", "", "US state of origin (new people only)")
	_ = cmd.MarkFlagRequired("photo")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}
