package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/store"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List people with their most recent photo and last meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("list: opening store: %w", err)
			}

			people := st.People()
			for i, p := range people {
				fmt.Printf("[%d] %s\n", i+1, p.Name)
				fmt.Printf("    ID: %s | Photos: %d\n", p.ID, len(store.VisiblePhotos(p)))
				if last, ok := p.LastMeeting(); ok {
					fmt.Printf("    Last seen: %s at %s\n", last.Date, truncate(last.Location, 60))
				}
				if recent, ok := store.MostRecentPhoto(p); ok {
					fmt.Printf("    Photo: %s\n", recent)
				}
			}

			if len(people) == 0 {
				fmt.Println("No people recorded yet.")
			}
			return nil
		},
	}
}
