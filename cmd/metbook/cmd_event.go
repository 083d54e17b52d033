package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events and their photo galleries",
	}
	cmd.AddCommand(eventAddCmd(), eventListCmd(), eventRmCmd(), eventGalleryCmd())
	return cmd
}

func eventAddCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add [name] [photo files...]",
		Short: "Add an event with its photos",
		Long:  "All photo files are validated before any processing begins: one missing or unsupported file skips the whole event.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newEventStore(logger)
			if err != nil {
				return fmt.Errorf("event add: opening store: %w", err)
			}

			event, err := st.AddEvent(args[0], date, args[1:])
			if err != nil {
				return fmt.Errorf("event add: %w", err)
			}
			fmt.Printf("Added event %s (%s) with %d photo(s)\n", event.Name, event.ID, len(event.Photos))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "event date (YYYY-MM-DD)")
	return cmd
}

func eventListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newEventStore(logger)
			if err != nil {
				return fmt.Errorf("event list: opening store: %w", err)
			}

			events := st.ListByDateDesc()
			for i, e := range events {
				fmt.Printf("[%d] %s (%s)\n", i+1, e.Name, e.Date)
				fmt.Printf("    ID: %s | Photos: %d\n", e.ID, len(e.Photos))
			}
			if len(events) == 0 {
				fmt.Println("No events added yet.")
			}
			return nil
		},
	}
}

func eventRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete an event and all its photo files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newEventStore(logger)
			if err != nil {
				return fmt.Errorf("event rm: opening store: %w", err)
			}

			if err := st.DeleteEvent(args[0]); err != nil {
				return fmt.Errorf("event rm: %w", err)
			}
			fmt.Println("Event deleted.")
			return nil
		},
	}
}

func eventGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "List every event photo, most recent event first",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newEventStore(logger)
			if err != nil {
				return fmt.Errorf("event gallery: opening store: %w", err)
			}

			photos := st.Gallery()
			for _, g := range photos {
				fmt.Printf("%s  %s  %s\n", g.Date, g.EventName, g.Path)
			}
			if len(photos) == 0 {
				fmt.Println("No event photos to show.")
			}
			return nil
		},
	}
}
