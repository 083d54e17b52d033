package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func meetingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Add or remove meetings on an existing person",
	}
	cmd.AddCommand(meetingAddCmd(), meetingRmCmd())
	return cmd
}

func meetingAddCmd() *cobra.Command {
	var (
		date     string
		location string
	)

	cmd := &cobra.Command{
		Use:   "add [id|name]",
		Short: "Add a meeting to a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("meeting add: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("meeting add: %w", err)
			}

			added, err := st.AddMeeting(p.ID, date, location)
			if err != nil {
				return fmt.Errorf("meeting add: %w", err)
			}
			if added {
				fmt.Printf("Meeting on %s added for %s\n", date, p.Name)
			} else {
				fmt.Printf("A meeting on %s is already recorded for %s\n", date, p.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&location, "location", "", "where you met")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func meetingRmCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rm [id|name]",
		Short: "Remove the meeting on a given date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("meeting rm: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("meeting rm: %w", err)
			}

			if err := st.DeleteMeeting(p.ID, date); err != nil {
				return fmt.Errorf("meeting rm: %w", err)
			}
			fmt.Printf("Meeting on %s removed for %s\n", date, p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "meeting date to remove (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
