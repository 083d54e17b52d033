package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/store"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id|name]",
		Short: "Show one person's full record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("show: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}

			fmt.Printf("%s\n", p.Name)
			fmt.Printf("ID:      %s\n", p.ID)
			if p.Country != "" {
				origin := p.Country
				if p.State != "" {
					origin = p.State + ", " + p.Country
				}
				fmt.Printf("From:    %s\n", origin)
			}

			fmt.Printf("Meetings (%d):\n", len(p.Meetings))
			for _, m := range p.Meetings {
				fmt.Printf("  %s  %s\n", m.Date, m.Location)
			}

			entries := store.PhotoListing(p)
			fmt.Printf("Photos (%d):\n", len(entries))
			for _, e := range entries {
				if e.Missing {
					fmt.Printf("  [%d] %s (file missing)\n", e.Index, e.Path)
				} else {
					fmt.Printf("  [%d] %s\n", e.Index, e.Path)
				}
			}
			return nil
		},
	}
}
