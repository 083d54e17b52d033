package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm [id|name]",
		Short: "Delete a person and every photo file they own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("rm: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("rm: %w", err)
			}

			if !yes {
				return fmt.Errorf("rm: refusing to delete %s (%d photos) without --yes", p.Name, len(p.Photos))
			}

			if err := st.DeletePerson(p.ID); err != nil {
				return fmt.Errorf("rm: %w", err)
			}
			fmt.Printf("Deleted %s and %d photo(s)\n", p.Name, len(p.Photos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
