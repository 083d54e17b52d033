package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/store"
)

func editCmd() *cobra.Command {
	var (
		name    string
		country string
		state   string
	)

	cmd := &cobra.Command{
		Use:   "edit [id|name]",
		Short: "Edit a person's name or origin",
		Long:  "Edit applies only the flags that were set, and writes only when a value actually differs from the current record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("edit: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}

			var patch store.FieldPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("country") {
				patch.Country = &country
			}
			if cmd.Flags().Changed("state") {
				patch.State = &state
			}

			changed, err := st.UpdateFields(p.ID, patch)
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			if changed {
				fmt.Println("Changes saved.")
			} else {
				fmt.Println("Nothing to change.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&country, "country", "", "new country of origin")
	cmd.Flags().StringVar(&state, "state", "", "new US state of origin")
	return cmd
}
