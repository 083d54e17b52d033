package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func photoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Add or remove a person's photos",
	}
	cmd.AddCommand(photoAddCmd(), photoRmCmd())
	return cmd
}

func photoAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [id|name] [file]",
		Short: "Process and attach a photo to a person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("photo add: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("photo add: %w", err)
			}

			path, err := st.AddPhoto(p.ID, args[1])
			if err != nil {
				return fmt.Errorf("photo add: %w", err)
			}
			fmt.Printf("Photo saved: %s\n", path)
			return nil
		},
	}
	return cmd
}

func photoRmCmd() *cobra.Command {
	var (
		index   int
		current int
	)

	cmd := &cobra.Command{
		Use:   "rm [id|name]",
		Short: "Delete the photo at an index",
		Long:  "Deletes the photo file and its list entry. The printed current index is clamped into the remaining range, so a photo viewer tracking it never points past the end.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("photo rm: opening store: %w", err)
			}

			p, err := resolvePerson(st, args[0])
			if err != nil {
				return fmt.Errorf("photo rm: %w", err)
			}

			if !cmd.Flags().Changed("current") {
				current = index
			}
			newCurrent, err := st.DeletePhoto(p.ID, index, current)
			if err != nil {
				return fmt.Errorf("photo rm: %w", err)
			}
			fmt.Printf("Photo %d removed; current photo index is now %d\n", index, newCurrent)
			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "photo index to delete (as shown by 'show')")
	cmd.Flags().IntVar(&current, "current", 0, "externally-tracked current photo index")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}
