package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/geo"
)

func mapCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Aggregate people by origin into map-renderable tallies",
		Long:  "Map produces per-country tallies plus a US state breakdown, in the flat tabular form a choropleth renderer consumes (ISO-3 country codes, US state codes, comma-joined names, counts).",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newPeopleStore(logger)
			if err != nil {
				return fmt.Errorf("map: opening store: %w", err)
			}

			data := geo.Aggregate(st.People())
			if len(data.Countries) == 0 {
				fmt.Println("Add people to see them on the map.")
				return nil
			}

			var out io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("map: creating %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			switch format {
			case "table":
				return writeMapTable(out, data)
			case "csv":
				return writeMapCSV(out, data)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(data); err != nil {
					return fmt.Errorf("map: encoding json: %w", err)
				}
				return nil
			default:
				return fmt.Errorf("map: invalid --format %q: must be table, csv or json", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format (table|csv|json)")
	cmd.Flags().StringVar(&output, "output", "", "write to file instead of stdout")
	return cmd
}

func writeMapTable(out io.Writer, data geo.MapData) error {
	fmt.Fprintln(out, "By country:")
	for _, c := range data.Countries {
		code := c.Code
		if code == "" {
			code = "---" // not geocodable, still counted
		}
		fmt.Fprintf(out, "  %-16s %s  %3d  %s\n", c.Country, code, c.Count, truncate(strings.Join(c.Names, ", "), 60))
	}
	if len(data.States) > 0 {
		fmt.Fprintln(out, "\nUnited States breakdown:")
		for _, s := range data.States {
			fmt.Fprintf(out, "  %-16s %s  %3d  %s\n", s.State, s.Code, s.Count, truncate(strings.Join(s.Names, ", "), 60))
		}
	}
	return nil
}

func writeMapCSV(out io.Writer, data geo.MapData) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"country", "country_code", "state", "state_code", "people", "count"}); err != nil {
		return fmt.Errorf("map: writing csv header: %w", err)
	}
	for _, r := range data.Rows() {
		rec := []string{r.Country, r.CountryCode, r.State, r.StateCode, r.People, strconv.Itoa(r.Count)}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("map: writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("map: flushing csv: %w", err)
	}
	return nil
}
