package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kshore/metbook/internal/config"
	"github.com/kshore/metbook/internal/models"
	"github.com/kshore/metbook/internal/photo"
	"github.com/kshore/metbook/internal/store"
)

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:   "metbook",
		Short: "metbook — personal log of people you have met",
		Long:  "Metbook records people you have met (photos, origin, meeting dates and locations) and events with photo galleries, all persisted as JSON documents plus directories of square-cropped photos.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		meetCmd(),
		listCmd(),
		showCmd(),
		editCmd(),
		meetingCmd(),
		photoCmd(),
		rmCmd(),
		eventCmd(),
		mapCmd(),
		statsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// photosDir resolves a configured photo directory against the data dir
// unless it is already absolute.
func photosDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(cfg.Data.Dir, dir)
}

// newPeopleStore builds and loads the people store.
func newPeopleStore(logger *slog.Logger) (*store.PeopleStore, error) {
	proc := photo.NewProcessor(photosDir(cfg.Photos.PeopleDir), cfg.Photos.Size, logger)
	st := store.NewPeopleStore(cfg.Data.PeoplePath(), proc, logger)
	if err := st.Load(); err != nil {
		return nil, err
	}
	return st, nil
}

// newEventStore builds and loads the event store.
func newEventStore(logger *slog.Logger) (*store.EventStore, error) {
	proc := photo.NewProcessor(photosDir(cfg.Photos.EventsDir), cfg.Photos.Size, logger)
	st := store.NewEventStore(cfg.Data.EventsPath(), proc, logger)
	if err := st.Load(); err != nil {
		return nil, err
	}
	return st, nil
}

// resolvePerson accepts either a record ID or a name (case-insensitive).
func resolvePerson(st *store.PeopleStore, arg string) (models.Person, error) {
	if p, err := st.Get(arg); err == nil {
		return p, nil
	}
	if p, ok := st.FindByName(arg); ok {
		return p, nil
	}
	return models.Person{}, fmt.Errorf("no person with ID or name %q", arg)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
