package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultPhotoSize is the edge length in pixels of processed photos.
	DefaultPhotoSize = 300

	// DefaultPeopleFile is the people document filename under the data dir.
	DefaultPeopleFile = "people_data.json"

	// DefaultEventsFile is the events document filename under the data dir.
	DefaultEventsFile = "events_data.json"
)

// Config holds all configuration for metbook.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Photos  PhotosConfig  `mapstructure:"photos"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DataConfig holds the locations of the two JSON documents.
type DataConfig struct {
	Dir        string `mapstructure:"dir"`
	PeopleFile string `mapstructure:"people_file"`
	EventsFile string `mapstructure:"events_file"`
}

// PeoplePath returns the full path of the people document.
func (d DataConfig) PeoplePath() string {
	return filepath.Join(d.Dir, d.PeopleFile)
}

// EventsPath returns the full path of the events document.
func (d DataConfig) EventsPath() string {
	return filepath.Join(d.Dir, d.EventsFile)
}

// PhotosConfig holds photo-processing settings.
type PhotosConfig struct {
	PeopleDir string `mapstructure:"people_dir"`
	EventsDir string `mapstructure:"events_dir"`
	Size      int    `mapstructure:"size"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.people_file", DefaultPeopleFile)
	v.SetDefault("data.events_file", DefaultEventsFile)

	v.SetDefault("photos.people_dir", "images")
	v.SetDefault("photos.events_dir", "event_images")
	v.SetDefault("photos.size", DefaultPhotoSize)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".metbook"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("METBOOK")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("data.dir", "METBOOK_DATA_DIR")
	_ = v.BindEnv("photos.people_dir", "METBOOK_PHOTOS_PEOPLE_DIR")
	_ = v.BindEnv("photos.events_dir", "METBOOK_PHOTOS_EVENTS_DIR")
	_ = v.BindEnv("logging.level", "METBOOK_LOGGING_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	if c.Data.PeopleFile == "" {
		return fmt.Errorf("data.people_file must not be empty")
	}
	if c.Data.EventsFile == "" {
		return fmt.Errorf("data.events_file must not be empty")
	}
	if c.Data.PeopleFile == c.Data.EventsFile {
		return fmt.Errorf("data.people_file and data.events_file must differ")
	}
	if c.Photos.PeopleDir == "" {
		return fmt.Errorf("photos.people_dir must not be empty")
	}
	if c.Photos.EventsDir == "" {
		return fmt.Errorf("photos.events_dir must not be empty")
	}
	if c.Photos.PeopleDir == c.Photos.EventsDir {
		return fmt.Errorf("photos.people_dir and photos.events_dir must differ")
	}
	if c.Photos.Size <= 0 {
		return fmt.Errorf("photos.size must be greater than 0")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
