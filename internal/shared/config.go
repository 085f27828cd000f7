package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Plex     PlexConfig     `toml:"plex"`
	Playlist PlaylistConfig `toml:"playlist"`
	Seasonal SeasonalConfig `toml:"seasonal"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Files    FilesConfig    `toml:"files"`
	Periods  []PeriodConfig `toml:"periods"`
}

// PlexConfig contains the media server connection settings.
type PlexConfig struct {
	URL                 string `toml:"url"`
	Token               string `toml:"token"`
	MusicLibrary        string `toml:"music_library"`
	ChristmasCollection string `toml:"christmas_collection"`
	ExcludeLabel        string `toml:"exclude_label"`
}

// PlaylistConfig contains curation parameters.
type PlaylistConfig struct {
	MaxTracks           int     `toml:"max_tracks"`
	ArtistFraction      float64 `toml:"artist_fraction"`
	GenreFraction       float64 `toml:"genre_fraction"`
	SonicSimilarLimit   int     `toml:"sonic_similar_limit"`
	ExcludePlayedDays   int     `toml:"exclude_played_days"`
	HistoryLookbackDays int     `toml:"history_lookback_days"`
}

// SeasonalConfig groups seasonal content windows.
type SeasonalConfig struct {
	Christmas WindowConfig `toml:"christmas"`
}

// WindowConfig describes a month/day date window. Windows may cross the new year.
type WindowConfig struct {
	StartMonth int `toml:"start_month"`
	StartDay   int `toml:"start_day"`
	EndMonth   int `toml:"end_month"`
	EndDay     int `toml:"end_day"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP status server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// FilesConfig contains paths to auxiliary data files.
type FilesConfig struct {
	MoodMap string `toml:"mood_map"`
}

// PeriodConfig describes one daypart: its name, the hours it covers and the phrase used in playlist descriptions.
type PeriodConfig struct {
	Name   string `toml:"name"`
	Hours  []int  `toml:"hours"`
	Phrase string `toml:"phrase"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
