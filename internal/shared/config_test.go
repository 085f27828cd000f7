package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./meloday.db" {
			t.Errorf("expected database path ./meloday.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Plex.URL != "http://127.0.0.1:32400" {
			t.Errorf("expected plex URL http://127.0.0.1:32400, got %s", config.Plex.URL)
		}

		if config.Playlist.MaxTracks != 50 {
			t.Errorf("expected max_tracks 50, got %d", config.Playlist.MaxTracks)
		}

		if config.Playlist.ArtistFraction != 0.05 {
			t.Errorf("expected artist_fraction 0.05, got %v", config.Playlist.ArtistFraction)
		}

		if len(config.Periods) == 0 {
			t.Fatal("expected default periods to be defined")
		}

		seen := make(map[int]string)
		for _, p := range config.Periods {
			for _, h := range p.Hours {
				if prev, ok := seen[h]; ok {
					t.Errorf("hour %d assigned to both %q and %q", h, prev, p.Name)
				}
				seen[h] = p.Name
			}
		}
		for h := 0; h < 24; h++ {
			if _, ok := seen[h]; !ok {
				t.Errorf("hour %d not covered by any period", h)
			}
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[plex]
url = "http://plex.local:32400"
token = "abc123"
music_library = "Tunes"
christmas_collection = "Holiday"
exclude_label = "private"

[playlist]
max_tracks = 20
artist_fraction = 0.05
genre_fraction = 0.15
sonic_similar_limit = 10
exclude_played_days = 3
history_lookback_days = 14

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[[periods]]
name = "Morning"
hours = [6, 7, 8]
phrase = "in the morning"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Plex.Token != "abc123" {
			t.Errorf("expected plex token abc123, got %s", config.Plex.Token)
		}

		if config.Playlist.MaxTracks != 20 {
			t.Errorf("expected max_tracks 20, got %d", config.Playlist.MaxTracks)
		}

		if len(config.Periods) != 1 || config.Periods[0].Name != "Morning" {
			t.Errorf("expected single Morning period, got %+v", config.Periods)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.toml")
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[plex\nurl ="), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
