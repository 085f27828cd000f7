package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/meloday/internal/services"
	"github.com/desertthunder/meloday/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := "config.toml"
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.CatalogProvider
	if config.Plex.URL != "" && config.Plex.Token != "" {
		catalog = services.NewPlexService(config.Plex.URL, config.Plex.Token, config.Plex.MusicLibrary, http.DefaultClient)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalog,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "meloday",
		Usage:    "Curate daypart playlists from your music library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
