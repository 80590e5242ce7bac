package main

import (
	"context"
	"errors"
	"os"

	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	var spotifyService *services.SpotifyService
	if svc, err := services.NewSpotifyService(config.Credentials.Spotify); err == nil {
		spotifyService = svc
	} else {
		logger.Warn("spotify client not configured", "error", err)
	}

	var shazamService *services.ShazamService
	if svc, err := services.NewShazamService(config.Credentials.Shazam); err == nil {
		shazamService = svc
	} else {
		logger.Warn("shazam client not configured", "error", err)
	}

	geminiService := services.NewGeminiService(config.Credentials.Gemini, logger)

	enabled := []string{geminiService.Name()}
	if spotifyService != nil {
		enabled = append(enabled, spotifyService.Name())
	}
	if shazamService != nil {
		enabled = append(enabled, shazamService.Name())
	}
	logger.Debug("services configured", "services", enabled)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Shazam:  shazamService,
		Gemini:  geminiService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "stashd",
		Usage:    "Identify songs from short videos & stash them to Spotify",
		Version:  "1.1.0",
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
