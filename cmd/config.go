package main

import (
	"context"
	"fmt"
	"os"

	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the bundled config template to the given path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", shared.ErrInvalidInput, path)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("Created %s. Fill in your Spotify, Shazam, and Gemini credentials.\n", path)
}

// ConfigShow prints the effective configuration with secrets redacted.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	config := r.config
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		config = loaded
	}

	redacted := *config
	if redacted.Credentials.Spotify.ClientSecret != "" {
		redacted.Credentials.Spotify.ClientSecret = "[redacted]"
	}
	if redacted.Credentials.Shazam.APIKey != "" {
		redacted.Credentials.Shazam.APIKey = "[redacted]"
	}
	if redacted.Credentials.Gemini.APIKey != "" {
		redacted.Credentials.Gemini.APIKey = "[redacted]"
	}

	return r.writeJSON(redacted, true)
}
