package main

import (
	"context"
	"fmt"

	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/antigravlabs/stashd/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SaveTrack stores a track in the authenticated user's library.
func (r *Runner) SaveTrack(ctx context.Context, cmd *cli.Command) error {
	librarian, err := r.newLibrarian(cmd.String("token"))
	if err != nil {
		return err
	}

	result, err := librarian.SaveTrack(ctx, cmd.String("track"), cmd.String("playlist"))
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	return r.writePlain("Saved to %s (%s)\n", result.PlaylistName, result.Genre)
}

// Vibe summarizes the given songs into a one-line mood.
func (r *Runner) Vibe(ctx context.Context, cmd *cli.Command) error {
	songs := cmd.Args().Slice()
	if r.gemini == nil {
		return fmt.Errorf("%w: gemini is not configured", shared.ErrServiceUnavailable)
	}

	vibe := tasks.VibeSummary(ctx, r.gemini, songs)
	return r.writePlain("%s\n", vibe.Vibe)
}
