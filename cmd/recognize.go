package main

import (
	"context"
	"fmt"

	"github.com/antigravlabs/stashd/internal/formatter"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/antigravlabs/stashd/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RecognizeURL runs the recognition pipeline for a single URL and writes the
// result in the requested format.
func (r *Runner) RecognizeURL(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: a video URL is required", shared.ErrMissingArgument)
	}
	if r.engine == nil {
		return fmt.Errorf("%w: spotify and shazam credentials are required", shared.ErrServiceUnavailable)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	drained := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
		close(drained)
	}()

	result, err := r.engine.Recognize(ctx, url, progress)
	close(progress)
	<-drained
	if err != nil {
		return err
	}

	switch cmd.String("format") {
	case "json":
		return r.writeJSON(result, cmd.Bool("pretty"))
	case "markdown", "md":
		export, err := formatter.WriteMarkdownExport(result, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("Wrote %s\n", export.Directory)
	case "text", "":
		return r.writePlain("%s", formatter.ToText(result))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}
}
