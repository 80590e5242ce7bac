package main

import (
	"fmt"
	"io"
	"os"

	"github.com/antigravlabs/stashd/internal/credentials"
	"github.com/antigravlabs/stashd/internal/media"
	"github.com/antigravlabs/stashd/internal/services"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/antigravlabs/stashd/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify *services.SpotifyService
	shazam  *services.ShazamService
	gemini  *services.GeminiService
	pool    *credentials.Pool
	engine  *tasks.PipelineEngine
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify *services.SpotifyService
	Shazam  *services.ShazamService
	Gemini  *services.GeminiService
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// The pipeline engine is only assembled when both the catalog and recognition
// clients are configured; commands that need it report ErrServiceUnavailable
// otherwise.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	pool := credentials.NewPool(opts.Config.Cookies)

	var engine *tasks.PipelineEngine
	if opts.Spotify != nil && opts.Shazam != nil {
		acquirer := media.NewAcquirer(media.AcquirerOpts{
			Pool:        pool,
			TempDir:     opts.Config.Media.TempDir,
			ClipSeconds: opts.Config.Media.ClipSeconds,
			Logger:      opts.Logger,
		})
		engine = tasks.NewPipelineEngine(acquirer, opts.Shazam, opts.Spotify, opts.Logger)
	}

	return &Runner{
		config:  opts.Config,
		spotify: opts.Spotify,
		shazam:  opts.Shazam,
		gemini:  opts.Gemini,
		pool:    pool,
		engine:  engine,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger swaps the runner's logger and propagates it to nothing else;
// services hold their own loggers from construction time.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, recognizeCommand, saveCommand, vibeCommand, tuiCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// newLibrarian builds a per-request Librarian from a user bearer token.
func (r *Runner) newLibrarian(token string) (*tasks.Librarian, error) {
	client, err := services.NewSpotifyUserService(token)
	if err != nil {
		return nil, err
	}
	return tasks.NewLibrarian(client, r.gemini, r.logger), nil
}
