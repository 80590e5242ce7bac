// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the HTTP recognition service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the song recognition HTTP service",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host interface to bind",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
		},
		Action: r.Serve,
	}
}

// recognizeCommand identifies a song from a video URL
func recognizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recognize",
		Aliases: []string{"rec"},
		Usage:   "Identify the song in a reel, short, or video link",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for markdown export",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.RecognizeURL,
	}
}

// saveCommand stores a recognized track in the user's library
func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a track to your Spotify library or a playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Spotify user bearer token",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "track",
				Usage:    "Spotify track ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Target playlist ID, \"1\" for liked songs, or \"smart_sort\"",
				Value: "1",
			},
		},
		Action: r.SaveTrack,
	}
}

// vibeCommand summarizes a song list into a one-line mood
func vibeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "vibe",
		Usage:     "Describe the mood of a list of \"Song - Artist\" entries",
		ArgsUsage: "[song - artist]...",
		Action:    r.Vibe,
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive terminal UI for song recognition",
		Action: r.TUI,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create a config file from the bundled template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigShow,
			},
		},
	}
}
