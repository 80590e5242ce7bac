package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antigravlabs/stashd/internal/shared"
	tu "github.com/antigravlabs/stashd/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.pool == nil {
				t.Error("expected credential pool to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout output by default")
			}
		})

		t.Run("engine requires spotify and shazam", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.engine != nil {
				t.Error("engine should not be assembled without clients")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := map[string]bool{
			"serve": false, "recognize": false, "save": false,
			"vibe": false, "tui": false, "config": false,
		}
		for _, cmd := range commands {
			if _, ok := want[cmd.Name]; ok {
				want[cmd.Name] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("command %q not registered", name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatal(err)
		}
		if got := output.String(); got != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatal(err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("write errors surface", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writePlain("hello\n"); err == nil {
			t.Error("expected write error")
		}
		if err := runner.writeJSON(map[string]string{}, false); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("newLibrarian rejects empty token", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if _, err := runner.newLibrarian(""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestCommandsWithoutServices(t *testing.T) {
	run := func(t *testing.T, runner *Runner, args ...string) error {
		t.Helper()
		app := &cli.Command{Name: "stashd", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"stashd"}, args...))
	}

	t.Run("recognize without engine", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		err := run(t, runner, "recognize", "https://example.com/reel")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("recognize without url", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		err := run(t, runner, "recognize")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("serve without engine", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		err := run(t, runner, "serve")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestConfigCommands(t *testing.T) {
	run := func(t *testing.T, runner *Runner, args ...string) error {
		t.Helper()
		app := &cli.Command{Name: "stashd", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"stashd"}, args...))
	}

	t.Run("init creates file", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := run(t, runner, "config", "init", "--config", path); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected config file: %v", err)
		}
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		path := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(path, []byte("# existing"), 0644)

		err := run(t, runner, "config", "init", "--config", path)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("show redacts secrets", func(t *testing.T) {
		output := &bytes.Buffer{}
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientSecret = "super-secret"
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := run(t, runner, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.toml")); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(output.String(), "super-secret") {
			t.Error("secret must be redacted")
		}
		if !strings.Contains(output.String(), "[redacted]") {
			t.Error("expected redaction marker")
		}
	})
}
