// Package cli implements the thumbkit command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thumbkit/thumbkit"
	"github.com/thumbkit/thumbkit/internal/config"
)

// Runner executes one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, params thumbkit.Params) (*thumbkit.Output, error)
	Close() error
}

// RunnerFactory builds a Runner for an API key and an output storage.
type RunnerFactory func(ctx context.Context, apiKey string, storage thumbkit.Storage) (Runner, error)

// App carries the dependencies of the command tree.
type App struct {
	Version string

	Stdout io.Writer
	Stderr io.Writer

	Settings *config.Settings
	Defaults *config.Defaults
	Logger   *slog.Logger

	NewRunner RunnerFactory
}

const usageHint = `HINT: repeat --ref once per reference image, for example
  thumbkit generate --prompt "..." --ref /abs/one.png --ref /abs/two.jpg
Quote prompts that contain spaces, and prefer absolute image paths.
Run 'thumbkit <command> --help' for the full flag list.`

// runFailure marks an error raised while running the pipeline, as opposed to
// a usage error raised while parsing arguments.
type runFailure struct {
	err error
}

func (f *runFailure) Error() string { return f.err.Error() }
func (f *runFailure) Unwrap() error { return f.err }

// NewRootCommand builds the thumbkit command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "thumbkit",
		Short: "Generate and edit YouTube thumbnails with Gemini image models",
		Long: `thumbkit sends a prompt, optional reference images and an optional base image
to a Gemini image model and saves the result as a timestamped PNG.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	root.SetVersionTemplate("thumbkit {{.Version}}\n")

	root.AddCommand(
		newGenerateCommand(app),
		newEditCommand(app),
		newDocsCommand(app),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var failure *runFailure
	if errors.As(err, &failure) {
		fmt.Fprintln(app.Stderr, thumbkit.Describe(failure.err))
	} else {
		fmt.Fprintf(app.Stderr, "ERROR: %v\n\n%s\n", err, usageHint)
	}
	return 1
}

func (a *App) isTerminal() bool {
	f, ok := a.Stderr.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
