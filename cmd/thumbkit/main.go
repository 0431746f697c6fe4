package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thumbkit/thumbkit"
	"github.com/thumbkit/thumbkit/internal/cli"
	"github.com/thumbkit/thumbkit/internal/config"
	"github.com/thumbkit/thumbkit/internal/logging"
	"github.com/thumbkit/thumbkit/provider/gemini"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "WARNING:", err)
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, thumbkit.Describe(err))
		return 1
	}
	logger := logging.New(settings.LogLevel, os.Stderr)

	defaults, err := config.LoadDefaults(settings.DefaultsPath())
	if err != nil {
		logger.Warn("ignoring defaults file", "error", err.Error())
		defaults = &config.Defaults{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Version:   Version,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Settings:  settings,
		Defaults:  defaults,
		Logger:    logger,
		NewRunner: newRunner(logger),
	}
	return cli.Execute(ctx, app, os.Args[1:])
}

func newRunner(logger *slog.Logger) cli.RunnerFactory {
	return func(ctx context.Context, apiKey string, storage thumbkit.Storage) (cli.Runner, error) {
		gen, err := gemini.NewWithAPIKey(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return thumbkit.NewPipeline(gen,
			thumbkit.WithLogger(logger),
			thumbkit.WithStorage(storage),
		), nil
	}
}
