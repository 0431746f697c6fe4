package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thumbkit/thumbkit"
	"github.com/thumbkit/thumbkit/internal/config"
	"github.com/thumbkit/thumbkit/internal/logging"
	"github.com/thumbkit/thumbkit/internal/mcpserver"
	"github.com/thumbkit/thumbkit/provider/gemini"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, thumbkit.Describe(err))
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "thumbkit-mcp",
		Short: "MCP server exposing generate_image and edit_image over stdio",
		Long: `thumbkit-mcp speaks the Model Context Protocol on stdin/stdout.
Configure it in your MCP client; logs go to stderr.

Environment variables:
  GEMINI_API_KEY / GOOGLE_API_KEY   API key (checked on every tool call)
  THUMBKIT_OUTPUT_DIR               output directory when --out-dir is not set
  THUMBKIT_MODEL                    pro (default) or flash
  THUMBKIT_LOG_LEVEL                debug, info, warn (default) or error`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default $"+thumbkit.EnvOutputDir+" or ./"+thumbkit.DefaultOutputDir+")")
	return cmd
}

func serve(ctx context.Context, outDir string) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "WARNING:", err)
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries the protocol
	logger := logging.New(settings.LogLevel, os.Stderr)

	defaults, err := config.LoadDefaults(settings.DefaultsPath())
	if err != nil {
		logger.Warn("ignoring defaults file", "error", err.Error())
		defaults = &config.Defaults{}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(mcpserver.Config{
		Version:   Version,
		OutputDir: thumbkit.ResolveOutputDir(outDir, settings.OutputDir, thumbkit.DefaultOutputDir),
		Model:     thumbkit.Model(config.FirstNonEmpty(settings.Model, defaults.Model)),
		Size:      thumbkit.ImageSize(defaults.Size),
		APIKey:    settings.APIKey,
		NewRunner: newRunner(logger),
		Logger:    logger,
	})
	defer srv.Close()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRunner(logger *slog.Logger) mcpserver.RunnerFactory {
	return func(ctx context.Context, apiKey string, storage thumbkit.Storage) (mcpserver.Runner, error) {
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
