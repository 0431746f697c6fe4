package cli

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thumbkit/thumbkit"
	"github.com/thumbkit/thumbkit/internal/config"
)

//go:embed reference.md
var reference string

type imageOptions struct {
	prompt       string
	refs         []string
	base         string
	aspect       string
	model        string
	size         string
	systemPrompt string
	outDir       string
	json         bool
}

func addImageFlags(cmd *cobra.Command, o *imageOptions) {
	f := cmd.Flags()
	f.StringVar(&o.prompt, "prompt", "", "text description of the image (required)")
	f.StringArrayVar(&o.refs, "ref", nil, "reference image path (.png, .jpg, .jpeg, .webp); repeat for each image")
	f.StringVar(&o.aspect, "aspect", string(thumbkit.DefaultAspectRatio), "aspect ratio, e.g. 16:9, 9:16, 1:1")
	f.StringVar(&o.model, "model", string(thumbkit.ModelDefault), "model: pro or flash")
	f.StringVar(&o.size, "size", string(thumbkit.DefaultImageSize), "output size for the pro model: 1K, 2K or 4K")
	f.StringVar(&o.systemPrompt, "system-prompt", "", "path to a custom system prompt file")
	f.StringVar(&o.outDir, "out-dir", "", "output directory (default $"+thumbkit.EnvOutputDir+" or ./"+thumbkit.DefaultOutputDir+")")
	f.BoolVar(&o.json, "json", false, "print the result descriptor as JSON")
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q: pass the prompt with --prompt and each image with its own flag", args[0])
	}
	return nil
}

func newGenerateCommand(app *App) *cobra.Command {
	var o imageOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new image from a prompt and optional reference images",
		Example: `  thumbkit generate --prompt "Surprised developer, bold text 'IT WORKS?!'"
  thumbkit generate --prompt "Same style, new topic" --ref /abs/style.png --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runImage(cmd, &o, thumbkit.ModeGenerate)
		},
	}
	addImageFlags(cmd, &o)
	return cmd
}

func newEditCommand(app *App) *cobra.Command {
	var o imageOptions
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a base image with a prompt and optional reference images",
		Example: `  thumbkit edit --base /abs/thumb.png --prompt "Make the title text yellow"
  thumbkit edit --base /abs/thumb.png --ref /abs/face.jpg --prompt "Swap in this face"`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runImage(cmd, &o, thumbkit.ModeEdit)
		},
	}
	addImageFlags(cmd, &o)
	cmd.Flags().StringVar(&o.base, "base", "", "path of the image to edit (required)")
	return cmd
}

func newDocsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "Print the full command reference",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), reference)
			return err
		},
	}
}

func (a *App) runImage(cmd *cobra.Command, o *imageOptions, mode thumbkit.Mode) error {
	flags := cmd.Flags()
	if !flags.Changed("prompt") {
		return errors.New(`required flag "--prompt" not set`)
	}
	if mode == thumbkit.ModeEdit && o.base == "" {
		return errors.New(`required flag "--base" not set`)
	}

	settings := a.Settings
	if settings == nil {
		settings = &config.Settings{}
	}
	defaults := a.Defaults
	if defaults == nil {
		defaults = &config.Defaults{}
	}

	apiKey, err := settings.APIKey()
	if err != nil {
		return &runFailure{err: err}
	}

	model, size, aspect := o.model, o.size, o.aspect
	if !flags.Changed("model") {
		model = config.FirstNonEmpty(settings.Model, defaults.Model, o.model)
	}
	if !flags.Changed("size") {
		size = config.FirstNonEmpty(defaults.Size, o.size)
	}
	if !flags.Changed("aspect") {
		aspect = config.FirstNonEmpty(defaults.AspectRatio, o.aspect)
	}

	dir := thumbkit.ResolveOutputDir(o.outDir, settings.OutputDir, thumbkit.DefaultOutputDir)
	store, err := thumbkit.NewDirStorage(dir)
	if err != nil {
		return &runFailure{err: err}
	}

	ctx := cmd.Context()
	runner, err := a.NewRunner(ctx, apiKey, store)
	if err != nil {
		return &runFailure{err: err}
	}
	defer func() {
		if err := runner.Close(); err != nil {
			a.logger().Warn("closing generator", "error", err.Error())
		}
	}()

	params := thumbkit.Params{
		Prompt:              o.prompt,
		ReferenceImagePaths: o.refs,
		AspectRatio:         thumbkit.AspectRatio(aspect),
		SystemPromptPath:    o.systemPrompt,
		Model:               thumbkit.Model(model),
		Size:                thumbkit.ImageSize(size),
		BaseLabel:           "--base",
		ReferenceLabel: func(i int) string {
			return fmt.Sprintf("--ref (image #%d)", i+1)
		},
	}
	if mode == thumbkit.ModeEdit {
		params.BaseImagePath = o.base
	}

	if !o.json && a.isTerminal() {
		fmt.Fprintf(a.Stderr, "Generating image with %s...\n", model)
	}

	out, err := runner.Run(ctx, params)
	if err != nil {
		return &runFailure{err: err}
	}

	if o.json {
		enc := json.NewEncoder(a.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Descriptor)
	}
	_, err = fmt.Fprintf(a.Stdout, "Saved to %s\n", out.Descriptor.FilePath)
	return err
}
