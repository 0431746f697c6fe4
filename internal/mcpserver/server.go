// Package mcpserver exposes the thumbkit pipeline as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thumbkit/thumbkit"
)

// Runner executes one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, params thumbkit.Params) (*thumbkit.Output, error)
	Close() error
}

// RunnerFactory builds a Runner for an API key and an output storage.
type RunnerFactory func(ctx context.Context, apiKey string, storage thumbkit.Storage) (Runner, error)

// Config configures the server.
type Config struct {
	Version string

	// OutputDir is the already resolved output directory.
	OutputDir string

	Model       thumbkit.Model
	Size        thumbkit.ImageSize
	AspectRatio thumbkit.AspectRatio

	// APIKey is consulted on every tool call so a missing key is reported
	// to the agent instead of preventing startup.
	APIKey func() (string, error)

	NewRunner RunnerFactory
	Logger    *slog.Logger
}

// Server is the thumbkit MCP server.
type Server struct {
	cfg    Config
	server *mcp.Server
	logger *slog.Logger

	// Built on first use and reused while the API key is unchanged.
	mu        sync.Mutex
	runner    Runner
	runnerKey string
}

// GenerateImageInput is the argument of generate_image.
type GenerateImageInput struct {
	Prompt              string   `json:"prompt" jsonschema:"Text description of the desired image"`
	ReferenceImagePaths []string `json:"reference_image_paths,omitempty" jsonschema:"Optional image paths used as style or composition references, sent before the prompt. 1 to 3 usually work best. PNG, JPEG or WebP."`
}

// EditImageInput is the argument of edit_image.
type EditImageInput struct {
	Prompt              string   `json:"prompt" jsonschema:"Edit instructions in natural language"`
	BaseImagePath       string   `json:"base_image_path" jsonschema:"Path to the image to edit. The result preserves and transforms this image."`
	ReferenceImagePaths []string `json:"reference_image_paths,omitempty" jsonschema:"Optional extra image paths that steer style, palette, lighting or composition. Order can influence emphasis."`
}

const generateDescription = `Generate a 16:9 thumbnail image from a text prompt using a Gemini image model.

Reference images, when given, are sent before the prompt so the model can use them to guide style, palette, subject emphasis or layout. Use this for guided generation; to modify one specific image use edit_image.

Returns the image, a "Saved to <path>" line and structured metadata (file_path, bytes, model, image_size, aspect_ratio, reference_image_paths).`

const editDescription = `Edit an existing image with a prompt and optional reference images.

The base image is the subject and layout to transform; references only steer style. For generation without a base image prefer generate_image with reference_image_paths.

Returns the image, a "Saved to <path>" line and structured metadata (file_path, bytes, model, image_size, aspect_ratio, base_image_path, reference_image_paths).`

// New creates a server with both tools registered.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = thumbkit.DefaultAspectRatio
	}

	s := &Server{cfg: cfg, logger: logger}
	s.server = mcp.NewServer(&mcp.Implementation{Name: "thumbkit", Version: cfg.Version}, nil)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_image",
		Description: generateDescription,
	}, s.generateImage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "edit_image",
		Description: editDescription,
	}, s.editImage)

	return s
}

// Run serves over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("thumbkit MCP server starting", "version", s.cfg.Version, "output_dir", s.cfg.OutputDir)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) generateImage(ctx context.Context, _ *mcp.CallToolRequest, in GenerateImageInput) (*mcp.CallToolResult, any, error) {
	return s.call(ctx, thumbkit.Params{
		Prompt:              in.Prompt,
		ReferenceImagePaths: in.ReferenceImagePaths,
		ReferenceLabel:      referenceLabel,
	})
}

func (s *Server) editImage(ctx context.Context, _ *mcp.CallToolRequest, in EditImageInput) (*mcp.CallToolResult, any, error) {
	if in.BaseImagePath == "" {
		return errorResult(fmt.Errorf("%w: base_image_path is required", thumbkit.ErrFileNotFound)), nil, nil
	}
	return s.call(ctx, thumbkit.Params{
		Prompt:              in.Prompt,
		BaseImagePath:       in.BaseImagePath,
		ReferenceImagePaths: in.ReferenceImagePaths,
		BaseLabel:           "base_image_path",
		ReferenceLabel:      referenceLabel,
	})
}

// call runs the pipeline and converts the outcome into a tool result.
// Pipeline failures become isError results carrying the remediation text.
func (s *Server) call(ctx context.Context, params thumbkit.Params) (*mcp.CallToolResult, any, error) {
	out, err := s.run(ctx, params)
	if err != nil {
		s.logger.Error("tool call failed",
			"mode", string(params.Mode()),
			"error", err.Error(),
		)
		return errorResult(err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: out.Data, MIMEType: out.MIMEType},
			&mcp.TextContent{Text: "Saved to " + out.Descriptor.FilePath},
		},
		StructuredContent: out.Descriptor,
	}, nil, nil
}

func (s *Server) run(ctx context.Context, params thumbkit.Params) (*thumbkit.Output, error) {
	runner, err := s.acquireRunner(ctx)
	if err != nil {
		return nil, err
	}

	params.Model = s.cfg.Model
	params.Size = s.cfg.Size
	params.AspectRatio = s.cfg.AspectRatio
	return runner.Run(ctx, params)
}

func (s *Server) acquireRunner(ctx context.Context) (Runner, error) {
	if s.cfg.APIKey == nil {
		return nil, thumbkit.ErrMissingCredentials
	}
	apiKey, err := s.cfg.APIKey()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner != nil && s.runnerKey == apiKey {
		return s.runner, nil
	}

	store, err := thumbkit.NewDirStorage(s.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	runner, err := s.cfg.NewRunner(ctx, apiKey, store)
	if err != nil {
		return nil, err
	}

	s.closeRunnerLocked()
	s.runner, s.runnerKey = runner, apiKey
	return runner, nil
}

// Close releases the cached runner.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeRunnerLocked()
}

func (s *Server) closeRunnerLocked() error {
	if s.runner == nil {
		return nil
	}
	err := s.runner.Close()
	s.runner, s.runnerKey = nil, ""
	if err != nil {
		s.logger.Warn("closing generator", "error", err.Error())
	}
	return err
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: thumbkit.Describe(err)}},
	}
}

func referenceLabel(i int) string {
	return fmt.Sprintf("reference_image_paths[%d]", i)
}
