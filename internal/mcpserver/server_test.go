package mcpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumbkit/thumbkit"
)

type fakeRunner struct {
	mu     sync.Mutex
	params []thumbkit.Params
	err    error
	closed int
}

func (r *fakeRunner) Run(_ context.Context, params thumbkit.Params) (*thumbkit.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, params)
	if r.err != nil {
		return nil, r.err
	}
	refs := append([]string{}, params.ReferenceImagePaths...)
	return &thumbkit.Output{
		Descriptor: thumbkit.OutputDescriptor{
			FilePath:            "/out/thumbkit-20250102-150405-000001.png",
			Bytes:               4,
			Model:               string(params.Model),
			AspectRatio:         string(params.AspectRatio),
			BaseImagePath:       params.BaseImagePath,
			ReferenceImagePaths: refs,
		},
		Data:     []byte("\x89PNG"),
		MIMEType: "image/png",
	}, nil
}

func (r *fakeRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

type fixture struct {
	server  *Server
	runner  *fakeRunner
	key     string
	keyErr  error
	builds  int
	lastDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{runner: &fakeRunner{}, key: "test-key"}
	f.server = New(Config{
		Version:   "test",
		OutputDir: filepath.Join(t.TempDir(), "thumbs"),
		Model:     thumbkit.ModelPro,
		Size:      thumbkit.ImageSize2K,
		APIKey: func() (string, error) {
			return f.key, f.keyErr
		},
		NewRunner: func(_ context.Context, apiKey string, storage thumbkit.Storage) (Runner, error) {
			f.builds++
			f.lastDir = storage.(*thumbkit.DirStorage).Dir()
			return f.runner, nil
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(func() { f.server.Close() })
	return f
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("result has no text content")
	return ""
}

func TestGenerateImage(t *testing.T) {
	f := newFixture(t)

	res, _, err := f.server.generateImage(context.Background(), nil, GenerateImageInput{
		Prompt:              "A red fox",
		ReferenceImagePaths: []string{"/a.png", "/b.jpg"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	require.Len(t, res.Content, 2)
	img, ok := res.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("\x89PNG"), img.Data)
	assert.Equal(t, "Saved to /out/thumbkit-20250102-150405-000001.png", textOf(t, res))

	desc, ok := res.StructuredContent.(thumbkit.OutputDescriptor)
	require.True(t, ok)
	assert.Equal(t, []string{"/a.png", "/b.jpg"}, desc.ReferenceImagePaths)

	require.Len(t, f.runner.params, 1)
	p := f.runner.params[0]
	assert.Equal(t, thumbkit.AspectRatio16x9, p.AspectRatio)
	assert.Equal(t, thumbkit.ModelPro, p.Model)
	assert.Equal(t, thumbkit.ImageSize2K, p.Size)
	assert.Empty(t, p.BaseImagePath)
	assert.Equal(t, "reference_image_paths[1]", p.ReferenceLabel(1))
}

func TestEditImage(t *testing.T) {
	f := newFixture(t)

	res, _, err := f.server.editImage(context.Background(), nil, EditImageInput{
		Prompt:        "Brighter",
		BaseImagePath: "/base.png",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	require.Len(t, f.runner.params, 1)
	assert.Equal(t, "/base.png", f.runner.params[0].BaseImagePath)
	assert.Equal(t, "base_image_path", f.runner.params[0].BaseLabel)
	assert.Equal(t, thumbkit.ModeEdit, f.runner.params[0].Mode())
}

func TestEditImage_MissingBase(t *testing.T) {
	f := newFixture(t)

	res, _, err := f.server.editImage(context.Background(), nil, EditImageInput{Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "base_image_path is required")
	assert.Empty(t, f.runner.params)
}

func TestMissingCredentials(t *testing.T) {
	f := newFixture(t)
	f.key, f.keyErr = "", thumbkit.ErrMissingCredentials

	res, _, err := f.server.generateImage(context.Background(), nil, GenerateImageInput{Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "ERROR: missing API credentials")
	assert.Contains(t, textOf(t, res), "GEMINI_API_KEY")
	assert.Zero(t, f.builds)

	// The key can appear later without restarting the server.
	f.key, f.keyErr = "late-key", nil
	res, _, err = f.server.generateImage(context.Background(), nil, GenerateImageInput{Prompt: "x"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestPipelineFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.err = &thumbkit.NoImageError{Model: "m", FinishReason: "SAFETY"}

	res, _, err := f.server.generateImage(context.Background(), nil, GenerateImageInput{Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "finish reason: SAFETY")
	assert.Contains(t, textOf(t, res), "POSSIBLE CAUSES")
	assert.Nil(t, res.StructuredContent)
}

func TestRunnerReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 3 {
		_, _, err := f.server.generateImage(ctx, nil, GenerateImageInput{Prompt: "x"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.builds)
	assert.True(t, filepath.IsAbs(f.lastDir))

	f.key = "rotated"
	_, _, err := f.server.generateImage(ctx, nil, GenerateImageInput{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.builds)
	assert.Equal(t, 1, f.runner.closed)

	require.NoError(t, f.server.Close())
	assert.Equal(t, 2, f.runner.closed)
}

func TestFactoryError(t *testing.T) {
	f := newFixture(t)
	f.server.cfg.NewRunner = func(context.Context, string, thumbkit.Storage) (Runner, error) {
		return nil, errors.New("client setup failed")
	}

	res, _, err := f.server.generateImage(context.Background(), nil, GenerateImageInput{Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "client setup failed")
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestTransport_ListTools(t *testing.T) {
	f := newFixture(t)
	cs := connect(t, f.server)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.InputSchema)
	}
	assert.ElementsMatch(t, []string{"generate_image", "edit_image"}, names)
}

func TestTransport_CallTool(t *testing.T) {
	f := newFixture(t)
	cs := connect(t, f.server)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name: "edit_image",
		Arguments: map[string]any{
			"prompt":                "Add a glow",
			"base_image_path":       "/base.png",
			"reference_image_paths": []string{"/ref.webp"},
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	require.Len(t, res.Content, 2)
	img, ok := res.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, []byte("\x89PNG"), img.Data)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok, "structured content %T", res.StructuredContent)
	assert.Equal(t, "/out/thumbkit-20250102-150405-000001.png", structured["file_path"])
	assert.Equal(t, "/base.png", structured["base_image_path"])
	assert.Equal(t, []any{"/ref.webp"}, structured["reference_image_paths"])

	f.key, f.keyErr = "", thumbkit.ErrMissingCredentials
	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "generate_image",
		Arguments: map[string]any{"prompt": "x"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
