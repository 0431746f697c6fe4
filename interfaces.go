package thumbkit

import "context"

// ImageGenerator is the seam between the pipeline and a remote model.
//
// The first model returned by Models() is considered the default model.
type ImageGenerator interface {
	// Generate sends req exactly once and returns the first image in the
	// response. A response without image data yields a *NoImageError.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)

	// Models returns the model definitions supported by this provider.
	Models() []ModelInfo

	// Close releases any resources held by the generator.
	Close() error
}
