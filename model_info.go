package thumbkit

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	RequestsPerMinute int // 0 = unlimited
}

// ModelInfo contains the metadata the pipeline needs about a model.
type ModelInfo struct {
	// Name is the public alias (e.g. "pro")
	Name Model

	// APIModelName is the upstream name (e.g. "gemini-3-pro-image-preview")
	APIModelName string

	Description string

	// SupportedSizes is empty for models without output size control.
	SupportedSizes []ImageSize

	RateLimits RateLimits
}

// SupportsSize reports whether the model accepts an explicit output size.
func (m ModelInfo) SupportsSize() bool {
	return len(m.SupportedSizes) > 0
}

// AllImageSizes lists every size value accepted on input.
var AllImageSizes = []ImageSize{ImageSize1K, ImageSize2K, ImageSize4K}
