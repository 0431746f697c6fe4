package gemini

import "github.com/thumbkit/thumbkit"

// ProInfo is the model info for Gemini 3 Pro Image, the default model.
var ProInfo = thumbkit.ModelInfo{
	Name:         thumbkit.ModelPro,
	APIModelName: APIModelPro,
	Description:  "Gemini 3 Pro Image: highest quality, legible text, 1K/2K/4K output",

	SupportedSizes: []thumbkit.ImageSize{
		thumbkit.ImageSize1K,
		thumbkit.ImageSize2K,
		thumbkit.ImageSize4K,
	},

	RateLimits: thumbkit.RateLimits{
		RequestsPerMinute: 360,
	},
}

// FlashInfo is the model info for Gemini 2.5 Flash Image.
var FlashInfo = thumbkit.ModelInfo{
	Name:         thumbkit.ModelFlash,
	APIModelName: APIModelFlash,
	Description:  "Gemini 2.5 Flash Image: faster and cheaper, fixed ~1024px output",

	// Flash Image has no output size control
	SupportedSizes: nil,

	RateLimits: thumbkit.RateLimits{
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
	},
}
