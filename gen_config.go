package thumbkit

// Model is the public alias of an image model, e.g. "pro".
type Model string

const (
	ModelPro   Model = "pro"   // Gemini 3 Pro Image
	ModelFlash Model = "flash" // Gemini 2.5 Flash Image

	ModelDefault Model = ModelPro
)

// ImageSize represents the output resolution for generated images.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"

	DefaultImageSize = ImageSize1K
)

// AspectRatio is a width:height string forwarded to the model unvalidated.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"

	DefaultAspectRatio = AspectRatio16x9
)

// ResponseModalityImage restricts the model to image-only output.
const ResponseModalityImage = "IMAGE"

// Mode distinguishes a fresh generation from an edit of a base image.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)

// FilenamePrefix is the prefix of output files written in this mode.
func (m Mode) FilenamePrefix() string {
	if m == ModeEdit {
		return "thumbkit-edit"
	}
	return "thumbkit"
}

// RequestConfig is the generation configuration sent alongside the parts.
type RequestConfig struct {
	// Model is the upstream API model name. Empty means the provider default.
	Model string

	AspectRatio AspectRatio

	// ImageSize is left empty for models without size control.
	ImageSize ImageSize

	// ResponseModality is always ResponseModalityImage.
	ResponseModality string

	SafetySettings []SafetySetting
}

func (s ImageSize) String() string {
	return string(s)
}

func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model alias.
func (m Model) String() string {
	return string(m)
}
