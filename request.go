package thumbkit

// Part is one element of a request: either an image or text, never both.
type Part struct {
	Image *ImagePart
	Text  string
}

// IsText reports whether p carries text rather than an image.
func (p Part) IsText() bool {
	return p.Image == nil
}

// GenerationRequest is the ordered part sequence plus configuration sent to
// the model. The text part is always last; a base image, when present, is
// always first.
type GenerationRequest struct {
	Mode   Mode
	Parts  []Part
	Config RequestConfig
}

// Images returns the image parts in request order.
func (r *GenerationRequest) Images() []ImagePart {
	images := make([]ImagePart, 0, len(r.Parts))
	for _, p := range r.Parts {
		if p.Image != nil {
			images = append(images, *p.Image)
		}
	}
	return images
}

// BuildInput holds everything the request builder needs.
type BuildInput struct {
	Prompt string

	// Base is the image being edited; nil selects generate mode.
	Base *ImagePart

	References  []ImagePart
	AspectRatio AspectRatio
	SystemText  string
}

// BuildRequest assembles the ordered parts: the base image (edit only), the
// references in input order, then a single text part combining the system
// text and the prompt.
func BuildRequest(in BuildInput) (*GenerationRequest, error) {
	if err := ValidatePrompt(in.Prompt); err != nil {
		return nil, err
	}

	mode := ModeGenerate
	parts := make([]Part, 0, len(in.References)+2)
	if in.Base != nil {
		mode = ModeEdit
		base := *in.Base
		parts = append(parts, Part{Image: &base})
	}
	for i := range in.References {
		ref := in.References[i]
		parts = append(parts, Part{Image: &ref})
	}
	parts = append(parts, Part{Text: Compose(in.SystemText, in.Prompt).Text()})

	return &GenerationRequest{
		Mode:  mode,
		Parts: parts,
		Config: RequestConfig{
			AspectRatio:      in.AspectRatio,
			ResponseModality: ResponseModalityImage,
		},
	}, nil
}
