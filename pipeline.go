package thumbkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thumbkit/thumbkit/ratelimiter"
)

// ErrModelNotRegistered is returned when the generator reports no models.
var ErrModelNotRegistered = errors.New("model not registered")

// Params describes one generate or edit invocation. Setting BaseImagePath
// selects edit mode; everything else is shared between the two modes.
type Params struct {
	Prompt string

	// BaseImagePath is the image to edit. Empty means generate.
	BaseImagePath string

	ReferenceImagePaths []string

	// AspectRatio defaults to 16:9.
	AspectRatio AspectRatio

	// SystemPromptPath overrides the built-in guidelines when set.
	SystemPromptPath string

	// Model defaults to the pipeline's default model.
	Model Model

	// Size defaults to 1K and is ignored by models without size control.
	Size ImageSize

	// BaseLabel and ReferenceLabel name the input arguments in errors.
	BaseLabel      string
	ReferenceLabel func(i int) string
}

// Mode returns ModeEdit when a base image is set.
func (p Params) Mode() Mode {
	if p.BaseImagePath != "" {
		return ModeEdit
	}
	return ModeGenerate
}

// Pipeline runs the load, compose, build, generate and write steps shared by
// every surface. A Pipeline holds no per-invocation state.
type Pipeline struct {
	generator ImageGenerator

	// Registered models in generator order, keyed by alias
	models     map[Model]ModelInfo
	modelOrder []Model

	defaultModel Model

	// Per-model request limiters
	limiters *ratelimiter.Registry

	safetySettings []SafetySetting

	logger *slog.Logger

	storage Storage

	tokenEstimator TokenEstimator

	now func() time.Time
}

func (p *Pipeline) registerModel(info ModelInfo) {
	if _, exists := p.models[info.Name]; !exists {
		p.modelOrder = append(p.modelOrder, info.Name)
	}
	p.models[info.Name] = info
	if info.RateLimits.RequestsPerMinute > 0 {
		p.limiters.Set(string(info.Name), ratelimiter.New(info.RateLimits.RequestsPerMinute))
	}
}

// Models returns the registered models, default first.
func (p *Pipeline) Models() []ModelInfo {
	infos := make([]ModelInfo, 0, len(p.modelOrder))
	for _, name := range p.modelOrder {
		infos = append(infos, p.models[name])
	}
	return infos
}

// Run executes one invocation. The image is written only after the model
// returns image data, so a failed run leaves no file behind.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Output, error) {
	mode := params.Mode()

	if err := ValidatePrompt(params.Prompt); err != nil {
		return nil, err
	}
	if p.storage == nil {
		return nil, ErrStorageNotConfigured
	}

	info, err := p.lookupModel(params.Model)
	if err != nil {
		return nil, err
	}
	size, err := p.resolveSize(info, params.Size)
	if err != nil {
		return nil, err
	}

	var base *ImagePart
	if mode == ModeEdit {
		label := params.BaseLabel
		if label == "" {
			label = "base image"
		}
		img, err := LoadImage(params.BaseImagePath, label)
		if err != nil {
			return nil, err
		}
		base = &img
		p.logImage(img)
	}

	refs, err := LoadImages(params.ReferenceImagePaths, params.ReferenceLabel)
	if err != nil {
		return nil, err
	}
	for _, img := range refs {
		p.logImage(img)
	}

	total := len(refs)
	if base != nil {
		total++
	}
	if err := ValidateImageCount(total); err != nil {
		return nil, err
	}

	systemText, err := ResolveSystemText(params.SystemPromptPath)
	if err != nil {
		return nil, err
	}

	aspect := params.AspectRatio
	if aspect == "" {
		aspect = DefaultAspectRatio
	}

	req, err := BuildRequest(BuildInput{
		Prompt:      params.Prompt,
		Base:        base,
		References:  refs,
		AspectRatio: aspect,
		SystemText:  systemText,
	})
	if err != nil {
		return nil, err
	}
	req.Config.Model = info.APIModelName
	req.Config.ImageSize = size
	req.Config.SafetySettings = p.safetySettings

	if err := p.checkRateLimit(info.Name); err != nil {
		p.logger.Warn("rate limit hit",
			"model", string(info.Name),
			"error", err.Error(),
		)
		return nil, err
	}

	start := time.Now()

	p.logger.Debug("starting image generation",
		"mode", string(mode),
		"model", string(info.Name),
		"prompt_length", len(params.Prompt),
		"reference_count", len(refs),
		"estimated_input_tokens", p.tokenEstimator.EstimateTokens(req),
	)

	result, err := p.generator.Generate(ctx, req)
	duration := time.Since(start)

	if err == nil && (result == nil || len(result.Data) == 0) {
		err = &NoImageError{Model: info.APIModelName}
	}
	if err != nil {
		p.logger.Error("generation failed",
			"mode", string(mode),
			"model", string(info.Name),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	name := OutputFilename(mode, p.now())
	path, err := p.storage.SaveFile(ctx, result.Data, name, result.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("saving generated image: %w", err)
	}

	refPaths := make([]string, len(params.ReferenceImagePaths))
	copy(refPaths, params.ReferenceImagePaths)

	descriptor := OutputDescriptor{
		FilePath:            path,
		Bytes:               len(result.Data),
		Model:               string(info.Name),
		ImageSize:           string(size),
		AspectRatio:         string(aspect),
		BaseImagePath:       params.BaseImagePath,
		ReferenceImagePaths: refPaths,
	}

	logAttrs := []any{
		"mode", string(mode),
		"model", string(info.Name),
		"duration_ms", duration.Milliseconds(),
		"bytes", descriptor.Bytes,
		"file_path", path,
	}
	if result.UsageMetadata != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", result.UsageMetadata.PromptTokens,
			"response_tokens", result.UsageMetadata.CandidatesTokens,
			"total_tokens", result.UsageMetadata.TotalTokens,
		)
	}
	p.logger.Info("generation completed", logAttrs...)

	mimeType := result.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &Output{Descriptor: descriptor, Data: result.Data, MIMEType: mimeType}, nil
}

// Close releases the generator.
func (p *Pipeline) Close() error {
	return p.generator.Close()
}

func (p *Pipeline) logImage(img ImagePart) {
	p.logger.Debug("loaded input image",
		"path", img.Path,
		"mime_type", img.MIMEType,
		"bytes", len(img.Data),
		"width", img.Width,
		"height", img.Height,
	)
}

// lookupModel accepts an alias or an upstream model name.
func (p *Pipeline) lookupModel(model Model) (ModelInfo, error) {
	if len(p.modelOrder) == 0 {
		return ModelInfo{}, ErrModelNotRegistered
	}
	if model == "" {
		model = p.defaultModel
	}
	if info, ok := p.models[Model(strings.ToLower(string(model)))]; ok {
		return info, nil
	}
	for _, info := range p.models {
		if info.APIModelName == string(model) {
			return info, nil
		}
	}

	allowed := make([]string, 0, len(p.modelOrder))
	for _, name := range p.modelOrder {
		allowed = append(allowed, string(name))
	}
	return ModelInfo{}, &OptionError{Option: "model", Value: string(model), Allowed: allowed}
}

// resolveSize validates size for the model. Models without size control get
// an empty size so nothing is sent upstream.
func (p *Pipeline) resolveSize(info ModelInfo, size ImageSize) (ImageSize, error) {
	if size == "" {
		size = DefaultImageSize
	}
	size = ImageSize(strings.ToUpper(string(size)))

	allowed := AllImageSizes
	if info.SupportsSize() {
		allowed = info.SupportedSizes
	}
	for _, s := range allowed {
		if s == size {
			if !info.SupportsSize() {
				p.logger.Debug("model ignores image size", "model", string(info.Name), "size", string(size))
				return "", nil
			}
			return size, nil
		}
	}

	values := make([]string, 0, len(allowed))
	for _, s := range allowed {
		values = append(values, string(s))
	}
	return "", &OptionError{Option: "size", Value: string(size), Allowed: values}
}

func (p *Pipeline) checkRateLimit(model Model) error {
	limiter, ok := p.limiters.Get(string(model))
	if !ok {
		return nil
	}
	if !limiter.Allow() {
		return &RateLimitError{
			RetryAfter: limiter.RetryAfter(),
			LimitType:  "requests",
			Model:      string(model),
		}
	}
	return nil
}
