package thumbkit

import (
	"log/slog"
	"time"

	"github.com/thumbkit/thumbkit/ratelimiter"
)

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a structured logger for the pipeline.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStorage sets where generated images are written.
func WithStorage(storage Storage) PipelineOption {
	return func(p *Pipeline) {
		p.storage = storage
	}
}

// WithDefaultModel sets the model used when Params.Model is empty.
func WithDefaultModel(model Model) PipelineOption {
	return func(p *Pipeline) {
		p.defaultModel = model
	}
}

// WithRateLimiter overrides the limiter for one model. A nil limiter disables
// rate limiting for it.
func WithRateLimiter(model Model, limiter ratelimiter.Limiter) PipelineOption {
	return func(p *Pipeline) {
		p.limiters.Set(string(model), limiter)
	}
}

// WithSafetySettings replaces the safety settings sent with every request.
func WithSafetySettings(settings []SafetySetting) PipelineOption {
	return func(p *Pipeline) {
		p.safetySettings = settings
	}
}

// WithTokenEstimator sets the estimator behind the estimated_input_tokens
// log attribute. A nil estimator is ignored.
func WithTokenEstimator(estimator TokenEstimator) PipelineOption {
	return func(p *Pipeline) {
		if estimator != nil {
			p.tokenEstimator = estimator
		}
	}
}

// WithClock sets the time source used for output file names.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a Pipeline that sends requests to gen and registers
// every model it reports, with a request limiter from the model's limits.
//
// Example:
//
//	gen, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	store, err := thumbkit.NewDirStorage("youtube/thumbnails")
//	if err != nil {
//	    return err
//	}
//	p := thumbkit.NewPipeline(gen, thumbkit.WithStorage(store))
//	out, err := p.Run(ctx, thumbkit.Params{Prompt: "Retro synthwave title card"})
func NewPipeline(gen ImageGenerator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		generator:      gen,
		logger:         slog.Default(),
		models:         make(map[Model]ModelInfo),
		limiters:       ratelimiter.NewRegistry(),
		safetySettings: PermissiveSafetySettings(),
		tokenEstimator: NewSimpleTokenEstimator(),
		now:            time.Now,
	}

	for i, info := range gen.Models() {
		if i == 0 {
			p.defaultModel = info.Name
		}
		p.registerModel(info)
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}
