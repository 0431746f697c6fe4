// Package gemini provides an ImageGenerator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thumbkit/thumbkit"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelPro is the actual API name for Gemini 3 Pro Image
	APIModelPro = "gemini-3-pro-image-preview"

	// APIModelFlash is the actual API name for Gemini 2.5 Flash Image
	APIModelFlash = "gemini-2.5-flash-image"
)

// Generator implements thumbkit.ImageGenerator using Google's Gemini API.
type Generator struct {
	client *genai.Client
}

// Ensure Generator implements the interface.
var _ thumbkit.ImageGenerator = (*Generator)(nil)

// Config configures the Gemini client.
type Config struct {
	// APIKey for authentication. Required.
	APIKey string

	// BaseURL overrides the API endpoint (optional)
	BaseURL string

	// HTTPClient overrides the transport (optional)
	HTTPClient *http.Client
}

// New creates a Generator from cfg.
func New(ctx context.Context, cfg *Config) (*Generator, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, thumbkit.ErrMissingCredentials
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{client: client}, nil
}

// NewWithAPIKey creates a generator with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*Generator, error) {
	return New(ctx, &Config{APIKey: apiKey})
}

// Generate sends req in a single GenerateContent call and returns the first
// image in the response.
func (g *Generator) Generate(ctx context.Context, req *thumbkit.GenerationRequest) (*thumbkit.GenerationResult, error) {
	if req == nil || len(req.Parts) == 0 {
		return nil, thumbkit.ErrEmptyPrompt
	}

	modelName := req.Config.Model
	if modelName == "" {
		modelName = APIModelPro
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: buildParts(req.Parts),
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelName, contents, buildGenerateContentConfig(req.Config))
	if err != nil {
		return nil, wrapError(err, modelName)
	}

	return parseResponse(resp, modelName)
}

// Models returns the model definitions supported by this provider.
// The first model (Pro) is the default.
func (g *Generator) Models() []thumbkit.ModelInfo {
	return []thumbkit.ModelInfo{
		ProInfo,
		FlashInfo,
	}
}

// Close releases any resources held by the generator.
func (g *Generator) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// buildParts converts request parts in order.
func buildParts(parts []thumbkit.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Image != nil {
			out = append(out, &genai.Part{
				InlineData: &genai.Blob{
					Data:     p.Image.Data,
					MIMEType: p.Image.MIMEType,
				},
			})
			continue
		}
		out = append(out, &genai.Part{Text: p.Text})
	}
	return out
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func buildGenerateContentConfig(cfg thumbkit.RequestConfig) *genai.GenerateContentConfig {
	modality := cfg.ResponseModality
	if modality == "" {
		modality = thumbkit.ResponseModalityImage
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{modality},
	}

	imageConfig := &genai.ImageConfig{}
	if cfg.AspectRatio != "" {
		imageConfig.AspectRatio = cfg.AspectRatio.String()
	}
	if cfg.ImageSize != "" {
		imageConfig.ImageSize = cfg.ImageSize.String()
	}
	genConfig.ImageConfig = imageConfig

	if len(cfg.SafetySettings) > 0 {
		genConfig.SafetySettings = convertSafetySettings(cfg.SafetySettings)
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []thumbkit.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseResponse returns the first image-bearing part across all candidates.
func parseResponse(resp *genai.GenerateContentResponse, model string) (*thumbkit.GenerationResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		noImage := &thumbkit.NoImageError{Model: model}
		if resp != nil && resp.PromptFeedback != nil {
			noImage.BlockReason = string(resp.PromptFeedback.BlockReason)
			if msg := resp.PromptFeedback.BlockReasonMessage; msg != "" {
				noImage.Text = msg
			}
		}
		return nil, noImage
	}

	var texts []string
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}

			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result := &thumbkit.GenerationResult{
					Data:         part.InlineData.Data,
					MIMEType:     part.InlineData.MIMEType,
					Text:         strings.Join(texts, "\n"),
					FinishReason: string(candidate.FinishReason),
				}
				if resp.UsageMetadata != nil {
					result.UsageMetadata = &thumbkit.UsageMetadata{
						PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
						CandidatesTokens: int(resp.UsageMetadata.CandidatesTokenCount),
						TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
					}
				}
				return result, nil
			}

			if part.Text != "" && !part.Thought {
				texts = append(texts, part.Text)
			}
		}
	}

	noImage := &thumbkit.NoImageError{
		Model: model,
		Text:  strings.Join(texts, "\n"),
	}
	if first := resp.Candidates[0]; first != nil {
		noImage.FinishReason = string(first.FinishReason)
	}
	return nil, noImage
}

// wrapError keeps the upstream message and classifies rate limit responses.
func wrapError(err error, model string) error {
	upstream := &thumbkit.UpstreamError{Model: model, Err: err}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return upstream
	}

	upstream.StatusCode = apiErr.Code
	upstream.Status = apiErr.Status

	if apiErr.Code != http.StatusTooManyRequests && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return upstream
	}

	return &thumbkit.RateLimitError{
		RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Model:      model,
		Err:        upstream,
	}
}
