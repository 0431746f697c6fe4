package thumbkit

import (
	"math"
	"unicode/utf8"
)

// imageInputTokens is what Gemini bills for an input image of up to 384px
// per side; larger images are tiled and cost a multiple of it.
const imageInputTokens = 258

// TokenEstimator approximates the input tokens of a request for logging.
type TokenEstimator interface {
	EstimateTokens(req *GenerationRequest) int
}

// SimpleTokenEstimator - fast approximation of token usage for logs
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(req *GenerationRequest) int {
	if req == nil {
		return 0
	}

	total := 0
	for _, p := range req.Parts {
		if p.Image != nil {
			total += imageTokens(p.Image.Width, p.Image.Height)
			continue
		}
		total += e.textTokens(p.Text)
	}
	return total
}

func (e *SimpleTokenEstimator) textTokens(text string) int {
	if text == "" {
		return 0
	}

	tokenEstimate := float64(utf8.RuneCountInString(text)) / 4.0
	tokenEstimate *= e.SafetyMargin

	return int(math.Ceil(tokenEstimate)) + 3
}

// imageTokens counts 768px tiles. Unknown dimensions count as one tile.
func imageTokens(width, height int) int {
	if width <= 384 && height <= 384 {
		return imageInputTokens
	}
	tiles := int(math.Ceil(float64(width)/768)) * int(math.Ceil(float64(height)/768))
	return max(tiles, 1) * imageInputTokens
}
