package thumbkit

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	SafetyCategoryCivicIntegrity   SafetyCategory = "HARM_CATEGORY_CIVIC_INTEGRITY"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdOff           SafetyThreshold = "OFF"
	SafetyThresholdBlockNone     SafetyThreshold = "BLOCK_NONE"
	SafetyThresholdBlockMedAndUp SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
)

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory
	Threshold SafetyThreshold
}

// PermissiveSafetySettings turns every configurable filter off.
func PermissiveSafetySettings() []SafetySetting {
	categories := []SafetyCategory{
		SafetyCategoryHarassment,
		SafetyCategoryHateSpeech,
		SafetyCategorySexuallyExplicit,
		SafetyCategoryDangerousContent,
		SafetyCategoryCivicIntegrity,
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, SafetySetting{Category: c, Threshold: SafetyThresholdOff})
	}
	return settings
}

// GenerationResult is the image returned by the remote model.
type GenerationResult struct {
	// Data is never empty on success.
	Data []byte

	MIMEType string

	// Text contains any prose the model returned next to the image
	Text string

	FinishReason string

	UsageMetadata *UsageMetadata
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}

// OutputDescriptor describes one saved image. Input paths are recorded as
// given; FilePath is always absolute.
type OutputDescriptor struct {
	FilePath            string   `json:"file_path"`
	Bytes               int      `json:"bytes"`
	Model               string   `json:"model,omitempty"`
	ImageSize           string   `json:"image_size,omitempty"`
	AspectRatio         string   `json:"aspect_ratio"`
	BaseImagePath       string   `json:"base_image_path,omitempty"`
	ReferenceImagePaths []string `json:"reference_image_paths"`
}

// Output is what a pipeline run hands back to its caller.
type Output struct {
	Descriptor OutputDescriptor

	// Data holds the saved bytes for callers that return the image inline.
	Data     []byte
	MIMEType string
}
