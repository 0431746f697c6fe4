package thumbkit

import (
	"context"
)

// MockImageGenerator is a mock implementation of ImageGenerator.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
	ModelsFunc   func() []ModelInfo
	CloseFunc    func() error

	// Calls counts Generate invocations.
	Calls int
}

func (m *MockImageGenerator) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &GenerationResult{Data: []byte("fake-png"), MIMEType: "image/png"}, nil
}

func (m *MockImageGenerator) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return testModels()
}

func (m *MockImageGenerator) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func testModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:           ModelPro,
			APIModelName:   "test-pro-api",
			SupportedSizes: []ImageSize{ImageSize1K, ImageSize2K, ImageSize4K},
		},
		{
			Name:         ModelFlash,
			APIModelName: "test-flash-api",
		},
	}
}
