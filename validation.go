package thumbkit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validation errors
var (
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrImageTooLarge = errors.New("image data exceeds maximum size")
	ErrTooManyImages = errors.New("too many input images")
)

// Image size limits
const (
	// MaxImageSize is the maximum allowed image size in bytes (20MB)
	MaxImageSize = 20 * 1024 * 1024

	// MaxInputImages is the maximum number of input images per request
	MaxInputImages = 14
)

// AllowedExtensions lists the accepted input image extensions in display order.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

var extensionMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ValidatePrompt rejects prompts that are empty or whitespace-only.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// MIMETypeForPath returns the MIME type for an accepted image path along with
// its lowercased extension. ok is false for any other extension.
func MIMETypeForPath(path string) (mimeType, ext string, ok bool) {
	ext = strings.ToLower(filepath.Ext(path))
	mimeType, ok = extensionMIMETypes[ext]
	return mimeType, ext, ok
}

// ValidateImageCount checks the total number of images sent in one request.
func ValidateImageCount(n int) error {
	if n > MaxInputImages {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyImages, n, MaxInputImages)
	}
	return nil
}
