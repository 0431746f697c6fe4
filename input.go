package thumbkit

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"strings"

	_ "golang.org/x/image/webp"
)

// ImagePart is an input image ready to be sent to the model. Data is the file
// content exactly as read from disk.
type ImagePart struct {
	Path     string
	Data     []byte
	MIMEType string

	// Width and Height are zero when the image header could not be decoded.
	Width  int
	Height int
}

// LoadImage reads the image at path. label names the argument the path came
// from (e.g. "--base") and is carried in any returned error.
func LoadImage(path, label string) (ImagePart, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImagePart{}, &ImagePathError{Label: label, Path: path, Err: ErrFileNotFound}
		}
		return ImagePart{}, fmt.Errorf("%s: %w", label, err)
	}
	if info.IsDir() {
		return ImagePart{}, &ImagePathError{
			Label:  label,
			Path:   path,
			Detail: "path is a directory",
			Err:    ErrFileNotFound,
		}
	}

	mimeType, ext, ok := MIMETypeForPath(path)
	if !ok {
		detail := "file has no extension"
		if ext != "" {
			detail = fmt.Sprintf("extension %q is not one of %s", ext, strings.Join(AllowedExtensions, ", "))
		}
		return ImagePart{}, &ImagePathError{
			Label:  label,
			Path:   path,
			Ext:    ext,
			Detail: detail,
			Err:    ErrInvalidImageFormat,
		}
	}

	if info.Size() > MaxImageSize {
		return ImagePart{}, &ImagePathError{
			Label:  label,
			Path:   path,
			Detail: fmt.Sprintf("%d bytes, max %d", info.Size(), MaxImageSize),
			Err:    ErrImageTooLarge,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ImagePart{}, fmt.Errorf("%s: reading %s: %w", label, path, err)
	}

	part := ImagePart{Path: path, Data: data, MIMEType: mimeType}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		part.Width, part.Height = cfg.Width, cfg.Height
	}
	return part, nil
}

// LoadImages loads paths in order. label(i) names the i-th path in errors;
// a nil label falls back to "reference image #N".
func LoadImages(paths []string, label func(i int) string) ([]ImagePart, error) {
	if label == nil {
		label = func(i int) string { return fmt.Sprintf("reference image #%d", i+1) }
	}
	parts := make([]ImagePart, 0, len(paths))
	for i, p := range paths {
		part, err := LoadImage(p, label(i))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}
