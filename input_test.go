package thumbkit

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadImage_SupportedExtensions(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		wantMIME string
	}{
		{"a.png", "image/png"},
		{"b.PNG", "image/png"},
		{"c.jpg", "image/jpeg"},
		{"d.JPG", "image/jpeg"},
		{"e.jpeg", "image/jpeg"},
		{"f.JpEg", "image/jpeg"},
		{"g.webp", "image/webp"},
		{"h.WEBP", "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte("raw bytes for " + tt.name)
			path := writeFile(t, dir, tt.name, data)

			part, err := LoadImage(path, "--ref")
			if err != nil {
				t.Fatalf("LoadImage() error = %v", err)
			}
			if part.MIMEType != tt.wantMIME {
				t.Errorf("MIMEType = %q, want %q", part.MIMEType, tt.wantMIME)
			}
			if !bytes.Equal(part.Data, data) {
				t.Error("image bytes were modified")
			}
			if part.Path != path {
				t.Errorf("Path = %q, want %q", part.Path, path)
			}
		})
	}
}

func TestLoadImage_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"anim.gif", "photo.bmp", "scan.TIFF", "noext"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, name, []byte("data"))

			_, err := LoadImage(path, "--ref (image #1)")
			if !errors.Is(err, ErrInvalidImageFormat) {
				t.Fatalf("LoadImage() error = %v, want ErrInvalidImageFormat", err)
			}

			var pathErr *ImagePathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("expected *ImagePathError, got %T", err)
			}
			wantExt := strings.ToLower(filepath.Ext(name))
			if pathErr.Ext != wantExt {
				t.Errorf("Ext = %q, want %q", pathErr.Ext, wantExt)
			}

			msg := err.Error()
			for _, want := range []string{path, "--ref (image #1)"} {
				if !strings.Contains(msg, want) {
					t.Errorf("error %q does not mention %q", msg, want)
				}
			}
			if wantExt != "" && !strings.Contains(msg, wantExt) {
				t.Errorf("error %q does not name extension %q", msg, wantExt)
			}
			for _, allowed := range AllowedExtensions {
				if !strings.Contains(Describe(err)+msg, allowed) {
					t.Errorf("error output does not list allowed extension %s", allowed)
				}
			}
		})
	}
}

func TestLoadImage_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.png")

	_, err := LoadImage(path, "--base")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("LoadImage() error = %v, want ErrFileNotFound", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not carry the path", err)
	}
}

func TestLoadImage_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.png")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := LoadImage(dir, "--base")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("LoadImage() error = %v, want ErrFileNotFound", err)
	}
	if !strings.Contains(err.Error(), "directory") {
		t.Errorf("error %q should say the path is a directory", err)
	}
}

func TestLoadImage_Dimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, t.TempDir(), "tiny.png", buf.Bytes())

	part, err := LoadImage(path, "")
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if part.Width != 3 || part.Height != 2 {
		t.Errorf("dimensions = %dx%d, want 3x2", part.Width, part.Height)
	}
}

func TestLoadImages_Order(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "1.png", []byte("one")),
		writeFile(t, dir, "2.jpg", []byte("two")),
		writeFile(t, dir, "3.webp", []byte("three")),
	}

	parts, err := LoadImages(paths, nil)
	if err != nil {
		t.Fatalf("LoadImages() error = %v", err)
	}
	for i, p := range parts {
		if p.Path != paths[i] {
			t.Errorf("parts[%d].Path = %q, want %q", i, p.Path, paths[i])
		}
	}

	bad := append(paths[:1:1], filepath.Join(dir, "nope.png"))
	_, err = LoadImages(bad, nil)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("LoadImages() error = %v, want ErrFileNotFound", err)
	}
	if !strings.Contains(err.Error(), "reference image #2") {
		t.Errorf("error %q should name the second reference", err)
	}
}
