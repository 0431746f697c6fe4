package thumbkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultOutputDir is used when neither a flag nor the environment
	// names an output directory. Relative to the working directory.
	DefaultOutputDir = "youtube/thumbnails"

	// EnvOutputDir is the environment variable consulted second.
	EnvOutputDir = "THUMBKIT_OUTPUT_DIR"
)

// Storage persists generated images.
type Storage interface {
	// SaveFile writes data under name and returns the location it was
	// written to.
	SaveFile(ctx context.Context, data []byte, name string, contentType string) (string, error)
}

// ResolveOutputDir picks the output directory: an explicit flag wins, then
// the environment, then the default.
func ResolveOutputDir(flagDir, envDir, defaultDir string) string {
	switch {
	case flagDir != "":
		return flagDir
	case envDir != "":
		return envDir
	default:
		return defaultDir
	}
}

// OutputFilename returns the file name for an image produced at t, e.g.
// thumbkit-20250102-150405-000123.png. The timestamp is rendered in UTC with
// microsecond resolution, which is the only uniqueness guarantee.
func OutputFilename(mode Mode, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s-%s-%06d.png", mode.FilenamePrefix(), t.Format("20060102-150405"), t.Nanosecond()/int(time.Microsecond))
}

// DirStorage writes images into a local directory.
type DirStorage struct {
	dir string
}

var _ Storage = (*DirStorage)(nil)

// NewDirStorage returns a storage rooted at dir, made absolute. The directory
// is created on first write; a path that already exists as a file is
// rejected here so callers fail before doing any network work.
func NewDirStorage(dir string) (*DirStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOutputDir, abs)
	}
	return &DirStorage{dir: abs}, nil
}

// Dir returns the absolute output directory.
func (s *DirStorage) Dir() string {
	return s.dir
}

// SaveFile creates the directory if needed and writes data to dir/name,
// returning the absolute path.
func (s *DirStorage) SaveFile(ctx context.Context, data []byte, name string, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
