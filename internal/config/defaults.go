package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults are user preferences read from the TOML defaults file:
//
//	model = "flash"
//	size = "2K"
//	aspect_ratio = "9:16"
type Defaults struct {
	Model       string `toml:"model"`
	Size        string `toml:"size"`
	AspectRatio string `toml:"aspect_ratio"`
}

// LoadDefaults reads path. A missing file (or empty path) yields zero
// Defaults; a malformed one is an error.
func LoadDefaults(path string) (*Defaults, error) {
	var d Defaults
	if path == "" {
		return &d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &d, nil
		}
		return nil, fmt.Errorf("reading defaults file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &d); err != nil {
		return nil, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return &d, nil
}
