// Package config loads thumbkit settings from the environment, .env files and
// an optional TOML defaults file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/thumbkit/thumbkit"
)

// Settings holds the application configuration.
type Settings struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"`
	OutputDir    string `envconfig:"THUMBKIT_OUTPUT_DIR"`
	Model        string `envconfig:"THUMBKIT_MODEL"`
	ConfigFile   string `envconfig:"THUMBKIT_CONFIG"`
	LogLevel     string `envconfig:"THUMBKIT_LOG_LEVEL" default:"warn"`
}

// Load reads configuration from environment variables.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return &s, nil
}

// APIKey returns GEMINI_API_KEY, falling back to GOOGLE_API_KEY.
func (s *Settings) APIKey() (string, error) {
	if key := strings.TrimSpace(s.GeminiAPIKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(s.GoogleAPIKey); key != "" {
		return key, nil
	}
	return "", thumbkit.ErrMissingCredentials
}

// DefaultsPath returns the TOML defaults file location: THUMBKIT_CONFIG, or
// thumbkit/config.toml under the user config directory.
func (s *Settings) DefaultsPath() string {
	if s.ConfigFile != "" {
		return s.ConfigFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "thumbkit", "config.toml")
}

// FirstNonEmpty returns the first non-empty value.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
