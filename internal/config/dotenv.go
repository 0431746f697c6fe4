package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads ~/.claude/.env, overriding the environment, then the
// nearest .env at or above the working directory without overriding.
func LoadDotEnv() error {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return LoadDotEnvFrom(home, wd)
}

// LoadDotEnvFrom is LoadDotEnv with explicit directories. Empty directories
// and missing files are skipped.
func LoadDotEnvFrom(homeDir, workDir string) error {
	if homeDir != "" {
		path := filepath.Join(homeDir, ".claude", ".env")
		if isFile(path) {
			if err := godotenv.Overload(path); err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}

	if workDir != "" {
		if path, ok := findUp(workDir, ".env"); ok {
			if err := godotenv.Load(path); err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}
	return nil
}

// findUp looks for name in dir and each of its parents.
func findUp(dir, name string) (string, bool) {
	for {
		path := filepath.Join(dir, name)
		if isFile(path) {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
