package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrConfigNotFound is returned by FindConfig when no ploog.yaml exists in
// the start directory or any of its parents.
var ErrConfigNotFound = errors.New("config file not found")

// FindConfig looks upwards from startDir for ploog.yaml and returns its
// absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", ErrConfigNotFound
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
