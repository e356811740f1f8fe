package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFilename marks a shelf root and holds the CLI configuration.
const ConfigFilename = "shelf.yaml"

// FindRoot looks upwards from startDir for a shelf root indicator:
// a .shelf directory or a shelf.yaml file.
// It returns the absolute path of the first directory carrying one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".shelf") || hasFile(dir, ConfigFilename) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
