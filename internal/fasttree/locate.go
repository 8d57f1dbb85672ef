// Package fasttree runs FastTree to re-estimate a tree under a topology
// constraint.
package fasttree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrUnsupportedPlatform = errors.New("no FastTree binary for this platform")
	ErrInferenceFailure    = errors.New("FastTree inference failed")
)

// bundled FastTree binaries, by GOOS
var binaries = map[string]string{
	"linux":   "FastTree-linux",
	"darwin":  "FastTree-darwin",
	"windows": "FastTree.exe",
}

// Locate returns the path of the FastTree binary for goos inside toolsDir.
func Locate(toolsDir, goos string) (string, error) {
	name, ok := binaries[goos]
	if !ok {
		return "", fmt.Errorf("%w (%s)", ErrUnsupportedPlatform, goos)
	}
	path := filepath.Join(toolsDir, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("could not find FastTree: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("could not find FastTree: %s is a directory", path)
	}
	return path, nil
}
