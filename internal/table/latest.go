package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoFiles is returned when a glob matches nothing.
var ErrNoFiles = errors.New("no files match pattern")

// LatestFile returns the most recently modified file matching pattern.
func LatestFile(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var (
		latest  string
		latestM int64
	)

	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", m, err)
		}

		if info.IsDir() {
			continue
		}

		if mt := info.ModTime().UnixNano(); latest == "" || mt > latestM {
			latest, latestM = m, mt
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}

	return latest, nil
}
