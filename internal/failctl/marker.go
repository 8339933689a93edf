package failctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MarkerPresent reports whether a file exists at path.
func MarkerPresent(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// SetMarker creates the marker file. Content is never read, so an existing
// marker is left alone.
func SetMarker(path string) error {
	if path == "" {
		return errors.New("marker path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create marker dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create marker: %w", err)
	}
	return f.Close()
}

// ClearMarker removes the marker file. Removing a missing marker is not an error.
func ClearMarker(path string) error {
	if path == "" {
		return errors.New("marker path is empty")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker: %w", err)
	}
	return nil
}
