package failctl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports marker presence changes until ctx is cancelled.
//
// fn is called once with the initial state and again on every transition.
// The parent directory is watched rather than the file, so the marker can be
// created after Watch starts. The directory must exist.
func Watch(ctx context.Context, path string, fn func(present bool)) error {
	if path == "" {
		return fmt.Errorf("marker path is empty")
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	present := MarkerPresent(path)
	fn(present)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if now := MarkerPresent(path); now != present {
				present = now
				fn(present)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch marker: %w", err)
		}
	}
}
