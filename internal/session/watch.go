// ABOUTME: Follows session file changes made by other supportbot processes
// ABOUTME: A login or logout elsewhere is adopted here through fsnotify

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch when the store has no backing file
var ErrNotWatchable = errors.New("session store is not file backed")

// Watch starts observing the session file and returns once the watcher is
// registered. Observation stops when ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	fileStore, ok := m.store.(interface{ Path() string })
	if !ok {
		return ErrNotWatchable
	}
	path := filepath.Clean(fileStore.Path())
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// The directory is watched since saves replace the file by rename
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					m.sync()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Warn("session watcher error", "error", err)
			}
		}
	}()
	return nil
}
