// ABOUTME: Durable session storage in a JSON file under the config directory
// ABOUTME: Writes are atomic renames with 0600 permissions; bad files read as no session

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the session file inside the config directory
const FileName = "session.json"

// Store persists the session across restarts
type Store interface {
	Load() (Session, bool, error)
	Save(Session) error
	Clear() error
}

// FileStore keeps the session in a single JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store for configDir/session.json
func NewFileStore(configDir string) *FileStore {
	return &FileStore{path: filepath.Join(configDir, FileName)}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing or unreadable file, or one
// without a token, means no session.
func (s *FileStore) Load() (Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupt file, treat as signed out
		return Session{}, false, nil
	}
	if sess.Token == "" {
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Save writes the session file
func (s *FileStore) Save(sess Session) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the session file
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
