package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfassina/mdr/internal/host"
)

// FileName is the session file inside the config directory.
const FileName = "state.json"

// Store handles session state persistence.
type Store struct {
	path string
}

// NewStore creates a store that persists to state.json in dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path is the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Load reads the session state from disk. A missing file is not an error.
func (s *Store) Load() (State, error) {
	state := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, fmt.Errorf("read session: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return Default(), fmt.Errorf("parse session %s: %w", s.path, err)
	}

	return state, nil
}

// Save writes the session state to disk.
func (s *Store) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return host.WriteFile(s.path, append(data, '\n'))
}
