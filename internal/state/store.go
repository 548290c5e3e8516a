package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"redditqueue/internal/queue"
)

// ErrCorruptState marks a state file that exists but cannot be parsed.
// Callers must abort: treating a corrupt file as empty would re-surface
// every item already reported.
var ErrCorruptState = errors.New("corrupt state file")

// FileStore keeps run state in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file yields an empty state; a file
// that is present but unparsable yields ErrCorruptState after a .broken
// sidecar copy is kept for diagnosis.
func (s *FileStore) Load(ctx context.Context) (queue.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return queue.State{}, nil
		}
		return queue.State{}, fmt.Errorf("read state file: %w", err)
	}

	var st queue.State
	if err := json.Unmarshal(data, &st); err != nil {
		_ = os.WriteFile(s.path+".broken", data, 0o644)
		return queue.State{}, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}

	return st, nil
}

// Save writes the state atomically through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, st queue.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp state file: %w", err)
	}

	return nil
}
