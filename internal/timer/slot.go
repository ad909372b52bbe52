package timer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Anchor is the state persisted while a timer runs. Only this survives a
// process restart; elapsed time is always recomputed from StartEpoch rather
// than trusted from any in-memory counter.
type Anchor struct {
	Handle              string `json:"handle"`
	ProjectName         string `json:"project_name"`
	ProjectDescription  string `json:"project_description"`
	BaseDurationSeconds int64  `json:"base_duration_seconds"`
	StartEpoch          int64  `json:"start_epoch"`
}

// Slot is durable key-value scoped storage for the timer anchor.
type Slot interface {
	// Get returns the stored anchor, or nil when the slot is empty.
	Get() (*Anchor, error)
	Set(Anchor) error
	Clear() error
}

// FileSlot persists the anchor as a JSON file under the user's state
// directory.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// NewFileSlot creates a slot backed by the given file path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Get reads the anchor file. A missing file means an empty slot, not an error.
func (s *FileSlot) Get() (*Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read timer slot: %w", err)
	}

	var anchor Anchor
	if err := json.Unmarshal(data, &anchor); err != nil {
		return nil, fmt.Errorf("decode timer slot: %w", err)
	}
	return &anchor, nil
}

// Set writes the anchor, creating the parent directory if needed.
func (s *FileSlot) Set(anchor Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create timer slot directory: %w", err)
		}
	}

	data, err := json.Marshal(anchor)
	if err != nil {
		return fmt.Errorf("encode timer slot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write timer slot: %w", err)
	}
	return nil
}

// Clear removes the anchor file. Clearing an empty slot is a no-op.
func (s *FileSlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear timer slot: %w", err)
	}
	return nil
}
