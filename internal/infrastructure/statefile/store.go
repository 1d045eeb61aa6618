package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"InboxScheduler/internal/domain"
	"InboxScheduler/internal/ports"
)

// Store persists the processing ledger as one JSON blob. Saves go through a
// temp file and rename, so a crash mid-write never corrupts prior state.
type Store struct {
	path string
}

var _ ports.StateStore = (*Store)(nil)

// NewStore binds the ledger file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted ledger, returning an empty default when none exists.
func (s *Store) Load() (*domain.ProcessingState, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewProcessingState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", s.path, err)
	}

	state := domain.NewProcessingState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	if state.ThreadLatestProcessed == nil {
		state.ThreadLatestProcessed = map[string]int64{}
	}
	if state.CreatedEventByMessage == nil {
		state.CreatedEventByMessage = map[string]string{}
	}
	return state, nil
}

// Save rewrites the whole ledger atomically.
func (s *Store) Save(state *domain.ProcessingState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state temp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state %s: %w", s.path, err)
	}
	return nil
}
