package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// fileStorage keeps the key-value map in a TOML file. Values are held in memory and the
// whole file is rewritten on Flush.
type fileStorage struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	dirty  bool
}

var _ Storage = &fileStorage{}

// NewFileStorage opens the TOML file at path. A missing file starts an empty store that is
// created on the first Flush.
//
// Parameters:
//   - path: the storage file
//
// Returns:
//   - Storage: the file-backed store
//   - error: an error if the file exists but cannot be read or parsed
func NewFileStorage(path string) (Storage, error) {
	s := &fileStorage{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse storage %s: %w", path, err)
	}
	return s, nil
}

func (s *fileStorage) GetString(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *fileStorage) SetString(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

func (s *fileStorage) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	data, err := toml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}
