// Package storage persists the editor state as string values under well-known keys.
package storage

import "sync"

// Keys written by the viewer.
const (
	KeyGraph    = "snarl"
	KeyStyle    = "style"
	KeySettings = "settings"
)

// Storage is a flat string key-value store. Values are typically JSON documents.
type Storage interface {
	// GetString returns the value stored under key.
	//
	// Parameters:
	//   - key: the storage key
	//
	// Returns:
	//   - string: the stored value
	//   - bool: false if the key is absent
	GetString(key string) (string, bool)

	// SetString stores value under key. The value is not durable until Flush.
	//
	// Parameters:
	//   - key: the storage key
	//   - value: the value to store
	SetString(key, value string)

	// Flush writes pending changes to the backing medium.
	//
	// Returns:
	//   - error: an error if the write fails
	Flush() error
}

type memoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Storage = &memoryStorage{}

// NewMemoryStorage creates a Storage that keeps everything in memory. Flush is a no-op.
func NewMemoryStorage() Storage {
	return &memoryStorage{values: make(map[string]string)}
}

func (s *memoryStorage) GetString(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *memoryStorage) SetString(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *memoryStorage) Flush() error {
	return nil
}
