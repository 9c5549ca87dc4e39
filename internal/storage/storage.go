// Package storage persists small JSON documents under fixed keys, the server
// side equivalent of a browser's local key-value store.
package storage

import (
	"context"
	"encoding/json"
	"sync"

	apperrors "github.com/glefebvre/cinevo/internal/errors"
)

// Store is a key-value store holding one serialized value per key
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the value stored under key
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
}

// LoadJSON decodes the value under key into v. It reports false when the key
// is absent, leaving v untouched.
func LoadJSON(ctx context.Context, s Store, key string, v interface{}) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, apperrors.ParseError("stored value is not valid JSON", err).
			WithContext("key", key)
	}
	return true, nil
}

// SaveJSON serializes v and writes it under key in a single Set call
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode value").
			WithContext("key", key)
	}
	return s.Set(ctx, key, data)
}

// MemoryStore is an in-process Store used by tests and the CLI dry paths
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements Store
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	m.writes++
	return nil
}

// Remove implements Store
func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Writes returns how many Set calls the store has served
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
