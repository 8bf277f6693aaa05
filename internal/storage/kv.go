// Package storage persists chat history and the theme preference.
package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/diogo/geminichat/internal/config"
)

// KV is a string key-value store
type KV interface {
	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// MemoryKV keeps values in memory only
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

// Open returns the backend selected by cfg.Storage.Backend
func Open(cfg config.Config) (KV, error) {
	if cfg.Storage.Backend == config.BackendMemory {
		return NewMemoryKV(), nil
	}

	dir, err := config.GetStorageDir(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case "", config.BackendFile:
		return NewFileKV(filepath.Join(dir, "store.json"))
	case config.BackendSQLite:
		return NewSQLiteKV(filepath.Join(dir, "store.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
