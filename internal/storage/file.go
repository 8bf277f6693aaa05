package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/diogo/geminichat/internal/observability"
)

// Unparseable store files are renamed with this suffix and replaced by an
// empty store.
const corruptSuffix = ".corrupt"

// FileKV stores all keys in a single JSON object file
type FileKV struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// NewFileKV opens or creates the store at path
func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	kv := &FileKV{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return kv, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &kv.data); err != nil {
			kv.data = make(map[string]string)
			logger := observability.WithFields("component", "storage", "path", path)
			logger.Debug("discarding unparseable store", "error", err)
			if err := os.Rename(path, path+corruptSuffix); err != nil {
				logger.Debug("failed to move unparseable store aside", "error", err)
			}
		}
	}
	if kv.data == nil {
		kv.data = make(map[string]string)
	}

	return kv, nil
}

// Path returns the file backing the store
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *FileKV) Close() error {
	return nil
}

// flush writes the whole map through a temp file. Caller holds the lock.
func (f *FileKV) flush() error {
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}
