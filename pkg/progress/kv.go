package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// KeyValueStore is the persistence capability the progress store needs.
// Get reports ok=false for an absent key; that is not an error.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend is a KeyValueStore that holds a resource until closed.
type Backend interface {
	KeyValueStore
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the named backend, creating path's parent directory for the
// file-based ones.
func Open(backend, path string) (Backend, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case "", BackendJSON, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown progress backend %q", backend)
	}

	if path == "" {
		return nil, fmt.Errorf("progress backend %q needs a path", backend)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating progress directory: %w", err)
	}
	if backend == BackendSQLite {
		return OpenSQLiteStore(path)
	}
	return OpenFileStore(path)
}

// MemoryStore is an in-process KeyValueStore. It is the test fake and the
// backend for --store memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
