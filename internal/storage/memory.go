package storage

import "sync"

// MemoryStorage implements Backend with a process-local map.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Init() error   { return nil }
func (m *MemoryStorage) Enabled() bool { return true }
func (m *MemoryStorage) Name() string  { return "memory" }
func (m *MemoryStorage) Close() error  { return nil }

// Get returns a copy of the stored value.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value.
func (m *MemoryStorage) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// disabledStorage is a backend that never persists anything.
type disabledStorage struct{}

// Disabled returns a backend for environments without persistence.
func Disabled() Backend { return disabledStorage{} }

func (disabledStorage) Init() error                { return nil }
func (disabledStorage) Enabled() bool              { return false }
func (disabledStorage) Name() string               { return "disabled" }
func (disabledStorage) Get(string) ([]byte, error) { return nil, nil }
func (disabledStorage) Put(string, []byte) error   { return nil }
func (disabledStorage) Delete(string) error        { return nil }
func (disabledStorage) Close() error               { return nil }
