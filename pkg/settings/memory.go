package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps options in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	options map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{options: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.options[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.options[key] = v
	return nil
}
