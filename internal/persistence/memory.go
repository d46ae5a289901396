package persistence

import (
	"context"
	"sync"
)

// MemoryBackend keeps named payloads in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

// Get returns a copy of the stored payload.
func (m *MemoryBackend) Get(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.entries[name]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePayload(payload), nil
}

// Put replaces the payload stored under name.
func (m *MemoryBackend) Put(ctx context.Context, name string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[name] = clonePayload(payload)
	return nil
}

func clonePayload(payload []byte) []byte {
	if payload == nil {
		return nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out
}
