package cache

import (
	"context"
	"sync"
)

// Memory is an in-memory implementation of both tiers. It backs tests and
// the "memory" cache backend (ephemeral sessions).
type Memory struct {
	mu      sync.Mutex
	strings map[string]string
	blobs   map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		strings: map[string]string{},
		blobs:   map[string][]byte{},
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.strings[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strings, key)
	delete(m.blobs, key)
	return nil
}

// MemorySnapshots adapts Memory to the SnapshotStore contract.
type MemorySnapshots struct {
	*Memory
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{Memory: NewMemory()}
}

func (m *MemorySnapshots) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemorySnapshots) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.blobs[key] = stored
	return nil
}
