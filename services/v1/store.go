package v1

import (
	"context"
	"sync"
)

// ConfigStore is the authoritative home of the single configuration record. Writes are
// unconditional; the last writer wins.
type ConfigStore interface {
	// Get returns the stored blob, ErrNotConfigured when nothing was written yet, or an error
	// matching ErrStoreUnavailable.
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, blob []byte) error
	Ping(ctx context.Context) error
}

type memoryStore struct {
	mu   sync.RWMutex
	blob []byte
}

// NewMemoryStore returns a process-local store. Nothing survives a restart.
func NewMemoryStore() ConfigStore {
	return &memoryStore{}
}

func (m *memoryStore) Get(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.blob == nil {
		return nil, ErrNotConfigured
	}
	out := make([]byte, len(m.blob))
	copy(out, m.blob)
	return out, nil
}

func (m *memoryStore) Put(ctx context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	return nil
}

func (m *memoryStore) Ping(ctx context.Context) error {
	return nil
}
