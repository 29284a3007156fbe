package guidancecache

import (
	"context"
	"sync"
)

// MemoryBackend keeps the entry in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	entry *Entry
}

// NewMemoryBackend returns an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(context.Context) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.entry == nil {
		return Entry{}, false, nil
	}
	return *m.entry, true, nil
}

func (m *MemoryBackend) Save(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &entry
	return nil
}

func (m *MemoryBackend) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = nil
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
