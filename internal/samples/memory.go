package samples

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, used in tests and for dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	samples []Sample
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(initial ...Sample) *MemoryStore {
	return &MemoryStore{samples: append([]Sample(nil), initial...)}
}

func (m *MemoryStore) Load(_ context.Context, crop string) ([]Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Sample, 0)
	for _, s := range m.samples {
		if s.Crop == crop {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) Append(_ context.Context, s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples = append(m.samples, s)
	return nil
}

func (m *MemoryStore) All(_ context.Context) ([]Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append(make([]Sample, 0, len(m.samples)), m.samples...), nil
}

// Len reports how many samples have been appended.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.samples)
}
