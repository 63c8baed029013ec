package assets

import (
	"context"
	"sync"
)

// MemoryRemover records removals instead of performing them. Used in tests
// and in the in-memory dev mode.
type MemoryRemover struct {
	mu      sync.Mutex
	removed []ObjectRef
	err     error
}

// NewMemoryRemover constructs an empty recorder.
func NewMemoryRemover() *MemoryRemover {
	return &MemoryRemover{}
}

// FailWith makes subsequent Remove calls return err.
func (m *MemoryRemover) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryRemover) Remove(_ context.Context, ref ObjectRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, ref)
	return nil
}

// Removed returns a copy of every recorded removal.
func (m *MemoryRemover) Removed() []ObjectRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ObjectRef, len(m.removed))
	copy(out, m.removed)
	return out
}
