package checkpoint

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory checkpoint store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]*Checkpoint // threadID -> checkpoints ordered by step
	closed bool
}

// NewMemoryStore creates a new in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]*Checkpoint),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, cp *Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	for _, existing := range m.data[cp.ThreadID] {
		if existing.Step == cp.Step {
			return ErrStepConflict
		}
	}

	m.data[cp.ThreadID] = append(m.data[cp.ThreadID], copyCheckpoint(cp))
	return nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(_ context.Context, threadID string) (*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	cps := m.data[threadID]
	if len(cps) == 0 {
		return nil, ErrNotFound
	}

	latest := cps[0]
	for _, cp := range cps[1:] {
		if cp.Step > latest.Step {
			latest = cp
		}
	}
	return copyCheckpoint(latest), nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, threadID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	cps := m.data[threadID]
	infos := make([]Info, 0, len(cps))
	for _, cp := range cps {
		infos = append(infos, Info{
			ThreadID:   cp.ThreadID,
			Step:       cp.Step,
			ProducedBy: cp.ProducedBy,
			NextNode:   cp.NextNode,
			CreatedAt:  cp.CreatedAt,
			Size:       int64(len(cp.State)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Step < infos[j].Step
	})

	return infos, nil
}

// DeleteThread implements Store.
func (m *MemoryStore) DeleteThread(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, threadID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of checkpoints across all threads.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, cps := range m.data {
		count += len(cps)
	}
	return count
}

// copyCheckpoint clones a checkpoint so callers can't mutate stored data.
func copyCheckpoint(cp *Checkpoint) *Checkpoint {
	out := *cp
	out.State = append([]byte(nil), cp.State...)
	return &out
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)
