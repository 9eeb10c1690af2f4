package memstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory memory store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]Record // userID -> key -> record
	closed bool
}

// NewMemoryStore creates a new in-memory memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]Record),
	}
}

// Upsert implements Store.
func (m *MemoryStore) Upsert(_ context.Context, userID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[userID] == nil {
		m.data[userID] = make(map[string]Record)
	}
	m.data[userID][key] = Record{
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, userID, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	rec, ok := m.data[userID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, userID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	records := make([]Record, 0, len(m.data[userID]))
	for _, rec := range m.data[userID] {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)
