// Package memstore provides the long-term memory store: durable facts
// keyed by (user, key) that survive across conversation threads.
//
// Memory writes are best-effort relative to checkpointed conversation
// state: the engine logs and swallows failures rather than failing a
// run, so implementations don't need transactional coupling with the
// checkpoint store.
package memstore

import (
	"context"
	"errors"
	"time"
)

// Record is one durable fact about a user.
type Record struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists memory records. Last write wins on key collision.
// Implementations must be safe for concurrent use.
type Store interface {
	// Upsert creates or replaces the record for (userID, key).
	Upsert(ctx context.Context, userID, key, value string) error

	// Get returns the record for (userID, key).
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, userID, key string) (*Record, error)

	// List returns all records for a user, ordered by key.
	// Returns an empty slice (not an error) if the user has none.
	List(ctx context.Context, userID string) ([]Record, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for memory operations.
var (
	// ErrNotFound indicates no record exists for the key.
	ErrNotFound = errors.New("memory record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("memory store closed")
)
