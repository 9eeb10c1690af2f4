// Package checkpoint provides durable, append-only checkpoint storage
// for crash recovery of conversation threads.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Store persists checkpoints for crash recovery.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append durably records a checkpoint. Either the full checkpoint is
	// recorded or nothing is. Returns ErrStepConflict if a checkpoint for
	// (ThreadID, Step) already exists; existing checkpoints are never
	// overwritten.
	Append(ctx context.Context, cp *Checkpoint) error

	// Latest returns the checkpoint with the highest step for a thread.
	// Returns ErrNotFound if the thread has no checkpoints.
	Latest(ctx context.Context, threadID string) (*Checkpoint, error)

	// List returns checkpoint metadata for a thread, ordered by step.
	// Returns an empty slice (not an error) if the thread has none.
	List(ctx context.Context, threadID string) ([]Info, error)

	// DeleteThread removes all checkpoints for a thread.
	// Returns nil if the thread has no checkpoints.
	DeleteThread(ctx context.Context, threadID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides checkpoint metadata without loading full state.
type Info struct {
	ThreadID   string
	Step       int
	ProducedBy string
	NextNode   string
	CreatedAt  time.Time
	Size       int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a thread has no checkpoints.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStepConflict indicates a checkpoint already exists at that step.
	ErrStepConflict = errors.New("checkpoint step already exists")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
