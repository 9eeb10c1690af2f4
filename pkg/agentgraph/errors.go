package agentgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for run admission.
var (
	// ErrThreadBusy indicates a run is already in flight for the thread.
	ErrThreadBusy = errors.New("thread busy")

	// ErrCapacity indicates the global concurrent-run cap is reached.
	ErrCapacity = errors.New("engine at capacity")

	// ErrUserCapacity indicates the per-user concurrent-run cap is reached.
	ErrUserCapacity = errors.New("user at capacity")

	// ErrEmptyMessage indicates Run() was called with an empty message.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// PersistenceError wraps errors from checkpoint operations. Checkpoint
// failures are fatal to the run: a turn that cannot be made durable is
// not reported as completed.
type PersistenceError struct {
	// ThreadID is the thread whose checkpoint operation failed.
	ThreadID string
	// Step is the checkpoint step involved.
	Step int
	// Op is the operation that failed ("append", "load", "serialize").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("checkpoint %s for thread %s at step %d: %v", e.Op, e.ThreadID, e.Step, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NodeError wraps an error with node context.
type NodeError struct {
	// Node is the node that failed.
	Node string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// CancellationError captures where a run was cancelled. No state past
// the last appended checkpoint is persisted.
type CancellationError struct {
	// Node is the node that was about to execute or was executing.
	Node string
	// Cause is the underlying cancellation cause.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("run cancelled at node %s: %v", e.Node, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}
