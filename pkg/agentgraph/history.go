package agentgraph

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
)

// ErrThreadNotFound indicates the thread has no checkpoints.
var ErrThreadNotFound = errors.New("thread not found")

// History returns the thread's transcript and summary as of its latest
// checkpoint. It is a pure read: no run starts and no state changes.
// Returns ErrThreadNotFound for an unknown thread.
func (e *Engine) History(ctx context.Context, threadID string) (*GraphState, error) {
	latest, err := e.checkpoints.Latest(ctx, threadID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, &PersistenceError{ThreadID: threadID, Op: "load", Err: err}
	}

	var state GraphState
	if err := json.Unmarshal(latest.State, &state); err != nil {
		return nil, &PersistenceError{ThreadID: threadID, Step: latest.Step, Op: "load", Err: err}
	}
	state.ThreadID = threadID
	return &state, nil
}

// DeleteThread removes all checkpoints for a thread. Safe to call for
// unknown threads. Fails with ErrThreadBusy while a run is in flight.
func (e *Engine) DeleteThread(ctx context.Context, threadID string) error {
	if err := e.guard.acquire(threadID, ""); err != nil {
		return err
	}
	defer e.guard.release(threadID, "")

	if err := e.checkpoints.DeleteThread(ctx, threadID); err != nil {
		return &PersistenceError{ThreadID: threadID, Op: "delete", Err: err}
	}
	return nil
}
