package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Version is the current checkpoint format version.
// Increment when making breaking changes to checkpoint structure.
const Version = 1

// Checkpoint is an immutable snapshot of a thread's graph state plus the
// node that produced it and the node that should run next. Checkpoints
// are append-only: a thread's lineage is totally ordered by Step, and the
// highest Step is the resume point.
//
// NextNode is recorded only after the producing node's effects are part
// of State, so resuming from the latest checkpoint never loses or
// duplicates a node execution.
type Checkpoint struct {
	// Metadata
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Step      int       `json:"step"`
	CreatedAt time.Time `json:"created_at"`

	// Execution state
	State      json.RawMessage `json:"state"`
	ProducedBy string          `json:"produced_by"`
	NextNode   string          `json:"next_node"`
}

// New creates a checkpoint for a thread at the given step.
// State must already be JSON-serialized.
func New(threadID string, step int, state []byte, producedBy, nextNode string) *Checkpoint {
	return &Checkpoint{
		Version:    Version,
		ID:         uuid.NewString(),
		ThreadID:   threadID,
		Step:       step,
		CreatedAt:  time.Now().UTC(),
		State:      state,
		ProducedBy: producedBy,
		NextNode:   nextNode,
	}
}

// Marshal serializes a checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
