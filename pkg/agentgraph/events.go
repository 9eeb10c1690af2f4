package agentgraph

import "time"

// EventType identifies what a stream event describes.
type EventType string

const (
	// EventNodeStarted signals a node is about to execute.
	EventNodeStarted EventType = "node_started"

	// EventTokenProduced carries one streamed fragment of the
	// assistant's answer.
	EventTokenProduced EventType = "token_produced"

	// EventToolCallStarted signals a tool invocation is beginning.
	EventToolCallStarted EventType = "tool_call_started"

	// EventToolCallFinished carries a tool invocation's outcome.
	EventToolCallFinished EventType = "tool_call_finished"

	// EventRunCompleted is the terminal event of a successful turn.
	EventRunCompleted EventType = "run_completed"

	// EventRunFailed is the terminal event of a failed or cancelled
	// turn.
	EventRunFailed EventType = "run_failed"
)

// Event is one entry in a run's ordered event stream. Fields beyond
// Type are populated per event kind.
type Event struct {
	Type     EventType `json:"type"`
	ThreadID string    `json:"thread_id"`
	RunID    string    `json:"run_id"`

	// Node is set on EventNodeStarted.
	Node string `json:"node,omitempty"`

	// Token is set on EventTokenProduced.
	Token string `json:"token,omitempty"`

	// Tool fields are set on EventToolCallStarted/Finished.
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolOK     bool   `json:"tool_ok,omitempty"`
	ToolOutput string `json:"tool_output,omitempty"`

	// Answer is the full assistant reply, set on EventRunCompleted.
	Answer string `json:"answer,omitempty"`

	// Err is set on EventRunFailed.
	Err error `json:"-"`

	At time.Time `json:"at"`
}

// Terminal reports whether this event closes the stream.
func (e Event) Terminal() bool {
	return e.Type == EventRunCompleted || e.Type == EventRunFailed
}
