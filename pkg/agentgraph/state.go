package agentgraph

import (
	"encoding/json"
	"time"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message from the human user.
	RoleUser Role = "user"

	// RoleAssistant marks a message produced by the model.
	RoleAssistant Role = "assistant"

	// RoleTool marks a tool result fed back to the model.
	RoleTool Role = "tool"
)

// ToolCall is a model-requested tool invocation carried on an
// assistant message.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Message is one entry in a thread's transcript.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool message back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// GraphState is the conversation state threaded through the nodes of a
// run and serialized into every checkpoint.
type GraphState struct {
	ThreadID string    `json:"thread_id"`
	UserID   string    `json:"user_id"`
	Messages []Message `json:"messages"`

	// Summary is the running fold of messages older than the recency
	// window. Empty until the first summarization.
	Summary string `json:"summary,omitempty"`
}

// Append adds a message to the transcript, stamping it with the current
// time if unset.
func (s *GraphState) Append(msg Message) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.Messages = append(s.Messages, msg)
}

// LastMessage returns the most recent message, or nil for an empty
// transcript.
func (s *GraphState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// LastAssistantContent returns the content of the most recent assistant
// message, or "" if none exists.
func (s *GraphState) LastAssistantContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant && s.Messages[i].Content != "" {
			return s.Messages[i].Content
		}
	}
	return ""
}

// SizeEstimate approximates the conversation's prompt weight in
// abstract units: one unit per message plus one per 240 characters of
// content. It is a trigger heuristic, not a token count.
func (s *GraphState) SizeEstimate() int {
	total := 0
	for _, m := range s.Messages {
		total += 1 + len(m.Content)/240
	}
	return total
}

// Clone returns a deep copy of the state.
func (s *GraphState) Clone() *GraphState {
	out := &GraphState{
		ThreadID: s.ThreadID,
		UserID:   s.UserID,
		Summary:  s.Summary,
	}
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i, m := range s.Messages {
		if len(m.ToolCalls) > 0 {
			out.Messages[i].ToolCalls = make([]ToolCall, len(m.ToolCalls))
			copy(out.Messages[i].ToolCalls, m.ToolCalls)
		}
	}
	return out
}

// toLLMMessages converts transcript messages to completion request
// messages.
func toLLMMessages(msgs []Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		lm := llm.Message{
			Role:       llm.Role(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			lm.ToolCalls = append(lm.ToolCalls, llm.ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})
		}
		out = append(out, lm)
	}
	return out
}

// fromLLMToolCalls converts completion tool calls to transcript tool
// calls.
func fromLLMToolCalls(calls []llm.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, ToolCall{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
		})
	}
	return out
}
