package agentgraph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphState_Append(t *testing.T) {
	state := &GraphState{ThreadID: "t1"}

	state.Append(Message{Role: RoleUser, Content: "hello"})

	require.Len(t, state.Messages, 1)
	assert.False(t, state.Messages[0].CreatedAt.IsZero())
}

func TestGraphState_SizeEstimate(t *testing.T) {
	state := &GraphState{}
	assert.Equal(t, 0, state.SizeEstimate())

	state.Append(Message{Role: RoleUser, Content: "short"})
	assert.Equal(t, 1, state.SizeEstimate())

	state.Append(Message{Role: RoleAssistant, Content: strings.Repeat("x", 500)})
	// 1 (short message) + 1 + 500/240 = 4
	assert.Equal(t, 4, state.SizeEstimate())
}

func TestGraphState_LastAssistantContent(t *testing.T) {
	state := &GraphState{}
	assert.Empty(t, state.LastAssistantContent())

	state.Append(Message{Role: RoleUser, Content: "q"})
	state.Append(Message{Role: RoleAssistant, Content: "a1"})
	state.Append(Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "x"}}})
	state.Append(Message{Role: RoleTool, Content: "result", ToolCallID: "c1"})

	// Skips the empty tool-call message and the tool result.
	assert.Equal(t, "a1", state.LastAssistantContent())
}

func TestGraphState_Clone(t *testing.T) {
	state := &GraphState{ThreadID: "t1", UserID: "u1", Summary: "s"}
	state.Append(Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "echo"}}})

	clone := state.Clone()
	clone.Messages[0].ToolCalls[0].Name = "changed"
	clone.Append(Message{Role: RoleUser, Content: "more"})

	assert.Equal(t, "echo", state.Messages[0].ToolCalls[0].Name)
	assert.Len(t, state.Messages, 1)
}

func TestGraphState_JSONRoundTrip(t *testing.T) {
	state := &GraphState{ThreadID: "t1", UserID: "u1", Summary: "so far"}
	state.Append(Message{Role: RoleUser, Content: "hi"})
	state.Append(Message{
		Role:      RoleAssistant,
		ToolCalls: []ToolCall{{ID: "c1", Name: "web_search", Arguments: json.RawMessage(`{"query":"x"}`)}},
	})

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded GraphState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, state.Summary, decoded.Summary)
	require.Len(t, decoded.Messages, 2)
	assert.Equal(t, "web_search", decoded.Messages[1].ToolCalls[0].Name)
}

func TestPendingToolCalls(t *testing.T) {
	state := &GraphState{}
	assert.Empty(t, pendingToolCalls(state))

	state.Append(Message{Role: RoleUser, Content: "q"})
	state.Append(Message{Role: RoleAssistant, ToolCalls: []ToolCall{
		{ID: "c1", Name: "a"},
		{ID: "c2", Name: "b"},
	}})

	pending := pendingToolCalls(state)
	require.Len(t, pending, 2)

	// Answering one call leaves the other pending.
	state.Append(Message{Role: RoleTool, Content: "done", ToolCallID: "c1"})
	pending = pendingToolCalls(state)
	require.Len(t, pending, 1)
	assert.Equal(t, "c2", pending[0].ID)

	state.Append(Message{Role: RoleTool, Content: "done", ToolCallID: "c2"})
	assert.Empty(t, pendingToolCalls(state))
}

func TestDefaultMemoryPolicy(t *testing.T) {
	state := &GraphState{UserID: "u1"}
	assert.Empty(t, DefaultMemoryPolicy(state))

	state.Append(Message{Role: RoleUser, Content: "what is Go?"})
	state.Append(Message{Role: RoleAssistant, Content: "Go is a programming language."})

	facts := DefaultMemoryPolicy(state)
	require.Len(t, facts, 2)
	assert.Equal(t, Fact{Key: "last_topic", Value: "what is Go?"}, facts[0])
	assert.Equal(t, Fact{Key: "last_answer", Value: "Go is a programming language."}, facts[1])
}

func TestDefaultMemoryPolicy_Truncates(t *testing.T) {
	state := &GraphState{}
	state.Append(Message{Role: RoleUser, Content: strings.Repeat("a", 400)})

	facts := DefaultMemoryPolicy(state)
	require.Len(t, facts, 1)
	assert.LessOrEqual(t, len([]rune(facts[0].Value)), 201)
}

func TestReasoningSystemPrompt(t *testing.T) {
	base := reasoningSystemPrompt("persona", "", nil)
	assert.Equal(t, "persona", base)

	full := reasoningSystemPrompt("persona", "earlier talk", []string{"last_topic: Go"})
	assert.Contains(t, full, "persona")
	assert.Contains(t, full, "earlier talk")
	assert.Contains(t, full, "- last_topic: Go")
}

func TestSummaryInstruction(t *testing.T) {
	fresh := summaryInstruction("")
	assert.NotContains(t, fresh, "Current summary")

	update := summaryInstruction("previous")
	assert.Contains(t, update, "previous")
}
