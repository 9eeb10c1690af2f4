package agentgraph

// Fact is one durable (key, value) pair a memory policy extracted from
// a finished turn.
type Fact struct {
	Key   string
	Value string
}

// MemoryPolicy decides which facts a finished turn contributes to the
// user's long-term memory. It runs at the end of every turn; returning
// nil writes nothing.
//
// Policies must not mutate the state.
type MemoryPolicy func(state *GraphState) []Fact

// DefaultMemoryPolicy records the user's latest topic and the
// assistant's latest answer, truncated to keep records scannable.
func DefaultMemoryPolicy(state *GraphState) []Fact {
	var facts []Fact

	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == RoleUser && state.Messages[i].Content != "" {
			facts = append(facts, Fact{Key: "last_topic", Value: truncate(state.Messages[i].Content, 200)})
			break
		}
	}

	if answer := state.LastAssistantContent(); answer != "" {
		facts = append(facts, Fact{Key: "last_answer", Value: truncate(answer, 500)})
	}

	return facts
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
