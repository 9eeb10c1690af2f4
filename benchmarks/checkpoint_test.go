package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
)

// benchState builds a realistic mid-conversation state.
func benchState() *agentgraph.GraphState {
	state := &agentgraph.GraphState{
		ThreadID: "bench-thread",
		UserID:   "bench-user",
		Summary:  strings.Repeat("Earlier the user asked about Go performance. ", 10),
	}
	for i := 0; i < 10; i++ {
		state.Append(agentgraph.Message{
			Role:    agentgraph.RoleUser,
			Content: fmt.Sprintf("question %d with some realistic length padding", i),
		})
		state.Append(agentgraph.Message{
			Role:    agentgraph.RoleAssistant,
			Content: strings.Repeat("a reasonably detailed answer ", 12),
		})
	}
	return state
}

// BenchmarkMemoryStore_Append measures in-memory checkpoint appends.
func BenchmarkMemoryStore_Append(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	ctx := context.Background()
	data, _ := json.Marshal(benchState())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cp := checkpoint.New("bench-thread", i+1, data, agentgraph.NodeReasoning, agentgraph.NodeMemoryUpdate)
		_ = store.Append(ctx, cp)
	}
}

// BenchmarkMemoryStore_Latest measures latest-checkpoint lookup.
func BenchmarkMemoryStore_Latest(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	ctx := context.Background()
	data, _ := json.Marshal(benchState())
	for i := 0; i < 100; i++ {
		_ = store.Append(ctx, checkpoint.New("bench-thread", i+1, data, agentgraph.NodeReasoning, agentgraph.NodeMemoryUpdate))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Latest(ctx, "bench-thread")
	}
}

// BenchmarkSQLiteStore_Append measures SQLite checkpoint appends.
func BenchmarkSQLiteStore_Append(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()

	ctx := context.Background()
	data, _ := json.Marshal(benchState())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cp := checkpoint.New("bench-thread", i+1, data, agentgraph.NodeReasoning, agentgraph.NodeMemoryUpdate)
		_ = store.Append(ctx, cp)
	}
}

// BenchmarkSQLiteStore_Latest measures SQLite latest-checkpoint lookup.
func BenchmarkSQLiteStore_Latest(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()

	ctx := context.Background()
	data, _ := json.Marshal(benchState())
	for i := 0; i < 100; i++ {
		_ = store.Append(ctx, checkpoint.New("bench-thread", i+1, data, agentgraph.NodeReasoning, agentgraph.NodeMemoryUpdate))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Latest(ctx, "bench-thread")
	}
}

// BenchmarkStateMarshal measures state serialization overhead.
func BenchmarkStateMarshal(b *testing.B) {
	state := benchState()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(state)
	}
}

// BenchmarkStateUnmarshal measures state deserialization overhead.
func BenchmarkStateUnmarshal(b *testing.B) {
	data, _ := json.Marshal(benchState())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var s agentgraph.GraphState
		_ = json.Unmarshal(data, &s)
	}
}

func createSQLiteStore(b *testing.B) (*checkpoint.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	store, err := checkpoint.NewSQLiteStore(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return store, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}
