package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_FixedResponse(t *testing.T) {
	mock := llm.NewMockClient("Hello, world!")

	resp, err := mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestMockClient_SequentialResponses(t *testing.T) {
	mock := llm.NewMockClient("").WithResponses("first", "second", "third")

	for _, want := range []string{"first", "second", "third", "first"} {
		resp, err := mock.Complete(context.Background(), llm.CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
}

func TestMockClient_Script_ToolCalls(t *testing.T) {
	mock := llm.NewMockClient("").WithScript(
		&llm.CompletionResponse{
			ToolCalls: []llm.ToolCall{{
				ID:        "call-1",
				Name:      "web_search",
				Arguments: json.RawMessage(`{"query":"go"}`),
			}},
		},
		&llm.CompletionResponse{Content: "done"},
	)

	resp, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "web_search", resp.ToolCalls[0].Name)

	resp, err = mock.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "done", resp.Content)
}

func TestMockClient_WithError(t *testing.T) {
	expectedErr := errors.New("test error")
	mock := llm.NewMockClient("").WithError(expectedErr)

	_, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	assert.Equal(t, expectedErr, err)
}

func TestMockClient_CallTracking(t *testing.T) {
	mock := llm.NewMockClient("response")

	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "First question"}},
	})
	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Second question"}},
	})

	assert.Equal(t, 2, mock.CallCount())
	require.Len(t, mock.Calls, 2)
	assert.Equal(t, "First question", mock.Calls[0].Messages[0].Content)

	last := mock.LastCall()
	require.NotNil(t, last)
	assert.Equal(t, "Second question", last.Messages[0].Content)
}

func TestMockClient_Stream_OrderedChunks(t *testing.T) {
	mock := llm.NewMockClient("abcdefghij")
	mock.ChunkSize = 4

	ch, err := mock.Stream(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)

	var got string
	var final llm.StreamChunk
	for chunk := range ch {
		require.NoError(t, chunk.Error)
		if chunk.Done {
			final = chunk
			continue
		}
		got += chunk.Content
	}

	assert.Equal(t, "abcdefghij", got)
	assert.True(t, final.Done)
}

func TestMockClient_Stream_FinalChunkCarriesToolCalls(t *testing.T) {
	mock := llm.NewMockClient("").WithScript(&llm.CompletionResponse{
		ToolCalls: []llm.ToolCall{{ID: "c1", Name: "current_datetime", Arguments: json.RawMessage(`{}`)}},
	})

	ch, err := mock.Stream(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)

	var final llm.StreamChunk
	for chunk := range ch {
		require.NoError(t, chunk.Error)
		if chunk.Done {
			final = chunk
		}
	}

	require.Len(t, final.ToolCalls, 1)
	assert.Equal(t, "current_datetime", final.ToolCalls[0].Name)
}

func TestMockClient_Reset(t *testing.T) {
	mock := llm.NewMockClient("").WithResponses("a", "b", "c")

	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{})
	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{})

	mock.Reset()

	assert.Equal(t, 0, mock.CallCount())
	resp, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.Content)
}
