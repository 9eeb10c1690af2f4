package llm

import (
	"context"
	"sync"
	"time"
)

// MockClient is a scripted Client for testing.
// It returns pre-configured responses in order and records every request
// it receives. Streaming splits the scripted content into small chunks so
// consumers exercise their incremental paths.
type MockClient struct {
	mu        sync.Mutex
	responses []*CompletionResponse
	err       error
	callIdx   int

	// Calls records every request for assertion.
	Calls []CompletionRequest

	// ChunkSize is the number of runes per streamed chunk. Default 8.
	ChunkSize int
}

// NewMockClient creates a mock that always returns the given content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		responses: []*CompletionResponse{{Content: content, FinishReason: "stop"}},
		ChunkSize: 8,
	}
}

// WithResponses replaces the scripted responses with plain-text answers.
// Responses cycle once exhausted.
func (m *MockClient) WithResponses(contents ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = make([]*CompletionResponse, len(contents))
	for i, c := range contents {
		m.responses[i] = &CompletionResponse{Content: c, FinishReason: "stop"}
	}
	m.callIdx = 0
	return m
}

// WithScript replaces the scripted responses with full responses,
// including tool calls. Responses cycle once exhausted.
func (m *MockClient) WithScript(responses ...*CompletionResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = responses
	m.callIdx = 0
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &CompletionResponse{FinishReason: "stop"}, nil
	}

	resp := m.responses[m.callIdx%len(m.responses)]
	m.callIdx++

	// Copy so callers can't mutate the script.
	out := *resp
	if out.FinishReason == "" {
		out.FinishReason = "stop"
	}
	out.Duration = time.Millisecond
	return &out, nil
}

// Stream implements Client. The scripted response content is delivered
// in ChunkSize-rune chunks, followed by a final Done chunk carrying any
// tool calls and usage.
func (m *MockClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	size := m.ChunkSize
	if size <= 0 {
		size = 8
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)

		runes := []rune(resp.Content)
		for start := 0; start < len(runes); start += size {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			select {
			case ch <- StreamChunk{Content: string(runes[start:end])}:
			case <-ctx.Done():
				select {
				case ch <- StreamChunk{Error: ctx.Err()}:
				default:
				}
				return
			}
		}

		usage := resp.Usage
		select {
		case ch <- StreamChunk{Done: true, ToolCalls: resp.ToolCalls, Usage: &usage}:
		case <-ctx.Done():
			select {
			case ch <- StreamChunk{Error: ctx.Err()}:
			default:
			}
		}
	}()

	return ch, nil
}

// CallCount returns the number of Complete/Stream calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// Reset clears recorded calls and rewinds the response script.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.callIdx = 0
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)
