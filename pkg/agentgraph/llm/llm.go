// Package llm abstracts the language-model capability behind a small
// client interface. The engine treats the model as opaque: given a
// system prompt, message history, and tool schemas, it produces either
// final text or tool-call requests.
//
// Two implementations ship with the package:
//   - OpenAI: any OpenAI-compatible chat-completions endpoint
//     (OpenAI, Groq, OpenRouter, local gateways)
//   - Mock: a scripted client for deterministic tests
package llm

import "context"

// Client is the interface all LLM providers implement.
type Client interface {
	// Complete sends a completion request and waits for the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Stream sends a completion request and streams the response.
	// The returned channel is closed when streaming completes.
	// The final chunk has Done=true and carries accumulated tool calls
	// and token usage; a chunk with a non-nil Error terminates the stream.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
}
