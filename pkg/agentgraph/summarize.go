package agentgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
)

// Summarizer folds transcript messages into a running summary.
//
// Summarize receives the prior summary (possibly empty) and the
// messages leaving the recency window, and returns the replacement
// summary. A failure leaves the transcript untouched: the engine treats
// summarization as best-effort and re-evaluates the guard before a
// later reasoning pass.
type Summarizer interface {
	Summarize(ctx context.Context, prior string, folded []Message) (string, error)
}

// llmSummarizer produces summaries with a completion call.
type llmSummarizer struct {
	client llm.Client
	model  string
}

// NewSummarizer returns a Summarizer backed by the given LLM client.
func NewSummarizer(client llm.Client, model string) Summarizer {
	return &llmSummarizer{client: client, model: model}
}

// Summarize implements Summarizer.
func (s *llmSummarizer) Summarize(ctx context.Context, prior string, folded []Message) (string, error) {
	if len(folded) == 0 {
		return prior, nil
	}

	resp, err := s.client.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: renderTranscript(folded)},
			{Role: llm.RoleUser, Content: summaryInstruction(prior)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("summarize: model returned empty summary")
	}
	return summary, nil
}

// renderTranscript flattens messages into plain text for the
// summarization prompt. Tool plumbing is reduced to what matters for
// context: tool results keep their content, call requests are elided.
func renderTranscript(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			fmt.Fprintf(&b, "User: %s\n", m.Content)
		case RoleAssistant:
			if m.Content != "" {
				fmt.Fprintf(&b, "Assistant: %s\n", m.Content)
			}
		case RoleTool:
			if m.Content != "" {
				fmt.Fprintf(&b, "Tool result: %s\n", m.Content)
			}
		}
	}
	return b.String()
}
