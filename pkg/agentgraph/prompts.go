package agentgraph

import (
	"fmt"
	"strings"
)

// defaultSystemPrompt is the assistant persona used when the caller
// does not override it.
const defaultSystemPrompt = `You are a helpful AI assistant that helps users by providing accurate and concise information.

Guidelines:
- Provide clear, accurate, and contextually relevant answers based on the user's input.
- Use available tools to ensure responses are current and reliable, and cite them as sources.
- Keep responses focused, concise, and directly related to the conversation.
- If information is insufficient, politely ask for clarification.
- Always format your response in Markdown.
- Do NOT answer malicious, harmful, or inappropriate requests.`

// updateSummaryPrompt asks the model to fold new messages into an
// existing summary.
const updateSummaryPrompt = `Expand the summary by incorporating the conversation above while preserving context, key points, and user intent.
Rework the summary if needed. Ensure that no critical information is lost and that the conversation can continue naturally without gaps.
Keep the summary concise yet informative, removing unnecessary repetition while maintaining clarity.
Only return the updated summary. Do not add explanations, section headers, or extra commentary.

Current summary:
%s`

// freshSummaryPrompt asks the model for an initial summary when no
// prior summary exists.
const freshSummaryPrompt = `Summarize the conversation above while preserving full context, key points, and user intent.
Your response should be concise yet detailed enough to ensure seamless continuation of the discussion.
Avoid redundancy, maintain clarity, and retain all necessary details for future exchanges.
Only return the summarized content. Do not add explanations, section headers, or extra commentary.`

// summaryInstruction returns the summarization prompt appropriate for
// the prior summary.
func summaryInstruction(prior string) string {
	if prior == "" {
		return freshSummaryPrompt
	}
	return fmt.Sprintf(updateSummaryPrompt, prior)
}

// reasoningSystemPrompt assembles the system prompt for the reasoning
// node: persona, then prior-conversation summary, then long-term
// memory facts, each section present only when non-empty.
func reasoningSystemPrompt(persona, summary string, facts []string) string {
	var b strings.Builder
	b.WriteString(persona)

	if summary != "" {
		b.WriteString("\n\nSummary of the conversation so far:\n")
		b.WriteString(summary)
	}

	if len(facts) > 0 {
		b.WriteString("\n\nKnown facts about the user:\n")
		for _, f := range facts {
			b.WriteString("- ")
			b.WriteString(f)
			b.WriteString("\n")
		}
	}

	return b.String()
}
