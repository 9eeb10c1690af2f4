package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Client against any OpenAI-compatible
// chat-completions endpoint (OpenAI, Groq, OpenRouter, local gateways).
type OpenAI struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*OpenAI)

// WithAPIKey sets the API key. Falls back to OPENAI_API_KEY when unset.
func WithAPIKey(key string) OpenAIOption {
	return func(p *OpenAI) {
		p.client = openai.NewClient(option.WithAPIKey(key))
	}
}

// WithEndpoint sets both API key and base URL, for OpenAI-compatible
// providers like Groq or OpenRouter.
func WithEndpoint(key, baseURL string) OpenAIOption {
	return func(p *OpenAI) {
		p.client = openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(baseURL),
		)
	}
}

// WithDefaultModel sets the model used when the request doesn't name one.
func WithDefaultModel(model string) OpenAIOption {
	return func(p *OpenAI) { p.model = model }
}

// WithMaxTokens caps the response length when the request doesn't.
func WithMaxTokens(n int) OpenAIOption {
	return func(p *OpenAI) { p.maxTokens = n }
}

// WithTemperature sets the sampling temperature. Default 0.
func WithTemperature(t float64) OpenAIOption {
	return func(p *OpenAI) { p.temperature = t }
}

// NewOpenAI creates an OpenAI-compatible client.
func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	p := &OpenAI{
		client: openai.NewClient(),
		model:  openai.ChatModelGPT4oMini,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete implements Client.
func (p *OpenAI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	completion, err := p.client.Chat.Completions.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := completion.Choices[0]
	resp := &CompletionResponse{
		Content:      choice.Message.Content,
		Model:        completion.Model,
		FinishReason: string(choice.FinishReason),
		Duration:     time.Since(start),
		Usage: TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	return resp, nil
}

// Stream implements Client. Content deltas are forwarded as they arrive;
// tool calls and usage are accumulated and delivered in the final chunk.
func (p *OpenAI) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildParams(req))

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)

		acc := openai.ChatCompletionAccumulator{}
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case ch <- StreamChunk{Content: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				select {
				case ch <- StreamChunk{Error: ctx.Err()}:
				default:
				}
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case ch <- StreamChunk{Error: fmt.Errorf("chat stream: %w", err)}:
			case <-ctx.Done():
			}
			return
		}

		final := StreamChunk{
			Done: true,
			Usage: &TokenUsage{
				InputTokens:  int(acc.Usage.PromptTokens),
				OutputTokens: int(acc.Usage.CompletionTokens),
				TotalTokens:  int(acc.Usage.TotalTokens),
			},
		}
		if len(acc.Choices) > 0 {
			for _, tc := range acc.Choices[0].Message.ToolCalls {
				final.ToolCalls = append(final.ToolCalls, ToolCall{
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: json.RawMessage(tc.Function.Arguments),
				})
			}
		}

		select {
		case ch <- final:
		case <-ctx.Done():
			select {
			case ch <- StreamChunk{Error: ctx.Err()}:
			default:
			}
		}
	}()

	return ch, nil
}

// buildParams converts a CompletionRequest into OpenAI params.
func (p *OpenAI) buildParams(req CompletionRequest) openai.ChatCompletionNewParams {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: convertMessages(req),
		Tools:    convertTools(req.Tools),
	}

	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if req.Temperature > 0 || p.temperature > 0 {
		t := p.temperature
		if req.Temperature > 0 {
			t = req.Temperature
		}
		params.Temperature = openai.Float(t)
	}

	return params
}

// convertMessages maps wire messages onto the OpenAI param union.
// Assistant messages that requested tool calls keep their tool_calls so
// replayed histories remain valid for the API.
func convertMessages(req CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		out = append(out, openai.SystemMessage(req.SystemPrompt))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(m.Content),
				}
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}

	return out
}

// convertTools maps tool schemas onto OpenAI function definitions.
func convertTools(tools []Tool) []openai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}

	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		var paramSchema map[string]any
		if len(t.Parameters) > 0 {
			_ = json.Unmarshal(t.Parameters, &paramSchema)
		}

		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(paramSchema),
			},
		})
	}

	return out
}

// Compile-time interface check.
var _ Client = (*OpenAI)(nil)
