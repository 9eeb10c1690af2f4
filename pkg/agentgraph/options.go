package agentgraph

import (
	"log/slog"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/memstore"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLLM sets the completion client. Required.
func WithLLM(client llm.Client) Option {
	return func(e *Engine) {
		e.client = client
	}
}

// WithTools sets the tool registry available to the model.
func WithTools(registry *tool.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithCheckpointStore sets the checkpoint store.
// Defaults to an in-memory store.
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(e *Engine) {
		e.checkpoints = store
	}
}

// WithMemoryStore sets the long-term memory store.
// Defaults to an in-memory store.
func WithMemoryStore(store memstore.Store) Option {
	return func(e *Engine) {
		e.memory = store
	}
}

// WithSummarizer overrides the default LLM-backed summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// WithMemoryPolicy overrides DefaultMemoryPolicy.
func WithMemoryPolicy(p MemoryPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithSettings sets the engine's tunable parameters.
// Defaults to config.Default().
func WithSettings(s config.Settings) Option {
	return func(e *Engine) {
		e.settings = s
	}
}

// WithSystemPrompt overrides the default assistant persona.
func WithSystemPrompt(prompt string) Option {
	return func(e *Engine) {
		e.systemPrompt = prompt
	}
}

// WithLogger enables structured logging. A nil logger disables it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Defaults to observability.NoopMetrics{}.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracing enables OTel span creation for runs, nodes, and tool
// calls.
func WithTracing(sm observability.SpanManager) Option {
	return func(e *Engine) {
		e.spans = sm
		e.tracing = true
	}
}
