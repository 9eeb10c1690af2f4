package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records conversation engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRun records a completed turn with its outcome and duration.
	RecordRun(ctx context.Context, success bool, duration time.Duration)

	// RecordNode records a node execution with its duration and error status.
	RecordNode(ctx context.Context, node string, duration time.Duration, err error)

	// RecordToolCall records a tool invocation outcome.
	RecordToolCall(ctx context.Context, name string, ok bool, duration time.Duration)

	// RecordCheckpoint records a checkpoint append.
	RecordCheckpoint(ctx context.Context, sizeBytes int64)

	// RecordTokens records token usage for a completion.
	RecordTokens(ctx context.Context, prompt, completion int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	runs           metric.Int64Counter
	runLatency     metric.Float64Histogram
	nodeExecutions metric.Int64Counter
	nodeLatency    metric.Float64Histogram
	nodeErrors     metric.Int64Counter
	toolCalls      metric.Int64Counter
	toolLatency    metric.Float64Histogram
	checkpointSize metric.Int64Histogram
	tokens         metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("agentgraph")

	runs, err := meter.Int64Counter("agentgraph.runs",
		metric.WithDescription("Number of conversation turns"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("agentgraph.run.latency_ms",
		metric.WithDescription("Turn latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	nodeExecutions, err := meter.Int64Counter("agentgraph.node.executions",
		metric.WithDescription("Number of node executions"),
	)
	if err != nil {
		return nil, err
	}

	nodeLatency, err := meter.Float64Histogram("agentgraph.node.latency_ms",
		metric.WithDescription("Node execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	nodeErrors, err := meter.Int64Counter("agentgraph.node.errors",
		metric.WithDescription("Number of node execution errors"),
	)
	if err != nil {
		return nil, err
	}

	toolCalls, err := meter.Int64Counter("agentgraph.tool.calls",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}

	toolLatency, err := meter.Float64Histogram("agentgraph.tool.latency_ms",
		metric.WithDescription("Tool invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkpointSize, err := meter.Int64Histogram("agentgraph.checkpoint.size_bytes",
		metric.WithDescription("Checkpoint size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	tokens, err := meter.Int64Counter("agentgraph.llm.tokens",
		metric.WithDescription("Token usage by kind"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		runs:           runs,
		runLatency:     runLatency,
		nodeExecutions: nodeExecutions,
		nodeLatency:    nodeLatency,
		nodeErrors:     nodeErrors,
		toolCalls:      toolCalls,
		toolLatency:    toolLatency,
		checkpointSize: checkpointSize,
		tokens:         tokens,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRun records a completed turn.
func (m *otelMetrics) RecordRun(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordNode records a node execution.
func (m *otelMetrics) RecordNode(ctx context.Context, node string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("node", node),
	}

	m.nodeExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.nodeLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.nodeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordToolCall records a tool invocation.
func (m *otelMetrics) RecordToolCall(ctx context.Context, name string, ok bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("tool", name),
		attribute.Bool("ok", ok),
	}
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCheckpoint records a checkpoint append.
func (m *otelMetrics) RecordCheckpoint(ctx context.Context, sizeBytes int64) {
	m.checkpointSize.Record(ctx, sizeBytes)
}

// RecordTokens records token usage.
func (m *otelMetrics) RecordTokens(ctx context.Context, prompt, completion int64) {
	m.tokens.Add(ctx, prompt, metric.WithAttributes(attribute.String("kind", "prompt")))
	m.tokens.Add(ctx, completion, metric.WithAttributes(attribute.String("kind", "completion")))
}
