package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the engine tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("agentgraph")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartRunSpan starts a span for an entire conversation turn.
	StartRunSpan(ctx context.Context, threadID, runID string) (context.Context, trace.Span)

	// StartNodeSpan starts a span for a node execution.
	// The node span should be a child of the run span.
	StartNodeSpan(ctx context.Context, node string) (context.Context, trace.Span)

	// StartToolSpan starts a span for a tool invocation.
	StartToolSpan(ctx context.Context, name, callID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRunSpan starts a span for an entire conversation turn.
func (m *otelSpanManager) StartRunSpan(ctx context.Context, threadID, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "agentgraph.run",
		trace.WithAttributes(
			attribute.String("thread.id", threadID),
			attribute.String("run.id", runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartNodeSpan starts a span for a node execution.
func (m *otelSpanManager) StartNodeSpan(ctx context.Context, node string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "agentgraph.node."+node,
		trace.WithAttributes(
			attribute.String("node", node),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartToolSpan starts a span for a tool invocation.
func (m *otelSpanManager) StartToolSpan(ctx context.Context, name, callID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "agentgraph.tool."+name,
		trace.WithAttributes(
			attribute.String("tool", name),
			attribute.String("call.id", callID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
