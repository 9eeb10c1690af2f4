package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

func TestMetricsRecorder_ExportsThroughSDK(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := observability.NewMetricsRecorder()
	ctx := context.Background()

	m.RecordRun(ctx, true, 120*time.Millisecond)
	m.RecordNode(ctx, "reasoning", 40*time.Millisecond, nil)
	m.RecordNode(ctx, "tool_execution", 10*time.Millisecond, errors.New("boom"))
	m.RecordToolCall(ctx, "web_search", true, 80*time.Millisecond)
	m.RecordCheckpoint(ctx, 2048)
	m.RecordTokens(ctx, 100, 30)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, data := range sm.Metrics {
			names[data.Name] = true
		}
	}
	assert.True(t, names["agentgraph.runs"])
	assert.True(t, names["agentgraph.run.latency_ms"])
	assert.True(t, names["agentgraph.node.executions"])
	assert.True(t, names["agentgraph.node.errors"])
	assert.True(t, names["agentgraph.tool.calls"])
	assert.True(t, names["agentgraph.checkpoint.size_bytes"])
	assert.True(t, names["agentgraph.llm.tokens"])
}

func TestSpanManager_ExportsThroughSDK(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	sm := observability.NewSpanManager()

	ctx, runSpan := sm.StartRunSpan(context.Background(), "t1", "r1")
	_, nodeSpan := sm.StartNodeSpan(ctx, "reasoning")
	sm.EndSpanWithError(nodeSpan, errors.New("boom"))
	sm.EndSpanWithError(runSpan, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "agentgraph.node.reasoning", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	assert.Equal(t, "agentgraph.run", spans[1].Name())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
}
