// Package observability provides structured logging, metrics, and
// distributed tracing for the conversation engine.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every logging helper accepts a nil logger and does nothing.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds conversation context to a logger.
// Returns a new logger with thread_id and run_id fields.
func EnrichLogger(logger *slog.Logger, threadID, runID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("thread_id", threadID),
		slog.String("run_id", runID),
	)
}

// LogRunStart logs the start of a conversation turn.
func LogRunStart(logger *slog.Logger, threadID, runID string, step int) {
	if logger == nil {
		return
	}
	logger.Info("run starting",
		slog.String("thread_id", threadID),
		slog.String("run_id", runID),
		slog.Int("step", step),
	)
}

// LogRunComplete logs successful turn completion.
func LogRunComplete(logger *slog.Logger, threadID, runID string, durationMs float64, steps int) {
	if logger == nil {
		return
	}
	logger.Info("run completed",
		slog.String("thread_id", threadID),
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("steps", steps),
	)
}

// LogRunError logs turn failure.
func LogRunError(logger *slog.Logger, threadID, runID string, err error, lastNode string) {
	if logger == nil {
		return
	}
	logger.Error("run failed",
		slog.String("thread_id", threadID),
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.String("last_node", lastNode),
	)
}

// LogNodeStart logs node execution start.
func LogNodeStart(logger *slog.Logger, node string, step int) {
	if logger == nil {
		return
	}
	logger.Debug("node starting",
		slog.String("node", node),
		slog.Int("step", step),
	)
}

// LogNodeComplete logs successful node completion.
func LogNodeComplete(logger *slog.Logger, node string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed",
		slog.String("node", node),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCheckpoint logs checkpoint append.
func LogCheckpoint(logger *slog.Logger, threadID string, step int, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint appended",
		slog.String("thread_id", threadID),
		slog.Int("step", step),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogToolCall logs a completed tool invocation.
func LogToolCall(logger *slog.Logger, name, callID string, ok bool, attempts int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("tool call finished",
		slog.String("tool", name),
		slog.String("call_id", callID),
		slog.Bool("ok", ok),
		slog.Int("attempts", attempts),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSummarize logs a history fold.
func LogSummarize(logger *slog.Logger, threadID string, folded, kept int) {
	if logger == nil {
		return
	}
	logger.Info("history summarized",
		slog.String("thread_id", threadID),
		slog.Int("messages_folded", folded),
		slog.Int("messages_kept", kept),
	)
}

// LogSummarizeError logs summarization failure (non-fatal).
func LogSummarizeError(logger *slog.Logger, threadID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("summarization failed",
		slog.String("thread_id", threadID),
		slog.String("error", err.Error()),
	)
}

// LogMemoryWrite logs a long-term memory upsert.
func LogMemoryWrite(logger *slog.Logger, userID, key string) {
	if logger == nil {
		return
	}
	logger.Debug("memory record written",
		slog.String("user_id", userID),
		slog.String("key", key),
	)
}

// LogMemoryError logs memory store failure (non-fatal).
func LogMemoryError(logger *slog.Logger, userID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("memory write failed",
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
