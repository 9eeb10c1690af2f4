// Package config holds the engine's tunable settings and loaders for
// YAML and JSON configuration files.
package config

import (
	"fmt"
	"time"
)

// Settings are the engine's tunable parameters. The zero value is not
// usable; start from Default() and override.
type Settings struct {
	// Model is the default model identifier passed to the LLM client.
	Model string `yaml:"model" json:"model"`

	// MaxTokens caps completion length. Zero lets the provider decide.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// SummarizeThreshold is the conversation size estimate above which
	// older history is folded into the summary before a reasoning pass.
	SummarizeThreshold int `yaml:"summarize_threshold" json:"summarize_threshold"`

	// RecencyWindow is the number of most recent messages kept verbatim
	// when older history is folded into the summary.
	RecencyWindow int `yaml:"recency_window" json:"recency_window"`

	// ToolTimeout is the per-call deadline for tool invocations.
	ToolTimeout time.Duration `yaml:"tool_timeout" json:"tool_timeout"`

	// ToolMaxAttempts is the invocation attempt cap for transient tool
	// failures (including the initial attempt).
	ToolMaxAttempts int `yaml:"tool_max_attempts" json:"tool_max_attempts"`

	// MaxConcurrentRuns is the global cap on in-flight runs.
	// Zero means unlimited.
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" json:"max_concurrent_runs"`

	// MaxRunsPerUser is the per-user cap on in-flight runs.
	// Zero means unlimited.
	MaxRunsPerUser int `yaml:"max_runs_per_user" json:"max_runs_per_user"`

	// StreamBuffer is the event channel capacity per run.
	StreamBuffer int `yaml:"stream_buffer" json:"stream_buffer"`
}

// Default returns the standard settings.
func Default() Settings {
	return Settings{
		Model:              "gpt-4o-mini",
		Temperature:        0.7,
		SummarizeThreshold: 30,
		RecencyWindow:      6,
		ToolTimeout:        30 * time.Second,
		ToolMaxAttempts:    3,
		MaxConcurrentRuns:  64,
		MaxRunsPerUser:     4,
		StreamBuffer:       64,
	}
}

// Validate checks the settings for internally inconsistent values.
func (s Settings) Validate() error {
	if s.SummarizeThreshold < 1 {
		return fmt.Errorf("summarize_threshold must be >= 1, got %d", s.SummarizeThreshold)
	}
	if s.RecencyWindow < 1 {
		return fmt.Errorf("recency_window must be >= 1, got %d", s.RecencyWindow)
	}
	if s.ToolMaxAttempts < 1 {
		return fmt.Errorf("tool_max_attempts must be >= 1, got %d", s.ToolMaxAttempts)
	}
	if s.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout cannot be negative, got %s", s.ToolTimeout)
	}
	if s.MaxConcurrentRuns < 0 {
		return fmt.Errorf("max_concurrent_runs cannot be negative, got %d", s.MaxConcurrentRuns)
	}
	if s.MaxRunsPerUser < 0 {
		return fmt.Errorf("max_runs_per_user cannot be negative, got %d", s.MaxRunsPerUser)
	}
	if s.StreamBuffer < 1 {
		return fmt.Errorf("stream_buffer must be >= 1, got %d", s.StreamBuffer)
	}
	return nil
}
