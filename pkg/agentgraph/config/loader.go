package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FromFile loads settings from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json.
//
// Environment variable references of the form ${VAR} or $VAR are
// expanded before parsing. Keys absent from the file keep their
// Default() values.
func FromFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Settings{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into Settings, starting from Default().
func FromYAML(data []byte) (Settings, error) {
	var m map[string]any
	if err := yaml.Unmarshal(expand(data), &m); err != nil {
		return Settings{}, fmt.Errorf("parse yaml: %w", err)
	}
	return overlay(Default(), m)
}

// FromJSON parses JSON data into Settings, starting from Default().
func FromJSON(data []byte) (Settings, error) {
	var m map[string]any
	if err := json.Unmarshal(expand(data), &m); err != nil {
		return Settings{}, fmt.Errorf("parse json: %w", err)
	}
	return overlay(Default(), m)
}

func expand(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// overlay applies parsed file values on top of base settings.
func overlay(base Settings, m map[string]any) (Settings, error) {
	s := base
	s.Model = asString(m, "model", s.Model)
	s.MaxTokens = asInt(m, "max_tokens", s.MaxTokens)
	s.Temperature = asFloat(m, "temperature", s.Temperature)
	s.SummarizeThreshold = asInt(m, "summarize_threshold", s.SummarizeThreshold)
	s.RecencyWindow = asInt(m, "recency_window", s.RecencyWindow)
	s.ToolTimeout = asDuration(m, "tool_timeout", s.ToolTimeout)
	s.ToolMaxAttempts = asInt(m, "tool_max_attempts", s.ToolMaxAttempts)
	s.MaxConcurrentRuns = asInt(m, "max_concurrent_runs", s.MaxConcurrentRuns)
	s.MaxRunsPerUser = asInt(m, "max_runs_per_user", s.MaxRunsPerUser)
	s.StreamBuffer = asInt(m, "stream_buffer", s.StreamBuffer)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func asString(m map[string]any, key, defaultVal string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return defaultVal
}

func asInt(m map[string]any, key string, defaultVal int) int {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

func asFloat(m map[string]any, key string, defaultVal float64) float64 {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// asDuration accepts duration strings ("30s") or bare numbers, which
// are interpreted as seconds.
func asDuration(m map[string]any, key string, defaultVal time.Duration) time.Duration {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	}
	return defaultVal
}
