package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	s := config.Default()
	assert.NoError(t, s.Validate())
	assert.Equal(t, 30, s.SummarizeThreshold)
	assert.Equal(t, 6, s.RecencyWindow)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Settings)
	}{
		{"zero threshold", func(s *config.Settings) { s.SummarizeThreshold = 0 }},
		{"zero recency window", func(s *config.Settings) { s.RecencyWindow = 0 }},
		{"zero attempts", func(s *config.Settings) { s.ToolMaxAttempts = 0 }},
		{"negative timeout", func(s *config.Settings) { s.ToolTimeout = -time.Second }},
		{"negative global cap", func(s *config.Settings) { s.MaxConcurrentRuns = -1 }},
		{"negative user cap", func(s *config.Settings) { s.MaxRunsPerUser = -1 }},
		{"zero stream buffer", func(s *config.Settings) { s.StreamBuffer = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Default()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestFromYAML(t *testing.T) {
	s, err := config.FromYAML([]byte(`
model: gpt-4o
temperature: 0.2
summarize_threshold: 50
tool_timeout: 10s
max_runs_per_user: 2
`))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", s.Model)
	assert.Equal(t, 0.2, s.Temperature)
	assert.Equal(t, 50, s.SummarizeThreshold)
	assert.Equal(t, 10*time.Second, s.ToolTimeout)
	assert.Equal(t, 2, s.MaxRunsPerUser)

	// Unset keys keep defaults.
	assert.Equal(t, 6, s.RecencyWindow)
	assert.Equal(t, 3, s.ToolMaxAttempts)
}

func TestFromYAML_NumericDurationIsSeconds(t *testing.T) {
	s, err := config.FromYAML([]byte("tool_timeout: 15\n"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, s.ToolTimeout)
}

func TestFromYAML_InvalidValuesRejected(t *testing.T) {
	_, err := config.FromYAML([]byte("summarize_threshold: 0\n"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	s, err := config.FromJSON([]byte(`{"model": "gpt-4o-mini", "recency_window": 4}`))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", s.Model)
	assert.Equal(t, 4, s.RecencyWindow)
}

func TestFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_AGENT_MODEL", "gpt-4o")

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: ${TEST_AGENT_MODEL}\n"), 0o644))

	s, err := config.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", s.Model)
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	require.NoError(t, os.WriteFile(path, []byte("model = \"x\"\n"), 0o644))

	_, err := config.FromFile(path)
	assert.Error(t, err)
}

func TestFromFile_Missing(t *testing.T) {
	_, err := config.FromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
