package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) tool.Tool {
	return &tool.Func{
		ToolName:        name,
		ToolDescription: "echoes its input",
		ToolSchema: json.RawMessage(`{
			"type": "object",
			"properties": {"text": {"type": "string"}},
			"required": ["text"]
		}`),
		Fn: func(_ context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", err
			}
			return params.Text, nil
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := tool.NewRegistry()
	r.Register(echoTool("echo"))

	got, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateNamePanics(t *testing.T) {
	r := tool.NewRegistry()
	r.Register(echoTool("echo"))

	assert.Panics(t, func() {
		r.Register(echoTool("echo"))
	})
}

func TestRegistry_InvalidRegistrations(t *testing.T) {
	r := tool.NewRegistry()

	assert.Panics(t, func() { r.Register(nil) })
	assert.Panics(t, func() { r.Register(echoTool("")) })
	assert.Panics(t, func() { r.Register(echoTool("has space")) })
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := tool.NewRegistry()
	r.Register(echoTool("zeta")).
		Register(echoTool("alpha")).
		Register(echoTool("mid"))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
	assert.Equal(t, 3, r.Len())

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name())
}

func TestFunc_Call(t *testing.T) {
	echo := echoTool("echo")

	out, err := echo.Call(context.Background(), json.RawMessage(`{"text":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}
