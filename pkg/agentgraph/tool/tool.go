// Package tool provides the tool execution layer: a registry of named
// tools, an invoker that applies timeouts and retries, and the built-in
// conversation tools.
//
// A failed tool call is a normal, representable outcome of a
// conversation, not an engine error: the invoker returns a Result that
// is either a success value or a typed failure, and the engine turns
// both into tool messages the model can react to.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tool is a named capability the reasoning model may invoke.
type Tool interface {
	// Name returns the tool's unique identifier (e.g. "web_search").
	Name() string

	// Description tells the model what the tool does.
	Description() string

	// Schema returns the JSON Schema for the tool's arguments.
	Schema() json.RawMessage

	// Call executes the tool. A returned error wrapping ErrUnavailable
	// marks a transient transport failure eligible for retry.
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the tools available to a conversation. It is safe
// for concurrent use, though typically all tools are registered at
// startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
// Returns the registry for method chaining.
//
// Panics if:
//   - t is nil
//   - the tool name is empty or contains whitespace
//   - a tool with the same name is already registered
func (r *Registry) Register(t Tool) *Registry {
	if t == nil {
		panic("tool: cannot register nil tool")
	}

	name := t.Name()
	if name == "" {
		panic("tool: tool name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		panic("tool: tool name cannot contain whitespace")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool: duplicate tool name: %s", name))
	}

	r.tools[name] = t
	return r
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered tools, ordered by name.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name() < tools[j].Name()
	})
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Func adapts a plain function into a Tool.
type Func struct {
	ToolName        string
	ToolDescription string
	ToolSchema      json.RawMessage
	Fn              func(ctx context.Context, args json.RawMessage) (string, error)
}

// Name implements Tool.
func (f *Func) Name() string { return f.ToolName }

// Description implements Tool.
func (f *Func) Description() string { return f.ToolDescription }

// Schema implements Tool.
func (f *Func) Schema() json.RawMessage { return f.ToolSchema }

// Call implements Tool.
func (f *Func) Call(ctx context.Context, args json.RawMessage) (string, error) {
	return f.Fn(ctx, args)
}
