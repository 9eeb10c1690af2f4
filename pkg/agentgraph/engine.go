package agentgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/memstore"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// Node names of the conversation state machine. Each completed node
// produces one checkpoint; End is the terminal marker and never
// executes.
const (
	NodeReasoning    = "reasoning"
	NodeTools        = "tool_execution"
	NodeSummarize    = "summarizing"
	NodeMemoryUpdate = "memory_update"
	End              = "__end__"
)

// Engine executes conversation turns as a fixed state machine:
// reasoning, tool execution (looping back to reasoning), history
// summarization ahead of any over-threshold reasoning pass, and a
// memory update. Each node transition is checkpointed so a crashed
// turn resumes where it stopped.
type Engine struct {
	client       llm.Client
	registry     *tool.Registry
	invoker      *tool.Invoker
	checkpoints  checkpoint.Store
	memory       memstore.Store
	summarizer   Summarizer
	policy       MemoryPolicy
	settings     config.Settings
	systemPrompt string
	guard        *guard
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
	tracing      bool

	llmTools []llm.Tool
}

// New creates an Engine. WithLLM is required; everything else has
// working defaults (in-memory stores, no tools, no observability).
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		settings:     config.Default(),
		policy:       DefaultMemoryPolicy,
		systemPrompt: defaultSystemPrompt,
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.client == nil {
		return nil, fmt.Errorf("agentgraph: LLM client is required")
	}
	if err := e.settings.Validate(); err != nil {
		return nil, fmt.Errorf("agentgraph: %w", err)
	}

	if e.registry == nil {
		e.registry = tool.NewRegistry()
	}
	if e.checkpoints == nil {
		e.checkpoints = checkpoint.NewMemoryStore()
	}
	if e.memory == nil {
		e.memory = memstore.NewMemoryStore()
	}
	if e.summarizer == nil {
		e.summarizer = NewSummarizer(e.client, e.settings.Model)
	}

	invokerCfg := tool.DefaultInvokerConfig
	invokerCfg.Timeout = e.settings.ToolTimeout
	invokerCfg.MaxAttempts = e.settings.ToolMaxAttempts
	e.invoker = tool.NewInvoker(e.registry, invokerCfg)

	e.guard = newGuard(e.settings.MaxConcurrentRuns, e.settings.MaxRunsPerUser)

	for _, t := range e.registry.All() {
		e.llmTools = append(e.llmTools, llm.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}

	return e, nil
}

// RunRequest submits one user message to a thread.
type RunRequest struct {
	// ThreadID identifies the conversation. A new thread ID is
	// generated when empty; read it back via Stream.ThreadID().
	ThreadID string

	// UserID identifies the user for memory records and admission caps.
	UserID string

	// Message is the user's input. Must be non-empty.
	Message string
}

// Run starts one conversation turn and returns its event stream.
//
// Admission is checked synchronously: Run fails fast with
// ErrThreadBusy, ErrCapacity, or ErrUserCapacity without starting
// anything. If the thread has prior checkpoints, the turn resumes from
// the latest one. The turn itself executes on a background goroutine;
// the returned Stream is the only way to observe it.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*Stream, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	if req.ThreadID == "" {
		req.ThreadID = uuid.NewString()
	}

	if err := e.guard.acquire(req.ThreadID, req.UserID); err != nil {
		return nil, err
	}

	state, step, startNode, err := e.loadOrCreate(ctx, req)
	if err != nil {
		e.guard.release(req.ThreadID, req.UserID)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	stream := newStream(req.ThreadID, uuid.NewString(), e.settings.StreamBuffer, cancel)

	go e.run(runCtx, cancel, stream, state, startNode, step, req.UserID)

	return stream, nil
}

// InFlight returns the number of currently executing runs.
func (e *Engine) InFlight() int {
	return e.guard.inFlight()
}

// loadOrCreate builds the starting state for a turn: a fresh state for
// an unknown thread, or the latest checkpointed state with the new user
// message appended. For a thread that crashed mid-turn, the start node
// is the checkpoint's recorded next node.
func (e *Engine) loadOrCreate(ctx context.Context, req RunRequest) (*GraphState, int, string, error) {
	latest, err := e.checkpoints.Latest(ctx, req.ThreadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		state := &GraphState{ThreadID: req.ThreadID, UserID: req.UserID}
		state.Append(Message{Role: RoleUser, Content: req.Message})
		return state, 0, NodeReasoning, nil
	}
	if err != nil {
		return nil, 0, "", &PersistenceError{ThreadID: req.ThreadID, Op: "load", Err: err}
	}

	var state GraphState
	if err := json.Unmarshal(latest.State, &state); err != nil {
		return nil, 0, "", &PersistenceError{ThreadID: req.ThreadID, Step: latest.Step, Op: "load", Err: err}
	}
	state.ThreadID = req.ThreadID
	if req.UserID != "" {
		state.UserID = req.UserID
	}
	state.Append(Message{Role: RoleUser, Content: req.Message})

	start := latest.NextNode
	if start == "" || start == End {
		start = NodeReasoning
	}
	return &state, latest.Step, start, nil
}

// run drives the state machine to End, checkpointing after every node.
// Cancellation is honored at suspension points: before each node,
// between streamed tokens, and between tool calls. A cancelled run
// appends no further checkpoints.
func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, s *Stream, state *GraphState, current string, step int, userID string) {
	defer cancel()
	defer e.guard.release(state.ThreadID, userID)

	logger := observability.EnrichLogger(e.logger, state.ThreadID, s.RunID())
	observability.LogRunStart(logger, state.ThreadID, s.RunID(), step)

	startTime := time.Now()
	execCtx := ctx
	var runSpan trace.Span
	if e.tracing {
		execCtx, runSpan = e.spans.StartRunSpan(ctx, state.ThreadID, s.RunID())
	}

	var runErr error
	steps := 0
	prev := ""
	for current != End {
		// An over-threshold history is folded into the summary before
		// every reasoning pass: fresh turns, resumed turns, and
		// re-entries from tool execution alike. A pass that follows a
		// summarize attempt proceeds as-is, so a failed fold cannot
		// loop.
		if current == NodeReasoning && prev != NodeSummarize && e.shouldSummarize(state) {
			current = NodeSummarize
		}

		if err := ctx.Err(); err != nil {
			runErr = &CancellationError{Node: current, Cause: err}
			break
		}
		if !s.emit(ctx, Event{Type: EventNodeStarted, Node: current}) {
			runErr = &CancellationError{Node: current, Cause: ctx.Err()}
			break
		}

		observability.LogNodeStart(logger, current, step+1)

		nodeCtx := execCtx
		var nodeSpan trace.Span
		if e.tracing {
			nodeCtx, nodeSpan = e.spans.StartNodeSpan(execCtx, current)
		}

		nodeStart := time.Now()
		next, err := e.executeNode(nodeCtx, s, state, current, logger)
		nodeDuration := time.Since(nodeStart)

		e.metrics.RecordNode(ctx, current, nodeDuration, err)
		if e.tracing {
			e.spans.EndSpanWithError(nodeSpan, err)
		}
		if err != nil {
			runErr = err
			break
		}
		observability.LogNodeComplete(logger, current, float64(nodeDuration.Milliseconds()))

		// A node that finished after cancellation is not checkpointed;
		// the turn replays it on resume.
		if err := ctx.Err(); err != nil {
			runErr = &CancellationError{Node: current, Cause: err}
			break
		}

		step++
		if err := e.saveCheckpoint(ctx, state, step, current, next, logger); err != nil {
			runErr = err
			break
		}

		steps++
		prev = current
		current = next
	}

	duration := time.Since(startTime)
	e.metrics.RecordRun(context.WithoutCancel(ctx), runErr == nil, duration)
	if e.tracing {
		e.spans.EndSpanWithError(runSpan, runErr)
	}

	if runErr != nil {
		observability.LogRunError(logger, state.ThreadID, s.RunID(), runErr, current)
		s.terminate(Event{Type: EventRunFailed, Node: current, Err: runErr})
		return
	}

	observability.LogRunComplete(logger, state.ThreadID, s.RunID(), float64(duration.Milliseconds()), steps)
	s.terminate(Event{Type: EventRunCompleted, Answer: state.LastAssistantContent()})
}

// executeNode runs a single node and returns the next node name.
func (e *Engine) executeNode(ctx context.Context, s *Stream, state *GraphState, node string, logger *slog.Logger) (string, error) {
	switch node {
	case NodeReasoning:
		return e.runReasoning(ctx, s, state, logger)
	case NodeTools:
		return e.runTools(ctx, s, state, logger)
	case NodeSummarize:
		return e.runSummarize(ctx, state, logger)
	case NodeMemoryUpdate:
		return e.runMemoryUpdate(ctx, state, logger)
	default:
		return "", &NodeError{Node: node, Err: fmt.Errorf("unknown node")}
	}
}

// runReasoning streams one completion, emitting each fragment as a
// token event, and appends the assistant's message. Routes to tool
// execution when the model requested tools.
func (e *Engine) runReasoning(ctx context.Context, s *Stream, state *GraphState, logger *slog.Logger) (string, error) {
	req := llm.CompletionRequest{
		SystemPrompt: reasoningSystemPrompt(e.systemPrompt, state.Summary, e.memoryFacts(ctx, state.UserID, logger)),
		Messages:     toLLMMessages(state.Messages),
		Model:        e.settings.Model,
		MaxTokens:    e.settings.MaxTokens,
		Temperature:  e.settings.Temperature,
		Tools:        e.llmTools,
	}

	chunks, err := e.client.Stream(ctx, req)
	if err != nil {
		return "", &NodeError{Node: NodeReasoning, Err: err}
	}

	var content strings.Builder
	var toolCalls []llm.ToolCall
	for chunk := range chunks {
		if chunk.Error != nil {
			if ctx.Err() != nil {
				return "", &CancellationError{Node: NodeReasoning, Cause: ctx.Err()}
			}
			return "", &NodeError{Node: NodeReasoning, Err: chunk.Error}
		}
		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			if !s.emit(ctx, Event{Type: EventTokenProduced, Token: chunk.Content}) {
				return "", &CancellationError{Node: NodeReasoning, Cause: ctx.Err()}
			}
		}
		if chunk.Done {
			toolCalls = chunk.ToolCalls
			if chunk.Usage != nil {
				e.metrics.RecordTokens(ctx, int64(chunk.Usage.InputTokens), int64(chunk.Usage.OutputTokens))
			}
		}
	}

	state.Append(Message{
		Role:      RoleAssistant,
		Content:   content.String(),
		ToolCalls: fromLLMToolCalls(toolCalls),
	})

	if len(toolCalls) > 0 {
		return NodeTools, nil
	}
	return NodeMemoryUpdate, nil
}

// shouldSummarize reports whether the transcript has outgrown the
// threshold and holds more than the recency window of messages.
func (e *Engine) shouldSummarize(state *GraphState) bool {
	return state.SizeEstimate() > e.settings.SummarizeThreshold &&
		len(state.Messages) > e.settings.RecencyWindow
}

// runTools executes the pending tool calls of the latest assistant
// message, in order, appending one tool message per call. Failures
// become tool messages too; the model reacts to them on the next
// reasoning pass.
func (e *Engine) runTools(ctx context.Context, s *Stream, state *GraphState, logger *slog.Logger) (string, error) {
	for _, tc := range pendingToolCalls(state) {
		if err := ctx.Err(); err != nil {
			return "", &CancellationError{Node: NodeTools, Cause: err}
		}
		if !s.emit(ctx, Event{Type: EventToolCallStarted, ToolName: tc.Name, ToolCallID: tc.ID}) {
			return "", &CancellationError{Node: NodeTools, Cause: ctx.Err()}
		}

		toolCtx := ctx
		var toolSpan trace.Span
		if e.tracing {
			toolCtx, toolSpan = e.spans.StartToolSpan(ctx, tc.Name, tc.ID)
		}

		callStart := time.Now()
		result := e.invoker.Invoke(toolCtx, tc.ID, tc.Name, tc.Arguments)
		callDuration := time.Since(callStart)

		if e.tracing {
			var callErr error
			if result.Failure != nil {
				callErr = result.Failure
			}
			e.spans.EndSpanWithError(toolSpan, callErr)
		}
		e.metrics.RecordToolCall(ctx, tc.Name, result.OK(), callDuration)
		observability.LogToolCall(logger, tc.Name, tc.ID, result.OK(), result.Attempts,
			float64(callDuration.Milliseconds()))

		if !s.emit(ctx, Event{
			Type:       EventToolCallFinished,
			ToolName:   tc.Name,
			ToolCallID: tc.ID,
			ToolOK:     result.OK(),
			ToolOutput: result.Text(),
		}) {
			return "", &CancellationError{Node: NodeTools, Cause: ctx.Err()}
		}

		state.Append(Message{Role: RoleTool, Content: result.Text(), ToolCallID: tc.ID})
	}

	return NodeReasoning, nil
}

// runSummarize folds messages older than the recency window into the
// running summary, then hands the turn to reasoning. Failure is
// non-fatal: the transcript is left intact and the reasoning pass
// proceeds unsummarized.
func (e *Engine) runSummarize(ctx context.Context, state *GraphState, logger *slog.Logger) (string, error) {
	cut := len(state.Messages) - e.settings.RecencyWindow
	// Never let the kept tail start with a dangling tool result.
	for cut > 0 && cut < len(state.Messages) && state.Messages[cut].Role == RoleTool {
		cut++
	}
	if cut <= 0 || cut >= len(state.Messages) {
		return NodeReasoning, nil
	}

	folded := state.Messages[:cut]
	summary, err := e.summarizer.Summarize(ctx, state.Summary, folded)
	if err != nil {
		if ctx.Err() != nil {
			return "", &CancellationError{Node: NodeSummarize, Cause: ctx.Err()}
		}
		observability.LogSummarizeError(logger, state.ThreadID, err)
		return NodeReasoning, nil
	}

	kept := make([]Message, len(state.Messages)-cut)
	copy(kept, state.Messages[cut:])
	state.Summary = summary
	state.Messages = kept

	observability.LogSummarize(logger, state.ThreadID, cut, len(kept))
	return NodeReasoning, nil
}

// runMemoryUpdate applies the memory policy's facts to the long-term
// store. Writes are best-effort; failures never fail the turn.
func (e *Engine) runMemoryUpdate(ctx context.Context, state *GraphState, logger *slog.Logger) (string, error) {
	if e.policy != nil {
		for _, f := range e.policy(state) {
			if f.Key == "" {
				continue
			}
			if err := e.memory.Upsert(ctx, state.UserID, f.Key, f.Value); err != nil {
				observability.LogMemoryError(logger, state.UserID, err)
				continue
			}
			observability.LogMemoryWrite(logger, state.UserID, f.Key)
		}
	}

	// A trailing user message means this turn resumed a crashed run:
	// the new message still needs an answer.
	if last := state.LastMessage(); last != nil && last.Role == RoleUser {
		return NodeReasoning, nil
	}
	return End, nil
}

// saveCheckpoint serializes the state and appends it at the given step.
// Failures are fatal to the run.
func (e *Engine) saveCheckpoint(ctx context.Context, state *GraphState, step int, producedBy, next string, logger *slog.Logger) error {
	data, err := json.Marshal(state)
	if err != nil {
		return &PersistenceError{ThreadID: state.ThreadID, Step: step, Op: "serialize", Err: err}
	}

	cp := checkpoint.New(state.ThreadID, step, data, producedBy, next)
	if err := e.checkpoints.Append(ctx, cp); err != nil {
		return &PersistenceError{ThreadID: state.ThreadID, Step: step, Op: "append", Err: err}
	}

	observability.LogCheckpoint(logger, state.ThreadID, step, len(data))
	e.metrics.RecordCheckpoint(ctx, int64(len(data)))
	return nil
}

// memoryFacts renders the user's memory records for the system prompt.
// Read failures degrade to an empty fact list.
func (e *Engine) memoryFacts(ctx context.Context, userID string, logger *slog.Logger) []string {
	records, err := e.memory.List(ctx, userID)
	if err != nil {
		observability.LogMemoryError(logger, userID, err)
		return nil
	}
	facts := make([]string, 0, len(records))
	for _, r := range records {
		facts = append(facts, r.Key+": "+r.Value)
	}
	return facts
}

// pendingToolCalls returns the calls of the latest assistant message
// that do not yet have a tool reply. Already-answered calls are skipped
// so a resumed turn does not re-execute them.
func pendingToolCalls(state *GraphState) []ToolCall {
	idx := -1
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == RoleAssistant && len(state.Messages[i].ToolCalls) > 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	answered := make(map[string]struct{})
	for _, m := range state.Messages[idx+1:] {
		if m.Role == RoleTool && m.ToolCallID != "" {
			answered[m.ToolCallID] = struct{}{}
		}
	}

	var pending []ToolCall
	for _, tc := range state.Messages[idx].ToolCalls {
		if _, done := answered[tc.ID]; !done {
			pending = append(pending, tc)
		}
	}
	return pending
}
