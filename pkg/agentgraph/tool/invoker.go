package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// InvokerConfig configures timeout and retry behavior for tool calls.
type InvokerConfig struct {
	// Timeout is the per-call deadline, applied to every attempt
	// individually. Zero disables the timeout.
	Timeout time.Duration

	// MaxAttempts is the maximum number of attempts (including initial).
	// Only errors wrapping ErrUnavailable are retried.
	MaxAttempts int

	// InitialBackoff is the starting backoff duration between attempts.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64
}

// DefaultInvokerConfig is the standard invoker configuration.
var DefaultInvokerConfig = InvokerConfig{
	Timeout:        30 * time.Second,
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// Invoker executes tool calls against a registry, applying argument
// validation, per-call timeouts, and retries for transient failures.
//
// Invoke never returns an error: every outcome, including failure, is a
// Result the conversation can carry forward.
type Invoker struct {
	registry *Registry
	cfg      InvokerConfig
}

// NewInvoker creates an invoker over the given registry.
func NewInvoker(registry *Registry, cfg InvokerConfig) *Invoker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Invoker{registry: registry, cfg: cfg}
}

// Invoke executes one tool call and returns its Result.
//
// The context governs the overall call: if it is cancelled, the attempt
// in flight is abandoned and no further attempts are made.
func (inv *Invoker) Invoke(ctx context.Context, callID, name string, args json.RawMessage) Result {
	t, ok := inv.registry.Get(name)
	if !ok {
		return failed(callID, name, FailureUnknownTool, 0, "no tool registered with name %q", name)
	}

	if msg := validateArgs(t.Schema(), args); msg != "" {
		return failed(callID, name, FailureBadArguments, 0, "%s", msg)
	}

	backoff := inv.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= inv.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return failed(callID, name, FailureUnavailable, attempt-1, "call abandoned: %v", err)
		}

		value, err := inv.attempt(ctx, t, args)
		if err == nil {
			return Result{CallID: callID, Name: name, Value: value, Attempts: attempt}
		}
		lastErr = err

		if errors.Is(err, context.DeadlineExceeded) {
			return failed(callID, name, FailureTimeout, attempt,
				"call exceeded %s timeout", inv.cfg.Timeout)
		}
		if !errors.Is(err, ErrUnavailable) {
			return failed(callID, name, FailureInternal, attempt, "%v", err)
		}

		if attempt < inv.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return failed(callID, name, FailureUnavailable, attempt, "call abandoned: %v", ctx.Err())
			case <-time.After(jittered(backoff, inv.cfg.Jitter)):
			}

			backoff = time.Duration(float64(backoff) * inv.cfg.BackoffFactor)
			if backoff > inv.cfg.MaxBackoff {
				backoff = inv.cfg.MaxBackoff
			}
		}
	}

	return failed(callID, name, FailureUnavailable, inv.cfg.MaxAttempts,
		"all %d attempts failed: %v", inv.cfg.MaxAttempts, lastErr)
}

// attempt runs a single tool call under the per-call timeout.
func (inv *Invoker) attempt(ctx context.Context, t Tool, args json.RawMessage) (string, error) {
	if inv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.cfg.Timeout)
		defer cancel()
	}

	value, err := t.Call(ctx, args)
	if err != nil {
		// Surface the deadline rather than the tool's wrapping of it.
		if ctx.Err() == context.DeadlineExceeded {
			return "", context.DeadlineExceeded
		}
		return "", err
	}
	return value, nil
}

// validateArgs checks the call arguments against the tool's JSON Schema.
// It enforces that args is a JSON object and that every property listed
// in the schema's "required" array is present. Returns a non-empty
// message on violation.
func validateArgs(schema, args json.RawMessage) string {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(args, &parsed); err != nil {
		return fmt.Sprintf("arguments are not a JSON object: %v", err)
	}

	if len(schema) == 0 {
		return ""
	}

	var s struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schema, &s); err != nil {
		return ""
	}

	for _, field := range s.Required {
		if _, ok := parsed[field]; !ok {
			return fmt.Sprintf("missing required argument %q", field)
		}
	}
	return ""
}

// jittered returns the backoff duration with jitter applied.
func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	amount := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + amount)
}
