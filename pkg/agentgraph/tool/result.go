package tool

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a transient failure of a tool's backing service.
// Tools wrap their transport errors with it to opt into retries:
//
//	return "", fmt.Errorf("%w: %v", tool.ErrUnavailable, err)
var ErrUnavailable = errors.New("tool backend unavailable")

// FailureKind classifies why a tool call failed.
type FailureKind string

const (
	// FailureUnknownTool means the requested tool is not registered.
	FailureUnknownTool FailureKind = "unknown_tool"

	// FailureBadArguments means the arguments did not satisfy the
	// tool's schema. The tool was never invoked.
	FailureBadArguments FailureKind = "bad_arguments"

	// FailureTimeout means the call exceeded the invoker's per-call
	// timeout.
	FailureTimeout FailureKind = "timeout"

	// FailureUnavailable means the tool's backing service failed after
	// all retry attempts.
	FailureUnavailable FailureKind = "unavailable"

	// FailureInternal means the tool returned a non-transient error.
	FailureInternal FailureKind = "internal"
)

// Failure describes a failed tool call.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("tool failure (%s): %s", f.Kind, f.Message)
}

// Result is the outcome of one tool call. Exactly one of Value or
// Failure is meaningful: when Failure is nil the call succeeded.
type Result struct {
	// CallID echoes the model-assigned call identifier.
	CallID string `json:"call_id"`

	// Name is the tool that was (or would have been) invoked.
	Name string `json:"name"`

	// Value is the tool's output on success.
	Value string `json:"value,omitempty"`

	// Failure is set when the call failed.
	Failure *Failure `json:"failure,omitempty"`

	// Attempts is the number of invocation attempts made.
	Attempts int `json:"attempts"`
}

// OK reports whether the call succeeded.
func (r *Result) OK() bool {
	return r.Failure == nil
}

// Text returns the string the conversation should carry for this call:
// the tool's output on success, a failure description otherwise. The
// model sees failures as ordinary tool messages and can react to them.
func (r *Result) Text() string {
	if r.Failure == nil {
		return r.Value
	}
	return r.Failure.Error()
}

func failed(callID, name string, kind FailureKind, attempts int, format string, args ...any) Result {
	return Result{
		CallID:   callID,
		Name:     name,
		Attempts: attempts,
		Failure: &Failure{
			Kind:    kind,
			Message: fmt.Sprintf(format, args...),
		},
	}
}
