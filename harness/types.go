package harness

import (
	"github.com/roach88/graft/object"
)

// Trace event types.
const (
	EventNew      = "new"
	EventApply    = "apply"
	EventCall     = "call"
	EventGet      = "get"
	EventSet      = "set"
	EventCallType = "call_type"
)

// OutcomeOK marks an event whose step completed without error. Failed
// steps carry the model error code instead (PROTECTED_TYPE,
// UNKNOWN_MEMBER, ...), or "error" for errors outside the model.
const OutcomeOK = "ok"

// TraceEvent is a single event in the execution trace.
// Serialized via TraceSnapshot.MarshalCanonical for golden comparison.
type TraceEvent struct {
	// Type is the event kind: new, apply, call, get, set, or call_type.
	Type string `json:"type"`

	// Bundle is the bundle name (apply events).
	Bundle string `json:"bundle,omitempty"`

	// Target is the class name (new, apply, and call_type events).
	Target string `json:"target,omitempty"`

	// Object is the scenario binding name of the receiving instance
	// (new, call, get, and set events).
	Object string `json:"object,omitempty"`

	// Member is the member name (call, get, set, and call_type events).
	Member string `json:"member,omitempty"`

	// Args holds positional arguments (new, call, and call_type events).
	Args object.List `json:"args,omitempty"`

	// Value holds the assigned value (set events).
	Value object.Value `json:"value,omitempty"`

	// Outcome is OutcomeOK or the error code the step failed with.
	Outcome string `json:"outcome"`

	// Result holds the produced value, frozen at event time. Instances
	// are captured as {$class, $id, attrs} snapshots.
	Result object.Value `json:"result,omitempty"`

	// Seq is the deterministic sequence number of this event.
	Seq int64 `json:"seq"`
}

// Result contains the outcome of running a scenario.
type Result struct {
	// Pass indicates whether every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains the ordered events the run produced.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a Result that starts passing with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records an error and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
