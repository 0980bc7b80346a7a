package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/graft/object"
)

// Scenario defines a conformance test scenario.
// Scenarios exercise registration flows against catalog fixtures and
// assert on the resulting trace, member tables, and instance state.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden traces are stored
	// under testdata/golden/{name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog names the fixture set the scenario runs against.
	Catalog string `yaml:"catalog"`

	// Setup instantiates fixture classes before the main flow.
	// Setup steps are assumed to succeed.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Flow contains the main test flow - registrations and member
	// accesses with expected outcomes.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace, member tables, and state.
	// Supported types: trace_contains, trace_order, member_table, attr_equals
	Assertions []Assertion `yaml:"assertions"`
}

// SetupStep instantiates a catalog class and binds the instance to a
// name that later steps can reference.
type SetupStep struct {
	// New is the class name to instantiate.
	New string `yaml:"new"`

	// As is the binding name for the new instance.
	As string `yaml:"as"`

	// Args are the positional initializer arguments.
	Args []interface{} `yaml:"args,omitempty"`
}

// FlowStep represents a step in the main test flow.
// Exactly one of the verb fields (apply, call, call_type, get, set)
// must be set.
type FlowStep struct {
	// Apply names a catalog bundle to register onto the class named by To.
	Apply string `yaml:"apply,omitempty"`
	To    string `yaml:"to,omitempty"`

	// Call invokes a member on the instance bound to On.
	Call string `yaml:"call,omitempty"`

	// CallType invokes a member through the class named by On.
	CallType string `yaml:"call_type,omitempty"`

	// Get reads a member or attribute on the instance bound to On.
	Get string `yaml:"get,omitempty"`

	// Set assigns Value through a member or attribute on the instance
	// bound to On. Value must be non-null.
	Set   string      `yaml:"set,omitempty"`
	Value interface{} `yaml:"value,omitempty"`

	// On names the receiver: an instance binding for call, get, and
	// set; a class for call_type.
	On string `yaml:"on,omitempty"`

	// Args are the positional arguments (call and call_type).
	Args []interface{} `yaml:"args,omitempty"`

	// As binds an instance-valued result for later steps (call and
	// call_type).
	As string `yaml:"as,omitempty"`

	// Expect specifies the expected outcome. If nil, the step is
	// expected to succeed and its result is not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
// Result and Error are mutually exclusive.
type ExpectClause struct {
	// Result is the expected produced value (call, call_type, get).
	Result interface{} `yaml:"result,omitempty"`

	// Error is the expected model error code (e.g. "PROTECTED_TYPE").
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check an event appears in the trace with matching fields
	// - "trace_order": Check members and bundles appear in order
	// - "member_table": Check a class's member table holds names with expected kinds
	// - "attr_equals": Check a bound instance's final attribute value
	Type string `yaml:"type"`

	// Event filters trace events by type (trace_contains).
	Event string `yaml:"event,omitempty"`

	// Bundle, Target, Object, and Member filter trace events by field
	// (trace_contains). Empty fields match anything.
	Bundle string `yaml:"bundle,omitempty"`
	Target string `yaml:"target,omitempty"`
	Member string `yaml:"member,omitempty"`

	// Object names a trace event's receiver (trace_contains) or the
	// instance binding to inspect (attr_equals).
	Object string `yaml:"object,omitempty"`

	// Outcome is the expected event outcome (trace_contains).
	Outcome string `yaml:"outcome,omitempty"`

	// Result is the expected event result (trace_contains).
	Result interface{} `yaml:"result,omitempty"`

	// Names lists member and bundle names expected to first appear in
	// this order (trace_order).
	Names []string `yaml:"names,omitempty"`

	// Class names the class whose member table is checked (member_table).
	Class string `yaml:"class,omitempty"`

	// Members maps member names to expected kinds (member_table).
	// Subset match - members not named are ignored.
	Members map[string]string `yaml:"members,omitempty"`

	// Attr is the attribute name to read (attr_equals).
	Attr string `yaml:"attr,omitempty"`

	// Value is the expected attribute value (attr_equals).
	Value interface{} `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertMemberTable   = "member_table"
	AssertAttrEquals    = "attr_equals"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	// Validate setup steps (if present)
	for i, step := range s.Setup {
		if step.New == "" {
			return fmt.Errorf("setup[%d]: new is required", i)
		}
		if step.As == "" {
			return fmt.Errorf("setup[%d]: as is required", i)
		}
	}

	// Validate flow steps
	for i, step := range s.Flow {
		if err := validateFlowStep(i, &step); err != nil {
			return err
		}
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// stepVerb names the verb a flow step uses, for error messages.
func stepVerb(step *FlowStep) string {
	switch {
	case step.Apply != "":
		return "apply"
	case step.Call != "":
		return "call"
	case step.CallType != "":
		return "call_type"
	case step.Get != "":
		return "get"
	case step.Set != "":
		return "set"
	}
	return "step"
}

// stepMember names the bundle or member a flow step works on.
func stepMember(step *FlowStep) string {
	switch {
	case step.Apply != "":
		return step.Apply
	case step.Call != "":
		return step.Call
	case step.CallType != "":
		return step.CallType
	case step.Get != "":
		return step.Get
	case step.Set != "":
		return step.Set
	}
	return ""
}

// validateFlowStep validates a single flow step.
func validateFlowStep(index int, step *FlowStep) error {
	verbs := 0
	if step.Apply != "" {
		verbs++
	}
	if step.Call != "" {
		verbs++
	}
	if step.CallType != "" {
		verbs++
	}
	if step.Get != "" {
		verbs++
	}
	if step.Set != "" {
		verbs++
	}
	if verbs != 1 {
		return fmt.Errorf("flow[%d]: exactly one of apply, call, call_type, get, set is required", index)
	}

	if step.Apply != "" {
		if step.To == "" {
			return fmt.Errorf("flow[%d]: to is required for apply", index)
		}
	} else {
		if step.On == "" {
			return fmt.Errorf("flow[%d]: on is required for %s", index, stepVerb(step))
		}
		if step.To != "" {
			return fmt.Errorf("flow[%d]: to is only valid for apply", index)
		}
	}

	if step.Set != "" && step.Value == nil {
		return fmt.Errorf("flow[%d]: value is required for set", index)
	}
	if step.Value != nil && step.Set == "" {
		return fmt.Errorf("flow[%d]: value is only valid for set", index)
	}
	if len(step.Args) > 0 && step.Call == "" && step.CallType == "" {
		return fmt.Errorf("flow[%d]: args is only valid for call and call_type", index)
	}
	if step.As != "" && step.Call == "" && step.CallType == "" {
		return fmt.Errorf("flow[%d]: as is only valid for call and call_type", index)
	}

	if step.Expect != nil && step.Expect.Result != nil && step.Expect.Error != "" {
		return fmt.Errorf("flow[%d].expect: result and error are mutually exclusive", index)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" && a.Bundle == "" && a.Target == "" && a.Object == "" && a.Member == "" {
			return fmt.Errorf("assertions[%d]: at least one of event, bundle, target, object, member is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Names) < 2 {
			return fmt.Errorf("assertions[%d]: names list with at least two entries is required for trace_order", index)
		}
	case AssertMemberTable:
		if a.Class == "" {
			return fmt.Errorf("assertions[%d]: class is required for member_table", index)
		}
		if len(a.Members) == 0 {
			return fmt.Errorf("assertions[%d]: members map is required for member_table", index)
		}
		for name, kind := range a.Members {
			if !object.ValidKinds[object.MemberKind(kind)] {
				return fmt.Errorf("assertions[%d]: members[%s]: unknown member kind %q", index, name, kind)
			}
		}
	case AssertAttrEquals:
		if a.Object == "" {
			return fmt.Errorf("assertions[%d]: object is required for attr_equals", index)
		}
		if a.Attr == "" {
			return fmt.Errorf("assertions[%d]: attr is required for attr_equals", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
