package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/graft/object"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, describeEvent(event))
		}
	}

	return buf.String()
}

// describeEvent renders one trace event for failure messages.
func describeEvent(event TraceEvent) string {
	switch event.Type {
	case EventNew:
		return fmt.Sprintf("new %s as %s (%s)", event.Target, event.Object, event.Outcome)
	case EventApply:
		return fmt.Sprintf("apply %s to %s (%s)", event.Bundle, event.Target, event.Outcome)
	case EventCallType:
		return fmt.Sprintf("call_type %s.%s (%s)", event.Target, event.Member, event.Outcome)
	default:
		return fmt.Sprintf("%s %s.%s (%s)", event.Type, event.Object, event.Member, event.Outcome)
	}
}

// formatValue renders a runtime value for failure messages.
func formatValue(v object.Value) string {
	if v == nil {
		return "<none>"
	}
	encoded, err := object.EncodeValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}

// valuesEqual compares two runtime values. Instances compare by their
// frozen {$class, $id, attrs} snapshot, so an expected map can match an
// instance result.
func valuesEqual(actual, expected object.Value) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	return reflect.DeepEqual(freezeValue(actual), freezeValue(expected))
}

// assertTraceContains checks if the trace contains an event matching
// every specified field of the assertion (subset semantics: empty
// matcher fields match anything).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matchEvent(event, assertion) {
			return nil // Found matching event
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("trace event matching %s", describeMatcher(assertion)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// matchEvent reports whether the event satisfies all specified matcher
// fields of the assertion.
func matchEvent(event TraceEvent, assertion Assertion) bool {
	if assertion.Event != "" && event.Type != assertion.Event {
		return false
	}
	if assertion.Bundle != "" && event.Bundle != assertion.Bundle {
		return false
	}
	if assertion.Target != "" && event.Target != assertion.Target {
		return false
	}
	if assertion.Object != "" && event.Object != assertion.Object {
		return false
	}
	if assertion.Member != "" && event.Member != assertion.Member {
		return false
	}
	if assertion.Outcome != "" && event.Outcome != assertion.Outcome {
		return false
	}
	if assertion.Result != nil {
		expected, err := object.FromGo(assertion.Result)
		if err != nil {
			return false
		}
		if !valuesEqual(event.Result, expected) {
			return false
		}
	}
	return true
}

// describeMatcher renders the specified matcher fields for messages.
func describeMatcher(assertion Assertion) string {
	var parts []string
	add := func(key, val string) {
		if val != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", key, val))
		}
	}
	add("event", assertion.Event)
	add("bundle", assertion.Bundle)
	add("target", assertion.Target)
	add("object", assertion.Object)
	add("member", assertion.Member)
	add("outcome", assertion.Outcome)
	if assertion.Result != nil {
		parts = append(parts, fmt.Sprintf("result=%v", assertion.Result))
	}
	if len(parts) == 0 {
		return "(anything)"
	}
	return strings.Join(parts, " ")
}

// assertTraceOrder checks if the named members and bundles first appear
// in the specified order. An entry matches an event's member name, or
// its bundle name for apply events. Intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// Step 1: Find first position of each expected name
	positions := make(map[string]int)

	for i, event := range trace {
		for _, name := range assertion.Names {
			if (event.Member == name || event.Bundle == name) && positions[name] == 0 {
				positions[name] = i + 1 // 1-indexed for readability
			}
		}
	}

	// Step 2: Verify all names found
	for _, name := range assertion.Names {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all names present: %v", assertion.Names),
				Actual:   fmt.Sprintf("missing: %s", name),
				Trace:    trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Names); i++ {
		prev := assertion.Names[i-1]
		curr := assertion.Names[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("names in order: %v", assertion.Names),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertMemberTable checks that the class's own member table contains
// each named member with the expected kind. Subset semantics: members
// the assertion does not name are ignored.
func assertMemberTable(actx *AssertionContext, assertion Assertion) error {
	class, ok := classFor(actx.Fixtures, assertion.Class)
	if !ok {
		return fmt.Errorf("member_table assertion: unknown class %q", assertion.Class)
	}

	// Sort names for deterministic failure reporting
	names := make([]string, 0, len(assertion.Members))
	for name := range assertion.Members {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wantKind := assertion.Members[name]

		member, ok := class.Member(name)
		if !ok {
			return &AssertionError{
				Type:     AssertMemberTable,
				Expected: fmt.Sprintf("class %s has member %s (%s)", assertion.Class, name, wantKind),
				Actual:   fmt.Sprintf("member table: %v", class.MemberNames()),
			}
		}

		if string(member.Kind()) != wantKind {
			return &AssertionError{
				Type:     AssertMemberTable,
				Expected: fmt.Sprintf("member %s.%s has kind %s", assertion.Class, name, wantKind),
				Actual:   string(member.Kind()),
			}
		}
	}

	return nil
}

// assertAttrEquals checks a bound instance's stored attribute value.
// The raw attribute is compared; property getters do not run.
func assertAttrEquals(actx *AssertionContext, assertion Assertion) error {
	inst, ok := actx.Objects[assertion.Object]
	if !ok {
		return fmt.Errorf("attr_equals assertion: unknown object %q", assertion.Object)
	}

	expected, err := object.FromGo(assertion.Value)
	if err != nil {
		return fmt.Errorf("attr_equals assertion: bad expected value: %w", err)
	}

	actual, ok := inst.Attr(assertion.Attr)
	if !ok {
		return &AssertionError{
			Type:     AssertAttrEquals,
			Expected: fmt.Sprintf("%s.%s = %s", assertion.Object, assertion.Attr, formatValue(expected)),
			Actual:   fmt.Sprintf("attribute not set (attributes: %v)", inst.AttrNames()),
		}
	}

	if !valuesEqual(actual, expected) {
		return &AssertionError{
			Type:     AssertAttrEquals,
			Expected: fmt.Sprintf("%s.%s = %s", assertion.Object, assertion.Attr, formatValue(expected)),
			Actual:   formatValue(actual),
		}
	}

	return nil
}

// AssertionContext provides fixture and binding access for assertions
// that inspect final state.
type AssertionContext struct {
	Fixtures *Fixtures
	Objects  map[string]*object.Instance
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides fixture access for member_table and
// attr_equals assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertMemberTable:
			if actx == nil || actx.Fixtures == nil {
				err = fmt.Errorf("assertion[%d]: member_table requires fixture context", i)
			} else {
				err = assertMemberTable(actx, assertion)
			}
		case AssertAttrEquals:
			if actx == nil || actx.Objects == nil {
				err = fmt.Errorf("assertion[%d]: attr_equals requires binding context", i)
			} else {
				err = assertAttrEquals(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
