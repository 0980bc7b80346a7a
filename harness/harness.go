package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/graft/internal/testutil"
	"github.com/roach88/graft/object"
	"github.com/roach88/graft/registry"
)

// Harness is the test execution engine.
// It runs scenarios against fresh catalog fixtures with deterministic
// sequence numbers and instance IDs.
type Harness struct {
	fixtures  *Fixtures
	registrar *registry.Registrar
	clock     *testutil.DeterministicClock
	logger    *slog.Logger
	objects   map[string]*object.Instance
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh fixture set for isolation:
// registrations in one run never leak into the next. Deterministic
// helpers ensure reproducible results.
//
// Execution flow:
// 1. Build fresh fixtures from the catalog entry the scenario names
// 2. Execute setup steps, binding instances to scenario names
// 3. Execute flow steps with expect validation
// 4. Evaluate assertions against the trace and final state
func Run(scenario *Scenario, catalog Catalog) (*Result, error) {
	build, ok := catalog[scenario.Catalog]
	if !ok {
		return nil, fmt.Errorf("unknown catalog entry %q", scenario.Catalog)
	}

	fixtures, err := build(testutil.NewSequentialIdentity("obj"))
	if err != nil {
		return nil, fmt.Errorf("failed to build fixtures %q: %w", scenario.Catalog, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	h := &Harness{
		fixtures:  fixtures,
		registrar: registry.New(registry.WithLogger(logger)),
		clock:     testutil.NewDeterministicClock(),
		logger:    logger,
		objects:   make(map[string]*object.Instance),
	}

	result := NewResult()
	if err := h.executeSetup(scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{
		Fixtures: h.fixtures,
		Objects:  h.objects,
	}
	assertionErrors := EvaluateAssertions(result, scenario.Assertions, actx)
	for _, errMsg := range assertionErrors {
		result.AddError(errMsg)
	}

	return result, nil
}

// classFor resolves a class name against the fixtures, falling back to
// the builtin classes so scenarios can target Int, Str, ... directly.
func classFor(fixtures *Fixtures, name string) (*object.Class, bool) {
	if c, ok := fixtures.Classes[name]; ok {
		return c, true
	}
	for _, b := range object.Builtins() {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// outcomeOf maps a step error to a trace outcome: OutcomeOK for nil,
// the model error code when one is present, "error" otherwise.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var me *object.ModelError
	if errors.As(err, &me) {
		return string(me.Code)
	}
	return "error"
}

// freezeValue snapshots v for the trace. Instances are captured as
// {$class, $id, attrs} maps at event time, so later attribute writes
// do not rewrite recorded history. Other values pass through.
func freezeValue(v object.Value) object.Value {
	switch val := v.(type) {
	case nil:
		return nil
	case *object.Instance:
		attrs := make(object.Map)
		for _, name := range val.AttrNames() {
			if av, ok := val.Attr(name); ok {
				attrs[name] = freezeValue(av)
			}
		}
		return object.Map{
			"$class": object.Str(val.Class().Name()),
			"$id":    object.Str(val.ID()),
			"attrs":  attrs,
		}
	case object.List:
		out := make(object.List, len(val))
		for i, elem := range val {
			out[i] = freezeValue(elem)
		}
		return out
	case object.Map:
		out := make(object.Map, len(val))
		for k, elem := range val {
			out[k] = freezeValue(elem)
		}
		return out
	default:
		return v
	}
}

// convertArgs converts YAML-parsed positional arguments to runtime values.
func convertArgs(args []interface{}) ([]object.Value, error) {
	out := make([]object.Value, len(args))
	for i, raw := range args {
		v, err := object.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// executeSetup instantiates fixture classes and binds them to names.
//
// Setup steps are assumed to succeed; an initializer error aborts the
// run rather than producing a failed result.
func (h *Harness) executeSetup(setup []SetupStep, result *Result) error {
	for i, step := range setup {
		class, ok := classFor(h.fixtures, step.New)
		if !ok {
			return fmt.Errorf("setup step %d: unknown class %q", i, step.New)
		}

		args, err := convertArgs(step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d: failed to convert args: %w", i, err)
		}

		inst, err := class.New(args...)
		if err != nil {
			return fmt.Errorf("setup step %d: failed to instantiate %s: %w", i, step.New, err)
		}
		h.objects[step.As] = inst

		result.AddTrace(TraceEvent{
			Type:    EventNew,
			Target:  step.New,
			Object:  step.As,
			Args:    object.List(args),
			Outcome: OutcomeOK,
			Result:  freezeValue(inst),
			Seq:     h.clock.Next(),
		})

		h.logger.Info("setup step completed",
			"step", i,
			"class", step.New,
			"as", step.As,
			"id", inst.ID(),
		)
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
//
// Unlike setup, flow steps are allowed to fail: a step whose expect
// clause names an error code passes when the step fails with exactly
// that code. A step with no expect clause is expected to succeed.
//
// Runner errors (unknown bindings, unconvertible arguments) are
// scenario defects and abort the run; model errors become outcomes.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) error {
	for i, step := range flow {
		var err error
		switch {
		case step.Apply != "":
			err = h.runApply(i, step, result)
		case step.Call != "":
			err = h.runCall(i, step, result)
		case step.CallType != "":
			err = h.runCallType(i, step, result)
		case step.Get != "":
			err = h.runGet(i, step, result)
		case step.Set != "":
			err = h.runSet(i, step, result)
		default:
			err = fmt.Errorf("flow step %d: no verb set", i)
		}
		if err != nil {
			return err
		}

		h.logger.Info("flow step completed",
			"step", i,
			"verb", stepVerb(&step),
			"name", stepMember(&step),
		)
	}
	return nil
}

// runApply registers a catalog bundle onto a class.
func (h *Harness) runApply(index int, step FlowStep, result *Result) error {
	target, ok := classFor(h.fixtures, step.To)
	if !ok {
		return fmt.Errorf("flow step %d: unknown class %q", index, step.To)
	}
	bundle, ok := h.fixtures.Bundles[step.Apply]
	if !ok {
		return fmt.Errorf("flow step %d: unknown bundle %q", index, step.Apply)
	}

	applyErr := h.registrar.Register(target, bundle)

	result.AddTrace(TraceEvent{
		Type:    EventApply,
		Bundle:  step.Apply,
		Target:  step.To,
		Outcome: outcomeOf(applyErr),
		Seq:     h.clock.Next(),
	})

	h.checkExpect(index, step, nil, applyErr, result)
	return nil
}

// runCall invokes a member on a bound instance.
func (h *Harness) runCall(index int, step FlowStep, result *Result) error {
	inst, ok := h.objects[step.On]
	if !ok {
		return fmt.Errorf("flow step %d: unknown object %q", index, step.On)
	}
	args, err := convertArgs(step.Args)
	if err != nil {
		return fmt.Errorf("flow step %d: failed to convert args: %w", index, err)
	}

	res, callErr := inst.Call(step.Call, args...)

	result.AddTrace(TraceEvent{
		Type:    EventCall,
		Object:  step.On,
		Member:  step.Call,
		Args:    object.List(args),
		Outcome: outcomeOf(callErr),
		Result:  freezeValue(res),
		Seq:     h.clock.Next(),
	})

	if callErr == nil {
		if err := h.bindResult(index, step, res); err != nil {
			return err
		}
	}
	h.checkExpect(index, step, res, callErr, result)
	return nil
}

// runCallType invokes a member through a class.
func (h *Harness) runCallType(index int, step FlowStep, result *Result) error {
	class, ok := classFor(h.fixtures, step.On)
	if !ok {
		return fmt.Errorf("flow step %d: unknown class %q", index, step.On)
	}
	args, err := convertArgs(step.Args)
	if err != nil {
		return fmt.Errorf("flow step %d: failed to convert args: %w", index, err)
	}

	res, callErr := class.Call(step.CallType, args...)

	result.AddTrace(TraceEvent{
		Type:    EventCallType,
		Target:  step.On,
		Member:  step.CallType,
		Args:    object.List(args),
		Outcome: outcomeOf(callErr),
		Result:  freezeValue(res),
		Seq:     h.clock.Next(),
	})

	if callErr == nil {
		if err := h.bindResult(index, step, res); err != nil {
			return err
		}
	}
	h.checkExpect(index, step, res, callErr, result)
	return nil
}

// runGet reads a member or attribute on a bound instance.
func (h *Harness) runGet(index int, step FlowStep, result *Result) error {
	inst, ok := h.objects[step.On]
	if !ok {
		return fmt.Errorf("flow step %d: unknown object %q", index, step.On)
	}

	res, getErr := inst.Get(step.Get)

	result.AddTrace(TraceEvent{
		Type:    EventGet,
		Object:  step.On,
		Member:  step.Get,
		Outcome: outcomeOf(getErr),
		Result:  freezeValue(res),
		Seq:     h.clock.Next(),
	})

	h.checkExpect(index, step, res, getErr, result)
	return nil
}

// runSet assigns through a member or attribute on a bound instance.
func (h *Harness) runSet(index int, step FlowStep, result *Result) error {
	inst, ok := h.objects[step.On]
	if !ok {
		return fmt.Errorf("flow step %d: unknown object %q", index, step.On)
	}
	val, err := object.FromGo(step.Value)
	if err != nil {
		return fmt.Errorf("flow step %d: failed to convert value: %w", index, err)
	}

	setErr := inst.Set(step.Set, val)

	result.AddTrace(TraceEvent{
		Type:    EventSet,
		Object:  step.On,
		Member:  step.Set,
		Value:   val,
		Outcome: outcomeOf(setErr),
		Seq:     h.clock.Next(),
	})

	h.checkExpect(index, step, nil, setErr, result)
	return nil
}

// bindResult binds an instance-valued result under step.As.
func (h *Harness) bindResult(index int, step FlowStep, res object.Value) error {
	if step.As == "" {
		return nil
	}
	inst, ok := res.(*object.Instance)
	if !ok {
		return fmt.Errorf("flow step %d: as %q requires an instance result, got %T", index, step.As, res)
	}
	h.objects[step.As] = inst
	return nil
}

// checkExpect validates a flow step's outcome against its expect clause.
// Steps without an expect clause are expected to succeed.
func (h *Harness) checkExpect(index int, step FlowStep, res object.Value, stepErr error, result *Result) {
	verb := stepVerb(&step)
	name := stepMember(&step)

	if step.Expect != nil && step.Expect.Error != "" {
		if stepErr == nil {
			result.AddError(fmt.Sprintf("flow step %d (%s %s): expected error %s, got success",
				index, verb, name, step.Expect.Error))
			return
		}
		if outcome := outcomeOf(stepErr); outcome != step.Expect.Error {
			result.AddError(fmt.Sprintf("flow step %d (%s %s): expected error %s, got %s: %v",
				index, verb, name, step.Expect.Error, outcome, stepErr))
		}
		return
	}

	if stepErr != nil {
		result.AddError(fmt.Sprintf("flow step %d (%s %s): unexpected error: %v",
			index, verb, name, stepErr))
		return
	}

	if step.Expect != nil && step.Expect.Result != nil {
		expected, err := object.FromGo(step.Expect.Result)
		if err != nil {
			result.AddError(fmt.Sprintf("flow step %d (%s %s): bad expected result: %v",
				index, verb, name, err))
			return
		}
		if !valuesEqual(res, expected) {
			result.AddError(fmt.Sprintf("flow step %d (%s %s): expected result %s, got %s",
				index, verb, name, formatValue(expected), formatValue(res)))
		}
	}
}
