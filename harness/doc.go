// Package harness provides conformance testing for the extension registrar.
//
// The harness runs YAML scenarios against fixture classes and bundles,
// records every registration and member access as a trace event, and
// validates the trace, member tables, and final instance state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: user
//	setup:
//	  - new: User
//	    as: vasi
//	    args: ["Vasi", 25]
//	flow:
//	  - apply: ExtendedLifespan
//	    to: User
//	  - get: years_until_death
//	    on: vasi
//	    expect:
//	      result: 175
//	assertions:
//	  - type: trace_contains
//	    event: apply
//	    bundle: ExtendedLifespan
//	    outcome: ok
//	  - type: member_table
//	    class: User
//	    members: { years_until_death: property }
//
// Flow steps use exactly one verb each: apply registers a bundle onto a
// class, call invokes a member on a bound instance, call_type invokes a
// member through the class itself, get reads a member or attribute, and
// set assigns through one. An expect clause checks either the produced
// result or a model error code (e.g. PROTECTED_TYPE); steps without one
// are simply expected to succeed.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - trace_contains: Verifies an event appears in the trace with matching fields
//   - trace_order: Verifies members and bundles appear in specified order
//   - member_table: Verifies a class's member table holds names with expected kinds
//   - attr_equals: Verifies a bound instance's final attribute value
//
// # Fixture Catalog
//
// Member functions cannot be expressed in YAML, so scenarios name their
// classes and bundles symbolically and the harness resolves them through
// a Catalog of Go constructors. Every run builds a fresh fixture set, so
// registrations in one scenario never leak into another. DefaultCatalog
// provides the standard vocabulary used by the scenarios under
// testdata/scenarios.
//
// # Deterministic Testing
//
// All scenarios execute with deterministic helpers to ensure
// reproducible results and golden snapshot comparison:
//
//   - Sequential instance IDs (testutil.SequentialIdentity)
//   - Deterministic logical clock for trace seq (testutil.DeterministicClock)
//   - Canonical JSON trace serialization (sorted keys, empty fields omitted)
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
// Load a scenario and run it:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/extended_lifespan.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario, harness.DefaultCatalog())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    log.Fatalf("scenario failed: %v", result.Errors)
//	}
//
// Or compare against a golden trace inside a test:
//
//	func TestExtendedLifespan(t *testing.T) {
//	    scenario, err := harness.LoadScenario("testdata/scenarios/extended_lifespan.yaml")
//	    require.NoError(t, err)
//	    require.NoError(t, harness.RunWithGolden(t, scenario, harness.DefaultCatalog()))
//	}
package harness
