package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes scenario YAML to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
catalog: user
setup:
  - new: User
    as: vasi
    args: ["Vasi", 25]
flow:
  - apply: ExtendedLifespan
    to: User
  - get: years_until_death
    on: vasi
    expect:
      result: 175
assertions:
  - type: trace_contains
    event: apply
    bundle: ExtendedLifespan
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "user", scenario.Catalog)
	assert.Len(t, scenario.Setup, 1)
	assert.Len(t, scenario.Flow, 2)
	assert.Len(t, scenario.Assertions, 1)

	assert.Equal(t, "User", scenario.Setup[0].New)
	assert.Equal(t, "vasi", scenario.Setup[0].As)
	assert.Equal(t, []interface{}{"Vasi", 25}, scenario.Setup[0].Args)

	assert.Equal(t, "ExtendedLifespan", scenario.Flow[0].Apply)
	assert.Equal(t, "User", scenario.Flow[0].To)
	assert.Equal(t, "years_until_death", scenario.Flow[1].Get)
	require.NotNil(t, scenario.Flow[1].Expect)
	assert.Equal(t, 175, scenario.Flow[1].Expect.Result)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	// "assertion:" (singular) is a typo for "assertions:" and must be rejected
	path := writeScenario(t, `
name: test
description: "Test"
catalog: user
flow:
  - apply: ExtendedLifespan
    to: User
assertion:
  - type: trace_contains
    event: apply
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "Test"
catalog: user
flow:
  - apply: ExtendedLifespan
    to: User
assertions:
  - type: trace_contains
    event: apply
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: test
catalog: user
flow:
  - apply: ExtendedLifespan
    to: User
assertions:
  - type: trace_contains
    event: apply
`,
			wantErr: "description is required",
		},
		{
			name: "missing catalog",
			content: `
name: test
description: "Test"
flow:
  - apply: ExtendedLifespan
    to: User
assertions:
  - type: trace_contains
    event: apply
`,
			wantErr: "catalog is required",
		},
		{
			name: "empty flow",
			content: `
name: test
description: "Test"
catalog: user
flow: []
assertions:
  - type: trace_contains
    event: apply
`,
			wantErr: "flow list is required",
		},
		{
			name: "empty assertions",
			content: `
name: test
description: "Test"
catalog: user
flow:
  - apply: ExtendedLifespan
    to: User
assertions: []
`,
			wantErr: "assertions list is required",
		},
		{
			name: "setup missing as",
			content: `
name: test
description: "Test"
catalog: user
setup:
  - new: User
flow:
  - apply: ExtendedLifespan
    to: User
assertions:
  - type: trace_contains
    event: apply
`,
			wantErr: "setup[0]: as is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_FlowStepValidation(t *testing.T) {
	tests := []struct {
		name    string
		step    string
		wantErr string
	}{
		{
			name: "no verb",
			step: `
  - on: vasi
`,
			wantErr: "exactly one of apply, call, call_type, get, set",
		},
		{
			name: "two verbs",
			step: `
  - call: display
    get: is_adult
    on: vasi
`,
			wantErr: "exactly one of apply, call, call_type, get, set",
		},
		{
			name: "apply without to",
			step: `
  - apply: ExtendedLifespan
`,
			wantErr: "to is required for apply",
		},
		{
			name: "call without on",
			step: `
  - call: display
`,
			wantErr: "on is required for call",
		},
		{
			name: "to on a get step",
			step: `
  - get: is_adult
    on: vasi
    to: User
`,
			wantErr: "to is only valid for apply",
		},
		{
			name: "set without value",
			step: `
  - set: years_until_graduation
    on: vasi
`,
			wantErr: "value is required for set",
		},
		{
			name: "value on a call step",
			step: `
  - call: display
    on: vasi
    value: 2
`,
			wantErr: "value is only valid for set",
		},
		{
			name: "args on a get step",
			step: `
  - get: is_adult
    on: vasi
    args: [1]
`,
			wantErr: "args is only valid for call and call_type",
		},
		{
			name: "as on a set step",
			step: `
  - set: years_until_graduation
    on: vasi
    value: 2
    as: other
`,
			wantErr: "as is only valid for call and call_type",
		},
		{
			name: "expect with result and error",
			step: `
  - get: is_adult
    on: vasi
    expect:
      result: true
      error: UNKNOWN_MEMBER
`,
			wantErr: "result and error are mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, `
name: test
description: "Test"
catalog: user
flow:`+tt.step+`
assertions:
  - type: trace_contains
    event: apply
`)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "flow[0]")
		})
	}
}

func TestLoadScenario_AssertionValidation(t *testing.T) {
	tests := []struct {
		name      string
		assertion string
		wantErr   string
	}{
		{
			name: "missing type",
			assertion: `
  - event: apply
`,
			wantErr: "type is required",
		},
		{
			name: "unknown type",
			assertion: `
  - type: trace_count
`,
			wantErr: `unknown assertion type "trace_count"`,
		},
		{
			name: "trace_contains without matcher fields",
			assertion: `
  - type: trace_contains
    outcome: ok
`,
			wantErr: "at least one of event, bundle, target, object, member",
		},
		{
			name: "trace_order with one name",
			assertion: `
  - type: trace_order
    names: [display]
`,
			wantErr: "at least two entries",
		},
		{
			name: "member_table without class",
			assertion: `
  - type: member_table
    members: { display: method }
`,
			wantErr: "class is required",
		},
		{
			name: "member_table without members",
			assertion: `
  - type: member_table
    class: User
`,
			wantErr: "members map is required",
		},
		{
			name: "member_table with unknown kind",
			assertion: `
  - type: member_table
    class: User
    members: { display: free_function }
`,
			wantErr: `unknown member kind "free_function"`,
		},
		{
			name: "attr_equals without object",
			assertion: `
  - type: attr_equals
    attr: age
    value: 20
`,
			wantErr: "object is required",
		},
		{
			name: "attr_equals without attr",
			assertion: `
  - type: attr_equals
    object: vasi
    value: 20
`,
			wantErr: "attr is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, `
name: test
description: "Test"
catalog: user
flow:
  - apply: ExtendedLifespan
    to: User
assertions:`+tt.assertion+`
`)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "assertions[0]")
		})
	}
}
