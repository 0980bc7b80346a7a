package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/graft/object"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// Serialization is canonical - keys sorted, empty fields omitted - so
// identical runs produce byte-identical JSON for golden comparison.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"scenario":`)

	name, err := json.Marshal(s.Scenario)
	if err != nil {
		return nil, err
	}
	buf.Write(name)

	buf.WriteString(`,"trace":[`)
	for i, event := range s.Trace {
		if i > 0 {
			buf.WriteByte(',')
		}
		encoded, err := encodeEvent(event)
		if err != nil {
			return nil, fmt.Errorf("trace[%d]: %w", i, err)
		}
		buf.Write(encoded)
	}
	buf.WriteString(`]}`)

	return buf.Bytes(), nil
}

// encodeEvent emits one trace event with keys in sorted order and
// empty fields omitted.
func encodeEvent(event TraceEvent) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeRaw := func(key, raw string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
		buf.WriteString(raw)
	}
	writeString := func(key, val string) {
		encoded, _ := json.Marshal(val)
		writeRaw(key, string(encoded))
	}
	writeValue := func(key string, val object.Value) error {
		encoded, err := object.EncodeValue(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		writeRaw(key, string(encoded))
		return nil
	}

	if len(event.Args) > 0 {
		if err := writeValue("args", event.Args); err != nil {
			return nil, err
		}
	}
	if event.Bundle != "" {
		writeString("bundle", event.Bundle)
	}
	if event.Member != "" {
		writeString("member", event.Member)
	}
	if event.Object != "" {
		writeString("object", event.Object)
	}
	writeString("outcome", event.Outcome)
	if event.Result != nil {
		if err := writeValue("result", event.Result); err != nil {
			return nil, err
		}
	}
	writeRaw("seq", strconv.FormatInt(event.Seq, 10))
	if event.Target != "" {
		writeString("target", event.Target)
	}
	writeString("type", event.Type)
	if event.Value != nil {
		if err := writeValue("value", event.Value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./harness -update
//
// Expectation and assertion failures fail the test directly; the
// returned error covers scenario execution problems only.
func RunWithGolden(t *testing.T, scenario *Scenario, catalog Catalog) error {
	t.Helper()

	result, err := Run(scenario, catalog)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	snapshot := TraceSnapshot{
		Scenario: scenario.Name,
		Trace:    result.Trace,
	}
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		Scenario: scenarioName,
		Trace:    result.Trace,
	}
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
