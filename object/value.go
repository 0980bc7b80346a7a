package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Value is a sealed interface representing the runtime value types.
// Only Null, Bool, Int, Float, Str, Bytes, List, Map, and *Instance
// implement this.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents the absent value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point value.
type Float float64

func (Float) value() {}

// Str represents a string value.
type Str string

func (Str) value() {}

// Bytes represents a byte-string value.
type Bytes []byte

func (Bytes) value() {}

// List represents an ordered sequence of Value elements.
type List []Value

func (List) value() {}

// Map represents string-keyed Value elements.
// Use SortedKeys() for deterministic iteration.
type Map map[string]Value

func (Map) value() {}

// NewStr creates a Str value.
func NewStr(s string) Str {
	return Str(s)
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewFloat creates a Float value.
func NewFloat(f float64) Float {
	return Float(f)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewList creates a List from values.
func NewList(vals ...Value) List {
	return List(vals)
}

// SortedKeys returns the map keys in lexicographic order for
// deterministic iteration and encoding.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FromGo converts a decoded Go value (as produced by yaml.v3 or
// encoding/json into any) to a Value. nil becomes Null. Integral
// numbers become Int; float64 stays Float. Maps must be string-keyed.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return Str(val), nil
	case []byte:
		return Bytes(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("number out of int64 range: %d", val)
		}
		return Int(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Float(f), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = conv
		}
		return list, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = conv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// AsInt unwraps an Int value.
func AsInt(v Value) (int64, bool) {
	n, ok := v.(Int)
	return int64(n), ok
}

// AsFloat unwraps a Float value.
func AsFloat(v Value) (float64, bool) {
	f, ok := v.(Float)
	return float64(f), ok
}

// AsStr unwraps a Str value.
func AsStr(v Value) (string, bool) {
	s, ok := v.(Str)
	return string(s), ok
}

// AsBool unwraps a Bool value.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// EncodeValue marshals a Value to JSON bytes with deterministic output:
// map keys are sorted, instance fields are emitted in fixed order.
// Bytes encode as base64 strings (encoding/json convention).
func EncodeValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil Value")
	case Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Str:
		return json.Marshal(string(val))
	case Bytes:
		return json.Marshal([]byte(val))
	case List:
		return encodeList(val)
	case Map:
		return encodeMap(val)
	case *Instance:
		return encodeInstance(val)
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

func encodeList(list List) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := EncodeValue(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func encodeMap(m Map) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range m.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := EncodeValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeInstance emits fixed field order: $class, $id, attrs.
func encodeInstance(inst *Instance) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"$class":`)

	classBytes, err := json.Marshal(inst.Class().Name())
	if err != nil {
		return nil, err
	}
	buf.Write(classBytes)

	buf.WriteString(`,"$id":`)
	idBytes, err := json.Marshal(inst.ID())
	if err != nil {
		return nil, err
	}
	buf.Write(idBytes)

	buf.WriteString(`,"attrs":`)
	attrBytes, err := encodeMap(inst.snapshotAttrs())
	if err != nil {
		return nil, fmt.Errorf("instance %s attrs: %w", inst.ID(), err)
	}
	buf.Write(attrBytes)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
