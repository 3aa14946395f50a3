package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FloatTolerance is the absolute tolerance applied when two float values
// are compared for equality.
const FloatTolerance = 1e-10

// ValueKind identifies the type of a Value.
type ValueKind string

const (
	KindBool   ValueKind = "bool"
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
	KindString ValueKind = "string"
)

// Value is a typed scalar held by the variable store. The zero Value has
// kind KindBool and is false; use the constructors to build others.
// Values are immutable and safe to copy.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

// BoolValue returns a boolean Value.
func BoolValue(v bool) Value { return Value{kind: KindBool, b: v} }

// IntValue returns an integer Value.
func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

// FloatValue returns a float Value.
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }

// StringValue returns a string Value.
func StringValue(v string) Value { return Value{kind: KindString, s: v} }

// ZeroValue returns the type-specific zero for a kind: false, 0, 0.0 or "".
func ZeroValue(kind ValueKind) Value {
	return Value{kind: kind}
}

// Kind returns the kind of the value.
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return KindBool
	}
	return v.kind
}

// Bool returns the boolean payload. Zero for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload. Zero for other kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. Zero for other kinds.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload. Empty for other kinds.
func (v Value) Str() string { return v.s }

// String renders the value for display and logging.
func (v Value) String() string {
	switch v.Kind() {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

// Equal reports whether two values have the same kind and payload.
// Float payloads compare within FloatTolerance.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return math.Abs(v.f-o.f) < FloatTolerance
	default:
		return v.s == o.s
	}
}

// Compare evaluates v op o. Operands of different kinds are a type error,
// there is no implicit coercion. Ordering operators are defined for ints,
// floats and strings (lexicographic); booleans only support eq and ne.
func (v Value) Compare(op CompareOp, o Value) (bool, error) {
	if v.Kind() != o.Kind() {
		return false, &TypeError{Op: string(op), Left: v.Kind(), Right: o.Kind()}
	}

	switch op {
	case OpEq:
		return v.Equal(o), nil
	case OpNe:
		return !v.Equal(o), nil
	}

	var cmp int
	switch v.Kind() {
	case KindInt:
		switch {
		case v.i < o.i:
			cmp = -1
		case v.i > o.i:
			cmp = 1
		}
	case KindFloat:
		switch {
		case math.Abs(v.f-o.f) < FloatTolerance:
			cmp = 0
		case v.f < o.f:
			cmp = -1
		default:
			cmp = 1
		}
	case KindString:
		switch {
		case v.s < o.s:
			cmp = -1
		case v.s > o.s:
			cmp = 1
		}
	default:
		return false, &TypeError{Op: string(op), Left: v.Kind(), Right: o.Kind()}
	}

	switch op {
	case OpLt:
		return cmp < 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	case OpGe:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unknown compare operator %q", op)
	}
}

// Add returns v + o for ints and floats of the same kind.
func (v Value) Add(o Value) (Value, error) {
	switch {
	case v.Kind() == KindInt && o.Kind() == KindInt:
		return IntValue(v.i + o.i), nil
	case v.Kind() == KindFloat && o.Kind() == KindFloat:
		return FloatValue(v.f + o.f), nil
	}
	return Value{}, &TypeError{Op: "add", Left: v.Kind(), Right: o.Kind()}
}

// Sub returns v - o for ints and floats of the same kind.
func (v Value) Sub(o Value) (Value, error) {
	switch {
	case v.Kind() == KindInt && o.Kind() == KindInt:
		return IntValue(v.i - o.i), nil
	case v.Kind() == KindFloat && o.Kind() == KindFloat:
		return FloatValue(v.f - o.f), nil
	}
	return Value{}, &TypeError{Op: "sub", Left: v.Kind(), Right: o.Kind()}
}

// Mul returns v * o for ints and floats of the same kind.
func (v Value) Mul(o Value) (Value, error) {
	switch {
	case v.Kind() == KindInt && o.Kind() == KindInt:
		return IntValue(v.i * o.i), nil
	case v.Kind() == KindFloat && o.Kind() == KindFloat:
		return FloatValue(v.f * o.f), nil
	}
	return Value{}, &TypeError{Op: "mul", Left: v.Kind(), Right: o.Kind()}
}

// Div returns v / o. Integer division truncates. Division by zero is an
// error for both kinds; float zero is checked within FloatTolerance.
func (v Value) Div(o Value) (Value, error) {
	switch {
	case v.Kind() == KindInt && o.Kind() == KindInt:
		if o.i == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return IntValue(v.i / o.i), nil
	case v.Kind() == KindFloat && o.Kind() == KindFloat:
		if math.Abs(o.f) < FloatTolerance {
			return Value{}, fmt.Errorf("division by zero")
		}
		return FloatValue(v.f / o.f), nil
	}
	return Value{}, &TypeError{Op: "div", Left: v.Kind(), Right: o.Kind()}
}

// Append returns v + o for strings.
func (v Value) Append(o Value) (Value, error) {
	if v.Kind() == KindString && o.Kind() == KindString {
		return StringValue(v.s + o.s), nil
	}
	return Value{}, &TypeError{Op: "append", Left: v.Kind(), Right: o.Kind()}
}

// Toggle returns the negation of a boolean value.
func (v Value) Toggle() (Value, error) {
	if v.Kind() != KindBool {
		return Value{}, &TypeError{Op: "toggle", Left: v.Kind()}
	}
	return BoolValue(!v.b), nil
}

// valueJSON is the wire shape of a Value. The payload is kept as a
// json.Number on decode so large ints survive the round trip.
type valueJSON struct {
	Type  ValueKind       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"type": ..., "value": ...}.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.Kind() {
	case KindBool:
		payload = v.b
	case KindInt:
		payload = v.i
	case KindFloat:
		payload = v.f
	default:
		payload = v.s
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Type: v.Kind(), Value: raw})
}

// UnmarshalJSON decodes the {"type": ..., "value": ...} shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case KindBool:
		var b bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case KindInt:
		var n json.Number
		if err := json.Unmarshal(w.Value, &n); err != nil {
			return err
		}
		i, err := n.Int64()
		if err != nil {
			return err
		}
		*v = IntValue(i)
	case KindFloat:
		var f float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
			return err
		}
		*v = FloatValue(f)
	case KindString:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	default:
		return fmt.Errorf("unknown value type %q", w.Type)
	}
	return nil
}
