// Package value implements the tagged runtime value used by the expression
// evaluator and the step-flow interpreter: null, boolean, integer, float,
// string, sequence, and mapping, plus every coercion and comparison rule
// (see coerce.go) in one centralized place.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the variant a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a tagged scalar/container. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a signed 64-bit integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps an IEEE-754 double.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a UTF-8 string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence wraps an ordered list of Values. The slice is not copied; callers
// must not mutate it afterward.
func Sequence(vs []Value) Value { return Value{kind: KindSequence, seq: vs} }

// Mapping wraps a string-keyed map of Values. The map is not copied; callers
// must not mutate it afterward.
func Mapping(m map[string]Value) Value { return Value{kind: KindMapping, m: m} }

// Kind reports the variant this Value currently holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// RawBool returns the underlying bool. Only meaningful when Kind() == KindBool.
func (v Value) RawBool() bool { return v.b }

// RawInt returns the underlying int64. Only meaningful when Kind() == KindInt.
func (v Value) RawInt() int64 { return v.i }

// RawFloat returns the underlying float64. Only meaningful when Kind() == KindFloat.
func (v Value) RawFloat() float64 { return v.f }

// RawString returns the underlying string. Only meaningful when Kind() == KindString.
func (v Value) RawString() string { return v.s }

// RawSequence returns the underlying slice. Only meaningful when Kind() == KindSequence.
func (v Value) RawSequence() []Value { return v.seq }

// RawMapping returns the underlying map. Only meaningful when Kind() == KindMapping.
func (v Value) RawMapping() map[string]Value { return v.m }

// Field looks up a key in a mapping. Returns (Null, false) for any other
// kind or for a missing key.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindMapping {
		return Null(), false
	}
	fv, ok := v.m[name]
	return fv, ok
}

// Index looks up a 0-based position in a sequence. Returns (Null, false)
// when v is not a sequence or the index is out of bounds.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq) {
		return Null(), false
	}
	return v.seq[i], true
}

// Equal implements Value equality per the data model: numeric cross-type
// comparison after coercion, string-to-number coercion when the string
// parses as a decimal (Open Question 1, resolved in DESIGN.md), code-point
// string comparison, and structural equality for sequences/mappings where
// key order is not semantic.
func (v Value) Equal(other Value) bool {
	return valuesEqual(v, other)
}

// Compare orders two Values. Only numeric-vs-numeric and string-vs-string
// pairs are ordered; ok is false for any other combination.
func (v Value) Compare(other Value) (cmp int, ok bool) {
	return compareValues(v, other)
}

// String renders a Value in its canonical textual form, used for
// diagnostics and string coercion (see coerce.go AsString).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, v.m[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// formatFloat renders a float in its shortest form, with no trailing zeroes.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
