package value

import "strconv"

// This file centralizes every coercion and comparison rule for Value,
// keeping compare/compareInt/compareFloat/compareString in one place
// instead of scattering comparison logic across call sites.

// ToBool coerces v to a boolean per the data model: null, false, 0, 0.0,
// "", an empty sequence, and an empty mapping are all falsy; everything
// else is truthy. Total: never fails.
func ToBool(v Value) bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindSequence:
		return len(v.seq) != 0
	case KindMapping:
		return len(v.m) != 0
	default:
		return false
	}
}

// ToNumber coerces v to a numeric Value (Int or Float). Strings are parsed
// as decimal; booleans become 0/1. On failure returns Null (the documented
// "null sentinel") rather than an error — numeric coercion is total.
func ToNumber(v Value) Value {
	switch v.kind {
	case KindInt, KindFloat:
		return v
	case KindBool:
		if v.b {
			return Int(1)
		}
		return Int(0)
	case KindString:
		if i, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return Int(i)
		}
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return Float(f)
		}
		return Null()
	default:
		return Null()
	}
}

// AsString coerces v to its canonical string form. Total: never fails.
func AsString(v Value) string {
	if v.kind == KindNull {
		return ""
	}
	return v.String()
}

// asFloat64 extracts a float64 from a numeric Value (Int or Float). The
// second return is false for anything else.
func asFloat64(v Value) (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// isNumeric reports whether v is already Int or Float (no coercion).
func isNumeric(v Value) bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// numericFromCoercion reports whether v coerces to a number: either it is
// already numeric, or it is a string that parses as a decimal (the
// documented cross-type equality coercion, Open Question 1).
func numericFromCoercion(v Value) (Value, bool) {
	if isNumeric(v) {
		return v, true
	}
	if v.kind == KindString {
		n := ToNumber(v)
		if !n.IsNull() {
			return n, true
		}
	}
	return Null(), false
}

// valuesEqual implements Value.Equal.
func valuesEqual(a, b Value) bool {
	if a.kind == KindNull && b.kind == KindNull {
		return true
	}
	if a.kind == KindNull || b.kind == KindNull {
		return false
	}

	if a.kind == KindString && b.kind == KindString {
		return a.s == b.s
	}

	// Numeric vs numeric, with string<->number coercion permitted both ways.
	an, aNum := numericFromCoercion(a)
	bn, bNum := numericFromCoercion(b)
	if aNum && bNum {
		return numbersEqual(an, bn)
	}

	if a.kind == KindBool && b.kind == KindBool {
		return a.b == b.b
	}

	if a.kind == KindSequence && b.kind == KindSequence {
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !valuesEqual(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	}

	if a.kind == KindMapping && b.kind == KindMapping {
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !valuesEqual(av, bv) {
				return false
			}
		}
		return true
	}

	return false
}

func numbersEqual(a, b Value) bool {
	if a.kind == KindInt && b.kind == KindInt {
		return a.i == b.i
	}
	af, _ := asFloat64(a)
	bf, _ := asFloat64(b)
	return af == bf
}

// compareValues implements Value.Compare: ordering is defined only for
// numeric-vs-numeric (after string coercion) and string-vs-string pairs.
func compareValues(a, b Value) (int, bool) {
	if a.kind == KindString && b.kind == KindString {
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	}

	an, aNum := numericFromCoercion(a)
	bn, bNum := numericFromCoercion(b)
	if aNum && bNum {
		if an.kind == KindInt && bn.kind == KindInt {
			switch {
			case an.i < bn.i:
				return -1, true
			case an.i > bn.i:
				return 1, true
			default:
				return 0, true
			}
		}
		af, _ := asFloat64(an)
		bf, _ := asFloat64(bn)
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	if a.kind == KindString && b.kind == KindString {
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

// FromJSON converts the output of encoding/json.Unmarshal into an any
// (map[string]any, []any, float64, string, bool, nil) into a Value,
// recursively tagging every node. Used by the evaluate interface
// (ordo.Evaluate) to turn the caller's input record into a Value.
func FromJSON(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		if i := int64(t); float64(i) == t {
			return Int(i)
		}
		return Float(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case string:
		return String(t)
	case []any:
		seq := make([]Value, len(t))
		for i, e := range t {
			seq[i] = FromJSON(e)
		}
		return Sequence(seq)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = FromJSON(e)
		}
		return Mapping(m)
	default:
		return Null()
	}
}

// Interface converts a Value back into a plain Go value suitable for
// encoding/json.Marshal or returning through the public API as map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}
