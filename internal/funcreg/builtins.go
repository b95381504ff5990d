package funcreg

import (
	"math"
	"strings"

	"github.com/ordo-run/ordo/internal/value"
)

// build constructs the singleton Registry. Follows a
// internal/formula/condition.go aggregate helpers (evaluateAggregate) for
// the shape of total, side-effect-free built-ins: every function below
// degrades gracefully to null/zero instead of failing.
func build() *Registry {
	r := &Registry{
		fastIdx: make(map[string]int, len(fastPathNames)),
		slow:    make(map[string]Func),
	}
	impls := []Func{
		fnLen, fnIsNull, fnAbs, fnSum, fnMin, fnMax, fnAvg, fnFirst, fnLast,
		fnType, fnUpper, fnLower, fnTrim, fnContains, fnStartsWith, fnEndsWith,
		fnRound, fnFloor, fnCeil, fnExists, fnCoalesce,
	}
	r.fastPath = impls
	for i, name := range fastPathNames {
		r.fastIdx[name] = i
	}

	// Math-only slow-path extras used by the JIT analyzer's math subset.
	r.slow["sqrt"] = fnSqrt
	r.slow["pow"] = fnPow

	return r
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Null()
	}
	return args[i]
}

// fnLen returns the length of a string, sequence, or mapping. len(null) = 0.
func fnLen(args []value.Value) value.Value {
	v := arg(args, 0)
	switch v.Kind() {
	case value.KindString:
		return value.Int(int64(len(v.RawString())))
	case value.KindSequence:
		return value.Int(int64(len(v.RawSequence())))
	case value.KindMapping:
		return value.Int(int64(len(v.RawMapping())))
	default:
		return value.Int(0)
	}
}

func fnIsNull(args []value.Value) value.Value {
	return value.Bool(arg(args, 0).IsNull())
}

func fnAbs(args []value.Value) value.Value {
	n := value.ToNumber(arg(args, 0))
	switch n.Kind() {
	case value.KindInt:
		i := n.RawInt()
		if i < 0 {
			i = -i
		}
		return value.Int(i)
	case value.KindFloat:
		return value.Float(math.Abs(n.RawFloat()))
	default:
		return value.Null()
	}
}

// numericSeq extracts the numeric elements of a sequence argument, coercing
// each element and skipping anything that doesn't coerce to a number.
func numericSeq(v value.Value) []value.Value {
	if v.Kind() != value.KindSequence {
		return nil
	}
	out := make([]value.Value, 0, len(v.RawSequence()))
	for _, e := range v.RawSequence() {
		n := value.ToNumber(e)
		if !n.IsNull() {
			out = append(out, n)
		}
	}
	return out
}

// sumAll adds a slice of already-numeric Values, promoting to float if any
// element is float, matching the evaluator's arithmetic promotion rule.
func sumAll(nums []value.Value) value.Value {
	allInt := true
	var fsum float64
	var isum int64
	for _, n := range nums {
		if n.Kind() == value.KindFloat {
			allInt = false
		}
	}
	if allInt {
		for _, n := range nums {
			isum += n.RawInt()
		}
		return value.Int(isum)
	}
	for _, n := range nums {
		if n.Kind() == value.KindInt {
			fsum += float64(n.RawInt())
		} else {
			fsum += n.RawFloat()
		}
	}
	return value.Float(fsum)
}

// fnSum returns the sum of a sequence's numeric elements. sum([]) = 0.
func fnSum(args []value.Value) value.Value {
	nums := numericSeq(arg(args, 0))
	if len(nums) == 0 {
		return value.Int(0)
	}
	return sumAll(nums)
}

func asF64(n value.Value) float64 {
	if n.Kind() == value.KindInt {
		return float64(n.RawInt())
	}
	return n.RawFloat()
}

// fnMin returns the smallest numeric element. min([]) = null.
func fnMin(args []value.Value) value.Value {
	nums := numericSeq(arg(args, 0))
	if len(nums) == 0 {
		return value.Null()
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if asF64(n) < asF64(best) {
			best = n
		}
	}
	return best
}

// fnMax returns the largest numeric element. max([]) = null.
func fnMax(args []value.Value) value.Value {
	nums := numericSeq(arg(args, 0))
	if len(nums) == 0 {
		return value.Null()
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if asF64(n) > asF64(best) {
			best = n
		}
	}
	return best
}

// fnAvg returns the mean of a sequence's numeric elements. avg([]) = 0,
// per Open Question 3 (resolved in DESIGN.md).
func fnAvg(args []value.Value) value.Value {
	nums := numericSeq(arg(args, 0))
	if len(nums) == 0 {
		return value.Int(0)
	}
	var total float64
	for _, n := range nums {
		total += asF64(n)
	}
	return value.Float(total / float64(len(nums)))
}

// fnFirst returns the first element of a sequence, or null if empty.
func fnFirst(args []value.Value) value.Value {
	v := arg(args, 0)
	if v.Kind() != value.KindSequence || len(v.RawSequence()) == 0 {
		return value.Null()
	}
	return v.RawSequence()[0]
}

// fnLast returns the last element of a sequence, or null if empty.
func fnLast(args []value.Value) value.Value {
	v := arg(args, 0)
	if v.Kind() != value.KindSequence || len(v.RawSequence()) == 0 {
		return value.Null()
	}
	seq := v.RawSequence()
	return seq[len(seq)-1]
}

// fnType returns the Kind name of a value, e.g. "null", "string", "int".
func fnType(args []value.Value) value.Value {
	return value.String(arg(args, 0).Kind().String())
}

// fnUpper upper-cases a string. upper(null) = "".
func fnUpper(args []value.Value) value.Value {
	v := arg(args, 0)
	if v.Kind() != value.KindString {
		return value.String("")
	}
	return value.String(strings.ToUpper(v.RawString()))
}

// fnLower lower-cases a string. lower(null) = "".
func fnLower(args []value.Value) value.Value {
	v := arg(args, 0)
	if v.Kind() != value.KindString {
		return value.String("")
	}
	return value.String(strings.ToLower(v.RawString()))
}

// fnTrim strips leading/trailing whitespace. trim(null) = "".
func fnTrim(args []value.Value) value.Value {
	v := arg(args, 0)
	if v.Kind() != value.KindString {
		return value.String("")
	}
	return value.String(strings.TrimSpace(v.RawString()))
}

func fnContains(args []value.Value) value.Value {
	a, b := arg(args, 0), arg(args, 1)
	if a.Kind() != value.KindString || b.Kind() != value.KindString {
		return value.Bool(false)
	}
	return value.Bool(strings.Contains(a.RawString(), b.RawString()))
}

func fnStartsWith(args []value.Value) value.Value {
	a, b := arg(args, 0), arg(args, 1)
	if a.Kind() != value.KindString || b.Kind() != value.KindString {
		return value.Bool(false)
	}
	return value.Bool(strings.HasPrefix(a.RawString(), b.RawString()))
}

func fnEndsWith(args []value.Value) value.Value {
	a, b := arg(args, 0), arg(args, 1)
	if a.Kind() != value.KindString || b.Kind() != value.KindString {
		return value.Bool(false)
	}
	return value.Bool(strings.HasSuffix(a.RawString(), b.RawString()))
}

func fnRound(args []value.Value) value.Value {
	n := value.ToNumber(arg(args, 0))
	if n.IsNull() {
		return value.Null()
	}
	return value.Float(math.Round(asF64(n)))
}

func fnFloor(args []value.Value) value.Value {
	n := value.ToNumber(arg(args, 0))
	if n.IsNull() {
		return value.Null()
	}
	return value.Float(math.Floor(asF64(n)))
}

func fnCeil(args []value.Value) value.Value {
	n := value.ToNumber(arg(args, 0))
	if n.IsNull() {
		return value.Null()
	}
	return value.Float(math.Ceil(asF64(n)))
}

// fnExists serves exists() calls whose single argument is not a variable
// path (and calls with any other argument count): internal/eval
// special-cases exists(<variable>) so it can distinguish an absent path from
// one that resolves to an explicit null, which a plain Value argument cannot
// express. For any other argument it reports whether the evaluated value is
// non-null. See internal/eval/eval.go.
func fnExists(args []value.Value) value.Value {
	return value.Bool(!arg(args, 0).IsNull())
}

// fnCoalesce mirrors the Coalesce AST node for callers that reach it via a
// plain Call (e.g. introspection tooling); the evaluator itself evaluates
// Coalesce nodes directly with short-circuit left-to-right semantics
// instead of calling through the registry, so all arguments here are
// already evaluated.
func fnCoalesce(args []value.Value) value.Value {
	for _, a := range args {
		if !a.IsNull() {
			return a
		}
	}
	return value.Null()
}

func fnSqrt(args []value.Value) value.Value {
	n := value.ToNumber(arg(args, 0))
	if n.IsNull() {
		return value.Null()
	}
	return value.Float(math.Sqrt(asF64(n)))
}

func fnPow(args []value.Value) value.Value {
	base := value.ToNumber(arg(args, 0))
	exp := value.ToNumber(arg(args, 1))
	if base.IsNull() || exp.IsNull() {
		return value.Null()
	}
	return value.Float(math.Pow(asF64(base), asF64(exp)))
}
