// Package eval implements the expression evaluator: a single recursive
// eval(expr, ctx) -> value.Value dispatch over typed, named error paths
// rather than bare errors.New.
package eval

import (
	"math"
	"strings"

	"github.com/ordo-run/ordo/internal/funcreg"
	"github.com/ordo-run/ordo/internal/lang"
	"github.com/ordo-run/ordo/internal/value"
)

// Eval evaluates expr against ctx. Side-effect-free: nothing here ever
// writes to ctx's locals frame (that happens only in the Action step
// transition of internal/flow). Errors propagate as *Error and terminate
// the whole execution.
func Eval(expr lang.Expr, ctx *Context) (value.Value, error) {
	switch e := expr.(type) {
	case lang.Literal:
		return e.Value, nil

	case lang.Variable:
		v, existed, err := resolveVariable(e.Segments, ctx)
		if err != nil {
			return value.Null(), err
		}
		if ctx.Strict && !existed {
			return value.Null(), newError(CodeUnknownVariable, "variable not found: "+e.String())
		}
		return v, nil

	case lang.UnaryOp:
		return evalUnary(e, ctx)

	case lang.BinaryOp:
		return evalBinary(e, ctx)

	case lang.If:
		cond, err := Eval(e.Cond, ctx)
		if err != nil {
			return value.Null(), err
		}
		if value.ToBool(cond) {
			return Eval(e.Then, ctx)
		}
		return Eval(e.Else, ctx)

	case lang.Call:
		return evalCall(e, ctx)

	case lang.Coalesce:
		for _, a := range e.Args {
			v, err := Eval(a, ctx)
			if err != nil {
				return value.Null(), err
			}
			if !v.IsNull() {
				return v, nil
			}
		}
		return value.Null(), nil
	}

	// Unreachable: the AST is a closed set and the compiler only ever
	// produces these node types.
	panic("eval: unknown expression node")
}

// resolveVariable walks a dotted/indexed path against ctx. The first
// segment is looked up in locals first, then the input record, matching
// the data model's combined "input record plus mutable locals frame"
// Context. existed reports whether the final segment was actually present
// (as opposed to absent), which is what exists() needs (Open Question 2).
func resolveVariable(segments []lang.PathSegment, ctx *Context) (value.Value, bool, error) {
	if len(segments) == 0 {
		return value.Null(), false, nil
	}

	first := segments[0]
	var cur value.Value
	var existed bool
	if first.IsIndex {
		idx, err := evalIndex(first.Index, ctx)
		if err != nil {
			return value.Null(), false, err
		}
		cur, existed = ctx.Input().Index(idx)
	} else {
		if lv, ok := ctx.Local(first.Field); ok {
			cur, existed = lv, true
		} else {
			cur, existed = ctx.Input().Field(first.Field)
		}
	}

	for _, seg := range segments[1:] {
		if !existed {
			// An absent or null intermediate short-circuits the remaining
			// path to null without error.
			return value.Null(), false, nil
		}
		if seg.IsIndex {
			idx, err := evalIndex(seg.Index, ctx)
			if err != nil {
				return value.Null(), false, err
			}
			cur, existed = cur.Index(idx)
		} else {
			cur, existed = cur.Field(seg.Field)
		}
	}

	return cur, existed, nil
}

func evalIndex(idxExpr lang.Expr, ctx *Context) (int, error) {
	v, err := Eval(idxExpr, ctx)
	if err != nil {
		return 0, err
	}
	n := value.ToNumber(v)
	if n.Kind() != value.KindInt {
		return -1, nil // not an integer index: treated as out-of-range
	}
	return int(n.RawInt()), nil
}

func evalUnary(e lang.UnaryOp, ctx *Context) (value.Value, error) {
	v, err := Eval(e.Child, ctx)
	if err != nil {
		return value.Null(), err
	}
	switch e.Op {
	case lang.OpNot:
		return value.Bool(!value.ToBool(v)), nil
	case lang.OpNeg:
		switch v.Kind() {
		case value.KindInt:
			if v.RawInt() == math.MinInt64 {
				return value.Null(), newError(CodeArithmeticOverflow, "negation overflow")
			}
			return value.Int(-v.RawInt()), nil
		case value.KindFloat:
			return value.Float(-v.RawFloat()), nil
		default:
			return value.Null(), newError(CodeTypeError, "unary '-' requires a number")
		}
	}
	panic("eval: unknown unary operator")
}

func evalBinary(e lang.BinaryOp, ctx *Context) (value.Value, error) {
	// Short-circuit operators evaluate the right operand conditionally.
	switch e.Op {
	case lang.OpAnd:
		l, err := Eval(e.LHS, ctx)
		if err != nil {
			return value.Null(), err
		}
		if !value.ToBool(l) {
			return value.Bool(false), nil
		}
		r, err := Eval(e.RHS, ctx)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(value.ToBool(r)), nil

	case lang.OpOr:
		l, err := Eval(e.LHS, ctx)
		if err != nil {
			return value.Null(), err
		}
		if value.ToBool(l) {
			return value.Bool(true), nil
		}
		r, err := Eval(e.RHS, ctx)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(value.ToBool(r)), nil
	}

	l, err := Eval(e.LHS, ctx)
	if err != nil {
		return value.Null(), err
	}
	r, err := Eval(e.RHS, ctx)
	if err != nil {
		return value.Null(), err
	}

	switch e.Op {
	case lang.OpAdd, lang.OpSub, lang.OpMul, lang.OpDiv, lang.OpMod:
		return evalArithmetic(e.Op, l, r)
	case lang.OpLt, lang.OpLte, lang.OpGt, lang.OpGte:
		return evalOrdered(e.Op, l, r)
	case lang.OpEq:
		return value.Bool(l.Equal(r)), nil
	case lang.OpNeq:
		return value.Bool(!l.Equal(r)), nil
	case lang.OpIn:
		return evalIn(l, r), nil
	case lang.OpContains, lang.OpStartsWith, lang.OpEndsWith:
		return evalStringOp(e.Op, l, r)
	}
	panic("eval: unknown binary operator")
}

func isNumericKind(v value.Value) bool {
	return v.Kind() == value.KindInt || v.Kind() == value.KindFloat
}

func evalArithmetic(op lang.BinaryOperator, l, r value.Value) (value.Value, error) {
	if !isNumericKind(l) || !isNumericKind(r) {
		return value.Null(), newError(CodeTypeError, "arithmetic requires numeric operands")
	}

	if l.Kind() == value.KindInt && r.Kind() == value.KindInt {
		a, b := l.RawInt(), r.RawInt()
		switch op {
		case lang.OpAdd:
			sum, ovf := addOvf(a, b)
			if ovf {
				return value.Null(), newError(CodeArithmeticOverflow, "integer addition overflow")
			}
			return value.Int(sum), nil
		case lang.OpSub:
			diff, ovf := subOvf(a, b)
			if ovf {
				return value.Null(), newError(CodeArithmeticOverflow, "integer subtraction overflow")
			}
			return value.Int(diff), nil
		case lang.OpMul:
			prod, ovf := mulOvf(a, b)
			if ovf {
				return value.Null(), newError(CodeArithmeticOverflow, "integer multiplication overflow")
			}
			return value.Int(prod), nil
		case lang.OpDiv:
			if b == 0 {
				return value.Null(), newError(CodeDivisionByZero, "integer division by zero")
			}
			if a == math.MinInt64 && b == -1 {
				return value.Null(), newError(CodeArithmeticOverflow, "integer division overflow")
			}
			return value.Int(a / b), nil
		case lang.OpMod:
			if b == 0 {
				return value.Null(), newError(CodeDivisionByZero, "integer modulo by zero")
			}
			// a % -1 is always 0 and never overflows, even at MinInt64.
			return value.Int(a % b), nil
		}
	}

	af, bf := asFloat(l), asFloat(r)
	switch op {
	case lang.OpAdd:
		return value.Float(af + bf), nil
	case lang.OpSub:
		return value.Float(af - bf), nil
	case lang.OpMul:
		return value.Float(af * bf), nil
	case lang.OpDiv:
		return value.Float(af / bf), nil // IEEE-754 semantics: may yield Inf/NaN
	case lang.OpMod:
		return value.Float(math.Mod(af, bf)), nil
	}
	panic("eval: unknown arithmetic operator")
}

func asFloat(v value.Value) float64 {
	if v.Kind() == value.KindInt {
		return float64(v.RawInt())
	}
	return v.RawFloat()
}

func evalOrdered(op lang.BinaryOperator, l, r value.Value) (value.Value, error) {
	cmp, ok := l.Compare(r)
	if !ok {
		return value.Null(), newError(CodeTypeError, "ordered comparison requires two numbers or two strings")
	}
	switch op {
	case lang.OpLt:
		return value.Bool(cmp < 0), nil
	case lang.OpLte:
		return value.Bool(cmp <= 0), nil
	case lang.OpGt:
		return value.Bool(cmp > 0), nil
	case lang.OpGte:
		return value.Bool(cmp >= 0), nil
	}
	panic("eval: unknown comparison operator")
}

func evalIn(l, r value.Value) value.Value {
	switch r.Kind() {
	case value.KindSequence:
		for _, e := range r.RawSequence() {
			if l.Equal(e) {
				return value.Bool(true)
			}
		}
		return value.Bool(false)
	case value.KindMapping:
		if l.Kind() != value.KindString {
			return value.Bool(false)
		}
		_, ok := r.Field(l.RawString())
		return value.Bool(ok)
	default:
		return value.Bool(false)
	}
}

func evalStringOp(op lang.BinaryOperator, l, r value.Value) (value.Value, error) {
	if l.Kind() != value.KindString || r.Kind() != value.KindString {
		return value.Null(), newError(CodeTypeError, op.String()+" requires two strings")
	}
	a, b := l.RawString(), r.RawString()
	switch op {
	case lang.OpContains:
		return value.Bool(strings.Contains(a, b)), nil
	case lang.OpStartsWith:
		return value.Bool(strings.HasPrefix(a, b)), nil
	case lang.OpEndsWith:
		return value.Bool(strings.HasSuffix(a, b)), nil
	}
	panic("eval: unknown string operator")
}

// evalCall dispatches a Call node. "exists" is special-cased because it
// needs path-presence information a plain value.Value argument cannot
// carry (see funcreg.fnExists); every other name is resolved through the
// function registry.
func evalCall(e lang.Call, ctx *Context) (value.Value, error) {
	if e.Name == "exists" && len(e.Args) == 1 {
		if v, ok := e.Args[0].(lang.Variable); ok {
			cur, existed, err := resolveVariable(v.Segments, ctx)
			if err != nil {
				return value.Null(), err
			}
			return value.Bool(existed && !cur.IsNull()), nil
		}
	}

	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(a, ctx)
		if err != nil {
			return value.Null(), err
		}
		args[i] = v
	}

	f, ok := funcreg.Get().Lookup(e.Name)
	if !ok {
		// Invariant violation: the compiler (C5) validates every Call name
		// against the registry before a CompiledRuleSet can exist.
		panic("eval: unknown function " + e.Name)
	}
	return f(args), nil
}
