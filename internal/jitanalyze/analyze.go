// Package jitanalyze implements the JIT-compatibility analyzer (C7): a pure
// static pass over an expression's AST that decides whether it stays inside
// the math/boolean subset a native backend could compile. It never modifies
// the rule set; the report is purely advisory, following the same
// read-only static passes in internal/query (the cost-estimation walk over a
// parsed filter never mutates the AST it walks either).
package jitanalyze

import (
	"fmt"
	"sort"

	"github.com/ordo-run/ordo/internal/lang"
	"github.com/ordo-run/ordo/internal/value"
)

// Feature tags, named after what they gate rather than how they're
// detected.
const (
	FeatureNumericLiteral = "numeric_literal"
	FeatureBooleanLiteral = "boolean_literal"
	FeatureVariable       = "variable"
	FeatureArithmetic     = "arithmetic"
	FeatureComparison     = "comparison"
	FeatureBooleanOp      = "boolean_op"
	FeatureMathCall       = "math_call"

	FeatureStringComparison = "string_comparison"
	FeatureInContains       = "in_contains"
	FeatureArrayIndex       = "array_index"
	FeatureOtherCall        = "other_call"
	FeatureStringLiteral    = "string_literal"
	FeatureConditional      = "conditional"
	FeatureCoalesce         = "coalesce"
)

// mathFns is the math subset of built-ins allowed inside a
// JIT-compatible expression.
var mathFns = map[string]bool{
	"abs": true, "min": true, "max": true,
	"floor": true, "ceil": true, "round": true,
	"sqrt": true, "pow": true,
}

// Report is the per-expression analysis output.
type Report struct {
	JITCompatible       bool
	Reason              string
	AccessedFields      []string
	SupportedFeatures   []string
	UnsupportedFeatures []string
}

// Walk classifies expr against the math/boolean subset. It never returns an
// error: every Expr the parser can produce is classifiable, even if every
// node turns out unsupported.
func Walk(expr lang.Expr) Report {
	w := &walker{fields: map[string]bool{}, supported: map[string]bool{}, unsupported: map[string]bool{}}
	w.visit(expr)

	r := Report{
		JITCompatible:       len(w.unsupported) == 0,
		AccessedFields:      sortedKeys(w.fields),
		SupportedFeatures:   sortedKeys(w.supported),
		UnsupportedFeatures: sortedKeys(w.unsupported),
	}
	if !r.JITCompatible {
		r.Reason = fmt.Sprintf("uses unsupported feature(s): %v", r.UnsupportedFeatures)
	}
	return r
}

type walker struct {
	fields      map[string]bool
	supported   map[string]bool
	unsupported map[string]bool
}

func (w *walker) visit(expr lang.Expr) {
	switch e := expr.(type) {
	case lang.Literal:
		switch e.Value.Kind() {
		case value.KindBool:
			w.supported[FeatureBooleanLiteral] = true
		case value.KindInt, value.KindFloat:
			w.supported[FeatureNumericLiteral] = true
		default:
			w.unsupported[FeatureStringLiteral] = true
		}

	case lang.Variable:
		w.supported[FeatureVariable] = true
		path := pathString(e.Segments)
		w.fields[path] = true
		for _, seg := range e.Segments {
			if seg.IsIndex {
				w.unsupported[FeatureArrayIndex] = true
			}
		}

	case lang.UnaryOp:
		if e.Op == lang.OpNot {
			w.supported[FeatureBooleanOp] = true
		} else {
			w.supported[FeatureArithmetic] = true
		}
		w.visit(e.Child)

	case lang.BinaryOp:
		w.classifyBinary(e.Op)
		w.visit(e.LHS)
		w.visit(e.RHS)

	case lang.If:
		w.unsupported[FeatureConditional] = true
		w.visit(e.Cond)
		w.visit(e.Then)
		w.visit(e.Else)

	case lang.Coalesce:
		w.unsupported[FeatureCoalesce] = true
		for _, a := range e.Args {
			w.visit(a)
		}

	case lang.Call:
		if mathFns[e.Name] {
			w.supported[FeatureMathCall] = true
		} else {
			w.unsupported[FeatureOtherCall] = true
		}
		for _, a := range e.Args {
			w.visit(a)
		}
	}
}

func (w *walker) classifyBinary(op lang.BinaryOperator) {
	switch op {
	case lang.OpAdd, lang.OpSub, lang.OpMul, lang.OpDiv, lang.OpMod:
		w.supported[FeatureArithmetic] = true
	case lang.OpLt, lang.OpLte, lang.OpGt, lang.OpGte, lang.OpEq, lang.OpNeq:
		w.supported[FeatureComparison] = true
	case lang.OpAnd, lang.OpOr:
		w.supported[FeatureBooleanOp] = true
	case lang.OpIn, lang.OpContains, lang.OpStartsWith, lang.OpEndsWith:
		w.unsupported[FeatureInContains] = true
	}
}

func pathString(segs []lang.PathSegment) string {
	s := "$"
	for _, seg := range segs {
		if seg.IsIndex {
			s += "[]"
		} else {
			s += "." + seg.Field
		}
	}
	return s
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
