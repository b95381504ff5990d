package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ordo-run/ordo/internal/value"
)

// Expr is the closed set of expression AST node types. It mirrors the
// common approach of a small query-AST Node interface: a marker
// method plus a String() canonical form used both for diagnostics and the
// parse(print(ast)) round-trip property.
type Expr interface {
	expr()
	String() string
}

// UnaryOperator is the operator of a UnaryOp node.
type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpNeg
)

func (o UnaryOperator) String() string {
	if o == OpNot {
		return "!"
	}
	return "-"
}

// BinaryOperator is the operator of a BinaryOp node.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpAnd
	OpOr
	OpIn
	OpContains
	OpStartsWith
	OpEndsWith
)

var binaryOpNames = map[BinaryOperator]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLt: "<", OpLte: "<=", OpGt: ">", OpGte: ">=",
	OpEq: "==", OpNeq: "!=", OpAnd: "&&", OpOr: "||",
	OpIn: "in", OpContains: "contains", OpStartsWith: "startsWith", OpEndsWith: "endsWith",
}

func (o BinaryOperator) String() string { return binaryOpNames[o] }

// Literal is any Value except mappings and sequences containing non-literal
// children — i.e. a constant embedded directly in the expression text.
type Literal struct {
	Value value.Value
}

func (Literal) expr() {}
func (l Literal) String() string {
	switch l.Value.Kind() {
	case value.KindString:
		return strconv.Quote(l.Value.RawString())
	case value.KindFloat:
		// Keep a decimal point so the literal re-parses as a float, not an int.
		s := strconv.FormatFloat(l.Value.RawFloat(), 'f', -1, 64)
		if !strings.ContainsAny(s, ".IN") {
			s += ".0"
		}
		return s
	}
	return l.Value.String()
}

// PathSegment is one hop of a Variable path: either a field name or an
// index expression (evaluated at runtime, so $.arr[$.i] is legal).
type PathSegment struct {
	Field   string
	Index   Expr
	IsIndex bool
}

func (s PathSegment) String() string {
	if s.IsIndex {
		return "[" + s.Index.String() + "]"
	}
	return "." + s.Field
}

// Variable is a root-sentinel-prefixed path: a non-empty sequence of field
// and index segments walked against the evaluation Context.
type Variable struct {
	Segments []PathSegment
}

func (Variable) expr() {}
func (v Variable) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, s := range v.Segments {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// UnaryOp is a prefix operator applied to a single operand.
type UnaryOp struct {
	Op    UnaryOperator
	Child Expr
}

func (UnaryOp) expr() {}
func (u UnaryOp) String() string {
	if u.Op == OpNot {
		return "!" + u.Child.String()
	}
	return "-" + u.Child.String()
}

// BinaryOp is an infix operator applied to two operands.
type BinaryOp struct {
	Op  BinaryOperator
	LHS Expr
	RHS Expr
}

func (BinaryOp) expr() {}
func (b BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.LHS.String(), b.Op.String(), b.RHS.String())
}

// If is a three-branch conditional expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (If) expr() {}
func (i If) String() string {
	return fmt.Sprintf("if %s then %s else %s", i.Cond.String(), i.Then.String(), i.Else.String())
}

// Call invokes a registered function by name.
type Call struct {
	Name string
	Args []Expr
}

func (Call) expr() {}
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Coalesce evaluates its arguments left to right and yields the first
// non-null result.
type Coalesce struct {
	Args []Expr
}

func (Coalesce) expr() {}
func (c Coalesce) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return "coalesce(" + strings.Join(parts, ", ") + ")"
}
