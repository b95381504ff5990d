package eval

import (
	"testing"

	"github.com/ordo-run/ordo/internal/lang"
	"github.com/ordo-run/ordo/internal/value"
)

func mustParse(t *testing.T, text string) lang.Expr {
	t.Helper()
	expr, diag := lang.Parse(text)
	if diag != nil {
		t.Fatalf("parse %q: %v", text, diag)
	}
	return expr
}

func TestVipDiscountCondition(t *testing.T) {
	expr := mustParse(t, "$.user.vip == true")

	input := value.FromJSON(map[string]any{"user": map[string]any{"vip": true}})
	ctx := NewContext(input)
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.ToBool(got) {
		t.Error("expected vip branch to be true")
	}

	input2 := value.FromJSON(map[string]any{"user": map[string]any{"vip": false}})
	got2, err := Eval(expr, NewContext(input2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToBool(got2) {
		t.Error("expected non-vip branch to be false")
	}
}

func TestShortCircuitSafety(t *testing.T) {
	expr := mustParse(t, "exists($.x) and $.x > 0")
	ctx := NewContext(value.FromJSON(map[string]any{}))
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("expected no TYPE_ERROR, got: %v", err)
	}
	if value.ToBool(got) {
		t.Error("expected false when $.x is absent")
	}
}

func TestDivisionByZero(t *testing.T) {
	expr := mustParse(t, "$.a / $.b > 1")
	ctx := NewContext(value.FromJSON(map[string]any{"a": float64(1), "b": float64(0)}))
	_, err := Eval(expr, ctx)
	evalErr, ok := err.(*Error)
	if !ok || evalErr.Code != CodeDivisionByZero {
		t.Fatalf("expected DIVISION_BY_ZERO, got %v", err)
	}
}

func TestArithmeticOverflow(t *testing.T) {
	ctx := NewContext(value.Mapping(map[string]value.Value{}))
	expr := lang.BinaryOp{
		Op:  lang.OpAdd,
		LHS: lang.Literal{Value: value.Int(9223372036854775807)},
		RHS: lang.Literal{Value: value.Int(1)},
	}
	_, err := Eval(expr, ctx)
	evalErr, ok := err.(*Error)
	if !ok || evalErr.Code != CodeArithmeticOverflow {
		t.Fatalf("expected ARITHMETIC_OVERFLOW, got %v", err)
	}
}

func TestCoalesceTotality(t *testing.T) {
	expr := mustParse(t, `coalesce($.a, $.b, "default")`)
	ctx := NewContext(value.FromJSON(map[string]any{}))
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RawString() != "default" {
		t.Errorf("got %v, want \"default\"", got)
	}
}

func TestStringNumberEqualityCoercion(t *testing.T) {
	expr := mustParse(t, `"100" == 100`)
	got, err := Eval(expr, NewContext(value.Mapping(nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.ToBool(got) {
		t.Error(`expected "100" == 100 to be true`)
	}
}

func TestLocalsShadowInput(t *testing.T) {
	ctx := NewContext(value.FromJSON(map[string]any{"discount": float64(5)}))
	ctx.SetLocal("discount", value.Int(10))
	expr := mustParse(t, "$.discount")
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != value.KindInt || got.RawInt() != 10 {
		t.Errorf("expected local to shadow input, got %v", got)
	}
}

func TestOrderedComparisonTypeError(t *testing.T) {
	expr := lang.BinaryOp{
		Op:  lang.OpLt,
		LHS: lang.Literal{Value: value.Bool(true)},
		RHS: lang.Literal{Value: value.Bool(false)},
	}
	_, err := Eval(expr, NewContext(value.Mapping(nil)))
	evalErr, ok := err.(*Error)
	if !ok || evalErr.Code != CodeTypeError {
		t.Fatalf("expected TYPE_ERROR, got %v", err)
	}
}

func TestIndexOutOfBoundsYieldsNull(t *testing.T) {
	expr := mustParse(t, "$.arr[5]")
	ctx := NewContext(value.FromJSON(map[string]any{"arr": []any{1, 2}}))
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("expected null for out-of-range index, got %v", got)
	}
}

func TestNonStrictModeMissingVariableYieldsNull(t *testing.T) {
	expr := mustParse(t, "$.missing")
	ctx := NewContext(value.FromJSON(map[string]any{}))
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error in non-strict mode: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("expected null for a missing path, got %v", got)
	}
}

func TestStrictModeMissingVariableRaisesUnknownVariable(t *testing.T) {
	expr := mustParse(t, "$.missing")
	ctx := NewContext(value.FromJSON(map[string]any{}))
	ctx.Strict = true
	_, err := Eval(expr, ctx)
	evalErr, ok := err.(*Error)
	if !ok || evalErr.Code != CodeUnknownVariable {
		t.Fatalf("expected UNKNOWN_VARIABLE, got %v", err)
	}
}

func TestStrictModePresentVariableStillResolves(t *testing.T) {
	expr := mustParse(t, "$.user.vip")
	ctx := NewContext(value.FromJSON(map[string]any{"user": map[string]any{"vip": true}}))
	ctx.Strict = true
	got, err := Eval(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.ToBool(got) {
		t.Error("expected vip to resolve true under strict mode")
	}
}

func TestDivisionOverflowMinInt64(t *testing.T) {
	expr := lang.BinaryOp{
		Op:  lang.OpDiv,
		LHS: lang.Literal{Value: value.Int(-9223372036854775808)},
		RHS: lang.Literal{Value: value.Int(-1)},
	}
	_, err := Eval(expr, NewContext(value.Mapping(nil)))
	evalErr, ok := err.(*Error)
	if !ok || evalErr.Code != CodeArithmeticOverflow {
		t.Fatalf("expected ARITHMETIC_OVERFLOW, got %v", err)
	}
}

func TestModuloMinInt64ByNegOneDoesNotOverflow(t *testing.T) {
	expr := lang.BinaryOp{
		Op:  lang.OpMod,
		LHS: lang.Literal{Value: value.Int(-9223372036854775808)},
		RHS: lang.Literal{Value: value.Int(-1)},
	}
	got, err := Eval(expr, NewContext(value.Mapping(nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RawInt() != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestMultiplicationOverflowMinInt64TimesNegOne(t *testing.T) {
	expr := lang.BinaryOp{
		Op:  lang.OpMul,
		LHS: lang.Literal{Value: value.Int(-9223372036854775808)},
		RHS: lang.Literal{Value: value.Int(-1)},
	}
	_, err := Eval(expr, NewContext(value.Mapping(nil)))
	evalErr, ok := err.(*Error)
	if !ok || evalErr.Code != CodeArithmeticOverflow {
		t.Fatalf("expected ARITHMETIC_OVERFLOW, got %v", err)
	}
}
