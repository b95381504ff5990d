package flow

import (
	"context"
	"testing"

	"github.com/ordo-run/ordo/internal/eval"
	"github.com/ordo-run/ordo/internal/ruleset"
	"github.com/ordo-run/ordo/internal/value"
)

// Scenario 1: VIP discount.
func TestScenarioVipDiscount(t *testing.T) {
	rs := &ruleset.RuleSet{
		Config: ruleset.Config{Name: "vip", Version: "1", EntryStepID: "check_vip"},
		Steps: map[string]ruleset.Step{
			"check_vip": {
				ID: "check_vip", Type: ruleset.StepDecision,
				Branches: []ruleset.Branch{
					{ID: "is_vip", Condition: "$.user.vip == true", NextStepID: "vip_terminal"},
				},
				DefaultNextStepID: "normal_terminal",
			},
			"vip_terminal": {
				ID: "vip_terminal", Type: ruleset.StepTerminal, Code: "VIP",
				Output: []ruleset.OutputField{{Name: "discount", Expr: "0.2"}},
			},
			"normal_terminal": {
				ID: "normal_terminal", Type: ruleset.StepTerminal, Code: "NORMAL",
				Output: []ruleset.OutputField{{Name: "discount", Expr: "0.05"}},
			},
		},
	}
	compiled := compileOrFail(t, rs)

	vipInput := value.FromJSON(map[string]any{"user": map[string]any{"vip": true}})
	res, err := Run(context.Background(), compiled, vipInput, Options{Deterministic: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != "VIP" {
		t.Errorf("code = %s, want VIP", res.Code)
	}
	if d := res.Output["discount"]; d.RawFloat() != 0.2 {
		t.Errorf("discount = %v, want 0.2", d)
	}

	normalInput := value.FromJSON(map[string]any{"user": map[string]any{"vip": false}})
	res2, err := Run(context.Background(), compiled, normalInput, Options{Deterministic: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res2.Code != "NORMAL" {
		t.Errorf("code = %s, want NORMAL", res2.Code)
	}
	if d := res2.Output["discount"]; d.RawFloat() != 0.05 {
		t.Errorf("discount = %v, want 0.05", d)
	}
}

// Scenario 2: short-circuit safety.
func TestScenarioShortCircuitSafety(t *testing.T) {
	rs := &ruleset.RuleSet{
		Config: ruleset.Config{Name: "sc", Version: "1", EntryStepID: "d"},
		Steps: map[string]ruleset.Step{
			"d": {
				ID: "d", Type: ruleset.StepDecision,
				Branches: []ruleset.Branch{
					{ID: "b", Condition: "exists($.x) and $.x > 0", NextStepID: "yes"},
				},
				DefaultNextStepID: "no",
			},
			"yes": {ID: "yes", Type: ruleset.StepTerminal, Code: "YES"},
			"no":  {ID: "no", Type: ruleset.StepTerminal, Code: "NO"},
		},
	}
	compiled := compileOrFail(t, rs)
	res, err := Run(context.Background(), compiled, value.Mapping(nil), Options{Deterministic: true})
	if err != nil {
		t.Fatalf("unexpected error (should short-circuit, not TYPE_ERROR): %v", err)
	}
	if res.Code != "NO" {
		t.Errorf("code = %s, want NO", res.Code)
	}
}

// Scenario 3: division by zero.
func TestScenarioDivisionByZero(t *testing.T) {
	rs := &ruleset.RuleSet{
		Config: ruleset.Config{Name: "dz", Version: "1", EntryStepID: "d"},
		Steps: map[string]ruleset.Step{
			"d": {
				ID: "d", Type: ruleset.StepDecision,
				Branches: []ruleset.Branch{
					{ID: "b", Condition: "$.a / $.b > 1", NextStepID: "yes"},
				},
				DefaultNextStepID: "no",
			},
			"yes": {ID: "yes", Type: ruleset.StepTerminal, Code: "YES"},
			"no":  {ID: "no", Type: ruleset.StepTerminal, Code: "NO"},
		},
	}
	compiled := compileOrFail(t, rs)
	input := value.FromJSON(map[string]any{"a": float64(1), "b": float64(0)})
	_, err := Run(context.Background(), compiled, input, Options{Deterministic: true})
	evalErr, ok := err.(*eval.Error)
	if !ok || evalErr.Code != eval.CodeDivisionByZero {
		t.Fatalf("expected DIVISION_BY_ZERO, got %v", err)
	}
}

// Scenario 4: step limit.
func TestScenarioStepLimit(t *testing.T) {
	rs := &ruleset.RuleSet{
		Config: ruleset.Config{Name: "loop", Version: "1", EntryStepID: "a"},
		Steps: map[string]ruleset.Step{
			"a": {ID: "a", Type: ruleset.StepAction, NextStepID: "b"},
			"b": {ID: "b", Type: ruleset.StepAction, NextStepID: "a"},
		},
	}
	compiled := compileOrFail(t, rs)
	_, err := Run(context.Background(), compiled, value.Mapping(nil), Options{MaxSteps: 100, Deterministic: true})
	flowErr, ok := err.(*eval.Error)
	if !ok || flowErr.Code != CodeStepLimitExceeded {
		t.Fatalf("expected STEP_LIMIT_EXCEEDED, got %v", err)
	}
}

// Scenario 5: trace path.
func TestScenarioTracePath(t *testing.T) {
	rs := &ruleset.RuleSet{
		Config: ruleset.Config{Name: "chain", Version: "1", EntryStepID: "d1", EnableTrace: true},
		Steps: map[string]ruleset.Step{
			"d1": {ID: "d1", Type: ruleset.StepDecision,
				Branches:          []ruleset.Branch{{ID: "b1", Condition: "true", NextStepID: "d2"}},
				DefaultNextStepID: "fail"},
			"d2": {ID: "d2", Type: ruleset.StepDecision,
				Branches:          []ruleset.Branch{{ID: "b2", Condition: "true", NextStepID: "d3"}},
				DefaultNextStepID: "fail"},
			"d3": {ID: "d3", Type: ruleset.StepDecision,
				Branches:          []ruleset.Branch{{ID: "b3", Condition: "true", NextStepID: "done"}},
				DefaultNextStepID: "fail"},
			"done": {ID: "done", Type: ruleset.StepTerminal, Code: "OK"},
			"fail": {ID: "fail", Type: ruleset.StepTerminal, Code: "FAIL"},
		},
	}
	compiled := compileOrFail(t, rs)
	res, err := Run(context.Background(), compiled, value.Mapping(nil), Options{Deterministic: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Trace == nil {
		t.Fatal("expected a trace")
	}
	wantPath := "d1->d2->d3->done"
	if got := res.Trace.Path(); got != wantPath {
		t.Errorf("path = %q, want %q", got, wantPath)
	}
	last := res.Trace.Steps[len(res.Trace.Steps)-1]
	if last.StepType != "terminal" {
		t.Errorf("last step type = %q, want terminal", last.StepType)
	}
}

// Scenario 6: fingerprint stability is covered by
// internal/ruleset/canonical_test.go (TestFingerprintStableAcrossKeyOrder).
