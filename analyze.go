package ordo

import (
	"sort"

	"github.com/ordo-run/ordo/internal/jitanalyze"
	"github.com/ordo-run/ordo/internal/lang"
	"github.com/ordo-run/ordo/internal/ruleset"
)

// ExpressionAnalysis is the per-expression JIT-compatibility report, plus
// the re-serialised AST a caller needs for display.
type ExpressionAnalysis struct {
	JITCompatible       bool
	Reason              string
	AccessedFields      []string
	SupportedFeatures   []string
	UnsupportedFeatures []string
	Canonical           string
}

// RuleSetAnalysis is the aggregate JIT analysis of a whole rule set.
type RuleSetAnalysis struct {
	CompatibleCount int
	TotalCount      int
	RequiredFields  []string
	SpeedupEstimate float64
	PerExpression   map[string]ExpressionAnalysis
}

// AnalyzeExpression parses text and runs the JIT-compatibility analyzer
// over it.
func AnalyzeExpression(text string) (ExpressionAnalysis, error) {
	expr, diag := lang.Parse(text)
	if diag != nil {
		return ExpressionAnalysis{}, diag
	}
	return toExpressionAnalysis(expr), nil
}

func toExpressionAnalysis(expr lang.Expr) ExpressionAnalysis {
	r := jitanalyze.Walk(expr)
	return ExpressionAnalysis{
		JITCompatible:       r.JITCompatible,
		Reason:              r.Reason,
		AccessedFields:      r.AccessedFields,
		SupportedFeatures:   r.SupportedFeatures,
		UnsupportedFeatures: r.UnsupportedFeatures,
		Canonical:           expr.String(),
	}
}

// AnalyzeRuleSet runs the JIT analyzer over every embedded expression in a
// compiled rule set and aggregates the per-expression reports into a
// per-rule-set summary.
//
// The heuristic speedup estimate is deliberately simple: 1.0x if any
// expression in the rule set is JIT-incompatible, scaling up toward ~20x
// as the compatible fraction approaches 1.0.
func AnalyzeRuleSet(compiled *CompiledRuleSet) RuleSetAnalysis {
	agg := RuleSetAnalysis{PerExpression: make(map[string]ExpressionAnalysis)}
	fields := make(map[string]bool)

	walk := func(path string, expr lang.Expr) {
		if expr == nil {
			return
		}
		agg.TotalCount++
		ea := toExpressionAnalysis(expr)
		agg.PerExpression[path] = ea
		if ea.JITCompatible {
			agg.CompatibleCount++
		}
		for _, f := range ea.AccessedFields {
			fields[f] = true
		}
	}

	analyzeCompiledRuleSet(compiled, walk)

	agg.RequiredFields = sortedFields(fields)
	if agg.TotalCount == 0 || agg.CompatibleCount < agg.TotalCount {
		agg.SpeedupEstimate = 1.0
	} else {
		agg.SpeedupEstimate = 20.0
	}
	return agg
}

func sortedFields(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// analyzeCompiledRuleSet calls walk(path, expr) for every embedded
// expression of compiled: branch conditions, action assignments and
// logging messages, and terminal messages and output fields.
func analyzeCompiledRuleSet(compiled *CompiledRuleSet, walk func(path string, expr lang.Expr)) {
	for i := 0; i < compiled.NumSteps(); i++ {
		step := compiled.StepAt(i)
		base := "steps." + step.ID
		switch step.Type {
		case ruleset.StepDecision:
			for _, b := range step.Branches {
				walk(base+".branches["+b.ID+"].condition", b.Condition)
			}
		case ruleset.StepAction:
			for _, a := range step.Assignments {
				walk(base+".assignments["+a.Name+"].expr", a.Expr)
			}
			walk(base+".logging", step.Logging)
		case ruleset.StepTerminal:
			walk(base+".message", step.Message)
			for _, o := range step.Output {
				walk(base+".output["+o.Name+"].expr", o.Expr)
			}
		}
	}
}
