package ruleset

import (
	"sort"

	"github.com/ordo-run/ordo/internal/funcreg"
	"github.com/ordo-run/ordo/internal/lang"
)

// Diagnostic compile/parse error codes.
const (
	CodeDuplicateStepID   = "DUPLICATE_STEP_ID"
	CodeUnknownEntry      = "UNKNOWN_ENTRY"
	CodeDanglingReference = "DANGLING_REFERENCE"
	CodeExpressionInvalid = "EXPRESSION_INVALID"

	// CodeDuplicateBranchID is not part of the stable runtime/compile-time
	// taxonomy: step ids can never collide (rs.Steps is a map keyed by id),
	// so CodeDuplicateStepID never actually applies within a compile; a
	// repeated branch id inside one decision step's branch list gets its
	// own, distinctly named code instead of repurposing that one.
	CodeDuplicateBranchID = "DUPLICATE_BRANCH_ID"
)

// Diagnostic is a single non-fatal compile/parse problem, carrying a JSON
// Pointer-shaped path so a caller (or an editor) can surface it in place.
// Collected rather than returned as the first error, mirroring the
// accumulate-all-diagnostics-before-returning style.
type Diagnostic struct {
	Path    string
	Code    string
	Message string
	Line    int
	Column  int
}

func (d Diagnostic) Error() string {
	return d.Path + ": " + d.Code + ": " + d.Message
}

// CompiledRuleSet is the immutable, opaque product of Compile. It is safe
// to share across goroutines with no synchronization: every field is
// written once, during construction, and never mutated afterward.
type CompiledRuleSet struct {
	fingerprint string
	name        string
	version     string
	entryIndex  int
	enableTrace bool
	steps       []CompiledStep
	idToIndex   map[string]int
}

// Fingerprint returns the cache key / on-the-wire equality digest.
func (c *CompiledRuleSet) Fingerprint() string { return c.fingerprint }

// Name returns the rule set's configured name.
func (c *CompiledRuleSet) Name() string { return c.name }

// EnableTrace reports the rule set's default trace setting.
func (c *CompiledRuleSet) EnableTrace() bool { return c.enableTrace }

// EntryIndex returns the dense-array index of the entry step.
func (c *CompiledRuleSet) EntryIndex() int { return c.entryIndex }

// NumSteps returns the number of steps in the dense step array.
func (c *CompiledRuleSet) NumSteps() int { return len(c.steps) }

// StepAt returns the step at a dense-array index.
func (c *CompiledRuleSet) StepAt(i int) *CompiledStep { return &c.steps[i] }

// IndexForID resolves a step id to its dense-array index.
func (c *CompiledRuleSet) IndexForID(id string) (int, bool) {
	i, ok := c.idToIndex[id]
	return i, ok
}

// CompiledBranch is a Branch with its condition pre-parsed and its
// successor interned to a dense index (-1 for end-of-flow).
type CompiledBranch struct {
	ID        string
	Label     string
	Condition lang.Expr
	Next      int
}

// CompiledAssignment is an Assignment with its expression pre-parsed.
type CompiledAssignment struct {
	Name string
	Expr lang.Expr
}

// CompiledOutput is an OutputField with its expression pre-parsed.
type CompiledOutput struct {
	Name string
	Expr lang.Expr
}

// CompiledStep is a Step with every embedded expression pre-parsed and
// every id interned to a dense index.
type CompiledStep struct {
	ID   string
	Name string
	Type StepType

	Branches    []CompiledBranch
	DefaultNext int // -1 for end-of-flow

	Assignments []CompiledAssignment
	Logging     lang.Expr // nil if absent
	Next        int       // -1 for end-of-flow

	Code    string
	Message lang.Expr // nil if absent
	Output  []CompiledOutput
}

// Compile validates rs's step graph and produces
// an immutable CompiledRuleSet, or a non-empty list of Diagnostics when
// validation fails. A non-empty diagnostics slice is itself the failure
// signal; c is nil whenever diagnostics is non-empty.
func Compile(rs *RuleSet) (*CompiledRuleSet, []Diagnostic) {
	var diags []Diagnostic

	ids := make([]string, 0, len(rs.Steps))
	for id := range rs.Steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	idToIndex := make(map[string]int, len(ids))
	for i, id := range ids {
		idToIndex[id] = i
	}

	if _, ok := rs.Steps[rs.Config.EntryStepID]; !ok {
		diags = append(diags, Diagnostic{
			Path: "config.entryStepId", Code: CodeUnknownEntry,
			Message: "entry step " + rs.Config.EntryStepID + " does not exist",
		})
	}

	fns := funcreg.Get()

	resolveNext := func(path, next string) int {
		if next == "" {
			return -1
		}
		idx, ok := idToIndex[next]
		if !ok {
			diags = append(diags, Diagnostic{
				Path: path, Code: CodeDanglingReference,
				Message: "reference to unknown step " + next,
			})
			return -1
		}
		return idx
	}

	// parseRequired parses an expression that must be present: empty text
	// fails to parse and is reported like any other invalid expression.
	parseRequired := func(path, text string) lang.Expr {
		expr, diag := lang.Parse(text)
		if diag != nil {
			diags = append(diags, Diagnostic{
				Path: path, Code: CodeExpressionInvalid,
				Message: diag.Kind + ": " + diag.Message,
				Line:    diag.Line, Column: diag.Column,
			})
			return nil
		}
		checkCalls(expr, path, fns, &diags)
		return expr
	}

	// parseExpr parses an optional expression: empty text means absent.
	parseExpr := func(path, text string) lang.Expr {
		if text == "" {
			return nil
		}
		return parseRequired(path, text)
	}

	steps := make([]CompiledStep, len(ids))
	for i, id := range ids {
		src := rs.Steps[id]
		base := "steps." + id
		cs := CompiledStep{ID: id, Name: src.Name, Type: src.Type}

		switch src.Type {
		case StepDecision:
			seenBranchID := make(map[string]bool, len(src.Branches))
			cs.Branches = make([]CompiledBranch, len(src.Branches))
			for bi, b := range src.Branches {
				if seenBranchID[b.ID] {
					diags = append(diags, Diagnostic{
						Path: base + ".branches", Code: CodeDuplicateBranchID,
						Message: "duplicate branch id " + b.ID,
					})
				}
				seenBranchID[b.ID] = true
				cond := parseRequired(base+".branches["+b.ID+"].condition", b.Condition)
				cs.Branches[bi] = CompiledBranch{
					ID: b.ID, Label: b.Label, Condition: cond,
					Next: resolveNext(base+".branches["+b.ID+"].nextStepId", b.NextStepID),
				}
			}
			cs.DefaultNext = resolveNext(base+".defaultNextStepId", src.DefaultNextStepID)

		case StepAction:
			cs.Assignments = make([]CompiledAssignment, len(src.Assignments))
			for ai, a := range src.Assignments {
				cs.Assignments[ai] = CompiledAssignment{
					Name: a.Name,
					Expr: parseRequired(base+".assignments["+a.Name+"].expr", a.Expr),
				}
			}
			cs.Logging = parseExpr(base+".logging", src.Logging)
			cs.Next = resolveNext(base+".nextStepId", src.NextStepID)

		case StepTerminal:
			cs.Code = src.Code
			cs.Message = parseExpr(base+".message", src.Message)
			cs.Output = make([]CompiledOutput, len(src.Output))
			for oi, o := range src.Output {
				cs.Output[oi] = CompiledOutput{
					Name: o.Name,
					Expr: parseRequired(base+".output["+o.Name+"].expr", o.Expr),
				}
			}
		}

		steps[i] = cs
	}

	if len(diags) > 0 {
		return nil, diags
	}

	entryIndex := idToIndex[rs.Config.EntryStepID]
	fp, err := Fingerprint(rs)
	if err != nil {
		return nil, []Diagnostic{{Path: "", Code: CodeExpressionInvalid, Message: "fingerprint: " + err.Error()}}
	}

	return &CompiledRuleSet{
		fingerprint: fp,
		name:        rs.Config.Name,
		version:     rs.Config.Version,
		entryIndex:  entryIndex,
		enableTrace: rs.Config.EnableTrace,
		steps:       steps,
		idToIndex:   idToIndex,
	}, nil
}

// checkCalls walks expr looking for Call nodes naming a function the
// registry doesn't know, reporting UNKNOWN_FUNCTION for each.
func checkCalls(expr lang.Expr, path string, fns *funcreg.Registry, diags *[]Diagnostic) {
	switch e := expr.(type) {
	case lang.Call:
		if _, ok := fns.Lookup(e.Name); !ok {
			*diags = append(*diags, Diagnostic{
				Path: path, Code: "UNKNOWN_FUNCTION",
				Message: "unknown function " + e.Name,
			})
		}
		for _, a := range e.Args {
			checkCalls(a, path, fns, diags)
		}
	case lang.Coalesce:
		for _, a := range e.Args {
			checkCalls(a, path, fns, diags)
		}
	case lang.UnaryOp:
		checkCalls(e.Child, path, fns, diags)
	case lang.BinaryOp:
		checkCalls(e.LHS, path, fns, diags)
		checkCalls(e.RHS, path, fns, diags)
	case lang.If:
		checkCalls(e.Cond, path, fns, diags)
		checkCalls(e.Then, path, fns, diags)
		checkCalls(e.Else, path, fns, diags)
	case lang.Variable:
		for _, seg := range e.Segments {
			if seg.IsIndex {
				checkCalls(seg.Index, path, fns, diags)
			}
		}
	}
}
