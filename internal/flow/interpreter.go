// Package flow implements the step-flow interpreter (C6): the
// Decision/Action/Terminal state machine, trace collection, and the
// maxSteps/timeoutNs bounds. Cooperative cancellation rides on a standard
// library context.Context rather than a hand-polled boolean — idiomatic
// Go even though the host cancellation signal is naturally phrased as a polled
// boolean; ctx.Done() is checked at the same step-boundary points the spec
// describes, never mid-expression.
package flow

import (
	"context"
	"time"

	"github.com/ordo-run/ordo/internal/eval"
	"github.com/ordo-run/ordo/internal/ruleset"
	"github.com/ordo-run/ordo/internal/value"
)

// Execution (runtime) error codes.
const (
	CodeStepLimitExceeded = "STEP_LIMIT_EXCEEDED"
	CodeTimeout           = "TIMEOUT"
	CodeCancelled         = "CANCELLED"
)

const defaultMaxSteps = 10000

// Logger is the injected logging hook: one operation, never called
// from inside the expression evaluator, only from an Action step's logging
// directive. A nil Logger is a no-op, matching spec's "absence of a logger
// is not an error."
type Logger interface {
	Log(level, renderedMessage, stepID, ruleName string)
}

// Options carries the per-call overrides for a single run.
type Options struct {
	// EnableTrace overrides the rule set's default trace setting when
	// non-nil.
	EnableTrace *bool
	// MaxSteps overrides the default of 10 000 when positive.
	MaxSteps int
	// TimeoutNs overrides the disabled-by-default timeout when positive.
	TimeoutNs int64
	// Logger receives rendered log messages from Action step logging
	// directives. Nil disables logging.
	Logger Logger
	// Deterministic zeroes every trace timestamp/duration instead of
	// measuring wall-clock time, for snapshot-stable tests.
	Deterministic bool
	// Strict raises UNKNOWN_VARIABLE for a variable path that resolves to
	// an absent segment rather than silently yielding null.
	Strict bool
}

// Result is the outcome of one execution.
type Result struct {
	Code       string
	Message    value.Value
	Output     map[string]value.Value
	DurationUs int64
	Trace      *Trace
}

// Run drives compiled against input to completion, honoring opts. It never
// mutates input or compiled (P2).
func Run(ctx context.Context, compiled *ruleset.CompiledRuleSet, input value.Value, opts Options) (Result, error) {
	start := time.Now()

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	enableTrace := compiled.EnableTrace()
	if opts.EnableTrace != nil {
		enableTrace = *opts.EnableTrace
	}

	evalCtx := eval.NewContext(input)
	evalCtx.Strict = opts.Strict

	var trace *Trace
	if enableTrace {
		trace = &Trace{}
	}

	current := compiled.EntryIndex()

	for steps := 0; ; steps++ {
		if opts.TimeoutNs > 0 && time.Since(start).Nanoseconds() > opts.TimeoutNs {
			return Result{}, &eval.Error{Code: CodeTimeout, Message: "execution exceeded timeoutNs"}
		}
		select {
		case <-ctx.Done():
			return Result{}, &eval.Error{Code: CodeCancelled, Message: "execution cancelled"}
		default:
		}
		if steps >= maxSteps {
			return Result{}, &eval.Error{Code: CodeStepLimitExceeded, Message: "exceeded maxSteps"}
		}

		step := compiled.StepAt(current)
		stepStart := time.Now()

		switch step.Type {
		case ruleset.StepDecision:
			nextIdx := step.DefaultNext
			taken := ""
			for _, b := range step.Branches {
				v, err := eval.Eval(b.Condition, evalCtx)
				if err != nil {
					return Result{}, err
				}
				if value.ToBool(v) {
					nextIdx = b.Next
					taken = b.ID
					break
				}
			}
			recordTrace(trace, step, stepStart, taken, opts.Deterministic)
			if nextIdx == -1 {
				return finishSynthetic(trace, start, opts.Deterministic), nil
			}
			current = nextIdx

		case ruleset.StepAction:
			for _, a := range step.Assignments {
				v, err := eval.Eval(a.Expr, evalCtx)
				if err != nil {
					return Result{}, err
				}
				evalCtx.SetLocal(a.Name, v)
			}
			if step.Logging != nil {
				msg, err := eval.Eval(step.Logging, evalCtx)
				if err != nil {
					return Result{}, err
				}
				if opts.Logger != nil {
					opts.Logger.Log("info", value.AsString(msg), step.ID, compiled.Name())
				}
			}
			recordTrace(trace, step, stepStart, "", opts.Deterministic)
			if step.Next == -1 {
				return finishSynthetic(trace, start, opts.Deterministic), nil
			}
			current = step.Next

		case ruleset.StepTerminal:
			msg := value.Null()
			if step.Message != nil {
				m, err := eval.Eval(step.Message, evalCtx)
				if err != nil {
					return Result{}, err
				}
				msg = m
			}
			output := make(map[string]value.Value, len(step.Output))
			for _, o := range step.Output {
				v, err := eval.Eval(o.Expr, evalCtx)
				if err != nil {
					return Result{}, err
				}
				output[o.Name] = v
			}
			recordTrace(trace, step, stepStart, "", opts.Deterministic)
			return Result{
				Code:       step.Code,
				Message:    msg,
				Output:     output,
				DurationUs: durationUs(start, opts.Deterministic),
				Trace:      trace,
			}, nil
		}
	}
}

func durationUs(start time.Time, deterministic bool) int64 {
	if deterministic {
		return 0
	}
	return time.Since(start).Microseconds()
}

func recordTrace(trace *Trace, step *ruleset.CompiledStep, stepStart time.Time, taken string, deterministic bool) {
	if trace == nil {
		return
	}
	var enteredAt, duration int64
	if !deterministic {
		enteredAt = stepStart.UnixNano()
		duration = time.Since(stepStart).Nanoseconds()
	}
	trace.Steps = append(trace.Steps, TraceStep{
		StepID: step.ID, StepName: step.Name, StepType: string(step.Type),
		EnteredAtNs: enteredAt, DurationNs: duration, Taken: taken,
	})
}

// finishSynthetic produces the synthetic FLOW_END terminal for an empty
// successor id.
func finishSynthetic(trace *Trace, start time.Time, deterministic bool) Result {
	return Result{
		Code:       "FLOW_END",
		Message:    value.Null(),
		Output:     map[string]value.Value{},
		DurationUs: durationUs(start, deterministic),
		Trace:      trace,
	}
}
