package ordo

import (
	"context"

	"github.com/ordo-run/ordo/internal/eval"
	"github.com/ordo-run/ordo/internal/flow"
	"github.com/ordo-run/ordo/internal/value"
)

// EvalOptions carries the per-call overrides for a single evaluation. The zero value
// uses the compiled rule set's own trace default, the standard 10 000-step
// limit, no timeout, and no logger.
type EvalOptions struct {
	// EnableTrace overrides the rule set's config.enableTrace when non-nil.
	EnableTrace *bool
	// MaxSteps overrides the default of 10 000 when positive.
	MaxSteps int
	// TimeoutNs overrides the disabled-by-default timeout when positive.
	TimeoutNs int64
	// Logger receives rendered log messages from Action step logging
	// directives. Nil disables logging.
	Logger Logger
	// Deterministic zeroes every trace timestamp/duration, for
	// snapshot-stable tests and reproducible fixtures.
	Deterministic bool
	// Strict raises UNKNOWN_VARIABLE for a variable path that resolves to
	// an absent segment rather than silently yielding null.
	Strict bool
}

// TraceStep is one visited-step record of an EvalResult's trace.
type TraceStep struct {
	ID         string
	Name       string
	DurationUs int64
}

// Trace is the full execution trace, present only when tracing was
// enabled for the call.
type Trace struct {
	Path  string
	Steps []TraceStep
}

// EvalResult is the outcome of a successful Evaluate call.
type EvalResult struct {
	Code       string
	Message    any
	Output     map[string]any
	DurationUs int64
	Trace      *Trace
}

// Evaluate runs compiled against input, honoring opts, per the evaluate
// function. ctx carries cooperative cancellation only: the
// core performs no suspending I/O, so ctx.Done() is polled at step
// boundaries and nowhere else.
func Evaluate(ctx context.Context, compiled *CompiledRuleSet, input map[string]any, opts EvalOptions) (EvalResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	inputValue := value.FromJSON(map[string]any(input))

	result, err := flow.Run(ctx, compiled, inputValue, flow.Options{
		EnableTrace:   opts.EnableTrace,
		MaxSteps:      opts.MaxSteps,
		TimeoutNs:     opts.TimeoutNs,
		Logger:        opts.Logger,
		Deterministic: opts.Deterministic,
		Strict:        opts.Strict,
	})
	if err != nil {
		return EvalResult{}, err
	}

	out := EvalResult{
		Code:       result.Code,
		Message:    messageInterface(result.Message),
		Output:     outputInterface(result.Output),
		DurationUs: result.DurationUs,
	}
	if result.Trace != nil {
		out.Trace = &Trace{Path: result.Trace.Path(), Steps: traceSteps(result.Trace)}
	}
	return out, nil
}

func messageInterface(v value.Value) any {
	if v.IsNull() {
		return nil
	}
	return v.Interface()
}

func outputInterface(m map[string]value.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

func traceSteps(t *flow.Trace) []TraceStep {
	steps := make([]TraceStep, len(t.Steps))
	for i, s := range t.Steps {
		steps[i] = TraceStep{ID: s.StepID, Name: s.StepName, DurationUs: s.DurationNs / 1000}
	}
	return steps
}

// EvalError is the typed failure returned for runtime errors: a
// stable code string plus a message, satisfying the standard error
// interface. Callers should type-assert with errors.As to inspect Code.
type EvalError = eval.Error
