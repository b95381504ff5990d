package flow

import "strings"

// TraceStep is one visited-step record, in visit order.
type TraceStep struct {
	StepID      string
	StepName    string
	StepType    string
	EnteredAtNs int64
	DurationNs  int64
	Taken       string // branch id taken, empty for non-decision steps
}

// Trace is the full ordered visit log for one execution.
type Trace struct {
	Steps []TraceStep
}

// Path joins the visited step ids with "->".
func (t Trace) Path() string {
	ids := make([]string, len(t.Steps))
	for i, s := range t.Steps {
		ids[i] = s.StepID
	}
	return strings.Join(ids, "->")
}
