// Package ruleset implements the declarative RuleSet data model and the
// compiler/validator (C5) that freezes it into an immutable
// CompiledRuleSet, plus canonical-JSON fingerprinting (canonical.go).
package ruleset

import "encoding/json"

// StepType tags which variant a Step is.
type StepType string

const (
	StepDecision StepType = "decision"
	StepAction   StepType = "action"
	StepTerminal StepType = "terminal"
)

// Config is the RuleSet's top-level configuration block.
type Config struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	EntryStepID string          `json:"entryStepId"`
	EnableTrace bool            `json:"enableTrace,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// Branch is one guarded outgoing edge of a Decision step. Declaration order
// within Step.Branches is semantic: evaluated first-match-wins.
type Branch struct {
	ID         string `json:"id"`
	Label      string `json:"label,omitempty"`
	Condition  string `json:"condition"`
	NextStepID string `json:"nextStepId,omitempty"`
}

// Assignment is one (name, expression) pair evaluated and stored into the
// locals frame by an Action step.
type Assignment struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// OutputField is one (name, expression) pair evaluated into a Terminal
// step's output map.
type OutputField struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// Step is a flattened representation of the tagged Decision/Action/Terminal
// variant: Type selects which of the type-specific fields below apply. A
// flattened struct with omitempty fields round-trips through JSON directly,
// rather than a Go union encoded through an interface with custom
// marshaling.
type Step struct {
	ID   string   `json:"id"`
	Name string   `json:"name,omitempty"`
	Type StepType `json:"type"`

	// Decision
	Branches          []Branch `json:"branches,omitempty"`
	DefaultNextStepID string   `json:"defaultNextStepId,omitempty"`

	// Action
	Assignments []Assignment `json:"assignments,omitempty"`
	Logging     string       `json:"logging,omitempty"`
	NextStepID  string       `json:"nextStepId,omitempty"`

	// Terminal
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Output  []OutputField `json:"output,omitempty"`
}

// StepGroup is purely presentational; the interpreter ignores it and
// canonical.go excludes it from the fingerprinted bytes.
type StepGroup struct {
	ID      string   `json:"id"`
	Label   string   `json:"label,omitempty"`
	StepIDs []string `json:"stepIds,omitempty"`
}

// RuleSet is the JSON-tagged wire structure callers submit to the load
// entry point.
type RuleSet struct {
	Config Config          `json:"config"`
	Steps  map[string]Step `json:"steps"`
	Groups []StepGroup     `json:"groups,omitempty"`
}

// Parse decodes a RuleSet from its wire JSON form. It performs no
// validation beyond what encoding/json itself enforces; semantic
// validation is Compile's job.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}
