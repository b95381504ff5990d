// Package ordo is the public embeddable API for the rule engine: a thin
// façade gluing the compiler, interpreter, JIT analyzer, and compilation
// cache behind evaluate/load/diagnostic entry points. Neither this package
// nor anything it wraps performs file I/O or spawns goroutines of its own;
// callers (e.g. cmd/ordo) read rule-set bytes themselves and pass them in,
// and this package never implements engine semantics itself.
package ordo

import (
	"github.com/ordo-run/ordo/internal/ruleset"
)

// CompiledRuleSet is the immutable, opaque product of Load. It may be
// shared freely across goroutines and evaluated concurrently with no
// synchronization.
type CompiledRuleSet = ruleset.CompiledRuleSet

// RuleSet is the JSON-tagged wire structure a caller assembles (or decodes
// from JSON) before compiling it with Load.
type RuleSet = ruleset.RuleSet

// Diagnostic is a single non-fatal compile/parse problem, carrying a path
// a caller (or an editor) can use to surface it in place.
type Diagnostic = ruleset.Diagnostic
