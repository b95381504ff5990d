package eval

import "github.com/ordo-run/ordo/internal/value"

// Context wraps the immutable input record plus a mutable locals frame for
// variables assigned by action steps. A Context is constructed fresh per
// execution by the interpreter (internal/flow) and never reused.
type Context struct {
	input  value.Value
	locals map[string]value.Value
	// Strict enables UNKNOWN_VARIABLE errors for paths that resolve to an
	// absent segment rather than silently yielding null.
	Strict bool
}

// NewContext creates a Context over the given input record (must be a
// mapping) with an empty locals frame.
func NewContext(input value.Value) *Context {
	return &Context{input: input, locals: make(map[string]value.Value)}
}

// Input returns the immutable input record.
func (c *Context) Input() value.Value { return c.input }

// Local looks up a locally assigned variable by name.
func (c *Context) Local(name string) (value.Value, bool) {
	v, ok := c.locals[name]
	return v, ok
}

// SetLocal assigns (or overwrites) a local variable. Called only by the
// Action step transition in internal/flow, never from inside an expression
// evaluation, keeping eval() itself side-effect-free.
func (c *Context) SetLocal(name string, v value.Value) {
	c.locals[name] = v
}
