// Package funcreg implements the process-wide function registry (C3): a
// singleton table of pure, total built-in functions, constructed once on
// first access and never rebuilt. A dense fast-path array covers the
// hottest identifiers by interned index; a hashed slow path serves
// everything else.
//
// The package is named funcreg rather than registry; DESIGN.md explains why.
package funcreg

import (
	"sync"

	"github.com/ordo-run/ordo/internal/value"
)

// Func is a built-in: pure, total, side-effect-free. It never returns an
// error; nonsensical inputs yield a documented null/zero result instead.
type Func func(args []value.Value) value.Value

// fastPathNames lists the hot identifiers in interned-index order, per
// the engine's fast-path inventory.
var fastPathNames = []string{
	"len", "is_null", "abs", "sum", "min", "max", "avg", "first", "last",
	"type", "upper", "lower", "trim", "contains", "starts_with", "ends_with",
	"round", "floor", "ceil", "exists", "coalesce",
}

// Registry is the process-wide function table. Read-only after
// construction, so it needs no locking on the lookup hot path: one-time
// init, immutable tables, and no periodic refresh since built-ins never
// change at runtime.
type Registry struct {
	fastPath []Func
	fastIdx  map[string]int
	slow     map[string]Func
}

var (
	instance *Registry
	once     sync.Once
)

// Get returns the process-wide Registry, building it on first call.
func Get() *Registry {
	once.Do(func() {
		instance = build()
	})
	return instance
}

// Lookup resolves a function by name, trying the fast path first.
func (r *Registry) Lookup(name string) (Func, bool) {
	if idx, ok := r.fastIdx[name]; ok {
		return r.fastPath[idx], true
	}
	f, ok := r.slow[name]
	return f, ok
}

// Names returns every registered function name, fast and slow path
// combined. The compiler (C5) validates Call nodes with Lookup, not Names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fastIdx)+len(r.slow))
	for _, n := range fastPathNames {
		names = append(names, n)
	}
	for n := range r.slow {
		names = append(names, n)
	}
	return names
}

// Register adds or replaces a slow-path function. Intended for host
// extensions; never called by the core itself (which only reads the
// registry built by build()).
func (r *Registry) Register(name string, f Func) {
	r.slow[name] = f
}
