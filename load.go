package ordo

import (
	"github.com/ordo-run/ordo/internal/cache"
	"github.com/ordo-run/ordo/internal/ruleset"
)

// defaultCache backs the package-level Load function. Most callers never
// need more than one process-wide cache; those who do (custom capacity, or
// caching disabled entirely) should construct their own Loader.
var defaultCache = cache.New(0)

// Loader wraps a compilation cache (C8). The zero Loader has caching
// disabled (every Load call recompiles); construct with NewLoader for a
// bounded cache.
type Loader struct {
	cache *cache.Cache
}

// NewLoader constructs a Loader backed by an LRU cache holding at most
// capacity compiled rule sets. capacity <= 0 uses the cache's default
// size.
func NewLoader(capacity int) *Loader {
	return &Loader{cache: cache.New(capacity)}
}

// NoCacheLoader returns a Loader with caching disabled: every Load call
// recompiles from scratch, for callers that want caching disabled
// entirely.
func NoCacheLoader() *Loader {
	return &Loader{cache: nil}
}

// Load parses, validates, and compiles source (canonical rule-set JSON),
// into a compiled rule set. On success it returns a
// *CompiledRuleSet and a nil diagnostics slice; on failure it returns a nil
// CompiledRuleSet and a non-empty diagnostics slice. No filesystem access
// is performed here — callers (e.g. cmd/ordo) read the file themselves and
// pass the bytes in.
func (l *Loader) Load(source []byte) (*CompiledRuleSet, []Diagnostic, error) {
	rs, err := ruleset.Parse(source)
	if err != nil {
		return nil, nil, err
	}

	fp, err := ruleset.Fingerprint(rs)
	if err != nil {
		return nil, nil, err
	}

	compiled, diags := l.cache.GetOrCompile(fp, func() (*CompiledRuleSet, []ruleset.Diagnostic) {
		return ruleset.Compile(rs)
	})
	if len(diags) > 0 {
		return nil, diags, nil
	}
	return compiled, nil, nil
}

// Load compiles source using the package-level default cache. Equivalent
// to NewLoader(0).Load(source) but shares its cache across every call in
// the process, matching the external loader's "avoid re-parsing identical
// rule sets" contract.
func Load(source []byte) (*CompiledRuleSet, []Diagnostic, error) {
	return (&Loader{cache: defaultCache}).Load(source)
}
