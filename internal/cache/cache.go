// Package cache implements the compilation cache (C8): a mapping from a
// rule-set fingerprint to its CompiledRuleSet, with an at-most-one
// concurrent build per fingerprint and capacity-bounded LRU eviction.
//
// Follows the common LRU-plus-singleflight shape for
// the load-once-then-serve-from-memory shape, upgraded per SPEC_FULL.md's
// DOMAIN STACK section: LabelCache dedupes its single global load with a
// sync.Once, which only helps the very first caller; this cache has many
// independent keys that each need their own once-guard, so it reaches for
// golang.org/x/sync/singleflight instead, and for real LRU eviction
// (github.com/hashicorp/golang-lru/v2) instead of an unbounded map.
package cache

import (
	"github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ordo-run/ordo/internal/ruleset"
)

// defaultCapacity bounds the number of compiled rule sets retained; beyond
// it, the least-recently-used entry is evicted, following an "eviction
// policy: capacity-bounded with least-recently-used discipline."
const defaultCapacity = 256

// BuildFunc compiles a rule set from scratch. Concurrent callers that miss
// on the same fingerprint share one in-flight build: the "at most one
// concurrent build per fingerprint" contract (P7). A build that returns a
// nil CompiledRuleSet is not cached, and an evicted entry is rebuilt on its
// next request.
type BuildFunc func() (*ruleset.CompiledRuleSet, []ruleset.Diagnostic)

// Cache maps a fingerprint to its compiled form. The zero value is not
// usable; construct with New. A nil *Cache is valid and means "caching
// disabled" policy — caching is optional and callers may disable it —
// GetOrCompile on a nil *Cache always calls build directly.
type Cache struct {
	lru    *lru.Cache[string, *ruleset.CompiledRuleSet]
	flight singleflight.Group
}

// New constructs a Cache bounded to capacity entries. capacity <= 0 uses
// defaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	l, err := lru.New[string, *ruleset.CompiledRuleSet](capacity)
	if err != nil {
		// Only invalid (<=0) size ever errors here, and we've just clamped
		// it above, so this is unreachable in practice.
		panic("cache: " + err.Error())
	}
	return &Cache{lru: l}
}

// GetOrCompile returns the CompiledRuleSet cached under fingerprint,
// building it with build on a miss. Concurrent callers racing on the same
// fingerprint collapse onto a single build call and all observe the same
// result (P7); callers observe either the prior cached value or the fully
// initialized new one, never a partial one, per the concurrency model of
// concurrent goroutines.
func (c *Cache) GetOrCompile(fingerprint string, build BuildFunc) (*ruleset.CompiledRuleSet, []ruleset.Diagnostic) {
	if c == nil {
		return build()
	}

	if compiled, ok := c.lru.Get(fingerprint); ok {
		return compiled, nil
	}

	type result struct {
		compiled *ruleset.CompiledRuleSet
		diags    []ruleset.Diagnostic
	}

	v, _, _ := c.flight.Do(fingerprint, func() (any, error) {
		compiled, diags := build()
		if compiled != nil {
			c.lru.Add(fingerprint, compiled)
		}
		return result{compiled: compiled, diags: diags}, nil
	})

	r := v.(result)
	return r.compiled, r.diags
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge evicts every cached entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
