package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ordo-run/ordo/internal/ruleset"
)

func compileVIPRuleSet(t *testing.T) *ruleset.RuleSet {
	t.Helper()
	rs, err := ruleset.Parse([]byte(`{
		"config": {"name": "vip", "version": "1", "entryStepId": "term"},
		"steps": {
			"term": {"id": "term", "type": "terminal", "code": "OK"}
		}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return rs
}

func TestGetOrCompileCachesHit(t *testing.T) {
	c := New(8)
	rs := compileVIPRuleSet(t)
	fp, err := ruleset.Fingerprint(rs)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	var builds int32
	build := func() (*ruleset.CompiledRuleSet, []ruleset.Diagnostic) {
		atomic.AddInt32(&builds, 1)
		return ruleset.Compile(rs)
	}

	compiled1, diags := c.GetOrCompile(fp, build)
	if len(diags) != 0 || compiled1 == nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	compiled2, _ := c.GetOrCompile(fp, build)
	if compiled2 != compiled1 {
		t.Error("expected cache hit to return the same CompiledRuleSet pointer")
	}
	if atomic.LoadInt32(&builds) != 1 {
		t.Errorf("expected exactly one build, got %d", builds)
	}
}

// TestSingleFlight is the P7 property: under N concurrent loaders of the
// same fingerprint, the compiler runs at most once.
func TestSingleFlight(t *testing.T) {
	c := New(8)
	rs := compileVIPRuleSet(t)
	fp, err := ruleset.Fingerprint(rs)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	var builds int32
	release := make(chan struct{})
	build := func() (*ruleset.CompiledRuleSet, []ruleset.Diagnostic) {
		atomic.AddInt32(&builds, 1)
		<-release
		return ruleset.Compile(rs)
	}

	const n = 20
	var wg sync.WaitGroup
	results := make([]*ruleset.CompiledRuleSet, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			compiled, _ := c.GetOrCompile(fp, build)
			results[i] = compiled
		}(i)
	}
	close(release)
	wg.Wait()

	if atomic.LoadInt32(&builds) != 1 {
		t.Errorf("expected exactly one build across %d concurrent callers, got %d", n, builds)
	}
	for i, r := range results {
		if r != results[0] {
			t.Errorf("result %d differs from result 0; all concurrent callers must observe the same build", i)
		}
	}
}

func TestNilCacheDisabled(t *testing.T) {
	var c *Cache
	rs := compileVIPRuleSet(t)
	var builds int32
	build := func() (*ruleset.CompiledRuleSet, []ruleset.Diagnostic) {
		atomic.AddInt32(&builds, 1)
		return ruleset.Compile(rs)
	}
	c.GetOrCompile("fp", build)
	c.GetOrCompile("fp", build)
	if atomic.LoadInt32(&builds) != 2 {
		t.Errorf("expected a nil cache to call build every time, got %d calls", builds)
	}
	if c.Len() != 0 {
		t.Errorf("expected nil cache Len() == 0, got %d", c.Len())
	}
}
