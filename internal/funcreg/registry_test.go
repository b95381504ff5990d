package funcreg

import (
	"testing"

	"github.com/ordo-run/ordo/internal/value"
)

func TestFastPathLookup(t *testing.T) {
	r := Get()
	for _, name := range fastPathNames {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("expected fast-path function %q to be registered", name)
		}
	}
}

func TestSlowPathLookup(t *testing.T) {
	r := Get()
	if _, ok := r.Lookup("sqrt"); !ok {
		t.Error("expected sqrt to be registered on the slow path")
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Error("expected unregistered name to miss")
	}
}

func TestBuiltinEdgeCases(t *testing.T) {
	r := Get()

	cases := []struct {
		name string
		args []value.Value
		want value.Value
	}{
		{"len", []value.Value{value.Null()}, value.Int(0)},
		{"sum", []value.Value{value.Sequence(nil)}, value.Int(0)},
		{"avg", []value.Value{value.Sequence(nil)}, value.Int(0)},
		{"upper", []value.Value{value.Null()}, value.String("")},
		{"coalesce", []value.Value{value.Null(), value.Null()}, value.Null()},
		{"is_null", []value.Value{value.Null()}, value.Bool(true)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, ok := r.Lookup(c.name)
			if !ok {
				t.Fatalf("%s not registered", c.name)
			}
			got := f(c.args)
			if !got.Equal(c.want) {
				t.Errorf("%s(%v) = %v, want %v", c.name, c.args, got, c.want)
			}
		})
	}
}

func TestRegistryIsSingleton(t *testing.T) {
	if Get() != Get() {
		t.Error("Get() should return the same Registry instance")
	}
}
