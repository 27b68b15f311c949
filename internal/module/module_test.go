package module

import (
	"testing"

	"github.com/cwbudde/dynascript/internal/value"
	"github.com/cwbudde/dynascript/internal/xhash"
)

func TestAddFunctionInvalidatesIndex(t *testing.T) {
	m := New("root")
	m.BuildIndex()
	if !m.indexed {
		t.Fatalf("expected index built")
	}

	hash := xhash.Base(nil, "double", 1)
	m.AddFunction(&FuncDef{Name: "double", Arity: 1, Hash: hash})
	if m.indexed {
		t.Fatalf("AddFunction must invalidate the flat index")
	}

	def, ok := m.LookupFunc(hash)
	if !ok || def.Name != "double" {
		t.Fatalf("expected to resolve 'double', got %#v, %v", def, ok)
	}
	if !m.indexed {
		t.Fatalf("LookupFunc should rebuild the index lazily")
	}
}

func TestSubModuleFunctionsAreFlattened(t *testing.T) {
	root := New("root")
	mathMod := New("math")
	root.AddSubModule("math", mathMod)

	hash := xhash.Base(nil, "sqrt", 1)
	mathMod.AddFunction(&FuncDef{Name: "sqrt", Arity: 1, Hash: hash})

	def, ok := root.LookupFunc(hash)
	if !ok || def.Name != "sqrt" {
		t.Fatalf("expected root to resolve submodule function, got %#v, %v", def, ok)
	}
}

func TestSetVarQualifiesNameUnderNamespace(t *testing.T) {
	root := New("root")
	sub := New("config")
	root.AddSubModule("config", sub)
	sub.SetVar("timeout", value.NewInt(30))

	if _, ok := root.LookupVar("timeout"); ok {
		t.Fatalf("unqualified name must not resolve across a submodule boundary")
	}
	v, ok := root.LookupVar("config::timeout")
	if !ok {
		t.Fatalf("expected config::timeout to resolve")
	}
	iv, ok := v.(*value.Int)
	if !ok || iv.V != 30 {
		t.Fatalf("expected Int(30), got %#v", v)
	}
}

func TestMayResolveRejectsUnregisteredHash(t *testing.T) {
	m := New("root")
	registered := xhash.Base(nil, "known", 0)
	m.AddFunction(&FuncDef{Name: "known", Hash: registered})
	m.BuildIndex()

	if !m.MayResolve(registered) {
		t.Fatalf("bloom filter must accept a hash that was added")
	}

	unregistered := xhash.Base(nil, "nope_not_here", 7)
	if m.MayResolve(unregistered) {
		// A false positive is allowed in principle but astronomically
		// unlikely for one arbitrary probe against a near-empty filter;
		// treat it as a test failure rather than special-casing it.
		t.Fatalf("expected bloom filter to reject an unregistered hash")
	}
}

func TestBloomMergesUpFromSubModules(t *testing.T) {
	root := New("root")
	sub := New("strings")
	root.AddSubModule("strings", sub)

	hash := xhash.Base(nil, "upper", 1)
	sub.AddFunction(&FuncDef{Name: "upper", Arity: 1, Hash: hash})

	root.BuildIndex()
	if !root.MayResolve(hash) {
		t.Fatalf("expected root's Bloom filter to absorb submodule hashes after BuildIndex")
	}
}
