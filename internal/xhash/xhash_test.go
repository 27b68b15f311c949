package xhash

import "testing"

func TestBaseIsStableAndNonZero(t *testing.T) {
	h1 := Base(nil, "add", 2)
	h2 := Base(nil, "add", 2)
	if h1 != h2 {
		t.Errorf("Base not deterministic: %d != %d", h1, h2)
	}
	if h1 == 0 {
		t.Errorf("Base must never be zero")
	}
}

func TestBaseDiffersByArityAndNamespace(t *testing.T) {
	a := Base(nil, "add", 2)
	b := Base(nil, "add", 3)
	if a == b {
		t.Errorf("arity must affect hash")
	}
	c := Base([]string{"math"}, "add", 2)
	if a == c {
		t.Errorf("namespace must affect hash")
	}
}

func TestWithArgTypesDiffers(t *testing.T) {
	base := Base(nil, "f", 2)
	h1 := WithArgTypes(base, []uint64{1, 2})
	h2 := WithArgTypes(base, []uint64{1, 3})
	if h1 == h2 {
		t.Errorf("different arg types must hash differently")
	}
	if h1 == 0 || h2 == 0 {
		t.Errorf("hash must never be zero")
	}
}

func TestTypedMethodDiffersByTypeName(t *testing.T) {
	base := Base(nil, "method", 1)
	a := TypedMethod("Foo", base)
	b := TypedMethod("Bar", base)
	if a == b {
		t.Errorf("type name must affect typed method hash")
	}
}

func TestMasksByPopcountOrdering(t *testing.T) {
	masks := MasksByPopcount(3, 8)
	// arity 3 -> masks 1..7 (0b001..0b111)
	if len(masks) != 7 {
		t.Fatalf("expected 7 masks, got %d", len(masks))
	}
	// First three entries must be the single-bit masks (popcount 1).
	seenPop := map[uint32]int{1: 0, 2: 0, 3: 0}
	for i, m := range masks {
		p := popcount(m)
		if i < 3 && p != 1 {
			t.Errorf("mask %d at position %d should have popcount 1, got %d", m, i, p)
		}
		seenPop[uint32(p)]++
	}
}

func TestDynamicWildcardMasksRespectsMaxDynamic(t *testing.T) {
	masks := DynamicWildcardMasks(10, 3)
	if len(masks) != (1<<3)-1 {
		t.Errorf("expected masks bounded by maxDynamic=3, got %d", len(masks))
	}
}
