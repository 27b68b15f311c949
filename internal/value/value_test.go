package value

import (
	"testing"
	"time"
)

func TestIntRoundTrip(t *testing.T) {
	v := NewInt(42)
	if v.V != 42 {
		t.Fatalf("expected 42, got %d", v.V)
	}
	if v.AccessMode() != ReadWrite {
		t.Fatalf("new values default to read-write")
	}
}

func TestSharedIsSharedAndFlatten(t *testing.T) {
	v := Value(NewInt(42))
	if IsShared(v) {
		t.Fatalf("plain Int must not report as shared")
	}
	sh := NewShared(v, SingleThread)
	if !IsShared(sh) {
		t.Fatalf("Shared must report as shared")
	}
	if !sh.IsUniquelyHeld() {
		t.Fatalf("freshly created Shared should be uniquely held")
	}
	flat := Flatten(sh)
	if flat.(*Int).V != 42 {
		t.Fatalf("flatten of unique shared should return the original value")
	}
}

func TestSharedCloneSharesCell(t *testing.T) {
	sh := NewShared(NewInt(1), SingleThread)
	clone := sh.Clone().(*Shared)
	if sh.IsUniquelyHeld() || clone.IsUniquelyHeld() {
		t.Fatalf("after cloning, neither handle should be uniquely held")
	}
	_, commit := sh.WLock()
	commit(NewInt(99))
	inner, unlock := clone.RLock()
	defer unlock()
	if inner.(*Int).V != 99 {
		t.Fatalf("mutation through one handle must be visible through the other: got %v", inner)
	}
}

func TestHashEqualValuesEqualHash(t *testing.T) {
	a, _ := HashOf(NewInt(7))
	b, _ := HashOf(NewInt(7))
	if a != b {
		t.Fatalf("equal ints must hash equal")
	}
	c, _ := HashOf(NewStr("hi"))
	d, _ := HashOf(NewStr("hi"))
	if c != d {
		t.Fatalf("equal strings must hash equal")
	}
}

func TestHashTimestampFails(t *testing.T) {
	if _, err := HashOf(NewTimestamp(time.Now())); err == nil {
		t.Fatalf("hashing a Timestamp must fail")
	}
}

func TestArrCopyOnWrite(t *testing.T) {
	a := NewArr([]Value{NewInt(1), NewInt(2)})
	b := a.Clone().(*Arr)
	b.Push(NewInt(3))
	if a.Len() != 2 {
		t.Fatalf("pushing to a clone must not affect the original: got len %d", a.Len())
	}
	if b.Len() != 3 {
		t.Fatalf("expected clone len 3, got %d", b.Len())
	}
}

func TestMapOrderedInsertion(t *testing.T) {
	m := NewMap()
	m.Set("b", NewInt(2))
	m.Set("a", NewInt(1))
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("map must preserve insertion order, got %v", keys)
	}
}

func TestFnPtrCurry(t *testing.T) {
	fp := NewFnPtr("add")
	curried := fp.WithCurried(NewInt(10))
	if len(fp.Curried) != 0 {
		t.Fatalf("original FnPtr must not be mutated by WithCurried")
	}
	if len(curried.Curried) != 1 || curried.Curried[0].(*Int).V != 10 {
		t.Fatalf("curried FnPtr should carry the bound argument")
	}
}
