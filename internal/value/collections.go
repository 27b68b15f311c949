package value

import (
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// arrData is the copy-on-write backing store shared by Arr clones.
type arrData struct {
	items []Value
	refs  int32
}

// Arr is the optional sequence-of-Value variant of §3.1. Cloning an Arr
// is O(1): the new handle shares arrData and bumps refs; any mutating
// method first calls ensureUnique, which copies the backing slice if
// more than one handle is outstanding, satisfying "mutation triggers
// copy-on-write where the language reference count exceeds one."
type Arr struct {
	baseValue
	d *arrData
}

func NewArr(items []Value) *Arr {
	cp := make([]Value, len(items))
	copy(cp, items)
	return &Arr{d: &arrData{items: cp, refs: 1}}
}

func (a *Arr) TypeID() TypeID   { return TypeArray }
func (a *Arr) TypeName() string { return TypeArray.String() }

func (a *Arr) Clone() Value {
	atomic.AddInt32(&a.d.refs, 1)
	return &Arr{baseValue{mode: ReadWrite}, a.d}
}

func (a *Arr) WithAccessMode(m AccessMode) Value {
	atomic.AddInt32(&a.d.refs, 1)
	return &Arr{baseValue{a.tag, m}, a.d}
}

func (a *Arr) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.d.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Len returns the element count.
func (a *Arr) Len() int { return len(a.d.items) }

// At returns the element at index i (no bounds checking; callers use
// the dispatcher's IndexingType error on out-of-range access).
func (a *Arr) At(i int) Value { return a.d.items[i] }

// ensureUnique copies the backing slice if this handle is not the sole
// owner, then returns a (possibly new) *arrData safe to mutate in place.
func (a *Arr) ensureUnique() *arrData {
	if atomic.LoadInt32(&a.d.refs) > 1 {
		cp := make([]Value, len(a.d.items))
		copy(cp, a.d.items)
		atomic.AddInt32(&a.d.refs, -1)
		a.d = &arrData{items: cp, refs: 1}
	}
	return a.d
}

// Push appends v, copy-on-writing the backing store first if shared.
func (a *Arr) Push(v Value) {
	d := a.ensureUnique()
	d.items = append(d.items, v)
}

// Set replaces the element at index i in place (COW first).
func (a *Arr) Set(i int, v Value) {
	d := a.ensureUnique()
	d.items[i] = v
}

// Items returns a read-only snapshot of the backing slice.
func (a *Arr) Items() []Value { return a.d.items }

// Blob is the optional byte-sequence variant of §3.1, following the
// same copy-on-write discipline as Arr.
type blobData struct {
	bytes []byte
	refs  int32
}

type Blob struct {
	baseValue
	d *blobData
}

func NewBlob(b []byte) *Blob {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Blob{d: &blobData{bytes: cp, refs: 1}}
}

func (b *Blob) TypeID() TypeID   { return TypeBlob }
func (b *Blob) TypeName() string { return TypeBlob.String() }

func (b *Blob) Clone() Value {
	atomic.AddInt32(&b.d.refs, 1)
	return &Blob{baseValue{mode: ReadWrite}, b.d}
}

func (b *Blob) WithAccessMode(m AccessMode) Value {
	atomic.AddInt32(&b.d.refs, 1)
	return &Blob{baseValue{b.tag, m}, b.d}
}

func (b *Blob) String() string { return string(b.d.bytes) }
func (b *Blob) Len() int       { return len(b.d.bytes) }
func (b *Blob) Bytes() []byte  { return b.d.bytes }
func (b *Blob) Hash() uint64   { return nonZeroHash(xxhash.Sum64(b.d.bytes)) }

// mapData is the ordered-mapping backing store shared by Map clones.
// Insertion order is preserved in keys, matching §3.2's "ordered list
// of (ident, expr)" map literal shape.
type mapData struct {
	keys []string
	m    map[string]Value
	refs int32
}

// Map is the optional ordered-mapping variant of §3.1.
type Map struct {
	baseValue
	d *mapData
}

func NewMap() *Map {
	return &Map{d: &mapData{m: make(map[string]Value), refs: 1}}
}

func (mv *Map) TypeID() TypeID   { return TypeMap }
func (mv *Map) TypeName() string { return TypeMap.String() }

func (mv *Map) Clone() Value {
	atomic.AddInt32(&mv.d.refs, 1)
	return &Map{baseValue{mode: ReadWrite}, mv.d}
}

func (mv *Map) WithAccessMode(m AccessMode) Value {
	atomic.AddInt32(&mv.d.refs, 1)
	return &Map{baseValue{mv.tag, m}, mv.d}
}

func (mv *Map) String() string {
	var sb strings.Builder
	sb.WriteString("#{")
	for i, k := range mv.d.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(mv.d.m[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (mv *Map) ensureUnique() *mapData {
	if atomic.LoadInt32(&mv.d.refs) > 1 {
		cp := &mapData{
			keys: append([]string(nil), mv.d.keys...),
			m:    make(map[string]Value, len(mv.d.m)),
			refs: 1,
		}
		for k, v := range mv.d.m {
			cp.m[k] = v
		}
		atomic.AddInt32(&mv.d.refs, -1)
		mv.d = cp
	}
	return mv.d
}

// Get looks up key, reporting ok=false if absent.
func (mv *Map) Get(key string) (Value, bool) {
	v, ok := mv.d.m[key]
	return v, ok
}

// Set inserts or replaces key, copy-on-writing first and appending to
// the key order only on first insertion.
func (mv *Map) Set(key string, v Value) {
	d := mv.ensureUnique()
	if _, exists := d.m[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.m[key] = v
}

// Keys returns the insertion-ordered key list.
func (mv *Map) Keys() []string { return mv.d.keys }

// Len returns the number of entries.
func (mv *Map) Len() int { return len(mv.d.keys) }
