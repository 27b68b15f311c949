// Package value implements §3.1's Value: a tagged runtime value
// carrying primitives, collections, callables, user variants, and
// shared/lock-protected cells. Following the teacher's interp.Value
// shape, the tagged union is expressed as a Go interface with one
// concrete struct per variant rather than a single struct with a kind
// enum, because each variant's payload and clone/hash semantics differ
// enough that per-type methods read more naturally in Go than a giant
// switch over an enum field (see DESIGN.md's Open Question resolution).
package value

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
)

func hashString(s string) uint64 { return xxhash.Sum64String(s) }

// AccessMode models §3.1's read-write / read-only access mode carried
// by every value.
type AccessMode uint8

const (
	ReadWrite AccessMode = iota
	ReadOnly
)

// TypeID is a stable identity for a runtime type, used by the
// dispatcher's overload resolution (§4.3) and by xhash's argument-type
// folding. Values 1..14 are the built-in variants; a host Variant
// reports its own id through VariantData.VariantTypeID.
type TypeID uint64

const (
	TypeUnit TypeID = iota + 1
	TypeBool
	TypeInt
	TypeChar
	TypeFloat
	TypeDecimal
	TypeString
	TypeArray
	TypeBlob
	TypeMap
	TypeFnPtr
	TypeTimestamp
	TypeVariant
	TypeShared

	// DynamicWildcard is the pseudo type-id the dispatcher substitutes
	// for an argument position when widening a hash during the
	// bitmask wildcard search of §4.3; it is never a real value's type.
	DynamicWildcard TypeID = 0
)

var typeNames = map[TypeID]string{
	TypeUnit: "Unit", TypeBool: "Bool", TypeInt: "Int", TypeChar: "Char",
	TypeFloat: "Float", TypeDecimal: "Decimal", TypeString: "String",
	TypeArray: "Array", TypeBlob: "Blob", TypeMap: "Map", TypeFnPtr: "FnPtr",
	TypeTimestamp: "Timestamp", TypeVariant: "Variant", TypeShared: "Shared",
}

func (t TypeID) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Variant"
}

// Value is the runtime value every expression evaluates to.
type Value interface {
	// TypeID reports the variant's stable type identity. A Shared
	// value transparently reports its inner value's type id, per the
	// §3.1 invariant.
	TypeID() TypeID
	// TypeName is the human-readable type name, also transparent
	// through Shared.
	TypeName() string
	// Clone produces a value decoupled from further mutation of the
	// receiver. Cloning a Shared yields another handle to the same
	// cell (§3.1); cloning any other variant deep-clones collections
	// only as needed (copy-on-write is implemented by Arr/Map/Blob
	// tracking a reference count and only copying their backing store
	// when that count is greater than one at mutation time).
	Clone() Value
	// AccessMode reports whether this value may be mutated in place.
	AccessMode() AccessMode
	// WithAccessMode returns a copy of the value carrying mode; used by
	// the parser/evaluator to mark const bindings read-only.
	WithAccessMode(mode AccessMode) Value
	// Tag is the small host-settable integer payload of §3.1, opaque
	// to the core.
	Tag() int32
	SetTag(t int32)
	// String renders the value for `print`/`debug`/string conversion.
	String() string
}

// Hashable is implemented by variants for which Hash is defined (the
// primitive variants and Blob); HashOf hashes Arr, Map and Shared
// itself without going through this interface. Variant and Timestamp
// deliberately do not implement this interface; hashing them is a hard
// error surfaced by the caller via HashOf.
type Hashable interface {
	Value
	Hash() uint64
}

// HashOf returns the content hash of v for use as a Map key or a `in`
// membership test, failing with diag.NotHashable for Variant and
// Timestamp values per §3.1's invariant. Shared values hash their
// current contents.
func HashOf(v Value) (uint64, error) {
	switch t := v.(type) {
	case *Shared:
		inner, unlock := t.RLock()
		defer unlock()
		return HashOf(inner)
	case *Arr:
		h := uint64(0x9e3779b97f4a7c15)
		for _, item := range t.Items() {
			eh, err := HashOf(item)
			if err != nil {
				return 0, err
			}
			h = (h ^ eh) * 1099511628211
		}
		return nonZeroHash(h), nil
	case *Map:
		h := uint64(0xcbf29ce484222325)
		for _, k := range t.Keys() {
			fv, _ := t.Get(k)
			eh, err := HashOf(fv)
			if err != nil {
				return 0, err
			}
			kh := nonZeroHash(hashString(k))
			h = (h ^ kh ^ eh) * 1099511628211
		}
		return nonZeroHash(h), nil
	}
	h, ok := v.(Hashable)
	if !ok {
		return 0, diag.New(diag.NotHashable, token.Position{}, "value of type %s is not hashable", v.TypeName())
	}
	return h.Hash(), nil
}
