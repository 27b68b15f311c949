package value

import "time"

// VariantData is the capability set §3.1 requires of a boxed host type:
// cloneable, type-identifiable, name-reportable, and (via a plain Go
// type assertion on the concrete type stored in Variant.Data)
// downcastable.
type VariantData interface {
	CloneVariant() VariantData
	VariantTypeID() TypeID
	VariantTypeName() string
}

// Variant is the open-ended user-type variant of §3.1. It is
// deliberately not Hashable: attempting to hash a Variant is a hard
// error surfaced by HashOf.
type Variant struct {
	baseValue
	Data VariantData
}

func NewVariant(d VariantData) *Variant { return &Variant{Data: d} }

func (v *Variant) TypeID() TypeID   { return v.Data.VariantTypeID() }
func (v *Variant) TypeName() string { return v.Data.VariantTypeName() }

func (v *Variant) Clone() Value {
	return &Variant{baseValue{mode: ReadWrite}, v.Data.CloneVariant()}
}

func (v *Variant) WithAccessMode(m AccessMode) Value {
	return &Variant{baseValue{v.tag, m}, v.Data}
}

func (v *Variant) String() string { return v.TypeName() }

// Timestamp is the optional monotonic-instant variant of §3.1. It is
// not Hashable, matching Variant's restriction, because two timestamps
// that print identically may still differ in monotonic reading.
type Timestamp struct {
	baseValue
	V time.Time
}

func NewTimestamp(t time.Time) *Timestamp { return &Timestamp{V: t} }

func (t *Timestamp) TypeID() TypeID   { return TypeTimestamp }
func (t *Timestamp) TypeName() string { return TypeTimestamp.String() }
func (t *Timestamp) Clone() Value     { return &Timestamp{baseValue{mode: ReadWrite}, t.V} }
func (t *Timestamp) WithAccessMode(m AccessMode) Value {
	return &Timestamp{baseValue{t.tag, m}, t.V}
}
func (t *Timestamp) String() string { return t.V.Format(time.RFC3339Nano) }
