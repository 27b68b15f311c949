package value

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// baseValue factors the Tag/AccessMode bookkeeping shared by every
// concrete variant, mirroring the small amount of common state the
// teacher duplicates per concrete Value struct.
type baseValue struct {
	tag  int32
	mode AccessMode
}

func (b *baseValue) Tag() int32           { return b.tag }
func (b *baseValue) SetTag(t int32)       { b.tag = t }
func (b *baseValue) AccessMode() AccessMode { return b.mode }

// Unit is the absence of a value.
type Unit struct{ baseValue }

func NewUnit() *Unit                             { return &Unit{} }
func (u *Unit) TypeID() TypeID                   { return TypeUnit }
func (u *Unit) TypeName() string                 { return TypeUnit.String() }
func (u *Unit) String() string                   { return "()" }
func (u *Unit) Clone() Value                     { return &Unit{baseValue{mode: ReadWrite}} }
func (u *Unit) WithAccessMode(m AccessMode) Value { return &Unit{baseValue{u.tag, m}} }
func (u *Unit) Hash() uint64                     { return nonZeroHash(xxhash.Sum64String("unit")) }

// Bool wraps a boolean.
type Bool struct {
	baseValue
	V bool
}

func NewBool(v bool) *Bool                        { return &Bool{V: v} }
func (b *Bool) TypeID() TypeID                    { return TypeBool }
func (b *Bool) TypeName() string                  { return TypeBool.String() }
func (b *Bool) Clone() Value                      { return &Bool{baseValue{mode: ReadWrite}, b.V} }
func (b *Bool) WithAccessMode(m AccessMode) Value { return &Bool{baseValue{b.tag, m}, b.V} }
func (b *Bool) String() string {
	if b.V {
		return "true"
	}
	return "false"
}
func (b *Bool) Hash() uint64 {
	if b.V {
		return nonZeroHash(1)
	}
	return nonZeroHash(2)
}

// Int wraps a 64-bit signed integer.
type Int struct {
	baseValue
	V int64
}

func NewInt(v int64) *Int                        { return &Int{V: v} }
func (i *Int) TypeID() TypeID                    { return TypeInt }
func (i *Int) TypeName() string                  { return TypeInt.String() }
func (i *Int) Clone() Value                      { return &Int{baseValue{mode: ReadWrite}, i.V} }
func (i *Int) WithAccessMode(m AccessMode) Value { return &Int{baseValue{i.tag, m}, i.V} }
func (i *Int) String() string                    { return strconv.FormatInt(i.V, 10) }
func (i *Int) Hash() uint64                      { return nonZeroHash(xxhash.Sum64String("i:" + i.String())) }

// Char wraps a single Unicode code point.
type Char struct {
	baseValue
	V rune
}

func NewChar(v rune) *Char                        { return &Char{V: v} }
func (c *Char) TypeID() TypeID                    { return TypeChar }
func (c *Char) TypeName() string                  { return TypeChar.String() }
func (c *Char) Clone() Value                      { return &Char{baseValue{mode: ReadWrite}, c.V} }
func (c *Char) WithAccessMode(m AccessMode) Value { return &Char{baseValue{c.tag, m}, c.V} }
func (c *Char) String() string                    { return string(c.V) }
func (c *Char) Hash() uint64                      { return nonZeroHash(xxhash.Sum64String("c:" + string(c.V))) }

func nonZeroHash(h uint64) uint64 {
	if h == 0 {
		return 1
	}
	return h
}
