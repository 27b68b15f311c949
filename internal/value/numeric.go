package value

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// Float is the optional floating-point variant of §3.1.
type Float struct {
	baseValue
	V float64
}

func NewFloat(v float64) *Float                    { return &Float{V: v} }
func (f *Float) TypeID() TypeID                    { return TypeFloat }
func (f *Float) TypeName() string                  { return TypeFloat.String() }
func (f *Float) Clone() Value                      { return &Float{baseValue{mode: ReadWrite}, f.V} }
func (f *Float) WithAccessMode(m AccessMode) Value { return &Float{baseValue{f.tag, m}, f.V} }
func (f *Float) String() string                    { return strconv.FormatFloat(f.V, 'g', -1, 64) }
func (f *Float) Hash() uint64                      { return nonZeroHash(xxhash.Sum64String("f:" + f.String())) }

// Decimal is the optional fixed-point variant of §3.1, backed by
// shopspring/decimal per SPEC_FULL's domain-stack wiring.
type Decimal struct {
	baseValue
	V decimal.Decimal
}

func NewDecimal(v decimal.Decimal) *Decimal { return &Decimal{V: v} }

func NewDecimalFromString(s string) (*Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &Decimal{V: d}, nil
}

func (d *Decimal) TypeID() TypeID   { return TypeDecimal }
func (d *Decimal) TypeName() string { return TypeDecimal.String() }
func (d *Decimal) Clone() Value     { return &Decimal{baseValue{mode: ReadWrite}, d.V} }
func (d *Decimal) WithAccessMode(m AccessMode) Value {
	return &Decimal{baseValue{d.tag, m}, d.V}
}
func (d *Decimal) String() string { return d.V.String() }
func (d *Decimal) Hash() uint64   { return nonZeroHash(xxhash.Sum64String("d:" + d.V.String())) }
