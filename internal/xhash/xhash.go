// Package xhash implements §4.4: stable 64-bit content hashes for
// function and variable lookup, built on top of xxhash so the hash is
// stable across process runs (unlike Go's randomized map/string hash).
package xhash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// nonZero guarantees the reserved sentinel value zero is never
// produced, per §4.4: callers rely on non-zero meaning "present".
func nonZero(h uint64) uint64 {
	if h == 0 {
		return 1
	}
	return h
}

// Base computes the call-site hash over an optional namespace path, a
// name, and an arity. Namespace-less calls pass a nil/empty path.
func Base(namespace []string, name string, arity int) uint64 {
	d := xxhash.New()
	for _, seg := range namespace {
		d.WriteString(seg)
		d.Write([]byte{0})
	}
	d.WriteString(name)
	d.Write([]byte{0})
	d.WriteString(strconv.Itoa(arity))
	return nonZero(d.Sum64())
}

// WithArgTypes folds a sequence of runtime argument-type identities
// into base to produce the native-resolution key used by the
// dispatcher's overload search (§4.3). typeIDs is one uint64 per
// argument position, in call order; a Dynamic wildcard position is
// represented by the reserved id 0 so that widened (Dynamic) variants
// of the same call produce a different, deterministic hash than the
// fully-typed call.
func WithArgTypes(base uint64, typeIDs []uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	putUint64(&buf, base)
	d.Write(buf[:])
	for _, id := range typeIDs {
		putUint64(&buf, id)
		d.Write(buf[:])
	}
	return nonZero(d.Sum64())
}

func putUint64(buf *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// TypedMethod folds a receiver type name into a script hash so that
// `fn "TypeName".method(args)` resolves only when the receiver's
// dynamic type name matches, per §4.4.
func TypedMethod(typeName string, base uint64) uint64 {
	d := xxhash.New()
	d.WriteString(typeName)
	d.Write([]byte{0})
	var buf [8]byte
	putUint64(&buf, base)
	d.Write(buf[:])
	return nonZero(d.Sum64())
}

// DynamicWildcardMasks enumerates, for an arity bounded by maxDynamic,
// every bitmask from 1 to 2^min(arity,maxDynamic)-1 in ascending
// numeric order. That order is not sorted by the number of wildcarded
// positions (0b011 comes before 0b100); MasksByPopcount gives the
// fewest-wildcards-first order.
func DynamicWildcardMasks(arity, maxDynamic int) []uint32 {
	n := arity
	if n > maxDynamic {
		n = maxDynamic
	}
	if n <= 0 {
		return nil
	}
	limit := uint32(1) << uint(n)
	masks := make([]uint32, 0, limit-1)
	for m := uint32(1); m < limit; m++ {
		masks = append(masks, m)
	}
	return masks
}

// MasksByPopcount returns the same bitmasks as DynamicWildcardMasks but
// sorted by ascending population count (number of wildcarded
// parameters) so that callers trying masks in order get one-wildcard,
// then two-wildcard, etc. The exact-types lookup (mask 0) is not
// included; callers try it before these masks.
func MasksByPopcount(arity, maxDynamic int) []uint32 {
	masks := DynamicWildcardMasks(arity, maxDynamic)
	buckets := make(map[int][]uint32)
	maxPop := 0
	for _, m := range masks {
		p := popcount(m)
		buckets[p] = append(buckets[p], m)
		if p > maxPop {
			maxPop = p
		}
	}
	out := make([]uint32, 0, len(masks))
	for p := 1; p <= maxPop; p++ {
		out = append(out, buckets[p]...)
	}
	return out
}

func popcount(m uint32) int {
	c := 0
	for m != 0 {
		c += int(m & 1)
		m >>= 1
	}
	return c
}
