package value

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// internPool caches short, frequently repeated strings (identifiers,
// map keys, small literals) so that equal script strings share one Go
// string header, matching §3.1's "interned where possible" wording.
// Values above internMaxLen are never interned to bound pool growth.
const internMaxLen = 64

var (
	internMu   sync.Mutex
	internPool = make(map[string]string, 256)
)

// intern normalizes s to Unicode NFC (so visually identical strings
// compare and hash equal regardless of composed/decomposed form) and,
// for short strings, returns a shared backing string from the pool.
func intern(s string) string {
	s = norm.NFC.String(s)
	if len(s) > internMaxLen {
		return s
	}
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := internPool[s]; ok {
		return existing
	}
	internPool[s] = s
	return s
}

// Str is dynascript's immutable, cheap-clone string variant. Because Go
// strings are themselves immutable and share backing storage on copy,
// "reference-counted, interned where possible" is satisfied by value
// semantics directly: Clone is a plain struct copy.
type Str struct {
	baseValue
	V string
}

// NewStr constructs an interned Str.
func NewStr(s string) *Str { return &Str{V: intern(s)} }

// NewStrRaw constructs a Str without interning, for strings built by
// concatenation/formatting that are unlikely to repeat.
func NewStrRaw(s string) *Str { return &Str{V: s} }

func (s *Str) TypeID() TypeID                    { return TypeString }
func (s *Str) TypeName() string                  { return TypeString.String() }
func (s *Str) Clone() Value                      { return &Str{baseValue{mode: ReadWrite}, s.V} }
func (s *Str) WithAccessMode(m AccessMode) Value { return &Str{baseValue{s.tag, m}, s.V} }
func (s *Str) String() string                    { return s.V }
func (s *Str) Hash() uint64                      { return nonZeroHash(xxhash.Sum64String(s.V)) }
