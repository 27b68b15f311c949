package value

import (
	"sync"
	"sync/atomic"
)

// LockMode selects the §5 concurrency discipline for Shared cells:
// single-thread mode uses a dynamic borrow check (a double write-borrow
// panics, matching the reference engine's debug-assertion behavior),
// thread-safe mode uses a real sync.RWMutex.
type LockMode uint8

const (
	SingleThread LockMode = iota
	ThreadSafe
)

// sharedCell is the reference-counted, lock-protected cell backing
// every handle cloned from the same Shared value.
type sharedCell struct {
	mode LockMode
	mu   sync.RWMutex
	v    Value
	refs int32

	// writeBorrowed and readBorrows are the dynamic borrow check used
	// in SingleThread mode: writeBorrowed is 1 while a write guard is
	// held, and readBorrows counts the read guards held. ThreadSafe
	// mode relies on mu alone and never touches these fields.
	writeBorrowed int32
	readBorrows   int32
}

// Shared is §3.1's reference-counted lock cell enabling closures to
// capture by reference and alias mutation.
type Shared struct {
	baseValue
	cell *sharedCell
}

// NewShared wraps v in a new lock cell.
func NewShared(v Value, mode LockMode) *Shared {
	return &Shared{cell: &sharedCell{mode: mode, v: v, refs: 1}}
}

func (s *Shared) TypeID() TypeID   { return s.cell.peek().TypeID() }
func (s *Shared) TypeName() string { return s.cell.peek().TypeName() }

// Clone yields another handle to the same cell, per §3.1.
func (s *Shared) Clone() Value {
	atomic.AddInt32(&s.cell.refs, 1)
	return &Shared{baseValue{mode: ReadWrite}, s.cell}
}

func (s *Shared) WithAccessMode(m AccessMode) Value {
	atomic.AddInt32(&s.cell.refs, 1)
	return &Shared{baseValue{s.tag, m}, s.cell}
}

func (s *Shared) String() string { return s.cell.peek().String() }

// peek reads the current inner value without acquiring a guard; used
// only for type introspection where a torn read of the *kind* of value
// (not its contents) is acceptable, matching the teacher's tolerance of
// cheap type-only lookups on shared state.
func (c *sharedCell) peek() Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// RLock acquires a read guard and returns the current value plus an
// unlock function the caller must call exactly once.
func (s *Shared) RLock() (Value, func()) {
	if s.cell.mode == ThreadSafe {
		s.cell.mu.RLock()
		v := s.cell.v
		return v, s.cell.mu.RUnlock
	}
	if atomic.LoadInt32(&s.cell.writeBorrowed) != 0 {
		panic("dynascript: double borrow of a Shared value already write-locked")
	}
	atomic.AddInt32(&s.cell.readBorrows, 1)
	v := s.cell.v
	return v, func() { atomic.AddInt32(&s.cell.readBorrows, -1) }
}

// WLock acquires a write guard and returns the current value plus a
// commit function that stores newVal and releases the guard.
func (s *Shared) WLock() (Value, func(newVal Value)) {
	if s.cell.mode == ThreadSafe {
		s.cell.mu.Lock()
		v := s.cell.v
		return v, func(nv Value) {
			s.cell.v = nv
			s.cell.mu.Unlock()
		}
	}
	if atomic.LoadInt32(&s.cell.writeBorrowed) != 0 || atomic.LoadInt32(&s.cell.readBorrows) != 0 {
		panic("dynascript: double borrow of a Shared value already locked")
	}
	atomic.StoreInt32(&s.cell.writeBorrowed, 1)
	v := s.cell.v
	return v, func(nv Value) {
		s.cell.v = nv
		atomic.StoreInt32(&s.cell.writeBorrowed, 0)
	}
}

// IsWriteLocked reports whether the cell is currently under a write
// guard, used by the dispatcher's DataRace guard (§4.3/§5).
func (s *Shared) IsWriteLocked() bool {
	if s.cell.mode == ThreadSafe {
		// A held RWMutex cannot be queried without risking a deadlock;
		// thread-safe mode relies on the mutex itself to serialize
		// access rather than this fast-path check.
		return false
	}
	return atomic.LoadInt32(&s.cell.writeBorrowed) != 0
}

// IsUniquelyHeld reports whether this is the only outstanding handle to
// the cell, the precondition Flatten uses to avoid cloning.
func (s *Shared) IsUniquelyHeld() bool {
	return atomic.LoadInt32(&s.cell.refs) == 1
}

// Flatten unwraps a uniquely-owned Shared back to a plain Value,
// cloning if not unique, per §3.1's lifecycle description.
func Flatten(v Value) Value {
	s, ok := v.(*Shared)
	if !ok {
		return v
	}
	if s.IsUniquelyHeld() {
		return s.cell.peek()
	}
	return s.cell.peek().Clone()
}

// IsShared reports whether v is a Shared handle, backing the
// `is_shared` special-name intrinsic of §4.3.
func IsShared(v Value) bool {
	_, ok := v.(*Shared)
	return ok
}
