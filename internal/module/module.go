// Package module implements §3.4/§4.5: the namespaced symbol table a
// script's functions, variables, and default iterators live in, plus
// host-registered sub-modules. The nested-scope-with-outer-pointer
// shape is grounded on the teacher's internal/semantic.SymbolTable;
// Module differs by flattening itself into namespaced lookup tables
// instead of walking a parent chain, since call-site hashes (§4.4) are
// resolved far more often than symbols are declared.
package module

import (
	"sync"

	"github.com/cwbudde/dynascript/internal/value"
	"github.com/cwbudde/dynascript/internal/xhash"
)

// NativeHash computes the §4.4 native-resolution key a FuncDef must be
// registered under: the (namespace, name, arity) base hash folded with
// paramTypes, one TypeID per parameter in call order. A parameter
// registered as value.DynamicWildcard matches any argument type at
// that position, participating in the dispatcher's bitmask-widening
// overload search (§4.3).
func NativeHash(namespace []string, name string, arity int, paramTypes []value.TypeID) uint64 {
	base := xhash.Base(namespace, name, arity)
	ids := make([]uint64, len(paramTypes))
	for i, t := range paramTypes {
		ids[i] = uint64(t)
	}
	return xhash.WithArgTypes(base, ids)
}

// Context is threaded through every NativeFn call. Invoke lets a host
// function call back into a script-defined callable it received as an
// argument; CallDepth mirrors the dispatcher's current call-stack
// depth so a native function can enforce its own recursion limits.
type Context struct {
	Invoke    func(fn *value.FnPtr, args []value.Value) (value.Value, error)
	CallDepth int
}

// NativeFn is a host-registered function body (§4.1's FFI surface).
// It is defined here rather than in internal/dispatch so that
// internal/module, which FuncDef lives in, has no dependency on the
// dispatcher that will resolve calls against it.
type NativeFn func(ctx *Context, args []value.Value) (value.Value, error)

// FuncDef describes one host- or script-registered callable, keyed in
// Module.Funcs by its §4.4 call-site hash. ParamTypes has len==Arity;
// a value.DynamicWildcard entry accepts any type at that position,
// participating in the dispatcher's bitmask widening search (§4.3).
type FuncDef struct {
	Name       string
	Arity      int
	ParamTypes []value.TypeID
	Pure       bool
	HasContext bool
	Method     bool
	Fn         NativeFn
	Hash       uint64
}

// indexTables is the flat, namespaced view BuildIndex produces over a
// Module tree: one map lookup per call-site hash or qualified name
// instead of a walk down SubModules on every dispatch.
type indexTables struct {
	funcs map[uint64]*FuncDef
	vars  map[string]value.Value
}

// Module is §3.4's unit of script organization: a named symbol table
// of variables, functions, and default for-in iterator providers, that
// may nest further Modules as host-registered namespaces or script
// `import` targets.
type Module struct {
	Name       string
	SubModules map[string]*Module
	Vars       map[string]value.Value
	Funcs      map[uint64]*FuncDef
	Iterators  map[value.TypeID]value.FnPtr

	Bloom *bloomFilter

	mu      sync.RWMutex
	indexed bool
	flat    *indexTables
}

// New creates an empty Module named name.
func New(name string) *Module {
	return &Module{
		Name:       name,
		SubModules: make(map[string]*Module),
		Vars:       make(map[string]value.Value),
		Funcs:      make(map[uint64]*FuncDef),
		Iterators:  make(map[value.TypeID]value.FnPtr),
		Bloom:      newBloomFilter(),
	}
}

// AddFunction registers def under its Hash and invalidates the flat
// index so the next lookup rebuilds it.
func (m *Module) AddFunction(def *FuncDef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Funcs[def.Hash] = def
	m.Bloom.add(def.Hash)
	m.indexed = false
}

// AddSubModule attaches child under name and invalidates the flat
// index.
func (m *Module) AddSubModule(name string, child *Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubModules[name] = child
	m.indexed = false
}

// SetVar assigns a module-level variable and invalidates the flat
// index.
func (m *Module) SetVar(name string, v value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Vars[name] = v
	m.indexed = false
}

// SetIterator registers the default for-in iterator for a host Variant
// type id and invalidates the flat index.
func (m *Module) SetIterator(t value.TypeID, fn value.FnPtr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Iterators[t] = fn
	m.indexed = false
}

// BuildIndex walks the module tree once, producing the flat namespaced
// and global lookup tables of §4.5, and merges every submodule's Bloom
// filter upward so a single test at this Module can rule out a call
// that resolves nowhere under it. A no-op if the index is already
// current.
func (m *Module) BuildIndex() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexed {
		return
	}
	tables := &indexTables{
		funcs: make(map[uint64]*FuncDef),
		vars:  make(map[string]value.Value),
	}
	m.buildIndexInto(tables, nil)
	m.flat = tables
	m.indexed = true
}

func (m *Module) buildIndexInto(tables *indexTables, namespace []string) {
	for hash, def := range m.Funcs {
		tables.funcs[hash] = def
	}
	for name, v := range m.Vars {
		tables.vars[qualify(namespace, name)] = v
	}
	for name, sub := range m.SubModules {
		sub.BuildIndex()
		m.Bloom.mergeFrom(sub.Bloom)
		sub.buildIndexInto(tables, append(namespace, name))
	}
}

func qualify(namespace []string, name string) string {
	if len(namespace) == 0 {
		return name
	}
	q := namespace[0]
	for _, seg := range namespace[1:] {
		q += "::" + seg
	}
	return q + "::" + name
}

// LookupFunc resolves hash via the flat index, rebuilding it first if
// stale.
func (m *Module) LookupFunc(hash uint64) (*FuncDef, bool) {
	flat := m.currentIndex()
	def, ok := flat.funcs[hash]
	return def, ok
}

// LookupVar resolves a possibly `::`-qualified variable name via the
// flat index.
func (m *Module) LookupVar(qualifiedName string) (value.Value, bool) {
	flat := m.currentIndex()
	v, ok := flat.vars[qualifiedName]
	return v, ok
}

func (m *Module) currentIndex() *indexTables {
	m.mu.RLock()
	indexed, flat := m.indexed, m.flat
	m.mu.RUnlock()
	if indexed {
		return flat
	}
	m.BuildIndex()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flat
}

// MayResolve reports whether hash could possibly resolve somewhere in
// this module's tree, per the dispatcher's bloom-gated fast-reject
// path of §4.3. A false negative never happens; a false positive just
// costs a full resolution walk. The index is brought up to date first,
// because submodule filters are merged into this one only by BuildIndex.
func (m *Module) MayResolve(hash uint64) bool {
	m.currentIndex()
	return m.Bloom.mayContain(hash)
}
