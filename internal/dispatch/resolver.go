// Package dispatch implements §4.3: the four-layer name resolver and
// the call dispatcher built on top of it, grounded on the teacher's
// layered call resolution in internal/semantic's function/method
// analyzers (local scope, then declared functions, then builtins, then
// FFI-registered natives) and on internal/interp's reference-handling
// for the receiver-swap dance used against method-style calls.
package dispatch

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/value"
)

// Resolver implements §4.3's four-layer lookup order:
//  1. Local   — script functions declared in the currently running
//     program (ast.Program.Functions), addressed by their Script hash.
//  2. Global  — the engine's root module (host-registered top-level
//     functions/variables plus any script functions the evaluator
//     promotes into it).
//  3. Imports — modules pulled in by the running program's `import`
//     statements, searched in declaration order.
//  4. Host    — host sub-modules that are always in scope regardless
//     of any `import` (e.g. a namespace the embedder wants ambient).
type Resolver struct {
	Local   map[uint64]*ast.FnDecl
	Global  *module.Module
	Imports []*module.Module
	Host    []*module.Module
}

// NewResolver creates a Resolver rooted at global, with no imports or
// ambient host modules yet attached.
func NewResolver(global *module.Module) *Resolver {
	return &Resolver{
		Local:  make(map[uint64]*ast.FnDecl),
		Global: global,
	}
}

// ResolveScript looks up a script-defined function by its §3.3 Script
// hash, layer 1 only: script functions live in the program that
// declared them, never in a module.
func (r *Resolver) ResolveScript(hash uint64) (*ast.FnDecl, bool) {
	fn, ok := r.Local[hash]
	return fn, ok
}

// ResolveNative walks layers 2-4 looking for a module whose Bloom
// filter admits nativeHash, then asks it for the exact FuncDef. The
// first module across Global, Imports, and Host (in that order) that
// both passes the Bloom pre-check and holds the hash wins.
func (r *Resolver) ResolveNative(nativeHash uint64) (*module.FuncDef, bool) {
	if r.Global != nil {
		if def, ok := lookupIn(r.Global, nativeHash); ok {
			return def, ok
		}
	}
	for _, m := range r.Imports {
		if def, ok := lookupIn(m, nativeHash); ok {
			return def, ok
		}
	}
	for _, m := range r.Host {
		if def, ok := lookupIn(m, nativeHash); ok {
			return def, ok
		}
	}
	return nil, false
}

func lookupIn(m *module.Module, hash uint64) (*module.FuncDef, bool) {
	if !m.MayResolve(hash) {
		return nil, false
	}
	return m.LookupFunc(hash)
}

// IteratorFor resolves the default for-in iterator registered for
// value type t, walking the same Global/Imports/Host layers as
// ResolveNative (script-local functions never register iterators).
func (r *Resolver) IteratorFor(t value.TypeID) (value.FnPtr, bool) {
	layers := make([]*module.Module, 0, 2+len(r.Imports)+len(r.Host))
	if r.Global != nil {
		layers = append(layers, r.Global)
	}
	layers = append(layers, r.Imports...)
	layers = append(layers, r.Host...)
	for _, m := range layers {
		if fn, ok := m.Iterators[t]; ok {
			return fn, ok
		}
	}
	return value.FnPtr{}, false
}
