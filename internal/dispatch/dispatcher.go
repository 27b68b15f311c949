package dispatch

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
	"github.com/cwbudde/dynascript/internal/xhash"
)

// MaxDynamicParameters bounds the bitmask-widening overload search of
// §4.3: only the first MaxDynamicParameters argument positions are
// ever candidates for a Dynamic-wildcard match.
const MaxDynamicParameters = 6

// ScriptInvoker runs a script-defined function body. Supplied by
// internal/eval at construction time so internal/dispatch never
// imports internal/eval, which itself imports internal/dispatch to
// perform every call/operator dispatch.
type ScriptInvoker func(fn *ast.FnDecl, receiver value.Value, args []value.Value) (value.Value, error)

// EvalHook backs the `eval` special-name intrinsic of §4.3: compiling
// and running a string of script source against the calling scope.
type EvalHook func(src string) (value.Value, error)

// ClosureInvoker runs a closure-bound FnPtr (value.FnPtr.Closure set,
// Direct nil). Supplied by internal/eval, which owns the closure
// environment representation; internal/dispatch only knows it exists.
type ClosureInvoker func(fn *value.FnPtr, args []value.Value) (value.Value, error)

// resolvedEntry is one native-resolution-cache slot. Script-function
// resolution is not cached here: Resolver.ResolveScript is already an
// O(1) map lookup, so caching it would add bookkeeping without a
// performance win.
type resolvedEntry struct {
	native *module.FuncDef
	miss   bool
}

// Dispatcher implements §4.3's Call: resolution-cache- and
// Bloom-filter-gated lookup, the bitmask wildcard-widening overload
// search, the built-in operator fallback table, the receiver
// clone-and-restore dance for method-style calls against non-method
// natives, the DataRace guard over locked Shared arguments, and the
// fixed special-name intrinsics.
type Dispatcher struct {
	Resolver      *Resolver
	Invoke        ScriptInvoker
	Eval          EvalHook
	InvokeClosure ClosureInvoker
	MaxCallDepth  int

	cache   map[uint64]*resolvedEntry
	depth   int
	printer Printer
}

// NewDispatcher wires a Dispatcher around resolver; invoke and evalHook
// may be nil until internal/eval finishes constructing the evaluator
// that will set them (a nil ScriptInvoker simply makes script-function
// calls fail to resolve; a nil EvalHook makes the `eval` intrinsic
// unavailable).
func NewDispatcher(resolver *Resolver, invoke ScriptInvoker, evalHook EvalHook) *Dispatcher {
	return &Dispatcher{
		Resolver:     resolver,
		Invoke:       invoke,
		Eval:         evalHook,
		MaxCallDepth: 512,
		cache:        make(map[uint64]*resolvedEntry),
	}
}

// CallSpec describes one call site's static shape, gathered by the
// evaluator from the AST node that triggered the call.
type CallSpec struct {
	Hashes    ast.FnCallHashes
	Name      string
	Receiver  value.Value // nil for a free (non-method) call
	IsMethod  bool
	Pos       token.Position
}

// Call resolves and invokes the callable named by spec against args,
// in the order: special-name intrinsics, the fast primitive-operator
// short-circuit, the cached/bloom-gated resolver path (script, then
// native with bitmask widening), and finally FunctionNotFound.
func (d *Dispatcher) Call(spec CallSpec, args []value.Value) (value.Value, error) {
	if d.depth+1 > d.MaxCallDepth {
		return nil, diag.New(diag.StackOverflow, spec.Pos, "call depth exceeded (%d)", d.MaxCallDepth)
	}
	d.depth++
	defer func() { d.depth-- }()

	if v, handled, err := d.intrinsic(spec, args); handled {
		return v, err
	}

	if !spec.IsMethod {
		if v, ok, err := d.fastOperator(spec.Name, args); ok {
			return v, err
		}
	}

	if spec.Hashes.HasScript() {
		if fn, ok := d.Resolver.ResolveScript(spec.Hashes.Script); ok {
			// Script functions carry no purity annotation (§4.3 only
			// tracks Pure on native FuncDefs), so the
			// NonPureMethodCallOnConstant guard never fires here; the
			// DataRace guard over locked Shared arguments still does.
			if err := d.checkGuards(true, spec.IsMethod, spec, args); err != nil {
				return nil, err
			}
			if d.Invoke == nil {
				return nil, diag.New(diag.FunctionNotFound, spec.Pos, "no script invoker configured for %q", spec.Name)
			}
			return d.Invoke(fn, spec.Receiver, args)
		}
	}

	typeIDs := argTypeIDs(args)
	if def, ok := d.resolveNativeCached(spec.Hashes.Native, typeIDs); ok {
		if err := d.checkGuards(def.Pure, def.Method, spec, args); err != nil {
			return nil, err
		}
		callArgs, receiverSwapped := d.prepareArgs(spec, def, args)
		ctx := &module.Context{CallDepth: d.depth}
		if d.Invoke != nil {
			ctx.Invoke = func(fn *value.FnPtr, a []value.Value) (value.Value, error) {
				return d.invokeFnPtr(fn, a)
			}
		}
		result, err := def.Fn(ctx, callArgs)
		_ = receiverSwapped // receiver is passed by value; nothing to restore beyond scope exit
		return result, err
	}

	// A method-style call (`x.+(y)`) skips the early fast-path above
	// (it only covers free calls); fall back to it here before giving
	// up, so operators still resolve when written in method syntax.
	if spec.IsMethod {
		if v, ok, err := d.fastOperator(spec.Name, args); ok {
			return v, err
		}
	}

	return nil, diag.New(diag.FunctionNotFound, spec.Pos, "no function %q matches the given arguments", spec.Name).
		WithDetail(&diag.Signature{Name: spec.Name, Args: typeNames(args)})
}

// resolveNativeCached consults the per-dispatcher resolution cache
// before falling back to the full bitmask-widening resolver walk,
// keyed on the exact-argument-types hash so different call shapes at
// the same call site don't collide.
func (d *Dispatcher) resolveNativeCached(nativeHash uint64, typeIDs []uint64) (*module.FuncDef, bool) {
	exactKey := xhash.WithArgTypes(nativeHash, typeIDs)
	if entry, ok := d.cache[exactKey]; ok {
		if entry.miss {
			return nil, false
		}
		return entry.native, entry.native != nil
	}

	if def, ok := d.Resolver.ResolveNative(exactKey); ok {
		d.cache[exactKey] = &resolvedEntry{native: def}
		return def, true
	}

	for _, mask := range xhash.MasksByPopcount(len(typeIDs), MaxDynamicParameters) {
		widened := widen(typeIDs, mask)
		key := xhash.WithArgTypes(nativeHash, widened)
		if def, ok := d.Resolver.ResolveNative(key); ok {
			d.cache[exactKey] = &resolvedEntry{native: def}
			return def, true
		}
	}

	d.cache[exactKey] = &resolvedEntry{miss: true}
	return nil, false
}

// widen returns a copy of typeIDs with every bit set in mask replaced
// by value.DynamicWildcard, matching §4.3's "enumerates bit-masks ...
// exact types first, then one-parameter wildcards, then two-parameter
// wildcards" search order (MasksByPopcount already yields masks in
// that order; widen just applies one).
func widen(typeIDs []uint64, mask uint32) []uint64 {
	out := make([]uint64, len(typeIDs))
	copy(out, typeIDs)
	for i := range out {
		if mask&(1<<uint(i)) != 0 {
			out[i] = uint64(value.DynamicWildcard)
		}
	}
	return out
}

func argTypeIDs(args []value.Value) []uint64 {
	ids := make([]uint64, len(args))
	for i, a := range args {
		ids[i] = uint64(a.TypeID())
	}
	return ids
}

func typeNames(args []value.Value) []string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.TypeName()
	}
	return names
}

// prepareArgs implements the clone-and-restore receiver dance of §4.3:
// when a method-style call (`recv.fn(args)`) resolves to a native that
// was not declared as a method, a clone of the receiver is prepended to
// the argument vector as if it were the function's first parameter, so
// the native cannot mutate the caller's receiver value.
func (d *Dispatcher) prepareArgs(spec CallSpec, def *module.FuncDef, args []value.Value) ([]value.Value, bool) {
	if !spec.IsMethod || def.Method || spec.Receiver == nil {
		return args, false
	}
	swapped := make([]value.Value, 0, len(args)+1)
	swapped = append(swapped, spec.Receiver.Clone())
	swapped = append(swapped, args...)
	return swapped, true
}

// checkGuards implements the NonPureMethodCallOnConstant and DataRace
// guards of §4.3/§5: a non-pure method call against a read-only
// receiver, or any call whose arguments include a write-locked Shared
// value, is rejected before the callable ever runs.
func (d *Dispatcher) checkGuards(pure, isMethod bool, spec CallSpec, args []value.Value) error {
	if isMethod && !pure && spec.Receiver != nil && spec.Receiver.AccessMode() == value.ReadOnly {
		return diag.New(diag.NonPureMethodCallOnConstant, spec.Pos,
			"cannot call non-pure method %q on a read-only value", spec.Name)
	}
	for _, a := range args {
		if s, ok := a.(*value.Shared); ok && s.IsWriteLocked() {
			return diag.New(diag.DataRace, spec.Pos,
				"argument to %q is a Shared value currently under a write lock", spec.Name)
		}
	}
	return nil
}

// fastOperator short-circuits the common primitive binary/unary
// operators straight to operatorTable/unaryOperatorTable, skipping
// hash computation entirely for the hottest dispatch paths. ok is
// false when the operator name or operand types aren't covered, so the
// caller falls through to ordinary resolution (letting a script
// redefine e.g. `+` for its own Variant types).
func (d *Dispatcher) fastOperator(name string, args []value.Value) (value.Value, bool, error) {
	if len(args) == 1 {
		if f, ok := unaryOperatorTable[name]; ok {
			v, handled, err := f(args[0])
			return v, handled, err
		}
		return nil, false, nil
	}
	if len(args) != 2 {
		return nil, false, nil
	}
	f, ok := operatorTable[name]
	if !ok {
		return nil, false, nil
	}
	v, handled, err := f(args[0], args[1])
	return v, handled, err
}

// InvokeFnPtr runs fn against args, the same path module.Context.Invoke
// uses for a native-held callback; exported so internal/eval can drive
// a host-registered for-in iterator FnPtr without duplicating the
// script/closure dispatch it already implements here.
func (d *Dispatcher) InvokeFnPtr(fn *value.FnPtr, args []value.Value) (value.Value, error) {
	return d.invokeFnPtr(fn, args)
}

func (d *Dispatcher) invokeFnPtr(fn *value.FnPtr, args []value.Value) (value.Value, error) {
	all := append(append([]value.Value(nil), fn.Curried...), args...)
	if decl, ok := fn.Direct.(*ast.FnDecl); ok && d.Invoke != nil {
		return d.Invoke(decl, nil, all)
	}
	if fn.Closure != nil && d.InvokeClosure != nil {
		return d.InvokeClosure(fn, all)
	}
	return nil, diag.New(diag.FunctionNotFound, token.Position{}, "cannot invoke %s: no script or closure binding", fn.Name)
}
