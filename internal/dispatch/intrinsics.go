package dispatch

import (
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/value"
)

// intrinsicNames is the fixed special-name set of §4.3: these never go
// through script/native resolution, so a script cannot shadow them by
// declaring a same-named function.
var intrinsicNames = map[string]bool{
	"type_of": true, "print": true, "debug": true,
	"is_def_var": true, "is_def_fn": true, "is_shared": true,
	"Fn": true, "call": true, "curry": true, "eval": true,
}

// Printer is the host sink `print`/`debug` write to; defaulted to a
// no-op so an engine embedder must opt in, mirroring the teacher's
// explicit output-stream wiring rather than writing to stdout by
// default from inside a library.
type Printer interface {
	Print(s string)
	Debug(s string)
}

// SetPrinter installs the sink for `print`/`debug`.
func (d *Dispatcher) SetPrinter(p Printer) { d.printer = p }

// intrinsic handles one of the fixed special names, reporting
// handled=false for anything else so Call falls through to ordinary
// resolution.
func (d *Dispatcher) intrinsic(spec CallSpec, args []value.Value) (value.Value, bool, error) {
	if !intrinsicNames[spec.Name] {
		return nil, false, nil
	}
	switch spec.Name {
	case "type_of":
		if len(args) != 1 {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "type_of expects exactly one argument")
		}
		return value.NewStrRaw(args[0].TypeName()), true, nil

	case "print":
		if d.printer != nil {
			for _, a := range args {
				d.printer.Print(a.String())
			}
		}
		return value.NewUnit(), true, nil

	case "debug":
		if d.printer != nil {
			for _, a := range args {
				d.printer.Debug(a.String())
			}
		}
		return value.NewUnit(), true, nil

	case "is_def_var":
		if len(args) != 1 {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "is_def_var expects exactly one argument")
		}
		name, ok := args[0].(*value.Str)
		if !ok {
			return value.NewBool(false), true, nil
		}
		_, found := d.Resolver.Global.LookupVar(name.V)
		return value.NewBool(found), true, nil

	case "is_def_fn":
		if len(args) != 1 {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "is_def_fn expects exactly one argument")
		}
		name, ok := args[0].(*value.Str)
		if !ok {
			return value.NewBool(false), true, nil
		}
		return value.NewBool(d.isDefFn(name.V)), true, nil

	case "is_shared":
		if len(args) != 1 {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "is_shared expects exactly one argument")
		}
		return value.NewBool(value.IsShared(args[0])), true, nil

	case "Fn":
		if len(args) != 1 {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "Fn expects exactly one argument")
		}
		name, ok := args[0].(*value.Str)
		if !ok {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "Fn expects a string function name")
		}
		return value.NewFnPtr(name.V), true, nil

	case "curry":
		fn, curryArgs, ok := fnPtrAndArgs(spec, args)
		if !ok {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "curry expects a function pointer and arguments to bind")
		}
		return fn.WithCurried(curryArgs...), true, nil

	case "call":
		fn, callArgs, ok := fnPtrAndArgs(spec, args)
		if !ok {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "call expects a function pointer")
		}
		result, err := d.invokeFnPtr(fn, callArgs)
		return result, true, err

	case "eval":
		if len(args) != 1 {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "eval expects exactly one string argument")
		}
		src, ok := args[0].(*value.Str)
		if !ok {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "eval expects a string argument")
		}
		if d.Eval == nil {
			return nil, true, diag.New(diag.FunctionNotFound, spec.Pos, "eval is not available in this engine configuration")
		}
		result, err := d.Eval(src.V)
		return result, true, err
	}
	return nil, false, nil
}

// fnPtrAndArgs resolves the callee FnPtr and its call/curry arguments
// for the `call`/`curry` intrinsics, which are documented (§8) to work
// both as a free call (`call(fp, 1, 2)`, callee in args[0]) and as a
// method on a function pointer (`fp.call(1, 2)`, callee in
// spec.Receiver — internal/eval's method-call path never prepends the
// receiver into args the way the native-resolution path's prepareArgs
// does, so it must be read from spec.Receiver directly here).
func fnPtrAndArgs(spec CallSpec, args []value.Value) (*value.FnPtr, []value.Value, bool) {
	if spec.IsMethod {
		fn, ok := spec.Receiver.(*value.FnPtr)
		if !ok {
			return nil, nil, false
		}
		return fn, args, true
	}
	if len(args) < 1 {
		return nil, nil, false
	}
	fn, ok := args[0].(*value.FnPtr)
	if !ok {
		return nil, nil, false
	}
	return fn, args[1:], true
}

// isDefFn reports whether name is declared as a script function in the
// current program (Local is keyed by hash, so this is a name scan) or
// registered in the global module.
func (d *Dispatcher) isDefFn(name string) bool {
	for _, fn := range d.Resolver.Local {
		if fn.Name == name {
			return true
		}
	}
	if d.Resolver.Global != nil {
		for _, def := range d.Resolver.Global.Funcs {
			if def.Name == name {
				return true
			}
		}
	}
	return false
}
