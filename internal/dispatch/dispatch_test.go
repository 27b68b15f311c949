package dispatch

import (
	"testing"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/value"
	"github.com/cwbudde/dynascript/internal/xhash"
)

func newTestDispatcher() *Dispatcher {
	global := module.New("global")
	r := NewResolver(global)
	return NewDispatcher(r, nil, nil)
}

func callSpec(name string, arity int) CallSpec {
	return CallSpec{
		Hashes: ast.FnCallHashes{Native: xhash.Base(nil, name, arity)},
		Name:   name,
	}
}

func TestFastOperatorAddsInts(t *testing.T) {
	d := newTestDispatcher()
	result, err := d.Call(callSpec("+", 2), []value.Value{value.NewInt(2), value.NewInt(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.V != 5 {
		t.Fatalf("expected Int(5), got %#v", result)
	}
}

func TestUnknownFunctionReportsFunctionNotFound(t *testing.T) {
	d := newTestDispatcher()
	_, err := d.Call(callSpec("totallyUnregistered", 1), []value.Value{value.NewInt(1)})
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.FunctionNotFound {
		t.Fatalf("expected FunctionNotFound, got %#v", err)
	}
}

func TestNativeFunctionResolvesThroughGlobalModule(t *testing.T) {
	global := module.New("global")
	hash := module.NativeHash(nil, "double", 1, []value.TypeID{value.TypeInt})
	global.AddFunction(&module.FuncDef{
		Name: "double", Arity: 1, Hash: hash,
		Fn: func(ctx *module.Context, args []value.Value) (value.Value, error) {
			return value.NewInt(args[0].(*value.Int).V * 2), nil
		},
	})
	d := NewDispatcher(NewResolver(global), nil, nil)

	result, err := d.Call(callSpec("double", 1), []value.Value{value.NewInt(21)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(*value.Int).V != 42 {
		t.Fatalf("expected Int(42), got %#v", result)
	}
}

func TestBitmaskWideningMatchesDynamicOverload(t *testing.T) {
	global := module.New("global")
	wideHash := module.NativeHash(nil, "describe", 1, []value.TypeID{value.DynamicWildcard})
	global.AddFunction(&module.FuncDef{
		Name: "describe", Arity: 1, Hash: wideHash,
		Fn: func(ctx *module.Context, args []value.Value) (value.Value, error) {
			return value.NewStrRaw("dynamic:" + args[0].TypeName()), nil
		},
	})
	d := NewDispatcher(NewResolver(global), nil, nil)

	spec := CallSpec{Hashes: ast.FnCallHashes{Native: xhash.Base(nil, "describe", 1)}, Name: "describe"}
	result, err := d.Call(spec, []value.Value{value.NewChar('x')})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(*value.Str).V != "dynamic:Char" {
		t.Fatalf("expected widened match to fire, got %#v", result)
	}
}

func TestDataRaceGuardRejectsWriteLockedArgument(t *testing.T) {
	global := module.New("global")
	hash := module.NativeHash(nil, "touch", 1, []value.TypeID{value.DynamicWildcard})
	global.AddFunction(&module.FuncDef{
		Name: "touch", Arity: 1, Hash: hash,
		Fn: func(ctx *module.Context, args []value.Value) (value.Value, error) {
			return value.NewUnit(), nil
		},
	})
	d := NewDispatcher(NewResolver(global), nil, nil)

	shared := value.NewShared(value.NewInt(1), value.SingleThread)
	_, unlock := shared.WLock()
	defer unlock(value.NewInt(1))

	_, err := d.Call(callSpec("touch", 1), []value.Value{shared})
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.DataRace {
		t.Fatalf("expected DataRace, got %#v", err)
	}
}

func TestTypeOfIntrinsic(t *testing.T) {
	d := newTestDispatcher()
	result, err := d.Call(callSpec("type_of", 1), []value.Value{value.NewStrRaw("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(*value.Str).V != "String" {
		t.Fatalf("expected type name 'String', got %#v", result)
	}
}

func TestCallIntrinsicInvokesScriptFunction(t *testing.T) {
	global := module.New("global")
	decl := &ast.FnDecl{Name: "addOne", Params: []ast.Param{{Name: "x"}}}
	invoked := false
	invoke := func(fn *ast.FnDecl, receiver value.Value, args []value.Value) (value.Value, error) {
		invoked = true
		return value.NewInt(args[0].(*value.Int).V + 1), nil
	}
	d := NewDispatcher(NewResolver(global), invoke, nil)

	fnPtr := value.NewFnPtr("addOne")
	fnPtr.Direct = decl
	result, err := d.Call(callSpec("call", 2), []value.Value{fnPtr, value.NewInt(9)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !invoked {
		t.Fatalf("expected ScriptInvoker to be called")
	}
	if result.(*value.Int).V != 10 {
		t.Fatalf("expected Int(10), got %#v", result)
	}
}

// TestCallMethodStyleUsesReceiver exercises `fp.call(1, 2)`: the
// evaluator's method-call path (internal/eval/expressions.go's
// evalDot) puts the callee in spec.Receiver and leaves args holding
// only the call's own arguments, unlike the free-call form
// `call(fp, 1, 2)` where the callee is args[0].
func TestCallMethodStyleUsesReceiver(t *testing.T) {
	global := module.New("global")
	decl := &ast.FnDecl{Name: "add", Params: []ast.Param{{Name: "a"}, {Name: "b"}}}
	invoke := func(fn *ast.FnDecl, receiver value.Value, args []value.Value) (value.Value, error) {
		return value.NewInt(args[0].(*value.Int).V + args[1].(*value.Int).V), nil
	}
	d := NewDispatcher(NewResolver(global), invoke, nil)

	fnPtr := value.NewFnPtr("add")
	fnPtr.Direct = decl

	spec := callSpec("call", 2)
	spec.Receiver = fnPtr
	spec.IsMethod = true
	result, err := d.Call(spec, []value.Value{value.NewInt(1), value.NewInt(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(*value.Int).V != 3 {
		t.Fatalf("expected Int(3), got %#v", result)
	}
}

// TestCurryMethodStyleUsesReceiver exercises `fp.curry(10).call(5)`.
func TestCurryMethodStyleUsesReceiver(t *testing.T) {
	global := module.New("global")
	decl := &ast.FnDecl{Name: "add", Params: []ast.Param{{Name: "a"}, {Name: "b"}}}
	invoke := func(fn *ast.FnDecl, receiver value.Value, args []value.Value) (value.Value, error) {
		return value.NewInt(args[0].(*value.Int).V + args[1].(*value.Int).V), nil
	}
	d := NewDispatcher(NewResolver(global), invoke, nil)

	fnPtr := value.NewFnPtr("add")
	fnPtr.Direct = decl

	currySpec := callSpec("curry", 1)
	currySpec.Receiver = fnPtr
	currySpec.IsMethod = true
	curried, err := d.Call(currySpec, []value.Value{value.NewInt(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	curriedFn, ok := curried.(*value.FnPtr)
	if !ok {
		t.Fatalf("expected curry to return a *value.FnPtr, got %#v", curried)
	}

	callSpecOnCurried := callSpec("call", 1)
	callSpecOnCurried.Receiver = curriedFn
	callSpecOnCurried.IsMethod = true
	result, err := d.Call(callSpecOnCurried, []value.Value{value.NewInt(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(*value.Int).V != 15 {
		t.Fatalf("expected Int(15), got %#v", result)
	}
}
