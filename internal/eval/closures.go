package eval

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/value"
)

// Closure is the environment a `|params| body` value closes over:
// grounded on the teacher's function-value-plus-captured-environment
// shape, generalized so each captured external is an individually
// addressable Shared cell rather than a whole parent Environment frame
// (ast.ClosureExpr's doc comment records why: the evaluator wraps each
// Externals name in a Shared cell at the point the ClosureExpr is
// evaluated, instead of the parser synthesizing a curry-call plus a
// separate share statement).
type Closure struct {
	Params    []string
	Body      ast.Expr
	Captured  map[string]*value.Shared
}

// evalClosure builds a *value.FnPtr bound to a Closure: every name in
// Externals is looked up in the current scope, wrapped in a Shared
// cell if it is not one already, and the (possibly newly wrapped)
// Shared handle is written back into the defining scope via Assign so
// later mutations of the captured variable are visible through both
// the outer binding and the closure.
func (e *Evaluator) evalClosure(n *ast.ClosureExpr) (value.Value, error) {
	captured := make(map[string]*value.Shared, len(n.Externals))
	for _, name := range n.Externals {
		val, ok := e.scope.Get(name)
		if !ok {
			val = value.NewUnit()
		}
		sh, isShared := val.(*value.Shared)
		if !isShared {
			sh = value.NewShared(val, value.SingleThread)
			if ok, _ := e.scope.Assign(name, sh); !ok {
				e.scope.Define(name, sh, false)
			}
		}
		captured[name] = sh
	}
	closure := &Closure{Params: n.Params, Body: n.Body, Captured: captured}
	fn := value.NewFnPtr("<closure>")
	fn.Closure = closure
	return fn, nil
}

// invokeClosure is the dispatch.ClosureInvoker: it builds a child scope
// of the global scope (closures do not see the caller's locals, only
// their Captured cells and parameters), binds every captured external
// by its Shared handle, binds the positional parameters (missing
// trailing arguments default to Unit), evaluates the body, and turns a
// caught ReturnControl into a plain return value.
func (e *Evaluator) invokeClosure(fn *value.FnPtr, args []value.Value) (value.Value, error) {
	closure, ok := fn.Closure.(*Closure)
	if !ok {
		return value.NewUnit(), nil
	}
	scope := NewChildScope(e.global)
	for name, sh := range closure.Captured {
		scope.Define(name, sh, false)
	}
	for i, p := range closure.Params {
		var v value.Value = value.NewUnit()
		if i < len(args) {
			v = args[i]
		}
		scope.Define(p, v, false)
	}

	prev := e.scope
	e.scope = scope
	defer func() { e.scope = prev }()

	result, err := e.Eval(closure.Body)
	if err != nil {
		if rv, ok := asControl(err, diag.ReturnControl); ok {
			return rv, nil
		}
		return nil, err
	}
	return result, nil
}

// invokeScript is the dispatch.ScriptInvoker: it builds a child scope
// of the global scope, binds `this` when receiver is non-nil, binds
// parameters by position (missing trailing arguments default to Unit),
// executes the declared body, and turns a caught ReturnControl into a
// plain return value.
func (e *Evaluator) invokeScript(fn *ast.FnDecl, receiver value.Value, args []value.Value) (value.Value, error) {
	scope := NewChildScope(e.global)
	if receiver != nil {
		scope.Define("this", receiver, false)
	}
	for i, p := range fn.Params {
		var v value.Value = value.NewUnit()
		if i < len(args) {
			v = args[i]
		}
		scope.Define(p.Name, v, false)
	}

	result, err := e.execStatements(fn.Body.Statements, scope)
	if err != nil {
		if rv, ok := asControl(err, diag.ReturnControl); ok {
			return rv, nil
		}
		return nil, err
	}
	return result, nil
}
