// Package eval implements the tree-walking evaluator required to run
// the engine end to end: statement execution, expression evaluation,
// control-flow unwinding (return/break/continue/throw sharing the
// error channel per §7), closures, and the `share` statement. Grounded
// on the teacher's internal/interp statement/expression evaluation
// split (statements.go, expressions*.go, environment.go) generalized
// from DWScript's semantics to dynascript's.
package eval

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/dispatch"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
)

// Compiler is implemented by internal/parser's entry point, injected so
// internal/eval can service the `eval` intrinsic (compile-and-run a
// source fragment) without importing internal/parser directly, keeping
// the dependency graph one-directional (cmd/pkg depend on both eval and
// parser, eval never depends on parser).
type Compiler func(source string) (*ast.Program, error)

// Evaluator ties the parser's AST, the module/dispatch resolution
// layer, and runtime scopes together into a runnable engine core.
type Evaluator struct {
	Dispatcher *dispatch.Dispatcher
	Resolver   *dispatch.Resolver
	Global     *module.Module

	// NamedModules maps an `import` path (segments joined by "::") to
	// the host module it resolves to; populated by pkg/engine's module
	// registration, consulted by execImport.
	NamedModules map[string]*module.Module

	Compile Compiler

	// MaxOperations bounds the total number of evaluation steps per
	// top-level Run/Eval call, per §5's "operation counter" resource
	// limit. Zero means unlimited.
	MaxOperations int

	// StrictEval switches the `eval` intrinsic (§9 Open Question 3)
	// from its default of running the compiled fragment against the
	// caller's current scope (so it can introduce new variables there)
	// to running it in an isolated child scope instead.
	StrictEval bool

	// global is the root scope: script-level `let`/`const` bindings and
	// the basis every script-function and closure invocation builds its
	// own child scope from, regardless of which nested block scope
	// (e.scope) was active at the call site.
	global *Scope
	scope  *Scope
	ops    int
}

// New creates an Evaluator rooted at globalModule, wiring a Dispatcher
// whose ScriptInvoker, EvalHook, and ClosureInvoker are this
// Evaluator's own methods.
func New(globalModule *module.Module) *Evaluator {
	resolver := dispatch.NewResolver(globalModule)
	root := NewScope()
	e := &Evaluator{
		Resolver:     resolver,
		Global:       globalModule,
		NamedModules: make(map[string]*module.Module),
		global:       root,
		scope:        root,
	}
	d := dispatch.NewDispatcher(resolver, e.invokeScript, e.evalString)
	d.InvokeClosure = e.invokeClosure
	e.Dispatcher = d
	return e
}

// SetPrinter installs the `print`/`debug` sink.
func (e *Evaluator) SetPrinter(p dispatch.Printer) { e.Dispatcher.SetPrinter(p) }

// Run executes prog's top-level statements against the Evaluator's
// global scope, registering prog.Functions into the resolver's local
// layer first so they can call each other and be called from the top
// level. Returns the value of the last top-level expression statement,
// or Unit if the program ends in a non-expression statement.
func (e *Evaluator) Run(prog *ast.Program) (value.Value, error) {
	for hash, fn := range prog.Functions {
		e.Resolver.Local[hash] = fn
	}
	result, err := e.execStatements(prog.Statements, e.scope)
	if err != nil {
		if v, ok := isUncaughtThrow(err); ok {
			return nil, userError(token.Position{}, v)
		}
		return nil, err
	}
	return result, nil
}

// evalString backs the `eval` intrinsic and the Compiler-driven `eval`
// code path: compiles source and runs it against the *current* scope
// (not a fresh one), per §9 Open Question 3's default of introducing
// new variables into the enclosing scope.
func (e *Evaluator) evalString(source string) (value.Value, error) {
	if e.Compile == nil {
		return nil, diag.New(diag.FunctionNotFound, token.Position{}, "eval is not available: no compiler wired")
	}
	prog, err := e.Compile(source)
	if err != nil {
		return nil, err
	}
	for hash, fn := range prog.Functions {
		e.Resolver.Local[hash] = fn
	}
	target := e.scope
	if e.StrictEval {
		target = NewChildScope(e.scope)
	}
	return e.execStatements(prog.Statements, target)
}

// tick increments the operation counter and enforces MaxOperations,
// per §5's "evaluator increments an operation counter on every tracked
// step" cancellation model.
func (e *Evaluator) tick(pos token.Position) error {
	if e.MaxOperations <= 0 {
		return nil
	}
	e.ops++
	if e.ops > e.MaxOperations {
		return diag.New(diag.TooManyOperations, pos, "exceeded the maximum of %d operations", e.MaxOperations)
	}
	return nil
}

// Eval dispatches on node's dynamic type, covering both Expr and Stmt
// nodes uniformly so that statement-as-expression forms (StmtExpr,
// block-as-expression) need no separate code path.
func (e *Evaluator) Eval(node ast.Node) (value.Value, error) {
	if err := e.tick(node.Pos()); err != nil {
		return nil, err
	}
	switch n := node.(type) {
	// literals
	case *ast.UnitLit:
		return value.NewUnit(), nil
	case *ast.BoolLit:
		return value.NewBool(n.Value), nil
	case *ast.IntLit:
		return value.NewInt(n.Value), nil
	case *ast.FloatLit:
		return value.NewFloat(n.Value), nil
	case *ast.CharLit:
		return value.NewChar(n.Value), nil
	case *ast.StringLit:
		return value.NewStr(n.Value), nil
	case *ast.DynamicConstant:
		if v, ok := n.Value.(value.Value); ok {
			return v, nil
		}
		return value.NewUnit(), nil
	case *ast.InterpString:
		return e.evalInterpString(n)
	case *ast.ArrayLit:
		return e.evalArrayLit(n)
	case *ast.MapLit:
		return e.evalMapLit(n)
	case *ast.Variable:
		return e.evalVariable(n)
	case *ast.ThisExpr:
		return e.evalThis(n)
	case *ast.DotExpr:
		return e.evalDot(n)
	case *ast.IndexExpr:
		return e.evalIndex(n)
	case *ast.LogicalAnd:
		return e.evalLogicalAnd(n)
	case *ast.LogicalOr:
		return e.evalLogicalOr(n)
	case *ast.NullCoalesce:
		return e.evalNullCoalesce(n)
	case *ast.FuncCall:
		return e.evalFuncCall(n)
	case *ast.CustomExpr:
		return e.evalCustomExpr(n)
	case *ast.ClosureExpr:
		return e.evalClosure(n)
	case *ast.StmtExpr:
		return e.Eval(n.Stmt)

	// statements
	case *ast.ExprStmt:
		return e.Eval(n.X)
	case *ast.VarDecl:
		return e.execVarDecl(n)
	case *ast.Assignment:
		return e.execAssignment(n)
	case *ast.IfStmt:
		return e.execIf(n)
	case *ast.WhileStmt:
		return e.execWhile(n)
	case *ast.LoopStmt:
		return e.execLoop(n)
	case *ast.DoStmt:
		return e.execDo(n)
	case *ast.ForStmt:
		return e.execFor(n)
	case *ast.SwitchStmt:
		return e.execSwitch(n)
	case *ast.TryStmt:
		return e.execTry(n)
	case *ast.ReturnStmt:
		return e.execReturn(n)
	case *ast.ThrowStmt:
		return e.execThrow(n)
	case *ast.ImportStmt:
		return e.execImport(n)
	case *ast.ExportStmt:
		return e.Eval(n.Decl)
	case *ast.ShareStmt:
		return e.execShare(n)
	case *ast.BlockStmt:
		return e.execBlock(n)
	case *ast.NoOpStmt:
		return value.NewUnit(), nil
	case *ast.BreakStmt:
		return e.execBreak(n)
	case *ast.ContinueStmt:
		return nil, continueSignal(n.Pos())
	case *ast.FnDecl:
		e.Resolver.Local[n.Hash] = n
		return value.NewUnit(), nil
	}
	return nil, diag.New(diag.ParseError, node.Pos(), "evaluator has no case for %T", node)
}
