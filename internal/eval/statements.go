package eval

import (
	"strings"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/value"
)

// execStatements runs stmts in scope in order, returning the value of
// the last statement if it is an expression statement (block-as-value
// semantics of §3.2/§4.2), Unit otherwise.
func (e *Evaluator) execStatements(stmts []ast.Stmt, scope *Scope) (value.Value, error) {
	prev := e.scope
	e.scope = scope
	defer func() { e.scope = prev }()

	result := value.Value(value.NewUnit())
	for i, s := range stmts {
		v, err := e.Eval(s)
		if err != nil {
			return nil, err
		}
		if i == len(stmts)-1 {
			if _, isExpr := s.(*ast.ExprStmt); isExpr {
				result = v
			} else {
				result = value.NewUnit()
			}
		}
	}
	return result, nil
}

// execBlock runs block's statements in a fresh child of the current
// scope, implementing the "block-as-expression" form (§4.2's
// `parse_primary` wraps if/while/loop/do/for/switch/block bodies as
// StmtExpr).
func (e *Evaluator) execBlock(block *ast.BlockStmt) (value.Value, error) {
	return e.execStatements(block.Statements, NewChildScope(e.scope))
}

func (e *Evaluator) execVarDecl(v *ast.VarDecl) (value.Value, error) {
	var val value.Value = value.NewUnit()
	if v.Init != nil {
		var err error
		val, err = e.Eval(v.Init)
		if err != nil {
			return nil, err
		}
	}
	if v.Const {
		val = val.WithAccessMode(value.ReadOnly)
	}
	e.scope.Define(v.Name, val, v.Const)
	return value.NewUnit(), nil
}

func (e *Evaluator) execIf(n *ast.IfStmt) (value.Value, error) {
	cond, err := e.Eval(n.Cond)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(*value.Bool)
	if !ok {
		return nil, diag.New(diag.MismatchedType, n.Cond.Pos(), "if condition must be a Bool, got %s", cond.TypeName())
	}
	if b.V {
		return e.Eval(n.Then)
	}
	if n.Else != nil {
		return e.Eval(n.Else)
	}
	return value.NewUnit(), nil
}

func (e *Evaluator) execWhile(n *ast.WhileStmt) (value.Value, error) {
	last := value.Value(value.NewUnit())
	for {
		cond, err := e.Eval(n.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(*value.Bool)
		if !ok {
			return nil, diag.New(diag.MismatchedType, n.Cond.Pos(), "while condition must be a Bool, got %s", cond.TypeName())
		}
		if !b.V {
			return last, nil
		}
		v, err := e.Eval(n.Body)
		if err != nil {
			if bv, ok := asControl(err, diag.BreakControl); ok {
				if bv != nil {
					return bv, nil
				}
				return value.NewUnit(), nil
			}
			if _, ok := asControl(err, diag.ContinueControl); ok {
				continue
			}
			return nil, err
		}
		last = v
	}
}

func (e *Evaluator) execLoop(n *ast.LoopStmt) (value.Value, error) {
	for {
		_, err := e.Eval(n.Body)
		if err != nil {
			if bv, ok := asControl(err, diag.BreakControl); ok {
				if bv != nil {
					return bv, nil
				}
				return value.NewUnit(), nil
			}
			if _, ok := asControl(err, diag.ContinueControl); ok {
				continue
			}
			return nil, err
		}
	}
}

func (e *Evaluator) execDo(n *ast.DoStmt) (value.Value, error) {
	for {
		_, err := e.Eval(n.Body)
		if err != nil {
			if bv, ok := asControl(err, diag.BreakControl); ok {
				if bv != nil {
					return bv, nil
				}
				return value.NewUnit(), nil
			}
			if _, ok := asControl(err, diag.ContinueControl); !ok {
				return nil, err
			}
		}
		cond, err := e.Eval(n.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(*value.Bool)
		if !ok {
			return nil, diag.New(diag.MismatchedType, n.Cond.Pos(), "do condition must be a Bool, got %s", cond.TypeName())
		}
		done := b.V
		if n.Until {
			done = !b.V
		}
		if done {
			return value.NewUnit(), nil
		}
	}
}

// execSwitch evaluates each case's values in turn with the `==`
// operator (routed through the dispatcher so a script-registered
// overload of `==` for a Variant subject type applies here too),
// taking the first matching arm; falls through to Default otherwise.
func (e *Evaluator) execSwitch(n *ast.SwitchStmt) (value.Value, error) {
	subject, err := e.Eval(n.Subject)
	if err != nil {
		return nil, err
	}
	for _, c := range n.Cases {
		for _, caseExpr := range c.Values {
			cv, err := e.Eval(caseExpr)
			if err != nil {
				return nil, err
			}
			matched, err := e.valuesEqual(subject, cv)
			if err != nil {
				return nil, err
			}
			if matched {
				return e.Eval(c.Body)
			}
		}
	}
	if n.Default != nil {
		return e.Eval(n.Default)
	}
	return value.NewUnit(), nil
}

func (e *Evaluator) valuesEqual(a, b value.Value) (bool, error) {
	result, err := e.Dispatcher.Call(dispatchSpec("==", 2), []value.Value{a, b})
	if err != nil {
		return false, err
	}
	bv, ok := result.(*value.Bool)
	if !ok {
		return false, nil
	}
	return bv.V, nil
}

func (e *Evaluator) execTry(n *ast.TryStmt) (value.Value, error) {
	v, err := e.Eval(n.Body)
	if err == nil {
		return v, nil
	}
	thrown, ok := asControl(err, diag.ThrowControl)
	if !ok {
		return nil, err
	}
	if n.Catch == nil {
		return value.NewUnit(), nil
	}
	scope := NewChildScope(e.scope)
	if n.CatchVar != "" {
		scope.Define(n.CatchVar, thrown, false)
	}
	return e.execStatements(n.Catch.Statements, scope)
}

func (e *Evaluator) execReturn(n *ast.ReturnStmt) (value.Value, error) {
	var v value.Value = value.NewUnit()
	if n.Value != nil {
		var err error
		v, err = e.Eval(n.Value)
		if err != nil {
			return nil, err
		}
	}
	return nil, returnSignal(n.Pos(), v)
}

func (e *Evaluator) execThrow(n *ast.ThrowStmt) (value.Value, error) {
	v, err := e.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	return nil, throwSignal(n.Pos(), v)
}

func (e *Evaluator) execBreak(n *ast.BreakStmt) (value.Value, error) {
	var v value.Value
	if n.Value != nil {
		var err error
		v, err = e.Eval(n.Value)
		if err != nil {
			return nil, err
		}
	}
	return nil, breakSignal(n.Pos(), v)
}

// execShare marks the named locals as Shared cells in the enclosing
// scope, letting scripts request sharing explicitly; closure capture
// does not go through this statement.
func (e *Evaluator) execShare(n *ast.ShareStmt) (value.Value, error) {
	for _, name := range n.Names {
		val, ok := e.scope.Get(name)
		if !ok {
			continue
		}
		if _, already := val.(*value.Shared); already {
			continue
		}
		e.scope.Assign(name, value.NewShared(val, value.SingleThread))
	}
	return value.NewUnit(), nil
}

// execImport resolves path against the evaluator's named host modules
// (populated by pkg/engine.RegisterModule) and appends it to the
// resolver's Imports layer (§4.3 layer 3).
func (e *Evaluator) execImport(n *ast.ImportStmt) (value.Value, error) {
	key := strings.Join(n.Path, "::")
	mod, ok := e.NamedModules[key]
	if !ok {
		return nil, diag.New(diag.ModuleNotFound, n.Pos(), "module %q not found", key)
	}
	e.Resolver.Imports = append(e.Resolver.Imports, mod)
	return value.NewUnit(), nil
}
