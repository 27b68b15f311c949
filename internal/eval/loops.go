package eval

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
)

// runLoopBody executes body in scope and translates a caught
// break/continue signal into the triple every loop construct in this
// file branches on: broke (exit the loop now, yielding breakValue) or
// plain continuation. continueSignal carries no value, so a caught
// continue returns a nil breakValue, the same as a normal iteration.
func (e *Evaluator) runLoopBody(body *ast.BlockStmt, scope *Scope) (broke bool, breakValue value.Value, err error) {
	_, err = e.execStatements(body.Statements, scope)
	if err == nil {
		return false, nil, nil
	}
	if bv, ok := asControl(err, diag.BreakControl); ok {
		return true, bv, nil
	}
	if _, ok := asControl(err, diag.ContinueControl); ok {
		return false, nil, nil
	}
	return false, nil, err
}

// execFor implements `for x in iterable { }`. The range forms (`a..b`,
// `a..=b`) lower to an ordinary FuncCall node (there is no dedicated
// Range AST or value type, per §4.2's operator-as-FuncCall uniformity),
// so a numeric range is recognized here by pattern-matching Iterable
// against that shape rather than by a distinct node kind.
func (e *Evaluator) execFor(n *ast.ForStmt) (value.Value, error) {
	if fc, ok := n.Iterable.(*ast.FuncCall); ok && len(fc.Args) == 2 && (fc.Name == ".." || fc.Name == "..=") {
		return e.execForRange(n, fc)
	}

	iterable, err := e.Eval(n.Iterable)
	if err != nil {
		return nil, err
	}
	items, err := e.iterate(iterable, n.Pos())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		scope := NewChildScope(e.scope)
		scope.Define(n.Var, item, false)
		broke, bv, err := e.runLoopBody(n.Body, scope)
		if err != nil {
			return nil, err
		}
		if broke {
			if bv != nil {
				return bv, nil
			}
			return value.NewUnit(), nil
		}
	}
	return value.NewUnit(), nil
}

// execForRange drives the numeric `for x in a..b { }` / `a..=b` form
// directly off the lowered FuncCall's two operands instead of
// materializing the whole range into a slice first.
func (e *Evaluator) execForRange(n *ast.ForStmt, fc *ast.FuncCall) (value.Value, error) {
	fromV, err := e.Eval(fc.Args[0])
	if err != nil {
		return nil, err
	}
	toV, err := e.Eval(fc.Args[1])
	if err != nil {
		return nil, err
	}
	from, ok := fromV.(*value.Int)
	if !ok {
		return nil, diag.New(diag.MismatchedType, fc.Args[0].Pos(), "range bound must be an Int, got %s", fromV.TypeName())
	}
	to, ok := toV.(*value.Int)
	if !ok {
		return nil, diag.New(diag.MismatchedType, fc.Args[1].Pos(), "range bound must be an Int, got %s", toV.TypeName())
	}

	step := int64(1)
	if n.Step != nil {
		sv, err := e.Eval(n.Step)
		if err != nil {
			return nil, err
		}
		si, ok := sv.(*value.Int)
		if !ok {
			return nil, diag.New(diag.MismatchedType, n.Step.Pos(), "for step must be an Int, got %s", sv.TypeName())
		}
		if si.V == 0 {
			return nil, diag.New(diag.ArithmeticError, n.Step.Pos(), "for step must not be zero")
		}
		step = si.V
	}

	inclusive := fc.Name == "..="
	for i := from.V; inRange(i, to.V, step, inclusive); i += step {
		scope := NewChildScope(e.scope)
		scope.Define(n.Var, value.NewInt(i), false)
		broke, bv, err := e.runLoopBody(n.Body, scope)
		if err != nil {
			return nil, err
		}
		if broke {
			if bv != nil {
				return bv, nil
			}
			return value.NewUnit(), nil
		}
	}
	return value.NewUnit(), nil
}

func inRange(i, to, step int64, inclusive bool) bool {
	if step > 0 {
		if inclusive {
			return i <= to
		}
		return i < to
	}
	if inclusive {
		return i >= to
	}
	return i > to
}

// iterate flattens any iterable Value into a slice of elements for a
// for-in loop: Arr yields its items, Map yields its keys as Str, Str
// yields its runes as Char, Blob yields its bytes as Int, and a Shared
// cell iterates its current contents. Anything else falls back to a
// host-registered default iterator (module.Module.Iterators, §4.5),
// which must return an Array.
func (e *Evaluator) iterate(v value.Value, pos token.Position) ([]value.Value, error) {
	if sh, ok := v.(*value.Shared); ok {
		inner, unlock := sh.RLock()
		defer unlock()
		return e.iterate(inner, pos)
	}
	switch t := v.(type) {
	case *value.Arr:
		return append([]value.Value(nil), t.Items()...), nil
	case *value.Map:
		keys := t.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = value.NewStr(k)
		}
		return out, nil
	case *value.Str:
		runes := []rune(t.V)
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.NewChar(r)
		}
		return out, nil
	case *value.Blob:
		bs := t.Bytes()
		out := make([]value.Value, len(bs))
		for i, b := range bs {
			out[i] = value.NewInt(int64(b))
		}
		return out, nil
	}

	if fn, ok := e.Resolver.IteratorFor(v.TypeID()); ok {
		f := fn
		result, err := e.Dispatcher.InvokeFnPtr(&f, []value.Value{v})
		if err != nil {
			return nil, err
		}
		arr, ok := result.(*value.Arr)
		if !ok {
			return nil, diag.New(diag.IndexingType, pos, "for-in iterator for %s did not return an Array", v.TypeName())
		}
		return append([]value.Value(nil), arr.Items()...), nil
	}

	return nil, diag.New(diag.IndexingType, pos, "%s is not iterable", v.TypeName())
}
