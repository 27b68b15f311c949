package eval

import (
	"strings"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/dispatch"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
	"github.com/cwbudde/dynascript/internal/xhash"
)

// dispatchSpec builds a synthetic call-site spec for evaluator-internal
// dispatcher calls (the `==` comparison driving switch matching, custom
// syntax delegation) that have no AST call node of their own to pull a
// precomputed ast.FnCallHashes from.
func dispatchSpec(name string, arity int) dispatch.CallSpec {
	return dispatch.CallSpec{
		Name:   name,
		Hashes: ast.FnCallHashes{Native: xhash.Base(nil, name, arity)},
	}
}

func (e *Evaluator) evalArgs(exprs []ast.Expr) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) evalInterpString(n *ast.InterpString) (value.Value, error) {
	var sb strings.Builder
	for _, part := range n.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Literal)
			continue
		}
		v, err := e.Eval(part.Expr)
		if err != nil {
			return nil, err
		}
		sb.WriteString(v.String())
	}
	return value.NewStrRaw(sb.String()), nil
}

func (e *Evaluator) evalArrayLit(n *ast.ArrayLit) (value.Value, error) {
	items, err := e.evalArgs(n.Elements)
	if err != nil {
		return nil, err
	}
	return value.NewArr(items), nil
}

func (e *Evaluator) evalMapLit(n *ast.MapLit) (value.Value, error) {
	m := value.NewMap()
	for i, key := range n.Keys {
		v, err := e.Eval(n.Values[i])
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

// qualifyPath joins a `::`-separated namespace path with a trailing
// name into the flat lookup key module.Module.LookupVar expects.
func qualifyPath(namespace []string, name string) string {
	if len(namespace) == 0 {
		return name
	}
	return strings.Join(namespace, "::") + "::" + name
}

// moduleLayers returns Global, Imports, and Host in the resolution
// order §4.5 defines for module-level lookups.
func (e *Evaluator) moduleLayers() []*module.Module {
	layers := make([]*module.Module, 0, 2+len(e.Resolver.Imports)+len(e.Resolver.Host))
	if e.Global != nil {
		layers = append(layers, e.Global)
	}
	layers = append(layers, e.Resolver.Imports...)
	layers = append(layers, e.Resolver.Host...)
	return layers
}

// evalVariable resolves a name reference: the local scope chain first
// for an unqualified name, falling back to the module layers; a
// `::`-qualified name skips the scope chain entirely and goes straight
// to module lookup. Variable.Hash is left unused here: it is computed
// by the parser as Base(namespace, name, 0), but module.Module.LookupVar
// takes a qualified string key rather than a hash, so there is no
// consistent hash-keyed table to resolve it against (see DESIGN.md).
func (e *Evaluator) evalVariable(v *ast.Variable) (value.Value, error) {
	if len(v.Namespace) == 0 {
		if val, ok := e.scope.Get(v.Name); ok {
			return val, nil
		}
		for _, m := range e.moduleLayers() {
			if val, ok := m.LookupVar(v.Name); ok {
				return val, nil
			}
		}
		return nil, diag.New(diag.VariableUndefined, v.Pos(), "variable %q is not defined", v.Name)
	}
	qualified := qualifyPath(v.Namespace, v.Name)
	for _, m := range e.moduleLayers() {
		if val, ok := m.LookupVar(qualified); ok {
			return val, nil
		}
	}
	return nil, diag.New(diag.VariableUndefined, v.Pos(), "variable %q is not defined", qualified)
}

func (e *Evaluator) evalThis(n *ast.ThisExpr) (value.Value, error) {
	if v, ok := e.scope.Get("this"); ok {
		return v, nil
	}
	return nil, diag.New(diag.Reserved, n.Pos(), "'this' is not available outside a method or closure body")
}

// evalDot evaluates target.field, dispatching a MethodCall as a
// method-style Call, a PropertyAccess as the get$-named accessor (the
// parser's convention for property reads, mirrored by set$ on the
// assignment side), and falling back gracefully for the Variable case
// the parser's parseDotField never actually produces.
func (e *Evaluator) evalDot(n *ast.DotExpr) (value.Value, error) {
	target, err := e.Eval(n.Target)
	if err != nil {
		return nil, err
	}
	if n.Flags.Negated() {
		if _, isUnit := target.(*value.Unit); isUnit {
			return value.NewUnit(), nil
		}
	}
	switch field := n.Field.(type) {
	case *ast.MethodCall:
		args, err := e.evalArgs(field.Args)
		if err != nil {
			return nil, err
		}
		spec := dispatch.CallSpec{Hashes: field.Hashes, Name: field.Name, Receiver: target, IsMethod: true, Pos: field.Pos()}
		return e.Dispatcher.Call(spec, args)
	case *ast.PropertyAccess:
		spec := dispatch.CallSpec{
			Hashes:   ast.FnCallHashes{Native: field.GetHash},
			Name:     "get$" + field.Name,
			Receiver: target,
			IsMethod: true,
			Pos:      field.Pos(),
		}
		return e.Dispatcher.Call(spec, nil)
	case *ast.Variable:
		if m, ok := target.(*value.Map); ok {
			if v, ok := m.Get(field.Name); ok {
				return v, nil
			}
			return value.NewUnit(), nil
		}
		return nil, diag.New(diag.DotExpr, field.Pos(), "cannot access field %q on %s", field.Name, target.TypeName())
	}
	return nil, diag.New(diag.DotExpr, n.Pos(), "invalid dot field")
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr) (value.Value, error) {
	target, err := e.Eval(n.Target)
	if err != nil {
		return nil, err
	}
	if n.Flags.Negated() {
		if _, isUnit := target.(*value.Unit); isUnit {
			return value.NewUnit(), nil
		}
	}
	idx, err := e.Eval(n.Index)
	if err != nil {
		return nil, err
	}
	return indexInto(target, idx, n.Pos())
}

func indexInto(target, idx value.Value, pos token.Position) (value.Value, error) {
	if sh, ok := target.(*value.Shared); ok {
		inner, unlock := sh.RLock()
		defer unlock()
		return indexInto(inner, idx, pos)
	}
	switch t := target.(type) {
	case *value.Arr:
		i, ok := idx.(*value.Int)
		if !ok {
			return nil, diag.New(diag.IndexingType, pos, "array index must be an Int, got %s", idx.TypeName())
		}
		if i.V < 0 || int(i.V) >= t.Len() {
			return nil, diag.New(diag.IndexingType, pos, "array index %d out of range (len %d)", i.V, t.Len())
		}
		return t.At(int(i.V)), nil
	case *value.Map:
		key, ok := idx.(*value.Str)
		if !ok {
			return nil, diag.New(diag.IndexingType, pos, "map key must be a String, got %s", idx.TypeName())
		}
		if v, ok := t.Get(key.V); ok {
			return v, nil
		}
		return value.NewUnit(), nil
	case *value.Blob:
		i, ok := idx.(*value.Int)
		if !ok {
			return nil, diag.New(diag.IndexingType, pos, "blob index must be an Int, got %s", idx.TypeName())
		}
		bs := t.Bytes()
		if i.V < 0 || int(i.V) >= len(bs) {
			return nil, diag.New(diag.IndexingType, pos, "blob index %d out of range (len %d)", i.V, len(bs))
		}
		return value.NewInt(int64(bs[i.V])), nil
	case *value.Str:
		i, ok := idx.(*value.Int)
		if !ok {
			return nil, diag.New(diag.IndexingType, pos, "string index must be an Int, got %s", idx.TypeName())
		}
		runes := []rune(t.V)
		if i.V < 0 || int(i.V) >= len(runes) {
			return nil, diag.New(diag.IndexingType, pos, "string index %d out of range (len %d)", i.V, len(runes))
		}
		return value.NewChar(runes[i.V]), nil
	}
	return nil, diag.New(diag.IndexingType, pos, "%s is not indexable", target.TypeName())
}

func (e *Evaluator) evalLogicalAnd(n *ast.LogicalAnd) (value.Value, error) {
	l, err := e.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := l.(*value.Bool)
	if !ok {
		return nil, diag.New(diag.MismatchedType, n.Left.Pos(), "&& operand must be a Bool, got %s", l.TypeName())
	}
	if !lb.V {
		return value.NewBool(false), nil
	}
	r, err := e.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := r.(*value.Bool)
	if !ok {
		return nil, diag.New(diag.MismatchedType, n.Right.Pos(), "&& operand must be a Bool, got %s", r.TypeName())
	}
	return value.NewBool(rb.V), nil
}

func (e *Evaluator) evalLogicalOr(n *ast.LogicalOr) (value.Value, error) {
	l, err := e.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := l.(*value.Bool)
	if !ok {
		return nil, diag.New(diag.MismatchedType, n.Left.Pos(), "|| operand must be a Bool, got %s", l.TypeName())
	}
	if lb.V {
		return value.NewBool(true), nil
	}
	r, err := e.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := r.(*value.Bool)
	if !ok {
		return nil, diag.New(diag.MismatchedType, n.Right.Pos(), "|| operand must be a Bool, got %s", r.TypeName())
	}
	return value.NewBool(rb.V), nil
}

// evalNullCoalesce returns Left unless it evaluates to Unit, matching
// the language's use of Unit as `null`.
func (e *Evaluator) evalNullCoalesce(n *ast.NullCoalesce) (value.Value, error) {
	l, err := e.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	if _, isUnit := l.(*value.Unit); !isUnit {
		return l, nil
	}
	return e.Eval(n.Right)
}

func (e *Evaluator) evalFuncCall(n *ast.FuncCall) (value.Value, error) {
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	spec := dispatch.CallSpec{Hashes: n.Hashes, Name: n.Name, Pos: n.Pos()}
	return e.Dispatcher.Call(spec, args)
}

// evalCustomExpr delegates a host-registered custom-syntax form to the
// dispatcher as an ordinary call named after the triggering keyword.
// SegExpr/SegBool/SegInt/SegFloat/SegString segments all carry a parsed
// ast.Expr literal and evaluate the same way; SegBlock contributes the
// block's result; the spelling-only segments (SegIdent, SegSymbol,
// SegKeyword, SegSyntheticVariant) contribute their matched text as a
// String, so a host Fn registered under the keyword sees a uniform
// argument vector regardless of which segment kinds matched.
func (e *Evaluator) evalCustomExpr(n *ast.CustomExpr) (value.Value, error) {
	var args []value.Value
	for _, seg := range n.Segments {
		switch seg.Kind {
		case ast.SegExpr, ast.SegBool, ast.SegInt, ast.SegFloat, ast.SegString:
			v, err := e.Eval(seg.Expr)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		case ast.SegBlock:
			v, err := e.execStatements(seg.Block, NewChildScope(e.scope))
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		default:
			args = append(args, value.NewStrRaw(seg.Ident))
		}
	}
	spec := dispatchSpec(n.Keyword, len(args))
	spec.Pos = n.Pos()
	return e.Dispatcher.Call(spec, args)
}
