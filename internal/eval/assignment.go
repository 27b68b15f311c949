package eval

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/dispatch"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
	"github.com/cwbudde/dynascript/internal/xhash"
)

// execAssignment dispatches on the l-value shape: a bare Variable, a
// DotExpr terminating in a PropertyAccess (the set$ convention mirrors
// evalDot's get$ convention for reads), or an IndexExpr, per §4.2's
// l-value invariant. A DotExpr ending in a MethodCall, or any other
// target shape, is rejected as AssignmentToInvalidLHS.
func (e *Evaluator) execAssignment(n *ast.Assignment) (value.Value, error) {
	rhs, err := e.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	switch target := n.Target.(type) {
	case *ast.Variable:
		return e.assignVariable(target, n.Compound, rhs)
	case *ast.DotExpr:
		return e.assignDot(target, n.Compound, rhs)
	case *ast.IndexExpr:
		return e.assignIndexExpr(target, n.Compound, rhs)
	}
	return nil, diag.New(diag.AssignmentToInvalidLHS, n.Pos(), "invalid assignment target")
}

// applyCompound reduces a compound assignment's underlying binary
// operator (OpAssignment.Op, e.g. PLUS for `+=`) through the same
// dispatcher path ordinary binary expressions use, so a
// script-registered operator overload applies to compound assignment
// too.
func (e *Evaluator) applyCompound(op token.Kind, cur, rhs value.Value, pos token.Position) (value.Value, error) {
	name := op.String()
	spec := dispatch.CallSpec{Name: name, Hashes: ast.FnCallHashes{Native: xhash.Base(nil, name, 2)}, Pos: pos}
	return e.Dispatcher.Call(spec, []value.Value{cur, rhs})
}

func (e *Evaluator) assignVariable(v *ast.Variable, compound *ast.OpAssignment, rhs value.Value) (value.Value, error) {
	if len(v.Namespace) != 0 {
		return nil, diag.New(diag.AssignmentToInvalidLHS, v.Pos(), "cannot assign to module-qualified variable %q", qualifyPath(v.Namespace, v.Name))
	}
	newVal := rhs
	if compound != nil {
		cur, ok := e.scope.Get(v.Name)
		if !ok {
			return nil, diag.New(diag.VariableUndefined, v.Pos(), "variable %q is not defined", v.Name)
		}
		var err error
		newVal, err = e.applyCompound(compound.Op, cur, rhs, v.Pos())
		if err != nil {
			return nil, err
		}
	}
	ok, isConst := e.scope.Assign(v.Name, newVal)
	if isConst {
		return nil, diag.New(diag.AssignmentToConstant, v.Pos(), "cannot assign to const %q", v.Name)
	}
	if !ok {
		return nil, diag.New(diag.VariableUndefined, v.Pos(), "variable %q is not defined", v.Name)
	}
	return newVal, nil
}

func (e *Evaluator) assignDot(d *ast.DotExpr, compound *ast.OpAssignment, rhs value.Value) (value.Value, error) {
	target, err := e.Eval(d.Target)
	if err != nil {
		return nil, err
	}
	if d.Flags.Negated() {
		if _, isUnit := target.(*value.Unit); isUnit {
			return value.NewUnit(), nil
		}
	}
	prop, ok := d.Field.(*ast.PropertyAccess)
	if !ok {
		return nil, diag.New(diag.AssignmentToInvalidLHS, d.Pos(), "assignment target must be a property")
	}

	newVal := rhs
	if compound != nil {
		getSpec := dispatch.CallSpec{
			Name:     "get$" + prop.Name,
			Hashes:   ast.FnCallHashes{Native: prop.GetHash},
			Receiver: target,
			IsMethod: true,
			Pos:      d.Pos(),
		}
		cur, err := e.Dispatcher.Call(getSpec, nil)
		if err != nil {
			return nil, err
		}
		newVal, err = e.applyCompound(compound.Op, cur, rhs, d.Pos())
		if err != nil {
			return nil, err
		}
	}

	setSpec := dispatch.CallSpec{
		Name:     "set$" + prop.Name,
		Hashes:   ast.FnCallHashes{Native: prop.SetHash},
		Receiver: target,
		IsMethod: true,
		Pos:      d.Pos(),
	}
	if _, err := e.Dispatcher.Call(setSpec, []value.Value{newVal}); err != nil {
		return nil, err
	}
	return newVal, nil
}

func (e *Evaluator) assignIndexExpr(ix *ast.IndexExpr, compound *ast.OpAssignment, rhs value.Value) (value.Value, error) {
	target, err := e.Eval(ix.Target)
	if err != nil {
		return nil, err
	}
	if ix.Flags.Negated() {
		if _, isUnit := target.(*value.Unit); isUnit {
			return value.NewUnit(), nil
		}
	}
	idx, err := e.Eval(ix.Index)
	if err != nil {
		return nil, err
	}

	newVal := rhs
	if compound != nil {
		cur, err := indexInto(target, idx, ix.Pos())
		if err != nil {
			return nil, err
		}
		newVal, err = e.applyCompound(compound.Op, cur, rhs, ix.Pos())
		if err != nil {
			return nil, err
		}
	}
	if err := assignIndex(target, idx, newVal, ix.Pos()); err != nil {
		return nil, err
	}
	return newVal, nil
}

// assignIndex mutates target in place at idx, unwrapping a Shared cell
// under a write lock first. Blob and Str are excluded: the value
// package's Blob has no byte-level mutator (bytes are only ever
// replaced wholesale via a host function) and Go strings are immutable,
// so index-assignment into either is rejected rather than silently
// producing a detached copy the caller would never see.
func assignIndex(target, idx, newVal value.Value, pos token.Position) error {
	if sh, ok := target.(*value.Shared); ok {
		inner, commit := sh.WLock()
		err := assignIndex(inner, idx, newVal, pos)
		commit(inner)
		return err
	}
	switch t := target.(type) {
	case *value.Arr:
		i, ok := idx.(*value.Int)
		if !ok {
			return diag.New(diag.IndexingType, pos, "array index must be an Int, got %s", idx.TypeName())
		}
		if i.V < 0 || int(i.V) >= t.Len() {
			return diag.New(diag.IndexingType, pos, "array index %d out of range (len %d)", i.V, t.Len())
		}
		t.Set(int(i.V), newVal)
		return nil
	case *value.Map:
		key, ok := idx.(*value.Str)
		if !ok {
			return diag.New(diag.IndexingType, pos, "map key must be a String, got %s", idx.TypeName())
		}
		t.Set(key.V, newVal)
		return nil
	}
	return diag.New(diag.AssignmentToInvalidLHS, pos, "%s elements are not assignable by index", target.TypeName())
}
