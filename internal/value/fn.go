package value

import "strings"

// FnPtr is §3.1's callable reference: a name, curried arguments, and
// optionally a direct link to a compiled script function plus the
// environment it closes over. Direct/Closure are opaque (any) so this
// package does not import internal/ast or internal/eval, which would
// create an import cycle (eval depends on value); internal/dispatch and
// internal/eval type-assert them back to their concrete types.
type FnPtr struct {
	baseValue
	Name    string
	Curried []Value
	Direct  any // *ast.FnDecl, set when the pointer was created from a known script function
	Closure any // eval's closure environment, set for `|x| ...` closures
}

// NewFnPtr constructs a FnPtr bound to name with no curried arguments.
func NewFnPtr(name string) *FnPtr { return &FnPtr{Name: name} }

func (f *FnPtr) TypeID() TypeID   { return TypeFnPtr }
func (f *FnPtr) TypeName() string { return TypeFnPtr.String() }

func (f *FnPtr) Clone() Value {
	curried := make([]Value, len(f.Curried))
	copy(curried, f.Curried)
	return &FnPtr{baseValue{mode: ReadWrite}, f.Name, curried, f.Direct, f.Closure}
}

func (f *FnPtr) WithAccessMode(m AccessMode) Value {
	cp := f.Clone().(*FnPtr)
	cp.tag = f.tag
	cp.mode = m
	return cp
}

func (f *FnPtr) String() string {
	var sb strings.Builder
	sb.WriteString("Fn(")
	sb.WriteString(f.Name)
	sb.WriteByte(')')
	return sb.String()
}

// WithCurried returns a clone of f with extra appended to its curried
// argument list, implementing the `curry` special-name intrinsic.
func (f *FnPtr) WithCurried(extra ...Value) *FnPtr {
	cp := f.Clone().(*FnPtr)
	cp.Curried = append(cp.Curried, extra...)
	return cp
}
