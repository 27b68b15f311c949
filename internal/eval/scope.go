package eval

import "github.com/cwbudde/dynascript/internal/value"

// Scope is §4.2's lexical variable stack at runtime: a chain of named
// bindings, grounded on the teacher's interp.Environment (store plus
// outer pointer, name-based lookup walking outward). Unlike the
// teacher, dynascript's parser already resolves most Variable nodes to
// a lexical depth at parse time (ast.Variable.Depth); Scope still keeps
// the name-based chain because §9's Open Question 3 requires `eval` to
// be able to introduce a variable into the enclosing scope by name at
// runtime, which a depth-indexed frame array cannot express.
type Scope struct {
	vars  map[string]value.Value
	consts map[string]bool
	outer *Scope
}

// NewScope creates a root scope with no enclosing environment.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]value.Value), consts: make(map[string]bool)}
}

// NewChildScope creates a scope enclosed by outer, used for function
// bodies, blocks, and loop iterations.
func NewChildScope(outer *Scope) *Scope {
	return &Scope{vars: make(map[string]value.Value), consts: make(map[string]bool), outer: outer}
}

// Get resolves name, searching outward through enclosing scopes.
func (s *Scope) Get(name string) (value.Value, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	if s.outer != nil {
		return s.outer.Get(name)
	}
	return nil, false
}

// Define introduces name in this scope, shadowing any outer binding of
// the same name. isConst marks it immune to later Assign calls.
func (s *Scope) Define(name string, v value.Value, isConst bool) {
	s.vars[name] = v
	s.consts[name] = isConst
}

// Assign updates the nearest enclosing scope that already binds name.
// Returns ok=false if name is undefined anywhere in the chain, and
// isConst=true if the binding exists but is const (caller reports
// AssignmentToConstant in that case rather than silently succeeding).
func (s *Scope) Assign(name string, v value.Value) (ok bool, isConst bool) {
	if _, found := s.vars[name]; found {
		if s.consts[name] {
			return true, true
		}
		s.vars[name] = v
		return true, false
	}
	if s.outer != nil {
		return s.outer.Assign(name, v)
	}
	return false, false
}

// IsConst reports whether name resolves to a const binding somewhere in
// the chain; false if undefined.
func (s *Scope) IsConst(name string) bool {
	if _, ok := s.vars[name]; ok {
		return s.consts[name]
	}
	if s.outer != nil {
		return s.outer.IsConst(name)
	}
	return false
}
