package parser

// pushBarrier opens a fresh naming horizon, so that name resolution
// scanning top-down stops instead of reaching into an unrelated outer
// scope. Switch statements, for-loop bindings, catch clauses and bodies
// parsed through enterClosureScope push one; custom-syntax forms do not.
func (p *Parser) pushBarrier() {
	p.vars = append(p.vars, localVar{barrier: true})
}

// popToBarrier pops the variable stack back to and including the
// nearest barrier, restoring the scope that was active before it.
func (p *Parser) popToBarrier() {
	for len(p.vars) > 0 {
		top := p.vars[len(p.vars)-1]
		p.vars = p.vars[:len(p.vars)-1]
		if top.barrier {
			return
		}
	}
}

// declare pushes a new local variable binding onto the stack.
func (p *Parser) declare(name string, isConst bool) {
	mode := modeReadWrite
	if isConst {
		mode = modeConst
	}
	p.vars = append(p.vars, localVar{name: p.intern(name), mode: mode})
}

// resolve scans the variable stack from the top down to the nearest
// barrier looking for name. It returns the 1-based depth from the top
// of the stack (1 = most recently declared) and whether the binding is
// const, or ok=false if not found within the current naming horizon.
func (p *Parser) resolve(name string) (depth int, isConst bool, ok bool) {
	for i := len(p.vars) - 1; i >= 0; i-- {
		v := p.vars[i]
		if v.barrier {
			return 0, false, false
		}
		if v.name == name {
			return len(p.vars) - i, v.mode == modeConst, true
		}
	}
	return 0, false, false
}

// markExternal records name as captured from an enclosing scope while
// parsing a closure body (allowCapture is true only in that context).
func (p *Parser) markExternal(name string) {
	for _, e := range p.externals {
		if e == name {
			return
		}
	}
	p.externals = append(p.externals, name)
}

// enterClosureScope saves the current scope-relevant state so a
// closure body can be parsed with a brand-new variable stack (per
// §4.2's "Closures": "a closure parses with a brand-new parse-state ...
// but retains access to the enclosing interned-string pool"), and
// returns a function that restores the caller's scope afterward,
// yielding the externals touched inside the closure body.
func (p *Parser) enterClosureScope(params []string) (restore func() []string) {
	savedVars := p.vars
	savedExternals := p.externals
	savedAllow := p.allowCapture

	p.vars = nil
	p.externals = nil
	p.allowCapture = true
	p.pushBarrier()
	for _, param := range params {
		p.declare(param, false)
	}

	return func() []string {
		captured := p.externals
		p.vars = savedVars
		p.externals = savedExternals
		p.allowCapture = savedAllow
		return captured
	}
}
