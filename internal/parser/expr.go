package parser

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/xhash"
)

// parseExpr is §4.2's entry point: parse_unary then parse_binary_op at
// precedence 1.
func (p *Parser) parseExpr() ast.Expr {
	p.exprDepth++
	if p.exprDepth > p.maxExprDepth {
		p.errorf(diag.StackOverflow, "expression nesting exceeds maximum depth %d", p.maxExprDepth)
		p.exprDepth--
		return &ast.UnitLit{}
	}
	defer func() { p.exprDepth-- }()

	left := p.parseUnary()
	return p.parseBinaryOp(left, 1)
}

func (p *Parser) parseBinaryOp(left ast.Expr, parentPrec int) ast.Expr {
	for {
		if p.exprFilter != nil && p.exprFilter(p.cur.Kind) {
			return left
		}
		op := p.cur.Kind
		prec := token.Precedence(op)
		if prec == 0 || prec < parentPrec {
			return left
		}
		pos := p.cur.Pos
		p.advance()

		nextMin := prec + 1
		if token.RightAssociative(op) {
			nextMin = prec
		}
		right := p.parseUnary()
		right = p.parseBinaryOp(right, nextMin)

		left = p.makeBinaryNode(op, left, right, pos)
	}
}

func (p *Parser) makeBinaryNode(op token.Kind, left, right ast.Expr, pos token.Position) ast.Expr {
	switch op {
	case token.AND:
		return &ast.LogicalAnd{Left: left, Right: right}
	case token.OR:
		return &ast.LogicalOr{Left: left, Right: right}
	case token.QUESTION:
		return &ast.NullCoalesce{Left: left, Right: right}
	case token.IN, token.NOT_IN:
		call := &ast.FuncCall{
			Name: "contains",
			Args: []ast.Expr{right, left},
			Hashes: FnCallHashesFor(nil, "contains", 2),
		}
		if op == token.NOT_IN {
			return &ast.FuncCall{Name: "!", Args: []ast.Expr{call}, Hashes: FnCallHashesFor(nil, "!", 1)}
		}
		return call
	default:
		name := op.String()
		return &ast.FuncCall{
			Name:   name,
			Args:   []ast.Expr{left, right},
			Hashes: FnCallHashesFor(nil, name, 2),
		}
	}
}

// FnCallHashesFor computes §3.3's hash pair for a free function/operator
// call with the given namespace, name, and arity.
func FnCallHashesFor(namespace []string, name string, arity int) ast.FnCallHashes {
	base := xhash.Base(namespace, name, arity)
	return ast.FnCallHashes{Script: base, Native: base}
}

// MethodCallHashesFor computes §3.3's hash pair for a method-style call
// `x.f(a...)`: Script is one parameter shorter than Native because the
// receiver is only added to the argument vector at native dispatch.
func MethodCallHashesFor(name string, argArity int) ast.FnCallHashes {
	return ast.FnCallHashes{
		Script: xhash.Base(nil, name, argArity),
		Native: xhash.Base(nil, name, argArity+1),
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Kind {
	case token.MINUS:
		p.advance()
		switch p.cur.Kind {
		case token.INT:
			v := p.cur.Payload.(int64)
			p.advance()
			return p.parsePostfix(&ast.IntLit{Value: -v})
		case token.FLOAT:
			v := p.cur.Payload.(float64)
			p.advance()
			return p.parsePostfix(&ast.FloatLit{Value: -v})
		}
		operand := p.parseUnary()
		return &ast.FuncCall{Name: "neg", Args: []ast.Expr{operand}, Hashes: FnCallHashesFor(nil, "neg", 1)}
	case token.PLUS:
		p.advance()
		return p.parseUnary()
	case token.NOT:
		p.advance()
		operand := p.parseUnary()
		return &ast.FuncCall{Name: "!", Args: []ast.Expr{operand}, Hashes: FnCallHashesFor(nil, "!", 1)}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.INT:
		v := p.cur.Payload.(int64)
		p.advance()
		return &ast.IntLit{Value: v}
	case token.FLOAT:
		v := p.cur.Payload.(float64)
		p.advance()
		return &ast.FloatLit{Value: v}
	case token.CHAR:
		v := p.cur.Payload.(rune)
		p.advance()
		return &ast.CharLit{Value: v}
	case token.STRING:
		v := p.cur.Literal
		p.advance()
		return &ast.StringLit{Value: v}
	case token.INTERP_STRING:
		return p.parseInterpString()
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false}
	case token.NULL_KW:
		p.advance()
		return &ast.UnitLit{}
	case token.THIS:
		p.advance()
		return &ast.ThisExpr{}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return inner
	case token.LBRACE:
		block := p.parseBlock()
		return &ast.StmtExpr{Stmt: block}
	case token.IF:
		return &ast.StmtExpr{Stmt: p.parseIf()}
	case token.WHILE:
		return &ast.StmtExpr{Stmt: p.parseWhile()}
	case token.LOOP:
		return &ast.StmtExpr{Stmt: p.parseLoop()}
	case token.DO:
		return &ast.StmtExpr{Stmt: p.parseDo()}
	case token.FOR:
		return &ast.StmtExpr{Stmt: p.parseFor()}
	case token.SWITCH:
		return &ast.StmtExpr{Stmt: p.parseSwitch()}
	case token.TRY:
		return &ast.StmtExpr{Stmt: p.parseTry()}
	case token.PIPE:
		return p.parseClosure(false)
	case token.OR:
		return p.parseClosure(true)
	case token.LBRACKET:
		return p.parseArrayLit()
	case token.HASH_LBRACE:
		return p.parseMapLit()
	case token.IDENT:
		if def, ok := p.customSyntax[p.cur.Literal]; ok {
			return p.parseCustomSyntax(def)
		}
		return p.parseIdentExpr()
	}
	p.errorf(diag.ParseError, "unexpected token %v %q in expression", p.cur.Kind, p.cur.Literal)
	p.advance()
	unit := &ast.UnitLit{}
	ast.SetPos(unit, pos)
	return unit
}

// parseInterpString consumes a back-tick string as a sequence of
// literal-text and `${...}` expression parts. p.cur starts as the
// INTERP_STRING (hole present) or STRING (no more holes) token the
// lexer already produced; each hole is closed by flipping
// Control.InStringTail right around the advance() calls that straddle
// it, per lexer.Lexer's re-entrant interpolation contract.
func (p *Parser) parseInterpString() ast.Expr {
	node := &ast.InterpString{}
	for {
		node.Parts = append(node.Parts, ast.InterpPart{Literal: p.cur.Literal})
		if p.cur.Kind != token.INTERP_STRING {
			p.advance()
			break
		}

		p.lex.Control.InStringTail = false
		p.advance() // reads the hole's first real expression token

		expr := p.parseExpr()
		node.Parts = append(node.Parts, ast.InterpPart{Expr: expr})

		if p.cur.Kind != token.RBRACE {
			p.errorf(diag.ParseError, "expected } to close string interpolation hole")
		}
		p.lex.Control.InStringTail = true
		p.advance() // resumes the literal tail: STRING (done) or INTERP_STRING (next hole)
	}
	return node
}

func (p *Parser) parseClosure(empty bool) ast.Expr {
	var params []string
	if empty {
		p.advance() // consume `||`
	} else {
		p.advance() // consume opening `|`
		for !p.at(token.PIPE) && !p.at(token.EOF) {
			params = append(params, p.expect(token.IDENT).Literal)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.PIPE)
	}

	restore := p.enterClosureScope(params)
	body := p.parseExpr()
	externals := restore()

	return &ast.ClosureExpr{Params: params, Body: body, Externals: externals}
}

func (p *Parser) parseArrayLit() ast.Expr {
	p.expect(token.LBRACKET)
	lit := &ast.ArrayLit{}
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		lit.Elements = append(lit.Elements, p.parseExpr())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACKET)
	return lit
}

func (p *Parser) parseMapLit() ast.Expr {
	p.expect(token.HASH_LBRACE)
	lit := &ast.MapLit{KeyIndex: make(map[string]int)}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		var key string
		if p.at(token.IDENT) {
			key = p.cur.Literal
			p.advance()
		} else if p.at(token.STRING) {
			key = p.cur.Literal
			p.advance()
		} else {
			p.errorf(diag.ParseError, "expected map key, got %v", p.cur.Kind)
			break
		}
		p.expect(token.COLON)
		val := p.parseExpr()
		if _, dup := lit.KeyIndex[key]; !dup {
			lit.KeyIndex[key] = len(lit.Keys)
			lit.Keys = append(lit.Keys, key)
			lit.Values = append(lit.Values, val)
		} else {
			lit.Values[lit.KeyIndex[key]] = val
		}
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return lit
}

// parseIdentExpr parses a bare/namespaced identifier, resolving it
// against the variable stack per §4.2's variable-resolution rule, and
// handles the immediately-following `(`/`!(` as a free function call.
func (p *Parser) parseIdentExpr() ast.Expr {
	pos := p.cur.Pos
	name := p.cur.Literal
	p.advance()

	var namespace []string
	for p.at(token.DOUBLE_COLON) {
		namespace = append(namespace, name)
		p.advance()
		name = p.expect(token.IDENT).Literal
	}

	if p.at(token.LPAREN) || p.at(token.BANG_LPAREN) {
		args := p.parseArgList()
		call := &ast.FuncCall{
			Name:      name,
			Namespace: namespace,
			Args:      args,
			Hashes:    FnCallHashesFor(namespace, name, len(args)),
		}
		ast.SetPos(call, pos)
		return call
	}

	v := &ast.Variable{Name: p.intern(name), Namespace: namespace}
	ast.SetPos(v, pos)
	if len(namespace) == 0 {
		if depth, isConst, ok := p.resolve(name); ok {
			v.Depth = depth
			if depth <= 255 {
				v.ShortDepth = uint8(depth)
			}
			_ = isConst
		} else if p.allowCapture {
			p.markExternal(name)
			v.IsExternal = true
		} else if p.strictVariables {
			p.errorf(diag.VariableUndefined, "variable %q is not defined", name)
		}
		v.Hash = xhash.Base(nil, name, 0)
	} else {
		v.Hash = xhash.Base(namespace, name, 0)
	}
	return v
}

func (p *Parser) parseArgList() []ast.Expr {
	p.advance() // consume ( or !(
	var args []ast.Expr
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return args
}

// parseDotField parses the right-hand side of `.`/`?.`: either a
// MethodCall (name immediately followed by a call) or a PropertyAccess,
// per §3.2's invariant that a property access appears only as the
// right-hand side of a Dot.
func (p *Parser) parseDotField() ast.Expr {
	name := p.expect(token.IDENT).Literal
	if p.at(token.LPAREN) || p.at(token.BANG_LPAREN) {
		args := p.parseArgList()
		return &ast.MethodCall{Name: name, Args: args, Hashes: MethodCallHashesFor(name, len(args))}
	}
	return &ast.PropertyAccess{
		Name:    name,
		GetHash: xhash.Base(nil, "get$"+name, 1),
		SetHash: xhash.Base(nil, "set$"+name, 2),
	}
}

func (p *Parser) parsePostfix(left ast.Expr) ast.Expr {
	for {
		switch p.cur.Kind {
		case token.LPAREN, token.BANG_LPAREN:
			v, ok := left.(*ast.Variable)
			if !ok {
				return left
			}
			args := p.parseArgList()
			left = &ast.FuncCall{Name: v.Name, Namespace: v.Namespace, Args: args, Hashes: FnCallHashesFor(v.Namespace, v.Name, len(args))}
		case token.DOT, token.QUESTION_DOT:
			negated := p.cur.Kind == token.QUESTION_DOT
			pos := p.cur.Pos
			p.advance()
			field := p.parseDotField()
			flags := ast.Flags(0)
			if negated {
				flags |= ast.FlagNegated
			}
			dot := &ast.DotExpr{Target: left, Field: field, Flags: flags}
			ast.SetPos(dot, pos)
			left = dot
		case token.LBRACKET, token.QUESTION_LBRACKET:
			negated := p.cur.Kind == token.QUESTION_LBRACKET
			pos := p.cur.Pos
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET)
			flags := ast.Flags(0)
			if negated {
				flags |= ast.FlagNegated
			}
			idxNode := &ast.IndexExpr{Target: left, Index: idx, Flags: flags}
			ast.SetPos(idxNode, pos)
			left = idxNode
		default:
			markChainBreak(left)
			return left
		}
	}
}

// markChainBreak sets FlagBreak on the terminal node of a Dot/Index
// chain, per §3.2's invariant.
func markChainBreak(n ast.Expr) {
	switch v := n.(type) {
	case *ast.DotExpr:
		v.Flags |= ast.FlagBreak
	case *ast.IndexExpr:
		v.Flags |= ast.FlagBreak
	}
}
