package parser

import (
	"strings"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/xhash"
)

// parseStmt dispatches on the leading token to one of §4.2's statement
// productions, falling through to an expression statement or
// assignment when nothing else matches.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.SEMI:
		pos := p.cur.Pos
		p.advance()
		n := &ast.NoOpStmt{}
		ast.SetPos(n, pos)
		return n
	case token.LET, token.CONST:
		return p.parseVarDecl()
	case token.FN:
		return p.parseFnDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.LOOP:
		return p.parseLoop()
	case token.DO:
		return p.parseDo()
	case token.FOR:
		return p.parseFor()
	case token.SWITCH:
		return p.parseSwitch()
	case token.TRY:
		return p.parseTry()
	case token.RETURN:
		return p.parseReturn()
	case token.THROW:
		return p.parseThrow()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.IMPORT:
		return p.parseImport()
	case token.EXPORT:
		return p.parseExport()
	case token.SHARE:
		return p.parseShare()
	case token.LBRACE:
		return p.parseBlock()
	}
	return p.parseExprOrAssignment()
}

func (p *Parser) consumeOptSemi() {
	if p.at(token.SEMI) {
		p.advance()
	}
}

// parseBlock parses `{ stmt... }`, recording the block's span per §3.2.
func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.cur.Pos
	p.expect(token.LBRACE)
	blk := &ast.BlockStmt{}
	ast.SetPos(blk, pos)
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		blk.Statements = append(blk.Statements, p.parseStmt())
	}
	blk.End = p.cur.Pos
	p.expect(token.RBRACE)
	return blk
}

func (p *Parser) parseIf() *ast.IfStmt {
	pos := p.cur.Pos
	p.expect(token.IF)
	cond := p.parseExpr()
	then := p.parseBlock()
	n := &ast.IfStmt{Cond: cond, Then: then}
	ast.SetPos(n, pos)
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			n.Else = p.parseIf()
		} else {
			n.Else = p.parseBlock()
		}
	}
	return n
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	pos := p.cur.Pos
	p.expect(token.WHILE)
	cond := p.parseExpr()
	body := p.parseBlock()
	n := &ast.WhileStmt{Cond: cond, Body: body}
	ast.SetPos(n, pos)
	return n
}

func (p *Parser) parseLoop() *ast.LoopStmt {
	pos := p.cur.Pos
	p.expect(token.LOOP)
	body := p.parseBlock()
	n := &ast.LoopStmt{Body: body}
	ast.SetPos(n, pos)
	return n
}

// parseDo parses `do { body } while cond`. dynascript has no separate
// `until` spelling (the token table only reserves `while`), so Until is
// always false; the field survives for a host dialect that registers
// one via custom syntax.
func (p *Parser) parseDo() *ast.DoStmt {
	pos := p.cur.Pos
	p.expect(token.DO)
	body := p.parseBlock()
	p.expect(token.WHILE)
	cond := p.parseExpr()
	n := &ast.DoStmt{Body: body, Cond: cond}
	ast.SetPos(n, pos)
	return n
}

// parseFor parses `for name in iterable { body }`. The bound name is
// only visible inside body, not while parsing iterable.
func (p *Parser) parseFor() *ast.ForStmt {
	pos := p.cur.Pos
	p.expect(token.FOR)
	name := p.expect(token.IDENT).Literal
	p.expect(token.IN)
	iterable := p.parseExpr()

	p.pushBarrier()
	p.declare(name, false)
	body := p.parseBlock()
	p.popToBarrier()

	n := &ast.ForStmt{Var: p.intern(name), Iterable: iterable, Body: body}
	ast.SetPos(n, pos)
	return n
}

// parseSwitch parses `switch subject { case v, v2: ... default: ... }`.
// `case`/`default` are recognized by spelling rather than a reserved
// Kind, since dynascript's keyword table does not carve them out (see
// DESIGN.md).
func (p *Parser) parseSwitch() *ast.SwitchStmt {
	pos := p.cur.Pos
	p.expect(token.SWITCH)
	p.pushBarrier()
	subject := p.parseExpr()
	n := &ast.SwitchStmt{Subject: subject}
	ast.SetPos(n, pos)

	p.expect(token.LBRACE)
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch {
		case p.at(token.IDENT) && p.cur.Literal == "case":
			p.advance()
			var values []ast.Expr
			for {
				values = append(values, p.parseExpr())
				if p.at(token.COMMA) {
					p.advance()
					continue
				}
				break
			}
			p.expect(token.COLON)
			n.Cases = append(n.Cases, ast.SwitchCase{Values: values, Body: p.parseCaseBody()})
		case p.at(token.IDENT) && p.cur.Literal == "default":
			p.advance()
			p.expect(token.COLON)
			n.Default = p.parseCaseBody()
		default:
			p.errorf(diag.ParseError, "expected case or default in switch body, got %q", p.cur.Literal)
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	p.popToBarrier()
	return n
}

func (p *Parser) parseCaseBody() *ast.BlockStmt {
	pos := p.cur.Pos
	blk := &ast.BlockStmt{}
	ast.SetPos(blk, pos)
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.IDENT) && (p.cur.Literal == "case" || p.cur.Literal == "default") {
			break
		}
		blk.Statements = append(blk.Statements, p.parseStmt())
	}
	blk.End = p.cur.Pos
	return blk
}

func (p *Parser) parseTry() *ast.TryStmt {
	pos := p.cur.Pos
	p.expect(token.TRY)
	body := p.parseBlock()
	n := &ast.TryStmt{Body: body}
	ast.SetPos(n, pos)

	p.expect(token.CATCH)
	if p.at(token.LPAREN) {
		p.advance()
		n.CatchVar = p.expect(token.IDENT).Literal
		p.expect(token.RPAREN)
	}
	p.pushBarrier()
	if n.CatchVar != "" {
		p.declare(n.CatchVar, false)
	}
	n.Catch = p.parseBlock()
	p.popToBarrier()
	return n
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	n := &ast.ReturnStmt{}
	ast.SetPos(n, pos)
	if !p.at(token.SEMI) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		n.Value = p.parseExpr()
	}
	p.consumeOptSemi()
	return n
}

func (p *Parser) parseThrow() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	n := &ast.ThrowStmt{Value: p.parseExpr()}
	ast.SetPos(n, pos)
	p.consumeOptSemi()
	return n
}

func (p *Parser) parseBreak() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	n := &ast.BreakStmt{}
	ast.SetPos(n, pos)
	if !p.at(token.SEMI) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		n.Value = p.parseExpr()
	}
	p.consumeOptSemi()
	return n
}

func (p *Parser) parseContinue() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	n := &ast.ContinueStmt{}
	ast.SetPos(n, pos)
	p.consumeOptSemi()
	return n
}

// parseImport parses either `import "path" as alias;` or a bare
// `::`-qualified module path, and records its root for later
// `::`-qualified name resolution.
func (p *Parser) parseImport() ast.Stmt {
	pos := p.cur.Pos
	p.advance()

	var path []string
	if p.at(token.STRING) {
		path = append(path, p.cur.Literal)
		p.advance()
	} else {
		path = append(path, p.expect(token.IDENT).Literal)
		for p.at(token.DOUBLE_COLON) {
			p.advance()
			path = append(path, p.expect(token.IDENT).Literal)
		}
	}

	n := &ast.ImportStmt{Path: path}
	ast.SetPos(n, pos)

	if p.at(token.IDENT) && p.cur.Literal == "as" {
		p.advance()
		n.Alias = p.expect(token.IDENT).Literal
	}
	if len(path) > 0 {
		p.importsStack = append(p.importsStack, path[len(path)-1])
	}
	p.consumeOptSemi()
	return n
}

func (p *Parser) parseExport() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	n := &ast.ExportStmt{Decl: p.parseStmt()}
	ast.SetPos(n, pos)
	return n
}

func (p *Parser) parseShare() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	n := &ast.ShareStmt{}
	ast.SetPos(n, pos)
	for {
		n.Names = append(n.Names, p.expect(token.IDENT).Literal)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.consumeOptSemi()
	return n
}

func (p *Parser) parseVarDecl() ast.Stmt {
	pos := p.cur.Pos
	isConst := p.at(token.CONST)
	p.advance()
	name := p.expect(token.IDENT).Literal
	n := &ast.VarDecl{Name: p.intern(name), Const: isConst}
	ast.SetPos(n, pos)
	if p.at(token.ASSIGN) {
		p.advance()
		n.Init = p.parseExpr()
	}
	p.declare(name, isConst)
	p.consumeOptSemi()
	return n
}

// parseFnDecl parses `fn name(params) { body }`, or the method form
// `fn "TypeName".name(params) { body }` (§4.5's host-type method
// registration surface), computing the §3.3 call-site hash for the
// declared arity (+1 for the receiver in method form).
func (p *Parser) parseFnDecl() ast.Stmt {
	pos := p.cur.Pos
	p.advance()

	decl := &ast.FnDecl{}
	ast.SetPos(decl, pos)

	if p.at(token.STRING) {
		decl.TypeName = p.cur.Literal
		decl.IsMethod = true
		p.advance()
		p.expect(token.DOT)
	}
	decl.Name = p.expect(token.IDENT).Literal
	decl.Private = strings.HasPrefix(decl.Name, "_")

	p.expect(token.LPAREN)
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		decl.Params = append(decl.Params, ast.Param{Name: p.expect(token.IDENT).Literal})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)

	arity := len(decl.Params)
	if decl.IsMethod {
		arity++
	}
	decl.Hash = xhash.Base(nil, decl.Name, arity)

	restore := p.enterClosureScope(paramNames(decl.Params))
	decl.Body = p.parseBlock()
	restore()

	p.functions[decl.Hash] = decl
	return decl
}

func paramNames(params []ast.Param) []string {
	names := make([]string, len(params))
	for i, pr := range params {
		names[i] = pr.Name
	}
	return names
}

// parseExprOrAssignment parses an expression and, if it is immediately
// followed by `=` or a compound-assignment operator, turns it into an
// Assignment after validating the target is an l-value per §4.2.
func (p *Parser) parseExprOrAssignment() ast.Stmt {
	pos := p.cur.Pos
	expr := p.parseExpr()

	if op, isCompound := compoundOp(p.cur.Kind); p.at(token.ASSIGN) || isCompound {
		var compound *ast.OpAssignment
		if isCompound {
			compound = &ast.OpAssignment{Op: op}
		}
		p.advance()
		return p.finishAssignment(expr, compound, pos)
	}

	n := &ast.ExprStmt{X: expr}
	ast.SetPos(n, pos)
	p.consumeOptSemi()
	return n
}

func (p *Parser) finishAssignment(target ast.Expr, compound *ast.OpAssignment, pos token.Position) ast.Stmt {
	if !isAssignable(target) {
		p.errorf(diag.AssignmentToInvalidLHS, "invalid assignment target")
	}
	value := p.parseExpr()
	n := &ast.Assignment{Target: target, Value: value, Compound: compound}
	ast.SetPos(n, pos)
	p.consumeOptSemi()
	return n
}

func isAssignable(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.Variable:
		return true
	case *ast.ThisExpr:
		return true
	case *ast.DotExpr:
		return v.Flags.Break()
	case *ast.IndexExpr:
		return v.Flags.Break()
	default:
		return false
	}
}

func compoundOp(k token.Kind) (token.Kind, bool) {
	switch k {
	case token.PLUS_ASSIGN:
		return token.PLUS, true
	case token.MINUS_ASSIGN:
		return token.MINUS, true
	case token.STAR_ASSIGN:
		return token.STAR, true
	case token.SLASH_ASSIGN:
		return token.SLASH, true
	case token.PERCENT_ASSIGN:
		return token.PERCENT, true
	case token.POW_ASSIGN:
		return token.POW, true
	default:
		return token.ILLEGAL, false
	}
}
