package parser

import (
	"strings"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
)

// Markers a CustomSyntaxFn returns to drive per-segment consumption,
// grounded on rhai's CUSTOM_SYNTAX_MARKER_* constants.
const (
	MarkerIdent  = "$ident$"
	MarkerSymbol = "$symbol$"
	MarkerExpr   = "$expr$"
	MarkerBlock  = "$block$"
	MarkerBool   = "$bool$"
	MarkerInt    = "$int$"
	MarkerFloat  = "$float$"
	MarkerString = "$string$"

	// syntheticVariantPrefix marks the end of a custom-syntax form: a
	// marker starting with "$$" and longer than the prefix itself
	// contributes a SegSyntheticVariant segment carrying the text after
	// the prefix, then terminates matching immediately, per §9's
	// open-question resolution.
	syntheticVariantPrefix = "$$"
)

// parseCustomSyntax drives a host-registered custom-syntax form: the
// core parser, not the host, consumes tokens. At each step it hands the
// form's Parse callback the marker spellings matched so far (segments[0]
// is always the triggering keyword) plus the raw text of the next
// unconsumed token, and the callback returns the marker governing the
// next segment (§4.2's custom-syntax plug-in mechanism).
func (p *Parser) parseCustomSyntax(def *CustomSyntaxDef) ast.Expr {
	pos := p.cur.Pos
	keyword := p.cur.Literal
	p.advance()

	node := &ast.CustomExpr{Keyword: keyword}
	segments := []string{keyword}
	lastMarker := ""

	for {
		marker, ok := def.Parse(segments, p.cur.Literal)
		if !ok {
			break
		}

		if strings.HasPrefix(marker, syntheticVariantPrefix) && len(marker) > len(syntheticVariantPrefix) {
			variant := marker[len(syntheticVariantPrefix):]
			node.Segments = append(node.Segments, ast.CustomSegment{Kind: ast.SegSyntheticVariant, Ident: variant})
			lastMarker = marker
			break
		}

		seg, spelling := p.parseCustomSegment(marker, segments[0])
		node.Segments = append(node.Segments, seg)
		segments = append(segments, spelling)
		lastMarker = marker
	}

	node.SelfTerminated = lastMarker == MarkerBlock || lastMarker == token.SEMI.String() || lastMarker == token.RBRACE.String()
	ast.SetPos(node, pos)
	return node
}

// parseCustomSegment consumes the tokens for one marker, returning the
// parsed segment plus the spelling to feed back into the next Parse call
// (mirroring rhai's `segments` accumulator).
func (p *Parser) parseCustomSegment(marker, formName string) (ast.CustomSegment, string) {
	switch marker {
	case MarkerIdent:
		name := p.expect(token.IDENT).Literal
		return ast.CustomSegment{Kind: ast.SegIdent, Ident: name}, name

	case MarkerSymbol:
		symbol := p.cur.Literal
		p.advance()
		return ast.CustomSegment{Kind: ast.SegSymbol, Ident: symbol}, symbol

	case MarkerExpr:
		expr := p.parseExpr()
		return ast.CustomSegment{Kind: ast.SegExpr, Expr: expr}, MarkerExpr

	case MarkerBlock:
		block := p.parseBlock()
		return ast.CustomSegment{Kind: ast.SegBlock, Block: block.Statements}, MarkerBlock

	case MarkerBool:
		var v bool
		switch p.cur.Kind {
		case token.TRUE:
			v = true
		case token.FALSE:
			v = false
		default:
			p.errorf(diag.ParseError, "expected 'true' or 'false', got %q", p.cur.Literal)
		}
		p.advance()
		return ast.CustomSegment{Kind: ast.SegBool, Expr: &ast.BoolLit{Value: v}}, marker

	case MarkerInt:
		if !p.at(token.INT) {
			p.errorf(diag.ParseError, "expected an integer, got %q", p.cur.Literal)
		}
		v, _ := p.cur.Payload.(int64)
		p.advance()
		return ast.CustomSegment{Kind: ast.SegInt, Expr: &ast.IntLit{Value: v}}, marker

	case MarkerFloat:
		if !p.at(token.FLOAT) {
			p.errorf(diag.ParseError, "expected a floating-point number, got %q", p.cur.Literal)
		}
		v, _ := p.cur.Payload.(float64)
		p.advance()
		return ast.CustomSegment{Kind: ast.SegFloat, Expr: &ast.FloatLit{Value: v}}, marker

	case MarkerString:
		if !p.at(token.STRING) {
			p.errorf(diag.ParseError, "expected a string, got %q", p.cur.Literal)
		}
		v := p.cur.Literal
		p.advance()
		return ast.CustomSegment{Kind: ast.SegString, Expr: &ast.StringLit{Value: v}}, marker

	default:
		// Anything else is a literal keyword/symbol the form requires
		// verbatim, e.g. the trailing `;` of a statement-shaped form.
		if p.cur.Literal != marker {
			p.errorf(diag.ParseError, "expected %q for '%s' syntax, got %q", marker, formName, p.cur.Literal)
		}
		p.advance()
		return ast.CustomSegment{Kind: ast.SegKeyword, Ident: marker}, marker
	}
}
