// Package parser implements §4.2: a Pratt expression parser, static
// variable-resolution with capture detection, chained postfix parsing,
// custom-syntax plug-ins, and assignment/l-value validation, grounded
// on the teacher's internal/parser recursive-descent structure and the
// scope-stack shape used throughout internal/semantic's analyzers.
package parser

import (
	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/lexer"
	"github.com/cwbudde/dynascript/internal/token"
)

// localVar is one entry of the lexical variable stack.
type localVar struct {
	name    string
	mode    varMode
	barrier bool // true marks the scope-opening barrier itself, not a real variable
}

type varMode int

const (
	modeReadWrite varMode = iota
	modeConst
)

// Option configures a Parser.
type Option func(*Parser)

// WithStrictVariables makes an unresolved, unregistered identifier a
// parse error (VariableUndefined) instead of deferring resolution to
// runtime, per §4.2.
func WithStrictVariables(strict bool) Option {
	return func(p *Parser) { p.strictVariables = strict }
}

// WithMaxExprDepth bounds expression nesting depth, per §4.2/§5.
func WithMaxExprDepth(n int) Option {
	return func(p *Parser) { p.maxExprDepth = n }
}

// WithExternalConstants seeds the outermost variable-stack scope with
// names the host has registered, so scripts can reference them without
// triggering VariableUndefined under strict mode.
func WithExternalConstants(names ...string) Option {
	return func(p *Parser) {
		for _, n := range names {
			p.vars = append(p.vars, localVar{name: n, mode: modeConst})
		}
	}
}

// CustomSyntaxFn decides the next segment of a host-registered
// custom-syntax form, grounded on the original implementation's
// marker-driven design (rhai's CustomSyntax::parse): given the marker
// spellings matched so far (segments[0] is always the form's keyword)
// and the literal text of the next unconsumed token, it returns the
// marker governing the next segment — one of the Marker* constants in
// customsyntax.go, a literal keyword/symbol to match verbatim, or the
// synthetic-variant sentinel ("$$" followed by a variant name) to end
// the form immediately — or ok=false to end the form with no further
// segment. The core parser, not the host, performs the actual token
// consumption for every marker.
type CustomSyntaxFn func(segments []string, lookAhead string) (marker string, ok bool)

// CustomSyntaxDef registers a custom-syntax form under Keyword.
type CustomSyntaxDef struct {
	Keyword string
	Parse   CustomSyntaxFn
}

// Parser turns a token stream into an *ast.Program.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token

	// vars is the lexical variable stack (§4.2's parse-state): entries
	// scanned top-down to the nearest barrier when resolving a name.
	vars []localVar
	// importsStack records imported namespace roots available for
	// `::`-qualified resolution.
	importsStack []string
	// externals collects names captured from an enclosing scope while
	// inside a closure body (allowCapture is true).
	externals    []string
	allowCapture bool

	strictVariables bool
	maxExprDepth    int
	exprDepth       int

	interned map[string]string

	functions map[uint64]*ast.FnDecl
	customSyntax map[string]*CustomSyntaxDef

	// exprFilter, when non-nil, stops expression parsing early. No
	// parse path sets it; switch-case values stop at `:` because COLON
	// is not a binary operator.
	exprFilter func(token.Kind) bool

	errors []*diag.Error
}

// New creates a Parser over src.
func New(src string, opts ...Option) *Parser {
	p := &Parser{
		lex:          lexer.New(src),
		interned:     make(map[string]string),
		functions:    make(map[uint64]*ast.FnDecl),
		customSyntax: make(map[string]*CustomSyntaxDef),
		maxExprDepth: 256,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.advance()
	return p
}

// RegisterCustomSyntax installs a host-defined custom-syntax form,
// matching §4.2's custom-syntax plug-in mechanism.
func (p *Parser) RegisterCustomSyntax(def *CustomSyntaxDef) {
	p.customSyntax[def.Keyword] = def
}

// Errors returns parse errors accumulated so far.
func (p *Parser) Errors() []*diag.Error { return p.errors }

func (p *Parser) intern(s string) string {
	if v, ok := p.interned[s]; ok {
		return v
	}
	p.interned[s] = s
	return s
}

// advance reads the next token into p.cur. The parser deliberately
// keeps single-token lookahead (no prefetch buffer): string
// interpolation needs to flip the lexer's Control.InStringTail flag at
// the exact moment of the next lex call, which a prefetched lookahead
// token would make impossible to land precisely (see parseInterpString).
func (p *Parser) advance() {
	p.cur = p.lex.Next()
}

func (p *Parser) errorf(kind diag.Kind, format string, args ...any) {
	p.errors = append(p.errors, diag.New(kind, p.cur.Pos, format, args...))
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.errorf(diag.ParseError, "expected %v, got %v %q", k, p.cur.Kind, p.cur.Literal)
		return p.cur
	}
	t := p.cur
	p.advance()
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

// Parse parses the whole token stream into a Program.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{Functions: p.functions}
	for !p.at(token.EOF) {
		stmt := p.parseStmt()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if len(p.errors) > 64 {
			break
		}
	}
	if len(p.errors) > 0 {
		return prog, p.errors[0]
	}
	return prog, nil
}
