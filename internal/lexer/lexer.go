// Package lexer implements §4.1: a restartable character-stream-to-
// token-stream scanner, with string-interpolation re-entry and
// table-driven keyword recognition, grounded on the teacher's
// internal/lexer rune-based scanning approach (UTF-8 BOM stripping,
// save/restore state, functional options).
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
)

// ControlBlock is the spec's "shared tokenizer-control block": mutable
// state the parser reaches into to signal that the next token should
// resume inside an interpolated string's literal tail, and to collect
// documentation comments encountered between tokens.
type ControlBlock struct {
	// InStringTail, when true, tells next_token to resume scanning a
	// back-tick string's literal text instead of reading a fresh token,
	// re-entering after a `${...}` interpolation's closing `}`.
	InStringTail bool
	tailQuote    rune // always '`' for dynascript's verbatim strings

	// DocComments accumulates `///`, `/** */`, and `//!` comment bodies
	// when the lexer is not configured to emit COMMENT tokens.
	DocComments []string
}

// Option configures a Lexer, following the teacher's LexerOption idiom.
type Option func(*Lexer)

// WithPreserveComments makes the lexer emit COMMENT tokens instead of
// skipping comments and buffering doc comments into the ControlBlock.
func WithPreserveComments(preserve bool) Option {
	return func(l *Lexer) { l.preserveComments = preserve }
}

// WithMaxStringLength bounds any single double-quoted string literal,
// per §5's resource limits. Zero means unlimited. Back-tick
// (interpolated) strings and char literals are not checked.
func WithMaxStringLength(n int) Option {
	return func(l *Lexer) { l.maxStringLength = n }
}

// Lexer scans dynascript source text into tokens.
type Lexer struct {
	input        string
	position     int
	readPosition int
	line         int
	column       int
	ch           rune
	chWidth      int

	preserveComments bool
	maxStringLength  int

	lastWasUnary bool // seed: a leading +/- is unary
	Control      ControlBlock

	errors []*diag.Error
}

// State is a saved snapshot for parser backtracking/lookahead.
type State struct {
	position     int
	readPosition int
	line         int
	column       int
	ch           rune
	chWidth      int
	lastWasUnary bool
	control      ControlBlock
}

// New creates a Lexer for input, stripping a leading UTF-8 BOM and
// shebang line if present (§6: "A leading #! line is permitted as a
// shebang and consumed as a comment").
func New(input string, opts ...Option) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:]
	}
	l := &Lexer{input: input, line: 1, column: 0, lastWasUnary: true}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	if l.ch == '#' && l.peekChar() == '!' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	}
	return l
}

// Save captures the current scan position for later Restore.
func (l *Lexer) Save() State {
	return State{l.position, l.readPosition, l.line, l.column, l.ch, l.chWidth, l.lastWasUnary, l.Control}
}

// Restore rewinds the lexer to a previously Saved state.
func (l *Lexer) Restore(s State) {
	l.position, l.readPosition = s.position, s.readPosition
	l.line, l.column = s.line, s.column
	l.ch, l.chWidth = s.ch, s.chWidth
	l.lastWasUnary = s.lastWasUnary
	l.Control = s.control
}

// Errors returns lex errors accumulated so far (the lexer does not stop
// at the first error so tooling can report more than one at a time).
func (l *Lexer) Errors() []*diag.Error { return l.errors }

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chWidth = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if r == utf8.RuneError && w == 1 {
		r = rune(l.input[l.readPosition])
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.position = l.readPosition
	l.readPosition += w
	l.ch = r
	l.chWidth = w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekAt(offset int) rune {
	p := l.readPosition
	var r rune
	for i := 0; i <= offset; i++ {
		if p >= len(l.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(l.input[p:])
		p += w
	}
	return r
}

func (l *Lexer) error(kind diag.Kind, format string, args ...any) {
	l.errors = append(l.errors, diag.New(kind, l.pos(), format, args...))
}

func isLetter(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// Next advances the lexer and returns the next Token, terminated by an
// EOF token, implementing §4.1's next_token contract. Errors are not
// returned here; they are recorded by the lexer and a malformed input
// yields an ILLEGAL token.
// The returned Token's IsNextUnary bit classifies whether a following
// `+`/`-` should be read as unary.
func (l *Lexer) Next() token.Token {
	if l.Control.InStringTail {
		return l.continueInterpolatedString()
	}

	l.skipComments()
	l.skipWhitespace()
	l.skipComments()
	l.skipWhitespace()

	pos := l.pos()

	if l.ch == 0 {
		return l.emit(token.EOF, pos, "")
	}

	switch {
	case isLetter(l.ch):
		return l.readIdentifier(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == '"':
		return l.readDoubleQuotedString(pos)
	case l.ch == '\'':
		return l.readCharLiteral(pos)
	case l.ch == '`':
		return l.readBacktickString(pos)
	}

	return l.readOperator(pos)
}

func (l *Lexer) emit(k token.Kind, pos token.Position, lit string) token.Token {
	l.lastWasUnary = tokenAllowsUnaryNext(k)
	return token.Token{Kind: k, Pos: pos, Literal: lit, IsNextUnary: l.lastWasUnary}
}

func (l *Lexer) emitPayload(k token.Kind, pos token.Position, lit string, payload any) token.Token {
	t := l.emit(k, pos, lit)
	t.Payload = payload
	return t
}

// tokenAllowsUnaryNext reports whether, having just produced k, a
// following `+`/`-` should be classified as unary. Per §4.1, this holds
// after most operators/punctuation but not after a value-producing
// token (identifier, literal, `)`, `]`, `this`).
func tokenAllowsUnaryNext(k token.Kind) bool {
	switch k {
	case token.IDENT, token.INT, token.FLOAT, token.DECIMAL, token.STRING,
		token.INTERP_STRING, token.CHAR, token.RPAREN, token.RBRACKET,
		token.RBRACE, token.THIS, token.TRUE, token.FALSE, token.NULL_KW:
		return false
	default:
		return true
	}
}

func (l *Lexer) skipComments() {
	for {
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}
		return
	}
}

func (l *Lexer) skipLineComment() {
	doc := false
	docStyle := ""
	if l.peekAt(1) == '/' {
		doc = true
		docStyle = "///"
	} else if l.peekAt(1) == '!' {
		doc = true
		docStyle = "//!"
	}
	l.readChar()
	l.readChar()
	if doc {
		if docStyle == "///" || docStyle == "//!" {
			l.readChar()
		}
	}
	start := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	if doc && !l.preserveComments {
		l.Control.DocComments = append(l.Control.DocComments, strings.TrimSpace(l.input[start:l.position]))
	}
}

func (l *Lexer) skipBlockComment() {
	doc := l.peekAt(1) == '*'
	l.readChar()
	l.readChar()
	start := l.position
	depth := 1
	for depth > 0 && l.ch != 0 {
		if l.ch == '/' && l.peekChar() == '*' {
			depth++
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == '*' && l.peekChar() == '/' {
			depth--
			if depth == 0 {
				end := l.position
				l.readChar()
				l.readChar()
				if doc && !l.preserveComments {
					l.Control.DocComments = append(l.Control.DocComments, strings.TrimSpace(l.input[start:end]))
				}
				return
			}
			l.readChar()
			l.readChar()
			continue
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier(pos token.Position) token.Token {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	if k, ok := token.Lookup(lit); ok {
		return l.emit(k, pos, lit)
	}
	return l.emit(token.IDENT, pos, lit)
}

// readNumber implements §4.1's numeric rules: `0x/0o/0b` base prefixes,
// `_` separators ignored, a trailing `.` consumed as part of a float
// only when followed by a digit (so `1..5` stays a range), exponent
// `e±N`, and a try-int-then-float fallback, surfacing a malformed
// number via diag.LexError. No decimal attempt is made: the lexer never
// produces a DECIMAL token.
func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.position

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		return l.readRadixInt(pos, 16, "0x")
	}
	if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		return l.readRadixInt(pos, 8, "0o")
	}
	if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		return l.readRadixInt(pos, 2, "0b")
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.Save()
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if isDigit(l.ch) {
			isFloat = true
			for isDigit(l.ch) {
				l.readChar()
			}
		} else {
			l.Restore(save)
		}
	}

	raw := l.input[start:l.position]
	clean := strings.ReplaceAll(raw, "_", "")

	if !isFloat {
		if iv, err := strconv.ParseInt(clean, 10, 64); err == nil {
			return l.emitPayload(token.INT, pos, raw, iv)
		}
	}
	if fv, err := strconv.ParseFloat(clean, 64); err == nil {
		return l.emitPayload(token.FLOAT, pos, raw, fv)
	}
	l.error(diag.LexError, "malformed number literal %q", raw)
	return l.emit(token.ILLEGAL, pos, raw)
}

func (l *Lexer) readRadixInt(pos token.Position, base int, prefix string) token.Token {
	start := l.position
	l.readChar()
	l.readChar()
	for isHexDigitForBase(l.ch, base) || l.ch == '_' {
		l.readChar()
	}
	raw := l.input[start:l.position]
	clean := strings.ReplaceAll(raw[len(prefix):], "_", "")
	iv, err := strconv.ParseInt(clean, base, 64)
	if err != nil {
		l.error(diag.LexError, "malformed number literal %q", raw)
		return l.emit(token.ILLEGAL, pos, raw)
	}
	return l.emitPayload(token.INT, pos, raw, iv)
}

func isHexDigitForBase(r rune, base int) bool {
	switch base {
	case 16:
		return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	case 8:
		return r >= '0' && r <= '7'
	case 2:
		return r == '0' || r == '1'
	}
	return false
}

// readDoubleQuotedString implements the escape rules of §4.1, including
// the line-continuation backslash that skips leading whitespace on the
// next line up to the opening-quote column.
func (l *Lexer) readDoubleQuotedString(pos token.Position) token.Token {
	openCol := l.column
	l.readChar() // consume opening quote
	var sb strings.Builder
	for {
		if l.ch == 0 || l.ch == '\n' {
			l.error(diag.LexError, "unterminated string literal")
			return l.emit(token.ILLEGAL, pos, sb.String())
		}
		if l.ch == '"' {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			if l.peekChar() == '\n' {
				l.readChar() // backslash
				l.readChar() // newline
				for l.column < openCol && (l.ch == ' ' || l.ch == '\t') {
					l.readChar()
				}
				continue
			}
			r, ok := l.readEscape()
			if !ok {
				return l.emit(token.ILLEGAL, pos, sb.String())
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.maxStringLength > 0 && sb.Len() > l.maxStringLength {
		l.error(diag.DataTooLarge, "string literal exceeds maximum length %d", l.maxStringLength)
	}
	return l.emitPayload(token.STRING, pos, sb.String(), sb.String())
}

func (l *Lexer) readEscape() (rune, bool) {
	l.readChar() // consume backslash
	switch l.ch {
	case 't':
		l.readChar()
		return '\t', true
	case 'n':
		l.readChar()
		return '\n', true
	case 'r':
		l.readChar()
		return '\r', true
	case '\\':
		l.readChar()
		return '\\', true
	case '"':
		l.readChar()
		return '"', true
	case '\'':
		l.readChar()
		return '\'', true
	case 'x':
		l.readChar()
		return l.readHexEscape(2)
	case 'u':
		l.readChar()
		return l.readHexEscape(4)
	case 'U':
		l.readChar()
		return l.readHexEscape(8)
	default:
		l.error(diag.LexError, "unknown escape sequence \\%c", l.ch)
		return 0, false
	}
}

func (l *Lexer) readHexEscape(n int) (rune, bool) {
	start := l.position
	for i := 0; i < n; i++ {
		if !isHexDigitForBase(l.ch, 16) {
			l.error(diag.LexError, "invalid hex escape")
			return 0, false
		}
		l.readChar()
	}
	v, err := strconv.ParseInt(l.input[start:l.position], 16, 32)
	if err != nil {
		l.error(diag.LexError, "invalid hex escape")
		return 0, false
	}
	return rune(v), true
}

func (l *Lexer) readCharLiteral(pos token.Position) token.Token {
	l.readChar() // opening quote
	var r rune
	if l.ch == '\\' {
		var ok bool
		r, ok = l.readEscape()
		if !ok {
			return l.emit(token.ILLEGAL, pos, "")
		}
	} else {
		r = l.ch
		l.readChar()
	}
	if l.ch != '\'' {
		l.error(diag.LexError, "char literal must contain exactly one character")
		return l.emit(token.ILLEGAL, pos, string(r))
	}
	l.readChar()
	return l.emitPayload(token.CHAR, pos, string(r), r)
}

// readBacktickString scans a verbatim multi-line string. On hitting
// `${`, it returns an INTERP_STRING token carrying the literal prefix
// and arms Control.InStringTail so the parser can parse the embedded
// expression by continuing to call Next, then calling
// ResumeInterpolation once it consumes the closing `}`.
func (l *Lexer) readBacktickString(pos token.Position) token.Token {
	l.readChar() // opening backtick
	return l.scanBacktickSegment(pos)
}

func (l *Lexer) scanBacktickSegment(pos token.Position) token.Token {
	var sb strings.Builder
	for {
		if l.ch == 0 {
			l.error(diag.LexError, "unterminated back-tick string")
			return l.emit(token.ILLEGAL, pos, sb.String())
		}
		if l.ch == '`' {
			l.readChar()
			return l.emitPayload(token.STRING, pos, sb.String(), sb.String())
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar()
			l.readChar()
			l.Control.InStringTail = true
			l.Control.tailQuote = '`'
			return l.emitPayload(token.INTERP_STRING, pos, sb.String(), sb.String())
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}

// continueInterpolatedString is called by Next when Control.InStringTail
// is set; it resumes scanning the back-tick string's remaining literal
// text after the parser has consumed the `${...}` hole's closing `}`.
func (l *Lexer) continueInterpolatedString() token.Token {
	l.Control.InStringTail = false
	pos := l.pos()
	return l.scanBacktickSegment(pos)
}

func (l *Lexer) readOperator(pos token.Position) token.Token {
	ch := l.ch
	two := string(ch) + string(l.peekChar())
	switch two {
	case "**":
		l.readChar()
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.emit(token.POW_ASSIGN, pos, "**=")
		}
		return l.emit(token.POW, pos, "**")
	case "==":
		l.readChar()
		l.readChar()
		return l.emit(token.EQ, pos, "==")
	case "!=":
		l.readChar()
		l.readChar()
		return l.emit(token.NEQ, pos, "!=")
	case "<=":
		l.readChar()
		l.readChar()
		return l.emit(token.LE, pos, "<=")
	case ">=":
		l.readChar()
		l.readChar()
		return l.emit(token.GE, pos, ">=")
	case "&&":
		l.readChar()
		l.readChar()
		return l.emit(token.AND, pos, "&&")
	case "||":
		l.readChar()
		l.readChar()
		return l.emit(token.OR, pos, "||")
	case "<<":
		l.readChar()
		l.readChar()
		return l.emit(token.SHL, pos, "<<")
	case ">>":
		l.readChar()
		l.readChar()
		return l.emit(token.SHR, pos, ">>")
	case "??":
		l.readChar()
		l.readChar()
		return l.emit(token.QUESTION, pos, "??")
	case "?.":
		l.readChar()
		l.readChar()
		return l.emit(token.QUESTION_DOT, pos, "?.")
	case "?[":
		l.readChar()
		l.readChar()
		return l.emit(token.QUESTION_LBRACKET, pos, "?[")
	case "::":
		l.readChar()
		l.readChar()
		return l.emit(token.DOUBLE_COLON, pos, "::")
	case "#{":
		l.readChar()
		l.readChar()
		return l.emit(token.HASH_LBRACE, pos, "#{")
	case "!(":
		l.readChar()
		l.readChar()
		return l.emit(token.BANG_LPAREN, pos, "!(")
	case "+=":
		l.readChar()
		l.readChar()
		return l.emit(token.PLUS_ASSIGN, pos, "+=")
	case "-=":
		l.readChar()
		l.readChar()
		return l.emit(token.MINUS_ASSIGN, pos, "-=")
	case "*=":
		l.readChar()
		l.readChar()
		return l.emit(token.STAR_ASSIGN, pos, "*=")
	case "/=":
		l.readChar()
		l.readChar()
		return l.emit(token.SLASH_ASSIGN, pos, "/=")
	case "%=":
		l.readChar()
		l.readChar()
		return l.emit(token.PERCENT_ASSIGN, pos, "%=")
	case "=>":
		l.readChar()
		l.readChar()
		return l.emit(token.ARROW, pos, "=>")
	}
	if ch == '.' && l.peekChar() == '.' {
		if l.peekAt(1) == '=' {
			l.readChar()
			l.readChar()
			l.readChar()
			return l.emit(token.RANGE_INCL, pos, "..=")
		}
		l.readChar()
		l.readChar()
		return l.emit(token.RANGE, pos, "..")
	}

	single := map[rune]token.Kind{
		'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH,
		'%': token.PERCENT, '=': token.ASSIGN, '<': token.LT, '>': token.GT,
		'!': token.NOT, '&': token.BIT_AND, '|': token.PIPE, '^': token.BIT_XOR,
		'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
		'[': token.LBRACKET, ']': token.RBRACKET, ',': token.COMMA, ';': token.SEMI,
		':': token.COLON, '.': token.DOT,
	}
	if k, ok := single[ch]; ok {
		l.readChar()
		return l.emit(k, pos, string(ch))
	}

	l.error(diag.LexError, "unexpected character %q", ch)
	l.readChar()
	return l.emit(token.ILLEGAL, pos, string(ch))
}
