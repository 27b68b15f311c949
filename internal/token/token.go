// Package token defines the lexical tokens of dynascript, their source
// positions, operator precedence, and the keyword/reserved-word tables
// consulted by the lexer and parser.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

// Token kinds, grouped the way the teacher groups TokenType constants.
const (
	ILLEGAL Kind = iota
	EOF
	COMMENT

	IDENT
	INT
	FLOAT
	DECIMAL
	STRING
	INTERP_STRING // back-tick string containing `${...}` interpolation
	CHAR

	literalEnd

	// Keywords - literals
	TRUE
	FALSE
	NULL_KW

	// Keywords - control flow
	LET
	CONST
	FN
	IF
	ELSE
	WHILE
	LOOP
	DO
	FOR
	IN
	NOT_IN
	SWITCH
	TRY
	CATCH
	THROW
	RETURN
	BREAK
	CONTINUE
	IMPORT
	EXPORT
	SHARE
	THIS

	keywordEnd

	// Symbols / operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	POW // **
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	POW_ASSIGN
	EQ
	NEQ
	LT
	LE
	GT
	GE
	AND // &&
	OR  // ||
	NOT // !
	BIT_AND
	BIT_XOR
	SHL
	SHR
	RANGE       // ..
	RANGE_INCL  // ..=
	QUESTION    // ??
	QUESTION_DOT
	QUESTION_LBRACKET
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	HASH_LBRACE // #{
	COMMA
	SEMI
	COLON
	DOUBLE_COLON // ::
	DOT
	PIPE // | (closure params)
	BANG_LPAREN  // !(
	ARROW

	EOL
)

var tokenNames = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", DECIMAL: "DECIMAL",
	STRING: "STRING", INTERP_STRING: "INTERP_STRING", CHAR: "CHAR",
	TRUE: "true", FALSE: "false", NULL_KW: "null",
	LET: "let", CONST: "const", FN: "fn", IF: "if", ELSE: "else",
	WHILE: "while", LOOP: "loop", DO: "do", FOR: "for", IN: "in",
	NOT_IN: "!in", SWITCH: "switch", TRY: "try", CATCH: "catch",
	THROW: "throw", RETURN: "return", BREAK: "break", CONTINUE: "continue",
	IMPORT: "import", EXPORT: "export", SHARE: "share", THIS: "this",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", POW: "**",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=", POW_ASSIGN: "**=",
	EQ: "==", NEQ: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	AND: "&&", OR: "||", NOT: "!", BIT_AND: "&", PIPE: "|", BIT_XOR: "^",
	SHL: "<<", SHR: ">>", RANGE: "..", RANGE_INCL: "..=",
	QUESTION: "??", QUESTION_DOT: "?.", QUESTION_LBRACKET: "?[",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", HASH_LBRACE: "#{",
	COMMA: ",", SEMI: ";", COLON: ":", DOUBLE_COLON: "::", DOT: ".",
	BANG_LPAREN: "!(", ARROW: "=>", EOL: "<EOL>",
}

// String implements fmt.Stringer for diagnostics and AST dumps.
func (k Kind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k lexes from an identifier-shaped keyword.
func (k Kind) IsKeyword() bool { return k > literalEnd && k < keywordEnd }

// Position is a 1-based line/column location in a source file.
type Position struct {
	Line   int
	Column int
	Offset int // byte offset, for slicing the source line out for diagnostics
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Less orders positions by (line, column); used to re-stamp errors with
// the better (more specific) of two positions per §7 propagation rules.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Token is one lexical unit: its kind, source position, literal text,
// and a payload for literals that already carry a parsed value (e.g. an
// already-decoded int/float/string) so the parser never re-parses text.
type Token struct {
	Kind    Kind
	Pos     Position
	Literal string // raw or decoded text (identifier name, decoded string contents, ...)
	Payload any    // int64 for INT, float64 for FLOAT, rune for CHAR, decoded text (string) for STRING and INTERP_STRING

	// IsNextUnary records whether the lexer believes the *next* '+'/'-'
	// token should be classified as unary, per §4.1's next_token contract.
	IsNextUnary bool
}

// StringPart is one segment of an interpolated string: either a literal
// text run or an expression-hole marker. The lexer does not produce
// StringPart values; interpolation is driven by the lexer's
// Control.InStringTail flag instead.
type StringPart struct {
	Literal    string
	IsExprHole bool
}

// Precedence returns the binary-operator binding power used by the
// Pratt parser, or 0 if k is not a binary operator. Lower binds looser.
func Precedence(k Kind) int {
	switch k {
	case OR, BIT_XOR, PIPE:
		return 10
	case AND, BIT_AND:
		return 20
	case EQ, NEQ:
		return 30
	case IN, NOT_IN:
		return 40
	case LT, LE, GT, GE:
		return 50
	case QUESTION:
		return 60
	case RANGE, RANGE_INCL:
		return 70
	case PLUS, MINUS:
		return 80
	case STAR, SLASH, PERCENT:
		return 90
	case POW:
		return 100
	case SHL, SHR:
		return 110
	default:
		return 0
	}
}

// RightAssociative reports whether k binds its right operand at the
// same precedence instead of one tighter; only `**` does, per §4.2.
func RightAssociative(k Kind) bool { return k == POW }

// IsPostfixStart reports whether k can begin a postfix chain extension
// (call, index, dot access, module path) in parse_postfix.
func IsPostfixStart(k Kind) bool {
	switch k {
	case LPAREN, BANG_LPAREN, DOT, QUESTION_DOT, LBRACKET, QUESTION_LBRACKET, DOUBLE_COLON:
		return true
	default:
		return false
	}
}

// ReservedFlags is the three-bit payload the spec's reserved-symbol
// table records per entry.
type ReservedFlags uint8

const (
	IsReserved ReservedFlags = 1 << iota
	CallableAsFunction
	CallableAsMethod
)

// keywordTable is the minimal-perfect-hash-shaped table of §4.1: a flat
// map keyed by the literal spelling. Real minimal-perfect-hashing (index
// by length+first+second byte) is an internal lookup-speed concern; the
// externally observable contract is just "spelling -> Kind", which this
// table gives directly.
var keywordTable = map[string]Kind{
	"true": TRUE, "false": FALSE, "null": NULL_KW,
	"let": LET, "const": CONST, "fn": FN, "if": IF, "else": ELSE,
	"while": WHILE, "loop": LOOP, "do": DO, "for": FOR, "in": IN,
	"switch": SWITCH, "try": TRY, "catch": CATCH, "throw": THROW,
	"return": RETURN, "break": BREAK, "continue": CONTINUE,
	"import": IMPORT, "export": EXPORT, "share": SHARE, "this": THIS,
}

// reservedFlagsTable records the three-bit flags for every reserved
// word, independent of whether it is also a structural keyword. Words
// reserved but callable in expression position (e.g. `print`-like
// builtins reserved by convention) are not modeled here because
// dynascript's core has no such words; the table exists so host/custom
// syntax extensions have a place to register new reserved callables
// per §9's "reserved-but-callable" open question.
var reservedFlagsTable = map[string]ReservedFlags{
	"this": IsReserved,
	"fn":   IsReserved,
}

// Lookup resolves an identifier spelling to a keyword Kind, reporting
// ok=false for plain identifiers.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywordTable[ident]
	return k, ok
}

// ReservedFlagsOf returns the reserved-word flags for ident, or 0 if
// ident is not reserved.
func ReservedFlagsOf(ident string) ReservedFlags {
	return reservedFlagsTable[ident]
}
