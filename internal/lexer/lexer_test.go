package lexer

import (
	"testing"

	"github.com/cwbudde/dynascript/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tk := l.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestKeywordsLexExactly(t *testing.T) {
	cases := map[string]token.Kind{
		"let": token.LET, "const": token.CONST, "fn": token.FN,
		"if": token.IF, "else": token.ELSE, "while": token.WHILE,
		"true": token.TRUE, "false": token.FALSE, "null": token.NULL_KW,
	}
	for src, want := range cases {
		toks := collect(src)
		if len(toks) != 2 || toks[0].Kind != want || toks[1].Kind != token.EOF {
			t.Errorf("lex(%q) = %#v; want [%v EOF]", src, toks, want)
		}
	}
}

func TestHexUnderscoreInteger(t *testing.T) {
	toks := collect("0x_FF_FF")
	if len(toks) != 2 || toks[0].Kind != token.INT || toks[0].Payload.(int64) != 65535 {
		t.Fatalf("lex(0x_FF_FF) = %#v; want INT 65535", toks)
	}
}

func TestDoubleQuotedEscapes(t *testing.T) {
	toks := collect(`"a\nb"`)
	if len(toks) != 2 || toks[0].Kind != token.STRING {
		t.Fatalf("unexpected tokens: %#v", toks)
	}
	if toks[0].Literal != "a\nb" {
		t.Fatalf("expected decoded string %q, got %q", "a\nb", toks[0].Literal)
	}
}

func TestBacktickStringSingleToken(t *testing.T) {
	toks := collect("`line1\nline2`")
	if len(toks) != 2 || toks[0].Kind != token.STRING {
		t.Fatalf("unexpected tokens: %#v", toks)
	}
	if toks[0].Literal != "line1\nline2" {
		t.Fatalf("expected literal newline preserved, got %q", toks[0].Literal)
	}
}

func TestUnterminatedDoubleQuotedStringIsLexError(t *testing.T) {
	l := New(`"unterminated`)
	tk := l.Next()
	if tk.Kind != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %v", tk.Kind)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lex error to be recorded")
	}
}

func TestInterpolatedStringHole(t *testing.T) {
	l := New("`hello ${1+2}`")
	first := l.Next()
	if first.Kind != token.INTERP_STRING || first.Literal != "hello " {
		t.Fatalf("expected interpolated prefix, got %#v", first)
	}
	if !l.Control.InStringTail {
		t.Fatalf("expected lexer to be armed for string-tail re-entry")
	}
	// Parser now lexes the embedded expression tokens normally.
	l.Control.InStringTail = false
	one := l.Next()
	if one.Kind != token.INT {
		t.Fatalf("expected INT token inside interpolation, got %v", one.Kind)
	}
	plus := l.Next()
	if plus.Kind != token.PLUS {
		t.Fatalf("expected + token, got %v", plus.Kind)
	}
	two := l.Next()
	if two.Kind != token.INT {
		t.Fatalf("expected INT token, got %v", two.Kind)
	}
	rbrace := l.Next()
	if rbrace.Kind != token.RBRACE {
		t.Fatalf("expected } token, got %v", rbrace.Kind)
	}
	l.Control.InStringTail = true
	tail := l.Next()
	if tail.Kind != token.STRING || tail.Literal != "" {
		t.Fatalf("expected empty closing literal tail, got %#v", tail)
	}
}

func TestCharLiteralExactlyOneChar(t *testing.T) {
	toks := collect(`'x'`)
	if toks[0].Kind != token.CHAR || toks[0].Payload.(rune) != 'x' {
		t.Fatalf("unexpected char literal: %#v", toks[0])
	}
}

func TestRangeOperatorsLeaveIntegerIntact(t *testing.T) {
	toks := collect("1..5")
	if toks[0].Kind != token.INT || toks[1].Kind != token.RANGE || toks[2].Kind != token.INT {
		t.Fatalf("unexpected tokens for range: %#v", toks)
	}
}

func TestUnaryVsBinaryMinus(t *testing.T) {
	// `-1`: a `-` token leaves the lexer in a unary-permitting state,
	// so the `-` token itself carries IsNextUnary = true.
	toks := collect("-1")
	if toks[0].Kind != token.MINUS || !toks[0].IsNextUnary {
		t.Fatalf("expected leading - classified as unary-permitting: %#v", toks[0])
	}
	toks2 := collect("x - 1")
	// After IDENT, IsNextUnary recorded on the IDENT token must be false.
	if toks2[0].IsNextUnary {
		t.Fatalf("identifier must not permit a following +/- as unary")
	}
}

func TestPowLexesAsSingleToken(t *testing.T) {
	toks := collect("2**3")
	if toks[0].Kind != token.INT || toks[1].Kind != token.POW || toks[2].Kind != token.INT {
		t.Fatalf("unexpected: %#v", toks)
	}
}
