package token

import "testing"

func TestLookupKeywords(t *testing.T) {
	cases := map[string]Kind{
		"let": LET, "fn": FN, "if": IF, "while": WHILE, "return": RETURN,
		"true": TRUE, "false": FALSE, "null": NULL_KW,
	}
	for spelling, want := range cases {
		got, ok := Lookup(spelling)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %v, %v; want %v, true", spelling, got, ok, want)
		}
	}
	if _, ok := Lookup("notAKeyword"); ok {
		t.Errorf("Lookup(notAKeyword) should not resolve")
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	if !(Precedence(STAR) > Precedence(PLUS)) {
		t.Errorf("* should bind tighter than +")
	}
	if !(Precedence(POW) > Precedence(STAR)) {
		t.Errorf("** should bind tighter than *")
	}
	if !RightAssociative(POW) {
		t.Errorf("** must be right-associative")
	}
	if RightAssociative(PLUS) {
		t.Errorf("+ must not be right-associative")
	}
}

func TestIsPostfixStart(t *testing.T) {
	for _, k := range []Kind{LPAREN, DOT, QUESTION_DOT, LBRACKET, QUESTION_LBRACKET, DOUBLE_COLON, BANG_LPAREN} {
		if !IsPostfixStart(k) {
			t.Errorf("%v should start a postfix chain", k)
		}
	}
	if IsPostfixStart(PLUS) {
		t.Errorf("+ must not start a postfix chain")
	}
}
