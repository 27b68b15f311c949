package diag

import (
	"strings"
	"testing"

	"github.com/cwbudde/dynascript/internal/token"
)

func TestFormatIncludesCaret(t *testing.T) {
	src := "let x = 1\nx +\n"
	err := New(VariableUndefined, token.Position{Line: 2, Column: 1}, "variable %q is undefined", "y").
		WithSource(src, "test.ds")

	out := err.Format(false)
	if !strings.Contains(out, "test.ds:2:1") {
		t.Errorf("missing file:line:col header: %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret: %q", out)
	}
	if !strings.Contains(out, `variable "y" is undefined`) {
		t.Errorf("missing message: %q", out)
	}
}

func TestRestampKeepsKindChangesPosition(t *testing.T) {
	err := New(FunctionNotFound, token.Position{Line: 1, Column: 1}, "boom")
	r := err.Restamp(token.Position{Line: 5, Column: 9})
	if r.Kind != FunctionNotFound {
		t.Errorf("kind changed on restamp")
	}
	if r.Pos.Line != 5 || r.Pos.Column != 9 {
		t.Errorf("restamp did not move position: %+v", r.Pos)
	}
	if err.Pos.Line != 1 {
		t.Errorf("restamp mutated original")
	}
}

func TestIsControlFlow(t *testing.T) {
	for _, k := range []Kind{ReturnControl, BreakControl, ContinueControl, ThrowControl} {
		if !k.IsControlFlow() {
			t.Errorf("%v should be control flow", k)
		}
	}
	if FunctionNotFound.IsControlFlow() {
		t.Errorf("FunctionNotFound must not be control flow")
	}
}

func TestAsHelper(t *testing.T) {
	var err error = New(DataRace, token.Position{}, "race")
	if _, ok := As(err, DataRace); !ok {
		t.Errorf("As should match DataRace")
	}
	if _, ok := As(err, ParseError); ok {
		t.Errorf("As should not match a different kind")
	}
}
