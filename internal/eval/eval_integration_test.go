package eval_test

import (
	"strings"
	"testing"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/eval"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/parser"
	"github.com/cwbudde/dynascript/internal/value"
)

// newEvaluator wires an Evaluator against the real parser, the same
// way pkg/engine.New does, without importing pkg/engine (which itself
// imports this package).
func newEvaluator() *eval.Evaluator {
	e := eval.New(module.New(""))
	e.Compile = func(src string) (*ast.Program, error) {
		return parser.New(src).Parse()
	}
	return e
}

func run(t *testing.T, e *eval.Evaluator, src string) value.Value {
	t.Helper()
	prog, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	result, err := e.Run(prog)
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return result
}

func TestWhileLoopBreak(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		let i = 0;
		let sum = 0;
		while true {
			if i >= 5 { break; }
			sum = sum + i;
			i = i + 1;
		}
		sum
	`)
	got, ok := result.(*value.Int)
	if !ok || got.V != 10 {
		t.Fatalf("got %v, want Int(10)", result)
	}
}

func TestForRangeInclusive(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		let sum = 0;
		for i in 1..=5 {
			sum = sum + i;
		}
		sum
	`)
	got, ok := result.(*value.Int)
	if !ok || got.V != 15 {
		t.Fatalf("got %v, want Int(15)", result)
	}
}

func TestForInArray(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		let total = 0;
		for x in [1, 2, 3] {
			total = total + x;
		}
		total
	`)
	got, ok := result.(*value.Int)
	if !ok || got.V != 6 {
		t.Fatalf("got %v, want Int(6)", result)
	}
}

func TestClosureCapturesByReference(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		let counter = 0;
		let inc = || { counter = counter + 1; counter };
		call(inc);
		call(inc);
		call(inc)
	`)
	got, ok := result.(*value.Int)
	if !ok || got.V != 3 {
		t.Fatalf("got %v, want Int(3)", result)
	}
}

func TestTryCatchCatchesThrow(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		let caught = 0;
		try {
			throw 42;
		} catch (e) {
			caught = e;
		}
		caught
	`)
	got, ok := result.(*value.Int)
	if !ok || got.V != 42 {
		t.Fatalf("got %v, want Int(42)", result)
	}
}

func TestUncaughtThrowBecomesUserError(t *testing.T) {
	e := newEvaluator()
	prog, err := parser.New(`throw "boom";`).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = e.Run(prog)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected an uncaught-throw error mentioning \"boom\", got %v", err)
	}
}

func TestSwitchMatchesByEquality(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		let x = 2;
		let label = "";
		switch x {
		case 1:
			label = "one";
		case 2, 3:
			label = "two-or-three";
		default:
			label = "other";
		}
		label
	`)
	got, ok := result.(*value.Str)
	if !ok || got.V != "two-or-three" {
		t.Fatalf("got %v, want Str(two-or-three)", result)
	}
}

func TestEvalIntrinsicIntroducesVariableByDefault(t *testing.T) {
	e := newEvaluator()
	result := run(t, e, `
		eval("let injected = 7;");
		injected
	`)
	got, ok := result.(*value.Int)
	if !ok || got.V != 7 {
		t.Fatalf("got %v, want Int(7)", result)
	}
}

func TestStrictEvalIsolatesIntroducedVariable(t *testing.T) {
	e := newEvaluator()
	e.StrictEval = true
	prog, err := parser.New(`
		eval("let injected = 7;");
		injected
	`).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := e.Run(prog); err == nil {
		t.Fatal("expected injected to stay undefined under strict eval")
	}
}
