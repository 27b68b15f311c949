package parser

import (
	"testing"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	return prog
}

func exprOf(t *testing.T, prog *ast.Program) ast.Expr {
	t.Helper()
	if len(prog.Statements) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Statements[0])
	}
	return es.X
}

func TestArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3): outer call is "+".
	prog := parseOK(t, "1 + 2 * 3;")
	call, ok := exprOf(t, prog).(*ast.FuncCall)
	if !ok || call.Name != "+" {
		t.Fatalf("expected top-level + call, got %#v", exprOf(t, prog))
	}
	rhs, ok := call.Args[1].(*ast.FuncCall)
	if !ok || rhs.Name != "*" {
		t.Fatalf("expected right operand to be a * call, got %#v", call.Args[1])
	}
}

func TestPowIsRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 must bind as 2 ** (3 ** 2).
	prog := parseOK(t, "2 ** 3 ** 2;")
	call, ok := exprOf(t, prog).(*ast.FuncCall)
	if !ok || call.Name != "**" {
		t.Fatalf("expected top-level ** call, got %#v", exprOf(t, prog))
	}
	rhs, ok := call.Args[1].(*ast.FuncCall)
	if !ok || rhs.Name != "**" {
		t.Fatalf("expected right-associated ** nesting, got %#v", call.Args[1])
	}
}

func TestBinaryOperatorsLowerToFuncCall(t *testing.T) {
	prog := parseOK(t, "a < b;")
	call, ok := exprOf(t, prog).(*ast.FuncCall)
	if !ok || call.Name != "<" {
		t.Fatalf("expected < lowered to FuncCall, got %#v", exprOf(t, prog))
	}
	if !call.Hashes.HasScript() {
		t.Fatalf("expected a non-zero call-site hash for operator dispatch")
	}
}

func TestLogicalOperatorsGetDedicatedNodes(t *testing.T) {
	prog := parseOK(t, "a && b || c;")
	if _, ok := exprOf(t, prog).(*ast.LogicalOr); !ok {
		t.Fatalf("expected top-level LogicalOr, got %#v", exprOf(t, prog))
	}
}

func TestDotChainBreakFlagOnlyOnTerminalNode(t *testing.T) {
	prog := parseOK(t, "a.b.c;")
	outer, ok := exprOf(t, prog).(*ast.DotExpr)
	if !ok {
		t.Fatalf("expected DotExpr, got %#v", exprOf(t, prog))
	}
	if !outer.Flags.Break() {
		t.Fatalf("expected outer Dot node to carry FlagBreak")
	}
	inner, ok := outer.Target.(*ast.DotExpr)
	if !ok {
		t.Fatalf("expected nested DotExpr target, got %#v", outer.Target)
	}
	if inner.Flags.Break() {
		t.Fatalf("nested Dot node must not carry FlagBreak")
	}
}

func TestPropertyAccessOnlyAsDotField(t *testing.T) {
	prog := parseOK(t, "obj.field;")
	dot := exprOf(t, prog).(*ast.DotExpr)
	if _, ok := dot.Field.(*ast.PropertyAccess); !ok {
		t.Fatalf("expected PropertyAccess field, got %#v", dot.Field)
	}
}

func TestMethodCallOnDot(t *testing.T) {
	prog := parseOK(t, "obj.method(1, 2);")
	dot := exprOf(t, prog).(*ast.DotExpr)
	mc, ok := dot.Field.(*ast.MethodCall)
	if !ok || mc.Name != "method" || len(mc.Args) != 2 {
		t.Fatalf("expected MethodCall(method, 2 args), got %#v", dot.Field)
	}
}

func TestAssignmentRejectsNonLValue(t *testing.T) {
	p := New("1 + 1 = 2;")
	_, err := p.Parse()
	if err == nil {
		t.Fatalf("expected an error assigning to a non-lvalue")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.AssignmentToInvalidLHS {
		t.Fatalf("expected AssignmentToInvalidLHS, got %#v", err)
	}
}

func TestCompoundAssignmentRecordsOperator(t *testing.T) {
	p := New("let x = 1; x += 2;")
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	assign, ok := prog.Statements[1].(*ast.Assignment)
	if !ok || assign.Compound == nil {
		t.Fatalf("expected compound assignment, got %#v", prog.Statements[1])
	}
}

func TestStrictVariablesRejectsUnknownIdentifier(t *testing.T) {
	p := New("print(x);", WithStrictVariables(true))
	_, err := p.Parse()
	if err == nil {
		t.Fatalf("expected VariableUndefined under strict mode")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.VariableUndefined {
		t.Fatalf("expected VariableUndefined, got %#v", err)
	}
}

func TestClosureCapturesExternalVariable(t *testing.T) {
	prog := parseOK(t, "let total = 0; let add = |x| total;")
	decl, ok := prog.Statements[1].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %#v", prog.Statements[1])
	}
	closure, ok := decl.Init.(*ast.ClosureExpr)
	if !ok {
		t.Fatalf("expected ClosureExpr init, got %#v", decl.Init)
	}
	if len(closure.Externals) != 1 || closure.Externals[0] != "total" {
		t.Fatalf("expected capture of 'total', got %#v", closure.Externals)
	}
}

func TestIfWhileLoopParse(t *testing.T) {
	parseOK(t, `
		if 1 < 2 { 1; } else { 2; }
		while true { break; }
		loop { break; }
	`)
}

func TestSwitchStatement(t *testing.T) {
	prog := parseOK(t, `
		switch x {
			case 1, 2: { 1; }
			default: { 2; }
		}
	`)
	sw, ok := prog.Statements[0].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("expected SwitchStmt, got %#v", prog.Statements[0])
	}
	if len(sw.Cases) != 1 || len(sw.Cases[0].Values) != 2 || sw.Default == nil {
		t.Fatalf("unexpected switch shape: %#v", sw)
	}
}

func TestTryCatch(t *testing.T) {
	prog := parseOK(t, `try { throw 1; } catch (e) { e; }`)
	ts, ok := prog.Statements[0].(*ast.TryStmt)
	if !ok || ts.CatchVar != "e" {
		t.Fatalf("expected TryStmt with catch var 'e', got %#v", prog.Statements[0])
	}
}

func TestFnDeclRegistersHash(t *testing.T) {
	prog := parseOK(t, `fn add(a, b) { return a + b; }`)
	if len(prog.Functions) != 1 {
		t.Fatalf("expected one registered function, got %d", len(prog.Functions))
	}
}

func TestInStringLowersToContainsCall(t *testing.T) {
	prog := parseOK(t, "x in arr;")
	call, ok := exprOf(t, prog).(*ast.FuncCall)
	if !ok || call.Name != "contains" {
		t.Fatalf("expected 'in' lowered to contains(...), got %#v", exprOf(t, prog))
	}
}

func TestArrayAndMapLiterals(t *testing.T) {
	prog := parseOK(t, `[1, 2, 3];`)
	arr, ok := exprOf(t, prog).(*ast.ArrayLit)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected 3-element array literal, got %#v", exprOf(t, prog))
	}

	prog2 := parseOK(t, `#{a: 1, b: 2};`)
	m, ok := exprOf(t, prog2).(*ast.MapLit)
	if !ok || len(m.Keys) != 2 {
		t.Fatalf("expected 2-key map literal, got %#v", exprOf(t, prog2))
	}
}

// TestCustomSyntaxMarkerDrivenSegments exercises RegisterCustomSyntax
// end-to-end: the host's Parse callback only ever returns markers, and
// the core parser performs the actual token consumption for each one.
func TestCustomSyntaxMarkerDrivenSegments(t *testing.T) {
	p := New(`exec x = 1 + 2;`)
	p.RegisterCustomSyntax(&CustomSyntaxDef{
		Keyword: "exec",
		Parse: func(segments []string, lookAhead string) (string, bool) {
			switch len(segments) {
			case 1:
				return MarkerIdent, true
			case 2:
				return "=", true
			case 3:
				return MarkerExpr, true
			case 4:
				return ";", true
			default:
				return "", false
			}
		},
	})
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	custom, ok := exprOf(t, prog).(*ast.CustomExpr)
	if !ok {
		t.Fatalf("expected CustomExpr, got %#v", exprOf(t, prog))
	}
	if custom.Keyword != "exec" || len(custom.Segments) != 4 {
		t.Fatalf("unexpected custom syntax shape: %#v", custom)
	}
	if custom.Segments[0].Kind != ast.SegIdent || custom.Segments[0].Ident != "x" {
		t.Fatalf("expected SegIdent(x), got %#v", custom.Segments[0])
	}
	if custom.Segments[1].Kind != ast.SegKeyword || custom.Segments[1].Ident != "=" {
		t.Fatalf("expected literal '=' segment, got %#v", custom.Segments[1])
	}
	exprSeg := custom.Segments[2]
	if exprSeg.Kind != ast.SegExpr {
		t.Fatalf("expected SegExpr, got %#v", exprSeg)
	}
	if call, ok := exprSeg.Expr.(*ast.FuncCall); !ok || call.Name != "+" {
		t.Fatalf("expected '+' call inside $expr$ segment, got %#v", exprSeg.Expr)
	}
	if custom.Segments[3].Kind != ast.SegKeyword || custom.Segments[3].Ident != ";" {
		t.Fatalf("expected literal ';' segment, got %#v", custom.Segments[3])
	}
	if !custom.SelfTerminated {
		t.Fatalf("expected SelfTerminated since the form's last matched token was ';'")
	}
}

// TestCustomSyntaxSyntheticVariantSentinelEndsForm verifies a marker
// beginning with the synthetic-variant sentinel ("$$") ends the form
// immediately and contributes a SegSyntheticVariant segment carrying the
// text after the sentinel.
func TestCustomSyntaxSyntheticVariantSentinelEndsForm(t *testing.T) {
	p := New(`pick;`)
	p.RegisterCustomSyntax(&CustomSyntaxDef{
		Keyword: "pick",
		Parse: func(segments []string, lookAhead string) (string, bool) {
			if len(segments) == 1 {
				return "$$chosen", true
			}
			return "", false
		},
	})
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	custom, ok := exprOf(t, prog).(*ast.CustomExpr)
	if !ok {
		t.Fatalf("expected CustomExpr, got %#v", exprOf(t, prog))
	}
	if len(custom.Segments) != 1 {
		t.Fatalf("expected exactly one segment from the sentinel, got %#v", custom.Segments)
	}
	seg := custom.Segments[0]
	if seg.Kind != ast.SegSyntheticVariant || seg.Ident != "chosen" {
		t.Fatalf("expected SegSyntheticVariant(chosen), got %#v", seg)
	}
}

func TestInterpolatedStringParsesHoleExpression(t *testing.T) {
	prog := parseOK(t, "`sum: ${1 + 2}`;")
	interp, ok := exprOf(t, prog).(*ast.InterpString)
	if !ok {
		t.Fatalf("expected InterpString, got %#v", exprOf(t, prog))
	}
	var sawHole bool
	for _, part := range interp.Parts {
		if part.Expr != nil {
			sawHole = true
			if call, ok := part.Expr.(*ast.FuncCall); !ok || call.Name != "+" {
				t.Fatalf("expected hole expression to be a + call, got %#v", part.Expr)
			}
		}
	}
	if !sawHole {
		t.Fatalf("expected at least one expression hole")
	}
}
