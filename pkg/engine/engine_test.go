package engine

import (
	"strings"
	"testing"

	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/value"
)

type captureSink struct {
	prints []string
	debugs []string
}

func (c *captureSink) Print(s string) { c.prints = append(c.prints, s) }
func (c *captureSink) Debug(s string) { c.debugs = append(c.debugs, s) }

func TestEvalArithmetic(t *testing.T) {
	e := New()
	result, err := e.Eval("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.V != 7 {
		t.Fatalf("got %v, want Int(7)", result)
	}
}

func TestRegisterFnCallableFromScript(t *testing.T) {
	e := New()
	e.RegisterFn("add", 2, []value.TypeID{value.TypeInt, value.TypeInt}, true, false, false,
		func(ctx *module.Context, args []value.Value) (value.Value, error) {
			a := args[0].(*value.Int)
			b := args[1].(*value.Int)
			return value.NewInt(a.V + b.V), nil
		})

	result, err := e.Eval("add(40, 2)")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got := result.(*value.Int).V; got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestRegisterVarVisibleToScript(t *testing.T) {
	e := New()
	e.RegisterVar("greeting", value.NewStr("hello"))

	result, err := e.Eval("greeting")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got := result.(*value.Str).V; got != "hello" {
		t.Fatalf("got %q, want \"hello\"", got)
	}
}

func TestSetPrinterReceivesPrintCalls(t *testing.T) {
	e := New()
	sink := &captureSink{}
	e.SetPrinter(sink)

	if _, err := e.Eval(`print("hi")`); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(sink.prints) != 1 || sink.prints[0] != "hi" {
		t.Fatalf("got %v", sink.prints)
	}
}

func TestRegisterModuleReachableByImport(t *testing.T) {
	e := New()
	child := module.New("math")
	child.AddFunction(&module.FuncDef{
		Name:       "square",
		Arity:      1,
		ParamTypes: []value.TypeID{value.TypeInt},
		Hash:       module.NativeHash([]string{"math"}, "square", 1, []value.TypeID{value.TypeInt}),
		Fn: func(ctx *module.Context, args []value.Value) (value.Value, error) {
			n := args[0].(*value.Int)
			return value.NewInt(n.V * n.V), nil
		},
	})
	e.RegisterModule("math", child)

	result, err := e.Eval(`import "math"; math::square(5)`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got := result.(*value.Int).V; got != 25 {
		t.Fatalf("got %d, want 25", got)
	}
}

func TestWithStrictVariablesRejectsUnresolvedIdentifier(t *testing.T) {
	e := New(WithStrictVariables(true))
	_, err := e.Eval("undefinedName")
	if err == nil {
		t.Fatal("expected a parse-time error for an unresolved identifier")
	}
}

func TestWithMaxOperationsAborts(t *testing.T) {
	e := New(WithMaxOperations(3))
	_, err := e.Eval("1 + 1 + 1 + 1 + 1 + 1 + 1 + 1")
	if err == nil || !strings.Contains(err.Error(), "operations") {
		t.Fatalf("expected a TooManyOperations error, got %v", err)
	}
}

func TestWithStrictEvalIsolatesIntroducedVariables(t *testing.T) {
	e := New(WithStrictEval(true))

	if _, err := e.Eval(`eval("let leaked = 1;")`); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if _, err := e.Eval("leaked"); err == nil {
		t.Fatal("expected leaked to stay undefined under strict eval")
	}
}
