package ast

import "testing"

func TestFlags(t *testing.T) {
	f := FlagNegated | FlagBreak
	if !f.Negated() || !f.Break() {
		t.Fatalf("expected both flags set")
	}
	var none Flags
	if none.Negated() || none.Break() {
		t.Fatalf("zero value should have neither flag")
	}
}

func TestWalkVisitsNestedExpressions(t *testing.T) {
	// (1 + 2) * 3, with + and * lowered to FuncCall nodes.
	plus := &FuncCall{Name: "+", Args: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	mul := &FuncCall{Name: "*", Args: []Expr{plus, &IntLit{Value: 3}}}

	var visited []Node
	Walk(mul, func(path []Node, n Node) bool {
		visited = append(visited, n)
		return true
	})

	if len(visited) != 5 { // mul, plus, 1, 2, 3
		t.Fatalf("expected 5 visited nodes, got %d", len(visited))
	}
	if visited[0] != Node(mul) {
		t.Fatalf("root must be visited first")
	}
}

func TestWalkEarlyTermination(t *testing.T) {
	plus := &FuncCall{Name: "+", Args: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	count := 0
	Walk(plus, func(path []Node, n Node) bool {
		count++
		_, isCall := n.(*FuncCall)
		return !isCall // stop descending once we hit the call itself
	})
	if count != 1 {
		t.Fatalf("expected traversal to stop after the root, got %d visits", count)
	}
}

func TestChainBreakInvariant(t *testing.T) {
	// a.b.c: only the terminal Dot node has FlagBreak set.
	a := &Variable{Name: "a"}
	inner := &DotExpr{Target: a, Field: &Variable{Name: "b"}, Flags: 0}
	outer := &DotExpr{Target: inner, Field: &Variable{Name: "c"}, Flags: FlagBreak}

	if inner.Flags.Break() {
		t.Fatalf("non-terminal dot node must not have FlagBreak")
	}
	if !outer.Flags.Break() {
		t.Fatalf("terminal dot node must have FlagBreak")
	}
}
