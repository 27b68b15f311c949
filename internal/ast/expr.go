package ast

import "github.com/cwbudde/dynascript/internal/token"

func (*UnitLit) exprNode()            {}
func (*BoolLit) exprNode()            {}
func (*IntLit) exprNode()             {}
func (*FloatLit) exprNode()           {}
func (*CharLit) exprNode()            {}
func (*StringLit) exprNode()          {}
func (*DynamicConstant) exprNode()    {}
func (*InterpString) exprNode()       {}
func (*ArrayLit) exprNode()           {}
func (*MapLit) exprNode()             {}
func (*Variable) exprNode()           {}
func (*ThisExpr) exprNode()           {}
func (*PropertyAccess) exprNode()     {}
func (*MethodCall) exprNode()         {}
func (*FuncCall) exprNode()           {}
func (*StmtExpr) exprNode()           {}
func (*IndexExpr) exprNode()          {}
func (*DotExpr) exprNode()            {}
func (*LogicalAnd) exprNode()         {}
func (*LogicalOr) exprNode()          {}
func (*NullCoalesce) exprNode()       {}
func (*CustomExpr) exprNode()         {}
func (*ClosureExpr) exprNode()        {}

// UnitLit is the `()` literal.
type UnitLit struct{ base }

// BoolLit is a `true`/`false` literal.
type BoolLit struct {
	base
	Value bool
}

// IntLit is an integer literal.
type IntLit struct {
	base
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	base
	Value float64
}

// CharLit is a single-character literal.
type CharLit struct {
	base
	Value rune
}

// StringLit is a plain (non-interpolated) string literal.
type StringLit struct {
	base
	Value string
}

// DynamicConstant boxes a complex compile-time-folded literal (e.g. a
// negative-folded numeric constant, or a constant produced by the
// optimizer) so it can travel through the AST without a dedicated node
// per literal shape, per §3.2.
type DynamicConstant struct {
	base
	Value any // a concrete value.Value; kept as `any` to avoid an ast->value import cycle
}

// InterpString is a back-tick string containing `${...}` holes: a
// sequence of literal-text and expression parts, evaluated and
// concatenated left to right.
type InterpString struct {
	base
	Parts []InterpPart
}

// InterpPart is one segment of an interpolated string.
type InterpPart struct {
	Literal string // used when Expr == nil
	Expr    Expr   // used when this part is a `${...}` hole
}

// ArrayLit is an `[a, b, c]` literal.
type ArrayLit struct {
	base
	Elements []Expr
}

// MapLit is a `#{a: 1, b: 2}` literal: an ordered list of (ident, expr)
// pairs plus a precomputed key->index template map for fast duplicate
// detection and construction, per §3.2.
type MapLit struct {
	base
	Keys     []string
	Values   []Expr
	KeyIndex map[string]int // precomputed template map, key -> index into Keys/Values
}

// Variable is a name reference: resolved lexical depth (0 = unresolved
// at parse time, runtime lookup required), a byte-sized shortcut for
// depths <= 255, an optional namespace path for `::`-qualified access,
// a precomputed hash for global/module lookup, and the bare name.
type Variable struct {
	base
	Name        string
	Namespace   []string
	Depth       int   // 1-based lexical stack depth; 0 means unresolved
	ShortDepth  uint8 // Depth if Depth <= 255, else 0 (use Depth)
	Hash        uint64
	IsExternal  bool // captured from an enclosing closure scope
}

// ThisExpr is the `this` pointer inside a method/closure body.
type ThisExpr struct{ base }

// PropertyAccess is a getter/setter reference; it only ever appears as
// the right-hand side of a DotExpr, per §3.2's invariant.
type PropertyAccess struct {
	base
	Name     string
	GetHash  uint64
	SetHash  uint64
}

// MethodCall is `x.f(a, b)`: the method name, call arguments, and the
// precomputed §3.3 hash pair (Script one parameter shorter than
// Native). Like PropertyAccess, this only appears as the right-hand
// side of a DotExpr; the receiver is the Dot's left child.
type MethodCall struct {
	base
	Name   string
	Args   []Expr
	Hashes FnCallHashes
}

// FuncCall is a free (non-method) call, including every arithmetic,
// comparison, and bitwise binary operator, which the parser lowers to
// a FuncCall named after the operator symbol (e.g. `a + b` becomes
// FuncCall{Name: "+", Args: [a, b]}) so the dispatcher's built-in
// operator fallback (§4.3) can treat operators and ordinary functions
// uniformly.
type FuncCall struct {
	base
	Name      string
	Namespace []string
	Args      []Expr
	Hashes    FnCallHashes
}

// StmtExpr wraps a statement (block/if/while/loop/switch) used in
// expression position, per §4.2's parse_primary.
type StmtExpr struct {
	base
	Stmt Stmt
}

// IndexExpr is `target[index]` / `target?[index]`.
type IndexExpr struct {
	base
	Target Expr
	Index  Expr
	Flags  Flags
}

// DotExpr is `target.field` / `target?.field`, where Field is a
// Variable, PropertyAccess, or MethodCall.
type DotExpr struct {
	base
	Target Expr
	Field  Expr
	Flags  Flags
}

// LogicalAnd/LogicalOr are dedicated short-circuiting nodes; both
// operands must be bool-valued at evaluation time, per §4.2.
type LogicalAnd struct {
	base
	Left, Right Expr
}

type LogicalOr struct {
	base
	Left, Right Expr
}

// NullCoalesce is `a ?? b`.
type NullCoalesce struct {
	base
	Left, Right Expr
}

// CustomExpr is a host-registered custom-syntax form's parse result:
// the triggering keyword plus the matched segments and parsed inputs.
type CustomExpr struct {
	base
	Keyword        string
	Segments       []CustomSegment
	SelfTerminated bool // terminal marker was block/`;`/`}` per §4.2
}

// CustomSegment is one matched piece of a custom-syntax form.
type CustomSegment struct {
	Kind  CustomSegmentKind
	Ident string // for SegIdent/SegSymbol/keyword segments
	Expr  Expr   // for SegExpr
	Block []Stmt // for SegBlock
}

// CustomSegmentKind enumerates §4.2's accepted segment markers.
type CustomSegmentKind int

const (
	SegIdent CustomSegmentKind = iota
	SegSymbol
	SegExpr
	SegBlock
	SegBool
	SegInt
	SegFloat
	SegString
	SegSyntheticVariant // synthetic-variant tag; a name with this kind
	// starting with the synthetic-variant prefix terminates the form
	// immediately, per §9's open-question resolution (see DESIGN.md)
	SegKeyword
)

// ClosureExpr is `|params| body` / `||`. Externals names the variables
// captured from an enclosing scope; the evaluator wraps each of them in
// a Shared cell at the point a ClosureExpr is evaluated, rather than
// the parser synthesizing a curry-call plus a separate Share statement
// (see the ClosureExpr entry among DESIGN.md's other documented
// simplifications).
type ClosureExpr struct {
	base
	Params    []string
	Body      Expr
	Externals []string
}

// NewPos is a helper for constructing nodes from parser code; it keeps
// every node constructor call site uniform.
func NewPos(pos token.Position) base { return base{pos: pos} }
