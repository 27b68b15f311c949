// Package ast defines dynascript's expression and statement trees
// (§3.2), the chain flag bits carried by Index/Dot nodes, the call-site
// hash pair of §3.3, and the Walk traversal §6 exposes to the
// optimizer/debugger/metadata-exporter collaborators.
package ast

import "github.com/cwbudde/dynascript/internal/token"

// Node is implemented by every Expr and Stmt.
type Node interface {
	Pos() token.Position
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Flags are the two bits §3.2 says Index/Dot nodes carry.
type Flags uint8

const (
	// FlagNegated marks the question-mark variant (`?[`, `?.`).
	FlagNegated Flags = 1 << iota
	// FlagBreak marks the terminal node of a chain; unset means the
	// chain continues into the right-hand side.
	FlagBreak
)

func (f Flags) Negated() bool { return f&FlagNegated != 0 }
func (f Flags) Break() bool   { return f&FlagBreak != 0 }

// FnCallHashes is §3.3's call-site hash pair.
type FnCallHashes struct {
	// Script is the (name, arity) hash used to find a script-defined
	// function local to the current program; zero when the call is
	// known to be native-only. Method-style calls carry a Script hash
	// one parameter shorter than Native, per §3.3, because the
	// receiver is only added to the argument vector at native dispatch.
	Script uint64
	// Native is the (name, arity) base hash used as the seed for
	// runtime argument-type hashing during overload resolution.
	Native uint64
}

// HasScript reports whether this call site has a script-function hash
// to try before falling through to native/module resolution.
func (h FnCallHashes) HasScript() bool { return h.Script != 0 }

// base embeds the source position every node records, per §3.2.
type base struct {
	pos token.Position
}

func (b base) Pos() token.Position { return b.pos }

func (b *base) setPos(p token.Position) { b.pos = p }

// positioner is implemented by every *Node via the embedded base,
// letting parser code stamp a position after construction without
// needing to name the unexported base field in a struct literal.
type positioner interface{ setPos(token.Position) }

// SetPos stamps pos onto n if n embeds base, a no-op otherwise.
func SetPos(n Node, pos token.Position) {
	if s, ok := n.(positioner); ok {
		s.setPos(pos)
	}
}

// Program is the root of a parsed unit: its top-level statements plus
// the table of script-defined functions keyed by hash (§4.2's parser
// contract: "produces an AST together with a table of script-defined
// functions keyed by hash").
type Program struct {
	Statements []Stmt
	Functions  map[uint64]*FnDecl
}

// Pos reports the position of the first top-level statement, or the
// zero position for an empty program, so a Program can be a Walk root.
func (p *Program) Pos() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{}
	}
	return p.Statements[0].Pos()
}
