// Package diag implements the error surface of §7: a closed set of
// error kinds, each carrying a source position that gets re-stamped as
// the error propagates toward a better (more specific) position, plus
// source-context formatting with a caret indicator in the style of the
// teacher's internal/errors package.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/dynascript/internal/token"
)

// Kind enumerates the abstract error names of §7.
type Kind int

const (
	FunctionNotFound Kind = iota
	IndexingType
	DotExpr
	MismatchedType
	MismatchedOutputType
	NonPureMethodCallOnConstant
	DataRace
	ModuleNotFound
	AssignmentToConstant
	AssignmentToInvalidLHS
	VariableUndefined
	VariableExists
	Reserved
	ParseError
	LexError
	TooManyOperations
	StackOverflow
	DataTooLarge
	ArithmeticError
	NotHashable

	// Control-flow kinds share the error channel (§7) but are caught at
	// their respective boundaries in internal/eval and never surface to
	// the host, except ThrowControl which becomes a UserError if uncaught.
	ReturnControl
	BreakControl
	ContinueControl
	ThrowControl
	UserError
)

var kindNames = [...]string{
	"FunctionNotFound", "IndexingType", "DotExpr", "MismatchedType",
	"MismatchedOutputType", "NonPureMethodCallOnConstant", "DataRace",
	"ModuleNotFound", "AssignmentToConstant", "AssignmentToInvalidLHS",
	"VariableUndefined", "VariableExists", "Reserved", "ParseError",
	"LexError", "TooManyOperations", "StackOverflow", "DataTooLarge",
	"ArithmeticError", "NotHashable",
	"ReturnControl", "BreakControl", "ContinueControl", "ThrowControl", "UserError",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UnknownError"
}

// IsControlFlow reports whether k is one of the control-flow kinds that
// evaluator loops/calls/try-catch intercept instead of propagating to
// the host as a script error.
func (k Kind) IsControlFlow() bool {
	return k == ReturnControl || k == BreakControl || k == ContinueControl || k == ThrowControl
}

// Error is a single diagnostic: its kind, source position, a message,
// and optional structured detail fields used by specific kinds
// (MismatchedType's expected/actual, FunctionNotFound's signature, ...).
type Error struct {
	Kind    Kind
	Pos     token.Position
	Message string
	Detail  any // e.g. *Signature, [2]string{expected, actual}, Value for ReturnControl/ThrowControl

	source string // full source text, for Format's source-line extraction
	file   string
}

// Signature describes a call that failed to resolve, for FunctionNotFound.
type Signature struct {
	Name string
	Args []string // argument type names, in call order
}

func (s *Signature) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(s.Args, ", "))
}

// New constructs an Error at pos with a formatted message.
func New(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches structured detail (used for control-flow payload
// values and for expected/actual type pairs) and returns e for chaining.
func (e *Error) WithDetail(d any) *Error {
	e.Detail = d
	return e
}

// WithSource attaches the originating source text and file name so
// Format can render a source-context caret, mirroring the teacher's
// CompilerError.
func (e *Error) WithSource(source, file string) *Error {
	e.source = source
	e.file = file
	return e
}

// Restamp returns a copy of e repositioned at pos, implementing §7's
// "operations that have a better position re-stamp the error as they
// propagate" rule. It does not compare positions: the caller decides
// that pos is the better one, and the copy always carries pos.
func (e *Error) Restamp(pos token.Position) *Error {
	cp := *e
	cp.Pos = pos
	return &cp
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the diagnostic with a source line and caret indicator
// when source text is available, in the style of the teacher's
// CompilerError.Format.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	if e.file != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", e.Kind, e.file, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s at %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)
	}

	if line := sourceLine(e.source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+max(e.Pos.Column-1, 0)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// As reports whether err is a *Error of the given kind, mirroring the
// errors.Is/As composition the standard library expects.
func As(err error, kind Kind) (*Error, bool) {
	e, ok := err.(*Error)
	if !ok || e.Kind != kind {
		return nil, false
	}
	return e, true
}
