// Package engine is dynascript's host embedding API: construct an
// Engine, register host functions/variables/sub-modules against it,
// and run scripts against the wired-up evaluator. Grounded on the
// teacher's pkg/dwscript host-facing package (New(opts...), RegisterFunction,
// SetOutput, Eval), adapted to dynascript's strongly-typed
// module.FuncDef registration (§4.4) instead of the teacher's
// reflection-based FFI wrapper.
package engine

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/dispatch"
	"github.com/cwbudde/dynascript/internal/eval"
	"github.com/cwbudde/dynascript/internal/module"
	"github.com/cwbudde/dynascript/internal/parser"
	"github.com/cwbudde/dynascript/internal/value"
)

// NativeFn is the host function signature RegisterFn accepts; a plain
// alias of module.NativeFn kept here so callers don't need to import
// internal/module directly.
type NativeFn = module.NativeFn

// Engine ties a global Module, the dispatch Resolver it roots, and an
// Evaluator into one embeddable unit.
type Engine struct {
	eval       *eval.Evaluator
	global     *module.Module
	strictVars bool
	parserOpts []parser.Option
}

// Option configures an Engine at construction time, matching the
// teacher's functional-options idiom.
type Option func(*Engine)

// WithMaxCallDepth bounds dispatcher call recursion (§4.3/§5).
func WithMaxCallDepth(n int) Option {
	return func(e *Engine) { e.eval.Dispatcher.MaxCallDepth = n }
}

// WithMaxOperations bounds the per-Eval/Run operation counter (§5).
func WithMaxOperations(n int) Option {
	return func(e *Engine) { e.eval.MaxOperations = n }
}

// WithStrictVariables makes the parser reject unresolved identifiers
// at parse time instead of deferring to a runtime VariableUndefined.
func WithStrictVariables(strict bool) Option {
	return func(e *Engine) {
		e.strictVars = strict
		e.parserOpts = append(e.parserOpts, parser.WithStrictVariables(strict))
	}
}

// WithMaxExprDepth bounds parser expression nesting (§4.2/§5).
func WithMaxExprDepth(n int) Option {
	return func(e *Engine) { e.parserOpts = append(e.parserOpts, parser.WithMaxExprDepth(n)) }
}

// WithStrictEval switches the `eval` intrinsic (§9 Open Question 3)
// from its default of introducing new variables into the caller's
// enclosing scope to running the compiled fragment in an isolated
// child scope instead.
func WithStrictEval(strict bool) Option {
	return func(e *Engine) { e.eval.StrictEval = strict }
}

// New creates an Engine rooted at a fresh global Module, wiring its
// Evaluator's Compiler hook to the real parser so the `eval` intrinsic
// and Engine.Compile/Run share one code path.
func New(opts ...Option) *Engine {
	global := module.New("")
	e := &Engine{
		eval:   eval.New(global),
		global: global,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.eval.Compile = e.Compile
	return e
}

// SetPrinter installs the sink `print`/`debug` write to.
func (e *Engine) SetPrinter(p dispatch.Printer) { e.eval.SetPrinter(p) }

// RegisterFn registers a host function under name, following §4.4's
// native-resolution convention: the call-site hash is folded from
// (name, arity, paramTypes), so overload resolution (including the
// Dynamic-wildcard widening search) works the same for host functions
// as for the built-in operator table.
func (e *Engine) RegisterFn(name string, arity int, paramTypes []value.TypeID, pure, hasContext, method bool, fn NativeFn) {
	e.global.AddFunction(&module.FuncDef{
		Name:       name,
		Arity:      arity,
		ParamTypes: paramTypes,
		Pure:       pure,
		HasContext: hasContext,
		Method:     method,
		Fn:         fn,
		Hash:       module.NativeHash(nil, name, arity, paramTypes),
	})
}

// RegisterVar installs a global variable visible to every script this
// Engine runs.
func (e *Engine) RegisterVar(name string, v value.Value) {
	e.global.SetVar(name, v)
}

// RegisterModule attaches child as both a host sub-module (always in
// scope, per the Resolver's Host layer) and a named import target
// addressable by `import "name";` under alias, mirroring §4.5's
// "host sub-modules always in scope" plus the program-level Imports
// layer the `import` statement populates.
func (e *Engine) RegisterModule(alias string, child *module.Module) {
	e.global.AddSubModule(alias, child)
	e.eval.NamedModules[alias] = child
}

// RegisterIterator installs the default for-in iterator for a host
// Variant type id (§4.5).
func (e *Engine) RegisterIterator(t value.TypeID, fn value.FnPtr) {
	e.global.SetIterator(t, fn)
}

// Compile parses source into a Program without running it.
func (e *Engine) Compile(source string) (*ast.Program, error) {
	p := parser.New(source, e.parserOpts...)
	return p.Parse()
}

// Run executes a previously compiled Program.
func (e *Engine) Run(prog *ast.Program) (value.Value, error) {
	return e.eval.Run(prog)
}

// Eval compiles and runs source in one step.
func (e *Engine) Eval(source string) (value.Value, error) {
	prog, err := e.Compile(source)
	if err != nil {
		return nil, err
	}
	return e.Run(prog)
}

// LoadFile reads path, detecting and decoding a UTF-8, UTF-16LE, or
// UTF-16BE byte-order mark before returning UTF-8 source text, matching
// the teacher's detectAndDecodeFile. A file without a recognized BOM is
// returned as-is when it is valid UTF-8; otherwise each byte is decoded
// as one Latin-1 code point.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("dynascript: failed to read %s: %w", path, err)
	}

	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return decodeUTF16(data, unicode.LittleEndian)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return decodeUTF16(data, unicode.BigEndian)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func decodeUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	utf8Data, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("dynascript: failed to decode UTF-16: %w", err)
	}
	if len(utf8Data) >= 3 && utf8Data[0] == 0xEF && utf8Data[1] == 0xBB && utf8Data[2] == 0xBF {
		utf8Data = utf8Data[3:]
	}
	return string(bytes.TrimPrefix(utf8Data, []byte("﻿"))), nil
}
