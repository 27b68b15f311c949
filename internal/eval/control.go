package eval

import (
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
)

// control-flow helpers: §7's Return/Break/Continue/Throw kinds share
// the error channel and are caught at their respective boundaries
// (loop bodies, function calls, try/catch) rather than propagated to
// the host, mirroring the teacher's ReturnError/BreakError-shaped
// control values in internal/interp/errors.go.

func returnSignal(pos token.Position, v value.Value) error {
	return diag.New(diag.ReturnControl, pos, "return").WithDetail(v)
}

func breakSignal(pos token.Position, v value.Value) error {
	return diag.New(diag.BreakControl, pos, "break").WithDetail(v)
}

func continueSignal(pos token.Position) error {
	return diag.New(diag.ContinueControl, pos, "continue")
}

func throwSignal(pos token.Position, v value.Value) error {
	return diag.New(diag.ThrowControl, pos, "throw").WithDetail(v)
}

// asControl reports whether err is a control-flow signal of kind,
// returning its carried value (nil for Continue).
func asControl(err error, kind diag.Kind) (value.Value, bool) {
	e, ok := err.(*diag.Error)
	if !ok || e.Kind != kind {
		return nil, false
	}
	v, _ := e.Detail.(value.Value)
	return v, true
}

// isUncaughtThrow reports whether err is a ThrowControl signal, used by
// Run/RegisterFn boundaries to convert an uncaught throw into the
// host-visible UserError kind, per §7.
func isUncaughtThrow(err error) (value.Value, bool) {
	return asControl(err, diag.ThrowControl)
}

// userError wraps an uncaught thrown value as the host-facing error
// kind.
func userError(pos token.Position, v value.Value) error {
	return diag.New(diag.UserError, pos, "uncaught exception: %s", v.String()).WithDetail(v)
}
