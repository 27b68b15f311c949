package dispatch

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/token"
	"github.com/cwbudde/dynascript/internal/value"
)

// stringCollator provides §4.3's locale-aware string comparison for
// the `<`/`<=`/`>`/`>=` operators on Str values; Und (undetermined
// locale) gives Unicode default collation ordering rather than a raw
// byte compare, matching the teacher's culture-aware sort helpers.
var stringCollator = collate.New(language.Und)

// fallbackOp evaluates a built-in binary operator directly over two
// primitive values, without going through function resolution at all.
// It returns ok=false for any pairing it doesn't implement, letting the
// caller fall through to the ordinary resolver path (so a script can
// still shadow these with its own overload).
type fallbackOp func(a, b value.Value) (value.Value, bool, error)

// operatorTable is keyed by operator name; each entry tries int, then
// float, then decimal, then string/bool/unit as appropriate, covering
// the primitive set §3.1 requires arithmetic over.
var operatorTable = map[string]fallbackOp{
	"+":  opAdd,
	"-":  opSub,
	"*":  opMul,
	"/":  opDiv,
	"%":  opMod,
	"**": opPow,

	"==": opEq,
	"!=": opNeq,
	"<":  opLt,
	"<=": opLe,
	">":  opGt,
	">=": opGe,

	"&":  bitwise(func(a, b int64) int64 { return a & b }),
	"|":  bitwise(func(a, b int64) int64 { return a | b }),
	"^":  bitwise(func(a, b int64) int64 { return a ^ b }),
	"<<": bitwise(func(a, b int64) int64 { return a << uint(b) }),
	">>": bitwise(func(a, b int64) int64 { return a >> uint(b) }),
}

// unaryOperatorTable covers the two unary operators the parser lowers
// to FuncCall("neg"/"!", [operand]).
var unaryOperatorTable = map[string]func(v value.Value) (value.Value, bool, error){
	"neg": func(v value.Value) (value.Value, bool, error) {
		switch n := v.(type) {
		case *value.Int:
			return value.NewInt(-n.V), true, nil
		case *value.Float:
			return value.NewFloat(-n.V), true, nil
		case *value.Decimal:
			return value.NewDecimal(n.V.Neg()), true, nil
		}
		return nil, false, nil
	},
	"!": func(v value.Value) (value.Value, bool, error) {
		b, ok := v.(*value.Bool)
		if !ok {
			return nil, false, nil
		}
		return value.NewBool(!b.V), true, nil
	},
}

func opAdd(a, b value.Value) (value.Value, bool, error) {
	switch x := a.(type) {
	case *value.Int:
		if y, ok := b.(*value.Int); ok {
			return value.NewInt(x.V + y.V), true, nil
		}
	case *value.Float:
		if y, ok := asFloat(b); ok {
			return value.NewFloat(x.V + y), true, nil
		}
	case *value.Decimal:
		if y, ok := asDecimal(b); ok {
			return value.NewDecimal(x.V.Add(y)), true, nil
		}
	case *value.Str:
		if y, ok := b.(*value.Str); ok {
			return value.NewStrRaw(x.V + y.V), true, nil
		}
	}
	return nil, false, nil
}

func opSub(a, b value.Value) (value.Value, bool, error) {
	switch x := a.(type) {
	case *value.Int:
		if y, ok := b.(*value.Int); ok {
			return value.NewInt(x.V - y.V), true, nil
		}
	case *value.Float:
		if y, ok := asFloat(b); ok {
			return value.NewFloat(x.V - y), true, nil
		}
	case *value.Decimal:
		if y, ok := asDecimal(b); ok {
			return value.NewDecimal(x.V.Sub(y)), true, nil
		}
	}
	return nil, false, nil
}

func opMul(a, b value.Value) (value.Value, bool, error) {
	switch x := a.(type) {
	case *value.Int:
		if y, ok := b.(*value.Int); ok {
			return value.NewInt(x.V * y.V), true, nil
		}
	case *value.Float:
		if y, ok := asFloat(b); ok {
			return value.NewFloat(x.V * y), true, nil
		}
	case *value.Decimal:
		if y, ok := asDecimal(b); ok {
			return value.NewDecimal(x.V.Mul(y)), true, nil
		}
	}
	return nil, false, nil
}

func opDiv(a, b value.Value) (value.Value, bool, error) {
	switch x := a.(type) {
	case *value.Int:
		if y, ok := b.(*value.Int); ok {
			if y.V == 0 {
				return nil, true, diag.New(diag.ArithmeticError, token.Position{}, "division by zero")
			}
			return value.NewInt(x.V / y.V), true, nil
		}
	case *value.Float:
		if y, ok := asFloat(b); ok {
			return value.NewFloat(x.V / y), true, nil
		}
	case *value.Decimal:
		if y, ok := asDecimal(b); ok {
			if y.IsZero() {
				return nil, true, diag.New(diag.ArithmeticError, token.Position{}, "division by zero")
			}
			return value.NewDecimal(x.V.Div(y)), true, nil
		}
	}
	return nil, false, nil
}

func opMod(a, b value.Value) (value.Value, bool, error) {
	if x, ok := a.(*value.Int); ok {
		if y, ok := b.(*value.Int); ok {
			if y.V == 0 {
				return nil, true, diag.New(diag.ArithmeticError, token.Position{}, "modulo by zero")
			}
			return value.NewInt(x.V % y.V), true, nil
		}
	}
	return nil, false, nil
}

func opPow(a, b value.Value) (value.Value, bool, error) {
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return nil, false, nil
	}
	result := 1.0
	for i := 0; i < int(y); i++ {
		result *= x
	}
	if _, isInt := a.(*value.Int); isInt {
		if _, isInt2 := b.(*value.Int); isInt2 {
			return value.NewInt(int64(result)), true, nil
		}
	}
	return value.NewFloat(result), true, nil
}

func opEq(a, b value.Value) (value.Value, bool, error) {
	eq, ok := primitiveEqual(a, b)
	if !ok {
		return nil, false, nil
	}
	return value.NewBool(eq), true, nil
}

func opNeq(a, b value.Value) (value.Value, bool, error) {
	eq, ok := primitiveEqual(a, b)
	if !ok {
		return nil, false, nil
	}
	return value.NewBool(!eq), true, nil
}

func primitiveEqual(a, b value.Value) (bool, bool) {
	switch x := a.(type) {
	case *value.Int:
		if y, ok := b.(*value.Int); ok {
			return x.V == y.V, true
		}
	case *value.Float:
		if y, ok := asFloat(b); ok {
			return x.V == y, true
		}
	case *value.Decimal:
		if y, ok := asDecimal(b); ok {
			return x.V.Equal(y), true
		}
	case *value.Str:
		if y, ok := b.(*value.Str); ok {
			return x.V == y.V, true
		}
	case *value.Bool:
		if y, ok := b.(*value.Bool); ok {
			return x.V == y.V, true
		}
	case *value.Char:
		if y, ok := b.(*value.Char); ok {
			return x.V == y.V, true
		}
	case *value.Unit:
		if _, ok := b.(*value.Unit); ok {
			return true, true
		}
	}
	return false, false
}

func opLt(a, b value.Value) (value.Value, bool, error) { return compareOrdered(a, b, -1) }
func opLe(a, b value.Value) (value.Value, bool, error) { return compareOrdered(a, b, -1, 0) }
func opGt(a, b value.Value) (value.Value, bool, error) { return compareOrdered(a, b, 1) }
func opGe(a, b value.Value) (value.Value, bool, error) { return compareOrdered(a, b, 1, 0) }

// compareOrdered computes a three-way comparison between a and b and
// reports whether the result is one of want.
func compareOrdered(a, b value.Value, want ...int) (value.Value, bool, error) {
	c, ok := threeWay(a, b)
	if !ok {
		return nil, false, nil
	}
	for _, w := range want {
		if c == w {
			return value.NewBool(true), true, nil
		}
	}
	return value.NewBool(false), true, nil
}

func threeWay(a, b value.Value) (int, bool) {
	switch x := a.(type) {
	case *value.Int:
		if y, ok := b.(*value.Int); ok {
			return sign(x.V - y.V), true
		}
	case *value.Float:
		if y, ok := asFloat(b); ok {
			switch {
			case x.V < y:
				return -1, true
			case x.V > y:
				return 1, true
			default:
				return 0, true
			}
		}
	case *value.Decimal:
		if y, ok := asDecimal(b); ok {
			return x.V.Cmp(y), true
		}
	case *value.Str:
		if y, ok := b.(*value.Str); ok {
			return stringCollator.CompareString(x.V, y.V), true
		}
	case *value.Char:
		if y, ok := b.(*value.Char); ok {
			return sign(int64(x.V) - int64(y.V)), true
		}
	}
	return 0, false
}

func sign(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func bitwise(f func(a, b int64) int64) fallbackOp {
	return func(a, b value.Value) (value.Value, bool, error) {
		x, ok := a.(*value.Int)
		if !ok {
			return nil, false, nil
		}
		y, ok := b.(*value.Int)
		if !ok {
			return nil, false, nil
		}
		return value.NewInt(f(x.V, y.V)), true, nil
	}
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case *value.Float:
		return n.V, true
	case *value.Int:
		return float64(n.V), true
	}
	return 0, false
}

func asDecimal(v value.Value) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case *value.Decimal:
		return n.V, true
	case *value.Int:
		return decimal.NewFromInt(n.V), true
	case *value.Float:
		return decimal.NewFromFloat(n.V), true
	}
	return decimal.Decimal{}, false
}
