package vm

import (
	"fmt"
	"strings"

	"github.com/mna/catkin/lang/asm"
	"github.com/mna/catkin/lang/values"
)

func typeErr(op string, x, y values.Value) error {
	return &values.Exception{
		ClassName: "TypeError",
		Args:      []values.Value{values.Str(fmt.Sprintf("unsupported operand type(s) for %s: %q and %q", op, x.Type(), y.Type()))},
	}
}

// binary implements the dyadic arithmetic/bitwise opcodes. Numeric operands
// are promoted to Float if either side is Float; BINARY_ADD also accepts two
// Str or two List/Tuple operands (concatenation), and BINARY_MULTIPLY also
// accepts a Str/List repeated by an Int.
func binary(op asm.Opcode, x, y values.Value) (values.Value, error) {
	switch op {
	case asm.BINARY_ADD:
		if xs, ok := x.(values.Str); ok {
			if ys, ok := y.(values.Str); ok {
				return xs + ys, nil
			}
		}
		if xl, ok := x.(*values.List); ok {
			if yl, ok := y.(*values.List); ok {
				out := make([]values.Value, 0, len(xl.Elems)+len(yl.Elems))
				out = append(out, xl.Elems...)
				out = append(out, yl.Elems...)
				return values.NewList(out), nil
			}
		}
		if xt, ok := x.(values.Tuple); ok {
			if yt, ok := y.(values.Tuple); ok {
				out := make(values.Tuple, 0, len(xt)+len(yt))
				out = append(out, xt...)
				return append(out, yt...), nil
			}
		}
	case asm.BINARY_MULTIPLY:
		if s, n, ok := strRepeat(x, y); ok {
			return values.Str(strings.Repeat(string(s), n)), nil
		}
		if l, n, ok := listRepeat(x, y); ok {
			out := make([]values.Value, 0, len(l.Elems)*n)
			for i := 0; i < n; i++ {
				out = append(out, l.Elems...)
			}
			return values.NewList(out), nil
		}
	}

	xi, xIsInt := x.(values.Int)
	yi, yIsInt := y.(values.Int)
	if xIsInt && yIsInt {
		return intBinary(op, xi, yi)
	}
	xf, xIsNum := numeric(x)
	yf, yIsNum := numeric(y)
	if xIsNum && yIsNum {
		return floatBinary(op, xf, yf)
	}
	return nil, typeErr(op.String(), x, y)
}

func strRepeat(x, y values.Value) (values.Str, int, bool) {
	if s, ok := x.(values.Str); ok {
		if n, ok := y.(values.Int); ok {
			return s, int(n), true
		}
	}
	if s, ok := y.(values.Str); ok {
		if n, ok := x.(values.Int); ok {
			return s, int(n), true
		}
	}
	return "", 0, false
}

func listRepeat(x, y values.Value) (*values.List, int, bool) {
	if l, ok := x.(*values.List); ok {
		if n, ok := y.(values.Int); ok {
			return l, int(n), true
		}
	}
	if l, ok := y.(*values.List); ok {
		if n, ok := x.(values.Int); ok {
			return l, int(n), true
		}
	}
	return nil, 0, false
}

func numeric(v values.Value) (float64, bool) {
	switch v := v.(type) {
	case values.Int:
		return float64(v), true
	case values.Float:
		return float64(v), true
	default:
		return 0, false
	}
}

func intBinary(op asm.Opcode, x, y values.Int) (values.Value, error) {
	switch op {
	case asm.BINARY_ADD:
		return x + y, nil
	case asm.BINARY_SUBTRACT:
		return x - y, nil
	case asm.BINARY_MULTIPLY:
		return x * y, nil
	case asm.BINARY_FLOOR_DIVIDE:
		if y == 0 {
			return nil, zeroDivision()
		}
		return values.Int(floorDivInt(int64(x), int64(y))), nil
	case asm.BINARY_TRUE_DIVIDE:
		if y == 0 {
			return nil, zeroDivision()
		}
		return values.Float(float64(x) / float64(y)), nil
	case asm.BINARY_MODULO:
		if y == 0 {
			return nil, zeroDivision()
		}
		return values.Int(floorModInt(int64(x), int64(y))), nil
	case asm.BINARY_POWER:
		return values.Int(intPow(int64(x), int64(y))), nil
	case asm.BINARY_LSHIFT:
		return x << uint(y), nil
	case asm.BINARY_RSHIFT:
		return x >> uint(y), nil
	case asm.BINARY_AND:
		return x & y, nil
	case asm.BINARY_OR:
		return x | y, nil
	case asm.BINARY_XOR:
		return x ^ y, nil
	default:
		return nil, fmt.Errorf("vm: unhandled integer binary opcode %s", op)
	}
}

func floatBinary(op asm.Opcode, x, y float64) (values.Value, error) {
	switch op {
	case asm.BINARY_ADD:
		return values.Float(x + y), nil
	case asm.BINARY_SUBTRACT:
		return values.Float(x - y), nil
	case asm.BINARY_MULTIPLY:
		return values.Float(x * y), nil
	case asm.BINARY_TRUE_DIVIDE:
		if y == 0 {
			return nil, zeroDivision()
		}
		return values.Float(x / y), nil
	case asm.BINARY_FLOOR_DIVIDE:
		if y == 0 {
			return nil, zeroDivision()
		}
		return values.Float(floorDivFloat(x, y)), nil
	case asm.BINARY_MODULO:
		if y == 0 {
			return nil, zeroDivision()
		}
		return values.Float(x - floorDivFloat(x, y)*y), nil
	case asm.BINARY_POWER:
		return values.Float(floatPow(x, y)), nil
	default:
		return nil, fmt.Errorf("vm: bitwise opcode %s requires integer operands", op)
	}
}

func zeroDivision() error {
	return &values.Exception{ClassName: "ZeroDivisionError", Args: []values.Value{values.Str("division by zero")}}
}

func floorDivInt(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func floorModInt(x, y int64) int64 {
	m := x % y
	if m != 0 && ((m < 0) != (y < 0)) {
		m += y
	}
	return m
}

func floorDivFloat(x, y float64) float64 {
	q := x / y
	return float64(int64(q)) - boolAdjust(q < 0 && float64(int64(q)) != q)
}

func boolAdjust(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func intPow(base, exp int64) int64 {
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func floatPow(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

// unary implements UNARY_POSITIVE/NEGATIVE/NOT/INVERT.
func unary(op asm.Opcode, x values.Value) (values.Value, error) {
	switch op {
	case asm.UNARY_NOT:
		return values.Bool(!x.Truth()), nil
	case asm.UNARY_POSITIVE:
		switch x := x.(type) {
		case values.Int:
			return x, nil
		case values.Float:
			return x, nil
		}
	case asm.UNARY_NEGATIVE:
		switch x := x.(type) {
		case values.Int:
			return -x, nil
		case values.Float:
			return -x, nil
		}
	case asm.UNARY_INVERT:
		if x, ok := x.(values.Int); ok {
			return ^x, nil
		}
	}
	return nil, &values.Exception{
		ClassName: "TypeError",
		Args:      []values.Value{values.Str(fmt.Sprintf("bad operand type for unary: %q", x.Type()))},
	}
}

// compare implements COMPARE_OP. Equality/inequality and is/is not work on
// any two values; ordering comparisons require two numbers or two strings;
// in/not in require the right operand to be a List, Tuple, Str, or Dict.
func compare(name string, x, y values.Value) (bool, error) {
	switch name {
	case "is":
		return sameIdentity(x, y), nil
	case "is not":
		return !sameIdentity(x, y), nil
	case "==":
		return equal(x, y), nil
	case "!=":
		return !equal(x, y), nil
	case "in", "not in":
		found, err := contains(x, y)
		if err != nil {
			return false, err
		}
		if name == "not in" {
			return !found, nil
		}
		return found, nil
	default:
		return order(name, x, y)
	}
}

func sameIdentity(x, y values.Value) bool {
	switch x := x.(type) {
	case values.Int, values.Float, values.Str, values.Bool:
		return equal(x, y)
	default:
		if x == values.None {
			return y == values.None
		}
		return x == y
	}
}

func equal(x, y values.Value) bool {
	xf, xIsNum := numeric(x)
	yf, yIsNum := numeric(y)
	if xIsNum && yIsNum {
		return xf == yf
	}
	switch x := x.(type) {
	case values.Str:
		y, ok := y.(values.Str)
		return ok && x == y
	case values.Bytes:
		y, ok := y.(values.Bytes)
		return ok && string(x) == string(y)
	case values.Bool:
		y, ok := y.(values.Bool)
		return ok && x == y
	case values.Tuple:
		y, ok := y.(values.Tuple)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		if x == values.None {
			return y == values.None
		}
		return x == y
	}
}

func order(op string, x, y values.Value) (bool, error) {
	if xf, ok := numeric(x); ok {
		if yf, ok := numeric(y); ok {
			return orderFloat(op, xf, yf), nil
		}
	}
	if xs, ok := x.(values.Str); ok {
		if ys, ok := y.(values.Str); ok {
			return orderStr(op, string(xs), string(ys)), nil
		}
	}
	return false, typeErr("comparison "+op, x, y)
}

func orderFloat(op string, x, y float64) bool {
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	default:
		return false
	}
}

func orderStr(op string, x, y string) bool {
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	default:
		return false
	}
}

func contains(needle, haystack values.Value) (bool, error) {
	switch h := haystack.(type) {
	case *values.List:
		for _, e := range h.Elems {
			if equal(e, needle) {
				return true, nil
			}
		}
		return false, nil
	case values.Tuple:
		for _, e := range h {
			if equal(e, needle) {
				return true, nil
			}
		}
		return false, nil
	case values.Str:
		sub, ok := needle.(values.Str)
		if !ok {
			return false, typeErr("in", needle, haystack)
		}
		return strings.Contains(string(h), string(sub)), nil
	case *values.Dict:
		_, ok := h.Get(needle)
		return ok, nil
	default:
		return false, &values.Exception{
			ClassName: "TypeError",
			Args:      []values.Value{values.Str(fmt.Sprintf("argument of type %q is not iterable", haystack.Type()))},
		}
	}
}
