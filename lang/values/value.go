// Package values defines the runtime value representations the compiler's
// generated code objects operate over and the VM manipulates: numbers,
// strings, sequences, the Function/Method/Cell trio that implements
// closures, and the class/instance pair the metaclass-aware BUILD_CLASS
// protocol constructs.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the interface implemented by everything the machine can hold on
// an operand stack, in a local slot, or in a cell.
type Value interface {
	String() string
	Type() string
	Truth() bool
}

// Int is a signed integer value.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) Type() string     { return "int" }
func (i Int) Truth() bool    { return i != 0 }

// Float is a floating-point value.
type Float float64

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (Float) Type() string     { return "float" }
func (f Float) Truth() bool    { return f != 0 }

// Str is a text string value.
type Str string

func (s Str) String() string { return string(s) }
func (Str) Type() string     { return "str" }
func (s Str) Truth() bool    { return len(s) > 0 }

// Bytes is a binary string value.
type Bytes []byte

func (b Bytes) String() string { return string(b) }
func (Bytes) Type() string     { return "bytes" }
func (b Bytes) Truth() bool    { return len(b) > 0 }

// Bool is True or False.
type Bool bool

func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}
func (Bool) Type() string  { return "bool" }
func (b Bool) Truth() bool { return bool(b) }

// None is the single absent-value constant.
type noneType struct{}

func (noneType) String() string { return "None" }
func (noneType) Type() string   { return "NoneType" }
func (noneType) Truth() bool    { return false }

// None is the sole instance of noneType.
var None Value = noneType{}

// List is a mutable, ordered, growable sequence.
type List struct{ Elems []Value }

// NewList returns a List taking ownership of elems.
func NewList(elems []Value) *List { return &List{Elems: elems} }

func (l *List) String() string { return "[" + joinValues(l.Elems) + "]" }
func (*List) Type() string     { return "list" }
func (l *List) Truth() bool    { return len(l.Elems) > 0 }

// Tuple is an immutable, ordered sequence.
type Tuple []Value

func (t Tuple) String() string { return "(" + joinValues([]Value(t)) + ")" }
func (Tuple) Type() string     { return "tuple" }
func (t Tuple) Truth() bool    { return len(t) > 0 }

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = repr(v)
	}
	return strings.Join(parts, ", ")
}

// repr quotes strings the way a container's String representation should,
// while leaving other values as their plain String form.
func repr(v Value) string {
	if s, ok := v.(Str); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// Cell is a mutable single-slot container shared between a definer and the
// closures that capture it.
type Cell struct{ Value Value }

func NewCell(v Value) *Cell { return &Cell{Value: v} }

func (c *Cell) String() string { return fmt.Sprintf("<cell %s>", c.Value) }
func (*Cell) Type() string     { return "cell" }
func (c *Cell) Truth() bool    { return c.Value != nil && c.Value.Truth() }
