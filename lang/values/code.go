package values

import "fmt"

// Code-object flag bits, carried over from the host stack-VM this design
// mirrors (see CodeObject).
const (
	FlagHasLocals     = 0x02
	FlagVarArgs       = 0x04
	FlagVarKwargs     = 0x08
	FlagHasFreevars   = 0x10
	FlagSelfContained = 0x40
)

// CodeObject is the immutable result of compiling one function, class body,
// or module body: bytecode plus every table the VM's frame needs to execute
// it and the compiler needed to build it.
type CodeObject struct {
	ArgCount  int
	NLocals   int
	StackSize int
	Flags     int
	Code      []byte

	Consts   []Value
	Names    []string
	Varnames []string

	Filename    string
	Name        string
	FirstLine   int
	Lnotab      []byte

	Freevars []string
	Cellvars []string
}

func (c *CodeObject) String() string { return fmt.Sprintf("<code %s>", c.Name) }
func (*CodeObject) Type() string     { return "code" }
func (*CodeObject) Truth() bool      { return true }

// Function is a callable value: a code object closed over zero or more
// cells captured from enclosing scopes.
type Function struct {
	Name    string
	Code    *CodeObject
	Freevars []*Cell // parallel to Code.Freevars, captured at MAKE_CLOSURE time
	Defaults []Value // not part of the accepted subset's calling convention yet; reserved
}

func (f *Function) String() string { return fmt.Sprintf("<function %s>", f.Name) }
func (*Function) Type() string     { return "function" }
func (*Function) Truth() bool      { return true }

// Method is a Function bound to a receiver instance, produced by attribute
// lookup on an Instance when the attribute resolves to a class Function.
type Method struct {
	Receiver Value
	Fn       *Function
}

func (m *Method) String() string { return fmt.Sprintf("<bound method %s>", m.Fn.Name) }
func (*Method) Type() string     { return "method" }
func (*Method) Truth() bool      { return true }

// Class is a user-defined class: a name, its base classes (for attribute
// and metaclass resolution), its own namespace built by executing the
// class body's code object, and the metaclass that constructed it.
type Class struct {
	Name      string
	Bases     []*Class
	Dict      map[string]Value
	Metaclass *Class
}

// TypeClass is the root metaclass: every Class built by NewClass is an
// instance of it unless __build_class__ resolves a more derived metaclass
// from its bases, mirroring Python's `type`. It is its own metaclass.
var TypeClass = &Class{Name: "type", Dict: map[string]Value{}}

func init() { TypeClass.Metaclass = TypeClass }

// NewClass returns a Class with an initialized, empty Dict and TypeClass as
// its metaclass.
func NewClass(name string, bases []*Class) *Class {
	return &Class{Name: name, Bases: bases, Dict: map[string]Value{}, Metaclass: TypeClass}
}

// NewClassWithMetaclass is like NewClass but for when __build_class__ has
// resolved a metaclass other than TypeClass from the class's bases.
func NewClassWithMetaclass(name string, bases []*Class, meta *Class) *Class {
	return &Class{Name: name, Bases: bases, Dict: map[string]Value{}, Metaclass: meta}
}

func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (*Class) Type() string     { return "type" }
func (*Class) Truth() bool      { return true }

// Attr looks up name on c or, failing that, on each base in MRO order
// (depth-first, left to right, matching the declared Bases order).
func (c *Class) Attr(name string) (Value, bool) {
	if v, ok := c.Dict[name]; ok {
		return v, true
	}
	for _, b := range c.Bases {
		if v, ok := b.Attr(name); ok {
			return v, true
		}
	}
	return nil, false
}

// IsSubclass reports whether c is other or descends from it.
func (c *Class) IsSubclass(other *Class) bool {
	if c == other {
		return true
	}
	for _, b := range c.Bases {
		if b.IsSubclass(other) {
			return true
		}
	}
	return false
}

// Instance is an object of a user-defined Class: its own attribute
// dictionary, falling back to the class (and its bases) for methods.
type Instance struct {
	Class *Class
	Dict  map[string]Value
}

// NewInstance returns an Instance of cls with an empty attribute dict.
func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Dict: map[string]Value{}}
}

func (i *Instance) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name) }
func (i *Instance) Type() string   { return i.Class.Name }
func (*Instance) Truth() bool      { return true }

// Attr looks up name on the instance's own dict, then its class's MRO. The
// second result reports whether name was found at all.
func (i *Instance) Attr(name string) (Value, bool) {
	if v, ok := i.Dict[name]; ok {
		return v, true
	}
	return i.Class.Attr(name)
}

// Exception is a raised error value: an exception class name plus the
// positional constructor arguments it carried (e.g. the message).
type Exception struct {
	ClassName string
	Args      []Value
}

func (e *Exception) String() string {
	if len(e.Args) == 0 {
		return e.ClassName
	}
	return fmt.Sprintf("%s: %s", e.ClassName, joinValues(e.Args))
}
func (*Exception) Type() string { return "exception" }
func (*Exception) Truth() bool  { return true }

// Error implements the error interface so an Exception can be returned and
// propagated through Go's own call stack while the VM unwinds frames.
func (e *Exception) Error() string { return e.String() }
