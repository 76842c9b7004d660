package vm

import (
	"fmt"

	"github.com/mna/catkin/lang/values"
)

// buildClassSentinel is the value LOAD_BUILD_CLASS pushes; CallValue
// recognizes it and runs the class-body function against a fresh namespace
// instead of an ordinary call.
type buildClassSentinel struct{}

func (buildClassSentinel) String() string { return "<built-in function __build_class__>" }
func (buildClassSentinel) Type() string   { return "builtin_function_or_method" }
func (buildClassSentinel) Truth() bool    { return true }

// BuildClass is the value LOAD_BUILD_CLASS leaves on the stack.
var BuildClass values.Value = buildClassSentinel{}

// CallValue invokes callable with the given positional and keyword
// arguments, dispatching on its concrete runtime type.
func (th *Thread) CallValue(callable values.Value, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	switch fn := callable.(type) {
	case buildClassSentinel:
		return th.buildClass(args)
	case *values.Function:
		return th.CallFunction(fn, args, kwargs)
	case *values.Method:
		full := append([]values.Value{fn.Receiver}, args...)
		return th.CallFunction(fn.Fn, full, kwargs)
	case *values.Class:
		return th.instantiate(fn, args, kwargs)
	case *values.BuiltinFunc:
		return fn.Fn(args, kwargs)
	default:
		return nil, &values.Exception{
			ClassName: "TypeError",
			Args:      []values.Value{values.Str(fmt.Sprintf("%q object is not callable", callable.Type()))},
		}
	}
}

// CallFunction runs fn's code object against a fresh frame built from args
// and kwargs, returning its RETURN_VALUE result.
func (th *Thread) CallFunction(fn *values.Function, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	if th.depth >= th.MaxDepth {
		return nil, &values.Exception{
			ClassName: "RecursionError",
			Args:      []values.Value{values.Str("maximum recursion depth exceeded")},
		}
	}
	th.depth++
	defer func() { th.depth-- }()

	code := fn.Code
	locals := make([]values.Value, code.NLocals)
	if err := bindArgs(code, locals, args, kwargs); err != nil {
		return nil, err
	}

	cells := makeCells(code, locals, fn.Freevars)
	fr := &frame{code: code, locals: locals, cells: cells, ns: th.Globals}
	return th.execute(fr)
}

// bindArgs fills locals[0:code.NLocals] from args/kwargs following the
// convention compileFunction sets up: the varnames prefix is every plain
// parameter, followed by the *args tuple slot (if FlagVarArgs) and the
// **kwargs dict slot (if FlagVarKwargs).
func bindArgs(code *values.CodeObject, locals []values.Value, args []values.Value, kwargs map[string]values.Value) error {
	plain := code.ArgCount
	hasVarArg := code.Flags&values.FlagVarArgs != 0
	hasVarKw := code.Flags&values.FlagVarKwargs != 0
	if hasVarArg {
		plain--
	}
	if hasVarKw {
		plain--
	}

	if len(args) > plain && !hasVarArg {
		return arityError(code, len(args))
	}

	n := len(args)
	if n > plain {
		n = plain
	}
	bound := make([]bool, plain)
	for i := 0; i < n; i++ {
		locals[i] = args[i]
		bound[i] = true
	}

	for name, v := range kwargs {
		idx := -1
		for i := 0; i < plain; i++ {
			if code.Varnames[i] == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			if !hasVarKw {
				return &values.Exception{
					ClassName: "TypeError",
					Args:      []values.Value{values.Str(fmt.Sprintf("%s() got an unexpected keyword argument %q", code.Name, name))},
				}
			}
			continue
		}
		if bound[idx] {
			return &values.Exception{
				ClassName: "TypeError",
				Args:      []values.Value{values.Str(fmt.Sprintf("%s() got multiple values for argument %q", code.Name, name))},
			}
		}
		locals[idx] = v
		bound[idx] = true
	}

	for i := 0; i < plain; i++ {
		if !bound[i] {
			return &values.Exception{
				ClassName: "TypeError",
				Args:      []values.Value{values.Str(fmt.Sprintf("%s() missing required argument %q", code.Name, code.Varnames[i]))},
			}
		}
	}

	idx := plain
	if hasVarArg {
		var extra []values.Value
		if len(args) > plain {
			extra = append(extra, args[plain:]...)
		}
		locals[idx] = values.Tuple(extra)
		idx++
	}
	if hasVarKw {
		d := values.NewDict(len(kwargs))
		for name, v := range kwargs {
			boundToPlain := false
			for i := 0; i < plain; i++ {
				if code.Varnames[i] == name {
					boundToPlain = true
					break
				}
			}
			if !boundToPlain {
				_ = d.Set(values.Str(name), v)
			}
		}
		locals[idx] = d
	}
	return nil
}

func arityError(code *values.CodeObject, got int) error {
	return &values.Exception{
		ClassName: "TypeError",
		Args:      []values.Value{values.Str(fmt.Sprintf("%s() takes %d positional argument(s) but %d were given", code.Name, code.ArgCount, got))},
	}
}

// makeCells builds the combined cellvars+freevars array a frame addresses
// via LOAD_DEREF/STORE_DEREF/LOAD_CLOSURE. A cellvar that is also a
// parameter starts holding that parameter's bound value (the fast-slot
// value is never read again once its cell exists); any other cellvar
// starts unbound (None).
func makeCells(code *values.CodeObject, locals []values.Value, freevars []*values.Cell) []*values.Cell {
	cells := make([]*values.Cell, len(code.Cellvars)+len(code.Freevars))
	for i, name := range code.Cellvars {
		init := values.Value(values.None)
		for j, vn := range code.Varnames {
			if vn == name {
				init = locals[j]
				break
			}
		}
		cells[i] = values.NewCell(init)
	}
	for i := range code.Freevars {
		if i < len(freevars) {
			cells[len(code.Cellvars)+i] = freevars[i]
		} else {
			cells[len(code.Cellvars)+i] = values.NewCell(values.None)
		}
	}
	return cells
}

// buildClass runs a class body's code in a fresh namespace and assembles
// the resulting Class. args is [closure, name, bases...] as pushed by
// visitClassDef.
func (th *Thread) buildClass(args []values.Value) (values.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("catkin: __build_class__ requires a function and a name")
	}
	fn, ok := args[0].(*values.Function)
	if !ok {
		return nil, fmt.Errorf("catkin: __build_class__ first argument must be a function")
	}
	name, ok := args[1].(values.Str)
	if !ok {
		return nil, fmt.Errorf("catkin: __build_class__ second argument must be a string")
	}

	var bases []*values.Class
	for _, b := range args[2:] {
		cls, ok := b.(*values.Class)
		if !ok {
			return nil, &values.Exception{
				ClassName: "TypeError",
				Args:      []values.Value{values.Str(fmt.Sprintf("%q is not a valid base class", b.Type()))},
			}
		}
		bases = append(bases, cls)
	}

	meta, err := resolveMetaclass(bases)
	if err != nil {
		return nil, err
	}

	ns := map[string]values.Value{}
	code := fn.Code
	locals := make([]values.Value, code.NLocals)
	cells := makeCells(code, locals, fn.Freevars)
	fr := &frame{code: code, locals: locals, cells: cells, ns: ns}
	if _, err := th.execute(fr); err != nil {
		return nil, err
	}

	cls := values.NewClassWithMetaclass(string(name), bases, meta)
	cls.Dict = ns
	return cls, nil
}

// resolveMetaclass climbs each base's metaclass chain to find the single
// most-derived metaclass common to all bases, the way CPython's
// _PyType_CalculateMetaclass picks the metaclass for a class statement with
// no explicit metaclass= keyword. With no bases, TypeClass is the default.
//
// The winner starts at TypeClass and, for each base's metaclass m: if the
// current winner is already a subclass of m (or they're equal), it stays;
// if m is a subclass of the winner, m becomes the new winner; otherwise
// neither is more derived than the other and there is no single most-derived
// metaclass, so a metaclass conflict is raised.
func resolveMetaclass(bases []*values.Class) (*values.Class, error) {
	winner := values.TypeClass
	for _, b := range bases {
		m := b.Metaclass
		if m == nil {
			m = values.TypeClass
		}
		switch {
		case winner.IsSubclass(m):
			// winner already at least as derived as m; keep it.
		case m.IsSubclass(winner):
			winner = m
		default:
			return nil, &values.Exception{
				ClassName: "TypeError",
				Args: []values.Value{values.Str(fmt.Sprintf(
					"metaclass conflict: the metaclass of a derived class (%s) "+
						"must be a (non-strict) subclass of the metaclasses of all its bases", winner.Name))},
			}
		}
	}
	return winner, nil
}

// instantiate creates an Instance of cls and invokes its __init__, if any.
func (th *Thread) instantiate(cls *values.Class, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	inst := values.NewInstance(cls)
	if init, ok := cls.Attr("__init__"); ok {
		if _, err := th.CallValue(bind(init, inst), args, kwargs); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// bind wraps a plain function attribute into a bound Method when it is
// fetched off a Class (for __init__) or an Instance (for method calls).
func bind(v values.Value, receiver values.Value) values.Value {
	if fn, ok := v.(*values.Function); ok {
		return &values.Method{Receiver: receiver, Fn: fn}
	}
	return v
}
