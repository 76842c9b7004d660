// Package vm implements the stack machine that executes lang/compiler's
// CodeObject output: frame construction (locals, cells, operand stack),
// the fetch-decode-execute loop over lang/asm's fixed-width encoding, and
// the calling/attribute/subscript protocols the generated bytecode relies
// on.
package vm

import (
	"fmt"

	"github.com/mna/catkin/lang/asm"
	"github.com/mna/catkin/lang/values"
)

// Thread holds the state shared by every frame of one top-to-bottom run:
// the global namespace, the builtin namespace backstopping it, and a
// recursion guard. The accepted language has no concurrency constructs, so
// one Thread serves one single-threaded run from start to finish.
type Thread struct {
	Globals  map[string]values.Value
	Builtins map[string]values.Value
	Modules  map[string]*values.Instance

	MaxDepth int
	depth    int

	// MaxSteps bounds the total number of bytecode instructions this thread
	// will execute across every frame; zero means unlimited. It guards
	// against runaway loops the way the teacher's machine.Thread does with
	// its own step counter.
	MaxSteps int64
	steps    int64
}

// NewThread returns a Thread ready to run a module's top-level code object
// against globals, falling back to builtins for names globals doesn't bind.
// Modules starts empty; register entries on the returned Thread before
// running any code that imports them.
func NewThread(globals, builtins map[string]values.Value) *Thread {
	return &Thread{
		Globals:  globals,
		Builtins: builtins,
		Modules:  map[string]*values.Instance{},
		MaxDepth: 1000,
	}
}

// RunModule executes a module's top-level CodeObject, binding top-level
// assignments into th.Globals.
func (th *Thread) RunModule(code *values.CodeObject) (values.Value, error) {
	if _, ok := th.Globals["__name__"]; !ok {
		th.Globals["__name__"] = values.Str("__main__") // read by every class body prologue
	}
	locals := make([]values.Value, code.NLocals)
	cells := makeCells(code, locals, nil)
	fr := &frame{code: code, locals: locals, cells: cells, ns: th.Globals}
	return th.execute(fr)
}

// frame is the per-call execution record: fast locals, the cellvar+freevar
// array, and the dynamic namespace LOAD_NAME/STORE_NAME read and write
// (th.Globals for a module or function frame, a fresh map for a class
// body).
type frame struct {
	code   *values.CodeObject
	locals []values.Value
	cells  []*values.Cell
	ns     map[string]values.Value
}

// iterValue wraps a values.Iterator so GET_ITER/FOR_ITER can hold iteration
// state directly on the operand stack like any other value.
type iterValue struct{ it values.Iterator }

func (iterValue) String() string { return "<iterator>" }
func (iterValue) Type() string   { return "iterator" }
func (iterValue) Truth() bool    { return true }

func (th *Thread) execute(fr *frame) (values.Value, error) {
	code := fr.code
	stack := make([]values.Value, code.StackSize)
	sp := 0
	pc := 0

	push := func(v values.Value) { stack[sp] = v; sp++ }
	pop := func() values.Value { sp--; return stack[sp] }

	for {
		if th.MaxSteps > 0 {
			th.steps++
			if th.steps > th.MaxSteps {
				return nil, &values.Exception{
					ClassName: "RecursionError",
					Args:      []values.Value{values.Str("maximum step count exceeded")},
				}
			}
		}

		op := asm.Opcode(code.Code[pc])
		pc++
		var arg int
		if op.HasArg() {
			arg = int(code.Code[pc]) | int(code.Code[pc+1])<<8
			pc += 2
		}

		switch op {
		case asm.NOP:
			// nop

		case asm.POP_TOP:
			sp--

		case asm.DUP_TOP:
			push(stack[sp-1])

		case asm.LOAD_CONST:
			push(code.Consts[arg])

		case asm.LOAD_FAST:
			push(fr.locals[arg])

		case asm.STORE_FAST:
			fr.locals[arg] = pop()

		case asm.LOAD_DEREF:
			push(fr.cells[arg].Value)

		case asm.STORE_DEREF:
			fr.cells[arg].Value = pop()

		case asm.LOAD_CLOSURE:
			push(fr.cells[arg])

		case asm.LOAD_NAME:
			name := code.Names[arg]
			v, ok := fr.ns[name]
			if !ok && fr.ns != nil {
				v, ok = th.Globals[name]
			}
			if !ok {
				v, ok = th.Builtins[name]
			}
			if !ok {
				return nil, nameError(name)
			}
			push(v)

		case asm.STORE_NAME:
			fr.ns[code.Names[arg]] = pop()

		case asm.LOAD_ATTR:
			x := pop()
			v, err := getAttr(x, code.Names[arg])
			if err != nil {
				return nil, err
			}
			push(v)

		case asm.STORE_ATTR:
			x := pop()
			v := pop()
			if err := setAttr(x, code.Names[arg], v); err != nil {
				return nil, err
			}

		case asm.BINARY_SUBSCR:
			idx := pop()
			x := pop()
			v, err := getItem(x, idx)
			if err != nil {
				return nil, err
			}
			push(v)

		case asm.STORE_SUBSCR:
			idx := pop()
			x := pop()
			v := pop()
			if err := setItem(x, idx, v); err != nil {
				return nil, err
			}

		case asm.UNARY_POSITIVE, asm.UNARY_NEGATIVE, asm.UNARY_NOT, asm.UNARY_INVERT:
			v, err := unary(op, pop())
			if err != nil {
				return nil, err
			}
			push(v)

		case asm.BINARY_POWER, asm.BINARY_MULTIPLY, asm.BINARY_FLOOR_DIVIDE,
			asm.BINARY_TRUE_DIVIDE, asm.BINARY_MODULO, asm.BINARY_ADD,
			asm.BINARY_SUBTRACT, asm.BINARY_LSHIFT, asm.BINARY_RSHIFT,
			asm.BINARY_AND, asm.BINARY_XOR, asm.BINARY_OR:
			y := pop()
			x := pop()
			v, err := binary(op, x, y)
			if err != nil {
				return nil, err
			}
			push(v)

		case asm.COMPARE_OP:
			y := pop()
			x := pop()
			ok, err := compare(asm.CompareOps[arg], x, y)
			if err != nil {
				return nil, err
			}
			push(values.Bool(ok))

		case asm.BUILD_TUPLE:
			elems := append([]values.Value(nil), stack[sp-arg:sp]...)
			sp -= arg
			push(values.Tuple(elems))

		case asm.BUILD_LIST:
			elems := append([]values.Value(nil), stack[sp-arg:sp]...)
			sp -= arg
			push(values.NewList(elems))

		case asm.BUILD_MAP:
			push(values.NewDict(arg))

		case asm.STORE_MAP:
			key := pop()
			val := pop()
			d := stack[sp-1].(*values.Dict)
			if err := d.Set(key, val); err != nil {
				return nil, err
			}

		case asm.UNPACK_SEQUENCE:
			v := pop()
			elems, err := sequenceElems(v)
			if err != nil {
				return nil, err
			}
			if len(elems) != arg {
				return nil, &values.Exception{
					ClassName: "ValueError",
					Args:      []values.Value{values.Str(fmt.Sprintf("expected %d values to unpack, got %d", arg, len(elems)))},
				}
			}
			for i := len(elems) - 1; i >= 0; i-- {
				push(elems[i])
			}

		case asm.GET_ITER:
			it, err := values.Iterate(pop())
			if err != nil {
				return nil, err
			}
			push(iterValue{it})

		case asm.FOR_ITER:
			iv := stack[sp-1].(iterValue)
			v, more := iv.it.Next()
			if more {
				push(v)
			} else {
				sp--
				pc = target(code, pc, op, arg)
			}

		case asm.JUMP_FORWARD:
			pc = target(code, pc, op, arg)

		case asm.JUMP_ABSOLUTE:
			pc = arg

		case asm.POP_JUMP_IF_FALSE:
			if !pop().Truth() {
				pc = arg
			}

		case asm.POP_JUMP_IF_TRUE:
			if pop().Truth() {
				pc = arg
			}

		case asm.JUMP_IF_FALSE_OR_POP:
			if !stack[sp-1].Truth() {
				pc = arg
			} else {
				sp--
			}

		case asm.JUMP_IF_TRUE_OR_POP:
			if stack[sp-1].Truth() {
				pc = arg
			} else {
				sp--
			}

		case asm.SETUP_LOOP:
			// the block target is only consulted by a break/continue path this
			// subset doesn't have yet; nothing to push at loop entry.

		case asm.POP_BLOCK:
			// matches SETUP_LOOP; no block stack to pop in this simplified VM.

		case asm.RETURN_VALUE:
			return pop(), nil

		case asm.RAISE_VARARGS:
			exc := pop()
			if e, ok := exc.(*values.Exception); ok {
				return nil, e
			}
			return nil, &values.Exception{ClassName: exc.Type(), Args: []values.Value{exc}}

		case asm.LOAD_BUILD_CLASS:
			push(BuildClass)

		case asm.IMPORT_NAME:
			fromlist := pop()
			level := pop()
			mod, err := th.importModule(code.Names[arg], int(level.(values.Int)), fromlist)
			if err != nil {
				return nil, err
			}
			push(mod)

		case asm.IMPORT_FROM:
			mod := stack[sp-1].(*values.Instance)
			v, ok := mod.Dict[code.Names[arg]]
			if !ok {
				return nil, nameError(code.Names[arg])
			}
			push(v)

		case asm.CALL_FUNCTION, asm.CALL_FUNCTION_VAR, asm.CALL_FUNCTION_KW, asm.CALL_FUNCTION_VAR_KW:
			v, err := th.execCall(op, arg, &sp, stack)
			if err != nil {
				return nil, err
			}
			push(v)

		case asm.MAKE_FUNCTION:
			name := pop().(values.Str)
			co := pop().(*values.CodeObject)
			push(&values.Function{Name: string(name), Code: co})

		case asm.MAKE_CLOSURE:
			name := pop().(values.Str)
			co := pop().(*values.CodeObject)
			tup := pop().(values.Tuple)
			cells := make([]*values.Cell, len(tup))
			for i, c := range tup {
				cells[i] = c.(*values.Cell)
			}
			push(&values.Function{Name: string(name), Code: co, Freevars: cells})

		default:
			return nil, fmt.Errorf("vm: unhandled opcode %s", op)
		}
	}
}

// target resolves a relative-jump instruction's absolute destination: pc
// already points just past the 3-byte instruction when this is called.
func target(_ *values.CodeObject, pcAfter int, op asm.Opcode, arg int) int {
	if asm.IsRelativeJump(op) {
		return pcAfter + arg
	}
	return arg
}

func nameError(name string) error {
	return &values.Exception{ClassName: "NameError", Args: []values.Value{values.Str(fmt.Sprintf("name %q is not defined", name))}}
}

func sequenceElems(v values.Value) ([]values.Value, error) {
	switch v := v.(type) {
	case *values.List:
		return v.Elems, nil
	case values.Tuple:
		return []values.Value(v), nil
	default:
		return nil, &values.Exception{
			ClassName: "TypeError",
			Args:      []values.Value{values.Str(fmt.Sprintf("cannot unpack non-sequence %q", v.Type()))},
		}
	}
}

// execCall pops the callable, explicit args/kwargs, and (depending on op)
// the trailing *args tuple and/or **kwargs dict directly off stack, then
// dispatches through CallValue.
func (th *Thread) execCall(op asm.Opcode, arg int, sp *int, stack []values.Value) (values.Value, error) {
	nargs := arg & 0xFF
	nkw := (arg >> 8) & 0xFF

	var kwDict values.Value
	var starTuple values.Value
	if op == asm.CALL_FUNCTION_VAR_KW {
		kwDict = stack[*sp-1]
		starTuple = stack[*sp-2]
		*sp -= 2
	} else if op == asm.CALL_FUNCTION_KW {
		kwDict = stack[*sp-1]
		*sp--
	} else if op == asm.CALL_FUNCTION_VAR {
		starTuple = stack[*sp-1]
		*sp--
	}

	kwargs := map[string]values.Value{}
	for i := 0; i < nkw; i++ {
		base := *sp - 2*(nkw-i)
		name := stack[base].(values.Str)
		kwargs[string(name)] = stack[base+1]
	}
	*sp -= 2 * nkw

	args := append([]values.Value(nil), stack[*sp-nargs:*sp]...)
	*sp -= nargs

	callable := stack[*sp-1]
	*sp--

	if starTuple != nil {
		extra, err := sequenceElems(starTuple)
		if err != nil {
			return nil, err
		}
		args = append(args, extra...)
	}
	if kwDict != nil {
		d, ok := kwDict.(*values.Dict)
		if !ok {
			return nil, &values.Exception{ClassName: "TypeError", Args: []values.Value{values.Str("argument after ** must be a dict")}}
		}
		d.Each(func(k, v values.Value) {
			if ks, ok := k.(values.Str); ok {
				kwargs[string(ks)] = v
			}
		})
	}

	return th.CallValue(callable, args, kwargs)
}
