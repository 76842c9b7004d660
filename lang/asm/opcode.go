package asm

import "fmt"

// Opcode identifies a single stack-machine instruction.
type Opcode uint8

//nolint:revive
const (
	NOP Opcode = iota
	POP_TOP
	DUP_TOP
	UNARY_POSITIVE
	UNARY_NEGATIVE
	UNARY_NOT
	UNARY_INVERT
	BINARY_POWER
	BINARY_MULTIPLY
	BINARY_FLOOR_DIVIDE
	BINARY_TRUE_DIVIDE
	BINARY_MODULO
	BINARY_ADD
	BINARY_SUBTRACT
	BINARY_SUBSCR
	BINARY_LSHIFT
	BINARY_RSHIFT
	BINARY_AND
	BINARY_XOR
	BINARY_OR
	STORE_SUBSCR
	STORE_MAP
	RETURN_VALUE
	POP_BLOCK
	GET_ITER
	LOAD_BUILD_CLASS

	// HaveArgument is the first opcode that carries a 16-bit immediate; every
	// opcode before it is a bare 1-byte instruction.
	haveArgumentMarker

	LOAD_CONST
	LOAD_FAST
	STORE_FAST
	LOAD_NAME
	STORE_NAME
	LOAD_ATTR
	STORE_ATTR
	LOAD_DEREF
	STORE_DEREF
	LOAD_CLOSURE
	COMPARE_OP
	BUILD_TUPLE
	BUILD_LIST
	BUILD_MAP
	UNPACK_SEQUENCE
	CALL_FUNCTION
	CALL_FUNCTION_VAR
	CALL_FUNCTION_KW
	CALL_FUNCTION_VAR_KW
	MAKE_FUNCTION
	MAKE_CLOSURE
	RAISE_VARARGS
	IMPORT_NAME
	IMPORT_FROM
	JUMP_FORWARD
	JUMP_ABSOLUTE
	POP_JUMP_IF_FALSE
	POP_JUMP_IF_TRUE
	JUMP_IF_FALSE_OR_POP
	JUMP_IF_TRUE_OR_POP
	FOR_ITER
	SETUP_LOOP

	maxOpcode
)

// HaveArgument is the first opcode that takes an immediate argument; any
// opcode numerically at or above it is encoded as 3 bytes instead of 1.
const HaveArgument = haveArgumentMarker + 1

var opcodeNames = [...]string{
	NOP:                  "NOP",
	POP_TOP:               "POP_TOP",
	DUP_TOP:               "DUP_TOP",
	UNARY_POSITIVE:        "UNARY_POSITIVE",
	UNARY_NEGATIVE:        "UNARY_NEGATIVE",
	UNARY_NOT:             "UNARY_NOT",
	UNARY_INVERT:          "UNARY_INVERT",
	BINARY_POWER:          "BINARY_POWER",
	BINARY_MULTIPLY:       "BINARY_MULTIPLY",
	BINARY_FLOOR_DIVIDE:   "BINARY_FLOOR_DIVIDE",
	BINARY_TRUE_DIVIDE:    "BINARY_TRUE_DIVIDE",
	BINARY_MODULO:         "BINARY_MODULO",
	BINARY_ADD:            "BINARY_ADD",
	BINARY_SUBTRACT:       "BINARY_SUBTRACT",
	BINARY_SUBSCR:         "BINARY_SUBSCR",
	BINARY_LSHIFT:         "BINARY_LSHIFT",
	BINARY_RSHIFT:         "BINARY_RSHIFT",
	BINARY_AND:            "BINARY_AND",
	BINARY_XOR:            "BINARY_XOR",
	BINARY_OR:             "BINARY_OR",
	STORE_SUBSCR:          "STORE_SUBSCR",
	STORE_MAP:             "STORE_MAP",
	RETURN_VALUE:          "RETURN_VALUE",
	POP_BLOCK:             "POP_BLOCK",
	GET_ITER:              "GET_ITER",
	LOAD_BUILD_CLASS:      "LOAD_BUILD_CLASS",
	LOAD_CONST:            "LOAD_CONST",
	LOAD_FAST:             "LOAD_FAST",
	STORE_FAST:            "STORE_FAST",
	LOAD_NAME:             "LOAD_NAME",
	STORE_NAME:            "STORE_NAME",
	LOAD_ATTR:             "LOAD_ATTR",
	STORE_ATTR:            "STORE_ATTR",
	LOAD_DEREF:            "LOAD_DEREF",
	STORE_DEREF:           "STORE_DEREF",
	LOAD_CLOSURE:          "LOAD_CLOSURE",
	COMPARE_OP:            "COMPARE_OP",
	BUILD_TUPLE:           "BUILD_TUPLE",
	BUILD_LIST:            "BUILD_LIST",
	BUILD_MAP:             "BUILD_MAP",
	UNPACK_SEQUENCE:       "UNPACK_SEQUENCE",
	CALL_FUNCTION:         "CALL_FUNCTION",
	CALL_FUNCTION_VAR:     "CALL_FUNCTION_VAR",
	CALL_FUNCTION_KW:      "CALL_FUNCTION_KW",
	CALL_FUNCTION_VAR_KW:  "CALL_FUNCTION_VAR_KW",
	MAKE_FUNCTION:         "MAKE_FUNCTION",
	MAKE_CLOSURE:          "MAKE_CLOSURE",
	RAISE_VARARGS:         "RAISE_VARARGS",
	IMPORT_NAME:           "IMPORT_NAME",
	IMPORT_FROM:           "IMPORT_FROM",
	JUMP_FORWARD:          "JUMP_FORWARD",
	JUMP_ABSOLUTE:         "JUMP_ABSOLUTE",
	POP_JUMP_IF_FALSE:     "POP_JUMP_IF_FALSE",
	POP_JUMP_IF_TRUE:      "POP_JUMP_IF_TRUE",
	JUMP_IF_FALSE_OR_POP:  "JUMP_IF_FALSE_OR_POP",
	JUMP_IF_TRUE_OR_POP:   "JUMP_IF_TRUE_OR_POP",
	FOR_ITER:              "FOR_ITER",
	SETUP_LOOP:            "SETUP_LOOP",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// HasArg reports whether op carries a 16-bit immediate.
func (op Opcode) HasArg() bool { return op >= HaveArgument }

var jumpAbs = map[Opcode]bool{
	JUMP_ABSOLUTE:        true,
	POP_JUMP_IF_FALSE:    true,
	POP_JUMP_IF_TRUE:     true,
	JUMP_IF_FALSE_OR_POP: true,
	JUMP_IF_TRUE_OR_POP:  true,
}

var jumpRel = map[Opcode]bool{
	JUMP_FORWARD: true,
	FOR_ITER:     true,
	SETUP_LOOP:   true,
}

// IsJump reports whether op's argument is a label rather than a plain
// integer (constant/name/varname/cell index, call arg, etc).
func IsJump(op Opcode) bool { return jumpAbs[op] || jumpRel[op] }

// IsRelativeJump reports whether op's encoded argument is an offset from
// the address immediately following the instruction (true), or an absolute
// byte offset into the code (false). Only meaningful when IsJump(op).
func IsRelativeJump(op Opcode) bool { return jumpRel[op] }

// orPopOps leave the operand on the stack when the jump is taken and pop it
// otherwise; their stack effect is pinned to -1 to bound the worst case,
// matching the host compiler's stack-effect table exactly (see StackEffect).
var orPopOps = map[Opcode]bool{
	JUMP_IF_TRUE_OR_POP:  true,
	JUMP_IF_FALSE_OR_POP: true,
}

// StackEffect returns the net operand-stack delta of executing op with the
// given argument (0 for no-arg opcodes or when arg denotes a label, whose
// effect never depends on the label's value).
func StackEffect(op Opcode, arg int) int {
	if orPopOps[op] {
		return -1
	}
	switch op {
	case NOP, POP_BLOCK, GET_ITER, JUMP_FORWARD, JUMP_ABSOLUTE, SETUP_LOOP:
		return 0
	case POP_TOP, STORE_FAST, STORE_NAME, STORE_DEREF, RETURN_VALUE,
		POP_JUMP_IF_FALSE, POP_JUMP_IF_TRUE, RAISE_VARARGS:
		return -1
	case STORE_ATTR:
		return -2 // pops the object and the value stored into it
	case LOAD_ATTR:
		return 0 // replaces the object with the attribute's value
	case DUP_TOP, LOAD_FAST, LOAD_NAME, LOAD_CONST, LOAD_DEREF, LOAD_CLOSURE,
		LOAD_BUILD_CLASS, IMPORT_FROM:
		// IMPORT_FROM reads the module reference left on the stack by
		// IMPORT_NAME without consuming it, and pushes the named attribute;
		// the module itself is popped once by a trailing POP_TOP.
		return 1
	case UNARY_POSITIVE, UNARY_NEGATIVE, UNARY_NOT, UNARY_INVERT:
		return 0
	case BINARY_POWER, BINARY_MULTIPLY, BINARY_FLOOR_DIVIDE, BINARY_TRUE_DIVIDE,
		BINARY_MODULO, BINARY_ADD, BINARY_SUBTRACT, BINARY_SUBSCR, BINARY_LSHIFT,
		BINARY_RSHIFT, BINARY_AND, BINARY_XOR, BINARY_OR, COMPARE_OP:
		return -1
	case STORE_SUBSCR:
		return -3
	case STORE_MAP:
		return -2 // pops val,key, the map itself is pushed back (net -2 of the two popped operands)
	case IMPORT_NAME:
		return -1 // pops level,fromlist pushed as consts beforehand and pushes the module (2 pops, 1 push)
	case BUILD_TUPLE, BUILD_LIST:
		return 1 - arg
	case BUILD_MAP:
		return 1
	case UNPACK_SEQUENCE:
		return arg - 1
	case MAKE_FUNCTION:
		return -1 // pops name, code; pushes function (net: 2 popped - 1 pushed = -1)
	case MAKE_CLOSURE:
		return -2 // pops closure tuple, name, code; pushes function (3 popped - 1 pushed = -2)
	case CALL_FUNCTION:
		nargs := arg & 0xFF
		nkw := (arg >> 8) & 0xFF
		return -(nargs + 2*nkw) // pops fn + args + (name,value) pairs, pushes result
	case CALL_FUNCTION_VAR, CALL_FUNCTION_KW:
		nargs := arg & 0xFF
		nkw := (arg >> 8) & 0xFF
		return -(nargs + 2*nkw + 1) // as CALL_FUNCTION, plus the trailing *args tuple or **kwargs dict
	case CALL_FUNCTION_VAR_KW:
		nargs := arg & 0xFF
		nkw := (arg >> 8) & 0xFF
		return -(nargs + 2*nkw + 2) // as CALL_FUNCTION, plus both the *args tuple and **kwargs dict
	case FOR_ITER:
		return 1 // net across the "push element" branch; the exhausted branch additionally pops the iterator
	default:
		return 0
	}
}
