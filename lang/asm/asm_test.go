package asm_test

import (
	"testing"

	"github.com/mna/catkin/lang/asm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSimple(t *testing.T) {
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	assert.Equal(t, 4, prog.Length())
	b := asm.Assemble(prog)
	assert.Equal(t, []byte{byte(asm.LOAD_CONST), 0, 0, byte(asm.RETURN_VALUE)}, b)
}

func TestAssembleForwardJump(t *testing.T) {
	end := asm.NewLabel()
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.POP_JUMP_IF_FALSE, end),
		asm.Instr(asm.LOAD_CONST, 1),
		end,
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	b := asm.Assemble(prog)
	require.Len(t, b, 10)
	// POP_JUMP_IF_FALSE is an absolute jump: its arg is the label's resolved
	// byte offset, not an offset relative to the instruction.
	assert.Equal(t, byte(asm.POP_JUMP_IF_FALSE), b[3])
	assert.Equal(t, byte(9), b[4])
	assert.Equal(t, byte(0), b[5])
}

func TestAssembleBackwardAbsoluteJump(t *testing.T) {
	top := asm.NewLabel()
	prog := asm.ConcatAll(
		top,
		asm.Instr(asm.FOR_ITER, 3),
		asm.Instr(asm.POP_TOP, nil),
		asm.Instr(asm.JUMP_ABSOLUTE, top),
	)
	b := asm.Assemble(prog)
	// FOR_ITER's arg is left untouched: it is a plain int literal here, not
	// a label, so only JUMP_ABSOLUTE's arg is resolved (to 0, top's offset).
	assert.Equal(t, byte(asm.JUMP_ABSOLUTE), b[4])
	assert.Equal(t, byte(0), b[5])
	assert.Equal(t, byte(0), b[6])
}

func TestPlumbDepths(t *testing.T) {
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.LOAD_CONST, 1),
		asm.Instr(asm.BINARY_ADD, nil),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	assert.Equal(t, 2, asm.PlumbDepths(prog))
}

func TestMakeLnotabEmpty(t *testing.T) {
	first, tab := asm.MakeLnotab(asm.NoOp)
	assert.Equal(t, 1, first)
	assert.Nil(t, tab)
}

func TestMakeLnotabSingleLine(t *testing.T) {
	prog := asm.ConcatAll(
		asm.SetLineNo{Line: 5},
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	first, tab := asm.MakeLnotab(prog)
	assert.Equal(t, 5, first)
	assert.Empty(t, tab)
}

func TestMakeLnotabAdvances(t *testing.T) {
	prog := asm.ConcatAll(
		asm.SetLineNo{Line: 1},
		asm.Instr(asm.LOAD_CONST, 0),
		asm.SetLineNo{Line: 2},
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	first, tab := asm.MakeLnotab(prog)
	assert.Equal(t, 1, first)
	assert.Equal(t, []byte{3, 1}, tab)
}

func TestStackEffectImportFrom(t *testing.T) {
	// IMPORT_FROM reads the module already on the stack without consuming
	// it and pushes the attribute above it.
	assert.Equal(t, 1, asm.StackEffect(asm.IMPORT_FROM, 0))
}

func TestHasArg(t *testing.T) {
	assert.False(t, asm.RETURN_VALUE.HasArg())
	assert.True(t, asm.LOAD_CONST.HasArg())
}

func TestIsJump(t *testing.T) {
	assert.True(t, asm.IsJump(asm.JUMP_ABSOLUTE))
	assert.False(t, asm.IsRelativeJump(asm.JUMP_ABSOLUTE))
	assert.True(t, asm.IsJump(asm.JUMP_FORWARD))
	assert.True(t, asm.IsRelativeJump(asm.JUMP_FORWARD))
	assert.False(t, asm.IsJump(asm.LOAD_CONST))
}
