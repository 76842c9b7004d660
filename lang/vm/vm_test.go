package vm_test

import (
	"testing"

	"github.com/mna/catkin/lang/asm"
	"github.com/mna/catkin/lang/values"
	"github.com/mna/catkin/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assembleModule packs prog into a module-level CodeObject with the given
// constant pool, the way lang/compiler's codegen does for a file body.
func assembleModule(prog asm.Assembly, consts []values.Value, names []string) *values.CodeObject {
	_, lnotab := asm.MakeLnotab(prog)
	return &values.CodeObject{
		StackSize: asm.PlumbDepths(prog),
		Code:      asm.Assemble(prog),
		Consts:    consts,
		Names:     names,
		Filename:  "test",
		Name:      "<module>",
		FirstLine: 1,
		Lnotab:    lnotab,
	}
}

func TestRunModuleArithmetic(t *testing.T) {
	// 1 + 2 * 3, stored into global "x", then RETURN_VALUE of x.
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.LOAD_CONST, 1),
		asm.Instr(asm.LOAD_CONST, 2),
		asm.Instr(asm.BINARY_MULTIPLY, nil),
		asm.Instr(asm.BINARY_ADD, nil),
		asm.Instr(asm.STORE_NAME, 0),
		asm.Instr(asm.LOAD_NAME, 0),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	code := assembleModule(prog, []values.Value{values.Int(1), values.Int(2), values.Int(3)}, []string{"x"})

	th := vm.NewThread(map[string]values.Value{}, map[string]values.Value{})
	res, err := th.RunModule(code)
	require.NoError(t, err)
	assert.Equal(t, values.Int(7), res)
	assert.Equal(t, values.Int(7), th.Globals["x"])
}

func TestRunModuleNameError(t *testing.T) {
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_NAME, 0),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	code := assembleModule(prog, nil, []string{"undefined"})

	th := vm.NewThread(map[string]values.Value{}, map[string]values.Value{})
	_, err := th.RunModule(code)
	require.Error(t, err)
	var exc *values.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "NameError", exc.ClassName)
}

func TestRunModuleFallsBackToBuiltins(t *testing.T) {
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_NAME, 0),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	code := assembleModule(prog, nil, []string{"greeting"})

	th := vm.NewThread(map[string]values.Value{}, map[string]values.Value{"greeting": values.Str("hi")})
	res, err := th.RunModule(code)
	require.NoError(t, err)
	assert.Equal(t, values.Str("hi"), res)
}

func TestRunModuleMaxStepsGuard(t *testing.T) {
	top := asm.NewLabel()
	prog := asm.ConcatAll(
		top,
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.POP_TOP, nil),
		asm.Instr(asm.JUMP_ABSOLUTE, top),
	)
	code := assembleModule(prog, []values.Value{values.None}, nil)

	th := vm.NewThread(map[string]values.Value{}, map[string]values.Value{})
	th.MaxSteps = 10
	_, err := th.RunModule(code)
	require.Error(t, err)
	var exc *values.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "RecursionError", exc.ClassName)
}

func TestRunModuleBuildListAndSubscr(t *testing.T) {
	// [10, 20, 30][1] -> 20
	prog := asm.ConcatAll(
		asm.Instr(asm.LOAD_CONST, 0),
		asm.Instr(asm.LOAD_CONST, 1),
		asm.Instr(asm.LOAD_CONST, 2),
		asm.Instr(asm.BUILD_LIST, 3),
		asm.Instr(asm.LOAD_CONST, 3),
		asm.Instr(asm.BINARY_SUBSCR, nil),
		asm.Instr(asm.RETURN_VALUE, nil),
	)
	code := assembleModule(prog, []values.Value{values.Int(10), values.Int(20), values.Int(30), values.Int(1)}, nil)

	th := vm.NewThread(map[string]values.Value{}, map[string]values.Value{})
	res, err := th.RunModule(code)
	require.NoError(t, err)
	assert.Equal(t, values.Int(20), res)
}
