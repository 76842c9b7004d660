package builtins_test

import (
	"bytes"
	"testing"

	"github.com/mna/catkin/lang/builtins"
	"github.com/mna/catkin/lang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobals(t *testing.T) {
	g := builtins.Globals()
	assert.Equal(t, values.Bool(true), g["True"])
	assert.Equal(t, values.Bool(false), g["False"])
	assert.Equal(t, values.None, g["None"])
}

func TestPrintWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	b := builtins.Builtins(&buf)
	print, ok := b["print"].(*values.BuiltinFunc)
	require.True(t, ok)

	_, err := print.Fn([]values.Value{values.Str("hello"), values.Int(1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello 1\n", buf.String())
}

func TestLen(t *testing.T) {
	b := builtins.Builtins(nil)
	lenFn := b["len"].(*values.BuiltinFunc)

	v, err := lenFn.Fn([]values.Value{values.Str("abc")}, nil)
	require.NoError(t, err)
	assert.Equal(t, values.Int(3), v)

	_, err = lenFn.Fn([]values.Value{values.Int(1)}, nil)
	require.Error(t, err)
}

func TestRangeBuiltin(t *testing.T) {
	b := builtins.Builtins(nil)
	rangeFn := b["range"].(*values.BuiltinFunc)

	v, err := rangeFn.Fn([]values.Value{values.Int(3)}, nil)
	require.NoError(t, err)
	r, ok := v.(*values.Range)
	require.True(t, ok)
	assert.Equal(t, 3, r.Len())
}

func TestExceptionConstructors(t *testing.T) {
	b := builtins.Builtins(nil)
	ve := b["ValueError"].(*values.BuiltinFunc)

	v, err := ve.Fn([]values.Value{values.Str("bad")}, nil)
	require.NoError(t, err)
	exc, ok := v.(*values.Exception)
	require.True(t, ok)
	assert.Equal(t, "ValueError", exc.ClassName)
	assert.Equal(t, []values.Value{values.Str("bad")}, exc.Args)
}

func TestReprQuotesStrings(t *testing.T) {
	b := builtins.Builtins(nil)
	repr := b["repr"].(*values.BuiltinFunc)

	v, err := repr.Fn([]values.Value{values.Str("a\"b")}, nil)
	require.NoError(t, err)
	assert.Equal(t, values.Str(`"a\"b"`), v)
}
