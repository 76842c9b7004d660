package values_test

import (
	"testing"

	"github.com/mna/catkin/lang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarTruth(t *testing.T) {
	assert.True(t, values.Int(1).Truth())
	assert.False(t, values.Int(0).Truth())
	assert.True(t, values.Str("x").Truth())
	assert.False(t, values.Str("").Truth())
	assert.False(t, values.None.Truth())
}

func TestHashable(t *testing.T) {
	assert.True(t, values.Hashable(values.Int(1)))
	assert.True(t, values.Hashable(values.Str("a")))
	assert.True(t, values.Hashable(values.Tuple{values.Int(1), values.Str("a")}))
	assert.False(t, values.Hashable(values.Bytes("a")))
	assert.False(t, values.Hashable(values.NewList(nil)))
	assert.False(t, values.Hashable(values.NewDict(0)))
	assert.False(t, values.Hashable(values.Tuple{values.NewList(nil)}))
}

func TestDictSetUnhashableKey(t *testing.T) {
	d := values.NewDict(0)
	err := d.Set(values.NewList(nil), values.Int(1))
	require.Error(t, err)
	var exc *values.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "TypeError", exc.ClassName)
}

func TestDictGetSet(t *testing.T) {
	d := values.NewDict(0)
	require.NoError(t, d.Set(values.Str("k"), values.Int(42)))
	v, ok := d.Get(values.Str("k"))
	require.True(t, ok)
	assert.Equal(t, values.Int(42), v)
	assert.Equal(t, 1, d.Len())
}

func TestClassAttrMRO(t *testing.T) {
	base := values.NewClass("Base", nil)
	base.Dict["greet"] = values.Str("hi")
	derived := values.NewClass("Derived", []*values.Class{base})

	v, ok := derived.Attr("greet")
	require.True(t, ok)
	assert.Equal(t, values.Str("hi"), v)

	assert.True(t, derived.IsSubclass(base))
	assert.False(t, base.IsSubclass(derived))
}

func TestInstanceAttrFallsBackToClass(t *testing.T) {
	cls := values.NewClass("Point", nil)
	cls.Dict["origin"] = values.Int(0)
	inst := values.NewInstance(cls)
	inst.Dict["x"] = values.Int(1)

	v, ok := inst.Attr("x")
	require.True(t, ok)
	assert.Equal(t, values.Int(1), v)

	v, ok = inst.Attr("origin")
	require.True(t, ok)
	assert.Equal(t, values.Int(0), v)

	_, ok = inst.Attr("missing")
	assert.False(t, ok)
}

func TestExceptionIsError(t *testing.T) {
	exc := &values.Exception{ClassName: "ValueError", Args: []values.Value{values.Str("bad")}}
	var err error = exc
	assert.Contains(t, err.Error(), "ValueError")
}

func TestRangeLen(t *testing.T) {
	r, err := values.NewRange(0, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Len())

	r, err = values.NewRange(5, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Len())

	_, err = values.NewRange(0, 5, 0)
	assert.Error(t, err)
}
