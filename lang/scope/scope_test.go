package scope_test

import (
	"testing"

	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/desugar"
	"github.com/mna/catkin/lang/parser"
	"github.com/mna/catkin/lang/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) (*ast.File, *scope.Scope) {
	t.Helper()
	f, errs := parser.ParseFile("test.ct", []byte(src))
	require.NoError(t, errs.Err())
	core := desugar.File(f)
	return core, scope.Build(core)
}

func TestModuleLevelNameIsDynamic(t *testing.T) {
	_, sc := build(t, `x = 1`)
	assert.Equal(t, scope.Name, sc.Access("x"))
}

func TestFunctionLocalIsFast(t *testing.T) {
	core, sc := build(t, `
def f(a)
  b = a + 1
  return b
end
`)
	fn := core.Body[0].(*ast.Assign).Value.(*ast.Function)
	inner := sc.ChildOf(fn)
	require.NotNil(t, inner)
	assert.Equal(t, scope.Fast, inner.Access("a"))
	assert.Equal(t, scope.Fast, inner.Access("b"))
}

func TestClosureCapturesAsDeref(t *testing.T) {
	core, sc := build(t, `
def outer(x)
  def inner()
    return x
  end
  return inner
end
`)
	outerFn := core.Body[0].(*ast.Assign).Value.(*ast.Function)
	outerScope := sc.ChildOf(outerFn)
	require.NotNil(t, outerScope)
	assert.Contains(t, outerScope.Cellvars, "x")
	assert.Equal(t, scope.Deref, outerScope.Access("x"))

	var innerFn *ast.Function
	for _, s := range outerFn.Body {
		if a, ok := s.(*ast.Assign); ok {
			if fn, ok := a.Value.(*ast.Function); ok && fn.Name == "inner" {
				innerFn = fn
			}
		}
	}
	require.NotNil(t, innerFn)
	innerScope := outerScope.ChildOf(innerFn)
	require.NotNil(t, innerScope)
	assert.Contains(t, innerScope.Freevars, "x")
	assert.Equal(t, scope.Deref, innerScope.Access("x"))
}
