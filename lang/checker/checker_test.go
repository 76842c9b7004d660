package checker_test

import (
	"testing"

	"github.com/mna/catkin/lang/checker"
	"github.com/mna/catkin/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(t *testing.T, src string) error {
	t.Helper()
	f, errs := parser.ParseFile("test.ct", []byte(src))
	require.NoError(t, errs.Err())
	return checker.Check(f)
}

func TestCheckAcceptsSimpleProgram(t *testing.T) {
	err := check(t, `
def add(a, b)
  return a + b
end

x = add(1, 2)
`)
	assert.NoError(t, err)
}

func TestCheckRejectsNestedClass(t *testing.T) {
	err := check(t, `
class Outer
  class Inner
  end
end
`)
	assert.ErrorContains(t, err, "nested classes")
}

func TestCheckRejectsMangledIdentifier(t *testing.T) {
	err := check(t, `__secret = 1`)
	assert.ErrorContains(t, err, "private-name mangling")
}

func TestCheckAllowsDunderNames(t *testing.T) {
	err := check(t, `
class C
  def __init__(self)
    pass
  end
end
`)
	assert.NoError(t, err)
}

func TestCheckRejectsWildcardImport(t *testing.T) {
	err := check(t, `from mod import *`)
	assert.ErrorContains(t, err, "wildcard imports")
}

func TestCheckRejectsMultipleVarArgs(t *testing.T) {
	err := check(t, `
def f(*a, *b)
end
`)
	assert.Error(t, err)
}
