package compiler_test

import (
	"testing"

	"github.com/mna/catkin/lang/builtins"
	"github.com/mna/catkin/lang/checker"
	"github.com/mna/catkin/lang/compiler"
	"github.com/mna/catkin/lang/desugar"
	"github.com/mna/catkin/lang/parser"
	"github.com/mna/catkin/lang/values"
	"github.com/mna/catkin/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run parses, checks, desugars, compiles, and executes src end to end,
// returning the module's top-level globals after it finishes.
func run(t *testing.T, src string) (map[string]values.Value, error) {
	t.Helper()
	f, errs := parser.ParseFile("test.ct", []byte(src))
	require.NoError(t, errs.Err())
	require.NoError(t, checker.Check(f))
	core := desugar.File(f)
	code := compiler.Compile("test.ct", core)

	th := vm.NewThread(builtins.Globals(), builtins.Builtins(nil))
	_, err := th.RunModule(code)
	return th.Globals, err
}

func TestCompileAndRunArithmetic(t *testing.T) {
	globals, err := run(t, `x = 1 + 2 * 3`)
	require.NoError(t, err)
	assert.Equal(t, values.Int(7), globals["x"])
}

func TestCompileAndRunFunctionCall(t *testing.T) {
	globals, err := run(t, `
def add(a, b)
  return a + b
end

total = add(2, 3)
`)
	require.NoError(t, err)
	assert.Equal(t, values.Int(5), globals["total"])
}

func TestCompileAndRunIfElif(t *testing.T) {
	globals, err := run(t, `
def classify(n)
  if n < 0 then
    return 0 - 1
  elif n == 0 then
    return 0
  else
    return 1
  end
end

a = classify(-5)
b = classify(0)
c = classify(5)
`)
	require.NoError(t, err)
	assert.Equal(t, values.Int(-1), globals["a"])
	assert.Equal(t, values.Int(0), globals["b"])
	assert.Equal(t, values.Int(1), globals["c"])
}

func TestCompileAndRunWhileLoop(t *testing.T) {
	globals, err := run(t, `
i = 0
total = 0
while i < 5 do
  total = total + i
  i = i + 1
end
`)
	require.NoError(t, err)
	assert.Equal(t, values.Int(5), globals["i"])
	assert.Equal(t, values.Int(10), globals["total"])
}

func TestCompileAndRunForLoop(t *testing.T) {
	globals, err := run(t, `
total = 0
for i in range(4) do
  total = total + i
end
`)
	require.NoError(t, err)
	assert.Equal(t, values.Int(6), globals["total"])
}

func TestCompileAndRunClassAndMethod(t *testing.T) {
	globals, err := run(t, `
class Counter
  def __init__(self, start)
    self.value = start
  end

  def bump(self)
    self.value = self.value + 1
    return self.value
  end
end

c = Counter(10)
first = c.bump()
second = c.bump()
`)
	require.NoError(t, err)
	assert.Equal(t, values.Int(11), globals["first"])
	assert.Equal(t, values.Int(12), globals["second"])
}

func TestCompileAndRunMultipleInheritance(t *testing.T) {
	globals, err := run(t, `
class Named
  def who(self)
    return self.name
  end
end

class Aged
  def years(self)
    return self.age
  end
end

class Person(Named, Aged)
  def __init__(self, name, age)
    self.name = name
    self.age = age
  end
end

p = Person("Ada", 36)
name = p.who()
age = p.years()
`)
	require.NoError(t, err)
	assert.Equal(t, values.Str("Ada"), globals["name"])
	assert.Equal(t, values.Int(36), globals["age"])

	p, ok := globals["p"].(*values.Instance)
	require.True(t, ok)
	assert.Same(t, values.TypeClass, p.Class.Metaclass)
}

func TestCheckRejectsBadProgram(t *testing.T) {
	f, errs := parser.ParseFile("test.ct", []byte(`
class Outer
  class Inner
  end
end
`))
	require.NoError(t, errs.Err())
	err := checker.Check(f)
	assert.Error(t, err)
}
