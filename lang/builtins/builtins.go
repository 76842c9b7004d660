// Package builtins supplies the names every module runs against by
// default: print/len/range/str/repr, the True/False/None constants, and
// the exception classes raise statements construct.
package builtins

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mna/catkin/lang/values"
)

// exceptionNames lists every class name the runtime itself raises (see
// lang/vm's typeErr/zeroDivision/nameError/attrError/notSubscriptable and
// friends), plus AssertionError for desugared assert statements. A program
// can raise any of these by name without declaring its own class for it.
var exceptionNames = []string{
	"Exception",
	"TypeError",
	"ValueError",
	"NameError",
	"AttributeError",
	"KeyError",
	"IndexError",
	"ZeroDivisionError",
	"ImportError",
	"AssertionError",
	"UnboundLocalError",
	"StopIteration",
	"RecursionError",
}

// Globals returns a fresh map binding True/False/None on every call, so a
// Thread given its own map never sees another Thread's top-level
// assignments.
func Globals() map[string]values.Value {
	return map[string]values.Value{
		"True":  values.Bool(true),
		"False": values.Bool(false),
		"None":  values.None,
	}
}

// Builtins returns the fallback namespace LOAD_NAME consults once a name is
// absent from both the running frame's namespace and the thread's globals.
// Output receives whatever print() writes; a nil Output defaults to
// os.Stdout.
func Builtins(output io.Writer) map[string]values.Value {
	if output == nil {
		output = os.Stdout
	}
	b := map[string]values.Value{
		"print": builtin("print", printFn(output)),
		"len":   builtin("len", lenFn),
		"range": builtin("range", rangeFn),
		"str":   builtin("str", strFn),
		"repr":  builtin("repr", reprFn),
	}
	for _, name := range exceptionNames {
		b[name] = exceptionClass(name)
	}
	return b
}

func builtin(name string, fn func(args []values.Value, kwargs map[string]values.Value) (values.Value, error)) *values.BuiltinFunc {
	return &values.BuiltinFunc{Name: name, Fn: fn}
}

// exceptionClass returns a callable that constructs an *values.Exception
// carrying name and whatever positional arguments it was called with, so
// `raise ValueError("bad")` reports ClassName "ValueError" without a user
// ever having to declare the class.
func exceptionClass(name string) *values.BuiltinFunc {
	return builtin(name, func(args []values.Value, _ map[string]values.Value) (values.Value, error) {
		return &values.Exception{ClassName: name, Args: args}, nil
	})
}

func arityErr(name string, want string, got int) error {
	return &values.Exception{
		ClassName: "TypeError",
		Args:      []values.Value{values.Str(fmt.Sprintf("%s() takes %s argument(s) but %d were given", name, want, got))},
	}
}

func printFn(w io.Writer) func([]values.Value, map[string]values.Value) (values.Value, error) {
	return func(args []values.Value, _ map[string]values.Value) (values.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return values.None, nil
	}
}

func lenFn(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("len", "1", len(args))
	}
	switch v := args[0].(type) {
	case *values.List:
		return values.Int(len(v.Elems)), nil
	case values.Tuple:
		return values.Int(len(v)), nil
	case values.Str:
		return values.Int(len([]rune(string(v)))), nil
	case *values.Dict:
		return values.Int(v.Len()), nil
	default:
		return nil, &values.Exception{
			ClassName: "TypeError",
			Args:      []values.Value{values.Str(fmt.Sprintf("object of type %q has no len()", v.Type()))},
		}
	}
}

func rangeFn(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop = int64(mustInt(args[0]))
	case 2:
		start, stop = int64(mustInt(args[0])), int64(mustInt(args[1]))
	case 3:
		start, stop, step = int64(mustInt(args[0])), int64(mustInt(args[1])), int64(mustInt(args[2]))
	default:
		return nil, arityErr("range", "1 to 3", len(args))
	}
	r, err := values.NewRange(start, stop, step)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func mustInt(v values.Value) values.Int {
	if i, ok := v.(values.Int); ok {
		return i
	}
	return 0
}

func strFn(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("str", "1", len(args))
	}
	return values.Str(args[0].String()), nil
}

func reprFn(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("repr", "1", len(args))
	}
	if s, ok := args[0].(values.Str); ok {
		return values.Str(strconv.Quote(string(s))), nil
	}
	return values.Str(args[0].String()), nil
}
