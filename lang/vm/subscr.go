package vm

import (
	"fmt"

	"github.com/mna/catkin/lang/values"
)

// getItem implements BINARY_SUBSCR over List, Tuple, Str, and Dict.
func getItem(x, idx values.Value) (values.Value, error) {
	switch x := x.(type) {
	case *values.List:
		i, err := sliceIndex(idx, len(x.Elems))
		if err != nil {
			return nil, err
		}
		return x.Elems[i], nil
	case values.Tuple:
		i, err := sliceIndex(idx, len(x))
		if err != nil {
			return nil, err
		}
		return x[i], nil
	case values.Str:
		runes := []rune(string(x))
		i, err := sliceIndex(idx, len(runes))
		if err != nil {
			return nil, err
		}
		return values.Str(runes[i]), nil
	case *values.Dict:
		v, ok := x.Get(idx)
		if !ok {
			return nil, &values.Exception{ClassName: "KeyError", Args: []values.Value{idx}}
		}
		return v, nil
	default:
		return nil, notSubscriptable(x)
	}
}

// setItem implements STORE_SUBSCR over List and Dict; Tuple and Str are
// immutable and reject assignment.
func setItem(x, idx, v values.Value) error {
	switch x := x.(type) {
	case *values.List:
		i, err := sliceIndex(idx, len(x.Elems))
		if err != nil {
			return err
		}
		x.Elems[i] = v
		return nil
	case *values.Dict:
		return x.Set(idx, v)
	default:
		return notSubscriptable(x)
	}
}

// sliceIndex resolves a Python-style index (negative counts from the end)
// against a sequence of the given length, bounds-checking the result.
func sliceIndex(idx values.Value, length int) (int, error) {
	n, ok := idx.(values.Int)
	if !ok {
		return 0, &values.Exception{
			ClassName: "TypeError",
			Args:      []values.Value{values.Str(fmt.Sprintf("indices must be integers, not %q", idx.Type()))},
		}
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, &values.Exception{ClassName: "IndexError", Args: []values.Value{values.Str("index out of range")}}
	}
	return i, nil
}

func notSubscriptable(x values.Value) error {
	return &values.Exception{
		ClassName: "TypeError",
		Args:      []values.Value{values.Str(fmt.Sprintf("%q object is not subscriptable", x.Type()))},
	}
}
