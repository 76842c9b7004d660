package vm

import (
	"fmt"

	"github.com/mna/catkin/lang/values"
)

// getAttr implements LOAD_ATTR: Instance attributes fall back through the
// class MRO, and a Function found there is bound into a Method so the
// caller never has to special-case where it came from.
func getAttr(x values.Value, name string) (values.Value, error) {
	switch x := x.(type) {
	case *values.Instance:
		v, ok := x.Attr(name)
		if !ok {
			return nil, attrError(x.Type(), name)
		}
		return bind(v, x), nil
	case *values.Class:
		v, ok := x.Attr(name)
		if !ok {
			return nil, attrError(x.Name, name)
		}
		return v, nil
	default:
		return nil, attrError(x.Type(), name)
	}
}

// setAttr implements STORE_ATTR, which only Instances support: classes and
// every builtin value type are immutable from attribute-assignment's point
// of view.
func setAttr(x values.Value, name string, v values.Value) error {
	inst, ok := x.(*values.Instance)
	if !ok {
		return &values.Exception{
			ClassName: "TypeError",
			Args:      []values.Value{values.Str(fmt.Sprintf("%q object has no settable attributes", x.Type()))},
		}
	}
	inst.Dict[name] = v
	return nil
}

func attrError(typeName, name string) error {
	return &values.Exception{
		ClassName: "AttributeError",
		Args:      []values.Value{values.Str(fmt.Sprintf("%q object has no attribute %q", typeName, name))},
	}
}
