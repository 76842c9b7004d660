package vm

import (
	"fmt"

	"github.com/mna/catkin/lang/values"
)

var moduleClass = values.NewClass("module", nil)

// NewModule returns an empty module Instance whose attribute dict callers
// populate with the names it exports, for registering on Thread.Modules.
func NewModule(name string) *values.Instance {
	inst := values.NewInstance(moduleClass)
	inst.Dict["__name__"] = values.Str(name)
	return inst
}

// importModule implements IMPORT_NAME: only absolute, flat module names
// registered on th.Modules are resolvable (no filesystem search, no
// packages), matching the single-file, no-submodule scope this dialect
// supports. fromlist is unused here; IMPORT_FROM reads named attributes off
// the returned module directly.
func (th *Thread) importModule(name string, level int, fromlist values.Value) (values.Value, error) {
	if level != 0 {
		return nil, &values.Exception{
			ClassName: "ImportError",
			Args:      []values.Value{values.Str("relative imports are not supported")},
		}
	}
	mod, ok := th.Modules[name]
	if !ok {
		return nil, &values.Exception{
			ClassName: "ImportError",
			Args:      []values.Value{values.Str(fmt.Sprintf("no module named %q", name))},
		}
	}
	return mod, nil
}
