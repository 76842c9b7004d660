package compiler

import (
	"fmt"

	"github.com/mna/catkin/lang/values"
)

// strTable interns strings in first-seen order, matching the insertion-
// ordered tables the reference compiler builds names/varnames from (a
// defaultdict keyed by `len(table)`, then collected sorted by index).
type strTable struct {
	idx   map[string]int
	order []string
}

func newStrTable() *strTable { return &strTable{idx: map[string]int{}} }

func (t *strTable) intern(s string) int {
	if i, ok := t.idx[s]; ok {
		return i
	}
	i := len(t.order)
	t.idx[s] = i
	t.order = append(t.order, s)
	return i
}

// constKey identifies a constant by its value AND its runtime type, so that
// e.g. the int 1, the float 1.0, and the bool True intern to three distinct
// constant-table slots even though they might otherwise compare equal.
type constKey struct {
	kind string
	repr string
}

func keyOf(v values.Value) constKey {
	switch v := v.(type) {
	case values.Int:
		return constKey{"int", v.String()}
	case values.Float:
		return constKey{"float", v.String()}
	case values.Str:
		return constKey{"str", string(v)}
	case values.Bytes:
		return constKey{"bytes", string(v)}
	case values.Bool:
		return constKey{"bool", v.String()}
	case *values.CodeObject:
		return constKey{"code", fmt.Sprintf("%p", v)}
	default:
		if v == values.None {
			return constKey{"none", ""}
		}
		return constKey{"other", fmt.Sprintf("%p", v)}
	}
}

// constTable interns constants in first-seen order, keyed by (value, type)
// as keyOf computes it.
type constTable struct {
	idx  map[constKey]int
	vals []values.Value
}

func newConstTable() *constTable { return &constTable{idx: map[constKey]int{}} }

func (t *constTable) intern(v values.Value) int {
	k := keyOf(v)
	if i, ok := t.idx[k]; ok {
		return i
	}
	i := len(t.vals)
	t.idx[k] = i
	t.vals = append(t.vals, v)
	return i
}
