package values

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Dict is a mutable hash map keyed by any hashable Value (int, float, str,
// bool, None, or a tuple of hashable values); STORE_MAP/BUILD_MAP and
// BINARY_SUBSCR/STORE_SUBSCR on a Dict all go through it.
type Dict struct {
	m *swiss.Map[Value, Value]
}

// NewDict returns an empty Dict sized for at least size entries.
func NewDict(size int) *Dict {
	return &Dict{m: swiss.NewMap[Value, Value](uint32(size))}
}

func (d *Dict) String() string {
	return fmt.Sprintf("<dict len=%d>", d.m.Count())
}
func (*Dict) Type() string  { return "dict" }
func (d *Dict) Truth() bool { return d.m.Count() > 0 }

// Get returns the value stored at k, if any.
func (d *Dict) Get(k Value) (Value, bool) { return d.m.Get(k) }

// Set stores v at k, reporting a TypeError-shaped error if k cannot be
// hashed (a list, dict, or other mutable container used as a key).
func (d *Dict) Set(k, v Value) error {
	if !Hashable(k) {
		return &Exception{ClassName: "TypeError", Args: []Value{Str(fmt.Sprintf("unhashable type: %q", k.Type()))}}
	}
	d.m.Put(k, v)
	return nil
}

// Len reports the number of entries.
func (d *Dict) Len() int { return int(d.m.Count()) }

// Each calls fn once per entry, in unspecified order.
func (d *Dict) Each(fn func(k, v Value)) {
	d.m.Iter(func(k, v Value) (stop bool) {
		fn(k, v)
		return false
	})
}

// Hashable reports whether v is safe to use as a Dict key: the scalar types
// plus Tuple, provided every element is itself Hashable. List, Dict, and
// Bytes values are backed by a Go slice, which the map implementation below
// cannot hash safely, so they are rejected the same as a mutable container.
func Hashable(v Value) bool {
	switch v := v.(type) {
	case Int, Float, Str, Bool:
		return true
	case Tuple:
		for _, e := range v {
			if !Hashable(e) {
				return false
			}
		}
		return true
	default:
		return v == None
	}
}
