package values

import "fmt"

// Iterator yields successive elements of a GET_ITER/FOR_ITER source. Next
// reports false once exhausted; it is never called again afterward.
type Iterator interface {
	Next() (Value, bool)
}

// Range is the value produced by the range() builtin: a lazy arithmetic
// sequence, iterated without ever materializing a backing slice.
type Range struct {
	Start, Stop, Step int64
}

func NewRange(start, stop, step int64) (*Range, error) {
	if step == 0 {
		return nil, &Exception{ClassName: "ValueError", Args: []Value{Str("range() arg 3 must not be zero")}}
	}
	return &Range{Start: start, Stop: stop, Step: step}, nil
}

func (r *Range) Len() int {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return int((r.Stop-r.Start+r.Step-1)/r.Step)
	}
	if r.Stop >= r.Start {
		return 0
	}
	return int((r.Start-r.Stop-r.Step-1) / -r.Step)
}

func (r *Range) String() string { return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step) }
func (*Range) Type() string     { return "range" }
func (r *Range) Truth() bool    { return r.Len() > 0 }

type rangeIterator struct {
	cur, stop, step int64
}

func (it *rangeIterator) Next() (Value, bool) {
	if it.step > 0 && it.cur >= it.stop {
		return nil, false
	}
	if it.step < 0 && it.cur <= it.stop {
		return nil, false
	}
	v := Int(it.cur)
	it.cur += it.step
	return v, true
}

type sliceIterator struct {
	elems []Value
	i     int
}

func (it *sliceIterator) Next() (Value, bool) {
	if it.i >= len(it.elems) {
		return nil, false
	}
	v := it.elems[it.i]
	it.i++
	return v, true
}

type strIterator struct {
	runes []rune
	i     int
}

func (it *strIterator) Next() (Value, bool) {
	if it.i >= len(it.runes) {
		return nil, false
	}
	v := Str(it.runes[it.i])
	it.i++
	return v, true
}

type dictKeyIterator struct {
	keys []Value
	i    int
}

func (it *dictKeyIterator) Next() (Value, bool) {
	if it.i >= len(it.keys) {
		return nil, false
	}
	v := it.keys[it.i]
	it.i++
	return v, true
}

// Iterate returns an Iterator over v, or an error if v is not iterable.
func Iterate(v Value) (Iterator, error) {
	switch v := v.(type) {
	case *List:
		return &sliceIterator{elems: v.Elems}, nil
	case Tuple:
		return &sliceIterator{elems: []Value(v)}, nil
	case Str:
		return &strIterator{runes: []rune(string(v))}, nil
	case *Range:
		return &rangeIterator{cur: v.Start, stop: v.Stop, step: v.Step}, nil
	case *Dict:
		var keys []Value
		v.Each(func(k, _ Value) { keys = append(keys, k) })
		return &dictKeyIterator{keys: keys}, nil
	default:
		return nil, &Exception{ClassName: "TypeError", Args: []Value{Str(fmt.Sprintf("%q object is not iterable", v.Type()))}}
	}
}
