package token

import (
	"fmt"
	"sort"
	"strings"
)

// Error represents a single scanning, parsing, checking, or resolving error
// tied to a source position.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList is a sortable, accumulating list of Errors. It satisfies error
// so a whole phase can return a single ErrorList instead of bailing out on
// the first problem.
type ErrorList []Error

// Add appends an error at the given position.
func (el *ErrorList) Add(pos Position, msg string) {
	*el = append(*el, Error{Pos: pos, Msg: msg})
}

// Sort orders the list by line number, preserving insertion order for equal
// lines.
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool { return el[i].Pos.Line < el[j].Pos.Line })
}

// Err returns el as an error, or nil if el is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more error", el[0].Error(), len(el)-1)
	if len(el) > 2 {
		sb.WriteByte('s')
	}
	sb.WriteByte(')')
	return sb.String()
}

// Unwrap lets errors.Is/As/Join traverse the individual errors.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
