package scanner

import (
	"fmt"
	"io"

	"github.com/mna/catkin/lang/token"
)

// TokenAndValue pairs a scanned token with its decoded value and position.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
	Pos   token.Pos
}

// ScanAll tokenizes the entire source, accumulating any errors into an
// ErrorList rather than stopping at the first one. The returned token list
// always ends with an EOF token.
func ScanAll(filename string, src []byte) ([]TokenAndValue, error) {
	var errs token.ErrorList
	var s Scanner
	s.Init(filename, src, errs.Add)

	var toks []TokenAndValue
	for {
		tok, val, pos := s.Scan()
		toks = append(toks, TokenAndValue{Token: tok, Value: val, Pos: pos})
		if tok == token.EOF {
			break
		}
	}
	errs.Sort()
	return toks, errs.Err()
}

// PrintError writes err (anything satisfying error, including a
// token.ErrorList) to w, one message per line.
func PrintError(w io.Writer, err error) {
	if el, ok := err.(token.ErrorList); ok {
		for _, e := range el {
			fmt.Fprintln(w, e.Error())
		}
		return
	}
	fmt.Fprintln(w, err.Error())
}
