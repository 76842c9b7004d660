// Package parser implements a recursive-descent parser that turns source
// text into the surface lang/ast tree. It buffers one token of lookahead
// (two when a production needs to peek past it) and accumulates errors
// into a token.ErrorList instead of bailing out on the first mistake.
package parser

import (
	"fmt"
	"os"

	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/scanner"
	"github.com/mna/catkin/lang/token"
)

// ParseFiles parses each named source file into a *ast.File. The returned
// error, if non-nil, is a token.ErrorList aggregating every file's errors.
func ParseFiles(files ...string) ([]*ast.File, error) {
	var errs token.ErrorList
	res := make([]*ast.File, 0, len(files))
	for _, name := range files {
		b, err := os.ReadFile(name)
		if err != nil {
			errs.Add(token.Position{Filename: name}, err.Error())
			continue
		}
		f, ferrs := ParseFile(name, b)
		res = append(res, f)
		errs = append(errs, ferrs...)
	}
	errs.Sort()
	return res, errs.Err()
}

// ParseFile parses a single file's source into a *ast.File. The returned
// error, if non-nil, is a token.ErrorList.
func ParseFile(filename string, src []byte) (*ast.File, token.ErrorList) {
	var p parser
	p.init(filename, src)
	body := p.parseStmts(isBlockEnd)
	p.expect(token.EOF)
	p.errors.Sort()
	return &ast.File{Name: filename, Body: body, Line: 1}, p.errors
}

type parser struct {
	filename string
	scanner  scanner.Scanner
	errors   token.ErrorList

	tok token.Token
	val token.Value
	pos token.Pos

	hasPeek bool
	peekTok token.Token
	peekVal token.Value
	peekPos token.Pos
}

func (p *parser) init(filename string, src []byte) {
	p.filename = filename
	p.scanner.Init(filename, src, p.errors.Add)
	p.advance()
}

func (p *parser) advance() {
	if p.hasPeek {
		p.tok, p.val, p.pos = p.peekTok, p.peekVal, p.peekPos
		p.hasPeek = false
		return
	}
	p.tok, p.val, p.pos = p.scanner.Scan()
}

// peek returns the token following the current one, without consuming it.
func (p *parser) peek() token.Token {
	if !p.hasPeek {
		p.peekTok, p.peekVal, p.peekPos = p.scanner.Scan()
		p.hasPeek = true
	}
	return p.peekTok
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.errors.Add(token.Position{Filename: p.filename, Line: int(pos)}, fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches tok, else records an
// error and leaves the token stream positioned where it is (callers use
// isBlockEnd-style sets to resynchronize instead of panicking, matching the
// teacher's "accumulate and keep going" error philosophy).
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorf(p.pos, "expected %s, got %s", tok, p.tok)
		return pos
	}
	p.advance()
	return pos
}

func (p *parser) at(tok token.Token) bool { return p.tok == tok }

// isBlockEnd reports whether tok can terminate a statement block (used by
// parseStmts to know when to stop without consuming the terminator itself).
func isBlockEnd(tok token.Token) bool {
	switch tok {
	case token.EOF, token.END, token.ELSE, token.ELIF:
		return true
	}
	return false
}
