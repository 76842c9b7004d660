package parser

import (
	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/token"
)

// parseExpr is the single entry point for expression parsing: lambda binds
// loosest, then the conditional (ternary) expression, then boolean/compare/
// arithmetic operators by increasing precedence, then postfix call/
// attribute/subscript, then atoms.
func (p *parser) parseExpr() ast.Expr {
	if p.tok == token.LAMBDA {
		return p.parseLambda()
	}
	return p.parseTernary()
}

func (p *parser) parseLambda() ast.Expr {
	pos := p.expect(token.LAMBDA)
	var params []ast.Param
	for p.tok != token.COLON && p.tok != token.EOF {
		if len(params) > 0 {
			p.expect(token.COMMA)
		}
		params = append(params, ast.Param{Name: p.parseIdentName(), Line: p.pos})
	}
	p.expect(token.COLON)
	body := p.parseTernary()
	return &ast.Lambda{Params: params, Body: body, Line: pos}
}

// parseTernary parses `then_expr if test else else_expr`, falling through
// to a plain or-expression when there is no `if`.
func (p *parser) parseTernary() ast.Expr {
	pos := p.pos
	then := p.parseOr()
	if p.tok != token.IF {
		return then
	}
	p.advance()
	test := p.parseOr()
	p.expect(token.ELSE)
	els := p.parseExpr()
	return &ast.IfExp{Test: test, Then: then, Else: els, Line: pos}
}

func (p *parser) parseOr() ast.Expr {
	pos := p.pos
	x := p.parseAnd()
	if p.tok != token.OR {
		return x
	}
	values := []ast.Expr{x}
	for p.tok == token.OR {
		p.advance()
		values = append(values, p.parseAnd())
	}
	return &ast.BoolOp{Op: token.OR, Values: values, Line: pos}
}

func (p *parser) parseAnd() ast.Expr {
	pos := p.pos
	x := p.parseNot()
	if p.tok != token.AND {
		return x
	}
	values := []ast.Expr{x}
	for p.tok == token.AND {
		p.advance()
		values = append(values, p.parseNot())
	}
	return &ast.BoolOp{Op: token.AND, Values: values, Line: pos}
}

func (p *parser) parseNot() ast.Expr {
	if p.tok == token.NOT {
		pos := p.pos
		p.advance()
		return &ast.UnaryOp{X: p.parseNot(), Op: token.NOT, Line: pos}
	}
	return p.parseCompare()
}

// parseCompare parses a single comparison `x op y` (no chaining like
// `a < b < c`: each comparison produces exactly one boolean).
func (p *parser) parseCompare() ast.Expr {
	pos := p.pos
	x := p.parseBitOr()
	op, ok := p.peekCompareOp()
	if !ok {
		return x
	}
	p.consumeCompareOp()
	y := p.parseBitOr()
	return &ast.Compare{X: x, Op: op, Y: y, Line: pos}
}

func (p *parser) peekCompareOp() (token.Token, bool) {
	switch p.tok {
	case token.LT, token.LE, token.GT, token.GE, token.EQEQ, token.NEQ, token.IN:
		return p.tok, true
	case token.IS:
		// lookahead for `is not`; the scanner only ever produces IS, so the
		// parser synthesizes IS_NOT once it confirms the following NOT.
		if p.peek() == token.NOT {
			return token.IS_NOT, true
		}
		return token.IS, true
	case token.NOT:
		// lookahead for `not in`; the scanner only ever produces NOT, so the
		// parser synthesizes NOT_IN once it confirms the following IN.
		if p.peek() == token.IN {
			return token.NOT_IN, true
		}
	}
	return token.ILLEGAL, false
}

func (p *parser) consumeCompareOp() {
	if p.tok == token.NOT {
		p.advance()
		p.expect(token.IN)
		return
	}
	if p.tok == token.IS {
		p.advance()
		if p.tok == token.NOT {
			p.advance()
		}
		return
	}
	p.advance()
}

func (p *parser) parseBitOr() ast.Expr {
	pos := p.pos
	x := p.parseBitXor()
	for p.tok == token.PIPE {
		p.advance()
		y := p.parseBitXor()
		x = &ast.BinOp{X: x, Y: y, Op: token.PIPE, Line: pos}
	}
	return x
}

func (p *parser) parseBitXor() ast.Expr {
	pos := p.pos
	x := p.parseBitAnd()
	for p.tok == token.CIRCUMFLEX {
		p.advance()
		y := p.parseBitAnd()
		x = &ast.BinOp{X: x, Y: y, Op: token.CIRCUMFLEX, Line: pos}
	}
	return x
}

func (p *parser) parseBitAnd() ast.Expr {
	pos := p.pos
	x := p.parseShift()
	for p.tok == token.AMP {
		p.advance()
		y := p.parseShift()
		x = &ast.BinOp{X: x, Y: y, Op: token.AMP, Line: pos}
	}
	return x
}

func (p *parser) parseShift() ast.Expr {
	pos := p.pos
	x := p.parseAddSub()
	for p.tok == token.LTLT || p.tok == token.GTGT {
		op := p.tok
		p.advance()
		y := p.parseAddSub()
		x = &ast.BinOp{X: x, Y: y, Op: op, Line: pos}
	}
	return x
}

func (p *parser) parseAddSub() ast.Expr {
	pos := p.pos
	x := p.parseMulDiv()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op := p.tok
		p.advance()
		y := p.parseMulDiv()
		x = &ast.BinOp{X: x, Y: y, Op: op, Line: pos}
	}
	return x
}

func (p *parser) parseMulDiv() ast.Expr {
	pos := p.pos
	x := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.DSLASH || p.tok == token.PERCENT {
		op := p.tok
		p.advance()
		y := p.parseUnary()
		x = &ast.BinOp{X: x, Y: y, Op: op, Line: pos}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.PLUS || p.tok == token.MINUS || p.tok == token.TILDE {
		pos, op := p.pos, p.tok
		p.advance()
		return &ast.UnaryOp{X: p.parseUnary(), Op: op, Line: pos}
	}
	return p.parsePostfix(p.parseAtom())
}

// parsePostfix parses a chain of call/attribute/subscript suffixes applied
// to x.
func (p *parser) parsePostfix(x ast.Expr) ast.Expr {
	for {
		pos := p.pos
		switch p.tok {
		case token.DOT:
			p.advance()
			attr := p.parseIdentName()
			x = &ast.Attribute{X: x, Attr: attr, Ctx: ast.Load, Line: pos}
		case token.LBRACK:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACK)
			x = &ast.Subscript{X: x, Index: idx, Ctx: ast.Load, Line: pos}
		case token.LPAREN:
			x = p.parseCallArgs(x, pos)
		default:
			return x
		}
	}
}

func (p *parser) parseCallArgs(fn ast.Expr, pos token.Pos) ast.Expr {
	p.expect(token.LPAREN)
	call := &ast.Call{Fn: fn, Line: pos}
	seen := false
	for p.tok != token.RPAREN && p.tok != token.EOF {
		if seen {
			p.expect(token.COMMA)
		}
		seen = true
		switch p.tok {
		case token.STAR:
			p.advance()
			call.StarArg = p.parseExpr()
		case token.STARSTAR:
			p.advance()
			call.KwArg = p.parseExpr()
		default:
			// a bare IDENT followed immediately by `=` (not `==`) is
			// unambiguously a keyword name: no other production in an argument
			// list starts with IDENT directly followed by EQ.
			if p.tok == token.IDENT && p.peek() == token.EQ {
				name, namePos := p.val.String, p.pos
				p.advance() // name
				p.advance() // =
				call.Kwargs = append(call.Kwargs, ast.Keyword{Name: name, Value: p.parseExpr(), Line: namePos})
				continue
			}
			call.Args = append(call.Args, p.parseExpr())
		}
	}
	p.expect(token.RPAREN)
	return call
}
