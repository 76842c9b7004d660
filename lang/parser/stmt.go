package parser

import "github.com/mna/catkin/lang/ast"
import "github.com/mna/catkin/lang/token"

// parseStmts parses statements until the current token satisfies stop.
func (p *parser) parseStmts(stop func(token.Token) bool) []ast.Stmt {
	var stmts []ast.Stmt
	for !stop(p.tok) {
		if p.tok == token.SEMI {
			p.advance()
			continue
		}
		s := p.parseStmt()
		if s == nil {
			// parseStmt already recorded an error; advance to avoid looping
			// forever on an unrecognized token.
			p.advance()
			continue
		}
		stmts = append(stmts, s)
	}
	return stmts
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.AT:
		return p.parseFuncDef(p.parseDecorators())
	case token.DEF:
		return p.parseFuncDef(nil)
	case token.CLASS:
		return p.parseClassDef()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.RAISE:
		return p.parseRaise()
	case token.ASSERT:
		return p.parseAssert()
	case token.PASS:
		pos := p.pos
		p.advance()
		return &ast.Pass{Line: pos}
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseImportFrom()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *parser) parseDecorators() []ast.Expr {
	var decs []ast.Expr
	for p.tok == token.AT {
		p.advance()
		decs = append(decs, p.parseExpr())
	}
	return decs
}

func (p *parser) parseFuncDef(decorators []ast.Expr) ast.Stmt {
	pos := p.expect(token.DEF)
	name := p.parseIdentName()
	params := p.parseParams()
	body := p.parseStmts(isBlockEnd)
	p.expect(token.END)
	return &ast.FunctionDef{Name: name, Params: params, Body: body, Decorators: decorators, Line: pos}
}

func (p *parser) parseIdentName() string {
	if p.tok != token.IDENT {
		p.errorf(p.pos, "expected identifier, got %s", p.tok)
		return ""
	}
	name := p.val.String
	p.advance()
	return name
}

func (p *parser) parseParams() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	for p.tok != token.RPAREN && p.tok != token.EOF {
		if len(params) > 0 {
			p.expect(token.COMMA)
		}
		pos := p.pos
		switch p.tok {
		case token.STAR:
			p.advance()
			params = append(params, ast.Param{Name: p.parseIdentName(), Line: pos, VarArg: true})
		case token.STARSTAR:
			p.advance()
			params = append(params, ast.Param{Name: p.parseIdentName(), Line: pos, VarKwArg: true})
		default:
			params = append(params, ast.Param{Name: p.parseIdentName(), Line: pos})
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *parser) parseClassDef() ast.Stmt {
	pos := p.expect(token.CLASS)
	name := p.parseIdentName()
	var bases []ast.Expr
	if p.tok == token.LPAREN {
		p.advance()
		for p.tok != token.RPAREN && p.tok != token.EOF {
			if len(bases) > 0 {
				p.expect(token.COMMA)
			}
			bases = append(bases, p.parseExpr())
		}
		p.expect(token.RPAREN)
	}
	body := p.parseStmts(isBlockEnd)
	p.expect(token.END)
	return &ast.ClassDef{Name: name, Bases: bases, Body: body, Line: pos}
}

func (p *parser) parseIf() ast.Stmt {
	pos := p.expect(token.IF)
	return p.parseIfTail(pos)
}

// parseIfTail parses `test then block (elif test then block)* (else block)? end`,
// folding `elif` chains into nested If nodes in the Else slice, mirroring
// how a compiler's visit_If expects orelse to hold at most one nested If.
func (p *parser) parseIfTail(pos token.Pos) ast.Stmt {
	test := p.parseExpr()
	p.expect(token.THEN)
	then := p.parseStmts(isBlockEnd)

	var els []ast.Stmt
	switch p.tok {
	case token.ELIF:
		elifPos := p.pos
		p.advance()
		els = []ast.Stmt{p.parseIfTail(elifPos)}
		return &ast.If{Test: test, Then: then, Else: els, Line: pos}
	case token.ELSE:
		p.advance()
		els = p.parseStmts(isBlockEnd)
	}
	p.expect(token.END)
	return &ast.If{Test: test, Then: then, Else: els, Line: pos}
}

func (p *parser) parseWhile() ast.Stmt {
	pos := p.expect(token.WHILE)
	test := p.parseExpr()
	p.expect(token.DO)
	body := p.parseStmts(isBlockEnd)
	p.expect(token.END)
	return &ast.While{Test: test, Body: body, Line: pos}
}

func (p *parser) parseFor() ast.Stmt {
	pos := p.expect(token.FOR)
	target := p.parseTargetList()
	p.expect(token.IN)
	iter := p.parseExpr()
	p.expect(token.DO)
	body := p.parseStmts(isBlockEnd)
	p.expect(token.END)
	return &ast.For{Target: target, Iter: iter, Body: body, Line: pos}
}

// parseTargetList parses a comma-separated list of assignment targets,
// wrapping more than one in a Store-context TupleExpr for UNPACK_SEQUENCE.
func (p *parser) parseTargetList() ast.Expr {
	pos := p.pos
	first := p.parsePrimaryAsTarget()
	if p.tok != token.COMMA {
		return first
	}
	elts := []ast.Expr{first}
	for p.tok == token.COMMA {
		p.advance()
		elts = append(elts, p.parsePrimaryAsTarget())
	}
	return &ast.TupleExpr{Elts: elts, Ctx: ast.Store, Line: pos}
}

func (p *parser) parsePrimaryAsTarget() ast.Expr {
	e := p.parsePostfix(p.parseAtom())
	setStoreCtx(e)
	return e
}

func (p *parser) parseReturn() ast.Stmt {
	pos := p.expect(token.RETURN)
	if p.atSimpleStmtEnd() {
		return &ast.Return{Line: pos}
	}
	return &ast.Return{Value: p.parseExpr(), Line: pos}
}

func (p *parser) parseRaise() ast.Stmt {
	pos := p.expect(token.RAISE)
	return &ast.Raise{Exc: p.parseExpr(), Line: pos}
}

func (p *parser) parseAssert() ast.Stmt {
	pos := p.expect(token.ASSERT)
	test := p.parseExpr()
	var msg ast.Expr
	if p.tok == token.COMMA {
		p.advance()
		msg = p.parseExpr()
	}
	return &ast.Assert{Test: test, Msg: msg, Line: pos}
}

func (p *parser) parseImport() ast.Stmt {
	pos := p.expect(token.IMPORT)
	var aliases []ast.Alias
	for {
		aliases = append(aliases, p.parseDottedAlias())
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	return &ast.Import{Aliases: aliases, Line: pos}
}

func (p *parser) parseDottedAlias() ast.Alias {
	pos := p.pos
	name := p.parseIdentName()
	for p.tok == token.DOT {
		p.advance()
		name += "." + p.parseIdentName()
	}
	as := ""
	if p.tok == token.AS {
		p.advance()
		as = p.parseIdentName()
	}
	return ast.Alias{Name: name, AsName: as, Line: pos}
}

func (p *parser) parseImportFrom() ast.Stmt {
	pos := p.expect(token.FROM)
	level := 0
	for p.tok == token.DOT {
		level++
		p.advance()
	}
	module := ""
	if p.tok == token.IDENT {
		module = p.parseIdentName()
		for p.tok == token.DOT {
			p.advance()
			module += "." + p.parseIdentName()
		}
	}
	p.expect(token.IMPORT)
	var aliases []ast.Alias
	for {
		apos := p.pos
		name := p.parseIdentName()
		as := ""
		if p.tok == token.AS {
			p.advance()
			as = p.parseIdentName()
		}
		aliases = append(aliases, ast.Alias{Name: name, AsName: as, Line: apos})
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	return &ast.ImportFrom{Level: level, Module: module, Aliases: aliases, Line: pos}
}

// parseSimpleStmt parses an expression statement or an assignment: it
// always starts by parsing an expression, then decides which based on what
// follows.
// parseSimpleStmt parses an expression statement, or one or more chained
// assignments (`a = b = value`, each of a, b possibly itself a
// comma-separated tuple target).
func (p *parser) parseSimpleStmt() ast.Stmt {
	pos := p.pos
	first := p.parseExprOrTupleList()
	if p.tok != token.EQ {
		return &ast.ExprStmt{X: first, Line: pos}
	}

	pieces := []ast.Expr{first}
	for p.tok == token.EQ {
		p.advance()
		pieces = append(pieces, p.parseExprOrTupleList())
	}
	value := pieces[len(pieces)-1]
	targets := pieces[:len(pieces)-1]
	for _, t := range targets {
		setStoreCtx(t)
	}
	return &ast.Assign{Targets: targets, Value: value, Line: pos}
}

// parseExprOrTupleList parses a single expression, or a comma-separated
// list of expressions wrapped in a (Load-context, fixed up later by
// setStoreCtx if used as a target) TupleExpr. Stops before a trailing `=`
// or a simple-statement terminator.
func (p *parser) parseExprOrTupleList() ast.Expr {
	pos := p.pos
	first := p.parseExpr()
	if p.tok != token.COMMA {
		return first
	}
	elts := []ast.Expr{first}
	for p.tok == token.COMMA {
		p.advance()
		if p.atSimpleStmtEnd() || p.tok == token.EQ {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	return &ast.TupleExpr{Elts: elts, Ctx: ast.Load, Line: pos}
}

func (p *parser) atSimpleStmtEnd() bool {
	switch p.tok {
	case token.SEMI, token.EOF, token.END, token.ELSE, token.ELIF:
		return true
	}
	return false
}

// setStoreCtx mutates a just-parsed expression in place to Store context,
// the way the surface grammar discovers "this was actually a target" only
// after parsing it as a normal expression.
func setStoreCtx(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		e.Ctx = ast.Store
	case *ast.Attribute:
		e.Ctx = ast.Store
	case *ast.Subscript:
		e.Ctx = ast.Store
	case *ast.TupleExpr:
		e.Ctx = ast.Store
		for _, el := range e.Elts {
			setStoreCtx(el)
		}
	case *ast.ListExpr:
		e.Ctx = ast.Store
		for _, el := range e.Elts {
			setStoreCtx(el)
		}
	}
}
