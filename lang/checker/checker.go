// Package checker walks a parsed (pre-desugar) AST and rejects programs
// that fall outside the accepted language subset, so that lang/desugar and
// lang/compiler never have to revalidate what they are given.
package checker

import (
	"fmt"
	"strings"

	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/token"
)

// Check walks f and returns every subset violation found, as a
// token.ErrorList. A nil return means f is safe to desugar and compile.
func Check(f *ast.File) error {
	c := &checker{}
	c.checkStmts(f.Body, true)
	c.errs.Sort()
	return c.errs.Err()
}

type checker struct {
	errs token.ErrorList
}

func (c *checker) errorf(pos token.Pos, format string, args ...any) {
	c.errs.Add(token.Position{Line: int(pos)}, fmt.Sprintf(format, args...))
}

func (c *checker) checkStmts(stmts []ast.Stmt, topLevel bool) {
	for _, s := range stmts {
		c.checkStmt(s, topLevel)
	}
}

func (c *checker) checkStmt(s ast.Stmt, topLevel bool) {
	switch s := s.(type) {
	case *ast.FunctionDef:
		c.checkParams(s.Params, s.Line)
		for _, d := range s.Decorators {
			c.checkExpr(d)
		}
		c.checkStmts(s.Body, false)
	case *ast.ClassDef:
		if !topLevel {
			c.errorf(s.Line, "class %s: nested classes are not part of the accepted subset", s.Name)
		}
		for _, b := range s.Bases {
			c.checkExpr(b)
		}
		c.checkStmts(s.Body, false)
	case *ast.Assign:
		for _, t := range s.Targets {
			c.checkExpr(t)
		}
		c.checkExpr(s.Value)
	case *ast.ExprStmt:
		c.checkExpr(s.X)
	case *ast.If:
		c.checkExpr(s.Test)
		c.checkStmts(s.Then, false)
		c.checkStmts(s.Else, false)
	case *ast.While:
		c.checkExpr(s.Test)
		c.checkStmts(s.Body, false)
	case *ast.For:
		c.checkExpr(s.Target)
		c.checkExpr(s.Iter)
		c.checkStmts(s.Body, false)
	case *ast.Return:
		if s.Value != nil {
			c.checkExpr(s.Value)
		}
	case *ast.Raise:
		c.checkExpr(s.Exc)
	case *ast.Assert:
		c.checkExpr(s.Test)
		if s.Msg != nil {
			c.checkExpr(s.Msg)
		}
	case *ast.Import:
		for _, al := range s.Aliases {
			c.checkIdentNotMangled(al.AsName, s.Line)
		}
	case *ast.ImportFrom:
		for _, al := range s.Aliases {
			if al.Name == "*" {
				c.errorf(s.Line, "from %s import *: wildcard imports are not part of the accepted subset", s.Module)
			}
			c.checkIdentNotMangled(al.AsName, s.Line)
		}
	case *ast.Pass:
		// always fine
	default:
		c.errorf(s.Pos(), "%T: statement kind is not part of the accepted subset (break/continue/try/with/yield and similar are rejected)", s)
	}
}

func (c *checker) checkParams(params []ast.Param, pos token.Pos) {
	seenVarArg, seenVarKwArg := false, false
	for i, p := range params {
		c.checkIdentNotMangled(p.Name, pos)
		switch {
		case p.VarArg:
			if seenVarArg || seenVarKwArg {
				c.errorf(pos, "parameter %s: at most one *args parameter is accepted, and it must precede **kwargs", p.Name)
			}
			seenVarArg = true
		case p.VarKwArg:
			if seenVarKwArg {
				c.errorf(pos, "parameter %s: at most one **kwargs parameter is accepted", p.Name)
			}
			if i != len(params)-1 {
				c.errorf(pos, "parameter %s: **kwargs must be the last parameter", p.Name)
			}
			seenVarKwArg = true
		default:
			if seenVarArg || seenVarKwArg {
				c.errorf(pos, "parameter %s: plain parameters may not follow *args or **kwargs (no keyword-only parameters)", p.Name)
			}
		}
	}
}

func (c *checker) checkExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		c.checkIdentNotMangled(e.Name, e.Line)
	case *ast.NameConstant, *ast.Num, *ast.Str, *ast.Bytes:
		// leaves
	case *ast.Call:
		c.checkExpr(e.Fn)
		for _, a := range e.Args {
			c.checkExpr(a)
		}
		for _, kw := range e.Kwargs {
			c.checkExpr(kw.Value)
		}
		if e.StarArg != nil {
			c.checkExpr(e.StarArg)
		}
		if e.KwArg != nil {
			c.checkExpr(e.KwArg)
		}
	case *ast.Attribute:
		c.checkExpr(e.X)
		c.checkIdentNotMangled(e.Attr, e.Line)
	case *ast.Subscript:
		c.checkExpr(e.X)
		c.checkExpr(e.Index)
	case *ast.BinOp:
		c.checkExpr(e.X)
		c.checkExpr(e.Y)
	case *ast.UnaryOp:
		c.checkExpr(e.X)
	case *ast.BoolOp:
		for _, v := range e.Values {
			c.checkExpr(v)
		}
	case *ast.Compare:
		c.checkExpr(e.X)
		c.checkExpr(e.Y)
	case *ast.ListExpr:
		for _, el := range e.Elts {
			c.checkExpr(el)
		}
	case *ast.TupleExpr:
		for _, el := range e.Elts {
			c.checkExpr(el)
		}
	case *ast.DictExpr:
		for i := range e.Keys {
			c.checkExpr(e.Keys[i])
			c.checkExpr(e.Values[i])
		}
	case *ast.IfExp:
		c.checkExpr(e.Test)
		c.checkExpr(e.Then)
		c.checkExpr(e.Else)
	case *ast.Lambda:
		c.checkParams(e.Params, e.Line)
		c.checkExpr(e.Body)
	case *ast.ListComp:
		c.checkExpr(e.Elt)
		for _, g := range e.Generators {
			c.checkExpr(g.Target)
			c.checkExpr(g.Iter)
			for _, i := range g.Ifs {
				c.checkExpr(i)
			}
		}
	default:
		c.errorf(e.Pos(), "%T: expression kind is not part of the accepted subset", e)
	}
}

// checkIdentNotMangled rejects private-name mangling candidates (a leading
// double underscore with no trailing double underscore), and the
// dot-containing synthetic names lang/desugar introduces, which must never
// appear as source identifiers.
func (c *checker) checkIdentNotMangled(name string, pos token.Pos) {
	if name == "" {
		return
	}
	if strings.Contains(name, ".") {
		c.errorf(pos, "identifier %q: dotted synthetic names are reserved", name)
		return
	}
	if strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__") {
		c.errorf(pos, "identifier %q: private-name mangling is not part of the accepted subset", name)
	}
}
