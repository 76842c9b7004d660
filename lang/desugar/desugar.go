// Package desugar rewrites the surface AST produced by lang/parser into
// the smaller core AST understood by lang/scope and lang/compiler:
// FunctionDef becomes an Assign of a Function value, Lambda becomes an
// anonymous Function, Assert becomes an If/Raise, and ListComp becomes an
// immediately-invoked Function built around a synthetic accumulator name.
package desugar

import "github.com/mna/catkin/lang/ast"

const (
	lambdaName   = "<lambda>"
	listCompName = "<listcomp>"
	elementsName = ".elements"
)

// File rewrites f.Body in place and returns f.
func File(f *ast.File) *ast.File {
	f.Body = stmts(f.Body)
	return f
}

func stmts(in []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(in))
	for _, s := range in {
		out = append(out, stmt(s))
	}
	return out
}

func stmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.FunctionDef:
		fn := &ast.Function{Name: s.Name, Params: s.Params, Body: stmts(s.Body), Doc: s.Doc, Line: s.Line}
		var value ast.Expr = fn
		for i := len(s.Decorators) - 1; i >= 0; i-- {
			value = &ast.Call{Fn: expr(s.Decorators[i]), Args: []ast.Expr{value}, Line: s.Line}
		}
		return &ast.Assign{
			Targets: []ast.Expr{&ast.Ident{Name: s.Name, Ctx: ast.Store, Line: s.Line}},
			Value:   value,
			Line:    s.Line,
		}
	case *ast.ClassDef:
		return &ast.ClassDef{Name: s.Name, Bases: exprs(s.Bases), Body: stmts(s.Body), Doc: s.Doc, Line: s.Line}
	case *ast.Assign:
		return &ast.Assign{Targets: exprs(s.Targets), Value: expr(s.Value), Line: s.Line}
	case *ast.ExprStmt:
		return &ast.ExprStmt{X: expr(s.X), Line: s.Line}
	case *ast.If:
		return &ast.If{Test: expr(s.Test), Then: stmts(s.Then), Else: stmts(s.Else), Line: s.Line}
	case *ast.While:
		return &ast.While{Test: expr(s.Test), Body: stmts(s.Body), Line: s.Line}
	case *ast.For:
		return &ast.For{Target: expr(s.Target), Iter: expr(s.Iter), Body: stmts(s.Body), Line: s.Line}
	case *ast.Return:
		if s.Value == nil {
			return s
		}
		return &ast.Return{Value: expr(s.Value), Line: s.Line}
	case *ast.Raise:
		return &ast.Raise{Exc: expr(s.Exc), Line: s.Line}
	case *ast.Assert:
		var args []ast.Expr
		if s.Msg != nil {
			args = []ast.Expr{expr(s.Msg)}
		}
		raise := &ast.Raise{
			Exc: &ast.Call{
				Fn:   &ast.Ident{Name: "AssertionError", Ctx: ast.Load, Line: s.Line},
				Args: args,
				Line: s.Line,
			},
			Line: s.Line,
		}
		return &ast.If{Test: expr(s.Test), Then: nil, Else: []ast.Stmt{raise}, Line: s.Line}
	case *ast.Import, *ast.ImportFrom, *ast.Pass:
		return s
	default:
		return s
	}
}

func exprs(in []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, len(in))
	for i, e := range in {
		out[i] = expr(e)
	}
	return out
}

func expr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.Ident, *ast.NameConstant, *ast.Num, *ast.Str, *ast.Bytes:
		return e
	case *ast.Call:
		call := &ast.Call{Fn: expr(e.Fn), Args: exprs(e.Args), Kwargs: keywords(e.Kwargs), Line: e.Line}
		if e.StarArg != nil {
			call.StarArg = expr(e.StarArg)
		}
		if e.KwArg != nil {
			call.KwArg = expr(e.KwArg)
		}
		return call
	case *ast.Attribute:
		return &ast.Attribute{X: expr(e.X), Attr: e.Attr, Ctx: e.Ctx, Line: e.Line}
	case *ast.Subscript:
		return &ast.Subscript{X: expr(e.X), Index: expr(e.Index), Ctx: e.Ctx, Line: e.Line}
	case *ast.BinOp:
		return &ast.BinOp{X: expr(e.X), Y: expr(e.Y), Op: e.Op, Line: e.Line}
	case *ast.UnaryOp:
		return &ast.UnaryOp{X: expr(e.X), Op: e.Op, Line: e.Line}
	case *ast.BoolOp:
		return &ast.BoolOp{Op: e.Op, Values: exprs(e.Values), Line: e.Line}
	case *ast.Compare:
		return &ast.Compare{X: expr(e.X), Y: expr(e.Y), Op: e.Op, Line: e.Line}
	case *ast.ListExpr:
		return &ast.ListExpr{Elts: exprs(e.Elts), Ctx: e.Ctx, Line: e.Line}
	case *ast.TupleExpr:
		return &ast.TupleExpr{Elts: exprs(e.Elts), Ctx: e.Ctx, Line: e.Line}
	case *ast.DictExpr:
		return &ast.DictExpr{Keys: exprs(e.Keys), Values: exprs(e.Values), Line: e.Line}
	case *ast.IfExp:
		return &ast.IfExp{Test: expr(e.Test), Then: expr(e.Then), Else: expr(e.Else), Line: e.Line}
	case *ast.Lambda:
		return &ast.Function{
			Name:   lambdaName,
			Params: e.Params,
			Body:   []ast.Stmt{&ast.Return{Value: expr(e.Body), Line: e.Line}},
			Line:   e.Line,
		}
	case *ast.ListComp:
		return listComp(e)
	case *ast.Function:
		return &ast.Function{Name: e.Name, Params: e.Params, Body: stmts(e.Body), Doc: e.Doc, Line: e.Line}
	default:
		return e
	}
}

func keywords(in []ast.Keyword) []ast.Keyword {
	out := make([]ast.Keyword, len(in))
	for i, kw := range in {
		out[i] = ast.Keyword{Name: kw.Name, Value: expr(kw.Value), Line: kw.Line}
	}
	return out
}

// listComp lowers `[elt for t1 in i1 if c1... for t2 in i2 ...]` into a call
// to a synthetic function that builds and returns a list by repeated
// `.elements.append(elt)`, nesting the `for` clauses outer-to-inner and the
// `if` clauses as guards around the innermost body.
func listComp(e *ast.ListComp) ast.Expr {
	accumulator := func() ast.Expr { return &ast.Ident{Name: elementsName, Ctx: ast.Load, Line: e.Line} }
	body := []ast.Stmt{
		&ast.ExprStmt{
			X: &ast.Call{
				Fn:   &ast.Attribute{X: accumulator(), Attr: "append", Ctx: ast.Load, Line: e.Line},
				Args: []ast.Expr{expr(e.Elt)},
				Line: e.Line,
			},
			Line: e.Line,
		},
	}
	for i := len(e.Generators) - 1; i >= 0; i-- {
		gen := e.Generators[i]
		for j := len(gen.Ifs) - 1; j >= 0; j-- {
			body = []ast.Stmt{&ast.If{Test: expr(gen.Ifs[j]), Then: body, Line: e.Line}}
		}
		body = []ast.Stmt{&ast.For{Target: expr(gen.Target), Iter: expr(gen.Iter), Body: body, Line: e.Line}}
	}
	body = append(body, &ast.Return{Value: accumulator(), Line: e.Line})

	fn := &ast.Function{
		Name:   listCompName,
		Params: []ast.Param{{Name: elementsName, Line: e.Line}},
		Body:   body,
		Line:   e.Line,
	}
	return &ast.Call{
		Fn:   fn,
		Args: []ast.Expr{&ast.ListExpr{Ctx: ast.Load, Line: e.Line}},
		Line: e.Line,
	}
}
