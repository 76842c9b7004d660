package ast

// Inspect traverses node in depth-first order, calling f for each node it
// encounters (including node itself). If f returns false for a node,
// Inspect does not recurse into that node's children. Statement lists are
// walked in source order.
//
// This mirrors go/ast.Inspect's single-function style rather than an
// interface-based Visitor/Walk-method pair: lang/ast/printer.go and
// internal/maincmd's resolve command are the only two consumers and both want a plain
// top-down scan, so a free function keeps every node definition in
// stmts.go/exprs.go free of a Walk method nobody else needs.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *File:
		inspectStmts(n.Body, f)
	case *FunctionDef:
		for _, d := range n.Decorators {
			Inspect(d, f)
		}
		inspectStmts(n.Body, f)
	case *Function:
		inspectStmts(n.Body, f)
	case *ClassDef:
		for _, b := range n.Bases {
			Inspect(b, f)
		}
		inspectStmts(n.Body, f)
	case *Assign:
		for _, t := range n.Targets {
			Inspect(t, f)
		}
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.X, f)
	case *If:
		Inspect(n.Test, f)
		inspectStmts(n.Then, f)
		inspectStmts(n.Else, f)
	case *While:
		Inspect(n.Test, f)
		inspectStmts(n.Body, f)
	case *For:
		Inspect(n.Target, f)
		Inspect(n.Iter, f)
		inspectStmts(n.Body, f)
	case *Return:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *Raise:
		Inspect(n.Exc, f)
	case *Assert:
		Inspect(n.Test, f)
		if n.Msg != nil {
			Inspect(n.Msg, f)
		}
	case *Import, *ImportFrom, *Pass, *Ident, *NameConstant, *Num, *Str, *Bytes:
		// leaves

	case *Call:
		Inspect(n.Fn, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
		for _, kw := range n.Kwargs {
			Inspect(kw.Value, f)
		}
		if n.StarArg != nil {
			Inspect(n.StarArg, f)
		}
		if n.KwArg != nil {
			Inspect(n.KwArg, f)
		}
	case *Attribute:
		Inspect(n.X, f)
	case *Subscript:
		Inspect(n.X, f)
		Inspect(n.Index, f)
	case *BinOp:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *UnaryOp:
		Inspect(n.X, f)
	case *BoolOp:
		for _, v := range n.Values {
			Inspect(v, f)
		}
	case *Compare:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *ListExpr:
		for _, e := range n.Elts {
			Inspect(e, f)
		}
	case *TupleExpr:
		for _, e := range n.Elts {
			Inspect(e, f)
		}
	case *DictExpr:
		for i := range n.Keys {
			Inspect(n.Keys[i], f)
			Inspect(n.Values[i], f)
		}
	case *IfExp:
		Inspect(n.Test, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *Lambda:
		Inspect(n.Body, f)
	case *ListComp:
		Inspect(n.Elt, f)
		for _, g := range n.Generators {
			Inspect(g.Target, f)
			Inspect(g.Iter, f)
			for _, c := range g.Ifs {
				Inspect(c, f)
			}
		}
	default:
		panic("ast.Inspect: unhandled node type")
	}
}

func inspectStmts(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, f)
	}
}
