package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump pretty-prints node (and its children) to w, one node per line,
// indented with a repeated ". " prefix that grows by one for every node
// visited and never shrinks when a subtree ends. If withLines is
// true, each line is prefixed with its source line number.
func Dump(w io.Writer, node Node, withLines bool) error {
	depth := 0
	var err error
	Inspect(node, func(n Node) bool {
		if err != nil {
			return false
		}
		prefix := strings.Repeat(". ", depth)
		if withLines {
			prefix = fmt.Sprintf("[%d] %s", n.Pos(), prefix)
		}
		_, err = fmt.Fprintf(w, "%s%s\n", prefix, describe(n))
		depth++
		return true
	})
	return err
}

func describe(n Node) string {
	switch n := n.(type) {
	case *File:
		return fmt.Sprintf("file %s", n.Name)
	case *FunctionDef:
		return fmt.Sprintf("funcdef %s(%s)", n.Name, paramList(n.Params))
	case *Function:
		return fmt.Sprintf("function %s(%s)", n.Name, paramList(n.Params))
	case *ClassDef:
		return fmt.Sprintf("classdef %s", n.Name)
	case *Assign:
		return "assign"
	case *ExprStmt:
		return "exprstmt"
	case *If:
		return "if"
	case *While:
		return "while"
	case *For:
		return "for"
	case *Return:
		return "return"
	case *Raise:
		return "raise"
	case *Assert:
		return "assert"
	case *Import:
		return "import"
	case *ImportFrom:
		return fmt.Sprintf("importfrom %s", n.Module)
	case *Pass:
		return "pass"
	case *Ident:
		return fmt.Sprintf("ident %s (%s)", n.Name, n.Ctx)
	case *NameConstant:
		return fmt.Sprintf("nameconstant %v", n.Value)
	case *Num:
		if n.IsFloat {
			return fmt.Sprintf("num %v", n.Float)
		}
		return fmt.Sprintf("num %v", n.Int)
	case *Str:
		return fmt.Sprintf("str %q", n.Value)
	case *Bytes:
		return fmt.Sprintf("bytes %q", n.Value)
	case *Call:
		return "call"
	case *Attribute:
		return fmt.Sprintf("attribute .%s (%s)", n.Attr, n.Ctx)
	case *Subscript:
		return fmt.Sprintf("subscript (%s)", n.Ctx)
	case *BinOp:
		return fmt.Sprintf("binop %s", n.Op)
	case *UnaryOp:
		return fmt.Sprintf("unaryop %s", n.Op)
	case *BoolOp:
		return fmt.Sprintf("boolop %s", n.Op)
	case *Compare:
		return fmt.Sprintf("compare %s", n.Op)
	case *ListExpr:
		return fmt.Sprintf("list (%s)", n.Ctx)
	case *TupleExpr:
		return fmt.Sprintf("tuple (%s)", n.Ctx)
	case *DictExpr:
		return "dict"
	case *IfExp:
		return "ifexp"
	case *Lambda:
		return "lambda"
	case *ListComp:
		return "listcomp"
	default:
		return fmt.Sprintf("%T", n)
	}
}

func paramList(ps []Param) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		switch {
		case p.VarArg:
			names[i] = "*" + p.Name
		case p.VarKwArg:
			names[i] = "**" + p.Name
		default:
			names[i] = p.Name
		}
	}
	return strings.Join(names, ", ")
}
