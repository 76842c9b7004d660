package maincmd

import (
	"context"
	"fmt"
	"io"

	"github.com/mna/mainer"

	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/desugar"
	"github.com/mna/catkin/lang/parser"
	"github.com/mna/catkin/lang/scope"
)

func (c *Cmd) Resolve(_ context.Context, stdio mainer.Stdio, args []string) error {
	files, err := parser.ParseFiles(args...)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	for _, f := range files {
		core := desugar.File(f)
		sc := scope.Build(core)
		printScoped(stdio.Stdout, core, sc)
	}
	return nil
}

// printScoped dumps node the way ast.Dump does, annotating every
// identifier with the access mode lang/scope assigned it, and descending
// into nested function/class scopes as it reaches them.
func printScoped(w io.Writer, node ast.Node, sc *scope.Scope) {
	depth := 0
	ast.Inspect(node, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Function:
			if n == node {
				break // the nested call's own root: walk its children
			}
			fmt.Fprintf(w, "%sfunction %s(%s)\n", indent(depth), n.Name, "")
			printScoped(w, n, sc.ChildOf(n))
			return false
		case *ast.ClassDef:
			if n == node {
				break
			}
			fmt.Fprintf(w, "%sclassdef %s\n", indent(depth), n.Name)
			printScoped(w, n, sc.ChildOf(n))
			return false
		case *ast.Ident:
			fmt.Fprintf(w, "%s[%d] ident %s (%s)\n", indent(depth), n.Line, n.Name, sc.Access(n.Name))
		}
		depth++
		return true
	})
}

func indent(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
