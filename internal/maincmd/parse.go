package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/parser"
)

func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
	files, err := parser.ParseFiles(args...)
	for _, f := range files {
		if f == nil {
			continue
		}
		if derr := ast.Dump(stdio.Stdout, f, true); derr != nil {
			fmt.Fprintln(stdio.Stderr, derr)
			return derr
		}
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}
