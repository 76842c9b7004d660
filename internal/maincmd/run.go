package maincmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mna/mainer"

	"github.com/mna/catkin/lang/builtins"
	"github.com/mna/catkin/lang/checker"
	"github.com/mna/catkin/lang/compiler"
	"github.com/mna/catkin/lang/desugar"
	"github.com/mna/catkin/lang/parser"
	"github.com/mna/catkin/lang/vm"
)

func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) error {
	filename := args[0]
	files, err := parser.ParseFiles(filename)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	f := files[0]

	if cerr := checker.Check(f); cerr != nil {
		fmt.Fprintln(stdio.Stderr, cerr)
		return cerr
	}
	core := desugar.File(f)
	code := compiler.Compile(filename, core)

	th := vm.NewThread(builtins.Globals(), builtins.Builtins(stdio.Stdout))
	if c.MaxSteps != "" {
		n, perr := strconv.ParseInt(c.MaxSteps, 10, 64)
		if perr != nil {
			err := fmt.Errorf("invalid --max-steps value %q: %w", c.MaxSteps, perr)
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		th.MaxSteps = n
	}

	if _, rerr := th.RunModule(code); rerr != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", rerr)
		return rerr
	}
	return nil
}
