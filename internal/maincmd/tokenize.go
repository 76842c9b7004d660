package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/catkin/lang/scanner"
	"github.com/mna/catkin/lang/token"
)

func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		src, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		var sc scanner.Scanner
		var errs token.ErrorList
		sc.Init(name, src, errs.Add)
		for {
			tok, val, pos := sc.Scan()
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s", name, pos, tok)
			if val.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %q", val.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
			if tok == token.EOF {
				break
			}
		}
		if err := errs.Err(); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("tokenize: errors encountered")
	}
	return nil
}
