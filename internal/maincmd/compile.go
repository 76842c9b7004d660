package maincmd

import (
	"context"
	"fmt"
	"io"

	"github.com/mna/mainer"

	"github.com/mna/catkin/lang/asm"
	"github.com/mna/catkin/lang/checker"
	"github.com/mna/catkin/lang/compiler"
	"github.com/mna/catkin/lang/desugar"
	"github.com/mna/catkin/lang/parser"
	"github.com/mna/catkin/lang/values"
)

func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, args []string) error {
	files, err := parser.ParseFiles(args...)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	for i, f := range files {
		if cerr := checker.Check(f); cerr != nil {
			fmt.Fprintln(stdio.Stderr, cerr)
			return cerr
		}
		core := desugar.File(f)
		code := compiler.Compile(args[i], core)
		disassemble(stdio.Stdout, code, c.DumpLnotab)
	}
	return nil
}

// disassemble prints code's bytecode one instruction per line, followed by
// every nested code object found in its constant pool (functions and class
// bodies), depth-first.
func disassemble(w io.Writer, code *values.CodeObject, dumpLnotab bool) {
	fmt.Fprintf(w, "%s %q:\n", code.Name, code.Filename)
	pc := 0
	for pc < len(code.Code) {
		start := pc
		op := asm.Opcode(code.Code[pc])
		pc++
		var arg int
		hasArg := op.HasArg()
		if hasArg {
			arg = int(code.Code[pc]) | int(code.Code[pc+1])<<8
			pc += 2
		}
		fmt.Fprintf(w, "  %4d %-22s", start, op)
		if hasArg {
			fmt.Fprintf(w, " %-6d%s", arg, argHint(op, arg, code))
		}
		fmt.Fprintln(w)
	}
	if dumpLnotab {
		fmt.Fprintf(w, "  lnotab: % x\n", code.Lnotab)
	}
	for _, cst := range code.Consts {
		if nested, ok := cst.(*values.CodeObject); ok {
			disassemble(w, nested, dumpLnotab)
		}
	}
}

func argHint(op asm.Opcode, arg int, code *values.CodeObject) string {
	switch op {
	case asm.LOAD_CONST:
		if arg < len(code.Consts) {
			return "  (" + code.Consts[arg].String() + ")"
		}
	case asm.LOAD_NAME, asm.STORE_NAME, asm.IMPORT_NAME, asm.IMPORT_FROM, asm.LOAD_ATTR, asm.STORE_ATTR:
		if arg < len(code.Names) {
			return "  (" + code.Names[arg] + ")"
		}
	case asm.LOAD_FAST, asm.STORE_FAST:
		if arg < len(code.Varnames) {
			return "  (" + code.Varnames[arg] + ")"
		}
	case asm.COMPARE_OP:
		if arg < len(asm.CompareOps) {
			return "  (" + asm.CompareOps[arg] + ")"
		}
	}
	return ""
}
