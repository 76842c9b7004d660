// Package compiler walks the desugared, checked core AST and a matching
// lang/scope tree to produce lang/values.CodeObject values: it is the
// direct Go translation of the reference compiler's CodeGen class, emitting
// lang/asm fragments instead of calling into a host bytecode assembler.
package compiler

import (
	"fmt"

	"github.com/mna/catkin/lang/asm"
	"github.com/mna/catkin/lang/ast"
	"github.com/mna/catkin/lang/scope"
	"github.com/mna/catkin/lang/token"
	"github.com/mna/catkin/lang/values"
)

// Compile builds the scope tree for file and compiles its top-level module
// code object. Callers are expected to have already run lang/checker and
// lang/desugar over file.
func Compile(filename string, file *ast.File) *values.CodeObject {
	top := scope.Build(file)
	g := newCodeGen(filename, top)
	return g.compileModule(file)
}

// CodeGen holds the per-code-object compilation state: the scope it is
// generating code for and the three insertion-ordered interning tables that
// become the code object's consts/names/varnames.
type CodeGen struct {
	filename string
	sc       *scope.Scope

	consts   *constTable
	names    *strTable
	varnames *strTable

	hasVarArg   bool
	hasVarKwArg bool
}

func newCodeGen(filename string, sc *scope.Scope) *CodeGen {
	return &CodeGen{
		filename: filename,
		sc:       sc,
		consts:   newConstTable(),
		names:    newStrTable(),
		varnames: newStrTable(),
	}
}

func (g *CodeGen) compileModule(file *ast.File) *values.CodeObject {
	g.internDocSlot(file.Body)
	body := g.emitStmts(file.Body)
	asmFrag := asm.Concat(body, asm.Concat(g.loadConst(values.None), asm.Instr(asm.RETURN_VALUE, nil)))
	return g.makeCode(asmFrag, "<module>", 0)
}

func (g *CodeGen) compileFunction(fn *ast.Function) *values.CodeObject {
	g.internDocSlot(fn.Body)

	for _, p := range fn.Params {
		g.varnames.intern(p.Name)
		switch {
		case p.VarArg:
			g.hasVarArg = true
		case p.VarKwArg:
			g.hasVarKwArg = true
		}
	}

	body := g.emitStmts(fn.Body)
	asmFrag := asm.Concat(body, asm.Concat(g.loadConst(values.None), asm.Instr(asm.RETURN_VALUE, nil)))
	return g.makeCode(asmFrag, fn.Name, len(fn.Params))
}

func (g *CodeGen) compileClass(cd *ast.ClassDef) *values.CodeObject {
	doc, hasDoc := docstring(cd.Body)
	g.internDocSlot(cd.Body)

	prologue := asm.ConcatAll(
		g.load("__name__"), g.store("__module__"),
		g.loadConst(values.Str(cd.Name)), g.store("__qualname__"),
	)
	if hasDoc {
		prologue = asm.Concat(prologue, asm.Concat(g.loadConst(values.Str(doc)), g.store("__doc__")))
	}

	body := g.emitStmts(cd.Body)
	asmFrag := asm.ConcatAll(prologue, body, g.loadConst(values.None), asm.Instr(asm.RETURN_VALUE, nil))
	return g.makeCode(asmFrag, cd.Name, 0)
}

// makeCode finishes a code object: nlocals/stacksize/flags are all derived
// from the fully-built assembly and this CodeGen's own scope/tables, never
// passed in by the caller.
func (g *CodeGen) makeCode(assembly asm.Assembly, name string, argcount int) *values.CodeObject {
	nlocals := len(g.varnames.order)
	stacksize := asm.PlumbDepths(assembly)
	flags := 0
	if nlocals > 0 {
		flags |= values.FlagHasLocals
	}
	if g.hasVarArg {
		flags |= values.FlagVarArgs
	}
	if g.hasVarKwArg {
		flags |= values.FlagVarKwargs
	}
	if len(g.sc.Freevars) > 0 {
		flags |= values.FlagHasFreevars
	}
	if len(g.sc.Derefvars) == 0 {
		flags |= values.FlagSelfContained
	}
	firstLine, lnotab := asm.MakeLnotab(assembly)

	return &values.CodeObject{
		ArgCount:  argcount,
		NLocals:   nlocals,
		StackSize: stacksize,
		Flags:     flags,
		Code:      asm.Assemble(assembly),
		Consts:    append([]values.Value(nil), g.consts.vals...),
		Names:     append([]string(nil), g.names.order...),
		Varnames:  append([]string(nil), g.varnames.order...),
		Filename:  g.filename,
		Name:      name,
		FirstLine: firstLine,
		Lnotab:    lnotab,
		Freevars:  append([]string(nil), g.sc.Freevars...),
		Cellvars:  append([]string(nil), g.sc.Cellvars...),
	}
}

func (g *CodeGen) sproutFunc(fn *ast.Function) *CodeGen {
	return newCodeGen(g.filename, g.sc.ChildOf(fn))
}

func (g *CodeGen) sproutClass(cd *ast.ClassDef) *CodeGen {
	return newCodeGen(g.filename, g.sc.ChildOf(cd))
}

func docstring(body []ast.Stmt) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	es, ok := body[0].(*ast.ExprStmt)
	if !ok {
		return "", false
	}
	s, ok := es.X.(*ast.Str)
	if !ok {
		return "", false
	}
	return s.Value, true
}

// internDocSlot reserves constant index 0 for body's docstring, the bare
// string at the head of the body if there is one, else None. The table
// interns by value, so any later load of that same constant (a class body's
// __doc__ store, the docstring's own expression statement, a trailing
// `return None`) reuses index 0; the reservation fixes the interning order
// so co_consts[0] carries the docstring, the way the reference compiler's
// consts table does it implicitly.
func (g *CodeGen) internDocSlot(body []ast.Stmt) {
	if doc, ok := docstring(body); ok {
		g.consts.intern(values.Str(doc))
		return
	}
	g.consts.intern(values.None)
}

// emitStmts concatenates the code for a statement list in order.
func (g *CodeGen) emitStmts(stmts []ast.Stmt) asm.Assembly {
	out := asm.NoOp
	for _, s := range stmts {
		out = asm.Concat(out, g.emitStmt(s))
	}
	return out
}

// emitStmt annotates a statement's code with its source line, the way the
// reference compiler's __call__ wraps every visited node.
func (g *CodeGen) emitStmt(s ast.Stmt) asm.Assembly {
	return asm.Concat(asm.SetLineNo{Line: int(s.Pos())}, g.visitStmt(s))
}

func (g *CodeGen) emitExpr(e ast.Expr) asm.Assembly {
	return asm.Concat(asm.SetLineNo{Line: int(e.Pos())}, g.visitExpr(e))
}

func (g *CodeGen) emitExprs(es []ast.Expr) asm.Assembly {
	out := asm.NoOp
	for _, e := range es {
		out = asm.Concat(out, g.emitExpr(e))
	}
	return out
}

func (g *CodeGen) visitStmt(s ast.Stmt) asm.Assembly {
	switch s := s.(type) {
	case *ast.Assign:
		return g.visitAssign(s)
	case *ast.ExprStmt:
		return asm.Concat(g.emitExpr(s.X), asm.Instr(asm.POP_TOP, nil))
	case *ast.If:
		return g.visitIf(s.Test, s.Then, s.Else)
	case *ast.While:
		return g.visitWhile(s)
	case *ast.For:
		return g.visitFor(s)
	case *ast.Return:
		if s.Value == nil {
			return asm.Concat(g.loadConst(values.None), asm.Instr(asm.RETURN_VALUE, nil))
		}
		return asm.Concat(g.emitExpr(s.Value), asm.Instr(asm.RETURN_VALUE, nil))
	case *ast.Raise:
		return asm.Concat(g.emitExpr(s.Exc), asm.Instr(asm.RAISE_VARARGS, 1))
	case *ast.Import:
		return g.visitImport(s)
	case *ast.ImportFrom:
		return g.visitImportFrom(s)
	case *ast.Pass:
		return asm.NoOp
	case *ast.ClassDef:
		return g.visitClassDef(s)
	default:
		panic(fmt.Sprintf("compiler: unhandled statement %T (did lang/desugar run?)", s))
	}
}

func (g *CodeGen) visitAssign(s *ast.Assign) asm.Assembly {
	out := g.emitExpr(s.Value)
	for i, t := range s.Targets {
		if i < len(s.Targets)-1 {
			out = asm.Concat(out, asm.Instr(asm.DUP_TOP, nil))
		}
		out = asm.Concat(out, g.emitExpr(t))
	}
	return out
}

func (g *CodeGen) visitIf(test ast.Expr, then, els []ast.Stmt) asm.Assembly {
	orelse, after := asm.NewLabel(), asm.NewLabel()
	return asm.ConcatAll(
		g.emitExpr(test), asm.Instr(asm.POP_JUMP_IF_FALSE, orelse),
		g.emitStmts(then), asm.Instr(asm.JUMP_FORWARD, after),
		orelse, g.emitStmts(els),
		after,
	)
}

func (g *CodeGen) visitWhile(s *ast.While) asm.Assembly {
	loop, end, after := asm.NewLabel(), asm.NewLabel(), asm.NewLabel()
	return asm.ConcatAll(
		asm.Instr(asm.SETUP_LOOP, after),
		loop, g.emitExpr(s.Test), asm.Instr(asm.POP_JUMP_IF_FALSE, end),
		g.emitStmts(s.Body), asm.Instr(asm.JUMP_ABSOLUTE, loop),
		end, asm.Instr(asm.POP_BLOCK, nil),
		after,
	)
}

func (g *CodeGen) visitFor(s *ast.For) asm.Assembly {
	loop, end, after := asm.NewLabel(), asm.NewLabel(), asm.NewLabel()
	return asm.ConcatAll(
		asm.Instr(asm.SETUP_LOOP, after), g.emitExpr(s.Iter), asm.Instr(asm.GET_ITER, nil),
		loop, asm.Instr(asm.FOR_ITER, end), g.emitExpr(s.Target),
		g.emitStmts(s.Body), asm.Instr(asm.JUMP_ABSOLUTE, loop),
		end, asm.Instr(asm.POP_BLOCK, nil),
		after,
	)
}

func (g *CodeGen) visitImport(s *ast.Import) asm.Assembly {
	out := asm.NoOp
	for _, al := range s.Aliases {
		binding := al.AsName
		if binding == "" {
			binding = firstComponent(al.Name)
		}
		out = asm.ConcatAll(out, g.importName(0, nil, al.Name), g.store(binding))
	}
	return out
}

func (g *CodeGen) visitImportFrom(s *ast.ImportFrom) asm.Assembly {
	fromlist := make([]values.Value, len(s.Aliases))
	for i, al := range s.Aliases {
		fromlist[i] = values.Str(al.Name)
	}
	out := g.importName(s.Level, fromlist, s.Module)
	for _, al := range s.Aliases {
		binding := al.AsName
		if binding == "" {
			binding = al.Name
		}
		out = asm.ConcatAll(out, asm.Instr(asm.IMPORT_FROM, g.names.intern(al.Name)), g.store(binding))
	}
	return asm.Concat(out, asm.Instr(asm.POP_TOP, nil))
}

func (g *CodeGen) importName(level int, fromlist []values.Value, module string) asm.Assembly {
	var fromlistConst values.Value = values.None
	if fromlist != nil {
		fromlistConst = values.Tuple(fromlist)
	}
	return asm.ConcatAll(
		g.loadConst(values.Int(level)),
		g.loadConst(fromlistConst),
		asm.Instr(asm.IMPORT_NAME, g.names.intern(module)),
	)
}

func firstComponent(dotted string) string {
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			return dotted[:i]
		}
	}
	return dotted
}

func (g *CodeGen) visitClassDef(s *ast.ClassDef) asm.Assembly {
	code := g.sproutClass(s).compileClass(s)
	closure := g.makeClosure(code, s.Name)
	return asm.ConcatAll(
		asm.Instr(asm.LOAD_BUILD_CLASS, nil),
		closure,
		g.loadConst(values.Str(s.Name)),
		g.emitExprs(s.Bases),
		asm.Instr(asm.CALL_FUNCTION, 2+len(s.Bases)),
		g.store(s.Name),
	)
}

// makeClosure builds the MAKE_FUNCTION/MAKE_CLOSURE sequence for code,
// capturing one LOAD_CLOSURE per free variable code declares, in the order
// code.Freevars lists them (each found by name in this scope's Derefvars).
func (g *CodeGen) makeClosure(code *values.CodeObject, name string) asm.Assembly {
	if len(code.Freevars) == 0 {
		return asm.ConcatAll(g.loadConst(code), g.loadConst(values.Str(name)), asm.Instr(asm.MAKE_FUNCTION, 0))
	}
	closures := asm.NoOp
	for _, fv := range code.Freevars {
		closures = asm.Concat(closures, asm.Instr(asm.LOAD_CLOSURE, g.sc.CellIndex(fv)))
	}
	return asm.ConcatAll(
		closures, asm.Instr(asm.BUILD_TUPLE, len(code.Freevars)),
		g.loadConst(code), g.loadConst(values.Str(name)),
		asm.Instr(asm.MAKE_CLOSURE, 0),
	)
}

func (g *CodeGen) visitExpr(e ast.Expr) asm.Assembly {
	switch e := e.(type) {
	case *ast.NameConstant:
		return g.loadConst(nameConstantValue(e.Value))
	case *ast.Num:
		if e.IsFloat {
			return g.loadConst(values.Float(e.Float))
		}
		return g.loadConst(values.Int(e.Int))
	case *ast.Str:
		return g.loadConst(values.Str(e.Value))
	case *ast.Bytes:
		return g.loadConst(values.Bytes(e.Value))
	case *ast.Ident:
		if e.Ctx == ast.Store {
			return g.store(e.Name)
		}
		return g.load(e.Name)
	case *ast.Call:
		return g.visitCall(e)
	case *ast.Attribute:
		if e.Ctx == ast.Store {
			return asm.Concat(g.emitExpr(e.X), asm.Instr(asm.STORE_ATTR, g.names.intern(e.Attr)))
		}
		return asm.Concat(g.emitExpr(e.X), asm.Instr(asm.LOAD_ATTR, g.names.intern(e.Attr)))
	case *ast.Subscript:
		if e.Ctx == ast.Store {
			return asm.ConcatAll(g.emitExpr(e.X), g.emitExpr(e.Index), asm.Instr(asm.STORE_SUBSCR, nil))
		}
		return asm.ConcatAll(g.emitExpr(e.X), g.emitExpr(e.Index), asm.Instr(asm.BINARY_SUBSCR, nil))
	case *ast.BinOp:
		op, ok := binOps[e.Op]
		if !ok {
			panic(fmt.Sprintf("compiler: unhandled binary operator %s", e.Op))
		}
		return asm.ConcatAll(g.emitExpr(e.X), g.emitExpr(e.Y), asm.Instr(op, nil))
	case *ast.UnaryOp:
		op, ok := unaryOps[e.Op]
		if !ok {
			panic(fmt.Sprintf("compiler: unhandled unary operator %s", e.Op))
		}
		return asm.Concat(g.emitExpr(e.X), asm.Instr(op, nil))
	case *ast.BoolOp:
		return g.visitBoolOp(e)
	case *ast.Compare:
		idx := asm.CompareOpIndex(compareNames[e.Op])
		if idx < 0 {
			panic(fmt.Sprintf("compiler: unhandled comparator %s", e.Op))
		}
		return asm.ConcatAll(g.emitExpr(e.X), g.emitExpr(e.Y), asm.Instr(asm.COMPARE_OP, idx))
	case *ast.ListExpr:
		return g.visitSequence(e.Elts, e.Ctx, asm.BUILD_LIST)
	case *ast.TupleExpr:
		return g.visitSequence(e.Elts, e.Ctx, asm.BUILD_TUPLE)
	case *ast.DictExpr:
		return g.visitDict(e)
	case *ast.IfExp:
		return g.visitIfExp(e)
	case *ast.Function:
		return g.visitFunction(e)
	default:
		panic(fmt.Sprintf("compiler: unhandled expression %T (did lang/desugar run?)", e))
	}
}

func nameConstantValue(v any) values.Value {
	switch v := v.(type) {
	case nil:
		return values.None
	case bool:
		return values.Bool(v)
	default:
		panic(fmt.Sprintf("compiler: unexpected NameConstant payload %T", v))
	}
}

func (g *CodeGen) visitCall(e *ast.Call) asm.Assembly {
	nargs, nkw := len(e.Args), len(e.Kwargs)
	if nargs >= 256 || nkw >= 256 {
		panic("compiler: call with 256 or more positional or keyword arguments")
	}
	kwAsm := asm.NoOp
	for _, kw := range e.Kwargs {
		kwAsm = asm.ConcatAll(kwAsm, g.loadConst(values.Str(kw.Name)), g.emitExpr(kw.Value))
	}
	arg := (nkw << 8) | nargs

	base := asm.ConcatAll(g.emitExpr(e.Fn), g.emitExprs(e.Args), kwAsm)
	switch {
	case e.StarArg == nil && e.KwArg == nil:
		return asm.Concat(base, asm.Instr(asm.CALL_FUNCTION, arg))
	case e.StarArg != nil && e.KwArg == nil:
		return asm.ConcatAll(base, g.emitExpr(e.StarArg), asm.Instr(asm.CALL_FUNCTION_VAR, arg))
	case e.StarArg == nil && e.KwArg != nil:
		return asm.ConcatAll(base, g.emitExpr(e.KwArg), asm.Instr(asm.CALL_FUNCTION_KW, arg))
	default:
		return asm.ConcatAll(base, g.emitExpr(e.StarArg), g.emitExpr(e.KwArg), asm.Instr(asm.CALL_FUNCTION_VAR_KW, arg))
	}
}

func (g *CodeGen) visitSequence(elts []ast.Expr, ctx ast.Ctx, buildOp asm.Opcode) asm.Assembly {
	if ctx == ast.Store {
		out := asm.Instr(asm.UNPACK_SEQUENCE, len(elts))
		return asm.Concat(out, g.emitExprs(elts))
	}
	return asm.Concat(g.emitExprs(elts), asm.Instr(buildOp, len(elts)))
}

func (g *CodeGen) visitDict(e *ast.DictExpr) asm.Assembly {
	n := len(e.Keys)
	hint := n
	if hint > 0xFFFF {
		hint = 0xFFFF
	}
	out := asm.Instr(asm.BUILD_MAP, hint)
	for i := range e.Keys {
		out = asm.ConcatAll(out, g.emitExpr(e.Values[i]), g.emitExpr(e.Keys[i]), asm.Instr(asm.STORE_MAP, nil))
	}
	return out
}

func (g *CodeGen) visitIfExp(e *ast.IfExp) asm.Assembly {
	orelse, after := asm.NewLabel(), asm.NewLabel()
	return asm.ConcatAll(
		g.emitExpr(e.Test), asm.Instr(asm.POP_JUMP_IF_FALSE, orelse),
		g.emitExpr(e.Then), asm.Instr(asm.JUMP_FORWARD, after),
		orelse, g.emitExpr(e.Else),
		after,
	)
}

func (g *CodeGen) visitBoolOp(e *ast.BoolOp) asm.Assembly {
	jumpOp := asm.JUMP_IF_FALSE_OR_POP
	if e.Op == token.OR {
		jumpOp = asm.JUMP_IF_TRUE_OR_POP
	}
	out := g.emitExpr(e.Values[0])
	for _, v := range e.Values[1:] {
		after := asm.NewLabel()
		out = asm.ConcatAll(out, asm.Instr(jumpOp, after), g.emitExpr(v), after)
	}
	return out
}

func (g *CodeGen) visitFunction(fn *ast.Function) asm.Assembly {
	code := g.sproutFunc(fn).compileFunction(fn)
	return g.makeClosure(code, fn.Name)
}

func (g *CodeGen) loadConst(v values.Value) asm.Assembly {
	return asm.Instr(asm.LOAD_CONST, g.consts.intern(v))
}

func (g *CodeGen) load(name string) asm.Assembly {
	switch g.sc.Access(name) {
	case scope.Fast:
		return asm.Instr(asm.LOAD_FAST, g.varnames.intern(name))
	case scope.Deref:
		return asm.Instr(asm.LOAD_DEREF, g.sc.CellIndex(name))
	default:
		return asm.Instr(asm.LOAD_NAME, g.names.intern(name))
	}
}

func (g *CodeGen) store(name string) asm.Assembly {
	switch g.sc.Access(name) {
	case scope.Fast:
		return asm.Instr(asm.STORE_FAST, g.varnames.intern(name))
	case scope.Deref:
		return asm.Instr(asm.STORE_DEREF, g.sc.CellIndex(name))
	default:
		return asm.Instr(asm.STORE_NAME, g.names.intern(name))
	}
}

var binOps = map[token.Token]asm.Opcode{
	token.PLUS:       asm.BINARY_ADD,
	token.MINUS:      asm.BINARY_SUBTRACT,
	token.STAR:       asm.BINARY_MULTIPLY,
	token.SLASH:      asm.BINARY_TRUE_DIVIDE,
	token.DSLASH:     asm.BINARY_FLOOR_DIVIDE,
	token.PERCENT:    asm.BINARY_MODULO,
	token.LTLT:       asm.BINARY_LSHIFT,
	token.GTGT:       asm.BINARY_RSHIFT,
	token.AMP:        asm.BINARY_AND,
	token.PIPE:       asm.BINARY_OR,
	token.CIRCUMFLEX: asm.BINARY_XOR,
}

var unaryOps = map[token.Token]asm.Opcode{
	token.PLUS:  asm.UNARY_POSITIVE,
	token.MINUS: asm.UNARY_NEGATIVE,
	token.TILDE: asm.UNARY_INVERT,
	token.NOT:   asm.UNARY_NOT,
}

var compareNames = map[token.Token]string{
	token.LT:     "<",
	token.LE:     "<=",
	token.EQEQ:   "==",
	token.NEQ:    "!=",
	token.GT:     ">",
	token.GE:     ">=",
	token.IN:     "in",
	token.NOT_IN: "not in",
	token.IS:     "is",
	token.IS_NOT: "is not",
}
