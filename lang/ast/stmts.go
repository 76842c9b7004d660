package ast

import "github.com/mna/catkin/lang/token"

// FunctionDef is a surface-only node; lang/desugar rewrites it to
// Assign([Name(name,Store)], decorators(Function(...))).
type FunctionDef struct {
	Name       string
	Params     []Param
	Body       []Stmt
	Decorators []Expr // source order, applied right-to-left: the last (closest to def) first, the first outermost
	Doc        string
	Line       token.Pos
}

func (n *FunctionDef) Pos() token.Pos { return n.Line }
func (*FunctionDef) stmtNode()        {}

// Function is the core node a FunctionDef/Lambda desugars to: an anonymous
// function value, later assigned to a name by the enclosing Assign. It is
// also used directly for class method bodies.
type Function struct {
	Name   string // for error messages and co_name; "<lambda>"/"<listcomp>" for synthetic ones
	Params []Param
	Body   []Stmt
	Doc    string
	Line   token.Pos
}

func (n *Function) Pos() token.Pos { return n.Line }
func (*Function) stmtNode()        {} // never appears directly as a statement, but satisfies Stmt for scope bookkeeping
func (*Function) exprNode()        {} // appears as the RHS of the Assign it desugars into

// ClassDef declares a class. Only top-level classes are accepted, with no
// decorators or star-args; the checker enforces this.
type ClassDef struct {
	Name  string
	Bases []Expr
	Body  []Stmt
	Doc   string
	Line  token.Pos
}

func (n *ClassDef) Pos() token.Pos { return n.Line }
func (*ClassDef) stmtNode()        {}

// Assign is `targets... = value`, one or more targets (chained assignment).
type Assign struct {
	Targets []Expr
	Value   Expr
	Line    token.Pos
}

func (n *Assign) Pos() token.Pos { return n.Line }
func (*Assign) stmtNode()        {}

// ExprStmt is a bare expression used as a statement (its value is popped).
type ExprStmt struct {
	X    Expr
	Line token.Pos
}

func (n *ExprStmt) Pos() token.Pos { return n.Line }
func (*ExprStmt) stmtNode()        {}

// If is `if test then ... else ... end`. elif chains are represented as a
// single nested If in the Else slice.
type If struct {
	Test Expr
	Then []Stmt
	Else []Stmt
	Line token.Pos
}

func (n *If) Pos() token.Pos { return n.Line }
func (*If) stmtNode()        {}

// While is `while test do body end`. No else clause is accepted.
type While struct {
	Test Expr
	Body []Stmt
	Line token.Pos
}

func (n *While) Pos() token.Pos { return n.Line }
func (*While) stmtNode()        {}

// For is `for target in iter do body end`. No else clause is accepted.
type For struct {
	Target Expr
	Iter   Expr
	Body   []Stmt
	Line   token.Pos
}

func (n *For) Pos() token.Pos { return n.Line }
func (*For) stmtNode()        {}

// Return is `return value?`.
type Return struct {
	Value Expr // nil for bare `return`
	Line  token.Pos
}

func (n *Return) Pos() token.Pos { return n.Line }
func (*Return) stmtNode()        {}

// Raise is `raise exc` (value only, no `from cause`).
type Raise struct {
	Exc  Expr
	Line token.Pos
}

func (n *Raise) Pos() token.Pos { return n.Line }
func (*Raise) stmtNode()        {}

// Import is `import a.b.c, d as e`.
type Import struct {
	Aliases []Alias
	Line    token.Pos
}

func (n *Import) Pos() token.Pos { return n.Line }
func (*Import) stmtNode()        {}

// ImportFrom is `from .m import a, b as c`. Level is the number of leading
// dots (0 for an absolute import). `import *` is rejected by the checker.
type ImportFrom struct {
	Level   int
	Module  string
	Aliases []Alias
	Line    token.Pos
}

func (n *ImportFrom) Pos() token.Pos { return n.Line }
func (*ImportFrom) stmtNode()        {}

// Pass is a no-op statement.
type Pass struct {
	Line token.Pos
}

func (n *Pass) Pos() token.Pos { return n.Line }
func (*Pass) stmtNode()        {}

// Assert is surface-only; desugars to:
//
//	If(test, [], [Raise(Call(Name('AssertionError'), [msg?]))])
type Assert struct {
	Test Expr
	Msg  Expr // nil if no message
	Line token.Pos
}

func (n *Assert) Pos() token.Pos { return n.Line }
func (*Assert) stmtNode()        {}
