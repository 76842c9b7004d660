// Package ast defines the abstract syntax tree produced by lang/parser and
// consumed by lang/checker, lang/desugar, lang/scope, and lang/compiler.
//
// The tree carries both surface-only nodes (FunctionDef, Lambda, Assert,
// ListComp) and a smaller core node set that
// lang/desugar rewrites the surface nodes down to. Keeping both in one
// package lets every later phase share a single Node/Stmt/Expr hierarchy
// instead of re-declaring it per phase.
package ast

import "github.com/mna/catkin/lang/token"

// Ctx records whether a Name/Attribute/Subscript/sequence expression is
// being read (Load) or assigned to (Store).
type Ctx uint8

const (
	Load Ctx = iota
	Store
)

func (c Ctx) String() string {
	if c == Store {
		return "store"
	}
	return "load"
}

// Node is the common interface of every AST node.
type Node interface {
	Pos() token.Pos
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// File is the root of a parsed source file.
type File struct {
	Name string // filename, used for error messages and code object metadata
	Body []Stmt
	Line token.Pos
}

func (f *File) Pos() token.Pos { return f.Line }

// Param is a single function parameter. The accepted subset has no
// defaults and no keyword-only parameters: every parameter is plain
// positional, with at most one *args and one **kwargs marker.
type Param struct {
	Name     string
	Line     token.Pos
	VarArg   bool // true for the single *args parameter, if any
	VarKwArg bool // true for the single **kwargs parameter, if any
}

// Alias is a single `import x` or `from m import x as y` binding.
type Alias struct {
	Name    string // dotted module name, or the imported attribute name
	AsName  string // binding name, empty if same as Name (or its first component)
	Line    token.Pos
}

// Keyword is a single `name=value` argument at a call site.
type Keyword struct {
	Name  string
	Value Expr
	Line  token.Pos
}

// Comprehension is one `for target in iter if cond...` clause of a list
// comprehension.
type Comprehension struct {
	Target Expr // Ident or Tuple/List of Idents, Store context
	Iter   Expr
	Ifs    []Expr
	Line   token.Pos
}
