package ast

import "github.com/mna/catkin/lang/token"

// Ident is a bare name reference.
type Ident struct {
	Name    string
	Ctx     Ctx
	Binding any // not set by any phase; lang/scope keeps access modes on its Scope values
	Line    token.Pos
}

func (n *Ident) Pos() token.Pos { return n.Line }
func (*Ident) exprNode()        {}

// NameConstant is one of the three named constants None/True/False.
type NameConstant struct {
	Value any // nil, true, or false
	Line  token.Pos
}

func (n *NameConstant) Pos() token.Pos { return n.Line }
func (*NameConstant) exprNode()        {}

// Num is a numeric literal. Exactly one of IsFloat's branches is populated.
type Num struct {
	IsFloat bool
	Int     int64
	Float   float64
	Line    token.Pos
}

func (n *Num) Pos() token.Pos { return n.Line }
func (*Num) exprNode()        {}

// Str is a string literal.
type Str struct {
	Value string
	Line  token.Pos
}

func (n *Str) Pos() token.Pos { return n.Line }
func (*Str) exprNode()        {}

// Bytes is a bytes literal.
type Bytes struct {
	Value []byte
	Line  token.Pos
}

func (n *Bytes) Pos() token.Pos { return n.Line }
func (*Bytes) exprNode()        {}

// Call is `fn(args..., name=value..., *star, **kw)`. StarArg/KwArg are nil
// when the call site uses no `*`/`**` expansion.
type Call struct {
	Fn      Expr
	Args    []Expr
	Kwargs  []Keyword
	StarArg Expr
	KwArg   Expr
	Line    token.Pos
}

func (n *Call) Pos() token.Pos { return n.Line }
func (*Call) exprNode()        {}

// Attribute is `x.attr`.
type Attribute struct {
	X    Expr
	Attr string
	Ctx  Ctx
	Line token.Pos
}

func (n *Attribute) Pos() token.Pos { return n.Line }
func (*Attribute) exprNode()        {}

// Subscript is `x[index]`, a single simple index (no slices).
type Subscript struct {
	X     Expr
	Index Expr
	Ctx   Ctx
	Line  token.Pos
}

func (n *Subscript) Pos() token.Pos { return n.Line }
func (*Subscript) exprNode()        {}

// BinOp is a binary arithmetic/bitwise operation.
type BinOp struct {
	X, Y Expr
	Op   token.Token
	Line token.Pos
}

func (n *BinOp) Pos() token.Pos { return n.Line }
func (*BinOp) exprNode()        {}

// UnaryOp is a unary operation: +x, -x, ~x, not x.
type UnaryOp struct {
	X    Expr
	Op   token.Token
	Line token.Pos
}

func (n *UnaryOp) Pos() token.Pos { return n.Line }
func (*UnaryOp) exprNode()        {}

// BoolOp is `a and b and c...` or `a or b or c...`.
type BoolOp struct {
	Op     token.Token // AND or OR
	Values []Expr
	Line   token.Pos
}

func (n *BoolOp) Pos() token.Pos { return n.Line }
func (*BoolOp) exprNode()        {}

// Compare is a single comparison `x op y`. Chained comparisons like
// `a < b < c` are not part of the accepted subset; each comparison always
// produces exactly one boolean.
type Compare struct {
	X, Y Expr
	Op   token.Token
	Line token.Pos
}

func (n *Compare) Pos() token.Pos { return n.Line }
func (*Compare) exprNode()        {}

// ListExpr is `[elts...]`.
type ListExpr struct {
	Elts []Expr
	Ctx  Ctx
	Line token.Pos
}

func (n *ListExpr) Pos() token.Pos { return n.Line }
func (*ListExpr) exprNode()        {}

// TupleExpr is `(elts...)` or a bare `elts...` in assignment-target
// position.
type TupleExpr struct {
	Elts []Expr
	Ctx  Ctx
	Line token.Pos
}

func (n *TupleExpr) Pos() token.Pos { return n.Line }
func (*TupleExpr) exprNode()        {}

// DictExpr is `{k: v, ...}`.
type DictExpr struct {
	Keys   []Expr
	Values []Expr
	Line   token.Pos
}

func (n *DictExpr) Pos() token.Pos { return n.Line }
func (*DictExpr) exprNode()        {}

// IfExp is the conditional expression `then if test else els`.
type IfExp struct {
	Test, Then, Else Expr
	Line             token.Pos
}

func (n *IfExp) Pos() token.Pos { return n.Line }
func (*IfExp) exprNode()        {}

// Lambda is surface-only; desugars to Function('<lambda>', params,
// [Return(body)]).
type Lambda struct {
	Params []Param
	Body   Expr
	Line   token.Pos
}

func (n *Lambda) Pos() token.Pos { return n.Line }
func (*Lambda) exprNode()        {}

// ListComp is surface-only; desugars to an immediately-invoked function
// that builds and returns a list via repeated .append calls.
type ListComp struct {
	Elt        Expr
	Generators []Comprehension
	Line       token.Pos
}

func (n *ListComp) Pos() token.Pos { return n.Line }
func (*ListComp) exprNode()        {}
