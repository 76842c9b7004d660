// Package scope implements the two-pass lexical scope analyzer that the
// code generator relies on to classify every name reference as fast, deref
// (a cell or free variable), or dynamic (name) access.
package scope

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/mna/catkin/lang/ast"
)

// Access is the classification of a single name use within a scope.
type Access uint8

const (
	// Name is a dynamic lookup: locals, then globals, then builtins.
	Name Access = iota
	// Fast is a direct slot in the function's locals array.
	Fast
	// Deref is a cell dereference (the name is a cellvar or freevar).
	Deref
)

func (a Access) String() string {
	switch a {
	case Fast:
		return "fast"
	case Deref:
		return "deref"
	default:
		return "name"
	}
}

// Scope records the defs/uses of one function, class, or module body, and
// (after Analyze) the derived cellvars/freevars/derefvars the code
// generator needs to build the enclosing code object.
type Scope struct {
	node     ast.Node // *ast.File, *ast.Function, or *ast.ClassDef
	isFunc   bool     // false for class bodies and the module itself
	Children map[ast.Node]*Scope

	defs map[string]bool
	uses map[string]bool

	LocalDefs  map[string]bool // defs, for a function scope; empty for class/module
	Cellvars   []string        // ordered: names this scope defines that a descendant closes over
	Freevars   []string        // ordered: names this scope uses that an enclosing function defines
	Derefvars  []string        // Cellvars followed by Freevars
}

// Build runs both passes over file and returns its root Scope.
func Build(file *ast.File) *Scope {
	top := newScope(file, false, nil)
	top.collect(file.Body)
	top.analyze(nil)
	return top
}

func newScope(node ast.Node, isFunc bool, params []ast.Param) *Scope {
	s := &Scope{
		node:     node,
		isFunc:   isFunc,
		Children: map[ast.Node]*Scope{},
		defs:     map[string]bool{},
		uses:     map[string]bool{},
	}
	for _, p := range params {
		s.defs[p.Name] = true
	}
	return s
}

// collect is pass 1: it walks stmts without descending into nested function
// or class bodies (those get their own child Scope and are collected
// independently), recording every name def/use in this scope.
func (s *Scope) collect(stmts []ast.Stmt) {
	for _, st := range stmts {
		s.collectStmt(st)
	}
}

func (s *Scope) collectStmt(st ast.Stmt) {
	switch st := st.(type) {
	case *ast.Assign:
		for _, t := range st.Targets {
			s.collectExpr(t)
		}
		s.collectExpr(st.Value)
	case *ast.ExprStmt:
		s.collectExpr(st.X)
	case *ast.If:
		s.collectExpr(st.Test)
		s.collect(st.Then)
		s.collect(st.Else)
	case *ast.While:
		s.collectExpr(st.Test)
		s.collect(st.Body)
	case *ast.For:
		s.collectExpr(st.Target)
		s.collectExpr(st.Iter)
		s.collect(st.Body)
	case *ast.Return:
		if st.Value != nil {
			s.collectExpr(st.Value)
		}
	case *ast.Raise:
		s.collectExpr(st.Exc)
	case *ast.Import:
		for _, al := range st.Aliases {
			s.defs[importBinding(al)] = true
		}
	case *ast.ImportFrom:
		for _, al := range st.Aliases {
			name := al.AsName
			if name == "" {
				name = al.Name
			}
			s.defs[name] = true
		}
	case *ast.Pass:
		// no-op
	case *ast.ClassDef:
		s.defs[st.Name] = true
		for _, b := range st.Bases {
			s.collectExpr(b)
		}
		child := newScope(st, false, nil)
		s.Children[st] = child
		child.collect(st.Body)
	case *ast.Function:
		child := newScope(st, true, st.Params)
		s.Children[st] = child
		child.collect(st.Body)
	default:
		panic("scope: unhandled statement in core AST (did lang/desugar run?)")
	}
}

func importBinding(al ast.Alias) string {
	if al.AsName != "" {
		return al.AsName
	}
	name := al.Name
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

func (s *Scope) collectExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		if e.Ctx == ast.Store {
			s.defs[e.Name] = true
		} else {
			s.uses[e.Name] = true
		}
	case *ast.NameConstant, *ast.Num, *ast.Str, *ast.Bytes:
		// leaves
	case *ast.Call:
		s.collectExpr(e.Fn)
		for _, a := range e.Args {
			s.collectExpr(a)
		}
		for _, kw := range e.Kwargs {
			s.collectExpr(kw.Value)
		}
		if e.StarArg != nil {
			s.collectExpr(e.StarArg)
		}
		if e.KwArg != nil {
			s.collectExpr(e.KwArg)
		}
	case *ast.Attribute:
		s.collectExpr(e.X)
	case *ast.Subscript:
		s.collectExpr(e.X)
		s.collectExpr(e.Index)
	case *ast.BinOp:
		s.collectExpr(e.X)
		s.collectExpr(e.Y)
	case *ast.UnaryOp:
		s.collectExpr(e.X)
	case *ast.BoolOp:
		for _, v := range e.Values {
			s.collectExpr(v)
		}
	case *ast.Compare:
		s.collectExpr(e.X)
		s.collectExpr(e.Y)
	case *ast.ListExpr:
		for _, el := range e.Elts {
			s.collectExpr(el)
		}
	case *ast.TupleExpr:
		for _, el := range e.Elts {
			s.collectExpr(el)
		}
	case *ast.DictExpr:
		for i := range e.Keys {
			s.collectExpr(e.Keys[i])
			s.collectExpr(e.Values[i])
		}
	case *ast.IfExp:
		s.collectExpr(e.Test)
		s.collectExpr(e.Then)
		s.collectExpr(e.Else)
	case *ast.Function:
		child := newScope(e, true, e.Params)
		s.Children[e] = child
		child.collect(e.Body)
	default:
		panic("scope: unhandled expression in core AST (did lang/desugar run?)")
	}
}

// analyze is pass 2: recurse into children first (so their freevars are
// known), then derive this scope's cellvars/freevars/derefvars from
// parentDefs, the union of every enclosing function's local_defs.
func (s *Scope) analyze(parentDefs map[string]bool) {
	if s.isFunc {
		s.LocalDefs = s.defs
	} else {
		s.LocalDefs = map[string]bool{}
	}

	combined := unionNew(parentDefs, s.LocalDefs)
	childUses := map[string]bool{}
	for _, child := range s.Children {
		child.analyze(combined)
		for _, fv := range child.Freevars {
			childUses[fv] = true
		}
	}

	uses := unionNew(s.uses, childUses)
	s.Cellvars = sortedIntersect(childUses, s.LocalDefs)
	s.Freevars = sortedIntersect(uses, differenceNew(parentDefs, s.LocalDefs))
	s.Derefvars = append(append([]string{}, s.Cellvars...), s.Freevars...)
}

// Access classifies how name is accessed from this scope.
func (s *Scope) Access(name string) Access {
	for _, n := range s.Derefvars {
		if n == name {
			return Deref
		}
	}
	if s.LocalDefs[name] {
		return Fast
	}
	return Name
}

// CellIndex returns name's position in Derefvars, for LOAD_DEREF/
// STORE_DEREF/LOAD_CLOSURE argument encoding.
func (s *Scope) CellIndex(name string) int {
	for i, n := range s.Derefvars {
		if n == name {
			return i
		}
	}
	return -1
}

// ChildOf looks up the child Scope created for a nested Function or
// ClassDef node.
func (s *Scope) ChildOf(node ast.Node) *Scope { return s.Children[node] }

func unionNew(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func differenceNew(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a))
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	return out
}

// sortedIntersect returns the elements common to both sets, sorted, so
// derivation is deterministic across runs (the Python original relies on
// set-iteration order happening to be stable per-process; a stable sort
// gives the same determinism guarantee without relying on map order).
func sortedIntersect(a, b map[string]bool) []string {
	keys := maps.Keys(a)
	out := keys[:0]
	for _, k := range keys {
		if b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
