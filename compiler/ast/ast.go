package ast

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// Program is the root of every parse: an ordered list of function
	// declarations. Order is preserved for emission, but forward
	// references between functions are always legal.
	Program struct {
		Funcs []*FuncDecl
	}

	FuncDecl struct {
		RetType string
		Name    string
		Params  []Param
		Body    []Stmt
	}

	Param struct {
		Type string
		Name string
	}

	// Stmt is implemented by all statement nodes.
	Stmt interface {
		stmtNode()
		String() string
	}

	// Expr is implemented by all expression nodes.
	Expr interface {
		exprNode()
		String() string
	}
)

// Statements.
type (
	// VarDecl declares one or more variables of a single type.
	//
	//	int a = 1, b, c = 2;
	VarDecl struct {
		Type  string
		Decls []Declarator
	}

	// Declarator is one (name, optional initializer) pair of a VarDecl.
	Declarator struct {
		Name string
		Init Expr // nil if absent
	}

	ExprStmt struct {
		X Expr
	}

	IfStmt struct {
		Cond Expr
		Then []Stmt
		Else []Stmt // nil if absent
	}

	WhileStmt struct {
		Cond Expr
		Body []Stmt
	}

	// ForStmt models for (init; cond; post) { body }.
	// Init is a *VarDecl or *ExprStmt; any clause may be nil.
	ForStmt struct {
		Init Stmt
		Cond Expr
		Post Expr
		Body []Stmt
	}

	ReturnStmt struct {
		X Expr // nil for a bare return
	}
)

// Expressions.
type (
	BinaryExpr struct {
		Op    string
		Left  Expr
		Right Expr
	}

	UnaryExpr struct {
		Op string
		X  Expr
	}

	// Literal is a constant with its lexical kind resolved by the parser.
	// Exactly one of the value fields is meaningful, selected by Kind.
	Literal struct {
		Kind  LitKind
		Int   int64
		Float float64
		Str   string
		Bool  bool
	}

	VarRef struct {
		Name string
	}

	// AssignExpr is an assignment usable as a sub-expression.
	AssignExpr struct {
		Name  string
		Value Expr
	}

	CallExpr struct {
		Name string
		Args []Expr
	}
)

type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StrLit
	BoolLit
)

func (*VarDecl) stmtNode()    {}
func (*ExprStmt) stmtNode()   {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}

func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*Literal) exprNode()    {}
func (*VarRef) exprNode()     {}
func (*AssignExpr) exprNode() {}
func (*CallExpr) exprNode()   {}

func (k LitKind) String() string {
	switch k {
	case IntLit:
		return "int"
	case FloatLit:
		return "float"
	case StrLit:
		return "string"
	case BoolLit:
		return "bool"
	}

	return fmt.Sprintf("LitKind(%d)", int(k))
}

func (p *Program) String() string {
	var b strings.Builder

	for _, f := range p.Funcs {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}

	return b.String()
}

func (f *FuncDecl) String() string {
	ps := make([]string, len(f.Params))
	for i, p := range f.Params {
		ps[i] = p.Type + " " + p.Name
	}

	return fmt.Sprintf("func %s %s(%s) {%d stmts}", f.RetType, f.Name, strings.Join(ps, ", "), len(f.Body))
}

func (d *VarDecl) String() string {
	ds := make([]string, len(d.Decls))
	for i, x := range d.Decls {
		if x.Init != nil {
			ds[i] = x.Name + " = " + x.Init.String()
		} else {
			ds[i] = x.Name
		}
	}

	return d.Type + " " + strings.Join(ds, ", ")
}

func (s *ExprStmt) String() string { return s.X.String() }

func (s *IfStmt) String() string {
	if s.Else != nil {
		return fmt.Sprintf("if %s {%d stmts} else {%d stmts}", s.Cond, len(s.Then), len(s.Else))
	}

	return fmt.Sprintf("if %s {%d stmts}", s.Cond, len(s.Then))
}

func (s *WhileStmt) String() string {
	return fmt.Sprintf("while %s {%d stmts}", s.Cond, len(s.Body))
}

func (s *ForStmt) String() string {
	init, cond, post := "", "", ""

	if s.Init != nil {
		init = s.Init.String()
	}
	if s.Cond != nil {
		cond = s.Cond.String()
	}
	if s.Post != nil {
		post = s.Post.String()
	}

	return fmt.Sprintf("for %s; %s; %s {%d stmts}", init, cond, post, len(s.Body))
}

func (s *ReturnStmt) String() string {
	if s.X == nil {
		return "return"
	}

	return "return " + s.X.String()
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", e.Op, e.X)
}

func (e *Literal) String() string {
	switch e.Kind {
	case IntLit:
		return strconv.FormatInt(e.Int, 10)
	case FloatLit:
		return strconv.FormatFloat(e.Float, 'g', -1, 64)
	case StrLit:
		return strconv.Quote(e.Str)
	case BoolLit:
		return strconv.FormatBool(e.Bool)
	}

	return fmt.Sprintf("Literal(%d)", int(e.Kind))
}

func (e *VarRef) String() string { return e.Name }

func (e *AssignExpr) String() string {
	return e.Name + " = " + e.Value.String()
}

func (e *CallExpr) String() string {
	as := make([]string, len(e.Args))
	for i, a := range e.Args {
		as[i] = a.String()
	}

	return e.Name + "(" + strings.Join(as, ", ") + ")"
}
