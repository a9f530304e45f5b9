// Package back lowers the program AST to C source for an ahead-of-time
// toolchain. Forward declarations are emitted for every function before
// any definition, so call order in the source never matters.
package back

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/mylang/my/compiler/ast"
)

type (
	Compiler struct{}

	// gen is the per-call emission state. It is owned by exactly one
	// CompileProgram call and never escapes it.
	gen struct {
		b     []byte
		depth int
	}
)

// ctypes maps source type names onto the C target. Unknown names fall
// back to int.
var ctypes = map[string]string{
	"int":    "int",
	"float":  "double",
	"string": "char*",
	"bool":   "bool",
	"void":   "void",
}

func New() *Compiler {
	return nil
}

// CompileProgram appends the C rendition of p to b and returns it.
// The same program always produces the same bytes.
func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *ast.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	g := &gen{b: b}

	g.line("#include <stdio.h>")
	g.line("#include <stdlib.h>")
	g.line("#include <string.h>")
	g.line("#include <stdbool.h>")
	g.line("")

	for _, f := range p.Funcs {
		g.b = signature(g.b, f)
		g.b = append(g.b, ";\n"...)
	}

	g.line("")

	for _, f := range p.Funcs {
		err = g.fun(f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}

		g.line("")
	}

	return g.b, nil
}

// signature appends "ret name(params)" with an explicit void for an
// empty parameter list, as C requires for prototypes.
func signature(b []byte, f *ast.FuncDecl) []byte {
	b = append(b, ctype(f.RetType)...)
	b = append(b, ' ')
	b = append(b, f.Name...)
	b = append(b, '(')

	if len(f.Params) == 0 {
		b = append(b, "void"...)
	}

	for i, p := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = append(b, ctype(p.Type)...)
		b = append(b, ' ')
		b = append(b, p.Name...)
	}

	b = append(b, ')')

	return b
}

func ctype(typ string) string {
	if c, ok := ctypes[typ]; ok {
		return c
	}

	return "int"
}

func (g *gen) fun(f *ast.FuncDecl) error {
	g.b = signature(g.b, f)
	g.b = append(g.b, " {\n"...)
	g.depth++

	for _, s := range f.Body {
		err := g.stmt(s)
		if err != nil {
			return err
		}
	}

	// A non-void function whose immediate statement list has no return
	// gets a fallback. Returns nested in inner blocks do not count.
	if f.RetType != "void" && !hasReturn(f.Body) {
		g.line("return 0;")
	}

	g.depth--
	g.line("}")

	return nil
}

func hasReturn(body []ast.Stmt) bool {
	for _, s := range body {
		if _, ok := s.(*ast.ReturnStmt); ok {
			return true
		}
	}

	return false
}

func (g *gen) stmt(s ast.Stmt) (err error) {
	switch s := s.(type) {
	case *ast.VarDecl:
		typ := ctype(s.Type)

		for _, d := range s.Decls {
			if d.Init == nil {
				g.line("%s %s;", typ, d.Name)
				continue
			}

			g.indent()
			g.b = hfmt.Appendf(g.b, "%s %s = ", typ, d.Name)

			g.b, err = appendExpr(g.b, d.Init)
			if err != nil {
				return errors.Wrap(err, "var %v", d.Name)
			}

			g.b = append(g.b, ";\n"...)
		}

	case *ast.ExprStmt:
		g.indent()

		g.b, err = appendExpr(g.b, s.X)
		if err != nil {
			return err
		}

		g.b = append(g.b, ";\n"...)

	case *ast.IfStmt:
		g.indent()
		g.b = append(g.b, "if ("...)

		g.b, err = appendExpr(g.b, s.Cond)
		if err != nil {
			return errors.Wrap(err, "if cond")
		}

		g.b = append(g.b, ") {\n"...)

		err = g.block(s.Then)
		if err != nil {
			return err
		}

		if s.Else != nil {
			g.line("} else {")

			err = g.block(s.Else)
			if err != nil {
				return err
			}
		}

		g.line("}")

	case *ast.WhileStmt:
		g.indent()
		g.b = append(g.b, "while ("...)

		g.b, err = appendExpr(g.b, s.Cond)
		if err != nil {
			return errors.Wrap(err, "while cond")
		}

		g.b = append(g.b, ") {\n"...)

		err = g.block(s.Body)
		if err != nil {
			return err
		}

		g.line("}")

	case *ast.ForStmt:
		return g.forStmt(s)

	case *ast.ReturnStmt:
		if s.X == nil {
			g.line("return;")
			break
		}

		g.indent()
		g.b = append(g.b, "return "...)

		g.b, err = appendExpr(g.b, s.X)
		if err != nil {
			return errors.Wrap(err, "return")
		}

		g.b = append(g.b, ";\n"...)

	default:
		return errors.New("unsupported statement: %T", s)
	}

	return nil
}

// forStmt lowers a for loop for a target that forbids declarations in the
// loop header. Declared loop variables are hoisted to separate
// declarations above the loop; their initializers stay in the header as
// plain assignments, so each one is still evaluated exactly once before
// the first condition check.
func (g *gen) forStmt(s *ast.ForStmt) (err error) {
	var header []byte

	switch init := s.Init.(type) {
	case nil:
	case *ast.VarDecl:
		typ := ctype(init.Type)

		for _, d := range init.Decls {
			g.line("%s %s;", typ, d.Name)

			if d.Init == nil {
				continue
			}

			if len(header) != 0 {
				header = append(header, ", "...)
			}

			header = hfmt.Appendf(header, "%s = ", d.Name)

			header, err = appendExpr(header, d.Init)
			if err != nil {
				return errors.Wrap(err, "for init %v", d.Name)
			}
		}
	case *ast.ExprStmt:
		header, err = appendExpr(header, init.X)
		if err != nil {
			return errors.Wrap(err, "for init")
		}
	default:
		return errors.New("unsupported for init: %T", s.Init)
	}

	g.indent()
	g.b = append(g.b, "for ("...)
	g.b = append(g.b, header...)
	g.b = append(g.b, "; "...)

	if s.Cond != nil {
		g.b, err = appendExpr(g.b, s.Cond)
		if err != nil {
			return errors.Wrap(err, "for cond")
		}
	} else {
		g.b = append(g.b, '1')
	}

	g.b = append(g.b, "; "...)

	if s.Post != nil {
		g.b, err = appendExpr(g.b, s.Post)
		if err != nil {
			return errors.Wrap(err, "for post")
		}
	}

	g.b = append(g.b, ") {\n"...)

	err = g.block(s.Body)
	if err != nil {
		return err
	}

	g.line("}")

	return nil
}

func (g *gen) block(body []ast.Stmt) error {
	g.depth++

	for _, s := range body {
		err := g.stmt(s)
		if err != nil {
			return err
		}
	}

	g.depth--

	return nil
}

func (g *gen) indent() {
	for i := 0; i < g.depth; i++ {
		g.b = append(g.b, "    "...)
	}
}

func (g *gen) line(format string, args ...interface{}) {
	if format != "" {
		g.indent()
		g.b = hfmt.Appendf(g.b, format, args...)
	}

	g.b = append(g.b, '\n')
}

// appendExpr appends the C form of e. Binary and unary expressions are
// fully parenthesized so the target's own precedence never matters.
func appendExpr(b []byte, e ast.Expr) (_ []byte, err error) {
	switch e := e.(type) {
	case *ast.Literal:
		return appendLiteral(b, e), nil

	case *ast.VarRef:
		return append(b, e.Name...), nil

	case *ast.AssignExpr:
		b = append(b, e.Name...)
		b = append(b, " = "...)

		return appendExpr(b, e.Value)

	case *ast.BinaryExpr:
		b = append(b, '(')

		b, err = appendExpr(b, e.Left)
		if err != nil {
			return nil, err
		}

		b = append(b, ' ')
		b = append(b, e.Op...)
		b = append(b, ' ')

		b, err = appendExpr(b, e.Right)
		if err != nil {
			return nil, err
		}

		return append(b, ')'), nil

	case *ast.UnaryExpr:
		b = append(b, '(')
		b = append(b, e.Op...)

		b, err = appendExpr(b, e.X)
		if err != nil {
			return nil, err
		}

		return append(b, ')'), nil

	case *ast.CallExpr:
		return appendCall(b, e)

	default:
		return nil, errors.New("unsupported expression: %T", e)
	}
}

func appendLiteral(b []byte, e *ast.Literal) []byte {
	switch e.Kind {
	case ast.StrLit:
		b = append(b, '"')
		b = appendCEscaped(b, e.Str)
		b = append(b, '"')
	case ast.BoolLit:
		if e.Bool {
			b = append(b, "true"...)
		} else {
			b = append(b, "false"...)
		}
	case ast.FloatLit:
		b = strconv.AppendFloat(b, e.Float, 'g', -1, 64)
	default:
		b = strconv.AppendInt(b, e.Int, 10)
	}

	return b
}

// appendCall lowers a function call. print and input are built-ins:
// print selects its format from the static literal kind of the single
// argument, defaulting to the integer format for anything that is not a
// literal. That is a syntactic heuristic, not a type system, and it is
// kept as such.
func appendCall(b []byte, e *ast.CallExpr) (_ []byte, err error) {
	switch e.Name {
	case "print":
		return appendPrint(b, e)
	case "input":
		return append(b, "getchar()"...), nil
	}

	b = append(b, e.Name...)
	b = append(b, '(')

	for i, a := range e.Args {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = appendExpr(b, a)
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", i)
		}
	}

	return append(b, ')'), nil
}

func appendPrint(b []byte, e *ast.CallExpr) (_ []byte, err error) {
	if len(e.Args) == 0 {
		return append(b, `printf("\n")`...), nil
	}

	arg := e.Args[0]

	var val []byte
	val, err = appendExpr(nil, arg)
	if err != nil {
		return nil, errors.Wrap(err, "print arg")
	}

	if lit, ok := arg.(*ast.Literal); ok {
		switch lit.Kind {
		case ast.StrLit:
			return hfmt.Appendf(b, `printf("%%s\n", %s)`, val), nil
		case ast.FloatLit:
			return hfmt.Appendf(b, `printf("%%f\n", %s)`, val), nil
		case ast.BoolLit:
			return hfmt.Appendf(b, `printf("%%s\n", %s ? "true" : "false")`, val), nil
		}
	}

	return hfmt.Appendf(b, `printf("%%d\n", %s)`, val), nil
}

// appendCEscaped escapes backslash, double quote and newline for a C
// string literal.
func appendCEscaped(b []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b = append(b, `\\`...)
		case '"':
			b = append(b, `\"`...)
		case '\n':
			b = append(b, `\n`...)
		default:
			b = append(b, s[i])
		}
	}

	return b
}
