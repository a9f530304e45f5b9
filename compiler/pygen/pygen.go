// Package pygen lowers the program AST to Python for a dynamically-typed
// runtime. It consumes the same AST as the native backend and adds no
// type inference of its own: every lowering decision is made from the
// node shapes alone.
package pygen

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

	gen struct {
		b     []byte
		depth int
	}
)

// zero values for declared-but-uninitialized variables, keyed by the
// declared type name. Unknown names default to 0 like the native
// backend's type table does.
var zeroes = map[string]string{
	"int":    "0",
	"float":  "0.0",
	"string": `""`,
	"bool":   "False",
}

func New() *Compiler {
	return nil
}

// CompileProgram appends the Python rendition of p to b and returns it.
func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *ast.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "pygen: compile program", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	g := &gen{b: b}

	g.line("import sys")
	g.line("")

	hasMain := false

	for _, f := range p.Funcs {
		err = g.fun(f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}

		g.line("")

		if f.Name == "main" {
			hasMain = true
		}
	}

	if hasMain {
		g.line(`if __name__ == "__main__":`)
		g.depth++
		g.line("main()")
		g.depth--
	}

	return g.b, nil
}

func (g *gen) fun(f *ast.FuncDecl) error {
	g.indent()
	g.b = append(g.b, "def "...)
	g.b = append(g.b, f.Name...)
	g.b = append(g.b, '(')

	for i, p := range f.Params {
		if i != 0 {
			g.b = append(g.b, ", "...)
		}

		g.b = append(g.b, p.Name...)
	}

	g.b = append(g.b, "):\n"...)

	return g.block(f.Body)
}

// block emits an indented suite, padding an empty one with pass.
func (g *gen) block(body []ast.Stmt) error {
	g.depth++
	defer func() { g.depth-- }()

	if len(body) == 0 {
		g.line("pass")
		return nil
	}

	for _, s := range body {
		err := g.stmt(s)
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *gen) stmt(s ast.Stmt) (err error) {
	switch s := s.(type) {
	case *ast.VarDecl:
		for _, d := range s.Decls {
			err = g.declare(s.Type, d)
			if err != nil {
				return err
			}
		}

	case *ast.ExprStmt:
		return g.exprStmt(s.X)

	case *ast.IfStmt:
		g.indent()
		g.b = append(g.b, "if "...)

		g.b, err = appendExpr(g.b, s.Cond)
		if err != nil {
			return errors.Wrap(err, "if cond")
		}

		g.b = append(g.b, ":\n"...)

		err = g.block(s.Then)
		if err != nil {
			return err
		}

		if s.Else != nil {
			g.line("else:")

			err = g.block(s.Else)
			if err != nil {
				return err
			}
		}

	case *ast.WhileStmt:
		g.indent()
		g.b = append(g.b, "while "...)

		g.b, err = appendExpr(g.b, s.Cond)
		if err != nil {
			return errors.Wrap(err, "while cond")
		}

		g.b = append(g.b, ":\n"...)

		return g.block(s.Body)

	case *ast.ForStmt:
		return g.forStmt(s)

	case *ast.ReturnStmt:
		if s.X == nil {
			g.line("return")
			break
		}

		g.indent()
		g.b = append(g.b, "return "...)

		g.b, err = appendExpr(g.b, s.X)
		if err != nil {
			return errors.Wrap(err, "return")
		}

		g.b = append(g.b, '\n')

	default:
		return errors.New("unsupported statement: %T", s)
	}

	return nil
}

func (g *gen) declare(typ string, d ast.Declarator) (err error) {
	g.indent()
	g.b = append(g.b, d.Name...)
	g.b = append(g.b, " = "...)

	if d.Init == nil {
		z, ok := zeroes[typ]
		if !ok {
			z = "0"
		}

		g.b = append(g.b, z...)
		g.b = append(g.b, '\n')

		return nil
	}

	g.b, err = appendExpr(g.b, d.Init)
	if err != nil {
		return errors.Wrap(err, "var %v", d.Name)
	}

	g.b = append(g.b, '\n')

	return nil
}

// exprStmt emits an expression used as a statement. A top-level
// assignment becomes a plain assignment statement; everything else is
// emitted as-is, assignments nested deeper lowering to walrus form.
func (g *gen) exprStmt(x ast.Expr) (err error) {
	if a, ok := x.(*ast.AssignExpr); ok {
		g.indent()
		g.b = append(g.b, a.Name...)
		g.b = append(g.b, " = "...)

		g.b, err = appendExpr(g.b, a.Value)
		if err != nil {
			return errors.Wrap(err, "assign %v", a.Name)
		}

		g.b = append(g.b, '\n')

		return nil
	}

	g.indent()

	g.b, err = appendExpr(g.b, x)
	if err != nil {
		return err
	}

	g.b = append(g.b, '\n')

	return nil
}

// forStmt lowers the C-style loop to init statements, a while loop and
// the post expression as the last body statement. Initializers run once
// before the first condition check, same as the native lowering.
func (g *gen) forStmt(s *ast.ForStmt) (err error) {
	switch init := s.Init.(type) {
	case nil:
	case *ast.VarDecl:
		for _, d := range init.Decls {
			err = g.declare(init.Type, d)
			if err != nil {
				return errors.Wrap(err, "for init")
			}
		}
	case *ast.ExprStmt:
		err = g.exprStmt(init.X)
		if err != nil {
			return errors.Wrap(err, "for init")
		}
	default:
		return errors.New("unsupported for init: %T", s.Init)
	}

	g.indent()
	g.b = append(g.b, "while "...)

	if s.Cond != nil {
		g.b, err = appendExpr(g.b, s.Cond)
		if err != nil {
			return errors.Wrap(err, "for cond")
		}
	} else {
		g.b = append(g.b, "True"...)
	}

	g.b = append(g.b, ":\n"...)

	g.depth++

	if len(s.Body) == 0 && s.Post == nil {
		g.line("pass")
	}

	for _, st := range s.Body {
		err = g.stmt(st)
		if err != nil {
			g.depth--
			return err
		}
	}

	if s.Post != nil {
		err = g.exprStmt(s.Post)
		if err != nil {
			g.depth--
			return errors.Wrap(err, "for post")
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

func appendExpr(b []byte, e ast.Expr) (_ []byte, err error) {
	switch e := e.(type) {
	case *ast.Literal:
		return appendLiteral(b, e), nil

	case *ast.VarRef:
		return append(b, e.Name...), nil

	case *ast.AssignExpr:
		// nested assignment: walrus keeps it usable as a value
		b = append(b, '(')
		b = append(b, e.Name...)
		b = append(b, " := "...)

		b, err = appendExpr(b, e.Value)
		if err != nil {
			return nil, err
		}

		return append(b, ')'), nil

	case *ast.BinaryExpr:
		b = append(b, '(')

		b, err = appendExpr(b, e.Left)
		if err != nil {
			return nil, err
		}

		b = append(b, ' ')
		b = append(b, pyop(e.Op)...)
		b = append(b, ' ')

		b, err = appendExpr(b, e.Right)
		if err != nil {
			return nil, err
		}

		return append(b, ')'), nil

	case *ast.UnaryExpr:
		b = append(b, '(')

		if e.Op == "!" {
			b = append(b, "not "...)
		} else {
			b = append(b, e.Op...)
		}

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

func pyop(op string) string {
	switch op {
	case "&&":
		return "and"
	case "||":
		return "or"
	}

	return op
}

func appendLiteral(b []byte, e *ast.Literal) []byte {
	switch e.Kind {
	case ast.StrLit:
		b = append(b, '"')
		b = appendPyEscaped(b, e.Str)
		b = append(b, '"')
	case ast.BoolLit:
		if e.Bool {
			b = append(b, "True"...)
		} else {
			b = append(b, "False"...)
		}
	case ast.FloatLit:
		b = strconv.AppendFloat(b, e.Float, 'g', -1, 64)
	default:
		b = strconv.AppendInt(b, e.Int, 10)
	}

	return b
}

func appendCall(b []byte, e *ast.CallExpr) (_ []byte, err error) {
	switch e.Name {
	case "print":
		return appendPrint(b, e)
	case "input":
		return append(b, "sys.stdin.read(1)"...), nil
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

// appendPrint keeps the output text identical to the native target: a
// bare call prints one newline, a boolean literal argument prints the
// lowercase true/false the C side produces, and a float literal prints
// with the six fractional digits of C's %f.
func appendPrint(b []byte, e *ast.CallExpr) (_ []byte, err error) {
	if len(e.Args) == 0 {
		return append(b, "print()"...), nil
	}

	arg := e.Args[0]

	if lit, ok := arg.(*ast.Literal); ok {
		switch lit.Kind {
		case ast.BoolLit:
			if lit.Bool {
				return append(b, `print("true")`...), nil
			}

			return append(b, `print("false")`...), nil

		case ast.FloatLit:
			b = append(b, `print("`...)
			b = strconv.AppendFloat(b, lit.Float, 'f', 6, 64)

			return append(b, `")`...), nil
		}
	}

	b = append(b, "print("...)

	b, err = appendExpr(b, arg)
	if err != nil {
		return nil, errors.Wrap(err, "print arg")
	}

	return append(b, ')'), nil
}

func appendPyEscaped(b []byte, s string) []byte {
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
