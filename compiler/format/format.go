// Package format renders a parsed program back to canonical source text:
// four-space indentation, one declarator list per line, minimal
// parentheses.
package format

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/mylang/my/compiler/ast"
)

// binary operator precedence, used to keep only the parentheses that
// change parse structure.
var prec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

// Format appends canonical source text for p to b.
func Format(ctx context.Context, b []byte, p *ast.Program) (_ []byte, err error) {
	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatFunc(ctx, b, f, 0)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, f *ast.FuncDecl, d int) ([]byte, error) {
	b = app(b, d, "func %v %v(", f.RetType, f.Name)

	for i, p := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", p.Type, p.Name)
	}

	b = append(b, ") {\n"...)

	b, err := formatBlock(ctx, b, f.Body, d+1)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, stmts []ast.Stmt, d int) (_ []byte, err error) {
	for _, s := range stmts {
		b, err = formatStmt(ctx, b, s, d)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, s ast.Stmt, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.VarDecl:
		b = app(b, d, "")

		b, err = formatVarDecl(b, s)
		if err != nil {
			return nil, err
		}

		b = append(b, ";\n"...)

	case *ast.ExprStmt:
		b = app(b, d, "")

		b, err = formatExpr(b, s.X)
		if err != nil {
			return nil, err
		}

		b = append(b, ";\n"...)

	case *ast.IfStmt:
		b = app(b, d, "if (")

		b, err = formatExpr(b, s.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "if cond")
		}

		b = append(b, ") {\n"...)

		b, err = formatBlock(ctx, b, s.Then, d+1)
		if err != nil {
			return nil, err
		}

		if s.Else != nil {
			b = app(b, d, "} else {\n")

			b, err = formatBlock(ctx, b, s.Else, d+1)
			if err != nil {
				return nil, err
			}
		}

		b = app(b, d, "}\n")

	case *ast.WhileStmt:
		b = app(b, d, "while (")

		b, err = formatExpr(b, s.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "while cond")
		}

		b = append(b, ") {\n"...)

		b, err = formatBlock(ctx, b, s.Body, d+1)
		if err != nil {
			return nil, err
		}

		b = app(b, d, "}\n")

	case *ast.ForStmt:
		b = app(b, d, "for (")

		switch init := s.Init.(type) {
		case nil:
		case *ast.VarDecl:
			b, err = formatVarDecl(b, init)
		case *ast.ExprStmt:
			b, err = formatExpr(b, init.X)
		default:
			err = errors.New("unsupported for init: %T", s.Init)
		}
		if err != nil {
			return nil, errors.Wrap(err, "for init")
		}

		b = append(b, "; "...)

		if s.Cond != nil {
			b, err = formatExpr(b, s.Cond)
			if err != nil {
				return nil, errors.Wrap(err, "for cond")
			}
		}

		b = append(b, "; "...)

		if s.Post != nil {
			b, err = formatExpr(b, s.Post)
			if err != nil {
				return nil, errors.Wrap(err, "for post")
			}
		}

		b = append(b, ") {\n"...)

		b, err = formatBlock(ctx, b, s.Body, d+1)
		if err != nil {
			return nil, err
		}

		b = app(b, d, "}\n")

	case *ast.ReturnStmt:
		if s.X == nil {
			b = app(b, d, "return;\n")
			break
		}

		b = app(b, d, "return ")

		b, err = formatExpr(b, s.X)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		b = append(b, ";\n"...)

	default:
		return nil, errors.New("unsupported stmt: %T", s)
	}

	return b, nil
}

// formatVarDecl renders the declarator list without a terminator, so
// the same rendering serves both statement and for-header positions.
func formatVarDecl(b []byte, s *ast.VarDecl) (_ []byte, err error) {
	b = append(b, s.Type...)
	b = append(b, ' ')

	for i, x := range s.Decls {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = append(b, x.Name...)

		if x.Init == nil {
			continue
		}

		b = append(b, " = "...)

		b, err = formatExpr(b, x.Init)
		if err != nil {
			return nil, errors.Wrap(err, "var %v", x.Name)
		}
	}

	return b, nil
}

func formatExpr(b []byte, e ast.Expr) (_ []byte, err error) {
	switch e := e.(type) {
	case *ast.Literal:
		return formatLiteral(b, e), nil

	case *ast.VarRef:
		return append(b, e.Name...), nil

	case *ast.AssignExpr:
		b = append(b, e.Name...)
		b = append(b, " = "...)

		return formatExpr(b, e.Value)

	case *ast.BinaryExpr:
		p := prec[e.Op]

		b, err = formatChild(b, e.Left, p, false)
		if err != nil {
			return nil, err
		}

		b = append(b, ' ')
		b = append(b, e.Op...)
		b = append(b, ' ')

		return formatChild(b, e.Right, p, true)

	case *ast.UnaryExpr:
		b = append(b, e.Op...)

		return formatChild(b, e.X, prec["%"]+1, false)

	case *ast.CallExpr:
		b = append(b, e.Name...)
		b = append(b, '(')

		for i, a := range e.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(b, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		return append(b, ')'), nil

	default:
		return nil, errors.New("unsupported expr: %T", e)
	}
}

// formatChild parenthesizes a sub-expression only when re-parsing the
// plain form would bind it differently: a looser binary operator, an
// equal one on the right of a left-associative parent, or a nested
// assignment.
func formatChild(b []byte, e ast.Expr, parent int, right bool) (_ []byte, err error) {
	need := false

	switch e := e.(type) {
	case *ast.BinaryExpr:
		p := prec[e.Op]
		need = p < parent || p == parent && right
	case *ast.AssignExpr:
		need = true
	}

	if !need {
		return formatExpr(b, e)
	}

	b = append(b, '(')

	b, err = formatExpr(b, e)
	if err != nil {
		return nil, err
	}

	return append(b, ')'), nil
}

func formatLiteral(b []byte, e *ast.Literal) []byte {
	switch e.Kind {
	case ast.StrLit:
		b = append(b, '"')

		for i := 0; i < len(e.Str); i++ {
			switch c := e.Str[i]; c {
			case '\\':
				b = append(b, `\\`...)
			case '"':
				b = append(b, `\"`...)
			case '\n':
				b = append(b, `\n`...)
			case '\t':
				b = append(b, `\t`...)
			case '\r':
				b = append(b, `\r`...)
			case 0:
				b = append(b, `\0`...)
			default:
				b = append(b, c)
			}
		}

		b = append(b, '"')
	case ast.BoolLit:
		b = strconv.AppendBool(b, e.Bool)
	case ast.FloatLit:
		st := len(b)
		b = strconv.AppendFloat(b, e.Float, 'f', -1, 64)

		if !hasDot(b[st:]) {
			b = append(b, ".0"...)
		}
	default:
		b = strconv.AppendInt(b, e.Int, 10)
	}

	return b
}

func hasDot(b []byte) bool {
	for _, c := range b {
		if c == '.' {
			return true
		}
	}

	return false
}

func app(b []byte, d int, format string, args ...interface{}) []byte {
	for i := 0; i < d; i++ {
		b = append(b, "    "...)
	}

	if format != "" {
		b = hfmt.Appendf(b, format, args...)
	}

	return b
}
