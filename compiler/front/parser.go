package front

import (
	"context"
	"fmt"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/mylang/my/compiler/ast"
)

type (
	// parser consumes the token sequence strictly left to right with one
	// token of lookahead and builds the program AST.
	parser struct {
		toks []Token
		pos  int

		// binary operator precedence, fixed at construction
		prec map[string]int
	}

	// UnexpectedError is a syntax error: what was found and what the
	// grammar required at that point.
	UnexpectedError struct {
		Got  Token
		Want string
	}
)

// unaryPrec binds prefix + - ! tighter than every binary operator.
// It is deliberately a level above the densest entry of the precedence
// table rather than a table entry of its own.
const unaryPrec = 7

func (e UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected token %v, want %v", e.Got, e.Want)
}

func newParser(toks []Token) *parser {
	return &parser{
		toks: toks,
		prec: map[string]int{
			"||": 1,
			"&&": 2,
			"==": 3, "!=": 3,
			"<": 4, ">": 4, "<=": 4, ">=": 4,
			"+": 5, "-": 5,
			"*": 6, "/": 6, "%": 6,
		},
	}
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}

	return t
}

func (p *parser) expect(k Kind) (Token, error) {
	t := p.next()
	if t.Kind != k {
		return t, UnexpectedError{Got: t, Want: k.String()}
	}

	return t, nil
}

// expectOp consumes an Op token with the exact lexeme.
func (p *parser) expectOp(lex string) error {
	t := p.next()
	if t.Kind != Op || t.Lexeme != lex {
		return UnexpectedError{Got: t, Want: strconv.Quote(lex)}
	}

	return nil
}

// peekOp reports whether the lookahead is the given operator without
// consuming it.
func (p *parser) peekOp(lex string) bool {
	t := p.peek()
	return t.Kind == Op && t.Lexeme == lex
}

// expectType consumes a primitive type keyword (void included).
func (p *parser) expectType() (string, error) {
	t := p.peek()
	if !typeKind(t.Kind) {
		return "", UnexpectedError{Got: t, Want: "type"}
	}

	return p.next().Lexeme, nil
}

func (p *parser) parseProgram(ctx context.Context) (*ast.Program, error) {
	prog := &ast.Program{}

	for p.peek().Kind != EOF {
		f, err := p.parseFunc(ctx)
		if err != nil {
			return nil, err
		}

		prog.Funcs = append(prog.Funcs, f)

		if tr := tlog.SpanFromContext(ctx); tr.If("funcs") {
			tr.Printw("parsed func", "name", f.Name, "ret", f.RetType, "params", len(f.Params), "stmts", len(f.Body))
		}
	}

	return prog, nil
}

// parseFunc parses: func <type> <name> ( [<type> <name>, ...] ) { <stmts> }
func (p *parser) parseFunc(ctx context.Context) (f *ast.FuncDecl, err error) {
	_, err = p.expect(KwFunc)
	if err != nil {
		return nil, err
	}

	ret, err := p.expectType()
	if err != nil {
		return nil, errors.Wrap(err, "return type")
	}

	name, err := p.expect(Ident)
	if err != nil {
		return nil, errors.Wrap(err, "func name")
	}

	err = p.expectOp("(")
	if err != nil {
		return nil, errors.Wrap(err, "func %v", name.Lexeme)
	}

	f = &ast.FuncDecl{
		RetType: ret,
		Name:    name.Lexeme,
	}

	if !p.peekOp(")") {
		for {
			typ, err := p.expectType()
			if err != nil {
				return nil, errors.Wrap(err, "func %v: param type", f.Name)
			}

			pn, err := p.expect(Ident)
			if err != nil {
				return nil, errors.Wrap(err, "func %v: param name", f.Name)
			}

			f.Params = append(f.Params, ast.Param{Type: typ, Name: pn.Lexeme})

			if p.peekOp(",") {
				p.next()
				continue
			}

			break
		}
	}

	err = p.expectOp(")")
	if err != nil {
		return nil, errors.Wrap(err, "func %v", f.Name)
	}

	err = p.expectOp("{")
	if err != nil {
		return nil, errors.Wrap(err, "func %v", f.Name)
	}

	f.Body, err = p.parseBlock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", f.Name)
	}

	return f, nil
}

// parseBlock parses statements until the closing brace, consuming it.
func (p *parser) parseBlock(ctx context.Context) (stmts []ast.Stmt, err error) {
	for {
		if p.peekOp("}") {
			p.next()
			break
		}

		if p.peek().Kind == EOF {
			return nil, UnexpectedError{Got: p.peek(), Want: `"}"`}
		}

		s, err := p.parseStmt(ctx)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)
	}

	return stmts, nil
}

func (p *parser) parseStmt(ctx context.Context) (ast.Stmt, error) {
	switch t := p.peek(); t.Kind {
	case KwInt, KwFloat, KwString, KwBool:
		return p.parseVarDecl(ctx)
	case KwIf:
		return p.parseIf(ctx)
	case KwWhile:
		return p.parseWhile(ctx)
	case KwFor:
		return p.parseFor(ctx)
	case KwReturn:
		p.next()

		if p.peekOp(";") {
			p.next()
			return &ast.ReturnStmt{}, nil
		}

		x, err := p.parseExpr(ctx, 1)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		err = p.expectOp(";")
		if err != nil {
			return nil, err
		}

		return &ast.ReturnStmt{X: x}, nil
	}

	x, err := p.parseExpr(ctx, 1)
	if err != nil {
		return nil, err
	}

	err = p.expectOp(";")
	if err != nil {
		return nil, err
	}

	return &ast.ExprStmt{X: x}, nil
}

// parseVarDecl parses: <type> <name> [= expr] [, <name> [= expr]]* ;
// The terminator is consumed here, which is what lets a for-loop init
// clause route through this path without a second terminator.
func (p *parser) parseVarDecl(ctx context.Context) (*ast.VarDecl, error) {
	typ, err := p.expectType()
	if err != nil {
		return nil, err
	}

	d := &ast.VarDecl{Type: typ}

	for {
		name, err := p.expect(Ident)
		if err != nil {
			return nil, errors.Wrap(err, "var name")
		}

		var init ast.Expr
		if p.peekOp("=") {
			p.next()

			init, err = p.parseExpr(ctx, 1)
			if err != nil {
				return nil, errors.Wrap(err, "var %v init", name.Lexeme)
			}
		}

		d.Decls = append(d.Decls, ast.Declarator{Name: name.Lexeme, Init: init})

		if p.peekOp(",") {
			p.next()
			continue
		}

		break
	}

	err = p.expectOp(";")
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (p *parser) parseIf(ctx context.Context) (*ast.IfStmt, error) {
	p.next() // if

	err := p.expectOp("(")
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr(ctx, 1)
	if err != nil {
		return nil, errors.Wrap(err, "if cond")
	}

	err = p.expectOp(")")
	if err != nil {
		return nil, err
	}

	err = p.expectOp("{")
	if err != nil {
		return nil, err
	}

	s := &ast.IfStmt{Cond: cond}

	s.Then, err = p.parseBlock(ctx)
	if err != nil {
		return nil, err
	}

	if p.peek().Kind == KwElse {
		p.next()

		err = p.expectOp("{")
		if err != nil {
			return nil, err
		}

		s.Else, err = p.parseBlock(ctx)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (p *parser) parseWhile(ctx context.Context) (*ast.WhileStmt, error) {
	p.next() // while

	err := p.expectOp("(")
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr(ctx, 1)
	if err != nil {
		return nil, errors.Wrap(err, "while cond")
	}

	err = p.expectOp(")")
	if err != nil {
		return nil, err
	}

	err = p.expectOp("{")
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock(ctx)
	if err != nil {
		return nil, err
	}

	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

// parseFor parses: for (init; cond; post) { body } with every clause
// optional. A declaration init consumes its own terminator.
func (p *parser) parseFor(ctx context.Context) (*ast.ForStmt, error) {
	p.next() // for

	err := p.expectOp("(")
	if err != nil {
		return nil, err
	}

	s := &ast.ForStmt{}

	switch t := p.peek(); {
	case t.Kind == Op && t.Lexeme == ";":
		p.next()
	case t.Kind == KwInt || t.Kind == KwFloat || t.Kind == KwString || t.Kind == KwBool:
		s.Init, err = p.parseVarDecl(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "for init")
		}
	default:
		x, err := p.parseExpr(ctx, 1)
		if err != nil {
			return nil, errors.Wrap(err, "for init")
		}

		err = p.expectOp(";")
		if err != nil {
			return nil, err
		}

		s.Init = &ast.ExprStmt{X: x}
	}

	if !p.peekOp(";") {
		s.Cond, err = p.parseExpr(ctx, 1)
		if err != nil {
			return nil, errors.Wrap(err, "for cond")
		}
	}

	err = p.expectOp(";")
	if err != nil {
		return nil, err
	}

	if !p.peekOp(")") {
		s.Post, err = p.parseExpr(ctx, 1)
		if err != nil {
			return nil, errors.Wrap(err, "for post")
		}
	}

	err = p.expectOp(")")
	if err != nil {
		return nil, err
	}

	err = p.expectOp("{")
	if err != nil {
		return nil, err
	}

	s.Body, err = p.parseBlock(ctx)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// parseExpr climbs precedence: a leading unary among + - ! takes its
// operand at unaryPrec, then binary operators at or above min are
// absorbed left to right, the right operand parsed at prec(op)+1 so that
// equal-precedence operators chain leftward.
func (p *parser) parseExpr(ctx context.Context, min int) (left ast.Expr, err error) {
	if tr := tlog.SpanFromContext(ctx); tr.If("expr") {
		tr.Printw("parse expr", "min", min, "tok", p.peek(), "from", loc.Callers(1, 2))
	}

	if t := p.peek(); t.Kind == Op && (t.Lexeme == "+" || t.Lexeme == "-" || t.Lexeme == "!") {
		p.next()

		x, err := p.parseExpr(ctx, unaryPrec)
		if err != nil {
			return nil, errors.Wrap(err, "unary %v", t.Lexeme)
		}

		left = &ast.UnaryExpr{Op: t.Lexeme, X: x}
	} else {
		left, err = p.parsePrimary(ctx)
		if err != nil {
			return nil, err
		}
	}

	for {
		t := p.peek()
		if t.Kind != Op {
			break
		}

		prec, ok := p.prec[t.Lexeme]
		if !ok || prec < min {
			break
		}

		p.next()

		right, err := p.parseExpr(ctx, prec+1)
		if err != nil {
			return nil, errors.Wrap(err, "operator %v", t.Lexeme)
		}

		left = &ast.BinaryExpr{Op: t.Lexeme, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parsePrimary(ctx context.Context) (ast.Expr, error) {
	switch t := p.peek(); t.Kind {
	case Number:
		p.next()
		return numberLit(t.Lexeme)

	case Str:
		p.next()

		v, err := decodeString(t.Lexeme)
		if err != nil {
			return nil, errors.Wrap(err, "string literal")
		}

		return &ast.Literal{Kind: ast.StrLit, Str: v}, nil

	case KwTrue, KwFalse:
		p.next()
		return &ast.Literal{Kind: ast.BoolLit, Bool: t.Kind == KwTrue}, nil

	case Ident, KwInput:
		// input is a keyword lexically but behaves as a callable name.
		p.next()
		name := t.Lexeme

		if p.peekOp("(") {
			p.next()

			c := &ast.CallExpr{Name: name}

			if !p.peekOp(")") {
				for {
					a, err := p.parseExpr(ctx, 1)
					if err != nil {
						return nil, errors.Wrap(err, "call %v arg", name)
					}

					c.Args = append(c.Args, a)

					if p.peekOp(",") {
						p.next()
						continue
					}

					break
				}
			}

			err := p.expectOp(")")
			if err != nil {
				return nil, err
			}

			return c, nil
		}

		if p.peekOp("=") {
			p.next()

			v, err := p.parseExpr(ctx, 1)
			if err != nil {
				return nil, errors.Wrap(err, "assign %v", name)
			}

			return &ast.AssignExpr{Name: name, Value: v}, nil
		}

		return &ast.VarRef{Name: name}, nil
	}

	if p.peekOp("(") {
		p.next()

		x, err := p.parseExpr(ctx, 1)
		if err != nil {
			return nil, err
		}

		err = p.expectOp(")")
		if err != nil {
			return nil, err
		}

		return x, nil
	}

	return nil, UnexpectedError{Got: p.peek(), Want: "expression"}
}

// numberLit tells integers and floats apart by the decimal point alone.
func numberLit(lex string) (ast.Expr, error) {
	for i := 0; i < len(lex); i++ {
		if lex[i] != '.' {
			continue
		}

		v, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse float")
		}

		return &ast.Literal{Kind: ast.FloatLit, Float: v}, nil
	}

	v, err := strconv.ParseInt(lex, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse int")
	}

	return &ast.Literal{Kind: ast.IntLit, Int: v}, nil
}

// decodeString strips the quotes and resolves backslash escapes.
// Unknown escapes keep the backslash.
func decodeString(lex string) (string, error) {
	if len(lex) < 2 || lex[0] != '"' || lex[len(lex)-1] != '"' {
		return "", errors.New("malformed string literal: %q", lex)
	}

	in := lex[1 : len(lex)-1]
	out := make([]byte, 0, len(in))

	for i := 0; i < len(in); i++ {
		c := in[i]
		if c != '\\' || i+1 == len(in) {
			out = append(out, c)
			continue
		}

		i++

		switch in[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		case '\\', '"', '\'':
			out = append(out, in[i])
		default:
			out = append(out, '\\', in[i])
		}
	}

	return string(out), nil
}
