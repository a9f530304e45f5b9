// Package front turns source text into the program AST: a scanner with
// ordered token rules and a recursive-descent parser that climbs operator
// precedence for expressions.
package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/mylang/my/compiler/ast"
)

type (
	// State accumulates source text for one compilation. Each compilation
	// gets its own State; nothing is shared between them.
	State struct {
		b []byte // all files concatenated

		files []file
	}

	file struct {
		Name string
		Base int
	}
)

func New() *State {
	return &State{}
}

func (s *State) AddFile(ctx context.Context, name string, text []byte) {
	f := file{
		Name: name,
		Base: len(s.b),
	}

	s.b = append(s.b, text...)

	s.files = append(s.files, f)
}

// Parse runs the whole front end over the accumulated text and returns
// the program AST. The first lexical or syntax error aborts it.
func (s *State) Parse(ctx context.Context) (*ast.Program, error) {
	tr := tlog.SpanFromContext(ctx)

	toks, err := Tokenize(ctx, s.b)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize")
	}

	tr.Printw("tokenized", "tokens", len(toks))

	p := newParser(toks)

	prog, err := p.parseProgram(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	tr.Printw("parsed", "funcs", len(prog.Funcs))

	return prog, nil
}

// Parse is a convenience for a single in-memory source.
func Parse(ctx context.Context, name string, text []byte) (*ast.Program, error) {
	s := New()
	s.AddFile(ctx, name, text)

	return s.Parse(ctx)
}
