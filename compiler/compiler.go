package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/mylang/my/compiler/back"
	"github.com/mylang/my/compiler/front"
	"github.com/mylang/my/compiler/pygen"
)

// CompileNativeFile compiles one source file to native-target (C) text.
func CompileNativeFile(ctx context.Context, name string) ([]byte, error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return CompileNative(ctx, name, text)
}

// CompileScriptFile compiles one source file to scripting-target
// (Python) text.
func CompileScriptFile(ctx context.Context, name string) ([]byte, error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return CompileScript(ctx, name, text)
}

// CompileNative runs the front end over text and lowers the program for
// the native target. The pipeline is strictly one-directional; the first
// error aborts it.
func CompileNative(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	prog, err := front.Parse(ctx, name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	c := back.New()

	obj, err = c.CompileProgram(ctx, nil, prog)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return obj, nil
}

// CompileScript is CompileNative's sibling for the scripting target.
// Both consume the same AST; neither mutates it.
func CompileScript(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	prog, err := front.Parse(ctx, name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	c := pygen.New()

	obj, err = c.CompileProgram(ctx, nil, prog)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return obj, nil
}

func readFile(ctx context.Context, name string) ([]byte, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return text, nil
}
