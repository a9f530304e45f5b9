package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/mylang/my/compiler"
	"github.com/mylang/my/compiler/cc"
	"github.com/mylang/my/compiler/format"
	"github.com/mylang/my/compiler/front"
)

// exampleProgram is compiled when no source files are given.
const exampleProgram = `
// Example: factorial
func int factorial(int n) {
    if (n <= 1) {
        return 1;
    } else {
        int n1 = n - 1;
        int result = factorial(n1);
        return n * result;
    }
}

func int main() {
    int num = 5;
    int ans = factorial(num);
    print(ans);
    return 0;
}
`

func main() {
	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse source files and dump the AST",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	cCmd := &cli.Command{
		Name:        "c",
		Description: "emit native-target (C) text to stdout",
		Action:      cAct,
		Args:        cli.Args{},
	}

	pyCmd := &cli.Command{
		Name:        "py",
		Description: "emit scripting-target (Python) text to stdout",
		Action:      pyAct,
		Args:        cli.Args{},
	}

	buildCmd := &cli.Command{
		Name:        "build",
		Description: "emit C text and compile it to a native executable",
		Action:      buildAct,
		Args:        cli.Args{},
	}

	fmtCmd := &cli.Command{
		Name:        "fmt",
		Description: "reprint source files in canonical form to stdout",
		Action:      fmtAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "my",
		Description: "my is a compiler for the my language",
		Commands: []*cli.Command{
			parseCmd,
			fmtCmd,
			cCmd,
			pyCmd,
			buildCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	list, err := sources(c)
	if err != nil {
		return err
	}

	for _, s := range list {
		x, err := front.Parse(ctx, s.name, s.text)
		if err != nil {
			return errors.Wrap(err, "parse %v", s.name)
		}

		fmt.Printf("%v", x)
	}

	return nil
}

func fmtAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	list, err := sources(c)
	if err != nil {
		return err
	}

	for _, s := range list {
		x, err := front.Parse(ctx, s.name, s.text)
		if err != nil {
			return errors.Wrap(err, "parse %v", s.name)
		}

		b, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", s.name)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func cAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	list, err := sources(c)
	if err != nil {
		return err
	}

	for _, s := range list {
		obj, err := compiler.CompileNative(ctx, s.name, s.text)
		if err != nil {
			return errors.Wrap(err, "compile %v", s.name)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func pyAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	list, err := sources(c)
	if err != nil {
		return err
	}

	for _, s := range list {
		obj, err := compiler.CompileScript(ctx, s.name, s.text)
		if err != nil {
			return errors.Wrap(err, "compile %v", s.name)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func buildAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	list, err := sources(c)
	if err != nil {
		return err
	}

	for _, s := range list {
		obj, err := compiler.CompileNative(ctx, s.name, s.text)
		if err != nil {
			return errors.Wrap(err, "compile %v", s.name)
		}

		exe, err := cc.Build(ctx, obj, outputName(s.name))
		if err != nil {
			return errors.Wrap(err, "build %v", s.name)
		}

		fmt.Printf("built %v\n", exe)
	}

	return nil
}

type source struct {
	name string
	text []byte
}

// sources reads every file argument, or falls back to the built-in
// example when no files were given.
func sources(c *cli.Command) ([]source, error) {
	if len(c.Args) == 0 {
		fmt.Fprintln(os.Stderr, "no source given: compiling built-in example program")

		return []source{{name: "example.my", text: []byte(exampleProgram)}}, nil
	}

	var list []source

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return nil, errors.Wrap(err, "read %v", a)
		}

		list = append(list, source{name: a, text: text})
	}

	return list, nil
}

func outputName(src string) string {
	base := filepath.Base(src)

	if ext := filepath.Ext(base); ext != "" && base != ext {
		base = strings.TrimSuffix(base, ext)
	}

	if base == "" || base == "." {
		base = "program"
	}

	return base
}
