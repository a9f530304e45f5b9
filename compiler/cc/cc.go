// Package cc drives the external C toolchain. It is a thin process
// wrapper around the native backend's output; its failures are reported
// as ToolchainError and never mixed up with front-end errors.
package cc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// ToolchainError is a failed compiler invocation, with whatever the
// toolchain wrote to stderr.
type ToolchainError struct {
	Cmd    []string
	Stderr string
	Err    error
}

func (e *ToolchainError) Error() string {
	msg := fmt.Sprintf("toolchain: %v: %v", strings.Join(e.Cmd, " "), e.Err)

	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}

	return msg
}

func (e *ToolchainError) Unwrap() error { return e.Err }

// Build writes the C source next to the requested output name and
// invokes gcc on it. It returns the path of the produced executable.
func Build(ctx context.Context, csrc []byte, output string) (exe string, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "cc: build", "output", output)
	defer tr.Finish("err", &err)

	_, err = exec.LookPath("gcc")
	if err != nil {
		return "", errors.Wrap(err, "gcc not found (install gcc: apt install gcc / xcode-select --install)")
	}

	cfile := output + ".c"

	if len(csrc) == 0 || csrc[len(csrc)-1] != '\n' {
		csrc = append(csrc, '\n')
	}

	err = os.WriteFile(cfile, csrc, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "write %v", cfile)
	}

	tr.Printw("generated", "file", cfile, "size", len(csrc))

	exe = output
	if runtime.GOOS == "windows" {
		exe += ".exe"
	}

	args := []string{"gcc", "-std=c99", cfile, "-o", exe}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		return "", &ToolchainError{
			Cmd:    args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	tr.Printw("compiled", "exe", exe)

	return exe, nil
}
