package compiler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylang/my/compiler/cc"
)

// TestRoundTripNative builds the factorial program with the real
// toolchain and checks the executable prints 120.
func TestRoundTripNative(t *testing.T) {
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skip("gcc not installed")
	}

	ctx := context.Background()

	obj, err := CompileNative(ctx, "factorial.my", []byte(factorialSrc))
	require.NoError(t, err)

	exe, err := cc.Build(ctx, obj, filepath.Join(t.TempDir(), "factorial"))
	require.NoError(t, err)

	out, err := exec.CommandContext(ctx, exe).Output()
	require.NoError(t, err)

	assert.Equal(t, "120\n", string(out))
}

// TestRoundTripScript runs the emitted Python module and checks it
// prints the same 120.
func TestRoundTripScript(t *testing.T) {
	py, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not installed")
	}

	ctx := context.Background()

	obj, err := CompileScript(ctx, "factorial.my", []byte(factorialSrc))
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "factorial.py")
	require.NoError(t, os.WriteFile(name, obj, 0o644))

	out, err := exec.CommandContext(ctx, py, name).Output()
	require.NoError(t, err)

	assert.Equal(t, "120\n", string(out))
}
