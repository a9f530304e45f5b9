package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylang/my/compiler/front"
)

const factorialSrc = `
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

func TestCompileNative(t *testing.T) {
	ctx := context.Background()

	obj, err := CompileNative(ctx, "factorial.my", []byte(factorialSrc))
	require.NoError(t, err)

	code := string(obj)
	assert.Contains(t, code, "int factorial(int n);")
	assert.Contains(t, code, "int main(void) {")
	assert.Contains(t, code, `printf("%d\n", ans);`)
}

func TestCompileScript(t *testing.T) {
	ctx := context.Background()

	obj, err := CompileScript(ctx, "factorial.my", []byte(factorialSrc))
	require.NoError(t, err)

	code := string(obj)
	assert.Contains(t, code, "def factorial(n):")
	assert.Contains(t, code, "print(ans)")
	assert.Contains(t, code, `if __name__ == "__main__":`)
}

func TestBothTargetsDeterministic(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c, err := CompileNative(ctx, "factorial.my", []byte(factorialSrc))
		require.NoError(t, err)

		p, err := CompileScript(ctx, "factorial.my", []byte(factorialSrc))
		require.NoError(t, err)

		c2, err := CompileNative(ctx, "factorial.my", []byte(factorialSrc))
		require.NoError(t, err)

		p2, err := CompileScript(ctx, "factorial.my", []byte(factorialSrc))
		require.NoError(t, err)

		assert.True(t, bytes.Equal(c, c2))
		assert.True(t, bytes.Equal(p, p2))
	}
}

func TestConcurrentCompilations(t *testing.T) {
	ctx := context.Background()

	want, err := CompileNative(ctx, "factorial.my", []byte(factorialSrc))
	require.NoError(t, err)

	done := make(chan []byte, 8)

	for i := 0; i < 8; i++ {
		go func() {
			obj, err := CompileNative(ctx, "factorial.my", []byte(factorialSrc))
			if err != nil {
				done <- nil
				return
			}

			done <- obj
		}()
	}

	for i := 0; i < 8; i++ {
		obj := <-done
		require.NotNil(t, obj)
		assert.True(t, bytes.Equal(want, obj))
	}
}

func TestLexicalErrorReported(t *testing.T) {
	ctx := context.Background()

	_, err := CompileNative(ctx, "bad.my", []byte("func int main() { int x = 1 $ 2; }"))
	require.Error(t, err)

	var lex front.LexicalError
	require.ErrorAs(t, err, &lex)
	assert.Equal(t, byte('$'), lex.Char)

	// the scripting target fails identically
	_, err = CompileScript(ctx, "bad.my", []byte("func int main() { int x = 1 $ 2; }"))
	require.Error(t, err)
}

func TestSyntaxErrorReported(t *testing.T) {
	ctx := context.Background()

	_, err := CompileNative(ctx, "bad.my", []byte("func int main() { return 0;"))
	require.Error(t, err)

	var unexp front.UnexpectedError
	require.ErrorAs(t, err, &unexp)
	assert.Contains(t, err.Error(), `"}"`)
}

func TestForwardReference(t *testing.T) {
	ctx := context.Background()

	obj, err := CompileNative(ctx, "fwd.my", []byte(`
func int caller() {
    return later(1);
}

func int later(int x) {
    return x;
}
`))
	require.NoError(t, err)

	code := string(obj)
	proto := bytes.Index(obj, []byte("int later(int x);"))
	def := bytes.Index(obj, []byte("int caller(void) {"))

	require.GreaterOrEqual(t, proto, 0, "missing prototype:\n%s", code)
	require.GreaterOrEqual(t, def, 0)
	assert.Less(t, proto, def)
}

func TestCompileFiles(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	name := filepath.Join(dir, "factorial.my")
	require.NoError(t, os.WriteFile(name, []byte(factorialSrc), 0o644))

	obj, err := CompileNativeFile(ctx, name)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "int factorial(int n)")

	obj, err = CompileScriptFile(ctx, name)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "def factorial(n):")

	_, err = CompileNativeFile(ctx, filepath.Join(dir, "missing.my"))
	require.Error(t, err)
}
