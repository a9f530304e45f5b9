package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylang/my/compiler/front"
)

func fmtSrc(tb testing.TB, src string) string {
	tb.Helper()

	ctx := context.Background()

	p, err := front.Parse(ctx, "fmt_test.my", []byte(src))
	require.NoError(tb, err)

	b, err := Format(ctx, nil, p)
	require.NoError(tb, err)

	return string(b)
}

func TestFormatFactorial(t *testing.T) {
	src := `
func int factorial(int n) {
if (n <= 1) { return 1; }
int acc = 1;
for (int i = 2; i <= n; i = i * 1 + 1) { acc = acc * i; }
return acc;
}

func void main() { print(factorial(5)); }
`

	exp := `func int factorial(int n) {
    if (n <= 1) {
        return 1;
    }
    int acc = 1;
    for (int i = 2; i <= n; i = i * 1 + 1) {
        acc = acc * i;
    }
    return acc;
}

func void main() {
    print(factorial(5));
}
`

	assert.Equal(t, exp, fmtSrc(t, src))
}

func TestFormatIdempotent(t *testing.T) {
	src := `
func void main() {
float x = 1.5; bool ok = true; string s = "a\nb";
while (x < 10.0 && !ok) { x = x + 0.5; }
for (; ; ) { return; }
}
`

	once := fmtSrc(t, src)
	twice := fmtSrc(t, once)

	assert.Equal(t, once, twice)
}

func TestFormatParens(t *testing.T) {
	for _, tc := range []struct{ src, exp string }{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"10 - 2 - 3", "10 - 2 - 3"},
		{"10 - (2 - 3)", "10 - (2 - 3)"},
		{"((1 + 2)) + 3", "1 + 2 + 3"},
		{"a || b && c", "a || b && c"},
		{"(a || b) && c", "(a || b) && c"},
		{"!(a && b)", "!(a && b)"},
		{"-x + y", "-x + y"},
		{"(x = 2) + 1", "(x = 2) + 1"},
		{"x = y = 2", "x = y = 2"},
		{"f(1 + 2, g())", "f(1 + 2, g())"},
	} {
		got := fmtSrc(t, "func void f() { "+tc.src+"; }")
		assert.Equal(t, "func void f() {\n    "+tc.exp+";\n}\n", got, "src: %v", tc.src)
	}
}

func TestFormatLiterals(t *testing.T) {
	got := fmtSrc(t, `func void f() { print(2.0); print(0.5); print("q\"\\"); print(false); }`)

	assert.Contains(t, got, "print(2.0);")
	assert.Contains(t, got, "print(0.5);")
	assert.Contains(t, got, `print("q\"\\");`)
	assert.Contains(t, got, "print(false);")
}

func TestFormatElseAndEmptyReturn(t *testing.T) {
	got := fmtSrc(t, `func void f(int n) { if (n > 0) { print(n); } else { return; } }`)

	exp := `func void f(int n) {
    if (n > 0) {
        print(n);
    } else {
        return;
    }
}
`

	assert.Equal(t, exp, got)
}
