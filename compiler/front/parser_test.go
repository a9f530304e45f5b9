package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylang/my/compiler/ast"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, err := Parse(context.Background(), "test.my", []byte(src))
	require.NoError(t, err)

	return prog
}

func parseOneExpr(t *testing.T, src string) ast.Expr {
	t.Helper()

	prog := parseSrc(t, `func void f() { `+src+`; }`)
	require.Len(t, prog.Funcs, 1)
	require.Len(t, prog.Funcs[0].Body, 1)

	es, ok := prog.Funcs[0].Body[0].(*ast.ExprStmt)
	require.True(t, ok, "expected expression statement, got %T", prog.Funcs[0].Body[0])

	return es.X
}

func TestParseFactorial(t *testing.T) {
	prog := parseSrc(t, `
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
`)

	require.Len(t, prog.Funcs, 2)

	fac := prog.Funcs[0]
	assert.Equal(t, "factorial", fac.Name)
	assert.Equal(t, "int", fac.RetType)
	require.Equal(t, []ast.Param{{Type: "int", Name: "n"}}, fac.Params)

	require.Len(t, fac.Body, 1)
	ifs, ok := fac.Body[0].(*ast.IfStmt)
	require.True(t, ok)

	cond, ok := ifs.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "<=", cond.Op)

	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 3)

	main := prog.Funcs[1]
	assert.Equal(t, "main", main.Name)
	assert.Empty(t, main.Params)
	require.Len(t, main.Body, 4)
}

func TestParsePrecedence(t *testing.T) {
	x := parseOneExpr(t, `1 + 2 * 3`)

	add, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)

	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	x := parseOneExpr(t, `10 - 2 - 3`)

	outer, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "-", outer.Op)

	inner, ok := outer.Left.(*ast.BinaryExpr)
	require.True(t, ok, "expected (10 - 2) on the left, got %v", x)
	assert.Equal(t, "-", inner.Op)

	r, ok := outer.Right.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(3), r.Int)
}

func TestParsePrecedenceChain(t *testing.T) {
	// || < && < == < relational < additive
	x := parseOneExpr(t, `a == b + 1 && c || d`)

	or, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "||", or.Op)

	and, ok := or.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", and.Op)

	eq, ok := and.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", eq.Op)

	add, ok := eq.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
}

func TestParseParens(t *testing.T) {
	x := parseOneExpr(t, `(1 + 2) * 3`)

	mul, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)

	add, ok := mul.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
}

func TestParseUnaryBindsTightest(t *testing.T) {
	x := parseOneExpr(t, `-a + 1`)

	add, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)

	neg, ok := add.Left.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, "-", neg.Op)

	not := parseOneExpr(t, `!a && b`)

	and, ok := not.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", and.Op)

	_, ok = and.Left.(*ast.UnaryExpr)
	assert.True(t, ok)
}

func TestParseLiterals(t *testing.T) {
	x := parseOneExpr(t, `3`)
	require.Equal(t, &ast.Literal{Kind: ast.IntLit, Int: 3}, x)

	x = parseOneExpr(t, `3.5`)
	require.Equal(t, &ast.Literal{Kind: ast.FloatLit, Float: 3.5}, x)

	x = parseOneExpr(t, `true`)
	require.Equal(t, &ast.Literal{Kind: ast.BoolLit, Bool: true}, x)

	x = parseOneExpr(t, `"h\ni\t\\\""`)
	require.Equal(t, &ast.Literal{Kind: ast.StrLit, Str: "h\ni\t\\\""}, x)
}

func TestParseAssignmentExpr(t *testing.T) {
	x := parseOneExpr(t, `x = y = 2`)

	outer, ok := x.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "x", outer.Name)

	inner, ok := outer.Value.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "y", inner.Name)
}

func TestParseCalls(t *testing.T) {
	x := parseOneExpr(t, `add(1, mul(2, 3))`)

	call, ok := x.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "add", call.Name)
	require.Len(t, call.Args, 2)

	nested, ok := call.Args[1].(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "mul", nested.Name)

	// input is lexed as a keyword but stays callable
	x = parseOneExpr(t, `input()`)

	call, ok = x.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "input", call.Name)
	assert.Empty(t, call.Args)
}

func TestParseMultiDeclarator(t *testing.T) {
	prog := parseSrc(t, `func void f() { int a = 1, b, c = 2; }`)

	require.Len(t, prog.Funcs[0].Body, 1)

	d, ok := prog.Funcs[0].Body[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "int", d.Type)
	require.Len(t, d.Decls, 3)

	assert.Equal(t, "a", d.Decls[0].Name)
	assert.NotNil(t, d.Decls[0].Init)
	assert.Equal(t, "b", d.Decls[1].Name)
	assert.Nil(t, d.Decls[1].Init)
	assert.Equal(t, "c", d.Decls[2].Name)
	assert.NotNil(t, d.Decls[2].Init)
}

func TestParseForVariants(t *testing.T) {
	prog := parseSrc(t, `
func void f() {
    for (int i = 0; i < 3; i = i + 1) { print(i); }
    for (i = 0; i < 3; ) { i = i + 1; }
    for (;;) { return; }
}
`)

	body := prog.Funcs[0].Body
	require.Len(t, body, 3)

	full, ok := body[0].(*ast.ForStmt)
	require.True(t, ok)
	_, ok = full.Init.(*ast.VarDecl)
	assert.True(t, ok)
	assert.NotNil(t, full.Cond)
	assert.NotNil(t, full.Post)

	exprInit, ok := body[1].(*ast.ForStmt)
	require.True(t, ok)
	_, ok = exprInit.Init.(*ast.ExprStmt)
	assert.True(t, ok)
	assert.Nil(t, exprInit.Post)

	empty, ok := body[2].(*ast.ForStmt)
	require.True(t, ok)
	assert.Nil(t, empty.Init)
	assert.Nil(t, empty.Cond)
	assert.Nil(t, empty.Post)
}

func TestParseWhile(t *testing.T) {
	prog := parseSrc(t, `func void f() { while (x > 0) { x = x - 1; } }`)

	w, ok := prog.Funcs[0].Body[0].(*ast.WhileStmt)
	require.True(t, ok)
	assert.NotNil(t, w.Cond)
	require.Len(t, w.Body, 1)
}

func TestParseBareReturn(t *testing.T) {
	prog := parseSrc(t, `func void f() { return; }`)

	r, ok := prog.Funcs[0].Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	assert.Nil(t, r.X)
}

func TestParseVoidParamListAndTypes(t *testing.T) {
	prog := parseSrc(t, `func void f(float x, string s, bool b) { }`)

	want := []ast.Param{
		{Type: "float", Name: "x"},
		{Type: "string", Name: "s"},
		{Type: "bool", Name: "b"},
	}
	assert.Equal(t, want, prog.Funcs[0].Params)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want string
	}{
		{"missing brace", `func int main() { return 0;`, `"}"`},
		{"missing semicolon", `func int main() { return 0 }`, `";"`},
		{"missing paren", `func int main( { }`, "type"},
		{"bad type", `func main() { }`, "type"},
		{"stmt outside func", `int x = 1;`, "func"},
		{"bad expression", `func void f() { x = ; }`, "expression"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), "test.my", []byte(tc.src))
			require.Error(t, err)

			assert.Contains(t, err.Error(), "unexpected token")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseLexicalErrorPropagates(t *testing.T) {
	_, err := Parse(context.Background(), "test.my", []byte("func int main() { $ }"))
	require.Error(t, err)

	var lex LexicalError
	require.ErrorAs(t, err, &lex)
	assert.Equal(t, byte('$'), lex.Char)
}
