package pytmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) *Module {
	t.Helper()
	mod, err := ParseModule("test.py", src)
	require.NoError(t, err)
	return mod
}

func TestParseFunction(t *testing.T) {
	mod := parseSource(t, `def fact(n: int) -> int:
    if n <= 0:
        return 1
    return n * fact(n - 1)
`)
	require.Len(t, mod.Decls, 1)

	fn, ok := mod.Decls[0].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "fact", fn.Name)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0].Name)

	require.Len(t, fn.Body, 2)
	ifStmt, ok := fn.Body[0].(*IfStmt)
	require.True(t, ok)
	assert.Empty(t, ifStmt.Else)
	_, ok = fn.Body[1].(*ReturnStmt)
	require.True(t, ok)
}

func TestParseClass(t *testing.T) {
	mod := parseSource(t, `class Pair:
    first: int
    second: bool
`)
	require.Len(t, mod.Decls, 1)
	class, ok := mod.Decls[0].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Pair", class.Name)
	require.Len(t, class.Fields, 2)
	assert.Equal(t, "first", class.Fields[0].Name)
	assert.Equal(t, "second", class.Fields[1].Name)
}

func TestParseElifDesugars(t *testing.T) {
	mod := parseSource(t, `def f(n: int) -> int:
    if n == 0:
        return 0
    elif n == 1:
        return 1
    else:
        return 2
`)
	fn := mod.Decls[0].(*FunctionDef)
	outer := fn.Body[0].(*IfStmt)
	require.Len(t, outer.Else, 1)
	inner, ok := outer.Else[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, inner.Else, 1)
}

func TestParseConditionalExpr(t *testing.T) {
	mod := parseSource(t, `def f(b: bool) -> int:
    return 1 if b else 2
`)
	fn := mod.Decls[0].(*FunctionDef)
	ret := fn.Body[0].(*ReturnStmt)
	cond, ok := ret.Value.(*Conditional)
	require.True(t, ok)
	assert.IsType(t, &Symbol{}, cond.Cond)
}

func TestParseComprehension(t *testing.T) {
	mod := parseSource(t, `def f(xs: List[int]) -> List[int]:
    return [x * 2 for x in xs]
`)
	fn := mod.Decls[0].(*FunctionDef)
	ret := fn.Body[0].(*ReturnStmt)
	comp, ok := ret.Value.(*Comprehension)
	require.True(t, ok)
	assert.Equal(t, "x", comp.Var)
}

func TestParseIntrinsics(t *testing.T) {
	mod := parseSource(t, `def t() -> Type:
    return Type('unsigned long')

def e() -> List[int]:
    return empty_list(int)
`)
	tFn := mod.Decls[0].(*FunctionDef)
	lit, ok := tFn.Body[0].(*ReturnStmt).Value.(*TypeLit)
	require.True(t, ok)
	assert.Equal(t, "unsigned long", lit.CppName)

	eFn := mod.Decls[1].(*FunctionDef)
	_, ok = eFn.Body[0].(*ReturnStmt).Value.(*EmptyListLit)
	require.True(t, ok)
}

func TestParseTypeAnnotations(t *testing.T) {
	mod := parseSource(t, `def f(g: Callable[[int, bool], Type], xs: List[List[int]]) -> int:
    return 0
`)
	fn := mod.Decls[0].(*FunctionDef)
	callable, ok := fn.Params[0].Ann.(*CallableAnn)
	require.True(t, ok)
	assert.Len(t, callable.Args, 2)

	list, ok := fn.Params[1].Ann.(*ListAnn)
	require.True(t, ok)
	_, ok = list.Elem.(*ListAnn)
	require.True(t, ok)
}

func TestParseRejectsOutOfSubset(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		msg  string
	}{
		{"while", "def f(x: int) -> int:\n    while True:\n        return x\n", "while loops"},
		{"for statement", "def f(xs: List[int]) -> int:\n    for x in xs:\n        return 1\n", "for statements"},
		{"augmented assign", "def f(x: int) -> int:\n    x += 1\n    return x\n", "mutation"},
		{"import", "import os\n", "imports"},
		{"from import", "from os import path\n", "imports"},
		{"try", "def f() -> int:\n    try:\n        return 1\n", "exception handling"},
		{"raise", "def f() -> int:\n    raise\n", "exception handling"},
		{"lambda", "def f() -> int:\n    g = lambda: 3\n    return 3\n", "lambda"},
		{"pass", "def f() -> int:\n    pass\n", "pass"},
		{"keyword args", "def f(x: int) -> int:\n    return g(x=3)\n", "keyword arguments"},
		{"subscript", "def f(xs: List[int]) -> int:\n    return xs[0]\n", "subscripting"},
		{"chained comparison", "def f(n: int) -> bool:\n    return 1 < n < 3\n", "chained comparisons"},
		{"decorator", "@foo\ndef f() -> int:\n    return 1\n", "decorators"},
		{"inheritance", "class A(B):\n    x: int\n", "inheritance"},
		{"methods", "class A:\n    def m(self: int) -> int:\n        return 1\n", "methods"},
		{"tuple", "def f() -> int:\n    return (1, 2)\n", "tuples"},
		{"comprehension filter", "def f(xs: List[int]) -> List[int]:\n    return [x for x in xs if x > 0]\n", "filters"},
		{"default params", "def f(x: int = 3) -> int:\n    return x\n", "default parameter"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseModule("test.py", tc.src)
			require.Error(t, err)
			perr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, UnsupportedConstructError, perr.Kind)
			assert.Contains(t, perr.Msg, tc.msg)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"missing return annotation", "def f(x: int):\n    return x\n"},
		{"missing param annotation", "def f(x) -> int:\n    return x\n"},
		{"toplevel binding after class", "class A:\n    x: int\n\ny = 1\n"},
		{"toplevel statement", "x = 1\n"},
		{"empty block", "def f() -> int:\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseModule("test.py", tc.src)
			require.Error(t, err)
			perr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, SyntaxError, perr.Kind)
		})
	}
}
