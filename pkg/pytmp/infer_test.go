package pytmp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elabSource(t *testing.T, src string) *Module {
	t.Helper()
	mod, err := ParseModule("test.py", src)
	require.NoError(t, err)
	require.NoError(t, mod.Elaborate(context.Background()))
	return mod
}

func elabError(t *testing.T, src string) *Error {
	t.Helper()
	mod, err := ParseModule("test.py", src)
	require.NoError(t, err)
	err = mod.Elaborate(context.Background())
	require.Error(t, err)
	list, ok := err.(*ErrorList)
	require.True(t, ok)
	require.NotEmpty(t, list.Errors)
	perr, ok := list.Errors[0].(*Error)
	require.True(t, ok)
	return perr
}

func TestElaborateAnnotatesTypes(t *testing.T) {
	mod := elabSource(t, `def dbl(n: int) -> int:
    return n + n
`)
	fn, ok := mod.FunctionNamed("dbl")
	require.True(t, ok)
	require.NotNil(t, fn.FnType)
	assert.True(t, fn.FnType.Ret().Eq(IntType))

	ret := fn.Body[0].(*ReturnStmt)
	assert.True(t, ret.Value.GetInferredType().Eq(IntType))
}

func TestElaborateMutualRecursion(t *testing.T) {
	elabSource(t, `def is_even(n: int) -> bool:
    if n == 0:
        return True
    return is_odd(n - 1)

def is_odd(n: int) -> bool:
    if n == 0:
        return False
    return is_even(n - 1)
`)
}

func TestElaborateClassFieldAccess(t *testing.T) {
	mod := elabSource(t, `class Pair:
    first: int
    second: bool

def get_first(p: Pair) -> int:
    return p.first
`)
	fn, _ := mod.FunctionNamed("get_first")
	assert.True(t, fn.FnType.Ret().Eq(IntType))
}

func TestElaborateCallableParam(t *testing.T) {
	elabSource(t, `def apply_twice(f: Callable[[int], int], x: int) -> int:
    return f(f(x))
`)
}

func TestUndefinedNamePosition(t *testing.T) {
	perr := elabError(t, `def f(x: int) -> int:
    return y
`)
	assert.Equal(t, NameError, perr.Kind)
	require.NotNil(t, perr.Location)
	assert.Equal(t, 2, perr.Location.Line)
	assert.Equal(t, 12, perr.Location.Column)
	assert.Contains(t, perr.Msg, `"y"`)
}

func TestElaborateErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{
			"return type mismatch",
			"def f() -> int:\n    return True\n",
			TypeError, "return type mismatch",
		},
		{
			"rebinding",
			"def f() -> int:\n    x = 1\n    x = 2\n    return x\n",
			TypeError, "bound once per scope",
		},
		{
			"unreachable code",
			"def f() -> int:\n    return 1\n    x = 2\n    return x\n",
			TypeError, "unreachable",
		},
		{
			"missing return",
			"def f(b: bool) -> int:\n    x = 1\n    assert b\n",
			TypeError, "does not return on every path",
		},
		{
			"if branch must return",
			"def f(b: bool) -> int:\n    if b:\n        x = 1\n    return 2\n",
			UnsupportedConstructError, "must end with a return",
		},
		{
			"assert needs bool",
			"def f(n: int) -> int:\n    assert n\n    return n\n",
			TypeError, "assert condition must be bool",
		},
		{
			"if needs bool",
			"def f(n: int) -> int:\n    if n:\n        return 1\n    return 2\n",
			TypeError, "if condition must be bool",
		},
		{
			"bad operand",
			"def f(b: bool) -> int:\n    return b + 1\n",
			TypeError, "operator +",
		},
		{
			"heterogeneous comparison",
			"def f(b: bool) -> bool:\n    return b == 1\n",
			TypeError, "cannot compare",
		},
		{
			"callable equality",
			"def inc(n: int) -> int:\n    return n + 1\n\ndef same(f: Callable[[int], int], g: Callable[[int], int]) -> bool:\n    return f == g\n",
			TypeError, "cannot be compared",
		},
		{
			"callable field equality",
			"class Op:\n    f: Callable[[int], int]\n\ndef same(a: Op, b: Op) -> bool:\n    return a == b\n",
			TypeError, "cannot be compared",
		},
		{
			"callable list equality",
			"def same(xs: List[Callable[[int], int]], ys: List[Callable[[int], int]]) -> bool:\n    return xs != ys\n",
			TypeError, "cannot be compared",
		},
		{
			"arity mismatch",
			"def g(x: int) -> int:\n    return x\n\ndef f() -> int:\n    return g(1, 2)\n",
			TypeError, "wrong number of arguments",
		},
		{
			"call non-function",
			"def f(n: int) -> int:\n    return n(1)\n",
			TypeError, "cannot call",
		},
		{
			"empty list literal",
			"def f() -> List[int]:\n    return []\n",
			TypeError, "empty_list",
		},
		{
			"mixed list elements",
			"def f() -> List[int]:\n    return [1, True]\n",
			TypeError, "share a type",
		},
		{
			"comprehension over non-list",
			"def f(n: int) -> List[int]:\n    return [x for x in n]\n",
			TypeError, "must be a list",
		},
		{
			"unknown field",
			"class P:\n    x: int\n\ndef f(p: P) -> int:\n    return p.y\n",
			NameError, "no field",
		},
		{
			"field on non-class",
			"def f(n: int) -> int:\n    return n.x\n",
			TypeError, "cannot access field",
		},
		{
			"duplicate definition",
			"def f() -> int:\n    return 1\n\ndef f() -> int:\n    return 2\n",
			TypeError, "already defined",
		},
		{
			"duplicate parameter",
			"def f(x: int, x: int) -> int:\n    return x\n",
			TypeError, "duplicate parameter",
		},
		{
			"unknown annotation",
			"def f(x: widget) -> int:\n    return 1\n",
			NameError, "undefined type",
		},
		{
			"reserved function name",
			"def template(n: int) -> int:\n    return n\n",
			NameError, "reserved",
		},
		{
			"reserved parameter name",
			"def f(struct: int) -> int:\n    return struct\n",
			NameError, "reserved",
		},
		{
			"support library collision",
			"def List(n: int) -> int:\n    return n\n",
			NameError, "reserved",
		},
		{
			"reserved field name",
			"class A:\n    typename: int\n",
			NameError, "reserved",
		},
		{
			"nominal classes",
			"class A:\n    x: int\n\nclass B:\n    x: int\n\ndef f(a: A) -> B:\n    return a\n",
			TypeError, "return type mismatch",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			perr := elabError(t, tc.src)
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Contains(t, perr.Msg, tc.msg)
		})
	}
}

func TestElaborateReportsMultipleErrors(t *testing.T) {
	mod, err := ParseModule("test.py", `def f() -> int:
    return True

def g() -> int:
    return missing
`)
	require.NoError(t, err)
	err = mod.Elaborate(context.Background())
	require.Error(t, err)
	list, ok := err.(*ErrorList)
	require.True(t, ok)
	assert.Len(t, list.Errors, 2)
}

func TestIfScopesAreIndependent(t *testing.T) {
	// The same name may be bound in both branches; each branch is its
	// own scope.
	elabSource(t, `def f(b: bool) -> int:
    if b:
        x = 1
        return x
    x = 2
    return x
`)
}

func TestErrorExcerptUnderlinesOffendingName(t *testing.T) {
	perr := elabError(t, `def f(x: int) -> int:
    return y
`)
	excerpt := perr.Excerpt()
	assert.Contains(t, excerpt, "return y")
	assert.Contains(t, excerpt, "^")
}
