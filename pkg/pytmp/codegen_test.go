package pytmp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pytmp/pytmp/pkg/tmpir"
)

func compileSource(t *testing.T, src string, opts CompileOptions) string {
	t.Helper()
	mod := elabSource(t, src)
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxRecursionDepth
	}
	unit, err := mod.Compile(context.Background(), opts)
	require.NoError(t, err)
	return tmpir.Emit(unit)
}

func TestCompileIsDeterministic(t *testing.T) {
	first := compileSource(t, factSrc, CompileOptions{})
	second := compileSource(t, factSrc, CompileOptions{})
	assert.Equal(t, first, second)
}

func TestCompileFactorial(t *testing.T) {
	text := compileSource(t, factSrc, CompileOptions{})
	assert.Contains(t, text, "#pragma once")
	assert.Contains(t, text, "#include <tmppy/tmppy.h>")
	assert.Contains(t, text, "template <int64_t n>\nstruct fact;")
	// Branching dispatches through a bool-keyed helper pair
	assert.Contains(t, text, "struct fact_impl1<true, n>")
	assert.Contains(t, text, "struct fact_impl1<false, n>")
	assert.Contains(t, text, "fact_impl1<(n <= 0LL), n>::value")
	assert.Contains(t, text, "fact<(n - 1LL)>::value")
}

func TestCompileEntryConstant(t *testing.T) {
	text := compileSource(t, factSrc, CompileOptions{
		Entry:     "fact",
		EntryArgs: []Value{IntValue{Val: 5}},
	})
	assert.Contains(t, text, "constexpr int64_t Fact = fact<5LL>::value;")
	assert.Contains(t, text, `static_assert((Fact == 120LL), "fact does not match the interpreted result 120");`)
}

func TestCompileEntryTypeAlias(t *testing.T) {
	text := compileSource(t, `def widen(small: bool) -> Type:
    if small:
        return Type('int')
    return Type('long long')
`, CompileOptions{
		Entry:     "widen",
		EntryArgs: []Value{BoolValue{Val: true}},
	})
	assert.Contains(t, text, "#include <type_traits>")
	assert.Contains(t, text, "using Widen = typename widen<true>::type;")
	assert.Contains(t, text, "std::is_same<Widen, int>::value")
}

func TestCompileEntryUnboundStaysGeneric(t *testing.T) {
	text := compileSource(t, factSrc, CompileOptions{
		Entry:     "fact",
		EntryArgs: []Value{nil},
	})
	assert.NotContains(t, text, "constexpr int64_t Fact")
}

func TestCompileEntryEvaluationFailure(t *testing.T) {
	mod := elabSource(t, `def checked(n: int) -> int:
    assert n > 0, 'n must be positive'
    return n
`)
	_, err := mod.Compile(context.Background(), CompileOptions{
		Entry:     "checked",
		EntryArgs: []Value{IntValue{Val: 0}},
		MaxDepth:  DefaultMaxRecursionDepth,
	})
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, AssertionError, perr.Kind)
}

func TestCompileClass(t *testing.T) {
	text := compileSource(t, `class Pair:
    first: int
    second: bool
`, CompileOptions{})
	assert.Contains(t, text, "template <int64_t first_, bool second_>\nstruct Pair;")
	assert.Contains(t, text, "static constexpr int64_t first = first_;")
	assert.Contains(t, text, "static constexpr bool second = second_;")
}

func TestCompileFieldAccess(t *testing.T) {
	text := compileSource(t, `class Box:
    item: Type

def unbox(b: Box) -> Type:
    return b.item
`, CompileOptions{})
	assert.Contains(t, text, "using type = typename b::item;")
}

func TestCompileAssertBecomesStaticAssert(t *testing.T) {
	text := compileSource(t, `def checked(n: int) -> int:
    assert n > 0, 'positive'
    return n
`, CompileOptions{})
	assert.Contains(t, text, `static_assert((n > 0LL), "positive");`)
}

func TestCompileComprehension(t *testing.T) {
	text := compileSource(t, `def doubled(xs: List[int]) -> List[int]:
    return [x * 2 for x in xs]
`, CompileOptions{})
	// Head/tail recursion over the source list
	assert.Contains(t, text, "struct doubled_transform1;")
	assert.Contains(t, text, "Int64List<H, T...>")
	assert.Contains(t, text, "Int64ListConcat")
	assert.Contains(t, text, "Int64List<(H * 2LL)>")
}

func TestCompileListConcat(t *testing.T) {
	text := compileSource(t, `def both(xs: List[Type], ys: List[Type]) -> List[Type]:
    return xs + ys
`, CompileOptions{})
	assert.Contains(t, text, "typename TypeListConcat<xs, ys>::type")
}

func TestCompileTypeEquality(t *testing.T) {
	text := compileSource(t, `def is_int(t: Type) -> bool:
    return t == Type('int')
`, CompileOptions{})
	assert.Contains(t, text, "#include <type_traits>")
	assert.Contains(t, text, "std::is_same<t, int>::value")
}

func TestCompileStringsBecomeCharPacks(t *testing.T) {
	text := compileSource(t, `def name() -> str:
    return 'hi'
`, CompileOptions{})
	assert.Contains(t, text, "StringHolder<'h', 'i'>")
}

func TestCompileHigherOrder(t *testing.T) {
	text := compileSource(t, `def inc(n: int) -> int:
    return n + 1

def apply_twice(f: Callable[[int], int], x: int) -> int:
    return f(f(x))

def run(x: int) -> int:
    return apply_twice(inc, x)
`, CompileOptions{})
	// Callable parameters follow the metafunction class convention
	assert.Contains(t, text, "f::template apply<f::template apply<x>::value>::value")
	// Passing a toplevel function generates a shared wrapper
	assert.Contains(t, text, "struct inc_mfn1 {")
	assert.Contains(t, text, "apply_twice<inc_mfn1, x>::value")
}

func TestCompileConditionalExpr(t *testing.T) {
	text := compileSource(t, `def pick(b: bool, x: int, y: int) -> int:
    return x if b else y
`, CompileOptions{})
	assert.Contains(t, text, "struct pick_impl1<true, b, x, y>")
	assert.Contains(t, text, "pick_impl1<b, b, x, y>::value")
}

func TestCompileZeroArgFunction(t *testing.T) {
	text := compileSource(t, `def answer() -> int:
    return 42
`, CompileOptions{})
	assert.Contains(t, text, "struct answer {\n  static constexpr int64_t value = 42LL;\n};")
	assert.NotContains(t, text, "template <>\nstruct answer")
}
