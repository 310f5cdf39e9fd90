package pytmp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestCompileFilesWritesHeaders(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "fact.py", factSrc)

	err := CompileFiles(context.Background(), []string{path}, FileOptions{})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "fact.h"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "struct fact")
}

func TestCompileFilesParallel(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSource(t, dir, "a.py", "def a() -> int:\n    return 1\n"),
		writeSource(t, dir, "b.py", "def b() -> int:\n    return 2\n"),
		writeSource(t, dir, "c.py", "def c() -> int:\n    return 3\n"),
	}
	outDir := filepath.Join(dir, "gen")

	err := CompileFiles(context.Background(), paths, FileOptions{OutputDir: outDir})
	require.NoError(t, err)

	for _, name := range []string{"a.h", "b.h", "c.h"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err)
	}
}

func TestCompileErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.py", "def f() -> int:\n    return missing\n")

	err := CompileFiles(context.Background(), []string{path}, FileOptions{})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "bad.h"))
	assert.True(t, os.IsNotExist(statErr))

	// No temp files left behind either
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteHeaderReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.h")
	require.NoError(t, WriteHeader(path, "old\n"))
	require.NoError(t, WriteHeader(path, "new\n"))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(out))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "c.h"), OutputPath(filepath.Join("a", "b", "c.py"), ""))
	assert.Equal(t, filepath.Join("gen", "c.h"), OutputPath(filepath.Join("a", "b", "c.py"), "gen"))
}

func TestCompileFileDefaultEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "run.py", `def helper(n: int) -> int:
    return n + 21

def run() -> int:
    return helper(21)
`)

	// No entry configured: the last function defined is pinned.
	text, err := CompileFile(context.Background(), path, FileOptions{})
	require.NoError(t, err)
	assert.Contains(t, text, "constexpr int64_t Run = run::value;")
	assert.Contains(t, text, `static_assert((Run == 42LL), "run does not match the interpreted result 42");`)
}

func TestDefaultEntryPrefersMain(t *testing.T) {
	mod := elabSource(t, `def other() -> int:
    return 1

def main() -> int:
    return 2

def later() -> int:
    return 3
`)
	assert.Equal(t, "main", mod.DefaultEntry())
}

func TestInterpretFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "fact.py", factSrc)

	v, err := InterpretFile(context.Background(), path, FileOptions{
		Entry: "fact",
		Args:  []string{"5"},
	})
	require.NoError(t, err)
	assert.Equal(t, IntValue{Val: 120}, v)
}

func TestParseEntryArgs(t *testing.T) {
	mod := elabSource(t, `def f(b: bool, n: int, s: str, t: Type) -> int:
    return n
`)

	args, err := mod.ParseEntryArgs("f", []string{"True", "42", "hi", "unsigned int"})
	require.NoError(t, err)
	assert.Equal(t, BoolValue{Val: true}, args[0])
	assert.Equal(t, IntValue{Val: 42}, args[1])
	assert.Equal(t, StringValue{Val: "hi"}, args[2])
	assert.Equal(t, TypeValue{CppName: "unsigned int"}, args[3])

	args, err = mod.ParseEntryArgs("f", []string{"_", "1", "x", "int"})
	require.NoError(t, err)
	assert.Nil(t, args[0])

	_, err = mod.ParseEntryArgs("f", []string{"1"})
	require.Error(t, err)

	_, err = mod.ParseEntryArgs("f", []string{"maybe", "1", "x", "int"})
	require.Error(t, err)

	_, err = mod.ParseEntryArgs("g", nil)
	require.Error(t, err)
}

func TestParseEntryArgsRejectsListParams(t *testing.T) {
	mod := elabSource(t, `def f(xs: List[int]) -> int:
    return 1
`)
	_, err := mod.ParseEntryArgs("f", []string{"[1]"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be passed on the command line")
}
