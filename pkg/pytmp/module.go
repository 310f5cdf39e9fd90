package pytmp

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pytmp/pytmp/pkg/hm"
	"github.com/pytmp/pytmp/pkg/tmpir"
)

// FileOptions configures compilation or interpretation of source files.
type FileOptions struct {
	// Entry names the entry point function, if any.
	Entry string

	// Args binds the entry point's parameters, positionally, in their
	// command-line spelling. "_" leaves a parameter unbound.
	Args []string

	// MaxDepth bounds compile-time expansion; zero means the default.
	MaxDepth int

	// OutputDir receives generated headers. Empty means next to the
	// source file.
	OutputDir string
}

func (opts FileOptions) maxDepth() int {
	if opts.MaxDepth <= 0 {
		return DefaultMaxRecursionDepth
	}
	return opts.MaxDepth
}

// ParseFile reads and parses a single source file.
func ParseFile(path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ParseModule(path, string(src))
}

// LoadFile parses and elaborates a single source file.
func LoadFile(ctx context.Context, path string) (*Module, error) {
	mod, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := mod.Elaborate(ctx); err != nil {
		return nil, err
	}
	return mod, nil
}

// CompileFile compiles one source file and returns the generated header
// text. Nothing is written to disk. With no Entry configured the entry
// point defaults to main, or the last function defined.
func CompileFile(ctx context.Context, path string, opts FileOptions) (string, error) {
	mod, err := LoadFile(ctx, path)
	if err != nil {
		return "", err
	}

	entry := opts.Entry
	if entry == "" {
		entry = mod.DefaultEntry()
	}
	compileOpts := CompileOptions{Entry: entry, MaxDepth: opts.maxDepth()}
	if entry != "" {
		args, err := mod.ParseEntryArgs(entry, opts.Args)
		if err != nil {
			return "", err
		}
		compileOpts.EntryArgs = args
	}

	unit, err := mod.Compile(ctx, compileOpts)
	if err != nil {
		return "", err
	}
	return tmpir.Emit(unit), nil
}

// OutputPath maps a source path to its generated header path.
func OutputPath(src, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(src), ".py") + ".h"
	if outputDir == "" {
		return filepath.Join(filepath.Dir(src), base)
	}
	return filepath.Join(outputDir, base)
}

// WriteHeader writes contents to path atomically: a failed or
// interrupted compile never leaves a partial header behind.
func WriteHeader(path, contents string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".pytmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(contents); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "writing %s", path)
}

// CompileFiles compiles each source file to a header. Compilation units
// are independent, so files compile in parallel; the first error cancels
// the rest and no header is written for a failed unit.
func CompileFiles(ctx context.Context, paths []string, opts FileOptions) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		eg.Go(func() error {
			text, err := CompileFile(ctx, path, opts)
			if err != nil {
				return err
			}
			out := OutputPath(path, opts.OutputDir)
			if err := WriteHeader(out, text); err != nil {
				return err
			}
			slog.Debug("wrote header", "source", path, "output", out)
			return nil
		})
	}
	return eg.Wait()
}

// InterpretFile evaluates the entry point of one source file and returns
// the resulting compile-time value without generating any code.
func InterpretFile(ctx context.Context, path string, opts FileOptions) (Value, error) {
	mod, err := LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	args, err := mod.ParseEntryArgs(opts.Entry, opts.Args)
	if err != nil {
		return nil, err
	}
	return mod.EvalFunction(ctx, opts.Entry, args, opts.maxDepth())
}

// DefaultEntry names the entry point used when none is configured: the
// function named main if the module has one, else the last function
// defined.
func (m *Module) DefaultEntry() string {
	if _, ok := m.FunctionNamed("main"); ok {
		return "main"
	}
	var name string
	for _, decl := range m.Decls {
		if fn, ok := decl.(*FunctionDef); ok {
			name = fn.Name
		}
	}
	return name
}

// ParseEntryArgs converts command-line argument spellings into values
// per the entry function's parameter types. "_" leaves the parameter
// unbound, turning the entry evaluation symbolic; nil leaves every
// parameter unbound.
func (m *Module) ParseEntryArgs(entry string, raw []string) ([]Value, error) {
	fn, ok := m.FunctionNamed(entry)
	if !ok {
		return nil, NewError(NameError, nil, "no function named %q in %s", entry, m.Filename)
	}
	if raw == nil {
		return make([]Value, len(fn.Params)), nil
	}
	if len(raw) != len(fn.Params) {
		return nil, NewError(TypeError, fn.Loc, "function %s takes %d arguments, got %d",
			entry, len(fn.Params), len(raw))
	}

	args := make([]Value, len(raw))
	for i, s := range raw {
		if s == "_" {
			continue
		}
		param := fn.Params[i]
		v, err := parseArgValue(param.Type, s)
		if err != nil {
			return nil, NewError(TypeError, param.Loc, "argument %s: %s", param.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseArgValue(t hm.Type, s string) (Value, error) {
	switch {
	case t.Eq(BoolType):
		switch s {
		case "True", "true":
			return BoolValue{Val: true}, nil
		case "False", "false":
			return BoolValue{Val: false}, nil
		}
		return nil, errors.Errorf("%q is not a bool", s)
	case t.Eq(IntType):
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Errorf("%q is not an int", s)
		}
		return IntValue{Val: n}, nil
	case t.Eq(StringType):
		for i := 0; i < len(s); i++ {
			if s[i] < 0x20 || s[i] > 0x7e {
				return nil, errors.Errorf("strings are limited to printable ASCII")
			}
		}
		return StringValue{Val: s}, nil
	case t.Eq(MetaType):
		return TypeValue{CppName: s}, nil
	default:
		return nil, errors.Errorf("values of type %s cannot be passed on the command line", typeName(t))
	}
}
