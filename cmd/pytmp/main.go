package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pytmp/pytmp/pkg/ioctx"
	"github.com/pytmp/pytmp/pkg/pytmp"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Config holds the application configuration
type Config struct {
	Debug     bool
	Interpret bool
	Entry     string
	Args      []string
	OutputDir string
	MaxDepth  int
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "pytmp [flags] source.py...",
		Short: "Compile a restricted Python subset to C++ template metaprograms",
		Long: `pytmp compiles functions written in a restricted, typed Python subset
into C++ template metaprogramming headers. Every function becomes a
template; every call becomes an instantiation.`,
		Example: `  # Compile a file to fib.h next to it
  pytmp fib.py

  # Pin an entry point with bound arguments
  pytmp --entry fib --args 10 fib.py

  # Evaluate without generating code
  pytmp --interpret --entry fib --args 10 fib.py

  # Leave a parameter generic
  pytmp --entry select --args _,True select.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, args)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&cfg.Interpret, "interpret", false, "Evaluate the entry point and print the result instead of generating code")
	rootCmd.Flags().StringVar(&cfg.Entry, "entry", "", "Entry point function to pin at toplevel")
	rootCmd.Flags().StringSliceVar(&cfg.Args, "args", nil, "Entry point arguments, positionally; _ leaves one unbound")
	rootCmd.Flags().StringVarP(&cfg.OutputDir, "output-dir", "o", "", "Directory for generated headers (default: next to each source)")
	rootCmd.Flags().IntVar(&cfg.MaxDepth, "max-recursion-depth", 0, "Compile-time recursion depth limit")

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(printError),
	); err != nil {
		os.Exit(1)
	}
}

// printError renders structured diagnostics with their source excerpt.
func printError(w io.Writer, styles fang.Styles, err error) {
	switch e := err.(type) {
	case *pytmp.ErrorList:
		for _, inner := range e.Errors {
			printError(w, styles, inner)
		}
	case *pytmp.Error:
		fmt.Fprintln(w, errorStyle.Render(e.Error()))
		if excerpt := e.Excerpt(); excerpt != e.Error() {
			fmt.Fprint(w, dimStyle.Render(excerpt))
			fmt.Fprintln(w)
		}
	default:
		fmt.Fprintln(w, errorStyle.Render(err.Error()))
	}
}

func run(ctx context.Context, cfg Config, paths []string) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Flags win over pytmp.toml, which wins over defaults.
	cwd, _ := os.Getwd()
	configPath, config, err := pytmp.FindProjectConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load pytmp.toml: %v\n", err)
	} else if config != nil {
		slog.Debug("using project config", "path", configPath)
		if cfg.Entry == "" {
			cfg.Entry = config.Entry
		}
		if cfg.OutputDir == "" {
			cfg.OutputDir = config.OutputDir
		}
		if cfg.MaxDepth == 0 {
			cfg.MaxDepth = config.MaxRecursionDepth
		}
	}

	opts := pytmp.FileOptions{
		Entry:     cfg.Entry,
		Args:      cfg.Args,
		MaxDepth:  cfg.MaxDepth,
		OutputDir: cfg.OutputDir,
	}

	if cfg.Interpret {
		if cfg.Entry == "" {
			return fmt.Errorf("--interpret requires --entry")
		}
		if len(paths) != 1 {
			return fmt.Errorf("--interpret takes exactly one source file")
		}
		result, err := pytmp.InterpretFile(ctx, paths[0], opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(ioctx.StdoutFromContext(ctx), result)
		return nil
	}

	return pytmp.CompileFiles(ctx, paths, opts)
}
