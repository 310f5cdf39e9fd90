// Package ioctx carries process output streams through a context, so
// library code prints to whatever the caller wired up rather than
// os.Stdout directly.
package ioctx

import (
	"context"
	"io"
)

type stdoutKey struct{}
type stderrKey struct{}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// StdoutFromContext returns the stdout writer, or io.Discard if none
// was set.
func StdoutFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

// StderrFromContext returns the stderr writer, or io.Discard if none
// was set.
func StderrFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}
