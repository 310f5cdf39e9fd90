package pytmp

import (
	"fmt"
	"os"
	"strings"
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int // Length of the syntax node that caused the error
}

// SourceLocatable is implemented by anything that knows where it came from
type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}

// ErrorKind classifies diagnostics into the closed taxonomy
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	NameError
	TypeError
	RecursionLimitError
	UnsupportedConstructError
	AssertionError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case NameError:
		return "NameError"
	case TypeError:
		return "TypeError"
	case RecursionLimitError:
		return "RecursionLimitError"
	case UnsupportedConstructError:
		return "UnsupportedConstructError"
	case AssertionError:
		return "AssertionError"
	default:
		return "Error"
	}
}

// Error is a diagnostic with a kind and a source location. It renders as
// "file:line:col: kind: message" and can show a highlighted excerpt when
// the source is attached.
type Error struct {
	Kind     ErrorKind
	Msg      string
	Location *SourceLocation
	Source   string // source text of the file, for excerpts
}

func NewError(kind ErrorKind, loc *SourceLocation, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
		Location: loc,
	}
}

func (e *Error) Error() string {
	if e.Location == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		e.Location.Filename, e.Location.Line, e.Location.Column, e.Kind, e.Msg)
}

// WithSource attaches the source text so Excerpt can show context
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// Excerpt returns a formatted error with the offending source region
// underlined, in the style of a compiler diagnostic.
func (e *Error) Excerpt() string {
	if e.Location == nil && e.Source == "" {
		return e.Error()
	}

	if e.Source == "" && e.Location.Filename != "" {
		contents, err := os.ReadFile(e.Location.Filename)
		if err == nil {
			e.Source = string(contents)
		}
	}

	lines := strings.Split(e.Source, "\n")
	if e.Location == nil || e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Error()
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Msg))
	result.WriteString(fmt.Sprintf("  --> %s:%d:%d\n", e.Location.Filename, e.Location.Line, e.Location.Column))

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		result.WriteString(fmt.Sprintf(" %s | %s\n", padLeft(fmt.Sprintf("%d", i), 3), lines[i-1]))
		if i == e.Location.Line {
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Location.Length))
			result.WriteString(padding + underline + "\n")
		}
	}

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// ErrorList accumulates diagnostics from independent top-level
// definitions so a single run can surface more than one error.
type ErrorList struct {
	Errors []error
}

func (el *ErrorList) Add(err error) {
	if err != nil {
		el.Errors = append(el.Errors, err)
	}
}

func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Unwrap() []error {
	return el.Errors
}

func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return "no errors"
	}
	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}
	msgs := make([]string, len(el.Errors))
	for i, err := range el.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors:\n%s", len(el.Errors), strings.Join(msgs, "\n"))
}

// ErrOrNil returns the list as an error, or nil when empty
func (el *ErrorList) ErrOrNil() error {
	if el.HasErrors() {
		return el
	}
	return nil
}
