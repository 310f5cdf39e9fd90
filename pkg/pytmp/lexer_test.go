package pytmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer("test.py", src).Tokenize()
	require.NoError(t, err)
	return toks
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerIndentation(t *testing.T) {
	toks := lex(t, "def f(x: int) -> int:\n    return x\n")
	assert.Equal(t, []TokenKind{
		TokDef, TokName, TokLParen, TokName, TokColon, TokName, TokRParen,
		TokArrow, TokName, TokColon, TokNewline,
		TokIndent, TokReturn, TokName, TokNewline, TokDedent,
		TokEOF,
	}, kinds(toks))
}

func TestLexerNestedDedents(t *testing.T) {
	toks := lex(t, "def f(b: bool) -> int:\n    if b:\n        return 1\n    return 2\n")
	var dedents int
	for _, tok := range toks {
		if tok.Kind == TokDedent {
			dedents++
		}
	}
	assert.Equal(t, 2, dedents)
	assert.Equal(t, TokEOF, toks[len(toks)-1].Kind)
}

func TestLexerMissingTrailingNewline(t *testing.T) {
	toks := lex(t, "def f() -> int:\n    return 1")
	assert.Equal(t, TokEOF, toks[len(toks)-1].Kind)
	assert.Equal(t, TokDedent, toks[len(toks)-2].Kind)
	assert.Equal(t, TokNewline, toks[len(toks)-3].Kind)
}

func TestLexerBracketsSuppressNewlines(t *testing.T) {
	toks := lex(t, "xs = [\n    1,\n    2,\n]\n")
	assert.Equal(t, []TokenKind{
		TokName, TokAssign, TokLBracket,
		TokInt, TokComma, TokInt, TokComma,
		TokRBracket, TokNewline, TokEOF,
	}, kinds(toks))
}

func TestLexerComments(t *testing.T) {
	toks := lex(t, "# leading comment\nx = 1  # trailing\n")
	assert.Equal(t, []TokenKind{TokName, TokAssign, TokInt, TokNewline, TokEOF}, kinds(toks))
}

func TestLexerStringEscapes(t *testing.T) {
	toks := lex(t, `s = 'a\'b'`+"\n")
	require.Equal(t, TokString, toks[2].Kind)
	assert.Equal(t, "a'b", toks[2].Text)
}

func TestLexerPositions(t *testing.T) {
	toks := lex(t, "x = 10\n")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Col)
	assert.Equal(t, 5, toks[2].Col)
}

func TestLexerErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		msg  string
	}{
		{"float", "x = 1.5\n", "floating point"},
		{"tab indent", "def f() -> int:\n\treturn 1\n", "tab characters"},
		{"bad unindent", "def f() -> int:\n    if True:\n        return 1\n  return 2\n", "unindent"},
		{"unterminated string", "s = 'oops\n", "unterminated"},
		{"non-ascii string", "s = '\u00e9'\n", "printable ASCII"},
		{"newline escape", `s = 'a\nb'` + "\n", "printable ASCII"},
		{"tab escape", `s = 'a\tb'` + "\n", "printable ASCII"},
		{"bad escape", `s = '\q'` + "\n", "escape"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLexer("test.py", tc.src).Tokenize()
			require.Error(t, err)
			perr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, SyntaxError, perr.Kind)
			assert.Contains(t, perr.Msg, tc.msg)
		})
	}
}

func TestLexerAugmentedAssignToken(t *testing.T) {
	toks := lex(t, "x += 1\n")
	assert.Equal(t, TokAugAssign, toks[1].Kind)
	assert.Equal(t, "+=", toks[1].Text)
}

func TestLexerFloorDivVsAugAssign(t *testing.T) {
	toks := lex(t, "x = a // b\n")
	assert.Equal(t, TokFloorDiv, toks[3].Kind)

	toks = lex(t, "x //= 2\n")
	assert.Equal(t, TokAugAssign, toks[1].Kind)
	assert.Equal(t, "//=", toks[1].Text)
}
