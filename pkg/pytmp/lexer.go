package pytmp

import (
	"strings"
)

// Lexer tokenizes the restricted Python-like grammar. Indentation is
// significant: INDENT/DEDENT tokens are synthesized from leading spaces
// the way Python's tokenizer does, except only spaces are allowed.
type Lexer struct {
	filename string
	src      string
	pos      int
	line     int
	col      int

	indents     []int
	pending     []Token
	atLineStart bool
	parenDepth  int
}

func NewLexer(filename, src string) *Lexer {
	return &Lexer{
		filename:    filename,
		src:         src,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Tokenize lexes the entire input. It stops at the first lexical error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks, nil
		}
	}
}

func (l *Lexer) loc(length int) *SourceLocation {
	return &SourceLocation{Filename: l.filename, Line: l.line, Column: l.col, Length: length}
}

func (l *Lexer) errf(length int, format string, args ...any) error {
	return NewError(SyntaxError, l.loc(length), format, args...).WithSource(l.src)
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}

	if l.atLineStart && l.parenDepth == 0 {
		if err := l.handleIndentation(); err != nil {
			return Token{}, err
		}
		if len(l.pending) > 0 {
			return l.Next()
		}
	}

	l.skipSpacesAndComments()

	if l.pos >= len(l.src) {
		return l.finish()
	}

	c := l.src[l.pos]

	if c == '\n' {
		tok := Token{Kind: TokNewline, Text: "\n", Line: l.line, Col: l.col}
		l.advance()
		if l.parenDepth > 0 {
			// Newlines inside brackets are insignificant
			return l.Next()
		}
		l.atLineStart = true
		return tok, nil
	}

	if isNameStart(c) {
		return l.lexName(), nil
	}
	if c >= '0' && c <= '9' {
		return l.lexInt()
	}
	if c == '\'' || c == '"' {
		return l.lexString()
	}

	return l.lexOperator()
}

// finish emits trailing NEWLINE/DEDENT/EOF tokens at end of input.
func (l *Lexer) finish() (Token, error) {
	if !l.atLineStart {
		l.atLineStart = true
		return Token{Kind: TokNewline, Text: "\n", Line: l.line, Col: l.col}, nil
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return Token{Kind: TokDedent, Line: l.line, Col: 1}, nil
	}
	return Token{Kind: TokEOF, Line: l.line, Col: l.col}, nil
}

func (l *Lexer) handleIndentation() error {
	for {
		// Measure leading spaces of the current line
		width := 0
		for l.pos < len(l.src) {
			switch l.src[l.pos] {
			case ' ':
				width++
				l.pos++
				l.col++
			case '\t':
				return l.errf(1, "tab characters are not allowed in indentation")
			default:
				goto measured
			}
		}
	measured:
		// Skip blank lines and comment-only lines entirely
		if l.pos >= len(l.src) {
			// End of input; finish() emits the closing tokens
			return nil
		}
		if l.src[l.pos] == '\n' {
			l.advance()
			continue
		}
		if l.src[l.pos] == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
			continue
		}

		l.atLineStart = false
		current := l.indents[len(l.indents)-1]
		switch {
		case width > current:
			l.indents = append(l.indents, width)
			l.pending = append(l.pending, Token{Kind: TokIndent, Line: l.line, Col: 1})
		case width < current:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, Token{Kind: TokDedent, Line: l.line, Col: 1})
			}
			if l.indents[len(l.indents)-1] != width {
				return l.errf(1, "unindent does not match any outer indentation level")
			}
		}
		return nil
	}
}

func (l *Lexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
		} else if c == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		} else {
			return
		}
	}
}

func (l *Lexer) lexName() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.advance()
	}
	text := l.src[start:l.pos]
	kind := TokName
	if kw, ok := keywords[text]; ok {
		kind = kw
	}
	return Token{Kind: kind, Text: text, Line: line, Col: col}
}

func (l *Lexer) lexInt() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.advance()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == '.' || isNameStart(l.src[l.pos])) {
		if l.src[l.pos] == '.' {
			return Token{}, l.errf(1, "floating point literals are not supported")
		}
		return Token{}, l.errf(1, "invalid integer literal")
	}
	return Token{Kind: TokInt, Text: l.src[start:l.pos], Line: line, Col: col}, nil
}

func (l *Lexer) lexString() (Token, error) {
	line, col := l.line, l.col
	quote := l.src[l.pos]
	l.advance()
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return Token{}, &Error{
				Kind:     SyntaxError,
				Msg:      "unterminated string literal",
				Location: &SourceLocation{Filename: l.filename, Line: line, Column: col, Length: 1},
				Source:   l.src,
			}
		}
		c := l.src[l.pos]
		if c == quote {
			l.advance()
			return Token{Kind: TokString, Text: sb.String(), Line: line, Col: col}, nil
		}
		if c == '\\' {
			l.advance()
			if l.pos >= len(l.src) {
				continue
			}
			esc := l.src[l.pos]
			switch esc {
			case 'n', 't':
				// Control characters cannot travel through a char pack
				return Token{}, l.errf(2, "string literals are restricted to printable ASCII")
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			default:
				return Token{}, l.errf(2, "unsupported escape sequence '\\%c'", esc)
			}
			l.advance()
			continue
		}
		if c < 0x20 || c > 0x7e {
			return Token{}, l.errf(1, "string literals are restricted to printable ASCII")
		}
		sb.WriteByte(c)
		l.advance()
	}
}

func (l *Lexer) lexOperator() (Token, error) {
	line, col := l.line, l.col
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}

	emit := func(kind TokenKind, text string) Token {
		for range text {
			l.advance()
		}
		return Token{Kind: kind, Text: text, Line: line, Col: col}
	}

	switch two {
	case "->":
		return emit(TokArrow, two), nil
	case "==":
		return emit(TokEq, two), nil
	case "!=":
		return emit(TokNe, two), nil
	case "<=":
		return emit(TokLe, two), nil
	case ">=":
		return emit(TokGe, two), nil
	case "//":
		if l.pos+2 < len(l.src) && l.src[l.pos+2] == '=' {
			return emit(TokAugAssign, "//="), nil
		}
		return emit(TokFloorDiv, two), nil
	case "+=", "-=", "*=", "%=":
		return emit(TokAugAssign, two), nil
	}

	switch c := l.src[l.pos]; c {
	case '(':
		l.parenDepth++
		return emit(TokLParen, "("), nil
	case ')':
		l.parenDepth--
		return emit(TokRParen, ")"), nil
	case '[':
		l.parenDepth++
		return emit(TokLBracket, "["), nil
	case ']':
		l.parenDepth--
		return emit(TokRBracket, "]"), nil
	case ',':
		return emit(TokComma, ","), nil
	case ':':
		return emit(TokColon, ":"), nil
	case '.':
		return emit(TokDot, "."), nil
	case '=':
		return emit(TokAssign, "="), nil
	case '<':
		return emit(TokLt, "<"), nil
	case '>':
		return emit(TokGt, ">"), nil
	case '+':
		return emit(TokPlus, "+"), nil
	case '-':
		return emit(TokMinus, "-"), nil
	case '*':
		return emit(TokStar, "*"), nil
	case '%':
		return emit(TokPercent, "%"), nil
	case '@':
		return emit(TokAt, "@"), nil
	default:
		return Token{}, l.errf(1, "unexpected character %q", c)
	}
}

func (l *Lexer) advance() {
	if l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
