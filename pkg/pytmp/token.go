package pytmp

import "fmt"

// TokenKind enumerates the lexical vocabulary of the restricted grammar.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokNewline
	TokIndent
	TokDedent

	TokName
	TokInt
	TokString

	// Keywords
	TokDef
	TokClass
	TokReturn
	TokIf
	TokElif
	TokElse
	TokAssert
	TokTrue
	TokFalse
	TokAnd
	TokOr
	TokNot
	TokFor
	TokIn

	// Keywords recognized only so they can be rejected with a precise
	// diagnostic instead of a generic parse error.
	TokWhile
	TokImport
	TokFrom
	TokTry
	TokRaise
	TokDel
	TokYield
	TokLambda
	TokPass

	// Punctuation and operators
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokComma
	TokColon
	TokDot
	TokArrow
	TokAssign
	TokEq
	TokNe
	TokLt
	TokLe
	TokGt
	TokGe
	TokPlus
	TokMinus
	TokStar
	TokFloorDiv
	TokPercent
	TokAugAssign // +=, -=, *=, //=, %= (rejected as mutation)
	TokAt        // decorators (rejected)
)

var keywords = map[string]TokenKind{
	"def":    TokDef,
	"class":  TokClass,
	"return": TokReturn,
	"if":     TokIf,
	"elif":   TokElif,
	"else":   TokElse,
	"assert": TokAssert,
	"True":   TokTrue,
	"False":  TokFalse,
	"and":    TokAnd,
	"or":     TokOr,
	"not":    TokNot,
	"for":    TokFor,
	"in":     TokIn,
	"while":  TokWhile,
	"import": TokImport,
	"from":   TokFrom,
	"try":    TokTry,
	"raise":  TokRaise,
	"del":    TokDel,
	"yield":  TokYield,
	"lambda": TokLambda,
	"pass":   TokPass,
}

var tokenNames = map[TokenKind]string{
	TokEOF:       "end of file",
	TokNewline:   "newline",
	TokIndent:    "indent",
	TokDedent:    "dedent",
	TokName:      "identifier",
	TokInt:       "integer literal",
	TokString:    "string literal",
	TokLParen:    "'('",
	TokRParen:    "')'",
	TokLBracket:  "'['",
	TokRBracket:  "']'",
	TokComma:     "','",
	TokColon:     "':'",
	TokDot:       "'.'",
	TokArrow:     "'->'",
	TokAssign:    "'='",
	TokEq:        "'=='",
	TokNe:        "'!='",
	TokLt:        "'<'",
	TokLe:        "'<='",
	TokGt:        "'>'",
	TokGe:        "'>='",
	TokPlus:      "'+'",
	TokMinus:     "'-'",
	TokStar:      "'*'",
	TokFloorDiv:  "'//'",
	TokPercent:   "'%'",
	TokAugAssign: "augmented assignment",
	TokAt:        "'@'",
}

// Token is a single lexeme with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	if name, ok := tokenNames[t.Kind]; ok {
		if t.Kind == TokName || t.Kind == TokInt || t.Kind == TokString {
			return fmt.Sprintf("%s %q", name, t.Text)
		}
		return name
	}
	return fmt.Sprintf("%q", t.Text)
}
