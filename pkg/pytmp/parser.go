package pytmp

import (
	"strconv"
)

// Parser builds an AST from the token stream. It rejects anything
// outside the supported subset with an UnsupportedConstructError so the
// user learns it is deliberate, not a parser gap.
type Parser struct {
	filename string
	src      string
	toks     []Token
	pos      int
}

// ParseModule parses source text into a Module.
func ParseModule(filename, src string) (*Module, error) {
	toks, err := NewLexer(filename, src).Tokenize()
	if err != nil {
		return nil, err
	}

	p := &Parser{filename: filename, src: src, toks: toks}
	return p.parseModule()
}

func (p *Parser) cur() Token {
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind TokenKind) bool {
	return p.cur().Kind == kind
}

func (p *Parser) accept(kind TokenKind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) tokLoc(tok Token) *SourceLocation {
	length := len(tok.Text)
	if length == 0 {
		length = 1
	}
	return &SourceLocation{Filename: p.filename, Line: tok.Line, Column: tok.Col, Length: length}
}

func (p *Parser) syntaxErrf(tok Token, format string, args ...any) error {
	return NewError(SyntaxError, p.tokLoc(tok), format, args...).WithSource(p.src)
}

func (p *Parser) unsupportedf(tok Token, format string, args ...any) error {
	return NewError(UnsupportedConstructError, p.tokLoc(tok), format, args...).WithSource(p.src)
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if !p.at(kind) {
		return Token{}, p.syntaxErrf(p.cur(), "expected %s, got %s", tokenNames[kind], p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) parseModule() (*Module, error) {
	m := &Module{Filename: p.filename, Source: p.src}
	for {
		switch p.cur().Kind {
		case TokEOF:
			return m, nil
		case TokNewline:
			p.advance()
		case TokDef:
			fn, err := p.parseFunctionDef()
			if err != nil {
				return nil, err
			}
			m.Decls = append(m.Decls, fn)
		case TokClass:
			class, err := p.parseClassDef()
			if err != nil {
				return nil, err
			}
			m.Decls = append(m.Decls, class)
		case TokImport, TokFrom:
			return nil, p.unsupportedf(p.cur(), "module imports are not supported")
		case TokAt:
			return nil, p.unsupportedf(p.cur(), "decorators are not supported")
		default:
			return nil, p.syntaxErrf(p.cur(), "expected a function or class definition, got %s", p.cur())
		}
	}
}

func (p *Parser) parseFunctionDef() (*FunctionDef, error) {
	defTok := p.advance() // def

	nameTok, err := p.expect(TokName)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}

	var params []Param
	for !p.at(TokRParen) {
		if len(params) > 0 {
			if _, err := p.expect(TokComma); err != nil {
				return nil, err
			}
		}
		if p.at(TokStar) {
			return nil, p.unsupportedf(p.cur(), "starred parameters are not supported")
		}
		paramTok, err := p.expect(TokName)
		if err != nil {
			return nil, err
		}
		if p.at(TokAssign) {
			return nil, p.unsupportedf(p.cur(), "default parameter values are not supported")
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, p.syntaxErrf(paramTok, "parameter %s needs a type annotation", paramTok.Text)
		}
		ann, err := p.parseTypeAnn()
		if err != nil {
			return nil, err
		}
		if p.at(TokAssign) {
			return nil, p.unsupportedf(p.cur(), "default parameter values are not supported")
		}
		params = append(params, Param{Name: paramTok.Text, Ann: ann, Loc: p.tokLoc(paramTok)})
	}
	p.advance() // )

	if _, err := p.expect(TokArrow); err != nil {
		return nil, p.syntaxErrf(nameTok, "function %s needs a return type annotation", nameTok.Text)
	}
	retAnn, err := p.parseTypeAnn()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FunctionDef{
		Name:   nameTok.Text,
		Params: params,
		RetAnn: retAnn,
		Body:   body,
		Loc:    p.tokLoc(defTok),
	}, nil
}

func (p *Parser) parseClassDef() (*ClassDef, error) {
	classTok := p.advance() // class

	nameTok, err := p.expect(TokName)
	if err != nil {
		return nil, err
	}
	if p.at(TokLParen) {
		return nil, p.unsupportedf(p.cur(), "inheritance is not supported")
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIndent); err != nil {
		return nil, err
	}

	var fields []FieldDef
	for !p.at(TokDedent) {
		if p.accept(TokNewline) {
			continue
		}
		if p.at(TokDef) {
			return nil, p.unsupportedf(p.cur(), "methods are not supported; classes declare fields only")
		}
		fieldTok, err := p.expect(TokName)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		ann, err := p.parseTypeAnn()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokNewline); err != nil {
			return nil, err
		}
		fields = append(fields, FieldDef{Name: fieldTok.Text, Ann: ann, Loc: p.tokLoc(fieldTok)})
	}
	p.advance() // dedent

	if len(fields) == 0 {
		return nil, p.syntaxErrf(nameTok, "class %s declares no fields", nameTok.Text)
	}

	return &ClassDef{Name: nameTok.Text, Fields: fields, Loc: p.tokLoc(classTok)}, nil
}

func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIndent); err != nil {
		return nil, err
	}

	var stmts []Stmt
	for !p.at(TokDedent) {
		if p.accept(TokNewline) {
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // dedent

	if len(stmts) == 0 {
		return nil, p.syntaxErrf(p.cur(), "empty block")
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	switch p.cur().Kind {
	case TokReturn:
		tok := p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokNewline); err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: value, Loc: p.tokLoc(tok)}, nil

	case TokAssert:
		tok := p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		message := ""
		if p.accept(TokComma) {
			msgTok, err := p.expect(TokString)
			if err != nil {
				return nil, err
			}
			message = msgTok.Text
		}
		if _, err := p.expect(TokNewline); err != nil {
			return nil, err
		}
		return &AssertStmt{Cond: cond, Message: message, Loc: p.tokLoc(tok)}, nil

	case TokIf:
		return p.parseIfStmt()

	case TokName:
		switch p.peek(1).Kind {
		case TokAssign:
			nameTok := p.advance()
			p.advance() // =
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokNewline); err != nil {
				return nil, err
			}
			return &AssignStmt{Name: nameTok.Text, NameLoc: p.tokLoc(nameTok), Value: value}, nil
		case TokAugAssign:
			return nil, p.unsupportedf(p.peek(1), "mutation is not supported; bind a new name instead")
		case TokColon:
			return nil, p.unsupportedf(p.cur(), "annotated assignments are only allowed in class bodies")
		}
		return nil, p.unsupportedf(p.cur(), "expression statements are not supported")

	case TokWhile:
		return nil, p.unsupportedf(p.cur(), "while loops are not supported; use recursion or a comprehension")
	case TokFor:
		return nil, p.unsupportedf(p.cur(), "for statements are not supported; use a comprehension")
	case TokTry, TokRaise:
		return nil, p.unsupportedf(p.cur(), "exception handling is not supported")
	case TokDel:
		return nil, p.unsupportedf(p.cur(), "mutation is not supported")
	case TokYield:
		return nil, p.unsupportedf(p.cur(), "generators are not supported")
	case TokPass:
		return nil, p.unsupportedf(p.cur(), "pass is not supported")
	case TokImport, TokFrom:
		return nil, p.unsupportedf(p.cur(), "module imports are not supported")
	default:
		return nil, p.syntaxErrf(p.cur(), "expected a statement, got %s", p.cur())
	}
}

func (p *Parser) parseIfStmt() (Stmt, error) {
	ifTok := p.advance() // if or elif

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var els []Stmt
	switch p.cur().Kind {
	case TokElif:
		// elif desugars to an else holding a nested if
		nested, err := p.parseIfStmt()
		if err != nil {
			return nil, err
		}
		els = []Stmt{nested}
	case TokElse:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		els, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return &IfStmt{Cond: cond, Then: then, Else: els, Loc: p.tokLoc(ifTok)}, nil
}

// parseExpr parses a conditional expression, the lowest precedence level.
func (p *Parser) parseExpr() (Expr, error) {
	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.at(TokIf) {
		ifTok := p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokElse); err != nil {
			return nil, p.syntaxErrf(ifTok, "conditional expression requires an else branch")
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Conditional{Cond: cond, Then: then, Else: els, Loc: p.tokLoc(ifTok)}, nil
	}

	return then, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(TokOr) {
		tok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: "or", Left: left, Right: right, Loc: p.tokLoc(tok)}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(TokAnd) {
		tok := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: "and", Left: left, Right: right, Loc: p.tokLoc(tok)}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.at(TokNot) {
		tok := p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "not", X: x, Loc: p.tokLoc(tok)}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[TokenKind]string{
	TokEq: "==",
	TokNe: "!=",
	TokLt: "<",
	TokLe: "<=",
	TokGt: ">",
	TokGe: ">=",
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	op, ok := comparisonOps[p.cur().Kind]
	if !ok {
		return left, nil
	}
	tok := p.advance()
	right, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	if _, chained := comparisonOps[p.cur().Kind]; chained {
		return nil, p.unsupportedf(p.cur(), "chained comparisons are not supported")
	}
	return &BinaryOp{Op: op, Left: left, Right: right, Loc: p.tokLoc(tok)}, nil
}

func (p *Parser) parseArith() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(TokPlus) || p.at(TokMinus) {
		tok := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: tok.Text, Left: left, Right: right, Loc: p.tokLoc(tok)}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(TokStar) || p.at(TokFloorDiv) || p.at(TokPercent) {
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: tok.Text, Left: left, Right: right, Loc: p.tokLoc(tok)}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.at(TokMinus) {
		tok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "-", X: x, Loc: p.tokLoc(tok)}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur().Kind {
		case TokLParen:
			tok := p.advance()
			var args []Expr
			for !p.at(TokRParen) {
				if len(args) > 0 {
					if _, err := p.expect(TokComma); err != nil {
						return nil, err
					}
				}
				if p.at(TokName) && p.peek(1).Kind == TokAssign {
					return nil, p.unsupportedf(p.cur(), "keyword arguments are not supported")
				}
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			p.advance() // )
			expr = &Call{Fun: expr, Args: args, Loc: p.tokLoc(tok)}

		case TokDot:
			p.advance()
			fieldTok, err := p.expect(TokName)
			if err != nil {
				return nil, err
			}
			expr = &Attribute{Receiver: expr, Field: fieldTok.Text, Loc: p.tokLoc(fieldTok)}

		case TokLBracket:
			return nil, p.unsupportedf(p.cur(), "subscripting is not supported")

		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseAtom() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.syntaxErrf(tok, "integer literal out of 64-bit range")
		}
		return &IntLit{Value: n, Loc: p.tokLoc(tok)}, nil

	case TokString:
		p.advance()
		return &StringLit{Value: tok.Text, Loc: p.tokLoc(tok)}, nil

	case TokTrue:
		p.advance()
		return &BoolLit{Value: true, Loc: p.tokLoc(tok)}, nil

	case TokFalse:
		p.advance()
		return &BoolLit{Value: false, Loc: p.tokLoc(tok)}, nil

	case TokName:
		// Compile-time intrinsics get dedicated nodes
		switch {
		case tok.Text == "Type" && p.peek(1).Kind == TokLParen:
			return p.parseTypeIntrinsic()
		case tok.Text == "empty_list" && p.peek(1).Kind == TokLParen:
			return p.parseEmptyListIntrinsic()
		}
		p.advance()
		return &Symbol{Name: tok.Text, Loc: p.tokLoc(tok)}, nil

	case TokLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(TokComma) {
			return nil, p.unsupportedf(p.cur(), "tuples are not supported")
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokLBracket:
		return p.parseListDisplay()

	case TokLambda:
		return nil, p.unsupportedf(tok, "lambda expressions are not supported")
	case TokYield:
		return nil, p.unsupportedf(tok, "generators are not supported")
	default:
		return nil, p.syntaxErrf(tok, "expected an expression, got %s", tok)
	}
}

func (p *Parser) parseTypeIntrinsic() (Expr, error) {
	tok := p.advance() // Type
	p.advance()        // (
	nameTok, err := p.expect(TokString)
	if err != nil {
		return nil, p.syntaxErrf(tok, "Type() takes a single string literal naming a C++ type")
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return &TypeLit{CppName: nameTok.Text, Loc: p.tokLoc(tok)}, nil
}

func (p *Parser) parseEmptyListIntrinsic() (Expr, error) {
	tok := p.advance() // empty_list
	p.advance()        // (
	ann, err := p.parseTypeAnn()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return &EmptyListLit{ElemAnn: ann, Loc: p.tokLoc(tok)}, nil
}

func (p *Parser) parseListDisplay() (Expr, error) {
	openTok := p.advance() // [

	if p.at(TokRBracket) {
		p.advance()
		return &ListLit{Loc: p.tokLoc(openTok)}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.at(TokFor) {
		p.advance()
		varTok, err := p.expect(TokName)
		if err != nil {
			return nil, err
		}
		if p.at(TokComma) {
			return nil, p.unsupportedf(p.cur(), "comprehensions bind a single variable")
		}
		if _, err := p.expect(TokIn); err != nil {
			return nil, err
		}
		source, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(TokIf) {
			return nil, p.unsupportedf(p.cur(), "comprehension filters are not supported")
		}
		if p.at(TokFor) {
			return nil, p.unsupportedf(p.cur(), "nested comprehension clauses are not supported")
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		return &Comprehension{
			Elem:   first,
			Var:    varTok.Text,
			VarLoc: p.tokLoc(varTok),
			Source: source,
			Loc:    p.tokLoc(openTok),
		}, nil
	}

	elems := []Expr{first}
	for p.accept(TokComma) {
		if p.at(TokRBracket) {
			break
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}
	return &ListLit{Elems: elems, Loc: p.tokLoc(openTok)}, nil
}

func (p *Parser) parseTypeAnn() (TypeAnn, error) {
	tok, err := p.expect(TokName)
	if err != nil {
		return nil, p.syntaxErrf(p.cur(), "expected a type annotation, got %s", p.cur())
	}

	switch tok.Text {
	case "List":
		if _, err := p.expect(TokLBracket); err != nil {
			return nil, err
		}
		elem, err := p.parseTypeAnn()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		return &ListAnn{Elem: elem, Loc: p.tokLoc(tok)}, nil

	case "Callable":
		if _, err := p.expect(TokLBracket); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokLBracket); err != nil {
			return nil, err
		}
		var args []TypeAnn
		for !p.at(TokRBracket) {
			if len(args) > 0 {
				if _, err := p.expect(TokComma); err != nil {
					return nil, err
				}
			}
			arg, err := p.parseTypeAnn()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		p.advance() // ]
		if _, err := p.expect(TokComma); err != nil {
			return nil, err
		}
		ret, err := p.parseTypeAnn()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		return &CallableAnn{Args: args, Ret: ret, Loc: p.tokLoc(tok)}, nil

	default:
		return &NamedAnn{Ident: tok.Text, Loc: p.tokLoc(tok)}, nil
	}
}
