package parser

import (
	"errors"
	"fmt"
	"strings"

	"rjit/pkg/syntax"
)

// Parser consumes the flat token slice produced by the Lexer and builds a
// syntax tree. Identifiers are left unresolved; the binder fills in symbols
// and method scopes.
//
// Grammar:
//
//	program      = (declaration | statement)* EOF
//	declaration  = ("export")? functionDecl | "declare" "function" signature ";" | classDecl
//	functionDecl = "function" signature block
//	signature    = IDENTIFIER "(" params? ")" (":" type)?
//	params       = param ("," param)*
//	param        = IDENTIFIER (":" type)?
//	type         = IDENTIFIER ("[" "]")*
//	classDecl    = "class" IDENTIFIER "{" member* "}"
//	member       = "constructor" "(" params? ")" block
//	             | ("static")? IDENTIFIER "(" params? ")" (":" type)? block
//	             | IDENTIFIER (":" type)? ";"
//	statement    = varStmt | "if" "(" expression ")" statement ("else" statement)?
//	             | "while" "(" expression ")" statement | "return" expression? ";"
//	             | functionDecl | block | expression ";"
//	varStmt      = "var" IDENTIFIER (":" type)? ("=" expression)? ";"
//	expression   = relational ("=" expression)?
//	relational   = additive (("<" | ">") additive)*
//	additive     = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/") unary)*
//	unary        = ("-" | "!") unary | postfix
//	postfix      = primary ("(" args? ")" | "." IDENTIFIER | "++" | "--")*
//	primary      = NUMBER | STRING | "true" | "false" | IDENTIFIER | "this"
//	             | "(" expression ")" | "[" args? "]" | "new" IDENTIFIER ("(" args? ")")?
//
// A statement's ";" may be left out before "}", at end of input, or when the
// next token starts a new line.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// SyntaxError is a parse failure together with the offending source line.
type SyntaxError struct {
	Line    int
	Msg     string
	Snippet string

	// AtEOF is set when input ran out; more text might complete it.
	AtEOF bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s\n  |> %s", e.Line, e.Msg, e.Snippet)
}

// IsIncomplete reports whether err is a syntax error caused by input
// ending too early.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.AtEOF
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	lineIdx := tok.Line - 1

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return &SyntaxError{Line: tok.Line, Msg: fmt.Sprintf(format, args...), Snippet: snippet, AtEOF: tok.Type == EOF}
}

func loc(tok Token) syntax.Location {
	return syntax.Location{Line: tok.Line, Column: tok.Column}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// accept consumes the current token when it matches tt.
func (p *Parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

// implicitEnd reports whether a statement may end here without a
// semicolon: before "}", at end of input, or at a line break.
func (p *Parser) implicitEnd() bool {
	next := p.peek()
	if next.Type == RBRACE || next.Type == EOF {
		return true
	}
	return p.pos > 0 && next.Line > p.tokens[p.pos-1].Line
}

// endStatement consumes the terminating semicolon, which may be omitted
// where implicitEnd allows.
func (p *Parser) endStatement() error {
	if p.accept(SEMICOLON) || p.implicitEnd() {
		return nil
	}
	_, err := p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseIdentifier() (*syntax.Identifier, error) {
	tok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	return &syntax.Identifier{Loc: loc(tok), Name: tok.Lexeme}, nil
}

//  Expressions

// parseExpression is the entry point for expression parsing. Assignment is
// right-associative and binds loosest.
func (p *Parser) parseExpression() (syntax.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != ASSIGN {
		return left, nil
	}
	tok := p.advance()
	switch left.(type) {
	case *syntax.Identifier, *syntax.PropertyAccessExpression:
	default:
		return nil, p.fmtError(tok, "invalid assignment target %s", left)
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &syntax.AssignmentExpression{Loc: left.Pos(), Left: left, Right: right}, nil
}

var binaryOperators = map[TokenType]syntax.Operator{
	LESS:    syntax.OpLessThan,
	GREATER: syntax.OpGreaterThan,
	PLUS:    syntax.OpPlus,
	MINUS:   syntax.OpMinus,
	STAR:    syntax.OpAsterisk,
	SLASH:   syntax.OpSlash,
}

// parseBinary parses a left-associative chain of the given operators.
func (p *Parser) parseBinary(next func() (syntax.Expression, error), ops ...TokenType) (syntax.Expression, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		matched := false
		for _, op := range ops {
			if tt == op {
				matched = true
				break
			}
		}
		if !matched {
			return expr, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &syntax.BinaryExpression{Loc: expr.Pos(), Operator: binaryOperators[tt], Left: expr, Right: right}
	}
}

// parseRelational handles < and >
func (p *Parser) parseRelational() (syntax.Expression, error) {
	return p.parseBinary(p.parseAdditive, LESS, GREATER)
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (syntax.Expression, error) {
	return p.parseBinary(p.parseMultiplicative, PLUS, MINUS)
}

// parseMultiplicative handles * and /
func (p *Parser) parseMultiplicative() (syntax.Expression, error) {
	return p.parseBinary(p.parseUnary, STAR, SLASH)
}

func (p *Parser) parseUnary() (syntax.Expression, error) {
	tok := p.peek()
	var op syntax.Operator
	switch tok.Type {
	case MINUS:
		op = syntax.OpMinus
	case NOT:
		op = syntax.OpExclamation
	default:
		return p.parsePostfix()
	}
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &syntax.PrefixUnaryExpression{Loc: loc(tok), Operator: op, Operand: operand}, nil
}

func (p *Parser) parsePostfix() (syntax.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LPAREN:
			args, err := p.parseArguments(LPAREN, RPAREN)
			if err != nil {
				return nil, err
			}
			expr = &syntax.CallExpression{Loc: expr.Pos(), Callee: expr, Arguments: args}
		case DOT:
			p.advance()
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &syntax.PropertyAccessExpression{Loc: expr.Pos(), Object: expr, Name: name.Lexeme}
		case PLUS_PLUS, MINUS_MINUS:
			op := syntax.OpPlusPlus
			if p.advance().Type == MINUS_MINUS {
				op = syntax.OpMinusMinus
			}
			expr = &syntax.PostfixUnaryExpression{Loc: expr.Pos(), Operator: op, Operand: expr}
		default:
			return expr, nil
		}
	}
}

// parseArguments parses `open expr ("," expr)* end`.
func (p *Parser) parseArguments(open, end TokenType) (*syntax.ArgumentList, error) {
	start, err := p.expect(open)
	if err != nil {
		return nil, err
	}
	list := &syntax.ArgumentList{Loc: loc(start)}
	if p.accept(end) {
		return list, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Arguments = append(list.Arguments, arg)
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(end); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) parsePrimary() (syntax.Expression, error) {
	tok := p.advance()
	switch tok.Type {
	case NUMBER:
		return &syntax.Literal{Loc: loc(tok), LiteralKind: syntax.NumericLiteral, Text: tok.Lexeme}, nil
	case STRING:
		return &syntax.Literal{Loc: loc(tok), LiteralKind: syntax.StringLiteral, Text: tok.Lexeme}, nil
	case TRUE, FALSE:
		return &syntax.Literal{Loc: loc(tok), LiteralKind: syntax.BooleanLiteral, Text: tok.Lexeme}, nil
	case IDENTIFIER:
		return &syntax.Identifier{Loc: loc(tok), Name: tok.Lexeme}, nil
	case THIS:
		return &syntax.ThisExpression{Loc: loc(tok)}, nil
	case LPAREN:
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &syntax.ParenthesizedExpression{Loc: loc(tok), Expression: inner}, nil
	case LBRACKET:
		p.pos--
		elems, err := p.parseArguments(LBRACKET, RBRACKET)
		if err != nil {
			return nil, err
		}
		return &syntax.ArrayLiteralExpression{Loc: loc(tok), Elements: elems.Arguments}, nil
	case NEW:
		class, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		n := &syntax.NewExpression{Loc: loc(tok), Class: class}
		if p.peek().Type == LPAREN {
			if n.Arguments, err = p.parseArguments(LPAREN, RPAREN); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
	return nil, p.fmtError(tok, "unexpected %s (%q) in expression", tok.Type, tok.Lexeme)
}

//  Declarations

// parseType parses an optional `: type` suffix.
func (p *Parser) parseType() (*syntax.TypeAnnotation, error) {
	if !p.accept(COLON) {
		return nil, nil
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	t := &syntax.TypeAnnotation{Loc: loc(name), Name: name.Lexeme}
	for p.peek().Type == LBRACKET && p.peekNext().Type == RBRACKET {
		p.advance()
		p.advance()
		t.Name += "[]"
	}
	return t, nil
}

// parseParameters parses `"(" params? ")"`.
func (p *Parser) parseParameters() (*syntax.ParameterList, error) {
	open, err := p.expect(LPAREN)
	if err != nil {
		return nil, err
	}
	list := &syntax.ParameterList{Loc: loc(open)}
	if p.accept(RPAREN) {
		return list, nil
	}
	for {
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		list.Parameters = append(list.Parameters, &syntax.ParameterDeclaration{Loc: id.Loc, Identifier: id, Type: typ})
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return list, nil
}

// parseFunction parses a signature and, unless the method is declared, its
// body. The "function" keyword has already been consumed.
func (p *Parser) parseFunction(start Token, mods []syntax.Modifier, class string) (*syntax.MethodDeclaration, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	m := &syntax.MethodDeclaration{Loc: loc(start), Modifiers: mods, Class: class, Name: name}
	if m.Parameters, err = p.parseParameters(); err != nil {
		return nil, err
	}
	if m.ReturnType, err = p.parseType(); err != nil {
		return nil, err
	}
	if m.HasModifier(syntax.ModDeclare) {
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return m, nil
	}
	if m.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseClass(start Token) (*syntax.ClassDeclaration, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	c := &syntax.ClassDeclaration{Loc: loc(start), Name: name}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	for !p.accept(RBRACE) {
		member, err := p.parseMember(name.Name)
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, member)
	}
	return c, nil
}

func (p *Parser) parseMember(class string) (syntax.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case CONSTRUCTOR:
		p.advance()
		ctor := &syntax.ConstructorDeclaration{Loc: loc(tok), Class: class}
		var err error
		if ctor.Parameters, err = p.parseParameters(); err != nil {
			return nil, err
		}
		if ctor.Body, err = p.parseBlock(); err != nil {
			return nil, err
		}
		return ctor, nil
	case STATIC:
		p.advance()
		return p.parseFunction(tok, []syntax.Modifier{syntax.ModStatic}, class)
	case IDENTIFIER:
		if p.peekNext().Type == LPAREN {
			return p.parseFunction(tok, nil, class)
		}
		id, _ := p.parseIdentifier()
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return &syntax.PropertyDeclaration{Loc: id.Loc, Name: id, Type: typ}, nil
	}
	return nil, p.fmtError(tok, "unexpected %s (%q) in class body", tok.Type, tok.Lexeme)
}

//  Statements

// parseBlock parses `"{" statement* "}"`.
func (p *Parser) parseBlock() (*syntax.Block, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	b := &syntax.Block{Loc: loc(open)}
	for p.peek().Type != RBRACE {
		if p.peek().Type == EOF {
			return nil, p.fmtError(p.peek(), "unterminated block (opened on line %d)", open.Line)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, stmt)
	}
	p.advance()
	return b, nil
}

func (p *Parser) parseVar(start Token) (*syntax.LocalVariableStatement, error) {
	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	decl := &syntax.LocalVariableDeclaration{Loc: id.Loc, Identifier: id}
	if decl.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	if p.accept(ASSIGN) {
		if decl.Initializer, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &syntax.LocalVariableStatement{Loc: loc(start), Declaration: decl}, nil
}

// parseCondition parses `"(" expression ")"`.
func (p *Parser) parseCondition() (syntax.Expression, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf(start Token) (syntax.Statement, error) {
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &syntax.IfStatement{Loc: loc(start), Condition: cond, Then: then}
	if p.accept(ELSE) {
		if stmt.Else, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile(start Token) (syntax.Statement, error) {
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &syntax.IterationStatement{Loc: loc(start), Condition: cond, Body: body}, nil
}

func (p *Parser) parseReturn(start Token) (syntax.Statement, error) {
	stmt := &syntax.ReturnStatement{Loc: loc(start)}
	if !p.accept(SEMICOLON) && !p.implicitEnd() {
		var err error
		if stmt.Expression, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseStatement() (syntax.Statement, error) {
	tok := p.peek()
	switch tok.Type {
	case VAR:
		p.advance()
		return p.parseVar(tok)
	case IF:
		p.advance()
		return p.parseIf(tok)
	case WHILE:
		p.advance()
		return p.parseWhile(tok)
	case RETURN:
		p.advance()
		return p.parseReturn(tok)
	case FUNCTION:
		p.advance()
		return p.parseFunction(tok, nil, "")
	case LBRACE:
		return p.parseBlock()
	case CLASS, DECLARE, EXPORT:
		return nil, p.fmtError(tok, "%s is only allowed at top level", tok.Lexeme)
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &syntax.ExpressionStatement{Loc: loc(tok), Expression: expr}, nil
}

// parseTopLevel parses declarations that may only appear at file scope and
// falls back to a statement otherwise.
func (p *Parser) parseTopLevel() (syntax.Statement, error) {
	tok := p.peek()
	switch tok.Type {
	case DECLARE:
		p.advance()
		if _, err := p.expect(FUNCTION); err != nil {
			return nil, err
		}
		return p.parseFunction(tok, []syntax.Modifier{syntax.ModDeclare}, "")
	case EXPORT:
		p.advance()
		if _, err := p.expect(FUNCTION); err != nil {
			return nil, err
		}
		return p.parseFunction(tok, []syntax.Modifier{syntax.ModExport}, "")
	case CLASS:
		p.advance()
		return p.parseClass(tok)
	}
	return p.parseStatement()
}

// Parse builds the tree for a whole source file.
func Parse(tokens []Token, rawSource string) (*syntax.SourceCode, error) {
	p := NewParser(tokens, rawSource)
	root := &syntax.SourceCode{Loc: syntax.Location{Line: 1, Column: 1}}
	for p.peek().Type != EOF {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		root.Statements = append(root.Statements, stmt)
	}
	return root, nil
}

// ParseString lexes and parses src.
func ParseString(src string) (*syntax.SourceCode, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, src)
}
