package parser

import (
	"fmt"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"var":         VAR,
	"let":         VAR,
	"function":    FUNCTION,
	"declare":     DECLARE,
	"export":      EXPORT,
	"static":      STATIC,
	"class":       CLASS,
	"constructor": CONSTRUCTOR,
	"if":          IF,
	"else":        ELSE,
	"while":       WHILE,
	"return":      RETURN,
	"new":         NEW,
	"this":        THIS,
	"true":        TRUE,
	"false":       FALSE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) token(tt TokenType, lexeme string, line, col int) Token {
	return Token{Type: tt, Lexeme: lexeme, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to end of line; "//" is consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including "*/"; "/*" is
// consumed.
func (l *Lexer) skipBlockComment() error {
	startLine := l.line
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return fmt.Errorf("unterminated block comment (opened on line %d)", startLine)
}

func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return l.token(tt, lexeme, line, col)
}

// scanNumber collects digits, an optional fraction and an optional
// exponent: 12, 3.25, 1e-3.
func (l *Lexer) scanNumber() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	digits := func() int {
		n := 0
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
			n++
		}
		return n
	}

	digits()
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		l.advance()
		digits()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if digits() == 0 {
			return Token{}, fmt.Errorf("malformed exponent in number on line %d", line)
		}
	}
	if r := l.peek(); unicode.IsLetter(r) || r == '_' {
		return Token{}, fmt.Errorf("unexpected %q after number on line %d", r, line)
	}
	return l.token(NUMBER, string(l.src[start:l.pos]), line, col), nil
}

// scanString collects a string literal delimited by quote.
func (l *Lexer) scanString(quote rune) (Token, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	var val []rune

	for l.pos < len(l.src) {
		r := l.peek()
		if r == quote {
			break
		}
		if r == '\n' {
			return Token{}, fmt.Errorf("unterminated string literal on line %d", line)
		}
		if r == '\\' {
			l.advance()
			next := l.peek()
			switch next {
			case 'n':
				val = append(val, '\n')
			case 't':
				val = append(val, '\t')
			case '"', '\'', '\\':
				val = append(val, next)
			default:
				return Token{}, fmt.Errorf("unknown escape sequence \\%c on line %d", next, line)
			}
			l.advance()
			continue
		}
		val = append(val, r)
		l.advance()
	}

	if l.pos >= len(l.src) {
		return Token{}, fmt.Errorf("unterminated string literal on line %d", line)
	}
	l.advance() // closing quote

	return l.token(STRING, string(val), line, col), nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return l.token(EOF, "", l.line, l.col), nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '/' && l.peek2() == '*' {
			l.advance()
			l.advance()
			if err := l.skipBlockComment(); err != nil {
				return Token{}, err
			}
			continue
		}
		break
	}

	ch := l.peek()
	line, col := l.line, l.col

	if unicode.IsLetter(ch) || ch == '_' || ch == '$' {
		return l.scanIdent(), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}
	if ch == '"' || ch == '\'' {
		return l.scanString(ch)
	}

	l.advance()
	single := func(tt TokenType) (Token, error) {
		return l.token(tt, string(ch), line, col), nil
	}
	switch ch {
	case '{':
		return single(LBRACE)
	case '}':
		return single(RBRACE)
	case '(':
		return single(LPAREN)
	case ')':
		return single(RPAREN)
	case '[':
		return single(LBRACKET)
	case ']':
		return single(RBRACKET)
	case '.':
		return single(DOT)
	case ';':
		return single(SEMICOLON)
	case ',':
		return single(COMMA)
	case ':':
		return single(COLON)
	case '*':
		return single(STAR)
	case '/':
		return single(SLASH)
	case '!':
		return single(NOT)
	case '=':
		return single(ASSIGN)
	case '<':
		return single(LESS)
	case '>':
		return single(GREATER)
	case '+':
		if l.peek() == '+' {
			l.advance()
			return l.token(PLUS_PLUS, "++", line, col), nil
		}
		return single(PLUS)
	case '-':
		if l.peek() == '-' {
			l.advance()
			return l.token(MINUS_MINUS, "--", line, col), nil
		}
		return single(MINUS)
	default:
		return Token{}, fmt.Errorf("unexpected character %q on line %d", ch, line)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It stops at the first illegal character or unterminated comment/string.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
