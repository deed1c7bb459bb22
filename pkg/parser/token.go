package parser

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name
	NUMBER     // decimal number literal, 1, 2.5, 1e3
	STRING     // string literal "..." or '...'

	// Keywords
	VAR         // "var" (also "let")
	FUNCTION    // "function"
	DECLARE     // "declare"
	EXPORT      // "export"
	STATIC      // "static"
	CLASS       // "class"
	CONSTRUCTOR // "constructor"
	IF          // "if"
	ELSE        // "else"
	WHILE       // "while"
	RETURN      // "return"
	NEW         // "new"
	THIS        // "this"
	TRUE        // "true"
	FALSE       // "false"

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :

	// Operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	SLASH       // /
	NOT         // !
	PLUS_PLUS   // ++
	MINUS_MINUS // --
	ASSIGN      // =
	LESS        // <
	GREATER     // >
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	VAR:         "VAR",
	FUNCTION:    "FUNCTION",
	DECLARE:     "DECLARE",
	EXPORT:      "EXPORT",
	STATIC:      "STATIC",
	CLASS:       "CLASS",
	CONSTRUCTOR: "CONSTRUCTOR",
	IF:          "IF",
	ELSE:        "ELSE",
	WHILE:       "WHILE",
	RETURN:      "RETURN",
	NEW:         "NEW",
	THIS:        "THIS",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	DOT:         "DOT",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	COLON:       "COLON",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	NOT:         "NOT",
	PLUS_PLUS:   "PLUS_PLUS",
	MINUS_MINUS: "MINUS_MINUS",
	ASSIGN:      "ASSIGN",
	LESS:        "LESS",
	GREATER:     "GREATER",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the matched source text; string literals without quotes
	Line   int    // 1-based source line
	Column int    // 1-based column of the first rune
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
