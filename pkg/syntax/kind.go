package syntax

import "fmt"

// Location is a 1-based source position.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Column) }

// Kind identifies the shape of a node independently of its Go type.
type Kind int

const (
	KindInvalid Kind = iota

	// declarations
	KindSourceCode
	KindClassDeclaration
	KindPropertyDeclaration
	KindMethodDeclaration
	KindConstructorDeclaration
	KindParameterList
	KindParameterDeclaration
	KindTypeAnnotation

	// statements
	KindBlock
	KindLocalVariableStatement
	KindLocalVariableDeclaration
	KindExpressionStatement
	KindIfStatement
	KindIterationStatement
	KindReturnStatement

	// expressions
	KindIdentifier
	KindLiteral
	KindParenthesizedExpression
	KindBinaryExpression
	KindPrefixUnaryExpression
	KindPostfixUnaryExpression
	KindAssignmentExpression
	KindCallExpression
	KindArgumentList
	KindNewExpression
	KindPropertyAccessExpression
	KindThisExpression
	KindArrayLiteralExpression
)

var kindNames = [...]string{
	KindInvalid:                  "Invalid",
	KindSourceCode:               "SourceCode",
	KindClassDeclaration:         "ClassDeclaration",
	KindPropertyDeclaration:      "PropertyDeclaration",
	KindMethodDeclaration:        "MethodDeclaration",
	KindConstructorDeclaration:   "ConstructorDeclaration",
	KindParameterList:            "ParameterList",
	KindParameterDeclaration:     "ParameterDeclaration",
	KindTypeAnnotation:           "TypeAnnotation",
	KindBlock:                    "Block",
	KindLocalVariableStatement:   "LocalVariableStatement",
	KindLocalVariableDeclaration: "LocalVariableDeclaration",
	KindExpressionStatement:      "ExpressionStatement",
	KindIfStatement:              "IfStatement",
	KindIterationStatement:       "IterationStatement",
	KindReturnStatement:          "ReturnStatement",
	KindIdentifier:               "Identifier",
	KindLiteral:                  "Literal",
	KindParenthesizedExpression:  "ParenthesizedExpression",
	KindBinaryExpression:         "BinaryExpression",
	KindPrefixUnaryExpression:    "PrefixUnaryExpression",
	KindPostfixUnaryExpression:   "PostfixUnaryExpression",
	KindAssignmentExpression:     "AssignmentExpression",
	KindCallExpression:           "CallExpression",
	KindArgumentList:             "ArgumentList",
	KindNewExpression:            "NewExpression",
	KindPropertyAccessExpression: "PropertyAccessExpression",
	KindThisExpression:           "ThisExpression",
	KindArrayLiteralExpression:   "ArrayLiteralExpression",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Operator is the token of a unary or binary expression.
type Operator int

const (
	OpInvalid Operator = iota
	OpPlus
	OpMinus
	OpAsterisk
	OpSlash
	OpLessThan
	OpGreaterThan
	OpPlusPlus
	OpMinusMinus
	OpExclamation
)

var operatorNames = [...]string{
	OpInvalid:     "?",
	OpPlus:        "+",
	OpMinus:       "-",
	OpAsterisk:    "*",
	OpSlash:       "/",
	OpLessThan:    "<",
	OpGreaterThan: ">",
	OpPlusPlus:    "++",
	OpMinusMinus:  "--",
	OpExclamation: "!",
}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// LiteralKind distinguishes the token a Literal was read from.
type LiteralKind int

const (
	NumericLiteral LiteralKind = iota
	BooleanLiteral
	StringLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case NumericLiteral:
		return "NumericLiteral"
	case BooleanLiteral:
		return "BooleanLiteral"
	case StringLiteral:
		return "StringLiteral"
	}
	return fmt.Sprintf("LiteralKind(%d)", int(k))
}

// Modifier is a declaration keyword such as `declare`.
type Modifier int

const (
	ModDeclare Modifier = iota
	ModExport
	ModStatic
)

func (m Modifier) String() string {
	switch m {
	case ModDeclare:
		return "declare"
	case ModExport:
		return "export"
	case ModStatic:
		return "static"
	}
	return fmt.Sprintf("Modifier(%d)", int(m))
}
