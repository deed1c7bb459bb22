// Package syntax defines the bound syntax tree handed to the code generator.
//
// The set of node types is closed: every type implements Node through an
// unexported marker method, so consumers switch over the concrete types.
package syntax

import (
	"fmt"
	"strings"

	"rjit/pkg/scope"
)

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Pos() Location
	node()
}

// Statement is a node that may appear in a block.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	String() string
	exprNode()
}

//  Declarations

// SourceCode is the root of a parsed file.
type SourceCode struct {
	Loc        Location
	Statements []Statement
}

func (*SourceCode) Kind() Kind       { return KindSourceCode }
func (n *SourceCode) Pos() Location  { return n.Loc }
func (*SourceCode) node()            {}
func (*SourceCode) stmtNode()        {}

// ClassDeclaration is `class Name { members }`. Only the parser and binder
// look inside it.
type ClassDeclaration struct {
	Loc     Location
	Name    *Identifier
	Members []Node // *PropertyDeclaration, *MethodDeclaration, *ConstructorDeclaration
}

func (*ClassDeclaration) Kind() Kind      { return KindClassDeclaration }
func (n *ClassDeclaration) Pos() Location { return n.Loc }
func (*ClassDeclaration) node()           {}
func (*ClassDeclaration) stmtNode()       {}

// PropertyDeclaration is a field inside a class body.
type PropertyDeclaration struct {
	Loc  Location
	Name *Identifier
	Type *TypeAnnotation
}

func (*PropertyDeclaration) Kind() Kind      { return KindPropertyDeclaration }
func (n *PropertyDeclaration) Pos() Location { return n.Loc }
func (*PropertyDeclaration) node()           {}
func (*PropertyDeclaration) stmtNode()       {}

// MethodDeclaration is a function, a class method, or the synthetic main
// method wrapping top-level statements.
//
//	declare function log(value);      Modifiers: [declare], Body: nil
//	function add(a, b) { ... }        Class: ""
//	class C { m() { ... } }           Class: "C"
type MethodDeclaration struct {
	Loc        Location
	Modifiers  []Modifier
	Class      string
	Name       *Identifier
	Parameters *ParameterList
	ReturnType *TypeAnnotation
	Body       *Block
	Scope      *scope.FunctionScope // set by the binder
}

func (*MethodDeclaration) Kind() Kind      { return KindMethodDeclaration }
func (n *MethodDeclaration) Pos() Location { return n.Loc }
func (*MethodDeclaration) node()           {}
func (*MethodDeclaration) stmtNode()       {}

// HasModifier reports whether m carries mod.
func (n *MethodDeclaration) HasModifier(mod Modifier) bool {
	for _, m := range n.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// QualifiedName is the method name prefixed with its class, if any.
func (n *MethodDeclaration) QualifiedName() string {
	name := ""
	if n.Name != nil {
		name = n.Name.Name
	}
	if n.Class != "" {
		return n.Class + "." + name
	}
	return name
}

// ConstructorDeclaration is `constructor(params) { body }` inside a class.
type ConstructorDeclaration struct {
	Loc        Location
	Class      string
	Parameters *ParameterList
	Body       *Block
	Scope      *scope.FunctionScope
}

func (*ConstructorDeclaration) Kind() Kind      { return KindConstructorDeclaration }
func (n *ConstructorDeclaration) Pos() Location { return n.Loc }
func (*ConstructorDeclaration) node()           {}
func (*ConstructorDeclaration) stmtNode()       {}

// ParameterList holds the formal parameters of a method.
type ParameterList struct {
	Loc        Location
	Parameters []*ParameterDeclaration
}

func (*ParameterList) Kind() Kind      { return KindParameterList }
func (n *ParameterList) Pos() Location { return n.Loc }
func (*ParameterList) node()           {}

// Len is safe on a nil list.
func (n *ParameterList) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Parameters)
}

// ParameterDeclaration is one formal parameter, `name: type`.
type ParameterDeclaration struct {
	Loc        Location
	Identifier *Identifier
	Type       *TypeAnnotation
}

func (*ParameterDeclaration) Kind() Kind      { return KindParameterDeclaration }
func (n *ParameterDeclaration) Pos() Location { return n.Loc }
func (*ParameterDeclaration) node()           {}

// TypeAnnotation is the `: type` suffix of a declaration. It carries no
// meaning for code generation.
type TypeAnnotation struct {
	Loc  Location
	Name string
}

func (*TypeAnnotation) Kind() Kind      { return KindTypeAnnotation }
func (n *TypeAnnotation) Pos() Location { return n.Loc }
func (*TypeAnnotation) node()           {}

//  Statements

// Block is `{ statements }`.
type Block struct {
	Loc        Location
	Statements []Statement
}

func (*Block) Kind() Kind      { return KindBlock }
func (n *Block) Pos() Location { return n.Loc }
func (*Block) node()           {}
func (*Block) stmtNode()       {}

// LocalVariableStatement is `var declaration;`.
type LocalVariableStatement struct {
	Loc         Location
	Declaration *LocalVariableDeclaration
}

func (*LocalVariableStatement) Kind() Kind      { return KindLocalVariableStatement }
func (n *LocalVariableStatement) Pos() Location { return n.Loc }
func (*LocalVariableStatement) node()           {}
func (*LocalVariableStatement) stmtNode()       {}

// LocalVariableDeclaration is `name: type = initializer`; the type and the
// initializer are optional.
type LocalVariableDeclaration struct {
	Loc         Location
	Identifier  *Identifier
	Type        *TypeAnnotation
	Initializer Expression
}

func (*LocalVariableDeclaration) Kind() Kind      { return KindLocalVariableDeclaration }
func (n *LocalVariableDeclaration) Pos() Location { return n.Loc }
func (*LocalVariableDeclaration) node()           {}

// ExpressionStatement evaluates an expression for its side effects.
type ExpressionStatement struct {
	Loc        Location
	Expression Expression
}

func (*ExpressionStatement) Kind() Kind      { return KindExpressionStatement }
func (n *ExpressionStatement) Pos() Location { return n.Loc }
func (*ExpressionStatement) node()           {}
func (*ExpressionStatement) stmtNode()       {}

// IfStatement is `if (Condition) Then else Else`; Else may be nil.
type IfStatement struct {
	Loc       Location
	Condition Expression
	Then      Statement
	Else      Statement
}

func (*IfStatement) Kind() Kind      { return KindIfStatement }
func (n *IfStatement) Pos() Location { return n.Loc }
func (*IfStatement) node()           {}
func (*IfStatement) stmtNode()       {}

// IterationStatement is `while (Condition) Body`.
type IterationStatement struct {
	Loc       Location
	Condition Expression
	Body      Statement
}

func (*IterationStatement) Kind() Kind      { return KindIterationStatement }
func (n *IterationStatement) Pos() Location { return n.Loc }
func (*IterationStatement) node()           {}
func (*IterationStatement) stmtNode()       {}

// ReturnStatement is `return Expression;`; Expression may be nil.
type ReturnStatement struct {
	Loc        Location
	Expression Expression
}

func (*ReturnStatement) Kind() Kind      { return KindReturnStatement }
func (n *ReturnStatement) Pos() Location { return n.Loc }
func (*ReturnStatement) node()           {}
func (*ReturnStatement) stmtNode()       {}

//  Expressions

// Identifier is a name reference. Symbol is filled in by the binder.
type Identifier struct {
	Loc    Location
	Name   string
	Symbol *scope.Symbol
}

func (*Identifier) Kind() Kind        { return KindIdentifier }
func (n *Identifier) Pos() Location   { return n.Loc }
func (*Identifier) node()             {}
func (*Identifier) exprNode()         {}
func (n *Identifier) String() string  { return n.Name }

// Literal is a numeric, boolean or string constant; Text is the token text
// without quotes.
//
//	var x = 3.5;
//	        ^^^  Literal{LiteralKind: NumericLiteral, Text: "3.5"}
type Literal struct {
	Loc         Location
	LiteralKind LiteralKind
	Text        string
}

func (*Literal) Kind() Kind      { return KindLiteral }
func (n *Literal) Pos() Location { return n.Loc }
func (*Literal) node()           {}
func (*Literal) exprNode()       {}
func (n *Literal) String() string {
	if n.LiteralKind == StringLiteral {
		return fmt.Sprintf("%q", n.Text)
	}
	return n.Text
}

// ParenthesizedExpression is `(Expression)`.
type ParenthesizedExpression struct {
	Loc        Location
	Expression Expression
}

func (*ParenthesizedExpression) Kind() Kind       { return KindParenthesizedExpression }
func (n *ParenthesizedExpression) Pos() Location  { return n.Loc }
func (*ParenthesizedExpression) node()            {}
func (*ParenthesizedExpression) exprNode()        {}
func (n *ParenthesizedExpression) String() string { return fmt.Sprintf("(%s)", n.Expression) }

// BinaryExpression is Left Operator Right.
//
//	a + 1
//	^ ^ ^
//	| | Right
//	| Operator
//	Left
type BinaryExpression struct {
	Loc      Location
	Operator Operator
	Left     Expression
	Right    Expression
}

func (*BinaryExpression) Kind() Kind      { return KindBinaryExpression }
func (n *BinaryExpression) Pos() Location { return n.Loc }
func (*BinaryExpression) node()           {}
func (*BinaryExpression) exprNode()       {}
func (n *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Operator, n.Right)
}

// PrefixUnaryExpression is Operator Operand, e.g. `-x` or `!done`.
type PrefixUnaryExpression struct {
	Loc      Location
	Operator Operator
	Operand  Expression
}

func (*PrefixUnaryExpression) Kind() Kind       { return KindPrefixUnaryExpression }
func (n *PrefixUnaryExpression) Pos() Location  { return n.Loc }
func (*PrefixUnaryExpression) node()            {}
func (*PrefixUnaryExpression) exprNode()        {}
func (n *PrefixUnaryExpression) String() string { return fmt.Sprintf("%s%s", n.Operator, n.Operand) }

// PostfixUnaryExpression is Operand Operator, `x++` or `x--`.
type PostfixUnaryExpression struct {
	Loc      Location
	Operator Operator
	Operand  Expression
}

func (*PostfixUnaryExpression) Kind() Kind       { return KindPostfixUnaryExpression }
func (n *PostfixUnaryExpression) Pos() Location  { return n.Loc }
func (*PostfixUnaryExpression) node()            {}
func (*PostfixUnaryExpression) exprNode()        {}
func (n *PostfixUnaryExpression) String() string { return fmt.Sprintf("%s%s", n.Operand, n.Operator) }

// AssignmentExpression is `Left = Right`.
type AssignmentExpression struct {
	Loc   Location
	Left  Expression
	Right Expression
}

func (*AssignmentExpression) Kind() Kind       { return KindAssignmentExpression }
func (n *AssignmentExpression) Pos() Location  { return n.Loc }
func (*AssignmentExpression) node()            {}
func (*AssignmentExpression) exprNode()        {}
func (n *AssignmentExpression) String() string { return fmt.Sprintf("%s = %s", n.Left, n.Right) }

// CallExpression is `Callee(Arguments)`.
type CallExpression struct {
	Loc       Location
	Callee    Expression
	Arguments *ArgumentList
}

func (*CallExpression) Kind() Kind      { return KindCallExpression }
func (n *CallExpression) Pos() Location { return n.Loc }
func (*CallExpression) node()           {}
func (*CallExpression) exprNode()       {}
func (n *CallExpression) String() string {
	return fmt.Sprintf("%s(%s)", n.Callee, n.Arguments)
}

// ArgumentList is the actual arguments of a call or `new`.
type ArgumentList struct {
	Loc       Location
	Arguments []Expression
}

func (*ArgumentList) Kind() Kind      { return KindArgumentList }
func (n *ArgumentList) Pos() Location { return n.Loc }
func (*ArgumentList) node()           {}

// Len is safe on a nil list.
func (n *ArgumentList) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Arguments)
}

func (n *ArgumentList) String() string {
	if n == nil {
		return ""
	}
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// NewExpression is `new Class(Arguments)`.
type NewExpression struct {
	Loc       Location
	Class     Expression
	Arguments *ArgumentList
}

func (*NewExpression) Kind() Kind      { return KindNewExpression }
func (n *NewExpression) Pos() Location { return n.Loc }
func (*NewExpression) node()           {}
func (*NewExpression) exprNode()       {}
func (n *NewExpression) String() string {
	return fmt.Sprintf("new %s(%s)", n.Class, n.Arguments)
}

// PropertyAccessExpression is `Object.Name`. Name is not resolved.
type PropertyAccessExpression struct {
	Loc    Location
	Object Expression
	Name   string
}

func (*PropertyAccessExpression) Kind() Kind       { return KindPropertyAccessExpression }
func (n *PropertyAccessExpression) Pos() Location  { return n.Loc }
func (*PropertyAccessExpression) node()            {}
func (*PropertyAccessExpression) exprNode()        {}
func (n *PropertyAccessExpression) String() string { return fmt.Sprintf("%s.%s", n.Object, n.Name) }

// ThisExpression is `this`.
type ThisExpression struct {
	Loc Location
}

func (*ThisExpression) Kind() Kind      { return KindThisExpression }
func (n *ThisExpression) Pos() Location { return n.Loc }
func (*ThisExpression) node()           {}
func (*ThisExpression) exprNode()       {}
func (*ThisExpression) String() string  { return "this" }

// ArrayLiteralExpression is `[a, b, c]`.
type ArrayLiteralExpression struct {
	Loc      Location
	Elements []Expression
}

func (*ArrayLiteralExpression) Kind() Kind      { return KindArrayLiteralExpression }
func (n *ArrayLiteralExpression) Pos() Location { return n.Loc }
func (*ArrayLiteralExpression) node()           {}
func (*ArrayLiteralExpression) exprNode()       {}
func (n *ArrayLiteralExpression) String() string {
	return fmt.Sprintf("[%s]", (&ArgumentList{Arguments: n.Elements}).String())
}
