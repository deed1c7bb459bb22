package syntax

import "reflect"

// Flatten lists the kinds of n and all of its descendants in pre-order.
// Tests use it to compare tree shapes without spelling out whole trees.
func Flatten(n Node) []Kind {
	var out []Kind
	Walk(n, func(n Node) bool {
		out = append(out, n.Kind())
		return true
	})
	return out
}

// Walk calls fn for n and then, if fn returns true, for each child in
// source order. Nil children are skipped.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range children(n) {
		Walk(c, fn)
	}
}

func children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, c := range ns {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *SourceCode:
		for _, s := range n.Statements {
			add(s)
		}
	case *ClassDeclaration:
		add(n.Name)
		add(n.Members...)
	case *PropertyDeclaration:
		add(n.Name, n.Type)
	case *MethodDeclaration:
		add(n.Name, n.Parameters, n.ReturnType, n.Body)
	case *ConstructorDeclaration:
		add(n.Parameters, n.Body)
	case *ParameterList:
		for _, p := range n.Parameters {
			add(p)
		}
	case *ParameterDeclaration:
		add(n.Identifier, n.Type)
	case *Block:
		for _, s := range n.Statements {
			add(s)
		}
	case *LocalVariableStatement:
		add(n.Declaration)
	case *LocalVariableDeclaration:
		add(n.Identifier, n.Type, n.Initializer)
	case *ExpressionStatement:
		add(n.Expression)
	case *IfStatement:
		add(n.Condition, n.Then, n.Else)
	case *IterationStatement:
		add(n.Condition, n.Body)
	case *ReturnStatement:
		add(n.Expression)
	case *ParenthesizedExpression:
		add(n.Expression)
	case *BinaryExpression:
		add(n.Left, n.Right)
	case *PrefixUnaryExpression:
		add(n.Operand)
	case *PostfixUnaryExpression:
		add(n.Operand)
	case *AssignmentExpression:
		add(n.Left, n.Right)
	case *CallExpression:
		add(n.Callee, n.Arguments)
	case *ArgumentList:
		for _, a := range n.Arguments {
			add(a)
		}
	case *NewExpression:
		add(n.Class, n.Arguments)
	case *PropertyAccessExpression:
		add(n.Object)
	case *ArrayLiteralExpression:
		for _, e := range n.Elements {
			add(e)
		}
	}
	return out
}

// isNil catches typed nil pointers stored in an interface, which is how
// optional children such as a missing else branch arrive here.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// IsNil reports whether n is nil or a typed nil node pointer.
func IsNil(n Node) bool { return isNil(n) }
