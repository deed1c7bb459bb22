package syntax

import (
	"reflect"
	"testing"
)

func TestFlattenPreOrder(t *testing.T) {
	// if (a < 1) { a++; }
	tree := &IfStatement{
		Condition: &BinaryExpression{
			Operator: OpLessThan,
			Left:     &Identifier{Name: "a"},
			Right:    &Literal{LiteralKind: NumericLiteral, Text: "1"},
		},
		Then: &Block{Statements: []Statement{
			&ExpressionStatement{Expression: &PostfixUnaryExpression{
				Operator: OpPlusPlus,
				Operand:  &Identifier{Name: "a"},
			}},
		}},
	}

	got := Flatten(tree)
	want := []Kind{
		KindIfStatement,
		KindBinaryExpression,
		KindIdentifier,
		KindLiteral,
		KindBlock,
		KindExpressionStatement,
		KindPostfixUnaryExpression,
		KindIdentifier,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
}

func TestFlattenSkipsTypedNilChildren(t *testing.T) {
	var elseBranch *Block
	tree := &IfStatement{
		Condition: &Identifier{Name: "c"},
		Then:      &Block{},
		Else:      elseBranch,
	}
	got := Flatten(tree)
	want := []Kind{KindIfStatement, KindIdentifier, KindBlock}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
}

func TestWalkStopsDescending(t *testing.T) {
	call := &CallExpression{
		Callee: &Identifier{Name: "log"},
		Arguments: &ArgumentList{Arguments: []Expression{
			&Literal{LiteralKind: NumericLiteral, Text: "1"},
		}},
	}
	var seen []Kind
	Walk(call, func(n Node) bool {
		seen = append(seen, n.Kind())
		return n.Kind() != KindArgumentList
	})
	want := []Kind{KindCallExpression, KindIdentifier, KindArgumentList}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("Walk visited %v, want %v", seen, want)
	}
}

func TestKindAndOperatorNames(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{KindSourceCode.String(), "SourceCode"},
		{KindArrayLiteralExpression.String(), "ArrayLiteralExpression"},
		{Kind(999).String(), "Kind(999)"},
		{OpGreaterThan.String(), ">"},
		{OpMinusMinus.String(), "--"},
		{ModDeclare.String(), "declare"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestExpressionString(t *testing.T) {
	e := &CallExpression{
		Callee: &Identifier{Name: "log"},
		Arguments: &ArgumentList{Arguments: []Expression{
			&BinaryExpression{
				Operator: OpPlus,
				Left:     &Literal{LiteralKind: NumericLiteral, Text: "1"},
				Right:    &Literal{LiteralKind: NumericLiteral, Text: "2"},
			},
			&Literal{LiteralKind: StringLiteral, Text: "hi"},
		}},
	}
	if got, want := e.String(), `log((1 + 2), "hi")`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestQualifiedName(t *testing.T) {
	m := &MethodDeclaration{Class: "Point", Name: &Identifier{Name: "length"}}
	if got := m.QualifiedName(); got != "Point.length" {
		t.Fatalf("QualifiedName() = %q", got)
	}
	m.Class = ""
	if got := m.QualifiedName(); got != "length" {
		t.Fatalf("QualifiedName() = %q", got)
	}
}
