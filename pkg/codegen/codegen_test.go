package codegen

import (
	"strings"
	"testing"

	"rjit/pkg/asm"
	"rjit/pkg/heap"
	"rjit/pkg/scope"
	"rjit/pkg/syntax"
)

const testBase heap.Address = 0x10000000

func newTestGenerator() (*Generator, *heap.Heap) {
	h := heap.New(testBase)
	h.DefineFunction("log")
	return New(h, Options{}), h
}

// testMethod is a bound method under construction.
type testMethod struct {
	decl *syntax.MethodDeclaration
	sym  map[string]*scope.Symbol
}

func newTestMethod(name string, params, locals []string) *testMethod {
	fs := scope.NewFunctionScope()
	m := &testMethod{sym: make(map[string]*scope.Symbol)}
	plist := &syntax.ParameterList{}
	for _, p := range params {
		s := fs.AddParameter(p)
		m.sym[p] = s
		plist.Parameters = append(plist.Parameters, &syntax.ParameterDeclaration{
			Identifier: &syntax.Identifier{Name: p, Symbol: s},
		})
	}
	for _, l := range locals {
		m.sym[l] = fs.AddLocal(l)
	}
	m.decl = &syntax.MethodDeclaration{
		Name:       &syntax.Identifier{Name: name},
		Parameters: plist,
		Body:       &syntax.Block{},
		Scope:      fs,
	}
	return m
}

func (m *testMethod) ref(name string) *syntax.Identifier {
	return &syntax.Identifier{Name: name, Symbol: m.sym[name]}
}

func (m *testMethod) add(stmts ...syntax.Statement) *testMethod {
	m.decl.Body.Statements = append(m.decl.Body.Statements, stmts...)
	return m
}

func globalRef(g *scope.GlobalScope, name string) *syntax.Identifier {
	return &syntax.Identifier{Name: name, Symbol: g.Declare(name)}
}

func num(text string) *syntax.Literal {
	return &syntax.Literal{LiteralKind: syntax.NumericLiteral, Text: text}
}

func boolean(v bool) *syntax.Literal {
	text := "false"
	if v {
		text = "true"
	}
	return &syntax.Literal{LiteralKind: syntax.BooleanLiteral, Text: text}
}

func bin(op syntax.Operator, l, r syntax.Expression) *syntax.BinaryExpression {
	return &syntax.BinaryExpression{Operator: op, Left: l, Right: r}
}

func call(callee syntax.Expression, args ...syntax.Expression) *syntax.CallExpression {
	return &syntax.CallExpression{Callee: callee, Arguments: &syntax.ArgumentList{Arguments: args}}
}

func varStmt(id *syntax.Identifier, init syntax.Expression) *syntax.LocalVariableStatement {
	return &syntax.LocalVariableStatement{Declaration: &syntax.LocalVariableDeclaration{Identifier: id, Initializer: init}}
}

func exprStmt(e syntax.Expression) *syntax.ExpressionStatement {
	return &syntax.ExpressionStatement{Expression: e}
}

func stackDelta(ins []asm.Instruction) int {
	total := 0
	for _, in := range ins {
		total += in.Stack
	}
	return total
}

func texts(ins []asm.Instruction) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.String()
	}
	return out
}

func indexOf(ins []asm.Instruction, text string) int {
	for i, in := range ins {
		if in.String() == text {
			return i
		}
	}
	return -1
}

func assertContains(t *testing.T, listing, expected string) {
	t.Helper()
	if !strings.Contains(listing, expected) {
		t.Errorf("expected listing to contain %q\nlisting:\n%s", expected, listing)
	}
}

// assertSequence checks that want appears as consecutive instructions.
func assertSequence(t *testing.T, ins []asm.Instruction, want ...string) {
	t.Helper()
	got := texts(ins)
	for i := 0; i+len(want) <= len(got); i++ {
		match := true
		for j := range want {
			if got[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	t.Errorf("expected sequence\n  %s\nin\n  %s", strings.Join(want, "\n  "), strings.Join(got, "\n  "))
}

// lower runs one expression through a fresh stream under the given entry
// point and returns what it emitted.
func lower(t *testing.T, g *Generator, eval func(syntax.Expression) error, e syntax.Expression) []asm.Instruction {
	t.Helper()
	g.reset()
	if err := eval(e); err != nil {
		t.Fatalf("lowering %s: %v", e, err)
	}
	if len(g.contexts) != 0 {
		t.Fatalf("context stack not empty after lowering %s: %d left", e, len(g.contexts))
	}
	return g.asm.Instructions()
}
