package codegen

import (
	"testing"

	"rjit/pkg/scope"
	"rjit/pkg/syntax"
)

// benchMethod builds
//
//	var i = 0; var s = 0;
//	while (i < 100) { log(s + a * i); i++; }   (repeated n times)
func benchMethod(n int) *testMethod {
	m := newTestMethod("bench", []string{"a"}, []string{"i", "s"})
	globals := scope.NewGlobalScope()
	m.add(varStmt(m.ref("i"), num("0")), varStmt(m.ref("s"), num("0")))
	for k := 0; k < n; k++ {
		m.add(&syntax.IterationStatement{
			Condition: bin(syntax.OpLessThan, m.ref("i"), num("100")),
			Body: &syntax.Block{Statements: []syntax.Statement{
				exprStmt(call(globalRef(globals, "log"), bin(syntax.OpPlus, m.ref("s"), bin(syntax.OpAsterisk, m.ref("a"), m.ref("i"))))),
				exprStmt(&syntax.PostfixUnaryExpression{Operator: syntax.OpPlusPlus, Operand: m.ref("i")}),
			}},
		})
	}
	return m
}

func BenchmarkCompileLoop(b *testing.B) {
	g, _ := newTestGenerator()
	m := benchMethod(1)
	for i := 0; i < b.N; i++ {
		if _, err := g.Compile(m.decl); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompileLarge(b *testing.B) {
	g, _ := newTestGenerator()
	m := benchMethod(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Compile(m.decl); err != nil {
			b.Fatal(err)
		}
	}
}
