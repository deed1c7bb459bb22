package parser

import (
	"reflect"
	"strings"
	"testing"

	"rjit/pkg/syntax"
)

func mustParse(t *testing.T, src string) *syntax.SourceCode {
	t.Helper()
	root, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString(%q) error = %v", src, err)
	}
	return root
}

// TestParseExpressions checks precedence and associativity through the
// parenthesised String form of each expression.
func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"a - b - c", "((a - b) - c)"},
		{"a < b + 1", "(a < (b + 1))"},
		{"a > b < c", "((a > b) < c)"},
		{"(a + b) * c", "(((a + b)) * c)"},
		{"a / b * c", "((a / b) * c)"},
		{"x = y = 3", "x = y = 3"},
		{"x = a + 1", "x = (a + 1)"},
		{"log(a, 1)", "log(a, 1)"},
		{"f(x)(y)", "f(x)(y)"},
		{"i++", "i++"},
		{"i--", "i--"},
		{"-x", "-x"},
		{"a * -b", "(a * -b)"},
		{"!f(x)", "!f(x)"},
		{"o.p.q", "o.p.q"},
		{"this.x = 1", "this.x = 1"},
		{"new C(1)", "new C(1)"},
		{"new C", "new C()"},
		{"[1, 2]", "[1, 2]"},
		{"[]", "[]"},
		{`log("hi")`, `log("hi")`},
		{"true", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := mustParse(t, tt.input+";")
			if len(root.Statements) != 1 {
				t.Fatalf("got %d statements", len(root.Statements))
			}
			stmt, ok := root.Statements[0].(*syntax.ExpressionStatement)
			if !ok {
				t.Fatalf("got %T, expected *ExpressionStatement", root.Statements[0])
			}
			if got := stmt.Expression.String(); got != tt.want {
				t.Errorf("got %s, expected %s", got, tt.want)
			}
		})
	}
}

func TestParseShapes(t *testing.T) {
	const (
		src  = syntax.KindSourceCode
		meth = syntax.KindMethodDeclaration
		id   = syntax.KindIdentifier
		pl   = syntax.KindParameterList
		pd   = syntax.KindParameterDeclaration
		typ  = syntax.KindTypeAnnotation
		blk  = syntax.KindBlock
		lit  = syntax.KindLiteral
		bin  = syntax.KindBinaryExpression
		es   = syntax.KindExpressionStatement
		asg  = syntax.KindAssignmentExpression
	)
	tests := []struct {
		name  string
		input string
		want  []syntax.Kind
	}{
		{
			name:  "Declared Function",
			input: "declare function log(value: number): void;",
			want:  []syntax.Kind{src, meth, id, pl, pd, id, typ, typ},
		},
		{
			name:  "Function",
			input: "function add(a, b) { return a + b; }",
			want:  []syntax.Kind{src, meth, id, pl, pd, id, pd, id, blk, syntax.KindReturnStatement, bin, id, id},
		},
		{
			name:  "Variable",
			input: "var x = 1 + 2;",
			want:  []syntax.Kind{src, syntax.KindLocalVariableStatement, syntax.KindLocalVariableDeclaration, id, bin, lit, lit},
		},
		{
			name:  "Variable Without Initializer",
			input: "var a: number[];",
			want:  []syntax.Kind{src, syntax.KindLocalVariableStatement, syntax.KindLocalVariableDeclaration, id, typ},
		},
		{
			name:  "If Else",
			input: "if (a < 1) x = 1; else { x = 2; }",
			want:  []syntax.Kind{src, syntax.KindIfStatement, bin, id, lit, es, asg, id, lit, blk, es, asg, id, lit},
		},
		{
			name:  "Dangling Else Binds Inner",
			input: "if (a) if (b) x; else y;",
			want:  []syntax.Kind{src, syntax.KindIfStatement, id, syntax.KindIfStatement, id, es, id, es, id},
		},
		{
			name:  "While",
			input: "while (i < 3) i++;",
			want:  []syntax.Kind{src, syntax.KindIterationStatement, bin, id, lit, es, syntax.KindPostfixUnaryExpression, id},
		},
		{
			name:  "Class",
			input: "class C { x: number; constructor(a) { } static m() { return; } }",
			want: []syntax.Kind{src, syntax.KindClassDeclaration, id,
				syntax.KindPropertyDeclaration, id, typ,
				syntax.KindConstructorDeclaration, pl, pd, id, blk,
				meth, id, pl, blk, syntax.KindReturnStatement},
		},
		{
			name:  "Nested Function",
			input: "function outer() { function inner() {} }",
			want:  []syntax.Kind{src, meth, id, pl, blk, meth, id, pl, blk},
		},
		{
			name:  "Semicolons Optional At Line End",
			input: "var x = 1 + 2\nlog(x)",
			want:  []syntax.Kind{src, syntax.KindLocalVariableStatement, syntax.KindLocalVariableDeclaration, id, bin, lit, lit, es, syntax.KindCallExpression, id, syntax.KindArgumentList, id},
		},
		{
			name:  "Semicolon Optional Before Brace",
			input: "function f(a) { return a * 2 }",
			want:  []syntax.Kind{src, meth, id, pl, pd, id, blk, syntax.KindReturnStatement, bin, id, lit},
		},
		{
			name:  "Bare Return",
			input: "function f() { return }",
			want:  []syntax.Kind{src, meth, id, pl, blk, syntax.KindReturnStatement},
		},
		{
			name:  "Call Statement",
			input: "log(1);",
			want:  []syntax.Kind{src, es, syntax.KindCallExpression, id, syntax.KindArgumentList, lit},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := syntax.Flatten(mustParse(t, tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got\n%v\nexpected\n%v", got, tt.want)
			}
		})
	}
}

func TestParseDeclarations(t *testing.T) {
	root := mustParse(t, `
declare function log(value);
export function f(a: number, b): number { return a; }
class C { static s() {} m() {} }
`)
	if len(root.Statements) != 3 {
		t.Fatalf("got %d statements", len(root.Statements))
	}

	decl := root.Statements[0].(*syntax.MethodDeclaration)
	if !decl.HasModifier(syntax.ModDeclare) || decl.Body != nil || decl.QualifiedName() != "log" {
		t.Errorf("declared function parsed as %+v", decl)
	}

	f := root.Statements[1].(*syntax.MethodDeclaration)
	if !f.HasModifier(syntax.ModExport) || f.Parameters.Len() != 2 || f.ReturnType.Name != "number" {
		t.Errorf("exported function parsed as %+v", f)
	}
	if f.Parameters.Parameters[0].Type.Name != "number" || f.Parameters.Parameters[1].Type != nil {
		t.Errorf("parameter types parsed incorrectly")
	}

	c := root.Statements[2].(*syntax.ClassDeclaration)
	s := c.Members[0].(*syntax.MethodDeclaration)
	m := c.Members[1].(*syntax.MethodDeclaration)
	if s.QualifiedName() != "C.s" || !s.HasModifier(syntax.ModStatic) {
		t.Errorf("static member parsed as %s %v", s.QualifiedName(), s.Modifiers)
	}
	if m.QualifiedName() != "C.m" || len(m.Modifiers) != 0 {
		t.Errorf("member parsed as %s %v", m.QualifiedName(), m.Modifiers)
	}
}

func TestParseLocations(t *testing.T) {
	root := mustParse(t, "var x = 1;\n  log(x + 2);")

	v := root.Statements[0].(*syntax.LocalVariableStatement)
	if v.Pos() != (syntax.Location{Line: 1, Column: 1}) {
		t.Errorf("var statement at %s", v.Pos())
	}
	if got := v.Declaration.Initializer.Pos(); got != (syntax.Location{Line: 1, Column: 9}) {
		t.Errorf("initializer at %s", got)
	}

	es := root.Statements[1].(*syntax.ExpressionStatement)
	if es.Pos() != (syntax.Location{Line: 2, Column: 3}) {
		t.Errorf("expression statement at %s", es.Pos())
	}
	call := es.Expression.(*syntax.CallExpression)
	if got := call.Arguments.Arguments[0].(*syntax.BinaryExpression).Right.Pos(); got != (syntax.Location{Line: 2, Column: 11}) {
		t.Errorf("literal 2 at %s", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Missing Name", "var = 1;", "line 1: expected IDENTIFIER, got ASSIGN (\"=\")\n  |> var = 1;"},
		{"Missing Semicolon", "var x = 1 var y;", "line 1: expected SEMICOLON, got VAR"},
		{"Missing Expression", "var x = ;", `unexpected SEMICOLON (";") in expression`},
		{"Unclosed Call", "f(1;", "expected RPAREN"},
		{"Invalid Assignment", "1 = 2;", "invalid assignment target 1"},
		{"Nested Class", "function f() { class C {} }", "class is only allowed at top level"},
		{"Nested Declare", "{ declare function g(); }", "declare is only allowed at top level"},
		{"Declared With Body", "declare function f() {}", "expected SEMICOLON, got LBRACE"},
		{"Bad Class Member", "class C { 1 }", `unexpected NUMBER ("1") in class body`},
		{"Unterminated Block", "function f() {\n  log(1);", "unterminated block (opened on line 1)"},
		{"Lexer Error", "var x = #;", "unexpected character '#'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("ParseString(%q) succeeded, expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"function f() {", true},
		{"log(1,", true},
		{"var x =", true},
		{"if (a", true},
		{"var = 1;", false},
		{"1 = 2;", false},
	}
	for _, tt := range tests {
		_, err := ParseString(tt.input)
		if err == nil {
			t.Fatalf("ParseString(%q) succeeded", tt.input)
		}
		if got := IsIncomplete(err); got != tt.want {
			t.Errorf("IsIncomplete(%q) = %v, want %v (%v)", tt.input, got, tt.want, err)
		}
	}
	if IsIncomplete(nil) {
		t.Error("nil is not incomplete")
	}
}
