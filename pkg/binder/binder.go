// Package binder resolves names in a parsed source file. It builds the
// global scope, one function scope per method, and points every identifier
// at its symbol so the code generator never looks a name up itself.
package binder

import (
	"errors"
	"fmt"

	"rjit/pkg/scope"
	"rjit/pkg/syntax"
)

// MainName is the name of the synthetic method holding top-level statements.
const MainName = "<main>"

// Error is a name-resolution failure at a source location.
type Error struct {
	Loc syntax.Location
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Loc, e.Msg) }

// Program is a bound source file.
type Program struct {
	Globals *scope.GlobalScope

	// Main wraps the top-level statements; it is always present.
	Main *syntax.MethodDeclaration

	// Methods holds every function and class method in source order,
	// including ambient declarations. Main is not among them.
	Methods []*syntax.MethodDeclaration

	Constructors []*syntax.ConstructorDeclaration
}

// All returns Main followed by Methods.
func (p *Program) All() []*syntax.MethodDeclaration {
	return append([]*syntax.MethodDeclaration{p.Main}, p.Methods...)
}

type binder struct {
	globals  *scope.GlobalScope
	builtins map[string]bool
	errs     []error
}

func (b *binder) errorf(n syntax.Node, format string, args ...any) {
	var loc syntax.Location
	if !syntax.IsNil(n) {
		loc = n.Pos()
	}
	b.errs = append(b.errs, &Error{Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

// Bind resolves root. Builtins are globals the runtime provides without a
// declaration in the source; a `declare function` may still name one. All
// resolution errors are reported together; the returned Program is nil
// when there is any.
func Bind(root *syntax.SourceCode, builtins ...string) (*Program, error) {
	b := &binder{globals: scope.NewGlobalScope(), builtins: make(map[string]bool)}
	prog := &Program{Globals: b.globals}
	for _, name := range builtins {
		b.globals.Declare(name)
		b.builtins[name] = true
	}

	main := &syntax.MethodDeclaration{
		Loc:        root.Loc,
		Name:       &syntax.Identifier{Loc: root.Loc, Name: MainName},
		Parameters: &syntax.ParameterList{Loc: root.Loc},
		Body:       &syntax.Block{Loc: root.Loc},
	}
	prog.Main = main

	// Hoist every top-level name before resolving any body so functions
	// may call each other regardless of order.
	for _, s := range root.Statements {
		switch s := s.(type) {
		case *syntax.MethodDeclaration:
			if s.HasModifier(syntax.ModDeclare) && b.builtins[s.Name.Name] {
				s.Name.Symbol = b.globals.Lookup(s.Name.Name)
			} else {
				b.declareGlobal(s.Name)
			}
			prog.Methods = append(prog.Methods, s)
		case *syntax.ClassDeclaration:
			b.declareGlobal(s.Name)
			for _, m := range s.Members {
				switch m := m.(type) {
				case *syntax.MethodDeclaration:
					prog.Methods = append(prog.Methods, m)
				case *syntax.ConstructorDeclaration:
					prog.Constructors = append(prog.Constructors, m)
				}
			}
		default:
			main.Body.Statements = append(main.Body.Statements, s)
		}
	}

	b.bindMethod(main)
	for _, m := range prog.Methods {
		if !m.HasModifier(syntax.ModDeclare) {
			b.bindMethod(m)
		}
	}
	for _, c := range prog.Constructors {
		c.Scope = b.bindFunction(c.Parameters, c.Body)
	}

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return prog, nil
}

func (b *binder) declareGlobal(id *syntax.Identifier) {
	if id.Name == MainName {
		b.errorf(id, "%q is reserved", id.Name)
		return
	}
	if b.globals.Lookup(id.Name) != nil {
		b.errorf(id, "%q is already declared", id.Name)
		return
	}
	id.Symbol = b.globals.Declare(id.Name)
}

func (b *binder) bindMethod(m *syntax.MethodDeclaration) {
	if m.Body == nil {
		b.errorf(m, "function %q has no body", m.QualifiedName())
		return
	}
	m.Scope = b.bindFunction(m.Parameters, m.Body)
}

// bindFunction builds the scope of one method and resolves its body.
// Parameters take slots in order; var declarations anywhere in the body
// are hoisted to the function and numbered in source order. A var that
// repeats an existing name reuses that symbol.
func (b *binder) bindFunction(params *syntax.ParameterList, body *syntax.Block) *scope.FunctionScope {
	fs := scope.NewFunctionScope()
	if params != nil {
		for _, p := range params.Parameters {
			if fs.Lookup(p.Identifier.Name) != nil {
				b.errorf(p, "duplicate parameter %q", p.Identifier.Name)
				continue
			}
			p.Identifier.Symbol = fs.AddParameter(p.Identifier.Name)
		}
	}

	syntax.Walk(body, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.MethodDeclaration, *syntax.ClassDeclaration:
			return false
		case *syntax.LocalVariableDeclaration:
			sym := fs.Lookup(n.Identifier.Name)
			if sym == nil {
				sym = fs.AddLocal(n.Identifier.Name)
			}
			n.Identifier.Symbol = sym
		}
		return true
	})

	syntax.Walk(body, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.MethodDeclaration, *syntax.ClassDeclaration:
			return false
		case *syntax.Identifier:
			if n.Symbol != nil {
				return false
			}
			if n.Symbol = fs.Lookup(n.Name); n.Symbol == nil {
				n.Symbol = b.globals.Lookup(n.Name)
			}
			if n.Symbol == nil {
				b.errorf(n, "cannot find name %q", n.Name)
			}
		}
		return true
	})
	return fs
}
