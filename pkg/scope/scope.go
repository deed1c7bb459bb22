// Package scope holds the resolved bindings the code generator reads:
// symbols with integer slots, owned by a global or a function scope.
package scope

import (
	"fmt"
	"strings"
)

type SymbolKind int

const (
	Parameter SymbolKind = iota
	LocalVariable
	Global
)

func (k SymbolKind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case LocalVariable:
		return "local"
	case Global:
		return "global"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is a resolved binding. Its slot is the position among the
// symbols of the same kind in the owning scope. Symbols are immutable
// once a scope hands them out.
type Symbol struct {
	name  string
	kind  SymbolKind
	slot  int
	scope Scope
}

func (s *Symbol) Name() string     { return s.name }
func (s *Symbol) Kind() SymbolKind { return s.kind }
func (s *Symbol) Slot() int        { return s.slot }
func (s *Symbol) Scope() Scope     { return s.scope }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s#%d", s.kind, s.name, s.slot)
}

// Scope is either a *GlobalScope or a *FunctionScope.
type Scope interface {
	Lookup(name string) *Symbol
	fmt.Stringer
}

// GlobalScope holds top-level bindings in declaration order.
type GlobalScope struct {
	symbols []*Symbol
}

func NewGlobalScope() *GlobalScope {
	return &GlobalScope{}
}

// Declare adds a global named name, or returns the existing one.
func (g *GlobalScope) Declare(name string) *Symbol {
	if s := g.Lookup(name); s != nil {
		return s
	}
	s := &Symbol{name: name, kind: Global, slot: len(g.symbols), scope: g}
	g.symbols = append(g.symbols, s)
	return s
}

func (g *GlobalScope) Lookup(name string) *Symbol {
	for _, s := range g.symbols {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Symbols returns the globals in declaration order.
func (g *GlobalScope) Symbols() []*Symbol {
	return append([]*Symbol(nil), g.symbols...)
}

func (g *GlobalScope) String() string {
	return "global " + listNames(g.symbols)
}

// FunctionScope holds the parameters and locals of one method.
// Parameters and locals are numbered independently from zero.
type FunctionScope struct {
	parameters []*Symbol
	locals     []*Symbol
}

func NewFunctionScope() *FunctionScope {
	return &FunctionScope{}
}

func (f *FunctionScope) AddParameter(name string) *Symbol {
	s := &Symbol{name: name, kind: Parameter, slot: len(f.parameters), scope: f}
	f.parameters = append(f.parameters, s)
	return s
}

func (f *FunctionScope) AddLocal(name string) *Symbol {
	s := &Symbol{name: name, kind: LocalVariable, slot: len(f.locals), scope: f}
	f.locals = append(f.locals, s)
	return s
}

// Lookup searches locals first, then parameters.
func (f *FunctionScope) Lookup(name string) *Symbol {
	for _, s := range f.locals {
		if s.name == name {
			return s
		}
	}
	for _, s := range f.parameters {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (f *FunctionScope) ParameterCount() int { return len(f.parameters) }
func (f *FunctionScope) LocalCount() int     { return len(f.locals) }

func (f *FunctionScope) Parameters() []*Symbol {
	return append([]*Symbol(nil), f.parameters...)
}

func (f *FunctionScope) Locals() []*Symbol {
	return append([]*Symbol(nil), f.locals...)
}

func (f *FunctionScope) String() string {
	return fmt.Sprintf("function params=%s locals=%s", listNames(f.parameters), listNames(f.locals))
}

func listNames(syms []*Symbol) string {
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.name
	}
	return "[" + strings.Join(names, " ") + "]"
}
