package codegen

import (
	"rjit/pkg/asm"
	"rjit/pkg/syntax"
)

type ContextKind int

const (
	Accumulator ContextKind = iota
	Stack
	Effect
)

func (k ContextKind) String() string {
	switch k {
	case Accumulator:
		return "accumulator"
	case Stack:
		return "stack"
	case Effect:
		return "effect"
	}
	return "?"
}

// ExpressionContext says where the value of the expression being lowered
// must end up. Every expression rule finishes by plugging the register
// holding its value into the active context.
type ExpressionContext interface {
	Kind() ContextKind
	Plug(r asm.Register)
}

// AccumulatorContext wants the value in RAX, which is where every rule
// already leaves it.
type AccumulatorContext struct{ g *Generator }

func (AccumulatorContext) Kind() ContextKind { return Accumulator }
func (AccumulatorContext) Plug(asm.Register) {}

// StackContext wants the value pushed as one word.
type StackContext struct{ g *Generator }

func (StackContext) Kind() ContextKind     { return Stack }
func (c StackContext) Plug(r asm.Register) { c.g.asm.Push(r) }

// EffectContext discards the value.
type EffectContext struct{ g *Generator }

func (EffectContext) Kind() ContextKind { return Effect }
func (EffectContext) Plug(asm.Register) {}

// EvaluateForAccumulator lowers e leaving its value in RAX.
func (g *Generator) EvaluateForAccumulator(e syntax.Expression) error {
	return g.evaluate(AccumulatorContext{g}, e)
}

// EvaluateForStack lowers e leaving its value pushed on the stack.
func (g *Generator) EvaluateForStack(e syntax.Expression) error {
	return g.evaluate(StackContext{g}, e)
}

// EvaluateForEffect lowers e for its side effects only.
func (g *Generator) EvaluateForEffect(e syntax.Expression) error {
	return g.evaluate(EffectContext{g}, e)
}

func (g *Generator) evaluate(ctx ExpressionContext, n syntax.Node) error {
	g.contexts = append(g.contexts, ctx)
	defer func() { g.contexts = g.contexts[:len(g.contexts)-1] }()
	return g.visit(n)
}

// plug hands r to the innermost context.
func (g *Generator) plug(n syntax.Node, r asm.Register) error {
	if len(g.contexts) == 0 {
		return invariant(n, "expression lowered with no active context")
	}
	g.contexts[len(g.contexts)-1].Plug(r)
	return nil
}
