package codegen

import (
	"math"
	"strconv"

	"rjit/pkg/asm"
	"rjit/pkg/heap"
	"rjit/pkg/scope"
	"rjit/pkg/syntax"
)

// one is the IEEE-754 bit pattern of 1.0.
var one = math.Float64bits(1.0)

func (g *Generator) visitIdentifier(id *syntax.Identifier) error {
	sym := id.Symbol
	if sym == nil {
		return invariant(id, "identifier %q was not resolved", id.Name)
	}
	switch sym.Kind() {
	case scope.Parameter, scope.LocalVariable:
		addr, err := frameAddress(id, sym)
		if err != nil {
			return err
		}
		g.asm.Load(asm.RAX, addr.Operand())
	case scope.Global:
		fn, ok := g.heap.Function(sym.Name())
		if !ok {
			return invariant(id, "global %q has no heap object", sym.Name())
		}
		g.asm.MovImm(asm.RAX, uint64(fn))
	default:
		return invariant(id, "symbol %q has unknown kind %v", sym.Name(), sym.Kind())
	}
	return g.plug(id, asm.RAX)
}

func (g *Generator) visitLiteral(lit *syntax.Literal) error {
	switch lit.LiteralKind {
	case syntax.NumericLiteral:
		v, err := strconv.ParseFloat(lit.Text, 64)
		if err != nil {
			return invariant(lit, "malformed numeric literal %q", lit.Text)
		}
		g.allocate(asm.RAX, heap.NumberSize)
		g.asm.MovImm(asm.RCX, math.Float64bits(v))
		g.asm.Store(asm.Mem(asm.RAX, heap.NumberValueOffset), asm.RCX)
	case syntax.BooleanLiteral:
		switch lit.Text {
		case "true":
			g.asm.MovImm(asm.RAX, uint64(g.heap.TrueValue()))
		case "false":
			g.asm.MovImm(asm.RAX, uint64(g.heap.FalseValue()))
		default:
			return invariant(lit, "malformed boolean literal %q", lit.Text)
		}
	default:
		return Unsupported(lit)
	}
	return g.plug(lit, asm.RAX)
}

// visitBinary evaluates both operands onto the stack, left first, then
// pops the right operand into RAX and the left into RDX.
func (g *Generator) visitBinary(b *syntax.BinaryExpression) error {
	switch b.Operator {
	case syntax.OpPlus, syntax.OpMinus, syntax.OpAsterisk, syntax.OpLessThan, syntax.OpGreaterThan:
	default:
		return Unsupported(b)
	}

	if err := g.EvaluateForStack(b.Left); err != nil {
		return err
	}
	if err := g.EvaluateForStack(b.Right); err != nil {
		return err
	}
	g.asm.Pop(asm.RAX)
	g.asm.Pop(asm.RDX)
	g.asm.MovsdLoad(asm.XMM1, asm.Mem(asm.RAX, heap.NumberValueOffset))
	g.asm.MovsdLoad(asm.XMM0, asm.Mem(asm.RDX, heap.NumberValueOffset))

	switch b.Operator {
	case syntax.OpPlus:
		g.asm.Addsd(asm.XMM0, asm.XMM1)
	case syntax.OpMinus:
		g.asm.Subsd(asm.XMM0, asm.XMM1)
	case syntax.OpAsterisk:
		g.asm.Mulsd(asm.XMM0, asm.XMM1)
	case syntax.OpLessThan:
		g.asm.Cmpsd(asm.XMM0, asm.XMM1, asm.PredLess)
		g.selectBoolean()
		return g.plug(b, asm.RAX)
	case syntax.OpGreaterThan:
		g.asm.Cmpsd(asm.XMM0, asm.XMM1, asm.PredNotLessEqual)
		g.selectBoolean()
		return g.plug(b, asm.RAX)
	}

	g.allocate(asm.RAX, heap.NumberSize)
	g.asm.MovsdStore(asm.Mem(asm.RAX, heap.NumberValueOffset), asm.XMM0)
	return g.plug(b, asm.RAX)
}

// selectBoolean turns the all-ones/all-zeros mask left in XMM0 by cmpsd
// into the true or false singleton in RAX.
func (g *Generator) selectBoolean() {
	var isFalse, done asm.Label
	g.asm.MovqFromXMM(asm.RAX, asm.XMM0)
	g.asm.CmpImm(asm.RAX, -1)
	g.asm.Jne(&isFalse)
	g.asm.MovImm(asm.RAX, uint64(g.heap.TrueValue()))
	g.asm.Jmp(&done)
	g.asm.Bind(&isFalse)
	g.asm.MovImm(asm.RAX, uint64(g.heap.FalseValue()))
	g.asm.Bind(&done)
}

// visitPostfix updates the number in place and yields the same object.
func (g *Generator) visitPostfix(p *syntax.PostfixUnaryExpression) error {
	if p.Operator != syntax.OpPlusPlus && p.Operator != syntax.OpMinusMinus {
		return Unsupported(p)
	}
	if err := g.EvaluateForAccumulator(p.Operand); err != nil {
		return err
	}
	g.asm.MovsdLoad(asm.XMM0, asm.Mem(asm.RAX, heap.NumberValueOffset))
	g.asm.MovImm(asm.RCX, one)
	g.asm.MovqToXMM(asm.XMM1, asm.RCX)
	if p.Operator == syntax.OpPlusPlus {
		g.asm.Addsd(asm.XMM0, asm.XMM1)
	} else {
		g.asm.Subsd(asm.XMM0, asm.XMM1)
	}
	g.asm.MovsdStore(asm.Mem(asm.RAX, heap.NumberValueOffset), asm.XMM0)
	return g.plug(p, asm.RAX)
}

// visitCall pushes the arguments in source order, calls through the entry
// word of the callee's function object and drops the arguments again.
func (g *Generator) visitCall(c *syntax.CallExpression) error {
	if c.Arguments != nil {
		if err := g.visit(c.Arguments); err != nil {
			return err
		}
	}
	if err := g.EvaluateForAccumulator(c.Callee); err != nil {
		return err
	}
	g.asm.Load(asm.RAX, asm.Mem(asm.RAX, heap.FunctionEntryOffset))
	g.asm.Call(asm.RAX)
	if n := c.Arguments.Len(); n > 0 {
		g.asm.AddImm(asm.RSP, int32(n*word))
	}
	return g.plug(c, asm.RAX)
}

func (g *Generator) visitArguments(args *syntax.ArgumentList) error {
	for _, a := range args.Arguments {
		if err := g.EvaluateForStack(a); err != nil {
			return err
		}
	}
	return nil
}

// allocate bumps the allocation top by size and leaves the old top, the
// new object's address, in dst. Clobbers RCX; dst must not be RCX.
func (g *Generator) allocate(dst asm.Register, size int) {
	top := asm.Mem(asm.RCX, 0)
	g.asm.MovImm(asm.RCX, uint64(g.heap.AllocationTop()))
	g.asm.Load(dst, top)
	g.asm.AddMemImm(top, int32(size))
}
