package codegen

import (
	"rjit/pkg/asm"
	"rjit/pkg/syntax"
)

func (g *Generator) visitBlock(b *syntax.Block) error {
	for _, s := range b.Statements {
		if err := g.visit(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) visitLocalVariableStatement(s *syntax.LocalVariableStatement) error {
	g.recordPosition(s)
	if s.Declaration == nil {
		return invariant(s, "var statement without a declaration")
	}
	return g.visit(s.Declaration)
}

// visitLocalVariableDeclaration stores the initializer, if any, into the
// declared slot. A declaration without initializer emits nothing.
func (g *Generator) visitLocalVariableDeclaration(d *syntax.LocalVariableDeclaration) error {
	if syntax.IsNil(d.Initializer) {
		return nil
	}
	if d.Identifier == nil || d.Identifier.Symbol == nil {
		return invariant(d, "declaration was not resolved")
	}
	if err := g.EvaluateForAccumulator(d.Initializer); err != nil {
		return err
	}
	addr, err := frameAddress(d.Identifier, d.Identifier.Symbol)
	if err != nil {
		return err
	}
	g.asm.Store(addr.Operand(), asm.RAX)
	return nil
}

func (g *Generator) visitExpressionStatement(s *syntax.ExpressionStatement) error {
	g.recordPosition(s)
	return g.EvaluateForEffect(s.Expression)
}

// compareWithTrue sets ZF when RAX holds the true singleton. Conditions
// are compared by identity; nothing is coerced.
func (g *Generator) compareWithTrue() {
	g.asm.MovImm(asm.RCX, uint64(g.heap.TrueValue()))
	g.asm.Cmp(asm.RAX, asm.RCX)
}

// visitIf lowers
//
//	    cond -> rax
//	    cmp rax, true
//	    jne else
//	    then
//	    jmp end        (only with an else branch)
//	else:
//	    else-branch
//	end:
func (g *Generator) visitIf(s *syntax.IfStatement) error {
	g.recordPosition(s)
	if err := g.EvaluateForAccumulator(s.Condition); err != nil {
		return err
	}
	g.compareWithTrue()

	var elseLabel, end asm.Label
	g.asm.Jne(&elseLabel)
	if err := g.visit(s.Then); err != nil {
		return err
	}
	hasElse := !syntax.IsNil(s.Else)
	if hasElse {
		g.asm.Jmp(&end)
	}
	g.asm.Bind(&elseLabel)
	if hasElse {
		if err := g.visit(s.Else); err != nil {
			return err
		}
		g.asm.Bind(&end)
	}
	return nil
}

func (g *Generator) visitWhile(s *syntax.IterationStatement) error {
	g.recordPosition(s)
	var start, end asm.Label
	g.asm.Bind(&start)
	if err := g.EvaluateForAccumulator(s.Condition); err != nil {
		return err
	}
	g.compareWithTrue()
	g.asm.Jne(&end)
	if err := g.visit(s.Body); err != nil {
		return err
	}
	g.asm.Jmp(&start)
	g.asm.Bind(&end)
	return nil
}

// visitReturn leaves the value in RAX and jumps to the shared epilogue.
func (g *Generator) visitReturn(s *syntax.ReturnStatement) error {
	g.recordPosition(s)
	if !syntax.IsNil(s.Expression) {
		if err := g.EvaluateForAccumulator(s.Expression); err != nil {
			return err
		}
	}
	g.asm.Jmp(&g.exit)
	return nil
}
