// Package codegen lowers one bound method body straight to x86-64 machine
// code.
//
// Lowering is destination driven: every expression is visited under an
// ExpressionContext (accumulator, stack or effect) and its rule finishes by
// plugging the value into that context. Values are pointers to boxed heap
// objects; numbers are 64-bit floats behind a one word header.
//
// Register use is fixed: RAX is the accumulator, RDX and RCX are scratch,
// XMM0 and XMM1 hold float operands, RBP is the frame pointer.
package codegen

import (
	"github.com/tliron/commonlog"

	"rjit/pkg/asm"
	"rjit/pkg/heap"
	"rjit/pkg/method"
	"rjit/pkg/syntax"
)

var log = commonlog.GetLogger("rjit.codegen")

// Heap is what the generator needs from the runtime heap: the canonical
// singletons, the allocation-top cell and function objects by name.
type Heap interface {
	TrueValue() heap.Address
	FalseValue() heap.Address
	UndefinedValue() heap.Address
	AllocationTop() heap.Address
	Function(name string) (heap.Address, bool)
}

type Options struct {
	// FrameReserve overrides the computed local working area, in bytes.
	// Zero means computed from the parameter and local counts.
	FrameReserve int
}

// calleeSaved are pushed after the frame is set up and popped in reverse
// before returning.
var calleeSaved = [...]asm.Register{asm.RBX, asm.RSI, asm.RDI}

// Generator compiles methods one at a time. Each Compile call gets a fresh
// assembler and label set, so a Generator must not be shared between
// goroutines but may be reused sequentially.
type Generator struct {
	heap Heap
	opts Options

	asm      *asm.Assembler
	contexts []ExpressionContext
	exit     asm.Label
}

func New(h Heap, opts Options) *Generator {
	return &Generator{heap: h, opts: opts}
}

func (g *Generator) reset() {
	g.asm = asm.New()
	g.contexts = nil
	g.exit = asm.Label{}
}

// Compile lowers m into a method descriptor. Ambient (declare) methods
// produce a descriptor with no code. Generation is all or nothing: on
// error no descriptor is returned.
func (g *Generator) Compile(m *syntax.MethodDeclaration) (*method.Descriptor, error) {
	d := &method.Descriptor{Name: m.QualifiedName()}
	if m.HasModifier(syntax.ModDeclare) {
		d.Ambient = true
		log.Debugf("%s: ambient, no code", d.Name)
		return d, nil
	}
	if m.Body == nil {
		return nil, invariant(m, "method %q has no body", d.Name)
	}
	if m.Scope == nil {
		return nil, invariant(m, "method %q was not bound", d.Name)
	}

	g.reset()
	g.asm.StartLineRecording()
	if err := g.emitPrologue(m); err != nil {
		return nil, err
	}
	if err := g.evaluate(EffectContext{g}, m.Body); err != nil {
		return nil, err
	}
	g.emitEpilogue()
	lines := g.asm.EndLineRecording()

	code, err := g.asm.Code()
	if err != nil {
		return nil, invariant(m, "%v", err)
	}
	d.Code = code
	d.CodeSize = len(code)
	d.Lines = lines
	log.Debugf("%s: %d bytes, %d line entries", d.Name, d.CodeSize, len(d.Lines))
	return d, nil
}

// Listing is the symbolic form of the code produced by the last Compile.
func (g *Generator) Listing() string {
	if g.asm == nil {
		return ""
	}
	return g.asm.Listing()
}

// Instructions is the instruction record of the last Compile.
func (g *Generator) Instructions() []asm.Instruction {
	if g.asm == nil {
		return nil
	}
	return g.asm.Instructions()
}

func (g *Generator) emitPrologue(m *syntax.MethodDeclaration) error {
	reserve, err := localReserve(m.Scope, g.opts.FrameReserve)
	if err != nil {
		return invariant(m, "%v", err)
	}
	g.asm.Push(asm.RBP)
	g.asm.Mov(asm.RBP, asm.RSP)
	if reserve > 0 {
		g.asm.SubImm(asm.RSP, int32(reserve))
	}
	for _, r := range calleeSaved {
		g.asm.Push(r)
	}
	return nil
}

// emitEpilogue is the single exit of the method. Falling off the end of
// the body returns undefined; return statements jump to the exit label
// with their value already in RAX.
func (g *Generator) emitEpilogue() {
	g.asm.MovImm(asm.RAX, uint64(g.heap.UndefinedValue()))
	g.asm.Bind(&g.exit)
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		g.asm.Pop(calleeSaved[i])
	}
	g.asm.Mov(asm.RSP, asm.RBP)
	g.asm.Pop(asm.RBP)
	g.asm.Ret()
}

func (g *Generator) recordPosition(n syntax.Node) {
	p := n.Pos()
	g.asm.RecordPosition(p.Line, p.Column)
}

// visit is the single dispatch over node types.
func (g *Generator) visit(n syntax.Node) error {
	if syntax.IsNil(n) {
		return invariant(nil, "nil node")
	}
	switch n := n.(type) {
	// statements
	case *syntax.Block:
		return g.visitBlock(n)
	case *syntax.LocalVariableStatement:
		return g.visitLocalVariableStatement(n)
	case *syntax.LocalVariableDeclaration:
		return g.visitLocalVariableDeclaration(n)
	case *syntax.ExpressionStatement:
		return g.visitExpressionStatement(n)
	case *syntax.IfStatement:
		return g.visitIf(n)
	case *syntax.IterationStatement:
		return g.visitWhile(n)
	case *syntax.ReturnStatement:
		return g.visitReturn(n)

	// expressions
	case *syntax.Identifier:
		return g.visitIdentifier(n)
	case *syntax.Literal:
		return g.visitLiteral(n)
	case *syntax.ParenthesizedExpression:
		return g.visit(n.Expression)
	case *syntax.BinaryExpression:
		return g.visitBinary(n)
	case *syntax.PostfixUnaryExpression:
		return g.visitPostfix(n)
	case *syntax.CallExpression:
		return g.visitCall(n)
	case *syntax.ArgumentList:
		return g.visitArguments(n)

	// declarations that carry nothing to lower
	case *syntax.ParameterList, *syntax.ParameterDeclaration:
		return nil

	// only valid at the top of a file; the binder never hands them over
	case *syntax.SourceCode, *syntax.ClassDeclaration, *syntax.PropertyDeclaration:
		return invariant(n, "declaration in statement position")

	case *syntax.MethodDeclaration, *syntax.ConstructorDeclaration,
		*syntax.TypeAnnotation,
		*syntax.PrefixUnaryExpression, *syntax.AssignmentExpression,
		*syntax.NewExpression, *syntax.PropertyAccessExpression,
		*syntax.ThisExpression, *syntax.ArrayLiteralExpression:
		return Unsupported(n)
	}
	return invariant(n, "unknown node type %T", n)
}
