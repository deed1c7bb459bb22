package asm

import (
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

// TestDecoderAgrees runs the emitted stream through an independent decoder
// and checks that instruction boundaries (and, where unambiguous, opcodes)
// match what the assembler recorded.
func TestDecoderAgrees(t *testing.T) {
	a := New()
	var end, top Label
	a.Push(RBP)
	a.Mov(RBP, RSP)
	a.SubImm(RSP, 16)
	a.Push(RBX)
	a.Push(RSI)
	a.Push(RDI)
	a.Bind(&top)
	a.MovImm(RCX, 0x10000000)
	a.Load(RAX, Mem(RCX, 0))
	a.AddMemImm(Mem(RCX, 0), 16)
	a.Load(RAX, Mem(RBP, -8))
	a.Store(Mem(RBP, 16), RAX)
	a.Pop(RAX)
	a.Pop(RDX)
	a.MovsdLoad(XMM1, Mem(RAX, 8))
	a.MovsdLoad(XMM0, Mem(RDX, 8))
	a.Addsd(XMM0, XMM1)
	a.Subsd(XMM0, XMM1)
	a.Mulsd(XMM0, XMM1)
	a.Cmpsd(XMM0, XMM1, PredLess)
	a.MovqFromXMM(RAX, XMM0)
	a.MovqToXMM(XMM1, RCX)
	a.MovsdStore(Mem(RAX, 8), XMM0)
	a.CmpImm(RAX, -1)
	a.Cmp(RAX, RCX)
	a.Jne(&end)
	a.Je(&top)
	a.Call(RAX)
	a.AddImm(RSP, 24)
	a.Jmp(&top)
	a.Bind(&end)
	a.Pop(RDI)
	a.Mov(RSP, RBP)
	a.Pop(RBP)
	a.Ret()

	code, err := a.Code()
	if err != nil {
		t.Fatalf("Code: %v", err)
	}

	ops := map[string]string{
		"push": "PUSH", "pop": "POP", "ret": "RET", "call": "CALL",
		"jmp": "JMP", "jne": "JNE", "je": "JE",
		"add": "ADD", "sub": "SUB", "cmp": "CMP", "mov": "MOV",
		"addsd": "ADDSD", "subsd": "SUBSD", "mulsd": "MULSD",
	}

	for _, in := range a.Instructions() {
		inst, err := x86asm.Decode(code[in.Offset:], 64)
		if err != nil {
			t.Fatalf("decode %q at %#x: %v", in, in.Offset, err)
		}
		if inst.Len != in.Len {
			t.Errorf("%q at %#x: decoder length %d, recorded %d", in, in.Offset, inst.Len, in.Len)
		}
		if want, ok := ops[in.Op]; ok && inst.Op.String() != want {
			t.Errorf("%q at %#x: decoder op %s, expected %s", in, in.Offset, inst.Op, want)
		}
	}
}
