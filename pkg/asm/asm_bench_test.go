package asm

import "testing"

// emitBinaryAdd is the instruction shape of one boxed `a + b`.
func emitBinaryAdd(a *Assembler) {
	a.Load(RAX, Mem(RBP, -8))
	a.Push(RAX)
	a.Load(RAX, Mem(RBP, -16))
	a.Push(RAX)
	a.Pop(RAX)
	a.Pop(RDX)
	a.MovsdLoad(XMM1, Mem(RAX, 8))
	a.MovsdLoad(XMM0, Mem(RDX, 8))
	a.Addsd(XMM0, XMM1)
	a.MovImm(RCX, 0x10000000)
	a.Load(RAX, Mem(RCX, 0))
	a.AddMemImm(Mem(RCX, 0), 16)
	a.MovsdStore(Mem(RAX, 8), XMM0)
}

func BenchmarkEmitBinaryAdd(b *testing.B) {
	for i := 0; i < b.N; i++ {
		a := New()
		for j := 0; j < 64; j++ {
			emitBinaryAdd(a)
		}
		if _, err := a.Code(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoopLabels(b *testing.B) {
	for i := 0; i < b.N; i++ {
		a := New()
		for j := 0; j < 64; j++ {
			var start, end Label
			a.Bind(&start)
			a.CmpImm(RAX, -1)
			a.Jne(&end)
			emitBinaryAdd(a)
			a.Jmp(&start)
			a.Bind(&end)
		}
		if _, err := a.Code(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkListing(b *testing.B) {
	a := New()
	for j := 0; j < 64; j++ {
		emitBinaryAdd(a)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Listing()
	}
}
