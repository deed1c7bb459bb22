package asm

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}

func TestEncodings(t *testing.T) {
	tests := []struct {
		name string
		emit func(a *Assembler)
		want string
		text string
	}{
		{"push rbp", func(a *Assembler) { a.Push(RBP) }, "55", "push rbp"},
		{"push r12", func(a *Assembler) { a.Push(R12) }, "41 54", "push r12"},
		{"pop rdi", func(a *Assembler) { a.Pop(RDI) }, "5F", "pop rdi"},
		{"pop r13", func(a *Assembler) { a.Pop(R13) }, "41 5D", "pop r13"},
		{"mov rbp, rsp", func(a *Assembler) { a.Mov(RBP, RSP) }, "48 89 E5", "mov rbp, rsp"},
		{"mov rsp, rbp", func(a *Assembler) { a.Mov(RSP, RBP) }, "48 89 EC", "mov rsp, rbp"},
		{"movabs rax", func(a *Assembler) { a.MovImm(RAX, 0x10000010) }, "48 B8 10 00 00 10 00 00 00 00", "mov rax, 0x10000010"},
		{"movabs r9", func(a *Assembler) { a.MovImm(R9, 1) }, "49 B9 01 00 00 00 00 00 00 00", "mov r9, 0x1"},
		{"load rbp-8", func(a *Assembler) { a.Load(RAX, Mem(RBP, -8)) }, "48 8B 45 F8", "mov rax, [rbp-8]"},
		{"load rcx", func(a *Assembler) { a.Load(RAX, Mem(RCX, 0)) }, "48 8B 01", "mov rax, [rcx]"},
		{"load rax+8", func(a *Assembler) { a.Load(RAX, Mem(RAX, 8)) }, "48 8B 40 08", "mov rax, [rax+8]"},
		{"load rsp needs sib", func(a *Assembler) { a.Load(RAX, Mem(RSP, 0)) }, "48 8B 04 24", "mov rax, [rsp]"},
		{"load rbp needs disp", func(a *Assembler) { a.Load(RAX, Mem(RBP, 0)) }, "48 8B 45 00", "mov rax, [rbp]"},
		{"load disp32", func(a *Assembler) { a.Load(RDX, Mem(RBP, 512)) }, "48 8B 95 00 02 00 00", "mov rdx, [rbp+512]"},
		{"store rbp+16", func(a *Assembler) { a.Store(Mem(RBP, 16), RAX) }, "48 89 45 10", "mov [rbp+16], rax"},
		{"store rax+8", func(a *Assembler) { a.Store(Mem(RAX, 8), RCX) }, "48 89 48 08", "mov [rax+8], rcx"},
		{"add rsp imm8", func(a *Assembler) { a.AddImm(RSP, 16) }, "48 83 C4 10", "add rsp, 16"},
		{"sub rsp imm8", func(a *Assembler) { a.SubImm(RSP, 32) }, "48 83 EC 20", "sub rsp, 32"},
		{"sub rsp imm32", func(a *Assembler) { a.SubImm(RSP, 256) }, "48 81 EC 00 01 00 00", "sub rsp, 256"},
		{"cmp rax -1", func(a *Assembler) { a.CmpImm(RAX, -1) }, "48 83 F8 FF", "cmp rax, -1"},
		{"add mem imm", func(a *Assembler) { a.AddMemImm(Mem(RCX, 0), 16) }, "48 83 01 10", "add qword [rcx], 16"},
		{"cmp rax, rcx", func(a *Assembler) { a.Cmp(RAX, RCX) }, "48 39 C8", "cmp rax, rcx"},
		{"movsd load", func(a *Assembler) { a.MovsdLoad(XMM1, Mem(RAX, 8)) }, "F2 0F 10 48 08", "movsd xmm1, [rax+8]"},
		{"movsd load rdx", func(a *Assembler) { a.MovsdLoad(XMM0, Mem(RDX, 8)) }, "F2 0F 10 42 08", "movsd xmm0, [rdx+8]"},
		{"movsd store", func(a *Assembler) { a.MovsdStore(Mem(RAX, 8), XMM0) }, "F2 0F 11 40 08", "movsd [rax+8], xmm0"},
		{"addsd", func(a *Assembler) { a.Addsd(XMM0, XMM1) }, "F2 0F 58 C1", "addsd xmm0, xmm1"},
		{"subsd", func(a *Assembler) { a.Subsd(XMM0, XMM1) }, "F2 0F 5C C1", "subsd xmm0, xmm1"},
		{"mulsd", func(a *Assembler) { a.Mulsd(XMM0, XMM1) }, "F2 0F 59 C1", "mulsd xmm0, xmm1"},
		{"cmpsd lt", func(a *Assembler) { a.Cmpsd(XMM0, XMM1, PredLess) }, "F2 0F C2 C1 01", "cmpsd xmm0, xmm1, lt"},
		{"cmpsd nle", func(a *Assembler) { a.Cmpsd(XMM0, XMM1, PredNotLessEqual) }, "F2 0F C2 C1 06", "cmpsd xmm0, xmm1, nle"},
		{"movq to xmm", func(a *Assembler) { a.MovqToXMM(XMM1, RCX) }, "66 48 0F 6E C9", "movq xmm1, rcx"},
		{"movq from xmm", func(a *Assembler) { a.MovqFromXMM(RAX, XMM0) }, "66 48 0F 7E C0", "movq rax, xmm0"},
		{"call rax", func(a *Assembler) { a.Call(RAX) }, "FF D0", "call rax"},
		{"ret", func(a *Assembler) { a.Ret() }, "C3", "ret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			tt.emit(a)
			code, err := a.Code()
			if err != nil {
				t.Fatalf("Code: %v", err)
			}
			if got := hexBytes(code); got != tt.want {
				t.Errorf("bytes: expected %s, got %s", tt.want, got)
			}
			ins := a.Instructions()
			if len(ins) != 1 {
				t.Fatalf("expected 1 instruction, got %d", len(ins))
			}
			if got := ins[0].String(); got != tt.text {
				t.Errorf("text: expected %q, got %q", tt.text, got)
			}
			if ins[0].Len != len(code) {
				t.Errorf("recorded length %d, buffer holds %d", ins[0].Len, len(code))
			}
		})
	}
}

func TestLabels(t *testing.T) {
	t.Run("ForwardJumpPatchedOnBind", func(t *testing.T) {
		a := New()
		var l Label
		a.Jmp(&l)
		a.Push(RAX)
		if _, err := a.Code(); !errors.Is(err, ErrUnboundLabel) {
			t.Fatalf("expected ErrUnboundLabel before Bind, got %v", err)
		}
		a.Bind(&l)

		code, err := a.Code()
		if err != nil {
			t.Fatalf("Code: %v", err)
		}
		want := []byte{0xE9, 0x01, 0x00, 0x00, 0x00, 0x50}
		if !bytes.Equal(code, want) {
			t.Errorf("expected % X, got % X", want, code)
		}
		if target, ok := a.Instructions()[0].Target(); !ok || target != 6 {
			t.Errorf("jump target: got %d, %v", target, ok)
		}
	})

	t.Run("BackwardJump", func(t *testing.T) {
		a := New()
		var top Label
		a.Bind(&top)
		a.Push(RAX)
		a.Jne(&top)

		code, _ := a.Code()
		want := []byte{0x50, 0x0F, 0x85, 0xF9, 0xFF, 0xFF, 0xFF}
		if !bytes.Equal(code, want) {
			t.Errorf("expected % X, got % X", want, code)
		}
	})

	t.Run("SeveralJumpsToOneLabel", func(t *testing.T) {
		a := New()
		var end Label
		a.Je(&end)
		a.Jmp(&end)
		a.Bind(&end)

		code, err := a.Code()
		if err != nil {
			t.Fatalf("Code: %v", err)
		}
		// je rel32 = 11 - 6 = 5; jmp rel32 = 11 - 11 = 0
		want := []byte{0x0F, 0x84, 0x05, 0x00, 0x00, 0x00, 0xE9, 0x00, 0x00, 0x00, 0x00}
		if !bytes.Equal(code, want) {
			t.Errorf("expected % X, got % X", want, code)
		}
	})

	t.Run("DoubleBindPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("expected a panic")
			}
		}()
		a := New()
		var l Label
		a.Bind(&l)
		a.Bind(&l)
	})

	t.Run("UnboundPos", func(t *testing.T) {
		var l Label
		if l.IsBound() || l.Pos() != -1 {
			t.Errorf("zero Label should be unbound")
		}
	})
}

func TestStackEffects(t *testing.T) {
	a := New()
	a.Push(RBP)
	a.SubImm(RSP, 32)
	a.Push(RBX)
	a.Pop(RBX)
	a.AddImm(RSP, 32)
	a.CmpImm(RSP, 8)
	a.Call(RAX)

	want := []int{8, 32, 8, -8, -32, 0, 0}
	for i, in := range a.Instructions() {
		if in.Stack != want[i] {
			t.Errorf("%s: stack effect %d, expected %d", in, in.Stack, want[i])
		}
	}
}

func TestListing(t *testing.T) {
	a := New()
	a.Push(RBP)
	a.Mov(RBP, RSP)
	var l Label
	a.Jmp(&l)
	a.Bind(&l)
	a.Ret()

	listing := a.Listing()
	for _, want := range []string{
		"0000  55",
		"push rbp",
		"0001  48 89 e5",
		"mov rbp, rsp",
		"jmp 0x9",
		"0009  c3",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}
