package asm

import "fmt"

// Register is a 64-bit general purpose register, numbered as in the
// ModRM/REX encoding.
type Register uint8

const (
	RAX Register = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var registerNames = [...]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("r?%d", uint8(r))
}

// XMMRegister is an SSE register.
type XMMRegister uint8

const (
	XMM0 XMMRegister = iota
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
)

func (x XMMRegister) String() string { return fmt.Sprintf("xmm%d", uint8(x)) }

// Operand is a memory operand [Base+Disp].
type Operand struct {
	Base Register
	Disp int32
}

// Mem builds the memory operand [base+disp].
func Mem(base Register, disp int32) Operand {
	return Operand{Base: base, Disp: disp}
}

func (o Operand) String() string {
	switch {
	case o.Disp == 0:
		return fmt.Sprintf("[%s]", o.Base)
	case o.Disp < 0:
		return fmt.Sprintf("[%s-%d]", o.Base, -int64(o.Disp))
	default:
		return fmt.Sprintf("[%s+%d]", o.Base, o.Disp)
	}
}

// Predicate selects the comparison performed by cmpsd.
type Predicate uint8

const (
	PredEqual Predicate = iota
	PredLess
	PredLessEqual
	PredUnordered
	PredNotEqual
	PredNotLess
	PredNotLessEqual
	PredOrdered
)

var predicateNames = [...]string{"eq", "lt", "le", "unord", "neq", "nlt", "nle", "ord"}

func (p Predicate) String() string {
	if int(p) < len(predicateNames) {
		return predicateNames[p]
	}
	return fmt.Sprintf("pred%d", uint8(p))
}
