// Package asm encodes the x86-64 instructions the code generator emits.
//
// Every instruction is appended to a byte buffer and recorded symbolically
// (offset, length, text, stack effect) so that tests and the -S listing can
// inspect the stream without a disassembler. Forward jumps go through
// Labels whose rel32 fields are patched when the label is bound.
package asm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnboundLabel is returned by Code when a jump still targets a label
// that was never bound.
var ErrUnboundLabel = errors.New("asm: jump to unbound label")

// Label is a jump target. The zero value is an unbound label.
type Label struct {
	pos    int
	bound  bool
	fixups []int // offsets of rel32 fields waiting for this label
}

func (l *Label) IsBound() bool { return l.bound }

// Pos is the bound offset, or -1.
func (l *Label) Pos() int {
	if !l.bound {
		return -1
	}
	return l.pos
}

// Instruction is the symbolic record of one emitted instruction.
type Instruction struct {
	Offset int
	Len    int
	Op     string // mnemonic, e.g. "mov"
	Args   string // rendered operands, e.g. "rax, [rbp-8]"
	Stack  int    // bytes pushed (positive) or popped (negative)
	Imm    uint64 // immediate of the mov-immediate form
	target *Label
}

// Target returns the offset a jump goes to once its label is bound.
func (i Instruction) Target() (int, bool) {
	if i.target == nil || !i.target.bound {
		return 0, false
	}
	return i.target.pos, true
}

func (i Instruction) String() string {
	args := i.Args
	if i.target != nil {
		if i.target.bound {
			args = fmt.Sprintf("%#x", i.target.pos)
		} else {
			args = "<unbound>"
		}
	}
	if args == "" {
		return i.Op
	}
	return i.Op + " " + args
}

// Assembler accumulates machine code for one method. It is not safe for
// concurrent use; each compilation owns its own Assembler.
type Assembler struct {
	buf     []byte
	instrs  []Instruction
	pending int // rel32 fields not yet patched

	recording bool
	lines     LineTable
}

func New() *Assembler {
	return &Assembler{}
}

// Offset is the current end of the code buffer.
func (a *Assembler) Offset() int { return len(a.buf) }

// Size is the number of bytes emitted so far.
func (a *Assembler) Size() int { return len(a.buf) }

// Code returns a copy of the finished code buffer.
func (a *Assembler) Code() ([]byte, error) {
	if a.pending > 0 {
		return nil, fmt.Errorf("%w (%d unresolved)", ErrUnboundLabel, a.pending)
	}
	return append([]byte(nil), a.buf...), nil
}

// Instructions returns the symbolic record of the stream.
func (a *Assembler) Instructions() []Instruction {
	return append([]Instruction(nil), a.instrs...)
}

// Listing renders the stream one instruction per line:
//
//	0000  55                        push rbp
//	0001  48 89 e5                  mov rbp, rsp
func (a *Assembler) Listing() string {
	var sb strings.Builder
	for _, in := range a.instrs {
		raw := a.buf[in.Offset : in.Offset+in.Len]
		hex := make([]string, len(raw))
		for i, b := range raw {
			hex[i] = fmt.Sprintf("%02x", b)
		}
		fmt.Fprintf(&sb, "%04x  %-24s  %s\n", in.Offset, strings.Join(hex, " "), in)
	}
	return sb.String()
}

// Bind fixes l at the current offset and patches every jump already
// pointing at it. Binding a label twice is a programming error.
func (a *Assembler) Bind(l *Label) {
	if l.bound {
		panic("asm: label bound twice")
	}
	l.pos = len(a.buf)
	l.bound = true
	for _, f := range l.fixups {
		putRel32(a.buf[f:], l.pos-(f+4))
	}
	a.pending -= len(l.fixups)
	l.fixups = nil
}

func (a *Assembler) add(in Instruction, code []byte) {
	in.Offset = len(a.buf)
	in.Len = len(code)
	a.instrs = append(a.instrs, in)
	a.buf = append(a.buf, code...)
}
