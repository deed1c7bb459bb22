package asm

import (
	"encoding/binary"
	"fmt"
)

const wordSize = 8

func rex(w bool, reg, index, base uint8) byte {
	b := byte(0x40)
	if w {
		b |= 0x08
	}
	if reg&8 != 0 {
		b |= 0x04
	}
	if index&8 != 0 {
		b |= 0x02
	}
	if base&8 != 0 {
		b |= 0x01
	}
	return b
}

// optionalRex returns a REX prefix only when an extended register is used.
func optionalRex(reg, base uint8) []byte {
	if (reg|base)&8 == 0 {
		return nil
	}
	return []byte{rex(false, reg, 0, base)}
}

func modRM(mod, reg, rm uint8) byte {
	return mod<<6 | (reg&7)<<3 | rm&7
}

// memory encodes ModRM (+SIB) (+disp) for [base+disp] with reg in the
// reg field. rsp/r12 bases need a SIB byte; rbp/r13 bases need a disp.
func memory(reg uint8, m Operand) []byte {
	base := uint8(m.Base)
	var mod uint8
	switch {
	case m.Disp == 0 && base&7 != 5:
		mod = 0
	case m.Disp >= -128 && m.Disp <= 127:
		mod = 1
	default:
		mod = 2
	}
	out := []byte{modRM(mod, reg, base)}
	if base&7 == 4 {
		out = append(out, 0x24)
	}
	switch mod {
	case 1:
		out = append(out, byte(int8(m.Disp)))
	case 2:
		out = binary.LittleEndian.AppendUint32(out, uint32(m.Disp))
	}
	return out
}

func putRel32(b []byte, rel int) {
	binary.LittleEndian.PutUint32(b, uint32(int32(rel)))
}

func fitsInt8(v int32) bool { return v >= -128 && v <= 127 }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

//  Stack

func (a *Assembler) Push(r Register) {
	code := append(optionalRex(0, uint8(r)), 0x50+byte(r&7))
	a.add(Instruction{Op: "push", Args: r.String(), Stack: wordSize}, code)
}

func (a *Assembler) Pop(r Register) {
	code := append(optionalRex(0, uint8(r)), 0x58+byte(r&7))
	a.add(Instruction{Op: "pop", Args: r.String(), Stack: -wordSize}, code)
}

//  Moves

// Mov copies src into dst.
func (a *Assembler) Mov(dst, src Register) {
	code := []byte{rex(true, uint8(src), 0, uint8(dst)), 0x89, modRM(3, uint8(src), uint8(dst))}
	a.add(Instruction{Op: "mov", Args: fmt.Sprintf("%s, %s", dst, src)}, code)
}

// MovImm loads a 64-bit immediate (movabs).
func (a *Assembler) MovImm(dst Register, imm uint64) {
	code := []byte{rex(true, 0, 0, uint8(dst)), 0xB8 + byte(dst&7)}
	code = binary.LittleEndian.AppendUint64(code, imm)
	a.add(Instruction{Op: "mov", Args: fmt.Sprintf("%s, %#x", dst, imm), Imm: imm}, code)
}

// Load reads the quadword at m into dst.
func (a *Assembler) Load(dst Register, m Operand) {
	code := cat([]byte{rex(true, uint8(dst), 0, uint8(m.Base)), 0x8B}, memory(uint8(dst), m))
	a.add(Instruction{Op: "mov", Args: fmt.Sprintf("%s, %s", dst, m)}, code)
}

// Store writes src to the quadword at m.
func (a *Assembler) Store(m Operand, src Register) {
	code := cat([]byte{rex(true, uint8(src), 0, uint8(m.Base)), 0x89}, memory(uint8(src), m))
	a.add(Instruction{Op: "mov", Args: fmt.Sprintf("%s, %s", m, src)}, code)
}

//  Integer arithmetic

func (a *Assembler) AddImm(dst Register, imm int32) { a.arithImm("add", 0, dst, imm) }
func (a *Assembler) SubImm(dst Register, imm int32) { a.arithImm("sub", 5, dst, imm) }
func (a *Assembler) CmpImm(dst Register, imm int32) { a.arithImm("cmp", 7, dst, imm) }

func (a *Assembler) arithImm(op string, ext uint8, dst Register, imm int32) {
	var code []byte
	if fitsInt8(imm) {
		code = []byte{rex(true, 0, 0, uint8(dst)), 0x83, modRM(3, ext, uint8(dst)), byte(int8(imm))}
	} else {
		code = []byte{rex(true, 0, 0, uint8(dst)), 0x81, modRM(3, ext, uint8(dst))}
		code = binary.LittleEndian.AppendUint32(code, uint32(imm))
	}
	in := Instruction{Op: op, Args: fmt.Sprintf("%s, %d", dst, imm)}
	if dst == RSP {
		switch op {
		case "add":
			in.Stack = -int(imm)
		case "sub":
			in.Stack = int(imm)
		}
	}
	a.add(in, code)
}

// AddMemImm adds imm to the quadword at m.
func (a *Assembler) AddMemImm(m Operand, imm int32) {
	var code []byte
	if fitsInt8(imm) {
		code = cat([]byte{rex(true, 0, 0, uint8(m.Base)), 0x83}, memory(0, m), []byte{byte(int8(imm))})
	} else {
		code = cat([]byte{rex(true, 0, 0, uint8(m.Base)), 0x81}, memory(0, m))
		code = binary.LittleEndian.AppendUint32(code, uint32(imm))
	}
	a.add(Instruction{Op: "add", Args: fmt.Sprintf("qword %s, %d", m, imm)}, code)
}

// Cmp sets flags from left - right.
func (a *Assembler) Cmp(left, right Register) {
	code := []byte{rex(true, uint8(right), 0, uint8(left)), 0x39, modRM(3, uint8(right), uint8(left))}
	a.add(Instruction{Op: "cmp", Args: fmt.Sprintf("%s, %s", left, right)}, code)
}

//  Scalar double precision

// MovsdLoad reads the double at m into dst.
func (a *Assembler) MovsdLoad(dst XMMRegister, m Operand) {
	code := cat([]byte{0xF2}, optionalRex(uint8(dst), uint8(m.Base)), []byte{0x0F, 0x10}, memory(uint8(dst), m))
	a.add(Instruction{Op: "movsd", Args: fmt.Sprintf("%s, %s", dst, m)}, code)
}

// MovsdStore writes the low double of src to m.
func (a *Assembler) MovsdStore(m Operand, src XMMRegister) {
	code := cat([]byte{0xF2}, optionalRex(uint8(src), uint8(m.Base)), []byte{0x0F, 0x11}, memory(uint8(src), m))
	a.add(Instruction{Op: "movsd", Args: fmt.Sprintf("%s, %s", m, src)}, code)
}

func (a *Assembler) Addsd(dst, src XMMRegister) { a.sse("addsd", 0x58, dst, src) }
func (a *Assembler) Mulsd(dst, src XMMRegister) { a.sse("mulsd", 0x59, dst, src) }
func (a *Assembler) Subsd(dst, src XMMRegister) { a.sse("subsd", 0x5C, dst, src) }

func (a *Assembler) sse(op string, opcode byte, dst, src XMMRegister) {
	code := cat([]byte{0xF2}, optionalRex(uint8(dst), uint8(src)), []byte{0x0F, opcode, modRM(3, uint8(dst), uint8(src))})
	a.add(Instruction{Op: op, Args: fmt.Sprintf("%s, %s", dst, src)}, code)
}

// Cmpsd replaces the low lane of dst with all ones when the predicate
// holds and all zeros otherwise.
func (a *Assembler) Cmpsd(dst, src XMMRegister, p Predicate) {
	code := cat([]byte{0xF2}, optionalRex(uint8(dst), uint8(src)), []byte{0x0F, 0xC2, modRM(3, uint8(dst), uint8(src)), byte(p)})
	a.add(Instruction{Op: "cmpsd", Args: fmt.Sprintf("%s, %s, %s", dst, src, p)}, code)
}

// MovqToXMM copies the bits of a general register into an XMM register.
func (a *Assembler) MovqToXMM(dst XMMRegister, src Register) {
	code := []byte{0x66, rex(true, uint8(dst), 0, uint8(src)), 0x0F, 0x6E, modRM(3, uint8(dst), uint8(src))}
	a.add(Instruction{Op: "movq", Args: fmt.Sprintf("%s, %s", dst, src)}, code)
}

// MovqFromXMM copies the low 64 bits of an XMM register into dst.
func (a *Assembler) MovqFromXMM(dst Register, src XMMRegister) {
	code := []byte{0x66, rex(true, uint8(src), 0, uint8(dst)), 0x0F, 0x7E, modRM(3, uint8(src), uint8(dst))}
	a.add(Instruction{Op: "movq", Args: fmt.Sprintf("%s, %s", dst, src)}, code)
}

//  Control flow

func (a *Assembler) Jmp(l *Label) { a.jump("jmp", []byte{0xE9}, l) }
func (a *Assembler) Jne(l *Label) { a.jump("jne", []byte{0x0F, 0x85}, l) }
func (a *Assembler) Je(l *Label)  { a.jump("je", []byte{0x0F, 0x84}, l) }

// jump always uses the rel32 form so that a later Bind can patch it in
// place.
func (a *Assembler) jump(op string, opcode []byte, l *Label) {
	start := len(a.buf)
	code := append(append([]byte(nil), opcode...), 0, 0, 0, 0)
	if l.bound {
		putRel32(code[len(opcode):], l.pos-(start+len(code)))
	} else {
		l.fixups = append(l.fixups, start+len(opcode))
		a.pending++
	}
	a.add(Instruction{Op: op, target: l}, code)
}

// Call calls through a register. The pushed return address is popped by
// the callee's ret, so the recorded stack effect is zero.
func (a *Assembler) Call(r Register) {
	code := append(optionalRex(0, uint8(r)), 0xFF, modRM(3, 2, uint8(r)))
	a.add(Instruction{Op: "call", Args: r.String()}, code)
}

func (a *Assembler) Ret() {
	a.add(Instruction{Op: "ret"}, []byte{0xC3})
}
