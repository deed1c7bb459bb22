package codegen

import (
	"fmt"

	"rjit/pkg/asm"
	"rjit/pkg/heap"
	"rjit/pkg/scope"
	"rjit/pkg/syntax"
)

const word = heap.WordSize

// FrameAddress is a displacement from the frame pointer (RBP).
//
//	parameter slot s:  fp - s*8 - 8
//	local slot s:      fp - s*8 + (P+1)*8     P = parameter count
//
// The loader that calls generated code is responsible for a frame in which
// these two formulas name distinct words.
type FrameAddress int32

func ParameterAddress(slot int) FrameAddress {
	return FrameAddress(-slot*word - word)
}

func LocalAddress(slot, parameterCount int) FrameAddress {
	return FrameAddress(-slot*word + (parameterCount+1)*word)
}

// Operand is the memory operand for the slot.
func (f FrameAddress) Operand() asm.Operand { return asm.Mem(asm.RBP, int32(f)) }

func (f FrameAddress) String() string { return f.Operand().String() }

// frameAddress resolves a parameter or local symbol to its slot address.
func frameAddress(n syntax.Node, sym *scope.Symbol) (FrameAddress, error) {
	switch sym.Kind() {
	case scope.Parameter:
		return ParameterAddress(sym.Slot()), nil
	case scope.LocalVariable:
		fs, ok := sym.Scope().(*scope.FunctionScope)
		if !ok {
			return 0, invariant(n, "local %q is not owned by a function scope", sym.Name())
		}
		return LocalAddress(sym.Slot(), fs.ParameterCount()), nil
	}
	return 0, invariant(n, "%s %q has no frame slot", sym.Kind(), sym.Name())
}

// localReserve is the size of the working area carved out below the saved
// frame pointer: one word per parameter and local, rounded up to 16.
func localReserve(fs *scope.FunctionScope, override int) (int, error) {
	if override < 0 {
		return 0, fmt.Errorf("negative frame reserve %d", override)
	}
	if override > 0 {
		return override, nil
	}
	if fs == nil {
		return 0, nil
	}
	n := (fs.ParameterCount() + fs.LocalCount()) * word
	return (n + 15) &^ 15, nil
}
