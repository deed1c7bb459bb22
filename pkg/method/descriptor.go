// Package method holds the output of code generation: one Descriptor per
// compiled method, collected into an Image together with the heap layout
// the code was generated against.
package method

import (
	"fmt"

	"rjit/pkg/asm"
)

// Descriptor is the packaged result of compiling one method. Ambient
// (declare) methods carry no code.
type Descriptor struct {
	Name     string        `cbor:"1,keyasint"`
	Ambient  bool          `cbor:"2,keyasint"`
	Code     []byte        `cbor:"3,keyasint,omitempty"`
	CodeSize int           `cbor:"4,keyasint"`
	Lines    asm.LineTable `cbor:"5,keyasint,omitempty"`
}

func (d *Descriptor) String() string {
	if d.Ambient {
		return fmt.Sprintf("%s (ambient)", d.Name)
	}
	return fmt.Sprintf("%s (%d bytes, %d lines)", d.Name, d.CodeSize, len(d.Lines))
}

// PositionOf maps a code offset back to its source line and column.
func (d *Descriptor) PositionOf(offset int) (line, column int, ok bool) {
	if offset < 0 || offset >= d.CodeSize {
		return 0, 0, false
	}
	e, ok := d.Lines.Lookup(offset)
	return e.Line, e.Column, ok
}
