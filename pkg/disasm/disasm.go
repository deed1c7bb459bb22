// Package disasm renders compiled method code as assembly text by decoding
// it with x86asm, independently of the assembler that produced it.
package disasm

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"rjit/pkg/heap"
	"rjit/pkg/method"
)

// Syntax selects the assembly dialect.
type Syntax int

const (
	GNU Syntax = iota
	Intel
)

func (s Syntax) String() string {
	if s == Intel {
		return "intel"
	}
	return "gnu"
}

// ParseSyntax accepts "gnu" or "intel".
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(s) {
	case "gnu", "att", "":
		return GNU, nil
	case "intel":
		return Intel, nil
	}
	return GNU, fmt.Errorf("disasm: unknown syntax %q", s)
}

// Names maps heap addresses to the names printed next to immediates that
// load them.
type Names map[heap.Address]string

// ImageNames collects the singleton and global names of img.
func ImageNames(img *method.Image) Names {
	names := Names{
		img.Heap.AllocationTop: "<allocation top>",
		img.Heap.Undefined:     "undefined",
		img.Heap.True:          "true",
		img.Heap.False:         "false",
	}
	for name, addr := range img.Globals {
		names[addr] = name
	}
	return names
}

// Method writes the disassembly of d to w. Each instruction that starts a
// source line is annotated with its position.
func Method(w io.Writer, d *method.Descriptor, syn Syntax, names Names) error {
	if d.Ambient {
		_, err := fmt.Fprintf(w, "%s: ambient\n", d.Name)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s:\n", d.Name); err != nil {
		return err
	}

	starts := make(map[int]string, len(d.Lines))
	for _, e := range d.Lines {
		starts[e.Offset] = fmt.Sprintf("%d:%d", e.Line, e.Column)
	}

	code := d.Code
	for off := 0; off < len(code); {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			return fmt.Errorf("disasm: %s+%#x: %w", d.Name, off, err)
		}
		if inst.Op == 0 {
			return fmt.Errorf("disasm: %s+%#x: undecodable", d.Name, off)
		}

		var text string
		if syn == Intel {
			text = x86asm.IntelSyntax(inst, uint64(off), nil)
		} else {
			text = x86asm.GNUSyntax(inst, uint64(off), nil)
		}

		var notes []string
		if pos, ok := starts[off]; ok {
			notes = append(notes, pos)
		}
		for _, a := range inst.Args {
			if imm, ok := a.(x86asm.Imm); ok {
				if name, ok := names[heap.Address(imm)]; ok {
					notes = append(notes, name)
				}
			}
		}

		line := fmt.Sprintf("%04x  %-40s", off, text)
		if len(notes) > 0 {
			line += "  ; " + strings.Join(notes, " ")
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		off += inst.Len
	}
	return nil
}

// Image writes every method of img in name order.
func Image(w io.Writer, img *method.Image, syn Syntax) error {
	names := ImageNames(img)
	methods := append([]*method.Descriptor(nil), img.Methods...)
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	for i, d := range methods {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := Method(w, d, syn, names); err != nil {
			return err
		}
	}
	return nil
}
