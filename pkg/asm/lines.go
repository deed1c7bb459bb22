package asm

import "sort"

// LineEntry maps a code offset to the source position of the statement
// whose code starts there.
type LineEntry struct {
	Offset int `cbor:"1,keyasint"`
	Line   int `cbor:"2,keyasint"`
	Column int `cbor:"3,keyasint"`
}

// LineTable is sorted by Offset.
type LineTable []LineEntry

// Lookup finds the entry covering offset: the last one at or before it.
func (t LineTable) Lookup(offset int) (LineEntry, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Offset > offset })
	if i == 0 {
		return LineEntry{}, false
	}
	return t[i-1], true
}

// StartLineRecording begins a fresh line table.
func (a *Assembler) StartLineRecording() {
	a.recording = true
	a.lines = nil
}

// RecordPosition notes that code emitted from here on belongs to the given
// source position. A second position at the same offset replaces the first,
// since no code separates them.
func (a *Assembler) RecordPosition(line, column int) {
	if !a.recording {
		return
	}
	e := LineEntry{Offset: len(a.buf), Line: line, Column: column}
	if n := len(a.lines); n > 0 && a.lines[n-1].Offset == e.Offset {
		a.lines[n-1] = e
		return
	}
	a.lines = append(a.lines, e)
}

// EndLineRecording stops recording and hands over the table.
func (a *Assembler) EndLineRecording() LineTable {
	t := a.lines
	a.recording = false
	a.lines = nil
	return t
}
