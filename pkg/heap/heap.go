// Package heap models the address space of the runtime heap as seen by
// generated code: where the allocation top lives, where the canonical
// true/false/undefined objects are, and where each function object sits.
//
// Nothing here allocates real memory. Addresses are baked into machine code
// as immediates and a loader is expected to materialize the same layout.
//
//	base+0x00  allocation top (word, points into the dynamic area)
//	base+0x10  undefined
//	base+0x20  true
//	base+0x30  false
//	base+0x40  function objects, FunctionSize bytes each
//	...        dynamic area starts at StaticEnd
package heap

import (
	"fmt"
	"sort"
	"sync"
)

// Address is an absolute heap address.
type Address uint64

func (a Address) String() string { return fmt.Sprintf("%#x", uint64(a)) }

// Add returns a displaced by n bytes.
func (a Address) Add(n int) Address { return Address(int64(a) + int64(n)) }

// Object layout. Every object starts with a one word header.
const (
	WordSize   = 8
	HeaderSize = WordSize

	NumberValueOffset = HeaderSize
	NumberSize        = HeaderSize + WordSize

	FunctionEntryOffset = HeaderSize
	FunctionSize        = HeaderSize + WordSize

	// slotSize spaces the static objects so each starts 16-byte aligned.
	slotSize = 16
)

// DefaultBase is used when no configuration overrides it.
const DefaultBase Address = 0x10000000

// Layout is the serializable summary of a heap.
type Layout struct {
	Base          Address `cbor:"1,keyasint"`
	AllocationTop Address `cbor:"2,keyasint"`
	Undefined     Address `cbor:"3,keyasint"`
	True          Address `cbor:"4,keyasint"`
	False         Address `cbor:"5,keyasint"`
	StaticEnd     Address `cbor:"6,keyasint"`
}

// Heap hands out static object addresses. It is safe for concurrent use;
// compilations running in parallel share one Heap.
type Heap struct {
	mu        sync.Mutex
	base      Address
	next      Address
	functions map[string]Address
}

func New(base Address) *Heap {
	return &Heap{
		base:      base,
		next:      base.Add(4 * slotSize),
		functions: make(map[string]Address),
	}
}

// AllocationTop is the address of the word holding the next free address.
func (h *Heap) AllocationTop() Address { return h.base }

func (h *Heap) UndefinedValue() Address { return h.base.Add(1 * slotSize) }
func (h *Heap) TrueValue() Address      { return h.base.Add(2 * slotSize) }
func (h *Heap) FalseValue() Address     { return h.base.Add(3 * slotSize) }

// DefineFunction reserves a function object for name. Defining the same
// name again returns the first address.
func (h *Heap) DefineFunction(name string) Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.functions[name]; ok {
		return a
	}
	a := h.next
	h.functions[name] = a
	h.next = h.next.Add(slotSize)
	return a
}

// Function returns the function object bound to name.
func (h *Heap) Function(name string) (Address, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.functions[name]
	return a, ok
}

// Functions returns a copy of the name to address bindings.
func (h *Heap) Functions() map[string]Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]Address, len(h.functions))
	for k, v := range h.functions {
		out[k] = v
	}
	return out
}

// Names lists the defined functions in address order.
func (h *Heap) Names() []string {
	fns := h.Functions()
	names := make([]string, 0, len(fns))
	for n := range fns {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return fns[names[i]] < fns[names[j]] })
	return names
}

func (h *Heap) Layout() Layout {
	h.mu.Lock()
	end := h.next
	h.mu.Unlock()
	return Layout{
		Base:          h.base,
		AllocationTop: h.AllocationTop(),
		Undefined:     h.UndefinedValue(),
		True:          h.TrueValue(),
		False:         h.FalseValue(),
		StaticEnd:     end,
	}
}
