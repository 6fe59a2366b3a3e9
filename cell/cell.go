// Package cell implements the bit/ref container that the decompilation core
// reads instructions from. Parsing a raw byte stream into a graph of cells
// is left to an external adapter; this package supplies only the minimal,
// direct cursor interface the core operates on.
package cell

// Cell is an immutable node in a directed acyclic graph of bitstrings and
// child references. Cells may be shared: more than one Slice may reference
// the same *Cell, which is why Slice.Clone exists and why nothing in this
// package ever mutates a Cell in place.
type Cell struct {
	bits []byte // MSB-first packed bits, only the first BitLen bits are meaningful
	n    int    // number of meaningful bits in bits
	refs []*Cell
}

// New builds a Cell from a slice of packed, MSB-first bits (only the first n
// bits are meaningful) and an ordered list of child references.
func New(bits []byte, n int, refs []*Cell) *Cell {
	cp := make([]byte, len(bits))
	copy(cp, bits)
	crefs := make([]*Cell, len(refs))
	copy(crefs, refs)
	return &Cell{bits: cp, n: n, refs: crefs}
}

// BitLen returns the number of meaningful bits stored in the cell.
func (c *Cell) BitLen() int { return c.n }

// RefCount returns the number of child cells.
func (c *Cell) RefCount() int { return len(c.refs) }

// Ref returns the i-th child cell.
func (c *Cell) Ref(i int) *Cell { return c.refs[i] }

// BeginParse returns a cursor positioned at the start of the cell, the usual
// entry point for reading a root cell.
func (c *Cell) BeginParse() *Slice {
	return &Slice{cell: c}
}
