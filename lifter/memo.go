package lifter

import (
	"github.com/dolthub/swiss"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/decoder"
	"github.com/gotvm/decompiler/ir"
)

// memoKey identifies a previously-lifted continuation by the identity of
// the cell it starts at, plus the number of child references visible from
// that cell -- a cheap structural sanity check alongside pointer identity.
//
// Sharing only arises through "ref" operands, which always resolve to a
// whole, unconsumed child Cell; a carved-out subslice continuation is
// always a fresh Cell of its own and never collides with another slice's
// memo key.
type memoKey struct {
	c     *cell.Cell
	nrefs int
}

// run holds everything scoped to a single top-level Lift call: the
// identifier allocator, which must be per decompilation run, and the
// memoization cache that lets two operands pointing at the same shared
// cell reuse one lifted ir.Function instead of re-lifting it.
type run struct {
	dec   *decoder.Decoder
	ids   *idAllocator
	cache *swiss.Map[memoKey, *ir.Function]
}

func newRun(dec *decoder.Decoder) *run {
	return &run{dec: dec, ids: newIDAllocator(), cache: swiss.NewMap[memoKey, *ir.Function](8)}
}

func (r *run) alloc(prefix string) string { return r.ids.next(prefix) }
