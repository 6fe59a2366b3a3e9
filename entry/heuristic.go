// Package entry implements the adapter-level entry-point heuristic: it
// recognizes a fixed four-instruction method-dictionary dispatch prologue
// and, when matched, extracts the method table as methodId -> code slice,
// lifting each entry independently into a Multi program. Any deviation
// falls back to lifting the root directly into a Single program.
package entry

import (
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/decoder"
	"github.com/gotvm/decompiler/ir"
	"github.com/gotvm/decompiler/lifter"
)

// Canonical mnemonics of the dispatch prologue, in order.
const (
	mnSetCodePage   = "SETCP"
	mnDictPushConst = "DICTPUSHCONST"
	mnDictIGetJmpZ  = "DICTIGETJMPZ"
	mnThrowArg      = "THROWARG"
)

// dictPushConst's declared operand names: a dictionary key-width integer
// and a ref to the dictionary cell itself.
const (
	dictWidthOperand = "n"
	dictCellOperand  = "d"
)

// Decompile recognizes the dictionary-dispatch prologue at root. When it
// matches exactly -- right mnemonics in order, no leftover bits or refs --
// it decodes the dictionary and lifts each method slice independently into
// a Multi program. Otherwise it lifts root directly into a Single program.
//
// The match is conservative: it runs against a clone of root, so a failed
// attempt never disturbs the slice the caller falls back to lifting
// directly.
func Decompile(root *cell.Slice, l *lifter.Lifter) *ir.Program {
	if methods, ok := tryDictDispatch(root.Clone(), l); ok {
		return ir.MultiProgram(methods)
	}
	return ir.SingleProgram(l.Lift(root))
}

func tryDictDispatch(probe *cell.Slice, l *lifter.Lifter) (map[int32]*ir.Function, bool) {
	dec := l.Decoder()
	wanted := []string{mnSetCodePage, mnDictPushConst, mnDictIGetJmpZ, mnThrowArg}

	var dictOps *decoder.Operands
	for _, want := range wanted {
		ins, ops, err := dec.Next(probe)
		if err != nil || ins.Mnemonic != want {
			return nil, false
		}
		if want == mnDictPushConst {
			dictOps = ops
		}
	}
	if probe.RemainingBits() != 0 || probe.RemainingRefs() != 0 {
		return nil, false
	}
	if dictOps == nil {
		return nil, false
	}

	nVal, ok := dictOps.Get(dictWidthOperand)
	if !ok {
		return nil, false
	}
	dVal, ok := dictOps.Get(dictCellOperand)
	if !ok || dVal.Sl == nil {
		return nil, false
	}

	keyLen := int(nVal.Int64())
	if keyLen <= 0 {
		return nil, false
	}

	entries, err := decodeHashmap(dVal.Sl, keyLen)
	if err != nil {
		return nil, false
	}

	methods := make(map[int32]*ir.Function, len(entries))
	for id, sl := range entries {
		methods[id] = l.Lift(sl)
	}
	return methods, true
}
