package ir

import (
	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/decoder"
)

// RawInstruction is one instruction the lifter could still decode after
// symbolic execution gave up, kept verbatim for the disassembly tail.
type RawInstruction struct {
	Spec     *catalog.Instruction
	Operands *decoder.Operands
}

// TailInfo describes the bit/ref residue left over after a decode error
// aborted the lifter's main loop.
type TailInfo struct {
	RemainingBits int
	RemainingRefs int
	Slice         *cell.Slice
}

// Function is one lifted IR function: its synthesized formal parameters,
// its linear body of primitives, and the stack tuple it returns. Args are
// discovered by underflow, not declared up front.
type Function struct {
	Args   []Def
	Body   []*Primitive
	Result []Ref

	// AsmTail holds whatever could still be decoded after a non-retryable
	// symbolic-execution error, for transparency.
	AsmTail []RawInstruction
	// TailSliceInfo holds the bit/ref residue left after a decode error.
	TailSliceInfo *TailInfo

	// DecompileError is set by a non-retryable symbolic-execution or
	// spec-consistency error (StackUnderflow beyond the retry cap,
	// GuardUnresolved, UnsupportedOperand, spec-consistency errors).
	DecompileError error
	// DisassembleError is set when the decoder itself could not decode the
	// next instruction (PrefixNotFound, OperandLoad, CompletionTagMissing).
	DisassembleError error
}

// HasError reports whether this function carries any diagnostic, i.e. its
// decompilation is partial.
func (f *Function) HasError() bool {
	return f.DecompileError != nil || f.DisassembleError != nil
}

// Defines reports whether id is a formal parameter or the output of some
// body primitive.
func (f *Function) Defines(id string) bool {
	for _, a := range f.Args {
		if a.ID == id {
			return true
		}
	}
	for _, p := range f.Body {
		if p.Defines(id) {
			return true
		}
	}
	return false
}
