// Package catalog models the external, immutable instruction-set
// specification the decoder and lifter are driven by. It is loaded once, at
// construction time, from structured data (ordinarily a JSON document
// shaped like the one described below) and never mutated afterward.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Catalog is the full instruction-set specification: one Instruction per
// opcode. It is immutable once loaded; callers must not mutate the slice or
// any Instruction reachable from it.
type Catalog struct {
	Instructions []*Instruction `json:"instructions"`
}

// Instruction describes a single opcode: its bit prefix, operand layout,
// documentation category, stack-input/output shape, and control-flow
// descriptors.
type Instruction struct {
	Mnemonic    string      `json:"mnemonic"`
	Bytecode    Bytecode    `json:"bytecode"`
	Doc         Doc         `json:"doc"`
	ValueFlow   ValueFlow   `json:"value_flow"`
	ControlFlow ControlFlow `json:"control_flow"`

	// StackOps is the per-mnemonic decomposition of a stack_basic/
	// stack_complex instruction into the four shuffle primitives (xchg,
	// blkpush, blkpop, reverse). It lives here, as data, rather than as
	// hardcoded logic in the stack package, because the decomposition is
	// catalog-specific: two catalog dialects may decompose the same mnemonic
	// differently (a "reverse" instruction's length-parameter encoding is
	// the canonical example).
	StackOps []StackOp `json:"stack_ops,omitempty"`
}

// IsStackShuffle reports whether this instruction's category marks it as a
// pure stack shuffle (no IR primitive is ever emitted for it).
func (ins *Instruction) IsStackShuffle() bool {
	return ins.Doc.Category == "stack_basic" || ins.Doc.Category == "stack_complex"
}

// IsConstProducer reports whether this instruction's category marks it as a
// pure constant producer, eligible for the inline-constants pass.
func (ins *Instruction) IsConstProducer() bool {
	return ins.Doc.Category == "const_int" || ins.Doc.Category == "const_data"
}

// Doc carries the free-form documentation metadata attached to an
// instruction. Only Category is interpreted by the core; the rest rides
// along opaquely for the external pretty-printer.
type Doc struct {
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// Bytecode describes how an instruction is recognized and decoded from a
// bitstream: its prefix, an optional disambiguating range check, and its
// ordered operand declarations.
type Bytecode struct {
	// Prefix is the bit prefix as a plain string of '0'/'1' characters.
	// Load does not normalize other encodings; the decoder rejects any
	// prefix that is not a non-empty bitstring.
	Prefix              string        `json:"prefix"`
	OperandsRangeCheck  *RangeCheck   `json:"operands_range_check,omitempty"`
	Operands            []Operand     `json:"operands,omitempty"`
	TLB                 string        `json:"tlb,omitempty"`
	DocOpcode           string        `json:"doc_opcode,omitempty"`
}

// RangeCheck disambiguates two instructions whose prefixes overlap: after
// consuming the prefix, the next Length bits are read as an unsigned integer
// and the match is only accepted if it falls within [From, To].
type RangeCheck struct {
	Length int   `json:"length"`
	From   int64 `json:"from"`
	To     int64 `json:"to"`
}

// Load parses a Catalog from its JSON representation.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	for _, ins := range c.Instructions {
		if ins.Mnemonic == "" {
			return nil, fmt.Errorf("catalog: instruction with empty mnemonic")
		}
	}
	return &c, nil
}

// MustLoad is like Load but panics on error. Intended for package-level
// catalog initialization from embedded test data, never for adapter code
// handling untrusted input.
func MustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the instruction with the given mnemonic, or nil if none
// matches.
func (c *Catalog) Lookup(mnemonic string) *Instruction {
	for _, ins := range c.Instructions {
		if ins.Mnemonic == mnemonic {
			return ins
		}
	}
	return nil
}
