package ir

import "github.com/gotvm/decompiler/catalog"

// NamedInput is one (name, argument) pair of a Primitive's input list.
// Order mirrors the instruction's stack-input order, deepest-to-top, plus
// any branch-target argument names appended by control-flow analysis.
type NamedInput struct {
	Name string
	Arg  InputArg
}

// NamedOperand is one (name, value) pair of a Primitive's bytecode operand
// list, in catalog declaration order.
type NamedOperand struct {
	Name  string
	Value Value
}

// NamedOutput is one (name, definition) pair of a Primitive's output list,
// in catalog stack-output order.
type NamedOutput struct {
	Name string
	Def  Def
}

// Primitive is one non-shuffle instruction lowered to IR: its decoded
// bytecode operands, its stack inputs (as references or, post-inlining,
// inline expressions), and its stack outputs (as fresh definitions).
//
// Stack-shuffle instructions (category stack_basic / stack_complex) never
// produce a Primitive; they only rearrange the symbolic stack.
type Primitive struct {
	Spec     *catalog.Instruction
	Mnemonic string

	Inputs   []NamedInput
	Operands []NamedOperand
	Outputs  []NamedOutput
}

// OutputNames returns the identifiers this primitive defines, in output
// order.
func (p *Primitive) OutputNames() []string {
	ids := make([]string, len(p.Outputs))
	for i, o := range p.Outputs {
		ids[i] = o.Def.ID
	}
	return ids
}

// Defines reports whether id is one of this primitive's output
// identifiers.
func (p *Primitive) Defines(id string) bool {
	for _, o := range p.Outputs {
		if o.Def.ID == id {
			return true
		}
	}
	return false
}
