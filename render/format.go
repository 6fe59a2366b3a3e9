package render

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/gotvm/decompiler/decoder"
	"github.com/gotvm/decompiler/ir"
)

// formatValue renders an operand value. Continuation-shaped values are
// rendered as a short placeholder here; their bodies are printed as nested
// blocks by printPrimitive, the same way a call expression's callee is
// named on one line while its definition lives in its own block.
func formatValue(v ir.Value) string {
	switch v.Kind {
	case ir.KindCont:
		return "cont"
	case ir.KindContMap:
		return "cont_map"
	default:
		return v.String()
	}
}

// formatArg renders one primitive input argument: a bare reference, or a
// fully inlined producer expression.
func formatArg(a ir.InputArg) string {
	switch {
	case a.Ref != nil:
		return a.Ref.ID
	case a.Inline != nil:
		return formatInline(a.Inline)
	default:
		return "<empty>"
	}
}

func formatInline(p *ir.Primitive) string {
	args := make([]string, 0, len(p.Operands)+len(p.Inputs))
	for _, op := range p.Operands {
		args = append(args, fmt.Sprintf("%s=%s", op.Name, formatValue(op.Value)))
	}
	for _, in := range p.Inputs {
		args = append(args, fmt.Sprintf("%s=%s", in.Name, formatArg(in.Arg)))
	}
	return fmt.Sprintf("%s(%s)", p.Mnemonic, strings.Join(args, ", "))
}

// formatRaw renders one instruction the lifter could still decode but
// never symbolically executed, for the asmTail listing.
func formatRaw(raw ir.RawInstruction) string {
	if raw.Spec == nil || raw.Operands == nil {
		return "<unknown>"
	}
	names := raw.Operands.Names()
	parts := make([]string, 0, len(names))
	for _, n := range names {
		v, _ := raw.Operands.Get(n)
		parts = append(parts, fmt.Sprintf("%s=%s", n, formatOperandValue(v)))
	}
	return fmt.Sprintf("%s(%s)", raw.Spec.Mnemonic, strings.Join(parts, ", "))
}

func formatOperandValue(v decoder.Value) string {
	if v.Num != nil {
		return v.Num.String()
	}
	if v.Sl != nil {
		return fmt.Sprintf("slice(%d bits, %d refs)", v.Sl.RemainingBits(), v.Sl.RemainingRefs())
	}
	return "<empty>"
}

// methodMapKeys returns a method dictionary's keys in ascending order, the
// same deterministic-iteration convention used throughout this codebase for
// swiss-backed maps.
func methodMapKeys(m *ir.MethodMap) []int32 {
	var ids []int32
	m.Iter(func(k int32, _ *ir.Function) bool {
		ids = append(ids, k)
		return false
	})
	slices.Sort(ids)
	return ids
}
