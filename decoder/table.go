package decoder

import (
	"fmt"

	"github.com/gotvm/decompiler/catalog"
)

// prefixTable indexes instructions by (bit length, bitstring), so a lookup
// at a given candidate length finds at most one instruction declaration --
// ambiguity between overlapping prefixes is resolved purely by trying
// successive lengths and, within a length, by the instruction's own range
// check (see Decoder.matchPrefix).
type prefixTable struct {
	byLength map[int]map[string]*catalog.Instruction
	maxLen   int
}

func buildPrefixTable(c *catalog.Catalog) (*prefixTable, error) {
	t := &prefixTable{byLength: make(map[int]map[string]*catalog.Instruction)}
	for _, ins := range c.Instructions {
		bits := ins.Bytecode.Prefix
		if bits == "" {
			return nil, fmt.Errorf("decoder: instruction %q has empty prefix", ins.Mnemonic)
		}
		for _, r := range bits {
			if r != '0' && r != '1' {
				return nil, fmt.Errorf("decoder: instruction %q has non-binary prefix %q", ins.Mnemonic, bits)
			}
		}
		l := len(bits)
		m, ok := t.byLength[l]
		if !ok {
			m = make(map[string]*catalog.Instruction)
			t.byLength[l] = m
		}
		if existing, ok := m[bits]; ok && existing.Bytecode.OperandsRangeCheck == nil {
			return nil, fmt.Errorf("decoder: duplicate unconditional prefix %q shared by %q and %q", bits, existing.Mnemonic, ins.Mnemonic)
		}
		m[bits] = ins
		if l > t.maxLen {
			t.maxLen = l
		}
	}
	return t, nil
}

func (t *prefixTable) lookup(length int, bits string) (*catalog.Instruction, bool) {
	m, ok := t.byLength[length]
	if !ok {
		return nil, false
	}
	ins, ok := m[bits]
	return ins, ok
}
