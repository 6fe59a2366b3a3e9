// Package decoder implements the opcode decoder: matching one instruction's
// bit prefix against a catalog and loading its declared operands from a
// cell.Slice cursor.
package decoder

import (
	"fmt"
	"math/big"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
)

// Decoder matches instructions from a catalog.Catalog against a bit cursor.
// It is immutable and safe to share across concurrent decompilation runs.
type Decoder struct {
	catalog *catalog.Catalog
	table   *prefixTable
}

// New builds a Decoder from a loaded catalog.
func New(c *catalog.Catalog) (*Decoder, error) {
	table, err := buildPrefixTable(c)
	if err != nil {
		return nil, err
	}
	return &Decoder{catalog: c, table: table}, nil
}

// Next matches and decodes one instruction at the cursor, advancing it past
// the prefix and all of its operands. On success it returns the matched
// catalog.Instruction and the decoded operand values.
func (d *Decoder) Next(cur *cell.Slice) (*catalog.Instruction, *Operands, error) {
	ins, prefixLen, err := d.matchPrefix(cur)
	if err != nil {
		return nil, nil, err
	}
	if err := cur.Skip(prefixLen); err != nil {
		// Unreachable in practice: matchPrefix already confirmed these bits
		// exist, but surfaced defensively rather than panicking.
		return nil, nil, fmt.Errorf("decoder: %s: %w", ins.Mnemonic, err)
	}

	ops := newOperands(len(ins.Bytecode.Operands))
	for _, decl := range ins.Bytecode.Operands {
		v, err := d.loadOperand(cur, ins, decl, ops)
		if err != nil {
			return nil, nil, &ErrOperandLoad{Mnemonic: ins.Mnemonic, Operand: decl.Name, Cause: err}
		}
		ops.set(decl.Name, v)
	}
	return ins, ops, nil
}

// matchPrefix finds the shortest accepting declared prefix at the cursor
// (candidate lengths are tried in increasing order and the first one that
// accepts wins), without consuming any bits. It returns the matched instruction and the
// number of bits its prefix occupies.
func (d *Decoder) matchPrefix(cur *cell.Slice) (*catalog.Instruction, int, error) {
	for l := 1; l <= d.table.maxLen; l++ {
		if cur.RemainingBits() < l {
			break
		}
		peek, err := cur.PeekBigUint(l)
		if err != nil {
			break
		}
		bits := padBits(peek, l)

		ins, ok := d.table.lookup(l, bits)
		if !ok {
			continue
		}

		rc := ins.Bytecode.OperandsRangeCheck
		if rc == nil {
			return ins, l, nil
		}

		// Range check applies to the bits immediately following the prefix.
		probe := cur.Clone()
		if err := probe.Skip(l); err != nil {
			continue
		}
		val, err := probe.PeekBigUint(rc.Length)
		if err != nil {
			continue
		}
		iv := new(big.Int).Set(val)
		if iv.Cmp(big.NewInt(rc.From)) >= 0 && iv.Cmp(big.NewInt(rc.To)) <= 0 {
			return ins, l, nil
		}
		// Doesn't fall in range: this length does not accept, keep searching.
	}
	return nil, 0, ErrPrefixNotFound{}
}

func padBits(v *big.Int, length int) string {
	s := v.Text(2)
	if len(s) < length {
		s = zeros(length-len(s)) + s
	}
	return s
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

func (d *Decoder) loadOperand(cur *cell.Slice, ins *catalog.Instruction, decl catalog.Operand, prior *Operands) (Value, error) {
	switch decl.Kind {
	case catalog.OperandUint:
		n, err := cur.LoadBigUint(decl.Size)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: decl.Kind, Num: n}, nil

	case catalog.OperandInt:
		n, err := cur.LoadBigInt(decl.Size)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: decl.Kind, Num: n}, nil

	case catalog.OperandRef:
		sl, err := cur.LoadRef()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: decl.Kind, Sl: sl}, nil

	case catalog.OperandLongInt:
		l, err := cur.LoadUint(5)
		if err != nil {
			return Value{}, err
		}
		width := int(8*l + 19)
		n, err := cur.LoadBigInt(width)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: decl.Kind, Num: n}, nil

	case catalog.OperandSubslice:
		bitLen := decl.BitsPadding
		if decl.BitsLengthVar != "" {
			lv, ok := prior.Get(decl.BitsLengthVar)
			if !ok {
				return Value{}, fmt.Errorf("subslice: unknown bits length var %q", decl.BitsLengthVar)
			}
			bitLen += int(lv.Int64())
		}
		refLen := decl.RefsAdd
		if decl.RefsLengthVar != "" {
			lv, ok := prior.Get(decl.RefsLengthVar)
			if !ok {
				return Value{}, fmt.Errorf("subslice: unknown refs length var %q", decl.RefsLengthVar)
			}
			refLen += int(lv.Int64())
		}
		sl, err := cur.LoadSubslice(bitLen, refLen)
		if err != nil {
			return Value{}, err
		}
		if decl.CompletionTag {
			stripped, err := sl.StripCompletionTag()
			if err != nil {
				return Value{}, &ErrCompletionTagMissing{Mnemonic: ins.Mnemonic, Operand: decl.Name}
			}
			sl = stripped
		}
		return Value{Kind: decl.Kind, Sl: sl}, nil
	}
	return Value{}, fmt.Errorf("decoder: unknown operand kind %q", decl.Kind)
}
