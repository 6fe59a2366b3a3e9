package decoder

import (
	"math/big"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
)

// Value is one decoded operand value: either a numeric reading (int, uint or
// long_int all collapse to a signed big.Int, the widest representation any
// of them may need) or a slice cursor (ref or subslice).
type Value struct {
	Kind catalog.OperandKind
	Num  *big.Int
	Sl   *cell.Slice
}

// Int64 returns the numeric value as an int64. Panics if this Value does not
// carry a numeric reading.
func (v Value) Int64() int64 { return v.Num.Int64() }

// Uint64 returns the numeric value as a uint64.
func (v Value) Uint64() uint64 { return v.Num.Uint64() }

// Operands is the ordered name -> Value mapping produced for one decoded
// instruction. Order mirrors the instruction's catalog.Bytecode.Operands
// declaration order, since later operands (subslice length vars) may refer
// back to earlier ones by name.
type Operands struct {
	names  []string
	values map[string]Value
}

func newOperands(n int) *Operands {
	return &Operands{names: make([]string, 0, n), values: make(map[string]Value, n)}
}

func (o *Operands) set(name string, v Value) {
	if _, ok := o.values[name]; !ok {
		o.names = append(o.names, name)
	}
	o.values[name] = v
}

// Get returns the named operand value and whether it was present.
func (o *Operands) Get(name string) (Value, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Names returns the operand names in declaration order.
func (o *Operands) Names() []string { return o.names }

// Len returns the number of decoded operands.
func (o *Operands) Len() int { return len(o.names) }
