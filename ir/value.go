// Package ir defines the dataflow-oriented intermediate representation the
// lifter produces: a closed tagged-variant operand value, ordered
// input/operand/output lists per primitive, and the function/program
// container types.
package ir

import (
	"fmt"
	"math/big"

	"github.com/dolthub/swiss"
	"github.com/gotvm/decompiler/cell"
)

// ValueKind is the closed set of tags a Value may carry. Modeled as an enum
// rather than an interface hierarchy so the renderer and the pass pipeline
// can exhaustively switch on it at compile time.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindBigInt
	KindBool
	KindSlice
	KindCell
	KindCont
	KindContMap
	KindOther
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindBool:
		return "bool"
	case KindSlice:
		return "slice"
	case KindCell:
		return "cell"
	case KindCont:
		return "cont"
	case KindContMap:
		return "cont_map"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// MethodMap is the method dictionary representation used by the cont_map
// variant: a numbered table of entry points. Backed by swiss.Map, a small,
// hot, int32-keyed dictionary.
type MethodMap = swiss.Map[int32, *Function]

// Value is an IR operand value: a closed tagged variant over the kinds an
// instruction's bytecode operand may materialize as. Exactly one field is
// meaningful, selected by Kind.
type Value struct {
	Kind ValueKind

	Int     int64
	Big     *big.Int
	Bool    bool
	Slice   *cell.Slice
	Cell    *cell.Cell
	Cont    *Function
	ContMap *MethodMap
	Other   any
}

func IntValue(i int64) Value           { return Value{Kind: KindInt, Int: i} }
func BigIntValue(b *big.Int) Value     { return Value{Kind: KindBigInt, Big: b} }
func BoolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func SliceValue(s *cell.Slice) Value   { return Value{Kind: KindSlice, Slice: s} }
func CellValue(c *cell.Cell) Value     { return Value{Kind: KindCell, Cell: c} }
func ContValue(f *Function) Value      { return Value{Kind: KindCont, Cont: f} }
func ContMapValue(m *MethodMap) Value  { return Value{Kind: KindContMap, ContMap: m} }
func OtherValue(v any) Value           { return Value{Kind: KindOther, Other: v} }

// String renders a short, renderer-agnostic description of the value,
// mostly useful for diagnostics and tests.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBigInt:
		return v.Big.String()
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindSlice:
		return "slice"
	case KindCell:
		return "cell"
	case KindCont:
		return "cont"
	case KindContMap:
		return "cont_map"
	default:
		return fmt.Sprintf("%v", v.Other)
	}
}
