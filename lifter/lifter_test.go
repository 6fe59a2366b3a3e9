package lifter_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/lifter"
)

func loadSampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "catalog", "testdata", "sample.json"))
	require.NoError(t, err)
	c, err := catalog.Load(data)
	require.NoError(t, err)
	return c
}

func bitsCell(bits string, refs []*cell.Cell) *cell.Cell {
	b := make([]byte, (len(bits)+7)/8)
	for i, r := range bits {
		if r == '1' {
			b[i/8] |= 1 << uint(7-i%8)
		}
	}
	return cell.New(b, len(bits), refs)
}

func pushInt(v uint64) string {
	return "01111000" + "00000" + fmt.Sprintf("%019b", v)
}

func TestLiftAddsTwoConstants(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	bits := pushInt(2) + pushInt(3) + "10100000" // ADD
	root := bitsCell(bits, nil).BeginParse()

	fn := l.Lift(root)
	require.NoError(t, fn.DecompileError)
	require.NoError(t, fn.DisassembleError)
	require.Empty(t, fn.Args)
	require.Len(t, fn.Body, 3)
	require.Equal(t, "ADD", fn.Body[2].Mnemonic)
	require.Len(t, fn.Result, 1)
}

func TestLiftSynthesizesArgOnUnderflow(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	// A lone ADD: both operands are missing, synthesized as two args.
	root := bitsCell("10100000", nil).BeginParse()

	fn := l.Lift(root)
	require.NoError(t, fn.DecompileError)
	require.Len(t, fn.Args, 2)
	require.Len(t, fn.Result, 1)
}

func TestLiftRecursesIntoContinuation(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	body := bitsCell(pushInt(1), nil)
	// PUSHCONT consumes one ref operand; IFJMP's flag is missing (stack
	// underflow) and gets synthesized as a function parameter.
	root := bitsCell("10011000"+"10011001", []*cell.Cell{body}).BeginParse()

	fn := l.Lift(root)
	require.NoError(t, fn.DecompileError)
	require.Len(t, fn.Args, 1)
	require.Len(t, fn.Body, 2)
	require.Equal(t, "PUSHCONT", fn.Body[0].Mnemonic)
	require.Equal(t, "IFJMP", fn.Body[1].Mnemonic)
}
