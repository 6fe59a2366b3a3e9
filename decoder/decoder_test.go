package decoder_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/decoder"
)

func loadSampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "catalog", "testdata", "sample.json"))
	require.NoError(t, err)
	c, err := catalog.Load(data)
	require.NoError(t, err)
	return c
}

// bitsCell packs a '0'/'1' string MSB-first into a cell, the same layout
// cell.Slice reads from.
func bitsCell(bits string, refs []*cell.Cell) *cell.Cell {
	b := make([]byte, (len(bits)+7)/8)
	for i, r := range bits {
		if r == '1' {
			b[i/8] |= 1 << uint(7-i%8)
		}
	}
	return cell.New(b, len(bits), refs)
}

func TestDecodePushIntThenDup(t *testing.T) {
	cat := loadSampleCatalog(t)
	dec, err := decoder.New(cat)
	require.NoError(t, err)

	// PUSHINT prefix (8 bits) + long_int length=0 (5 bits) + 19-bit value 5,
	// immediately followed by DUP's 8-bit prefix.
	bits := "01111000" + "00000" + "0000000000000000101" + "00100000"
	c := bitsCell(bits, nil)
	sl := c.BeginParse()

	ins, ops, err := dec.Next(sl)
	require.NoError(t, err)
	require.Equal(t, "PUSHINT", ins.Mnemonic)
	v, ok := ops.Get("v")
	require.True(t, ok)
	require.EqualValues(t, 5, v.Int64())

	ins2, _, err := dec.Next(sl)
	require.NoError(t, err)
	require.Equal(t, "DUP", ins2.Mnemonic)
	require.Equal(t, 0, sl.RemainingBits())
}

func TestDecodeRefOperand(t *testing.T) {
	cat := loadSampleCatalog(t)
	dec, err := decoder.New(cat)
	require.NoError(t, err)

	body := bitsCell("", nil)
	// PUSHCONT prefix (8 bits), then its ref operand.
	c := bitsCell("10011000", []*cell.Cell{body})
	sl := c.BeginParse()

	ins, ops, err := dec.Next(sl)
	require.NoError(t, err)
	require.Equal(t, "PUSHCONT", ins.Mnemonic)
	v, ok := ops.Get("body")
	require.True(t, ok)
	require.NotNil(t, v.Sl)
}

func TestDecodePrefixNotFound(t *testing.T) {
	cat := loadSampleCatalog(t)
	dec, err := decoder.New(cat)
	require.NoError(t, err)

	c := bitsCell("00000000", nil) // does not match any declared prefix
	sl := c.BeginParse()

	_, _, err = dec.Next(sl)
	require.Error(t, err)
}
