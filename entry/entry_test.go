package entry_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/entry"
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

// buildDictRoot assembles a SETCP/DICTPUSHCONST/DICTIGETJMPZ/THROWARG
// prologue over a 1-bit-wide method dictionary with two short-label leaves,
// keys 0 and -1.
func buildDictRoot() *cell.Slice {
	leftLeaf := bitsCell("00"+pushInt(11), nil)  // method 0
	rightLeaf := bitsCell("00"+pushInt(22), nil) // method -1

	dictRoot := bitsCell("00", []*cell.Cell{leftLeaf, rightLeaf})

	setcp := "11111111" + "00000000"
	dictPushConst := "11110100" + "0000000001" // n=1, then ref operand
	dictIGetJmpZ := "11110101"
	throwArg := "11110110" + "00000000000"

	bits := setcp + dictPushConst + dictIGetJmpZ + throwArg
	return bitsCell(bits, []*cell.Cell{dictRoot}).BeginParse()
}

func TestDecompileRecognizesDictDispatch(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	prog := entry.Decompile(buildDictRoot(), l)
	require.True(t, prog.IsMulti())
	require.Len(t, prog.Methods, 2)

	m0, ok := prog.Methods[0]
	require.True(t, ok)
	require.NoError(t, m0.DecompileError)
	require.Len(t, m0.Body, 1)

	mNeg1, ok := prog.Methods[-1]
	require.True(t, ok)
	require.NoError(t, mNeg1.DecompileError)
}

func TestDecompileFallsBackToSingle(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	root := bitsCell(pushInt(1), nil).BeginParse()
	prog := entry.Decompile(root, l)
	require.False(t, prog.IsMulti())
	require.NotNil(t, prog.Entry)
}
