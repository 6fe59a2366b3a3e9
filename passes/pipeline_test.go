package passes_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/ir"
	"github.com/gotvm/decompiler/lifter"
	"github.com/gotvm/decompiler/passes"
)

func loadSampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "catalog", "testdata", "sample.json"))
	require.NoError(t, err)
	c, err := catalog.Load(data)
	require.NoError(t, err)
	return c
}

func bitsCell(bits string) *cell.Cell {
	b := make([]byte, (len(bits)+7)/8)
	for i, r := range bits {
		if r == '1' {
			b[i/8] |= 1 << uint(7-i%8)
		}
	}
	return cell.New(b, len(bits), nil)
}

func pushInt(v uint64) string {
	return "01111000" + "00000" + fmt.Sprintf("%019b", v)
}

func TestDefaultPipelineInlinesConstantsIntoAdd(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	root := bitsCell(pushInt(2) + pushInt(3) + "10100000").BeginParse()
	fn := l.Lift(root)
	require.NoError(t, fn.DecompileError)
	require.Len(t, fn.Body, 3)

	out := passes.Default().Run(fn)

	// Both PUSHINT producers are inlined into ADD's inputs and dropped from
	// the body, leaving just the ADD statement.
	require.Len(t, out.Body, 1)
	add := out.Body[0]
	require.Equal(t, "ADD", add.Mnemonic)
	require.Len(t, add.Inputs, 2)
	for _, in := range add.Inputs {
		require.True(t, in.Arg.IsInline())
		require.Equal(t, "PUSHINT", in.Arg.Inline.Mnemonic)
	}
}

func TestDefaultPipelineIsIdempotentOnNilAndEmpty(t *testing.T) {
	require.Nil(t, passes.Default().Run(nil))

	empty := &ir.Function{}
	once := passes.Default().Run(empty)
	require.Same(t, empty, once)
	require.Same(t, once, passes.Default().Run(once))
}
