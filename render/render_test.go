package render_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/entry"
	"github.com/gotvm/decompiler/ir"
	"github.com/gotvm/decompiler/lifter"
	"github.com/gotvm/decompiler/passes"
	"github.com/gotvm/decompiler/render"
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

func TestPrintSingleProgramInlinesConstants(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	root := bitsCell(pushInt(2)+pushInt(3)+"10100000", nil).BeginParse()
	prog := entry.Decompile(root, l)
	require.False(t, prog.IsMulti())

	prog.Entry = passes.Default().Run(prog.Entry)

	var buf bytes.Buffer
	pp := &render.Printer{Output: &buf}
	require.NoError(t, pp.Print(prog))

	want := "fn() {\n" +
		"    var2 = ADD(a=PUSHINT(v=2), b=PUSHINT(v=3))\n" +
		"    return var2\n" +
		"}\n"
	require.Equal(t, want, buf.String())
}

func TestPrintMultiProgramOrdersMethodsAscending(t *testing.T) {
	cat := loadSampleCatalog(t)
	l, err := lifter.New(cat)
	require.NoError(t, err)

	fnNeg1 := l.Lift(bitsCell(pushInt(1), nil).BeginParse())
	fn0 := l.Lift(bitsCell(pushInt(2), nil).BeginParse())

	prog := ir.MultiProgram(map[int32]*ir.Function{-1: fnNeg1, 0: fn0})

	var buf bytes.Buffer
	pp := &render.Printer{Output: &buf}
	require.NoError(t, pp.Print(prog))

	out := buf.String()
	idxMethod0 := strings.Index(out, "method 0 {")
	idxMethodNeg1 := strings.Index(out, "method -1 {")
	require.GreaterOrEqual(t, idxMethodNeg1, 0)
	require.GreaterOrEqual(t, idxMethod0, 0)
	require.Less(t, idxMethodNeg1, idxMethod0)
}
