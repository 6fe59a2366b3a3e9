package maincmd_test

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/internal/filetest"
	"github.com/gotvm/decompiler/internal/maincmd"
)

var (
	testUpdateDecompileTests = flag.Bool("test.update-decompile-tests", false, "If set, replace expected decompile test results with actual results.")
	testUpdateDisasmTests    = flag.Bool("test.update-disasm-tests", false, "If set, replace expected disasm test results with actual results.")
)

const sampleCatalog = "../../catalog/testdata/sample.json"

func TestDecompile(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "decompile", "in"), filepath.Join("testdata", "decompile", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".json") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			c := &maincmd.Cmd{Catalog: sampleCatalog}
			_ = c.Decompile(ctx, stdio, []string{filepath.Join(srcDir, fi.Name())})

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateDecompileTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateDecompileTests)
		})
	}
}

func TestDisasm(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "disasm", "in"), filepath.Join("testdata", "disasm", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".json") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			c := &maincmd.Cmd{Catalog: sampleCatalog}
			_ = c.Disasm(ctx, stdio, []string{filepath.Join(srcDir, fi.Name())})

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateDisasmTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateDisasmTests)
		})
	}
}

// TestMainUsage exercises the -h/--help path of Main, which the golden-file
// cases above don't reach.
func TestMainUsage(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{}
	code := c.Main([]string{"-h"}, stdio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, buf.String(), "usage:")
}
