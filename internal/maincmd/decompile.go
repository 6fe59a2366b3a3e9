package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/entry"
	"github.com/gotvm/decompiler/ir"
	"github.com/gotvm/decompiler/lifter"
	"github.com/gotvm/decompiler/passes"
	"github.com/gotvm/decompiler/render"
)

// Decompile runs the full pipeline over each path in args: load the
// reference cell, recognize the entry prologue, symbolically lift it, run
// the default pass pipeline over the result, and pretty-print it.
func (c *Cmd) Decompile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cat, err := loadCatalog(c.Catalog)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "decompile: %s\n", err)
		return err
	}
	l, err := lifter.New(cat)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "decompile: %s\n", err)
		return err
	}

	pp := &render.Printer{Output: stdio.Stdout}
	pipe := passes.Default()

	var failed bool
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		root, err := loadRoot(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "decompile: %s: %s\n", path, err)
			failed = true
			continue
		}

		prog := entry.Decompile(root, l)
		prog = runPasses(pipe, prog)

		if err := pp.Print(prog); err != nil {
			fmt.Fprintf(stdio.Stderr, "decompile: %s: render: %s\n", path, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("decompile: one or more files failed")
	}
	return nil
}

// runPasses applies pipe to every function in prog, rebuilding a Multi
// program's method map with the pass results in place.
func runPasses(pipe *passes.Pipeline, prog *ir.Program) *ir.Program {
	if !prog.IsMulti() {
		return ir.SingleProgram(pipe.Run(prog.Entry))
	}
	out := make(map[int32]*ir.Function, len(prog.Methods))
	for id, fn := range prog.Methods {
		out[id] = pipe.Run(fn)
	}
	return ir.MultiProgram(out)
}

func loadRoot(path string) (*cell.Slice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	c, err := cell.LoadJSON(data)
	if err != nil {
		return nil, err
	}
	return cell.FromCell(c), nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return catalog.Load(data)
}
