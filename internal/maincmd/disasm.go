package maincmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"github.com/gotvm/decompiler/decoder"
)

// Disasm prints the raw decoded instruction stream for each path in args,
// without symbolic lifting: the mnemonic and operand values in encounter
// order, one line per instruction, stopping at the first undecodable tail.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cat, err := loadCatalog(c.Catalog)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "disasm: %s\n", err)
		return err
	}
	dec, err := decoder.New(cat)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "disasm: %s\n", err)
		return err
	}

	var failed bool
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		root, err := loadRoot(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "disasm: %s: %s\n", path, err)
			failed = true
			continue
		}

		fmt.Fprintf(stdio.Stdout, "-- %s\n", path)
		cur := root
		for cur.RemainingBits() > 0 || cur.RemainingRefs() > 0 {
			if cur.RemainingBits() == 0 {
				next, err := cur.LoadRef()
				if err != nil {
					fmt.Fprintf(stdio.Stdout, "; tail ref error: %s\n", err)
					break
				}
				cur = next
				continue
			}
			ins, ops, err := dec.Next(cur)
			if err != nil {
				fmt.Fprintf(stdio.Stdout, "; undecodable: %s (%d bits, %d refs remain)\n",
					err, cur.RemainingBits(), cur.RemainingRefs())
				break
			}
			fmt.Fprintln(stdio.Stdout, formatInstruction(ins.Mnemonic, ops))
		}
	}
	if failed {
		return fmt.Errorf("disasm: one or more files failed")
	}
	return nil
}

func formatInstruction(mnemonic string, ops *decoder.Operands) string {
	names := ops.Names()
	parts := make([]string, 0, len(names))
	for _, n := range names {
		v, _ := ops.Get(n)
		switch {
		case v.Num != nil:
			parts = append(parts, fmt.Sprintf("%s=%s", n, v.Num.String()))
		case v.Sl != nil:
			parts = append(parts, fmt.Sprintf("%s=slice(%d bits, %d refs)", n, v.Sl.RemainingBits(), v.Sl.RemainingRefs()))
		default:
			parts = append(parts, fmt.Sprintf("%s=<empty>", n))
		}
	}
	return fmt.Sprintf("%s(%s)", mnemonic, strings.Join(parts, ", "))
}
