// Package render implements the textual pretty-printer for a decompiled
// Program: readable pseudo-code resembling a higher-level source language,
// annotated with diagnostic comments and raw disassembly wherever a
// function's lifter could not finish symbolic execution. Grounded on
// lang/ast/printer.go's indent-tracking, error-accumulating style,
// generalized from ast.Node to ir.Function / ir.Program.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gotvm/decompiler/ir"
)

// Printer controls pretty-printing of a decompiled Program.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer
}

// Print renders prog to p.Output. A Multi program is rendered as one
// "method <id> { ... }" block per entry, in ascending key order.
func (p *Printer) Print(prog *ir.Program) error {
	pp := &printer{w: p.Output}
	if prog.IsMulti() {
		for _, id := range prog.SortedMethodIDs() {
			pp.line(0, "method %d {", id)
			pp.printFunction(prog.Methods[id], 1)
			pp.line(0, "}")
		}
		return pp.err
	}
	pp.printFunction(prog.Entry, 0)
	return pp.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(indent int, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	prefix := strings.Repeat("    ", indent)
	_, p.err = fmt.Fprintf(p.w, prefix+format+"\n", args...)
}

func (p *printer) printFunction(fn *ir.Function, indent int) {
	if fn == nil {
		p.line(indent, "<nil>")
		return
	}

	p.line(indent, "fn(%s) {", strings.Join(defNames(fn.Args), ", "))
	for _, prim := range fn.Body {
		p.printPrimitive(prim, indent+1)
	}

	if fn.DisassembleError != nil {
		p.line(indent+1, "// disassemble error: %s", fn.DisassembleError)
		if ti := fn.TailSliceInfo; ti != nil {
			p.line(indent+1, "// tail: %d bits, %d refs remaining", ti.RemainingBits, ti.RemainingRefs)
		}
	}
	if len(fn.AsmTail) > 0 {
		p.line(indent+1, "// undecoded tail:")
		for _, raw := range fn.AsmTail {
			p.line(indent+1, "//   %s", formatRaw(raw))
		}
	}
	if fn.DecompileError != nil {
		p.line(indent+1, "// decompile error: %s", fn.DecompileError)
	}

	p.line(indent+1, "return %s", strings.Join(refNames(fn.Result), ", "))
	p.line(indent, "}")
}

func (p *printer) printPrimitive(prim *ir.Primitive, indent int) {
	outs := prim.OutputNames()
	lhs := ""
	if len(outs) > 0 {
		lhs = strings.Join(outs, ", ") + " = "
	}

	args := make([]string, 0, len(prim.Operands)+len(prim.Inputs))
	for _, op := range prim.Operands {
		args = append(args, fmt.Sprintf("%s=%s", op.Name, formatValue(op.Value)))
	}
	for _, in := range prim.Inputs {
		args = append(args, fmt.Sprintf("%s=%s", in.Name, formatArg(in.Arg)))
	}
	p.line(indent, "%s%s(%s)", lhs, prim.Mnemonic, strings.Join(args, ", "))

	for _, op := range prim.Operands {
		switch op.Value.Kind {
		case ir.KindCont:
			if op.Value.Cont == nil {
				continue
			}
			p.line(indent+1, "%s:", op.Name)
			p.printFunction(op.Value.Cont, indent+2)
		case ir.KindContMap:
			if op.Value.ContMap == nil {
				continue
			}
			p.line(indent+1, "%s: method_map {", op.Name)
			for _, id := range methodMapKeys(op.Value.ContMap) {
				fn, _ := op.Value.ContMap.Get(id)
				p.line(indent+2, "%d:", id)
				p.printFunction(fn, indent+3)
			}
			p.line(indent+1, "}")
		}
	}
}

func defNames(defs []ir.Def) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func refNames(refs []ir.Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}
