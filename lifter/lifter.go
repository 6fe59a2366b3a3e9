// Package lifter implements the symbolic-execution interpreter that drives
// the opcode decoder and the symbolic stack machine to produce a
// dataflow-oriented IR function from a root bit-slice.
//
// Lift is deterministic and total: it never panics, and every
// unrecoverable analysis problem ends up recorded on the returned
// function's DecompileError / DisassembleError / AsmTail / TailSliceInfo
// fields rather than escaping as an error return.
package lifter

import (
	"fmt"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/cell"
	"github.com/gotvm/decompiler/decoder"
	"github.com/gotvm/decompiler/ir"
	"github.com/gotvm/decompiler/stack"
)

// maxUnderflowRetries bounds how many times a single instruction may be
// retried after synthesizing new parameters before the lifter gives up on
// it.
const maxUnderflowRetries = 10

// Lifter drives instruction decoding and symbolic execution against a
// fixed catalog. It is immutable and safe to share across concurrently
// running decompilations; all of a decompilation's mutable state lives in
// the per-call run.
type Lifter struct {
	dec *decoder.Decoder
}

// New builds a Lifter over the given catalog.
func New(c *catalog.Catalog) (*Lifter, error) {
	dec, err := decoder.New(c)
	if err != nil {
		return nil, err
	}
	return &Lifter{dec: dec}, nil
}

// Decoder returns the decoder this Lifter drives. The entry heuristic uses
// it to probe a candidate dispatch prologue without going through a whole
// Lift call.
func (l *Lifter) Decoder() *decoder.Decoder { return l.dec }

// Lift symbolically interprets root and returns the resulting IR function.
// This is the sole public entry point; every recursive continuation lift
// happens underneath it, sharing one identifier allocator and one
// shared-continuation memoization cache for the whole call: the id
// counter must be per decompilation run.
func (l *Lifter) Lift(root *cell.Slice) *ir.Function {
	r := newRun(l.dec)
	return r.liftFunction(root)
}

// liftFunction lifts one function body (either the top-level program or a
// continuation operand), sharing this run's allocator and memo cache.
func (r *run) liftFunction(root *cell.Slice) *ir.Function {
	var key memoKey
	memoable := root.AtStart()
	if memoable {
		key = memoKey{c: root.Cell(), nrefs: root.Cell().RefCount()}
		if cached, ok := r.cache.Get(key); ok {
			return cached
		}
	}

	fn := &ir.Function{}
	// Reserve the memo slot before recursing so that a cell which (somehow)
	// referenced itself resolves to the in-progress function rather than
	// recursing forever; the core's stated model is a DAG, not a cyclic
	// graph, but this costs nothing and fails safe.
	if memoable {
		r.cache.Put(key, fn)
	}

	stk := stack.New(r.alloc)
	cur := root.Clone()

	for {
		if cur.RemainingBits() == 0 {
			if cur.RemainingRefs() == 0 {
				break
			}
			// Indirect jump: chase the first remaining ref and keep decoding.
			next, err := cur.LoadRef()
			if err != nil {
				fn.DisassembleError = fmt.Errorf("lifter: chasing tail ref: %w", err)
				break
			}
			cur = next
			continue
		}

		preDecode := cur.Clone()
		ins, ops, err := r.dec.Next(cur)
		if err != nil {
			fn.DisassembleError = err
			fn.TailSliceInfo = &ir.TailInfo{
				RemainingBits: preDecode.RemainingBits(),
				RemainingRefs: preDecode.RemainingRefs(),
				Slice:         preDecode,
			}
			break
		}

		contFns, err := r.resolveContinuations(ins, ops)
		if err != nil {
			if fn.DecompileError == nil {
				fn.DecompileError = err
			}
			fn.AsmTail = append(fn.AsmTail, ir.RawInstruction{Spec: ins, Operands: ops})
			continue
		}

		if fn.DecompileError != nil {
			fn.AsmTail = append(fn.AsmTail, ir.RawInstruction{Spec: ins, Operands: ops})
			continue
		}

		if err := r.execute(fn, stk, ins, ops, contFns); err != nil {
			fn.DecompileError = err
			fn.AsmTail = append(fn.AsmTail, ir.RawInstruction{Spec: ins, Operands: ops})
		}
	}

	fn.Result = resultFromStack(stk)

	if stk.HasGuard() {
		if fn.DecompileError == nil {
			fn.DecompileError = &ErrGuardUnresolved{}
		}
	}

	return fn
}

// resolveContinuations recursively lifts every operand the catalog marks as
// carrying a continuation body.
func (r *run) resolveContinuations(ins *catalog.Instruction, ops *decoder.Operands) (map[string]*ir.Function, error) {
	var out map[string]*ir.Function
	for _, decl := range ins.Bytecode.Operands {
		if !decl.IsContinuation() {
			continue
		}
		v, ok := ops.Get(decl.Name)
		if !ok || v.Sl == nil {
			return nil, &ErrUnsupportedOperand{Reason: fmt.Sprintf("%s: operand %q marked continuation has no slice", ins.Mnemonic, decl.Name)}
		}
		if out == nil {
			out = make(map[string]*ir.Function, 1)
		}
		out[decl.Name] = r.liftFunction(v.Sl)
	}
	return out, nil
}

// resultFromStack reads off the function's returned stack tuple: the
// remaining stack contents, bottom-to-top.
func resultFromStack(stk *stack.Stack) []ir.Ref {
	n := stk.Len()
	refs := make([]ir.Ref, n)
	for i := 0; i < n; i++ {
		v, err := stk.Peek(n - 1 - i)
		if err != nil {
			// Can't happen: i ranges exactly over the stack's current
			// contents.
			continue
		}
		refs[i] = ir.Ref{ID: v.ID, ContinuationMeta: v.ContinuationMeta}
	}
	return refs
}
