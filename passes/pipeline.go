// Package passes implements the fixed IR-to-IR transformation pipeline:
// constant inlining followed by single-use inlining, recursing into every
// continuation and method-dictionary operand reachable from a function.
package passes

import (
	"github.com/dolthub/swiss"

	"github.com/gotvm/decompiler/ir"
)

// Pass rewrites one IR function, returning a (possibly) different function.
// A pass must preserve every well-formedness invariant attached to an IR
// function: every reference still has exactly one defining site, and the
// guard-or-error property is untouched (passes never see the raw symbolic
// stack, only the already-lifted body).
type Pass func(*ir.Function) *ir.Function

// Pipeline is a fixed, ordered composition of passes, applied recursively
// into every continuation and method-dictionary operand before running on
// the function itself.
type Pipeline struct {
	passes []Pass
}

// Default returns the pipeline the lifter's output is meant to be run
// through: inline constants, then inline previous single-use producers to
// fixpoint.
func Default() *Pipeline {
	return &Pipeline{passes: []Pass{InlineConstants, InlinePrevSingleUse}}
}

// Run applies the pipeline to fn, first recursing into every cont / cont_map
// operand reachable from fn's body, then running each pass over fn itself in
// order.
func (p *Pipeline) Run(fn *ir.Function) *ir.Function {
	if fn == nil {
		return nil
	}
	fn = p.recurse(fn)
	for _, pass := range p.passes {
		fn = pass(fn)
	}
	return fn
}

// recurse rebuilds fn's body with every cont / cont_map operand replaced by
// the pipeline's result on the embedded function(s), rebuilding a container
// only when something inside it actually changed, preserving structural
// equality for downstream incremental work.
func (p *Pipeline) recurse(fn *ir.Function) *ir.Function {
	changed := false
	newBody := make([]*ir.Primitive, len(fn.Body))
	for i, prim := range fn.Body {
		newPrim, didChange := p.recurseOnPrimitive(prim)
		newBody[i] = newPrim
		changed = changed || didChange
	}
	if !changed {
		return fn
	}
	cp := *fn
	cp.Body = newBody
	return &cp
}

func (p *Pipeline) recurseOnPrimitive(prim *ir.Primitive) (*ir.Primitive, bool) {
	changed := false
	newOperands := make([]ir.NamedOperand, len(prim.Operands))
	for i, op := range prim.Operands {
		newVal, didChange := p.recurseOnValue(op.Value)
		newOperands[i] = ir.NamedOperand{Name: op.Name, Value: newVal}
		changed = changed || didChange
	}
	if !changed {
		return prim, false
	}
	cp := *prim
	cp.Operands = newOperands
	return &cp, true
}

func (p *Pipeline) recurseOnValue(v ir.Value) (ir.Value, bool) {
	switch v.Kind {
	case ir.KindCont:
		if v.Cont == nil {
			return v, false
		}
		newFn := p.Run(v.Cont)
		if newFn == v.Cont {
			return v, false
		}
		return ir.ContValue(newFn), true

	case ir.KindContMap:
		if v.ContMap == nil {
			return v, false
		}
		changed := false
		newMap := swiss.NewMap[int32, *ir.Function](uint32(v.ContMap.Count()))
		v.ContMap.Iter(func(id int32, m *ir.Function) bool {
			newFn := p.Run(m)
			if newFn != m {
				changed = true
			}
			newMap.Put(id, newFn)
			return false
		})
		if !changed {
			return v, false
		}
		return ir.ContMapValue(newMap), true

	default:
		return v, false
	}
}

