package passes

import "github.com/gotvm/decompiler/ir"

// InlineConstants substitutes every const_int/const_data producer's sole
// output into each of its uses, wrapping the input as an inline expression
// carrying the whole producer statement. A producer whose output does not
// leak into the function's result is then dropped from the body.
func InlineConstants(fn *ir.Function) *ir.Function {
	if fn == nil || len(fn.Body) == 0 {
		return fn
	}

	producers := make(map[string]*ir.Primitive)
	for _, prim := range fn.Body {
		if prim.Spec != nil && prim.Spec.IsConstProducer() && len(prim.Outputs) == 1 {
			producers[prim.Outputs[0].Def.ID] = prim
		}
	}
	if len(producers) == 0 {
		return fn
	}

	rewritten := make([]*ir.Primitive, len(fn.Body))
	for i, prim := range fn.Body {
		rewritten[i] = inlineConstRefs(prim, producers)
	}

	keep := resultSet(fn.Result)
	out := make([]*ir.Primitive, 0, len(rewritten))
	for i, prim := range rewritten {
		orig := fn.Body[i]
		if len(orig.Outputs) == 1 {
			if p, ok := producers[orig.Outputs[0].Def.ID]; ok && p == orig {
				if keep[orig.Outputs[0].Def.ID] {
					out = append(out, prim)
				}
				continue
			}
		}
		out = append(out, prim)
	}

	cp := *fn
	cp.Body = out
	return &cp
}

func inlineConstRefs(prim *ir.Primitive, producers map[string]*ir.Primitive) *ir.Primitive {
	changed := false
	newInputs := make([]ir.NamedInput, len(prim.Inputs))
	for i, in := range prim.Inputs {
		if in.Arg.Ref != nil {
			if p, ok := producers[in.Arg.Ref.ID]; ok && p != prim {
				newInputs[i] = ir.NamedInput{Name: in.Name, Arg: ir.InlineArg(p)}
				changed = true
				continue
			}
		}
		newInputs[i] = in
	}
	if !changed {
		return prim
	}
	cp := *prim
	cp.Inputs = newInputs
	return &cp
}

func resultSet(refs []ir.Ref) map[string]bool {
	m := make(map[string]bool, len(refs))
	for _, r := range refs {
		m[r.ID] = true
	}
	return m
}
