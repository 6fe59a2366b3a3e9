package passes

import "github.com/gotvm/decompiler/ir"

// InlinePrevSingleUse iterates the body to a fixpoint: whenever a statement
// has exactly one output, that output is not part of the function's
// result, is used exactly once in the whole body, and that sole use is an
// input of the immediately following statement, the producer is inlined
// into that input and removed from the body. Scanning restarts from the
// top after every rewrite, since indices shift.
func InlinePrevSingleUse(fn *ir.Function) *ir.Function {
	if fn == nil || len(fn.Body) < 2 {
		return fn
	}

	body := append([]*ir.Primitive(nil), fn.Body...)
	keep := resultSet(fn.Result)

	for {
		rewrote := false
		for i := 0; i+1 < len(body); i++ {
			prev, curr := body[i], body[i+1]
			if len(prev.Outputs) != 1 {
				continue
			}
			id := prev.Outputs[0].Def.ID
			if keep[id] {
				continue
			}
			if countUses(body, id) != 1 {
				continue
			}
			idx, ok := soleInputIndex(curr, id)
			if !ok {
				continue
			}

			newInputs := append([]ir.NamedInput(nil), curr.Inputs...)
			newInputs[idx] = ir.NamedInput{Name: curr.Inputs[idx].Name, Arg: ir.InlineArg(prev)}
			newCurr := *curr
			newCurr.Inputs = newInputs

			next := make([]*ir.Primitive, 0, len(body)-1)
			next = append(next, body[:i]...)
			next = append(next, &newCurr)
			next = append(next, body[i+2:]...)
			body = next

			rewrote = true
			break
		}
		if !rewrote {
			break
		}
	}

	if sameBody(body, fn.Body) {
		return fn
	}
	cp := *fn
	cp.Body = body
	return &cp
}

func countUses(body []*ir.Primitive, id string) int {
	n := 0
	for _, p := range body {
		for _, in := range p.Inputs {
			n += countArgUses(in.Arg, id)
		}
	}
	return n
}

func countArgUses(a ir.InputArg, id string) int {
	switch {
	case a.Ref != nil:
		if a.Ref.ID == id {
			return 1
		}
		return 0
	case a.Inline != nil:
		n := 0
		for _, in := range a.Inline.Inputs {
			n += countArgUses(in.Arg, id)
		}
		return n
	default:
		return 0
	}
}

// soleInputIndex finds id among curr's top-level (not-yet-inlined) inputs.
func soleInputIndex(curr *ir.Primitive, id string) (int, bool) {
	for i, in := range curr.Inputs {
		if in.Arg.Ref != nil && in.Arg.Ref.ID == id {
			return i, true
		}
	}
	return 0, false
}

func sameBody(a, b []*ir.Primitive) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
