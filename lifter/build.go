package lifter

import (
	"errors"
	"fmt"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/decoder"
	"github.com/gotvm/decompiler/ir"
	"github.com/gotvm/decompiler/stack"
)

// execute attempts to apply one decoded instruction to stk, retrying on
// underflow by synthesizing fresh function parameters at the stack's
// bottom. A shuffle instruction never yields a Primitive; any other
// instruction yields exactly one, appended to fn.Body on success.
func (r *run) execute(fn *ir.Function, stk *stack.Stack, ins *catalog.Instruction, ops *decoder.Operands, contFns map[string]*ir.Function) error {
	for attempt := 0; ; attempt++ {
		snap := stk.Copy()

		var prim *ir.Primitive
		var err error
		if ins.IsStackShuffle() {
			err = snap.ExecShuffle(ins, ops)
		} else {
			prim, err = r.buildPrimitive(snap, ins, ops, contFns)
		}

		if err == nil {
			*stk = *snap
			if prim != nil {
				fn.Body = append(fn.Body, prim)
			}
			return nil
		}

		var uf *stack.ErrUnderflow
		if !errors.As(err, &uf) {
			return err
		}
		if attempt >= maxUnderflowRetries {
			return &ErrRetryLimitExceeded{Mnemonic: ins.Mnemonic, Limit: maxUnderflowRetries}
		}

		// snap is discarded; synthesize the missing parameters directly on
		// the persistent stack and retry the whole instruction from
		// scratch, appending them to the function's parameter list.
		ids := stk.InsertArgsAtBottom(uf.Depth)
		for _, id := range ids {
			fn.Args = append(fn.Args, ir.Def{ID: id})
		}
	}
}

// buildPrimitive lowers one non-shuffle instruction to an ir.Primitive
// against stk, consuming its declared stack inputs, resolving any
// control-flow branches, and allocating its stack outputs.
func (r *run) buildPrimitive(stk *stack.Stack, ins *catalog.Instruction, ops *decoder.Operands, contFns map[string]*ir.Function) (*ir.Primitive, error) {
	names, err := flattenInputs(ins.ValueFlow.Inputs, ops)
	if err != nil {
		return nil, err
	}

	// Pop top-first (reverse declared order); declared order is
	// deepest-to-top, so the last name is popped first.
	vals := make(map[string]ir.Ref, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		v, err := stk.Pop()
		if err != nil {
			return nil, err
		}
		vals[names[i]] = ir.Ref{ID: v.ID, ContinuationMeta: v.ContinuationMeta}
	}

	inputs := make([]ir.NamedInput, 0, len(names))
	for _, n := range names {
		inputs = append(inputs, ir.NamedInput{Name: n, Arg: ir.RefArg(vals[n])})
	}

	operands, err := namedOperands(ins, ops, contFns)
	if err != nil {
		return nil, err
	}

	var outputs []ir.NamedOutput

	if len(ins.ControlFlow.Branches) > 0 {
		extraIn, extraOut, err := r.resolveCallShape(stk, ins, vals, contFns)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, extraIn...)
		outputs = append(outputs, extraOut...)
	} else {
		declared, err := r.buildOutputs(stk, ins, ops, contFns)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, declared...)
	}

	return &ir.Primitive{Spec: ins, Mnemonic: ins.Mnemonic, Inputs: inputs, Operands: operands, Outputs: outputs}, nil
}

// resolveCallShape implements the call/jump control-flow analysis: for an
// instruction that can transfer control to one of several named branches,
// it resolves each branch's continuation, computes the widest argument and
// result count any branch requires, checks that every non-jump branch
// agrees on args-minus-results, pops exactly that many extra positional
// arguments (shared across whichever branch is actually taken), and
// allocates that many fresh results -- zero results if any branch is a
// jump, since a jump never returns to this instruction.
func (r *run) resolveCallShape(stk *stack.Stack, ins *catalog.Instruction, vals map[string]ir.Ref, contFns map[string]*ir.Function) ([]ir.NamedInput, []ir.NamedOutput, error) {
	branches := ins.ControlFlow.Branches
	fns := make([]*ir.Function, len(branches))
	for i, b := range branches {
		fn, err := branchFunction(ins.Mnemonic, b, vals, contFns)
		if err != nil {
			return nil, nil, err
		}
		fns[i] = fn
	}

	maxArgs, maxRets := 0, 0
	anyJump := false
	firstNonJump := -1
	for i, b := range branches {
		if len(fns[i].Args) > maxArgs {
			maxArgs = len(fns[i].Args)
		}
		if b.IsJump() {
			anyJump = true
			continue
		}
		if len(fns[i].Result) > maxRets {
			maxRets = len(fns[i].Result)
		}
		if firstNonJump < 0 {
			firstNonJump = i
		} else {
			d0 := len(fns[firstNonJump].Args) - len(fns[firstNonJump].Result)
			di := len(fns[i].Args) - len(fns[i].Result)
			if d0 != di {
				return nil, nil, &ErrSpecConsistency{Reason: fmt.Sprintf(
					"%s: branch %q and %q disagree on args-minus-results (%d vs %d)",
					ins.Mnemonic, branches[firstNonJump].Name, branches[i].Name, d0, di)}
			}
		}
	}
	if anyJump {
		maxRets = 0
	}
	if ins.ControlFlow.NoBranch && maxArgs != maxRets {
		return nil, nil, &ErrSpecConsistency{Reason: fmt.Sprintf(
			"%s: nobranch requires maxArgs == maxRets (got %d, %d)", ins.Mnemonic, maxArgs, maxRets)}
	}

	extraIn := make([]ir.NamedInput, maxArgs)
	for i := maxArgs - 1; i >= 0; i-- {
		v, err := stk.Pop()
		if err != nil {
			return nil, nil, err
		}
		name := fmt.Sprintf("call_arg%d", i)
		extraIn[i] = ir.NamedInput{Name: name, Arg: ir.RefArg(ir.Ref{ID: v.ID, ContinuationMeta: v.ContinuationMeta})}
	}

	extraOut := make([]ir.NamedOutput, maxRets)
	for i := 0; i < maxRets; i++ {
		v := stk.Push()
		extraOut[i] = ir.NamedOutput{Name: fmt.Sprintf("out_%d", i), Def: ir.Def{ID: v.ID}}
	}

	return extraIn, extraOut, nil
}

// branchFunction resolves one control-flow branch to the ir.Function it
// transfers to, sourced either from an already-lifted bytecode operand or
// from a stack input's continuation metadata.
func branchFunction(mnemonic string, b catalog.Branch, vals map[string]ir.Ref, contFns map[string]*ir.Function) (*ir.Function, error) {
	switch {
	case b.FromOperand != "":
		fn, ok := contFns[b.FromOperand]
		if !ok {
			return nil, &ErrSpecConsistency{Reason: fmt.Sprintf(
				"%s: branch %q: operand-sourced continuation %q was not resolved", mnemonic, b.Name, b.FromOperand)}
		}
		return fn, nil
	case b.FromStackInput != "":
		ref, ok := vals[b.FromStackInput]
		if !ok || ref.ContinuationMeta == nil {
			return nil, &ErrUnsupportedOperand{Reason: fmt.Sprintf(
				"%s: branch %q: stack input %q carries no continuation", mnemonic, b.Name, b.FromStackInput)}
		}
		return ref.ContinuationMeta, nil
	default:
		return nil, &ErrSpecConsistency{Reason: fmt.Sprintf(
			"%s: branch %q: neither from_operand nor from_stack_input set", mnemonic, b.Name)}
	}
}

// flattenInputs expands an instruction's declared stack-input entries
// (including EntryArray runs) into a flat list of names, in declared
// (deepest-to-top) order.
func flattenInputs(entries []catalog.StackEntry, ops *decoder.Operands) ([]string, error) {
	var names []string
	for _, e := range entries {
		switch e.Kind {
		case catalog.EntrySimple:
			names = append(names, e.Name)
		case catalog.EntryArray:
			n, err := arrayLength(e, ops)
			if err != nil {
				return nil, err
			}
			base := arrayBaseName(e)
			for i := 0; i < n; i++ {
				names = append(names, fmt.Sprintf("%s%d", base, i))
			}
		default:
			return nil, &ErrSpecConsistency{Reason: fmt.Sprintf("unsupported stack-input entry kind %q", e.Kind)}
		}
	}
	return names, nil
}

func arrayBaseName(e catalog.StackEntry) string {
	if e.Entry != nil && e.Entry.Name != "" {
		return e.Entry.Name
	}
	return e.Name
}

// arrayLength resolves an EntryArray's LengthVar against the instruction's
// decoded bytecode operands. A length var naming anything other than a
// decoded operand is necessarily stack-sourced, which the lifter does not
// support: the array's size would not be known until symbolic execution
// has already committed to a fixed input layout.
func arrayLength(e catalog.StackEntry, ops *decoder.Operands) (int, error) {
	v, ok := ops.Get(e.LengthVar)
	if !ok {
		return 0, &ErrUnsupportedOperand{Reason: fmt.Sprintf(
			"array entry %q: length var %q is not a decoded operand (dynamic/stack-sourced length)", e.Name, e.LengthVar)}
	}
	return int(v.Int64()), nil
}

// buildOutputs allocates an instruction's declared stack outputs, in
// declared order, and drives the conditional-alignment guard for any
// EntryConditional entry.
func (r *run) buildOutputs(stk *stack.Stack, ins *catalog.Instruction, ops *decoder.Operands, contFns map[string]*ir.Function) ([]ir.NamedOutput, error) {
	singleCont := soleContinuation(ins, contFns)

	var outs []ir.NamedOutput
	constN := 0
	for _, e := range ins.ValueFlow.Outputs {
		switch e.Kind {
		case catalog.EntrySimple:
			var v stack.AbstractValue
			if singleCont != nil {
				v = stk.PushContinuation(singleCont)
			} else {
				v = stk.Push()
			}
			outs = append(outs, ir.NamedOutput{Name: e.Name, Def: ir.Def{ID: v.ID, Types: e.Types}})

		case catalog.EntryConst:
			name := e.Name
			if name == "" {
				name = fmt.Sprintf("const%d", constN)
			}
			constN++
			v := stk.Push()
			outs = append(outs, ir.NamedOutput{Name: name, Def: ir.Def{ID: v.ID, Types: e.Types}})

		case catalog.EntryArray:
			if e.Entry != nil && e.Entry.Kind == catalog.EntryConditional {
				return nil, &ErrUnsupportedOperand{Reason: fmt.Sprintf(
					"%s: output entry %q: conditional entries nested inside an array are unsupported", ins.Mnemonic, e.Name)}
			}
			n, err := arrayLength(e, ops)
			if err != nil {
				return nil, err
			}
			base := arrayBaseName(e)
			for i := 0; i < n; i++ {
				v := stk.Push()
				outs = append(outs, ir.NamedOutput{Name: fmt.Sprintf("%s%d", base, i), Def: ir.Def{ID: v.ID}})
			}

		case catalog.EntryConditional:
			arms := e.Arms()
			stk.EnsureGuard(0, len(arms))
			for i, arm := range arms {
				ids := make([]string, len(arm))
				for j := range arm {
					ids[j] = r.ids.next("var")
				}
				stk.AppendToGuardArm(i, ids)
			}
			if merged, ok := stk.TryFinalizeGuard(); ok {
				for i, id := range merged {
					outs = append(outs, ir.NamedOutput{Name: fmt.Sprintf("__cond%d", i), Def: ir.Def{ID: id}})
				}
			}

		default:
			return nil, &ErrSpecConsistency{Reason: fmt.Sprintf("%s: unsupported stack-output entry kind %q", ins.Mnemonic, e.Kind)}
		}
	}
	return outs, nil
}

// soleContinuation returns the single lifted continuation this instruction
// pushes as a value, if it is a "push_cont"-categorized instruction with
// exactly one continuation-marked operand. Any other shape pushes a plain
// value with no attached continuation metadata.
func soleContinuation(ins *catalog.Instruction, contFns map[string]*ir.Function) *ir.Function {
	if ins.Doc.Category != "push_cont" || len(contFns) != 1 {
		return nil
	}
	for _, fn := range contFns {
		return fn
	}
	return nil
}

// namedOperands renders an instruction's decoded bytecode operands as IR
// values, substituting the recursively lifted ir.Function for any operand
// the catalog marks as a continuation.
func namedOperands(ins *catalog.Instruction, ops *decoder.Operands, contFns map[string]*ir.Function) ([]ir.NamedOperand, error) {
	out := make([]ir.NamedOperand, 0, len(ins.Bytecode.Operands))
	for _, decl := range ins.Bytecode.Operands {
		if decl.IsContinuation() {
			fn, ok := contFns[decl.Name]
			if !ok {
				return nil, &ErrSpecConsistency{Reason: fmt.Sprintf(
					"%s: operand %q declared continuation but was not resolved", ins.Mnemonic, decl.Name)}
			}
			out = append(out, ir.NamedOperand{Name: decl.Name, Value: ir.ContValue(fn)})
			continue
		}
		v, ok := ops.Get(decl.Name)
		if !ok {
			return nil, &ErrSpecConsistency{Reason: fmt.Sprintf("%s: decoded operand %q missing", ins.Mnemonic, decl.Name)}
		}
		out = append(out, ir.NamedOperand{Name: decl.Name, Value: operandToIRValue(decl, v)})
	}
	return out, nil
}

// operandToIRValue converts one decoder-level operand reading into the IR's
// closed Value variant.
func operandToIRValue(decl catalog.Operand, v decoder.Value) ir.Value {
	switch decl.Kind {
	case catalog.OperandInt, catalog.OperandUint, catalog.OperandLongInt:
		if v.Num.IsInt64() {
			return ir.IntValue(v.Num.Int64())
		}
		return ir.BigIntValue(v.Num)
	case catalog.OperandSubslice:
		return ir.SliceValue(v.Sl)
	case catalog.OperandRef:
		return ir.CellValue(v.Sl.Cell())
	default:
		return ir.OtherValue(nil)
	}
}
