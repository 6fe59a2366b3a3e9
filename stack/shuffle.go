package stack

import (
	"fmt"

	"github.com/gotvm/decompiler/catalog"
	"github.com/gotvm/decompiler/decoder"
)

func (s *Stack) index(depthFromTop int) (int, error) {
	idx := len(s.values) - 1 - depthFromTop
	if idx < 0 {
		return 0, &ErrUnderflow{Depth: -idx}
	}
	return idx, nil
}

// xchg swaps the entries at depths i and j (0-based, counted from the top).
func (s *Stack) xchg(i, j int) error {
	ii, err := s.index(i)
	if err != nil {
		return err
	}
	jj, err := s.index(j)
	if err != nil {
		return err
	}
	s.values[ii], s.values[jj] = s.values[jj], s.values[ii]
	return nil
}

// blkpush duplicates the entry at depth j onto the top of the stack, n
// times. The duplicated slots reference the same abstract value id as the
// source: no new IR value is defined by a pure stack duplicate.
func (s *Stack) blkpush(n, j int) error {
	idx, err := s.index(j)
	if err != nil {
		return err
	}
	val := s.values[idx]
	for k := 0; k < n; k++ {
		s.values = append(s.values, val)
		if s.guard != nil {
			s.guard.depth++
		}
	}
	return nil
}

// blkpop pops the top n entries, swapping top with depth j immediately
// before each pop -- the "drop from a deeper slot" primitive.
func (s *Stack) blkpop(n, j int) error {
	for k := 0; k < n; k++ {
		if err := s.xchg(0, j); err != nil {
			return err
		}
		if _, err := s.Pop(); err != nil {
			return err
		}
	}
	return nil
}

// reverse reverses the contiguous run of n entries at depths
// [j, j+n-1] (from the top; j is the shallow end of the range).
func (s *Stack) reverse(n, j int) error {
	if n <= 1 {
		if n < 0 {
			return fmt.Errorf("stack: reverse: negative length %d", n)
		}
		return nil
	}
	hi, err := s.index(j)
	if err != nil {
		return err
	}
	lo, err := s.index(j + n - 1)
	if err != nil {
		return err
	}
	for lo < hi {
		s.values[lo], s.values[hi] = s.values[hi], s.values[lo]
		lo++
		hi--
	}
	return nil
}

// ExecShuffle runs ins's catalog-declared stack-op decomposition against
// the decoded operand values. No IR primitive is ever emitted for a
// shuffle; it only rearranges the symbolic stack.
func (s *Stack) ExecShuffle(ins *catalog.Instruction, ops *decoder.Operands) error {
	for _, op := range ins.StackOps {
		args := make([]int, len(op.Args))
		for i, a := range op.Args {
			if a.IsLit {
				args[i] = a.Literal
				continue
			}
			v, ok := ops.Get(a.Operand)
			if !ok {
				return fmt.Errorf("stack: shuffle op %s: unknown operand %q", op.Kind, a.Operand)
			}
			args[i] = int(v.Int64())
		}
		if len(args) != 2 {
			return fmt.Errorf("stack: shuffle op %s: expected 2 args, got %d", op.Kind, len(args))
		}

		var err error
		switch op.Kind {
		case catalog.OpXchg:
			err = s.xchg(args[0], args[1])
		case catalog.OpBlkPush:
			err = s.blkpush(args[0], args[1])
		case catalog.OpBlkPop:
			err = s.blkpop(args[0], args[1])
		case catalog.OpReverse:
			err = s.reverse(args[0], args[1])
		default:
			return fmt.Errorf("stack: unknown shuffle op kind %q", op.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
