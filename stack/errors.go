package stack

import "fmt"

// ErrUnderflow is raised whenever an index resolves to a negative stack
// position: a pop, or a shuffle primitive addressing a depth deeper than
// the stack currently holds. Depth is the number of missing entries below
// the current bottom, and is retryable by the lifter.
type ErrUnderflow struct {
	Depth int
}

func (e *ErrUnderflow) Error() string {
	return fmt.Sprintf("stack: underflow, %d entries missing below bottom", e.Depth)
}

// ErrGuardUnresolved is raised when a pop is requested that would reach
// into the region a pending conditional-alignment guard still blocks.
// Non-retryable.
type ErrGuardUnresolved struct{}

func (*ErrGuardUnresolved) Error() string {
	return "stack: access blocked by unresolved conditional-alignment guard"
}
