package catalog

// StackOpKind enumerates the four shuffle primitives every stack_basic /
// stack_complex instruction decomposes into.
type StackOpKind string

const (
	OpXchg    StackOpKind = "xchg"
	OpBlkPush StackOpKind = "blkpush"
	OpBlkPop  StackOpKind = "blkpop"
	OpReverse StackOpKind = "reverse"
)

// StackOp is one step of a stack-shuffle decomposition. Its Args are
// resolved, in order, against the instruction's decoded operand values (by
// name) or a literal constant; the meaning of each argument position
// depends on Kind:
//
//	xchg(i, j)       - 2 args
//	blkpush(n, j)     - 2 args
//	blkpop(n, j)      - 2 args
//	reverse(n, j)     - 2 args
type StackOp struct {
	Kind StackOpKind `json:"kind"`
	Args []StackOpArg `json:"args"`
}

// StackOpArg is either a reference to a decoded operand's integer value (by
// name) or a literal constant baked into the catalog's decomposition.
type StackOpArg struct {
	Operand string `json:"operand,omitempty"`
	Literal int    `json:"literal,omitempty"`
	IsLit   bool   `json:"is_literal,omitempty"`
}

// Lit returns a literal StackOpArg.
func Lit(n int) StackOpArg { return StackOpArg{Literal: n, IsLit: true} }

// Ref returns a StackOpArg that resolves to the value of the named operand.
func Ref(operand string) StackOpArg { return StackOpArg{Operand: operand} }
