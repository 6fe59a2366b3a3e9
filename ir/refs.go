package ir

// Ref names an existing IR value: a formal parameter or the output of an
// earlier body primitive. ContinuationMeta is populated when the
// referenced value was produced by a "push continuation" opcode, so later
// control-flow analysis can resolve a branch target sourced from the stack.
type Ref struct {
	ID               string
	Types            []string
	ContinuationMeta *Function
}

// Def introduces a new IR value identifier: a function parameter or a
// primitive output.
type Def struct {
	ID    string
	Types []string
}

// InputArg is one IR primitive input argument: either a reference to an
// existing value, or an inline expression embedding the whole producer
// primitive (the shape an inlining pass rewrites a reference into).
type InputArg struct {
	Ref    *Ref
	Inline *Primitive
}

// RefArg wraps a Ref as an InputArg.
func RefArg(r Ref) InputArg { return InputArg{Ref: &r} }

// InlineArg wraps a whole producer Primitive as an InputArg.
func InlineArg(p *Primitive) InputArg { return InputArg{Inline: p} }

// IsInline reports whether this argument is an inlined producer rather than
// a plain reference.
func (a InputArg) IsInline() bool { return a.Inline != nil }
