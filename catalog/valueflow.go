package catalog

// ValueFlow declares an instruction's ordered stack inputs and outputs.
// Order matters: it is reproduced verbatim in the IR primitive's input and
// output lists (deepest-to-top for inputs, spec order for outputs).
type ValueFlow struct {
	Inputs  []StackEntry `json:"inputs,omitempty"`
	Outputs []StackEntry `json:"outputs,omitempty"`
}

// StackEntryKind enumerates the shapes a stack-input or stack-output entry
// can take.
type StackEntryKind string

const (
	// EntrySimple is a single named value of one of the listed types.
	EntrySimple StackEntryKind = "simple"
	// EntryConst is an output-only entry: a constant value of the given
	// type, not read from the stack, materialized fresh.
	EntryConst StackEntryKind = "const"
	// EntryArray is a run of LengthVar copies of Entry, with LengthVar naming
	// an earlier integer operand.
	EntryArray StackEntryKind = "array"
	// EntryConditional is an output-only entry: a set of mutually exclusive
	// arms, each a list of entries, that may leave differently-shaped
	// residues on the stack depending on the runtime outcome.
	EntryConditional StackEntryKind = "conditional"
)

// StackEntry is one declared stack-input or stack-output entry. Only the
// fields relevant to Kind are meaningful.
type StackEntry struct {
	Kind StackEntryKind `json:"kind"`

	// EntrySimple / EntryConst
	Name  string   `json:"name,omitempty"`
	Types []string `json:"types,omitempty"`

	// EntryArray
	LengthVar string      `json:"length_var,omitempty"`
	Entry     *StackEntry `json:"entry,omitempty"`

	// EntryConditional
	Match [][]StackEntry `json:"match,omitempty"`
	Else  []StackEntry   `json:"else,omitempty"`
}

// Arms returns every mutually-exclusive arm of a conditional entry (Match
// plus the optional Else), in declared order. Used by the lifter to size
// the alignment guard before appending each arm's residue.
func (e StackEntry) Arms() [][]StackEntry {
	if e.Kind != EntryConditional {
		return nil
	}
	arms := make([][]StackEntry, 0, len(e.Match)+1)
	arms = append(arms, e.Match...)
	if e.Else != nil {
		arms = append(arms, e.Else)
	}
	return arms
}
