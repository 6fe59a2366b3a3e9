package ir

import "golang.org/x/exp/slices"

// Program is the top-level decompilation result: either a single function
// (the common case) or a numbered method map produced by the entry
// heuristic when it recognizes a dictionary-dispatch prologue.
type Program struct {
	Entry   *Function          // set iff Methods == nil
	Methods map[int32]*Function // set iff Entry == nil
}

// SingleProgram wraps a lone entry-point function.
func SingleProgram(fn *Function) *Program { return &Program{Entry: fn} }

// MultiProgram wraps a method-id -> function dispatch table.
func MultiProgram(methods map[int32]*Function) *Program { return &Program{Methods: methods} }

// IsMulti reports whether this program is a method-dictionary dispatch.
func (p *Program) IsMulti() bool { return p.Methods != nil }

// SortedMethodIDs returns the program's method ids in ascending order, so
// callers (notably the renderer) can iterate a Multi program
// deterministically.
func (p *Program) SortedMethodIDs() []int32 {
	ids := make([]int32, 0, len(p.Methods))
	for id := range p.Methods {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
