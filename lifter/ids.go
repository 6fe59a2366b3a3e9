package lifter

import "fmt"

// idAllocator mints fresh, globally unique value identifiers for a single
// top-level Lift call. It is never shared across decompilation runs: every
// recursively lifted
// continuation shares the *same* allocator instance as its enclosing
// function, so identifiers stay unique across an entire decompiled program,
// but two independent Lift calls never see each other's counters.
type idAllocator struct {
	vars int
	args int
}

func newIDAllocator() *idAllocator { return &idAllocator{} }

// next mints a fresh identifier. prefix is "var" for an ordinary
// intermediate or "arg" for a synthesized parameter; any other prefix is
// treated as "var".
func (a *idAllocator) next(prefix string) string {
	if prefix == "arg" {
		id := fmt.Sprintf("arg%d", a.args)
		a.args++
		return id
	}
	id := fmt.Sprintf("var%d", a.vars)
	a.vars++
	return id
}
