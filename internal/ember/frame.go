package ember

// CallFrame is a per-call activation record (spec.md §4.3): the return
// instruction pointer, the base pointer into the value stack (base[0]
// holds the callee closure itself, base[1:] are arguments/locals per
// invariant 6), and the executing closure.
type CallFrame struct {
	Closure *Closure
	IP      int
	Base    int
}
