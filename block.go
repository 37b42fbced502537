package main

// TermKind classifies how a basic block ends (spec §3/§4.3).
type TermKind int

const (
	TermCond TermKind = iota
	TermJmp
	TermCall
	TermIJmp
	TermSyscall
	TermHalt
)

// Block is a basic block: a maximal straight-line run of operations ending
// in exactly one control transfer (spec §3).
type Block struct {
	Start, End uint64 // End is exclusive
	Ops        []Op
	Term       TermKind
	// Successors holds the statically known successor addresses. For
	// TermCond it is [taken, fallthrough]; for TermJmp/TermCall/TermSyscall
	// it is a single address; for TermIJmp and TermHalt it is empty.
	Successors []uint64
	Index      int // assigned in ascending-start-address order (spec §4.3)
}

// Illegal reports whether the block's terminator was a decode failure
// (spec §4.2: "the surrounding block is marked illegal").
func (b *Block) Illegal() bool {
	return b.Term == TermHalt && len(b.Ops) > 0 && b.Ops[len(b.Ops)-1].Mnem == OpIllegal
}
