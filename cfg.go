package main

import (
	"sort"
)

// Graph is the block graph of an executable segment set (spec §3/§4.3).
type Graph struct {
	Blocks []*Block
	ByAddr map[uint64]*Block

	// PredCount, SegStart and SymAddr support the straight-line block
	// fusion pass at --opt 2 (SPEC_FULL.md §5): an address is safe to fold
	// into its sole predecessor only if no other statically-known edge
	// also targets it, and it isn't a segment base or a named function
	// entry that an indirect jump might legitimately target on its own.
	PredCount map[uint64]int
	SegStart  map[uint64]bool
	SymAddr   map[uint64]bool
}

// fusable reports whether the block starting at addr may be folded into
// a sole direct-jump predecessor (spec §9's straight-line fusion, named in
// SPEC_FULL.md's --opt 2).
func (g *Graph) fusable(addr uint64) bool {
	return g.PredCount[addr] == 1 && !g.SegStart[addr] && !g.SymAddr[addr]
}

// BuildCFG runs the two-pass leader/block algorithm described in spec §4.3
// over every executable segment of img, in ascending segment-base order.
func BuildCFG(img *Image) *Graph {
	g := &Graph{ByAddr: map[uint64]*Block{}}

	for _, seg := range img.SegmentsForCode() {
		leaders := discoverLeaders(img, seg)
		sortedLeaders := make([]uint64, 0, len(leaders))
		for a := range leaders {
			sortedLeaders = append(sortedLeaders, a)
		}
		sort.Slice(sortedLeaders, func(i, j int) bool { return sortedLeaders[i] < sortedLeaders[j] })

		for _, start := range sortedLeaders {
			blk := buildBlock(seg, start, leaders)
			g.Blocks = append(g.Blocks, blk)
			g.ByAddr[blk.Start] = blk
		}
	}

	sort.Slice(g.Blocks, func(i, j int) bool { return g.Blocks[i].Start < g.Blocks[j].Start })
	for i, b := range g.Blocks {
		b.Index = i
	}

	g.PredCount = map[uint64]int{}
	for _, b := range g.Blocks {
		for _, s := range b.Successors {
			g.PredCount[s]++
		}
	}
	g.SegStart = map[uint64]bool{}
	for _, seg := range img.SegmentsForCode() {
		g.SegStart[seg.VAddr] = true
	}
	g.SymAddr = map[uint64]bool{}
	for _, sym := range img.Symbols {
		g.SymAddr[sym.Value] = true
	}

	return g
}

// discoverLeaders performs pass 1: a linear decode of the segment collecting
// every block-leader address (spec §4.3 step 1).
func discoverLeaders(img *Image, seg Segment) map[uint64]bool {
	leaders := map[uint64]bool{seg.VAddr: true}

	for _, sym := range img.Symbols {
		if sym.Value >= seg.VAddr && sym.Value < seg.End() {
			leaders[sym.Value] = true
		}
	}

	addr := seg.VAddr
	for addr < seg.End() {
		off := addr - seg.VAddr
		op, err := Decode(seg.Data[off:], addr)
		if err != nil {
			addr++ // resync byte-by-byte past an illegal encoding
			continue
		}
		next := addr + uint64(op.Len)
		switch {
		case isCondBranch(op.Mnem):
			leaders[branchTarget(addr, op)] = true
			leaders[next] = true
		case op.Mnem == OpJAL:
			leaders[branchTarget(addr, op)] = true
			if op.Rd != 0 {
				leaders[next] = true // call return site
			}
		case op.Mnem == OpJALR:
			// target unknown; return-site-if-any is still addressable,
			// but only via dynamic dispatch, not a discoverable leader here.
		case op.Mnem == OpECALL:
			leaders[next] = true
		}
		addr = next
	}
	return leaders
}

func isCondBranch(m Mnemonic) bool {
	switch m {
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return true
	}
	return false
}

func branchTarget(addr uint64, op Op) uint64 {
	return uint64(int64(addr) + op.Imm)
}

// buildBlock performs pass 2 for a single leader: re-decode from start until
// a terminator or the next leader is reached (spec §4.3 step 2, §7's
// "leader inside another instruction's bytes" anomaly, §9's re-decode rule).
func buildBlock(seg Segment, start uint64, leaders map[uint64]bool) *Block {
	blk := &Block{Start: start}
	addr := start

	for addr < seg.End() {
		if addr != start && leaders[addr] {
			// Boundary induced by another leader, not a real terminator.
			blk.Term = TermJmp
			blk.Successors = []uint64{addr}
			blk.End = addr
			return blk
		}

		off := addr - seg.VAddr
		op, err := Decode(seg.Data[off:], addr)
		if err != nil {
			blk.Ops = append(blk.Ops, Op{Addr: addr, Len: 1, Mnem: OpIllegal})
			blk.Term = TermHalt
			blk.End = addr + 1
			return blk
		}
		blk.Ops = append(blk.Ops, op)
		next := addr + uint64(op.Len)

		switch {
		case isCondBranch(op.Mnem):
			blk.Term = TermCond
			blk.Successors = []uint64{branchTarget(addr, op), next}
			blk.End = next
			return blk
		case op.Mnem == OpJAL:
			if op.Rd == 0 {
				blk.Term = TermJmp
				blk.Successors = []uint64{branchTarget(addr, op)}
			} else {
				blk.Term = TermCall
				blk.Successors = []uint64{branchTarget(addr, op)}
			}
			blk.End = next
			return blk
		case op.Mnem == OpJALR:
			blk.Term = TermIJmp
			blk.End = next
			return blk
		case op.Mnem == OpECALL:
			blk.Term = TermSyscall
			blk.Successors = []uint64{next}
			blk.End = next
			return blk
		case op.Mnem == OpEBREAK:
			blk.Term = TermHalt
			blk.End = next
			return blk
		}
		addr = next
	}

	// Ran off the end of the segment with no terminator: end the block with
	// a halt rather than silently falling off (spec §3 invariant 5). It is
	// not reported by Illegal(), since no op in it failed to decode.
	blk.Term = TermHalt
	blk.End = addr
	return blk
}
