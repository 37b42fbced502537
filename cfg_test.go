package main

import "testing"

// asmLoopProgram builds the S2 conditional-loop scenario's bytes directly
// (spec §8): addi a0,x0,0; addi a1,x0,10; loop: addi a0,a0,1; blt a0,a1,loop;
// ebreak.
func asmLoopProgram() []byte {
	var code []byte
	code = append(code, asmADDI(10, 0, 0)...)  // 0x1000
	code = append(code, asmADDI(11, 0, 10)...) // 0x1004
	code = append(code, asmADDI(10, 10, 1)...) // 0x1008 (loop leader)
	code = append(code, asmBLT(10, 11, -4)...) // 0x100c
	code = append(code, asmEBREAK()...)        // 0x1010
	return code
}

func newTestImage(vaddr uint64, code []byte) *Image {
	return &Image{
		Entry: vaddr,
		Segments: []Segment{
			{VAddr: vaddr, Data: code},
		},
	}
}

func TestBuildCFGLoop(t *testing.T) {
	img := newTestImage(0x1000, asmLoopProgram())
	g := BuildCFG(img)

	if len(g.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(g.Blocks))
	}

	b0, b1, b2 := g.ByAddr[0x1000], g.ByAddr[0x1008], g.ByAddr[0x1010]
	if b0 == nil || b1 == nil || b2 == nil {
		t.Fatalf("missing expected block leader: b0=%v b1=%v b2=%v", b0, b1, b2)
	}

	if b0.Term != TermJmp || len(b0.Successors) != 1 || b0.Successors[0] != 0x1008 {
		t.Errorf("b0: Term=%v Successors=%v, want TermJmp -> [0x1008]", b0.Term, b0.Successors)
	}
	if len(b0.Ops) != 2 {
		t.Errorf("b0: %d ops, want 2", len(b0.Ops))
	}

	if b1.Term != TermCond {
		t.Errorf("b1: Term=%v, want TermCond", b1.Term)
	}
	wantSucc := []uint64{0x1008, 0x1010}
	if len(b1.Successors) != 2 || b1.Successors[0] != wantSucc[0] || b1.Successors[1] != wantSucc[1] {
		t.Errorf("b1: Successors=%v, want %v", b1.Successors, wantSucc)
	}

	if b2.Term != TermHalt || len(b2.Successors) != 0 {
		t.Errorf("b2: Term=%v Successors=%v, want TermHalt with no successors", b2.Term, b2.Successors)
	}
	if b2.Illegal() {
		t.Errorf("b2 (EBREAK) incorrectly flagged Illegal")
	}

	// The loop header has two static predecessors (the fallthrough from b0
	// and the taken edge from b1), so --opt 2 must not fuse it away.
	if g.PredCount[0x1008] != 2 {
		t.Errorf("PredCount[0x1008] = %d, want 2", g.PredCount[0x1008])
	}
	if g.fusable(0x1008) {
		t.Errorf("loop header at 0x1008 reported fusable, want not fusable (2 predecessors)")
	}
	if !g.SegStart[0x1000] {
		t.Errorf("SegStart[0x1000] = false, want true")
	}
}

func TestBuildCFGStraightLineFusable(t *testing.T) {
	// Two blocks joined by a single unconditional jump with no other
	// static predecessor: b1 should be fusable into b0 at --opt 2.
	var code []byte
	code = append(code, asmJAL(0, 8)...)      // 0x2000: jal x0, +8 -> 0x2008
	code = append(code, asmADDI(0, 0, 0)...)  // 0x2004: dead filler (unreachable by direct decode)
	code = append(code, asmEBREAK()...)       // 0x2008
	img := newTestImage(0x2000, code)
	g := BuildCFG(img)

	b0 := g.ByAddr[0x2000]
	if b0 == nil {
		t.Fatalf("missing block at 0x2000")
	}
	if b0.Term != TermJmp || b0.Successors[0] != 0x2008 {
		t.Fatalf("b0: Term=%v Successors=%v, want TermJmp -> [0x2008]", b0.Term, b0.Successors)
	}
	if g.PredCount[0x2008] != 1 {
		t.Errorf("PredCount[0x2008] = %d, want 1", g.PredCount[0x2008])
	}
	if !g.fusable(0x2008) {
		t.Errorf("0x2008 should be fusable: single predecessor, not a segment start or symbol")
	}

	chain := fuseChain(g, b0)
	if len(chain) != 2 || chain[0].Start != 0x2000 || chain[1].Start != 0x2008 {
		t.Errorf("fuseChain = %v, want [0x2000, 0x2008]", chain)
	}
}

func TestBuildCFGSymbolBlocksFusion(t *testing.T) {
	// A block that is itself a named function entry must never be fused
	// away, even with exactly one static predecessor: an indirect call may
	// target it independently of the direct edge (Graph.fusable).
	var code []byte
	code = append(code, asmJAL(0, 8)...) // 0x3000: jal x0, +8 -> 0x3008
	code = append(code, asmADDI(0, 0, 0)...)
	code = append(code, asmEBREAK()...) // 0x3008
	img := newTestImage(0x3000, code)
	img.Symbols = []Symbol{{Name: "target", Value: 0x3008}}
	g := BuildCFG(img)

	if !g.SymAddr[0x3008] {
		t.Fatalf("SymAddr[0x3008] = false, want true")
	}
	if g.fusable(0x3008) {
		t.Errorf("0x3008 is a named symbol and must not report fusable")
	}
}
