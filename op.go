package main

// Op is a decoded operation record (spec §3). Decode always sign-extends
// Imm to 64 bits where the RV spec defines the immediate as signed.
type Op struct {
	Addr  uint64
	Len   int // 2 (compressed, pre-expansion) or 4
	Class OpClass
	Mnem  Mnemonic

	Rd, Rs1, Rs2 uint8
	Rs3          uint8 // third source register, fused multiply-add only
	HasRs3       bool

	Imm int64

	// RM is the rounding-mode field for F/D ops that carry one; the
	// Translator does not attempt to honor non-default modes (§4.4/§9),
	// but the field is preserved for fidelity and future use.
	RM uint8

	// Aq, Rl are the acquire/release bits of an AMO/LR/SC encoding. In the
	// single-agent model (§4.4) they do not change translated semantics.
	Aq, Rl bool

	// RawCompressed records whether this record originated from a 2-byte
	// compressed instruction (for diagnostics only; the expanded Mnem is
	// what the Translator consumes either way).
	RawCompressed bool
}

// IsTerminator reports whether this operation ends a basic block (spec §4.3).
func (o Op) IsTerminator() bool {
	switch o.Mnem {
	case OpJAL, OpJALR,
		OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU,
		OpECALL, OpEBREAK,
		OpIllegal:
		return true
	default:
		return false
	}
}
