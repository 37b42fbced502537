package main

// Mnemonic is the closed enumeration of decoded operation kinds (spec §3).
// RVC forms never appear here: the Decoder expands them into their base
// RV64I/M/A/F/D equivalents before the Translator ever sees them.
type Mnemonic int

const (
	OpIllegal Mnemonic = iota

	// RV64I: upper immediate, control transfer.
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// RV64I: loads and stores.
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD

	// RV64I: integer register-immediate.
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// RV64I: integer register-register.
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	// RV64I: word-form (*W) variants.
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	// RV64I: fences and system.
	OpFENCE
	OpFENCEI
	OpPAUSE
	OpECALL
	OpEBREAK

	// RV64M.
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// RV64A: load-reserved / store-conditional.
	OpLRW
	OpSCW
	OpLRD
	OpSCD

	// RV64A: atomic memory operations.
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW
	OpAMOSWAPD
	OpAMOADDD
	OpAMOXORD
	OpAMOANDD
	OpAMOORD
	OpAMOMIND
	OpAMOMAXD
	OpAMOMINUD
	OpAMOMAXUD

	// RV64F/D: loads/stores.
	OpFLW
	OpFSW
	OpFLD
	OpFSD

	// RV64F/D: arithmetic.
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFMINS
	OpFMAXS
	OpFADDD
	OpFSUBD
	OpFMULD
	OpFDIVD
	OpFSQRTD
	OpFMIND
	OpFMAXD

	// RV64F/D: fused multiply-add family.
	OpFMADDS
	OpFMSUBS
	OpFNMSUBS
	OpFNMADDS
	OpFMADDD
	OpFMSUBD
	OpFNMSUBD
	OpFNMADDD

	// RV64F/D: sign-injection.
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFSGNJD
	OpFSGNJND
	OpFSGNJXD

	// RV64F/D: conversions and moves.
	OpFCVTWS
	OpFCVTWUS
	OpFCVTSW
	OpFCVTSWU
	OpFCVTLS
	OpFCVTLUS
	OpFCVTSL
	OpFCVTSLU
	OpFCVTWD
	OpFCVTWUD
	OpFCVTDW
	OpFCVTDWU
	OpFCVTLD
	OpFCVTLUD
	OpFCVTDL
	OpFCVTDLU
	OpFCVTSD
	OpFCVTDS
	OpFMVXW
	OpFMVWX
	OpFMVXD
	OpFMVDX

	// RV64F/D: comparisons and classification.
	OpFEQS
	OpFLTS
	OpFLES
	OpFEQD
	OpFLTD
	OpFLED
	OpFCLASSS
	OpFCLASSD
)

// OpClass tags the instruction-set family an opcode belongs to (spec §3's
// "opcode tag drawn from a closed enumeration").
type OpClass int

const (
	ClassI OpClass = iota
	ClassM
	ClassA
	ClassF
	ClassD
)

// riscvABINames maps each x0..x31 register index to the ABI mnemonic used
// in disassembly/debug output, grounded on the teacher's riscvGPRegs table
// (riscv64_instructions.go), reused here for debug annotation rather than
// encoding.
var riscvABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// ABIName returns the calling-convention name of integer register r.
func ABIName(r uint8) string {
	if int(r) < len(riscvABINames) {
		return riscvABINames[r]
	}
	return "?"
}
