package main

import "encoding/binary"

// Hand-rolled RV64GC encoders, the mirror image of decode32/decodeCompressed:
// each function packs the same bitfields Decode extracts, so a test can
// build exact instruction bytes without depending on any external
// assembler. Grounded on the teacher's own encode-side instruction builders
// (riscv64_instructions.go emits the fields this inverts).

func le32(w uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, w)
	return b
}

func le16(w uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, w)
	return b
}

func encodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xfff)<<20
}

func encodeShiftImm(opcode, funct3, rd, rs1, shamt, funct7 uint32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | (shamt&0x3f)<<20 | funct7<<25
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return opcode | (u&0x1f)<<7 | funct3<<12 | rs1<<15 | rs2<<20 | ((u>>5)&0x7f)<<25
}

func encodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return opcode |
		((u>>11)&1)<<7 | ((u>>1)&0xf)<<8 | funct3<<12 | rs1<<15 | rs2<<20 |
		((u>>5)&0x3f)<<25 | ((u>>12)&1)<<31
}

// encodeU packs imm20, the raw 20-bit U-type field (as written in assembly
// syntax, e.g. the 0x80000 of "lui t0, 0x80000"), into bits 31:12 of the
// instruction word.
func encodeU(opcode, rd, imm20 uint32) uint32 {
	return opcode | rd<<7 | (imm20&0xfffff)<<12
}

func encodeJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	return opcode | rd<<7 |
		((u>>12)&0xff)<<12 | ((u>>11)&1)<<20 | ((u>>1)&0x3ff)<<21 | ((u>>20)&1)<<31
}

// Instruction builders used throughout the test suite. Register arguments
// are raw x0..x31 indices.

func asmADDI(rd, rs1 uint32, imm int32) []byte { return le32(encodeI(0x13, 0, rd, rs1, imm)) }
func asmADDIW(rd, rs1 uint32, imm int32) []byte { return le32(encodeI(0x1b, 0, rd, rs1, imm)) }
func asmSLLI(rd, rs1, shamt uint32) []byte {
	return le32(encodeShiftImm(0x13, 1, rd, rs1, shamt, 0x00))
}
func asmLUI(rd, imm20 uint32) []byte   { return le32(encodeU(0x37, rd, imm20)) }
func asmAUIPC(rd, imm20 uint32) []byte { return le32(encodeU(0x17, rd, imm20)) }

func asmADD(rd, rs1, rs2 uint32) []byte  { return le32(encodeR(0x33, 0, 0x00, rd, rs1, rs2)) }
func asmSUB(rd, rs1, rs2 uint32) []byte  { return le32(encodeR(0x33, 0, 0x20, rd, rs1, rs2)) }
func asmADDW(rd, rs1, rs2 uint32) []byte { return le32(encodeR(0x3b, 0, 0x00, rd, rs1, rs2)) }

func asmMUL(rd, rs1, rs2 uint32) []byte { return le32(encodeR(0x33, 0, 0x01, rd, rs1, rs2)) }
func asmDIV(rd, rs1, rs2 uint32) []byte { return le32(encodeR(0x33, 4, 0x01, rd, rs1, rs2)) }
func asmREM(rd, rs1, rs2 uint32) []byte { return le32(encodeR(0x33, 6, 0x01, rd, rs1, rs2)) }

func asmLW(rd, rs1 uint32, imm int32) []byte { return le32(encodeI(0x03, 2, rd, rs1, imm)) }
func asmSW(rs1, rs2 uint32, imm int32) []byte { return le32(encodeS(0x23, 2, rs1, rs2, imm)) }

func asmBEQ(rs1, rs2 uint32, imm int32) []byte { return le32(encodeB(0x63, 0, rs1, rs2, imm)) }
func asmBNE(rs1, rs2 uint32, imm int32) []byte { return le32(encodeB(0x63, 1, rs1, rs2, imm)) }
func asmBLT(rs1, rs2 uint32, imm int32) []byte { return le32(encodeB(0x63, 4, rs1, rs2, imm)) }

func asmJAL(rd uint32, imm int32) []byte  { return le32(encodeJ(0x6f, rd, imm)) }
func asmJALR(rd, rs1 uint32, imm int32) []byte { return le32(encodeI(0x67, 0, rd, rs1, imm)) }

func asmECALL() []byte  { return le32(0x00000073) }
func asmEBREAK() []byte { return le32(0x00100073) }

// asmIllegal32 is a reserved 4-byte encoding: SYSTEM (opcode 0x73) with a
// nonzero funct3, which decode32 rejects outright (only funct3 == 0 covers
// ECALL/EBREAK; CSR forms are out of scope, §1).
func asmIllegal32() []byte { return le32(encodeI(0x73, 1, 0, 0, 0)) }

// Compressed (2-byte) encoders, used to exercise decodeCompressed.

// asmCNOP is C.ADDI with rd=0, imm=0 (encodes as all-zero funct3=0 quadrant 1).
func asmCNOP() []byte { return le16(0x0001) }

// asmCLI encodes C.LI rd, imm (quadrant 1, funct3=2): rd != 0, |imm| <= 31.
func asmCLI(rd uint16, imm int8) []byte {
	u := uint16(imm) & 0x3f
	w := uint16(1) | (u&0x20)<<7 | rd<<7 | uint16(2)<<13 | (u&0x1f)<<2
	return le16(w)
}

// asmCJ encodes C.J offset (quadrant 1, funct3=5): imm[11|4|9:8|10|6|7|3:1|5].
func asmCJ(off int16) []byte {
	u := uint16(off)
	bits := ((u >> 11 & 1) << 12) | ((u >> 4 & 1) << 11) | ((u >> 8 & 3) << 9) |
		((u >> 10 & 1) << 8) | ((u >> 6 & 1) << 7) | ((u >> 7 & 1) << 6) |
		((u >> 1 & 7) << 3) | ((u >> 5 & 1) << 2)
	return le16(uint16(1) | uint16(5)<<13 | bits)
}

// asmCBEQZ encodes C.BEQZ rs1', offset (quadrant 1, funct3=6): imm[8|4:3|7:6|2:1|5].
func asmCBEQZ(rs1p uint16, off int16) []byte {
	u := uint16(off)
	bits := ((u >> 8 & 1) << 12) | ((u >> 3 & 3) << 10) | ((u >> 6 & 3) << 5) |
		((u >> 1 & 3) << 3) | ((u >> 5 & 1) << 2)
	return le16(uint16(1) | uint16(6)<<13 | (rs1p&0x7)<<7 | bits)
}

// asmCMV encodes C.MV rd, rs2 (quadrant 2, funct3=4, high bit clear, rs2 != 0).
func asmCMV(rd, rs2 uint16) []byte {
	return le16(uint16(2) | uint16(4)<<13 | (rd&0x1f)<<7 | (rs2&0x1f)<<2)
}

// asmCJR encodes C.JR rs1 (quadrant 2, funct3=4, high bit clear, rs2 == 0).
func asmCJR(rs1 uint16) []byte {
	return le16(uint16(2) | uint16(4)<<13 | (rs1&0x1f)<<7)
}
