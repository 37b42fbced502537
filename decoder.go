package main

import (
	"encoding/binary"
	"fmt"
)

// Decoder turns raw bytes at a guest address into a typed Op (spec §4.2).
// It is pure: identical bytes at the same address always yield the same Op.

// Decode inspects the first two bytes of code to classify instruction
// length, then dispatches to the 16-bit or 32-bit decode path. code must
// have at least 2 bytes available; for a 4-byte instruction it must have 4.
func Decode(code []byte, addr uint64) (Op, error) {
	if len(code) < 2 {
		return Op{}, fmt.Errorf("%w: truncated instruction at 0x%x", ErrIllegalEncoding, addr)
	}
	half := binary.LittleEndian.Uint16(code)
	if half&0x3 != 0x3 {
		return decodeCompressed(half, addr)
	}
	if len(code) < 4 {
		return Op{}, fmt.Errorf("%w: truncated 4-byte instruction at 0x%x", ErrIllegalEncoding, addr)
	}
	word := binary.LittleEndian.Uint32(code)
	return decode32(word, addr)
}

func sext(v uint32, bits int) int64 {
	shift := 32 - bits
	return int64(int32(v<<shift)) >> shift
}

func decode32(w uint32, addr uint64) (Op, error) {
	opcode := w & 0x7f
	rd := uint8((w >> 7) & 0x1f)
	funct3 := uint8((w >> 12) & 0x7)
	rs1 := uint8((w >> 15) & 0x1f)
	rs2 := uint8((w >> 20) & 0x1f)
	funct7 := uint8((w >> 25) & 0x7f)

	iImm := sext(w>>20, 12)
	sImm := sext(((w>>25)<<5)|((w>>7)&0x1f), 12)
	bImm := sext((((w>>31)&1)<<12)|(((w>>7)&1)<<11)|(((w>>25)&0x3f)<<5)|(((w>>8)&0xf)<<1), 13)
	uImm := int64(int32(w & 0xfffff000))
	jImm := sext((((w>>31)&1)<<20)|(((w>>12)&0xff)<<12)|(((w>>20)&1)<<11)|(((w>>21)&0x3ff)<<1), 21)

	base := Op{Addr: addr, Len: 4, Rd: rd, Rs1: rs1, Rs2: rs2}

	switch opcode {
	case 0x37: // LUI
		base.Class, base.Mnem, base.Imm = ClassI, OpLUI, uImm
		base.Rs1, base.Rs2 = 0, 0
		return base, nil
	case 0x17: // AUIPC
		base.Class, base.Mnem, base.Imm = ClassI, OpAUIPC, uImm
		base.Rs1, base.Rs2 = 0, 0
		return base, nil
	case 0x6f: // JAL
		base.Class, base.Mnem, base.Imm = ClassI, OpJAL, jImm
		base.Rs1, base.Rs2 = 0, 0
		return base, nil
	case 0x67: // JALR
		if funct3 != 0 {
			return Op{}, illegal(addr)
		}
		base.Class, base.Mnem, base.Imm = ClassI, OpJALR, iImm
		base.Rs2 = 0
		return base, nil
	case 0x63: // Branch
		base.Class, base.Imm = ClassI, bImm
		base.Rd = 0
		switch funct3 {
		case 0:
			base.Mnem = OpBEQ
		case 1:
			base.Mnem = OpBNE
		case 4:
			base.Mnem = OpBLT
		case 5:
			base.Mnem = OpBGE
		case 6:
			base.Mnem = OpBLTU
		case 7:
			base.Mnem = OpBGEU
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x03: // Load
		base.Class, base.Imm = ClassI, iImm
		base.Rs2 = 0
		switch funct3 {
		case 0:
			base.Mnem = OpLB
		case 1:
			base.Mnem = OpLH
		case 2:
			base.Mnem = OpLW
		case 3:
			base.Mnem = OpLD
		case 4:
			base.Mnem = OpLBU
		case 5:
			base.Mnem = OpLHU
		case 6:
			base.Mnem = OpLWU
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x23: // Store
		base.Class, base.Imm = ClassI, sImm
		base.Rd = 0
		switch funct3 {
		case 0:
			base.Mnem = OpSB
		case 1:
			base.Mnem = OpSH
		case 2:
			base.Mnem = OpSW
		case 3:
			base.Mnem = OpSD
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x13: // OP-IMM
		base.Class, base.Imm = ClassI, iImm
		base.Rs2 = 0
		switch funct3 {
		case 0:
			base.Mnem = OpADDI
		case 2:
			base.Mnem = OpSLTI
		case 3:
			base.Mnem = OpSLTIU
		case 4:
			base.Mnem = OpXORI
		case 6:
			base.Mnem = OpORI
		case 7:
			base.Mnem = OpANDI
		case 1:
			base.Mnem, base.Imm = OpSLLI, int64((w>>20)&0x3f)
		case 5:
			if funct7>>1 == 0x10 {
				base.Mnem = OpSRAI
			} else {
				base.Mnem = OpSRLI
			}
			base.Imm = int64((w >> 20) & 0x3f)
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x1b: // OP-IMM-32
		base.Class = ClassI
		base.Rs2 = 0
		switch funct3 {
		case 0:
			base.Mnem, base.Imm = OpADDIW, iImm
		case 1:
			base.Mnem, base.Imm = OpSLLIW, int64(rs2)
		case 5:
			if funct7 == 0x20 {
				base.Mnem = OpSRAIW
			} else {
				base.Mnem = OpSRLIW
			}
			base.Imm = int64(rs2)
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x33: // OP
		if funct7 == 0x01 {
			base.Class = ClassM
			switch funct3 {
			case 0:
				base.Mnem = OpMUL
			case 1:
				base.Mnem = OpMULH
			case 2:
				base.Mnem = OpMULHSU
			case 3:
				base.Mnem = OpMULHU
			case 4:
				base.Mnem = OpDIV
			case 5:
				base.Mnem = OpDIVU
			case 6:
				base.Mnem = OpREM
			case 7:
				base.Mnem = OpREMU
			}
			return base, nil
		}
		base.Class = ClassI
		switch {
		case funct3 == 0 && funct7 == 0x00:
			base.Mnem = OpADD
		case funct3 == 0 && funct7 == 0x20:
			base.Mnem = OpSUB
		case funct3 == 1:
			base.Mnem = OpSLL
		case funct3 == 2:
			base.Mnem = OpSLT
		case funct3 == 3:
			base.Mnem = OpSLTU
		case funct3 == 4:
			base.Mnem = OpXOR
		case funct3 == 5 && funct7 == 0x00:
			base.Mnem = OpSRL
		case funct3 == 5 && funct7 == 0x20:
			base.Mnem = OpSRA
		case funct3 == 6:
			base.Mnem = OpOR
		case funct3 == 7:
			base.Mnem = OpAND
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x3b: // OP-32
		if funct7 == 0x01 {
			base.Class = ClassM
			switch funct3 {
			case 0:
				base.Mnem = OpMULW
			case 4:
				base.Mnem = OpDIVW
			case 5:
				base.Mnem = OpDIVUW
			case 6:
				base.Mnem = OpREMW
			case 7:
				base.Mnem = OpREMUW
			default:
				return Op{}, illegal(addr)
			}
			return base, nil
		}
		base.Class = ClassI
		switch {
		case funct3 == 0 && funct7 == 0x00:
			base.Mnem = OpADDW
		case funct3 == 0 && funct7 == 0x20:
			base.Mnem = OpSUBW
		case funct3 == 1:
			base.Mnem = OpSLLW
		case funct3 == 5 && funct7 == 0x00:
			base.Mnem = OpSRLW
		case funct3 == 5 && funct7 == 0x20:
			base.Mnem = OpSRAW
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x0f: // MISC-MEM
		base.Class = ClassI
		switch funct3 {
		case 0:
			if w == 0x0100000f {
				base.Mnem = OpPAUSE
			} else {
				base.Mnem = OpFENCE
			}
		case 1:
			base.Mnem = OpFENCEI
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x73: // SYSTEM
		base.Class = ClassI
		base.Rd, base.Rs1, base.Rs2 = 0, 0, 0
		if funct3 != 0 {
			return Op{}, illegal(addr) // CSR forms not covered (§1 out of scope)
		}
		switch w >> 20 {
		case 0:
			base.Mnem = OpECALL
		case 1:
			base.Mnem = OpEBREAK
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x2f: // AMO
		return decodeAMO(w, base, funct3, funct7)
	case 0x07: // FLW/FLD
		base.Class, base.Imm = ClassF, iImm
		base.Rs2 = 0
		switch funct3 {
		case 2:
			base.Mnem = OpFLW
		case 3:
			base.Mnem = OpFLD
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x27: // FSW/FSD
		base.Class, base.Imm = ClassF, sImm
		base.Rd = 0
		switch funct3 {
		case 2:
			base.Mnem = OpFSW
		case 3:
			base.Mnem = OpFSD
		default:
			return Op{}, illegal(addr)
		}
		return base, nil
	case 0x43, 0x47, 0x4b, 0x4f: // FMADD/FMSUB/FNMSUB/FNMADD
		return decodeFMA(w, base, opcode, funct7, rs2)
	case 0x53: // OP-FP
		return decodeOpFP(w, base, funct3, funct7, rs2)
	default:
		return Op{}, illegal(addr)
	}
}

func illegal(addr uint64) error {
	return fmt.Errorf("%w: at 0x%x", ErrIllegalEncoding, addr)
}

func decodeAMO(w uint32, base Op, funct3, funct7 uint8) (Op, error) {
	base.Class = ClassA
	base.Aq = funct7&0x2 != 0
	base.Rl = funct7&0x1 != 0
	funct5 := funct7 >> 2
	isD := funct3 == 3
	switch funct5 {
	case 0x02:
		if isD {
			base.Mnem = OpLRD
		} else {
			base.Mnem = OpLRW
		}
	case 0x03:
		if isD {
			base.Mnem = OpSCD
		} else {
			base.Mnem = OpSCW
		}
	case 0x01:
		base.Mnem = pick(isD, OpAMOSWAPD, OpAMOSWAPW)
	case 0x00:
		base.Mnem = pick(isD, OpAMOADDD, OpAMOADDW)
	case 0x04:
		base.Mnem = pick(isD, OpAMOXORD, OpAMOXORW)
	case 0x0c:
		base.Mnem = pick(isD, OpAMOANDD, OpAMOANDW)
	case 0x08:
		base.Mnem = pick(isD, OpAMOORD, OpAMOORW)
	case 0x10:
		base.Mnem = pick(isD, OpAMOMIND, OpAMOMINW)
	case 0x14:
		base.Mnem = pick(isD, OpAMOMAXD, OpAMOMAXW)
	case 0x18:
		base.Mnem = pick(isD, OpAMOMINUD, OpAMOMINUW)
	case 0x1c:
		base.Mnem = pick(isD, OpAMOMAXUD, OpAMOMAXUW)
	default:
		return Op{}, illegal(base.Addr)
	}
	return base, nil
}

func pick(isD bool, d, w Mnemonic) Mnemonic {
	if isD {
		return d
	}
	return w
}

func decodeFMA(w uint32, base Op, opcode, funct7 uint8, rs2 uint8) (Op, error) {
	base.Class = ClassF
	base.Rs3 = funct7 >> 2
	base.HasRs3 = true
	base.RM = uint8((w >> 12) & 0x7)
	isD := funct7&0x3 == 1
	switch opcode {
	case 0x43:
		base.Mnem = pick(isD, OpFMADDD, OpFMADDS)
	case 0x47:
		base.Mnem = pick(isD, OpFMSUBD, OpFMSUBS)
	case 0x4b:
		base.Mnem = pick(isD, OpFNMSUBD, OpFNMSUBS)
	case 0x4f:
		base.Mnem = pick(isD, OpFNMADDD, OpFNMADDS)
	}
	return base, nil
}

func decodeOpFP(w uint32, base Op, funct3, funct7, rs2 uint8) (Op, error) {
	base.Class = ClassF
	base.RM = funct3
	isD := funct7&0x3 == 1
	top := funct7 >> 2
	switch top {
	case 0x00:
		base.Mnem = pick(isD, OpFADDD, OpFADDS)
	case 0x01:
		base.Mnem = pick(isD, OpFSUBD, OpFSUBS)
	case 0x02:
		base.Mnem = pick(isD, OpFMULD, OpFMULS)
	case 0x03:
		base.Mnem = pick(isD, OpFDIVD, OpFDIVS)
	case 0x0b:
		base.Mnem = pick(isD, OpFSQRTD, OpFSQRTS)
	case 0x04:
		switch funct3 {
		case 0:
			base.Mnem = pick(isD, OpFSGNJD, OpFSGNJS)
		case 1:
			base.Mnem = pick(isD, OpFSGNJND, OpFSGNJNS)
		case 2:
			base.Mnem = pick(isD, OpFSGNJXD, OpFSGNJXS)
		default:
			return Op{}, illegal(base.Addr)
		}
	case 0x05:
		if funct3 == 0 {
			base.Mnem = pick(isD, OpFMIND, OpFMINS)
		} else {
			base.Mnem = pick(isD, OpFMAXD, OpFMAXS)
		}
	case 0x08: // FCVT.S.D / FCVT.D.S
		if isD {
			base.Mnem = OpFCVTDS
		} else {
			base.Mnem = OpFCVTSD
		}
	case 0x14: // FEQ/FLT/FLE
		switch funct3 {
		case 2:
			base.Mnem = pick(isD, OpFEQD, OpFEQS)
		case 1:
			base.Mnem = pick(isD, OpFLTD, OpFLTS)
		case 0:
			base.Mnem = pick(isD, OpFLED, OpFLES)
		default:
			return Op{}, illegal(base.Addr)
		}
	case 0x18: // FCVT.W/WU/L/LU.fmt
		switch rs2 {
		case 0:
			base.Mnem = pick(isD, OpFCVTWD, OpFCVTWS)
		case 1:
			base.Mnem = pick(isD, OpFCVTWUD, OpFCVTWUS)
		case 2:
			base.Mnem = pick(isD, OpFCVTLD, OpFCVTLS)
		case 3:
			base.Mnem = pick(isD, OpFCVTLUD, OpFCVTLUS)
		default:
			return Op{}, illegal(base.Addr)
		}
	case 0x1a: // FCVT.fmt.W/WU/L/LU
		switch rs2 {
		case 0:
			base.Mnem = pick(isD, OpFCVTDW, OpFCVTSW)
		case 1:
			base.Mnem = pick(isD, OpFCVTDWU, OpFCVTSWU)
		case 2:
			base.Mnem = pick(isD, OpFCVTDL, OpFCVTSL)
		case 3:
			base.Mnem = pick(isD, OpFCVTDLU, OpFCVTSLU)
		default:
			return Op{}, illegal(base.Addr)
		}
	case 0x1c: // FMV.X.W/FCLASS.W or FMV.X.D/FCLASS.D
		if funct3 == 0 {
			base.Mnem = pick(isD, OpFMVXD, OpFMVXW)
		} else {
			base.Mnem = pick(isD, OpFCLASSD, OpFCLASSS)
		}
	case 0x1e: // FMV.W.X / FMV.D.X
		base.Mnem = pick(isD, OpFMVDX, OpFMVWX)
	default:
		return Op{}, illegal(base.Addr)
	}
	return base, nil
}
