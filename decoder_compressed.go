package main

// decodeCompressed expands a 2-byte RVC instruction into its base RV64I/M/
// A/F/D equivalent (spec §4.2/§6.3). The returned Op always carries Len=2
// so the CFG Builder advances by the correct encoded width, while Mnem,
// Rd/Rs1/Rs2 and Imm describe the expanded base-ISA form the Translator
// already knows how to handle.
func decodeCompressed(half uint16, addr uint64) (Op, error) {
	quadrant := half & 0x3
	funct3 := uint8((half >> 13) & 0x7)
	base := Op{Addr: addr, Len: 2, RawCompressed: true}

	creg := func(bits uint16) uint8 { return uint8(bits&0x7) + 8 }

	switch quadrant {
	case 0:
		rdp := creg((half >> 2) & 0x7)
		rs1p := creg((half >> 7) & 0x7)
		switch funct3 {
		case 0: // C.ADDI4SPN
			nz := ((half >> 11) & 0x3 << 4) | ((half >> 7) & 0xf << 6) | ((half >> 6) & 0x1 << 2) | ((half >> 5) & 0x1 << 3)
			if nz == 0 {
				return Op{}, illegal(addr)
			}
			base.Class, base.Mnem = ClassI, OpADDI
			base.Rd, base.Rs1, base.Imm = rdp, 2, int64(nz)
			return base, nil
		case 1: // C.FLD
			off := ((half >> 10) & 0x7 << 3) | ((half >> 5) & 0x3 << 6)
			base.Class, base.Mnem = ClassF, OpFLD
			base.Rd, base.Rs1, base.Imm = rdp, rs1p, int64(off)
			return base, nil
		case 2: // C.LW
			off := ((half >> 10) & 0x7 << 3) | ((half >> 6) & 0x1 << 2) | ((half >> 5) & 0x1 << 6)
			base.Class, base.Mnem = ClassI, OpLW
			base.Rd, base.Rs1, base.Imm = rdp, rs1p, int64(off)
			return base, nil
		case 3: // C.LD
			off := ((half >> 10) & 0x7 << 3) | ((half >> 5) & 0x3 << 6)
			base.Class, base.Mnem = ClassI, OpLD
			base.Rd, base.Rs1, base.Imm = rdp, rs1p, int64(off)
			return base, nil
		case 5: // C.FSD
			off := ((half >> 10) & 0x7 << 3) | ((half >> 5) & 0x3 << 6)
			base.Class, base.Mnem = ClassF, OpFSD
			base.Rs1, base.Rs2, base.Imm = rs1p, rdp, int64(off)
			return base, nil
		case 6: // C.SW
			off := ((half >> 10) & 0x7 << 3) | ((half >> 6) & 0x1 << 2) | ((half >> 5) & 0x1 << 6)
			base.Class, base.Mnem = ClassI, OpSW
			base.Rs1, base.Rs2, base.Imm = rs1p, rdp, int64(off)
			return base, nil
		case 7: // C.SD
			off := ((half >> 10) & 0x7 << 3) | ((half >> 5) & 0x3 << 6)
			base.Class, base.Mnem = ClassI, OpSD
			base.Rs1, base.Rs2, base.Imm = rs1p, rdp, int64(off)
			return base, nil
		default:
			return Op{}, illegal(addr)
		}

	case 1:
		rd := uint8((half >> 7) & 0x1f)
		imm6 := int64(sext(uint32(((half>>12)&1)<<5|(half>>2)&0x1f), 6))
		switch funct3 {
		case 0: // C.ADDI / C.NOP
			base.Class, base.Mnem = ClassI, OpADDI
			base.Rd, base.Rs1, base.Imm = rd, rd, imm6
			return base, nil
		case 1: // C.ADDIW
			if rd == 0 {
				return Op{}, illegal(addr)
			}
			base.Class, base.Mnem = ClassI, OpADDIW
			base.Rd, base.Rs1, base.Imm = rd, rd, imm6
			return base, nil
		case 2: // C.LI
			base.Class, base.Mnem = ClassI, OpADDI
			base.Rd, base.Rs1, base.Imm = rd, 0, imm6
			return base, nil
		case 3:
			if rd == 2 { // C.ADDI16SP
				u := ((half >> 12) & 1 << 9) | ((half >> 6) & 1 << 4) | ((half >> 5) & 1 << 6) |
					((half >> 3) & 0x3 << 7) | ((half >> 2) & 1 << 5)
				nz := sext(uint32(u), 10)
				if nz == 0 {
					return Op{}, illegal(addr)
				}
				base.Class, base.Mnem = ClassI, OpADDI
				base.Rd, base.Rs1, base.Imm = 2, 2, nz
				return base, nil
			}
			// C.LUI
			raw6 := uint32(((half>>12)&1)<<5 | (half>>2)&0x1f)
			nz := sext(raw6, 6)
			if nz == 0 || rd == 0 {
				return Op{}, illegal(addr)
			}
			base.Class, base.Mnem = ClassI, OpLUI
			base.Rd, base.Imm = rd, nz<<12
			return base, nil
		case 4:
			rdp := creg((half >> 7) & 0x7)
			switch (half >> 10) & 0x3 {
			case 0: // C.SRLI
				shamt := int64(((half >> 12) & 1 << 5) | (half>>2)&0x1f)
				base.Class, base.Mnem = ClassI, OpSRLI
				base.Rd, base.Rs1, base.Imm = rdp, rdp, shamt
				return base, nil
			case 1: // C.SRAI
				shamt := int64(((half >> 12) & 1 << 5) | (half>>2)&0x1f)
				base.Class, base.Mnem = ClassI, OpSRAI
				base.Rd, base.Rs1, base.Imm = rdp, rdp, shamt
				return base, nil
			case 2: // C.ANDI
				imm := int64(sext(uint32(((half>>12)&1)<<5|(half>>2)&0x1f), 6))
				base.Class, base.Mnem = ClassI, OpANDI
				base.Rd, base.Rs1, base.Imm = rdp, rdp, imm
				return base, nil
			case 3:
				rs2p := creg((half >> 2) & 0x7)
				wide := (half>>12)&1 == 1
				switch (half >> 5) & 0x3 {
				case 0:
					base.Mnem = pick(wide, OpSUBW, OpSUB)
				case 1:
					if wide {
						base.Mnem = OpADDW
					} else {
						base.Mnem = OpXOR
					}
				case 2:
					if wide {
						return Op{}, illegal(addr)
					}
					base.Mnem = OpOR
				case 3:
					if wide {
						return Op{}, illegal(addr)
					}
					base.Mnem = OpAND
				}
				base.Class = ClassI
				base.Rd, base.Rs1, base.Rs2 = rdp, rdp, rs2p
				return base, nil
			}
		case 5: // C.J
			off := cjImm(half)
			base.Class, base.Mnem = ClassI, OpJAL
			base.Rd, base.Imm = 0, off
			return base, nil
		case 6, 7: // C.BEQZ / C.BNEZ
			rs1p := creg((half >> 7) & 0x7)
			off := cbImm(half)
			base.Class = ClassI
			if funct3 == 6 {
				base.Mnem = OpBEQ
			} else {
				base.Mnem = OpBNE
			}
			base.Rs1, base.Rs2, base.Imm = rs1p, 0, off
			return base, nil
		}
		return Op{}, illegal(addr)

	case 2:
		rd := uint8((half >> 7) & 0x1f)
		switch funct3 {
		case 0: // C.SLLI
			shamt := int64(((half >> 12) & 1 << 5) | (half>>2)&0x1f)
			if rd == 0 {
				return Op{}, illegal(addr)
			}
			base.Class, base.Mnem = ClassI, OpSLLI
			base.Rd, base.Rs1, base.Imm = rd, rd, shamt
			return base, nil
		case 1: // C.FLDSP
			off := ((half >> 12) & 1 << 5) | ((half >> 5) & 0x3 << 3) | ((half >> 2) & 0x7 << 6)
			base.Class, base.Mnem = ClassF, OpFLD
			base.Rd, base.Rs1, base.Imm = rd, 2, int64(off)
			return base, nil
		case 2: // C.LWSP
			if rd == 0 {
				return Op{}, illegal(addr)
			}
			off := ((half >> 12) & 1 << 5) | ((half >> 4) & 0x7 << 2) | ((half >> 2) & 0x3 << 6)
			base.Class, base.Mnem = ClassI, OpLW
			base.Rd, base.Rs1, base.Imm = rd, 2, int64(off)
			return base, nil
		case 3: // C.LDSP
			if rd == 0 {
				return Op{}, illegal(addr)
			}
			off := ((half >> 12) & 1 << 5) | ((half >> 5) & 0x3 << 3) | ((half >> 2) & 0x7 << 6)
			base.Class, base.Mnem = ClassI, OpLD
			base.Rd, base.Rs1, base.Imm = rd, 2, int64(off)
			return base, nil
		case 4:
			rs2 := uint8((half >> 2) & 0x1f)
			hi := (half>>12)&1 == 1
			switch {
			case !hi && rs2 == 0: // C.JR
				if rd == 0 {
					return Op{}, illegal(addr)
				}
				base.Class, base.Mnem = ClassI, OpJALR
				base.Rd, base.Rs1, base.Imm = 0, rd, 0
				return base, nil
			case !hi: // C.MV
				base.Class, base.Mnem = ClassI, OpADD
				base.Rd, base.Rs1, base.Rs2 = rd, 0, rs2
				return base, nil
			case hi && rd == 0 && rs2 == 0: // C.EBREAK
				base.Class, base.Mnem = ClassI, OpEBREAK
				return base, nil
			case hi && rs2 == 0: // C.JALR
				base.Class, base.Mnem = ClassI, OpJALR
				base.Rd, base.Rs1, base.Imm = 1, rd, 0
				return base, nil
			default: // C.ADD
				base.Class, base.Mnem = ClassI, OpADD
				base.Rd, base.Rs1, base.Rs2 = rd, rd, rs2
				return base, nil
			}
		case 5: // C.FSDSP
			rs2 := uint8((half >> 2) & 0x1f)
			off := ((half >> 10) & 0x7 << 3) | ((half >> 7) & 0x7 << 6)
			base.Class, base.Mnem = ClassF, OpFSD
			base.Rs1, base.Rs2, base.Imm = 2, rs2, int64(off)
			return base, nil
		case 6: // C.SWSP
			rs2 := uint8((half >> 2) & 0x1f)
			off := ((half >> 9) & 0xf << 2) | ((half >> 7) & 0x3 << 6)
			base.Class, base.Mnem = ClassI, OpSW
			base.Rs1, base.Rs2, base.Imm = 2, rs2, int64(off)
			return base, nil
		case 7: // C.SDSP
			rs2 := uint8((half >> 2) & 0x1f)
			off := ((half >> 10) & 0x7 << 3) | ((half >> 7) & 0x7 << 6)
			base.Class, base.Mnem = ClassI, OpSD
			base.Rs1, base.Rs2, base.Imm = 2, rs2, int64(off)
			return base, nil
		}
		return Op{}, illegal(addr)
	}

	// quadrant 3 is never reached: low 2 bits == 3 means a 4-byte instruction.
	return Op{}, illegal(addr)
}

// cjImm decodes the CJ-type immediate of C.J/C.JAL: imm[11|4|9:8|10|6|7|3:1|5].
func cjImm(half uint16) int64 {
	b := uint32(half)
	u := ((b >> 12 & 1) << 11) | ((b >> 11 & 1) << 4) | ((b >> 9 & 3) << 8) |
		((b >> 8 & 1) << 10) | ((b >> 7 & 1) << 6) | ((b >> 6 & 1) << 7) |
		((b >> 3 & 7) << 1) | ((b >> 2 & 1) << 5)
	return sext(u, 12)
}

// cbImm decodes the CB-type immediate of C.BEQZ/C.BNEZ: imm[8|4:3|7:6|2:1|5].
func cbImm(half uint16) int64 {
	b := uint32(half)
	u := ((b >> 12 & 1) << 8) | ((b >> 10 & 3) << 3) | ((b >> 5 & 3) << 6) |
		((b >> 3 & 3) << 1) | ((b >> 2 & 1) << 5)
	return sext(u, 9)
}
