package main

import "fmt"

// translateFloat handles every RV64F/D operation: loads/stores, arithmetic,
// the fused multiply-add family (decomposed, since Wasm has no fused op),
// sign-injection, conversions/moves, comparisons and classification
// (spec §6.5/§6.6). Rounding-mode fields are decoded but not honored; the
// translator always uses Wasm's round-to-nearest-even default (§9 Open
// Question: RISC-V's non-default dynamic rounding modes are not modeled).
func (c *blockCtx) translateFloat(op Op) error {
	switch op.Mnem {
	case OpFLW:
		// rs1 is the integer base-address register (spec §6.2's I-type
		// load encoding applies here too); rd is the float destination.
		c.storeF32(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.f32Load(off) })
		return nil
	case OpFLD:
		c.storeF64(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.f64Load(off) })
		return nil
	case OpFSW:
		// rs1 is the integer base-address register, rs2 the float source
		// (the decoder's S-type immediate already folds in what would
		// otherwise look like an "rd" field).
		off := c.effAddr(op.Rs1, op.Imm)
		c.loadF32(op.Rs2)
		c.a.f32Store(off)
		return nil
	case OpFSD:
		off := c.effAddr(op.Rs1, op.Imm)
		c.loadF64(op.Rs2)
		c.a.f64Store(off)
		return nil

	case OpFADDS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Add() })
	case OpFSUBS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Sub() })
	case OpFMULS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Mul() })
	case OpFDIVS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Div() })
	case OpFSQRTS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.a.f32Sqrt() })
	case OpFMINS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Min() })
	case OpFMAXS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Max() })
	case OpFADDD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Add() })
	case OpFSUBD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Sub() })
	case OpFMULD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Mul() })
	case OpFDIVD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Div() })
	case OpFSQRTD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.a.f64Sqrt() })
	case OpFMIND:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Min() })
	case OpFMAXD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Max() })

	case OpFMADDS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Mul(); c.loadF32(op.Rs3); c.a.f32Add() })
	case OpFMSUBS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Mul(); c.loadF32(op.Rs3); c.a.f32Sub() })
	case OpFNMSUBS:
		c.storeF32(op.Rd, func() { c.loadF32(op.Rs3); c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Mul(); c.a.f32Sub() })
	case OpFNMADDS:
		c.storeF32(op.Rd, func() {
			c.loadF32(op.Rs1)
			c.loadF32(op.Rs2)
			c.a.f32Mul()
			c.a.f32Neg()
			c.loadF32(op.Rs3)
			c.a.f32Sub()
		})
	case OpFMADDD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Mul(); c.loadF64(op.Rs3); c.a.f64Add() })
	case OpFMSUBD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Mul(); c.loadF64(op.Rs3); c.a.f64Sub() })
	case OpFNMSUBD:
		c.storeF64(op.Rd, func() { c.loadF64(op.Rs3); c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Mul(); c.a.f64Sub() })
	case OpFNMADDD:
		c.storeF64(op.Rd, func() {
			c.loadF64(op.Rs1)
			c.loadF64(op.Rs2)
			c.a.f64Mul()
			c.a.f64Neg()
			c.loadF64(op.Rs3)
			c.a.f64Sub()
		})

	case OpFSGNJS:
		c.storeF32(op.Rd, func() { c.sgnj32(op.Rs1, op.Rs2, sgnjPlain) })
	case OpFSGNJNS:
		c.storeF32(op.Rd, func() { c.sgnj32(op.Rs1, op.Rs2, sgnjNeg) })
	case OpFSGNJXS:
		c.storeF32(op.Rd, func() { c.sgnj32(op.Rs1, op.Rs2, sgnjXor) })
	case OpFSGNJD:
		c.storeF64(op.Rd, func() { c.sgnj64(op.Rs1, op.Rs2, sgnjPlain) })
	case OpFSGNJND:
		c.storeF64(op.Rd, func() { c.sgnj64(op.Rs1, op.Rs2, sgnjNeg) })
	case OpFSGNJXD:
		c.storeF64(op.Rd, func() { c.sgnj64(op.Rs1, op.Rs2, sgnjXor) })

	case OpFCVTWS:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.a.i32TruncF32S(); c.a.i64ExtendI32S() })
	case OpFCVTWUS:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.a.i32TruncF32U(); c.a.i64ExtendI32S() })
	case OpFCVTLS:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.a.i64TruncF32S() })
	case OpFCVTLUS:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.a.i64TruncF32U() })
	case OpFCVTSW:
		c.storeF32(op.Rd, func() { c.loadInt(op.Rs1); c.a.i32WrapI64(); c.a.f32ConvertI32S() })
	case OpFCVTSWU:
		c.storeF32(op.Rd, func() { c.loadInt(op.Rs1); c.a.i32WrapI64(); c.a.f32ConvertI32U() })
	case OpFCVTSL:
		c.storeF32(op.Rd, func() { c.loadInt(op.Rs1); c.a.f32ConvertI64S() })
	case OpFCVTSLU:
		c.storeF32(op.Rd, func() { c.loadInt(op.Rs1); c.a.f32ConvertI64U() })

	case OpFCVTWD:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.a.i32TruncF64S(); c.a.i64ExtendI32S() })
	case OpFCVTWUD:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.a.i32TruncF64U(); c.a.i64ExtendI32S() })
	case OpFCVTLD:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.a.i64TruncF64S() })
	case OpFCVTLUD:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.a.i64TruncF64U() })
	case OpFCVTDW:
		c.storeF64(op.Rd, func() { c.loadInt(op.Rs1); c.a.i32WrapI64(); c.a.f64ConvertI32S() })
	case OpFCVTDWU:
		c.storeF64(op.Rd, func() { c.loadInt(op.Rs1); c.a.i32WrapI64(); c.a.f64ConvertI32U() })
	case OpFCVTDL:
		c.storeF64(op.Rd, func() { c.loadInt(op.Rs1); c.a.f64ConvertI64S() })
	case OpFCVTDLU:
		c.storeF64(op.Rd, func() { c.loadInt(op.Rs1); c.a.f64ConvertI64U() })

	case OpFCVTSD:
		c.storeF32(op.Rd, func() { c.loadF64(op.Rs1); c.a.f32DemoteF64() })
	case OpFCVTDS:
		c.storeF64(op.Rd, func() { c.loadF32(op.Rs1); c.a.f64PromoteF32() })

	case OpFMVXW:
		c.storeInt(op.Rd, func() {
			c.a.localGet(0)
			c.a.i32Load(uint32(FloatRegOffset(op.Rs1)))
			c.a.i64ExtendI32S()
		})
	case OpFMVWX:
		c.a.localGet(0)
		c.loadInt(op.Rs1)
		c.a.i32WrapI64()
		c.a.i32Store(uint32(FloatRegOffset(op.Rd)))
	case OpFMVXD:
		c.storeInt(op.Rd, func() { c.a.localGet(0); c.a.i64Load(uint32(FloatRegOffset(op.Rs1))) })
	case OpFMVDX:
		c.a.localGet(0)
		c.loadInt(op.Rs1)
		c.a.i64Store(uint32(FloatRegOffset(op.Rd)))

	case OpFEQS:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Eq(); c.a.i64ExtendI32U() })
	case OpFLTS:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Lt(); c.a.i64ExtendI32U() })
	case OpFLES:
		c.storeInt(op.Rd, func() { c.loadF32(op.Rs1); c.loadF32(op.Rs2); c.a.f32Le(); c.a.i64ExtendI32U() })
	case OpFEQD:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Eq(); c.a.i64ExtendI32U() })
	case OpFLTD:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Lt(); c.a.i64ExtendI32U() })
	case OpFLED:
		c.storeInt(op.Rd, func() { c.loadF64(op.Rs1); c.loadF64(op.Rs2); c.a.f64Le(); c.a.i64ExtendI32U() })

	case OpFCLASSS:
		c.storeInt(op.Rd, func() { c.fclass32(op.Rs1) })
	case OpFCLASSD:
		c.storeInt(op.Rd, func() { c.fclass64(op.Rs1) })

	default:
		return fmt.Errorf("%w: unhandled float op %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
	return nil
}

func (c *blockCtx) loadF32(reg uint8) {
	c.a.localGet(0)
	c.a.f32Load(uint32(FloatRegOffset(reg)))
}

func (c *blockCtx) loadF64(reg uint8) {
	c.a.localGet(0)
	c.a.f64Load(uint32(FloatRegOffset(reg)))
}

func (c *blockCtx) storeF32(rd uint8, emitValue func()) {
	c.a.localGet(0)
	emitValue()
	c.a.f32Store(uint32(FloatRegOffset(rd)))
}

func (c *blockCtx) storeF64(rd uint8, emitValue func()) {
	c.a.localGet(0)
	emitValue()
	c.a.f64Store(uint32(FloatRegOffset(rd)))
}

type sgnjMode int

const (
	sgnjPlain sgnjMode = iota
	sgnjNeg
	sgnjXor
)

// sgnj32/sgnj64 implement the FSGNJ family by rebuilding the IEEE bit
// pattern directly: magnitude from rs1, sign from (a function of) rs2.
func (c *blockCtx) sgnj32(rs1, rs2 uint8, mode sgnjMode) {
	c.loadF32(rs1)
	c.a.i32ReinterpretF32()
	switch mode {
	case sgnjPlain, sgnjNeg:
		c.a.i32Const(int32(uint32(0x7fffffff)))
		c.a.i32And()
		c.loadF32(rs2)
		c.a.i32ReinterpretF32()
		if mode == sgnjNeg {
			c.a.i32Const(-1)
			c.a.i32Xor()
		}
		c.a.i32Const(int32(uint32(0x80000000)))
		c.a.i32And()
		c.a.i32Or()
	case sgnjXor:
		c.loadF32(rs2)
		c.a.i32ReinterpretF32()
		c.a.i32Const(int32(uint32(0x80000000)))
		c.a.i32And()
		c.a.i32Xor()
	}
	c.a.f32ReinterpretI32()
}

func (c *blockCtx) sgnj64(rs1, rs2 uint8, mode sgnjMode) {
	c.loadF64(rs1)
	c.a.i64ReinterpretF64()
	switch mode {
	case sgnjPlain, sgnjNeg:
		c.a.i64Const(0x7fffffffffffffff)
		c.a.i64And()
		c.loadF64(rs2)
		c.a.i64ReinterpretF64()
		if mode == sgnjNeg {
			c.a.i64Const(-1)
			c.a.i64Xor()
		}
		c.a.i64Const(int64(-1) << 63)
		c.a.i64And()
		c.a.i64Or()
	case sgnjXor:
		c.loadF64(rs2)
		c.a.i64ReinterpretF64()
		c.a.i64Const(int64(-1) << 63)
		c.a.i64And()
		c.a.i64Xor()
	}
	c.a.f64ReinterpretI64()
}

// fclass32/fclass64 build the RV64F/D 10-bit classification mask (spec
// §6.6) as a branch-free sum of mutually exclusive 0/1 predicates, each
// weighted by its class bit. At most one of the non-NaN predicates and at
// most one NaN predicate can be 1 for any given bit pattern, so summing
// their weighted contributions is equivalent to the bit-or the ISA manual
// describes.
func (c *blockCtx) fclass32(rs1 uint8) {
	bits := c.newScratch()
	exp := c.newScratch()
	mant := c.newScratch()

	c.loadF32(rs1)
	c.a.i32ReinterpretF32()
	c.a.i64ExtendI32U()
	c.a.localSet(bits)

	c.a.localGet(bits)
	c.a.i64Const(23)
	c.a.i64ShrU()
	c.a.i64Const(0xff)
	c.a.i64And()
	c.a.localSet(exp)

	c.a.localGet(bits)
	c.a.i64Const(0x7fffff)
	c.a.i64And()
	c.a.localSet(mant)

	c.emitFClassCommon(bits, exp, mant, 31, 0xff, 0x7fffff, 22)
}

func (c *blockCtx) fclass64(rs1 uint8) {
	bits := c.newScratch()
	exp := c.newScratch()
	mant := c.newScratch()

	c.loadF64(rs1)
	c.a.i64ReinterpretF64()
	c.a.localSet(bits)

	c.a.localGet(bits)
	c.a.i64Const(52)
	c.a.i64ShrU()
	c.a.i64Const(0x7ff)
	c.a.i64And()
	c.a.localSet(exp)

	c.a.localGet(bits)
	c.a.i64Const(0xfffffffffffff)
	c.a.i64And()
	c.a.localSet(mant)

	c.emitFClassCommon(bits, exp, mant, 63, 0x7ff, 0xfffffffffffff, 51)
}

// emitFClassCommon pushes the final i64 classification mask given bits,
// exp and mant already captured in scratch locals, plus the format's sign
// bit position, max-exponent value, mantissa mask, and the mantissa's
// top-bit index (the quiet/signaling NaN discriminator).
func (c *blockCtx) emitFClassCommon(bits, exp, mant uint32, signBit int64, maxExp, mantMask int64, topMantBit int64) {
	sign := func() {
		c.a.localGet(bits)
		c.a.i64Const(signBit)
		c.a.i64ShrU()
		c.a.i64Const(1)
		c.a.i64And()
	}
	expIsMax := func() { c.a.localGet(exp); c.a.i64Const(maxExp); c.a.i64Eq() }
	expIsZero := func() { c.a.localGet(exp); c.a.i64Eqz() }
	mantIsZero := func() { c.a.localGet(mant); c.a.i64Eqz() }
	mantNotZero := func() { c.a.localGet(mant); c.a.i64Const(0); c.a.i64Ne() }
	mantTopSet := func() {
		c.a.localGet(mant)
		c.a.i64Const(topMantBit)
		c.a.i64ShrU()
		c.a.i64Const(1)
		c.a.i64And()
	}

	isInf := func() { expIsMax(); mantIsZero(); c.a.i32And() }
	isNaN := func() { expIsMax(); mantNotZero(); c.a.i32And() }
	isZero := func() { expIsZero(); mantIsZero(); c.a.i32And() }
	isSub := func() { expIsZero(); mantNotZero(); c.a.i32And() }
	isNormal := func() {
		// Neither zero, subnormal, infinite, nor NaN.
		isInf()
		isNaN()
		c.a.i32Or()
		isZero()
		c.a.i32Or()
		isSub()
		c.a.i32Or()
		c.a.i32Eqz()
	}

	weighted := func(cond func(), negBit, posBit int64) {
		cond()
		c.a.i64ExtendI32U()
		sign()
		c.a.i64Const(1)
		c.a.i64Xor()
		c.a.i64Const(posBit)
		c.a.i64Mul()
		sign()
		c.a.i64Const(negBit)
		c.a.i64Mul()
		c.a.i64Add()
		c.a.i64Mul()
	}

	weighted(isInf, 1, 1<<7)
	weighted(isNormal, 1<<1, 1<<6)
	weighted(isSub, 1<<2, 1<<5)
	weighted(isZero, 1<<3, 1<<4)
	c.a.i64Add()
	c.a.i64Add()
	c.a.i64Add()

	// NaN bits are independent of sign: bit 8 (signaling), bit 9 (quiet).
	isNaN()
	c.a.i64ExtendI32U()
	mantTopSet()
	c.a.i64Mul() // isNaN * mantTop -> quiet contribution selector
	c.a.i64Const(1 << 9)
	c.a.i64Mul()
	c.a.i64Add()

	isNaN()
	c.a.i64ExtendI32U()
	mantTopSet()
	c.a.i64Const(1)
	c.a.i64Xor()
	c.a.i64Mul() // isNaN * !mantTop -> signaling contribution selector
	c.a.i64Const(1 << 8)
	c.a.i64Mul()
	c.a.i64Add()
}
