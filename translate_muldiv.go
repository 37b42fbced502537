package main

import "fmt"

// translateMulDiv handles RV64M: MUL/MULH/MULHSU/MULHU, DIV/DIVU/REM/REMU,
// and their *W word-form variants. Wasm's div_s/div_u/rem_s/rem_u trap on
// division by zero and div_s additionally traps on signed overflow
// (MinInt/-1); RISC-V instead defines specific non-trapping results for
// both cases (spec §4.4), so every division guards its divisor and operand
// combination with a structured if before ever executing the Wasm op.
func (c *blockCtx) translateMulDiv(op Op) error {
	switch op.Mnem {
	case OpMUL:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64Mul() })
		return nil
	case OpMULH:
		c.storeInt(op.Rd, func() { c.mulHigh(op.Rs1, op.Rs2, true, true) })
		return nil
	case OpMULHSU:
		c.storeInt(op.Rd, func() { c.mulHigh(op.Rs1, op.Rs2, true, false) })
		return nil
	case OpMULHU:
		c.storeInt(op.Rd, func() { c.mulHigh(op.Rs1, op.Rs2, false, false) })
		return nil

	case OpDIV:
		c.storeInt(op.Rd, func() { c.divSigned(op.Rs1, op.Rs2) })
		return nil
	case OpDIVU:
		c.storeInt(op.Rd, func() { c.divUnsigned(op.Rs1, op.Rs2) })
		return nil
	case OpREM:
		c.storeInt(op.Rd, func() { c.remSigned(op.Rs1, op.Rs2) })
		return nil
	case OpREMU:
		c.storeInt(op.Rd, func() { c.remUnsigned(op.Rs1, op.Rs2) })
		return nil

	case OpMULW:
		c.storeInt(op.Rd, func() { c.word2(op.Rs1, op.Rs2); c.a.i32Mul(); c.a.i64ExtendI32S() })
		return nil
	case OpDIVW:
		c.storeInt(op.Rd, func() { c.divSignedW(op.Rs1, op.Rs2) })
		return nil
	case OpDIVUW:
		c.storeInt(op.Rd, func() { c.divUnsignedW(op.Rs1, op.Rs2) })
		return nil
	case OpREMW:
		c.storeInt(op.Rd, func() { c.remSignedW(op.Rs1, op.Rs2) })
		return nil
	case OpREMUW:
		c.storeInt(op.Rd, func() { c.remUnsignedW(op.Rs1, op.Rs2) })
		return nil

	default:
		return fmt.Errorf("%w: unhandled mul/div op %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
}

const minInt64 = int64(-1) << 63

// divisorZero/signedOverflow push the i32 predicates shared by every 64-bit
// division variant.
func (c *blockCtx) divisorZero(rs2 uint8) {
	c.loadInt(rs2)
	c.a.i64Eqz()
}

func (c *blockCtx) signedOverflow(rs1, rs2 uint8) {
	c.loadInt(rs1)
	c.a.i64Const(minInt64)
	c.a.i64Eq()
	c.loadInt(rs2)
	c.a.i64Const(-1)
	c.a.i64Eq()
	c.a.i32And()
}

// divSigned implements DIV: -1 on division by zero, the dividend on
// signed overflow, otherwise the ordinary signed quotient.
func (c *blockCtx) divSigned(rs1, rs2 uint8) {
	c.divisorZero(rs2)
	c.a.ifI64()
	c.a.i64Const(-1)
	c.a.elseOp()
	c.signedOverflow(rs1, rs2)
	c.a.ifI64()
	c.loadInt(rs1)
	c.a.elseOp()
	c.loadInt(rs1)
	c.loadInt(rs2)
	c.a.i64DivS()
	c.a.end()
	c.a.end()
}

// remSigned implements REM: the dividend on division by zero, zero on
// signed overflow, otherwise the ordinary signed remainder.
func (c *blockCtx) remSigned(rs1, rs2 uint8) {
	c.divisorZero(rs2)
	c.a.ifI64()
	c.loadInt(rs1)
	c.a.elseOp()
	c.signedOverflow(rs1, rs2)
	c.a.ifI64()
	c.a.i64Const(0)
	c.a.elseOp()
	c.loadInt(rs1)
	c.loadInt(rs2)
	c.a.i64RemS()
	c.a.end()
	c.a.end()
}

// divUnsigned implements DIVU: all-ones on division by zero.
func (c *blockCtx) divUnsigned(rs1, rs2 uint8) {
	c.divisorZero(rs2)
	c.a.ifI64()
	c.a.i64Const(-1)
	c.a.elseOp()
	c.loadInt(rs1)
	c.loadInt(rs2)
	c.a.i64DivU()
	c.a.end()
}

// remUnsigned implements REMU: the dividend on division by zero.
func (c *blockCtx) remUnsigned(rs1, rs2 uint8) {
	c.divisorZero(rs2)
	c.a.ifI64()
	c.loadInt(rs1)
	c.a.elseOp()
	c.loadInt(rs1)
	c.loadInt(rs2)
	c.a.i64RemU()
	c.a.end()
}

// word32Pair pushes the low-32-bit values of rs1 and rs2 as i32 operands.
func (c *blockCtx) word32Pair(rs1, rs2 uint8) {
	c.loadInt(rs1)
	c.a.i32WrapI64()
	c.loadInt(rs2)
	c.a.i32WrapI64()
}

const minInt32 = int32(-1) << 31

// divSignedW/divUnsignedW/remSignedW/remUnsignedW mirror the 64-bit forms
// over the low 32 bits of each operand, sign-extending the i32 result back
// to i64 as every *W instruction does (spec §6.3).
func (c *blockCtx) divisorZeroW(rs2 uint8) {
	c.loadInt(rs2)
	c.a.i32WrapI64()
	c.a.i32Eqz()
}

func (c *blockCtx) signedOverflowW(rs1, rs2 uint8) {
	c.loadInt(rs1)
	c.a.i32WrapI64()
	c.a.i32Const(minInt32)
	c.a.i32Eq()
	c.loadInt(rs2)
	c.a.i32WrapI64()
	c.a.i32Const(-1)
	c.a.i32Eq()
	c.a.i32And()
}

func (c *blockCtx) divSignedW(rs1, rs2 uint8) {
	c.divisorZeroW(rs2)
	c.a.ifI32()
	c.a.i32Const(-1)
	c.a.elseOp()
	c.signedOverflowW(rs1, rs2)
	c.a.ifI32()
	c.loadInt(rs1)
	c.a.i32WrapI64()
	c.a.elseOp()
	c.word32Pair(rs1, rs2)
	c.a.i32DivS()
	c.a.end()
	c.a.end()
	c.a.i64ExtendI32S()
}

func (c *blockCtx) divUnsignedW(rs1, rs2 uint8) {
	c.divisorZeroW(rs2)
	c.a.ifI32()
	c.a.i32Const(-1)
	c.a.elseOp()
	c.word32Pair(rs1, rs2)
	c.a.i32DivU()
	c.a.end()
	c.a.i64ExtendI32S()
}

func (c *blockCtx) remSignedW(rs1, rs2 uint8) {
	c.divisorZeroW(rs2)
	c.a.ifI32()
	c.loadInt(rs1)
	c.a.i32WrapI64()
	c.a.elseOp()
	c.signedOverflowW(rs1, rs2)
	c.a.ifI32()
	c.a.i32Const(0)
	c.a.elseOp()
	c.word32Pair(rs1, rs2)
	c.a.i32RemS()
	c.a.end()
	c.a.end()
	c.a.i64ExtendI32S()
}

func (c *blockCtx) remUnsignedW(rs1, rs2 uint8) {
	c.divisorZeroW(rs2)
	c.a.ifI32()
	c.loadInt(rs1)
	c.a.i32WrapI64()
	c.a.elseOp()
	c.word32Pair(rs1, rs2)
	c.a.i32RemU()
	c.a.end()
	c.a.i64ExtendI32S()
}

// mulHigh computes the high 64 bits of the double-width product of rs1 and
// rs2, interpreting each as signed or unsigned per signedA/signedB
// (MULH/MULHSU/MULHU all reduce to this). It first computes the unsigned
// high word with the standard 32x32-limb algorithm, then applies the
// two's-complement correction for any operand treated as signed
// (Hacker's Delight's mulhs-from-mulhu identity): subtract the other
// operand from the high word for each operand that is negative under its
// signed interpretation.
func (c *blockCtx) mulHigh(rs1, rs2 uint8, signedA, signedB bool) {
	w0 := c.newScratch()
	t := c.newScratch()
	w1 := c.newScratch()
	hi := c.newScratch()

	lo32 := func(reg uint8) { c.loadInt(reg); c.a.i64Const(0xffffffff); c.a.i64And() }
	hi32 := func(reg uint8) { c.loadInt(reg); c.a.i64Const(32); c.a.i64ShrU() }

	lo32(rs1)
	lo32(rs2)
	c.a.i64Mul()
	c.a.localSet(w0)

	hi32(rs1)
	lo32(rs2)
	c.a.i64Mul()
	c.a.localGet(w0)
	c.a.i64Const(32)
	c.a.i64ShrU()
	c.a.i64Add()
	c.a.localSet(t)

	c.a.localGet(t)
	c.a.i64Const(0xffffffff)
	c.a.i64And()
	lo32(rs1)
	hi32(rs2)
	c.a.i64Mul()
	c.a.i64Add()
	c.a.localSet(w1)

	hi32(rs1)
	hi32(rs2)
	c.a.i64Mul()
	c.a.localGet(t)
	c.a.i64Const(32)
	c.a.i64ShrU()
	c.a.i64Add()
	c.a.localGet(w1)
	c.a.i64Const(32)
	c.a.i64ShrU()
	c.a.i64Add()
	c.a.localSet(hi)

	if signedA {
		c.loadInt(rs1)
		c.a.i64Const(0)
		c.a.i64LtS()
		c.a.ifI64()
		c.a.localGet(hi)
		c.loadInt(rs2)
		c.a.i64Sub()
		c.a.elseOp()
		c.a.localGet(hi)
		c.a.end()
		c.a.localSet(hi)
	}
	if signedB {
		c.loadInt(rs2)
		c.a.i64Const(0)
		c.a.i64LtS()
		c.a.ifI64()
		c.a.localGet(hi)
		c.loadInt(rs1)
		c.a.i64Sub()
		c.a.elseOp()
		c.a.localGet(hi)
		c.a.end()
		c.a.localSet(hi)
	}

	c.a.localGet(hi)
}
