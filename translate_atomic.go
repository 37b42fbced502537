package main

import "fmt"

// translateAtomic handles RV64A: LR/SC and the AMO read-modify-write
// family. The translator targets a single logical hart per module
// instance, so no real inter-thread atomicity is needed (spec §4.4's
// "single-agent execution model"): LR/SC degenerate to a plain load plus a
// recorded reservation address, and every AMO becomes an ordinary
// load-compute-store sequence.
func (c *blockCtx) translateAtomic(op Op) error {
	switch op.Mnem {
	case OpLRW:
		return c.translateLR(op, false)
	case OpLRD:
		return c.translateLR(op, true)
	case OpSCW:
		return c.translateSC(op, false)
	case OpSCD:
		return c.translateSC(op, true)
	case OpAMOSWAPW, OpAMOADDW, OpAMOXORW, OpAMOANDW, OpAMOORW,
		OpAMOMINW, OpAMOMAXW, OpAMOMINUW, OpAMOMAXUW:
		c.translateAMOOp(op, false)
		return nil
	case OpAMOSWAPD, OpAMOADDD, OpAMOXORD, OpAMOANDD, OpAMOORD,
		OpAMOMIND, OpAMOMAXD, OpAMOMINUD, OpAMOMAXUD:
		c.translateAMOOp(op, true)
		return nil
	default:
		return fmt.Errorf("%w: unhandled atomic op %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
}

// translateLR loads the (possibly sign-extended) value at reg[rs1] into rd
// and records the guest address as the outstanding reservation.
func (c *blockCtx) translateLR(op Op, isD bool) error {
	c.a.localGet(0)
	c.loadInt(op.Rs1)
	c.a.i64Store(uint32(ReservationBase))
	c.storeInt(op.Rd, func() {
		off := c.effAddr(op.Rs1, 0)
		if isD {
			c.a.i64Load(off)
		} else {
			c.a.i64Load32S(off)
		}
	})
	return nil
}

// translateSC stores reg[rs2] to reg[rs1] only if the reservation still
// matches reg[rs1], writing 0 to rd on success and 1 on failure. Any SC,
// successful or not, invalidates the reservation (§4.4).
func (c *blockCtx) translateSC(op Op, isD bool) error {
	reservedHere := func() {
		c.a.localGet(0)
		c.a.i64Load(uint32(ReservationBase))
		c.loadInt(op.Rs1)
		c.a.i64Eq()
	}

	reservedHere()
	c.a.ifEmpty()
	off := c.effAddr(op.Rs1, 0)
	c.loadInt(op.Rs2)
	if isD {
		c.a.i64Store(off)
	} else {
		c.a.i32WrapI64()
		c.a.i32Store(off)
	}
	c.a.end()

	c.storeInt(op.Rd, func() {
		reservedHere()
		c.a.ifI64()
		c.a.i64Const(0)
		c.a.elseOp()
		c.a.i64Const(1)
		c.a.end()
	})

	c.a.localGet(0)
	c.a.i64Const(-1)
	c.a.i64Store(uint32(ReservationBase))
	return nil
}

// translateAMOOp performs the generic AMO sequence: load the old value
// (sign-extended for the W forms, matching rd's eventual sign-extension),
// compute the combined new value, store it back, then write the old value
// to rd.
func (c *blockCtx) translateAMOOp(op Op, isD bool) {
	old := c.newScratch()

	loadAddr := c.effAddr(op.Rs1, 0)
	if isD {
		c.a.i64Load(loadAddr)
	} else {
		c.a.i64Load32S(loadAddr)
	}
	c.a.localSet(old)

	storeAddr := c.effAddr(op.Rs1, 0)
	if isD {
		c.amoCombine64(op.Mnem, old, op.Rs2)
		c.a.i64Store(storeAddr)
	} else {
		c.amoCombine32(op.Mnem, old, op.Rs2)
		c.a.i32Store(storeAddr)
	}

	c.storeInt(op.Rd, func() { c.a.localGet(old) })
}

func (c *blockCtx) amoCombine64(mnem Mnemonic, old uint32, rs2 uint8) {
	switch mnem {
	case OpAMOSWAPD:
		c.loadInt(rs2)
	case OpAMOADDD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64Add()
	case OpAMOXORD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64Xor()
	case OpAMOANDD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64And()
	case OpAMOORD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64Or()
	case OpAMOMIND:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64LtS()
		c.a.selectOp()
	case OpAMOMAXD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64GtS()
		c.a.selectOp()
	case OpAMOMINUD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64LtU()
		c.a.selectOp()
	case OpAMOMAXUD:
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.localGet(old)
		c.loadInt(rs2)
		c.a.i64GtU()
		c.a.selectOp()
	}
}

func (c *blockCtx) amoCombine32(mnem Mnemonic, old uint32, rs2 uint8) {
	oldW := func() { c.a.localGet(old); c.a.i32WrapI64() }
	rs2W := func() { c.loadInt(rs2); c.a.i32WrapI64() }
	switch mnem {
	case OpAMOSWAPW:
		rs2W()
	case OpAMOADDW:
		oldW()
		rs2W()
		c.a.i32Add()
	case OpAMOXORW:
		oldW()
		rs2W()
		c.a.i32Xor()
	case OpAMOANDW:
		oldW()
		rs2W()
		c.a.i32And()
	case OpAMOORW:
		oldW()
		rs2W()
		c.a.i32Or()
	case OpAMOMINW:
		oldW()
		rs2W()
		oldW()
		rs2W()
		c.a.i32LtS()
		c.a.selectOp()
	case OpAMOMAXW:
		oldW()
		rs2W()
		oldW()
		rs2W()
		c.a.i32GtS()
		c.a.selectOp()
	case OpAMOMINUW:
		oldW()
		rs2W()
		oldW()
		rs2W()
		c.a.i32LtU()
		c.a.selectOp()
	case OpAMOMAXUW:
		oldW()
		rs2W()
		oldW()
		rs2W()
		c.a.i32GtU()
		c.a.selectOp()
	}
}
