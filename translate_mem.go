package main

import "fmt"

// translateLoad handles LB/LH/LW/LD/LBU/LHU/LWU. Effective address is
// reg[rs1] + sign-extended immediate, interpreted as an offset into guest
// RAM (spec §4.4, §6.2's width/signedness table).
func (c *blockCtx) translateLoad(op Op) error {
	switch op.Mnem {
	case OpLB:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load8S(off) })
	case OpLBU:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load8U(off) })
	case OpLH:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load16S(off) })
	case OpLHU:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load16U(off) })
	case OpLW:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load32S(off) })
	case OpLWU:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load32U(off) })
	case OpLD:
		c.storeInt(op.Rd, func() { off := c.effAddr(op.Rs1, op.Imm); c.a.i64Load(off) })
	default:
		return fmt.Errorf("%w: unhandled load %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
	return nil
}

// translateStore handles SB/SH/SW/SD. The value register is rs2, the base
// register rs1 (spec §6.2).
func (c *blockCtx) translateStore(op Op) error {
	// Wasm store instructions pop [addr, value] in that push order, so the
	// address must land on the stack before the value does.
	emitAddr := func() uint32 { return c.effAddr(op.Rs1, op.Imm) }
	switch op.Mnem {
	case OpSB:
		off := emitAddr()
		c.loadInt(op.Rs2)
		c.a.i32WrapI64()
		c.a.i32Store8(off)
	case OpSH:
		off := emitAddr()
		c.loadInt(op.Rs2)
		c.a.i32WrapI64()
		c.a.i32Store16(off)
	case OpSW:
		off := emitAddr()
		c.loadInt(op.Rs2)
		c.a.i32WrapI64()
		c.a.i32Store(off)
	case OpSD:
		off := emitAddr()
		c.loadInt(op.Rs2)
		c.a.i64Store(off)
	default:
		return fmt.Errorf("%w: unhandled store %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
	return nil
}
