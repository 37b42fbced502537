package main

import "fmt"

// translateInt handles every ClassI operation except the control-transfer
// terminators, which translateTerminator/translate_branch.go own instead.
func (c *blockCtx) translateInt(op Op) error {
	switch op.Mnem {
	case OpLUI:
		c.storeInt(op.Rd, func() { c.a.i64Const(op.Imm) })
		return nil
	case OpAUIPC:
		c.storeInt(op.Rd, func() { c.a.i64Const(int64(op.Addr) + op.Imm) })
		return nil

	case OpLB, OpLH, OpLW, OpLD, OpLBU, OpLHU, OpLWU:
		return c.translateLoad(op)
	case OpSB, OpSH, OpSW, OpSD:
		return c.translateStore(op)

	case OpADDI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm); c.a.i64Add() })
		return nil
	case OpSLTI:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i64Const(op.Imm)
			c.a.i64LtS()
			c.a.i64ExtendI32U()
		})
		return nil
	case OpSLTIU:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i64Const(op.Imm)
			c.a.i64LtU()
			c.a.i64ExtendI32U()
		})
		return nil
	case OpXORI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm); c.a.i64Xor() })
		return nil
	case OpORI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm); c.a.i64Or() })
		return nil
	case OpANDI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm); c.a.i64And() })
		return nil
	case OpSLLI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm & 0x3f); c.a.i64Shl() })
		return nil
	case OpSRLI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm & 0x3f); c.a.i64ShrU() })
		return nil
	case OpSRAI:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.a.i64Const(op.Imm & 0x3f); c.a.i64ShrS() })
		return nil

	case OpADD:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64Add() })
		return nil
	case OpSUB:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64Sub() })
		return nil
	case OpSLL:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.loadInt(op.Rs2)
			c.a.i64Const(0x3f)
			c.a.i64And()
			c.a.i64Shl()
		})
		return nil
	case OpSLT:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64LtS(); c.a.i64ExtendI32U() })
		return nil
	case OpSLTU:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64LtU(); c.a.i64ExtendI32U() })
		return nil
	case OpXOR:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64Xor() })
		return nil
	case OpSRL:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.loadInt(op.Rs2)
			c.a.i64Const(0x3f)
			c.a.i64And()
			c.a.i64ShrU()
		})
		return nil
	case OpSRA:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.loadInt(op.Rs2)
			c.a.i64Const(0x3f)
			c.a.i64And()
			c.a.i64ShrS()
		})
		return nil
	case OpOR:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64Or() })
		return nil
	case OpAND:
		c.storeInt(op.Rd, func() { c.loadInt(op.Rs1); c.loadInt(op.Rs2); c.a.i64And() })
		return nil

	// Word-form variants: operate on the low 32 bits of the source
	// register(s) and sign-extend the 32-bit result back to 64 bits
	// (spec §6.3's "*W instructions ignore the upper 32 bits of their
	// register operands").
	case OpADDIW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.a.i32Const(int32(op.Imm))
			c.a.i32Add()
			c.a.i64ExtendI32S()
		})
		return nil
	case OpSLLIW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.a.i32Const(int32(op.Imm & 0x1f))
			c.a.i32Shl()
			c.a.i64ExtendI32S()
		})
		return nil
	case OpSRLIW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.a.i32Const(int32(op.Imm & 0x1f))
			c.a.i32ShrU()
			c.a.i64ExtendI32S()
		})
		return nil
	case OpSRAIW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.a.i32Const(int32(op.Imm & 0x1f))
			c.a.i32ShrS()
			c.a.i64ExtendI32S()
		})
		return nil
	case OpADDW:
		c.storeInt(op.Rd, func() { c.word2(op.Rs1, op.Rs2); c.a.i32Add(); c.a.i64ExtendI32S() })
		return nil
	case OpSUBW:
		c.storeInt(op.Rd, func() { c.word2(op.Rs1, op.Rs2); c.a.i32Sub(); c.a.i64ExtendI32S() })
		return nil
	case OpSLLW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.loadInt(op.Rs2)
			c.a.i32WrapI64()
			c.a.i32Const(0x1f)
			c.a.i32And()
			c.a.i32Shl()
			c.a.i64ExtendI32S()
		})
		return nil
	case OpSRLW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.loadInt(op.Rs2)
			c.a.i32WrapI64()
			c.a.i32Const(0x1f)
			c.a.i32And()
			c.a.i32ShrU()
			c.a.i64ExtendI32S()
		})
		return nil
	case OpSRAW:
		c.storeInt(op.Rd, func() {
			c.loadInt(op.Rs1)
			c.a.i32WrapI64()
			c.loadInt(op.Rs2)
			c.a.i32WrapI64()
			c.a.i32Const(0x1f)
			c.a.i32And()
			c.a.i32ShrS()
			c.a.i64ExtendI32S()
		})
		return nil

	case OpFENCE, OpFENCEI, OpPAUSE:
		// Single-agent translation model: no reordering is possible and
		// there is no separate instruction cache to invalidate (§4.4).
		return nil

	default:
		return fmt.Errorf("%w: unhandled integer op %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
}

// word2 pushes the low 32 bits of rs1 then rs2, for *W register-register ops.
func (c *blockCtx) word2(rs1, rs2 uint8) {
	c.loadInt(rs1)
	c.a.i32WrapI64()
	c.loadInt(rs2)
	c.a.i32WrapI64()
}

// effAddr emits the dynamic i32 guest-memory operand (low 32 bits of
// reg[rs1], with a negative immediate already added to it) and returns the
// static offset to add to it: GuestRAMBase plus a non-negative immediate,
// both known at translate time and folded into the Wasm memory
// instruction's offset immediate (spec §4.4's "guest address translation
// is the identity mapping onto the region following the state area").
func (c *blockCtx) effAddr(rs1 uint8, imm int64) uint32 {
	c.loadInt(rs1)
	if imm < 0 {
		c.a.i64Const(imm)
		c.a.i64Add()
		imm = 0
	}
	c.a.i32WrapI64()
	return uint32(GuestRAMBase) + uint32(imm)
}
