package main

import "fmt"

// translateBranch emits a conditional branch terminator: writeback (if
// caching), then a branchless select between the taken and fallthrough
// successor PCs, which is exactly what the dispatcher-return convention
// of spec §6.4 wants as the function's i32 result.
func (c *blockCtx) translateBranch(blk *Block) error {
	op := blk.Ops[len(blk.Ops)-1]
	taken, fallthroughPC := blk.Successors[0], blk.Successors[1]

	if c.opt >= 1 {
		c.emitWriteback()
	}

	c.a.i32Const(int32(uint32(taken)))
	c.a.i32Const(int32(uint32(fallthroughPC)))

	c.loadInt(op.Rs1)
	c.loadInt(op.Rs2)
	switch op.Mnem {
	case OpBEQ:
		c.a.i64Eq()
	case OpBNE:
		c.a.i64Ne()
	case OpBLT:
		c.a.i64LtS()
	case OpBGE:
		c.a.i64GeS()
	case OpBLTU:
		c.a.i64LtU()
	case OpBGEU:
		c.a.i64GeU()
	default:
		return fmt.Errorf("%w: unhandled branch %v at 0x%x", ErrModuleInvalid, op.Mnem, op.Addr)
	}
	c.a.selectOp()
	return nil
}

// translateJump handles unconditional direct control transfer: JAL with
// rd == 0 (TermJmp, a plain jump) and JAL with rd != 0 (TermCall, which
// also writes the return address into rd).
func (c *blockCtx) translateJump(blk *Block) error {
	op := blk.Ops[len(blk.Ops)-1]
	target := blk.Successors[0]

	if blk.Term == TermCall {
		retAddr := int64(op.Addr) + int64(op.Len)
		c.storeInt(op.Rd, func() { c.a.i64Const(retAddr) })
	}
	if c.opt >= 1 {
		c.emitWriteback()
	}
	c.a.i32Const(int32(uint32(target)))
	return nil
}

// translateIndirectJump handles JALR: target = (reg[rs1] + imm) & ~1,
// computed into a scratch local before rd is overwritten so that
// JALR rd, 0(rd) (rd aliasing rs1) still reads the pre-write value
// (spec §6.1).
func (c *blockCtx) translateIndirectJump(blk *Block) error {
	op := blk.Ops[len(blk.Ops)-1]
	scratch := c.newScratch()

	c.loadInt(op.Rs1)
	c.a.i64Const(op.Imm)
	c.a.i64Add()
	c.a.i64Const(-2) // ~1: clear the low bit per the JALR target rule
	c.a.i64And()
	c.a.localSet(scratch)

	if op.Rd != 0 {
		retAddr := int64(op.Addr) + int64(op.Len)
		c.storeInt(op.Rd, func() { c.a.i64Const(retAddr) })
	}
	if c.opt >= 1 {
		c.emitWriteback()
	}
	c.a.localGet(scratch)
	c.a.i32WrapI64()
	return nil
}
