package main

// translateSyscall handles ECALL: the function returns the syscall
// sentinel (high bit set, low 31 bits the ecall's own PC) so the dispatcher
// can invoke the imported host syscall handler with that PC and continue
// guest execution at the PC the handler returns, normally the instruction
// following the ecall (spec §6.4/§7).
func (c *blockCtx) translateSyscall(blk *Block) error {
	ecallPC := blk.Ops[len(blk.Ops)-1].Addr
	if c.opt >= 1 {
		c.emitWriteback()
	}
	c.a.i32Const(EncodeSyscallSentinel(ecallPC))
	return nil
}
