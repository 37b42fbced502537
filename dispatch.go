package main

// buildDispatcher emits the body of the module's single exported "run"
// function: (state_ptr: i32, start_pc: i32) -> i32. It repeatedly invokes
// the block function table entry for the current PC until a block returns
// the halt sentinel, routing the syscall sentinel through the imported
// host.syscall function in between (spec §6.4).
//
// Table index convention: a block starting at guest address A lives at
// table slot A/2 (every valid block start is instruction-aligned, and the
// narrowest instruction is 2 bytes under RVC). Slots with no corresponding
// block are left null and trap on call_indirect, which is the correct
// behavior for a dispatch to an address that was never discovered as a
// leader (spec §7's "control transfers to addresses outside the known
// block set").
func buildDispatcher() []byte {
	a := &asm{}

	const pcLocal = 2 // locals: 0=state_ptr param, 1=start_pc param, 2=pc

	a.localGet(1)
	a.localSet(pcLocal)

	a.block(valTypeI32) // label depth 2 from inside the halt-check if
	a.loop(0x40)        // label depth 0/1 (loop itself; empty result)

	// Halt check: pc == SentinelHalt -> exit the block with status 0.
	a.localGet(pcLocal)
	a.i32Const(SentinelHalt)
	a.i32Eq()
	a.ifEmpty()
	a.i32Const(0)
	a.br(2)
	a.end()

	// Syscall check: any remaining negative pc is the syscall encoding.
	a.localGet(pcLocal)
	a.i32Const(0)
	a.i32LtS()
	a.ifI32()
	a.localGet(0) // state_ptr
	a.localGet(pcLocal)
	a.i32Const(0x7fffffff)
	a.i32And()
	a.call(0) // imported host.syscall, always function index 0
	a.elseOp()
	a.localGet(0) // state_ptr
	a.localGet(pcLocal)
	a.i32Const(1)
	a.i32ShrU()
	a.callIndirect(0, 0)
	a.end()
	a.localSet(pcLocal)

	a.br(0) // continue the loop
	a.end() // end loop
	// The loop never falls through; only the halt branch leaves the block.
	a.unreachable()
	a.end() // end block; leaves the i32 status pushed by the halt branch
	a.end() // end function

	return a.bytes()
}
