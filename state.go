package main

// Machine state region layout. Every translated Wasm function receives a
// pointer to this region, and the register file lives here rather than in
// Wasm locals, so the host can inspect and mutate guest state at a
// syscall boundary the same way the teacher's ExecutableBuilder keeps its
// register file addressable rather than hidden in native registers. At
// --opt 1 and above a block caches the integer registers it touches in
// locals and writes them back here before it returns.
const (
	// IntRegBase is the byte offset of x0..x31, 8 bytes each.
	IntRegBase = 0
	// IntRegSize is the size in bytes of the integer register file.
	IntRegSize = 32 * 8

	// FloatRegBase is the byte offset of f0..f31, 8 bytes each.
	FloatRegBase = IntRegBase + IntRegSize
	// FloatRegSize is the size in bytes of the floating-point register file.
	FloatRegSize = 32 * 8

	// ReservationBase holds the LR/SC reservation address (§4.4).
	ReservationBase = FloatRegBase + FloatRegSize
	// ReservationSize is the width of the reservation slot.
	ReservationSize = 8

	// StateSize is the total size of the fixed machine-state region.
	// Guest RAM begins immediately after it.
	StateSize = 520

	// GuestRAMBase is where translated loads/stores address guest memory,
	// i.e. the offset in linear memory where guest address 0 is mapped.
	GuestRAMBase = StateSize
)

// IntRegOffset returns the byte offset of integer register r (0..31).
func IntRegOffset(r uint8) int32 {
	return int32(IntRegBase) + int32(r)*8
}

// FloatRegOffset returns the byte offset of floating-point register r (0..31).
func FloatRegOffset(r uint8) int32 {
	return int32(FloatRegBase) + int32(r)*8
}

// Dispatcher return sentinels (§6.4).
const (
	// SentinelHalt signals the dispatcher loop should return to the host.
	SentinelHalt int32 = -1
	// SyscallBit, set in a returned PC, signals a syscall at the low 31 bits.
	SyscallBit int32 = 1 << 31
)

// EncodeSyscallSentinel packs an instruction address into the syscall
// sentinel convention: high bit set, low 31 bits hold the PC.
func EncodeSyscallSentinel(pc uint64) int32 {
	return int32(uint32(pc)&0x7fffffff) | SyscallBit
}
