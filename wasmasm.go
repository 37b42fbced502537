package main

import "github.com/tetratelabs/wabin/leb128"

// asm is a tiny structured-Wasm instruction writer. It plays the same role
// for this translator that the teacher's BufferWrapper/Writer pair plays for
// native machine code: every higher-level translate_*.go helper calls one of
// these methods instead of touching raw bytes directly.
type asm struct {
	buf []byte
}

func (a *asm) op(b byte) *asm {
	a.buf = append(a.buf, b)
	return a
}

func (a *asm) op2(b1, b2 byte) *asm {
	a.buf = append(a.buf, b1, b2)
	return a
}

func (a *asm) u32(v uint32) *asm {
	a.buf = append(a.buf, leb128.EncodeUint32(v)...)
	return a
}

func (a *asm) i32(v int32) *asm {
	a.buf = append(a.buf, leb128.EncodeInt32(v)...)
	return a
}

func (a *asm) i64(v int64) *asm {
	a.buf = append(a.buf, leb128.EncodeInt64(v)...)
	return a
}

func (a *asm) bytes() []byte { return a.buf }

// Control flow.
func (a *asm) unreachable() *asm { return a.op(0x00) }
func (a *asm) end() *asm        { return a.op(0x0b) }
func (a *asm) ret() *asm        { return a.op(0x0f) }
func (a *asm) drop() *asm       { return a.op(0x1a) }

// Value types, used as the blocktype immediate of ifI64/ifI32.
const (
	valTypeI32 = 0x7f
	valTypeI64 = 0x7e
	valTypeF32 = 0x7d
	valTypeF64 = 0x7c
)

// ifI64 starts a structured if with an i64 result, used to guard the
// RISC-V division/remainder edge cases that would otherwise make Wasm's
// div/rem instructions trap (§4.4).
func (a *asm) ifI64() *asm   { a.op(0x04); return a.op(valTypeI64) }
func (a *asm) ifI32() *asm   { a.op(0x04); return a.op(valTypeI32) }
func (a *asm) ifEmpty() *asm { a.op(0x04); return a.op(0x40) }
func (a *asm) elseOp() *asm  { return a.op(0x05) }
func (a *asm) call(fn uint32) *asm {
	a.op(0x10)
	return a.u32(fn)
}

func (a *asm) callIndirect(typeIdx, tableIdx uint32) *asm {
	a.op(0x11)
	a.u32(typeIdx)
	return a.u32(tableIdx)
}

func (a *asm) block(resultType byte) *asm { a.op(0x02); return a.op(resultType) }
func (a *asm) loop(resultType byte) *asm  { a.op(0x03); return a.op(resultType) }
func (a *asm) br(depth uint32) *asm       { a.op(0x0c); return a.u32(depth) }
func (a *asm) brIf(depth uint32) *asm     { a.op(0x0d); return a.u32(depth) }

// Locals and globals.
func (a *asm) localGet(i uint32) *asm  { a.op(0x20); return a.u32(i) }
func (a *asm) localSet(i uint32) *asm  { a.op(0x21); return a.u32(i) }
func (a *asm) localTee(i uint32) *asm  { a.op(0x22); return a.u32(i) }
func (a *asm) globalGet(i uint32) *asm { a.op(0x23); return a.u32(i) }

// Memory access. align is the alignment hint (log2), offset the constant
// immediate added to the dynamic address already on the stack.
func (a *asm) i32Load(offset uint32) *asm        { a.op(0x28); a.u32(2); return a.u32(offset) }
func (a *asm) i64Load(offset uint32) *asm        { a.op(0x29); a.u32(3); return a.u32(offset) }
func (a *asm) f32Load(offset uint32) *asm        { a.op(0x2a); a.u32(2); return a.u32(offset) }
func (a *asm) f64Load(offset uint32) *asm        { a.op(0x2b); a.u32(3); return a.u32(offset) }
func (a *asm) i32Load8S(offset uint32) *asm      { a.op(0x2c); a.u32(0); return a.u32(offset) }
func (a *asm) i32Load8U(offset uint32) *asm      { a.op(0x2d); a.u32(0); return a.u32(offset) }
func (a *asm) i32Load16S(offset uint32) *asm     { a.op(0x2e); a.u32(1); return a.u32(offset) }
func (a *asm) i32Load16U(offset uint32) *asm     { a.op(0x2f); a.u32(1); return a.u32(offset) }
func (a *asm) i64Load8S(offset uint32) *asm      { a.op(0x30); a.u32(0); return a.u32(offset) }
func (a *asm) i64Load8U(offset uint32) *asm      { a.op(0x31); a.u32(0); return a.u32(offset) }
func (a *asm) i64Load16S(offset uint32) *asm     { a.op(0x32); a.u32(1); return a.u32(offset) }
func (a *asm) i64Load16U(offset uint32) *asm     { a.op(0x33); a.u32(1); return a.u32(offset) }
func (a *asm) i64Load32S(offset uint32) *asm     { a.op(0x34); a.u32(2); return a.u32(offset) }
func (a *asm) i64Load32U(offset uint32) *asm     { a.op(0x35); a.u32(2); return a.u32(offset) }
func (a *asm) i32Store(offset uint32) *asm       { a.op(0x36); a.u32(2); return a.u32(offset) }
func (a *asm) i64Store(offset uint32) *asm       { a.op(0x37); a.u32(3); return a.u32(offset) }
func (a *asm) f32Store(offset uint32) *asm       { a.op(0x38); a.u32(2); return a.u32(offset) }
func (a *asm) f64Store(offset uint32) *asm       { a.op(0x39); a.u32(3); return a.u32(offset) }
func (a *asm) i32Store8(offset uint32) *asm      { a.op(0x3a); a.u32(0); return a.u32(offset) }
func (a *asm) i32Store16(offset uint32) *asm     { a.op(0x3b); a.u32(1); return a.u32(offset) }
func (a *asm) i64Store8(offset uint32) *asm      { a.op(0x3c); a.u32(0); return a.u32(offset) }
func (a *asm) i64Store16(offset uint32) *asm     { a.op(0x3d); a.u32(1); return a.u32(offset) }
func (a *asm) i64Store32(offset uint32) *asm     { a.op(0x3e); a.u32(2); return a.u32(offset) }

// Constants.
func (a *asm) i32Const(v int32) *asm { a.op(0x41); return a.i32(v) }
func (a *asm) i64Const(v int64) *asm { a.op(0x42); return a.i64(v) }

// Integer comparisons (i32).
func (a *asm) i32Eqz() *asm  { return a.op(0x45) }
func (a *asm) i32Eq() *asm   { return a.op(0x46) }
func (a *asm) i32Ne() *asm   { return a.op(0x47) }
func (a *asm) i32LtS() *asm  { return a.op(0x48) }
func (a *asm) i32LtU() *asm  { return a.op(0x49) }
func (a *asm) i32GtS() *asm  { return a.op(0x4a) }
func (a *asm) i32GtU() *asm  { return a.op(0x4b) }
func (a *asm) i32LeS() *asm  { return a.op(0x4c) }
func (a *asm) i32LeU() *asm  { return a.op(0x4d) }
func (a *asm) i32GeS() *asm  { return a.op(0x4e) }
func (a *asm) i32GeU() *asm  { return a.op(0x4f) }

// Integer comparisons (i64).
func (a *asm) i64Eqz() *asm { return a.op(0x50) }
func (a *asm) i64Eq() *asm  { return a.op(0x51) }
func (a *asm) i64Ne() *asm  { return a.op(0x52) }
func (a *asm) i64LtS() *asm { return a.op(0x53) }
func (a *asm) i64LtU() *asm { return a.op(0x54) }
func (a *asm) i64GtS() *asm { return a.op(0x55) }
func (a *asm) i64GtU() *asm { return a.op(0x56) }
func (a *asm) i64LeS() *asm { return a.op(0x57) }
func (a *asm) i64LeU() *asm { return a.op(0x58) }
func (a *asm) i64GeS() *asm { return a.op(0x59) }
func (a *asm) i64GeU() *asm { return a.op(0x5a) }

// i32 arithmetic/logic.
func (a *asm) i32Add() *asm  { return a.op(0x6a) }
func (a *asm) i32Sub() *asm  { return a.op(0x6b) }
func (a *asm) i32Mul() *asm  { return a.op(0x6c) }
func (a *asm) i32DivS() *asm { return a.op(0x6d) }
func (a *asm) i32DivU() *asm { return a.op(0x6e) }
func (a *asm) i32RemS() *asm { return a.op(0x6f) }
func (a *asm) i32RemU() *asm { return a.op(0x70) }
func (a *asm) i32And() *asm  { return a.op(0x71) }
func (a *asm) i32Or() *asm   { return a.op(0x72) }
func (a *asm) i32Xor() *asm  { return a.op(0x73) }
func (a *asm) i32Shl() *asm  { return a.op(0x74) }
func (a *asm) i32ShrS() *asm { return a.op(0x75) }
func (a *asm) i32ShrU() *asm { return a.op(0x76) }

// i64 arithmetic/logic.
func (a *asm) i64Add() *asm  { return a.op(0x7c) }
func (a *asm) i64Sub() *asm  { return a.op(0x7d) }
func (a *asm) i64Mul() *asm  { return a.op(0x7e) }
func (a *asm) i64DivS() *asm { return a.op(0x7f) }
func (a *asm) i64DivU() *asm { return a.op(0x80) }
func (a *asm) i64RemS() *asm { return a.op(0x81) }
func (a *asm) i64RemU() *asm { return a.op(0x82) }
func (a *asm) i64And() *asm  { return a.op(0x83) }
func (a *asm) i64Or() *asm   { return a.op(0x84) }
func (a *asm) i64Xor() *asm  { return a.op(0x85) }
func (a *asm) i64Shl() *asm  { return a.op(0x86) }
func (a *asm) i64ShrS() *asm { return a.op(0x87) }
func (a *asm) i64ShrU() *asm { return a.op(0x88) }

// f32/f64 arithmetic.
func (a *asm) f32Neg() *asm  { return a.op(0x8c) }
func (a *asm) f32Sqrt() *asm { return a.op(0x91) }
func (a *asm) f32Add() *asm  { return a.op(0x92) }
func (a *asm) f32Sub() *asm  { return a.op(0x93) }
func (a *asm) f32Mul() *asm  { return a.op(0x94) }
func (a *asm) f32Div() *asm  { return a.op(0x95) }
func (a *asm) f32Min() *asm  { return a.op(0x96) }
func (a *asm) f32Max() *asm  { return a.op(0x97) }
func (a *asm) f64Neg() *asm  { return a.op(0x9a) }
func (a *asm) f64Sqrt() *asm { return a.op(0x9f) }
func (a *asm) f64Add() *asm  { return a.op(0xa0) }
func (a *asm) f64Sub() *asm  { return a.op(0xa1) }
func (a *asm) f64Mul() *asm  { return a.op(0xa2) }
func (a *asm) f64Div() *asm  { return a.op(0xa3) }
func (a *asm) f64Min() *asm  { return a.op(0xa4) }
func (a *asm) f64Max() *asm  { return a.op(0xa5) }

func (a *asm) f32Eq() *asm { return a.op(0x5b) }
func (a *asm) f32Lt() *asm { return a.op(0x5d) }
func (a *asm) f32Le() *asm { return a.op(0x5f) }
func (a *asm) f64Eq() *asm { return a.op(0x61) }
func (a *asm) f64Lt() *asm { return a.op(0x63) }
func (a *asm) f64Le() *asm { return a.op(0x65) }

// Conversions and bit reinterpretation.
func (a *asm) i32WrapI64() *asm        { return a.op(0xa7) }
func (a *asm) i64ExtendI32S() *asm     { return a.op(0xac) }
func (a *asm) i64ExtendI32U() *asm     { return a.op(0xad) }
func (a *asm) i32TruncF32S() *asm      { return a.op(0xa8) }
func (a *asm) i32TruncF32U() *asm      { return a.op(0xa9) }
func (a *asm) i32TruncF64S() *asm      { return a.op(0xaa) }
func (a *asm) i32TruncF64U() *asm      { return a.op(0xab) }
func (a *asm) i64TruncF32S() *asm      { return a.op(0xae) }
func (a *asm) i64TruncF32U() *asm      { return a.op(0xaf) }
func (a *asm) i64TruncF64S() *asm      { return a.op(0xb0) }
func (a *asm) i64TruncF64U() *asm      { return a.op(0xb1) }
func (a *asm) f32ConvertI32S() *asm    { return a.op(0xb2) }
func (a *asm) f32ConvertI32U() *asm    { return a.op(0xb3) }
func (a *asm) f32ConvertI64S() *asm    { return a.op(0xb4) }
func (a *asm) f32ConvertI64U() *asm    { return a.op(0xb5) }
func (a *asm) f32DemoteF64() *asm      { return a.op(0xb6) }
func (a *asm) f64ConvertI32S() *asm    { return a.op(0xb7) }
func (a *asm) f64ConvertI32U() *asm    { return a.op(0xb8) }
func (a *asm) f64ConvertI64S() *asm    { return a.op(0xb9) }
func (a *asm) f64ConvertI64U() *asm    { return a.op(0xba) }
func (a *asm) f64PromoteF32() *asm     { return a.op(0xbb) }
func (a *asm) i32ReinterpretF32() *asm { return a.op(0xbc) }
func (a *asm) i64ReinterpretF64() *asm { return a.op(0xbd) }
func (a *asm) f32ReinterpretI32() *asm { return a.op(0xbe) }
func (a *asm) f64ReinterpretI64() *asm { return a.op(0xbf) }

// select is used to build branchless conditional-move sequences, e.g. the
// taken/fallthrough PC of a conditional branch and the AMO min/max forms.
func (a *asm) selectOp() *asm { return a.op(0x1b) }
