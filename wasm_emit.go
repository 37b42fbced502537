package main

import (
	"fmt"

	"github.com/tetratelabs/wabin/leb128"
)

// Wasm section ids (binary format §5.5).
const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secTable    = 4
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secElem     = 9
	secCode     = 10
)

// Function type indices. Every translated block shares one signature; the
// imported host.syscall and the exported dispatcher share another (spec §6.4).
const (
	funcTypeBlock = 0 // (state_ptr: i32) -> i32
	funcTypeRun   = 1 // (state_ptr: i32, pc: i32) -> i32
)

// guestSlack is extra linear-memory headroom past the highest loaded
// segment, for the guest stack and any heap growth the translated program
// performs at runtime. The Loader only captures PT_LOAD/PF_X segments
// (code, spec §4.1), so this also has to cover data the guest addresses
// without a backing segment of its own.
const guestSlack = 16 << 20

// EmitModule assembles the complete Wasm binary for g: one function per
// block plus the exported "run" dispatcher, wired together through a
// call_indirect table indexed by guestAddr/2 (spec §6).
func EmitModule(g *Graph, img *Image, opt int) ([]byte, error) {
	funcSec, codeSec, tableSize, elemSec, err := buildFunctions(g, opt)
	if err != nil {
		return nil, err
	}

	buf := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, section(secType, typeSection())...)
	buf = append(buf, section(secImport, importSection())...)
	buf = append(buf, section(secFunction, funcSec)...)
	buf = append(buf, section(secTable, tableSection(tableSize))...)
	buf = append(buf, section(secMemory, memorySection(img))...)
	buf = append(buf, section(secGlobal, globalSection(img))...)
	buf = append(buf, section(secExport, exportSection())...)
	buf = append(buf, section(secElem, elemSec)...)
	buf = append(buf, section(secCode, codeSec)...)
	return buf, nil
}

func section(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, leb128.EncodeUint32(uint32(len(body)))...)
	return append(out, body...)
}

func writeName(a *asm, s string) {
	a.u32(uint32(len(s)))
	a.buf = append(a.buf, s...)
}

func typeSection() []byte {
	a := &asm{}
	a.u32(2)

	a.op(0x60)
	a.u32(1)
	a.op(valTypeI32)
	a.u32(1)
	a.op(valTypeI32)

	a.op(0x60)
	a.u32(2)
	a.op(valTypeI32)
	a.op(valTypeI32)
	a.u32(1)
	a.op(valTypeI32)

	return a.bytes()
}

// importSection declares the single host hook a translated module needs:
// the guest's ecall is routed here with the state pointer and the faulting
// PC (spec §6.4's syscall sentinel), and returns the resume PC.
func importSection() []byte {
	a := &asm{}
	a.u32(1)
	writeName(a, "host")
	writeName(a, "syscall")
	a.op(0x00)
	a.u32(funcTypeRun)
	return a.bytes()
}

type localDecl struct {
	count uint32
	typ   byte
}

func funcBody(locals []localDecl, code []byte) []byte {
	body := &asm{}
	body.u32(uint32(len(locals)))
	for _, l := range locals {
		body.u32(l.count)
		body.op(l.typ)
	}
	body.buf = append(body.buf, code...)

	out := &asm{}
	out.u32(uint32(len(body.buf)))
	out.buf = append(out.buf, body.buf...)
	return out.bytes()
}

// buildFunctions translates every block and lays out the function and code
// sections in a fixed order: import index 0 is host.syscall, local index 1
// is the dispatcher, and local indices 2..len(g.Blocks)+1 are the blocks in
// g.Blocks order (ascending start address, matching Block.Index).
func buildFunctions(g *Graph, opt int) (funcSec, codeSec []byte, tableSize uint32, elemSec []byte, err error) {
	fa := &asm{}
	fa.u32(uint32(1 + len(g.Blocks)))
	fa.u32(funcTypeRun)
	for range g.Blocks {
		fa.u32(funcTypeBlock)
	}

	ca := &asm{}
	ca.u32(uint32(1 + len(g.Blocks)))
	ca.buf = append(ca.buf, funcBody([]localDecl{{count: 1, typ: valTypeI32}}, buildDispatcher())...)

	ea := &asm{}
	ea.u32(uint32(len(g.Blocks)))

	var maxSlot uint32
	for _, blk := range g.Blocks {
		body, numLocals, terr := TranslateBlock(g, blk, opt)
		if terr != nil {
			return nil, nil, 0, nil, fmt.Errorf("block at 0x%x: %w", blk.Start, terr)
		}
		var locals []localDecl
		if numLocals > 0 {
			locals = []localDecl{{count: numLocals, typ: valTypeI64}}
		}
		ca.buf = append(ca.buf, funcBody(locals, body)...)

		slot := uint32(blk.Start / 2)
		if slot+1 > maxSlot {
			maxSlot = slot + 1
		}

		fnIdx := uint32(blk.Index) + 2
		ea.u32(0) // table index 0
		ea.op(0x41)
		ea.i32(int32(slot))
		ea.end()
		ea.u32(1)
		ea.u32(fnIdx)
	}

	if maxSlot == 0 {
		maxSlot = 1
	}
	return fa.bytes(), ca.bytes(), maxSlot, ea.bytes(), nil
}

func tableSection(size uint32) []byte {
	a := &asm{}
	a.u32(1)
	a.op(0x70) // funcref
	a.op(0x00) // limits: min only
	a.u32(size)
	return a.bytes()
}

// memorySection sizes linear memory to cover the machine-state region plus
// every loaded code segment plus guestSlack headroom for the guest stack.
func memorySection(img *Image) []byte {
	var maxEnd uint64
	for _, seg := range img.Segments {
		if seg.End() > maxEnd {
			maxEnd = seg.End()
		}
	}
	total := uint64(GuestRAMBase) + maxEnd + guestSlack
	pages := uint32((total + 65535) / 65536)
	if pages < 1 {
		pages = 1
	}
	a := &asm{}
	a.u32(1)
	a.op(0x00)
	a.u32(pages)
	return a.bytes()
}

// globalSection defines the two constant globals the contract in spec §6.2
// promises the host: the program's entry point and the state-region base
// offset (always 0, since the state region is the first thing in memory).
func globalSection(img *Image) []byte {
	a := &asm{}
	a.u32(2)

	a.op(valTypeI32)
	a.op(0x00) // immutable
	a.i32Const(int32(uint32(img.Entry)))
	a.end()

	a.op(valTypeI32)
	a.op(0x00) // immutable
	a.i32Const(int32(IntRegBase))
	a.end()

	return a.bytes()
}

func exportSection() []byte {
	a := &asm{}
	a.u32(4)
	writeName(a, "run")
	a.op(0x00)
	a.u32(1)
	writeName(a, "memory")
	a.op(0x02)
	a.u32(0)
	writeName(a, "entry_pc")
	a.op(0x03)
	a.u32(0)
	writeName(a, "state_base")
	a.op(0x03)
	a.u32(1)
	return a.bytes()
}
