package main

import (
	"debug/elf"
	"fmt"
	"sort"
)

// Segment is an executable (PT_LOAD, PF_X) segment of the guest binary.
type Segment struct {
	VAddr  uint64 // virtual base address
	Offset uint64 // file offset
	Data   []byte // file contents of the segment
}

// End returns the exclusive virtual end address of the segment.
func (s Segment) End() uint64 {
	return s.VAddr + uint64(len(s.Data))
}

// Symbol is a named code address from the ELF symbol table, when present.
type Symbol struct {
	Name  string
	Value uint64
}

// Image is the parsed form of a guest ELF, everything the Decoder and CFG
// Builder need and nothing more (spec §4.1).
type Image struct {
	Entry    uint64
	Segments []Segment
	Symbols  []Symbol // sorted by Value, may be empty
}

// LoadELF parses a little-endian RV64 ELF executable. It fails fast with a
// single diagnostic on the first offending condition, per spec §4.1/§7.
func LoadELF(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("%w: class %v", ErrWrongClass, f.Class)
	}
	if f.ByteOrder != nil && f.ByteOrder.String() != "LittleEndian" {
		return nil, fmt.Errorf("%w: byte order %v", ErrWrongByteOrder, f.ByteOrder)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%w: machine %v", ErrWrongMachine, f.Machine)
	}

	img := &Image{Entry: f.Entry}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Flags&elf.PF_X == 0 {
			continue
		}
		data := make([]byte, prog.Filesz)
		if prog.Filesz > 0 {
			r := prog.Open()
			if _, err := r.Read(data); err != nil {
				return nil, fmt.Errorf("%w: segment at 0x%x: %v", ErrSegmentOOBounds, prog.Vaddr, err)
			}
		}
		img.Segments = append(img.Segments, Segment{
			VAddr:  prog.Vaddr,
			Offset: prog.Off,
			Data:   data,
		})
	}

	if len(img.Segments) == 0 {
		return nil, ErrNoExecSegment
	}

	sort.Slice(img.Segments, func(i, j int) bool {
		return img.Segments[i].VAddr < img.Segments[j].VAddr
	})

	if syms, err := f.Symbols(); err == nil {
		for _, s := range syms {
			if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 {
				continue
			}
			img.Symbols = append(img.Symbols, Symbol{Name: s.Name, Value: s.Value})
		}
		sort.Slice(img.Symbols, func(i, j int) bool {
			return img.Symbols[i].Value < img.Symbols[j].Value
		})
	}

	return img, nil
}

// SegmentsForCode returns the executable segments in ascending virtual-base
// order (spec §4.1's segments_for_code).
func (img *Image) SegmentsForCode() []Segment {
	return img.Segments
}

// SegmentContaining returns the segment whose virtual range contains addr,
// or false if none does.
func (img *Image) SegmentContaining(addr uint64) (Segment, bool) {
	for _, s := range img.Segments {
		if addr >= s.VAddr && addr < s.End() {
			return s, true
		}
	}
	return Segment{}, false
}

// SymbolAt returns the name of the function symbol exactly at addr, if any.
func (img *Image) SymbolAt(addr uint64) (string, bool) {
	i := sort.Search(len(img.Symbols), func(i int) bool { return img.Symbols[i].Value >= addr })
	if i < len(img.Symbols) && img.Symbols[i].Value == addr {
		return img.Symbols[i].Name, true
	}
	return "", false
}
