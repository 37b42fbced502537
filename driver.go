package main

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
	"golang.org/x/sys/unix"
)

// Options configures one translation run (spec §4.6/§6.1), mirroring the
// teacher's flag-driven CommandContext rather than a config file.
type Options struct {
	Output  string
	Verbose bool
	Debug   bool
	Opt     int
}

func verboseFromEnv() bool {
	return env.Bool("RV2WASM_VERBOSE")
}

// Run executes the full pipeline: load, decode+build the CFG, translate,
// emit, write. It guarantees no partial output file is ever left behind on
// failure (spec §7).
func Run(inputPath string, opts Options) ExitCode {
	opts.Verbose = opts.Verbose || verboseFromEnv()

	img, err := LoadELF(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv2wasm: %v\n", err)
		return ExitNotValidELF
	}
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "rv2wasm: loaded %d executable segment(s), entry 0x%x\n", len(img.Segments), img.Entry)
		for _, seg := range img.Segments {
			fmt.Fprintf(os.Stderr, "  segment 0x%x..0x%x (%d bytes)\n", seg.VAddr, seg.End(), len(seg.Data))
		}
	}

	g := BuildCFG(img)
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "rv2wasm: %d block(s) discovered\n", len(g.Blocks))
	}
	for _, blk := range g.Blocks {
		if blk.Illegal() {
			if seg, ok := img.SegmentContaining(blk.Start); ok {
				fmt.Fprintf(os.Stderr, "rv2wasm: illegal encoding in block at 0x%x (segment 0x%x..0x%x)\n", blk.Start, seg.VAddr, seg.End())
			} else {
				fmt.Fprintf(os.Stderr, "rv2wasm: illegal encoding in block at 0x%x\n", blk.Start)
			}
			return ExitDecodeFailure
		}
		if opts.Verbose {
			fmt.Fprintf(os.Stderr, "  block 0x%x..0x%x: %d op(s), term=%d%s\n", blk.Start, blk.End, len(blk.Ops), blk.Term, termRegisterAnnotation(blk))
		}
	}

	if opts.Debug {
		printDebugMap(img, g)
	}

	module, err := EmitModule(g, img, opts.Opt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv2wasm: %v\n", err)
		return ExitEmitFailure
	}

	if err := writeOutput(opts.Output, module); err != nil {
		fmt.Fprintf(os.Stderr, "rv2wasm: %v\n", err)
		return ExitIOError
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "rv2wasm: wrote %s (%d bytes)\n", opts.Output, len(module))
	}
	return ExitOK
}

// printDebugMap prints the PC-range-to-function-index mapping spec §6.1
// promises in --debug mode, annotated with the nearest symbol when the ELF
// carried a symbol table.
func printDebugMap(img *Image, g *Graph) {
	fmt.Fprintf(os.Stderr, "rv2wasm: debug function index map\n")
	for _, blk := range g.Blocks {
		fnIdx := blk.Index + 2
		name, ok := img.SymbolAt(blk.Start)
		if ok {
			fmt.Fprintf(os.Stderr, "  0x%x..0x%x -> func[%d] (%s)%s\n", blk.Start, blk.End, fnIdx, name, termRegisterAnnotation(blk))
		} else {
			fmt.Fprintf(os.Stderr, "  0x%x..0x%x -> func[%d]%s\n", blk.Start, blk.End, fnIdx, termRegisterAnnotation(blk))
		}
	}
}

// termRegisterAnnotation renders the ABI names of the registers a block's
// terminator reads (or, for a direct call, writes its link into), for
// --debug/--verbose diagnostics. Returns "" when the terminator carries no
// register operand worth naming (e.g. ECALL, EBREAK, an unconditional jump
// with rd=x0).
func termRegisterAnnotation(blk *Block) string {
	if len(blk.Ops) == 0 {
		return ""
	}
	last := blk.Ops[len(blk.Ops)-1]
	switch last.Mnem {
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return fmt.Sprintf(" [%s, %s]", ABIName(last.Rs1), ABIName(last.Rs2))
	case OpJALR:
		return fmt.Sprintf(" [%s]", ABIName(last.Rs1))
	case OpJAL:
		if last.Rd != 0 {
			return fmt.Sprintf(" [%s]", ABIName(last.Rd))
		}
	}
	return ""
}

// writeOutput preflights the destination with unix.Access (catching an
// unwritable directory before any translation work would otherwise be
// discarded) and then writes the module atomically via a temp-file rename,
// so a failed or interrupted write never leaves a truncated module behind.
func writeOutput(path string, data []byte) error {
	dir := "."
	if i := lastSlash(path); i >= 0 {
		dir = path[:i]
	}
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("output directory %q not writable: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".rv2wasm-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp output file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing module: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing module: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming module into place: %w", err)
	}
	return nil
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
