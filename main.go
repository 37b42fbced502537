package main

import (
	"flag"
	"fmt"
	"os"
)

// translator <input.elf> -o <output.wasm> [--verbose] [--debug] [--opt 0|1|2]
func main() {
	var (
		outShort     = flag.String("o", "", "output Wasm module path")
		outLong      = flag.String("output", "", "output Wasm module path")
		verboseShort = flag.Bool("v", false, "verbose: per-segment and per-block statistics")
		verboseLong  = flag.Bool("verbose", false, "verbose: per-segment and per-block statistics")
		debug        = flag.Bool("debug", false, "include a guest-PC-to-function-index map")
		opt          = flag.Int("opt", 1, "optimization level: 0 (none), 1 (register caching, default), 2 (straight-line block fusion)")
	)
	flag.Parse()

	output := *outShort
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "output" {
			output = *outLong
		}
	})

	args := flag.Args()
	if len(args) != 1 || output == "" {
		fmt.Fprintln(os.Stderr, "usage: translator <input.elf> -o <output.wasm> [--verbose] [--debug] [--opt 0|1|2]")
		os.Exit(int(ExitIOError))
	}
	if *opt < 0 || *opt > 2 {
		fmt.Fprintf(os.Stderr, "rv2wasm: --opt must be 0, 1, or 2, got %d\n", *opt)
		os.Exit(int(ExitIOError))
	}

	opts := Options{
		Output:  output,
		Verbose: *verboseShort || *verboseLong,
		Debug:   *debug,
		Opt:     *opt,
	}

	os.Exit(int(Run(args[0], opts)))
}
