// Command feauxasm assembles a source file written against the
// instruction set of kernel/isa into the binary program format
// kernel/asm.Decode reads back, or disassembles an already-encoded
// program with -d. It is host integration glue around kernel/asm, not
// part of the kernel core itself.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/intuitionamiga/feauxkernel/kernel/asm"
)

func main() {
	disassemble := flag.Bool("d", false, "disassemble the input instead of assembling it")
	output := flag.String("o", "", "output file (default, or -: stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: feauxasm [-d] [-o out] <file>")
		os.Exit(1)
	}
	in := flag.Arg(0)

	data, err := os.ReadFile(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "feauxasm: %v\n", err)
		os.Exit(1)
	}

	var out []byte
	if *disassemble {
		instrs, err := asm.Decode(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "feauxasm: %v\n", err)
			os.Exit(1)
		}
		out = []byte(asm.Disassemble(instrs))
	} else {
		instrs, err := asm.Assemble(string(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "feauxasm: %v\n", err)
			os.Exit(1)
		}
		out = asm.Encode(instrs)
	}

	if *output == "" || *output == "-" {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "feauxasm: %v\n", err)
		os.Exit(1)
	}
}
