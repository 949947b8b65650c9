// Command tobj opens a Telda-2 object file and lets an operator browse
// its segments, symbol table and relocation table interactively.
package main

import (
	"fmt"
	"os"

	"github.com/technichron/telda/pkg/obj"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tobj <object-file>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tobj: %v\n", err)
		os.Exit(1)
	}
	object, err := obj.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tobj: %v\n", err)
		os.Exit(1)
	}

	if err := run(object, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "tobj: %v\n", err)
		os.Exit(1)
	}
}
