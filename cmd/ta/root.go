package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/technichron/telda/internal/clilog"
	"github.com/technichron/telda/internal/config"
	"github.com/technichron/telda/pkg/asm"
	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/obj"
)

var (
	outputPath  string
	dumpOutput  bool
	verbose     bool
	listOpcodes bool
)

var rootCmd = &cobra.Command{
	Use:   "ta [flags] <source>",
	Short: "Assemble a Telda-2 source file into a relocatable object",
	Long: `ta reads one Telda-2 assembly source file, including any files it
pulls in with .include, and writes a relocatable object ready for tl.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssemble,
}

func init() {
	defaults, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s reading .teldarc: %v\n", color.YellowString("warning:"), err)
	}

	rootCmd.Flags().StringVarP(&outputPath, "out", "o", defaults.OutputDir, "output object path (default: <source>.to)")
	rootCmd.Flags().BoolVar(&dumpOutput, "dump", false, "print a human-readable dump instead of the binary object")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&listOpcodes, "list-opcodes", false, "list every opcode, mnemonic and operand shape, then exit")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	log := clilog.New(verbose)

	if listOpcodes {
		for _, m := range isa.Mnemonics() {
			fmt.Printf("%-10s %-4d %s\n", m.Name, m.OpCode, m.Shape)
		}
		return nil
	}

	if len(args) != 1 {
		return cmd.Usage()
	}
	sourcePath := args[0]

	log.Debug("assembling", "source", sourcePath)
	object, err := asm.AssembleFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		return err
	}
	log.Debug("assembled", "source", sourcePath)

	if dumpOutput {
		return obj.Dump(os.Stdout, object)
	}

	out := outputPath
	if out == "" {
		out = sourcePath + ".to"
	}

	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s creating %q: %v\n", color.RedString("error:"), out, err)
		return err
	}
	defer f.Close()

	if err := obj.Encode(f, object); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		return err
	}

	color.Green("wrote %s", out)
	return nil
}
