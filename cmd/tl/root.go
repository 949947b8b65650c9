package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/technichron/telda/internal/clilog"
	"github.com/technichron/telda/internal/config"
	"github.com/technichron/telda/pkg/link"
	"github.com/technichron/telda/pkg/obj"
)

// shebang is prepended to an executable link's output so it can be run
// directly; the Telda-2 VM interpreter consumes everything after it as
// an aalv object.
const shebang = "#!/bin/env t\n"

var (
	outputPath    string
	setEntry      string
	stripInternal bool
	executable    bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "tl [flags] <objects...>",
	Short: "Link Telda-2 relocatable objects",
	Long: `tl merges one or more relocatable objects produced by ta into a
single linked object, or — with -e — a standalone executable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLink,
}

func init() {
	defaults, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s reading .teldarc: %v\n", color.YellowString("warning:"), err)
	}

	out := defaults.OutputDir
	if out == "" {
		out = "a.to"
	}

	rootCmd.Flags().StringVarP(&outputPath, "out", "o", out, "output path")
	rootCmd.Flags().StringVarP(&setEntry, "set-entry", "E", defaults.EntrySymbol, "override the entry point (symbol name, or 0x... for an absolute zero-page offset); requires -e")
	rootCmd.Flags().BoolVarP(&stripInternal, "strip-internal", "S", false, "drop non-global symbols from the linked output")
	rootCmd.Flags().BoolVarP(&executable, "executable", "e", false, "produce a standalone executable instead of a further-linkable object")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func runLink(cmd *cobra.Command, args []string) error {
	log := clilog.New(verbose)

	if setEntry != "" && !executable {
		err := fmt.Errorf("-E/--set-entry requires -e/--executable")
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		return err
	}

	inputs := make([]link.Input, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s opening %q: %v\n", color.RedString("error:"), path, err)
			return err
		}
		o, err := obj.Decode(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s decoding %q: %v\n", color.RedString("error:"), path, err)
			return err
		}
		inputs = append(inputs, link.Input{Path: path, Object: o})
		log.Debug("loaded object", "path", path)
	}

	linked, err := link.Link(inputs, link.Options{
		SetEntry:      setEntry,
		StripInternal: stripInternal,
		Executable:    executable,
	})
	if err != nil {
		for _, line := range splitLines(err.Error()) {
			fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("error:"), line)
		}
		return err
	}
	log.Debug("linked", "objects", len(inputs))

	f, err := os.Create(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s creating %q: %v\n", color.RedString("error:"), outputPath, err)
		return err
	}
	defer f.Close()

	if executable {
		if _, err := f.WriteString(shebang); err != nil {
			return err
		}
		linked.FileOffset = uint32(len(shebang))
	}

	var body bytes.Buffer
	if err := obj.Encode(&body, linked); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		return err
	}
	if _, err := f.Write(body.Bytes()); err != nil {
		return err
	}

	if executable {
		if err := f.Chmod(0o755); err != nil {
			fmt.Fprintf(os.Stderr, "%s marking %q executable: %v\n", color.RedString("error:"), outputPath, err)
			return err
		}
	}

	color.Green("wrote %s", outputPath)
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
