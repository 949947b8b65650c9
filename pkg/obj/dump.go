package obj

import (
	"fmt"
	"io"
	"sort"
)

// Dump writes a detailed, human-readable representation of o to w.
// This output is for debugging and inspection, not for parsing —
// round-tripping goes through Encode/Decode instead.
func Dump(w io.Writer, o *Object) error {
	d := &dumper{w: w, o: o}
	return d.dump()
}

type dumper struct {
	w io.Writer
	o *Object
}

func (d *dumper) dump() error {
	d.dumpSegments()
	d.dumpSymbols()
	d.dumpRelocations()
	d.dumpEntry()
	return nil
}

func (d *dumper) dumpSegments() {
	fmt.Fprintln(d.w, "=== Segments ===")
	for _, segType := range []SegmentType{SegmentText, SegmentRoData, SegmentData, SegmentBss} {
		seg, ok := d.o.Segments[segType]
		if !ok || seg.Size() == 0 {
			continue
		}
		fmt.Fprintf(d.w, "  %-6s %d bytes\n", segType, seg.Size())
		if segType != SegmentBss {
			fmt.Fprintf(d.w, "    %s\n", formatBytes(seg.Data))
		}
	}
	fmt.Fprintln(d.w)
}

func (d *dumper) dumpSymbols() {
	symbols := append([]Symbol(nil), d.o.Symbols...)
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })

	fmt.Fprintf(d.w, "=== Symbols (%d) ===\n", len(symbols))
	if len(symbols) == 0 {
		fmt.Fprintln(d.w, "(none)")
		fmt.Fprintln(d.w)
		return
	}
	for _, sym := range symbols {
		vis := "internal"
		if sym.Global {
			vis = "global"
		}
		if !sym.Defined() {
			fmt.Fprintf(d.w, "  %-24s (undefined, %s)\n", sym.Name, vis)
			continue
		}
		fmt.Fprintf(d.w, "  %-24s %s+0x%04X (%s)\n", sym.Name, sym.Segment, sym.Location, vis)
	}
	fmt.Fprintln(d.w)
}

func (d *dumper) dumpRelocations() {
	fmt.Fprintf(d.w, "=== Relocations (%d) ===\n", len(d.o.Relocations))
	if len(d.o.Relocations) == 0 {
		fmt.Fprintln(d.w, "(none)")
		fmt.Fprintln(d.w)
		return
	}
	for _, r := range d.o.Relocations {
		name := "?"
		if r.Symbol >= 0 && r.Symbol < len(d.o.Symbols) {
			name = d.o.Symbols[r.Symbol].Name
		}
		format := "absolute"
		if r.Format == RelocationBigR {
			format = "big"
		}
		fmt.Fprintf(d.w, "  %s+0x%04X -> %s (%s)\n", r.Segment, r.Location, name, format)
	}
	fmt.Fprintln(d.w)
}

func (d *dumper) dumpEntry() {
	fmt.Fprintln(d.w, "=== Entry ===")
	if d.o.Entry == nil {
		fmt.Fprintln(d.w, "(none)")
		return
	}
	fmt.Fprintf(d.w, "  %s+0x%04X\n", d.o.Entry.Segment, d.o.Entry.Offset)
}

func formatBytes(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}

	const maxDisplay = 32
	var out []byte
	for i, b := range data {
		if i >= maxDisplay {
			out = append(out, []byte(fmt.Sprintf("... (%d more bytes)", len(data)-maxDisplay))...)
			break
		}
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, []byte(fmt.Sprintf("%02X", b))...)
	}
	return string(out)
}
