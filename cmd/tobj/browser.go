package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/technichron/telda/pkg/obj"
)

// browser is the read-only data-access layer the view renders from,
// kept separate from tview so the object model never depends on the
// presentation library.
type browser struct {
	object *obj.Object
}

func newBrowser(o *obj.Object) *browser {
	return &browser{object: o}
}

// sectionNames lists the browsable top-level sections, in display
// order.
func (b *browser) sectionNames() []string {
	return []string{"Segments", "Symbols", "Relocations", "Entry"}
}

func (b *browser) segmentRows() []string {
	var rows []string
	for _, segType := range []obj.SegmentType{obj.SegmentText, obj.SegmentRoData, obj.SegmentData, obj.SegmentBss} {
		seg, ok := b.object.Segments[segType]
		if !ok || seg.Size() == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("%-8s %6d bytes", segType, seg.Size()))
	}
	if len(rows) == 0 {
		rows = append(rows, "(no segments)")
	}
	return rows
}

func (b *browser) symbolRows() []string {
	symbols := append([]obj.Symbol(nil), b.object.Symbols...)
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })

	var rows []string
	for _, sym := range symbols {
		vis := "internal"
		if sym.Global {
			vis = "global"
		}
		if !sym.Defined() {
			rows = append(rows, fmt.Sprintf("%-24s undefined  (%s)", sym.Name, vis))
			continue
		}
		rows = append(rows, fmt.Sprintf("%-24s %s+0x%04X  (%s)", sym.Name, sym.Segment, sym.Location, vis))
	}
	if len(rows) == 0 {
		rows = append(rows, "(no symbols)")
	}
	return rows
}

func (b *browser) relocationRows() []string {
	var rows []string
	for _, r := range b.object.Relocations {
		name := "?"
		if r.Symbol >= 0 && r.Symbol < len(b.object.Symbols) {
			name = b.object.Symbols[r.Symbol].Name
		}
		format := "absolute"
		if r.Format == obj.RelocationBigR {
			format = "big"
		}
		rows = append(rows, fmt.Sprintf("%s+0x%04X -> %-24s (%s)", r.Segment, r.Location, name, format))
	}
	if len(rows) == 0 {
		rows = append(rows, "(no relocations)")
	}
	return rows
}

func (b *browser) entryRows() []string {
	if b.object.Entry == nil {
		return []string{"(no entry point)"}
	}
	return []string{fmt.Sprintf("%s+0x%04X", b.object.Entry.Segment, b.object.Entry.Offset)}
}

func (b *browser) rowsFor(section string) []string {
	switch section {
	case "Segments":
		return b.segmentRows()
	case "Symbols":
		return b.symbolRows()
	case "Relocations":
		return b.relocationRows()
	case "Entry":
		return b.entryRows()
	default:
		return nil
	}
}

func (b *browser) detailText() string {
	var sb strings.Builder
	sb.WriteString("Segments:\n  ")
	sb.WriteString(strings.Join(b.segmentRows(), "\n  "))
	sb.WriteString("\n\nEntry:\n  ")
	sb.WriteString(strings.Join(b.entryRows(), "\n  "))
	return sb.String()
}
