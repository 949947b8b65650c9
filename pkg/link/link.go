package link

import (
	"strconv"
	"strings"

	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/obj"
	"github.com/technichron/telda/pkg/terr"
)

var segmentTypeOrder = []obj.SegmentType{
	obj.SegmentText, obj.SegmentRoData, obj.SegmentData, obj.SegmentBss,
}

// Input pairs an object with the path it was read from, so duplicate
// and undefined-reference diagnostics can name the offending file.
type Input struct {
	Path   string
	Object *obj.Object
}

// globalDef is one global symbol's final, linked location, kept
// alongside the path that defined it for diagnostics.
type globalDef struct {
	segment obj.SegmentType
	address uint32
	path    string
}

// Link merges objects, in input order, into one linked object.
// Symbols and relocations are rebased to each segment's final address
// as soon as its layout is known; global symbol collisions and, for an
// executable link, still-unresolved external references are reported
// through a terr.Multi so every failure surfaces in one run rather
// than stopping at the first.
func Link(inputs []Input, opts Options) (*obj.Object, error) {
	objects := make([]*obj.Object, len(inputs))
	for i, in := range inputs {
		objects[i] = in.Object
	}
	bases, totals := layout(objects)

	merged := obj.NewObject()
	for _, segType := range segmentTypeOrder {
		dst := merged.Segment(segType)
		dst.Base = bases[segType]
		dst.Len = totals[segType]
		if segType != obj.SegmentBss {
			dst.Data = make([]byte, totals[segType])
		}
	}

	var errs terr.Multi
	globals := make(map[string]globalDef)

	// First pass: place bytes, rebase symbols, record every global
	// definition and detect duplicate globals as they appear.
	cursor := map[obj.SegmentType]uint32{}
	type placed struct {
		obj   *obj.Object
		path  string
		bases map[obj.SegmentType]uint32
	}
	objectBases := make([]placed, len(inputs))

	for i, in := range inputs {
		o := in.Object
		objBase := make(map[obj.SegmentType]uint32, len(segmentTypeOrder))
		for _, segType := range segmentTypeOrder {
			seg, ok := o.Segments[segType]
			if !ok {
				continue
			}
			localOffset := cursor[segType]
			objBase[segType] = bases[segType] + localOffset
			cursor[segType] += seg.Size()

			if segType != obj.SegmentBss {
				dst := merged.Segment(segType)
				copy(dst.Data[localOffset:], seg.Data)
			}
		}
		objectBases[i] = placed{obj: o, path: in.Path, bases: objBase}

		for _, sym := range o.Symbols {
			if !sym.Defined() || !sym.Global {
				continue
			}
			addr := objBase[sym.Segment] + sym.Location
			if existing, dup := globals[sym.Name]; dup {
				errs.Add(terr.MakeError(terr.ErrDuplicateGlobal,
					"%q defined more than once: %s (%s+%#04x) and %s (%s+%#04x)",
					sym.Name, existing.path, existing.segment, existing.address,
					in.Path, sym.Segment, addr))
				continue
			}
			globals[sym.Name] = globalDef{segment: sym.Segment, address: addr, path: in.Path}
		}
	}

	// Second pass: emit the merged symbol table (every global once,
	// plus every non-global definition kept unless stripped) and patch
	// every relocation now that all objects' global definitions are
	// known.
	seenGlobal := make(map[string]bool, len(globals))
	var entry *obj.Entry
	for _, p := range objectBases {
		o := p.obj

		if entry == nil && o.Entry != nil {
			base := p.bases[o.Entry.Segment]
			entry = &obj.Entry{Segment: o.Entry.Segment, Offset: base + o.Entry.Offset}
		}

		for _, sym := range o.Symbols {
			if sym.Global {
				if sym.Defined() {
					if seenGlobal[sym.Name] {
						continue
					}
					seenGlobal[sym.Name] = true
					def := globals[sym.Name]
					merged.Symbols = append(merged.Symbols, obj.Symbol{
						Name: sym.Name, Segment: def.segment, Location: def.address, Global: true,
					})
					continue
				}
				// External reference: resolved if some object defines
				// it, otherwise still unresolved.
				if def, ok := globals[sym.Name]; ok {
					if !seenGlobal[sym.Name] {
						seenGlobal[sym.Name] = true
						merged.Symbols = append(merged.Symbols, obj.Symbol{
							Name: sym.Name, Segment: def.segment, Location: def.address, Global: true,
						})
					}
				} else if opts.Executable {
					errs.Add(terr.MakeError(terr.ErrUndefinedReference, "%q, referenced from %s", sym.Name, p.path))
				} else if !seenGlobal[sym.Name] {
					seenGlobal[sym.Name] = true
					merged.Symbols = append(merged.Symbols, sym)
				}
				continue
			}
			if !opts.StripInternal {
				merged.Symbols = append(merged.Symbols, obj.Symbol{
					Name:     sym.Name,
					Segment:  sym.Segment,
					Location: p.bases[sym.Segment] + sym.Location,
					Global:   false,
				})
			}
		}

		for _, reloc := range o.Relocations {
			if _, ok := o.Segments[reloc.Segment]; !ok {
				errs.Add(terr.MakeError(terr.ErrNoSuchSegment, "%s: relocation at %#04x names segment %s, absent from this object",
					p.path, reloc.Location, reloc.Segment))
				continue
			}

			// reloc.Location addresses a byte within this object's own
			// segment buffer; rebase it against this object's running
			// insertion offset, not the segment's absolute base, since
			// that is the coordinate the merged segment's own byte
			// buffer is indexed by.
			localLocation := p.bases[reloc.Segment] - bases[reloc.Segment] + reloc.Location

			src := o.Symbols[reloc.Symbol]
			name := src.Name
			def, resolved := globals[name]
			if src.Defined() && !src.Global {
				// An internal label resolves within its own object.
				def = globalDef{segment: src.Segment, address: p.bases[src.Segment] + src.Location, path: p.path}
				resolved = true
			}

			idx, ok := merged.SymbolByName(name)
			if !ok {
				sym := obj.Symbol{Name: name, Segment: obj.SegmentUnknown, Global: src.Global}
				if resolved {
					sym.Segment, sym.Location = def.segment, def.address
				}
				idx = len(merged.Symbols)
				merged.Symbols = append(merged.Symbols, sym)
			}

			// Every re-keyed relocation is kept in the output table,
			// resolved or not, so a relocatable link's output can be
			// fed back into another link run.
			merged.Relocations = append(merged.Relocations, obj.Relocation{
				Segment:  reloc.Segment,
				Location: localLocation,
				Symbol:   idx,
				Format:   reloc.Format,
			})

			if resolved {
				if err := patch(merged.Segment(reloc.Segment), localLocation, def.address, reloc.Format); err != nil {
					errs.Add(err)
				}
			}
			// Still-unresolved in executable mode was already reported
			// above via the undefined-reference pass; the bytes are left
			// at zero per the final-resolution rule.
		}
	}

	merged.Entry = entry

	if opts.SetEntry != "" {
		e, err := resolveSetEntry(opts.SetEntry, globals)
		if err != nil {
			errs.Add(err)
		} else {
			merged.Entry = &e
		}
	}

	if opts.Executable && merged.Entry == nil {
		errs.Add(terr.ErrNoEntryPoint)
	}

	if errs.HasErrors() {
		return nil, &errs
	}
	return merged, nil
}

// layout computes each segment's base address and its total size
// across every input object. The first segment of segmentTypeOrder
// starts right after the reserved zero page (ZeroPageSize) and each
// later one starts where the previous one ends; bases are not rounded
// up to any alignment boundary.
func layout(objects []*obj.Object) (bases, totals map[obj.SegmentType]uint32) {
	totals = make(map[obj.SegmentType]uint32, len(segmentTypeOrder))
	for _, o := range objects {
		for _, segType := range segmentTypeOrder {
			if seg, ok := o.Segments[segType]; ok {
				totals[segType] += seg.Size()
			}
		}
	}

	bases = make(map[obj.SegmentType]uint32, len(segmentTypeOrder))
	next := uint32(ZeroPageSize)
	for _, segType := range segmentTypeOrder {
		bases[segType] = next
		next += totals[segType]
	}
	return bases, totals
}

// patch writes addr into seg at location, in the field encoding format
// names. A Big field must be routed through the BigR zero-or-plus-7
// rule — its slot is indistinguishable from a register field unless
// every non-register value is shifted up by 7 — while an Absolute
// field is a plain little-endian write.
func patch(seg *obj.Segment, location, addr uint32, format obj.RelocationFormat) error {
	switch format {
	case obj.RelocationAbsolute:
		seg.Data[location] = uint8(addr)
		seg.Data[location+1] = uint8(addr >> 8)
		return nil
	case obj.RelocationBigR:
		if addr > 0xFFFF {
			return terr.MakeError(terr.ErrEncoding, "address %#x does not fit a BigR field", addr)
		}
		v, err := isa.EncodeWideBigR(nil, uint16(addr))
		if err != nil {
			return terr.MakeError(terr.ErrEncoding, "address %#x does not fit a BigR field: %v", addr, err)
		}
		seg.Data[location] = uint8(v)
		seg.Data[location+1] = uint8(v >> 8)
		return nil
	default:
		return terr.MakeError(terr.ErrEncoding, "unknown relocation format %d", format)
	}
}

// resolveSetEntry implements -E/--set-entry: a "0x"-prefixed value
// names an absolute offset in the reserved zero page; anything else
// names a global symbol the linked objects must define.
func resolveSetEntry(value string, globals map[string]globalDef) (obj.Entry, error) {
	if rest, ok := strings.CutPrefix(value, "0x"); ok {
		n, err := strconv.ParseUint(rest, 16, 16)
		if err != nil {
			return obj.Entry{}, terr.MakeError(terr.ErrInvalidEntryPointFormat, "%q: %v", value, err)
		}
		return obj.Entry{Segment: obj.SegmentZero, Offset: uint32(n)}, nil
	}
	def, ok := globals[value]
	if !ok {
		return obj.Entry{}, terr.MakeError(terr.ErrUndefinedReference, "entry symbol %q", value)
	}
	return obj.Entry{Segment: def.segment, Offset: def.address}, nil
}
