package obj

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/technichron/telda/pkg/terr"
)

// magic tags a telda object file, the way an ELF or a.out magic number
// does, so a reader can fail fast on the wrong kind of input.
var magic = [4]byte{'a', 'a', 'l', 'v'}

// sectionTag names one of the container's independent, order-free
// sections. A tag absent from a file means that section is empty.
type sectionTag uint8

const (
	sectionText sectionTag = iota + 1
	sectionRoData
	sectionData
	sectionBss
	sectionGlobalSymbols
	sectionInternalSymbols
	sectionRelocations
	sectionEntry
)

var segmentSectionTags = map[SegmentType]sectionTag{
	SegmentText:   sectionText,
	SegmentRoData: sectionRoData,
	SegmentData:   sectionData,
	SegmentBss:    sectionBss,
}

var sectionTagSegments = func() map[sectionTag]SegmentType {
	m := make(map[sectionTag]SegmentType, len(segmentSectionTags))
	for seg, tag := range segmentSectionTags {
		m[tag] = seg
	}
	return m
}()

// Encode serializes o into the aalv tagged-section container. Every
// section is independent and may be written in any order; an absent
// section decodes back to empty, so a segment or table o never
// populated is simply skipped.
func Encode(w io.Writer, o *Object) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return terr.MakeError(terr.ErrIo, "writing magic: %v", err)
	}

	for segType, tag := range segmentSectionTags {
		seg, ok := o.Segments[segType]
		if !ok || seg.Size() == 0 {
			continue
		}
		if err := writeSection(bw, tag, encodeSegment(seg)); err != nil {
			return err
		}
	}

	if globals := encodeSymbols(o.Symbols, true); len(globals) > 0 {
		if err := writeSection(bw, sectionGlobalSymbols, globals); err != nil {
			return err
		}
	}
	if internals := encodeSymbols(o.Symbols, false); len(internals) > 0 {
		if err := writeSection(bw, sectionInternalSymbols, internals); err != nil {
			return err
		}
	}

	if len(o.Relocations) > 0 {
		if err := writeSection(bw, sectionRelocations, encodeRelocations(o.Symbols, o.Relocations)); err != nil {
			return err
		}
	}

	if o.Entry != nil {
		if err := writeSection(bw, sectionEntry, encodeEntry(*o.Entry)); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return terr.MakeError(terr.ErrIo, "flushing object: %v", err)
	}
	return nil
}

func writeSection(w io.Writer, tag sectionTag, payload []byte) error {
	var header [5]byte
	header[0] = uint8(tag)
	binary.LittleEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return terr.MakeError(terr.ErrIo, "writing section %d header: %v", tag, err)
	}
	if _, err := w.Write(payload); err != nil {
		return terr.MakeError(terr.ErrIo, "writing section %d payload: %v", tag, err)
	}
	return nil
}

// encodeSegment writes base:u16 LE followed by the segment's bytes.
// Bss carries no bytes of its own, so its payload instead carries its
// length as a second u16 LE field, the same way tobjdump.rs reports a
// Bss segment by size alone.
func encodeSegment(s *Segment) []byte {
	var buf bytes.Buffer
	var base [2]byte
	binary.LittleEndian.PutUint16(base[:], uint16(s.Base))
	buf.Write(base[:])
	if s.Type == SegmentBss {
		var length [2]byte
		binary.LittleEndian.PutUint16(length[:], uint16(s.Len))
		buf.Write(length[:])
	} else {
		buf.Write(s.Data)
	}
	return buf.Bytes()
}

func encodeString(buf *bytes.Buffer, s string) {
	var length [2]byte
	binary.LittleEndian.PutUint16(length[:], uint16(len(s)))
	buf.Write(length[:])
	buf.WriteString(s)
}

// encodeSymbols emits (name, location:u16 LE) tuples for every defined
// symbol of the requested visibility. Unknown (externally referenced,
// never defined here) symbols carry no location and are not part of
// either symbol section — they surface only through the relocation
// table's reference names, exactly as tobjdump.rs infers "undefined
// symbols" by diffing reference names against the defined sets.
func encodeSymbols(symbols []Symbol, global bool) []byte {
	var buf bytes.Buffer
	for _, sym := range symbols {
		if !sym.Defined() || sym.Global != global {
			continue
		}
		encodeString(&buf, sym.Name)
		var loc [2]byte
		binary.LittleEndian.PutUint16(loc[:], uint16(sym.Location))
		buf.Write(loc[:])
	}
	return buf.Bytes()
}

// encodeRelocations emits (format_byte, symbol_name, location:u16 LE)
// tuples, referencing symbols by name rather than table index so the
// reference table stays meaningful independent of symbol order.
func encodeRelocations(symbols []Symbol, relocations []Relocation) []byte {
	var buf bytes.Buffer
	for _, r := range relocations {
		buf.WriteByte(uint8(r.Format))
		name := ""
		if r.Symbol >= 0 && r.Symbol < len(symbols) {
			name = symbols[r.Symbol].Name
		}
		encodeString(&buf, name)
		var loc [2]byte
		binary.LittleEndian.PutUint16(loc[:], uint16(r.Location))
		buf.Write(loc[:])
	}
	return buf.Bytes()
}

func encodeEntry(e Entry) []byte {
	return []byte{uint8(e.Segment), uint8(e.Offset), uint8(e.Offset >> 8)}
}

// Decode reads an aalv container back into an Object, reconstructing
// each symbol's segment by range-checking its stored location against
// the segments actually present, and synthesizing fresh Unknown
// external symbols for any relocation that names a symbol neither
// symbol section defined.
func Decode(r io.Reader) (*Object, error) {
	br := bufio.NewReader(r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, terr.MakeError(terr.ErrIo, "reading magic: %v", err)
	}
	if gotMagic != magic {
		return nil, terr.MakeError(terr.ErrIo, "not a telda object file")
	}

	o := NewObject()
	var globalSyms, internalSyms []Symbol
	var relocNames []string
	var relocFormats []RelocationFormat
	var relocLocations []uint32
	var entry *Entry

	for {
		tag, payload, ok, err := readSection(br)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch tag {
		case sectionText, sectionRoData, sectionData, sectionBss:
			segType := sectionTagSegments[tag]
			seg, err := decodeSegment(segType, payload)
			if err != nil {
				return nil, err
			}
			o.Segments[segType] = seg

		case sectionGlobalSymbols:
			globalSyms, err = decodeSymbols(payload, true)
			if err != nil {
				return nil, err
			}

		case sectionInternalSymbols:
			internalSyms, err = decodeSymbols(payload, false)
			if err != nil {
				return nil, err
			}

		case sectionRelocations:
			relocNames, relocFormats, relocLocations, err = decodeRelocationWire(payload)
			if err != nil {
				return nil, err
			}

		case sectionEntry:
			e, err := decodeEntry(payload)
			if err != nil {
				return nil, err
			}
			entry = &e
		}
	}

	symbols := append(globalSyms, internalSyms...)
	for i := range symbols {
		symbols[i].Segment = segmentForLocation(o.Segments, symbols[i].Location)
	}

	byName := make(map[string]int, len(symbols))
	for i, s := range symbols {
		byName[s.Name] = i
	}

	relocations := make([]Relocation, len(relocNames))
	for i, name := range relocNames {
		idx, ok := byName[name]
		if !ok {
			idx = len(symbols)
			byName[name] = idx
			symbols = append(symbols, Symbol{Name: name, Segment: SegmentUnknown, Global: true})
		}
		relocations[i] = Relocation{
			Location: relocLocations[i],
			Symbol:   idx,
			Format:   relocFormats[i],
		}
	}
	// The wire format carries no per-relocation segment tag: only code
	// ever contains a relocatable field, so every relocation patches
	// the Text segment.
	for i := range relocations {
		relocations[i].Segment = SegmentText
	}

	o.Symbols = symbols
	o.Relocations = relocations
	o.Entry = entry
	return o, nil
}

func readSection(br *bufio.Reader) (sectionTag, []byte, bool, error) {
	var header [5]byte
	n, err := io.ReadFull(br, header[:])
	if err == io.EOF && n == 0 {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, terr.MakeError(terr.ErrIo, "reading section header: %v", err)
	}

	tag := sectionTag(header[0])
	length := binary.LittleEndian.Uint32(header[1:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(br, payload); err != nil {
		return 0, nil, false, terr.MakeError(terr.ErrIo, "reading section %d payload: %v", tag, err)
	}
	return tag, payload, true, nil
}

func decodeSegment(segType SegmentType, payload []byte) (*Segment, error) {
	if len(payload) < 2 {
		return nil, terr.MakeError(terr.ErrIo, "truncated segment section")
	}
	base := uint32(binary.LittleEndian.Uint16(payload[:2]))
	rest := payload[2:]

	if segType == SegmentBss {
		if len(rest) < 2 {
			return nil, terr.MakeError(terr.ErrIo, "truncated bss section")
		}
		return &Segment{Type: segType, Base: base, Len: uint32(binary.LittleEndian.Uint16(rest))}, nil
	}
	data := make([]byte, len(rest))
	copy(data, rest)
	return &Segment{Type: segType, Base: base, Data: data, Len: uint32(len(data))}, nil
}

func decodeString(r *bytes.Reader) (string, error) {
	var length [2]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return "", terr.MakeError(terr.ErrIo, "truncated string length: %v", err)
	}
	n := binary.LittleEndian.Uint16(length[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", terr.MakeError(terr.ErrIo, "truncated string data: %v", err)
	}
	return string(buf), nil
}

func decodeSymbols(payload []byte, global bool) ([]Symbol, error) {
	r := bytes.NewReader(payload)
	var out []Symbol
	for r.Len() > 0 {
		name, err := decodeString(r)
		if err != nil {
			return nil, err
		}
		var loc [2]byte
		if _, err := io.ReadFull(r, loc[:]); err != nil {
			return nil, terr.MakeError(terr.ErrIo, "truncated symbol location: %v", err)
		}
		out = append(out, Symbol{
			Name:     name,
			Location: uint32(binary.LittleEndian.Uint16(loc[:])),
			Global:   global,
		})
	}
	return out, nil
}

func decodeRelocationWire(payload []byte) ([]string, []RelocationFormat, []uint32, error) {
	r := bytes.NewReader(payload)
	var names []string
	var formats []RelocationFormat
	var locations []uint32
	for r.Len() > 0 {
		formatByte, err := r.ReadByte()
		if err != nil {
			return nil, nil, nil, terr.MakeError(terr.ErrIo, "truncated relocation format: %v", err)
		}
		name, err := decodeString(r)
		if err != nil {
			return nil, nil, nil, err
		}
		var loc [2]byte
		if _, err := io.ReadFull(r, loc[:]); err != nil {
			return nil, nil, nil, terr.MakeError(terr.ErrIo, "truncated relocation location: %v", err)
		}
		names = append(names, name)
		formats = append(formats, RelocationFormat(formatByte))
		locations = append(locations, uint32(binary.LittleEndian.Uint16(loc[:])))
	}
	return names, formats, locations, nil
}

func decodeEntry(payload []byte) (Entry, error) {
	if len(payload) < 3 {
		return Entry{}, terr.MakeError(terr.ErrIo, "truncated entry section")
	}
	return Entry{
		Segment: SegmentType(payload[0]),
		Offset:  uint32(binary.LittleEndian.Uint16(payload[1:3])),
	}, nil
}

// segmentForLocation recovers a defined symbol's segment by range
// lookup, since the wire format stores only location — the same
// reconstruction tobjdump.rs performs when displaying symbol tables.
// A non-zero Base (a linked object's segments) shifts the range to
// [Base, Base+Size); an unlinked assembler object's segments all sit
// at Base 0, so the ranges fall back to plain per-segment sizes.
func segmentForLocation(segments map[SegmentType]*Segment, location uint32) SegmentType {
	for _, order := range []SegmentType{SegmentText, SegmentRoData, SegmentData, SegmentBss} {
		seg, ok := segments[order]
		if !ok {
			continue
		}
		if location >= seg.Base && location < seg.Base+seg.Size() {
			return order
		}
	}
	return SegmentUnknown
}
