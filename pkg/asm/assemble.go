package asm

import (
	"encoding/binary"
	"io"
	"os"
	"unicode"

	"github.com/technichron/telda/pkg/asm/parse"
	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/obj"
	"github.com/technichron/telda/pkg/terr"
)

// Assemble runs both passes over a source file's character stream and
// produces a relocatable object. Every encoded byte lands in the
// single Text segment: the grammar has no segment-switching directive,
// so there is nothing to route bytes/wide/string data elsewhere.
func Assemble(r io.Reader) (*obj.Object, error) {
	lines, interner, idToPos, err := processSource(r)
	if err != nil {
		return nil, err
	}
	return build(lines, interner, idToPos)
}

// AssembleFile opens path and assembles it, so that its own .include
// directives (which name files by path, resolved relative to the
// process's working directory) can be followed the same way nested
// includes are.
func AssembleFile(path string) (*obj.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, terr.MakeError(terr.ErrIo, "opening %q: %v", path, err)
	}
	defer f.Close()
	return Assemble(f)
}

// processSource runs pass 1 over one source stream, expanding any
// .include directives it contains, using a label interner and offset
// counter scoped to this call only.
func processSource(r io.Reader) ([]dataLine, *Interner, map[int]uint16, error) {
	interner := NewInterner()
	idToPos := make(map[int]uint16)
	var offset uint16
	lines, err := processLines(parse.NewLines(r), interner, idToPos, &offset)
	if err != nil {
		return nil, nil, nil, err
	}
	return lines, interner, idToPos, nil
}

func processLines(lx *parse.Lines, interner *Interner, idToPos map[int]uint16, offset *uint16) ([]dataLine, error) {
	var out []dataLine

	for {
		line, ok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch line.Kind {
		case parse.LineComment:
			// nothing to do; kept only so line numbers in errors stay accurate

		case parse.LineLabel:
			id := interner.Intern(line.Label)
			idToPos[id] = *offset

		case parse.LineInstruction:
			opcode, op, err := resolveInstruction(line.Mnemonic, line.Operands, interner)
			if err != nil {
				return nil, err
			}
			*offset += 1 + op.shape.Size()
			out = append(out, instructionLine(opcode, op))

		case parse.LineDirectiveByte:
			*offset++
			out = append(out, rawLine([]byte{line.ByteData}))

		case parse.LineDirectiveWide:
			b := make([]byte, 2)
			binary.LittleEndian.PutUint16(b, line.WideData)
			*offset += 2
			out = append(out, rawLine(b))

		case parse.LineDirectiveString:
			*offset += uint16(len(line.StringData))
			out = append(out, rawLine(line.StringData))

		case parse.LineDirectiveInclude:
			included, err := processInclude(line.IncludePath, interner, idToPos, offset)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
		}
	}

	return out, nil
}

// processInclude runs pass 1 over path in its own label namespace,
// then folds its labels and data-lines into the caller's, applying
// the path-prefix convention to every label whose name does not start
// with an uppercase letter (those are cross-file globals and keep
// their name verbatim). Every label *reference* emitted while
// processing path is rewritten the same way its *definitions* are, so
// the two always agree regardless of include nesting depth — the
// original per-file label numbering only ever fixed up definitions,
// leaving embedded references pointing at the wrong file's ids.
func processInclude(path string, outer *Interner, outerIDToPos map[int]uint16, offset *uint16) ([]dataLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, terr.MakeError(terr.ErrIo, "opening include %q: %v", path, err)
	}
	defer f.Close()

	inner := NewInterner()
	innerIDToPos := make(map[int]uint16)
	lines, err := processLines(parse.NewLines(f), inner, innerIDToPos, offset)
	if err != nil {
		return nil, err
	}

	remap := make(map[int]int, inner.Len())
	for id := 0; id < inner.Len(); id++ {
		name := inner.Name(id)
		if !startsUppercase(name) {
			name = path + "  " + name
		}
		outerID := outer.Intern(name)
		remap[id] = outerID
		if pos, ok := innerIDToPos[id]; ok {
			outerIDToPos[outerID] = pos
		}
	}

	return remapLabelRefs(lines, remap), nil
}

func startsUppercase(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

// remapLabelRefs rewrites every label reference embedded in lines'
// operands through remap, leaving everything else untouched.
func remapLabelRefs(lines []dataLine, remap map[int]int) []dataLine {
	for i := range lines {
		if lines[i].raw {
			continue
		}
		remapOperand(&lines[i].operand, remap)
	}
	return lines
}

func remapWideValue(v *wideValue, remap map[int]int) {
	if v.label {
		v.labelID = remap[v.labelID]
	}
}

func remapWideBigR(w *wideBigR, remap map[int]int) {
	if !w.hasRegister {
		remapWideValue(&w.value, remap)
	}
}

func remapOperand(op *operand, remap map[int]int) {
	switch op.shape {
	case isa.WideBigR:
		remapWideBigR(&op.wideBigR, remap)
	case isa.ImmediateWide:
		remapWideValue(&op.immWide, remap)
	case isa.TwoWideOneBig:
		remapWideBigR(&op.twoWideBig, remap)
	case isa.WideBigWide:
		remapWideBigR(&op.wbwBig, remap)
	case isa.ByteWideBig:
		remapWideBigR(&op.bwbBig, remap)
	case isa.WideBigByte:
		remapWideBigR(&op.wbbBig, remap)
	}
}

// entryLabel is the conventional label name the assembler treats as an
// object's own entry point, if defined. The linker's -E flag can still
// override or supply one for objects that don't define it.
const entryLabel = "start"

// build runs pass 2 over lines, then assembles the final object: one
// Text segment holding the encoded bytes, a symbol table built from
// every interned label (defined ones resolved to their Text offset,
// undefined ones left as global external references for the linker),
// and an entry point if a conventionally-named start label is defined.
func build(lines []dataLine, interner *Interner, idToPos map[int]uint16) (*obj.Object, error) {
	enc := newEncoder(obj.SegmentText)
	for _, line := range lines {
		if err := enc.writeLine(line); err != nil {
			return nil, err
		}
	}

	o := obj.NewObject()
	seg := o.Segment(obj.SegmentText)
	seg.Data = enc.bytes
	seg.Len = uint32(len(enc.bytes))

	symbols := make([]obj.Symbol, interner.Len())
	for id := 0; id < interner.Len(); id++ {
		name := interner.Name(id)
		if pos, defined := idToPos[id]; defined {
			symbols[id] = obj.Symbol{
				Name:     name,
				Segment:  obj.SegmentText,
				Location: uint32(pos),
				Global:   startsUppercase(name),
			}
		} else {
			// Every reference that never resolved to a local definition
			// is an external the linker must supply; it has to be
			// global or no other object could ever define it.
			symbols[id] = obj.Symbol{
				Name:    name,
				Segment: obj.SegmentUnknown,
				Global:  true,
			}
		}
	}
	o.Symbols = symbols

	relocs := make([]obj.Relocation, len(enc.relocs))
	copy(relocs, enc.relocs)
	o.Relocations = relocs

	if id, ok := interner.Lookup(entryLabel); ok {
		if pos, defined := idToPos[id]; defined {
			o.Entry = &obj.Entry{Segment: obj.SegmentText, Offset: uint32(pos)}
		}
	}

	return o, nil
}
