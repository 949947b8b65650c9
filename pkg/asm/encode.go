package asm

import (
	"encoding/binary"
	"errors"

	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/obj"
	"github.com/technichron/telda/pkg/terr"
)

// encoder accumulates the byte image and relocation table for one
// segment as pass 2 walks its data-lines.
type encoder struct {
	segment obj.SegmentType
	bytes   []byte
	relocs  []obj.Relocation
}

func newEncoder(segment obj.SegmentType) *encoder {
	return &encoder{segment: segment}
}

func (e *encoder) pushByte(b uint8) {
	e.bytes = append(e.bytes, b)
}

func (e *encoder) pushWide(w uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], w)
	e.bytes = append(e.bytes, buf[:]...)
}

// recordLabelReloc appends a placeholder field (all zero, patched at
// link time) and the relocation describing it.
func (e *encoder) recordLabelReloc(labelID int, format obj.RelocationFormat, width int) {
	location := uint32(len(e.bytes))
	for i := 0; i < width; i++ {
		e.bytes = append(e.bytes, 0)
	}
	e.relocs = append(e.relocs, obj.Relocation{
		Segment:  e.segment,
		Location: location,
		Symbol:   labelID,
		Format:   format,
	})
}

func (e *encoder) writeByteBigR(b byteBigR) error {
	if b.hasRegister {
		r := b.register
		v, err := isa.EncodeByteBigR(&r, 0)
		if err != nil {
			return err
		}
		e.pushByte(v)
		return nil
	}
	v, err := isa.EncodeByteBigR(nil, b.immediate)
	if err != nil {
		return terr.MakeError(terr.ErrEncoding, "%v", err)
	}
	e.pushByte(v)
	return nil
}

// writeWideBigR writes a WideBigR field. Register and plain-immediate
// forms are encoded immediately; a label reference is left as a
// zeroed placeholder with a Big-format relocation, since its value
// depends on the final, post-link address of the symbol.
func (e *encoder) writeWideBigR(w wideBigR) error {
	if w.hasRegister {
		r := w.register
		v, _ := isa.EncodeWideBigR(&r, 0)
		e.pushWide(v)
		return nil
	}
	if w.value.label {
		e.recordLabelReloc(w.value.labelID, obj.RelocationBigR, 2)
		return nil
	}
	v, err := isa.EncodeWideBigR(nil, w.value.number)
	if err != nil {
		return terr.MakeError(terr.ErrEncoding, "%v", err)
	}
	e.pushWide(v)
	return nil
}

// writeImmediateWide writes a plain (non-BigR) 16-bit slot: a literal
// number is written verbatim; a label reference is left as a zeroed
// placeholder with an Absolute-format relocation.
func (e *encoder) writeImmediateWide(v wideValue) {
	if v.label {
		e.recordLabelReloc(v.labelID, obj.RelocationAbsolute, 2)
		return
	}
	e.pushWide(v.number)
}

func nibblePair(hi, lo uint8) uint8 {
	return (hi << 4) | (lo & 0x0f)
}

// writeOperand emits the encoded bytes for one shape-classified
// operand, packing paired nibble registers and BigR fields.
func (e *encoder) writeOperand(op operand) error {
	switch op.shape {
	case isa.Nothing:
		return nil

	case isa.ByteBigR:
		return e.writeByteBigR(op.byteBigR)

	case isa.WideBigR:
		return e.writeWideBigR(op.wideBigR)

	case isa.ByteRegisterShape:
		e.pushByte(uint8(op.byteReg) << 4)
		return nil

	case isa.WideRegisterShape:
		e.pushByte(uint8(op.wideReg) << 4)
		return nil

	case isa.ImmediateByte:
		e.pushByte(op.immByte)
		return nil

	case isa.ImmediateWide:
		e.writeImmediateWide(op.immWide)
		return nil

	case isa.TwoByteOneBig:
		e.pushByte(nibblePair(uint8(op.twoByteR1), uint8(op.twoByteR2)))
		return e.writeByteBigR(op.twoByteBig)

	case isa.TwoWideOneBig:
		e.pushByte(nibblePair(uint8(op.twoWideR1), uint8(op.twoWideR2)))
		return e.writeWideBigR(op.twoWideBig)

	case isa.WideBigByte: // store.b: wide dest reg, big offset, byte source reg
		e.pushByte(nibblePair(uint8(op.wbbWideReg), uint8(op.wbbByteReg)))
		return e.writeWideBigR(op.wbbBig)

	case isa.WideBigWide: // store.w: wide dest reg, big offset, wide source reg
		e.pushByte(nibblePair(uint8(op.wbwReg1), uint8(op.wbwReg2)))
		return e.writeWideBigR(op.wbwBig)

	case isa.ByteWideBig: // load.b: byte dest reg, wide base reg, big offset
		e.pushByte(nibblePair(uint8(op.bwbByteReg), uint8(op.bwbWideReg)))
		return e.writeWideBigR(op.bwbBig)

	case isa.FourByte:
		e.pushByte(nibblePair(uint8(op.fourByte[0]), uint8(op.fourByte[1])))
		e.pushByte(nibblePair(uint8(op.fourByte[2]), uint8(op.fourByte[3])))
		return nil

	case isa.FourWide:
		e.pushByte(nibblePair(uint8(op.fourWide[0]), uint8(op.fourWide[1])))
		e.pushByte(nibblePair(uint8(op.fourWide[2]), uint8(op.fourWide[3])))
		return nil

	default:
		return errors.New("unreachable operand shape")
	}
}

func (e *encoder) writeLine(line dataLine) error {
	if line.raw {
		e.bytes = append(e.bytes, line.rawBytes...)
		return nil
	}
	e.pushByte(uint8(line.opcode))
	return e.writeOperand(line.operand)
}
