package asm

import "github.com/technichron/telda/pkg/isa"

// dataLine is pass 1's output unit: either a classified instruction
// (opcode plus shape-tagged operand) or a run of raw bytes coming
// from a byte/wide/string directive.
type dataLine struct {
	raw         bool
	opcode      isa.OpCode
	operand     operand
	rawBytes    []byte
}

func instructionLine(opcode isa.OpCode, op operand) dataLine {
	return dataLine{opcode: opcode, operand: op}
}

func rawLine(bytes []byte) dataLine {
	return dataLine{raw: true, rawBytes: bytes}
}

// size is the number of bytes this line contributes to the segment.
func (d dataLine) size() uint16 {
	if d.raw {
		return uint16(len(d.rawBytes))
	}
	return 1 + d.operand.shape.Size()
}
