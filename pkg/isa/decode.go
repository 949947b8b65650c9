package isa

import "fmt"

var opcodeShapes = map[OpCode]Shape{
	NULL: Nothing, HALT: Nothing, NOP: Nothing,

	PUSH_B: ByteBigR, PUSH_W: WideBigR,
	POP_B:  ByteRegisterShape, POP_W: WideRegisterShape,

	CALL: ImmediateWide, RET: ImmediateByte,

	STORE_B: WideBigByte, STORE_W: WideBigWide,
	LOAD_B: ByteWideBig, LOAD_W: TwoWideOneBig,

	JUMP: ImmediateWide, JUMP_REG: WideRegisterShape,
	JEZ: ImmediateWide, JNZ: ImmediateWide,
	JLT: ImmediateWide, JLE: ImmediateWide,
	JGT: ImmediateWide, JGE: ImmediateWide,
	JO: ImmediateWide, JNO: ImmediateWide,
	JB: ImmediateWide, JAE: ImmediateWide,
	JA: ImmediateWide, JBE: ImmediateWide,

	ADD_B: TwoByteOneBig, SUB_B: TwoByteOneBig,
	AND_B: TwoByteOneBig, OR_B: TwoByteOneBig, XOR_B: TwoByteOneBig,
	ADD_W: TwoWideOneBig, SUB_W: TwoWideOneBig,
	AND_W: TwoWideOneBig, OR_W: TwoWideOneBig, XOR_W: TwoWideOneBig,

	MUL_B: FourByte, DIV_B: FourByte,
	MUL_W: FourWide, DIV_W: FourWide,
}

// ShapeOf returns the operand shape an opcode is always followed by.
func ShapeOf(op OpCode) (Shape, bool) {
	s, ok := opcodeShapes[op]
	return s, ok
}

// Mnemonics lists every opcode's internal mnemonic and shape, for
// introspection tools like `ta --list-opcodes`.
func Mnemonics() []struct {
	OpCode OpCode
	Name   string
	Shape  Shape
} {
	out := make([]struct {
		OpCode OpCode
		Name   string
		Shape  Shape
	}, 0, TotalOpcodes)
	for op := OpCode(0); int(op) < TotalOpcodes; op++ {
		shape, ok := opcodeShapes[op]
		if !ok {
			continue
		}
		out = append(out, struct {
			OpCode OpCode
			Name   string
			Shape  Shape
		}{op, op.String(), shape})
	}
	return out
}

// Decoded is one disassembled instruction: its opcode, shape, and the
// raw operand bytes that followed it (still BigR/nibble-packed, not
// split into individual fields — a pure decode interface has no symbol
// table to resolve a label reference against, so it stops at exposing
// bytes plus shape).
type Decoded struct {
	OpCode      OpCode
	Shape       Shape
	OperandData []byte
}

// Decode reads exactly one instruction starting at data[offset] and
// returns it alongside the offset of the next instruction, which is
// always offset + 1 + shape.Size() — the contract external
// disassemblers are required to rely on instead of re-deriving opcode
// widths themselves.
func Decode(data []byte, offset int) (Decoded, int, error) {
	if offset < 0 || offset >= len(data) {
		return Decoded{}, 0, fmt.Errorf("decode offset %d out of range (len %d)", offset, len(data))
	}
	op := OpCode(data[offset])
	shape, ok := opcodeShapes[op]
	if !ok {
		return Decoded{}, 0, fmt.Errorf("unknown opcode byte 0x%02x at offset %d", data[offset], offset)
	}

	size := int(shape.Size())
	next := offset + 1 + size
	if next > len(data) {
		return Decoded{}, 0, fmt.Errorf("truncated operand for %s at offset %d", op, offset)
	}

	operandData := make([]byte, size)
	copy(operandData, data[offset+1:next])

	return Decoded{OpCode: op, Shape: shape, OperandData: operandData}, next, nil
}
