package asm

import (
	"github.com/technichron/telda/pkg/asm/parse"
	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/terr"
)

// shapeAttempt tries to read ops as one instruction shape. It reports
// false, not an error, when the operand count or kinds simply don't
// match the shape being tried — that's the normal way a candidate is
// rejected before the next one is tried.
type shapeAttempt func(ops []parse.Operand, interner *Interner) (operand, bool)

// candidate pairs one shape attempt with the opcode it produces when
// the attempt succeeds. A mnemonic maps to a short list of candidates,
// tried in order; the first match wins.
type candidate struct {
	opcode isa.OpCode
	try    shapeAttempt
}

// asByteReg accepts a named byte register, or the literal number 0 as
// the hardwired zero register — the grammar lets every plain register
// position spell the zero register either way.
func asByteReg(op parse.Operand) (isa.ByteRegister, bool) {
	switch {
	case op.Kind == parse.OperandByteRegister:
		return op.ByteRegister, true
	case op.Kind == parse.OperandNumber && op.Number == 0:
		return isa.BZero, true
	default:
		return 0, false
	}
}

// asWideReg is asByteReg's wide-register counterpart.
func asWideReg(op parse.Operand) (isa.WideRegister, bool) {
	switch {
	case op.Kind == parse.OperandWideRegister:
		return op.WideRegister, true
	case op.Kind == parse.OperandNumber && op.Number == 0:
		return isa.WZero, true
	default:
		return 0, false
	}
}

func asByteBigR(op parse.Operand) (byteBigR, bool) {
	switch op.Kind {
	case parse.OperandByteRegister:
		return byteBigR{hasRegister: true, register: op.ByteRegister}, true
	case parse.OperandByte:
		return byteBigR{immediate: op.Byte}, true
	case parse.OperandNumber:
		if op.Number < 0 || op.Number > 255 {
			return byteBigR{}, false
		}
		return byteBigR{immediate: uint8(op.Number)}, true
	default:
		return byteBigR{}, false
	}
}

func asWideBigR(op parse.Operand, interner *Interner) (wideBigR, bool) {
	switch op.Kind {
	case parse.OperandWideRegister:
		return wideBigR{hasRegister: true, register: op.WideRegister}, true
	case parse.OperandWide:
		return wideBigR{value: wideValue{number: op.Wide}}, true
	case parse.OperandNumber:
		if op.Number < 0 || op.Number > 65535 {
			return wideBigR{}, false
		}
		return wideBigR{value: wideValue{number: uint16(op.Number)}}, true
	case parse.OperandLabel:
		return wideBigR{value: wideValue{label: true, labelID: interner.Intern(op.Label)}}, true
	default:
		return wideBigR{}, false
	}
}

func asImmByte(op parse.Operand) (uint8, bool) {
	switch op.Kind {
	case parse.OperandByte:
		return op.Byte, true
	case parse.OperandNumber:
		if op.Number >= 0 && op.Number <= 255 {
			return uint8(op.Number), true
		}
	}
	return 0, false
}

func asImmWide(op parse.Operand, interner *Interner) (wideValue, bool) {
	switch op.Kind {
	case parse.OperandWide:
		return wideValue{number: op.Wide}, true
	case parse.OperandNumber:
		if op.Number >= 0 && op.Number <= 65535 {
			return wideValue{number: uint16(op.Number)}, true
		}
	case parse.OperandLabel:
		return wideValue{label: true, labelID: interner.Intern(op.Label)}, true
	}
	return wideValue{}, false
}

func nothingAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 0 {
		return operand{}, false
	}
	return operand{shape: isa.Nothing}, true
}

func byteBigRAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 1 {
		return operand{}, false
	}
	b, ok := asByteBigR(ops[0])
	if !ok {
		return operand{}, false
	}
	return operand{shape: isa.ByteBigR, byteBigR: b}, true
}

func wideBigRAttempt(ops []parse.Operand, interner *Interner) (operand, bool) {
	if len(ops) != 1 {
		return operand{}, false
	}
	w, ok := asWideBigR(ops[0], interner)
	if !ok {
		return operand{}, false
	}
	return operand{shape: isa.WideBigR, wideBigR: w}, true
}

func byteRegisterAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 1 {
		return operand{}, false
	}
	r, ok := asByteReg(ops[0])
	if !ok {
		return operand{}, false
	}
	return operand{shape: isa.ByteRegisterShape, byteReg: r}, true
}

func wideRegisterAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 1 {
		return operand{}, false
	}
	r, ok := asWideReg(ops[0])
	if !ok {
		return operand{}, false
	}
	return operand{shape: isa.WideRegisterShape, wideReg: r}, true
}

// retAttempt matches ret's one quirky shape: it always encodes as an
// ImmediateByte field, defaulting to 0 when the source gives no
// operand at all.
func retAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	switch len(ops) {
	case 0:
		return operand{shape: isa.ImmediateByte, immByte: 0}, true
	case 1:
		if v, ok := asImmByte(ops[0]); ok {
			return operand{shape: isa.ImmediateByte, immByte: v}, true
		}
	}
	return operand{}, false
}

func immediateByteAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 1 {
		return operand{}, false
	}
	v, ok := asImmByte(ops[0])
	if !ok {
		return operand{}, false
	}
	return operand{shape: isa.ImmediateByte, immByte: v}, true
}

func immediateWideAttempt(ops []parse.Operand, interner *Interner) (operand, bool) {
	if len(ops) != 1 {
		return operand{}, false
	}
	v, ok := asImmWide(ops[0], interner)
	if !ok {
		return operand{}, false
	}
	return operand{shape: isa.ImmediateWide, immWide: v}, true
}

func twoByteOneBigAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 3 {
		return operand{}, false
	}
	r1, ok := asByteReg(ops[0])
	if !ok {
		return operand{}, false
	}
	r2, ok := asByteReg(ops[1])
	if !ok {
		return operand{}, false
	}
	big, ok := asByteBigR(ops[2])
	if !ok {
		return operand{}, false
	}
	return operand{
		shape:      isa.TwoByteOneBig,
		twoByteR1:  r1,
		twoByteR2:  r2,
		twoByteBig: big,
	}, true
}

func twoWideOneBigAttempt(ops []parse.Operand, interner *Interner) (operand, bool) {
	if len(ops) != 3 {
		return operand{}, false
	}
	r1, ok := asWideReg(ops[0])
	if !ok {
		return operand{}, false
	}
	r2, ok := asWideReg(ops[1])
	if !ok {
		return operand{}, false
	}
	big, ok := asWideBigR(ops[2], interner)
	if !ok {
		return operand{}, false
	}
	return operand{
		shape:      isa.TwoWideOneBig,
		twoWideR1:  r1,
		twoWideR2:  r2,
		twoWideBig: big,
	}, true
}

// wideBigByteAttempt matches store.b: destination address register,
// big offset, byte source register.
func wideBigByteAttempt(ops []parse.Operand, interner *Interner) (operand, bool) {
	if len(ops) != 3 {
		return operand{}, false
	}
	wr, ok := asWideReg(ops[0])
	if !ok {
		return operand{}, false
	}
	big, ok := asWideBigR(ops[1], interner)
	if !ok {
		return operand{}, false
	}
	br, ok := asByteReg(ops[2])
	if !ok {
		return operand{}, false
	}
	return operand{
		shape:      isa.WideBigByte,
		wbbWideReg: wr,
		wbbBig:     big,
		wbbByteReg: br,
	}, true
}

// wideBigWideAttempt matches store.w: destination address register,
// big offset, wide source register.
func wideBigWideAttempt(ops []parse.Operand, interner *Interner) (operand, bool) {
	if len(ops) != 3 {
		return operand{}, false
	}
	r1, ok := asWideReg(ops[0])
	if !ok {
		return operand{}, false
	}
	big, ok := asWideBigR(ops[1], interner)
	if !ok {
		return operand{}, false
	}
	r2, ok := asWideReg(ops[2])
	if !ok {
		return operand{}, false
	}
	return operand{
		shape:   isa.WideBigWide,
		wbwReg1: r1,
		wbwBig:  big,
		wbwReg2: r2,
	}, true
}

// byteWideBigAttempt matches load.b: byte destination register, wide
// base register, big offset.
func byteWideBigAttempt(ops []parse.Operand, interner *Interner) (operand, bool) {
	if len(ops) != 3 {
		return operand{}, false
	}
	br, ok := asByteReg(ops[0])
	if !ok {
		return operand{}, false
	}
	wr, ok := asWideReg(ops[1])
	if !ok {
		return operand{}, false
	}
	big, ok := asWideBigR(ops[2], interner)
	if !ok {
		return operand{}, false
	}
	return operand{
		shape:      isa.ByteWideBig,
		bwbByteReg: br,
		bwbWideReg: wr,
		bwbBig:     big,
	}, true
}

func fourByteAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 4 {
		return operand{}, false
	}
	var regs [4]isa.ByteRegister
	for i, op := range ops {
		r, ok := asByteReg(op)
		if !ok {
			return operand{}, false
		}
		regs[i] = r
	}
	return operand{shape: isa.FourByte, fourByte: regs}, true
}

func fourWideAttempt(ops []parse.Operand, _ *Interner) (operand, bool) {
	if len(ops) != 4 {
		return operand{}, false
	}
	var regs [4]isa.WideRegister
	for i, op := range ops {
		r, ok := asWideReg(op)
		if !ok {
			return operand{}, false
		}
		regs[i] = r
	}
	return operand{shape: isa.FourWide, fourWide: regs}, true
}

// mnemonicCandidates is the surface grammar's dispatch table: each
// source mnemonic names a short, ordered list of (opcode, shape)
// candidates, tried until one accepts the operand list. Several
// opcodes share a mnemonic and are told apart purely by operand shape
// (push/pop/store/load/add/sub/and/or/xor/mul/div); others
// (jmp/jmp.r, ret with or without a byte) vary the same way.
var mnemonicCandidates = map[string][]candidate{
	"null": {{isa.NULL, nothingAttempt}},
	"halt": {{isa.HALT, nothingAttempt}},
	"nop":  {{isa.NOP, nothingAttempt}},

	"push": {{isa.PUSH_B, byteBigRAttempt}, {isa.PUSH_W, wideBigRAttempt}},
	"pop":  {{isa.POP_B, byteRegisterAttempt}, {isa.POP_W, wideRegisterAttempt}},

	"call": {{isa.CALL, immediateWideAttempt}},
	"ret":  {{isa.RET, retAttempt}},

	"store": {{isa.STORE_B, wideBigByteAttempt}, {isa.STORE_W, wideBigWideAttempt}},
	"load":  {{isa.LOAD_B, byteWideBigAttempt}, {isa.LOAD_W, twoWideOneBigAttempt}},

	"jmp":  {{isa.JUMP, immediateWideAttempt}, {isa.JUMP_REG, wideRegisterAttempt}},
	"jump": {{isa.JUMP, immediateWideAttempt}, {isa.JUMP_REG, wideRegisterAttempt}},

	"jez": {{isa.JEZ, immediateWideAttempt}},
	"jnz": {{isa.JNZ, immediateWideAttempt}},
	"jlt": {{isa.JLT, immediateWideAttempt}},
	"jle": {{isa.JLE, immediateWideAttempt}},
	"jgt": {{isa.JGT, immediateWideAttempt}},
	"jge": {{isa.JGE, immediateWideAttempt}},
	"jo":  {{isa.JO, immediateWideAttempt}},
	"jno": {{isa.JNO, immediateWideAttempt}},
	"jb":  {{isa.JB, immediateWideAttempt}},
	"jc":  {{isa.JB, immediateWideAttempt}},
	"jae": {{isa.JAE, immediateWideAttempt}},
	"jnc": {{isa.JAE, immediateWideAttempt}},
	"ja":  {{isa.JA, immediateWideAttempt}},
	"jbe": {{isa.JBE, immediateWideAttempt}},

	"add": {{isa.ADD_B, twoByteOneBigAttempt}, {isa.ADD_W, twoWideOneBigAttempt}},
	"sub": {{isa.SUB_B, twoByteOneBigAttempt}, {isa.SUB_W, twoWideOneBigAttempt}},
	"and": {{isa.AND_B, twoByteOneBigAttempt}, {isa.AND_W, twoWideOneBigAttempt}},
	"or":  {{isa.OR_B, twoByteOneBigAttempt}, {isa.OR_W, twoWideOneBigAttempt}},
	"xor": {{isa.XOR_B, twoByteOneBigAttempt}, {isa.XOR_W, twoWideOneBigAttempt}},

	"mul": {{isa.MUL_B, fourByteAttempt}, {isa.MUL_W, fourWideAttempt}},
	"div": {{isa.DIV_B, fourByteAttempt}, {isa.DIV_W, fourWideAttempt}},
}

// resolveInstruction classifies one source instruction's mnemonic and
// operand list into an opcode and a shape-tagged operand, trying each
// of the mnemonic's candidate shapes in turn.
func resolveInstruction(mnemonic string, ops []parse.Operand, interner *Interner) (isa.OpCode, operand, error) {
	candidates, known := mnemonicCandidates[mnemonic]
	if !known {
		return 0, operand{}, terr.MakeError(terr.ErrParse, "unknown mnemonic %q", mnemonic)
	}

	for _, c := range candidates {
		if op, ok := c.try(ops, interner); ok {
			return c.opcode, op, nil
		}
	}

	return 0, operand{}, terr.MakeError(terr.ErrParse, "%q does not accept operands %v", mnemonic, ops)
}
