package asm

import "github.com/technichron/telda/pkg/isa"

// wideValue is a 16-bit field whose value is either already known or
// depends on a label's offset, resolved only in pass 2.
type wideValue struct {
	label   bool
	labelID int
	number  uint16
}

// byteBigR is the resolved (register-xor-immediate) operand of a
// ByteBigR field. Immediates never depend on labels; the grammar has
// no byte-sized label reference.
type byteBigR struct {
	hasRegister bool
	register    isa.ByteRegister
	immediate   uint8
}

// wideBigR is the resolved operand of a WideBigR field; its immediate
// form may be a forward label reference.
type wideBigR struct {
	hasRegister bool
	register    isa.WideRegister
	value       wideValue
}

// operand carries the fully shape-classified payload of one
// instruction. Only the fields relevant to Shape are populated.
type operand struct {
	shape isa.Shape

	byteBigR byteBigR // ByteBigR
	wideBigR wideBigR // WideBigR

	byteReg isa.ByteRegister // ByteRegisterShape
	wideReg isa.WideRegister // WideRegisterShape

	immByte uint8     // ImmediateByte
	immWide wideValue // ImmediateWide

	twoByteR1, twoByteR2 isa.ByteRegister // TwoByteOneBig
	twoByteBig           byteBigR

	twoWideR1, twoWideR2 isa.WideRegister // TwoWideOneBig / load.w
	twoWideBig           wideBigR

	wbwReg1 isa.WideRegister // WideBigWide (store.w)
	wbwBig  wideBigR
	wbwReg2 isa.WideRegister

	bwbByteReg isa.ByteRegister // ByteWideBig (load.b)
	bwbWideReg isa.WideRegister
	bwbBig     wideBigR

	wbbWideReg isa.WideRegister // WideBigByte (store.b)
	wbbBig     wideBigR
	wbbByteReg isa.ByteRegister

	fourByte [4]isa.ByteRegister // FourByte
	fourWide [4]isa.WideRegister // FourWide
}
