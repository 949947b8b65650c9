package isa

import (
	"errors"
	"fmt"
)

// ErrImmediateOutOfRange is returned when a BigR immediate does not fit
// the encodable range (0..=247 for bytes, 0..=65527 for wides).
var ErrImmediateOutOfRange = errors.New("immediate out of BigR range")

// MaxByteBigRImmediate is the largest immediate encodable in a byte
// BigR field.
const MaxByteBigRImmediate = 247

// MaxWideBigRImmediate is the largest immediate encodable in a wide
// BigR field.
const MaxWideBigRImmediate = 65527

// EncodeByteBigR packs a byte register index (0..=7) or an immediate
// (0..=247) into the single byte a ByteBigR field occupies. An
// immediate of exactly 0 is indistinguishable from, and encoded as,
// register 0.
func EncodeByteBigR(register *ByteRegister, immediate uint8) (uint8, error) {
	if register != nil {
		return uint8(*register), nil
	}
	if immediate == 0 {
		return uint8(BZero), nil
	}
	if immediate > MaxByteBigRImmediate {
		return 0, fmt.Errorf("%w: %d (max %d)", ErrImmediateOutOfRange, immediate, MaxByteBigRImmediate)
	}
	return immediate + 7, nil
}

// DecodeByteBigR splits a ByteBigR byte back into either a register
// (index 0..=7) or an immediate value (0 or 8..=254, shifted back down
// by 7).
func DecodeByteBigR(encoded uint8) (register *ByteRegister, immediate uint8) {
	if encoded < 8 {
		r := ByteRegister(encoded)
		return &r, 0
	}
	return nil, encoded - 7
}

// EncodeWideBigR packs a wide register index (0..=7) or an immediate
// (0..=65527) into the 16-bit field a WideBigR occupies.
func EncodeWideBigR(register *WideRegister, immediate uint16) (uint16, error) {
	if register != nil {
		return uint16(*register), nil
	}
	if immediate == 0 {
		return uint16(WZero), nil
	}
	if immediate > MaxWideBigRImmediate {
		return 0, fmt.Errorf("%w: %d (max %d)", ErrImmediateOutOfRange, immediate, MaxWideBigRImmediate)
	}
	return immediate + 7, nil
}

// DecodeWideBigR splits a WideBigR 16-bit value back into either a
// register (index 0..=7) or an immediate value.
func DecodeWideBigR(encoded uint16) (register *WideRegister, immediate uint16) {
	if encoded < 8 {
		r := WideRegister(encoded)
		return &r, 0
	}
	return nil, encoded - 7
}
