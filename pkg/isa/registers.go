// Package isa describes the Telda-2 instruction set: the opcode table,
// the closed set of operand shapes an opcode can take, the BigR
// register-or-immediate encoding and the two register banks.
package isa

import (
	"errors"

	"github.com/technichron/telda/pkg/utils"
)

// ByteRegister is one of the eight 8-bit registers. Index 0 always
// reads as zero.
type ByteRegister uint8

const (
	BZero ByteRegister = iota
	Al
	Ah
	Bl
	Bh
	Cl
	Ch
	Io
)

// WideRegister is one of the eight 16-bit registers. Index 0 always
// reads as zero.
type WideRegister uint8

const (
	WZero WideRegister = iota
	A
	B
	C
	X
	Y
	Z
	S
)

var byteRegisterNames = map[ByteRegister]string{
	BZero: "0", Al: "al", Ah: "ah", Bl: "bl", Bh: "bh", Cl: "cl", Ch: "ch", Io: "io",
}

var wideRegisterNames = map[WideRegister]string{
	WZero: "0", A: "a", B: "b", C: "c", X: "x", Y: "y", Z: "z", S: "s",
}

var byteRegistersByName = utils.InvertedMap(byteRegisterNames)
var wideRegistersByName = utils.InvertedMap(wideRegisterNames)

func (r ByteRegister) String() string {
	if name, ok := byteRegisterNames[r]; ok {
		return name
	}
	return "?"
}

func (r WideRegister) String() string {
	if name, ok := wideRegisterNames[r]; ok {
		return name
	}
	return "?"
}

var ErrUnknownRegister = errors.New("unknown register")

// ByteRegisterByName looks up a byte register by its assembly mnemonic
// (al, ah, bl, bh, cl, ch, io). It does not recognise "0".
func ByteRegisterByName(name string) (ByteRegister, bool) {
	if name == "0" {
		return 0, false
	}
	r, ok := byteRegistersByName[name]
	return r, ok
}

// WideRegisterByName looks up a wide register by its assembly mnemonic
// (a, b, c, x, y, z, s). It does not recognise "0".
func WideRegisterByName(name string) (WideRegister, bool) {
	if name == "0" {
		return 0, false
	}
	r, ok := wideRegistersByName[name]
	return r, ok
}

// TotalByteRegisters is the size of the byte register bank, including
// the read-as-zero pseudo register.
const TotalByteRegisters = 8

// TotalWideRegisters is the size of the wide register bank, including
// the read-as-zero pseudo register.
const TotalWideRegisters = 8
