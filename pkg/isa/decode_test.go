package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technichron/telda/pkg/isa"
)

func TestDecodeAdvancesByOnePlusShapeSize(t *testing.T) {
	// halt (Nothing, 0 bytes), then add.b r,r,r (TwoByteOneBig, 2 bytes)
	data := []byte{uint8(isa.HALT), uint8(isa.ADD_B), 0x12, 0x00}

	d, next, err := isa.Decode(data, 0)
	require.NoError(t, err)
	assert.Equal(t, isa.HALT, d.OpCode)
	assert.Equal(t, isa.Nothing, d.Shape)
	assert.Equal(t, 1, next)

	d, next, err = isa.Decode(data, next)
	require.NoError(t, err)
	assert.Equal(t, isa.ADD_B, d.OpCode)
	assert.Equal(t, isa.TwoByteOneBig, d.Shape)
	assert.Equal(t, 4, next)
	assert.Equal(t, []byte{0x12, 0x00}, d.OperandData)
}

func TestDecodeTruncatedOperandErrors(t *testing.T) {
	data := []byte{uint8(isa.CALL), 0x01}
	_, _, err := isa.Decode(data, 0)
	assert.Error(t, err)
}

func TestDecodeUnknownOpcodeErrors(t *testing.T) {
	data := []byte{0xFF}
	_, _, err := isa.Decode(data, 0)
	assert.Error(t, err)
}

func TestMnemonicsCoversEveryOpcode(t *testing.T) {
	assert.Len(t, isa.Mnemonics(), isa.TotalOpcodes)
}
