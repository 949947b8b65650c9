package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technichron/telda/pkg/isa"
)

func TestEncodeByteBigRRegister(t *testing.T) {
	r := isa.Cl
	v, err := isa.EncodeByteBigR(&r, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(isa.Cl), v)
}

func TestEncodeByteBigRZeroImmediate(t *testing.T) {
	v, err := isa.EncodeByteBigR(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(isa.BZero), v)
}

func TestEncodeByteBigRImmediateBoundary(t *testing.T) {
	v, err := isa.EncodeByteBigR(nil, isa.MaxByteBigRImmediate)
	require.NoError(t, err)
	assert.Equal(t, uint8(isa.MaxByteBigRImmediate+7), v)

	_, err = isa.EncodeByteBigR(nil, isa.MaxByteBigRImmediate+1)
	assert.ErrorIs(t, err, isa.ErrImmediateOutOfRange)
}

func TestDecodeByteBigRRoundTrip(t *testing.T) {
	r := isa.Bh
	encoded, err := isa.EncodeByteBigR(&r, 0)
	require.NoError(t, err)
	gotReg, gotImm := isa.DecodeByteBigR(encoded)
	require.NotNil(t, gotReg)
	assert.Equal(t, isa.Bh, *gotReg)
	assert.Zero(t, gotImm)

	encoded, err = isa.EncodeByteBigR(nil, 200)
	require.NoError(t, err)
	gotReg, gotImm = isa.DecodeByteBigR(encoded)
	assert.Nil(t, gotReg)
	assert.Equal(t, uint8(200), gotImm)
}

func TestEncodeWideBigRImmediateBoundary(t *testing.T) {
	v, err := isa.EncodeWideBigR(nil, isa.MaxWideBigRImmediate)
	require.NoError(t, err)
	assert.Equal(t, uint16(isa.MaxWideBigRImmediate+7), v)

	_, err = isa.EncodeWideBigR(nil, isa.MaxWideBigRImmediate+1)
	assert.ErrorIs(t, err, isa.ErrImmediateOutOfRange)
}
