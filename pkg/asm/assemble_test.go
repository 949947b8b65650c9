package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/obj"
)

func TestAssembleHelloWorldShapeAndEntry(t *testing.T) {
	src := `
start:
  push al
  call foo
  halt

foo:
  ret
`
	o, err := Assemble(strings.NewReader(src))
	require.NoError(t, err)

	text := o.Segments[obj.SegmentText]
	require.NotNil(t, text)
	assert.Equal(t, uint32(8), text.Size())
	assert.Equal(t, uint8(isa.PUSH_B), text.Data[0])
	assert.Equal(t, uint8(isa.CALL), text.Data[2])
	assert.Equal(t, uint8(isa.HALT), text.Data[5])
	assert.Equal(t, uint8(isa.RET), text.Data[6])

	require.NotNil(t, o.Entry)
	assert.Equal(t, obj.SegmentText, o.Entry.Segment)
	assert.Equal(t, uint32(0), o.Entry.Offset)

	require.Len(t, o.Relocations, 1)
	reloc := o.Relocations[0]
	assert.Equal(t, obj.RelocationAbsolute, reloc.Format)
	assert.Equal(t, uint32(3), reloc.Location)
	assert.Equal(t, "foo", o.Symbols[reloc.Symbol].Name)

	fooIdx, ok := o.SymbolByName("foo")
	require.True(t, ok)
	assert.Equal(t, uint32(6), o.Symbols[fooIdx].Location)
	assert.True(t, o.Symbols[fooIdx].Segment == obj.SegmentText)
}

func TestAssembleUndefinedExternalIsGlobalUnknown(t *testing.T) {
	src := `
start:
  call elsewhere
  ret
`
	o, err := Assemble(strings.NewReader(src))
	require.NoError(t, err)

	idx, ok := o.SymbolByName("elsewhere")
	require.True(t, ok)
	assert.Equal(t, obj.SegmentUnknown, o.Symbols[idx].Segment)
	assert.True(t, o.Symbols[idx].Global)
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := Assemble(strings.NewReader("frobnicate al\n"))
	assert.Error(t, err)
}

func TestAssembleByteBigRImmediateBoundary(t *testing.T) {
	src := "push 247b\n"
	o, err := Assemble(strings.NewReader(src))
	require.NoError(t, err)
	text := o.Segments[obj.SegmentText]
	assert.Equal(t, uint8(254), text.Data[1]) // 247 + 7

	_, err = Assemble(strings.NewReader("push 248b\n"))
	assert.Error(t, err)
}

func TestAssembleDirectives(t *testing.T) {
	src := ".byte 1\n.wide 258\n.string \"hi\"\n"
	o, err := Assemble(strings.NewReader(src))
	require.NoError(t, err)
	text := o.Segments[obj.SegmentText]
	assert.Equal(t, []byte{1, 2, 1, 'h', 'i'}, text.Data)
}
