package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technichron/telda/pkg/obj"
	"github.com/technichron/telda/pkg/terr"
)

func input(path string, o *obj.Object) Input {
	return Input{Path: path, Object: o}
}

func TestLinkEmptyInputNonExecutableProducesEmptyObject(t *testing.T) {
	merged, err := Link(nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, merged.Symbols)
	assert.Nil(t, merged.Entry)
}

func TestLinkEmptyInputExecutableRequiresEntry(t *testing.T) {
	_, err := Link(nil, Options{Executable: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, terr.ErrNoEntryPoint)
}

func TestLinkHelloWorldResolvesExternalAndPropagatesEntry(t *testing.T) {
	// object 1: defines "start" (entry) and calls external "foo",
	// leaving a placeholder + relocation at offset 2.
	main := obj.NewObject()
	mainText := main.Segment(obj.SegmentText)
	mainText.Data = []byte{0x01, 0x02, 0x00, 0x00}
	main.Symbols = []obj.Symbol{
		{Name: "start", Segment: obj.SegmentText, Location: 0, Global: true},
		{Name: "foo", Segment: obj.SegmentUnknown, Global: true},
	}
	main.Relocations = []obj.Relocation{
		{Segment: obj.SegmentText, Location: 2, Symbol: 1, Format: obj.RelocationAbsolute},
	}
	main.Entry = &obj.Entry{Segment: obj.SegmentText, Offset: 0}

	// object 2: defines "foo".
	lib := obj.NewObject()
	libText := lib.Segment(obj.SegmentText)
	libText.Data = []byte{0x03, 0x04}
	lib.Symbols = []obj.Symbol{
		{Name: "foo", Segment: obj.SegmentText, Location: 0, Global: true},
	}

	merged, err := Link([]Input{input("main.to", main), input("lib.to", lib)}, Options{Executable: true})
	require.NoError(t, err)

	require.NotNil(t, merged.Entry)
	assert.Equal(t, obj.SegmentText, merged.Entry.Segment)
	assert.Equal(t, uint32(ZeroPageSize), merged.Entry.Offset)

	fooIdx, ok := merged.SymbolByName("foo")
	require.True(t, ok)
	fooAddr := merged.Symbols[fooIdx].Location
	assert.Equal(t, uint32(ZeroPageSize+len(mainText.Data)), fooAddr)

	text := merged.Segments[obj.SegmentText]
	assert.Equal(t, uint32(ZeroPageSize), text.Base)
	patched := uint16(text.Data[2]) | uint16(text.Data[3])<<8
	assert.Equal(t, uint16(fooAddr), patched)

	// the resolved relocation must still be kept in the output table so
	// this linked object could itself be fed into another link run.
	require.Len(t, merged.Relocations, 1)
	assert.Equal(t, uint32(2), merged.Relocations[0].Location)
}

func TestLinkDuplicateGlobalIsRejected(t *testing.T) {
	a := obj.NewObject()
	aText := a.Segment(obj.SegmentText)
	aText.Data = []byte{0x00}
	a.Symbols = []obj.Symbol{{Name: "shared", Segment: obj.SegmentText, Location: 0, Global: true}}

	b := obj.NewObject()
	bText := b.Segment(obj.SegmentText)
	bText.Data = []byte{0x00}
	b.Symbols = []obj.Symbol{{Name: "shared", Segment: obj.SegmentText, Location: 0, Global: true}}

	_, err := Link([]Input{input("a.to", a), input("b.to", b)}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, terr.ErrDuplicateGlobal)
	assert.Contains(t, err.Error(), "a.to")
	assert.Contains(t, err.Error(), "b.to")
}

func TestLinkDuplicateGlobalAtSameAddressIsStillRejected(t *testing.T) {
	// Two concrete definitions of the same global are a failure even
	// when they happen to land at the same final address — the spec
	// does not carve out a same-address exception.
	a := obj.NewObject()
	aText := a.Segment(obj.SegmentText)
	aText.Data = nil
	a.Symbols = []obj.Symbol{{Name: "shared", Segment: obj.SegmentText, Location: 0, Global: true}}

	b := obj.NewObject()
	bText := b.Segment(obj.SegmentText)
	bText.Data = nil
	b.Symbols = []obj.Symbol{{Name: "shared", Segment: obj.SegmentText, Location: 0, Global: true}}

	_, err := Link([]Input{input("a.to", a), input("b.to", b)}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, terr.ErrDuplicateGlobal)
}

func TestLinkResolvesExternalDefinedInLaterObject(t *testing.T) {
	// Object order puts the reference before the definition; the
	// two-pass merge must still resolve it since every global
	// definition is recorded before any relocation is patched.
	first := obj.NewObject()
	firstText := first.Segment(obj.SegmentText)
	firstText.Data = []byte{0x00, 0x00}
	first.Symbols = []obj.Symbol{{Name: "later", Segment: obj.SegmentUnknown, Global: true}}
	first.Relocations = []obj.Relocation{
		{Segment: obj.SegmentText, Location: 0, Symbol: 0, Format: obj.RelocationAbsolute},
	}

	second := obj.NewObject()
	secondText := second.Segment(obj.SegmentText)
	secondText.Data = []byte{0xAA}
	second.Symbols = []obj.Symbol{{Name: "later", Segment: obj.SegmentText, Location: 0, Global: true}}

	merged, err := Link([]Input{input("first.to", first), input("second.to", second)}, Options{Executable: true, SetEntry: "later"})
	require.NoError(t, err)

	laterIdx, ok := merged.SymbolByName("later")
	require.True(t, ok)
	wantAddr := merged.Symbols[laterIdx].Location

	text := merged.Segments[obj.SegmentText]
	patched := uint16(text.Data[0]) | uint16(text.Data[1])<<8
	assert.Equal(t, uint16(wantAddr), patched)

	require.NotNil(t, merged.Entry)
	assert.Equal(t, wantAddr, merged.Entry.Offset)
}

func TestLinkBigRRelocationOutOfRangeAddressErrors(t *testing.T) {
	// caller contributes a 2-byte Text segment, so Bss is based at
	// ZeroPageSize+2; placing "target" at the right Bss offset lands
	// its final address at 65530, three past isa.MaxWideBigRImmediate
	// (65527) — too large for a BigR field.
	const bssLocation = 65530 - (ZeroPageSize + 2)

	big := obj.NewObject()
	bss := big.Segment(obj.SegmentBss)
	bss.Len = bssLocation + 1
	big.Symbols = []obj.Symbol{
		{Name: "target", Segment: obj.SegmentBss, Location: bssLocation, Global: true},
	}

	caller := obj.NewObject()
	callerText := caller.Segment(obj.SegmentText)
	callerText.Data = []byte{0x00, 0x00}
	caller.Symbols = []obj.Symbol{{Name: "target", Segment: obj.SegmentUnknown, Global: true}}
	caller.Relocations = []obj.Relocation{
		{Segment: obj.SegmentText, Location: 0, Symbol: 0, Format: obj.RelocationBigR},
	}

	_, err := Link([]Input{input("big.to", big), input("caller.to", caller)}, Options{})
	require.Error(t, err)

	var multi *terr.Multi
	require.True(t, errors.As(err, &multi))
	assert.ErrorIs(t, err, terr.ErrEncoding)
}

func TestLinkRelocationNamingAbsentSegmentErrors(t *testing.T) {
	// the relocation claims to patch RoData, but this object never
	// declared a RoData segment at all.
	o := obj.NewObject()
	text := o.Segment(obj.SegmentText)
	text.Data = []byte{0x00, 0x00}
	o.Symbols = []obj.Symbol{{Name: "x", Segment: obj.SegmentUnknown, Global: true}}
	o.Relocations = []obj.Relocation{
		{Segment: obj.SegmentRoData, Location: 0, Symbol: 0, Format: obj.RelocationAbsolute},
	}

	_, err := Link([]Input{input("o.to", o)}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, terr.ErrNoSuchSegment)
	assert.Contains(t, err.Error(), "o.to")
}

func TestLinkUndefinedReferenceNamesFile(t *testing.T) {
	o := obj.NewObject()
	text := o.Segment(obj.SegmentText)
	text.Data = []byte{0x00, 0x00}
	o.Symbols = []obj.Symbol{{Name: "missing", Segment: obj.SegmentUnknown, Global: true}}
	o.Relocations = []obj.Relocation{
		{Segment: obj.SegmentText, Location: 0, Symbol: 0, Format: obj.RelocationAbsolute},
	}
	o.Entry = &obj.Entry{Segment: obj.SegmentText, Offset: 0}

	_, err := Link([]Input{input("lonely.to", o)}, Options{Executable: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, terr.ErrUndefinedReference)
	assert.Contains(t, err.Error(), "lonely.to")
	assert.Contains(t, err.Error(), "missing")
}
