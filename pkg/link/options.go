// Package link merges relocatable objects produced by pkg/asm into one
// linked object: it lays out every input's segments into a single
// shared address space, resolves symbol references across object
// boundaries, and patches every relocation once final addresses are
// known.
package link

// KeySegments names, by position, the deterministic order segments are
// laid out and concatenated in: Text, RoData, Data, Bss. Zero is
// excluded: it is not real storage, only the reserved low range -E can
// target directly with a "0x..." literal. Link itself does not read
// KeySegments; it lays segments out from segmentTypeOrder in link.go,
// which lists the same order as obj.SegmentType values.
var KeySegments = []SegmentOrder{SegmentOrderText, SegmentOrderRoData, SegmentOrderData, SegmentOrderBss}

// SegmentOrder is a segment's position in KeySegments. Its values are
// positions (0..3), not obj.SegmentType values.
type SegmentOrder = uint8

const (
	SegmentOrderText SegmentOrder = iota
	SegmentOrderRoData
	SegmentOrderData
	SegmentOrderBss
)

// ZeroPageSize is the reserved low address range below every linked
// object's real segments, matching the low addresses -E's "0x..." form
// is meant to name directly (interrupt vectors, hardware registers —
// addresses a program can reference without ever being assigned by the
// linker).
const ZeroPageSize = 0x10

// Options configures one link run.
type Options struct {
	// SetEntry overrides or supplies the linked object's entry point.
	// A "0x"-prefixed value names an absolute offset within the
	// reserved zero page; anything else names a global symbol that
	// must be defined by one of the linked objects. Empty means no
	// override: the first input object that carries its own entry
	// point wins.
	SetEntry string

	// StripInternal drops every defined-but-non-global symbol from the
	// output once relocations are patched, keeping only externally
	// visible symbols (and any global symbol still unresolved, in a
	// partial, non-executable link). An internal symbol that a
	// relocation names is still added back, so that relocation has a
	// symbol to index.
	StripInternal bool

	// Executable requires the linked object to carry a concrete entry
	// point and leaves no unresolved external reference; either
	// failing raises an error instead of producing a linkable-further
	// partial object.
	Executable bool
}
