package obj

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpListsSegmentsSymbolsRelocationsAndEntry(t *testing.T) {
	o := buildSampleObject()

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, o))
	out := buf.String()

	assert.Contains(t, out, "=== Segments ===")
	assert.Contains(t, out, "text")
	assert.Contains(t, out, "01 02 03 04")

	assert.Contains(t, out, "=== Symbols (3) ===")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "(global)")
	assert.Contains(t, out, "helper")
	assert.Contains(t, out, "(internal)")
	assert.Contains(t, out, "extern")
	assert.Contains(t, out, "(undefined, global)")

	assert.Contains(t, out, "=== Relocations (1) ===")
	assert.Contains(t, out, "extern")
	assert.Contains(t, out, "absolute")

	assert.Contains(t, out, "=== Entry ===")
	assert.Contains(t, out, "text+0x0000")
}

func TestDumpEmptyObjectReportsNone(t *testing.T) {
	o := NewObject()

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, o))
	out := buf.String()

	assert.Contains(t, out, "=== Symbols (0) ===")
	assert.Contains(t, out, "=== Relocations (0) ===")
	assert.Contains(t, out, "=== Entry ===")
	assert.Contains(t, out, "(none)")
}

func TestFormatBytesTruncatesLongSegments(t *testing.T) {
	data := make([]byte, 40)
	out := formatBytes(data)
	assert.Contains(t, out, "more bytes")
}
