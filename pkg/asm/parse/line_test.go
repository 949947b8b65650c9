package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technichron/telda/pkg/isa"
)

func collectLines(t *testing.T, src string) []Line {
	t.Helper()
	lines := NewLines(strings.NewReader(src))
	var out []Line
	for {
		line, ok, err := lines.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, line)
	}
	return out
}

func TestLinesSkipsBlanksAndClassifiesComments(t *testing.T) {
	lines := collectLines(t, "\n; a comment\n\n// also a comment\nhalt\n")
	require.Len(t, lines, 3)
	assert.Equal(t, LineComment, lines[0].Kind)
	assert.Equal(t, LineComment, lines[1].Kind)
	assert.Equal(t, LineInstruction, lines[2].Kind)
	assert.Equal(t, "halt", lines[2].Mnemonic)
}

func TestLinesParsesLabel(t *testing.T) {
	lines := collectLines(t, "loop:\n")
	require.Len(t, lines, 1)
	assert.Equal(t, LineLabel, lines[0].Kind)
	assert.Equal(t, "loop", lines[0].Label)
}

func TestLinesParsesInstructionWithOperands(t *testing.T) {
	lines := collectLines(t, "mov al, bl\n")
	require.Len(t, lines, 1)
	require.Equal(t, LineInstruction, lines[0].Kind)
	assert.Equal(t, "mov", lines[0].Mnemonic)
	require.Len(t, lines[0].Operands, 2)
	assert.Equal(t, OperandByteRegister, lines[0].Operands[0].Kind)
	assert.Equal(t, isa.Al, lines[0].Operands[0].ByteRegister)
	assert.Equal(t, OperandByteRegister, lines[0].Operands[1].Kind)
	assert.Equal(t, isa.Bl, lines[0].Operands[1].ByteRegister)
}

func TestLinesParsesInstructionWithNoOperands(t *testing.T) {
	lines := collectLines(t, "halt\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "halt", lines[0].Mnemonic)
	assert.Empty(t, lines[0].Operands)
}

func TestDirectiveByteAndWideAcceptHexAndDecimal(t *testing.T) {
	lines := collectLines(t, ".byte 0x1F\n.wide 0x100\n.word 42\n")
	require.Len(t, lines, 3)
	assert.Equal(t, LineDirectiveByte, lines[0].Kind)
	assert.Equal(t, uint8(0x1F), lines[0].ByteData)
	assert.Equal(t, LineDirectiveWide, lines[1].Kind)
	assert.Equal(t, uint16(0x100), lines[1].WideData)
	assert.Equal(t, LineDirectiveWide, lines[2].Kind)
	assert.Equal(t, uint16(42), lines[2].WideData)
}

func TestDirectiveByteRejectsOutOfRangeLiteral(t *testing.T) {
	_, _, err := NewLines(strings.NewReader(".byte 256\n")).Next()
	assert.Error(t, err)
}

func TestDirectiveStringDecodesEscapes(t *testing.T) {
	lines := collectLines(t, `.string "hi\n\0\x41"` + "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, []byte("hi\n\x00A"), lines[0].StringData)
}

func TestDirectiveIncludeRequiresPath(t *testing.T) {
	_, _, err := NewLines(strings.NewReader(".include\n")).Next()
	assert.Error(t, err)
}

func TestDirectiveIncludeCapturesPath(t *testing.T) {
	lines := collectLines(t, ".include foo/bar.t\n")
	require.Len(t, lines, 1)
	assert.Equal(t, LineDirectiveInclude, lines[0].Kind)
	assert.Equal(t, "foo/bar.t", lines[0].IncludePath)
}

func TestUnknownDirectiveErrors(t *testing.T) {
	_, _, err := NewLines(strings.NewReader(".bogus 1\n")).Next()
	assert.Error(t, err)
}

func TestOperandParsesByteWideAndNumberSuffixes(t *testing.T) {
	op, err := parseOperand("10b")
	require.NoError(t, err)
	assert.Equal(t, OperandByte, op.Kind)
	assert.Equal(t, uint8(10), op.Byte)

	op, err = parseOperand("1000w")
	require.NoError(t, err)
	assert.Equal(t, OperandWide, op.Kind)
	assert.Equal(t, uint16(1000), op.Wide)

	op, err = parseOperand("-5")
	require.NoError(t, err)
	assert.Equal(t, OperandNumber, op.Kind)
	assert.Equal(t, int32(-5), op.Number)
}

func TestOperandParsesCharacterLiteral(t *testing.T) {
	op, err := parseOperand("'\\n'")
	require.NoError(t, err)
	assert.Equal(t, OperandByte, op.Kind)
	assert.Equal(t, uint8('\n'), op.Byte)
}

func TestOperandFallsBackToLabel(t *testing.T) {
	op, err := parseOperand("my_label")
	require.NoError(t, err)
	assert.Equal(t, OperandLabel, op.Kind)
	assert.Equal(t, "my_label", op.Label)
}

func TestOperandRejectsEmpty(t *testing.T) {
	_, err := parseOperand("")
	assert.Error(t, err)
}

func TestOperandRecognisesRegisters(t *testing.T) {
	op, err := parseOperand("s")
	require.NoError(t, err)
	assert.Equal(t, OperandWideRegister, op.Kind)
	assert.Equal(t, isa.S, op.WideRegister)
}
