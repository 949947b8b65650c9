package parse

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/technichron/telda/pkg/isa"
	"github.com/technichron/telda/pkg/terr"
)

// LineKind tags the concrete variant held by a Line.
type LineKind int

const (
	LineComment LineKind = iota
	LineLabel
	LineInstruction
	LineDirectiveString
	LineDirectiveByte
	LineDirectiveWide
	LineDirectiveInclude
)

// Line is one source line after grammar classification: a label
// definition, an instruction with its operand list, a directive, or a
// comment (kept only so callers counting line numbers stay in sync).
type Line struct {
	Kind LineKind

	Label    string   // LineLabel
	Mnemonic string   // LineInstruction
	Operands []Operand // LineInstruction

	StringData []byte // LineDirectiveString
	ByteData   uint8   // LineDirectiveByte
	WideData   uint16  // LineDirectiveWide
	IncludePath string // LineDirectiveInclude

	LineNumber int
}

// Lines lazily scans a character stream into a sequence of Line
// values, skipping blank lines. It is stateless beyond the underlying
// scanner: each call to Next consumes exactly one source line (or
// none, for blank lines, which are silently folded into the next
// non-blank one).
type Lines struct {
	scanner *bufio.Scanner
	lineNo  int
}

// NewLines creates a Line sequence over r.
func NewLines(r io.Reader) *Lines {
	return &Lines{scanner: bufio.NewScanner(r)}
}

// Next returns the next source line, or (Line{}, false, nil) at end of
// input. A parse error aborts the scan immediately.
func (l *Lines) Next() (Line, bool, error) {
	for l.scanner.Scan() {
		l.lineNo++
		raw := strings.TrimSpace(l.scanner.Text())

		if raw == "" {
			continue
		}

		line, err := parseLine(raw)
		if err != nil {
			return Line{}, false, terr.MakeError(terr.ErrParse, "line %d: %v", l.lineNo, err)
		}
		line.LineNumber = l.lineNo
		return line, true, nil
	}

	if err := l.scanner.Err(); err != nil {
		return Line{}, false, terr.MakeError(terr.ErrParse, "reading source: %v", err)
	}
	return Line{}, false, nil
}

func parseLine(raw string) (Line, error) {
	if strings.HasPrefix(raw, ";") || strings.HasPrefix(raw, "//") {
		return Line{Kind: LineComment}, nil
	}

	if strings.HasPrefix(raw, ".") {
		return parseDirective(raw[1:])
	}

	if strings.HasSuffix(raw, ":") {
		return Line{Kind: LineLabel, Label: raw[:len(raw)-1]}, nil
	}

	return parseInstruction(raw)
}

func parseDirective(body string) (Line, error) {
	name, arg, _ := strings.Cut(body, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "string":
		arg = strings.TrimPrefix(arg, "\"")
		arg = strings.TrimSuffix(arg, "\"")
		data, err := parseStringLiteral(arg)
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: LineDirectiveString, StringData: data}, nil

	case "byte":
		v, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return Line{}, terr.MakeError(terr.ErrParse, "invalid .byte literal %q: %v", arg, err)
		}
		return Line{Kind: LineDirectiveByte, ByteData: uint8(v)}, nil

	case "wide", "word":
		v, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return Line{}, terr.MakeError(terr.ErrParse, "invalid .%s literal %q: %v", name, arg, err)
		}
		return Line{Kind: LineDirectiveWide, WideData: uint16(v)}, nil

	case "include":
		arg = strings.TrimPrefix(arg, "\"")
		arg = strings.TrimSuffix(arg, "\"")
		if arg == "" {
			return Line{}, terr.MakeError(terr.ErrParse, ".include requires a path argument")
		}
		return Line{Kind: LineDirectiveInclude, IncludePath: arg}, nil

	default:
		return Line{}, terr.MakeError(terr.ErrParse, "unknown directive %q", name)
	}
}

func parseInstruction(raw string) (Line, error) {
	mnemonic, rest, found := strings.Cut(raw, " ")
	if !found {
		return Line{Kind: LineInstruction, Mnemonic: mnemonic}, nil
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return Line{Kind: LineInstruction, Mnemonic: mnemonic}, nil
	}

	parts := strings.Split(rest, ",")
	operands := make([]Operand, 0, len(parts))
	for _, p := range parts {
		op, err := parseOperand(strings.TrimSpace(p))
		if err != nil {
			return Line{}, err
		}
		operands = append(operands, op)
	}

	return Line{Kind: LineInstruction, Mnemonic: mnemonic, Operands: operands}, nil
}

func parseOperand(arg string) (Operand, error) {
	if r, ok := isa.ByteRegisterByName(arg); ok {
		return Operand{Kind: OperandByteRegister, ByteRegister: r}, nil
	}
	if r, ok := isa.WideRegisterByName(arg); ok {
		return Operand{Kind: OperandWideRegister, WideRegister: r}, nil
	}

	switch {
	case strings.HasSuffix(arg, "b") && arg != "b":
		digits := arg[:len(arg)-1]
		if v, ok := parseIntLiteral(digits, 8); ok {
			return Operand{Kind: OperandByte, Byte: uint8(v)}, nil
		}
	case strings.HasSuffix(arg, "w") && arg != "w":
		digits := arg[:len(arg)-1]
		if v, ok := parseIntLiteral(digits, 16); ok {
			return Operand{Kind: OperandWide, Wide: uint16(v)}, nil
		}
	case strings.HasPrefix(arg, "'") && strings.HasSuffix(arg, "'") && len(arg) >= 2:
		c, rest, err := parseByteChar(arg[1 : len(arg)-1])
		if err != nil {
			return Operand{}, err
		}
		if rest != "" {
			return Operand{}, terr.MakeError(terr.ErrParse, "malformed character literal %q", arg)
		}
		return Operand{Kind: OperandByte, Byte: c}, nil
	}

	if v, ok := parseIntLiteral(arg, 32); ok {
		return Operand{Kind: OperandNumber, Number: int32(v)}, nil
	}

	if arg == "" {
		return Operand{}, terr.MakeError(terr.ErrParse, "empty operand")
	}

	return Operand{Kind: OperandLabel, Label: arg}, nil
}

// parseIntLiteral accepts decimal or 0x-prefixed hex, signed or
// unsigned, within the given bit width.
func parseIntLiteral(s string, bits int) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseUint(s, 0, bits); err == nil {
		return int64(v), true
	}
	if v, err := strconv.ParseInt(s, 0, bits); err == nil {
		return v, true
	}
	return 0, false
}
