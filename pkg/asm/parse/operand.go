package parse

import (
	"fmt"

	"github.com/technichron/telda/pkg/isa"
)

// OperandKind tags the concrete variant held by an Operand.
type OperandKind int

const (
	OperandByte OperandKind = iota
	OperandWide
	OperandNumber
	OperandByteRegister
	OperandWideRegister
	OperandLabel
)

// Operand is one comma-separated token in an instruction's operand
// list, still in source form: registers are resolved to their enum,
// but byte/wide/plain-number literals are not yet disambiguated
// against the shape they will end up filling, and labels are not yet
// resolved to offsets.
type Operand struct {
	Kind         OperandKind
	Byte         uint8
	Wide         uint16
	Number       int32
	ByteRegister isa.ByteRegister
	WideRegister isa.WideRegister
	Label        string
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandByte:
		return fmt.Sprintf("%db", o.Byte)
	case OperandWide:
		return fmt.Sprintf("%dw", o.Wide)
	case OperandNumber:
		return fmt.Sprintf("%d", o.Number)
	case OperandByteRegister:
		return o.ByteRegister.String()
	case OperandWideRegister:
		return o.WideRegister.String()
	case OperandLabel:
		return o.Label
	default:
		return "?"
	}
}
