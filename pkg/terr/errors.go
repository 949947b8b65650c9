// Package terr names the error taxonomy shared by the assembler and
// linker, so callers can discriminate failure kinds with errors.Is
// while still getting a rich, formatted message via MakeError.
package terr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse covers malformed source lines, unknown directives,
	// unknown mnemonics, unknown escapes and out-of-range literals.
	ErrParse = errors.New("parse error")
	// ErrEncoding covers immediates that exceed their BigR range.
	ErrEncoding = errors.New("encoding error")
	// ErrUndefinedReference is raised by the linker in executable mode
	// when a symbol is still Unknown after merging every input.
	ErrUndefinedReference = errors.New("undefined reference")
	// ErrDuplicateGlobal is raised when two objects concretely define
	// the same global symbol name.
	ErrDuplicateGlobal = errors.New("duplicate global symbol")
	// ErrNoEntryPoint is raised when an executable is requested but no
	// entry point was defined or overridden.
	ErrNoEntryPoint = errors.New("no entry point")
	// ErrNoSuchSegment is raised when a relocation names a segment
	// absent from its owning object.
	ErrNoSuchSegment = errors.New("reference to non-existent segment")
	// ErrInvalidEntryPointFormat is raised when -E 0x... fails to parse.
	ErrInvalidEntryPointFormat = errors.New("invalid entry point format")
	// ErrIo wraps any file-system failure encountered while reading
	// source, includes or object files, or writing output.
	ErrIo = errors.New("io error")
)

// MakeError wraps a sentinel error kind with a formatted detail
// message, keeping it discoverable via errors.Is(err, kind).
func MakeError(kind error, detail string, args ...any) error {
	return fmt.Errorf("%w: "+detail, append([]any{kind}, args...)...)
}

// Multi accumulates independent failures so that a batch operation
// (linking N objects) can report every cause before exiting, per the
// propagation rules in the error handling design.
type Multi struct {
	Errors []error
}

func (m *Multi) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *Multi) HasErrors() bool {
	return len(m.Errors) > 0
}

// AsError returns nil if no failures were recorded, otherwise itself.
func (m *Multi) AsError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

func (m *Multi) Error() string {
	lines := make([]string, len(m.Errors))
	for i, err := range m.Errors {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the accumulated errors to errors.Is/As.
func (m *Multi) Unwrap() []error {
	return m.Errors
}
