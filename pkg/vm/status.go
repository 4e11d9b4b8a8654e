package vm

import (
	"fmt"

	"github.com/zurustar/funge/pkg/fungespace"
)

// Status classifies the outcome of one Step.
type Status int

const (
	// StatusNormal means the step completed and the machine may continue.
	StatusNormal Status = iota
	// StatusBreakpoint means automatic running should pause: the pointer
	// landed on a breakpoint, or the program is waiting for input.
	StatusBreakpoint
	// StatusHalted means the program ended.
	StatusHalted
	// StatusError means the machine is frozen on an error.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusBreakpoint:
		return "breakpoint"
	case StatusHalted:
		return "halted"
	default:
		return "error"
	}
}

// ErrorKind classifies machine errors.
type ErrorKind int

const (
	// InvalidOperation is a cell value with no opcode assigned.
	InvalidOperation ErrorKind = iota
	// Unimplemented is a recognized opcode with no semantics yet.
	Unimplemented
)

// Error is a frozen-machine error: which value, at which coordinate,
// and why it could not execute.
type Error struct {
	Kind ErrorKind
	Op   int64
	Pos  fungespace.Pos
}

func (e *Error) Error() string {
	kind := "invalid operation"
	if e.Kind == Unimplemented {
		kind = "unimplemented operation"
	}
	if e.Op >= 0x21 && e.Op <= 0x7e {
		return fmt.Sprintf("%s %q at (%d,%d)", kind, rune(e.Op), e.Pos.X, e.Pos.Y)
	}
	return fmt.Sprintf("%s %d at (%d,%d)", kind, e.Op, e.Pos.X, e.Pos.Y)
}
