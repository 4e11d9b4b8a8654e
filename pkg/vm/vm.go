// Package vm implements the instruction-pointer virtual machine: a
// position and direction walking the grid, a LIFO operand stack, string
// mode, I/O buffers, breakpoints, and the optional canvas sub-machine.
// Execution is synchronous and single-threaded; the caller drives it
// one Step at a time and owns the pause/resume policy.
package vm

import (
	"errors"
	"math"
	"time"

	"github.com/zurustar/funge/pkg/canvas"
	"github.com/zurustar/funge/pkg/fungespace"
)

// Direction is one of the four unit direction vectors. Diagonals do
// not exist in this machine.
type Direction int

const (
	DirEast Direction = iota
	DirWest
	DirNorth
	DirSouth
)

// Delta returns the per-step coordinate change.
func (d Direction) Delta() (dx, dy int64) {
	switch d {
	case DirEast:
		return 1, 0
	case DirWest:
		return -1, 0
	case DirNorth:
		return 0, -1
	default:
		return 0, 1
	}
}

// Reversed returns the opposite direction.
func (d Direction) Reversed() Direction {
	switch d {
	case DirEast:
		return DirWest
	case DirWest:
		return DirEast
	case DirNorth:
		return DirSouth
	default:
		return DirNorth
	}
}

const (
	// HistoryDebounce is the minimum age a history timestamp must reach
	// before a revisit refreshes it.
	HistoryDebounce = 500 * time.Millisecond

	// HistoryRetention is how long consumers are expected to keep
	// history entries before pruning them. The VM itself never prunes.
	HistoryRetention = 5 * time.Second

	// maxSpaceSkip bounds the skip-spaces slide so a fully blank grid
	// cannot spin a step forever.
	maxSpaceSkip = 1000
)

// State is one interpreter instance. The exported fields are read (and
// for Breakpoints, Input and the histories, also written) by the
// embedding session and front-end; the machine itself is only ever
// driven from a single goroutine.
type State struct {
	Space      *fungespace.Space
	Position   fungespace.Pos
	Dir        Direction
	StringMode bool

	// Output accumulates what the program printed.
	Output string

	// Input is drained front-first by the read-character opcode and
	// refilled out-of-band by the caller.
	Input []rune

	// Breakpoints pause automatic running when the pointer lands on a
	// member. Manual stepping ignores them.
	Breakpoints map[fungespace.Pos]struct{}

	// PosHistory, GetHistory and PutHistory are telemetry for the
	// front-end: coordinate to last-touched time, debounced by
	// HistoryDebounce, pruned by the consumer.
	PosHistory map[fungespace.Pos]time.Time
	GetHistory map[fungespace.Pos]time.Time
	PutHistory map[fungespace.Pos]time.Time

	// Canvas is nil until the program executes the setup opcode.
	Canvas *canvas.Canvas

	// StepCount counts Step calls on a live machine.
	StepCount int64

	stack  []int64
	halted bool
	clock  func() time.Time
}

// New returns a machine over an empty grid.
func New() *State {
	return NewFromSpace(fungespace.New())
}

// NewFromString loads program text and returns a machine positioned at
// the origin heading east.
func NewFromString(src string) *State {
	return NewFromSpace(fungespace.NewFromString(src))
}

// NewFromSpace returns a machine executing the given grid. The machine
// takes ownership of the grid; callers keeping a pristine copy must
// clone before constructing.
func NewFromSpace(space *fungespace.Space) *State {
	return &State{
		Space:       space,
		Dir:         DirEast,
		Breakpoints: make(map[fungespace.Pos]struct{}),
		PosHistory:  make(map[fungespace.Pos]time.Time),
		GetHistory:  make(map[fungespace.Pos]time.Time),
		PutHistory:  make(map[fungespace.Pos]time.Time),
		clock:       time.Now,
	}
}

// Halted reports whether the program has ended.
func (st *State) Halted() bool {
	return st.halted
}

// Push pushes v onto the operand stack.
func (st *State) Push(v int64) {
	st.stack = append(st.stack, v)
}

// Pop removes and returns the top of the stack. Underflow is defined:
// an empty stack yields 0.
func (st *State) Pop() int64 {
	if len(st.stack) == 0 {
		return 0
	}
	v := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]
	return v
}

// Stack returns a copy of the operand stack, bottom first.
func (st *State) Stack() []int64 {
	out := make([]int64, len(st.stack))
	copy(out, st.stack)
	return out
}

// AppendInput queues s for the read-character opcode.
func (st *State) AppendInput(s string) {
	st.Input = append(st.Input, []rune(s)...)
}

// ToggleBreakpoint adds or removes p from the breakpoint set.
func (st *State) ToggleBreakpoint(p fungespace.Pos) {
	if _, ok := st.Breakpoints[p]; ok {
		delete(st.Breakpoints, p)
	} else {
		st.Breakpoints[p] = struct{}{}
	}
}

// Step executes one logical step: read the cell under the pointer,
// apply it (as data in string mode, as an opcode otherwise), advance
// with coordinate wraparound, then test the new position against the
// breakpoint set and optionally slide over blank cells.
func (st *State) Step(set Settings) (Status, error) {
	if st.halted {
		return StatusHalted, nil
	}
	st.StepCount++

	op, present := st.Space.Get(st.Position)
	if st.StringMode {
		if !present {
			op = fungespace.Blank
		}
		if op == '"' {
			st.StringMode = false
		} else {
			st.Push(op)
		}
		return st.finishStep(set)
	}
	if !present || op == fungespace.Blank {
		return st.finishStep(set)
	}

	if op < 0 || op > 0xff {
		return st.applyInvalidPolicy(set, &Error{Kind: InvalidOperation, Op: op, Pos: st.Position})
	}
	status, err := st.exec(set, byte(op))
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == InvalidOperation {
			return st.applyInvalidPolicy(set, err)
		}
		return StatusError, err
	}
	switch status {
	case StatusHalted:
		st.halted = true
		return StatusHalted, nil
	case StatusBreakpoint:
		// Input ran dry; stay put so the opcode retries once the
		// caller has buffered more.
		return StatusBreakpoint, nil
	}
	return st.finishStep(set)
}

// applyInvalidPolicy resolves an invalid opcode per the configured
// policy: halt surfaces the error without moving, reflect reverses
// before the usual advance, ignore just advances.
func (st *State) applyInvalidPolicy(set Settings, err error) (Status, error) {
	switch set.InvalidOp {
	case PolicyHalt:
		return StatusError, err
	case PolicyReflect:
		st.Dir = st.Dir.Reversed()
	}
	return st.finishStep(set)
}

// finishStep advances the pointer, checks breakpoints, and applies the
// skip-spaces slide.
func (st *State) finishStep(set Settings) (Status, error) {
	st.advance(set)
	if _, hit := st.Breakpoints[st.Position]; hit {
		return StatusBreakpoint, nil
	}
	if set.SkipSpaces && !st.StringMode {
		for i := 0; i < maxSpaceSkip; i++ {
			if st.Space.GetWrapped(st.Position) != fungespace.Blank {
				break
			}
			st.advance(set)
			if _, hit := st.Breakpoints[st.Position]; hit {
				return StatusBreakpoint, nil
			}
		}
	}
	return StatusNormal, nil
}

// advance moves one cell in the current direction. A component that
// would go negative wraps into [0, MaxInt64]; the plane is a torus with
// modulus 2^63 rather than truly unbounded.
func (st *State) advance(set Settings) {
	if set.RecordPositionHistory {
		st.record(st.PosHistory, st.Position)
	}
	dx, dy := st.Dir.Delta()
	st.Position.X = wrapCoord(st.Position.X + dx)
	st.Position.Y = wrapCoord(st.Position.Y + dy)
}

func wrapCoord(c int64) int64 {
	if c < 0 {
		c &= math.MaxInt64
	}
	return c
}

// record refreshes a history timestamp if it is older than the
// debounce window.
func (st *State) record(m map[fungespace.Pos]time.Time, p fungespace.Pos) {
	now := st.clock()
	if prev, ok := m[p]; ok && now.Sub(prev) <= HistoryDebounce {
		return
	}
	m[p] = now
}
