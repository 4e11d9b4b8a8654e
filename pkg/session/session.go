// Package session implements the two-state workbench around the
// interpreter: Editing owns a raw grid and an authoring cursor,
// Playing owns a live machine plus a pristine snapshot of the grid.
// Swapping out of Playing discards everything the run mutated and
// restores the snapshot, leaving the cursor where the pointer stopped.
package session

import (
	"log/slog"
	"time"

	"github.com/zurustar/funge/pkg/fungespace"
	"github.com/zurustar/funge/pkg/scheduler"
	"github.com/zurustar/funge/pkg/vm"
)

// Mode is the session state tag.
type Mode int

const (
	ModeEditing Mode = iota
	ModePlaying
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "playing"
}

// Cursor is the authoring position: where typed characters land, which
// way typing advances, and whether the author is inside a string
// literal (which suppresses direction re-aiming).
type Cursor struct {
	Pos        fungespace.Pos
	Dir        vm.Direction
	StringMode bool
}

// Advance moves one cell in the cursor direction, clamping components
// at 0; the authoring cursor never wraps.
func (c *Cursor) Advance() {
	dx, dy := c.Dir.Delta()
	c.Pos.X = clampZero(c.Pos.X + dx)
	c.Pos.Y = clampZero(c.Pos.Y + dy)
}

// Retreat moves one cell against the cursor direction, clamping at 0.
func (c *Cursor) Retreat() {
	dx, dy := c.Dir.Delta()
	c.Pos.X = clampZero(c.Pos.X - dx)
	c.Pos.Y = clampZero(c.Pos.Y - dy)
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Session owns either an editable grid or a running machine, never
// both. Breakpoints live on the session so they survive mode swaps and
// resets; the machine shares the same set while Playing.
type Session struct {
	Cursor   Cursor
	Follow   bool
	Settings vm.Settings

	// DefaultSpeed is the level run controls reset to when entering
	// Playing.
	DefaultSpeed int

	mode        Mode
	grid        *fungespace.Space // Editing
	snapshot    *fungespace.Space // Playing: pre-run grid
	machine     *vm.State         // Playing
	sched       *scheduler.Scheduler
	breakpoints map[fungespace.Pos]struct{}
	running     bool
	runErr      error
	log         *slog.Logger
}

// New returns a session in Editing mode over an empty grid.
func New() *Session {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an injected time source for tests.
func NewWithClock(now func() time.Time) *Session {
	return &Session{
		DefaultSpeed: scheduler.DefaultSpeed,
		mode:         ModeEditing,
		grid:         fungespace.New(),
		sched:        scheduler.NewWithClock(now),
		breakpoints:  make(map[fungespace.Pos]struct{}),
		log:          slog.Default(),
	}
}

// Mode returns the current state tag.
func (s *Session) Mode() Mode {
	return s.mode
}

// Grid returns the grid a front-end should draw: the editable grid in
// Editing, the machine's (possibly self-modified) grid in Playing.
func (s *Session) Grid() *fungespace.Space {
	if s.mode == ModePlaying {
		return s.machine.Space
	}
	return s.grid
}

// Machine returns the live machine, or nil while Editing.
func (s *Session) Machine() *vm.State {
	return s.machine
}

// Running reports whether automatic stepping is on.
func (s *Session) Running() bool {
	return s.running
}

// Err returns the error that froze the run, if any.
func (s *Session) Err() error {
	return s.runErr
}

// Speed returns the scheduler speed level.
func (s *Session) Speed() int {
	return s.sched.Speed()
}

// SetSpeed applies a clamped speed level.
func (s *Session) SetSpeed(level int) {
	s.sched.SetSpeed(level)
}

// Breakpoints returns the session's breakpoint set. While Playing it is
// the same set the machine consults.
func (s *Session) Breakpoints() map[fungespace.Pos]struct{} {
	return s.breakpoints
}

// ToggleBreakpoint adds or removes p from the breakpoint set.
func (s *Session) ToggleBreakpoint(p fungespace.Pos) {
	if _, ok := s.breakpoints[p]; ok {
		delete(s.breakpoints, p)
	} else {
		s.breakpoints[p] = struct{}{}
	}
}

// LoadSource replaces the grid with the given program text. Only valid
// while Editing; Playing keeps its snapshot untouched.
func (s *Session) LoadSource(text string) {
	if s.mode != ModeEditing {
		return
	}
	s.grid = fungespace.NewFromString(text)
	s.Cursor = Cursor{}
	s.log.Info("program loaded", "mode", s.mode)
}

// SwapMode is the only transition and is symmetric. Editing to Playing
// snapshots the grid and boots a fresh machine from a clone of it with
// run controls reset. Playing to Editing discards the machine, restores
// the pre-run grid, and seeds the cursor at the pointer's last position.
func (s *Session) SwapMode() {
	switch s.mode {
	case ModeEditing:
		s.snapshot = s.grid
		s.grid = nil
		s.machine = s.newMachine()
		s.running = false
		s.Follow = false
		s.runErr = nil
		s.sched.SetSpeed(s.DefaultSpeed)
		s.mode = ModePlaying
		s.log.Info("entered playing mode")
	case ModePlaying:
		s.Cursor = Cursor{Pos: s.machine.Position}
		s.grid = s.snapshot
		s.snapshot = nil
		s.machine = nil
		s.running = false
		s.runErr = nil
		s.mode = ModeEditing
		s.log.Info("entered editing mode", "cursor_x", s.Cursor.Pos.X, "cursor_y", s.Cursor.Pos.Y)
	}
}

// Reset rebuilds the machine from the snapshot without leaving Playing.
// Breakpoints are preserved; the error state and run flag are cleared.
func (s *Session) Reset() {
	if s.mode != ModePlaying {
		return
	}
	s.machine = s.newMachine()
	s.running = false
	s.runErr = nil
	s.sched.Reset()
	s.log.Info("run reset")
}

func (s *Session) newMachine() *vm.State {
	m := vm.NewFromSpace(s.snapshot.Clone())
	m.Breakpoints = s.breakpoints
	return m
}

// SetRunning starts or pauses automatic stepping. Starting is refused
// while Editing, after a halt, or while an error is pending.
func (s *Session) SetRunning(on bool) {
	if !on {
		s.running = false
		return
	}
	if s.mode != ModePlaying || s.runErr != nil || s.machine.Halted() {
		return
	}
	if !s.running {
		s.sched.Reset()
	}
	s.running = true
}

// StepOnce executes a single manual step while Playing, regardless of
// breakpoints and of the running flag.
func (s *Session) StepOnce() {
	if s.mode != ModePlaying || s.runErr != nil {
		return
	}
	s.stepMachine()
}

// Tick drives the scheduler once and returns how many steps ran. A
// breakpoint, halt, or error inside the batch pauses the run.
func (s *Session) Tick() int {
	if s.mode != ModePlaying || !s.running {
		return 0
	}
	return s.sched.Tick(s.stepMachine)
}

// stepMachine runs one step and folds the status into the run controls.
// The return value is the scheduler's continue signal.
func (s *Session) stepMachine() bool {
	status, err := s.machine.Step(s.Settings)
	switch status {
	case vm.StatusNormal:
		return true
	case vm.StatusBreakpoint:
		s.running = false
		s.log.Debug("run paused",
			"x", s.machine.Position.X, "y", s.machine.Position.Y)
	case vm.StatusHalted:
		s.running = false
		s.log.Debug("program halted", "steps", s.machine.StepCount)
	case vm.StatusError:
		s.runErr = err
		s.running = false
		s.log.Warn("run frozen", "error", err)
	}
	return false
}

// TypeRune writes r at the cursor and advances it, mirroring the
// authoring behavior: a double quote toggles the cursor's string mode,
// and direction opcodes re-aim the cursor while outside it.
func (s *Session) TypeRune(r rune) {
	if s.mode != ModeEditing {
		return
	}
	s.grid.Set(s.Cursor.Pos, int64(r))
	if r == '"' {
		s.Cursor.StringMode = !s.Cursor.StringMode
	}
	if !s.Cursor.StringMode {
		switch r {
		case '>':
			s.Cursor.Dir = vm.DirEast
		case 'v':
			s.Cursor.Dir = vm.DirSouth
		case '<':
			s.Cursor.Dir = vm.DirWest
		case '^':
			s.Cursor.Dir = vm.DirNorth
		}
	}
	s.Cursor.Advance()
}

// Paste writes multi-line text starting at the cursor; each newline
// returns to the cursor column one row down. The cursor stays put.
func (s *Session) Paste(text string) {
	if s.mode != ModeEditing {
		return
	}
	x, y := s.Cursor.Pos.X, s.Cursor.Pos.Y
	for _, r := range text {
		if r == '\n' {
			y++
			x = s.Cursor.Pos.X
			continue
		}
		s.grid.Set(fungespace.Pos{X: x, Y: y}, int64(r))
		x++
	}
}

// MoveCursor re-aims the cursor and steps it once, the arrow-key
// behavior while Editing.
func (s *Session) MoveCursor(d vm.Direction) {
	if s.mode != ModeEditing {
		return
	}
	s.Cursor.Dir = d
	s.Cursor.Advance()
}

// Backspace steps the cursor backwards against its direction.
func (s *Session) Backspace() {
	if s.mode != ModeEditing {
		return
	}
	s.Cursor.Retreat()
}
