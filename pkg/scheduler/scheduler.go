// Package scheduler turns a discrete speed level into a bounded batch
// of interpreter steps per tick. The caller invokes Tick from its own
// loop (frame update, timer); the scheduler decides from wall-clock
// elapsed time whether the tick fires and how many steps it may run.
// Execution stays synchronous: there is no background stepping thread.
package scheduler

import "time"

// Speed levels. Levels 1-5 pace single steps from 1 Hz up to 16 Hz,
// 6-9 run small fixed batches at 32 Hz, 10-15 run power-of-two batches
// at 32 Hz, and 16-20 run 10000-step chunks against a short wall-clock
// budget, yielding between ticks so the caller's loop never starves.
const (
	MinSpeed     = 1
	MaxSpeed     = 20
	DefaultSpeed = 1

	// chunkSize is the top-tier batch unit; the budget is only checked
	// between chunks, so a tick overshoots by at most one chunk.
	chunkSize = 10000
)

// StepFunc runs one interpreter step and reports whether the batch may
// continue. Returning false (breakpoint, halt, error) aborts the
// remainder of the tick immediately.
type StepFunc func() bool

// Scheduler paces interpreter execution against wall-clock time.
type Scheduler struct {
	speed int
	last  time.Time
	now   func() time.Time
}

// New returns a scheduler at DefaultSpeed.
func New() *Scheduler {
	return NewWithClock(time.Now)
}

// NewWithClock returns a scheduler reading time from now; tests inject
// a fake clock here.
func NewWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{speed: DefaultSpeed, now: now, last: now()}
}

// Speed returns the current level.
func (s *Scheduler) Speed() int {
	return s.speed
}

// SetSpeed clamps level into [MinSpeed, MaxSpeed] and applies it.
func (s *Scheduler) SetSpeed(level int) {
	if level < MinSpeed {
		level = MinSpeed
	}
	if level > MaxSpeed {
		level = MaxSpeed
	}
	s.speed = level
}

// Reset restarts the inter-tick interval, e.g. when a run resumes.
func (s *Scheduler) Reset() {
	s.last = s.now()
}

// stepInterval is the minimum time between ticks for the current
// level: 1 Hz doubling up to 16 Hz for levels 1-5, then a fixed 32 Hz.
func (s *Scheduler) stepInterval() time.Duration {
	if s.speed <= 5 {
		return time.Second / (1 << (s.speed - 1))
	}
	return time.Second / 32
}

// budget is the top-tier wall-clock allowance per tick.
func (s *Scheduler) budget() time.Duration {
	d := 4 * time.Millisecond << (s.speed - 16)
	if d > 32*time.Millisecond {
		d = 32 * time.Millisecond
	}
	return d
}

// Tick runs at most one batch of steps and returns how many steps
// executed. It returns 0 when the inter-tick interval has not elapsed
// yet. Any step returning false ends the tick early.
func (s *Scheduler) Tick(step StepFunc) int {
	now := s.now()
	if now.Sub(s.last) < s.stepInterval() {
		return 0
	}
	s.last = now

	switch {
	case s.speed <= 5:
		return s.runBatch(step, 1)
	case s.speed <= 9:
		return s.runBatch(step, s.speed-5)
	case s.speed <= 15:
		return s.runBatch(step, 1<<(s.speed-8))
	default:
		return s.runBudgeted(step)
	}
}

// runBatch executes up to n steps.
func (s *Scheduler) runBatch(step StepFunc, n int) int {
	for i := 0; i < n; i++ {
		if !step() {
			return i + 1
		}
	}
	return n
}

// runBudgeted executes chunks of chunkSize steps until the wall-clock
// budget is spent or a step stops the batch.
func (s *Scheduler) runBudgeted(step StepFunc) int {
	start := s.now()
	budget := s.budget()
	total := 0
	for {
		ran := s.runBatch(step, chunkSize)
		total += ran
		if ran < chunkSize {
			return total
		}
		if s.now().Sub(start) > budget {
			return total
		}
	}
}
