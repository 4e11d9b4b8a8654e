package vm

// InvalidOpPolicy selects what a machine does when the pointer executes
// a cell holding no recognized opcode.
type InvalidOpPolicy int

const (
	// PolicyReflect reverses the pointer direction and keeps going.
	PolicyReflect InvalidOpPolicy = iota
	// PolicyHalt freezes the machine with an error.
	PolicyHalt
	// PolicyIgnore treats the cell as a no-op.
	PolicyIgnore
)

func (p InvalidOpPolicy) String() string {
	switch p {
	case PolicyReflect:
		return "reflect"
	case PolicyHalt:
		return "halt"
	default:
		return "ignore"
	}
}

// Settings are per-step execution options. They are passed into Step
// rather than stored on the machine so the caller can change them
// between steps without touching machine state.
type Settings struct {
	// SkipSpaces slides the pointer over runs of blank cells after each
	// step so empty stretches of grid cost one step, not one each.
	SkipSpaces bool

	// InvalidOp is the unrecognized-opcode policy.
	InvalidOp InvalidOpPolicy

	// Record* enable the telemetry histories. Headless runs leave them
	// off; the maps would grow with nothing pruning them.
	RecordPositionHistory bool
	RecordGetHistory      bool
	RecordPutHistory      bool
}
