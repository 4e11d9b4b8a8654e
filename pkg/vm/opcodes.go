package vm

import (
	"strconv"

	"github.com/zurustar/funge/pkg/canvas"
	"github.com/zurustar/funge/pkg/fungespace"
)

// exec applies one opcode to the machine. It returns StatusHalted for
// the halt opcode, StatusBreakpoint when the read-character opcode
// finds no buffered input, and an *Error for unimplemented or
// unrecognized opcodes. Movement is left to the caller except for the
// skip opcode, which consumes one extra cell here.
//
// Binary operators pop the right-hand operand first.
func (st *State) exec(set Settings, op byte) (Status, error) {
	switch op {
	case ' ':
		// Unreachable through Step, which treats blank cells as
		// no-ops before dispatch; kept so exec is total over the
		// recognized table.

	case '"':
		st.StringMode = true

	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		st.Push(int64(op - '0'))

	case '+':
		a, b := st.Pop(), st.Pop()
		st.Push(b + a)
	case '-':
		a, b := st.Pop(), st.Pop()
		st.Push(b - a)
	case '*':
		a, b := st.Pop(), st.Pop()
		st.Push(b * a)
	case '/':
		a, b := st.Pop(), st.Pop()
		if a == 0 {
			st.Push(0)
		} else {
			st.Push(b / a)
		}
	case '%':
		a, b := st.Pop(), st.Pop()
		if a == 0 {
			st.Push(0)
		} else {
			st.Push(b % a)
		}
	case '`':
		a, b := st.Pop(), st.Pop()
		if b > a {
			st.Push(1)
		} else {
			st.Push(0)
		}
	case '\\':
		a, b := st.Pop(), st.Pop()
		st.Push(a)
		st.Push(b)

	case '!':
		if st.Pop() == 0 {
			st.Push(1)
		} else {
			st.Push(0)
		}
	case ':':
		a := st.Pop()
		st.Push(a)
		st.Push(a)
	case '$':
		st.Pop()

	case '>':
		st.Dir = DirEast
	case '<':
		st.Dir = DirWest
	case '^':
		st.Dir = DirNorth
	case 'v':
		st.Dir = DirSouth
	case '#':
		// Jump the very next cell unconditionally; the caller's
		// post-dispatch advance supplies the second move.
		st.advance(set)

	case '_':
		if st.Pop() == 0 {
			st.Dir = DirEast
		} else {
			st.Dir = DirWest
		}
	case '|':
		if st.Pop() == 0 {
			st.Dir = DirSouth
		} else {
			st.Dir = DirNorth
		}

	case 'p':
		y, x, v := st.Pop(), st.Pop(), st.Pop()
		p := fungespace.Pos{X: x, Y: y}
		st.Space.Set(p, v)
		if set.RecordPutHistory {
			st.record(st.PutHistory, p)
		}
	case 'g':
		y, x := st.Pop(), st.Pop()
		p := fungespace.Pos{X: x, Y: y}
		st.Push(st.Space.GetWrapped(p))
		if set.RecordGetHistory {
			st.record(st.GetHistory, p)
		}

	case '&':
		// Numeric input has no semantics yet; a silent no-op here
		// would corrupt program behavior undetectably.
		return StatusError, &Error{Kind: Unimplemented, Op: int64(op), Pos: st.Position}
	case '~':
		if len(st.Input) == 0 {
			return StatusBreakpoint, nil
		}
		st.Push(int64(st.Input[0]))
		st.Input = st.Input[1:]

	case '@':
		return StatusHalted, nil

	case '.':
		st.Output += strconv.FormatInt(st.Pop(), 10)
	case ',':
		st.Output += string(rune(uint32(st.Pop())))

	case 's':
		h, w := st.Pop(), st.Pop()
		st.Canvas = canvas.New(int(w), int(h))
	case 'f':
		if st.Canvas != nil {
			b, g, r := st.Pop(), st.Pop(), st.Pop()
			st.Canvas.SetColor(uint8(r), uint8(g), uint8(b))
		}
	case 'x':
		if st.Canvas != nil {
			y, x := st.Pop(), st.Pop()
			st.Canvas.SetPixel(int(x), int(y))
		}
	case 'c':
		if st.Canvas != nil {
			st.Canvas.Fill()
		}
	case 'l':
		if st.Canvas != nil {
			y1, x1 := st.Pop(), st.Pop()
			y2, x2 := st.Pop(), st.Pop()
			st.Canvas.Line(int(x1), int(y1), int(x2), int(y2))
		}
	case 'u':
		// Reserved for present-frame semantics.
	case 'z':
		if st.Canvas != nil {
			st.pollEvent()
		}

	default:
		return StatusError, &Error{Kind: InvalidOperation, Op: int64(op), Pos: st.Position}
	}
	return StatusNormal, nil
}

// pollEvent dequeues one pending canvas event and pushes it as a tagged
// tuple, payload first and the kind tag on top, or a single 0 when
// nothing is pending.
func (st *State) pollEvent() {
	ev, ok := st.Canvas.Events.Pop()
	if !ok {
		st.Push(0)
		return
	}
	switch ev.Kind {
	case canvas.EventMouseClick:
		st.Push(ev.Y)
		st.Push(ev.X)
		st.Push(int64(canvas.EventMouseClick))
	default:
		st.Push(int64(ev.Kind))
	}
}
