// Package display is the ebiten front-end of the workbench: it draws
// the grid, the authoring cursor, the instruction pointer and its
// trail, breakpoints, the info column, and the program canvas, and it
// translates keyboard and mouse input into session operations. None of
// the core packages import it; everything it renders is read through
// the session's public surface.
package display

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/zurustar/funge/pkg/canvas"
	"github.com/zurustar/funge/pkg/fungespace"
	"github.com/zurustar/funge/pkg/session"
	"github.com/zurustar/funge/pkg/vm"
)

const (
	cellW = 13
	cellH = 17

	panelW  = 240
	screenW = 1280
	screenH = 800

	canvasScale = 2
	canvasY     = 420 // canvas blit origin inside the panel

	maxStackRows  = 16
	maxOutputCols = 30
)

var (
	backgroundColor = color.RGBA{0x18, 0x18, 0x20, 0xff}
	panelColor      = color.RGBA{0x22, 0x22, 0x2c, 0xff}
	textColor       = color.White
	dimTextColor    = color.RGBA{0x9a, 0x9a, 0xa8, 0xff}
	errorColor      = color.RGBA{0xff, 0x60, 0x60, 0xff}

	cursorColor       = color.RGBA{0x7f, 0xc8, 0xff, 0xff} // light blue
	cursorStringColor = color.RGBA{0x90, 0xee, 0x90, 0xff} // light green
	pointerColor      = color.RGBA{0xa0, 0x20, 0xf0, 0xff} // purple
	breakpointColor   = color.RGBA{0x00, 0xc8, 0x00, 0xff} // green
	boxColor          = color.RGBA{0x80, 0x80, 0x80, 0xff}

	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// opColor highlights opcode categories so programs read at a glance.
func opColor(op int64) (color.RGBA, bool) {
	switch op {
	case '>', '<', '^', 'v', '#', '_', '|':
		return color.RGBA{0xf0, 0xd0, 0x40, 0xff}, true // flow
	case '+', '-', '*', '/', '%', '`', '!':
		return color.RGBA{0xf0, 0x90, 0x40, 0xff}, true // arithmetic
	case 'p', 'g':
		return color.RGBA{0x60, 0xa0, 0xff, 0xff}, true // grid access
	case '.', ',', '~', '&':
		return color.RGBA{0xe0, 0x60, 0xc0, 0xff}, true // I/O
	case 's', 'f', 'x', 'c', 'l', 'u', 'z':
		return color.RGBA{0x40, 0xd0, 0xc0, 0xff}, true // canvas
	case '@':
		return color.RGBA{0xff, 0x50, 0x50, 0xff}, true
	case '"':
		return color.RGBA{0x90, 0xee, 0x90, 0xff}, true
	}
	return color.RGBA{}, false
}

// Game implements ebiten.Game over a session.
type Game struct {
	sess *session.Session

	// viewport origin in cells; moves only while following the pointer.
	viewX, viewY int64

	chars     []rune // scratch for AppendInputChars
	canvasTex *ebiten.Image
}

// New returns a game over the given session.
func New(sess *session.Session) *Game {
	return &Game{sess: sess}
}

// Run opens the window and blocks until it closes.
func Run(sess *session.Session) error {
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("funge")
	return ebiten.RunGame(New(sess))
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

// Update implements ebiten.Game: input, one scheduler tick, telemetry
// pruning, viewport follow.
func (g *Game) Update() error {
	g.handleKeys()
	g.handleMouse()

	g.sess.Tick()

	if m := g.sess.Machine(); m != nil {
		pruneHistory(m.PosHistory)
		pruneHistory(m.GetHistory)
		pruneHistory(m.PutHistory)

		if g.sess.Follow {
			g.viewX = m.Position.X - (screenW-panelW)/cellW/2
			g.viewY = m.Position.Y - screenH/cellH/2
			if g.viewX < 0 {
				g.viewX = 0
			}
			if g.viewY < 0 {
				g.viewY = 0
			}
		}
	} else {
		g.viewX, g.viewY = 0, 0
	}
	return nil
}

func pruneHistory(m map[fungespace.Pos]time.Time) {
	cutoff := time.Now().Add(-vm.HistoryRetention)
	for p, t := range m {
		if t.Before(cutoff) {
			delete(m, p)
		}
	}
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.sess.SwapMode()
		return
	}

	switch g.sess.Mode() {
	case session.ModeEditing:
		g.chars = ebiten.AppendInputChars(g.chars[:0])
		for _, r := range g.chars {
			g.sess.TypeRune(r)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
			g.sess.MoveCursor(vm.DirNorth)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
			g.sess.MoveCursor(vm.DirSouth)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
			g.sess.MoveCursor(vm.DirWest)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
			g.sess.MoveCursor(vm.DirEast)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			g.sess.Backspace()
		}

	case session.ModePlaying:
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			g.sess.SetRunning(!g.sess.Running())
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.sess.StepOnce()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.sess.Reset()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyF) {
			g.sess.Follow = !g.sess.Follow
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
			g.sess.SetSpeed(g.sess.Speed() + 1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
			g.sess.SetSpeed(g.sess.Speed() - 1)
		}
		// Anything typed while a program waits on input feeds the
		// input buffer.
		g.chars = ebiten.AppendInputChars(g.chars[:0])
		for _, r := range g.chars {
			g.sess.Machine().AppendInput(string(r))
		}
	}
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if g.clickCanvas(mx, my) {
			return
		}
		if p, ok := g.cellAt(mx, my); ok && g.sess.Mode() == session.ModeEditing {
			g.sess.Cursor.Pos = p
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if p, ok := g.cellAt(mx, my); ok {
			g.sess.ToggleBreakpoint(p)
		}
	}
}

// cellAt maps a screen position to a grid coordinate.
func (g *Game) cellAt(mx, my int) (fungespace.Pos, bool) {
	if mx < panelW {
		return fungespace.Pos{}, false
	}
	return fungespace.Pos{
		X: g.viewX + int64((mx-panelW)/cellW),
		Y: g.viewY + int64(my/cellH),
	}, true
}

// clickCanvas translates a click inside the canvas blit into a pixel
// event for the running program.
func (g *Game) clickCanvas(mx, my int) bool {
	m := g.sess.Machine()
	if m == nil || m.Canvas == nil {
		return false
	}
	c := m.Canvas
	w, h := c.Width*canvasScale, c.Height*canvasScale
	if mx < 0 || mx >= w || my < canvasY || my >= canvasY+h {
		return false
	}
	c.Events.Push(canvas.Event{
		Kind: canvas.EventMouseClick,
		X:    int64(mx / canvasScale),
		Y:    int64((my - canvasY) / canvasScale),
	})
	return true
}
