package display

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/zurustar/funge/pkg/fungespace"
	"github.com/zurustar/funge/pkg/session"
	"github.com/zurustar/funge/pkg/vm"
)

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	vector.DrawFilledRect(screen, 0, 0, panelW, screenH, panelColor, false)

	g.drawHighlights(screen)
	g.drawCells(screen)
	g.drawPanel(screen)
	g.drawCanvas(screen)
}

// cellRect returns the screen rectangle of a grid coordinate and
// whether it is inside the viewport.
func (g *Game) cellRect(p fungespace.Pos) (x, y float32, ok bool) {
	cx := p.X - g.viewX
	cy := p.Y - g.viewY
	if cx < 0 || cy < 0 || cx > (screenW-panelW)/cellW || cy > screenH/cellH {
		return 0, 0, false
	}
	return float32(panelW + cx*cellW), float32(cy * cellH), true
}

// drawHighlights paints the rectangles under the glyphs: cursor or
// pointer, the fading pointer trail, and breakpoint outlines.
func (g *Game) drawHighlights(screen *ebiten.Image) {
	m := g.sess.Machine()

	if g.sess.Mode() == session.ModeEditing {
		c := cursorColor
		if g.sess.Cursor.StringMode {
			c = cursorStringColor
		}
		if x, y, ok := g.cellRect(g.sess.Cursor.Pos); ok {
			vector.DrawFilledRect(screen, x, y, cellW-1, cellH-1, c, false)
		}
	}

	if m != nil {
		now := time.Now()
		for p, touched := range m.PosHistory {
			x, y, ok := g.cellRect(p)
			if !ok {
				continue
			}
			age := now.Sub(touched)
			if age >= vm.HistoryRetention {
				continue
			}
			fade := 1 - float64(age)/float64(vm.HistoryRetention)
			c := pointerColor
			c.A = uint8(float64(c.A) * fade * 0.6)
			vector.DrawFilledRect(screen, x, y, cellW-1, cellH-1, c, false)
		}
		if x, y, ok := g.cellRect(m.Position); ok {
			vector.DrawFilledRect(screen, x, y, cellW-1, cellH-1, pointerColor, false)
		}
	}

	for p := range g.sess.Breakpoints() {
		if x, y, ok := g.cellRect(p); ok {
			vector.StrokeRect(screen, x, y, cellW-1, cellH-1, 2, breakpointColor, false)
		}
	}
}

// drawCells renders every materialized cell in the viewport. Printable
// values draw as glyphs, control values as boxed digits, anything that
// does not fit a byte as a boxed X.
func (g *Game) drawCells(screen *ebiten.Image) {
	for p, v := range g.sess.Grid().Entries() {
		x, y, ok := g.cellRect(p)
		if !ok || v == fungespace.Blank {
			continue
		}
		switch {
		case v >= 0x20 && v <= 0x7e:
			var c color.Color = textColor
			if oc, ok := opColor(v); ok {
				c = oc
			}
			g.drawGlyph(screen, x, y, string(rune(v)), c)
		case v >= 0 && v < 0x20:
			// Control values show as a boxed base-32 digit.
			d := byte(v)
			if d < 10 {
				d += '0'
			} else {
				d += 'A' - 10
			}
			vector.StrokeRect(screen, x, y, cellW-1, cellH-1, 0.5, boxColor, false)
			g.drawGlyph(screen, x, y, string(rune(d)), dimTextColor)
		default:
			vector.StrokeRect(screen, x, y, cellW-1, cellH-1, 0.5, boxColor, false)
			g.drawGlyph(screen, x, y, "X", dimTextColor)
		}
	}
}

func (g *Game) drawGlyph(screen *ebiten.Image, x, y float32, s string, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x)+3, float64(y)+2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, defaultFace, op)
}

func (g *Game) drawLabel(screen *ebiten.Image, row int, s string, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(8, float64(8+row*15))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, defaultFace, op)
}

// drawPanel renders the info column: mode, speed, step counter, stack
// (top first), output tail, input buffer, error state.
func (g *Game) drawPanel(screen *ebiten.Image) {
	row := 0
	put := func(s string, c color.Color) {
		g.drawLabel(screen, row, s, c)
		row++
	}

	put(fmt.Sprintf("mode: %s", g.sess.Mode()), textColor)
	put(fmt.Sprintf("speed: %d", g.sess.Speed()), textColor)

	m := g.sess.Machine()
	if m == nil {
		put(fmt.Sprintf("cursor: (%d,%d)", g.sess.Cursor.Pos.X, g.sess.Cursor.Pos.Y), dimTextColor)
		put("tab: run", dimTextColor)
		return
	}

	state := "paused"
	if g.sess.Running() {
		state = "running"
	}
	if m.Halted() {
		state = "halted"
	}
	put(state, textColor)
	put(fmt.Sprintf("steps: %d", m.StepCount), textColor)
	if err := g.sess.Err(); err != nil {
		put(err.Error(), errorColor)
	}
	row++

	put("stack:", dimTextColor)
	stack := m.Stack()
	for i := len(stack) - 1; i >= 0 && len(stack)-i <= maxStackRows; i-- {
		put(strconv.FormatInt(stack[i], 10), textColor)
	}
	row++

	put("output:", dimTextColor)
	out := m.Output
	if len(out) > maxOutputCols {
		out = out[len(out)-maxOutputCols:]
	}
	put(out, textColor)
	row++

	put("input:", dimTextColor)
	put(string(m.Input), textColor)
}

// drawCanvas blits the program's pixel buffer, nearest-scaled.
func (g *Game) drawCanvas(screen *ebiten.Image) {
	m := g.sess.Machine()
	if m == nil || m.Canvas == nil {
		g.canvasTex = nil
		return
	}
	c := m.Canvas
	if c.Width == 0 || c.Height == 0 {
		return
	}
	if g.canvasTex == nil || g.canvasTex.Bounds().Dx() != c.Width || g.canvasTex.Bounds().Dy() != c.Height {
		g.canvasTex = ebiten.NewImage(c.Width, c.Height)
	}
	g.canvasTex.WritePixels(c.Image().Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(canvasScale, canvasScale)
	op.GeoM.Translate(0, canvasY)
	screen.DrawImage(g.canvasTex, op)
}
