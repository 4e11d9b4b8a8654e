// Package canvas implements the raster sub-machine a program can bring
// up from inside the interpreter: a fixed-size pixel buffer, a current
// drawing color, and a queue of inbound pointer events. The canvas does
// no presentation of its own; a front-end blits Pixels however it likes.
package canvas

import (
	"image"
	"image/color"
)

// Canvas is a row-major pixel buffer with a current drawing color.
type Canvas struct {
	Width, Height int
	Pixels        []color.RGBA
	Color         color.RGBA

	// Events is filled by the front-end and drained by the poll-event
	// opcode; the canvas itself never produces events.
	Events *EventQueue
}

// New allocates a w by h canvas cleared to opaque black.
func New(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Pixels: make([]color.RGBA, w*h),
		Color:  color.RGBA{A: 0xff},
		Events: NewEventQueue(),
	}
	for i := range c.Pixels {
		c.Pixels[i] = color.RGBA{A: 0xff}
	}
	return c
}

// SetColor sets the current drawing color.
func (c *Canvas) SetColor(r, g, b uint8) {
	c.Color = color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// SetPixel paints the current color at (x, y). Out-of-range writes are
// discarded: draws are data-dependent and must not abort the run.
func (c *Canvas) SetPixel(x, y int) {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return
	}
	c.Pixels[x+y*c.Width] = c.Color
}

// Fill paints every pixel with the current color.
func (c *Canvas) Fill() {
	for i := range c.Pixels {
		c.Pixels[i] = c.Color
	}
}

// Line rasterizes an integer line from (x1, y1) to (x2, y2) in the
// current color, covering both endpoints. Any octant is handled;
// pixels falling outside the buffer are discarded like SetPixel.
func (c *Canvas) Line(x1, y1, x2, y2 int) {
	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	dy := y2 - y1
	if dy < 0 {
		dy = -dy
	}
	dy = -dy
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		c.SetPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// Image copies the buffer into an image.RGBA for presentation.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.SetRGBA(x, y, c.Pixels[x+y*c.Width])
		}
	}
	return img
}
