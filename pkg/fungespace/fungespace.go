// Package fungespace implements the program memory of the interpreter:
// a sparse, effectively unbounded 2D grid of int64 cells where every
// unset coordinate reads as the space character. A small fixed region
// near the origin is kept in a flat array as a hot-path cache.
package fungespace

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"strings"
	"unicode/utf8"
)

// Blank is the value every unset coordinate defaults to. A cell holding
// Blank is indistinguishable from an absent cell.
const Blank = int64(' ')

// zeroPageDim is the side length of the dense near-origin region.
const zeroPageDim = 10

// Pos is a grid coordinate.
type Pos struct {
	X, Y int64
}

// Space is the grid store. The zero page covers 0 <= X,Y < 10 and is
// always materialized; everything else lives in the sparse map.
type Space struct {
	cells    map[Pos]int64
	zeroPage [zeroPageDim * zeroPageDim]int64
}

// New returns an empty grid (every coordinate reads as Blank).
func New() *Space {
	s := &Space{cells: make(map[Pos]int64)}
	for i := range s.zeroPage {
		s.zeroPage[i] = Blank
	}
	return s
}

// NewFromString builds a grid from line-oriented program text: one row
// per line, columns by character offset, rows and columns 0-based.
func NewFromString(src string) *Space {
	s := New()
	for y, line := range strings.Split(src, "\n") {
		// CRLF sources load the same as LF ones.
		line = strings.TrimSuffix(line, "\r")
		var x int64
		for _, r := range line {
			s.Set(Pos{x, int64(y)}, int64(r))
			x++
		}
	}
	return s
}

func inZeroPage(p Pos) bool {
	return p.X >= 0 && p.X < zeroPageDim && p.Y >= 0 && p.Y < zeroPageDim
}

// Set writes v at p. Writing Blank outside the zero page removes the
// sparse entry so idle programs do not grow the map.
func (s *Space) Set(p Pos, v int64) {
	if inZeroPage(p) {
		s.zeroPage[p.X+p.Y*zeroPageDim] = v
		return
	}
	if v == Blank {
		delete(s.cells, p)
		return
	}
	s.cells[p] = v
}

// Get returns the value at p and whether the cell is materialized.
// Zero page coordinates always report as materialized.
func (s *Space) Get(p Pos) (int64, bool) {
	if inZeroPage(p) {
		return s.zeroPage[p.X+p.Y*zeroPageDim], true
	}
	v, ok := s.cells[p]
	return v, ok
}

// GetWrapped returns the value at p, defaulting absent cells to Blank.
// Coordinates with a negative component read as Blank.
func (s *Space) GetWrapped(p Pos) int64 {
	if p.X < 0 || p.Y < 0 {
		return Blank
	}
	if inZeroPage(p) {
		return s.zeroPage[p.X+p.Y*zeroPageDim]
	}
	if v, ok := s.cells[p]; ok {
		return v
	}
	return Blank
}

// Entries enumerates every materialized cell exactly once, in
// unspecified order. The zero page is always included, Blank or not.
func (s *Space) Entries() iter.Seq2[Pos, int64] {
	return func(yield func(Pos, int64) bool) {
		for p, v := range s.cells {
			if !yield(p, v) {
				return
			}
		}
		for i, v := range s.zeroPage {
			i := int64(i)
			if !yield(Pos{i % zeroPageDim, i / zeroPageDim}, v) {
				return
			}
		}
	}
}

// Clone returns an independent copy sharing no storage with s.
func (s *Space) Clone() *Space {
	return &Space{
		cells:    maps.Clone(s.cells),
		zeroPage: s.zeroPage,
	}
}

// ErrNotScalar reports a cell value that is not a single Unicode scalar
// value and therefore cannot appear in the textual program format.
var ErrNotScalar = errors.New("cell value is not a Unicode scalar value")

// Serialize reconstructs the line-oriented program text: rows up to the
// highest row holding a non-Blank cell, each padded with spaces to its
// last written column, joined with newlines. Values that are not valid
// Unicode scalar values (placed by the program via the put opcode) make
// the grid unrepresentable and return ErrNotScalar.
func (s *Space) Serialize() (string, error) {
	rows := make(map[int64]map[int64]rune)
	var maxY int64 = -1
	for p, v := range s.Entries() {
		if v == Blank {
			continue
		}
		if v < 0 || v > utf8.MaxRune || !utf8.ValidRune(rune(v)) {
			return "", fmt.Errorf("cell (%d,%d) holds %d: %w", p.X, p.Y, v, ErrNotScalar)
		}
		row, ok := rows[p.Y]
		if !ok {
			row = make(map[int64]rune)
			rows[p.Y] = row
		}
		row[p.X] = rune(v)
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	var out []rune
	for y := int64(0); y <= maxY; y++ {
		if y > 0 {
			out = append(out, '\n')
		}
		row := rows[y]
		var width int64 = -1
		for x := range row {
			if x > width {
				width = x
			}
		}
		for x := int64(0); x <= width; x++ {
			if r, ok := row[x]; ok {
				out = append(out, r)
			} else {
				out = append(out, ' ')
			}
		}
	}
	return string(out), nil
}
