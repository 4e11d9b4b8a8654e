package fungespace

import (
	"maps"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// nonBlankCells projects a grid onto its observable content: the Blank
// default never counts.
func nonBlankCells(s *Space) map[Pos]int64 {
	out := make(map[Pos]int64)
	for p, v := range s.Entries() {
		if v != Blank {
			out[p] = v
		}
	}
	return out
}

func TestProperty_SetGetRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("a written cell reads back verbatim", prop.ForAll(
		func(x, y, v int64) bool {
			s := New()
			p := Pos{X: x, Y: y}
			s.Set(p, v)
			return s.GetWrapped(p) == v
		},
		gen.Int64Range(0, 1<<40),
		gen.Int64Range(0, 1<<40),
		gen.Int64(),
	))

	properties.Property("writing Blank erases a sparse cell", prop.ForAll(
		func(x, y int64) bool {
			s := New()
			p := Pos{X: x, Y: y}
			s.Set(p, 'x')
			s.Set(p, Blank)
			if inZeroPage(p) {
				v, ok := s.Get(p)
				return ok && v == Blank
			}
			_, ok := s.Get(p)
			return !ok
		},
		gen.Int64Range(0, 100),
		gen.Int64Range(0, 100),
	))

	properties.Property("a clone observes the same cells", prop.ForAll(
		func(xs []int64) bool {
			s := New()
			for i, x := range xs {
				s.Set(Pos{X: x, Y: int64(i)}, x+1)
			}
			return maps.Equal(nonBlankCells(s), nonBlankCells(s.Clone()))
		},
		gen.SliceOf(gen.Int64Range(0, 1000)),
	))

	properties.TestingRun(t)
}

func TestProperty_SerializeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Lines of printable ASCII; a line may be empty but never carries
	// trailing spaces, which serialization would legitimately drop.
	lineGen := gen.RegexMatch(`([!-~][ -~]{0,18}[!-~]|[!-~]?)`)

	properties.Property("parse then serialize preserves every cell", prop.ForAll(
		func(lines []string) bool {
			src := strings.Join(lines, "\n")
			first := NewFromString(src)
			text, err := first.Serialize()
			if err != nil {
				return false
			}
			second := NewFromString(text)
			return maps.Equal(nonBlankCells(first), nonBlankCells(second))
		},
		gen.SliceOf(lineGen),
	))

	properties.TestingRun(t)
}
