package fungespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EverythingReadsBlank(t *testing.T) {
	s := New()

	v, ok := s.Get(Pos{X: 0, Y: 0})
	assert.True(t, ok, "zero page cells are always materialized")
	assert.Equal(t, Blank, v)

	_, ok = s.Get(Pos{X: 100, Y: 100})
	assert.False(t, ok)

	assert.Equal(t, Blank, s.GetWrapped(Pos{X: 100, Y: 100}))
	assert.Equal(t, Blank, s.GetWrapped(Pos{X: 1 << 40, Y: 1 << 40}))
}

func TestSetGet(t *testing.T) {
	tests := []struct {
		name string
		pos  Pos
		val  int64
	}{
		{"zero page origin", Pos{X: 0, Y: 0}, '@'},
		{"zero page corner", Pos{X: 9, Y: 9}, 'v'},
		{"sparse cell", Pos{X: 10, Y: 0}, '>'},
		{"far cell", Pos{X: 1 << 40, Y: 1 << 40}, 'x'},
		{"non-character value", Pos{X: 42, Y: 17}, -12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Set(tt.pos, tt.val)

			v, ok := s.Get(tt.pos)
			require.True(t, ok)
			assert.Equal(t, tt.val, v)
			assert.Equal(t, tt.val, s.GetWrapped(tt.pos))
		})
	}
}

func TestSet_BlankRemovesSparseCell(t *testing.T) {
	s := New()
	p := Pos{X: 50, Y: 50}

	s.Set(p, 'x')
	_, ok := s.Get(p)
	require.True(t, ok)

	s.Set(p, Blank)
	_, ok = s.Get(p)
	assert.False(t, ok, "writing Blank outside the zero page removes the cell")
	assert.Equal(t, Blank, s.GetWrapped(p))
}

func TestSet_BlankInZeroPageStaysMaterialized(t *testing.T) {
	s := New()
	p := Pos{X: 3, Y: 3}

	s.Set(p, 'x')
	s.Set(p, Blank)

	v, ok := s.Get(p)
	assert.True(t, ok)
	assert.Equal(t, Blank, v)
}

func TestGetWrapped_NegativeComponentsReadBlank(t *testing.T) {
	s := New()
	s.Set(Pos{X: 0, Y: 0}, '@')

	assert.Equal(t, Blank, s.GetWrapped(Pos{X: -1, Y: 0}))
	assert.Equal(t, Blank, s.GetWrapped(Pos{X: 0, Y: -1}))
}

func TestNewFromString(t *testing.T) {
	s := NewFromString("12>\n @")

	assert.Equal(t, int64('1'), s.GetWrapped(Pos{X: 0, Y: 0}))
	assert.Equal(t, int64('2'), s.GetWrapped(Pos{X: 1, Y: 0}))
	assert.Equal(t, int64('>'), s.GetWrapped(Pos{X: 2, Y: 0}))
	assert.Equal(t, Blank, s.GetWrapped(Pos{X: 0, Y: 1}))
	assert.Equal(t, int64('@'), s.GetWrapped(Pos{X: 1, Y: 1}))
	assert.Equal(t, Blank, s.GetWrapped(Pos{X: 3, Y: 0}))
}

func TestNewFromString_CRLF(t *testing.T) {
	lf := NewFromString("1>\n2@")
	crlf := NewFromString("1>\r\n2@")

	for p, v := range lf.Entries() {
		assert.Equal(t, v, crlf.GetWrapped(p), "mismatch at %v", p)
	}
}

func TestEntries(t *testing.T) {
	s := New()
	count := 0
	for range s.Entries() {
		count++
	}
	assert.Equal(t, 100, count, "empty grid enumerates exactly the zero page")

	s.Set(Pos{X: 5, Y: 5}, 'a')
	count = 0
	for range s.Entries() {
		count++
	}
	assert.Equal(t, 100, count, "zero page writes add no entries")

	s.Set(Pos{X: 20, Y: 20}, 'b')
	found := false
	count = 0
	for p, v := range s.Entries() {
		count++
		if p == (Pos{X: 20, Y: 20}) {
			found = true
			assert.Equal(t, int64('b'), v)
		}
	}
	assert.Equal(t, 101, count)
	assert.True(t, found)
}

func TestClone_SharesNoStorage(t *testing.T) {
	s := New()
	s.Set(Pos{X: 2, Y: 2}, 'a')
	s.Set(Pos{X: 30, Y: 30}, 'b')

	c := s.Clone()
	c.Set(Pos{X: 2, Y: 2}, 'x')
	c.Set(Pos{X: 30, Y: 30}, 'y')
	c.Set(Pos{X: 40, Y: 40}, 'z')

	assert.Equal(t, int64('a'), s.GetWrapped(Pos{X: 2, Y: 2}))
	assert.Equal(t, int64('b'), s.GetWrapped(Pos{X: 30, Y: 30}))
	assert.Equal(t, Blank, s.GetWrapped(Pos{X: 40, Y: 40}))
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"single row", `>91+v`},
		{"rows with gaps", "12>\n\n @"},
		{"interior spaces preserved", "1   2+.@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFromString(tt.src)
			text, err := s.Serialize()
			require.NoError(t, err)
			assert.Equal(t, tt.src, text)
		})
	}
}

func TestSerialize_Empty(t *testing.T) {
	text, err := New().Serialize()
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestSerialize_TrimsTrailingBlanks(t *testing.T) {
	s := NewFromString("ab   \n@")
	text, err := s.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "ab\n@", text)
}

func TestSerialize_NonScalarValues(t *testing.T) {
	tests := []struct {
		name string
		val  int64
	}{
		{"negative", -5},
		{"beyond max rune", 1 << 40},
		{"surrogate", 0xd800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFromString("@")
			s.Set(Pos{X: 3, Y: 3}, tt.val)
			_, err := s.Serialize()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotScalar)
		})
	}
}
