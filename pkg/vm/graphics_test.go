package vm

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurustar/funge/pkg/canvas"
)

func TestStep_CanvasSetup(t *testing.T) {
	st := NewFromString("s@")

	// s pops height then width.
	st.Push(8)
	st.Push(6)
	_, err := st.Step(Settings{})
	require.NoError(t, err)

	require.NotNil(t, st.Canvas)
	assert.Equal(t, 8, st.Canvas.Width)
	assert.Equal(t, 6, st.Canvas.Height)
}

func TestStep_CanvasColorAndPixel(t *testing.T) {
	st := NewFromString("sfx@")

	st.Push(4)
	st.Push(4)
	_, err := st.Step(Settings{})
	require.NoError(t, err)

	// f pops blue, green, red.
	st.Push(255)
	st.Push(128)
	st.Push(64)
	_, err = st.Step(Settings{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 64, A: 255}, st.Canvas.Color)

	// x pops y then x.
	st.Push(2)
	st.Push(1)
	_, err = st.Step(Settings{})
	require.NoError(t, err)
	assert.Equal(t, st.Canvas.Color, st.Canvas.Pixels[2+1*4])
}

func TestStep_CanvasFillAndLine(t *testing.T) {
	st := NewFromString("sfcfl@")

	st.Push(4)
	st.Push(4)
	_, err := st.Step(Settings{})
	require.NoError(t, err)

	st.Push(0)
	st.Push(0)
	st.Push(200)
	_, err = st.Step(Settings{})
	require.NoError(t, err)

	_, err = st.Step(Settings{}) // c fills with blue
	require.NoError(t, err)
	blue := color.RGBA{B: 200, A: 255}
	for _, px := range st.Canvas.Pixels {
		assert.Equal(t, blue, px)
	}

	st.Push(255)
	st.Push(0)
	st.Push(0)
	_, err = st.Step(Settings{})
	require.NoError(t, err)

	// l pops the second endpoint first: x2 y2 x1 y1 on the stack.
	st.Push(0)
	st.Push(0)
	st.Push(3)
	st.Push(3)
	_, err = st.Step(Settings{})
	require.NoError(t, err)

	red := color.RGBA{R: 255, A: 255}
	for i := 0; i < 4; i++ {
		assert.Equal(t, red, st.Canvas.Pixels[i+i*4], "diagonal pixel (%d,%d)", i, i)
	}
	assert.Equal(t, blue, st.Canvas.Pixels[1+0*4])
}

func TestStep_CanvasOpsWithoutCanvas(t *testing.T) {
	// Before setup, drawing opcodes are no-ops that leave the stack
	// alone rather than consuming operands that are not theirs.
	for _, op := range []string{"f", "x", "c", "l", "z"} {
		t.Run(op, func(t *testing.T) {
			st := NewFromString(op + "@")
			st.Push(1)
			st.Push(2)
			st.Push(3)
			st.Push(4)

			status, err := st.Step(Settings{})
			require.NoError(t, err)
			assert.Equal(t, StatusNormal, status)
			assert.Equal(t, []int64{1, 2, 3, 4}, st.Stack())
		})
	}
}

func TestStep_PollEvent(t *testing.T) {
	st := NewFromString("szzz@")
	st.Push(4)
	st.Push(4)
	_, err := st.Step(Settings{})
	require.NoError(t, err)

	st.Canvas.Events.Push(canvas.Event{Kind: canvas.EventMouseClick, X: 3, Y: 2})
	st.Canvas.Events.Push(canvas.Event{Kind: canvas.EventClose})

	// A click pushes its payload under the kind tag.
	_, err = st.Step(Settings{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, int64(canvas.EventMouseClick)}, st.Stack())
	st.Pop()
	st.Pop()
	st.Pop()

	// Payload-free events push just the tag.
	_, err = st.Step(Settings{})
	require.NoError(t, err)
	assert.Equal(t, []int64{int64(canvas.EventClose)}, st.Stack())
	st.Pop()

	// An empty queue pushes zero.
	_, err = st.Step(Settings{})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, st.Stack())
}
