package binarize

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRGBAValidation(t *testing.T) {
	tests := []struct {
		name   string
		buf    []byte
		w, h   int
	}{
		{"nil buffer", nil, 2, 2},
		{"zero width", make([]byte, 16), 0, 2},
		{"zero height", make([]byte, 16), 2, 0},
		{"negative width", make([]byte, 16), -2, 2},
		{"short buffer", make([]byte, 15), 2, 2},
		{"long buffer", make([]byte, 17), 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRGBA(tt.buf, tt.w, tt.h)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFromRGBALuminance(t *testing.T) {
	// One black, one white, one pure red pixel. Alpha is ignored.
	buf := []byte{
		0, 0, 0, 255,
		255, 255, 255, 0,
		255, 0, 0, 255,
	}
	l, err := FromRGBA(buf, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(0), l.At(0, 0))
	assert.Equal(t, byte(255), l.At(1, 0))
	// (306*255 + 0x200) >> 10
	assert.Equal(t, byte((306*255+0x200)>>10), l.At(2, 0))
}

func TestLuminanceOutOfBoundsIsWhite(t *testing.T) {
	buf := make([]byte, 4) // single black pixel
	l, err := FromRGBA(buf, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), l.At(-1, 0))
	assert.Equal(t, byte(0xFF), l.At(0, -1))
	assert.Equal(t, byte(0xFF), l.At(1, 0))
	assert.Equal(t, byte(0xFF), l.At(0, 1))
}

func TestThresholdBoundary(t *testing.T) {
	buf := []byte{
		0x7E, 0x7E, 0x7E, 255, // just below: dark
		0x7F, 0x7F, 0x7F, 255, // at threshold: light
	}
	l, err := FromRGBA(buf, 2, 1)
	require.NoError(t, err)
	bm := l.Threshold(DefaultThreshold)
	assert.True(t, bm.Get(0, 0))
	assert.False(t, bm.Get(1, 0))
}

func TestFromImageGrayFastPath(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(1, 1, color.Gray{Y: 10})
	l := FromImage(img)
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, 2, l.Height())
	assert.Equal(t, byte(10), l.At(1, 1))
	assert.Equal(t, byte(0), l.At(0, 0))
}

func TestFromImageTransparentIsWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{A: 0})
	img.Set(1, 0, color.NRGBA{A: 255}) // opaque black
	l := FromImage(img)
	assert.Equal(t, byte(0xFF), l.At(0, 0))
	assert.Equal(t, byte(0), l.At(1, 0))
}

func TestFromImageNonZeroOrigin(t *testing.T) {
	img := image.NewGray(image.Rect(5, 5, 8, 7))
	img.SetGray(5, 5, color.Gray{Y: 42})
	l := FromImage(img)
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, 2, l.Height())
	assert.Equal(t, byte(42), l.At(0, 0))
}

func TestBitmapSetGetFlip(t *testing.T) {
	bm := NewBitmap(40, 3) // spans two uint32 words per row
	assert.False(t, bm.Get(33, 2))
	bm.Set(33, 2)
	assert.True(t, bm.Get(33, 2))
	bm.Flip(33, 2)
	assert.False(t, bm.Get(33, 2))
	bm.Set(33, 2)
	bm.Unset(33, 2)
	assert.False(t, bm.Get(33, 2))

	// Out of bounds reads are light, writes are ignored.
	assert.False(t, bm.Get(-1, 0))
	assert.False(t, bm.Get(40, 0))
	bm.Set(40, 0)
	bm.Set(0, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 40; x++ {
			assert.False(t, bm.Get(x, y))
		}
	}
}

func TestBitmapOnBits(t *testing.T) {
	bm := NewBitmap(50, 10)
	_, _, ok := bm.TopLeftOnBit()
	assert.False(t, ok)
	_, _, ok = bm.BottomRightOnBit()
	assert.False(t, ok)

	bm.Set(35, 2)
	bm.Set(7, 8)

	x, y, ok := bm.TopLeftOnBit()
	require.True(t, ok)
	assert.Equal(t, 35, x)
	assert.Equal(t, 2, y)

	x, y, ok = bm.BottomRightOnBit()
	require.True(t, ok)
	assert.Equal(t, 7, x)
	assert.Equal(t, 8, y)
}

func TestBitmapCloneAndEquals(t *testing.T) {
	bm := NewBitmap(8, 8)
	bm.Set(3, 4)
	clone := bm.Clone()
	assert.True(t, bm.Equals(clone))
	clone.Flip(0, 0)
	assert.False(t, bm.Equals(clone))
	assert.False(t, bm.Equals(NewBitmap(8, 9)))
}

func TestParseBitmapRoundTrip(t *testing.T) {
	bm := ParseBitmap(`
#.#
.#.
#.#
`, '#')
	assert.Equal(t, 3, bm.Width())
	assert.Equal(t, 3, bm.Height())
	assert.True(t, bm.Get(0, 0))
	assert.False(t, bm.Get(1, 0))
	assert.True(t, bm.Get(1, 1))
	assert.True(t, bm.Get(2, 2))
	assert.Equal(t, "##  ##\n  ##  \n##  ##\n", bm.String())
}
