package decode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/encode"
	"github.com/scanforge/dmscan/internal/symbol"
)

func TestDecodeRoundTrip(t *testing.T) {
	payloads := []string{
		"A",
		"123456",
		"HELLO WORLD",
		"Data Matrix with mixed Case and 123 digits",
		"serial: SN-00042/B",
		strings.Repeat("LOT-2024-", 12),
	}
	for _, payload := range payloads {
		t.Run(payload[:min(len(payload), 20)], func(t *testing.T) {
			grid, err := encode.EncodeString(payload, symbol.ShapeAny)
			require.NoError(t, err)

			result, err := Decode(grid)
			require.NoError(t, err)
			assert.Equal(t, payload, result.Text)
			assert.Equal(t, 0, result.ErrorsCorrected)
		})
	}
}

func TestDecodeRoundTripRectangular(t *testing.T) {
	grid, err := encode.EncodeString("RECT-1", symbol.ShapeRectangle)
	require.NoError(t, err)
	assert.NotEqual(t, grid.Width(), grid.Height())

	result, err := Decode(grid)
	require.NoError(t, err)
	assert.Equal(t, "RECT-1", result.Text)
}

func TestDecodeRoundTripLatin1(t *testing.T) {
	grid, err := encode.EncodeString("Grüße", symbol.ShapeAny)
	require.NoError(t, err)

	result, err := Decode(grid)
	require.NoError(t, err)
	assert.Equal(t, "Grüße", result.Text)
	assert.Equal(t, []byte{'G', 'r', 0xFC, 0xDF, 'e'}, result.Bytes)
}

func TestDecodeRoundTripAllSquareSizes(t *testing.T) {
	// Payload lengths chosen to hit successively larger symbols. Lowercase
	// letters keep the stream in plain ASCII mode, one codeword per byte.
	for _, n := range []int{1, 4, 7, 11, 17, 21, 29, 43, 61, 85, 113, 143, 173, 203, 279, 367, 543, 815, 1047, 1303, 1550} {
		payload := strings.Repeat("x", n)
		grid, err := encode.EncodeString(payload, symbol.ShapeSquare)
		require.NoError(t, err, "n=%d", n)

		result, err := Decode(grid)
		require.NoError(t, err, "n=%d grid=%dx%d", n, grid.Width(), grid.Height())
		assert.Equal(t, payload, result.Text, "n=%d", n)
	}
}

func TestDecodeCorrectsDamagedModules(t *testing.T) {
	grid, err := encode.EncodeString("DAMAGE TEST 123", symbol.ShapeSquare)
	require.NoError(t, err)

	// Flip one module inside the data region. That corrupts a single
	// codeword, well within the Reed-Solomon correction capacity.
	grid.Flip(3, 3)

	result, err := Decode(grid)
	require.NoError(t, err)
	assert.Equal(t, "DAMAGE TEST 123", result.Text)
	assert.GreaterOrEqual(t, result.ErrorsCorrected, 1)
}

func TestDecodeUncorrectableDamage(t *testing.T) {
	grid, err := encode.EncodeString("X", symbol.ShapeSquare)
	require.NoError(t, err)

	// Trash the whole data region of the 10x10 symbol.
	for y := 1; y < 9; y++ {
		for x := 1; x < 9; x++ {
			if (x+y)%2 == 0 {
				grid.Flip(x, y)
			}
		}
	}

	result, err := Decode(grid)
	if err == nil {
		// A miscorrection would have to survive the bit stream rules too;
		// either way the original payload must not come back.
		assert.NotEqual(t, "X", result.Text)
		return
	}
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownGeometry(t *testing.T) {
	grid := binarize.NewBitmap(11, 11)
	_, err := Decode(grid)
	assert.ErrorIs(t, err, ErrFormat)
}
