package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/decode"
	"github.com/scanforge/dmscan/internal/encode"
	"github.com/scanforge/dmscan/internal/symbol"
	"github.com/scanforge/dmscan/internal/testutil"
)

func renderedBitmap(t *testing.T, text string, config testutil.SymbolImageConfig) (*binarize.Bitmap, *binarize.Bitmap) {
	t.Helper()
	bits, err := encode.EncodeString(text, symbol.ShapeAny)
	require.NoError(t, err)
	img := testutil.RenderBitmap(bits, config)
	return binarize.FromImage(img).Bitmap(), bits
}

func TestDetectPure(t *testing.T) {
	config := testutil.DefaultSymbolImageConfig()
	config.Scale = 3
	image, bits := renderedBitmap(t, "PURE TEST 123", config)

	result, err := DetectPure(image)
	require.NoError(t, err)
	assert.True(t, result.Grid.Equals(bits), "grid:\n%vwant:\n%v", result.Grid, bits)

	// Corners frame the symbol inside the quiet zone.
	quiet := float64(config.QuietZone * config.Scale)
	assert.InDelta(t, quiet, result.Corners[0].X, 0.5)
	assert.InDelta(t, quiet, result.Corners[0].Y, 0.5)
}

func TestDetectPureSinglePixelModules(t *testing.T) {
	config := testutil.SymbolImageConfig{Scale: 1, QuietZone: 1}
	image, bits := renderedBitmap(t, "1px", config)

	result, err := DetectPure(image)
	require.NoError(t, err)
	assert.True(t, result.Grid.Equals(bits))
}

func TestDetectPureDecodes(t *testing.T) {
	image, _ := renderedBitmap(t, "PURE-DECODE", testutil.DefaultSymbolImageConfig())

	result, err := DetectPure(image)
	require.NoError(t, err)

	decoded, err := decode.Decode(result.Grid)
	require.NoError(t, err)
	assert.Equal(t, "PURE-DECODE", decoded.Text)
}

func TestDetectPureEmptyImage(t *testing.T) {
	_, err := DetectPure(binarize.NewBitmap(50, 50))
	assert.ErrorIs(t, err, ErrNoRegion)
}

func TestDetectPureAllDark(t *testing.T) {
	image := binarize.NewBitmap(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			image.Set(x, y)
		}
	}
	_, err := DetectPure(image)
	assert.ErrorIs(t, err, ErrNoRegion)
}

func TestDetect(t *testing.T) {
	config := testutil.DefaultSymbolImageConfig()
	config.Scale = 8
	config.QuietZone = 4
	image, bits := renderedBitmap(t, "HELLO DM", config)

	result, err := Detect(context.Background(), image)
	require.NoError(t, err)
	assert.True(t, result.Grid.Equals(bits), "grid:\n%vwant:\n%v", result.Grid, bits)
}

func TestDetectRotated(t *testing.T) {
	// The sampled grid comes out in canonical orientation regardless of the
	// symbol's rotation in the image, so decoding must succeed.
	for _, rotation := range []float64{90, 180, 270} {
		config := testutil.DefaultSymbolImageConfig()
		config.Scale = 8
		config.QuietZone = 4
		config.Rotation = rotation

		bits, err := encode.EncodeString("ROTATE", symbol.ShapeAny)
		require.NoError(t, err)
		img := testutil.RenderBitmap(bits, config)
		image := binarize.FromImage(img).Bitmap()

		result, err := Detect(context.Background(), image)
		require.NoError(t, err, "rotation %v", rotation)

		decoded, err := decode.Decode(result.Grid)
		require.NoError(t, err, "rotation %v", rotation)
		assert.Equal(t, "ROTATE", decoded.Text, "rotation %v", rotation)
	}
}

func TestDetectBlankImage(t *testing.T) {
	_, err := Detect(context.Background(), binarize.NewBitmap(100, 100))
	assert.ErrorIs(t, err, ErrNoRegion)
}

func TestDetectTinyImage(t *testing.T) {
	_, err := Detect(context.Background(), binarize.NewBitmap(8, 8))
	assert.ErrorIs(t, err, ErrNoRegion)
}

func TestDetectCanceledContext(t *testing.T) {
	image, _ := renderedBitmap(t, "CANCELED", testutil.DefaultSymbolImageConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Detect(ctx, image)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransitionsBetween(t *testing.T) {
	// Vertical stripes two pixels wide: dark, light, dark, light.
	image := binarize.NewBitmap(8, 8)
	for y := 0; y < 8; y++ {
		for _, x := range []int{0, 1, 4, 5} {
			image.Set(x, y)
		}
	}
	d := &detector{image: image}

	assert.Equal(t, 3, d.transitionsBetween(Point{X: 0, Y: 4}, Point{X: 7, Y: 4}))
	assert.Equal(t, 3, d.transitionsBetween(Point{X: 7, Y: 4}, Point{X: 0, Y: 4}))
	// Along a stripe there are no transitions.
	assert.Equal(t, 0, d.transitionsBetween(Point{X: 0, Y: 0}, Point{X: 0, Y: 7}))
}

func TestPerspectiveTransformScaling(t *testing.T) {
	// Map the unit square onto a 10x scaled square and check corner and
	// midpoint images.
	tr := quadToQuad(
		0, 0, 1, 0, 1, 1, 0, 1,
		0, 0, 10, 0, 10, 10, 0, 10,
	)
	points := []float64{0, 0, 1, 1, 0.5, 0.5}
	tr.transformPoints(points)
	assert.InDelta(t, 0, points[0], 1e-9)
	assert.InDelta(t, 0, points[1], 1e-9)
	assert.InDelta(t, 10, points[2], 1e-9)
	assert.InDelta(t, 10, points[3], 1e-9)
	assert.InDelta(t, 5, points[4], 1e-9)
	assert.InDelta(t, 5, points[5], 1e-9)
}

func TestSampleGridOutsideImage(t *testing.T) {
	image := binarize.NewBitmap(20, 20)
	_, err := sampleGrid(image,
		Point{X: -30, Y: -30}, Point{X: -30, Y: 60}, Point{X: 60, Y: 60}, Point{X: 60, Y: -30},
		10, 10)
	assert.ErrorIs(t, err, ErrDegenerateGrid)
}
