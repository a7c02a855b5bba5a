package testutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/dmscan/internal/binarize"
)

func TestRenderBitmapGeometry(t *testing.T) {
	bits := binarize.NewBitmap(10, 10)
	bits.Set(0, 0)

	config := SymbolImageConfig{Scale: 4, QuietZone: 2, Background: color.White, Foreground: color.Black}
	img := RenderBitmap(bits, config)

	assert.Equal(t, 10*4+2*2*4, img.Bounds().Dx())
	assert.Equal(t, 10*4+2*2*4, img.Bounds().Dy())

	// Quiet zone is background, the set module is foreground.
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0xFFFF), b)

	r, _, _, _ = img.At(8, 8).RGBA()
	assert.Equal(t, uint32(0), r)
}

func TestRenderBitmapMinScale(t *testing.T) {
	bits := binarize.NewBitmap(10, 10)
	img := RenderBitmap(bits, SymbolImageConfig{Scale: 0, QuietZone: 0, Background: color.White, Foreground: color.Black})
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestRenderBitmapRotation(t *testing.T) {
	bits := binarize.NewBitmap(10, 10)
	config := DefaultSymbolImageConfig()
	config.Rotation = 90
	img := RenderBitmap(bits, config)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestRenderSymbolInvalidText(t *testing.T) {
	_, err := RenderSymbol("日本語", DefaultSymbolImageConfig())
	assert.Error(t, err)
}

func TestRGBABytes(t *testing.T) {
	bits := binarize.NewBitmap(10, 10)
	bits.Set(0, 0)
	img := RenderBitmap(bits, SymbolImageConfig{Scale: 1, QuietZone: 0, Background: color.White, Foreground: color.Black})

	buf, w, h := RGBABytes(img)
	require.Equal(t, 10, w)
	require.Equal(t, 10, h)
	require.Len(t, buf, 10*10*4)

	// First pixel dark, second light.
	assert.Equal(t, byte(0), buf[0])
	assert.Equal(t, byte(0xFF), buf[4])
}

func TestAddPixelNoiseDeterministic(t *testing.T) {
	bits := binarize.NewBitmap(10, 10)
	config := DefaultSymbolImageConfig()

	img1 := RenderBitmap(bits, config)
	img2 := RenderBitmap(bits, config)
	AddPixelNoise(img1, 10, 7)
	AddPixelNoise(img2, 10, 7)
	assert.Equal(t, img1.Pix, img2.Pix)

	// Different seeds diverge.
	img3 := RenderBitmap(bits, config)
	AddPixelNoise(img3, 10, 8)
	assert.NotEqual(t, img1.Pix, img3.Pix)
}
