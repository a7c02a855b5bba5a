// Package testutil provides helpers for rendering synthetic Data Matrix
// images in tests: module scaling, quiet zones, rotation and noise.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/encode"
	"github.com/scanforge/dmscan/internal/symbol"
)

// SymbolImageConfig holds configuration for rendering symbol images.
type SymbolImageConfig struct {
	Scale      int     // pixels per module
	QuietZone  int     // border width in modules
	Rotation   float64 // rotation in degrees, around the image center
	Background color.Color
	Foreground color.Color
}

// DefaultSymbolImageConfig returns the rendering defaults used by most
// tests: four pixels per module and a two module quiet zone.
func DefaultSymbolImageConfig() SymbolImageConfig {
	return SymbolImageConfig{
		Scale:      4,
		QuietZone:  2,
		Background: color.White,
		Foreground: color.Black,
	}
}

// RenderBitmap draws a module bitmap as an RGBA image according to the
// config.
func RenderBitmap(bits *binarize.Bitmap, config SymbolImageConfig) *image.RGBA {
	scale := config.Scale
	if scale < 1 {
		scale = 1
	}
	quiet := config.QuietZone * scale
	width := bits.Width()*scale + 2*quiet
	height := bits.Height()*scale + 2*quiet

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	dark := &image.Uniform{config.Foreground}
	for y := 0; y < bits.Height(); y++ {
		for x := 0; x < bits.Width(); x++ {
			if !bits.Get(x, y) {
				continue
			}
			r := image.Rect(quiet+x*scale, quiet+y*scale, quiet+(x+1)*scale, quiet+(y+1)*scale)
			draw.Draw(img, r, dark, image.Point{}, draw.Src)
		}
	}

	if config.Rotation != 0 {
		rotated := imaging.Rotate(img, config.Rotation, color.White)
		out := image.NewRGBA(rotated.Bounds())
		draw.Draw(out, out.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
		return out
	}
	return img
}

// RenderSymbol encodes text into a symbol and renders it.
func RenderSymbol(text string, config SymbolImageConfig) (*image.RGBA, error) {
	bits, err := encode.EncodeString(text, symbol.ShapeAny)
	if err != nil {
		return nil, err
	}
	return RenderBitmap(bits, config), nil
}

// RGBABytes flattens an RGBA image into the tightly packed buffer the
// string boundary consumes.
func RGBABytes(img *image.RGBA) ([]byte, int, int) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	buf := make([]byte, 0, width*height*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := img.PixOffset(bounds.Min.X, y)
		buf = append(buf, img.Pix[off:off+width*4]...)
	}
	return buf, width, height
}

// AddPixelNoise flips the darkness of n random pixels, seeded for
// reproducibility.
func AddPixelNoise(img *image.RGBA, n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	bounds := img.Bounds()
	for i := 0; i < n; i++ {
		x := bounds.Min.X + rng.Intn(bounds.Dx())
		y := bounds.Min.Y + rng.Intn(bounds.Dy())
		r, _, _, _ := img.At(x, y).RGBA()
		if r > 0x7FFF {
			img.Set(x, y, color.Black)
		} else {
			img.Set(x, y, color.White)
		}
	}
}
