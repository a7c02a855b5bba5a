// Package binarize converts raster images into 1-bit black/white bitmaps
// for symbol detection. It accepts raw RGBA pixel buffers as well as Go
// image.Image values, reduces them to a luminance plane, and applies a
// fixed threshold: a pixel whose luminance falls below the threshold is a
// dark (foreground) sample.
package binarize

import (
	"errors"
	"image"
)

// DefaultThreshold is the fixed luminance cut-off between dark and light.
const DefaultThreshold = 0x7F

// ErrInvalidInput reports a nil buffer, non-positive dimensions, or a buffer
// whose length does not match width*height*4.
var ErrInvalidInput = errors.New("binarize: invalid input buffer or dimensions")

// Luminance holds an 8-bit greyscale plane derived from an input image.
type Luminance struct {
	pix    []byte
	width  int
	height int
}

// Width returns the plane width in pixels.
func (l *Luminance) Width() int { return l.width }

// Height returns the plane height in pixels.
func (l *Luminance) Height() int { return l.height }

// At returns the luminance at (x, y). Out-of-bounds coordinates return 0xFF
// (white) so that sampling outside the image reads as background.
func (l *Luminance) At(x, y int) byte {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0xFF
	}
	return l.pix[y*l.width+x]
}

// FromRGBA builds a Luminance plane from a raw RGBA buffer laid out as four
// bytes per pixel (R, G, B, A/X) in row-major order. The alpha byte is
// ignored. The buffer must hold exactly width*height*4 bytes.
//
// Uses the integer luminance approximation (306R + 601G + 117B + 0x200) >> 10.
func FromRGBA(buf []byte, width, height int) (*Luminance, error) {
	if buf == nil || width <= 0 || height <= 0 || len(buf) != width*height*4 {
		return nil, ErrInvalidInput
	}
	pix := make([]byte, width*height)
	for i := range pix {
		off := i * 4
		r := uint32(buf[off])
		g := uint32(buf[off+1])
		b := uint32(buf[off+2])
		pix[i] = byte((306*r + 601*g + 117*b + 0x200) >> 10)
	}
	return &Luminance{pix: pix, width: width, height: height}, nil
}

// FromImage builds a Luminance plane from a Go image. Fully-transparent
// pixels are forced to white so that transparent padding never reads as
// foreground.
func FromImage(img image.Image) *Luminance {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	// Fast path for the common decoded formats.
	if gray, ok := img.(*image.Gray); ok {
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			srcOff := (bounds.Min.Y+y)*gray.Stride + bounds.Min.X
			copy(pix[y*w:(y+1)*w], gray.Pix[srcOff:srcOff+w])
		}
		return &Luminance{pix: pix, width: w, height: h}
	}

	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				pix[y*w+x] = 0xFF
				continue
			}
			pix[y*w+x] = byte((306*(r>>8) + 601*(g>>8) + 117*(b>>8) + 0x200) >> 10)
		}
	}
	return &Luminance{pix: pix, width: w, height: h}
}

// Threshold converts the luminance plane into a Bitmap using the given
// cut-off. Pixels with luminance strictly below the threshold become dark.
func (l *Luminance) Threshold(threshold byte) *Bitmap {
	bm := NewBitmap(l.width, l.height)
	for y := 0; y < l.height; y++ {
		row := l.pix[y*l.width : (y+1)*l.width]
		for x, v := range row {
			if v < threshold {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// Bitmap converts the plane using DefaultThreshold.
func (l *Luminance) Bitmap() *Bitmap {
	return l.Threshold(DefaultThreshold)
}
