package detect

import (
	"github.com/scanforge/dmscan/internal/binarize"
)

// DetectPure extracts the module grid from an image that holds a single
// axis-aligned symbol with a uniform module size, such as a rendered label.
// It skips the region search entirely and is much cheaper than Detect, but
// tolerates no rotation or perspective distortion.
func DetectPure(image *binarize.Bitmap) (*Result, error) {
	leftX, topY, ok := image.TopLeftOnBit()
	if !ok {
		return nil, ErrNoRegion
	}
	rightX, bottomY, ok := image.BottomRightOnBit()
	if !ok {
		return nil, ErrNoRegion
	}

	moduleSize, ok := pureModuleSize(image, leftX, topY)
	if !ok {
		return nil, ErrNoRegion
	}

	matrixWidth := (rightX - leftX + 1) / moduleSize
	matrixHeight := (bottomY - topY + 1) / moduleSize
	if matrixWidth <= 0 || matrixHeight <= 0 {
		return nil, ErrNoRegion
	}

	nudge := moduleSize / 2

	bits := binarize.NewBitmap(matrixWidth, matrixHeight)
	for y := 0; y < matrixHeight; y++ {
		sy := topY + y*moduleSize + nudge
		for x := 0; x < matrixWidth; x++ {
			if image.Get(leftX+x*moduleSize+nudge, sy) {
				bits.Set(x, y)
			}
		}
	}
	return &Result{
		Grid: bits,
		Corners: [4]Point{
			{X: float64(leftX), Y: float64(topY)},
			{X: float64(leftX), Y: float64(bottomY)},
			{X: float64(rightX), Y: float64(bottomY)},
			{X: float64(rightX), Y: float64(topY)},
		},
	}, nil
}

// pureModuleSize measures the module size by walking right along the solid
// left border's top row until the first light pixel.
func pureModuleSize(image *binarize.Bitmap, leftX, topY int) (int, bool) {
	width := image.Width()
	x := leftX
	for x < width && image.Get(x, topY) {
		x++
	}
	if x == width || x == leftX {
		return 0, false
	}
	return x - leftX, true
}
