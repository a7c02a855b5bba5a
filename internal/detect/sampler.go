package detect

import (
	"github.com/scanforge/dmscan/internal/binarize"
)

// sampleGrid reads one bit per module from the image, mapping module centers
// through the perspective transform defined by the four region corners.
func sampleGrid(image *binarize.Bitmap, topLeft, bottomLeft, bottomRight, topRight Point, dimensionX, dimensionY int) (*binarize.Bitmap, error) {
	if dimensionX <= 0 || dimensionY <= 0 {
		return nil, ErrDegenerateGrid
	}
	transform := quadToQuad(
		0.5, 0.5,
		float64(dimensionX)-0.5, 0.5,
		float64(dimensionX)-0.5, float64(dimensionY)-0.5,
		0.5, float64(dimensionY)-0.5,
		topLeft.X, topLeft.Y,
		topRight.X, topRight.Y,
		bottomRight.X, bottomRight.Y,
		bottomLeft.X, bottomLeft.Y,
	)
	return sampleGridTransform(image, dimensionX, dimensionY, transform)
}

func sampleGridTransform(image *binarize.Bitmap, dimensionX, dimensionY int, transform *perspectiveTransform) (*binarize.Bitmap, error) {
	if dimensionX <= 0 || dimensionY <= 0 {
		return nil, ErrDegenerateGrid
	}
	bits := binarize.NewBitmap(dimensionX, dimensionY)
	points := make([]float64, 2*dimensionX)
	for y := 0; y < dimensionY; y++ {
		iValue := float64(y) + 0.5
		for x := 0; x < len(points); x += 2 {
			points[x] = float64(x)/2 + 0.5
			points[x+1] = iValue
		}
		transform.transformPoints(points)
		if err := checkAndNudgePoints(image, points); err != nil {
			return nil, err
		}
		for x := 0; x < len(points); x += 2 {
			px := int(points[x])
			py := int(points[x+1])
			if px < 0 || px >= image.Width() || py < 0 || py >= image.Height() {
				// A transformed point landing outside the image after
				// nudging means the transform is wildly off.
				return nil, ErrDegenerateGrid
			}
			if image.Get(px, py) {
				bits.Set(x/2, y)
			}
		}
	}
	return bits, nil
}

// checkAndNudgePoints tolerates sample points that fall barely outside the
// image, which happens routinely from rounding when the symbol touches an
// image edge. Points within one pixel of the border are nudged inside;
// anything further out fails the row.
func checkAndNudgePoints(image *binarize.Bitmap, points []float64) error {
	width := float64(image.Width())
	height := float64(image.Height())

	nudged := true
	for offset := 0; offset < len(points) && nudged; offset += 2 {
		x := points[offset]
		y := points[offset+1]
		if x < -1 || x > width || y < -1 || y > height {
			return ErrDegenerateGrid
		}
		nudged = false
		if x == -1 {
			points[offset] = 0
			nudged = true
		} else if x == width {
			points[offset] = width - 1
			nudged = true
		}
		if y == -1 {
			points[offset+1] = 0
			nudged = true
		} else if y == height {
			points[offset+1] = height - 1
			nudged = true
		}
	}

	nudged = true
	for offset := len(points) - 2; offset >= 0 && nudged; offset -= 2 {
		x := points[offset]
		y := points[offset+1]
		if x < -1 || x > width || y < -1 || y > height {
			return ErrDegenerateGrid
		}
		nudged = false
		if x == -1 {
			points[offset] = 0
			nudged = true
		} else if x == width {
			points[offset] = width - 1
			nudged = true
		}
		if y == -1 {
			points[offset+1] = 0
			nudged = true
		} else if y == height {
			points[offset+1] = height - 1
			nudged = true
		}
	}
	return nil
}
