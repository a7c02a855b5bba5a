package detect

import (
	"context"
	"math"

	"github.com/scanforge/dmscan/internal/binarize"
)

// initSize is the edge length of the initial search window, centered on the
// image midpoint.
const initSize = 10

// whiteRectLocator finds a light rectangular region that encloses a dark
// candidate symbol. Starting from a small window at the image center it
// expands each edge outward until the edge no longer crosses dark pixels,
// then walks in from the corners to find the outermost dark points.
type whiteRectLocator struct {
	image  *binarize.Bitmap
	width  int
	height int
}

func newWhiteRectLocator(image *binarize.Bitmap) (*whiteRectLocator, error) {
	w := image.Width()
	h := image.Height()
	half := initSize / 2
	if w/2-half < 0 || h/2-half < 0 || w/2+half >= w || h/2+half >= h {
		return nil, ErrNoRegion
	}
	return &whiteRectLocator{image: image, width: w, height: h}, nil
}

// locate expands the search rectangle and returns the four corner points of
// the enclosed dark region. The context is checked once per expansion round
// so an unbounded full-image scan can be cut short by a deadline.
func (l *whiteRectLocator) locate(ctx context.Context) ([]Point, error) {
	left := l.width/2 - initSize/2
	right := l.width/2 + initSize/2
	up := l.height/2 - initSize/2
	down := l.height/2 + initSize/2

	sizeExceeded := false
	blackPointFoundOnBorder := true

	foundRight := false
	foundBottom := false
	foundLeft := false
	foundTop := false

	for blackPointFoundOnBorder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blackPointFoundOnBorder = false

		rightBorderNotWhite := true
		for (rightBorderNotWhite || !foundRight) && right < l.width {
			rightBorderNotWhite = l.containsBlackPoint(up, down, right, false)
			if rightBorderNotWhite {
				right++
				blackPointFoundOnBorder = true
				foundRight = true
			} else if !foundRight {
				right++
			}
		}
		if right >= l.width {
			sizeExceeded = true
			break
		}

		bottomBorderNotWhite := true
		for (bottomBorderNotWhite || !foundBottom) && down < l.height {
			bottomBorderNotWhite = l.containsBlackPoint(left, right, down, true)
			if bottomBorderNotWhite {
				down++
				blackPointFoundOnBorder = true
				foundBottom = true
			} else if !foundBottom {
				down++
			}
		}
		if down >= l.height {
			sizeExceeded = true
			break
		}

		leftBorderNotWhite := true
		for (leftBorderNotWhite || !foundLeft) && left >= 0 {
			leftBorderNotWhite = l.containsBlackPoint(up, down, left, false)
			if leftBorderNotWhite {
				left--
				blackPointFoundOnBorder = true
				foundLeft = true
			} else if !foundLeft {
				left--
			}
		}
		if left < 0 {
			sizeExceeded = true
			break
		}

		topBorderNotWhite := true
		for (topBorderNotWhite || !foundTop) && up >= 0 {
			topBorderNotWhite = l.containsBlackPoint(left, right, up, true)
			if topBorderNotWhite {
				up--
				blackPointFoundOnBorder = true
				foundTop = true
			} else if !foundTop {
				up--
			}
		}
		if up < 0 {
			sizeExceeded = true
			break
		}
	}

	if sizeExceeded || !foundRight || !foundBottom || !foundLeft || !foundTop {
		return nil, ErrNoRegion
	}

	maxSize := right - left

	// Walk diagonally in from each corner to the first dark pixel.
	var z, t, x, y Point
	var found bool
	for i := 1; !found && i < maxSize; i++ {
		z, found = l.blackPointOnSegment(float64(left), float64(down-i), float64(left+i), float64(down))
	}
	if !found {
		return nil, ErrNoRegion
	}
	found = false
	for i := 1; !found && i < maxSize; i++ {
		t, found = l.blackPointOnSegment(float64(left), float64(up+i), float64(left+i), float64(up))
	}
	if !found {
		return nil, ErrNoRegion
	}
	found = false
	for i := 1; !found && i < maxSize; i++ {
		x, found = l.blackPointOnSegment(float64(right), float64(up+i), float64(right-i), float64(up))
	}
	if !found {
		return nil, ErrNoRegion
	}
	found = false
	for i := 1; !found && i < maxSize; i++ {
		y, found = l.blackPointOnSegment(float64(right), float64(down-i), float64(right-i), float64(down))
	}
	if !found {
		return nil, ErrNoRegion
	}

	return l.centerEdges(y, z, x, t), nil
}

// centerEdges nudges the four edge points a constant distance toward the
// region so the returned corners sit just inside the dark area.
func (l *whiteRectLocator) centerEdges(y, z, x, t Point) []Point {
	const corr = 1.0
	if y.X < float64(l.width)/2.0 {
		return []Point{
			{X: t.X - corr, Y: t.Y + corr},
			{X: z.X + corr, Y: z.Y + corr},
			{X: x.X - corr, Y: x.Y - corr},
			{X: y.X + corr, Y: y.Y - corr},
		}
	}
	return []Point{
		{X: t.X + corr, Y: t.Y + corr},
		{X: z.X + corr, Y: z.Y - corr},
		{X: x.X - corr, Y: x.Y + corr},
		{X: y.X - corr, Y: y.Y - corr},
	}
}

// blackPointOnSegment walks from (aX, aY) toward (bX, bY) and returns the
// first dark pixel on the segment.
func (l *whiteRectLocator) blackPointOnSegment(aX, aY, bX, bY float64) (Point, bool) {
	dist := round(math.Hypot(aX-bX, aY-bY))
	if dist < 1 {
		return Point{}, false
	}
	xStep := (bX - aX) / float64(dist)
	yStep := (bY - aY) / float64(dist)
	for i := 0; i < dist; i++ {
		px := round(aX + float64(i)*xStep)
		py := round(aY + float64(i)*yStep)
		if px >= 0 && px < l.width && py >= 0 && py < l.height && l.image.Get(px, py) {
			return Point{X: float64(px), Y: float64(py)}, true
		}
	}
	return Point{}, false
}

// containsBlackPoint scans a horizontal (fixed y) or vertical (fixed x)
// segment for any dark pixel.
func (l *whiteRectLocator) containsBlackPoint(a, b, fixed int, horizontal bool) bool {
	if horizontal {
		for x := a; x <= b; x++ {
			if l.image.Get(x, fixed) {
				return true
			}
		}
		return false
	}
	for y := a; y <= b; y++ {
		if l.image.Get(fixed, y) {
			return true
		}
	}
	return false
}

// round rounds half away from zero, matching the sampling convention used
// throughout the detector.
func round(d float64) int {
	if d < 0 {
		return int(d - 0.5)
	}
	return int(d + 0.5)
}
