// Package detect locates a Data Matrix symbol in a binarized image and
// samples its module grid.
//
// A Data Matrix symbol is framed by an L-shaped solid border on two sides
// and alternating clock tracks on the other two. The detector first finds a
// light rectangle enclosing a dark region, classifies the solid sides by
// counting black/white transitions along each edge, corrects the open
// top-right corner, counts modules along the clock tracks, and finally
// samples the grid through a perspective transform.
package detect

import (
	"context"
	"errors"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/symbol"
)

// ErrNoRegion reports that no candidate symbol region was found.
var ErrNoRegion = errors.New("detect: no symbol region found")

// ErrDegenerateGrid reports that a located region could not be mapped to a
// valid module grid: collinear corners, a module count outside the ECC-200
// range, or samples falling outside the image.
var ErrDegenerateGrid = errors.New("detect: degenerate module grid")

// Point is a sub-pixel image coordinate.
type Point struct {
	X float64
	Y float64
}

// Result holds the sampled module grid and the four region corners in
// top-left, bottom-left, bottom-right, top-right order.
type Result struct {
	Grid    *binarize.Bitmap
	Corners [4]Point
}

type detector struct {
	image *binarize.Bitmap
}

// Detect locates a Data Matrix symbol in the bitmap and returns its sampled
// module grid. The context bounds the region scan, which is the only
// unbounded stage of the pipeline.
func Detect(ctx context.Context, image *binarize.Bitmap) (*Result, error) {
	locator, err := newWhiteRectLocator(image)
	if err != nil {
		return nil, err
	}
	cornerPoints, err := locator.locate(ctx)
	if err != nil {
		return nil, err
	}
	d := &detector{image: image}
	return d.detect(cornerPoints)
}

func (d *detector) detect(cornerPoints []Point) (*Result, error) {
	points := d.detectSolid1(cornerPoints)
	points = d.detectSolid2(points)
	topRight, ok := d.correctTopRight(points)
	if !ok {
		return nil, ErrNoRegion
	}
	points[3] = topRight
	points = d.shiftToModuleCenter(points)

	topLeft := points[0]
	bottomLeft := points[1]
	bottomRight := points[2]

	// Module counts come from clock-track transitions; each side of the
	// symbol always holds an even number of modules.
	dimensionTop := d.transitionsBetween(topLeft, topRight) + 1
	dimensionRight := d.transitionsBetween(bottomRight, topRight) + 1
	if dimensionTop&1 == 1 {
		dimensionTop++
	}
	if dimensionRight&1 == 1 {
		dimensionRight++
	}

	if 4*dimensionTop < 6*dimensionRight && 4*dimensionRight < 6*dimensionTop {
		// Nearly square: trust the larger count for both sides.
		if dimensionTop > dimensionRight {
			dimensionRight = dimensionTop
		} else {
			dimensionTop = dimensionRight
		}
	}

	if dimensionTop < symbol.MinDimension || dimensionTop > symbol.MaxDimension ||
		dimensionRight < symbol.MinDimension || dimensionRight > symbol.MaxDimension {
		return nil, ErrDegenerateGrid
	}

	grid, err := sampleGrid(d.image, topLeft, bottomLeft, bottomRight, topRight, dimensionTop, dimensionRight)
	if err != nil {
		return nil, err
	}
	return &Result{
		Grid:    grid,
		Corners: [4]Point{topLeft, bottomLeft, bottomRight, topRight},
	}, nil
}

// shiftPoint moves a point toward another by 1/(div+1) of the distance.
func shiftPoint(point, to Point, div int) Point {
	x := (to.X - point.X) / float64(div+1)
	y := (to.Y - point.Y) / float64(div+1)
	return Point{X: point.X + x, Y: point.Y + y}
}

// moveAway moves a point one pixel away from a center along both axes.
func moveAway(point Point, fromX, fromY float64) Point {
	x := point.X
	y := point.Y
	if x < fromX {
		x--
	} else {
		x++
	}
	if y < fromY {
		y--
	} else {
		y++
	}
	return Point{X: x, Y: y}
}

// detectSolid1 rotates the corner order so the side with the fewest
// transitions (the first solid border edge) comes first.
func (d *detector) detectSolid1(cornerPoints []Point) []Point {
	// 0  2
	// 1  3
	pointA := cornerPoints[0]
	pointB := cornerPoints[1]
	pointC := cornerPoints[3]
	pointD := cornerPoints[2]

	trAB := d.transitionsBetween(pointA, pointB)
	trBC := d.transitionsBetween(pointB, pointC)
	trCD := d.transitionsBetween(pointC, pointD)
	trDA := d.transitionsBetween(pointD, pointA)

	// 0..3
	// :  :
	// 1--2
	minTr := trAB
	points := []Point{pointD, pointA, pointB, pointC}
	if minTr > trBC {
		minTr = trBC
		points[0], points[1], points[2], points[3] = pointA, pointB, pointC, pointD
	}
	if minTr > trCD {
		minTr = trCD
		points[0], points[1], points[2], points[3] = pointB, pointC, pointD, pointA
	}
	if minTr > trDA {
		points[0], points[1], points[2], points[3] = pointC, pointD, pointA, pointB
	}
	return points
}

// detectSolid2 finds the second solid side adjacent to the first.
func (d *detector) detectSolid2(points []Point) []Point {
	// A..D
	// :  :
	// B--C
	pointA := points[0]
	pointB := points[1]
	pointC := points[2]
	pointD := points[3]

	// Transition counting directly on the edge is unstable; shift the
	// endpoints toward the module centers first.
	tr := d.transitionsBetween(pointA, pointD)
	pointBs := shiftPoint(pointB, pointC, (tr+1)*4)
	pointCs := shiftPoint(pointC, pointB, (tr+1)*4)
	trBA := d.transitionsBetween(pointBs, pointA)
	trCD := d.transitionsBetween(pointCs, pointD)

	// 0..3
	// |  :
	// 1--2
	if trBA < trCD {
		// Solid sides: A-B-C.
		points[0], points[1], points[2], points[3] = pointA, pointB, pointC, pointD
	} else {
		// Solid sides: B-C-D.
		points[0], points[1], points[2], points[3] = pointB, pointC, pointD, pointA
	}
	return points
}

// correctTopRight estimates the corner of the light top-right module where
// the two clock tracks meet.
func (d *detector) correctTopRight(points []Point) (Point, bool) {
	// A..D
	// |  :
	// B--C
	pointA := points[0]
	pointB := points[1]
	pointC := points[2]
	pointD := points[3]

	trTop := d.transitionsBetween(pointA, pointD)
	trRight := d.transitionsBetween(pointB, pointD)
	pointAs := shiftPoint(pointA, pointB, (trRight+1)*4)
	pointCs := shiftPoint(pointC, pointB, (trTop+1)*4)

	trTop = d.transitionsBetween(pointAs, pointD)
	trRight = d.transitionsBetween(pointCs, pointD)

	candidate1 := Point{
		X: pointD.X + (pointC.X-pointB.X)/float64(trTop+1),
		Y: pointD.Y + (pointC.Y-pointB.Y)/float64(trTop+1),
	}
	candidate2 := Point{
		X: pointD.X + (pointA.X-pointB.X)/float64(trRight+1),
		Y: pointD.Y + (pointA.Y-pointB.Y)/float64(trRight+1),
	}

	if !d.isValid(candidate1) {
		if d.isValid(candidate2) {
			return candidate2, true
		}
		return Point{}, false
	}
	if !d.isValid(candidate2) {
		return candidate1, true
	}

	sumc1 := d.transitionsBetween(pointAs, candidate1) + d.transitionsBetween(pointCs, candidate1)
	sumc2 := d.transitionsBetween(pointAs, candidate2) + d.transitionsBetween(pointCs, candidate2)
	if sumc1 > sumc2 {
		return candidate1, true
	}
	return candidate2, true
}

// shiftToModuleCenter moves the edge points onto the centers of the corner
// modules.
func (d *detector) shiftToModuleCenter(points []Point) []Point {
	// A..D
	// |  :
	// B--C
	pointA := points[0]
	pointB := points[1]
	pointC := points[2]
	pointD := points[3]

	// Rough dimensions first, refined after shifting.
	dimH := d.transitionsBetween(pointA, pointD) + 1
	dimV := d.transitionsBetween(pointC, pointD) + 1

	pointAs := shiftPoint(pointA, pointB, dimV*4)
	pointCs := shiftPoint(pointC, pointB, dimH*4)

	dimH = d.transitionsBetween(pointAs, pointD) + 1
	dimV = d.transitionsBetween(pointCs, pointD) + 1
	if dimH&1 == 1 {
		dimH++
	}
	if dimV&1 == 1 {
		dimV++
	}

	// The locator returns points inside the rectangle; push them onto the
	// edges before shifting to module centers.
	centerX := (pointA.X + pointB.X + pointC.X + pointD.X) / 4
	centerY := (pointA.Y + pointB.Y + pointC.Y + pointD.Y) / 4
	pointA = moveAway(pointA, centerX, centerY)
	pointB = moveAway(pointB, centerX, centerY)
	pointC = moveAway(pointC, centerX, centerY)
	pointD = moveAway(pointD, centerX, centerY)

	pointAs = shiftPoint(pointA, pointB, dimV*4)
	pointAs = shiftPoint(pointAs, pointD, dimH*4)
	pointBs := shiftPoint(pointB, pointA, dimV*4)
	pointBs = shiftPoint(pointBs, pointC, dimH*4)
	pointCs = shiftPoint(pointC, pointD, dimV*4)
	pointCs = shiftPoint(pointCs, pointB, dimH*4)
	pointDs := shiftPoint(pointD, pointC, dimV*4)
	pointDs = shiftPoint(pointDs, pointA, dimH*4)

	return []Point{pointAs, pointBs, pointCs, pointDs}
}

func (d *detector) isValid(p Point) bool {
	return p.X >= 0 && p.X <= float64(d.image.Width()-1) && p.Y > 0 && p.Y <= float64(d.image.Height()-1)
}

// transitionsBetween counts black/white transitions on the line between two
// points using Bresenham's algorithm.
func (d *detector) transitionsBetween(from, to Point) int {
	fromX := int(from.X)
	fromY := int(from.Y)
	toX := int(to.X)
	toY := int(to.Y)
	if toY > d.image.Height()-1 {
		toY = d.image.Height() - 1
	}

	steep := iabs(toY-fromY) > iabs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}

	dx := iabs(toX - fromX)
	dy := iabs(toY - fromY)
	errAcc := -dx / 2
	ystep := 1
	if fromY > toY {
		ystep = -1
	}
	xstep := 1
	if fromX > toX {
		xstep = -1
	}

	transitions := 0
	inBlack := d.image.Get(pick(steep, fromY, fromX), pick(steep, fromX, fromY))

	y := fromY
	for x := fromX; x != toX; x += xstep {
		isBlack := d.image.Get(pick(steep, y, x), pick(steep, x, y))
		if isBlack != inBlack {
			transitions++
			inBlack = isBlack
		}
		errAcc += dy
		if errAcc > 0 {
			if y == toY {
				break
			}
			y += ystep
			errAcc -= dx
		}
	}
	return transitions
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
