// Package decode turns a sampled module grid into the encoded payload:
// codeword extraction, Reed-Solomon correction and high-level bit stream
// decoding.
package decode

import (
	"errors"
	"fmt"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/symbol"
)

// ErrFormat reports a grid whose structure does not match any ECC-200
// geometry or whose bit stream violates the encoding rules.
var ErrFormat = errors.New("decode: invalid symbol format")

// ErrChecksum reports codewords that Reed-Solomon correction could not
// repair.
var ErrChecksum = errors.New("decode: error correction failed")

// readCodewords extracts the raw codewords from a full symbol grid. The grid
// includes finder and clock-track modules; those are stripped by tiling the
// data regions into the mapping matrix before the placement walk.
func readCodewords(grid *binarize.Bitmap) ([]byte, *symbol.Size, error) {
	size, err := symbol.ByDimensions(grid.Height(), grid.Width())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	mapping := extractDataRegion(grid, size)
	codewords, err := readMappingMatrix(mapping, size)
	if err != nil {
		return nil, nil, err
	}
	return codewords, size, nil
}

// extractDataRegion strips the finder patterns and clock tracks, tiling the
// data regions together into the logical mapping matrix.
func extractDataRegion(grid *binarize.Bitmap, size *symbol.Size) *binarize.Bitmap {
	regionRows := size.DataRegionRows
	regionCols := size.DataRegionCols
	numRegionsVert := size.Rows / (regionRows + 2)
	numRegionsHoriz := size.Cols / (regionCols + 2)

	mapping := binarize.NewBitmap(numRegionsHoriz*regionCols, numRegionsVert*regionRows)

	for regionRow := 0; regionRow < numRegionsVert; regionRow++ {
		for regionCol := 0; regionCol < numRegionsHoriz; regionCol++ {
			for i := 0; i < regionRows; i++ {
				readRow := regionRow*(regionRows+2) + 1 + i
				writeRow := regionRow*regionRows + i
				for j := 0; j < regionCols; j++ {
					readCol := regionCol*(regionCols+2) + 1 + j
					if grid.Get(readCol, readRow) {
						mapping.Set(regionCol*regionCols+j, writeRow)
					}
				}
			}
		}
	}
	return mapping
}

// mappingReader walks the mapping matrix in the ECC-200 diagonal placement
// order, assembling one codeword from each 8-module shape.
type mappingReader struct {
	mapping *binarize.Bitmap
	numRows int
	numCols int
	read    [][]bool
}

// readMappingMatrix extracts the codewords from the mapping matrix in
// placement order.
func readMappingMatrix(mapping *binarize.Bitmap, size *symbol.Size) ([]byte, error) {
	numRows := mapping.Height()
	numCols := mapping.Width()
	total := size.TotalCodewords()

	r := &mappingReader{
		mapping: mapping,
		numRows: numRows,
		numCols: numCols,
		read:    make([][]bool, numRows),
	}
	for i := range r.read {
		r.read[i] = make([]bool, numCols)
	}

	result := make([]byte, total)
	index := 0
	row := 4
	col := 0

	store := func(b byte) {
		if index < total {
			result[index] = b
			index++
		}
	}

	for {
		// Corner shapes are placed when the diagonal walk reaches these
		// positions; which ones occur depends on the matrix width.
		if row == numRows && col == 0 {
			store(r.corner1())
			row -= 2
			col += 2
		}
		if row == numRows-2 && col == 0 && numCols%4 != 0 {
			store(r.corner2())
			row -= 2
			col += 2
		}
		if row == numRows+4 && col == 2 && numCols%8 == 0 {
			store(r.corner3())
			row -= 2
			col += 2
		}
		if row == numRows-2 && col == 0 && numCols%8 == 4 {
			store(r.corner4())
			row -= 2
			col += 2
		}

		// Diagonal sweep up and to the right.
		for {
			if row >= 0 && row < numRows && col >= 0 && col < numCols && !r.read[row][col] {
				store(r.utah(row, col))
			}
			row -= 2
			col += 2
			if row < 0 || col >= numCols {
				break
			}
		}
		row++
		col += 3

		// Diagonal sweep down and to the left.
		for {
			if row >= 0 && row < numRows && col >= 0 && col < numCols && !r.read[row][col] {
				store(r.utah(row, col))
			}
			row += 2
			col -= 2
			if row >= numRows || col < 0 {
				break
			}
		}
		row += 3
		col++

		if row >= numRows && col >= numCols {
			break
		}
	}

	if index != total {
		return nil, fmt.Errorf("%w: placed %d of %d codewords", ErrFormat, index, total)
	}
	return result, nil
}

// module reads one module, applying the wrap-around rules for shapes that
// extend past the matrix edges.
func (r *mappingReader) module(row, col int) bool {
	if row < 0 {
		row += r.numRows
		col += 4 - ((r.numRows + 4) % 8)
	}
	if col < 0 {
		col += r.numCols
		row += 4 - ((r.numCols + 4) % 8)
	}
	if row >= r.numRows {
		row -= r.numRows
	}
	if col >= r.numCols {
		col -= r.numCols
	}
	r.read[row][col] = true
	return r.mapping.Get(col, row)
}

// assemble packs eight modules into a codeword, most significant bit first.
func (r *mappingReader) assemble(positions [8][2]int) byte {
	var b byte
	for _, p := range positions {
		b <<= 1
		if r.module(p[0], p[1]) {
			b |= 1
		}
	}
	return b
}

// utah reads the standard L-shaped 8-module codeword anchored at (row, col).
func (r *mappingReader) utah(row, col int) byte {
	return r.assemble([8][2]int{
		{row - 2, col - 2}, {row - 2, col - 1},
		{row - 1, col - 2}, {row - 1, col - 1}, {row - 1, col},
		{row, col - 2}, {row, col - 1}, {row, col},
	})
}

func (r *mappingReader) corner1() byte {
	return r.assemble([8][2]int{
		{r.numRows - 1, 0}, {r.numRows - 1, 1}, {r.numRows - 1, 2},
		{0, r.numCols - 2}, {0, r.numCols - 1},
		{1, r.numCols - 1}, {2, r.numCols - 1}, {3, r.numCols - 1},
	})
}

func (r *mappingReader) corner2() byte {
	return r.assemble([8][2]int{
		{r.numRows - 3, 0}, {r.numRows - 2, 0}, {r.numRows - 1, 0},
		{0, r.numCols - 4}, {0, r.numCols - 3}, {0, r.numCols - 2}, {0, r.numCols - 1},
		{1, r.numCols - 1},
	})
}

func (r *mappingReader) corner3() byte {
	return r.assemble([8][2]int{
		{r.numRows - 1, 0}, {r.numRows - 1, r.numCols - 1},
		{0, r.numCols - 3}, {0, r.numCols - 2}, {0, r.numCols - 1},
		{1, r.numCols - 3}, {1, r.numCols - 2}, {1, r.numCols - 1},
	})
}

func (r *mappingReader) corner4() byte {
	return r.assemble([8][2]int{
		{r.numRows - 3, 0}, {r.numRows - 2, 0}, {r.numRows - 1, 0},
		{0, r.numCols - 2}, {0, r.numCols - 1},
		{1, r.numCols - 1}, {2, r.numCols - 1}, {3, r.numCols - 1},
	})
}
