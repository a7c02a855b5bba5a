// Package symbol describes the Data Matrix ECC-200 symbol geometries from
// ISO/IEC 16022 Table 7: 24 square and 6 rectangular sizes, each with its
// data-region layout and Reed-Solomon block structure. The table is shared
// by the decoder (looked up by detected module counts) and the encoder
// (looked up by payload size).
package symbol

import "fmt"

// MinDimension and MaxDimension bound the valid module counts per side for
// any ECC-200 symbol. Detected grids outside this range are rejected before
// a table lookup is attempted.
const (
	MinDimension = 10
	MaxDimension = 144
)

// Block describes one group of identical Reed-Solomon blocks.
type Block struct {
	Count         int // number of blocks in this group
	DataCodewords int // data codewords per block
}

// Size describes a single ECC-200 symbol geometry.
type Size struct {
	Rows           int  // total module rows, including finder patterns
	Cols           int  // total module columns, including finder patterns
	DataRegionRows int  // data rows per data region
	DataRegionCols int  // data columns per data region
	ECPerBlock     int  // error-correction codewords per RS block
	Blocks         []Block
	Rectangular    bool
}

// DataCapacity returns the total number of data codewords.
func (s *Size) DataCapacity() int {
	total := 0
	for _, b := range s.Blocks {
		total += b.Count * b.DataCodewords
	}
	return total
}

// TotalCodewords returns data plus error-correction codewords.
func (s *Size) TotalCodewords() int {
	total := 0
	for _, b := range s.Blocks {
		total += b.Count * (b.DataCodewords + s.ECPerBlock)
	}
	return total
}

// BlockCount returns the number of interleaved RS blocks.
func (s *Size) BlockCount() int {
	n := 0
	for _, b := range s.Blocks {
		n += b.Count
	}
	return n
}

// MappingRows returns the row count of the mapping matrix: the symbol rows
// minus two finder/timing rows per vertical data region.
func (s *Size) MappingRows() int {
	return s.Rows - (s.Rows/(s.DataRegionRows+2))*2
}

// MappingCols returns the column count of the mapping matrix.
func (s *Size) MappingCols() int {
	return s.Cols - (s.Cols/(s.DataRegionCols+2))*2
}

// MixedBlockSizes reports whether the geometry uses two RS block lengths.
// Only the 144x144 symbol does; its last two blocks carry one data codeword
// less than the first eight.
func (s *Size) MixedBlockSizes() bool {
	return len(s.Blocks) > 1
}

// sizes lists all ECC-200 geometries ordered by data capacity so that
// ByCapacity picks the smallest fitting symbol.
var sizes = []Size{
	{Rows: 10, Cols: 10, DataRegionRows: 8, DataRegionCols: 8, ECPerBlock: 5, Blocks: []Block{{1, 3}}},
	{Rows: 12, Cols: 12, DataRegionRows: 10, DataRegionCols: 10, ECPerBlock: 7, Blocks: []Block{{1, 5}}},
	{Rows: 8, Cols: 18, DataRegionRows: 6, DataRegionCols: 16, ECPerBlock: 7, Blocks: []Block{{1, 5}}, Rectangular: true},
	{Rows: 14, Cols: 14, DataRegionRows: 12, DataRegionCols: 12, ECPerBlock: 10, Blocks: []Block{{1, 8}}},
	{Rows: 8, Cols: 32, DataRegionRows: 6, DataRegionCols: 14, ECPerBlock: 11, Blocks: []Block{{1, 10}}, Rectangular: true},
	{Rows: 16, Cols: 16, DataRegionRows: 14, DataRegionCols: 14, ECPerBlock: 12, Blocks: []Block{{1, 12}}},
	{Rows: 12, Cols: 26, DataRegionRows: 10, DataRegionCols: 24, ECPerBlock: 14, Blocks: []Block{{1, 16}}, Rectangular: true},
	{Rows: 18, Cols: 18, DataRegionRows: 16, DataRegionCols: 16, ECPerBlock: 14, Blocks: []Block{{1, 18}}},
	{Rows: 12, Cols: 36, DataRegionRows: 10, DataRegionCols: 16, ECPerBlock: 18, Blocks: []Block{{1, 22}}, Rectangular: true},
	{Rows: 20, Cols: 20, DataRegionRows: 18, DataRegionCols: 18, ECPerBlock: 18, Blocks: []Block{{1, 22}}},
	{Rows: 22, Cols: 22, DataRegionRows: 20, DataRegionCols: 20, ECPerBlock: 20, Blocks: []Block{{1, 30}}},
	{Rows: 16, Cols: 36, DataRegionRows: 14, DataRegionCols: 16, ECPerBlock: 24, Blocks: []Block{{1, 32}}, Rectangular: true},
	{Rows: 24, Cols: 24, DataRegionRows: 22, DataRegionCols: 22, ECPerBlock: 24, Blocks: []Block{{1, 36}}},
	{Rows: 26, Cols: 26, DataRegionRows: 24, DataRegionCols: 24, ECPerBlock: 28, Blocks: []Block{{1, 44}}},
	{Rows: 16, Cols: 48, DataRegionRows: 14, DataRegionCols: 22, ECPerBlock: 28, Blocks: []Block{{1, 49}}, Rectangular: true},
	{Rows: 32, Cols: 32, DataRegionRows: 14, DataRegionCols: 14, ECPerBlock: 36, Blocks: []Block{{1, 62}}},
	{Rows: 36, Cols: 36, DataRegionRows: 16, DataRegionCols: 16, ECPerBlock: 42, Blocks: []Block{{1, 86}}},
	{Rows: 40, Cols: 40, DataRegionRows: 18, DataRegionCols: 18, ECPerBlock: 48, Blocks: []Block{{1, 114}}},
	{Rows: 44, Cols: 44, DataRegionRows: 20, DataRegionCols: 20, ECPerBlock: 56, Blocks: []Block{{1, 144}}},
	{Rows: 48, Cols: 48, DataRegionRows: 22, DataRegionCols: 22, ECPerBlock: 68, Blocks: []Block{{1, 174}}},
	{Rows: 52, Cols: 52, DataRegionRows: 24, DataRegionCols: 24, ECPerBlock: 42, Blocks: []Block{{2, 102}}},
	{Rows: 64, Cols: 64, DataRegionRows: 14, DataRegionCols: 14, ECPerBlock: 56, Blocks: []Block{{2, 140}}},
	{Rows: 72, Cols: 72, DataRegionRows: 16, DataRegionCols: 16, ECPerBlock: 36, Blocks: []Block{{4, 92}}},
	{Rows: 80, Cols: 80, DataRegionRows: 18, DataRegionCols: 18, ECPerBlock: 48, Blocks: []Block{{4, 114}}},
	{Rows: 88, Cols: 88, DataRegionRows: 20, DataRegionCols: 20, ECPerBlock: 56, Blocks: []Block{{4, 144}}},
	{Rows: 96, Cols: 96, DataRegionRows: 22, DataRegionCols: 22, ECPerBlock: 68, Blocks: []Block{{4, 174}}},
	{Rows: 104, Cols: 104, DataRegionRows: 24, DataRegionCols: 24, ECPerBlock: 56, Blocks: []Block{{6, 136}}},
	{Rows: 120, Cols: 120, DataRegionRows: 18, DataRegionCols: 18, ECPerBlock: 68, Blocks: []Block{{6, 175}}},
	{Rows: 132, Cols: 132, DataRegionRows: 20, DataRegionCols: 20, ECPerBlock: 62, Blocks: []Block{{8, 163}}},
	{Rows: 144, Cols: 144, DataRegionRows: 22, DataRegionCols: 22, ECPerBlock: 62, Blocks: []Block{{8, 156}, {2, 155}}},
}

// ShapeHint restricts symbol selection during encoding.
type ShapeHint int

const (
	// ShapeAny allows either square or rectangular symbols.
	ShapeAny ShapeHint = iota
	// ShapeSquare forces square symbols.
	ShapeSquare
	// ShapeRectangle forces rectangular symbols.
	ShapeRectangle
)

// ByDimensions returns the geometry for a symbol with the given module
// counts, or an error if no ECC-200 size matches.
func ByDimensions(rows, cols int) (*Size, error) {
	for i := range sizes {
		if sizes[i].Rows == rows && sizes[i].Cols == cols {
			return &sizes[i], nil
		}
	}
	return nil, fmt.Errorf("symbol: no ECC-200 size for %dx%d modules", rows, cols)
}

// ByCapacity returns the smallest geometry that can hold the given number of
// data codewords, honoring the shape hint.
func ByCapacity(dataCodewords int, shape ShapeHint) (*Size, error) {
	for i := range sizes {
		s := &sizes[i]
		if shape == ShapeSquare && s.Rectangular {
			continue
		}
		if shape == ShapeRectangle && !s.Rectangular {
			continue
		}
		if s.DataCapacity() >= dataCodewords {
			return s, nil
		}
	}
	return nil, fmt.Errorf("symbol: no ECC-200 size fits %d data codewords", dataCodewords)
}
