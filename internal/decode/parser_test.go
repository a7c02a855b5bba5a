package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/symbol"
)

func TestReadCodewordsUnknownDimensions(t *testing.T) {
	_, _, err := readCodewords(binarize.NewBitmap(9, 9))
	assert.ErrorIs(t, err, ErrFormat)

	_, _, err = readCodewords(binarize.NewBitmap(13, 13))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestExtractDataRegionSingleRegion(t *testing.T) {
	size, err := symbol.ByDimensions(10, 10)
	require.NoError(t, err)

	grid := binarize.NewBitmap(10, 10)
	// Finder patterns must not leak into the mapping matrix.
	for i := 0; i < 10; i++ {
		grid.Set(0, i)
		grid.Set(i, 9)
	}
	grid.Set(1, 1)
	grid.Set(8, 8)

	mapping := extractDataRegion(grid, size)
	assert.Equal(t, 8, mapping.Width())
	assert.Equal(t, 8, mapping.Height())
	assert.True(t, mapping.Get(0, 0))
	assert.True(t, mapping.Get(7, 7))

	count := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if mapping.Get(x, y) {
				count++
			}
		}
	}
	assert.Equal(t, 2, count)
}

func TestExtractDataRegionTiling(t *testing.T) {
	// 32x32 tiles four 14x14 data regions into a 28x28 mapping matrix.
	size, err := symbol.ByDimensions(32, 32)
	require.NoError(t, err)

	grid := binarize.NewBitmap(32, 32)
	grid.Set(1, 1)   // region (0,0) module (0,0)
	grid.Set(17, 17) // region (1,1) module (0,0)

	mapping := extractDataRegion(grid, size)
	assert.Equal(t, 28, mapping.Width())
	assert.Equal(t, 28, mapping.Height())
	assert.True(t, mapping.Get(0, 0))
	assert.True(t, mapping.Get(14, 14))
	assert.False(t, mapping.Get(13, 13))
}

func TestReadMappingMatrixUniform(t *testing.T) {
	for _, dims := range [][2]int{{10, 10}, {12, 12}, {14, 14}, {20, 20}, {8, 18}, {12, 26}, {32, 32}} {
		size, err := symbol.ByDimensions(dims[0], dims[1])
		require.NoError(t, err)

		dark := binarize.NewBitmap(size.MappingCols(), size.MappingRows())
		for y := 0; y < size.MappingRows(); y++ {
			for x := 0; x < size.MappingCols(); x++ {
				dark.Set(x, y)
			}
		}
		codewords, err := readMappingMatrix(dark, size)
		require.NoError(t, err, "%dx%d", dims[0], dims[1])
		require.Len(t, codewords, size.TotalCodewords())
		for i, cw := range codewords {
			assert.Equal(t, byte(0xFF), cw, "%dx%d codeword %d", dims[0], dims[1], i)
		}

		light := binarize.NewBitmap(size.MappingCols(), size.MappingRows())
		codewords, err = readMappingMatrix(light, size)
		require.NoError(t, err)
		for i, cw := range codewords {
			assert.Equal(t, byte(0), cw, "%dx%d codeword %d", dims[0], dims[1], i)
		}
	}
}

func TestReadMappingMatrixVisitsEveryCodewordBit(t *testing.T) {
	for _, dims := range [][2]int{{10, 10}, {12, 12}, {16, 16}, {24, 24}, {8, 32}, {16, 48}, {52, 52}, {144, 144}} {
		size, err := symbol.ByDimensions(dims[0], dims[1])
		require.NoError(t, err)

		// readMappingMatrix fails unless the placement walk emits exactly
		// TotalCodewords codewords, so success here proves full coverage.
		mapping := binarize.NewBitmap(size.MappingCols(), size.MappingRows())
		codewords, err := readMappingMatrix(mapping, size)
		require.NoError(t, err, "%dx%d", dims[0], dims[1])
		assert.Len(t, codewords, size.TotalCodewords())
	}
}
