package encode

import (
	"fmt"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/symbol"
)

// Encode builds a Data Matrix symbol for the payload, one bit per module
// with dark modules set. The smallest geometry that fits is chosen, subject
// to the shape hint.
func Encode(payload []byte, shape symbol.ShapeHint) (*binarize.Bitmap, error) {
	encoded, err := encodeHighLevel(payload)
	if err != nil {
		return nil, err
	}

	size, err := symbol.ByCapacity(len(encoded), shape)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	codewords := padCodewords(encoded, size.DataCapacity())
	stream, err := buildCodewordStream(codewords, size)
	if err != nil {
		return nil, err
	}

	p := newPlacement(stream, size.MappingCols(), size.MappingRows())
	p.place()

	return assembleSymbol(p, size), nil
}

// EncodeString encodes a text payload. Characters outside Latin-1 cannot be
// represented under the default interpretation.
func EncodeString(text string, shape symbol.ShapeHint) (*binarize.Bitmap, error) {
	payload := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return nil, fmt.Errorf("encode: character %q is outside Latin-1", r)
		}
		payload = append(payload, byte(r))
	}
	return Encode(payload, shape)
}

// assembleSymbol surrounds the mapping matrix with the finder and clock
// track patterns of each data region: a solid left column and bottom row,
// and alternating top row and right column.
func assembleSymbol(p *placement, size *symbol.Size) *binarize.Bitmap {
	matrix := binarize.NewBitmap(size.Cols, size.Rows)

	regionRows := size.DataRegionRows
	regionCols := size.DataRegionCols
	numRegionsH := size.Cols / (regionCols + 2)
	numRegionsV := size.Rows / (regionRows + 2)

	for vRegion := 0; vRegion < numRegionsV; vRegion++ {
		for hRegion := 0; hRegion < numRegionsH; hRegion++ {
			originX := hRegion * (regionCols + 2)
			originY := vRegion * (regionRows + 2)

			for y := 0; y < regionRows+2; y++ {
				matrix.Set(originX, originY+y)
			}
			for x := 0; x < regionCols+2; x++ {
				matrix.Set(originX+x, originY+regionRows+1)
			}
			for x := 0; x < regionCols+2; x += 2 {
				matrix.Set(originX+x, originY)
			}
			for y := 0; y < regionRows+2; y += 2 {
				matrix.Set(originX+regionCols+1, originY+y)
			}

			for r := 0; r < regionRows; r++ {
				for c := 0; c < regionCols; c++ {
					if p.bit(hRegion*regionCols+c, vRegion*regionRows+r) {
						matrix.Set(originX+c+1, originY+r+1)
					}
				}
			}
		}
	}
	return matrix
}
