package decode

import (
	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/gf256"
)

// Decode turns a sampled module grid into the symbol payload. The grid must
// cover the full symbol including finder and clock-track modules, one bit
// per module, dark modules set.
func Decode(grid *binarize.Bitmap) (*Result, error) {
	rawCodewords, size, err := readCodewords(grid)
	if err != nil {
		return nil, err
	}

	blocks, err := splitBlocks(rawCodewords, size)
	if err != nil {
		return nil, err
	}

	totalData := 0
	for _, b := range blocks {
		totalData += b.numDataCodewords
	}

	// Correct each block, then re-interleave the data codewords back into
	// stream order.
	corrected := make([]byte, totalData)
	numBlocks := len(blocks)
	errorsCorrected := 0
	for j, block := range blocks {
		n, err := correctBlock(block.codewords, block.numDataCodewords)
		if err != nil {
			return nil, err
		}
		errorsCorrected += n
		for i := 0; i < block.numDataCodewords; i++ {
			corrected[i*numBlocks+j] = block.codewords[i]
		}
	}

	result, err := decodeBitStream(corrected)
	if err != nil {
		return nil, err
	}
	result.ErrorsCorrected = errorsCorrected
	return result, nil
}

func correctBlock(codewords []byte, numDataCodewords int) (int, error) {
	ints := make([]int, len(codewords))
	for i, b := range codewords {
		ints[i] = int(b)
	}
	corrected, err := gf256.Decode(ints, len(codewords)-numDataCodewords)
	if err != nil {
		return 0, ErrChecksum
	}
	for i := 0; i < numDataCodewords; i++ {
		codewords[i] = byte(ints[i])
	}
	return corrected, nil
}
