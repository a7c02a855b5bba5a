package decode

import (
	"fmt"

	"github.com/scanforge/dmscan/internal/symbol"
)

// dataBlock is one de-interleaved Reed-Solomon block.
type dataBlock struct {
	numDataCodewords int
	codewords        []byte
}

// splitBlocks de-interleaves the raw codeword stream into per-block slices.
// Data codewords are interleaved across blocks first, then the EC codewords.
// The 144x144 symbol is the lone irregular case: its last two blocks carry
// one data codeword less, which shifts the EC interleave for those blocks.
func splitBlocks(rawCodewords []byte, size *symbol.Size) ([]dataBlock, error) {
	totalBlocks := size.BlockCount()
	if totalBlocks == 0 {
		return nil, fmt.Errorf("%w: geometry defines no blocks", ErrFormat)
	}
	ecPerBlock := size.ECPerBlock

	blocks := make([]dataBlock, 0, totalBlocks)
	for _, group := range size.Blocks {
		for i := 0; i < group.Count; i++ {
			blocks = append(blocks, dataBlock{
				numDataCodewords: group.DataCodewords,
				codewords:        make([]byte, group.DataCodewords+ecPerBlock),
			})
		}
	}

	longerBlocksNumData := blocks[0].numDataCodewords
	shorterBlocksNumData := longerBlocksNumData - 1

	offset := 0
	take := func() (byte, error) {
		if offset >= len(rawCodewords) {
			return 0, fmt.Errorf("%w: raw codeword stream too short", ErrFormat)
		}
		b := rawCodewords[offset]
		offset++
		return b, nil
	}

	for i := 0; i < shorterBlocksNumData; i++ {
		for j := 0; j < totalBlocks; j++ {
			b, err := take()
			if err != nil {
				return nil, err
			}
			blocks[j].codewords[i] = b
		}
	}

	mixed := size.MixedBlockSizes()
	numLongerBlocks := totalBlocks
	if mixed {
		numLongerBlocks = size.Blocks[0].Count
	}
	for j := 0; j < numLongerBlocks; j++ {
		b, err := take()
		if err != nil {
			return nil, err
		}
		blocks[j].codewords[longerBlocksNumData-1] = b
	}

	max := len(blocks[0].codewords)
	for i := longerBlocksNumData; i < max; i++ {
		for j := 0; j < totalBlocks; j++ {
			jOffset := j
			iOffset := i
			if mixed {
				jOffset = (j + numLongerBlocks) % totalBlocks
				if jOffset >= numLongerBlocks {
					iOffset = i - 1
				}
			}
			b, err := take()
			if err != nil {
				return nil, err
			}
			blocks[jOffset].codewords[iOffset] = b
		}
	}

	if offset != len(rawCodewords) {
		return nil, fmt.Errorf("%w: used %d of %d raw codewords", ErrFormat, offset, len(rawCodewords))
	}
	return blocks, nil
}
