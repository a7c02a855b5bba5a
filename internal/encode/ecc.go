package encode

import (
	"fmt"

	"github.com/scanforge/dmscan/internal/gf256"
	"github.com/scanforge/dmscan/internal/symbol"
)

// buildCodewordStream computes per-block error correction and interleaves
// data and EC codewords into the raw stream consumed by module placement.
// The interleave is the mirror image of the decoder's block splitting,
// including the rotated EC order of the 144x144 symbol.
func buildCodewordStream(dataCodewords []byte, size *symbol.Size) ([]byte, error) {
	if len(dataCodewords) != size.DataCapacity() {
		return nil, fmt.Errorf("encode: expected %d data codewords, got %d", size.DataCapacity(), len(dataCodewords))
	}

	numBlocks := size.BlockCount()
	ecPerBlock := size.ECPerBlock

	// Distribute data codewords round-robin across blocks, then append the
	// EC codewords for each block.
	blocks := make([][]byte, 0, numBlocks)
	for _, group := range size.Blocks {
		for i := 0; i < group.Count; i++ {
			blocks = append(blocks, make([]byte, 0, group.DataCodewords+ecPerBlock))
		}
	}
	blockData := make([]int, numBlocks)
	idx := 0
	for _, group := range size.Blocks {
		for i := 0; i < group.Count; i++ {
			blockData[idx] = group.DataCodewords
			idx++
		}
	}
	for i, cw := range dataCodewords {
		blocks[i%numBlocks] = append(blocks[i%numBlocks], cw)
	}
	for j := range blocks {
		if len(blocks[j]) != blockData[j] {
			return nil, fmt.Errorf("encode: block %d holds %d data codewords, want %d", j, len(blocks[j]), blockData[j])
		}
		blocks[j] = appendEC(blocks[j], ecPerBlock)
	}

	longerNumData := blockData[0]
	shorterNumData := longerNumData - 1
	mixed := size.MixedBlockSizes()
	numLongerBlocks := numBlocks
	if mixed {
		numLongerBlocks = size.Blocks[0].Count
	}

	stream := make([]byte, 0, size.TotalCodewords())
	for i := 0; i < shorterNumData; i++ {
		for j := 0; j < numBlocks; j++ {
			stream = append(stream, blocks[j][i])
		}
	}
	for j := 0; j < numLongerBlocks; j++ {
		stream = append(stream, blocks[j][longerNumData-1])
	}
	max := longerNumData + ecPerBlock
	for i := longerNumData; i < max; i++ {
		for j := 0; j < numBlocks; j++ {
			jOffset := j
			iOffset := i
			if mixed {
				jOffset = (j + numLongerBlocks) % numBlocks
				if jOffset >= numLongerBlocks {
					iOffset = i - 1
				}
			}
			stream = append(stream, blocks[jOffset][iOffset])
		}
	}
	return stream, nil
}

// appendEC grows a data block with its Reed-Solomon codewords.
func appendEC(data []byte, numEC int) []byte {
	toEncode := make([]int, len(data)+numEC)
	for i, b := range data {
		toEncode[i] = int(b)
	}
	gf256.Encode(toEncode, numEC)
	out := make([]byte, len(toEncode))
	for i, v := range toEncode {
		out[i] = byte(v)
	}
	return out
}
