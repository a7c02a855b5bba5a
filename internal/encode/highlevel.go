// Package encode builds Data Matrix ECC-200 symbols from payload bytes:
// high-level codeword encoding, Reed-Solomon block generation, module
// placement and final symbol assembly. Its main use here is producing known
// good symbols for the scanner's tests and the encode command.
package encode

import (
	"errors"
)

// Codeword values with special meaning in ASCII mode.
const (
	padCodeword        = 129
	latchC40           = 230
	upperShiftCodeword = 235
	unlatchCodeword    = 254
)

// ErrEmptyPayload reports an encode request with no data.
var ErrEmptyPayload = errors.New("encode: empty payload")

// encodeHighLevel converts payload bytes into data codewords. ASCII mode is
// the base encoding; runs of C40-friendly characters long enough to amortize
// the latch and unlatch codewords are encoded in C40.
func encodeHighLevel(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	ascii := encodeASCII(data)
	c40 := encodeWithC40Runs(data)
	if len(c40) < len(ascii) {
		return c40, nil
	}
	return ascii, nil
}

// encodeASCII encodes the payload entirely in ASCII mode: bytes 0..127 as
// value+1, digit pairs as one codeword, bytes above 127 as an upper shift
// pair.
func encodeASCII(data []byte) []byte {
	result := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		appendASCII(&result, data, &i)
	}
	return result
}

func appendASCII(result *[]byte, data []byte, i *int) {
	c := data[*i]
	if c >= '0' && c <= '9' && *i+1 < len(data) && data[*i+1] >= '0' && data[*i+1] <= '9' {
		pair := (int(c)-'0')*10 + int(data[*i+1]) - '0'
		*result = append(*result, byte(pair+130))
		*i += 2
		return
	}
	if c <= 127 {
		*result = append(*result, c+1)
	} else {
		*result = append(*result, upperShiftCodeword, c-128+1)
	}
	*i++
}

// encodeWithC40Runs encodes runs of at least six basic C40 characters in C40
// mode and everything else in ASCII mode. Three C40 characters pack into two
// codewords, so shorter runs do not pay for the latch and unlatch.
func encodeWithC40Runs(data []byte) []byte {
	result := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		runLen := 0
		for j := i; j < len(data) && isBasicC40(data[j]); j++ {
			runLen++
		}
		if runLen < 6 {
			appendASCII(&result, data, &i)
			continue
		}

		result = append(result, latchC40)
		full := runLen - runLen%3
		for k := i; k < i+full; k += 3 {
			v := c40Value(data[k])*1600 + c40Value(data[k+1])*40 + c40Value(data[k+2]) + 1
			result = append(result, byte(v/256), byte(v%256))
		}
		result = append(result, unlatchCodeword)
		// Leftover characters of a partial triplet continue in ASCII.
		i += full
	}
	return result
}

func isBasicC40(b byte) bool {
	return b == ' ' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z')
}

func c40Value(b byte) int {
	switch {
	case b == ' ':
		return 3
	case b >= '0' && b <= '9':
		return int(b-'0') + 4
	default:
		return int(b-'A') + 14
	}
}

// padCodewords fills the codeword slice up to the symbol's data capacity.
// The first pad is the literal pad codeword; the rest carry the 253-state
// pseudo-random mask so repeated padding does not produce long solid runs in
// the symbol.
func padCodewords(codewords []byte, capacity int) []byte {
	if len(codewords) >= capacity {
		return codewords
	}
	result := make([]byte, capacity)
	n := copy(result, codewords)
	result[n] = padCodeword
	for i := n + 1; i < capacity; i++ {
		result[i] = randomize253(padCodeword, i+1)
	}
	return result
}

// randomize253 applies the 253-state mask to a pad codeword. position is
// 1-based within the data codeword stream.
func randomize253(codeword byte, position int) byte {
	pseudoRandom := ((149 * position) % 253) + 1
	v := int(codeword) + pseudoRandom
	if v > 254 {
		v -= 254
	}
	return byte(v)
}
