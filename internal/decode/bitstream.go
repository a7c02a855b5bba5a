package decode

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Result holds the decoded payload of one symbol.
type Result struct {
	// Bytes is the decoded payload as raw bytes. Values above 0x7F come
	// from upper-shift or Base 256 sequences and are Latin-1 code points
	// under the default ECC-200 interpretation.
	Bytes []byte
	// Text is the payload projected through ISO 8859-1 into a UTF-8
	// string.
	Text string
	// ErrorsCorrected counts codewords repaired by Reed-Solomon across
	// all blocks.
	ErrorsCorrected int
}

// Encodation modes of the ECC-200 high-level bit stream. ASCII is the start
// mode; latch codewords switch between the others and 254 returns to ASCII.
const (
	modeASCII = iota
	modeC40
	modeText
	modeX12
	modeEDIFACT
	modeBase256
	modeDone
)

// c40Shift2 maps shift-2 set values 0..26 to punctuation. Value 27 is FNC1,
// 30 is upper shift; both are handled in code.
var c40Shift2 = [27]byte{
	'!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	':', ';', '<', '=', '>', '?', '@', '[', '\\', ']', '^', '_',
}

// decodeBitStream decodes the corrected data codewords into the payload.
func decodeBitStream(data []byte) (*Result, error) {
	var out bytes.Buffer
	mode := modeASCII
	pos := 0

	for pos < len(data) && mode != modeDone {
		var err error
		switch mode {
		case modeASCII:
			mode, err = decodeASCII(&out, data, &pos)
		case modeC40:
			mode, err = decodeC40OrText(&out, data, &pos, false)
		case modeText:
			mode, err = decodeC40OrText(&out, data, &pos, true)
		case modeX12:
			mode, err = decodeX12(&out, data, &pos)
		case modeEDIFACT:
			mode, err = decodeEDIFACT(&out, data, &pos)
		case modeBase256:
			mode, err = decodeBase256(&out, data, &pos)
		}
		if err != nil {
			return nil, err
		}
	}

	raw := out.Bytes()
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// Latin-1 decoding is total over bytes; this cannot happen.
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &Result{Bytes: raw, Text: string(text)}, nil
}

func decodeASCII(out *bytes.Buffer, data []byte, pos *int) (int, error) {
	for *pos < len(data) {
		b := int(data[*pos])
		*pos++

		switch {
		case b == 0:
			return 0, fmt.Errorf("%w: zero codeword in ASCII mode", ErrFormat)
		case b <= 128:
			out.WriteByte(byte(b - 1))
		case b == 129:
			// Pad: the payload ends here.
			return modeDone, nil
		case b <= 229:
			pair := b - 130
			out.WriteByte(byte('0' + pair/10))
			out.WriteByte(byte('0' + pair%10))
		case b == 230:
			return modeC40, nil
		case b == 231:
			return modeBase256, nil
		case b == 232:
			// FNC1 maps to GS in the payload.
			out.WriteByte(0x1D)
		case b == 233:
			// Structured append header: skip the two identifier bytes.
			*pos += 2
		case b == 234:
			// Reader programming, no payload effect.
		case b == 235:
			if *pos >= len(data) {
				return 0, fmt.Errorf("%w: upper shift at end of stream", ErrFormat)
			}
			next := int(data[*pos])
			*pos++
			out.WriteByte(byte(next - 1 + 128))
		case b == 236:
			out.WriteString("[)>\x1e05\x1d")
		case b == 237:
			out.WriteString("[)>\x1e06\x1d")
		case b == 238:
			return modeX12, nil
		case b == 239:
			return modeText, nil
		case b == 240:
			return modeEDIFACT, nil
		case b == 241:
			// ECI designator, ignored under the default interpretation.
		default:
			// 242..255 are unassigned in ASCII mode.
		}
	}
	return modeASCII, nil
}

// unpackTriplet expands a codeword pair into three values of the 40-symbol
// C40/Text/X12 alphabet.
func unpackTriplet(c1, c2 int) [3]int {
	v := c1*256 + c2 - 1
	return [3]int{v / 1600, (v / 40) % 40, v % 40}
}

func decodeC40OrText(out *bytes.Buffer, data []byte, pos *int, textMode bool) (int, error) {
	shift := 0
	upperShift := false

	emit := func(ch byte) {
		if upperShift {
			ch += 128
			upperShift = false
		}
		out.WriteByte(ch)
	}

	for *pos < len(data)-1 {
		c1 := int(data[*pos])
		*pos++
		if c1 == 254 {
			return modeASCII, nil
		}
		c2 := int(data[*pos])
		*pos++

		for _, v := range unpackTriplet(c1, c2) {
			switch shift {
			case 0:
				switch {
				case v < 3:
					shift = v + 1
				case v == 3:
					emit(' ')
				case v <= 13:
					emit(byte('0' + v - 4))
				case textMode:
					emit(byte('a' + v - 14))
				default:
					emit(byte('A' + v - 14))
				}
			case 1:
				// Shift 1: raw control characters 0..31.
				emit(byte(v))
				shift = 0
			case 2:
				switch {
				case v < 27:
					emit(c40Shift2[v])
				case v == 27:
					emit(0x1D)
				case v == 30:
					upperShift = true
				}
				shift = 0
			case 3:
				if textMode {
					switch {
					case v == 0:
						emit('`')
					case v <= 26:
						emit(byte('A' + v - 1))
					case v == 27:
						emit('{')
					case v == 28:
						emit('|')
					case v == 29:
						emit('}')
					case v == 30:
						emit('~')
					case v == 31:
						emit(127)
					}
				} else {
					switch {
					case v == 0:
						emit('`')
					case v <= 26:
						emit(byte('a' + v - 1))
					case v == 27:
						emit('{')
					case v == 28:
						emit('|')
					case v == 29:
						emit('}')
					case v == 30:
						emit('~')
					case v == 31:
						emit(127)
					}
				}
				shift = 0
			}
		}
	}

	// A single trailing codeword implies an unlatch; it is consumed as
	// ASCII by the caller.
	return modeASCII, nil
}

func decodeX12(out *bytes.Buffer, data []byte, pos *int) (int, error) {
	for *pos < len(data)-1 {
		c1 := int(data[*pos])
		*pos++
		if c1 == 254 {
			return modeASCII, nil
		}
		c2 := int(data[*pos])
		*pos++

		for _, v := range unpackTriplet(c1, c2) {
			switch {
			case v == 0:
				out.WriteByte('\r')
			case v == 1:
				out.WriteByte('*')
			case v == 2:
				out.WriteByte('>')
			case v == 3:
				out.WriteByte(' ')
			case v >= 4 && v <= 13:
				out.WriteByte(byte('0' + v - 4))
			case v >= 14 && v <= 39:
				out.WriteByte(byte('A' + v - 14))
			}
		}
	}
	return modeASCII, nil
}

func decodeEDIFACT(out *bytes.Buffer, data []byte, pos *int) (int, error) {
	// Three codewords carry four 6-bit values; value 31 unlatches.
	for *pos+3 <= len(data) {
		b1 := int(data[*pos])
		b2 := int(data[*pos+1])
		b3 := int(data[*pos+2])
		*pos += 3

		vals := [4]int{
			(b1 >> 2) & 0x3F,
			((b1 & 0x03) << 4) | ((b2 >> 4) & 0x0F),
			((b2 & 0x0F) << 2) | ((b3 >> 6) & 0x03),
			b3 & 0x3F,
		}
		for _, v := range vals {
			if v == 31 {
				return modeASCII, nil
			}
			if v&0x20 == 0 {
				v |= 0x40
			}
			out.WriteByte(byte(v))
		}
	}

	// Fewer than three codewords cannot hold a packed group; they are
	// ASCII-encoded and left for the caller.
	return modeASCII, nil
}

func decodeBase256(out *bytes.Buffer, data []byte, pos *int) (int, error) {
	if *pos >= len(data) {
		return 0, fmt.Errorf("%w: truncated base 256 run", ErrFormat)
	}

	d1 := unrandomize255(int(data[*pos]), *pos+1)
	*pos++

	var count int
	switch {
	case d1 == 0:
		count = len(data) - *pos
	case d1 < 250:
		count = d1
	default:
		if *pos >= len(data) {
			return 0, fmt.Errorf("%w: truncated base 256 length", ErrFormat)
		}
		d2 := unrandomize255(int(data[*pos]), *pos+1)
		*pos++
		count = 250*(d1-249) + d2
	}

	if count < 0 || *pos+count > len(data) {
		return 0, fmt.Errorf("%w: base 256 run of %d exceeds stream", ErrFormat, count)
	}
	for i := 0; i < count; i++ {
		out.WriteByte(byte(unrandomize255(int(data[*pos]), *pos+1)))
		*pos++
	}
	return modeASCII, nil
}

// unrandomize255 strips the 255-state pseudo-random mask applied to Base 256
// codewords. position is 1-based and counts from the start of the data
// codeword stream.
func unrandomize255(codeword, position int) int {
	pseudoRandom := ((149 * position) % 255) + 1
	v := codeword - pseudoRandom
	if v < 0 {
		v += 256
	}
	return v
}
